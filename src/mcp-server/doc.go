// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package mcpserver serves the TLS certificate trust inspector over the
// Model Context Protocol on stdio.
//
// Tools:
//   - inspect_tls_chain: report the verification result and trust index
//     membership of every certificate a server presents
//   - build_trust_index: build the local CA trust index from a bundle
//   - lookup_trust_index: read one trust index entry
//
// Resources:
//   - config://template: the configuration in effect
//   - status://trust-index: trust index location, size and cache statistics
//
// The tools share one inspector, so trust anchors are loaded once and
// reloaded after every build_trust_index call.
package mcpserver
