// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the Cobra command line of the TLS certificate trust
// inspector.
//
// The root command connects to a target, records the verdict of every
// certificate the server presents and reports which of them are in the
// local CA trust index, as text, JSON, a markdown table or an ASCII tree.
// The build-index subcommand creates that index from a PEM bundle, after
// an optional SHA-256 pin and OpenPGP signature check. The lookup
// subcommand prints a single index entry.
//
// Commands write their results to the command's output stream and their
// progress through the [logger.Logger] passed to [Execute].
package cli
