// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package verify records per-depth certificate verification results.
//
// A [Checker] walks a presented chain the way OpenSSL's verifier does and
// reports one or more events per certificate to a [Listener]. The
// [Collector] listener folds those events into a [Verdict] per depth without
// ever stopping the handshake, so a chain that fails standard validation
// can still be inspected and explained.
//
// Result codes follow the OpenSSL X509_V_* numbering (0 through 32). Codes
// without a description are rendered with their raw value.
package verify
