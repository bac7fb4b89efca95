// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package attributes extracts an inspection [Record] from a certificate.
//
// Extensions are decoded from their raw DER with [cryptobyte] and rendered
// the way OpenSSL prints them, keyed by OpenSSL short name. Extensions
// without a dedicated decoder are rendered as hex. A malformed extension is
// reported in Record.ExtensionErrors and never fails extraction.
//
// [cryptobyte]: https://pkg.go.dev/golang.org/x/crypto/cryptobyte
package attributes
