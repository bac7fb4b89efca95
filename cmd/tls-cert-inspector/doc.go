// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// tls-cert-inspector connects to a TLS server, records the verification
// result of every certificate it presents and reports which of them are in
// a local CA trust index.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/tls-cert-trust-inspector/cmd/tls-cert-inspector@latest
//
// # Usage
//
//	tls-cert-inspector build-index [--bundle FILE] [--prune] [--sha256 HEX] [--signature FILE --keyring FILE]
//	tls-cert-inspector [FLAGS] TARGET
//	tls-cert-inspector lookup KEY
//
// TARGET is a host, host:port or URL. The port defaults to 443.
//
// # Flags
//
//	-s, --servername   TLS server name (SNI), defaults to the target host
//	-j, --json         Emit the report as JSON
//	-c, --cert         Include certificates in the text report
//	-t, --tree         Display the chain as an ASCII tree
//	    --table        Display the chain as a markdown table
//	    --timeout      Connect and handshake timeout
//	    --index        Trust index directory
//	    --config       Configuration file (.json, .yaml, .yml)
//
// # Examples
//
// Build the trust index from the platform CA bundle, then inspect a host:
//
//	tls-cert-inspector build-index
//	tls-cert-inspector example.com
//
// Inspect a server by address with an explicit server name:
//
//	tls-cert-inspector -s www.example.com 203.0.113.7:8443
//
// Show the CA certificate that completed a chain:
//
//	tls-cert-inspector lookup 'C=US+++O=Example+++CN=Example Root'
package main
