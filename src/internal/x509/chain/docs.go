// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509chain inspects the certificate chain a TLS server presents and
// reports which of its certificates are locally trusted.
//
// An [Inspector] dials the target without enforcing trust, replays every
// presented certificate through a [verify.Checker] during the handshake and
// hands the collected verdicts to a [Resolver]. The resolver attributes each
// certificate, looks it up in the trust index by its normalized identifier
// and, when nothing presented is trusted, completes the chain with the
// indexed issuer of the last certificate.
//
// Reports render as text, a markdown table, an ASCII tree or JSON.
//
// Verification findings never fail an inspection. Connection failures are
// reported as [ErrResolveHost], [ErrConnect], [ErrHandshake] or
// [ErrNoPeerCertificates], and a missing trust index as [ErrIndexMissing].
package x509chain
