// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package trustindex maintains the local index of trusted CA certificates.
//
// Each trusted certificate is stored once, under its normalized identifier
// (see package identifier): the subject key identifier when the certificate
// has one, the serialized subject DN otherwise. The resolver asks the index
// whether a presented certificate is trusted and, when none is, which
// stored certificate issued the top of the chain.
//
// The index is built offline from a CA bundle by a [Builder]. A bundle may
// be pinned by SHA-256 digest or checked against a detached OpenPGP
// signature before it is used.
//
// Storage implementations:
//   - [DirStore]: one file per entry, written atomically
//   - [MemoryStore]: in-process, for tests and embedding
//   - [CachedStore]: an LRU read cache in front of any [Store]
package trustindex
