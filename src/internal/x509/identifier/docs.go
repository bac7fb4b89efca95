// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package identifier derives stable, filesystem-safe keys for [X.509] certificates.
//
// A key is either the Subject (or Authority) Key Identifier rendered as
// colon-separated uppercase hex, or, when the certificate carries no key
// identifier, its Distinguished Name serialized as TYPE=VALUE pairs joined by
// "+++". Attribute values are canonicalized to Unicode NFC. Every "/" in a key
// is replaced with "|" so a key can be used directly as a file name.
//
// [X.509]: https://grokipedia.com/page/X.509
package identifier
