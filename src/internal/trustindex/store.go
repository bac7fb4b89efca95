// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package trustindex

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by a lookup that misses.
	ErrNotFound = errors.New("trustindex: entry not found")

	// ErrInvalidKey is returned when a key cannot name an index entry.
	ErrInvalidKey = errors.New("trustindex: invalid key")
)

// Store is read access to a trust index.
//
// A key is the normalized identifier of a certificate. A miss is reported
// as [ErrNotFound]. Other errors mean the index itself could not be read.
type Store interface {
	Get(key string) ([]byte, error)
	Has(key string) (bool, error)
}

// Writer mutates a trust index. Put replaces any existing entry.
type Writer interface {
	Put(key string, pem []byte) error
	Delete(key string) error
}

// Lister enumerates the keys of a trust index.
type Lister interface {
	Keys() ([]string, error)
}

// Index is a store the builder can populate and prune.
type Index interface {
	Store
	Writer
	Lister
}

// KeyChecker is implemented by stores that restrict keys further than
// [ValidKey], such as a directory store bounded by file name limits.
type KeyChecker interface {
	CheckKey(key string) error
}

// ValidKey reports whether key can name an entry. Identifiers never carry
// a slash, so a key with a slash, a NUL or a dot entry name is refused.
// Any other byte, a backslash included, is part of the identifier.
func ValidKey(key string) bool {
	switch key {
	case "", ".", "..":
		return false
	}
	return !strings.ContainsAny(key, "/\x00")
}

// CheckKey returns an [ErrInvalidKey] error when key cannot be stored in
// idx, consulting idx's own rules when it is a [KeyChecker].
func CheckKey(idx Store, key string) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if kc, ok := idx.(KeyChecker); ok {
		return kc.CheckKey(key)
	}
	return nil
}
