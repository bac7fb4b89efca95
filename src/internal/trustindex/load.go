// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package trustindex

import (
	"crypto/x509"
	"errors"
	"fmt"

	x509certs "github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/certs"
)

// ReadableIndex is an index whose entries can be enumerated and read.
type ReadableIndex interface {
	Store
	Lister
}

// LoadCertificates decodes every entry of idx. Entries that cannot be read
// or decoded are left out and reported together in the returned error,
// alongside the certificates that did load.
func LoadCertificates(idx ReadableIndex) ([]*x509.Certificate, error) {
	keys, err := idx.Keys()
	if err != nil {
		return nil, err
	}

	decoder := x509certs.New()
	certs := make([]*x509.Certificate, 0, len(keys))
	var errs []error
	for _, key := range keys {
		data, err := idx.Get(key)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %q: %w", key, err))
			continue
		}
		cert, err := decoder.Decode(data)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %q: %w", key, err))
			continue
		}
		certs = append(certs, cert)
	}
	return certs, errors.Join(errs...)
}
