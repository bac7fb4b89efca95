// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verify

import (
	"bytes"
	"crypto/sha256"
	"crypto/x509"
	"sync"
)

// RootSet is the set of locally trusted certificates a [Checker] anchors
// chains to. The zero value is empty and ready to use. A nil *RootSet
// behaves as an empty set.
type RootSet struct {
	mu        sync.RWMutex
	bySubject map[string][]*x509.Certificate
	byRaw     map[[sha256.Size]byte]struct{}
}

// NewRootSet returns a set holding certs.
func NewRootSet(certs ...*x509.Certificate) *RootSet {
	r := &RootSet{}
	for _, cert := range certs {
		r.Add(cert)
	}
	return r
}

// Add inserts cert. Adding the same certificate twice is a no-op.
func (r *RootSet) Add(cert *x509.Certificate) {
	if cert == nil {
		return
	}
	sum := sha256.Sum256(cert.Raw)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byRaw == nil {
		r.byRaw = make(map[[sha256.Size]byte]struct{})
		r.bySubject = make(map[string][]*x509.Certificate)
	}
	if _, ok := r.byRaw[sum]; ok {
		return
	}
	r.byRaw[sum] = struct{}{}
	subject := string(cert.RawSubject)
	r.bySubject[subject] = append(r.bySubject[subject], cert)
}

// Len returns the number of certificates in the set.
func (r *RootSet) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byRaw)
}

// Pool returns the set as an [x509.CertPool] for use with
// [x509.Certificate.Verify].
func (r *RootSet) Pool() *x509.CertPool {
	pool := x509.NewCertPool()
	if r == nil {
		return pool
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, certs := range r.bySubject {
		for _, cert := range certs {
			pool.AddCert(cert)
		}
	}
	return pool
}

// Contains reports whether cert, or a certificate with the same subject
// and public key, is in the set.
func (r *RootSet) Contains(cert *x509.Certificate) bool {
	if r == nil || cert == nil {
		return false
	}
	sum := sha256.Sum256(cert.Raw)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.byRaw[sum]; ok {
		return true
	}
	for _, c := range r.bySubject[string(cert.RawSubject)] {
		if bytes.Equal(c.RawSubjectPublicKeyInfo, cert.RawSubjectPublicKeyInfo) {
			return true
		}
	}
	return false
}

// FindIssuer returns a certificate from the set whose subject matches the
// issuer of cert and whose key verifies the signature on cert. Candidates
// whose subject key identifier matches the authority key identifier of
// cert are tried first. It returns nil when no issuer is found.
func (r *RootSet) FindIssuer(cert *x509.Certificate) *x509.Certificate {
	if r == nil || cert == nil {
		return nil
	}

	r.mu.RLock()
	candidates := r.bySubject[string(cert.RawIssuer)]
	r.mu.RUnlock()

	var fallback []*x509.Certificate
	for _, c := range candidates {
		if len(cert.AuthorityKeyId) > 0 && len(c.SubjectKeyId) > 0 &&
			!bytes.Equal(cert.AuthorityKeyId, c.SubjectKeyId) {
			fallback = append(fallback, c)
			continue
		}
		if signedBy(cert, c) {
			return c
		}
	}
	for _, c := range fallback {
		if signedBy(cert, c) {
			return c
		}
	}
	return nil
}

func signedBy(cert, issuer *x509.Certificate) bool {
	return issuer.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature) == nil
}
