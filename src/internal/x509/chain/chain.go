// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/trustindex"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/attributes"
	x509certs "github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/identifier"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/verify"
)

var (
	// ErrResolveHost is returned when the target host name does not resolve.
	ErrResolveHost = errors.New("x509chain: cannot resolve host")
	// ErrConnect is returned when no TCP connection could be established.
	ErrConnect = errors.New("x509chain: connection failed")
	// ErrHandshake is returned when the TLS handshake does not complete.
	ErrHandshake = errors.New("x509chain: TLS handshake failed")
	// ErrNoPeerCertificates is returned when the peer presents no certificate.
	ErrNoPeerCertificates = errors.New("x509chain: no certificates received from server")
	// ErrIndexMissing is returned when the trust index has not been built.
	ErrIndexMissing = errors.New("x509chain: trust index not found, run build-index first")
	// ErrIndexLookup is returned when the trust index cannot be read.
	ErrIndexLookup = errors.New("x509chain: trust index lookup failed")
)

// ConnectionInfo describes the negotiated TLS session.
type ConnectionInfo struct {
	Host       string `json:"hostname"`
	Port       int    `json:"port"`
	ServerName string `json:"servername"`
	Cipher     string `json:"cipher"`
	Protocol   string `json:"protocol"`
	Bits       int    `json:"bits"`

	// LibraryVerdict is the outcome of the standard library's own chain
	// verification against the trust index: "ok" or the error text.
	LibraryVerdict string `json:"libraryVerdict,omitempty"`
}

// Entry is one certificate of a [Report].
type Entry struct {
	Depth int `json:"depth"`
	*attributes.Record

	// FromServer is false only for a root completed from the trust index.
	FromServer bool `json:"fromServer"`
	Trusted    bool `json:"trusted"`

	// Validation is the rendered verdict for Depth, empty when none was
	// recorded. Findings holds the same verdict in structured form.
	Validation string           `json:"validation"`
	Findings   []verify.Finding `json:"findings,omitempty"`
}

// Verified reports whether verification ran for the entry and found
// nothing wrong.
func (e Entry) Verified() bool {
	return verify.Verdict{Depth: e.Depth, Findings: e.Findings}.OK()
}

// Report is the trust assessment of one presented chain.
//
// Entries 0..N-1 follow the server order. When nothing presented is in
// the trust index but the issuer of the last certificate is, that issuer
// is appended at depth N.
type Report struct {
	Connection ConnectionInfo `json:"connection"`
	TrustIndex string         `json:"trustIndex,omitempty"`
	Entries    []Entry        `json:"certs"`
}

// Trusted reports whether any entry of the report is in the trust index.
func (r *Report) Trusted() bool {
	for _, e := range r.Entries {
		if e.Trusted {
			return true
		}
	}
	return false
}

// Completed returns the entry appended from the trust index, or nil when
// the report holds only presented certificates.
func (r *Report) Completed() *Entry {
	if n := len(r.Entries); n > 0 && !r.Entries[n-1].FromServer {
		return &r.Entries[n-1]
	}
	return nil
}

// Resolver merges a presented chain, its verdicts and the trust index into
// a [Report].
type Resolver struct {
	Index trustindex.Store

	// Now is the clock for expiry flags. Defaults to time.Now.
	Now func() time.Time

	decoder *x509certs.Certificate
}

// NewResolver creates a resolver reading from index.
func NewResolver(index trustindex.Store) *Resolver {
	return &Resolver{Index: index, Now: time.Now, decoder: x509certs.New()}
}

// Resolve builds the report for presented (leaf first).
//
// Every presented certificate is looked up under its own identifier. If
// none is found, the issuer keys of the last certificate are tried in
// order and a hit is appended as a trusted entry that was not sent by the
// server. A chain with no match is reported untrusted, not as an error.
func (r *Resolver) Resolve(presented []*x509.Certificate, verdicts verify.Verdicts) (*Report, error) {
	if len(presented) == 0 {
		return nil, ErrNoPeerCertificates
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	at := now()

	report := &Report{Entries: make([]Entry, 0, len(presented)+1)}
	for depth, cert := range presented {
		record := attributes.ExtractAt(cert, at)
		trusted, err := r.has(record.SubjectID)
		if err != nil {
			return nil, err
		}
		report.Entries = append(report.Entries, Entry{
			Depth:      depth,
			Record:     record,
			FromServer: true,
			Trusted:    trusted,
			Validation: verdicts.Render(depth),
			Findings:   verdicts[depth].Findings,
		})
	}

	if report.Trusted() {
		return report, nil
	}

	root, err := r.completingRoot(presented[len(presented)-1])
	if err != nil || root == nil {
		return report, err
	}
	report.Entries = append(report.Entries, Entry{
		Depth:   len(presented),
		Record:  attributes.ExtractAt(root, at),
		Trusted: true,
	})
	return report, nil
}

// has reports whether key is indexed. Certificates without an identifier
// are never trusted.
func (r *Resolver) has(key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	ok, err := r.Index.Has(key)
	if err != nil {
		return false, fmt.Errorf("%w: %q: %w", ErrIndexLookup, key, err)
	}
	return ok, nil
}

// completingRoot loads the first indexed certificate matching the issuer
// keys of last, or returns nil if none is indexed.
func (r *Resolver) completingRoot(last *x509.Certificate) (*x509.Certificate, error) {
	decoder := r.decoder
	if decoder == nil {
		decoder = x509certs.New()
	}

	for _, key := range identifier.ForIssuer(last) {
		data, err := r.Index.Get(key)
		if errors.Is(err, trustindex.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrIndexLookup, key, err)
		}
		cert, err := decoder.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %q: %w", ErrIndexLookup, key, err)
		}
		return cert, nil
	}
	return nil, nil
}
