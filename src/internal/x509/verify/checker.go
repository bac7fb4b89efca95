// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verify

import (
	"bytes"
	"crypto/x509"
	"slices"
	"time"
)

// DefaultMaxDepth is the verification depth limit used when
// Checker.MaxDepth is zero.
const DefaultMaxDepth = 10

// Checker produces per-depth verification events for a presented chain,
// the way an OpenSSL verify callback would see them.
//
// The presented order is the verification path: the certificate at index
// i is expected to be issued by the one at index i+1. The top of the path
// is anchored with [RootSet]. Events are delivered from the deepest depth
// to the leaf. Every depth receives its errors first, followed by a
// closing [CodeOK] event.
//
// Checker does not decide whether the connection proceeds. The caller's
// [Listener] only observes.
type Checker struct {
	// Roots are the locally trusted certificates.
	Roots *RootSet

	// MaxDepth limits how many issuers above the leaf are verified.
	// Zero means DefaultMaxDepth.
	MaxDepth int

	// Now returns the verification time. Nil means time.Now.
	Now func() time.Time
}

// event is a pending callback.
type event struct {
	cert  *x509.Certificate
	code  ErrorCode
	depth int
}

// Walk delivers the verification events for chain to l. It does nothing
// for an empty chain. Walk stops early only when l returns false.
func (c *Checker) Walk(chain []*x509.Certificate, l Listener) {
	if len(chain) == 0 || l == nil {
		return
	}
	for _, ev := range c.events(chain) {
		if !l.OnCertificateVerified(ev.cert, ev.code, ev.depth) {
			return
		}
	}
}

// events returns the verification events for chain in delivery order.
func (c *Checker) events(chain []*x509.Certificate) []event {
	maxDepth := c.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}

	// errs[d] holds the failures for depth d; path[d] the certificate.
	path := slices.Clone(chain)
	truncated := false
	if len(path) > maxDepth+1 {
		path = path[:maxDepth+1]
		truncated = true
	}
	errs := make([][]ErrorCode, len(path)+1)
	top := len(path) - 1

	var anchor *x509.Certificate
	switch {
	case truncated:
		errs[top] = append(errs[top], CodeChainTooLong)
	case isSelfSigned(path[top]):
		if !c.Roots.Contains(path[top]) {
			if top == 0 {
				errs[top] = append(errs[top], CodeDepthZeroSelfSigned)
			} else {
				errs[top] = append(errs[top], CodeSelfSignedInChain)
			}
		}
	default:
		anchor = c.Roots.FindIssuer(path[top])
		switch {
		case anchor == nil:
			errs[top] = append(errs[top], CodeUnableToGetIssuerLocally)
			if top == 0 {
				errs[top] = append(errs[top], CodeUnableToVerifyLeafSignature)
			}
		case top+1 > maxDepth:
			errs[top] = append(errs[top], CodeChainTooLong)
			anchor = nil
		}
	}

	var events []event
	if anchor != nil {
		depth := top + 1
		for _, code := range validity(anchor, now) {
			events = append(events, event{cert: anchor, code: code, depth: depth})
		}
		events = append(events, event{cert: anchor, code: CodeOK, depth: depth})
	}

	for depth := top; depth >= 0; depth-- {
		cert := path[depth]

		var issuer *x509.Certificate
		switch {
		case depth+1 < len(chain):
			issuer = chain[depth+1]
		case anchor != nil:
			issuer = anchor
		}

		codes := errs[depth]
		codes = append(codes, validity(cert, now)...)
		codes = append(codes, constraints(cert, depth)...)
		if issuer != nil && !(depth == top && isSelfSigned(cert)) {
			codes = append(codes, issuedBy(cert, issuer)...)
		}

		for _, code := range codes {
			events = append(events, event{cert: cert, code: code, depth: depth})
		}
		events = append(events, event{cert: cert, code: CodeOK, depth: depth})
	}
	return events
}

func validity(cert *x509.Certificate, now time.Time) []ErrorCode {
	switch {
	case now.Before(cert.NotBefore):
		return []ErrorCode{CodeCertNotYetValid}
	case now.After(cert.NotAfter):
		return []ErrorCode{CodeCertHasExpired}
	}
	return nil
}

// constraints checks the certificate against its role at depth.
func constraints(cert *x509.Certificate, depth int) []ErrorCode {
	var codes []ErrorCode
	if depth > 0 {
		if !cert.BasicConstraintsValid || !cert.IsCA {
			codes = append(codes, CodeInvalidCA)
		} else if (cert.MaxPathLen > 0 || cert.MaxPathLenZero) && depth-1 > cert.MaxPathLen {
			codes = append(codes, CodePathLengthExceeded)
		}
	}
	if !allowsServerAuth(cert) {
		codes = append(codes, CodeInvalidPurpose)
	}
	return codes
}

func allowsServerAuth(cert *x509.Certificate) bool {
	if len(cert.ExtKeyUsage) == 0 && len(cert.UnknownExtKeyUsage) == 0 {
		return true
	}
	for _, u := range cert.ExtKeyUsage {
		if u == x509.ExtKeyUsageServerAuth || u == x509.ExtKeyUsageAny {
			return true
		}
	}
	return false
}

// issuedBy checks the link between cert and its issuer.
func issuedBy(cert, issuer *x509.Certificate) []ErrorCode {
	var codes []ErrorCode
	if !bytes.Equal(cert.RawIssuer, issuer.RawSubject) {
		codes = append(codes, CodeSubjectIssuerMismatch)
	}
	if len(cert.AuthorityKeyId) > 0 && len(issuer.SubjectKeyId) > 0 &&
		!bytes.Equal(cert.AuthorityKeyId, issuer.SubjectKeyId) {
		codes = append(codes, CodeKeyIDMismatch)
	}
	if issuer.KeyUsage != 0 && issuer.KeyUsage&x509.KeyUsageCertSign == 0 {
		codes = append(codes, CodeKeyUsageNoCertSign)
	}
	if !signedBy(cert, issuer) {
		codes = append(codes, CodeCertSignatureFailure)
	}
	return codes
}

func isSelfSigned(cert *x509.Certificate) bool {
	return bytes.Equal(cert.RawSubject, cert.RawIssuer) && signedBy(cert, cert)
}
