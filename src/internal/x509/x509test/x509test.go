// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509test generates throwaway certificate hierarchies and TLS
// endpoints for tests.
package x509test

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"math/big"
	"net"
	"strings"
	"testing"
	"time"
)

// Issued is a generated certificate together with its private key.
type Issued struct {
	Cert *x509.Certificate
	Key  crypto.Signer
	PEM  []byte
}

// Option customizes a certificate template before it is signed.
type Option func(tmpl *x509.Certificate)

// NotCA issues a certificate without CA basic constraints. Such a
// certificate carries no generated subject key identifier.
func NotCA() Option {
	return func(tmpl *x509.Certificate) {
		tmpl.IsCA = false
		tmpl.BasicConstraintsValid = false
		tmpl.KeyUsage = x509.KeyUsageDigitalSignature
	}
}

// WithSubject replaces the subject name.
func WithSubject(name pkix.Name) Option {
	return func(tmpl *x509.Certificate) { tmpl.Subject = name }
}

// WithValidity sets the validity window.
func WithValidity(notBefore, notAfter time.Time) Option {
	return func(tmpl *x509.Certificate) {
		tmpl.NotBefore = notBefore
		tmpl.NotAfter = notAfter
	}
}

// WithSubjectKeyID pins the subject key identifier.
func WithSubjectKeyID(id []byte) Option {
	return func(tmpl *x509.Certificate) { tmpl.SubjectKeyId = id }
}

// WithExtKeyUsage replaces the extended key usages.
func WithExtKeyUsage(usages ...x509.ExtKeyUsage) Option {
	return func(tmpl *x509.Certificate) { tmpl.ExtKeyUsage = usages }
}

// WithKeyUsage replaces the key usage bits.
func WithKeyUsage(usage x509.KeyUsage) Option {
	return func(tmpl *x509.Certificate) { tmpl.KeyUsage = usage }
}

// WithMaxPathLen sets a path length constraint on a CA.
func WithMaxPathLen(n int) Option {
	return func(tmpl *x509.Certificate) {
		tmpl.MaxPathLen = n
		tmpl.MaxPathLenZero = n == 0
	}
}

// WithDNSNames sets the subject alternative DNS names.
func WithDNSNames(names ...string) Option {
	return func(tmpl *x509.Certificate) { tmpl.DNSNames = names }
}

// WithExtraExtensions appends raw extensions after the generated ones.
func WithExtraExtensions(exts ...pkix.Extension) Option {
	return func(tmpl *x509.Certificate) {
		tmpl.ExtraExtensions = append(tmpl.ExtraExtensions, exts...)
	}
}

// NewRoot creates a self-signed CA.
func NewRoot(tb testing.TB, cn string, opts ...Option) *Issued {
	tb.Helper()
	tmpl := caTemplate(tb, cn)
	for _, opt := range opts {
		opt(tmpl)
	}
	key := newKey(tb)
	return sign(tb, tmpl, tmpl, key, key)
}

// NewIntermediate issues a CA certificate signed by parent.
func (i *Issued) NewIntermediate(tb testing.TB, cn string, opts ...Option) *Issued {
	tb.Helper()
	tmpl := caTemplate(tb, cn)
	for _, opt := range opts {
		opt(tmpl)
	}
	return sign(tb, tmpl, i.Cert, newKey(tb), i.Key)
}

// NewLeaf issues a server certificate signed by parent.
func (i *Issued) NewLeaf(tb testing.TB, cn string, opts ...Option) *Issued {
	tb.Helper()
	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber: serial(tb),
		Subject:      pkix.Name{CommonName: cn, Organization: []string{"Inspector Test"}},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     []string{cn},
		IPAddresses:  []net.IP{net.IPv4(127, 0, 0, 1)},
	}
	for _, opt := range opts {
		opt(tmpl)
	}
	return sign(tb, tmpl, i.Cert, newKey(tb), i.Key)
}

// Bundle concatenates the PEM encoding of the given certificates.
func Bundle(certs ...*Issued) []byte {
	var out []byte
	for _, c := range certs {
		out = append(out, c.PEM...)
	}
	return out
}

// Reflow writes the certificate as a PEM block with width base64 columns
// per line and eol as line ending, the way some distribution bundles do.
func (i *Issued) Reflow(width int, eol string) []byte {
	body := base64.StdEncoding.EncodeToString(i.Cert.Raw)

	var sb strings.Builder
	sb.WriteString("-----BEGIN CERTIFICATE-----" + eol)
	for len(body) > width {
		sb.WriteString(body[:width] + eol)
		body = body[width:]
	}
	sb.WriteString(body + eol)
	sb.WriteString("-----END CERTIFICATE-----" + eol)
	return []byte(sb.String())
}

// Certs returns the parsed certificates in order.
func Certs(certs ...*Issued) []*x509.Certificate {
	out := make([]*x509.Certificate, len(certs))
	for i, c := range certs {
		out[i] = c.Cert
	}
	return out
}

// ServeTLS starts a TLS listener on the loopback interface that presents
// chain (leaf first) to every client. It returns the host and port.
func ServeTLS(tb testing.TB, chain ...*Issued) (string, int) {
	tb.Helper()
	if len(chain) == 0 {
		tb.Fatal("x509test: ServeTLS needs at least a leaf certificate")
	}

	raw := make([][]byte, len(chain))
	for i, c := range chain {
		raw[i] = c.Cert.Raw
	}

	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{
		Certificates: []tls.Certificate{{
			Certificate: raw,
			PrivateKey:  chain[0].Key,
			Leaf:        chain[0].Cert,
		}},
		MinVersion: tls.VersionTLS12,
	})
	if err != nil {
		tb.Fatalf("x509test: listen: %v", err)
	}
	tb.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				_ = c.SetDeadline(time.Now().Add(5 * time.Second))
				_ = c.(*tls.Conn).Handshake()
				buf := make([]byte, 1)
				_, _ = c.Read(buf)
			}(conn)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

func caTemplate(tb testing.TB, cn string) *x509.Certificate {
	now := time.Now()
	return &x509.Certificate{
		SerialNumber:          serial(tb),
		Subject:               pkix.Name{CommonName: cn, Organization: []string{"Inspector Test"}, Country: []string{"US"}},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLen:            -1,
	}
}

func sign(tb testing.TB, tmpl, parent *x509.Certificate, key, parentKey crypto.Signer) *Issued {
	tb.Helper()
	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent, key.Public(), parentKey)
	if err != nil {
		tb.Fatalf("x509test: create certificate %q: %v", tmpl.Subject.CommonName, err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		tb.Fatalf("x509test: parse certificate %q: %v", tmpl.Subject.CommonName, err)
	}
	return &Issued{
		Cert: cert,
		Key:  key,
		PEM:  pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
	}
}

func newKey(tb testing.TB) crypto.Signer {
	tb.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		tb.Fatalf("x509test: generate key: %v", err)
	}
	return key
}

func serial(tb testing.TB) *big.Int {
	tb.Helper()
	n, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		tb.Fatalf("x509test: serial: %v", err)
	}
	return n.Add(n, big.NewInt(2))
}
