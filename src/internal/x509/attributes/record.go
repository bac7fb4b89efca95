// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package attributes

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/x509"
	"strings"
	"time"

	x509certs "github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/identifier"
)

// Record holds the inspected attributes of one certificate.
//
// A Record is built once by [Extract] and never modified afterwards. Its
// identity is the SHA-1 fingerprint.
type Record struct {
	// Subject and Issuer are display names in /TYPE=VALUE form.
	Subject string `json:"subject"`
	Issuer  string `json:"issuer"`

	// SubjectID is the index key of the certificate: the subject key
	// identifier when present, otherwise SubjectDNKey.
	SubjectID    string `json:"subjectId,omitempty"`
	SubjectDNKey string `json:"serializedSubject,omitempty"`

	// IssuerID is the normalized authority key identifier. It is empty
	// when the certificate carries no key identifier for its issuer.
	IssuerID    string `json:"issuerId,omitempty"`
	IssuerDNKey string `json:"serializedIssuer,omitempty"`

	NotBefore time.Time `json:"notBefore"`
	NotAfter  time.Time `json:"notAfter"`
	Expired   bool      `json:"expired"`

	SHA1Fingerprint    string `json:"sha1Fingerprint"`
	SHA256Fingerprint  string `json:"sha256Fingerprint"`
	SerialNumber       string `json:"serialNumber"`
	Version            int    `json:"version"`
	SignatureAlgorithm string `json:"signatureAlgorithm"`

	// Extensions maps OpenSSL short names (or dotted OIDs) to the decoded
	// extension value.
	Extensions map[string]string `json:"extensions"`

	// ExtensionErrors lists extensions that could not be decoded and were
	// left out of Extensions.
	ExtensionErrors map[string]string `json:"extensionErrors,omitempty"`

	PEM string `json:"cert"`

	cert *x509.Certificate
}

// Certificate returns the certificate the record was extracted from.
func (r *Record) Certificate() *x509.Certificate { return r.cert }

// Extract builds the record of cert, judging expiry against the current
// time.
func Extract(cert *x509.Certificate) *Record {
	return ExtractAt(cert, time.Now())
}

// ExtractAt builds the record of cert, judging expiry against now.
//
// Every extension is visited. An extension that fails to decode is recorded
// in ExtensionErrors and skipped, it never fails the record.
func ExtractAt(cert *x509.Certificate, now time.Time) *Record {
	sha1Sum := sha1.Sum(cert.Raw)
	sha256Sum := sha256.Sum256(cert.Raw)

	subjectID, _ := identifier.ForSubject(cert)
	r := &Record{
		Subject:            identifier.DisplayName(cert.Subject),
		Issuer:             identifier.DisplayName(cert.Issuer),
		SubjectID:          subjectID,
		SubjectDNKey:       identifier.FromName(cert.Subject),
		IssuerDNKey:        identifier.FromName(cert.Issuer),
		NotBefore:          cert.NotBefore.UTC(),
		NotAfter:           cert.NotAfter.UTC(),
		Expired:            now.After(cert.NotAfter),
		SHA1Fingerprint:    identifier.FormatKeyID(sha1Sum[:]),
		SHA256Fingerprint:  identifier.FormatKeyID(sha256Sum[:]),
		SerialNumber:       serialString(cert),
		Version:            cert.Version,
		SignatureAlgorithm: cert.SignatureAlgorithm.String(),
		Extensions:         make(map[string]string, len(cert.Extensions)),
		PEM:                string(x509certs.New().EncodePEM(cert)),
		cert:               cert,
	}

	for _, ext := range cert.Extensions {
		name := ExtensionName(ext.Id)
		value, err := decodeExtension(ext)
		if err != nil {
			if r.ExtensionErrors == nil {
				r.ExtensionErrors = make(map[string]string)
			}
			r.ExtensionErrors[name] = err.Error()
			continue
		}
		r.Extensions[name] = value
	}

	if aki, ok := r.Extensions[NameAuthorityKeyIdentifier]; ok && strings.HasPrefix(aki, keyIDPrefix) {
		r.IssuerID = identifier.FromKeyIdentifier(aki)
	}
	return r
}

// FormatTime renders t the way OpenSSL prints certificate dates.
func FormatTime(t time.Time) string {
	return t.UTC().Format("Mon Jan _2 15:04:05 2006") + " GMT"
}

func serialString(cert *x509.Certificate) string {
	if cert.SerialNumber == nil {
		return ""
	}
	return cert.SerialNumber.String()
}
