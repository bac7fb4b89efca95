// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package attributes_test

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/attributes"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/identifier"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/x509test"
)

func TestExtract(t *testing.T) {
	dvPolicy, err := x509.OIDFromInts([]uint64{2, 23, 140, 1, 2, 1})
	require.NoError(t, err)

	root := x509test.NewRoot(t, "Attributes Root")
	inter := root.NewIntermediate(t, "Attributes Intermediate", x509test.WithMaxPathLen(0))
	leaf := inter.NewLeaf(t, "attrs.example.test",
		func(tmpl *x509.Certificate) {
			tmpl.CRLDistributionPoints = []string{"http://crl.example.test/inter.crl"}
			tmpl.OCSPServer = []string{"http://ocsp.example.test"}
			tmpl.IssuingCertificateURL = []string{"http://ca.example.test/inter.crt"}
			tmpl.PolicyIdentifiers = []asn1.ObjectIdentifier{{2, 23, 140, 1, 2, 1}}
			tmpl.Policies = []x509.OID{dvPolicy}
		},
		x509test.WithExtraExtensions(
			pkix.Extension{Id: asn1.ObjectIdentifier{2, 5, 29, 18}, Value: []byte{0x04, 0x01, 0xff}},
			pkix.Extension{Id: asn1.ObjectIdentifier{1, 2, 3, 4, 5}, Value: []byte{0x05, 0x00}},
		),
	)

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Identity Fields",
			testFunc: func(t *testing.T) {
				r := attributes.Extract(leaf.Cert)

				assert.Equal(t, "/O=Inspector Test/CN=attrs.example.test", r.Subject)
				assert.Equal(t, "/C=US/O=Inspector Test/CN=Attributes Intermediate", r.Issuer)
				assert.Equal(t, leaf.Cert.SerialNumber.String(), r.SerialNumber)
				assert.Equal(t, 3, r.Version)
				assert.Equal(t, leaf.Cert.SignatureAlgorithm.String(), r.SignatureAlgorithm)
				assert.Equal(t, string(leaf.PEM), r.PEM)
				assert.Same(t, leaf.Cert, r.Certificate())
				assert.False(t, r.Expired)

				assert.Len(t, r.SHA1Fingerprint, 20*3-1)
				assert.Len(t, r.SHA256Fingerprint, 32*3-1)
				assert.Equal(t, strings.ToUpper(r.SHA1Fingerprint), r.SHA1Fingerprint)
			},
		},
		{
			name: "Issuer Identifier From AKI",
			testFunc: func(t *testing.T) {
				r := attributes.Extract(leaf.Cert)

				aki := r.Extensions[attributes.NameAuthorityKeyIdentifier]
				assert.Equal(t, "keyid:"+identifier.FormatKeyID(inter.Cert.SubjectKeyId), aki)
				assert.Equal(t, identifier.FormatKeyID(inter.Cert.SubjectKeyId), r.IssuerID)

				interRecord := attributes.Extract(inter.Cert)
				assert.Equal(t, interRecord.SubjectID, r.IssuerID, "issuer id must match the issuer's subject id")
				assert.Equal(t, interRecord.SubjectDNKey, r.IssuerDNKey)
			},
		},
		{
			name: "Decoded Extensions",
			testFunc: func(t *testing.T) {
				ext := attributes.Extract(leaf.Cert).Extensions

				assert.Equal(t, "Digital Signature", ext[attributes.NameKeyUsage])
				assert.Equal(t, "TLS Web Server Authentication", ext[attributes.NameExtendedKeyUsage])
				assert.Equal(t, "DNS:attrs.example.test, IP Address:127.0.0.1", ext[attributes.NameSubjectAltName])
				assert.Equal(t, "Full Name:\n  URI:http://crl.example.test/inter.crl", ext[attributes.NameCRLDistributionPoints])
				assert.Equal(t,
					"OCSP - URI:http://ocsp.example.test\nCA Issuers - URI:http://ca.example.test/inter.crt",
					ext[attributes.NameAuthorityInfoAccess])
				assert.Equal(t, "Policy: 2.23.140.1.2.1", ext[attributes.NameCertificatePolicies])
			},
		},
		{
			name: "CA Extensions",
			testFunc: func(t *testing.T) {
				r := attributes.Extract(inter.Cert)

				assert.Equal(t, "CA:TRUE, pathlen:0", r.Extensions[attributes.NameBasicConstraints])
				assert.Equal(t, "Certificate Sign, CRL Sign", r.Extensions[attributes.NameKeyUsage])
				assert.Equal(t, identifier.FormatKeyID(inter.Cert.SubjectKeyId), r.Extensions[attributes.NameSubjectKeyIdentifier])
				assert.Equal(t, r.Extensions[attributes.NameSubjectKeyIdentifier], r.SubjectID)

				rootRecord := attributes.Extract(root.Cert)
				assert.Equal(t, "CA:TRUE", rootRecord.Extensions[attributes.NameBasicConstraints])
				assert.Empty(t, rootRecord.IssuerID, "self-signed roots carry no authority key identifier")
			},
		},
		{
			name: "Every Extension Visited",
			testFunc: func(t *testing.T) {
				r := attributes.Extract(leaf.Cert)

				assert.Equal(t, len(leaf.Cert.Extensions), len(r.Extensions)+len(r.ExtensionErrors))
				last := leaf.Cert.Extensions[len(leaf.Cert.Extensions)-1]
				assert.Equal(t, "1.2.3.4.5", last.Id.String())
				assert.Equal(t, "05:00", r.Extensions["1.2.3.4.5"], "the final extension must not be dropped")
			},
		},
		{
			name: "Malformed Extension Skipped",
			testFunc: func(t *testing.T) {
				r := attributes.Extract(leaf.Cert)

				require.Contains(t, r.ExtensionErrors, "issuerAltName")
				assert.Contains(t, r.ExtensionErrors["issuerAltName"], "malformed extension")
				assert.NotContains(t, r.Extensions, "issuerAltName")
				assert.NotEmpty(t, r.Extensions[attributes.NameSubjectAltName], "other extensions still decoded")
			},
		},
		{
			name: "Expiry Judged At Given Time",
			testFunc: func(t *testing.T) {
				r := attributes.ExtractAt(leaf.Cert, leaf.Cert.NotAfter.Add(time.Second))
				assert.True(t, r.Expired)
			},
		},
		{
			name: "DN Fallback Without Key Identifiers",
			testFunc: func(t *testing.T) {
				plainIssuer := root.NewLeaf(t, "Plain Issuer", x509test.NotCA())
				child := plainIssuer.NewLeaf(t, "child.example.test")
				require.Empty(t, child.Cert.AuthorityKeyId)

				r := attributes.Extract(child.Cert)
				assert.Empty(t, r.IssuerID)
				assert.NotContains(t, r.Extensions, attributes.NameAuthorityKeyIdentifier)
				assert.Equal(t, r.SubjectDNKey, r.SubjectID)
				assert.Equal(t, "O=Inspector Test+++CN=child.example.test", r.SubjectDNKey)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}

func TestExtensionName(t *testing.T) {
	assert.Equal(t, "subjectKeyIdentifier", attributes.ExtensionName(asn1.ObjectIdentifier{2, 5, 29, 14}))
	assert.Equal(t, "ct_precert_scts", attributes.ExtensionName(asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 11129, 2, 4, 2}))
	assert.Equal(t, "1.2.3", attributes.ExtensionName(asn1.ObjectIdentifier{1, 2, 3}))
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "Tue Jan  2 03:04:05 2024 GMT", attributes.FormatTime(ts))
}
