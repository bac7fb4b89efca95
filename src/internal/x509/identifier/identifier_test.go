// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package identifier_test

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/identifier"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/x509test"
)

func TestFromKeyIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Plain Key Identifier",
			input: "AB:CD:EF",
			want:  "AB:CD:EF",
		},
		{
			name:  "Legacy Keyid Label With Trailing Lines",
			input: "keyid:AB:CD:EF\nDirName:/C=US/O=Example\nserial:01",
			want:  "AB:CD:EF",
		},
		{
			name:  "Surrounding Whitespace",
			input: "  keyid:01:02\r\n",
			want:  "01:02",
		},
		{
			name:  "Slash Replaced",
			input: "AB/CD",
			want:  "AB|CD",
		},
		{
			name:  "Empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := identifier.FromKeyIdentifier(tt.input)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "/")
			assert.Equal(t, got, identifier.FromKeyIdentifier(tt.input), "normalization must be pure")
		})
	}
}

func TestFormatKeyID(t *testing.T) {
	assert.Equal(t, "", identifier.FormatKeyID(nil))
	assert.Equal(t, "0A", identifier.FormatKeyID([]byte{0x0a}))
	assert.Equal(t, "DE:AD:BE:EF:00", identifier.FormatKeyID([]byte{0xde, 0xad, 0xbe, 0xef, 0x00}))
}

func TestFromName(t *testing.T) {
	tests := []struct {
		name     string
		input    pkix.Name
		want     string
		wantShow string
	}{
		{
			name:     "Empty Name",
			input:    pkix.Name{},
			want:     "",
			wantShow: "",
		},
		{
			name: "Typed Fields",
			input: pkix.Name{
				Country:      []string{"US"},
				Organization: []string{"Example Corp"},
				CommonName:   "Example Root",
			},
			want:     "C=US+++O=Example Corp+++CN=Example Root",
			wantShow: "/C=US/O=Example Corp/CN=Example Root",
		},
		{
			name: "Parsed Attributes Keep Encoded Order",
			input: pkix.Name{
				Names: []pkix.AttributeTypeAndValue{
					{Type: asn1.ObjectIdentifier{2, 5, 4, 3}, Value: "a/b"},
					{Type: asn1.ObjectIdentifier{2, 5, 4, 10}, Value: "Org"},
					{Type: asn1.ObjectIdentifier{1, 2, 3, 4}, Value: "x"},
				},
			},
			want:     "CN=a|b+++O=Org+++1.2.3.4=x",
			wantShow: "/CN=a/b/O=Org/1.2.3.4=x",
		},
		{
			name: "Unicode Canonicalized",
			input: pkix.Name{
				Names: []pkix.AttributeTypeAndValue{
					{Type: asn1.ObjectIdentifier{2, 5, 4, 3}, Value: "Cafe\u0301"},
				},
			},
			want:     "CN=Caf\u00e9",
			wantShow: "/CN=Caf\u00e9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := identifier.FromName(tt.input)
			assert.Equal(t, tt.want, got)
			assert.False(t, strings.Contains(got, "/"), "key must not contain a path separator")
			assert.Equal(t, tt.wantShow, identifier.DisplayName(tt.input))
		})
	}
}

func TestCertificateKeys(t *testing.T) {
	root := x509test.NewRoot(t, "Keys Root")
	inter := root.NewIntermediate(t, "Keys Intermediate")
	leaf := inter.NewLeaf(t, "keys.example.test")

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Subject Key Prefers SKID",
			testFunc: func(t *testing.T) {
				require.NotEmpty(t, inter.Cert.SubjectKeyId)
				key, ok := identifier.ForSubject(inter.Cert)
				require.True(t, ok)
				assert.Equal(t, identifier.FormatKeyID(inter.Cert.SubjectKeyId), key)
			},
		},
		{
			name: "Issuer Keys Ordered AKI Then DN",
			testFunc: func(t *testing.T) {
				keys := identifier.ForIssuer(leaf.Cert)
				require.Len(t, keys, 2)
				assert.Equal(t, identifier.FormatKeyID(inter.Cert.SubjectKeyId), keys[0])
				assert.Equal(t, identifier.FromName(inter.Cert.Subject), keys[1])

				subjectKey, ok := identifier.ForSubject(inter.Cert)
				require.True(t, ok)
				assert.Equal(t, subjectKey, keys[0], "issuer lookup must hit the subject key")
			},
		},
		{
			name: "Subject Key Falls Back To DN",
			testFunc: func(t *testing.T) {
				plain := root.NewLeaf(t, "plain.example.test", x509test.WithSubjectKeyID(nil), x509test.NotCA())
				if len(plain.Cert.SubjectKeyId) > 0 {
					t.Skip("certificate generator always adds a subject key identifier")
				}
				key, ok := identifier.ForSubject(plain.Cert)
				require.True(t, ok)
				assert.Equal(t, identifier.FromName(plain.Cert.Subject), key)
			},
		},
		{
			name: "Self Signed Root Has Only DN Issuer Key",
			testFunc: func(t *testing.T) {
				keys := identifier.ForIssuer(root.Cert)
				require.NotEmpty(t, keys)
				assert.Equal(t, identifier.FromName(root.Cert.Subject), keys[len(keys)-1])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}
