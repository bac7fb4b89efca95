// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package identifier

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// Separator joins DN attribute pairs inside a key. It never occurs in
	// attribute type names and is unlikely inside values.
	Separator = "+++"

	// pathSeparator is replaced by pathPlaceholder in every key.
	pathSeparator   = "/"
	pathPlaceholder = "|"

	// keyIDLabel is the marker older OpenSSL releases print in front of an
	// authority key identifier.
	keyIDLabel = "keyid:"
)

// attributeNames maps DN attribute OIDs to their OpenSSL short names.
var attributeNames = map[string]string{
	"2.5.4.3":                    "CN",
	"2.5.4.4":                    "SN",
	"2.5.4.5":                    "serialNumber",
	"2.5.4.6":                    "C",
	"2.5.4.7":                    "L",
	"2.5.4.8":                    "ST",
	"2.5.4.9":                    "street",
	"2.5.4.10":                   "O",
	"2.5.4.11":                   "OU",
	"2.5.4.12":                   "title",
	"2.5.4.15":                   "businessCategory",
	"2.5.4.17":                   "postalCode",
	"2.5.4.42":                   "GN",
	"2.5.4.46":                   "dnQualifier",
	"2.5.4.65":                   "pseudonym",
	"2.5.4.97":                   "organizationIdentifier",
	"1.2.840.113549.1.9.1":       "emailAddress",
	"0.9.2342.19200300.100.1.1":  "UID",
	"0.9.2342.19200300.100.1.25": "DC",
	"1.3.6.1.4.1.311.60.2.1.1":   "jurisdictionL",
	"1.3.6.1.4.1.311.60.2.1.2":   "jurisdictionST",
	"1.3.6.1.4.1.311.60.2.1.3":   "jurisdictionC",
}

// Component is a single attribute of a Distinguished Name.
type Component struct {
	Type  string
	Value string
}

// AttributeName returns the OpenSSL short name for a DN attribute type,
// or its dotted form when the type is not known.
func AttributeName(oid asn1.ObjectIdentifier) string {
	s := oid.String()
	if name, ok := attributeNames[s]; ok {
		return name
	}
	return s
}

// Components flattens a name into its attributes in encoded order.
//
// Parsed names carry every attribute in Names. Names built in code only
// populate the typed fields, so those fall back to the RDN sequence.
func Components(name pkix.Name) []Component {
	atvs := name.Names
	if len(atvs) == 0 {
		for _, rdn := range name.ToRDNSequence() {
			atvs = append(atvs, rdn...)
		}
	}

	out := make([]Component, 0, len(atvs))
	for _, atv := range atvs {
		value, ok := atv.Value.(string)
		if !ok {
			value = fmt.Sprint(atv.Value)
		}
		out = append(out, Component{
			Type:  AttributeName(atv.Type),
			Value: norm.NFC.String(value),
		})
	}
	return out
}

// FromName derives a filesystem-safe key from a Distinguished Name.
// It returns an empty string for an empty name.
func FromName(name pkix.Name) string {
	comps := Components(name)
	if len(comps) == 0 {
		return ""
	}

	parts := make([]string, len(comps))
	for i, c := range comps {
		parts[i] = c.Type + "=" + c.Value
	}
	return sanitize(strings.Join(parts, Separator))
}

// DisplayName renders a name as /TYPE=VALUE/TYPE=VALUE for humans.
func DisplayName(name pkix.Name) string {
	var sb strings.Builder
	for _, c := range Components(name) {
		sb.WriteString("/")
		sb.WriteString(c.Type)
		sb.WriteString("=")
		sb.WriteString(c.Value)
	}
	return sb.String()
}

// FormatKeyID renders a key identifier as colon-separated uppercase hex.
func FormatKeyID(id []byte) string {
	if len(id) == 0 {
		return ""
	}

	const hexDigits = "0123456789ABCDEF"
	var sb strings.Builder
	sb.Grow(len(id)*3 - 1)
	for i, b := range id {
		if i > 0 {
			sb.WriteByte(':')
		}
		sb.WriteByte(hexDigits[b>>4])
		sb.WriteByte(hexDigits[b&0x0f])
	}
	return sb.String()
}

// FromKeyIdentifier normalizes the printed value of a subject or authority
// key identifier extension. The legacy "keyid:" label is removed and
// anything after the first line break (issuer name, serial) is dropped.
func FromKeyIdentifier(value string) string {
	value = strings.TrimSpace(value)
	if idx := strings.Index(value, keyIDLabel); idx >= 0 {
		value = value[idx+len(keyIDLabel):]
	}
	if idx := strings.IndexAny(value, "\r\n"); idx >= 0 {
		value = value[:idx]
	}
	return sanitize(strings.TrimSpace(value))
}

// ForSubject returns the index key of a certificate: its subject key
// identifier when present, otherwise its subject DN. ok is false when
// neither can be derived.
func ForSubject(cert *x509.Certificate) (key string, ok bool) {
	if len(cert.SubjectKeyId) > 0 {
		return sanitize(FormatKeyID(cert.SubjectKeyId)), true
	}
	key = FromName(cert.Subject)
	return key, key != ""
}

// ForIssuer returns the candidate keys under which the issuer of cert
// may be indexed, in preference order: authority key identifier first,
// then the issuer DN.
func ForIssuer(cert *x509.Certificate) []string {
	var keys []string
	if len(cert.AuthorityKeyId) > 0 {
		keys = append(keys, sanitize(FormatKeyID(cert.AuthorityKeyId)))
	}
	if dn := FromName(cert.Issuer); dn != "" {
		keys = append(keys, dn)
	}
	return keys
}

func sanitize(s string) string {
	return strings.ReplaceAll(s, pathSeparator, pathPlaceholder)
}
