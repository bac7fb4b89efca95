// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package attributes

import (
	"crypto/x509/pkix"
	encasn1 "encoding/asn1"
	"errors"
	"fmt"
	"net"
	"strings"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/identifier"
)

// OpenSSL short names of the extensions with a dedicated decoder.
const (
	NameSubjectKeyIdentifier   = "subjectKeyIdentifier"
	NameAuthorityKeyIdentifier = "authorityKeyIdentifier"
	NameBasicConstraints       = "basicConstraints"
	NameKeyUsage               = "keyUsage"
	NameExtendedKeyUsage       = "extendedKeyUsage"
	NameSubjectAltName         = "subjectAltName"
	NameCertificatePolicies    = "certificatePolicies"
	NameCRLDistributionPoints  = "crlDistributionPoints"
	NameAuthorityInfoAccess    = "authorityInfoAccess"
	NameNameConstraints        = "nameConstraints"
)

const keyIDPrefix = "keyid:"

// ErrMalformedExtension is reported for an extension whose value does not
// match its ASN.1 definition.
var ErrMalformedExtension = errors.New("attributes: malformed extension")

// extensionNames maps extension OIDs to OpenSSL short names.
var extensionNames = map[string]string{
	"2.5.29.14":               NameSubjectKeyIdentifier,
	"2.5.29.35":               NameAuthorityKeyIdentifier,
	"2.5.29.19":               NameBasicConstraints,
	"2.5.29.15":               NameKeyUsage,
	"2.5.29.37":               NameExtendedKeyUsage,
	"2.5.29.17":               NameSubjectAltName,
	"2.5.29.18":               "issuerAltName",
	"2.5.29.32":               NameCertificatePolicies,
	"2.5.29.31":               NameCRLDistributionPoints,
	"2.5.29.46":               "freshestCRL",
	"2.5.29.30":               NameNameConstraints,
	"2.5.29.36":               "policyConstraints",
	"2.5.29.54":               "inhibitAnyPolicy",
	"1.3.6.1.5.5.7.1.1":       NameAuthorityInfoAccess,
	"1.3.6.1.5.5.7.1.11":      "subjectInfoAccess",
	"1.3.6.1.5.5.7.1.24":      "tlsfeature",
	"1.3.6.1.4.1.11129.2.4.2": "ct_precert_scts",
	"1.3.6.1.4.1.11129.2.4.3": "ct_precert_poison",
}

// ExtensionName returns the OpenSSL short name of an extension, or its
// dotted OID when it has none.
func ExtensionName(oid encasn1.ObjectIdentifier) string {
	s := oid.String()
	if name, ok := extensionNames[s]; ok {
		return name
	}
	return s
}

// decoders is the closed set of structured decoders. Every other extension
// is rendered by decodeOpaque.
var decoders = map[string]func(cryptobyte.String) (string, error){
	NameSubjectKeyIdentifier:   decodeSubjectKeyID,
	NameAuthorityKeyIdentifier: decodeAuthorityKeyID,
	NameBasicConstraints:       decodeBasicConstraints,
	NameKeyUsage:               decodeKeyUsage,
	NameExtendedKeyUsage:       decodeExtKeyUsage,
	NameSubjectAltName:         decodeGeneralNamesExt,
	"issuerAltName":            decodeGeneralNamesExt,
	NameCertificatePolicies:    decodePolicies,
	NameCRLDistributionPoints:  decodeCRLDistributionPoints,
	"freshestCRL":              decodeCRLDistributionPoints,
	NameAuthorityInfoAccess:    decodeInfoAccess,
	"subjectInfoAccess":        decodeInfoAccess,
}

func decodeExtension(ext pkix.Extension) (string, error) {
	decode, ok := decoders[ExtensionName(ext.Id)]
	if !ok {
		return decodeOpaque(ext.Value), nil
	}
	return decode(cryptobyte.String(ext.Value))
}

func malformed(what string) error {
	return fmt.Errorf("%w: %s", ErrMalformedExtension, what)
}

// decodeOpaque renders raw extension bytes as colon-separated hex.
func decodeOpaque(value []byte) string {
	return identifier.FormatKeyID(value)
}

func decodeSubjectKeyID(s cryptobyte.String) (string, error) {
	var id cryptobyte.String
	if !s.ReadASN1(&id, asn1.OCTET_STRING) || !s.Empty() {
		return "", malformed("subject key identifier")
	}
	return identifier.FormatKeyID(id), nil
}

// decodeAuthorityKeyID renders one line per present field, keyid first.
func decodeAuthorityKeyID(s cryptobyte.String) (string, error) {
	var (
		seq                   cryptobyte.String
		keyID, names, serial  cryptobyte.String
		hasID, hasNames, hasS bool
	)
	if !s.ReadASN1(&seq, asn1.SEQUENCE) || !s.Empty() ||
		!seq.ReadOptionalASN1(&keyID, &hasID, asn1.Tag(0).ContextSpecific()) ||
		!seq.ReadOptionalASN1(&names, &hasNames, asn1.Tag(1).ContextSpecific().Constructed()) ||
		!seq.ReadOptionalASN1(&serial, &hasS, asn1.Tag(2).ContextSpecific()) ||
		!seq.Empty() {
		return "", malformed("authority key identifier")
	}

	var lines []string
	if hasID {
		lines = append(lines, keyIDPrefix+identifier.FormatKeyID(keyID))
	}
	if hasNames {
		rendered, err := generalNames(names)
		if err != nil {
			return "", err
		}
		lines = append(lines, rendered...)
	}
	if hasS {
		lines = append(lines, "serial:"+identifier.FormatKeyID(serial))
	}
	return strings.Join(lines, "\n"), nil
}

func decodeBasicConstraints(s cryptobyte.String) (string, error) {
	var (
		seq     cryptobyte.String
		isCA    bool
		pathLen int64
	)
	if !s.ReadASN1(&seq, asn1.SEQUENCE) || !s.Empty() ||
		!seq.ReadOptionalASN1Boolean(&isCA, asn1.BOOLEAN, false) {
		return "", malformed("basic constraints")
	}

	out := "CA:FALSE"
	if isCA {
		out = "CA:TRUE"
	}
	if seq.PeekASN1Tag(asn1.INTEGER) {
		if !seq.ReadASN1Integer(&pathLen) {
			return "", malformed("basic constraints path length")
		}
		out += fmt.Sprintf(", pathlen:%d", pathLen)
	}
	if !seq.Empty() {
		return "", malformed("basic constraints")
	}
	return out, nil
}

var keyUsageNames = []string{
	"Digital Signature",
	"Non Repudiation",
	"Key Encipherment",
	"Data Encipherment",
	"Key Agreement",
	"Certificate Sign",
	"CRL Sign",
	"Encipher Only",
	"Decipher Only",
}

func decodeKeyUsage(s cryptobyte.String) (string, error) {
	var bits encasn1.BitString
	if !s.ReadASN1BitString(&bits) || !s.Empty() {
		return "", malformed("key usage")
	}

	var names []string
	for i, name := range keyUsageNames {
		if bits.At(i) == 1 {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", "), nil
}

var extKeyUsageNames = map[string]string{
	"2.5.29.37.0":             "Any Extended Key Usage",
	"1.3.6.1.5.5.7.3.1":       "TLS Web Server Authentication",
	"1.3.6.1.5.5.7.3.2":       "TLS Web Client Authentication",
	"1.3.6.1.5.5.7.3.3":       "Code Signing",
	"1.3.6.1.5.5.7.3.4":       "E-mail Protection",
	"1.3.6.1.5.5.7.3.8":       "Time Stamping",
	"1.3.6.1.5.5.7.3.9":       "OCSP Signing",
	"1.3.6.1.4.1.311.10.3.3":  "Microsoft Server Gated Crypto",
	"2.16.840.1.113730.4.1":   "Netscape Server Gated Crypto",
	"1.3.6.1.4.1.11129.2.4.4": "CT Precertificate Signer",
}

func decodeExtKeyUsage(s cryptobyte.String) (string, error) {
	var seq cryptobyte.String
	if !s.ReadASN1(&seq, asn1.SEQUENCE) || !s.Empty() {
		return "", malformed("extended key usage")
	}

	var names []string
	for !seq.Empty() {
		var oid encasn1.ObjectIdentifier
		if !seq.ReadASN1ObjectIdentifier(&oid) {
			return "", malformed("extended key usage")
		}
		name, ok := extKeyUsageNames[oid.String()]
		if !ok {
			name = oid.String()
		}
		names = append(names, name)
	}
	return strings.Join(names, ", "), nil
}

func decodeGeneralNamesExt(s cryptobyte.String) (string, error) {
	var seq cryptobyte.String
	if !s.ReadASN1(&seq, asn1.SEQUENCE) || !s.Empty() {
		return "", malformed("general names")
	}
	names, err := generalNames(seq)
	if err != nil {
		return "", err
	}
	return strings.Join(names, ", "), nil
}

const (
	qualifierCPS        = "1.3.6.1.5.5.7.2.1"
	qualifierUserNotice = "1.3.6.1.5.5.7.2.2"
)

func decodePolicies(s cryptobyte.String) (string, error) {
	var seq cryptobyte.String
	if !s.ReadASN1(&seq, asn1.SEQUENCE) || !s.Empty() {
		return "", malformed("certificate policies")
	}

	var lines []string
	for !seq.Empty() {
		var (
			info       cryptobyte.String
			policy     encasn1.ObjectIdentifier
			qualifiers cryptobyte.String
			hasQuals   bool
		)
		if !seq.ReadASN1(&info, asn1.SEQUENCE) ||
			!info.ReadASN1ObjectIdentifier(&policy) ||
			!info.ReadOptionalASN1(&qualifiers, &hasQuals, asn1.SEQUENCE) ||
			!info.Empty() {
			return "", malformed("policy information")
		}
		lines = append(lines, "Policy: "+policy.String())

		for hasQuals && !qualifiers.Empty() {
			var (
				q  cryptobyte.String
				id encasn1.ObjectIdentifier
			)
			if !qualifiers.ReadASN1(&q, asn1.SEQUENCE) || !q.ReadASN1ObjectIdentifier(&id) {
				return "", malformed("policy qualifier")
			}
			switch id.String() {
			case qualifierCPS:
				var uri cryptobyte.String
				if !q.ReadASN1(&uri, asn1.IA5String) {
					return "", malformed("CPS qualifier")
				}
				lines = append(lines, "  CPS: "+string(uri))
			case qualifierUserNotice:
				lines = append(lines, "  User Notice")
			default:
				lines = append(lines, "  Qualifier: "+id.String())
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

func decodeCRLDistributionPoints(s cryptobyte.String) (string, error) {
	var seq cryptobyte.String
	if !s.ReadASN1(&seq, asn1.SEQUENCE) || !s.Empty() {
		return "", malformed("CRL distribution points")
	}

	var lines []string
	for !seq.Empty() {
		var (
			dp, dpName cryptobyte.String
			hasName    bool
		)
		if !seq.ReadASN1(&dp, asn1.SEQUENCE) ||
			!dp.ReadOptionalASN1(&dpName, &hasName, asn1.Tag(0).ContextSpecific().Constructed()) {
			return "", malformed("distribution point")
		}
		if !hasName {
			continue
		}

		var (
			full    cryptobyte.String
			hasFull bool
		)
		if !dpName.ReadOptionalASN1(&full, &hasFull, asn1.Tag(0).ContextSpecific().Constructed()) {
			return "", malformed("distribution point name")
		}
		if !hasFull {
			lines = append(lines, "Relative Name")
			continue
		}

		names, err := generalNames(full)
		if err != nil {
			return "", err
		}
		lines = append(lines, "Full Name:")
		for _, n := range names {
			lines = append(lines, "  "+n)
		}
	}
	return strings.Join(lines, "\n"), nil
}

var accessMethodNames = map[string]string{
	"1.3.6.1.5.5.7.48.1": "OCSP",
	"1.3.6.1.5.5.7.48.2": "CA Issuers",
	"1.3.6.1.5.5.7.48.5": "CA Repository",
}

func decodeInfoAccess(s cryptobyte.String) (string, error) {
	var seq cryptobyte.String
	if !s.ReadASN1(&seq, asn1.SEQUENCE) || !s.Empty() {
		return "", malformed("information access")
	}

	var lines []string
	for !seq.Empty() {
		var (
			desc     cryptobyte.String
			method   encasn1.ObjectIdentifier
			location cryptobyte.String
			tag      asn1.Tag
		)
		if !seq.ReadASN1(&desc, asn1.SEQUENCE) ||
			!desc.ReadASN1ObjectIdentifier(&method) ||
			!desc.ReadAnyASN1(&location, &tag) ||
			!desc.Empty() {
			return "", malformed("access description")
		}
		name, ok := accessMethodNames[method.String()]
		if !ok {
			name = method.String()
		}
		rendered, err := generalName(tag, location)
		if err != nil {
			return "", err
		}
		lines = append(lines, name+" - "+rendered)
	}
	return strings.Join(lines, "\n"), nil
}

// generalNames renders every GeneralName in seq.
func generalNames(seq cryptobyte.String) ([]string, error) {
	var out []string
	for !seq.Empty() {
		var (
			value cryptobyte.String
			tag   asn1.Tag
		)
		if !seq.ReadAnyASN1(&value, &tag) {
			return nil, malformed("general name")
		}
		rendered, err := generalName(tag, value)
		if err != nil {
			return nil, err
		}
		out = append(out, rendered)
	}
	return out, nil
}

var (
	tagOtherName     = asn1.Tag(0).ContextSpecific().Constructed()
	tagRFC822Name    = asn1.Tag(1).ContextSpecific()
	tagDNSName       = asn1.Tag(2).ContextSpecific()
	tagDirectoryName = asn1.Tag(4).ContextSpecific().Constructed()
	tagURI           = asn1.Tag(6).ContextSpecific()
	tagIPAddress     = asn1.Tag(7).ContextSpecific()
	tagRegisteredID  = asn1.Tag(8).ContextSpecific()
)

// generalName renders a single GeneralName the way OpenSSL prints it.
func generalName(tag asn1.Tag, value cryptobyte.String) (string, error) {
	switch tag {
	case tagOtherName:
		return "othername:<unsupported>", nil
	case tagRFC822Name:
		return "email:" + string(value), nil
	case tagDNSName:
		return "DNS:" + string(value), nil
	case tagURI:
		return "URI:" + string(value), nil
	case tagIPAddress:
		if len(value) != net.IPv4len && len(value) != net.IPv6len {
			return "", malformed("IP address")
		}
		return "IP Address:" + net.IP(value).String(), nil
	case tagDirectoryName:
		var rdns pkix.RDNSequence
		rest, err := encasn1.Unmarshal(value, &rdns)
		if err != nil || len(rest) > 0 {
			return "", malformed("directory name")
		}
		var name pkix.Name
		name.FillFromRDNSequence(&rdns)
		return "DirName:" + identifier.DisplayName(name), nil
	case tagRegisteredID:
		oid, ok := implicitOID(value)
		if !ok {
			return "", malformed("registered ID")
		}
		return "Registered ID:" + oid.String(), nil
	}
	return "<unsupported>", nil
}

// implicitOID decodes the contents of an implicitly tagged OBJECT IDENTIFIER.
func implicitOID(value cryptobyte.String) (encasn1.ObjectIdentifier, bool) {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(asn1.OBJECT_IDENTIFIER, func(b *cryptobyte.Builder) {
		b.AddBytes(value)
	})
	raw, err := b.Bytes()
	if err != nil {
		return nil, false
	}
	var oid encasn1.ObjectIdentifier
	s := cryptobyte.String(raw)
	ok := s.ReadASN1ObjectIdentifier(&oid)
	return oid, ok
}
