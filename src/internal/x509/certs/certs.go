// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/cloudflare/cfssl/crypto/pkcs7"
)

var (
	// ErrInvalidPEMBlock indicates that the provided data does not contain a valid PEM block.
	ErrInvalidPEMBlock = errors.New("x509certs: invalid PEM block")

	// ErrInvalidBlockType indicates that the PEM block type is not the expected certificate type.
	ErrInvalidBlockType = errors.New("x509certs: invalid block type")

	// ErrParseCertificate indicates a failure to parse the certificate from the provided data.
	ErrParseCertificate = errors.New("x509certs: failed to parse certificate")

	// ErrParsePKCS7 indicates a failure to parse PKCS7 formatted data.
	ErrParsePKCS7 = errors.New("x509certs: failed to parse PKCS7 data")

	// ErrNoCertificatesInPKCS indicates that no certificates were found in the PKCS7 data.
	ErrNoCertificatesInPKCS = errors.New("x509certs: no certificates found in PKCS7 data")

	// ErrNoCertificates indicates that a bundle holds no certificate at all.
	ErrNoCertificates = errors.New("x509certs: no certificates found")
)

// Certificate provides methods to decode and encode [X.509] certificates.
// It maintains internal configuration such as the certificate block type.
//
// [X.509]: https://en.wikipedia.org/wiki/X.509
type Certificate struct {
	certBlockType string
}

// New creates a new Certificate with default settings.
func New() *Certificate {
	return &Certificate{
		certBlockType: "CERTIFICATE",
	}
}

// IsPEM checks if the data is in PEM format.
func (c *Certificate) IsPEM(data []byte) bool {
	block, _ := pem.Decode(data)
	return block != nil
}

// decodePEMBlock decodes a PEM block and checks its type.
func (c *Certificate) decodePEMBlock(data []byte) (*pem.Block, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEMBlock
	}
	if block.Type != c.certBlockType {
		return nil, ErrInvalidBlockType
	}
	return block, nil
}

// Block is a decoded certificate together with the PEM text it came from.
type Block struct {
	Cert *x509.Certificate
	PEM  []byte
}

// pemBegin opens every PEM block.
var pemBegin = []byte("-----BEGIN ")

// DecodeMultiple decodes every certificate in a CA bundle.
//
// PEM bundles may carry comments between blocks, as distribution bundles
// do. DER input is read as concatenated certificates and, failing that, as
// a PKCS#7 container. Decoding is all or nothing: the first certificate that
// cannot be parsed fails the whole bundle, and the error names its position.
func (c *Certificate) DecodeMultiple(data []byte) ([]*x509.Certificate, error) {
	blocks, err := c.DecodeBlocks(data)
	if err != nil {
		return nil, err
	}

	certs := make([]*x509.Certificate, len(blocks))
	for i, b := range blocks {
		certs[i] = b.Cert
	}
	return certs, nil
}

// DecodeBlocks decodes a bundle like [Certificate.DecodeMultiple] and keeps
// the source of every PEM block byte for byte, from its BEGIN line through
// the line ending of its END line. Certificates read from DER or PKCS#7
// input have no source text and carry their [Certificate.EncodePEM] form.
func (c *Certificate) DecodeBlocks(data []byte) ([]Block, error) {
	if c.IsPEM(data) {
		return c.decodePEMBundle(data)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrNoCertificates
	}

	certs, err := x509.ParseCertificates(data)
	if err != nil || len(certs) == 0 {
		var perr error
		certs, perr = c.decodePKCS7(data)
		if errors.Is(perr, ErrParsePKCS7) {
			return nil, fmt.Errorf("%w: %v", ErrParseCertificate, err)
		}
		if perr != nil {
			return nil, perr
		}
	}

	blocks := make([]Block, len(certs))
	for i, cert := range certs {
		blocks[i] = Block{Cert: cert, PEM: c.EncodePEM(cert)}
	}
	return blocks, nil
}

func (c *Certificate) decodePEMBundle(data []byte) ([]Block, error) {
	var blocks []Block

	for index := 0; ; index++ {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}
		source := blockSource(data[:len(data)-len(rest)])
		data = rest

		if block.Type != c.certBlockType {
			return nil, fmt.Errorf("%w: block %d is %q", ErrInvalidBlockType, index, block.Type)
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: block %d: %v", ErrParseCertificate, index, err)
		}

		blocks = append(blocks, Block{Cert: cert, PEM: source})
	}

	if len(blocks) == 0 {
		return nil, ErrNoCertificates
	}
	return blocks, nil
}

// blockSource cuts the text pem.Decode consumed down to the block itself.
// Comments and blank lines before the BEGIN line are dropped.
func blockSource(consumed []byte) []byte {
	if i := bytes.LastIndex(consumed, pemBegin); i > 0 {
		consumed = consumed[i:]
	}
	return bytes.Clone(consumed)
}

func (c *Certificate) decodePKCS7(data []byte) ([]*x509.Certificate, error) {
	p, err := pkcs7.ParsePKCS7(data)
	if err != nil {
		return nil, ErrParsePKCS7
	}
	if len(p.Content.SignedData.Certificates) == 0 {
		return nil, ErrNoCertificatesInPKCS
	}
	return p.Content.SignedData.Certificates, nil
}

// Decode decodes a single certificate from data.
func (c *Certificate) Decode(data []byte) (*x509.Certificate, error) {
	if c.IsPEM(data) {
		block, err := c.decodePEMBlock(data)
		if err != nil {
			return nil, err
		}

		data = block.Bytes
	}

	cert, err := x509.ParseCertificate(data)
	if err == nil {
		return cert, nil
	}

	certs, perr := c.decodePKCS7(data)
	if errors.Is(perr, ErrParsePKCS7) {
		return nil, fmt.Errorf("%w: %v", ErrParseCertificate, err)
	}
	if perr != nil {
		return nil, perr
	}
	return certs[0], nil
}

// EncodePEM encodes a certificate to PEM format.
func (c *Certificate) EncodePEM(cert *x509.Certificate) []byte {
	block := pem.Block{
		Type:  c.certBlockType,
		Bytes: cert.Raw,
	}
	return pem.EncodeToMemory(&block)
}

// EncodeMultiplePEM encodes multiple certificates to PEM format.
func (c *Certificate) EncodeMultiplePEM(certs []*x509.Certificate) []byte {
	var data []byte

	for _, cert := range certs {
		data = append(data, c.EncodePEM(cert)...)
	}

	return data
}
