// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package trustindex

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
)

var (
	// ErrBundleNotFound is returned when no CA bundle can be located.
	ErrBundleNotFound = errors.New("trustindex: no CA bundle found")

	// ErrChecksumMismatch is returned when a bundle does not match its pinned digest.
	ErrChecksumMismatch = errors.New("trustindex: bundle checksum mismatch")

	// ErrSignature is returned when a bundle signature cannot be verified.
	ErrSignature = errors.New("trustindex: bundle signature verification failed")

	// ErrSignaturePair is returned when only one of a signature and a keyring
	// is given.
	ErrSignaturePair = errors.New("trustindex: signature and keyring must be given together")
)

// BundleEnv names the environment variable that overrides bundle discovery.
const BundleEnv = "SSL_CERT_FILE"

// wellKnownBundles are the CA bundle locations of common platforms.
var wellKnownBundles = []string{
	"/etc/ssl/certs/ca-certificates.crt",                // Debian, Ubuntu, Gentoo, Arch
	"/etc/pki/tls/certs/ca-bundle.crt",                  // Fedora, RHEL 6
	"/etc/ssl/ca-bundle.pem",                            // openSUSE
	"/etc/pki/tls/cacert.pem",                           // OpenELEC
	"/etc/pki/ca-trust/extracted/pem/tls-ca-bundle.pem", // CentOS, RHEL 7
	"/etc/ssl/cert.pem",                                 // Alpine, macOS, FreeBSD
	"/usr/local/etc/ssl/cert.pem",                       // FreeBSD ports
}

// FindBundle locates the CA bundle: the file named by SSL_CERT_FILE, then the
// first well-known platform bundle that exists.
func FindBundle() (string, error) {
	if path := os.Getenv(BundleEnv); path != "" {
		if isFile(path) {
			return path, nil
		}
		return "", fmt.Errorf("%w: %s=%s is not a file", ErrBundleNotFound, BundleEnv, path)
	}

	for _, path := range wellKnownBundles {
		if isFile(path) {
			return path, nil
		}
	}
	return "", ErrBundleNotFound
}

// BundleSource names a CA bundle and the checks it must pass before it is
// indexed. Empty fields skip their check.
type BundleSource struct {
	Path      string // Bundle file; empty means [FindBundle]
	SHA256    string // Hex digest pin
	Signature string // Detached OpenPGP signature file
	Keyring   string // OpenPGP public keyring file
}

// VerifiedBundle is a bundle that passed the checks of its [BundleSource].
type VerifiedBundle struct {
	Path   string
	Data   []byte
	Signer string // Primary key fingerprint, empty when unsigned
}

// ReadBundle locates, reads and checks the bundle described by src.
func ReadBundle(src BundleSource) (*VerifiedBundle, error) {
	if (src.Signature == "") != (src.Keyring == "") {
		return nil, ErrSignaturePair
	}

	path := src.Path
	if path == "" {
		found, err := FindBundle()
		if err != nil {
			return nil, err
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("trustindex: read bundle: %w", err)
	}
	bundle := &VerifiedBundle{Path: path, Data: data}

	if src.SHA256 != "" {
		if err := VerifyChecksum(data, src.SHA256); err != nil {
			return nil, err
		}
	}
	if src.Signature == "" {
		return bundle, nil
	}

	sig, err := os.ReadFile(src.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: read signature: %w", ErrSignature, err)
	}
	keyring, err := os.ReadFile(src.Keyring)
	if err != nil {
		return nil, fmt.Errorf("%w: read keyring: %w", ErrSignature, err)
	}
	if bundle.Signer, err = VerifyBundleSignature(data, sig, keyring); err != nil {
		return nil, err
	}
	return bundle, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// VerifyChecksum checks bundle against a hex SHA-256 digest. Colons and
// surrounding space in the pin are ignored.
func VerifyChecksum(bundle []byte, pin string) error {
	pin = strings.ReplaceAll(strings.TrimSpace(pin), ":", "")
	want, err := hex.DecodeString(pin)
	if err != nil || len(want) != sha256.Size {
		return fmt.Errorf("%w: pin %q is not a SHA-256 digest", ErrChecksumMismatch, pin)
	}

	got := sha256.Sum256(bundle)
	if subtle.ConstantTimeCompare(got[:], want) != 1 {
		return fmt.Errorf("%w: got %x", ErrChecksumMismatch, got)
	}
	return nil
}

// armoredSignaturePrefix starts every ASCII-armored OpenPGP signature.
const armoredSignaturePrefix = "-----BEGIN PGP SIGNATURE"

// VerifyBundleSignature checks a detached OpenPGP signature over bundle.
// Both the signature and the keyring may be ASCII-armored or binary. It
// returns the primary key fingerprint of the signer.
func VerifyBundleSignature(bundle, signature, keyring []byte) (string, error) {
	keys, err := readKeyRing(keyring)
	if err != nil {
		return "", err
	}

	var signer *openpgp.Entity
	if bytes.HasPrefix(bytes.TrimSpace(signature), []byte(armoredSignaturePrefix)) {
		signer, err = openpgp.CheckArmoredDetachedSignature(keys, bytes.NewReader(bundle), bytes.NewReader(signature), nil)
	} else {
		signer, err = openpgp.CheckDetachedSignature(keys, bytes.NewReader(bundle), bytes.NewReader(signature), nil)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSignature, err)
	}
	if signer == nil || signer.PrimaryKey == nil {
		return "", nil
	}
	return strings.ToUpper(hex.EncodeToString(signer.PrimaryKey.Fingerprint)), nil
}

func readKeyRing(keyring []byte) (openpgp.EntityList, error) {
	keys, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(keyring))
	if err != nil {
		// Try reading as binary
		keys, err = openpgp.ReadKeyRing(bytes.NewReader(keyring))
		if err != nil {
			return nil, fmt.Errorf("%w: read keyring: %v", ErrSignature, err)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: keyring holds no keys", ErrSignature)
	}
	return keys, nil
}
