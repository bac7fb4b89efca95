// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package trustindex

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	x509certs "github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/identifier"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/logger"
)

var (
	// ErrEmptyBundle is returned when the bundle holds no certificate.
	ErrEmptyBundle = errors.New("trustindex: empty CA bundle")

	// ErrBundleParse is returned when any certificate in the bundle cannot be parsed.
	ErrBundleParse = errors.New("trustindex: cannot parse CA bundle")
)

// BuildResult summarizes a build.
type BuildResult struct {
	Certificates int      `json:"certificates"` // Certificates read from the bundle
	Written      int      `json:"written"`      // Entries created or changed
	Unchanged    int      `json:"unchanged"`    // Entries already holding the same PEM
	Duplicates   int      `json:"duplicates"`   // Certificates whose key was already taken
	Skipped      int      `json:"skipped"`      // Certificates with neither SKID nor subject
	Pruned       int      `json:"pruned"`       // Stale entries removed
	BySKID       int      `json:"bySkid"`       // Entries keyed by subject key identifier
	ByDN         int      `json:"byDn"`         // Entries keyed by subject DN
	Keys         []string `json:"keys"`         // Keys of the bundle, in bundle order
}

// pendingEntry is a decoded certificate waiting to be written.
type pendingEntry struct {
	pem   []byte
	bySKI bool
}

// Builder populates a trust index from a CA bundle.
type Builder struct {
	// Index receives the entries.
	Index Index

	// Prune removes entries whose key no longer occurs in the bundle.
	Prune bool

	// Logger reports progress. Nil means silent.
	Logger logger.Logger
}

// NewBuilder returns a builder writing into index.
func NewBuilder(index Index, log logger.Logger) *Builder {
	return &Builder{Index: index, Logger: log}
}

// Build decodes every certificate in bundle and stores its PEM block,
// byte for byte as it appears in the bundle, under its identifier: the
// subject key identifier when present and the subject DN otherwise.
//
// A build is all or nothing. The whole bundle is decoded and every key is
// checked against the index before anything is written, and a write that
// fails midway restores the entries already touched. When two certificates
// map to the same key the later one wins. Building the same bundle twice
// yields the same index.
func (b *Builder) Build(ctx context.Context, bundle []byte) (*BuildResult, error) {
	log := b.Logger
	if log == nil {
		log = logger.NewMCPLogger(nil, true)
	}

	if len(bytes.TrimSpace(bundle)) == 0 {
		return nil, ErrEmptyBundle
	}

	blocks, err := x509certs.New().DecodeBlocks(bundle)
	switch {
	case errors.Is(err, x509certs.ErrNoCertificates):
		return nil, ErrEmptyBundle
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrBundleParse, err)
	}

	result := &BuildResult{Certificates: len(blocks)}
	entries := make(map[string]pendingEntry, len(blocks))
	for _, block := range blocks {
		cert := block.Cert
		key, ok := identifier.ForSubject(cert)
		if !ok {
			result.Skipped++
			log.Printf("Skipping certificate without identifier (serial %s)", cert.SerialNumber)
			continue
		}
		if err := CheckKey(b.Index, key); err != nil {
			return nil, fmt.Errorf("trustindex: cannot index %s: %w", identifier.DisplayName(cert.Subject), err)
		}
		if _, dup := entries[key]; dup {
			result.Duplicates++
			log.Printf("Duplicate key %s, keeping the later certificate", key)
		} else {
			result.Keys = append(result.Keys, key)
		}
		entries[key] = pendingEntry{pem: block.PEM, bySKI: len(cert.SubjectKeyId) > 0}
	}

	j := &journal{index: b.Index}
	if err := b.write(ctx, entries, result, j); err != nil {
		return nil, j.rollback(err, log)
	}
	if b.Prune {
		if err := b.prune(ctx, entries, result, j, log); err != nil {
			return nil, j.rollback(err, log)
		}
	}

	log.Printf("Trust index built: %d certificates, %d written, %d unchanged, %d duplicates, %d skipped, %d pruned",
		result.Certificates, result.Written, result.Unchanged, result.Duplicates, result.Skipped, result.Pruned)
	return result, nil
}

func (b *Builder) write(ctx context.Context, entries map[string]pendingEntry, result *BuildResult, j *journal) error {
	for _, key := range result.Keys {
		if err := ctx.Err(); err != nil {
			return err
		}

		e := entries[key]
		if e.bySKI {
			result.BySKID++
		} else {
			result.ByDN++
		}

		existing, err := b.Index.Get(key)
		switch {
		case err == nil && bytes.Equal(existing, e.pem):
			result.Unchanged++
			continue
		case err != nil && !errors.Is(err, ErrNotFound):
			return err
		}

		if err := b.Index.Put(key, e.pem); err != nil {
			return err
		}
		j.record(key, existing)
		result.Written++
	}
	return nil
}

func (b *Builder) prune(ctx context.Context, keep map[string]pendingEntry, result *BuildResult, j *journal, log logger.Logger) error {
	keys, err := b.Index.Keys()
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := keep[key]; ok {
			continue
		}
		existing, err := b.Index.Get(key)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := b.Index.Delete(key); err != nil {
			return err
		}
		j.record(key, existing)
		log.Printf("Pruned stale entry %s", key)
		result.Pruned++
	}
	return nil
}

// journal remembers what each key held before the build touched it.
type journal struct {
	index Index
	keys  []string
	prior map[string][]byte // nil means the key was absent
}

func (j *journal) record(key string, existing []byte) {
	if j.prior == nil {
		j.prior = make(map[string][]byte)
	}
	if _, seen := j.prior[key]; seen {
		return
	}
	j.keys = append(j.keys, key)
	j.prior[key] = existing
}

// rollback puts every touched key back, newest first, and returns cause
// joined with any error met on the way.
func (j *journal) rollback(cause error, log logger.Logger) error {
	errs := []error{cause}
	for i := len(j.keys) - 1; i >= 0; i-- {
		key := j.keys[i]
		var err error
		if prior := j.prior[key]; prior != nil {
			err = j.index.Put(key, prior)
		} else {
			err = j.index.Delete(key)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("trustindex: restore %q: %w", key, err))
		}
	}
	if len(j.keys) > 0 {
		log.Printf("Build failed, restored %d entries: %v", len(j.keys), cause)
	}
	return errors.Join(errs...)
}
