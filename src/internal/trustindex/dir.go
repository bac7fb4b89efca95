// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package trustindex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/helper/gc"
)

const (
	dirMode  = 0o755
	fileMode = 0o644

	// tempPrefix marks files that are still being written.
	tempPrefix = ".tmp-"

	// maxNameLen is the file name limit of common filesystems, in bytes.
	maxNameLen = 255
)

// DirStore is an [Index] kept as one file per entry in a directory. The
// file name is the key and the content is the PEM certificate.
//
// Writes go to a temporary file in the same directory that is renamed over
// the entry, so readers never see a partial certificate.
type DirStore struct {
	dir string
}

// NewDirStore returns a store rooted at dir. The directory is created on
// the first write.
func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: filepath.Clean(dir)}
}

// Dir returns the directory the store is rooted at.
func (d *DirStore) Dir() string { return d.dir }

// Exists reports whether the index directory is present.
func (d *DirStore) Exists() bool {
	info, err := os.Stat(d.dir)
	return err == nil && info.IsDir()
}

// CheckKey reports whether key can be used as a file name in the store
// directory.
func (d *DirStore) CheckKey(key string) error {
	switch {
	case !ValidKey(key), strings.HasPrefix(key, tempPrefix):
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	case strings.ContainsRune(key, os.PathSeparator):
		return fmt.Errorf("%w: %q holds a path separator", ErrInvalidKey, key)
	case len(key) > maxNameLen:
		return fmt.Errorf("%w: %q is longer than %d bytes", ErrInvalidKey, key, maxNameLen)
	}
	return nil
}

// Get reads the entry stored under key.
func (d *DirStore) Get(key string) ([]byte, error) {
	if d.CheckKey(key) != nil {
		return nil, ErrNotFound
	}

	f, err := os.Open(filepath.Join(d.dir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("trustindex: open %q: %w", key, err)
	}
	defer f.Close()

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	if _, err := buf.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("trustindex: read %q: %w", key, err)
	}
	return slices.Clone(buf.Bytes()), nil
}

// Has reports whether an entry exists under key.
func (d *DirStore) Has(key string) (bool, error) {
	if d.CheckKey(key) != nil {
		return false, nil
	}

	info, err := os.Stat(filepath.Join(d.dir, key))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("trustindex: stat %q: %w", key, err)
	}
	return info.Mode().IsRegular(), nil
}

// Put atomically replaces the entry under key.
func (d *DirStore) Put(key string, pem []byte) error {
	if err := d.CheckKey(key); err != nil {
		return err
	}
	if err := os.MkdirAll(d.dir, dirMode); err != nil {
		return fmt.Errorf("trustindex: create %s: %w", d.dir, err)
	}

	tmp, err := os.CreateTemp(d.dir, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("trustindex: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(pem); err != nil {
		tmp.Close()
		return fmt.Errorf("trustindex: write %q: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("trustindex: sync %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("trustindex: close %q: %w", key, err)
	}
	if err := os.Chmod(tmpName, fileMode); err != nil {
		return fmt.Errorf("trustindex: chmod %q: %w", key, err)
	}
	if err := os.Rename(tmpName, filepath.Join(d.dir, key)); err != nil {
		return fmt.Errorf("trustindex: rename %q: %w", key, err)
	}
	committed = true
	return nil
}

// Delete removes the entry under key. A missing entry is not an error.
func (d *DirStore) Delete(key string) error {
	if err := d.CheckKey(key); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(d.dir, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("trustindex: remove %q: %w", key, err)
	}
	return nil
}

// Keys lists every entry in sorted order. A missing directory holds no keys.
func (d *DirStore) Keys() ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("trustindex: list %s: %w", d.dir, err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		keys = append(keys, e.Name())
	}
	return keys, nil
}
