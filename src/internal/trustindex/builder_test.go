// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package trustindex_test

import (
	"bytes"
	"context"
	"crypto/x509/pkix"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/trustindex"
	x509certs "github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/identifier"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/x509test"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/logger"
)

const brokenCertPEM = `
-----BEGIN CERTIFICATE-----
MIIBIjANBgkqhkiG9w0BAQEFAAOCAQ8AMIIBCgKCAQEAz6e5VV5F8rF2sFJ0Q4vA
-----END CERTIFICATE-----
`

func TestBuilderBuild(t *testing.T) {
	root := x509test.NewRoot(t, "Builder Root")
	other := x509test.NewRoot(t, "Builder Other Root")
	dnOnly := root.NewLeaf(t, "Builder DN Only", x509test.NotCA())
	bundle := x509test.Bundle(root, other, dnOnly)

	tests := []struct {
		name     string
		testFunc func(t *testing.T, idx trustindex.Index)
	}{
		{
			name: "Round Trip",
			testFunc: func(t *testing.T, idx trustindex.Index) {
				res, err := trustindex.NewBuilder(idx, nil).Build(context.Background(), bundle)
				require.NoError(t, err)

				assert.Equal(t, 3, res.Certificates)
				assert.Equal(t, 3, res.Written)
				assert.Equal(t, 2, res.BySKID)
				assert.Equal(t, 1, res.ByDN)

				decoder := x509certs.New()
				for _, issued := range []*x509test.Issued{root, other, dnOnly} {
					key, ok := identifier.ForSubject(issued.Cert)
					require.True(t, ok)

					data, err := idx.Get(key)
					require.NoError(t, err, "key %s", key)

					cert, err := decoder.Decode(data)
					require.NoError(t, err)
					assert.True(t, cert.Equal(issued.Cert), "stored certificate for %s differs", key)
				}

				dnKey := identifier.FromName(dnOnly.Cert.Subject)
				assert.Contains(t, res.Keys, dnKey)
			},
		},
		{
			name: "Bundle Bytes Stored Verbatim",
			testFunc: func(t *testing.T, idx trustindex.Index) {
				crlf := root.Reflow(64, "\r\n")
				wide := other.Reflow(76, "\n")
				input := append(append([]byte("# distribution bundle\r\n"), crlf...), wide...)

				_, err := trustindex.NewBuilder(idx, nil).Build(context.Background(), input)
				require.NoError(t, err)

				for issued, want := range map[*x509test.Issued][]byte{root: crlf, other: wide} {
					key, ok := identifier.ForSubject(issued.Cert)
					require.True(t, ok)
					data, err := idx.Get(key)
					require.NoError(t, err)
					assert.True(t, bytes.Equal(want, data), "stored %q, bundle block %q", data, want)
				}
			},
		},
		{
			name: "Backslash In Subject",
			testFunc: func(t *testing.T, idx trustindex.Index) {
				if _, ok := idx.(*trustindex.DirStore); ok && runtime.GOOS == "windows" {
					t.Skip("backslash separates paths on windows")
				}
				ca := root.NewLeaf(t, "Backslash CA", x509test.NotCA(), x509test.WithSubject(pkix.Name{
					Organization: []string{`Example\Corp`},
					CommonName:   "Backslash CA",
				}))

				res, err := trustindex.NewBuilder(idx, nil).Build(context.Background(), ca.PEM)
				require.NoError(t, err)
				assert.Zero(t, res.Skipped)
				assert.Equal(t, 1, res.Written)

				key := identifier.FromName(ca.Cert.Subject)
				assert.Contains(t, key, `\`)
				data, err := idx.Get(key)
				require.NoError(t, err)
				assert.Equal(t, ca.PEM, data)
			},
		},
		{
			name: "Skipped Without Identifier",
			testFunc: func(t *testing.T, idx trustindex.Index) {
				anonymous := root.NewLeaf(t, "anonymous.test", x509test.NotCA(), x509test.WithSubject(pkix.Name{}))

				res, err := trustindex.NewBuilder(idx, nil).Build(context.Background(), x509test.Bundle(root, anonymous))
				require.NoError(t, err)
				assert.Equal(t, 2, res.Certificates)
				assert.Equal(t, 1, res.Skipped)
				assert.Equal(t, 1, res.Written)
			},
		},
		{
			name: "Idempotent",
			testFunc: func(t *testing.T, idx trustindex.Index) {
				b := trustindex.NewBuilder(idx, nil)
				first, err := b.Build(context.Background(), bundle)
				require.NoError(t, err)
				snapshot := dump(t, idx)

				second, err := b.Build(context.Background(), bundle)
				require.NoError(t, err)
				assert.Zero(t, second.Written)
				assert.Equal(t, first.Written, second.Unchanged)
				assert.Equal(t, first.Keys, second.Keys)
				assert.Equal(t, snapshot, dump(t, idx))
			},
		},
		{
			name: "Broken Certificate Writes Nothing",
			testFunc: func(t *testing.T, idx trustindex.Index) {
				broken := append(append([]byte{}, root.PEM...), []byte(brokenCertPEM)...)
				broken = append(broken, other.PEM...)

				_, err := trustindex.NewBuilder(idx, nil).Build(context.Background(), broken)
				require.ErrorIs(t, err, trustindex.ErrBundleParse)
				assert.ErrorIs(t, err, x509certs.ErrParseCertificate)

				keys, err := idx.Keys()
				require.NoError(t, err)
				assert.Empty(t, keys)
			},
		},
		{
			name: "Empty Bundle",
			testFunc: func(t *testing.T, idx trustindex.Index) {
				_, err := trustindex.NewBuilder(idx, nil).Build(context.Background(), []byte(" \n"))
				assert.ErrorIs(t, err, trustindex.ErrEmptyBundle)
			},
		},
		{
			name: "Duplicate Key Last Wins",
			testFunc: func(t *testing.T, idx trustindex.Index) {
				res, err := trustindex.NewBuilder(idx, nil).Build(context.Background(), x509test.Bundle(root, root))
				require.NoError(t, err)
				assert.Equal(t, 1, res.Duplicates)
				assert.Equal(t, 1, res.Written)
				assert.Len(t, res.Keys, 1)
			},
		},
		{
			name: "Prune Stale Entries",
			testFunc: func(t *testing.T, idx trustindex.Index) {
				require.NoError(t, idx.Put("STALE", []byte("old")))

				keep := trustindex.NewBuilder(idx, nil)
				res, err := keep.Build(context.Background(), bundle)
				require.NoError(t, err)
				assert.Zero(t, res.Pruned)
				ok, err := idx.Has("STALE")
				require.NoError(t, err)
				assert.True(t, ok, "entries survive without prune")

				prune := trustindex.NewBuilder(idx, nil)
				prune.Prune = true
				res, err = prune.Build(context.Background(), bundle)
				require.NoError(t, err)
				assert.Equal(t, 1, res.Pruned)
				ok, err = idx.Has("STALE")
				require.NoError(t, err)
				assert.False(t, ok)
			},
		},
		{
			name: "Canceled Context",
			testFunc: func(t *testing.T, idx trustindex.Index) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				_, err := trustindex.NewBuilder(idx, nil).Build(ctx, bundle)
				assert.ErrorIs(t, err, context.Canceled)
			},
		},
	}

	for _, tt := range tests {
		t.Run("Memory/"+tt.name, func(t *testing.T) {
			tt.testFunc(t, trustindex.NewMemoryStore())
		})
		t.Run("Dir/"+tt.name, func(t *testing.T) {
			tt.testFunc(t, trustindex.NewDirStore(filepath.Join(t.TempDir(), "subjectKeyIdentifier")))
		})
	}
}

var errWriteFailed = errors.New("write failed")

// flakyIndex fails every write to one key.
type flakyIndex struct {
	*trustindex.MemoryStore
	failKey string
}

func (f *flakyIndex) Put(key string, pem []byte) error {
	if key == f.failKey {
		return errWriteFailed
	}
	return f.MemoryStore.Put(key, pem)
}

func (f *flakyIndex) Delete(key string) error {
	if key == f.failKey {
		return errWriteFailed
	}
	return f.MemoryStore.Delete(key)
}

func TestBuilderAllOrNothing(t *testing.T) {
	root := x509test.NewRoot(t, "Atomic Root")
	other := x509test.NewRoot(t, "Atomic Other Root")
	rootKey, _ := identifier.ForSubject(root.Cert)
	otherKey, _ := identifier.ForSubject(other.Cert)
	bundle := x509test.Bundle(root, other)

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Failed Write Restores Entries",
			testFunc: func(t *testing.T) {
				idx := &flakyIndex{MemoryStore: trustindex.NewMemoryStore(), failKey: otherKey}
				require.NoError(t, idx.Put(rootKey, []byte("previous")))

				res, err := trustindex.NewBuilder(idx, nil).Build(context.Background(), bundle)
				assert.ErrorIs(t, err, errWriteFailed)
				assert.Nil(t, res)

				data, err := idx.Get(rootKey)
				require.NoError(t, err)
				assert.Equal(t, "previous", string(data))
				_, err = idx.Get(otherKey)
				assert.ErrorIs(t, err, trustindex.ErrNotFound)
			},
		},
		{
			name: "Failed Prune Restores Entries",
			testFunc: func(t *testing.T) {
				idx := &flakyIndex{MemoryStore: trustindex.NewMemoryStore(), failKey: "STALE"}
				require.NoError(t, idx.MemoryStore.Put("STALE", []byte("old")))

				b := trustindex.NewBuilder(idx, nil)
				b.Prune = true
				_, err := b.Build(context.Background(), bundle)
				assert.ErrorIs(t, err, errWriteFailed)
				assert.Equal(t, map[string]string{"STALE": "old"}, dump(t, idx))
			},
		},
		{
			name: "Key Too Long For Directory",
			testFunc: func(t *testing.T) {
				long := root.NewLeaf(t, "Long Name CA", x509test.NotCA(), x509test.WithSubject(pkix.Name{
					Organization: []string{strings.Repeat("Very Long Organization Name ", 12)},
					CommonName:   "Long Name CA",
				}))
				store := trustindex.NewDirStore(filepath.Join(t.TempDir(), "subjectKeyIdentifier"))
				_, err := trustindex.NewBuilder(store, nil).Build(context.Background(), bundle)
				require.NoError(t, err)
				before := dump(t, store)

				newer := x509test.NewRoot(t, "Atomic Newer Root")
				_, err = trustindex.NewBuilder(store, nil).Build(context.Background(), x509test.Bundle(newer, long))
				assert.ErrorIs(t, err, trustindex.ErrInvalidKey)
				assert.Contains(t, err.Error(), "longer than 255 bytes")
				assert.Equal(t, before, dump(t, store), "nothing is written when a key cannot be stored")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestBuilderLogs(t *testing.T) {
	root := x509test.NewRoot(t, "Logged Root")

	var out bytes.Buffer
	log := logger.NewMCPLogger(&out, false)
	_, err := trustindex.NewBuilder(trustindex.NewMemoryStore(), log).Build(context.Background(), x509test.Bundle(root, root))
	require.NoError(t, err)

	assert.Contains(t, out.String(), `"level":"info"`)
	assert.Contains(t, out.String(), "Duplicate key")
	assert.Contains(t, out.String(), "Trust index built: 2 certificates, 1 written")
}

func dump(t *testing.T, idx trustindex.Index) map[string]string {
	t.Helper()
	keys, err := idx.Keys()
	require.NoError(t, err)

	out := make(map[string]string, len(keys))
	for _, key := range keys {
		data, err := idx.Get(key)
		require.NoError(t, err)
		out[key] = string(data)
	}
	return out
}
