// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package trustindex

import (
	"fmt"
	"slices"
	"sync"
)

// MemoryStore is an in-memory [Index]. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore returns an empty in-memory index.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

// Get returns a copy of the entry stored under key.
func (m *MemoryStore) Get(key string) ([]byte, error) {
	if !ValidKey(key) {
		return nil, ErrNotFound
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(data), nil
}

// Has reports whether key is present.
func (m *MemoryStore) Has(key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.entries[key]
	return ok, nil
}

// Put stores a copy of pem under key.
func (m *MemoryStore) Put(key string, pem []byte) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = slices.Clone(pem)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// Keys returns every key in sorted order.
func (m *MemoryStore) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}
