// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package trustindex

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore counts reads that reach the backing store.
type countingStore struct {
	*MemoryStore
	mu    sync.Mutex
	reads int
}

func (c *countingStore) Get(key string) ([]byte, error) {
	c.mu.Lock()
	c.reads++
	c.mu.Unlock()
	return c.MemoryStore.Get(key)
}

func (c *countingStore) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// readOnlyStore hides the writer and lister methods of its backing store.
type readOnlyStore struct{ s Store }

func (r readOnlyStore) Get(key string) ([]byte, error) { return r.s.Get(key) }
func (r readOnlyStore) Has(key string) (bool, error)   { return r.s.Has(key) }

func newCountingStore(t *testing.T, keys ...string) *countingStore {
	t.Helper()
	backing := &countingStore{MemoryStore: NewMemoryStore()}
	for _, k := range keys {
		require.NoError(t, backing.MemoryStore.Put(k, []byte("pem-"+k)))
	}
	return backing
}

func TestCachedStore(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Hit After First Read",
			testFunc: func(t *testing.T) {
				backing := newCountingStore(t, "a")
				cache := NewCachedStore(backing, nil)

				for range 3 {
					data, err := cache.Get("a")
					require.NoError(t, err)
					assert.Equal(t, []byte("pem-a"), data)
				}

				assert.Equal(t, 1, backing.Reads())
				m := cache.Metrics()
				assert.Equal(t, int64(2), m.Hits)
				assert.Equal(t, int64(1), m.Misses)
				assert.Equal(t, int64(1), m.Size)
				assert.Positive(t, m.TotalMemory)
			},
		},
		{
			name: "Misses Are Not Cached",
			testFunc: func(t *testing.T) {
				backing := newCountingStore(t)
				cache := NewCachedStore(backing, nil)

				_, err := cache.Get("late")
				assert.ErrorIs(t, err, ErrNotFound)

				require.NoError(t, backing.MemoryStore.Put("late", []byte("now")))
				data, err := cache.Get("late")
				require.NoError(t, err)
				assert.Equal(t, []byte("now"), data)
			},
		},
		{
			name: "Returned Data Is A Copy",
			testFunc: func(t *testing.T) {
				cache := NewCachedStore(newCountingStore(t, "a"), nil)
				data, err := cache.Get("a")
				require.NoError(t, err)
				data[0] = 'X'

				again, err := cache.Get("a")
				require.NoError(t, err)
				assert.Equal(t, []byte("pem-a"), again)
			},
		},
		{
			name: "LRU Eviction",
			testFunc: func(t *testing.T) {
				cache := NewCachedStore(newCountingStore(t, "a", "b", "c"), &CacheConfig{MaxSize: 2})

				_, _ = cache.Get("a")
				_, _ = cache.Get("b")
				_, _ = cache.Get("a") // a becomes most recently used
				_, _ = cache.Get("c") // evicts b

				m := cache.Metrics()
				assert.Equal(t, int64(1), m.Evictions)
				assert.Equal(t, int64(2), m.Size)

				cache.mu.Lock()
				_, hasA := cache.entries["a"]
				_, hasB := cache.entries["b"]
				order := append([]string(nil), cache.order...)
				cache.mu.Unlock()

				assert.True(t, hasA)
				assert.False(t, hasB)
				assert.Equal(t, []string{"a", "c"}, order)
			},
		},
		{
			name: "TTL Expiry",
			testFunc: func(t *testing.T) {
				backing := newCountingStore(t, "a", "b")
				cache := NewCachedStore(backing, &CacheConfig{TTL: time.Minute})
				now := time.Now()
				cache.now = func() time.Time { return now }

				_, _ = cache.Get("a")
				_, _ = cache.Get("b")
				now = now.Add(2 * time.Minute)

				_, err := cache.Get("a")
				require.NoError(t, err)
				assert.Equal(t, 3, backing.Reads(), "stale entry must be re-read")
				assert.Equal(t, int64(1), cache.Metrics().Expirations)

				assert.Equal(t, 1, cache.Cleanup(), "b is stale")
				assert.Equal(t, int64(1), cache.Metrics().Size)
			},
		},
		{
			name: "Writes Invalidate",
			testFunc: func(t *testing.T) {
				cache := NewCachedStore(newCountingStore(t, "a"), nil)
				_, _ = cache.Get("a")

				require.NoError(t, cache.Put("a", []byte("replaced")))
				data, err := cache.Get("a")
				require.NoError(t, err)
				assert.Equal(t, []byte("replaced"), data)

				require.NoError(t, cache.Delete("a"))
				ok, err := cache.Has("a")
				require.NoError(t, err)
				assert.False(t, ok)
			},
		},
		{
			name: "Read Only Backing",
			testFunc: func(t *testing.T) {
				cache := NewCachedStore(readOnlyStore{s: newCountingStore(t, "a")}, nil)

				ok, err := cache.Has("a")
				require.NoError(t, err)
				assert.True(t, ok)

				assert.Error(t, cache.Put("b", nil))
				assert.Error(t, cache.Delete("a"))
				_, err = cache.Keys()
				assert.Error(t, err)
			},
		},
		{
			name: "Purge Resets",
			testFunc: func(t *testing.T) {
				cache := NewCachedStore(newCountingStore(t, "a"), nil)
				_, _ = cache.Get("a")
				_, _ = cache.Get("a")
				cache.Purge()

				assert.Equal(t, CacheMetrics{}, cache.Metrics())
			},
		},
		{
			name: "Stats",
			testFunc: func(t *testing.T) {
				cache := NewCachedStore(newCountingStore(t, "a"), &CacheConfig{MaxSize: 8, TTL: time.Minute})
				_, _ = cache.Get("a")
				_, _ = cache.Get("a")

				stats := cache.Stats()
				assert.Contains(t, stats, "Size: 1/8 entries")
				assert.Contains(t, stats, "Hit Rate: 50.0% (1 hits, 1 misses)")
				assert.Contains(t, stats, "TTL: 1m0s")
			},
		},
		{
			name: "Invalid Config Normalized",
			testFunc: func(t *testing.T) {
				cache := NewCachedStore(newCountingStore(t), &CacheConfig{MaxSize: -1, TTL: -time.Second})
				assert.Equal(t, CacheConfig{}, cache.config)
			},
		},
		{
			name: "Concurrent Access",
			testFunc: func(t *testing.T) {
				keys := make([]string, 16)
				for i := range keys {
					keys[i] = fmt.Sprintf("k%02d", i)
				}
				cache := NewCachedStore(newCountingStore(t, keys...), &CacheConfig{MaxSize: 4})

				var wg sync.WaitGroup
				for i := range 8 {
					wg.Add(1)
					go func() {
						defer wg.Done()
						for j := range 100 {
							_, err := cache.Get(keys[(i+j)%len(keys)])
							assert.NoError(t, err)
						}
					}()
				}
				wg.Wait()

				m := cache.Metrics()
				assert.LessOrEqual(t, m.Size, int64(4))
				assert.Equal(t, int64(800), m.Hits+m.Misses)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}
