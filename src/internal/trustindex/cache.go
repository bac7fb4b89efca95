// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package trustindex

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// cacheEntry is a cached index entry with metadata.
type cacheEntry struct {
	data     []byte    // PEM bytes
	cachedAt time.Time // When the entry was read from the backing store
}

// isFresh checks if the entry may still be served.
func (e *cacheEntry) isFresh(ttl time.Duration, now time.Time) bool {
	return ttl <= 0 || now.Sub(e.cachedAt) < ttl
}

// CacheConfig holds configuration for a [CachedStore].
type CacheConfig struct {
	MaxSize int           // Maximum number of entries to cache (0 = unlimited, but not recommended)
	TTL     time.Duration // How long an entry is served before it is re-read (0 = forever)
}

// CacheMetrics tracks cache performance and usage.
type CacheMetrics struct {
	Size        int64 // Current number of cached entries
	Hits        int64 // Number of cache hits
	Misses      int64 // Number of cache misses
	Evictions   int64 // Number of LRU evictions
	Expirations int64 // Number of stale entries dropped
	TotalMemory int64 // Approximate memory usage in bytes
}

// DefaultCacheConfig is used when NewCachedStore receives a nil config.
var DefaultCacheConfig = CacheConfig{
	MaxSize: 256,
	TTL:     10 * time.Minute,
}

// CachedStore is an LRU read cache in front of a [Store].
//
// Only hits are cached; a miss always reaches the backing store so a
// rebuilt index is seen immediately. Writes through the cache invalidate the
// affected key.
//
// CachedStore is safe for concurrent use by multiple goroutines.
type CachedStore struct {
	backing Store
	config  CacheConfig
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   []string // Maintains access order for LRU eviction

	hits, misses, evictions, expirations atomic.Int64
}

// NewCachedStore wraps backing with an LRU cache.
func NewCachedStore(backing Store, config *CacheConfig) *CachedStore {
	cfg := DefaultCacheConfig
	if config != nil {
		cfg = *config
	}

	// Validate configuration
	if cfg.MaxSize < 0 {
		cfg.MaxSize = 0
	}
	if cfg.TTL < 0 {
		cfg.TTL = 0
	}

	return &CachedStore{
		backing: backing,
		config:  cfg,
		now:     time.Now,
		entries: make(map[string]*cacheEntry),
	}
}

// Get serves key from the cache, reading through to the backing store on a
// miss.
func (c *CachedStore) Get(key string) ([]byte, error) {
	if data, ok := c.lookup(key); ok {
		return data, nil
	}

	data, err := c.backing.Get(key)
	if err != nil {
		return nil, err
	}
	c.store(key, data)
	return slices.Clone(data), nil
}

// Has reports whether key is present, loading it into the cache.
func (c *CachedStore) Has(key string) (bool, error) {
	_, err := c.Get(key)
	switch {
	case errors.Is(err, ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// Put writes through to the backing store when it is a [Writer].
func (c *CachedStore) Put(key string, pem []byte) error {
	w, ok := c.backing.(Writer)
	if !ok {
		return fmt.Errorf("trustindex: backing store %T is read-only", c.backing)
	}
	c.Invalidate(key)
	return w.Put(key, pem)
}

// Delete removes key from the backing store when it is a [Writer].
func (c *CachedStore) Delete(key string) error {
	w, ok := c.backing.(Writer)
	if !ok {
		return fmt.Errorf("trustindex: backing store %T is read-only", c.backing)
	}
	c.Invalidate(key)
	return w.Delete(key)
}

// CheckKey applies the key rules of the backing store.
func (c *CachedStore) CheckKey(key string) error {
	return CheckKey(c.backing, key)
}

// Keys lists the backing store when it is a [Lister].
func (c *CachedStore) Keys() ([]string, error) {
	l, ok := c.backing.(Lister)
	if !ok {
		return nil, fmt.Errorf("trustindex: backing store %T cannot list keys", c.backing)
	}
	return l.Keys()
}

// lookup returns a fresh cached copy of key and updates access order.
func (c *CachedStore) lookup(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if exists && !entry.isFresh(c.config.TTL, c.now()) {
		c.remove(key)
		c.expirations.Add(1)
		exists = false
	}
	if !exists {
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	c.touch(key)

	// Return a copy to prevent external modification
	return slices.Clone(entry.data), true
}

// store caches data under key and implements LRU eviction.
func (c *CachedStore) store(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict least recently used entries if cache is full
	if _, exists := c.entries[key]; !exists {
		for c.config.MaxSize > 0 && len(c.entries) >= c.config.MaxSize && len(c.order) > 0 {
			delete(c.entries, c.order[0])
			c.order = c.order[1:]
			c.evictions.Add(1)
		}
	}

	c.entries[key] = &cacheEntry{
		data:     slices.Clone(data),
		cachedAt: c.now(),
	}
	c.touch(key)
}

// touch moves key to the most recently used position.
func (c *CachedStore) touch(key string) {
	if i := slices.Index(c.order, key); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
	c.order = append(c.order, key)
}

// remove drops key. The caller holds c.mu.
func (c *CachedStore) remove(key string) {
	delete(c.entries, key)
	if i := slices.Index(c.order, key); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
}

// Invalidate drops key from the cache.
func (c *CachedStore) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(key)
}

// Purge drops every cached entry and resets the metrics.
func (c *CachedStore) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = nil

	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
	c.expirations.Store(0)
}

// Cleanup drops stale entries and returns how many were removed.
func (c *CachedStore) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var stale []string
	for key, entry := range c.entries {
		if !entry.isFresh(c.config.TTL, now) {
			stale = append(stale, key)
		}
	}
	for _, key := range stale {
		c.remove(key)
	}

	c.expirations.Add(int64(len(stale)))
	return len(stale)
}

// Metrics returns current cache metrics.
func (c *CachedStore) Metrics() CacheMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Calculate total memory usage
	var totalMemory int64
	for key, entry := range c.entries {
		totalMemory += int64(len(entry.data)) + int64(len(key)) + 24 // Approximate overhead
	}

	return CacheMetrics{
		Size:        int64(len(c.entries)),
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		Expirations: c.expirations.Load(),
		TotalMemory: totalMemory,
	}
}

// Stats returns a formatted string with cache statistics.
func (c *CachedStore) Stats() string {
	metrics := c.Metrics()

	hitRate := float64(0)
	totalRequests := metrics.Hits + metrics.Misses
	if totalRequests > 0 {
		hitRate = float64(metrics.Hits) / float64(totalRequests) * 100
	}

	return fmt.Sprintf("Trust Index Cache Statistics:\n"+
		"  Size: %d/%d entries\n"+
		"  Memory Usage: %.2f KB\n"+
		"  Hit Rate: %.1f%% (%d hits, %d misses)\n"+
		"  Evictions: %d\n"+
		"  Expirations: %d\n"+
		"  TTL: %v",
		metrics.Size, c.config.MaxSize,
		float64(metrics.TotalMemory)/1024,
		hitRate, metrics.Hits, metrics.Misses,
		metrics.Evictions,
		metrics.Expirations,
		c.config.TTL)
}
