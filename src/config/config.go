// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/trustindex"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/verify"
)

// Environment variables read by [Load].
const (
	// EnvConfigFile names the configuration file when no path is given.
	EnvConfigFile = "TLS_CERT_INSPECTOR_CONFIG"
	// EnvIndexDir overrides trustIndex.dir.
	EnvIndexDir = "TLS_CERT_INSPECTOR_INDEX"
	// EnvBundle overrides trustIndex.bundle.
	EnvBundle = "TLS_CERT_INSPECTOR_BUNDLE"
)

// IndexDirName is the name of the trust index directory under the state
// directory.
const IndexDirName = "subjectKeyIdentifier"

const (
	defaultTimeoutSeconds  = 10
	defaultCacheSize       = 256
	defaultCacheTTLSeconds = 600
)

// format represents supported configuration file formats.
type format int

const (
	formatJSON format = iota
	formatYAML
)

// Config holds the settings shared by the CLI and the MCP server.
type Config struct {
	TrustIndex struct {
		// Dir is the trust index directory.
		Dir string `json:"dir" yaml:"dir"`
		// Bundle is the CA bundle build-index reads. Empty means the
		// platform bundle.
		Bundle string `json:"bundle,omitempty" yaml:"bundle,omitempty"`
		// SHA256 pins the expected digest of Bundle.
		SHA256 string `json:"sha256,omitempty" yaml:"sha256,omitempty"`
		// Signature and Keyring verify a detached OpenPGP signature over
		// Bundle. Both must be set to take effect.
		Signature string `json:"signature,omitempty" yaml:"signature,omitempty"`
		Keyring   string `json:"keyring,omitempty" yaml:"keyring,omitempty"`
		// Prune removes entries no longer present in the bundle.
		Prune bool `json:"prune,omitempty" yaml:"prune,omitempty"`

		Cache struct {
			MaxSize    int `json:"maxSize" yaml:"maxSize"`
			TTLSeconds int `json:"ttlSeconds" yaml:"ttlSeconds"`
		} `json:"cache" yaml:"cache"`
	} `json:"trustIndex" yaml:"trustIndex"`

	Inspect struct {
		// TimeoutSeconds bounds connect and handshake together.
		TimeoutSeconds int `json:"timeoutSeconds" yaml:"timeoutSeconds"`
		// MaxDepth bounds the verified chain length.
		MaxDepth int `json:"maxDepth" yaml:"maxDepth"`
	} `json:"inspect" yaml:"inspect"`

	MCP struct {
		// LogFile receives MCP server logs as JSON lines. Empty keeps the
		// server silent.
		LogFile string `json:"logFile,omitempty" yaml:"logFile,omitempty"`
	} `json:"mcp" yaml:"mcp"`
}

// DefaultIndexDir returns the per-user trust index location.
func DefaultIndexDir() string {
	return filepath.Join(posix.StateDir(posix.AppName), IndexDirName)
}

// Default returns a configuration with every default applied and no
// environment overrides.
func Default() *Config {
	c := &Config{}
	c.normalize()
	return c
}

// Load reads the configuration at path, or at $TLS_CERT_INSPECTOR_CONFIG
// when path is empty. With neither set the defaults are returned.
//
// Priority, lowest first:
//  1. defaults
//  2. the configuration file (.json, .yaml or .yml)
//  3. $TLS_CERT_INSPECTOR_INDEX and $TLS_CERT_INSPECTOR_BUNDLE
//
// Invalid numeric values fall back to their defaults.
func Load(path string) (*Config, error) {
	c := &Config{}

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := unmarshal(data, c, detectFormat(path)); err != nil {
			return nil, err
		}
	}

	if dir := os.Getenv(EnvIndexDir); dir != "" {
		c.TrustIndex.Dir = dir
	}
	if bundle := os.Getenv(EnvBundle); bundle != "" {
		c.TrustIndex.Bundle = bundle
	}

	c.normalize()
	return c, nil
}

func (c *Config) normalize() {
	if c.TrustIndex.Dir == "" {
		c.TrustIndex.Dir = DefaultIndexDir()
	}
	if c.TrustIndex.Cache.MaxSize <= 0 {
		c.TrustIndex.Cache.MaxSize = defaultCacheSize
	}
	if c.TrustIndex.Cache.TTLSeconds <= 0 {
		c.TrustIndex.Cache.TTLSeconds = defaultCacheTTLSeconds
	}
	if c.Inspect.TimeoutSeconds <= 0 {
		c.Inspect.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.Inspect.MaxDepth <= 0 {
		c.Inspect.MaxDepth = verify.DefaultMaxDepth
	}
}

// Timeout returns the handshake timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Inspect.TimeoutSeconds) * time.Second
}

// OpenIndex returns the configured trust index directory behind a read
// cache.
func (c *Config) OpenIndex() *CachedIndex {
	dir := trustindex.NewDirStore(c.TrustIndex.Dir)
	return &CachedIndex{
		DirStore: dir,
		CachedStore: trustindex.NewCachedStore(dir, &trustindex.CacheConfig{
			MaxSize: c.TrustIndex.Cache.MaxSize,
			TTL:     time.Duration(c.TrustIndex.Cache.TTLSeconds) * time.Second,
		}),
	}
}

// CachedIndex is a directory trust index whose reads go through a cache.
// Writes go to the directory and invalidate the cached entry.
type CachedIndex struct {
	*trustindex.DirStore
	*trustindex.CachedStore
}

// Get reads key through the cache.
func (i *CachedIndex) Get(key string) ([]byte, error) { return i.CachedStore.Get(key) }

// Has reports through the cache whether key is indexed.
func (i *CachedIndex) Has(key string) (bool, error) { return i.CachedStore.Has(key) }

// Put writes key and invalidates its cached value.
func (i *CachedIndex) Put(key string, pem []byte) error { return i.CachedStore.Put(key, pem) }

// Delete removes key and invalidates its cached value.
func (i *CachedIndex) Delete(key string) error { return i.CachedStore.Delete(key) }

// CheckKey applies the file name rules of the directory.
func (i *CachedIndex) CheckKey(key string) error { return i.DirStore.CheckKey(key) }

// Keys lists the directory entries.
func (i *CachedIndex) Keys() ([]string, error) { return i.DirStore.Keys() }

func detectFormat(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

func unmarshal(data []byte, c *Config, f format) error {
	switch f {
	case formatYAML:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	return nil
}
