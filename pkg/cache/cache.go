// Package cache provides byte-level caching for responses from the remote
// schema service.
//
// Layout results are never cached: every layout pass is a full recompute.
// Only the SQL generation and normalization endpoints, which are slow and
// remote, go through a [Cache].
//
// Two implementations are provided:
//   - [FileCache] stores entries as JSON files under a directory, for CLI use;
//     [FileCache.Prune] drops expired entries
//   - [NullCache] never stores anything, for --no-cache and tests
//
// Keys are built by a [Keyer] so that callers never construct them by hand.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Cache stores opaque byte payloads with an optional time-to-live.
type Cache interface {
	// Get returns the cached value and true, or false on a miss.
	// Expired and corrupt entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// DefaultTTL is how long remote responses are kept when no TTL is configured.
const DefaultTTL = 24 * time.Hour

// DefaultDir returns the default cache directory, $XDG_CACHE_HOME/erdlayout
// or its platform equivalent.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "erdlayout"), nil
}

// NullCache misses on every read and drops every write.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
