// Package cache provides the byte-level cache weld uses to skip
// re-evaluating build descriptions whose fingerprint has not changed.
//
// Three backends implement the same interface: FileCache for normal CLI
// usage, RedisCache for shared caches across machines, and NullCache to
// disable caching entirely.
package cache

import (
	"context"
	"time"
)

// Cache stores byte values under string keys with optional expiry.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// DescriptionKey is the cache key for a loaded build description,
// derived from the description's path and content fingerprint. A
// changed file yields a different key, so stale entries are simply
// never read again.
func DescriptionKey(path, sum string) string {
	return hashKey("desc", path, sum)
}

// Scoped wraps a cache so every key gets a fixed prefix, giving
// callers a cheap namespace: separate workspaces can share one Redis
// without colliding.
func Scoped(inner Cache, prefix string) Cache {
	return &scopedCache{inner: inner, prefix: prefix}
}

type scopedCache struct {
	inner  Cache
	prefix string
}

func (c *scopedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.inner.Get(ctx, c.prefix+key)
}

func (c *scopedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, c.prefix+key, data, ttl)
}

func (c *scopedCache) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, c.prefix+key)
}

func (c *scopedCache) Close() error {
	return c.inner.Close()
}

var _ Cache = (*scopedCache)(nil)
