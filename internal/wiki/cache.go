package wiki

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/codeGROOVE-dev/sfcache"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/localfs"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/null"

	"github.com/JakeFAU/portrait-quiz/internal/hash/sha256"
)

// Cacher memoizes upstream responses. Concurrent GetSet calls for the same
// key share one fetch.
type Cacher interface {
	GetSet(ctx context.Context, key string, fetch func(context.Context) ([]byte, error), ttl ...time.Duration) ([]byte, error)
	TTL() time.Duration
}

// ResponseCache wraps sfcache for API response caching.
type ResponseCache struct {
	*sfcache.TieredCache[string, []byte]

	ttl time.Duration
}

// NewResponseCache creates a cache. An empty dir keeps nothing on disk.
func NewResponseCache(ttl time.Duration, dir string) (*ResponseCache, error) {
	if dir == "" {
		tc, err := sfcache.NewTiered[string, []byte](null.New[string, []byte](), sfcache.TTL(ttl))
		if err != nil {
			return nil, fmt.Errorf("create cache: %w", err)
		}
		return &ResponseCache{TieredCache: tc, ttl: ttl}, nil
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	persist, err := localfs.New[string, []byte]("portrait-quiz", dir)
	if err != nil {
		return nil, fmt.Errorf("create persistence layer: %w", err)
	}
	tc, err := sfcache.NewTiered[string, []byte](persist, sfcache.TTL(ttl))
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &ResponseCache{TieredCache: tc, ttl: ttl}, nil
}

// TTL returns the default TTL for cache entries.
func (c *ResponseCache) TTL() time.Duration {
	return c.ttl
}

// URLToKey converts a URL to a filesystem-safe cache key.
func URLToKey(rawURL string) string {
	return sha256.Key(rawURL)
}
