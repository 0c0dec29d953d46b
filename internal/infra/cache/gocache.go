// Package cache provides the backends of the feed-aggregate cache
// port. All of them degrade to a miss on any backend failure; the
// caller recomputes and re-sets.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// GoCache is the in-process backend, the default when no external
// cache is configured.
type GoCache struct {
	c *gocache.Cache
}

func NewGoCache(defaultTTL, cleanupInterval time.Duration) *GoCache {
	return &GoCache{c: gocache.New(defaultTTL, cleanupInterval)}
}

func (g *GoCache) Get(ctx context.Context, key string) ([]byte, bool) {
	v, found := g.c.Get(key)
	if !found {
		return nil, false
	}
	data, ok := v.([]byte)
	return data, ok
}

func (g *GoCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	g.c.Set(key, value, ttl)
}

func (g *GoCache) Invalidate(ctx context.Context, key string) {
	g.c.Delete(key)
}
