package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/studyhall/stream/internal/domain"
)

// missMarker is cached in place of a resolution for targets that do not
// exist, so a feed full of references to a deleted object does not
// re-query the owner once per entry.
type missMarker struct{}

const missTTL = time.Minute

// CachedResolver wraps a TargetResolver with a read-through cache.
// Resolutions are display data; serving them slightly stale is fine.
type CachedResolver struct {
	inner domain.TargetResolver
	cache *cache.Cache
}

func NewCachedResolver(inner domain.TargetResolver) *CachedResolver {
	return &CachedResolver{
		inner: inner,
		cache: cache.New(10*time.Minute, 15*time.Minute),
	}
}

func (r *CachedResolver) Resolve(ctx context.Context, id int64) (domain.Resolution, error) {
	key := fmt.Sprintf("%d", id)
	if x, found := r.cache.Get(key); found {
		if _, miss := x.(missMarker); miss {
			return domain.Resolution{}, domain.TargetNotFoundError{Target: domain.Target{ID: id}}
		}
		return x.(domain.Resolution), nil
	}

	resolution, err := r.inner.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrTargetNotFound) {
			r.cache.Set(key, missMarker{}, missTTL)
		}
		return domain.Resolution{}, err
	}

	r.cache.Set(key, resolution, cache.DefaultExpiration)
	return resolution, nil
}

// FriendlyVerb passes the optional verb override straight through; verb
// phrasing is static per resolver and needs no caching.
func (r *CachedResolver) FriendlyVerb(verb string) (string, bool) {
	if overrider, ok := r.inner.(domain.FriendlyVerbResolver); ok {
		return overrider.FriendlyVerb(verb)
	}
	return "", false
}
