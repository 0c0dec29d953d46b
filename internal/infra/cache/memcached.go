package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/rs/zerolog/log"
)

// Memcached is the memcached-backed cache backend.
type Memcached struct {
	mc *memcache.Client
}

func NewMemcached(mc *memcache.Client) *Memcached {
	return &Memcached{mc: mc}
}

func (m *Memcached) Get(ctx context.Context, key string) ([]byte, bool) {
	item, err := m.mc.Get(key)
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			log.Warn().Err(err).Str("key", key).Msg("memcached get failed")
		}
		return nil, false
	}
	return item.Value, true
}

func (m *Memcached) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	err := m.mc.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: int32(ttl / time.Second),
	})
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("memcached set failed")
	}
}

func (m *Memcached) Invalidate(ctx context.Context, key string) {
	err := m.mc.Delete(key)
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		log.Warn().Err(err).Str("key", key).Msg("memcached delete failed")
	}
}
