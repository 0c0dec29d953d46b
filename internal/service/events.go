package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/studyhall/stream/internal/domain"
)

// Handler consumes one domain event. Handlers run synchronously in
// registration order; a slow handler delays the ones after it, so
// anything expensive should hand off to its own worker.
type Handler func(ctx context.Context, event domain.Event)

// Dispatcher fans a domain event out to an ordered handler list. It is
// the in-process replacement for signal-style global dispatch: the
// write operation emits exactly once, and consumers register here.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

func (d *Dispatcher) Register(handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, handler)
}

// Emit delivers the event to every handler. A panicking handler is
// logged and skipped; delivery to the rest continues.
func (d *Dispatcher) Emit(ctx context.Context, event domain.Event) {
	d.mu.RLock()
	handlers := make([]Handler, len(d.handlers))
	copy(handlers, d.handlers)
	d.mu.RUnlock()

	for _, handler := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("panic", r).Str("event", event.Name).
						Msg("event handler panicked")
				}
			}()
			handler(ctx, event)
		}()
	}
}

// RedisPublisher publishes domain events to a redis channel for
// out-of-process consumers. Emission is fire-and-forget: failures are
// logged, never propagated.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{
		rdb:     rdb,
		channel: channel,
	}
}

func (p *RedisPublisher) Emit(ctx context.Context, event domain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("event", event.Name).Msg("event marshal failed")
		return
	}

	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		log.Warn().Err(err).Str("event", event.Name).Msg("event publish failed")
	}
}
