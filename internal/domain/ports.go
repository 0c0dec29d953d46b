package domain

import (
	"context"
	"sync"
	"time"
)

// TargetResolver turns an object id of one kind into display data.
// Implementations are owned by the collaborator that owns the objects.
type TargetResolver interface {
	Resolve(ctx context.Context, id int64) (Resolution, error)
}

// FriendlyVerbResolver is an optional extension of TargetResolver. A
// resolver that implements it can override the past-tense phrasing of a
// verb for its own object kind.
type FriendlyVerbResolver interface {
	FriendlyVerb(verb string) (string, bool)
}

// ParticipationOracle answers whether an actor participates in a scope.
type ParticipationOracle interface {
	IsParticipant(ctx context.Context, scopeID, actorID int64) (bool, error)
}

// Clock supplies created_on timestamps. Implementations must be
// monotonic per store so recency ordering is total.
type Clock interface {
	Now() time.Time
}

// EventSink receives domain events after a write commits. Emission is
// fire-and-forget: the core never blocks on, retries, or inspects the
// outcome of delivery.
type EventSink interface {
	Emit(ctx context.Context, event Event)
}

// Cache is the read-through cache port used for feed aggregates. A miss
// is never an error; callers fall back to direct computation.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Invalidate(ctx context.Context, key string)
}

// Registry maps object kinds to their resolvers.
type Registry struct {
	mu        sync.RWMutex
	resolvers map[ObjectKind]TargetResolver
}

func NewRegistry() *Registry {
	return &Registry{resolvers: make(map[ObjectKind]TargetResolver)}
}

func (r *Registry) Register(kind ObjectKind, resolver TargetResolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers[kind] = resolver
}

// Resolver returns the resolver for a kind, or false if none registered.
func (r *Registry) Resolver(kind ObjectKind) (TargetResolver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	resolver, ok := r.resolvers[kind]
	return resolver, ok
}

// Resolve looks up the kind's resolver and resolves the target. A
// missing resolver reports the target as not found.
func (r *Registry) Resolve(ctx context.Context, target Target) (Resolution, error) {
	resolver, ok := r.Resolver(target.Kind)
	if !ok {
		return Resolution{}, TargetNotFoundError{Target: target}
	}
	return resolver.Resolve(ctx, target.ID)
}
