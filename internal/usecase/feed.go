package usecase

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/studyhall/stream/internal/domain"
	"github.com/studyhall/stream/internal/utils"
)

// FeedOptions tune feed sizing and aggregate caching. Zero values fall
// back to the defaults below.
type FeedOptions struct {
	PublicLimit  int
	PageSize     int
	RankLimit    int
	CacheTTL     time.Duration
	ActiveWindow time.Duration
}

const (
	defaultPublicLimit  = 10
	defaultPageSize     = 25
	defaultRankLimit    = 20
	defaultCacheTTL     = 5 * time.Minute
	defaultActiveWindow = 7 * 24 * time.Hour
)

func (o FeedOptions) withDefaults() FeedOptions {
	if o.PublicLimit <= 0 {
		o.PublicLimit = defaultPublicLimit
	}
	if o.PageSize <= 0 {
		o.PageSize = defaultPageSize
	}
	if o.RankLimit <= 0 {
		o.RankLimit = defaultRankLimit
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = defaultCacheTTL
	}
	if o.ActiveWindow <= 0 {
		o.ActiveWindow = defaultActiveWindow
	}
	return o
}

// FeedService assembles the three read feeds and the cached scope
// rankings derived from them.
type FeedService struct {
	activities ActivityRepository
	edges      RelationshipRepository
	cache      domain.Cache
	clock      domain.Clock
	opts       FeedOptions
}

func NewFeedService(
	activities ActivityRepository,
	edges RelationshipRepository,
	cache domain.Cache,
	clock domain.Clock,
	opts FeedOptions,
) *FeedService {
	return &FeedService{
		activities: activities,
		edges:      edges,
		cache:      cache,
		clock:      clock,
		opts:       opts.withDefaults(),
	}
}

// Public returns the newest broadly-visible activities. A non-positive
// limit uses the configured default.
func (s *FeedService) Public(ctx context.Context, limit int) ([]domain.Activity, error) {
	ctx, span := tracer.Start(ctx, "Feed.Public")
	defer span.End()

	if limit <= 0 {
		limit = s.opts.PublicLimit
	}
	items, err := s.activities.PublicFeed(ctx, limit)
	if err != nil {
		span.RecordError(errors.Wrap(err, "public feed query failed"))
		return nil, translateQueryErr(err)
	}
	return items, nil
}

// Dashboard returns one page of the actor's personalized feed: their
// own activities, those of followed users, and those in followed
// scopes, merged by recency with each entry appearing once.
func (s *FeedService) Dashboard(ctx context.Context, actorID int64, page, pageSize int) ([]domain.Activity, int, error) {
	ctx, span := tracer.Start(ctx, "Feed.Dashboard")
	defer span.End()

	offset, limit, err := s.pageBounds(page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	followedActors, err := s.followedIDs(ctx, actorID, domain.KindUser)
	if err != nil {
		return nil, 0, translateQueryErr(err)
	}
	followedScopes, err := s.followedIDs(ctx, actorID, domain.KindProject)
	if err != nil {
		return nil, 0, translateQueryErr(err)
	}

	items, total, err := s.activities.DashboardFeed(ctx, actorID, followedActors, followedScopes, offset, limit)
	if err != nil {
		span.RecordError(errors.Wrap(err, "dashboard feed query failed"))
		return nil, 0, translateQueryErr(err)
	}
	return finishPage(items, total, page, limit)
}

// Actor returns one page of a single actor's visible activities.
func (s *FeedService) Actor(ctx context.Context, actorID int64, page, pageSize int) ([]domain.Activity, int, error) {
	ctx, span := tracer.Start(ctx, "Feed.Actor")
	defer span.End()

	offset, limit, err := s.pageBounds(page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	items, total, err := s.activities.ActorFeed(ctx, actorID, offset, limit)
	if err != nil {
		span.RecordError(errors.Wrap(err, "actor feed query failed"))
		return nil, 0, translateQueryErr(err)
	}
	return finishPage(items, total, page, limit)
}

// PopularScopes ranks scopes by distinct follower count, serving from
// cache when a fresh ranking is available.
func (s *FeedService) PopularScopes(ctx context.Context, limit int) ([]domain.ScopeRank, error) {
	ctx, span := tracer.Start(ctx, "Feed.PopularScopes")
	defer span.End()

	if limit <= 0 {
		limit = s.opts.RankLimit
	}
	key := utils.CacheKey("feed.popular", strconv.Itoa(limit))
	return s.cachedRanking(ctx, key, func(ctx context.Context) ([]domain.ScopeRank, error) {
		return s.edges.PopularScopes(ctx, limit)
	})
}

// ActiveScopes ranks scopes by recent activity volume inside the
// configured window, serving from cache when available.
func (s *FeedService) ActiveScopes(ctx context.Context, limit int) ([]domain.ScopeRank, error) {
	ctx, span := tracer.Start(ctx, "Feed.ActiveScopes")
	defer span.End()

	if limit <= 0 {
		limit = s.opts.RankLimit
	}
	key := utils.CacheKey("feed.active", strconv.Itoa(limit))
	return s.cachedRanking(ctx, key, func(ctx context.Context) ([]domain.ScopeRank, error) {
		since := s.clock.Now().Add(-s.opts.ActiveWindow)
		return s.activities.ActiveScopes(ctx, since, limit)
	})
}

func (s *FeedService) cachedRanking(
	ctx context.Context,
	key string,
	compute func(ctx context.Context) ([]domain.ScopeRank, error),
) ([]domain.ScopeRank, error) {
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var decoded utils.OrderedKVMap[int64]
			if err := json.Unmarshal(raw, &decoded); err == nil {
				return rankingFromOrdered(decoded), nil
			}
			log.Warn().Str("key", key).Msg("discarding undecodable cached ranking")
		}
	}

	ranks, err := compute(ctx)
	if err != nil {
		return nil, translateQueryErr(err)
	}

	if s.cache != nil {
		encoded := make(utils.OrderedKVMap[int64], len(ranks))
		for i, rank := range ranks {
			encoded[strconv.FormatInt(rank.ScopeID, 10)] = utils.OrderedKV[int64]{
				Value: rank.Count,
				Order: int64(i),
			}
		}
		if raw, err := json.Marshal(encoded); err == nil {
			s.cache.Set(ctx, key, raw, s.opts.CacheTTL)
		}
	}
	return ranks, nil
}

func rankingFromOrdered(m utils.OrderedKVMap[int64]) []domain.ScopeRank {
	keys := m.Keys()
	ranks := make([]domain.ScopeRank, 0, len(keys))
	for _, key := range keys {
		scopeID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		ranks = append(ranks, domain.ScopeRank{ScopeID: scopeID, Count: m[key].Value})
	}
	return ranks
}

func (s *FeedService) followedIDs(ctx context.Context, actorID int64, kind domain.ObjectKind) ([]int64, error) {
	targets, err := s.edges.Following(ctx, actorID, &kind)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(targets))
	for i, t := range targets {
		ids[i] = t.ID
	}
	return ids, nil
}

func (s *FeedService) pageBounds(page, pageSize int) (offset, limit int, err error) {
	if page < 1 {
		return 0, 0, domain.ValidationError{Reason: "page must be 1 or greater"}
	}
	if pageSize <= 0 {
		pageSize = s.opts.PageSize
	}
	return (page - 1) * pageSize, pageSize, nil
}

// finishPage converts a raw count into total pages and enforces the
// range contract: page 1 of an empty result is an empty page with zero
// total pages, any other page past the end is an error.
func finishPage[T any](items []T, total int64, page, pageSize int) ([]T, int, error) {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if total == 0 {
		if page == 1 {
			return []T{}, 0, nil
		}
		return nil, 0, domain.PageNotFoundError{Page: page, TotalPages: 0}
	}
	if page > totalPages {
		return nil, 0, domain.PageNotFoundError{Page: page, TotalPages: totalPages}
	}
	return items, totalPages, nil
}

// translateQueryErr maps a context deadline hit during a storage call
// to the domain's query timeout error so callers can degrade a slow
// feed instead of surfacing a transport failure.
func translateQueryErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.QueryTimeoutError{}
	}
	return err
}
