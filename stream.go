// Package stream is an embeddable activity-stream core: a follow graph
// between actors and scopes, an append-only activity log with soft
// deletion, recency feeds derived from both, and threaded comments.
//
// The package re-exports the domain vocabulary and wires storage,
// caching, and event delivery behind the Core facade. Callers register
// a TargetResolver per object kind they own and drive everything else
// through Core.
package stream

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/studyhall/stream/internal/config"
	"github.com/studyhall/stream/internal/domain"
	"github.com/studyhall/stream/internal/infra/cache"
	"github.com/studyhall/stream/internal/infra/database"
	"github.com/studyhall/stream/internal/infra/gateway"
	"github.com/studyhall/stream/internal/infra/repository"
	"github.com/studyhall/stream/internal/service"
	"github.com/studyhall/stream/internal/usecase"
)

// Domain vocabulary, re-exported for callers.
type (
	ObjectKind   = domain.ObjectKind
	Target       = domain.Target
	Scope        = domain.Scope
	Activity     = domain.Activity
	Relationship = domain.Relationship
	Comment      = domain.Comment
	ScopeRank    = domain.ScopeRank
	Resolution   = domain.Resolution
	Event        = domain.Event

	TargetResolver       = domain.TargetResolver
	FriendlyVerbResolver = domain.FriendlyVerbResolver
	ParticipationOracle  = domain.ParticipationOracle
	Clock                = domain.Clock
	EventSink            = domain.EventSink
	Cache                = domain.Cache
	Registry             = domain.Registry

	RecordInput = usecase.RecordInput
	PostInput   = usecase.PostInput
	FeedOptions = usecase.FeedOptions

	EventHandler = service.Handler
)

const (
	KindStatus       = domain.KindStatus
	KindProject      = domain.KindProject
	KindRemoteObject = domain.KindRemoteObject
	KindUser         = domain.KindUser
	KindPage         = domain.KindPage
)

const (
	EventFollowed        = domain.EventFollowed
	EventUnfollowed      = domain.EventUnfollowed
	EventActivityCreated = domain.EventActivityCreated
	EventActivityDeleted = domain.EventActivityDeleted
	EventCommentPosted   = domain.EventCommentPosted
)

var (
	ErrSelfReference    = domain.ErrSelfReference
	ErrUnknownVerb      = domain.ErrUnknownVerb
	ErrTargetNotFound   = domain.ErrTargetNotFound
	ErrPermissionDenied = domain.ErrPermissionDenied
	ErrPageNotFound     = domain.ErrPageNotFound
	ErrQueryTimeout     = domain.ErrQueryTimeout
	ErrConflict         = domain.ErrConflict
	ErrValidation       = domain.ErrValidation
	ErrNotFound         = domain.ErrNotFound
)

func NewRegistry() *Registry { return domain.NewRegistry() }

// Options configure a Core beyond its database handle. Zero values get
// working defaults: an in-process clock, an in-memory cache, and a
// dispatcher-backed event sink.
type Options struct {
	Registry *Registry
	Oracle   ParticipationOracle
	Cache    Cache
	Clock    Clock
	Feed     FeedOptions

	// Sinks receive every domain event in addition to handlers
	// registered with Core.OnEvent.
	Sinks []EventSink
}

// Core is the facade over the module's services. All methods are safe
// for concurrent use.
type Core struct {
	db         *gorm.DB
	registry   *Registry
	dispatcher *service.Dispatcher

	graph      *usecase.GraphService
	activities *usecase.ActivityService
	feeds      *usecase.FeedService
	threads    *usecase.ThreadService
	scopes     usecase.ScopeRepository
	clock      Clock
}

// New wires a Core onto an open database handle.
func New(db *gorm.DB, opts Options) *Core {
	registry := opts.Registry
	if registry == nil {
		registry = domain.NewRegistry()
	}
	clock := opts.Clock
	if clock == nil {
		clock = service.NewSystemClock()
	}
	cacheBackend := opts.Cache
	if cacheBackend == nil {
		cacheBackend = cache.NewGoCache(5*time.Minute, 10*time.Minute)
	}

	dispatcher := service.NewDispatcher()
	for _, sink := range opts.Sinks {
		sink := sink
		dispatcher.Register(func(ctx context.Context, event domain.Event) {
			sink.Emit(ctx, event)
		})
	}

	edges := repository.NewRelationshipRepository(db)
	activities := repository.NewActivityRepository(db)
	comments := repository.NewCommentRepository(db)
	scopes := repository.NewScopeRepository(db)

	feedOpts := opts.Feed

	return &Core{
		db:         db,
		registry:   registry,
		dispatcher: dispatcher,
		graph:      usecase.NewGraphService(edges, clock, dispatcher),
		activities: usecase.NewActivityService(activities, edges, registry, opts.Oracle, clock, dispatcher),
		feeds:      usecase.NewFeedService(activities, edges, cacheBackend, clock, feedOpts),
		threads:    usecase.NewThreadService(comments, clock, dispatcher, feedOpts.PageSize),
		scopes:     scopes,
		clock:      clock,
	}
}

// Open builds a Core from a config file: it connects to postgres (or
// sqlite when no DSN is set), picks the configured cache backend, and
// attaches a redis event publisher when a redis address is configured.
func Open(configPath string, opts Options) (*Core, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	var db *gorm.DB
	if conf.Database.PostgresDsn != "" {
		db, err = database.NewPostgres(conf.Database.PostgresDsn)
	} else {
		db, err = database.NewSQLite(conf.Database.SqlitePath)
	}
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(conf.Cache.TTLSeconds) * time.Second
	cleanup := time.Duration(conf.Cache.CleanupSeconds) * time.Second
	if opts.Cache == nil {
		switch conf.Cache.Backend {
		case "redis":
			rdb := database.NewRedis(conf.Cache.RedisAddr, conf.Cache.RedisPassword, conf.Cache.RedisDB)
			opts.Cache = cache.NewRedis(rdb)
		case "memcached":
			opts.Cache = cache.NewMemcached(database.NewMemcached(conf.Cache.MemcachedAddr))
		default:
			opts.Cache = cache.NewGoCache(ttl, cleanup)
		}
	}

	if conf.Cache.RedisAddr != "" && conf.Events.RedisChannel != "" {
		rdb := database.NewRedis(conf.Cache.RedisAddr, conf.Cache.RedisPassword, conf.Cache.RedisDB)
		opts.Sinks = append(opts.Sinks, service.NewRedisPublisher(rdb, conf.Events.RedisChannel))
	}

	if opts.Feed.PublicLimit == 0 {
		opts.Feed.PublicLimit = conf.Feed.PublicLimit
	}
	if opts.Feed.PageSize == 0 {
		opts.Feed.PageSize = conf.Feed.PageSize
	}
	if opts.Feed.RankLimit == 0 {
		opts.Feed.RankLimit = conf.Feed.RankLimit
	}
	if opts.Feed.ActiveWindow == 0 {
		opts.Feed.ActiveWindow = time.Duration(conf.Feed.ActiveWindowHours) * time.Hour
	}
	if opts.Feed.CacheTTL == 0 {
		opts.Feed.CacheTTL = ttl
	}

	return New(db, opts), nil
}

// Migrate creates or updates the schema.
func (c *Core) Migrate() error {
	return database.Migrate(c.db)
}

// RegisterResolver binds a resolver for one object kind.
func (c *Core) RegisterResolver(kind ObjectKind, resolver TargetResolver) {
	c.registry.Register(kind, resolver)
}

// RegisterCachedResolver binds a resolver behind a read-through cache.
// Use it for resolvers whose lookups leave the process, the remote
// object resolver in particular.
func (c *Core) RegisterCachedResolver(kind ObjectKind, resolver TargetResolver) {
	c.registry.Register(kind, gateway.NewCachedResolver(resolver))
}

// OnEvent registers a handler for every domain event.
func (c *Core) OnEvent(handler EventHandler) {
	c.dispatcher.Register(handler)
}

// Graph operations.

func (c *Core) Follow(ctx context.Context, sourceID int64, target Target) (Relationship, error) {
	return c.graph.Follow(ctx, sourceID, target)
}

func (c *Core) Unfollow(ctx context.Context, sourceID int64, target Target) error {
	return c.graph.Unfollow(ctx, sourceID, target)
}

func (c *Core) Followers(ctx context.Context, target Target) ([]int64, error) {
	return c.graph.Followers(ctx, target)
}

func (c *Core) Following(ctx context.Context, sourceID int64, kind *ObjectKind) ([]Target, error) {
	return c.graph.Following(ctx, sourceID, kind)
}

func (c *Core) IsFollowing(ctx context.Context, sourceID int64, target Target) (bool, error) {
	return c.graph.IsFollowing(ctx, sourceID, target)
}

func (c *Core) FollowersCount(ctx context.Context, target Target) (int64, error) {
	return c.graph.FollowersCount(ctx, target)
}

func (c *Core) FollowingCount(ctx context.Context, sourceID int64, kind *ObjectKind) (int64, error) {
	return c.graph.FollowingCount(ctx, sourceID, kind)
}

// Activity operations.

func (c *Core) Record(ctx context.Context, input RecordInput) (Activity, error) {
	return c.activities.Record(ctx, input)
}

func (c *Core) Activity(ctx context.Context, id int64) (Activity, error) {
	return c.activities.Get(ctx, id)
}

func (c *Core) ActivityReplies(ctx context.Context, activityID int64) ([]Activity, error) {
	return c.activities.Replies(ctx, activityID)
}

func (c *Core) TextualRepresentation(ctx context.Context, activity Activity) (string, error) {
	return c.activities.TextualRepresentation(ctx, activity)
}

func (c *Core) CanEdit(ctx context.Context, activity Activity, actorID int64) (bool, error) {
	return c.activities.CanEdit(ctx, activity, actorID)
}

func (c *Core) CanReply(ctx context.Context, activity Activity, actorID int64) (bool, error) {
	return c.activities.CanReply(ctx, activity, actorID)
}

func (c *Core) MarkActivityDeleted(ctx context.Context, activityID, actorID int64) error {
	return c.activities.MarkDeleted(ctx, activityID, actorID)
}

// Feed operations.

func (c *Core) PublicFeed(ctx context.Context, limit int) ([]Activity, error) {
	return c.feeds.Public(ctx, limit)
}

func (c *Core) DashboardFeed(ctx context.Context, actorID int64, page, pageSize int) ([]Activity, int, error) {
	return c.feeds.Dashboard(ctx, actorID, page, pageSize)
}

func (c *Core) ActorFeed(ctx context.Context, actorID int64, page, pageSize int) ([]Activity, int, error) {
	return c.feeds.Actor(ctx, actorID, page, pageSize)
}

func (c *Core) PopularScopes(ctx context.Context, limit int) ([]ScopeRank, error) {
	return c.feeds.PopularScopes(ctx, limit)
}

func (c *Core) ActiveScopes(ctx context.Context, limit int) ([]ScopeRank, error) {
	return c.feeds.ActiveScopes(ctx, limit)
}

// Comment operations.

func (c *Core) PostComment(ctx context.Context, input PostInput) (Comment, error) {
	return c.threads.Post(ctx, input)
}

func (c *Core) Comment(ctx context.Context, id int64) (Comment, error) {
	return c.threads.Get(ctx, id)
}

func (c *Core) ToggleCommentDeleted(ctx context.Context, commentID, actorID int64) (Comment, error) {
	return c.threads.ToggleDeleted(ctx, commentID, actorID)
}

func (c *Core) FirstLevelComments(ctx context.Context, pageID int64, page, pageSize int) ([]Comment, int, error) {
	return c.threads.FirstLevel(ctx, pageID, page, pageSize)
}

func (c *Core) CommentReplies(ctx context.Context, commentID int64) ([]Comment, error) {
	return c.threads.Replies(ctx, commentID)
}

func (c *Core) CommentCount(ctx context.Context, pageID int64, firstLevelOnly bool) (int64, error) {
	return c.threads.Count(ctx, pageID, firstLevelOnly)
}

// Scope mirror operations.

// SyncScope upserts the local mirror of one scope's visibility flags.
// Hosts call it whenever a scope is created, archived, or toggled.
func (c *Core) SyncScope(ctx context.Context, scope Scope) error {
	return c.scopes.Sync(ctx, scope, c.clock.Now())
}

func (c *Core) ScopeMirror(ctx context.Context, id int64) (Scope, error) {
	return c.scopes.Get(ctx, id)
}
