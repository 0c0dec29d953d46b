package usecase

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/studyhall/stream/internal/domain"
)

var tracer = otel.Tracer("stream.usecase")

// RelationshipRepository defines storage operations for follow edges.
type RelationshipRepository interface {
	Upsert(ctx context.Context, sourceID int64, target domain.Target, now time.Time) (domain.Relationship, bool, error)
	SoftDelete(ctx context.Context, sourceID int64, target domain.Target) (bool, error)
	Get(ctx context.Context, sourceID int64, target domain.Target) (domain.Relationship, error)
	Followers(ctx context.Context, target domain.Target) ([]int64, error)
	Following(ctx context.Context, sourceID int64, kind *domain.ObjectKind) ([]domain.Target, error)
	IsFollowing(ctx context.Context, sourceID int64, target domain.Target) (bool, error)
	CountFollowers(ctx context.Context, target domain.Target) (int64, error)
	CountFollowing(ctx context.Context, sourceID int64, kind *domain.ObjectKind) (int64, error)
	PopularScopes(ctx context.Context, limit int) ([]domain.ScopeRank, error)
}

// ActivityRepository defines storage operations for activity records.
type ActivityRepository interface {
	Create(ctx context.Context, activity domain.Activity) (domain.Activity, error)
	Get(ctx context.Context, id int64) (domain.Activity, error)
	SetDeleted(ctx context.Context, id int64, deleted bool) error
	PublicFeed(ctx context.Context, limit int) ([]domain.Activity, error)
	DashboardFeed(ctx context.Context, actorID int64, followedActors, followedScopes []int64, offset, limit int) ([]domain.Activity, int64, error)
	ActorFeed(ctx context.Context, actorID int64, offset, limit int) ([]domain.Activity, int64, error)
	Replies(ctx context.Context, rootID int64) ([]domain.Activity, error)
	ActiveScopes(ctx context.Context, since time.Time, limit int) ([]domain.ScopeRank, error)
}

// CommentRepository defines storage operations for threaded comments.
type CommentRepository interface {
	Create(ctx context.Context, comment domain.Comment) (domain.Comment, error)
	Get(ctx context.Context, id int64) (domain.Comment, error)
	SetDeleted(ctx context.Context, id int64, deleted bool) error
	FirstLevel(ctx context.Context, pageID int64, offset, limit int) ([]domain.Comment, int64, error)
	Replies(ctx context.Context, rootID int64) ([]domain.Comment, error)
	Count(ctx context.Context, pageID int64, firstLevelOnly bool) (int64, error)
}

// ScopeRepository defines the local mirror of scope visibility flags.
type ScopeRepository interface {
	Sync(ctx context.Context, scope domain.Scope, now time.Time) error
	Get(ctx context.Context, id int64) (domain.Scope, error)
}
