package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/studyhall/stream/internal/domain"
)

// GraphService maintains the directed follow graph between actors and
// scopes.
type GraphService struct {
	edges RelationshipRepository
	clock domain.Clock
	sink  domain.EventSink
}

func NewGraphService(edges RelationshipRepository, clock domain.Clock, sink domain.EventSink) *GraphService {
	return &GraphService{
		edges: edges,
		clock: clock,
		sink:  sink,
	}
}

// Follow creates or reinstates the edge source -> target. Following an
// already-active edge is an idempotent no-op; the Followed event is
// emitted only when the edge actually transitions to active.
func (s *GraphService) Follow(ctx context.Context, sourceID int64, target domain.Target) (domain.Relationship, error) {
	ctx, span := tracer.Start(ctx, "Graph.Follow")
	defer span.End()

	if target.Kind != domain.KindUser && target.Kind != domain.KindProject {
		return domain.Relationship{}, domain.ValidationError{
			Reason: "follow target must be a user or a scope",
		}
	}
	if target.Kind == domain.KindUser && target.ID == sourceID {
		return domain.Relationship{}, domain.SelfReferenceError{ActorID: sourceID}
	}

	rel, changed, err := s.edges.Upsert(ctx, sourceID, target, s.clock.Now())
	if errors.Is(err, domain.ErrConflict) {
		// A concurrent identical follow won; its edge is ours.
		rel, err = s.edges.Get(ctx, sourceID, target)
		changed = false
	}
	if err != nil {
		span.RecordError(errors.Wrap(err, "follow upsert failed"))
		return domain.Relationship{}, err
	}

	if changed {
		s.emit(ctx, domain.EventFollowed, map[string]any{
			"sourceID":   sourceID,
			"targetKind": target.Kind,
			"targetID":   target.ID,
		})
	}
	return rel, nil
}

// Unfollow soft-deletes the edge. Missing or already-deleted edges are
// a no-op.
func (s *GraphService) Unfollow(ctx context.Context, sourceID int64, target domain.Target) error {
	ctx, span := tracer.Start(ctx, "Graph.Unfollow")
	defer span.End()

	changed, err := s.edges.SoftDelete(ctx, sourceID, target)
	if err != nil {
		span.RecordError(errors.Wrap(err, "unfollow failed"))
		return err
	}

	if changed {
		s.emit(ctx, domain.EventUnfollowed, map[string]any{
			"sourceID":   sourceID,
			"targetKind": target.Kind,
			"targetID":   target.ID,
		})
	}
	return nil
}

// Followers returns the ids of actors with an active edge onto target.
func (s *GraphService) Followers(ctx context.Context, target domain.Target) ([]int64, error) {
	return s.edges.Followers(ctx, target)
}

// Following returns the targets of the source's active edges. A nil
// kind returns every followed target.
func (s *GraphService) Following(ctx context.Context, sourceID int64, kind *domain.ObjectKind) ([]domain.Target, error) {
	return s.edges.Following(ctx, sourceID, kind)
}

func (s *GraphService) IsFollowing(ctx context.Context, sourceID int64, target domain.Target) (bool, error) {
	return s.edges.IsFollowing(ctx, sourceID, target)
}

func (s *GraphService) FollowersCount(ctx context.Context, target domain.Target) (int64, error) {
	return s.edges.CountFollowers(ctx, target)
}

func (s *GraphService) FollowingCount(ctx context.Context, sourceID int64, kind *domain.ObjectKind) (int64, error) {
	return s.edges.CountFollowing(ctx, sourceID, kind)
}

func (s *GraphService) emit(ctx context.Context, name string, payload map[string]any) {
	if s.sink == nil {
		return
	}
	s.sink.Emit(ctx, domain.Event{
		ID:         uuid.NewString(),
		Name:       name,
		OccurredAt: s.clock.Now(),
		Payload:    payload,
	})
}
