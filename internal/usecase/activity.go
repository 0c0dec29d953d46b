package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/studyhall/stream/internal/domain"
	"github.com/studyhall/stream/internal/policy"
	"github.com/studyhall/stream/taxonomy"
)

// removedTitle stands in for a target whose resolver no longer knows
// the id. Rendering degrades instead of failing the whole feed.
const removedTitle = "[removed]"

// ActivityService records activity entries and answers permission and
// rendering questions about them.
type ActivityService struct {
	activities ActivityRepository
	edges      RelationshipRepository
	registry   *domain.Registry
	oracle     domain.ParticipationOracle
	clock      domain.Clock
	sink       domain.EventSink
}

func NewActivityService(
	activities ActivityRepository,
	edges RelationshipRepository,
	registry *domain.Registry,
	oracle domain.ParticipationOracle,
	clock domain.Clock,
	sink domain.EventSink,
) *ActivityService {
	return &ActivityService{
		activities: activities,
		edges:      edges,
		registry:   registry,
		oracle:     oracle,
		clock:      clock,
		sink:       sink,
	}
}

// RecordInput is the validated input for recording one activity.
type RecordInput struct {
	ActorID   int64
	Verb      string
	Target    domain.Target
	ScopeID   *int64
	ReplyToID *int64
}

// Record persists a new immutable activity. The thread root is
// resolved from the immediate parent in one hop: every stored activity
// already carries its own root, and a parent always exists before its
// replies, so the recurrence never has to walk the chain.
func (s *ActivityService) Record(ctx context.Context, input RecordInput) (domain.Activity, error) {
	ctx, span := tracer.Start(ctx, "Activity.Record")
	defer span.End()

	if !taxonomy.Known(input.Verb) {
		return domain.Activity{}, domain.UnknownVerbError{Verb: input.Verb}
	}

	activity := domain.Activity{
		ActorID:   input.ActorID,
		Verb:      input.Verb,
		Target:    input.Target,
		ScopeID:   input.ScopeID,
		ReplyToID: input.ReplyToID,
		CreatedOn: s.clock.Now(),
	}

	if input.ReplyToID != nil {
		parent, err := s.activities.Get(ctx, *input.ReplyToID)
		if err != nil {
			span.RecordError(errors.Wrap(err, "reply parent lookup failed"))
			return domain.Activity{}, err
		}
		root := parent.Root()
		activity.AbsReplyToID = &root
	}

	created, err := s.activities.Create(ctx, activity)
	if err != nil {
		span.RecordError(errors.Wrap(err, "activity create failed"))
		return domain.Activity{}, err
	}

	s.emit(ctx, domain.EventActivityCreated, map[string]any{
		"activityID": created.ID,
		"actorID":    created.ActorID,
		"verb":       created.Verb,
	})
	return created, nil
}

func (s *ActivityService) Get(ctx context.Context, id int64) (domain.Activity, error) {
	return s.activities.Get(ctx, id)
}

// Replies returns all descendants of the activity's thread root.
func (s *ActivityService) Replies(ctx context.Context, activityID int64) ([]domain.Activity, error) {
	activity, err := s.activities.Get(ctx, activityID)
	if err != nil {
		return nil, err
	}
	return s.activities.Replies(ctx, activity.Root())
}

// TextualRepresentation renders "actor verb target". A follow of a
// user or scope uses the plain taxonomy label and the target's name so
// rendering never recurses into arbitrary object representations; any
// other target may override the verb phrasing through its resolver.
func (s *ActivityService) TextualRepresentation(ctx context.Context, activity domain.Activity) (string, error) {
	actor, err := s.resolveTitle(ctx, domain.Target{Kind: domain.KindUser, ID: activity.ActorID})
	if err != nil {
		return "", err
	}

	followsActorOrScope := activity.Verb == taxonomy.VerbFollow &&
		(activity.Target.Kind == domain.KindUser || activity.Target.Kind == domain.KindProject)

	var verb string
	if followsActorOrScope {
		verb, err = taxonomy.Label(activity.Verb)
	} else {
		resolver, _ := s.registry.Resolver(activity.Target.Kind)
		verb, err = taxonomy.FriendlyVerb(activity.Verb, resolver)
	}
	if err != nil {
		return "", err
	}

	title, err := s.resolveTitle(ctx, activity.Target)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s %s %s", actor, verb, title), nil
}

// CanEdit reports whether the actor may mutate the activity's deleted
// flag. Only the author ever may.
func (s *ActivityService) CanEdit(ctx context.Context, activity domain.Activity, actorID int64) (bool, error) {
	return policy.Evaluate(ctx, false, policy.Author(actorID, activity.ActorID))
}

// CanReply reports whether the actor may record a reply. Scoped
// activities are repliable by scope participants; unscoped ones by the
// author or by anyone who follows the author.
func (s *ActivityService) CanReply(ctx context.Context, activity domain.Activity, actorID int64) (bool, error) {
	if activity.ScopeID != nil {
		scopeID := *activity.ScopeID
		return policy.Evaluate(ctx, false,
			policy.Participant(func(ctx context.Context) (bool, error) {
				return s.oracle.IsParticipant(ctx, scopeID, actorID)
			}),
		)
	}
	return policy.Evaluate(ctx, false,
		policy.Author(actorID, activity.ActorID),
		policy.Follower(func(ctx context.Context) (bool, error) {
			return s.edges.IsFollowing(ctx, actorID, domain.Target{
				Kind: domain.KindUser,
				ID:   activity.ActorID,
			})
		}),
	)
}

// MarkDeleted soft-deletes an activity. The row survives so replies
// that reference it stay addressable.
func (s *ActivityService) MarkDeleted(ctx context.Context, activityID, actorID int64) error {
	ctx, span := tracer.Start(ctx, "Activity.MarkDeleted")
	defer span.End()

	activity, err := s.activities.Get(ctx, activityID)
	if err != nil {
		return err
	}

	ok, err := s.CanEdit(ctx, activity, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.PermissionDeniedError{ActorID: actorID, Op: "delete activity"}
	}

	if err := s.activities.SetDeleted(ctx, activityID, true); err != nil {
		span.RecordError(errors.Wrap(err, "activity soft delete failed"))
		return err
	}

	s.emit(ctx, domain.EventActivityDeleted, map[string]any{
		"activityID": activityID,
		"actorID":    actorID,
	})
	return nil
}

func (s *ActivityService) resolveTitle(ctx context.Context, target domain.Target) (string, error) {
	resolution, err := s.registry.Resolve(ctx, target)
	if errors.Is(err, domain.ErrTargetNotFound) {
		return removedTitle, nil
	}
	if err != nil {
		return "", err
	}
	return resolution.Title, nil
}

func (s *ActivityService) emit(ctx context.Context, name string, payload map[string]any) {
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
