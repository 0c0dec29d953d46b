package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/studyhall/stream/internal/domain"
	"github.com/studyhall/stream/internal/policy"
)

// ThreadService manages threaded comments attached to pages.
type ThreadService struct {
	comments CommentRepository
	clock    domain.Clock
	sink     domain.EventSink
	pageSize int
}

func NewThreadService(comments CommentRepository, clock domain.Clock, sink domain.EventSink, pageSize int) *ThreadService {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &ThreadService{comments: comments, clock: clock, sink: sink, pageSize: pageSize}
}

// PostInput is the validated input for posting one comment.
type PostInput struct {
	PageID    int64
	AuthorID  int64
	Content   string
	ReplyToID *int64
}

// Post stores a new comment. A reply inherits its parent's thread root
// and must live on the parent's page.
func (s *ThreadService) Post(ctx context.Context, input PostInput) (domain.Comment, error) {
	ctx, span := tracer.Start(ctx, "Thread.Post")
	defer span.End()

	if strings.TrimSpace(input.Content) == "" {
		return domain.Comment{}, domain.ValidationError{Reason: "comment content must not be empty"}
	}

	comment := domain.Comment{
		PageID:    input.PageID,
		AuthorID:  input.AuthorID,
		Content:   input.Content,
		ReplyToID: input.ReplyToID,
		CreatedOn: s.clock.Now(),
	}

	if input.ReplyToID != nil {
		parent, err := s.comments.Get(ctx, *input.ReplyToID)
		if err != nil {
			span.RecordError(errors.Wrap(err, "reply parent lookup failed"))
			return domain.Comment{}, err
		}
		if parent.PageID != input.PageID {
			return domain.Comment{}, domain.ValidationError{Reason: "reply must stay on its parent's page"}
		}
		root := parent.Root()
		comment.AbsReplyToID = &root
	}

	created, err := s.comments.Create(ctx, comment)
	if err != nil {
		span.RecordError(errors.Wrap(err, "comment create failed"))
		return domain.Comment{}, err
	}

	if s.sink != nil {
		s.sink.Emit(ctx, domain.Event{
			ID:         uuid.NewString(),
			Name:       domain.EventCommentPosted,
			OccurredAt: s.clock.Now(),
			Payload: map[string]any{
				"commentID": created.ID,
				"pageID":    created.PageID,
				"authorID":  created.AuthorID,
			},
		})
	}
	return created, nil
}

func (s *ThreadService) Get(ctx context.Context, id int64) (domain.Comment, error) {
	return s.comments.Get(ctx, id)
}

// ToggleDeleted flips a comment's deleted flag. Only the author may,
// and a toggled-off comment reappears in place since deleted rows never
// leave their thread.
func (s *ThreadService) ToggleDeleted(ctx context.Context, commentID, actorID int64) (domain.Comment, error) {
	ctx, span := tracer.Start(ctx, "Thread.ToggleDeleted")
	defer span.End()

	comment, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return domain.Comment{}, err
	}

	ok, err := policy.Evaluate(ctx, false, policy.Author(actorID, comment.AuthorID))
	if err != nil {
		return domain.Comment{}, err
	}
	if !ok {
		return domain.Comment{}, domain.PermissionDeniedError{ActorID: actorID, Op: "toggle comment deletion"}
	}

	if err := s.comments.SetDeleted(ctx, commentID, !comment.Deleted); err != nil {
		span.RecordError(errors.Wrap(err, "comment toggle failed"))
		return domain.Comment{}, err
	}
	comment.Deleted = !comment.Deleted
	return comment, nil
}

// FirstLevel returns one page of a page's top-level comments, newest
// first. Soft-deleted comments keep their slot so threads under them
// stay reachable.
func (s *ThreadService) FirstLevel(ctx context.Context, pageID int64, page, pageSize int) ([]domain.Comment, int, error) {
	ctx, span := tracer.Start(ctx, "Thread.FirstLevel")
	defer span.End()

	if page < 1 {
		return nil, 0, domain.ValidationError{Reason: "page must be 1 or greater"}
	}
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	items, total, err := s.comments.FirstLevel(ctx, pageID, (page-1)*pageSize, pageSize)
	if err != nil {
		span.RecordError(errors.Wrap(err, "first-level comment query failed"))
		return nil, 0, translateQueryErr(err)
	}
	return finishPage(items, total, page, pageSize)
}

// Replies returns all descendants of the comment's thread root in
// chronological order.
func (s *ThreadService) Replies(ctx context.Context, commentID int64) ([]domain.Comment, error) {
	comment, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	return s.comments.Replies(ctx, comment.Root())
}

// Count returns the number of comments on a page, optionally only the
// top-level ones.
func (s *ThreadService) Count(ctx context.Context, pageID int64, firstLevelOnly bool) (int64, error) {
	return s.comments.Count(ctx, pageID, firstLevelOnly)
}
