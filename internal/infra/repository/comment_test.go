package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/studyhall/stream/internal/domain"
)

func seedComment(t *testing.T, repo *CommentRepository, tick *testTicker, pageID, authorID int64, content string, replyTo, absReplyTo *int64) domain.Comment {
	t.Helper()
	created, err := repo.Create(context.Background(), domain.Comment{
		PageID:       pageID,
		AuthorID:     authorID,
		Content:      content,
		ReplyToID:    replyTo,
		AbsReplyToID: absReplyTo,
		CreatedOn:    tick.next(),
	})
	if err != nil {
		t.Fatalf("seed comment: %v", err)
	}
	return created
}

func TestFirstLevelPaginationWithDeletedRows(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	tick := newTicker()

	var ids []int64
	for _, content := range []string{"a", "b", "c", "d", "e"} {
		ids = append(ids, seedComment(t, repo, tick, 1, 7, content, nil, nil).ID)
	}
	root := ids[0]
	seedComment(t, repo, tick, 1, 42, "reply", &root, &root)
	seedComment(t, repo, tick, 2, 7, "other page", nil, nil)

	if err := repo.SetDeleted(ctx, ids[3], true); err != nil {
		t.Fatalf("set deleted: %v", err)
	}

	page1, total, err := repo.FirstLevel(ctx, 1, 0, 3)
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected 5 first-level comments, got %d", total)
	}
	// Newest first; the deleted comment keeps its slot in the sequence.
	if page1[0].ID != ids[4] || page1[1].ID != ids[3] || page1[2].ID != ids[2] {
		t.Fatalf("unexpected first page: %+v", page1)
	}
	if !page1[1].Deleted {
		t.Fatal("deleted comment must stay in sequence with its flag set")
	}

	page2, _, err := repo.FirstLevel(ctx, 1, 3, 3)
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(page2) != 2 || page2[0].ID != ids[1] || page2[1].ID != ids[0] {
		t.Fatalf("unexpected second page: %+v", page2)
	}
}

func TestCommentRepliesAndCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	tick := newTicker()

	root := seedComment(t, repo, tick, 1, 7, "root", nil, nil)
	first := seedComment(t, repo, tick, 1, 42, "first reply", &root.ID, &root.ID)
	seedComment(t, repo, tick, 1, 7, "second reply", &first.ID, &root.ID)
	seedComment(t, repo, tick, 1, 9, "sibling thread", nil, nil)

	replies, err := repo.Replies(ctx, root.ID)
	if err != nil {
		t.Fatalf("replies: %v", err)
	}
	if len(replies) != 2 || replies[0].ID != first.ID {
		t.Fatalf("unexpected replies: %+v", replies)
	}

	all, err := repo.Count(ctx, 1, false)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if all != 4 {
		t.Fatalf("expected 4 comments, got %d", all)
	}
	top, err := repo.Count(ctx, 1, true)
	if err != nil {
		t.Fatalf("count first level: %v", err)
	}
	if top != 2 {
		t.Fatalf("expected 2 first-level comments, got %d", top)
	}
}

func TestGetMissingComment(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommentRepository(db)

	_, err := repo.Get(context.Background(), 999)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
