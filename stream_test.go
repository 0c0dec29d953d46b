package stream_test

import (
	"context"
	"errors"
	"testing"

	"github.com/studyhall/stream"
	"github.com/studyhall/stream/internal/infra/database"
	"github.com/studyhall/stream/taxonomy"
)

type staticResolver map[int64]string

func (r staticResolver) Resolve(_ context.Context, id int64) (stream.Resolution, error) {
	title, ok := r[id]
	if !ok {
		return stream.Resolution{}, stream.ErrTargetNotFound
	}
	return stream.Resolution{Title: title}, nil
}

type allowAllOracle struct{}

func (allowAllOracle) IsParticipant(context.Context, int64, int64) (bool, error) {
	return true, nil
}

func newCore(t *testing.T) *stream.Core {
	t.Helper()
	db, err := database.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	core := stream.New(db, stream.Options{Oracle: allowAllOracle{}})
	if err := core.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	core.RegisterResolver(stream.KindUser, staticResolver{1: "alice", 2: "bob"})
	core.RegisterResolver(stream.KindPage, staticResolver{10: "Week 1 notes"})
	return core
}

func TestScopedActivityReachesFollowerDashboard(t *testing.T) {
	core := newCore(t)
	ctx := context.Background()

	const (
		alice = int64(1)
		bob   = int64(2)
		scope = int64(101)
	)

	if err := core.SyncScope(ctx, stream.Scope{ID: scope}); err != nil {
		t.Fatalf("sync scope: %v", err)
	}
	if _, err := core.Follow(ctx, alice, stream.Target{Kind: stream.KindProject, ID: scope}); err != nil {
		t.Fatalf("follow: %v", err)
	}

	scopeID := scope
	posted, err := core.Record(ctx, stream.RecordInput{
		ActorID: bob,
		Verb:    taxonomy.VerbPost,
		Target:  stream.Target{Kind: stream.KindPage, ID: 10},
		ScopeID: &scopeID,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	dashboard, totalPages, err := core.DashboardFeed(ctx, alice, 1, 25)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if totalPages != 1 || len(dashboard) != 1 || dashboard[0].ID != posted.ID {
		t.Fatalf("scoped activity missing from follower dashboard: %+v", dashboard)
	}

	public, err := core.PublicFeed(ctx, 10)
	if err != nil {
		t.Fatalf("public feed: %v", err)
	}
	if len(public) != 1 || public[0].ID != posted.ID {
		t.Fatalf("scoped activity missing from public feed: %+v", public)
	}

	text, err := core.TextualRepresentation(ctx, posted)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if text != "bob posted Week 1 notes" {
		t.Fatalf("unexpected rendering: %q", text)
	}
}

func TestEventsReachRegisteredHandlers(t *testing.T) {
	core := newCore(t)
	ctx := context.Background()

	var seen []string
	core.OnEvent(func(_ context.Context, event stream.Event) {
		seen = append(seen, event.Name)
	})

	if _, err := core.Follow(ctx, 1, stream.Target{Kind: stream.KindUser, ID: 2}); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if _, err := core.Record(ctx, stream.RecordInput{
		ActorID: 1,
		Verb:    taxonomy.VerbPost,
		Target:  stream.Target{Kind: stream.KindPage, ID: 10},
	}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := core.PostComment(ctx, stream.PostInput{PageID: 10, AuthorID: 1, Content: "hi"}); err != nil {
		t.Fatalf("post comment: %v", err)
	}

	want := []string{stream.EventFollowed, stream.EventActivityCreated, stream.EventCommentPosted}
	if len(seen) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("event %d = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestThreadLifecycleThroughFacade(t *testing.T) {
	core := newCore(t)
	ctx := context.Background()

	root, err := core.PostComment(ctx, stream.PostInput{PageID: 10, AuthorID: 1, Content: "first"})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	reply, err := core.PostComment(ctx, stream.PostInput{PageID: 10, AuthorID: 2, Content: "second", ReplyToID: &root.ID})
	if err != nil {
		t.Fatalf("post reply: %v", err)
	}

	if _, err := core.ToggleCommentDeleted(ctx, reply.ID, 1); !errors.Is(err, stream.ErrPermissionDenied) {
		t.Fatalf("expected permission denied for non-author, got %v", err)
	}
	toggled, err := core.ToggleCommentDeleted(ctx, reply.ID, 2)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.Deleted {
		t.Fatal("comment must be deleted")
	}

	n, err := core.CommentCount(ctx, 10, false)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("deleted comments must stay counted in storage, got %d", n)
	}
}
