package domain

import "time"

// ObjectKind tags the polymorphic side of a Target reference.
type ObjectKind string

const (
	KindStatus       ObjectKind = "status"
	KindProject      ObjectKind = "project"
	KindRemoteObject ObjectKind = "remote_object"
	KindUser         ObjectKind = "user"
	KindPage         ObjectKind = "page"
)

// Target is a polymorphic reference to an object owned outside the core.
type Target struct {
	Kind ObjectKind `json:"kind"`
	ID   int64      `json:"id"`
}

// Scope mirrors the visibility flags of an externally-owned container
// (a project or group). The core never owns scope data beyond these.
type Scope struct {
	ID        int64 `json:"id"`
	NotListed bool  `json:"notListed"`
	Archived  bool  `json:"archived"`
}

// Activity is a single activity-stream entry. Once created, only the
// Deleted flag may change.
type Activity struct {
	ID           int64     `json:"id"`
	ActorID      int64     `json:"actorID"`
	Verb         string    `json:"verb"`
	Target       Target    `json:"target"`
	ScopeID      *int64    `json:"scopeID,omitempty"`
	ReplyToID    *int64    `json:"replyToID,omitempty"`
	AbsReplyToID *int64    `json:"absReplyToID,omitempty"`
	CreatedOn    time.Time `json:"createdOn"`
	Deleted      bool      `json:"deleted"`
}

// Root returns the id of the thread root this activity belongs to.
func (a Activity) Root() int64 {
	if a.AbsReplyToID != nil {
		return *a.AbsReplyToID
	}
	return a.ID
}

// Relationship is a directed follow edge from an actor to another actor
// or to a scope. Edges are soft-deleted on unfollow, never removed.
type Relationship struct {
	ID        int64     `json:"id"`
	SourceID  int64     `json:"sourceID"`
	Target    Target    `json:"target"`
	CreatedOn time.Time `json:"createdOn"`
	Deleted   bool      `json:"deleted"`
}

// Comment is a threaded comment attached to a page-like container.
type Comment struct {
	ID           int64     `json:"id"`
	PageID       int64     `json:"pageID"`
	AuthorID     int64     `json:"authorID"`
	Content      string    `json:"content"`
	ReplyToID    *int64    `json:"replyToID,omitempty"`
	AbsReplyToID *int64    `json:"absReplyToID,omitempty"`
	CreatedOn    time.Time `json:"createdOn"`
	Deleted      bool      `json:"deleted"`
}

// Root returns the id of the thread root this comment belongs to.
func (c Comment) Root() int64 {
	if c.AbsReplyToID != nil {
		return *c.AbsReplyToID
	}
	return c.ID
}

// ScopeRank is one entry of a popularity/activity ranking of scopes.
type ScopeRank struct {
	ScopeID int64 `json:"scopeID"`
	Count   int64 `json:"count"`
}

// Resolution is what a target resolver produces for display purposes.
type Resolution struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Event is a domain event emitted after a successful write.
type Event struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	OccurredAt time.Time      `json:"occurredAt"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// Domain event names.
const (
	EventFollowed        = "graph.followed"
	EventUnfollowed      = "graph.unfollowed"
	EventActivityCreated = "activity.created"
	EventActivityDeleted = "activity.deleted"
	EventCommentPosted   = "thread.comment_posted"
)
