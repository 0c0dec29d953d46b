package models

import "time"

// Activity is the persisted form of a stream entry. Rows are immutable
// once created except for the Deleted flag.
type Activity struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ActorID      int64     `json:"actorID" gorm:"not null;index"`
	Verb         string    `json:"verb" gorm:"type:text;not null;index"`
	TargetKind   string    `json:"targetKind" gorm:"type:text;not null;index:idx_activity_target"`
	TargetID     int64     `json:"targetID" gorm:"not null;index:idx_activity_target"`
	ScopeID      *int64    `json:"scopeID" gorm:"index"`
	Scope        *Scope    `json:"-" gorm:"foreignKey:ScopeID;references:ID"`
	ReplyToID    *int64    `json:"replyToID" gorm:"index"`
	AbsReplyToID *int64    `json:"absReplyToID" gorm:"index"`
	CreatedOn    time.Time `json:"createdOn" gorm:"not null;index:idx_activity_recency,sort:desc"`
	Deleted      bool      `json:"deleted" gorm:"not null;default:false;index"`
}

// Relationship is a directed follow edge. The composite unique index is
// what makes concurrent identical follows converge to one row.
type Relationship struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	SourceID   int64     `json:"sourceID" gorm:"not null;index;uniqueIndex:idx_edge"`
	TargetKind string    `json:"targetKind" gorm:"type:text;not null;uniqueIndex:idx_edge"`
	TargetID   int64     `json:"targetID" gorm:"not null;index;uniqueIndex:idx_edge"`
	CreatedOn  time.Time `json:"createdOn" gorm:"not null"`
	Deleted    bool      `json:"deleted" gorm:"not null;default:false;index"`
}

// Comment is a threaded comment row attached to a page.
type Comment struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PageID       int64     `json:"pageID" gorm:"not null;index"`
	AuthorID     int64     `json:"authorID" gorm:"not null;index"`
	Content      string    `json:"content" gorm:"type:text;not null"`
	ReplyToID    *int64    `json:"replyToID" gorm:"index"`
	AbsReplyToID *int64    `json:"absReplyToID" gorm:"index"`
	CreatedOn    time.Time `json:"createdOn" gorm:"not null;index:idx_comment_recency,sort:desc"`
	Deleted      bool      `json:"deleted" gorm:"not null;default:false"`
}

// Scope mirrors the visibility flags of an externally-owned container.
// The id is assigned by the owner, never by this store.
type Scope struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	NotListed bool      `json:"notListed" gorm:"not null;default:false"`
	Archived  bool      `json:"archived" gorm:"not null;default:false"`
	SyncedOn  time.Time `json:"syncedOn" gorm:"not null"`
}
