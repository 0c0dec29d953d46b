package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/studyhall/stream/internal/domain"
	"github.com/studyhall/stream/internal/infra/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func syncScope(t *testing.T, db *gorm.DB, id int64, notListed, archived bool) {
	t.Helper()
	scopes := NewScopeRepository(db)
	err := scopes.Sync(context.Background(), domain.Scope{
		ID:        id,
		NotListed: notListed,
		Archived:  archived,
	}, time.Now())
	if err != nil {
		t.Fatalf("sync scope %d: %v", id, err)
	}
}

// testTicker hands out strictly increasing timestamps for seeding rows.
type testTicker struct {
	now time.Time
}

func newTicker() *testTicker {
	return &testTicker{now: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testTicker) next() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}
