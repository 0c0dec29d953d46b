package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/studyhall/stream/internal/domain"
	"github.com/studyhall/stream/internal/infra/database/models"
)

// ScopeRepository keeps the local mirror of externally-owned scope
// visibility flags. Feed predicates join against it in SQL.
type ScopeRepository struct {
	db *gorm.DB
}

func NewScopeRepository(db *gorm.DB) *ScopeRepository {
	return &ScopeRepository{db: db}
}

// Sync upserts the flags for one scope id.
func (r *ScopeRepository) Sync(ctx context.Context, scope domain.Scope, now time.Time) error {
	row := models.Scope{
		ID:        scope.ID,
		NotListed: scope.NotListed,
		Archived:  scope.Archived,
		SyncedOn:  now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"not_listed", "archived", "synced_on"}),
	}).Create(&row).Error
}

func (r *ScopeRepository) Get(ctx context.Context, id int64) (domain.Scope, error) {
	var row models.Scope
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Scope{}, domain.TargetNotFoundError{
			Target: domain.Target{Kind: domain.KindProject, ID: id},
		}
	}
	if err != nil {
		return domain.Scope{}, err
	}
	return domain.Scope{ID: row.ID, NotListed: row.NotListed, Archived: row.Archived}, nil
}
