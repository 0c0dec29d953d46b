package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/studyhall/stream/internal/domain"
	"github.com/studyhall/stream/internal/infra/database/models"
)

type RelationshipRepository struct {
	db *gorm.DB
}

func NewRelationshipRepository(db *gorm.DB) *RelationshipRepository {
	return &RelationshipRepository{db: db}
}

// Upsert creates the edge, reinstates it if soft-deleted, or returns it
// unchanged if already active. The second return reports whether the
// edge transitioned to active by this call. Concurrent identical
// follows converge on the unique (source, target) index: a duplicate
// key is resolved by re-reading the surviving row.
func (r *RelationshipRepository) Upsert(ctx context.Context, sourceID int64, target domain.Target, now time.Time) (domain.Relationship, bool, error) {
	var row models.Relationship
	changed := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := edgeQuery(tx, sourceID, target).Take(&row).Error
		if err == nil {
			if !row.Deleted {
				return nil
			}
			if err := tx.Model(&models.Relationship{}).
				Where("id = ?", row.ID).
				Update("deleted", false).Error; err != nil {
				return err
			}
			row.Deleted = false
			changed = true
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		row = models.Relationship{
			SourceID:   sourceID,
			TargetKind: string(target.Kind),
			TargetID:   target.ID,
			CreatedOn:  now,
		}
		err = tx.Create(&row).Error
		if err == nil {
			changed = true
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}

		// Lost the race against an identical follow; adopt its row.
		if err := edgeQuery(tx, sourceID, target).Take(&row).Error; err != nil {
			return err
		}
		if row.Deleted {
			if err := tx.Model(&models.Relationship{}).
				Where("id = ?", row.ID).
				Update("deleted", false).Error; err != nil {
				return err
			}
			row.Deleted = false
			changed = true
		}
		return nil
	})
	if err != nil {
		return domain.Relationship{}, false, err
	}
	return toRelationship(row), changed, nil
}

// SoftDelete marks an active edge deleted. Reports whether a row
// actually transitioned; absent or already-deleted edges are a no-op.
func (r *RelationshipRepository) SoftDelete(ctx context.Context, sourceID int64, target domain.Target) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Relationship{}).
		Where("source_id = ? AND target_kind = ? AND target_id = ? AND deleted = ?",
			sourceID, string(target.Kind), target.ID, false).
		Update("deleted", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *RelationshipRepository) Get(ctx context.Context, sourceID int64, target domain.Target) (domain.Relationship, error) {
	var row models.Relationship
	err := edgeQuery(r.db.WithContext(ctx), sourceID, target).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Relationship{}, domain.NotFoundError{Resource: "relationship"}
	}
	if err != nil {
		return domain.Relationship{}, err
	}
	return toRelationship(row), nil
}

// Followers returns the source actor ids of active edges onto target.
func (r *RelationshipRepository) Followers(ctx context.Context, target domain.Target) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.Relationship{}).
		Where("target_kind = ? AND target_id = ? AND deleted = ?", string(target.Kind), target.ID, false).
		Order("id").
		Pluck("source_id", &ids).Error
	return ids, err
}

// Following returns the targets of the source's active edges,
// optionally narrowed to one object kind.
func (r *RelationshipRepository) Following(ctx context.Context, sourceID int64, kind *domain.ObjectKind) ([]domain.Target, error) {
	q := r.db.WithContext(ctx).
		Where("source_id = ? AND deleted = ?", sourceID, false)
	if kind != nil {
		q = q.Where("target_kind = ?", string(*kind))
	}

	var rows []models.Relationship
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	targets := make([]domain.Target, len(rows))
	for i, row := range rows {
		targets[i] = domain.Target{Kind: domain.ObjectKind(row.TargetKind), ID: row.TargetID}
	}
	return targets, nil
}

func (r *RelationshipRepository) IsFollowing(ctx context.Context, sourceID int64, target domain.Target) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Relationship{}).
		Where("source_id = ? AND target_kind = ? AND target_id = ? AND deleted = ?",
			sourceID, string(target.Kind), target.ID, false).
		Count(&count).Error
	return count > 0, err
}

func (r *RelationshipRepository) CountFollowers(ctx context.Context, target domain.Target) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Relationship{}).
		Where("target_kind = ? AND target_id = ? AND deleted = ?", string(target.Kind), target.ID, false).
		Count(&count).Error
	return count, err
}

func (r *RelationshipRepository) CountFollowing(ctx context.Context, sourceID int64, kind *domain.ObjectKind) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Relationship{}).
		Where("source_id = ? AND deleted = ?", sourceID, false)
	if kind != nil {
		q = q.Where("target_kind = ?", string(*kind))
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

// PopularScopes ranks non-archived scopes by active follower count.
func (r *RelationshipRepository) PopularScopes(ctx context.Context, limit int) ([]domain.ScopeRank, error) {
	var rows []domain.ScopeRank
	err := r.db.WithContext(ctx).Model(&models.Relationship{}).
		Select("relationships.target_id AS scope_id, count(*) AS count").
		Joins("JOIN scopes ON scopes.id = relationships.target_id").
		Where("relationships.target_kind = ? AND relationships.deleted = ?", string(domain.KindProject), false).
		Where("scopes.archived = ?", false).
		Group("relationships.target_id").
		Order("count DESC, scope_id").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func edgeQuery(db *gorm.DB, sourceID int64, target domain.Target) *gorm.DB {
	return db.Where("source_id = ? AND target_kind = ? AND target_id = ?",
		sourceID, string(target.Kind), target.ID)
}
