package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/studyhall/stream/internal/domain"
	"github.com/studyhall/stream/internal/infra/database/models"
	"github.com/studyhall/stream/taxonomy"
)

// recencyOrder is the total order of every feed: newest first, ties
// broken by id so pagination is deterministic under equal timestamps.
const recencyOrder = "created_on DESC, id DESC"

// activityRecencyOrder is recencyOrder with columns qualified for
// queries that join scopes, where bare id would be ambiguous.
const activityRecencyOrder = "activities.created_on DESC, activities.id DESC"

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create persists a new activity. If the activity is scoped, the scope
// mirror row must already exist.
func (r *ActivityRepository) Create(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	row := models.Activity{
		ActorID:      a.ActorID,
		Verb:         a.Verb,
		TargetKind:   string(a.Target.Kind),
		TargetID:     a.Target.ID,
		ScopeID:      a.ScopeID,
		ReplyToID:    a.ReplyToID,
		AbsReplyToID: a.AbsReplyToID,
		CreatedOn:    a.CreatedOn,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if a.ScopeID != nil {
			var scope models.Scope
			if err := tx.Where("id = ?", *a.ScopeID).Take(&scope).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.TargetNotFoundError{
						Target: domain.Target{Kind: domain.KindProject, ID: *a.ScopeID},
					}
				}
				return err
			}
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return domain.Activity{}, err
	}
	return toActivity(row), nil
}

func (r *ActivityRepository) Get(ctx context.Context, id int64) (domain.Activity, error) {
	var row models.Activity
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Activity{}, domain.NotFoundError{Resource: "activity"}
	}
	if err != nil {
		return domain.Activity{}, err
	}
	return toActivity(row), nil
}

// SetDeleted flips the only mutable field of an activity row.
func (r *ActivityRepository) SetDeleted(ctx context.Context, id int64, deleted bool) error {
	result := r.db.WithContext(ctx).Model(&models.Activity{}).
		Where("id = ?", id).
		Update("deleted", deleted)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "activity"}
	}
	return nil
}

// PublicFeed is the splash-page view: listed, scoped, non-follow
// activities about site-local objects.
func (r *ActivityRepository) PublicFeed(ctx context.Context, limit int) ([]domain.Activity, error) {
	var rows []models.Activity
	err := r.db.WithContext(ctx).Model(&models.Activity{}).
		Joins("JOIN scopes ON scopes.id = activities.scope_id").
		Where("activities.deleted = ?", false).
		Where("scopes.not_listed = ? AND scopes.archived = ?", false, false).
		Where("activities.verb <> ?", taxonomy.VerbFollow).
		Where("activities.target_kind NOT IN ?", []string{
			string(domain.KindRemoteObject),
			string(domain.KindStatus),
		}).
		Order(activityRecencyOrder).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toActivities(rows), nil
}

// DashboardFeed unions what the actor did, what followed actors did,
// and what happened in followed scopes, as one deduplicated page.
func (r *ActivityRepository) DashboardFeed(ctx context.Context, actorID int64, followedActors, followedScopes []int64, offset, limit int) ([]domain.Activity, int64, error) {
	cond := r.db.Where("actor_id = ?", actorID)
	if len(followedActors) > 0 {
		cond = cond.Or("actor_id IN ?", followedActors)
	}
	if len(followedScopes) > 0 {
		cond = cond.Or("scope_id IN ?", followedScopes)
	}

	q := r.db.WithContext(ctx).Model(&models.Activity{}).
		Where("deleted = ?", false).
		Where(cond)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Activity
	err := q.Order(recencyOrder).Offset(offset).Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return toActivities(rows), total, nil
}

// ActorFeed is the outsider view of one actor: their own activities,
// excluding anything in an unlisted scope.
func (r *ActivityRepository) ActorFeed(ctx context.Context, actorID int64, offset, limit int) ([]domain.Activity, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Activity{}).
		Joins("LEFT JOIN scopes ON scopes.id = activities.scope_id").
		Where("activities.actor_id = ? AND activities.deleted = ?", actorID, false).
		Where("activities.scope_id IS NULL OR scopes.not_listed = ?", false)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Activity
	err := q.Order(activityRecencyOrder).Offset(offset).Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return toActivities(rows), total, nil
}

// Replies returns all descendants of a thread root, oldest first.
func (r *ActivityRepository) Replies(ctx context.Context, rootID int64) ([]domain.Activity, error) {
	var rows []models.Activity
	err := r.db.WithContext(ctx).
		Where("abs_reply_to_id = ?", rootID).
		Order("created_on, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toActivities(rows), nil
}

// ActiveScopes ranks non-archived scopes by activity volume since the
// given instant.
func (r *ActivityRepository) ActiveScopes(ctx context.Context, since time.Time, limit int) ([]domain.ScopeRank, error) {
	var rows []domain.ScopeRank
	err := r.db.WithContext(ctx).Model(&models.Activity{}).
		Select("activities.scope_id AS scope_id, count(*) AS count").
		Joins("JOIN scopes ON scopes.id = activities.scope_id").
		Where("activities.deleted = ? AND activities.created_on >= ?", false, since).
		Where("scopes.archived = ?", false).
		Group("activities.scope_id").
		Order("count DESC, scope_id").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
