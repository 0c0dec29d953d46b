package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/studyhall/stream/internal/domain"
	"github.com/studyhall/stream/internal/infra/database/models"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	row := models.Comment{
		PageID:       c.PageID,
		AuthorID:     c.AuthorID,
		Content:      c.Content,
		ReplyToID:    c.ReplyToID,
		AbsReplyToID: c.AbsReplyToID,
		CreatedOn:    c.CreatedOn,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Comment{}, err
	}
	return toComment(row), nil
}

func (r *CommentRepository) Get(ctx context.Context, id int64) (domain.Comment, error) {
	var row models.Comment
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Comment{}, domain.NotFoundError{Resource: "comment"}
	}
	if err != nil {
		return domain.Comment{}, err
	}
	return toComment(row), nil
}

func (r *CommentRepository) SetDeleted(ctx context.Context, id int64, deleted bool) error {
	result := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Update("deleted", deleted)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "comment"}
	}
	return nil
}

// FirstLevel pages through a container's top-level comments, newest
// first. Deleted comments stay in the sequence so presentation can
// render their placeholder above surviving replies.
func (r *CommentRepository) FirstLevel(ctx context.Context, pageID int64, offset, limit int) ([]domain.Comment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("page_id = ? AND reply_to_id IS NULL", pageID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Comment
	err := q.Order(recencyOrder).Offset(offset).Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return toComments(rows), total, nil
}

// Replies returns all descendants of a thread root, oldest first.
func (r *CommentRepository) Replies(ctx context.Context, rootID int64) ([]domain.Comment, error) {
	var rows []models.Comment
	err := r.db.WithContext(ctx).
		Where("abs_reply_to_id = ?", rootID).
		Order("created_on, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toComments(rows), nil
}

func (r *CommentRepository) Count(ctx context.Context, pageID int64, firstLevelOnly bool) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("page_id = ?", pageID)
	if firstLevelOnly {
		q = q.Where("reply_to_id IS NULL")
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}
