package repository

import (
	"context"

	"zenith/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, approvedOnly bool) ([]*models.Comment, error)
	ListPending(ctx context.Context) ([]*models.Comment, error)
	Approve(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
	ApprovedCount(ctx context.Context, postID uint) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author.Profile").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost returns comments oldest first. Moderators pass approvedOnly
// false to see the queue inline.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint, approvedOnly bool) ([]*models.Comment, error) {
	q := r.db.WithContext(ctx).
		Preload("Author.Profile").
		Where("post_id = ?", postID)
	if approvedOnly {
		q = q.Where("is_approved = ?", true)
	}
	var comments []*models.Comment
	err := q.Order("created_at ASC").Find(&comments).Error
	return comments, err
}

func (r *commentRepository) ListPending(ctx context.Context) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author.Profile").
		Where("is_approved = ?", false).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) Approve(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		UpdateColumn("is_approved", true).Error
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}

func (r *commentRepository) ApprovedCount(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ? AND is_approved = ?", postID, true).
		Count(&count).Error
	return count, err
}
