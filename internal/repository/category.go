package repository

import (
	"context"
	"errors"

	"zenith/internal/cache"
	"zenith/internal/models"

	"gorm.io/gorm"
)

// ErrCategoryInUse is returned when deleting a category that still has posts.
var ErrCategoryInUse = errors.New("category has posts referencing it")

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	ListActive(ctx context.Context) ([]*models.Category, error)
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) ListActive(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := cache.CacheAside(ctx, cache.CategoryKey(), &categories, cache.CategoryTTL, func() error {
		return r.db.WithContext(ctx).
			Where("is_active = ?", true).
			Order("name ASC").
			Find(&categories).Error
	})
	return categories, err
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	err := r.db.WithContext(ctx).Create(category).Error
	if err == nil {
		cache.InvalidateCategories(ctx)
	}
	return err
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	err := r.db.WithContext(ctx).Save(category).Error
	if err == nil {
		cache.InvalidateCategories(ctx)
	}
	return err
}

// Delete refuses to remove a category that posts still reference.
func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("category_id = ?", id).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	err := r.db.WithContext(ctx).Delete(&models.Category{}, id).Error
	if err == nil {
		cache.InvalidateCategories(ctx)
	}
	return err
}
