// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"strings"

	"zenith/internal/cache"
	"zenith/internal/models"
	"zenith/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PageSize is the number of posts per listing page.
const PageSize = 10

// RelatedLimit caps the number of related posts shown on a detail page.
const RelatedLimit = 3

// PostFilter narrows the public listing.
type PostFilter struct {
	CategorySlug string
	Query        string
	Page         int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string, currentUserID uint) (*models.Post, error)
	ListPublished(ctx context.Context, filter PostFilter) ([]*models.Post, int64, error)
	ListByAuthor(ctx context.Context, authorID uint) ([]*models.Post, error)
	ListAll(ctx context.Context) ([]*models.Post, error)
	Related(ctx context.Context, post *models.Post) ([]*models.Post, error)
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
	TitleExists(ctx context.Context, title string, excludeID uint) (bool, error)
	IncrementViewCount(ctx context.Context, id uint) (uint, error)
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	LikesCount(ctx context.Context, postID uint) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
// comments_count considers approved comments only.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.is_approved) as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Create(post).Error
	if err == nil {
		cache.InvalidatePostLists(ctx)
	}
	return err
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.Slug)
	cache.InvalidatePostLists(ctx)
	return nil
}

// Delete removes the post together with its likes and comments in one
// transaction.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	var slug string
	r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Pluck("slug", &slug)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return err
	}
	if slug != "" {
		cache.InvalidatePost(ctx, slug)
	}
	cache.InvalidatePostLists(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Author").
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetBySlug loads a post with its computed counts. The anonymous variant is
// served cache-aside; logged in viewers bypass the cache because the liked
// flag is per user.
func (r *postRepository) GetBySlug(ctx context.Context, slug string, currentUserID uint) (*models.Post, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "GetBySlug", "posts")
	defer span.End()

	fetch := func(dest *models.Post) error {
		return r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
			Preload("Category").
			Preload("Author").
			Where("posts.slug = ?", slug).
			First(dest).Error
	}

	var post models.Post
	if currentUserID == 0 {
		err := cache.CacheAside(ctx, cache.PostKey(slug), &post, cache.PostTTL, func() error {
			return fetch(&post)
		})
		if err != nil {
			return nil, err
		}
		return &post, nil
	}

	if err := fetch(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

// publishedPage is the cached shape of one listing page.
type publishedPage struct {
	Posts []*models.Post `json:"posts"`
	Total int64          `json:"total"`
}

// ListPublished returns one page of the public listing, cache-aside per
// page/category/query combination. Entries never carry a per-user liked flag
// so a cached page is valid for every viewer.
func (r *postRepository) ListPublished(ctx context.Context, filter PostFilter) ([]*models.Post, int64, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "ListPublished", "posts")
	defer span.End()

	page := filter.Page
	if page < 1 {
		page = 1
	}

	var result publishedPage
	key := cache.PostListKey(page, filter.CategorySlug, filter.Query)
	err := cache.CacheAside(ctx, key, &result, cache.PostListTTL, func() error {
		posts, total, err := r.listPublished(ctx, filter, page)
		if err != nil {
			return err
		}
		result = publishedPage{Posts: posts, Total: total}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return result.Posts, result.Total, nil
}

func (r *postRepository) listPublished(ctx context.Context, filter PostFilter, page int) ([]*models.Post, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("posts.status = ?", models.PostStatusPublished)

	if filter.CategorySlug != "" {
		base = base.Joins("JOIN categories ON categories.id = posts.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}
	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		base = base.Where(
			"LOWER(posts.title) LIKE ? OR LOWER(posts.content) LIKE ? OR LOWER(posts.excerpt) LIKE ?",
			like, like, like)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*models.Post
	err := r.applyPostDetails(base.Session(&gorm.Session{}), 0).
		Preload("Category").
		Preload("Author").
		Order("posts.published_at DESC, posts.created_at DESC").
		Limit(PageSize).
		Offset((page - 1) * PageSize).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), 0).
		Preload("Category").
		Where("posts.author_id = ?", authorID).
		Order("posts.created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListAll(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), 0).
		Preload("Category").
		Preload("Author").
		Order("posts.created_at DESC").
		Find(&posts).Error
	return posts, err
}

// Related returns published posts sharing the category, newest first,
// excluding the post itself. Cached per slug alongside the detail entry.
func (r *postRepository) Related(ctx context.Context, post *models.Post) ([]*models.Post, error) {
	var posts []*models.Post
	err := cache.CacheAside(ctx, cache.RelatedKey(post.Slug), &posts, cache.RelatedTTL, func() error {
		return r.db.WithContext(ctx).
			Preload("Category").
			Where("status = ? AND category_id = ? AND id <> ?", models.PostStatusPublished, post.CategoryID, post.ID).
			Order("published_at DESC").
			Limit(RelatedLimit).
			Find(&posts).Error
	})
	return posts, err
}

func (r *postRepository) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Post{}).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) TitleExists(ctx context.Context, title string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Post{}).Where("title = ?", title)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// IncrementViewCount applies a relative UPDATE so concurrent views are never
// lost, then rereads the stored value.
func (r *postRepository) IncrementViewCount(ctx context.Context, id uint) (uint, error) {
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
	if err != nil {
		return 0, err
	}
	var count uint
	err = r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Pluck("view_count", &count).Error
	return count, err
}

// Like inserts the pair idempotently. ON CONFLICT DO NOTHING makes concurrent
// double-toggles safe.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	like := models.Like{UserID: userID, PostID: postID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).
		Create(&like).Error
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) LikesCount(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
