package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"zenith/internal/middleware"
	"zenith/internal/models"
	"zenith/internal/observability"
	"zenith/internal/repository"
	"zenith/internal/storage"
	"zenith/internal/validation"

	"gorm.io/gorm"
)

const (
	maxTitleLength   = 200
	maxExcerptLength = 300
	maxMetaLength    = 160
)

// PostService manages the devlog post lifecycle.
type PostService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	media      *storage.MediaStore
}

// NewPostService creates a new post service.
func NewPostService(posts repository.PostRepository, categories repository.CategoryRepository, media *storage.MediaStore) *PostService {
	return &PostService{posts: posts, categories: categories, media: media}
}

// PostInput carries the editable fields of a post. FeaturedImage is a media
// path already written by the handler.
type PostInput struct {
	Title           string
	Content         string
	Excerpt         string
	MetaDescription string
	CategoryID      uint
	FeaturedImage   string
	Publish         bool
}

func (s *PostService) validateInput(ctx context.Context, input PostInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.NewFieldValidationError("title", "O título é obrigatório")
	}
	if len(title) > maxTitleLength {
		return models.NewFieldValidationError("title", "O título deve ter no máximo 200 caracteres")
	}
	if strings.TrimSpace(input.Content) == "" {
		return models.NewFieldValidationError("content", "O conteúdo é obrigatório")
	}
	if len(input.Excerpt) > maxExcerptLength {
		return models.NewFieldValidationError("excerpt", "O resumo deve ter no máximo 300 caracteres")
	}
	if len(input.MetaDescription) > maxMetaLength {
		return models.NewFieldValidationError("meta_description", "A meta descrição deve ter no máximo 160 caracteres")
	}
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewFieldValidationError("category", "Selecione uma categoria válida")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Create builds a post from input. The slug is derived from the title; a
// collision is reported against the title field since that is what the
// author typed.
func (s *PostService) Create(ctx context.Context, author *models.User, input PostInput) (*models.Post, error) {
	if !author.IsStaff {
		return nil, models.NewPermissionError("Você não tem permissão para criar publicações")
	}
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	slug := validation.Slugify(title)
	if slug == "" {
		return nil, models.NewFieldValidationError("title", "O título precisa conter letras ou números")
	}

	if taken, err := s.posts.SlugExists(ctx, slug, 0); err != nil {
		return nil, models.NewInternalError(err)
	} else if taken {
		return nil, models.NewFieldValidationError("title", "Já existe uma publicação com este título")
	}

	post := &models.Post{
		Title:           title,
		Slug:            slug,
		Content:         input.Content,
		Excerpt:         strings.TrimSpace(input.Excerpt),
		MetaDescription: strings.TrimSpace(input.MetaDescription),
		FeaturedImage:   input.FeaturedImage,
		CategoryID:      input.CategoryID,
		AuthorID:        author.ID,
		Status:          models.PostStatusDraft,
	}
	if input.Publish {
		now := time.Now()
		post.Status = models.PostStatusPublished
		post.PublishedAt = &now
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, models.MapUniqueViolation(err, map[string]string{
			"title": "Já existe uma publicação com este título",
			"slug":  "Já existe uma publicação com este título",
		}, "Já existe uma publicação com este título")
	}
	return post, nil
}

// Update edits a post in place. The slug never changes after creation, so
// links keep working. The publish flag mirrors the edit form checkbox: on
// transitions to published, off reverts to draft.
func (s *PostService) Update(ctx context.Context, actor *models.User, id uint, input PostInput) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Publicação", id)
		}
		return nil, models.NewInternalError(err)
	}
	if err := s.authorize(actor, post); err != nil {
		return nil, err
	}
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if taken, err := s.posts.TitleExists(ctx, title, post.ID); err != nil {
		return nil, models.NewInternalError(err)
	} else if taken {
		return nil, models.NewFieldValidationError("title", "Já existe uma publicação com este título")
	}

	post.Title = title
	post.Content = input.Content
	post.Excerpt = strings.TrimSpace(input.Excerpt)
	post.MetaDescription = strings.TrimSpace(input.MetaDescription)
	post.CategoryID = input.CategoryID
	if input.FeaturedImage != "" {
		if post.FeaturedImage != "" && post.FeaturedImage != input.FeaturedImage {
			s.cleanupImage(ctx, post.FeaturedImage)
		}
		post.FeaturedImage = input.FeaturedImage
	}

	if input.Publish {
		if !post.IsPublished() {
			post.Status = models.PostStatusPublished
			if post.PublishedAt == nil {
				now := time.Now()
				post.PublishedAt = &now
			}
		}
	} else if post.IsPublished() {
		post.Status = models.PostStatusDraft
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

// Publish transitions a post to published. Republishing an archived or
// draft post keeps the original PublishedAt; it is set exactly once.
func (s *PostService) Publish(ctx context.Context, actor *models.User, id uint) (*models.Post, error) {
	return s.transition(ctx, actor, id, func(post *models.Post) {
		post.Status = models.PostStatusPublished
		if post.PublishedAt == nil {
			now := time.Now()
			post.PublishedAt = &now
		}
	})
}

// Archive retires a post from the public listing without deleting it.
func (s *PostService) Archive(ctx context.Context, actor *models.User, id uint) (*models.Post, error) {
	return s.transition(ctx, actor, id, func(post *models.Post) {
		post.Status = models.PostStatusArchived
	})
}

func (s *PostService) transition(ctx context.Context, actor *models.User, id uint, apply func(*models.Post)) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Publicação", id)
		}
		return nil, models.NewInternalError(err)
	}
	if err := s.authorize(actor, post); err != nil {
		return nil, err
	}
	apply(post)
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

// Delete removes a post and its likes and comments. The featured image is
// cleaned up best-effort after the database commit.
func (s *PostService) Delete(ctx context.Context, actor *models.User, id uint) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Publicação", id)
		}
		return models.NewInternalError(err)
	}
	if err := s.authorize(actor, post); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return models.NewInternalError(err)
	}
	if post.FeaturedImage != "" {
		s.cleanupImage(ctx, post.FeaturedImage)
	}
	return nil
}

func (s *PostService) authorize(actor *models.User, post *models.Post) error {
	if actor == nil {
		return models.NewPermissionError("Faça login para continuar")
	}
	if actor.IsStaff || actor.ID == post.AuthorID {
		return nil
	}
	return models.NewPermissionError("Você não tem permissão para alterar esta publicação")
}

func (s *PostService) cleanupImage(ctx context.Context, path string) {
	if s.media == nil {
		return
	}
	if err := s.media.Delete(path); err != nil {
		middleware.Logger.WarnContext(ctx, "featured image cleanup failed",
			"path", path, "error", err.Error())
	}
}

// ListPublished returns one page of the public feed plus the total count.
func (s *PostService) ListPublished(ctx context.Context, filter repository.PostFilter) ([]*models.Post, int64, error) {
	posts, total, err := s.posts.ListPublished(ctx, filter)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

// GetDetail loads a post for its detail page. Drafts and archived posts are
// only visible to staff and the author; everyone else gets a not-found so
// unpublished URLs cannot be probed.
func (s *PostService) GetDetail(ctx context.Context, slug string, viewer *models.User) (*models.Post, error) {
	var viewerID uint
	if viewer != nil {
		viewerID = viewer.ID
	}
	post, err := s.posts.GetBySlug(ctx, slug, viewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Publicação", slug)
		}
		return nil, models.NewInternalError(err)
	}
	if !post.IsPublished() {
		if viewer == nil || (!viewer.IsStaff && viewer.ID != post.AuthorID) {
			return nil, models.NewNotFoundError("Publicação", slug)
		}
	}
	return post, nil
}

// RecordView bumps the view counter and returns the fresh value. The update
// is a relative delta so concurrent views all count.
func (s *PostService) RecordView(ctx context.Context, post *models.Post) (uint, error) {
	count, err := s.posts.IncrementViewCount(ctx, post.ID)
	if err != nil {
		return post.ViewCount, models.NewInternalError(err)
	}
	post.ViewCount = count
	observability.PostViewsTotal.WithLabelValues(post.Slug).Inc()
	return count, nil
}

// Related returns up to three published posts from the same category.
func (s *PostService) Related(ctx context.Context, post *models.Post) ([]*models.Post, error) {
	related, err := s.posts.Related(ctx, post)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return related, nil
}

// Dashboard returns every post visible on the management screen: staff see
// all posts, other users only their own.
func (s *PostService) Dashboard(ctx context.Context, actor *models.User) ([]*models.Post, error) {
	if actor == nil {
		return nil, models.NewPermissionError("Faça login para continuar")
	}
	var posts []*models.Post
	var err error
	if actor.IsStaff {
		posts, err = s.posts.ListAll(ctx)
	} else {
		posts, err = s.posts.ListByAuthor(ctx, actor.ID)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}
