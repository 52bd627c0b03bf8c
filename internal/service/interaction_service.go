package service

import (
	"context"
	"errors"
	"strings"

	"zenith/internal/cache"
	"zenith/internal/models"
	"zenith/internal/observability"
	"zenith/internal/repository"

	"gorm.io/gorm"
)

// InteractionService handles likes and moderated comments.
type InteractionService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
}

// NewInteractionService creates a new interaction service.
func NewInteractionService(posts repository.PostRepository, comments repository.CommentRepository) *InteractionService {
	return &InteractionService{posts: posts, comments: comments}
}

// LikeResult reports the state after a toggle.
type LikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

// ToggleLike flips the user's like on a post and returns the new state with
// the authoritative count.
func (s *InteractionService) ToggleLike(ctx context.Context, user *models.User, postID uint) (*LikeResult, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Publicação", postID)
		}
		return nil, models.NewInternalError(err)
	}
	if !post.IsPublished() {
		return nil, models.NewNotFoundError("Publicação", postID)
	}

	liked, err := s.posts.IsLiked(ctx, user.ID, post.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if liked {
		if err := s.posts.Unlike(ctx, user.ID, post.ID); err != nil {
			return nil, models.NewInternalError(err)
		}
		observability.LikeTogglesTotal.WithLabelValues("unliked").Inc()
	} else {
		if err := s.posts.Like(ctx, user.ID, post.ID); err != nil {
			return nil, models.NewInternalError(err)
		}
		observability.LikeTogglesTotal.WithLabelValues("liked").Inc()
	}

	count, err := s.posts.LikesCount(ctx, post.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.Slug)
	return &LikeResult{Liked: !liked, LikesCount: count}, nil
}

// AddComment validates and stores a comment. Staff comments are approved on
// the spot; everyone else waits for moderation.
func (s *InteractionService) AddComment(ctx context.Context, author *models.User, postID uint, content string) (*models.Comment, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, models.NewFieldValidationError("content", "O comentário não pode estar vazio")
	}
	if len([]rune(trimmed)) > models.MaxCommentLength {
		return nil, models.NewFieldValidationError("content", "O comentário deve ter no máximo 500 caracteres")
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Publicação", postID)
		}
		return nil, models.NewInternalError(err)
	}
	if !post.IsPublished() {
		return nil, models.NewNotFoundError("Publicação", postID)
	}

	comment := &models.Comment{
		PostID:     post.ID,
		AuthorID:   author.ID,
		Content:    trimmed,
		IsApproved: author.IsStaff,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	// Reread so the author association carries the profile for the avatar.
	if stored, err := s.comments.GetByID(ctx, comment.ID); err == nil {
		comment = stored
	} else {
		comment.Author = *author
	}

	if comment.IsApproved {
		observability.CommentsSubmittedTotal.WithLabelValues("auto_approved").Inc()
		cache.InvalidatePost(ctx, post.Slug)
	} else {
		observability.CommentsSubmittedTotal.WithLabelValues("pending").Inc()
	}
	return comment, nil
}

// ListComments returns a post's comments. Staff see the moderation queue
// inline; everyone else sees approved comments only.
func (s *InteractionService) ListComments(ctx context.Context, viewer *models.User, postID uint) ([]*models.Comment, error) {
	approvedOnly := viewer == nil || !viewer.IsStaff
	comments, err := s.comments.ListByPost(ctx, postID, approvedOnly)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// ApproveComment marks a comment approved and returns it together with the
// recomputed approved count for the parent post. Approving twice is a no-op.
func (s *InteractionService) ApproveComment(ctx context.Context, actor *models.User, commentID uint) (*models.Comment, int64, error) {
	if !actor.IsStaff {
		return nil, 0, models.NewPermissionError("Apenas moderadores podem aprovar comentários")
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, models.NewNotFoundError("Comentário", commentID)
		}
		return nil, 0, models.NewInternalError(err)
	}
	if !comment.IsApproved {
		if err := s.comments.Approve(ctx, comment.ID); err != nil {
			return nil, 0, models.NewInternalError(err)
		}
		comment.IsApproved = true
	}
	count, err := s.comments.ApprovedCount(ctx, comment.PostID)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	s.invalidatePostEntry(ctx, comment.PostID)
	return comment, count, nil
}

// DeleteComment removes a comment and returns the recomputed approved count
// for the parent post. Staff can remove any; authors only their own.
func (s *InteractionService) DeleteComment(ctx context.Context, actor *models.User, commentID uint) (int64, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, models.NewNotFoundError("Comentário", commentID)
		}
		return 0, models.NewInternalError(err)
	}
	if !actor.IsStaff && actor.ID != comment.AuthorID {
		return 0, models.NewPermissionError("Você não pode remover este comentário")
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return 0, models.NewInternalError(err)
	}
	count, err := s.comments.ApprovedCount(ctx, comment.PostID)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	s.invalidatePostEntry(ctx, comment.PostID)
	return count, nil
}

// invalidatePostEntry drops the cached detail for the post so its comment
// count is recomputed on the next read. Best effort.
func (s *InteractionService) invalidatePostEntry(ctx context.Context, postID uint) {
	if post, err := s.posts.GetByID(ctx, postID); err == nil {
		cache.InvalidatePost(ctx, post.Slug)
	}
}

// PendingComments returns the moderation queue.
func (s *InteractionService) PendingComments(ctx context.Context, actor *models.User) ([]*models.Comment, error) {
	if !actor.IsStaff {
		return nil, models.NewPermissionError("Apenas moderadores podem ver a fila de moderação")
	}
	comments, err := s.comments.ListPending(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}
