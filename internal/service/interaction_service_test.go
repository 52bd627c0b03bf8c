package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"zenith/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publishedPost(t *testing.T, e *serviceEnv, author *models.User, title string) *models.Post {
	t.Helper()
	now := time.Now()
	post := &models.Post{
		Title:       title,
		Slug:        strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		Content:     "conteúdo",
		Status:      models.PostStatusPublished,
		PublishedAt: &now,
		AuthorID:    author.ID,
		CategoryID:  1,
	}
	if err := e.db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

func TestInteractionService_ToggleLike(t *testing.T) {
	e := newServiceEnv(t)
	svc := NewInteractionService(e.posts, e.comments)
	ctx := context.Background()

	staff := e.user(t, "equipe", true)
	fan := e.user(t, "fas", false)
	e.category(t, "Devlog", "devlog")
	post := publishedPost(t, e, staff, "Post curtivel")

	result, err := svc.ToggleLike(ctx, fan, post.ID)
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.EqualValues(t, 1, result.LikesCount)

	result, err = svc.ToggleLike(ctx, fan, post.ID)
	require.NoError(t, err)
	assert.False(t, result.Liked)
	assert.EqualValues(t, 0, result.LikesCount)
}

func TestInteractionService_ToggleLikeUnpublished(t *testing.T) {
	e := newServiceEnv(t)
	svc := NewInteractionService(e.posts, e.comments)
	ctx := context.Background()

	staff := e.user(t, "equipe", true)
	fan := e.user(t, "fas", false)
	e.category(t, "Devlog", "devlog")

	draft := &models.Post{
		Title: "Rascunho", Slug: "rascunho", Content: "x",
		Status: models.PostStatusDraft, AuthorID: staff.ID, CategoryID: 1,
	}
	require.NoError(t, e.db.Create(draft).Error)

	_, err := svc.ToggleLike(ctx, fan, draft.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	_, err = svc.ToggleLike(ctx, fan, 9999)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestInteractionService_AddCommentValidation(t *testing.T) {
	e := newServiceEnv(t)
	svc := NewInteractionService(e.posts, e.comments)
	ctx := context.Background()

	staff := e.user(t, "equipe", true)
	reader := e.user(t, "leitor", false)
	e.category(t, "Devlog", "devlog")
	post := publishedPost(t, e, staff, "Post comentavel")

	_, err := svc.AddComment(ctx, reader, post.ID, "   ")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "O comentário não pode estar vazio", appErr.Message)

	long := strings.Repeat("ã", models.MaxCommentLength+1)
	_, err = svc.AddComment(ctx, reader, post.ID, long)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "O comentário deve ter no máximo 500 caracteres", appErr.Message)

	// Exactly at the limit passes; length counts runes, not bytes.
	exact := strings.Repeat("ã", models.MaxCommentLength)
	comment, err := svc.AddComment(ctx, reader, post.ID, exact)
	require.NoError(t, err)
	assert.False(t, comment.IsApproved)
}

func TestInteractionService_StaffAutoApprove(t *testing.T) {
	e := newServiceEnv(t)
	svc := NewInteractionService(e.posts, e.comments)
	ctx := context.Background()

	staff := e.user(t, "equipe", true)
	reader := e.user(t, "leitor", false)
	e.category(t, "Devlog", "devlog")
	post := publishedPost(t, e, staff, "Post moderado")

	fromStaff, err := svc.AddComment(ctx, staff, post.ID, "resposta oficial")
	require.NoError(t, err)
	assert.True(t, fromStaff.IsApproved)

	fromReader, err := svc.AddComment(ctx, reader, post.ID, "pergunta")
	require.NoError(t, err)
	assert.False(t, fromReader.IsApproved)

	// Readers only see approved comments, staff see the queue inline.
	visible, err := svc.ListComments(ctx, reader, post.ID)
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	all, err := svc.ListComments(ctx, staff, post.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestInteractionService_ApproveComment(t *testing.T) {
	e := newServiceEnv(t)
	svc := NewInteractionService(e.posts, e.comments)
	ctx := context.Background()

	staff := e.user(t, "equipe", true)
	reader := e.user(t, "leitor", false)
	e.category(t, "Devlog", "devlog")
	post := publishedPost(t, e, staff, "Post aprovavel")

	comment, err := svc.AddComment(ctx, reader, post.ID, "aguardando")
	require.NoError(t, err)

	_, _, err = svc.ApproveComment(ctx, reader, comment.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PERMISSION_DENIED", appErr.Code)

	approved, count, err := svc.ApproveComment(ctx, staff, comment.ID)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)
	assert.EqualValues(t, 1, count)

	// Idempotent.
	again, count, err := svc.ApproveComment(ctx, staff, comment.ID)
	require.NoError(t, err)
	assert.True(t, again.IsApproved)
	assert.EqualValues(t, 1, count)

	queue, err := svc.PendingComments(ctx, staff)
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestInteractionService_DeleteComment(t *testing.T) {
	e := newServiceEnv(t)
	svc := NewInteractionService(e.posts, e.comments)
	ctx := context.Background()

	staff := e.user(t, "equipe", true)
	author := e.user(t, "autor", false)
	stranger := e.user(t, "estranho", false)
	e.category(t, "Devlog", "devlog")
	post := publishedPost(t, e, staff, "Post limpavel")

	comment, err := svc.AddComment(ctx, author, post.ID, "meu comentário")
	require.NoError(t, err)

	_, err = svc.DeleteComment(ctx, stranger, comment.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PERMISSION_DENIED", appErr.Code)

	count, err := svc.DeleteComment(ctx, author, comment.ID)
	require.NoError(t, err, "authors delete their own")
	assert.EqualValues(t, 0, count)

	second, err := svc.AddComment(ctx, author, post.ID, "outro")
	require.NoError(t, err)
	_, err = svc.DeleteComment(ctx, staff, second.ID)
	require.NoError(t, err, "staff delete any")
}
