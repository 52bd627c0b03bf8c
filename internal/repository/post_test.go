package repository

import (
	"context"
	"fmt"
	"testing"

	"zenith/internal/cache"
	"zenith/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_ListPublished(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	devlog := createTestCategory(t, db, "Devlog", "devlog")
	patches := createTestCategory(t, db, "Patches", "patches")

	createTestPost(t, db, author, devlog, "Primeira atualizacao", true)
	createTestPost(t, db, author, patches, "Patch de balanceamento", true)
	createTestPost(t, db, author, devlog, "Rascunho interno", false)

	t.Run("only published", func(t *testing.T) {
		posts, total, err := repo.ListPublished(ctx, PostFilter{Page: 1})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		for _, p := range posts {
			assert.True(t, p.IsPublished())
		}
	})

	t.Run("category filter", func(t *testing.T) {
		posts, total, err := repo.ListPublished(ctx, PostFilter{CategorySlug: "patches", Page: 1})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, posts, 1)
		assert.Equal(t, "Patch de balanceamento", posts[0].Title)
	})

	t.Run("search filter", func(t *testing.T) {
		_, total, err := repo.ListPublished(ctx, PostFilter{Query: "balanceamento", Page: 1})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("search is case insensitive", func(t *testing.T) {
		posts, total, err := repo.ListPublished(ctx, PostFilter{Query: "BALANCEAMENTO", Page: 1})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, posts, 1)
		assert.Equal(t, "Patch de balanceamento", posts[0].Title)
	})

	t.Run("search matches the excerpt", func(t *testing.T) {
		require.NoError(t, db.Model(&models.Post{}).
			Where("title = ?", "Primeira atualizacao").
			UpdateColumn("excerpt", "Resumo do grande torneio").Error)
		posts, total, err := repo.ListPublished(ctx, PostFilter{Query: "TORNEIO", Page: 1})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, posts, 1)
		assert.Equal(t, "Primeira atualizacao", posts[0].Title)
	})

	t.Run("no match", func(t *testing.T) {
		posts, total, err := repo.ListPublished(ctx, PostFilter{Query: "inexistente", Page: 1})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, posts)
	})
}

func TestPostRepository_Pagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "paginator")
	category := createTestCategory(t, db, "Devlog", "devlog")
	for i := 0; i < PageSize+3; i++ {
		createTestPost(t, db, author, category, fmt.Sprintf("Post numero %d", i), true)
	}

	first, total, err := repo.ListPublished(ctx, PostFilter{Page: 1})
	require.NoError(t, err)
	assert.EqualValues(t, PageSize+3, total)
	assert.Len(t, first, PageSize)

	second, _, err := repo.ListPublished(ctx, PostFilter{Page: 2})
	require.NoError(t, err)
	assert.Len(t, second, 3)
}

func TestPostRepository_IncrementViewCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "viewer")
	category := createTestCategory(t, db, "Devlog", "devlog")
	post := createTestPost(t, db, author, category, "Post visitado", true)

	count, err := repo.IncrementViewCount(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	count, err = repo.IncrementViewCount(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestPostRepository_LikeIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "writer")
	fan := createTestUser(t, db, "fan")
	category := createTestCategory(t, db, "Devlog", "devlog")
	post := createTestPost(t, db, author, category, "Post curtido", true)

	require.NoError(t, repo.Like(ctx, fan.ID, post.ID))
	require.NoError(t, repo.Like(ctx, fan.ID, post.ID))

	count, err := repo.LikesCount(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	liked, err := repo.IsLiked(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	require.NoError(t, repo.Unlike(ctx, fan.ID, post.ID))
	liked, err = repo.IsLiked(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestPostRepository_GetBySlugComputedFields(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author2")
	fan := createTestUser(t, db, "fan2")
	category := createTestCategory(t, db, "Devlog", "devlog")
	post := createTestPost(t, db, author, category, "Post detalhado", true)

	require.NoError(t, repo.Like(ctx, fan.ID, post.ID))
	require.NoError(t, db.Create(&models.Comment{
		PostID: post.ID, AuthorID: fan.ID, Content: "aprovado", IsApproved: true,
	}).Error)
	require.NoError(t, db.Create(&models.Comment{
		PostID: post.ID, AuthorID: fan.ID, Content: "pendente", IsApproved: false,
	}).Error)

	got, err := repo.GetBySlug(ctx, post.Slug, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)
	assert.Equal(t, 1, got.CommentsCount, "pending comments are not counted")
	assert.True(t, got.Liked)
	assert.Equal(t, category.ID, got.Category.ID)

	anon, err := repo.GetBySlug(ctx, post.Slug, 0)
	require.NoError(t, err)
	assert.False(t, anon.Liked)
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author3")
	fan := createTestUser(t, db, "fan3")
	category := createTestCategory(t, db, "Devlog", "devlog")
	post := createTestPost(t, db, author, category, "Post removido", true)

	require.NoError(t, repo.Like(ctx, fan.ID, post.ID))
	require.NoError(t, db.Create(&models.Comment{
		PostID: post.ID, AuthorID: fan.ID, Content: "tchau", IsApproved: true,
	}).Error)

	require.NoError(t, repo.Delete(ctx, post.ID))

	var likes, comments, posts int64
	db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likes)
	db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments)
	db.Unscoped().Model(&models.Post{}).Where("id = ?", post.ID).Count(&posts)
	assert.Zero(t, likes)
	assert.Zero(t, comments)
	assert.Zero(t, posts)
}

func TestPostRepository_SlugAndTitleExists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author4")
	category := createTestCategory(t, db, "Devlog", "devlog")
	post := createTestPost(t, db, author, category, "Titulo unico", true)

	exists, err := repo.SlugExists(ctx, post.Slug, 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.SlugExists(ctx, post.Slug, post.ID)
	require.NoError(t, err)
	assert.False(t, exists, "own id is excluded")

	exists, err = repo.TitleExists(ctx, "Titulo unico", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.TitleExists(ctx, "Outro titulo", 0)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPostRepository_Related(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author5")
	devlog := createTestCategory(t, db, "Devlog", "devlog")
	patches := createTestCategory(t, db, "Patches", "patches")

	post := createTestPost(t, db, author, devlog, "Post base", true)
	for i := 0; i < RelatedLimit+2; i++ {
		createTestPost(t, db, author, devlog, fmt.Sprintf("Relacionado %d", i), true)
	}
	createTestPost(t, db, author, patches, "Outra categoria", true)
	createTestPost(t, db, author, devlog, "Rascunho irmao", false)

	related, err := repo.Related(ctx, post)
	require.NoError(t, err)
	assert.Len(t, related, RelatedLimit)
	for _, p := range related {
		assert.NotEqual(t, post.ID, p.ID)
		assert.Equal(t, devlog.ID, p.CategoryID)
		assert.True(t, p.IsPublished())
	}
}

func TestPostRepository_CacheAsideReads(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "cacheado")
	category := createTestCategory(t, db, "Devlog", "devlog")
	post := createTestPost(t, db, author, category, "Post em cache", true)

	// Anonymous detail read populates the cache.
	first, err := repo.GetBySlug(ctx, post.Slug, 0)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.PostKey(post.Slug)))

	// Served from the cache even after the row changes underneath.
	require.NoError(t, db.Model(post).UpdateColumn("title", "Alterado por fora").Error)
	cached, err := repo.GetBySlug(ctx, post.Slug, 0)
	require.NoError(t, err)
	assert.Equal(t, first.Title, cached.Title)

	// Logged in viewers bypass the cache since the liked flag is per user.
	fresh, err := repo.GetBySlug(ctx, post.Slug, author.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alterado por fora", fresh.Title)

	related, err := repo.Related(ctx, post)
	require.NoError(t, err)
	assert.Empty(t, related)
	assert.True(t, mr.Exists(cache.RelatedKey(post.Slug)))

	_, _, err = repo.ListPublished(ctx, PostFilter{Page: 1})
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.PostListKey(1, "", "")))

	// Writes drop the detail, related and listing entries.
	post.Title = "Alterado pelo repositório"
	require.NoError(t, repo.Update(ctx, post))
	assert.False(t, mr.Exists(cache.PostKey(post.Slug)))
	assert.False(t, mr.Exists(cache.RelatedKey(post.Slug)))
	assert.False(t, mr.Exists(cache.PostListKey(1, "", "")))
}
