package repository

import (
	"context"
	"testing"
	"time"

	"zenith/internal/cache"
	"zenith/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRepository_ListActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	createTestCategory(t, db, "Devlog", "devlog")
	createTestCategory(t, db, "Patches", "patches")
	inactive := createTestCategory(t, db, "Antiga", "antiga")
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	categories, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Devlog", categories[0].Name, "ordered by name")
}

func TestCategoryRepository_ListActiveUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	db := setupTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	createTestCategory(t, db, "Devlog", "devlog")

	first, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.True(t, mr.Exists(cache.CategoryKey()))

	// Served from the cache even after the row is gone.
	require.NoError(t, db.Unscoped().Where("1 = 1").Delete(&models.Category{}).Error)
	cached, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	ttl := mr.TTL(cache.CategoryKey())
	assert.LessOrEqual(t, ttl, 30*time.Minute)

	// Writes drop the cached listing.
	require.NoError(t, repo.Create(ctx, &models.Category{Name: "Nova", Slug: "nova", IsActive: true}))
	assert.False(t, mr.Exists(cache.CategoryKey()))
}

func TestCategoryRepository_DeleteRefusesWhenInUse(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "autor-cat")
	category := createTestCategory(t, db, "Devlog", "devlog")
	createTestPost(t, db, author, category, "Post na categoria", true)

	err := repo.Delete(ctx, category.ID)
	assert.ErrorIs(t, err, ErrCategoryInUse)

	empty := createTestCategory(t, db, "Vazia", "vazia")
	assert.NoError(t, repo.Delete(ctx, empty.ID))
}
