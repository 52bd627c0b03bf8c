package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// The view counter must be incremented relative to the stored value, not
// written back from a value read earlier, so concurrent views are never lost.
func TestPostRepository_IncrementViewCountSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "view_count"=view_count + $1 WHERE id = $2 AND "posts"."deleted_at" IS NULL`)).
		WithArgs(1, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "view_count" FROM "posts" WHERE id = $1 AND "posts"."deleted_at" IS NULL`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"view_count"}).AddRow(42))

	count, err := repo.IncrementViewCount(ctx, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 42, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_LikeOnConflictSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "likes" .* ON CONFLICT \("user_id","post_id"\) DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Like(ctx, 3, 7)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
