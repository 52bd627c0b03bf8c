package service

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"zenith/internal/models"
	"zenith/internal/repository"
	"zenith/internal/storage"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var userSeq atomic.Uint32

type serviceEnv struct {
	db         *gorm.DB
	users      repository.UserRepository
	posts      repository.PostRepository
	categories repository.CategoryRepository
	comments   repository.CommentRepository
	media      *storage.MediaStore
}

func newServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Category{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	media, err := storage.NewMediaStore(t.TempDir())
	if err != nil {
		t.Fatalf("media store: %v", err)
	}

	return &serviceEnv{
		db:         db,
		users:      repository.NewUserRepository(db),
		posts:      repository.NewPostRepository(db),
		categories: repository.NewCategoryRepository(db),
		comments:   repository.NewCommentRepository(db),
		media:      media,
	}
}

func (e *serviceEnv) user(t *testing.T, username string, staff bool) *models.User {
	t.Helper()
	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "hashed",
		FirstName: "Test",
		LastName:  "User",
		Phone:     fmt.Sprintf("119%08d", userSeq.Add(1)),
		BirthDate: time.Date(1995, 5, 10, 0, 0, 0, 0, time.UTC),
		IsStaff:   staff,
		IsActive:  true,
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *serviceEnv) category(t *testing.T, name, slug string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Slug: slug, IsActive: true}
	if err := e.db.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}
