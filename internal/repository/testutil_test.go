package repository

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"zenith/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var phoneSeq atomic.Uint32

func setupTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "hashed",
		FirstName: "Test",
		LastName:  "User",
		Phone:     fmt.Sprintf("119%08d", phoneSeq.Add(1)),
		BirthDate: time.Date(1995, 5, 10, 0, 0, 0, 0, time.UTC),
		IsActive:  true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createTestCategory(t *testing.T, db *gorm.DB, name, slug string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Slug: slug, Color: "#6d28d9", IsActive: true}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

func createTestPost(t *testing.T, db *gorm.DB, author *models.User, category *models.Category, title string, published bool) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:      title,
		Slug:       slugFromTitle(title),
		Content:    "conteúdo de " + title,
		Status:     models.PostStatusDraft,
		CategoryID: category.ID,
		AuthorID:   author.ID,
	}
	if published {
		now := time.Now()
		post.Status = models.PostStatusPublished
		post.PublishedAt = &now
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

func slugFromTitle(title string) string {
	out := make([]rune, 0, len(title))
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+32)
		default:
			out = append(out, '-')
		}
	}
	return string(out)
}
