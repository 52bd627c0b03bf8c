// Package seed provides helpers to create demo data for development
// environments. Not intended for production use.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"zenith/internal/models"
	"zenith/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		opts: opts,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user with its profile.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:  gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:     gofakeit.Email(),
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Phone:     fmt.Sprintf("119%08d", f.rand.Intn(100000000)),
		BirthDate: gofakeit.DateRange(
			time.Now().AddDate(-40, 0, 0), time.Now().AddDate(-14, 0, 0)),
		IsActive: true,
	}

	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashed)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	profile := &models.Profile{
		UserID:              user.ID,
		Bio:                 gofakeit.Sentence(12),
		Location:            gofakeit.City(),
		BirthDateVisibility: models.VisibilityPrivate,
	}
	if err := f.db.Create(profile).Error; err != nil {
		return nil, err
	}
	user.Profile = profile
	return user, nil
}

// CreatePost constructs and persists a post by the given author in the given
// category. Roughly four out of five generated posts are published with a
// realistic publication date spread.
func (f *Factory) CreatePost(author *models.User, category *models.Category, overrides ...func(*models.Post)) (*models.Post, error) {
	title := gofakeit.Sentence(5)
	post := &models.Post{
		Title:           title,
		Slug:            validation.Slugify(title) + fmt.Sprintf("-%d", gofakeit.Number(100, 999)),
		Content:         gofakeit.Paragraph(3, 4, 8, "\n\n"),
		Excerpt:         gofakeit.Sentence(15),
		MetaDescription: gofakeit.Sentence(10),
		Status:          models.PostStatusDraft,
		CategoryID:      category.ID,
		AuthorID:        author.ID,
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	if f.rand.Intn(5) != 0 {
		publishedAt := time.Now().Add(
			-time.Duration(f.rand.Intn(maxDays*24)) * time.Hour)
		post.Status = models.PostStatusPublished
		post.PublishedAt = &publishedAt
		post.ViewCount = uint(f.rand.Intn(500))
	}

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment on the post. Most generated comments are
// pre-approved so listings look alive.
func (f *Factory) CreateComment(author *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content:    gofakeit.Sentence(8),
		PostID:     post.ID,
		AuthorID:   author.ID,
		IsApproved: f.rand.Intn(4) != 0,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from user on post. Duplicate pairs are skipped
// by the unique index.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{
		UserID: user.ID,
		PostID: post.ID,
	}
	err := f.db.Create(like).Error
	if err != nil && isDuplicate(err) {
		return nil
	}
	return err
}
