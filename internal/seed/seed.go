package seed

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"zenith/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	SkipBcrypt  bool
	MaxDays     int
}

// Seed populates the database with demo data: a staff account, regular users,
// published and draft posts across the default categories, plus comments and
// likes so the feed looks lived in.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	factory := NewFactory(db, opts)

	staff, err := createStaffUser(db, opts)
	if err != nil {
		return fmt.Errorf("failed to create staff user: %w", err)
	}
	log.Printf("✓ staff user %q ready", staff.Username)

	users := []*models.User{staff}
	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create users: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("✓ %d test users created", len(users))

	var categories []*models.Category
	if err := db.Where("is_active = ?", true).Find(&categories).Error; err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	if len(categories) == 0 {
		return errors.New("no active categories; run migrations first")
	}

	var posts []*models.Post
	for i := 0; i < opts.NumPosts; i++ {
		category := categories[factory.rand.Intn(len(categories))]
		post, err := factory.CreatePost(staff, category)
		if err != nil {
			return fmt.Errorf("failed to create posts: %w", err)
		}
		posts = append(posts, post)
	}
	log.Printf("✓ %d posts created", len(posts))

	comments, likes := 0, 0
	for _, post := range posts {
		if !post.IsPublished() {
			continue
		}
		for i := 0; i < factory.rand.Intn(5); i++ {
			author := users[factory.rand.Intn(len(users))]
			if _, err := factory.CreateComment(author, post); err != nil {
				return fmt.Errorf("failed to create comments: %w", err)
			}
			comments++
		}
		for i := 0; i < factory.rand.Intn(len(users)); i++ {
			if err := factory.CreateLike(users[factory.rand.Intn(len(users))], post); err != nil {
				return fmt.Errorf("failed to create likes: %w", err)
			}
			likes++
		}
	}
	log.Printf("✓ %d comments and %d likes created", comments, likes)
	return nil
}

func createStaffUser(db *gorm.DB, opts Options) (*models.User, error) {
	var existing models.User
	if err := db.Where("username = ?", "admin").First(&existing).Error; err == nil {
		return &existing, nil
	}

	factory := NewFactory(db, opts)
	return factory.CreateUser(func(u *models.User) {
		u.Username = "admin"
		u.Email = "admin@zenithpixels.com"
		u.FirstName = "Admin"
		u.LastName = "ZenithPixels"
		u.IsStaff = true
		u.IsSuperuser = true
		hashed, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		u.Password = string(hashed)
	})
}

func clearData(db *gorm.DB) error {
	// FK order: likes and comments reference posts, posts reference users.
	for _, model := range []interface{}{
		&models.Like{}, &models.Comment{}, &models.Post{},
		&models.Profile{}, &models.User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Unscoped().Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}
