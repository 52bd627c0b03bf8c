package repository

import (
	"context"
	"errors"
	"time"

	"zenith/internal/cache"
	"zenith/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user and profile data operations
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	PhoneExists(ctx context.Context, phone string) (bool, error)
	CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
	UpdateName(ctx context.Context, id uint, firstName, lastName string) error
	GetProfile(ctx context.Context, userID uint) (*models.Profile, error)
	EnsureProfile(ctx context.Context, userID uint) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
	SetDarkMode(ctx context.Context, userID uint, dark bool) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) PhoneExists(ctx context.Context, phone string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("phone = ?", phone).Count(&count).Error
	return count > 0, err
}

// CreateWithProfile inserts the user and their profile in one transaction so
// a half-registered account can never exist.
func (r *userRepository) CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		return tx.Create(profile).Error
	})
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

func (r *userRepository) UpdateName(ctx context.Context, id uint, firstName, lastName string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{"first_name": firstName, "last_name": lastName}).Error
}

// GetProfile loads a profile cache-aside; profile writes invalidate the
// entry. A missing row is never cached so EnsureProfile can heal it.
func (r *userRepository) GetProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := cache.CacheAside(ctx, cache.ProfileKey(userID), &profile, cache.ProfileTTL, func() error {
		return r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// EnsureProfile returns the user's profile, creating a default one if it is
// missing. Accounts that predate the profile table are healed lazily.
func (r *userRepository) EnsureProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	profile, err := r.GetProfile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	fresh := &models.Profile{UserID: userID, BirthDateVisibility: models.VisibilityPrivate}
	if err := r.db.WithContext(ctx).Create(fresh).Error; err != nil {
		return nil, err
	}
	return fresh, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		return err
	}
	cache.InvalidateProfile(ctx, profile.UserID)
	return nil
}

func (r *userRepository) SetDarkMode(ctx context.Context, userID uint, dark bool) error {
	err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("user_id = ?", userID).
		UpdateColumn("dark_mode", dark).Error
	if err == nil {
		cache.InvalidateProfile(ctx, userID)
	}
	return err
}
