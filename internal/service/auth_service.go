package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"zenith/internal/models"
	"zenith/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is deliberately identical for unknown users and wrong
// passwords so the login form leaks nothing.
var ErrInvalidCredentials = models.NewValidationError("Usuário ou senha inválidos")

// AuthService authenticates users against stored bcrypt hashes.
type AuthService struct {
	users repository.UserRepository
}

// NewAuthService creates a new auth service.
func NewAuthService(users repository.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Authenticate verifies the credentials and records the login time. The
// identity field takes a username or an email address.
func (s *AuthService) Authenticate(ctx context.Context, identity, password string) (*models.User, error) {
	var user *models.User
	var err error
	if strings.Contains(identity, "@") {
		user, err = s.users.GetByEmail(ctx, strings.ToLower(identity))
	} else {
		user, err = s.users.GetByUsername(ctx, identity)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn a hash comparison so response time does not reveal
			// whether the account exists.
			_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000000000000000000000000000000000"), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, models.NewInternalError(err)
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err == nil {
		user.LastLoginAt = &now
	}

	return user, nil
}
