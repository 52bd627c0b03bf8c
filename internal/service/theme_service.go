package service

import (
	"context"

	"zenith/internal/middleware"
	"zenith/internal/models"
	"zenith/internal/repository"
	"zenith/internal/session"
)

// ThemeCookieName is the anonymous fallback cookie for the theme preference.
// It carries the hint values "dark" or "light".
const ThemeCookieName = "color-theme"

// ThemeService resolves and persists the dark mode preference. Resolution
// order: session value, then profile, then fallback cookie, then light.
type ThemeService struct {
	users repository.UserRepository
}

// NewThemeService creates a new theme service.
func NewThemeService(users repository.UserRepository) *ThemeService {
	return &ThemeService{users: users}
}

// Resolve returns the effective dark mode flag for this request. For logged
// in users without a session value the profile is consulted, creating it if
// the account predates profiles.
func (s *ThemeService) Resolve(ctx context.Context, sess *session.Session, cookieValue string) bool {
	if sess != nil && sess.Data.DarkMode != nil {
		return *sess.Data.DarkMode
	}

	if sess != nil && sess.IsAuthenticated() {
		profile, err := s.users.EnsureProfile(ctx, sess.Data.UserID)
		if err != nil {
			middleware.Logger.WarnContext(ctx, "profile lookup for theme failed",
				"user_id", sess.Data.UserID, "error", err.Error())
		} else {
			// Cache on the session so later requests skip the lookup
			sess.SetDarkMode(profile.DarkMode)
			return profile.DarkMode
		}
	}

	return cookieValue == "dark"
}

// Toggle flips the preference, pins it to the session, stretches the session
// lifetime and writes through to the profile for logged in users.
func (s *ThemeService) Toggle(ctx context.Context, sess *session.Session, current bool) (bool, error) {
	next := !current

	if sess != nil {
		sess.SetDarkMode(next)
		sess.Extend()
	}

	if sess != nil && sess.IsAuthenticated() {
		if _, err := s.users.EnsureProfile(ctx, sess.Data.UserID); err != nil {
			return next, models.NewInternalError(err)
		}
		if err := s.users.SetDarkMode(ctx, sess.Data.UserID, next); err != nil {
			return next, models.NewInternalError(err)
		}
	}

	return next, nil
}
