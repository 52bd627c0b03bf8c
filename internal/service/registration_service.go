// Package service implements the application's business logic on top of the
// repository layer.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"zenith/internal/mailer"
	"zenith/internal/middleware"
	"zenith/internal/models"
	"zenith/internal/observability"
	"zenith/internal/repository"
	"zenith/internal/session"
	"zenith/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// uniqueFieldMessages maps unique columns to the field errors shown on the
// registration form.
var uniqueFieldMessages = map[string]string{
	"username": "Este nome de usuário já está em uso",
	"email":    "Este e-mail já está cadastrado",
	"phone":    "Este telefone já está cadastrado",
}

// RegistrationService drives the two-step signup flow. Step one validates
// identity data and stashes it in the session; step two picks credentials
// and commits the account atomically.
type RegistrationService struct {
	users  repository.UserRepository
	mailer mailer.Mailer
	debug  bool
}

// NewRegistrationService creates a new registration service.
func NewRegistrationService(users repository.UserRepository, m mailer.Mailer, debug bool) *RegistrationService {
	return &RegistrationService{users: users, mailer: m, debug: debug}
}

// Step1Input carries the identity fields collected on the first form.
type Step1Input struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	BirthDate time.Time
}

// Step1 validates identity data and returns a stash for the session. The
// uniqueness probes here are advisory; the commit in Complete is what
// actually enforces them.
func (s *RegistrationService) Step1(ctx context.Context, input Step1Input) (*session.SignupStash, error) {
	if err := validation.ValidateName(input.FirstName); err != nil {
		return nil, models.NewFieldValidationError("first_name", err.Error())
	}
	if err := validation.ValidateName(input.LastName); err != nil {
		return nil, models.NewFieldValidationError("last_name", err.Error())
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewFieldValidationError("email", err.Error())
	}

	phone := validation.NormalizePhone(input.Phone)
	if err := validation.ValidatePhone(phone); err != nil {
		return nil, models.NewFieldValidationError("phone", err.Error())
	}

	if err := validation.ValidateBirthDate(input.BirthDate, time.Now()); err != nil {
		return nil, models.NewFieldValidationError("birth_date", err.Error())
	}

	if exists, err := s.users.EmailExists(ctx, email); err != nil {
		return nil, models.NewInternalError(err)
	} else if exists {
		return nil, models.NewFieldValidationError("email", uniqueFieldMessages["email"])
	}
	if exists, err := s.users.PhoneExists(ctx, phone); err != nil {
		return nil, models.NewInternalError(err)
	} else if exists {
		return nil, models.NewFieldValidationError("phone", uniqueFieldMessages["phone"])
	}

	return &session.SignupStash{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     email,
		Phone:     phone,
		BirthDate: input.BirthDate,
		ExpiresAt: time.Now().Add(session.SignupStashTTL),
	}, nil
}

// Step2Input carries the credential fields collected on the second form.
type Step2Input struct {
	Username        string
	Password        string
	PasswordConfirm string
}

// ErrStashExpired signals that step one must be redone.
var ErrStashExpired = models.NewValidationError("Sua sessão de cadastro expirou. Comece novamente.")

// Complete validates credentials against the stashed identity and creates the
// user and profile in one transaction. Unique violations surface as field
// errors so the form can highlight the conflicting input.
func (s *RegistrationService) Complete(ctx context.Context, stash *session.SignupStash, input Step2Input) (*models.User, error) {
	span, ctx := observability.NewSpan(ctx, "registration.Complete")
	defer span.End()

	if stash == nil || stash.Expired(time.Now()) {
		return nil, ErrStashExpired
	}

	username := strings.TrimSpace(input.Username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewFieldValidationError("username", err.Error())
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return nil, models.NewFieldValidationError("password", err.Error())
	}
	if input.Password != input.PasswordConfirm {
		return nil, models.NewFieldValidationError("password_confirm", "As senhas não coincidem")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:  username,
		Email:     stash.Email,
		Password:  string(hash),
		FirstName: stash.FirstName,
		LastName:  stash.LastName,
		Phone:     stash.Phone,
		BirthDate: stash.BirthDate,
		IsActive:  true,
	}
	profile := &models.Profile{BirthDateVisibility: models.VisibilityPrivate}

	if err := s.users.CreateWithProfile(ctx, user, profile); err != nil {
		span.SetError(err)
		return nil, models.MapUniqueViolation(err, uniqueFieldMessages, "Dados já cadastrados")
	}

	observability.RegistrationsTotal.Inc()
	s.sendWelcome(ctx, user)

	return user, nil
}

// sendWelcome delivers the welcome email. Suppressed in debug, never fatal.
func (s *RegistrationService) sendWelcome(ctx context.Context, user *models.User) {
	if s.debug {
		return
	}
	subject := "Bem-vindo ao ZenithPixels!"
	body := fmt.Sprintf(
		"Olá %s,\n\nSua conta foi criada com sucesso. Explore o devlog e participe da comunidade!\n\nEquipe ZenithPixels",
		user.ShortName(),
	)
	if err := s.mailer.Send(user.Email, subject, body); err != nil {
		middleware.Logger.WarnContext(ctx, "welcome email failed",
			"email", user.Email, "error", err.Error())
	}
}
