package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"zenith/internal/mailer"
	"zenith/internal/models"
	"zenith/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func validStep1() Step1Input {
	return Step1Input{
		FirstName: "Maria",
		LastName:  "Silva",
		Email:     "Maria.Silva@Example.com",
		Phone:     "(11) 98765-4321",
		BirthDate: time.Date(2000, 3, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestRegistrationService_Step1(t *testing.T) {
	e := newServiceEnv(t)
	svc := NewRegistrationService(e.users, &mailer.Recorder{}, false)
	ctx := context.Background()

	stash, err := svc.Step1(ctx, validStep1())
	require.NoError(t, err)
	assert.Equal(t, "maria.silva@example.com", stash.Email, "email is normalized")
	assert.Equal(t, "11987654321", stash.Phone, "phone is stored as digits")
	assert.False(t, stash.Expired(time.Now()))
	assert.True(t, stash.Expired(time.Now().Add(session.SignupStashTTL+time.Minute)))
}

func TestRegistrationService_Step1FieldErrors(t *testing.T) {
	e := newServiceEnv(t)
	svc := NewRegistrationService(e.users, &mailer.Recorder{}, false)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Step1Input)
		field  string
	}{
		{"missing first name", func(i *Step1Input) { i.FirstName = "" }, "first_name"},
		{"bad email", func(i *Step1Input) { i.Email = "nope" }, "email"},
		{"short phone", func(i *Step1Input) { i.Phone = "123" }, "phone"},
		{"under age", func(i *Step1Input) { i.BirthDate = time.Now().AddDate(-10, 0, 0) }, "birth_date"},
		{"future birth date", func(i *Step1Input) { i.BirthDate = time.Now().AddDate(1, 0, 0) }, "birth_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validStep1()
			tt.mutate(&input)
			_, err := svc.Step1(ctx, input)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestRegistrationService_Step1DetectsTakenEmail(t *testing.T) {
	e := newServiceEnv(t)
	svc := NewRegistrationService(e.users, &mailer.Recorder{}, false)
	ctx := context.Background()

	existing := e.user(t, "ocupada", false)

	input := validStep1()
	input.Email = existing.Email
	_, err := svc.Step1(ctx, input)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "email", appErr.Field)
}

func TestRegistrationService_Complete(t *testing.T) {
	e := newServiceEnv(t)
	rec := &mailer.Recorder{}
	svc := NewRegistrationService(e.users, rec, false)
	ctx := context.Background()

	stash, err := svc.Step1(ctx, validStep1())
	require.NoError(t, err)

	user, err := svc.Complete(ctx, stash, Step2Input{
		Username:        "maria_s",
		Password:        "senha-segura",
		PasswordConfirm: "senha-segura",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("senha-segura")))

	profile, err := e.users.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityPrivate, profile.BirthDateVisibility)

	require.Len(t, rec.Sent, 1)
	assert.Equal(t, user.Email, rec.Sent[0].To)
}

func TestRegistrationService_CompleteRejections(t *testing.T) {
	e := newServiceEnv(t)
	svc := NewRegistrationService(e.users, &mailer.Recorder{}, false)
	ctx := context.Background()

	stash, err := svc.Step1(ctx, validStep1())
	require.NoError(t, err)

	t.Run("expired stash", func(t *testing.T) {
		expired := *stash
		expired.ExpiresAt = time.Now().Add(-time.Minute)
		_, err := svc.Complete(ctx, &expired, Step2Input{
			Username: "maria_s", Password: "senha-segura", PasswordConfirm: "senha-segura",
		})
		assert.ErrorIs(t, err, ErrStashExpired)
	})

	t.Run("nil stash", func(t *testing.T) {
		_, err := svc.Complete(ctx, nil, Step2Input{})
		assert.ErrorIs(t, err, ErrStashExpired)
	})

	t.Run("password beyond the hashable length", func(t *testing.T) {
		long := strings.Repeat("x", 73)
		_, err := svc.Complete(ctx, stash, Step2Input{
			Username: "maria_s", Password: long, PasswordConfirm: long,
		})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "password", appErr.Field)
	})

	t.Run("password mismatch", func(t *testing.T) {
		_, err := svc.Complete(ctx, stash, Step2Input{
			Username: "maria_s", Password: "senha-segura", PasswordConfirm: "outra-coisa",
		})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "password_confirm", appErr.Field)
		assert.Equal(t, "As senhas não coincidem", appErr.Message)
	})

	t.Run("taken username", func(t *testing.T) {
		e.user(t, "tomado", false)
		_, err := svc.Complete(ctx, stash, Step2Input{
			Username: "tomado", Password: "senha-segura", PasswordConfirm: "senha-segura",
		})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "username", appErr.Field)
	})
}

func TestRegistrationService_DebugSuppressesEmail(t *testing.T) {
	e := newServiceEnv(t)
	rec := &mailer.Recorder{}
	svc := NewRegistrationService(e.users, rec, true)
	ctx := context.Background()

	stash, err := svc.Step1(ctx, validStep1())
	require.NoError(t, err)

	_, err = svc.Complete(ctx, stash, Step2Input{
		Username: "maria_s", Password: "senha-segura", PasswordConfirm: "senha-segura",
	})
	require.NoError(t, err)
	assert.Empty(t, rec.Sent)
}
