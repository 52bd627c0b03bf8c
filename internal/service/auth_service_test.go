package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Authenticate(t *testing.T) {
	e := newServiceEnv(t)
	svc := NewAuthService(e.users)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("senha-certa"), bcrypt.MinCost)
	require.NoError(t, err)
	user := e.user(t, "logavel", false)
	require.NoError(t, e.db.Model(user).Update("password", string(hash)).Error)

	t.Run("success records login time", func(t *testing.T) {
		got, err := svc.Authenticate(ctx, "logavel", "senha-certa")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.NotNil(t, got.LastLoginAt)
	})

	t.Run("email also works as identity", func(t *testing.T) {
		got, err := svc.Authenticate(ctx, "Logavel@example.com", "senha-certa")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "logavel", "senha-errada")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user gets the same error", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "fantasma", "qualquer")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		require.NoError(t, e.db.Model(user).Update("is_active", false).Error)
		_, err := svc.Authenticate(ctx, "logavel", "senha-certa")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
