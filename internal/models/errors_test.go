package models

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapUniqueViolation(t *testing.T) {
	messages := map[string]string{
		"username": "Nome de usuário já está em uso",
		"email":    "E-mail já cadastrado",
	}

	t.Run("postgres constraint", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:           "23505",
			ConstraintName: "idx_users_username",
		}
		err := MapUniqueViolation(pgErr, messages, "Registro duplicado")

		var appErr *AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "username", appErr.Field)
		assert.Equal(t, "Nome de usuário já está em uso", appErr.Message)
	})

	t.Run("sqlite text", func(t *testing.T) {
		err := MapUniqueViolation(
			errors.New("UNIQUE constraint failed: users.email"), messages, "Registro duplicado")

		var appErr *AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "email", appErr.Field)
	})

	t.Run("unknown column falls back", func(t *testing.T) {
		err := MapUniqueViolation(
			errors.New("UNIQUE constraint failed: widgets.name"), messages, "Registro duplicado")

		var appErr *AppError
		require.ErrorAs(t, err, &appErr)
		assert.Empty(t, appErr.Field)
		assert.Equal(t, "Registro duplicado", appErr.Message)
	})

	t.Run("other errors become internal", func(t *testing.T) {
		err := MapUniqueViolation(errors.New("connection refused"), messages, "x")

		var appErr *AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "INTERNAL_ERROR", appErr.Code)
	})

	assert.NoError(t, MapUniqueViolation(nil, messages, "x"))
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, fiber.StatusBadRequest, StatusForError(NewValidationError("x")))
	assert.Equal(t, fiber.StatusForbidden, StatusForError(NewPermissionError("x")))
	assert.Equal(t, fiber.StatusNotFound, StatusForError(NewNotFoundError("Post", 1)))
	assert.Equal(t, fiber.StatusInternalServerError, StatusForError(errors.New("boom")))
}
