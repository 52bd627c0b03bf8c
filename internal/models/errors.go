// Package models contains data structures for the application's domain models.
package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
)

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Field   string // form field the error belongs to, when known
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, key interface{}) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %v não encontrado", resource, key),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

// NewFieldValidationError creates a validation error bound to a specific form field.
func NewFieldValidationError(field, message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
		Field:   field,
	}
}

func NewPermissionError(message string) *AppError {
	return &AppError{
		Code:    "PERMISSION_DENIED",
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "Ocorreu um erro inesperado. Por favor, tente novamente.",
		Err:     err,
	}
}

// MapUniqueViolation inspects a persistence error for a unique-constraint
// violation and remaps it to a field-level validation error using messages
// keyed by column name. Detection covers PostgreSQL (SQLSTATE 23505 via
// pgconn) and the SQLite error text used by the test databases. When the
// conflicting column cannot be inferred, a generic validation error with
// fallback is returned; non-unique errors pass through as internal errors.
func MapUniqueViolation(err error, messages map[string]string, fallback string) error {
	if err == nil {
		return nil
	}

	var detail string
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		if pgErr.Code != "23505" {
			return NewInternalError(err)
		}
		detail = pgErr.ConstraintName + " " + pgErr.Detail
	case strings.Contains(strings.ToLower(err.Error()), "unique constraint"),
		strings.Contains(strings.ToLower(err.Error()), "duplicate key"):
		detail = err.Error()
	default:
		return NewInternalError(err)
	}

	lower := strings.ToLower(detail)
	for column, message := range messages {
		if strings.Contains(lower, column) {
			return NewFieldValidationError(column, message)
		}
	}
	return NewValidationError(fallback)
}

// IsUniqueViolation reports whether err is a unique-constraint violation.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// RespondWithError writes the standard {status: "error", message: ...} envelope.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	payload := fiber.Map{
		"status": "error",
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		payload["message"] = appErr.Message
		if appErr.Field != "" {
			payload["field"] = appErr.Field
		}
	} else {
		payload["message"] = err.Error()
	}

	return c.Status(status).JSON(payload)
}

// StatusForError maps an AppError code to the HTTP status used by the JSON API.
func StatusForError(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case "VALIDATION_ERROR":
		return fiber.StatusBadRequest
	case "PERMISSION_DENIED":
		return fiber.StatusForbidden
	case "NOT_FOUND":
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
