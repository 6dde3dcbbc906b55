package common

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"taldaor/internal/models"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
	RoleKey   contextKey = "role"
	EmailKey  contextKey = "email"
)

// GetUserIDFromContext extracts the authenticated user's id from the context.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return id, ok
}

// GetRoleFromContext extracts the authenticated user's role from the context.
func GetRoleFromContext(ctx context.Context) (models.Role, bool) {
	role, ok := ctx.Value(RoleKey).(models.Role)
	return role, ok
}

// GetEmailFromContext extracts the authenticated user's email from the context.
func GetEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok
}

// ErrorBody is the JSON error envelope. Expected (neutral) outcomes never use
// it; only genuine validation, authorization and infrastructure failures do.
type ErrorBody struct {
	Error string `json:"error"`
}

// SendError sends an error response with the given status and message.
func SendError(c echo.Context, status int, message string) error {
	return c.JSON(status, ErrorBody{Error: message})
}

// SendServerError sends a generic 500 without leaking internals.
func SendServerError(c echo.Context) error {
	return SendError(c, http.StatusInternalServerError, "Unexpected server error")
}
