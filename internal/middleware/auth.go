package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"taldaor/internal/common"
	"taldaor/internal/models"
)

// ProviderClaims is the shape of the access tokens the auth provider issues.
// The role is carried in app_metadata so users cannot edit it themselves.
type ProviderClaims struct {
	Email       string `json:"email"`
	AppMetadata struct {
		Role string `json:"role"`
	} `json:"app_metadata"`
	jwt.RegisteredClaims
}

// AuthConfig selects how provider tokens are verified. Exactly one of
// JWKSURL or Secret must be set; JWKS wins when both are present.
type AuthConfig struct {
	JWKSURL string
	Secret  string
}

// NewAuthMiddleware validates provider-issued bearer tokens and stashes the
// caller's user id, role, and email into the request context.
func NewAuthMiddleware(cfg AuthConfig) (echo.MiddlewareFunc, error) {
	config := echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(ProviderClaims)
		},
		SuccessHandler: stashClaims,
	}

	if cfg.JWKSURL != "" {
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
			RefreshInterval: time.Hour,
			RefreshErrorHandler: func(err error) {
				log.Printf("WARN: JWKS refresh failed: %v", err)
			},
		})
		if err != nil {
			return nil, err
		}
		config.KeyFunc = jwks.Keyfunc
	} else {
		config.SigningKey = []byte(cfg.Secret)
	}

	return echojwt.WithConfig(config), nil
}

// stashClaims copies the verified claims into the request context so handlers
// and services never touch the raw token.
func stashClaims(c echo.Context) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return
	}
	claims, ok := token.Claims.(*ProviderClaims)
	if !ok {
		return
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return
	}

	role := models.Role(claims.AppMetadata.Role)
	if !role.Valid() {
		role = models.RoleTenant
	}

	ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
	ctx = context.WithValue(ctx, common.RoleKey, role)
	ctx = context.WithValue(ctx, common.EmailKey, common.NormalizeEmail(claims.Email))
	c.SetRequest(c.Request().WithContext(ctx))
}

// RequireAuth rejects requests whose token verified but carried an unusable
// subject. Runs after the JWT middleware.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := common.GetUserIDFromContext(c.Request().Context()); !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
		}
		return next(c)
	}
}
