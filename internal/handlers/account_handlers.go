package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"taldaor/internal/authprovider"
	"taldaor/internal/caching"
	"taldaor/internal/common"
	"taldaor/internal/services"
)

const (
	accountRateLimit  = 5
	accountRateWindow = 15 * time.Minute
)

// AccountHandlers exposes the unauthenticated provisioning and recovery
// endpoints. Expected negative branches are 200s with reason codes so
// responses never reveal allow-list or account state.
type AccountHandlers struct {
	provisioning services.ProvisioningService
	recovery     services.RecoveryService
	cache        caching.CacheService
}

func NewAccountHandlers(provisioning services.ProvisioningService, recovery services.RecoveryService, cache caching.CacheService) *AccountHandlers {
	return &AccountHandlers{
		provisioning: provisioning,
		recovery:     recovery,
		cache:        cache,
	}
}

// EmailRequest is the payload shared by the bare-email endpoints.
type EmailRequest struct {
	Email string `json:"email"`
}

// SignupApprovedRequest is the direct-create payload.
type SignupApprovedRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// rateLimit applies a fixed window per normalized email and endpoint. A cache
// failure lets the request through; availability over strictness here.
func (h *AccountHandlers) rateLimit(c echo.Context, endpoint, email string) error {
	key := endpoint + ":" + common.NormalizeEmail(email)
	limited, err := h.cache.IsRateLimited(c.Request().Context(), key, accountRateLimit, accountRateWindow)
	if err != nil {
		log.Printf("WARN: rate limit check failed for %s: %v", key, err)
		return nil
	}
	if limited {
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many attempts, try again later")
	}
	return nil
}

// RequestSignup handles POST /v1/accounts/request-signup.
func (h *AccountHandlers) RequestSignup(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email is required")
	}
	if err := h.rateLimit(c, "signup", req.Email); err != nil {
		return err
	}

	outcome, err := h.provisioning.RequestSignup(c.Request().Context(), req.Email)
	if err != nil {
		return mapServiceError(c, err)
	}

	switch {
	case outcome.ProfileExists:
		return c.JSON(http.StatusOK, map[string]interface{}{
			"ok":            true,
			"profileExists": true,
		})
	case outcome.NotApproved:
		return c.JSON(http.StatusOK, map[string]interface{}{
			"ok":     true,
			"sent":   false,
			"reason": "not_on_allowlist",
		})
	case outcome.AlreadyAuth:
		return c.JSON(http.StatusOK, map[string]interface{}{
			"ok":            true,
			"profileExists": false,
			"alreadyAuth":   true,
		})
	default:
		return c.JSON(http.StatusOK, map[string]interface{}{
			"ok":     true,
			"sent":   true,
			"userId": outcome.UserID,
		})
	}
}

// ResendConfirmation handles POST /v1/accounts/resend-confirmation.
func (h *AccountHandlers) ResendConfirmation(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email is required")
	}
	if err := h.rateLimit(c, "resend", req.Email); err != nil {
		return err
	}

	outcome, err := h.recovery.ResendConfirmation(c.Request().Context(), req.Email)
	if err != nil {
		return mapServiceError(c, err)
	}

	body := map[string]interface{}{
		"ok":     true,
		"resent": outcome.Resent,
	}
	if outcome.ResetSent {
		body["resetSent"] = true
	}
	if outcome.Reason != "" {
		body["reason"] = outcome.Reason
	}
	return c.JSON(http.StatusOK, body)
}

// RequestPasswordReset handles POST /v1/accounts/request-password-reset.
func (h *AccountHandlers) RequestPasswordReset(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email is required")
	}
	if err := h.rateLimit(c, "reset", req.Email); err != nil {
		return err
	}

	outcome, err := h.recovery.RequestPasswordReset(c.Request().Context(), req.Email)
	if err != nil {
		return mapServiceError(c, err)
	}

	body := map[string]interface{}{
		"ok":        true,
		"resetSent": outcome.ResetSent,
	}
	if outcome.Reason != "" {
		body["reason"] = outcome.Reason
	}
	return c.JSON(http.StatusOK, body)
}

// SignupApproved handles POST /v1/accounts/signup-approved, the direct-create
// variant. Rejections are explicit here (403), unlike the invite flow.
func (h *AccountHandlers) SignupApproved(c echo.Context) error {
	var req SignupApprovedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}
	if err := h.rateLimit(c, "approved", req.Email); err != nil {
		return err
	}

	_, err := h.provisioning.ProvisionApproved(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrNotApproved) {
			return echo.NewHTTPError(http.StatusForbidden, "This email is not approved for signup.")
		}
		if errors.Is(err, authprovider.ErrAlreadyRegistered) {
			return echo.NewHTTPError(http.StatusBadRequest, "An account already exists for this email.")
		}
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"ok": true})
}

// mapServiceError converts the service error taxonomy to HTTP statuses.
// Infrastructure failures are logged with detail and surfaced generically.
func mapServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
	default:
		log.Printf("ERROR: %s %s: %v", c.Request().Method, c.Path(), err)
		return common.SendServerError(c)
	}
}
