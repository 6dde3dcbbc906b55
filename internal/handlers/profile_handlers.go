package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taldaor/internal/common"
	"taldaor/internal/repositories"
)

// ProfileHandlers serves the authenticated user's own profile.
type ProfileHandlers struct {
	profiles repositories.ProfileRepository
}

func NewProfileHandlers(profiles repositories.ProfileRepository) *ProfileHandlers {
	return &ProfileHandlers{profiles: profiles}
}

// Me handles GET /v1/me. A verified token without a profile row means
// provisioning never completed for this identity.
func (h *ProfileHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	profile, err := h.profiles.GetByID(ctx, userID)
	if err != nil {
		return mapServiceError(c, err)
	}
	if profile == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Profile not found")
	}

	return c.JSON(http.StatusOK, profile)
}
