package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taldaor/internal/common"
	"taldaor/internal/models"
)

// RequireAdmin blocks non-admin callers. Tenant-scoped endpoints enforce
// ownership in their handlers instead.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, ok := common.GetUserIDFromContext(ctx); !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
		}
		role, ok := common.GetRoleFromContext(ctx)
		if !ok || role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
		}
		return next(c)
	}
}
