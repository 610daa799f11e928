package auth

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_delivery/internal/domain"
	"github.com/Skotchmaster/food_delivery/internal/logging"
)

// RequireRole must run after RequireAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			who, ok := Identity(c)
			if !ok {
				return unauthorized(c)
			}
			if !slices.Contains(roles, who.Role) {
				logging.FromContext(c.Request().Context()).Warn("access_denied",
					"status", 403, "user_id", who.ID, "role", who.Role)
				return echo.NewHTTPError(http.StatusForbidden, "not enough rights").SetInternal(domain.ErrForbidden)
			}
			return next(c)
		}
	}
}

func AdminOnly() echo.MiddlewareFunc {
	return RequireRole("admin")
}
