package auth

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_delivery/internal/logging"
	"github.com/Skotchmaster/food_delivery/internal/models"
)

type IdentityVerifier interface {
	CurrentUser(ctx context.Context, accessToken string) (*models.Identity, error)
}

// RequireAuth rejects requests without a valid bearer access token and
// stores the verified identity on the echo context.
func RequireAuth(v IdentityVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("mw", "require_auth")

			token, ok := BearerToken(c.Request())
			if !ok {
				l.Warn("auth_rejected", "status", 401, "reason", "missing_bearer")
				return unauthorized(c)
			}

			who, err := v.CurrentUser(ctx, token)
			if err != nil {
				l.Warn("auth_rejected", "status", 401, "reason", "invalid_token")
				return unauthorized(c)
			}

			setUserContext(c, who, token)
			return next(c)
		}
	}
}
