package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_delivery/internal/logging"
	authmw "github.com/Skotchmaster/food_delivery/internal/middleware/auth"
	"github.com/Skotchmaster/food_delivery/internal/transport"
)

type Deps struct {
	AuthHandler *AuthHTTP
	// Ready reports whether storage is reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

// Register mounts the auth routes. Without an explicit IPExtractor the peer
// address is used, so X-Forwarded-For from clients is not trusted.
func Register(e *echo.Echo, d *Deps) {
	if e.IPExtractor == nil {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, transport.StatusResponse{Status: "ok"})
	})
	e.GET("/readyz", d.readyz)

	e.POST("/login", d.AuthHandler.Login)
	e.POST("/refresh", d.AuthHandler.Refresh)
	e.POST("/logout", d.AuthHandler.LogOut)

	private := e.Group("")
	private.Use(authmw.RequireAuth(d.AuthHandler.Svc))

	private.POST("/logout_all", d.AuthHandler.LogOutAll)
	private.GET("/me", d.AuthHandler.Me)
}

func (d *Deps) readyz(c echo.Context) error {
	if d.Ready != nil {
		ctx := c.Request().Context()
		if err := d.Ready(ctx); err != nil {
			logging.FromContext(ctx).Error("readiness_failed", "status", 503, "error", err)
			c.Response().Header().Set(echo.HeaderRetryAfter, "1")
			return c.JSON(http.StatusServiceUnavailable, transport.StatusResponse{Status: "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, transport.StatusResponse{Status: "ready"})
}
