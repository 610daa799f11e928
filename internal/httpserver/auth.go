package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_delivery/internal/domain"
	"github.com/Skotchmaster/food_delivery/internal/logging"
	authmw "github.com/Skotchmaster/food_delivery/internal/middleware/auth"
	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/service"
	"github.com/Skotchmaster/food_delivery/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	pair, err := h.Svc.Login(ctx, req.Username, req.Password, requestMeta(c))
	if err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, tokenResponse(pair))
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("refresh_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	pair, err := h.Svc.Refresh(ctx, req.RefreshToken, requestMeta(c))
	if err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, tokenResponse(pair))
}

// LogOut answers 200 whatever the body holds.
func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.LogoutRequest
	if err := c.Bind(&req); err != nil {
		logging.FromContext(ctx).Debug("logout_body_ignored", "error", err)
	} else if req.RefreshToken != "" {
		h.Svc.Logout(ctx, req.RefreshToken, requestMeta(c))
	}

	return c.JSON(http.StatusOK, transport.StatusResponse{Status: "ok"})
}

func (h *AuthHTTP) LogOutAll(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := h.Svc.LogoutAll(ctx, authmw.AccessToken(c), requestMeta(c)); err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, transport.StatusResponse{Status: "ok"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	who, ok := authmw.Identity(c)
	if !ok {
		return toHTTPError(c, domain.ErrInvalidToken)
	}
	return c.JSON(http.StatusOK, transport.IdentityResponse{
		ID:       who.ID,
		Email:    who.Email,
		Role:     who.Role,
		IsActive: who.IsActive,
	})
}

func requestMeta(c echo.Context) models.TokenMetadata {
	return models.TokenMetadata{
		UserAgent: c.Request().UserAgent(),
		IPAddress: c.RealIP(),
	}
}

func tokenResponse(p *service.TokenPair) transport.TokenResponse {
	return transport.TokenResponse{
		AccessToken:  p.AccessToken,
		TokenType:    p.TokenType,
		RefreshToken: p.RefreshToken,
	}
}

// toHTTPError keeps failure messages uniform; the cause stays in the logs.
func toHTTPError(c echo.Context, err error) error {
	h := c.Response().Header()
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		h.Set(echo.HeaderWWWAuthenticate, "Bearer")
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, domain.ErrInvalidRefreshToken):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	case errors.Is(err, domain.ErrInvalidToken):
		h.Set(echo.HeaderWWWAuthenticate, "Bearer")
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, domain.ErrServiceUnavailable):
		h.Set(echo.HeaderRetryAfter, "1")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "service temporarily unavailable").SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
}
