package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_delivery/internal/models"
)

const (
	ctxIdentity    = "identity"
	ctxUserID      = "user_id"
	ctxRole        = "role"
	ctxAccessToken = "access_token"
)

// BearerToken returns the credentials of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func Identity(c echo.Context) (*models.Identity, bool) {
	who, ok := c.Get(ctxIdentity).(*models.Identity)
	return who, ok && who != nil
}

func AccessToken(c echo.Context) string {
	s, _ := c.Get(ctxAccessToken).(string)
	return s
}

func setUserContext(c echo.Context, who *models.Identity, token string) {
	c.Set(ctxIdentity, who)
	c.Set(ctxUserID, who.ID)
	c.Set(ctxRole, who.Role)
	c.Set(ctxAccessToken, token)
}

func unauthorized(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
}
