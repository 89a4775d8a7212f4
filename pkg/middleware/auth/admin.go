package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const accessCookie = "accessToken"

type AdminGuard struct {
	JWTSecret []byte
}

func NewAdminGuard(secret []byte) *AdminGuard {
	return &AdminGuard{JWTSecret: secret}
}

// RequireAdmin accepts a Bearer token or the accessToken cookie.
func (m *AdminGuard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "RequireAdmin")

		raw := bearerToken(c.Request())
		if raw == "" {
			if ck, err := c.Cookie(accessCookie); err == nil {
				raw = ck.Value
			}
		}
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			l.Warn("admin_auth_failed", "status", http.StatusUnauthorized, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}
		if claims.Role != tokens.RoleAdmin {
			l.Warn("admin_auth_failed", "status", http.StatusForbidden, "reason", "role", "role", claims.Role)
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}

		setUserContext(c, claims)
		return next(c)
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set("user_id", claims.Subject)
	c.Set("role", claims.Role)
}
