package httpserver

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	sessionCookie = "cartSession"
	sessionTTL    = 30 * 24 * time.Hour
)

func CreateCookie(name, value, path string, expTime time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expTime,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// sessionID returns the cart session of the request, minting one when the
// cookie is missing or malformed.
func sessionID(c echo.Context, secure bool) string {
	if ck, err := c.Cookie(sessionCookie); err == nil {
		if _, err := uuid.Parse(ck.Value); err == nil {
			return ck.Value
		}
	}

	id := uuid.NewString()
	c.SetCookie(CreateCookie(sessionCookie, id, "/", time.Now().Add(sessionTTL), secure))
	return id
}
