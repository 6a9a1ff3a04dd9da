package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/videotube/account-service/internal/core/ports"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

// CookieConfig controls the session cookies set on login and refresh.
type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (cc CookieConfig) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (cc CookieConfig) setSession(c echo.Context, pair ports.TokenPair) {
	c.SetCookie(cc.cookie(accessCookie, pair.AccessToken, cc.AccessTTL))
	c.SetCookie(cc.cookie(refreshCookie, pair.RefreshToken, cc.RefreshTTL))
}

func (cc CookieConfig) clearSession(c echo.Context) {
	for _, name := range []string{accessCookie, refreshCookie} {
		ck := cc.cookie(name, "", 0)
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
		c.SetCookie(ck)
	}
}
