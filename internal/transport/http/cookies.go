package http

import (
	"net/http"
	"time"

	"github.com/cwrk-planet/chat-service/internal/service"
	httpmw "github.com/cwrk-planet/chat-service/internal/transport/http/middleware"
)

const (
	refreshCookie     = "refresh_token"
	refreshCookiePath = "/api/auth"
)

type CookieConfig struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

func (c CookieConfig) cookie(name, value, path string, expires time.Time) *http.Cookie {
	sameSite := c.SameSite
	if sameSite == 0 {
		sameSite = http.SameSiteLaxMode
	}

	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: sameSite,
	}
	if expires.IsZero() {
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
	} else {
		ck.Expires = expires.UTC()
	}
	return ck
}

func (c CookieConfig) setTokens(w http.ResponseWriter, t *service.Tokens) {
	http.SetCookie(w, c.cookie(httpmw.AccessCookie, t.AccessToken, "/", t.AccessExpiresAt))
	http.SetCookie(w, c.cookie(refreshCookie, t.RefreshToken.String(), refreshCookiePath, t.RefreshExpiresAt))
}

func (c CookieConfig) clearTokens(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(httpmw.AccessCookie, "", "/", time.Time{}))
	http.SetCookie(w, c.cookie(refreshCookie, "", refreshCookiePath, time.Time{}))
}

// ParseSameSite: lax (по умолчанию), strict, none
func ParseSameSite(s string) http.SameSite {
	switch s {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
