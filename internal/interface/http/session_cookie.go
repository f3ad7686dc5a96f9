package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/nutrition-advisor/internal/infra/config"
)

type cookieSettings struct {
	name   string
	maxAge int
	secure bool
}

func newCookieSettings(cfg config.SessionConfig) cookieSettings {
	return cookieSettings{
		name:   cfg.CookieName,
		maxAge: int(cfg.TTL / time.Second),
		secure: cfg.SecureCookie,
	}
}

func (s cookieSettings) write(c *gin.Context, token string) {
	secure := s.secure || c.Request.TLS != nil
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.name, token, s.maxAge, "/", "", secure, true)
}

func (s cookieSettings) read(c *gin.Context) string {
	value, err := c.Cookie(s.name)
	if err != nil {
		return ""
	}
	return value
}
