package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieConfig controls the attributes of the cookies the API sets.
type CookieConfig struct {
	SessionName string
	Secure      bool
}

func (cfg CookieConfig) sessionName() string {
	if cfg.SessionName == "" {
		return "session"
	}
	return cfg.SessionName
}

func (cfg CookieConfig) set(c *gin.Context, name, value string, maxAge time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(maxAge.Seconds()), "/", "", cfg.Secure, true)
}

func (cfg CookieConfig) clear(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", cfg.Secure, true)
}

func (cfg CookieConfig) setSession(c *gin.Context, token string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	cfg.set(c, cfg.sessionName(), token, ttl)
}

func (cfg CookieConfig) clearSession(c *gin.Context) {
	cfg.clear(c, cfg.sessionName())
}
