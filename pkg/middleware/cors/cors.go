// Package cors answers cross-origin requests from the SPA. Sessions travel
// in a cookie, so allowed origins are echoed back with credentials enabled.
package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	allowMethods = strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}, ", ")
	allowHeaders  = "Content-Type, X-Requested-With, X-Request-ID"
	exposeHeaders = "Content-Disposition, X-Request-ID"
)

// Policy holds the normalised origin allow list. An empty list admits every
// origin and is meant for local development only.
type Policy struct {
	origins map[string]bool
}

// NewPolicy normalises origins, dropping trailing slashes and letter case.
func NewPolicy(origins []string) Policy {
	p := Policy{origins: make(map[string]bool, len(origins))}
	for _, o := range origins {
		if o = normalise(o); o != "" {
			p.origins[o] = true
		}
	}
	return p
}

// Allows reports whether origin may call the API.
func (p Policy) Allows(origin string) bool {
	if origin == "" {
		return false
	}
	return len(p.origins) == 0 || p.origins[normalise(origin)]
}

// New builds the middleware for origins.
func New(origins []string) gin.HandlerFunc {
	return NewPolicy(origins).Handler()
}

// Handler decorates allowed requests and short-circuits preflights. A
// preflight from a foreign origin gets 403.
func (p Policy) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		ok := p.Allows(origin)
		if ok {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Expose-Headers", exposeHeaders)
		}

		preflight := c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != ""
		if !preflight {
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		h.Add("Vary", "Access-Control-Request-Method")
		h.Set("Access-Control-Allow-Methods", allowMethods)
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Max-Age", "600")
		c.AbortWithStatus(http.StatusNoContent)
	}
}

func normalise(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}
