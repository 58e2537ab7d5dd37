package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-virtual-api/internal/service"
)

// Metrics observes every request under its route template, so /courses/:id
// is one series however many courses exist. Requests that match no route
// share the "unmatched" label.
func Metrics(m *service.MetricsService) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		done := m.TrackInFlight()
		defer done()

		started := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(started))
	}
}
