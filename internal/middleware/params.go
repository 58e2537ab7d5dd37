package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
	"github.com/noah-isme/campus-virtual-api/pkg/response"
)

// UUIDParams rejects requests whose named path params are present but not
// UUIDs. Routes without the param pass through.
func UUIDParams(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range names {
			value := c.Param(name)
			if value == "" {
				continue
			}
			if _, err := uuid.Parse(value); err != nil {
				response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "resource not found"))
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
