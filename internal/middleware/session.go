package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	"github.com/noah-isme/campus-virtual-api/internal/service"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
	"github.com/noah-isme/campus-virtual-api/pkg/logger"
	"github.com/noah-isme/campus-virtual-api/pkg/response"
)

// ContextUserKey is the gin context key storing session claims.
const ContextUserKey = "currentUser"

// Session protects routes by requiring a valid session cookie. A bearer
// token in the Authorization header is accepted for API clients.
func Session(sessions *service.SessionService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c, cookieName)
		if token == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := sessions.Parse(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		attach(c, claims)
		c.Next()
	}
}

// OptionalSession attaches claims when a valid session is present but does not block.
func OptionalSession(sessions *service.SessionService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := sessionToken(c, cookieName); token != "" {
			if claims, err := sessions.Parse(token); err == nil {
				attach(c, claims)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the session claims attached to c, if any.
func CurrentUser(c *gin.Context) *models.SessionClaims {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*models.SessionClaims)
	return claims
}

func attach(c *gin.Context, claims *models.SessionClaims) {
	c.Set(ContextUserKey, claims)
	c.Set(logger.ContextUserIDKey, claims.User.ID)
	c.Set(logger.ContextRoleKey, string(claims.User.Role))
}

func sessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
