package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-virtual-api/internal/middleware"
	"github.com/noah-isme/campus-virtual-api/internal/models"
	"github.com/noah-isme/campus-virtual-api/internal/service"
)

func claimsFromContext(c *gin.Context) *models.SessionClaims {
	return middleware.CurrentUser(c)
}

func actorFromContext(c *gin.Context) service.Actor {
	return service.Actor{Claims: middleware.CurrentUser(c), IP: c.ClientIP()}
}

// pageParams reads page and page_size, falling back to the service defaults
// on anything unparsable.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, size
}
