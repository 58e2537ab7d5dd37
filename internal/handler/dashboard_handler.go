package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
	"github.com/noah-isme/campus-virtual-api/pkg/response"
)

type dashboardService interface {
	For(ctx context.Context, claims *models.SessionClaims) (interface{}, error)
}

// DashboardHandler serves the role specific landing data.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc dashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Get godoc
// @Summary Dashboard
// @Description Student, teacher or admin dashboard depending on the session role
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	data, err := h.service.For(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.WithMeta(c, data, map[string]interface{}{"role": claims.User.Role})
}
