package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	"github.com/noah-isme/campus-virtual-api/pkg/response"
)

type systemLogService interface {
	List(ctx context.Context, filter models.SystemLogFilter) ([]models.SystemLog, *models.Pagination, error)
}

// SystemLogHandler lists recorded admin activity.
type SystemLogHandler struct {
	service systemLogService
}

// NewSystemLogHandler constructs a new handler.
func NewSystemLogHandler(svc systemLogService) *SystemLogHandler {
	return &SystemLogHandler{service: svc}
}

// List godoc
// @Summary Activity log
// @Tags Admin
// @Produce json
// @Param action query string false "Action filter"
// @Param user_id query string false "Actor filter"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/logs [get]
func (h *SystemLogHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	filter := models.SystemLogFilter{
		Action:   c.Query("action"),
		UserID:   c.Query("user_id"),
		Page:     page,
		PageSize: size,
	}
	logs, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, logs, pagination)
}
