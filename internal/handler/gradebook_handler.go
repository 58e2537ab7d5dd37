package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	"github.com/noah-isme/campus-virtual-api/internal/service"
	"github.com/noah-isme/campus-virtual-api/pkg/response"
)

type gradebookService interface {
	Export(ctx context.Context, claims *models.SessionClaims, courseID, format string) (*service.GradebookFile, error)
}

// GradebookHandler streams course gradebooks as CSV or PDF.
type GradebookHandler struct {
	service gradebookService
}

// NewGradebookHandler constructs a new handler.
func NewGradebookHandler(svc gradebookService) *GradebookHandler {
	return &GradebookHandler{service: svc}
}

// Export godoc
// @Summary Export gradebook
// @Description One row per enrolled student with weighted average and trend
// @Tags Grades
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Course ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /courses/{id}/gradebook [get]
func (h *GradebookHandler) Export(c *gin.Context) {
	file, err := h.service.Export(c.Request.Context(), claimsFromContext(c), c.Param("id"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Name, file.ContentType, file.Data)
}
