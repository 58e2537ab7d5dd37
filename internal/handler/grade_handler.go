package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	"github.com/noah-isme/campus-virtual-api/pkg/response"
)

type gradeService interface {
	StudentGrades(ctx context.Context, claims *models.SessionClaims) ([]models.CourseGrade, error)
	Threshold() float64
}

// GradeHandler serves the student's weighted averages.
type GradeHandler struct {
	service gradeService
}

// NewGradeHandler constructs a new handler.
func NewGradeHandler(svc gradeService) *GradeHandler {
	return &GradeHandler{service: svc}
}

// Mine godoc
// @Summary My grades
// @Description Weighted average and trend per enrolled course
// @Tags Grades
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/grades [get]
func (h *GradeHandler) Mine(c *gin.Context) {
	grades, err := h.service.StudentGrades(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.WithMeta(c, grades, map[string]interface{}{"trend_threshold": h.service.Threshold()})
}
