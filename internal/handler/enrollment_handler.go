package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	"github.com/noah-isme/campus-virtual-api/internal/service"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
	"github.com/noah-isme/campus-virtual-api/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, actor service.Actor, req models.EnrollRequest) (*models.EnrollmentDetail, error)
	ListByCourse(ctx context.Context, claims *models.SessionClaims, courseID string) ([]models.EnrollmentDetail, error)
	UpdateProgress(ctx context.Context, actor service.Actor, id string, req models.UpdateProgressRequest) (*models.EnrollmentDetail, error)
	Unenroll(ctx context.Context, actor service.Actor, id string) error
}

// EnrollmentHandler manages student enrollments.
type EnrollmentHandler struct {
	service enrollmentService
}

// NewEnrollmentHandler constructs a new handler.
func NewEnrollmentHandler(svc enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc}
}

// Enroll godoc
// @Summary Enroll student
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body models.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req models.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrValidation.WithCause(err, "invalid enrollment payload"))
		return
	}
	enrollment, err := h.service.Enroll(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// ListByCourse godoc
// @Summary Course roster
// @Tags Enrollments
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/enrollments [get]
func (h *EnrollmentHandler) ListByCourse(c *gin.Context) {
	items, err := h.service.ListByCourse(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// UpdateProgress godoc
// @Summary Update enrollment progress
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body models.UpdateProgressRequest true "Progress payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/progress [patch]
func (h *EnrollmentHandler) UpdateProgress(c *gin.Context) {
	var req models.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrValidation.WithCause(err, "invalid progress payload"))
		return
	}
	enrollment, err := h.service.UpdateProgress(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, enrollment)
}

// Unenroll godoc
// @Summary Remove enrollment
// @Tags Enrollments
// @Param id path string true "Enrollment ID"
// @Success 204 {object} response.Envelope
// @Router /admin/enrollments/{id} [delete]
func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	if err := h.service.Unenroll(c.Request.Context(), actorFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
