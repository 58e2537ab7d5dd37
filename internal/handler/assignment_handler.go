package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	"github.com/noah-isme/campus-virtual-api/internal/service"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
	"github.com/noah-isme/campus-virtual-api/pkg/response"
)

type assignmentService interface {
	Create(ctx context.Context, actor service.Actor, req models.CreateAssignmentRequest) (*models.Assignment, error)
	Submit(ctx context.Context, actor service.Actor, assignmentID string, req models.SubmitAssignmentRequest) (*models.Submission, error)
}

// AssignmentHandler covers assignment authoring and student submissions.
type AssignmentHandler struct {
	service assignmentService
}

// NewAssignmentHandler constructs a new handler.
func NewAssignmentHandler(svc assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// Create godoc
// @Summary Create assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /courses/{id}/assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req models.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrValidation.WithCause(err, "invalid assignment payload"))
		return
	}
	req.CourseID = c.Param("id")
	assignment, err := h.service.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Submit godoc
// @Summary Submit assignment
// @Description Creates or replaces the caller's submission until it is graded
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body models.SubmitAssignmentRequest true "Submission payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments/{id}/submission [put]
func (h *AssignmentHandler) Submit(c *gin.Context) {
	var req models.SubmitAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrValidation.WithCause(err, "invalid submission payload"))
		return
	}
	submission, err := h.service.Submit(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, submission)
}
