package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-virtual-api/internal/dto"
	"github.com/noah-isme/campus-virtual-api/internal/models"
	"github.com/noah-isme/campus-virtual-api/internal/service"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
	"github.com/noah-isme/campus-virtual-api/pkg/response"
)

type gradingService interface {
	CourseSubmissions(ctx context.Context, claims *models.SessionClaims, courseID string) (*dto.CourseSubmissions, error)
	SubmissionDetail(ctx context.Context, claims *models.SessionClaims, submissionID string) (*dto.SubmissionReview, error)
	ResultDetail(ctx context.Context, claims *models.SessionClaims, resultID string) (*dto.ExamResultReview, error)
	GradeSubmission(ctx context.Context, actor service.Actor, submissionID string, req models.GradeRequest) (*models.SubmissionDetail, error)
	GradeResult(ctx context.Context, actor service.Actor, resultID string, req models.GradeRequest) (*models.ExamResultDetail, error)
}

// GradingHandler exposes the teacher grading workflow.
type GradingHandler struct {
	service gradingService
}

// NewGradingHandler constructs a new handler.
func NewGradingHandler(svc gradingService) *GradingHandler {
	return &GradingHandler{service: svc}
}

// CourseSubmissions godoc
// @Summary Course submissions
// @Description Submissions per assignment and results per exam
// @Tags Grading
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/submissions [get]
func (h *GradingHandler) CourseSubmissions(c *gin.Context) {
	data, err := h.service.CourseSubmissions(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, data)
}

// Submission godoc
// @Summary Submission detail
// @Tags Grading
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id} [get]
func (h *GradingHandler) Submission(c *gin.Context) {
	data, err := h.service.SubmissionDetail(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, data)
}

// Result godoc
// @Summary Exam result detail
// @Description Every question with the student's answer and correctness
// @Tags Grading
// @Produce json
// @Param id path string true "Exam result ID"
// @Success 200 {object} response.Envelope
// @Router /exam-results/{id} [get]
func (h *GradingHandler) Result(c *gin.Context) {
	data, err := h.service.ResultDetail(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, data)
}

// GradeSubmission godoc
// @Summary Grade submission
// @Tags Grading
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body models.GradeRequest true "Grade"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /submissions/{id}/grade [put]
func (h *GradingHandler) GradeSubmission(c *gin.Context) {
	req, ok := bindGrade(c)
	if !ok {
		return
	}
	data, err := h.service.GradeSubmission(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, data)
}

// GradeResult godoc
// @Summary Grade exam result
// @Tags Grading
// @Accept json
// @Produce json
// @Param id path string true "Exam result ID"
// @Param payload body models.GradeRequest true "Grade"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /exam-results/{id}/grade [put]
func (h *GradingHandler) GradeResult(c *gin.Context) {
	req, ok := bindGrade(c)
	if !ok {
		return
	}
	data, err := h.service.GradeResult(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, data)
}

func bindGrade(c *gin.Context) (models.GradeRequest, bool) {
	var req models.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrValidation.WithCause(err, "invalid grade payload"))
		return req, false
	}
	return req, true
}
