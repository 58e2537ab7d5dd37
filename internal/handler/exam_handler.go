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

type examService interface {
	Create(ctx context.Context, actor service.Actor, req models.CreateExamRequest) (*models.Exam, error)
	GetForStudent(ctx context.Context, claims *models.SessionClaims, examID string) (*dto.StudentExam, error)
	Submit(ctx context.Context, actor service.Actor, examID string, req models.SubmitExamRequest) (*models.ExamResult, error)
}

// ExamHandler covers exam authoring, delivery and submission.
type ExamHandler struct {
	service examService
}

// NewExamHandler constructs a new handler.
func NewExamHandler(svc examService) *ExamHandler {
	return &ExamHandler{service: svc}
}

// Create godoc
// @Summary Create exam
// @Description Stores the exam with its questions and options in one transaction
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.CreateExamRequest true "Exam payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /courses/{id}/exams [post]
func (h *ExamHandler) Create(c *gin.Context) {
	var req models.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrValidation.WithCause(err, "invalid exam payload"))
		return
	}
	req.CourseID = c.Param("id")
	exam, err := h.service.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exam)
}

// Take godoc
// @Summary Fetch exam for taking
// @Description Questions and options without the answer key
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *ExamHandler) Take(c *gin.Context) {
	exam, err := h.service.GetForStudent(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if exam == nil {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	response.OK(c, exam)
}

// Submit godoc
// @Summary Submit exam
// @Description Persists the attempt and every answer atomically
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param payload body models.SubmitExamRequest true "Answers"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exams/{id}/submit [post]
func (h *ExamHandler) Submit(c *gin.Context) {
	var req models.SubmitExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrValidation.WithCause(err, "invalid exam submission"))
		return
	}
	result, err := h.service.Submit(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
