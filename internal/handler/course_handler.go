package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-virtual-api/internal/dto"
	"github.com/noah-isme/campus-virtual-api/internal/models"
	"github.com/noah-isme/campus-virtual-api/internal/service"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
	"github.com/noah-isme/campus-virtual-api/pkg/response"
)

type courseService interface {
	List(ctx context.Context, claims *models.SessionClaims, filter models.CourseFilter) ([]models.Course, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, actor service.Actor, req models.CreateCourseRequest) (*models.Course, error)
	Update(ctx context.Context, actor service.Actor, id string, req models.UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, actor service.Actor, id string) error
	AddMaterial(ctx context.Context, actor service.Actor, req models.CreateMaterialRequest) (*models.Material, error)
	Detail(ctx context.Context, claims *models.SessionClaims, courseID string) (*dto.CourseDetail, error)
}

// CourseHandler exposes course administration and the course page.
type CourseHandler struct {
	service courseService
}

// NewCourseHandler constructs a new handler.
func NewCourseHandler(svc courseService) *CourseHandler {
	return &CourseHandler{service: svc}
}

// List godoc
// @Summary List courses
// @Description Enrolled courses for students, owned courses for teachers, all courses for admins
// @Tags Courses
// @Produce json
// @Param search query string false "Search by code or name"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	filter := models.CourseFilter{Search: strings.TrimSpace(c.Query("search")), Page: page, PageSize: size}
	if claims := claimsFromContext(c); claims.Is(models.RoleAdmin) {
		filter.TeacherID = c.Query("teacher_id")
	}

	courses, pagination, err := h.service.List(c.Request.Context(), claimsFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, courses, pagination)
}

// Get godoc
// @Summary Get course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, course)
}

// Detail godoc
// @Summary Course page
// @Description Course with materials, assignments and exams; students also get their progress and grade
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Detail(c *gin.Context) {
	detail, err := h.service.Detail(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, detail)
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body models.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req models.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrValidation.WithCause(err, "invalid course payload"))
		return
	}
	course, err := h.service.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.UpdateCourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Router /admin/courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var req models.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrValidation.WithCause(err, "invalid course payload"))
		return
	}
	course, err := h.service.Update(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, course)
}

// Delete godoc
// @Summary Delete course
// @Tags Courses
// @Param id path string true "Course ID"
// @Success 204 {object} response.Envelope
// @Router /admin/courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), actorFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddMaterial godoc
// @Summary Add course material
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.CreateMaterialRequest true "Material payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /courses/{id}/materials [post]
func (h *CourseHandler) AddMaterial(c *gin.Context) {
	var req models.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrValidation.WithCause(err, "invalid material payload"))
		return
	}
	req.CourseID = c.Param("id")
	material, err := h.service.AddMaterial(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, material)
}
