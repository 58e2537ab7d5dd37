package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-virtual-api/internal/dto"
	"github.com/noah-isme/campus-virtual-api/internal/models"
	"github.com/noah-isme/campus-virtual-api/internal/repository"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type courseUserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type materialRepository interface {
	Create(ctx context.Context, material *models.Material) error
	ListByCourse(ctx context.Context, courseID string) ([]models.Material, error)
}

type courseAssignmentLister interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error)
	ListForStudent(ctx context.Context, courseID, studentID string) ([]models.AssignmentView, error)
}

type courseExamLister interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Exam, error)
	ListForStudent(ctx context.Context, courseID, studentID string) ([]models.ExamView, error)
}

// CourseService covers course administration, materials and the course page.
type CourseService struct {
	repo        courseRepository
	users       courseUserLookup
	materials   materialRepository
	assignments courseAssignmentLister
	exams       courseExamLister
	access      *CourseAccess
	grades      *GradeService
	activity    *SystemLogService
	validator   *validator.Validate
	logger      *zap.Logger
}

// CourseServiceDeps groups the collaborators of CourseService.
type CourseServiceDeps struct {
	Courses     courseRepository
	Users       courseUserLookup
	Materials   materialRepository
	Assignments courseAssignmentLister
	Exams       courseExamLister
	Access      *CourseAccess
	Grades      *GradeService
	Activity    *SystemLogService
}

// NewCourseService constructs a CourseService.
func NewCourseService(deps CourseServiceDeps, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &CourseService{
		repo:        deps.Courses,
		users:       deps.Users,
		materials:   deps.Materials,
		assignments: deps.Assignments,
		exams:       deps.Exams,
		access:      deps.Access,
		grades:      deps.Grades,
		activity:    deps.Activity,
		validator:   validate,
		logger:      logger,
	}
}

// List returns the courses visible to the caller: enrolled courses for
// students, owned courses for teachers and every course for admins.
func (s *CourseService) List(ctx context.Context, claims *models.SessionClaims, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	page, size := normalisePage(filter.Page, filter.PageSize)
	if claims == nil || !claims.User.Role.Valid() {
		return []models.Course{}, &models.Pagination{Page: page, PageSize: size}, nil
	}
	switch claims.User.Role {
	case models.RoleStudent:
		filter.StudentID = claims.User.ID
		filter.TeacherID = ""
	case models.RoleTeacher:
		filter.TeacherID = claims.User.ID
		filter.StudentID = ""
	}

	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list courses")
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a course by ID.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	return s.access.Course(ctx, id)
}

// Create adds a course.
func (s *CourseService) Create(ctx context.Context, actor Actor, req models.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid create course payload")
	}
	if err := s.checkTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	course := &models.Course{
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Credits:     req.Credits,
		Schedule:    strings.TrimSpace(req.Schedule),
		TeacherID:   req.TeacherID,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, courseWriteError(err, "failed to create course")
	}

	s.activity.Record(ctx, actor, models.ActionCourseCreate, "course", course.ID, map[string]interface{}{
		"code":       course.Code,
		"teacher_id": course.TeacherID,
	})
	return course, nil
}

// Update edits a course.
func (s *CourseService) Update(ctx context.Context, actor Actor, id string, req models.UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid update course payload")
	}
	course, err := s.access.Course(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	if req.Code != nil {
		course.Code = strings.ToUpper(strings.TrimSpace(*req.Code))
	}
	if req.Name != nil {
		course.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		course.Description = strings.TrimSpace(*req.Description)
	}
	if req.Credits != nil {
		course.Credits = *req.Credits
	}
	if req.Schedule != nil {
		course.Schedule = strings.TrimSpace(*req.Schedule)
	}
	if req.TeacherID != nil {
		course.TeacherID = req.TeacherID
	}

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, courseWriteError(err, "failed to update course")
	}
	s.activity.Record(ctx, actor, models.ActionCourseUpdate, "course", course.ID, req)
	return course, nil
}

// Delete removes a course with its coursework.
func (s *CourseService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Internal(err, "failed to delete course")
	}
	s.activity.Record(ctx, actor, models.ActionCourseDelete, "course", id, nil)
	return nil
}

// AddMaterial attaches a material to a course the caller teaches.
func (s *CourseService) AddMaterial(ctx context.Context, actor Actor, req models.CreateMaterialRequest) (*models.Material, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid material payload")
	}
	if _, err := s.access.Teach(ctx, actor.Claims, req.CourseID); err != nil {
		return nil, err
	}
	material := &models.Material{
		CourseID: req.CourseID,
		Title:    strings.TrimSpace(req.Title),
		Type:     req.Type,
		URL:      strings.TrimSpace(req.URL),
	}
	if err := s.materials.Create(ctx, material); err != nil {
		return nil, appErrors.Internal(err, "failed to create material")
	}
	s.activity.Record(ctx, actor, models.ActionMaterialCreate, "material", material.ID, map[string]string{"course_id": material.CourseID})
	return material, nil
}

// Detail builds the course page. Students see their own submission state,
// progress and grade; teachers and admins see the plain coursework.
func (s *CourseService) Detail(ctx context.Context, claims *models.SessionClaims, courseID string) (*dto.CourseDetail, error) {
	course, enrollment, err := s.access.View(ctx, claims, courseID)
	if err != nil {
		return nil, err
	}

	materials, err := s.materials.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load materials")
	}
	detail := &dto.CourseDetail{Course: *course, Materials: nonNil(materials)}

	if enrollment != nil {
		studentID := claims.User.ID
		assignments, err := s.assignments.ListForStudent(ctx, courseID, studentID)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to load assignments")
		}
		exams, err := s.exams.ListForStudent(ctx, courseID, studentID)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to load exams")
		}
		grade, err := s.grades.CourseGrade(ctx, studentID, courseID)
		if err != nil {
			return nil, err
		}
		grade.CourseCode = course.Code
		grade.CourseName = course.Name

		progress := enrollment.Progress
		detail.Assignments = nonNil(assignments)
		detail.Exams = nonNil(exams)
		detail.Progress = &progress
		detail.Grade = grade
		return detail, nil
	}

	assignments, err := s.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load assignments")
	}
	exams, err := s.exams.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load exams")
	}
	detail.Assignments = make([]models.AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		detail.Assignments = append(detail.Assignments, models.AssignmentView{Assignment: a})
	}
	detail.Exams = make([]models.ExamView, 0, len(exams))
	for _, e := range exams {
		detail.Exams = append(detail.Exams, models.ExamView{Exam: e})
	}
	return detail, nil
}

func (s *CourseService) checkTeacher(ctx context.Context, teacherID *string) error {
	if teacherID == nil {
		return nil
	}
	user, err := s.users.FindByID(ctx, *teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.FieldError("teacher_id", "teacher not found")
		}
		return appErrors.Internal(err, "failed to load teacher")
	}
	if user.Role != models.RoleTeacher {
		return appErrors.FieldError("teacher_id", "user is not a teacher")
	}
	return nil
}

func courseWriteError(err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return appErrors.Clone(appErrors.ErrConflict, "course code already exists")
	case errors.Is(err, repository.ErrReference):
		return appErrors.FieldError("teacher_id", "teacher not found")
	}
	return appErrors.Internal(err, msg)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
