package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	"github.com/noah-isme/campus-virtual-api/internal/repository"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

type assignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	UpsertSubmission(ctx context.Context, sub *models.Submission) error
}

// AssignmentService handles coursework creation and student submissions.
type AssignmentService struct {
	repo      assignmentRepository
	access    *CourseAccess
	grades    *GradeService
	activity  *SystemLogService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(repo assignmentRepository, access *CourseAccess, grades *GradeService, activity *SystemLogService, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &AssignmentService{repo: repo, access: access, grades: grades, activity: activity, validator: validate, logger: logger}
}

// Create adds an assignment to a course the caller teaches. Weight defaults to 1.
func (s *AssignmentService) Create(ctx context.Context, actor Actor, req models.CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid assignment payload")
	}
	if _, err := s.access.Teach(ctx, actor.Claims, req.CourseID); err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		CourseID:    req.CourseID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		DueDate:     req.DueDate.UTC(),
		TotalPoints: req.TotalPoints,
		Weight:      1.0,
	}
	if req.Weight != nil {
		assignment.Weight = *req.Weight
	}

	if err := s.repo.Create(ctx, assignment); err != nil {
		if errors.Is(err, repository.ErrReference) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Internal(err, "failed to create assignment")
	}
	s.activity.Record(ctx, actor, models.ActionAssignmentCreate, "assignment", assignment.ID, map[string]string{"course_id": assignment.CourseID})
	return assignment, nil
}

// Submit stores the caller's submission. Submitting again replaces the
// previous file and content and clears any grade already published.
func (s *AssignmentService) Submit(ctx context.Context, actor Actor, assignmentID string, req models.SubmitAssignmentRequest) (*models.Submission, error) {
	if actor.Claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !actor.Claims.Is(models.RoleStudent) {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid submission payload")
	}

	assignment, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Internal(err, "failed to load assignment")
	}
	if _, err := s.access.Attend(ctx, actor.Claims, assignment.CourseID); err != nil {
		return nil, err
	}

	sub := &models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    actor.Claims.User.ID,
		FileURL:      strings.TrimSpace(req.FileURL),
	}
	if req.Content != nil {
		if content := strings.TrimSpace(*req.Content); content != "" {
			sub.Content = &content
		}
	}
	if err := s.repo.UpsertSubmission(ctx, sub); err != nil {
		return nil, appErrors.Internal(err, "failed to submit assignment")
	}
	s.grades.Invalidate(ctx, sub.StudentID)
	return sub, nil
}
