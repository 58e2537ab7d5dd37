package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	"github.com/noah-isme/campus-virtual-api/internal/repository"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

type enrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	FindByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error)
	UpdateProgress(ctx context.Context, id string, progress int) error
	Delete(ctx context.Context, id string) error
}

type enrollmentUserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// EnrollmentService manages course rosters.
type EnrollmentService struct {
	repo      enrollmentRepository
	users     enrollmentUserLookup
	access    *CourseAccess
	notifier  *NotificationService
	activity  *SystemLogService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, users enrollmentUserLookup, access *CourseAccess, notifier *NotificationService, activity *SystemLogService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &EnrollmentService{repo: repo, users: users, access: access, notifier: notifier, activity: activity, validator: validate, logger: logger}
}

// Enroll adds a student to a course. Enrolling twice is a conflict.
func (s *EnrollmentService) Enroll(ctx context.Context, actor Actor, req models.EnrollRequest) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid enrollment payload")
	}

	student, err := s.users.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	if student.Role != models.RoleStudent {
		return nil, appErrors.FieldError("student_id", "only students can be enrolled")
	}
	course, err := s.access.Course(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	enrollment := &models.Enrollment{StudentID: student.ID, CourseID: course.ID}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student already enrolled in this course")
		}
		return nil, appErrors.Internal(err, "failed to enroll student")
	}

	s.activity.Record(ctx, actor, models.ActionEnroll, "enrollment", enrollment.ID, map[string]string{
		"student_id": student.ID,
		"course_id":  course.ID,
	})
	s.notifier.Enrolled(student.Email, student.Name, course.Name)

	return &models.EnrollmentDetail{
		Enrollment:   *enrollment,
		StudentName:  student.Name,
		StudentEmail: student.Email,
		CourseCode:   course.Code,
		CourseName:   course.Name,
	}, nil
}

// ListByCourse returns the roster of a course. Teachers only see their own courses.
func (s *EnrollmentService) ListByCourse(ctx context.Context, claims *models.SessionClaims, courseID string) ([]models.EnrollmentDetail, error) {
	if _, err := s.access.Teach(ctx, claims, courseID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list enrollments")
	}
	if items == nil {
		items = []models.EnrollmentDetail{}
	}
	return items, nil
}

// UpdateProgress sets an enrollment's progress. Admins and the course's
// teacher may do so.
func (s *EnrollmentService) UpdateProgress(ctx context.Context, actor Actor, id string, req models.UpdateProgressRequest) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid progress payload")
	}
	detail, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.Teach(ctx, actor.Claims, detail.CourseID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProgress(ctx, id, *req.Progress); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Internal(err, "failed to update progress")
	}
	s.activity.Record(ctx, actor, models.ActionProgressUpdate, "enrollment", id, map[string]int{
		"from": detail.Progress,
		"to":   *req.Progress,
	})
	detail.Progress = *req.Progress
	return detail, nil
}

// Unenroll removes a student from a course.
func (s *EnrollmentService) Unenroll(ctx context.Context, actor Actor, id string) error {
	detail, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Internal(err, "failed to unenroll student")
	}
	s.activity.Record(ctx, actor, models.ActionUnenroll, "enrollment", id, map[string]string{
		"student_id": detail.StudentID,
		"course_id":  detail.CourseID,
	})
	return nil
}

func (s *EnrollmentService) find(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Internal(err, "failed to load enrollment")
	}
	return detail, nil
}
