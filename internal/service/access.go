package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

type courseLookup interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type enrollmentLookup interface {
	FindByPair(ctx context.Context, studentID, courseID string) (*models.Enrollment, error)
}

// CourseAccess answers who may teach or attend a course.
type CourseAccess struct {
	courses     courseLookup
	enrollments enrollmentLookup
}

// NewCourseAccess constructs a CourseAccess.
func NewCourseAccess(courses courseLookup, enrollments enrollmentLookup) *CourseAccess {
	return &CourseAccess{courses: courses, enrollments: enrollments}
}

// Course loads a course, mapping a missing row to NOT_FOUND.
func (a *CourseAccess) Course(ctx context.Context, courseID string) (*models.Course, error) {
	course, err := a.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}
	return course, nil
}

// Teach returns the course when the caller is its teacher or an admin.
func (a *CourseAccess) Teach(ctx context.Context, claims *models.SessionClaims, courseID string) (*models.Course, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !claims.Is(models.RoleAdmin, models.RoleTeacher) {
		return nil, appErrors.ErrForbidden
	}
	course, err := a.Course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if claims.Is(models.RoleAdmin) {
		return course, nil
	}
	if course.TeacherID == nil || *course.TeacherID != claims.User.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you do not teach this course")
	}
	return course, nil
}

// Attend returns the caller's enrollment when they are a student of the course.
func (a *CourseAccess) Attend(ctx context.Context, claims *models.SessionClaims, courseID string) (*models.Enrollment, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !claims.Is(models.RoleStudent) {
		return nil, appErrors.ErrForbidden
	}
	enrollment, err := a.enrollments.FindByPair(ctx, claims.User.ID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "you are not enrolled in this course")
		}
		return nil, appErrors.Internal(err, "failed to load enrollment")
	}
	return enrollment, nil
}

// View returns the course for its teacher, an admin or an enrolled student.
// The enrollment is only set for students.
func (a *CourseAccess) View(ctx context.Context, claims *models.SessionClaims, courseID string) (*models.Course, *models.Enrollment, error) {
	if claims == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	if !claims.Is(models.RoleStudent) {
		course, err := a.Teach(ctx, claims, courseID)
		return course, nil, err
	}
	course, err := a.Course(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}
	enrollment, err := a.Attend(ctx, claims, courseID)
	if err != nil {
		return nil, nil, err
	}
	return course, enrollment, nil
}
