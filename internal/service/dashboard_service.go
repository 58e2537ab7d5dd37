package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-virtual-api/internal/dto"
	"github.com/noah-isme/campus-virtual-api/internal/models"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

const recentLogLimit = 10

type dashboardCourseRepository interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error)
	PendingByTeacher(ctx context.Context, teacherID string) ([]models.PendingCount, error)
	Count(ctx context.Context) (int, error)
}

type dashboardEnrollmentRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	Count(ctx context.Context) (int, error)
}

type dashboardUserCounter interface {
	CountByRole(ctx context.Context) ([]models.RoleCount, error)
}

// DashboardService assembles the landing page of each role.
type DashboardService struct {
	courses     dashboardCourseRepository
	enrollments dashboardEnrollmentRepository
	users       dashboardUserCounter
	grades      *GradeService
	activity    *SystemLogService
	logger      *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(courses dashboardCourseRepository, enrollments dashboardEnrollmentRepository, users dashboardUserCounter, grades *GradeService, activity *SystemLogService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{courses: courses, enrollments: enrollments, users: users, grades: grades, activity: activity, logger: logger}
}

// For returns the dashboard matching the caller's role, or nil without a session.
func (s *DashboardService) For(ctx context.Context, claims *models.SessionClaims) (interface{}, error) {
	if claims == nil {
		return nil, nil
	}
	switch claims.User.Role {
	case models.RoleStudent:
		return s.Student(ctx, claims.User.ID)
	case models.RoleTeacher:
		return s.Teacher(ctx, claims.User.ID)
	case models.RoleAdmin:
		return s.Admin(ctx)
	}
	return nil, nil
}

// Student lists enrolled courses with progress and weighted average.
func (s *DashboardService) Student(ctx context.Context, studentID string) (*dto.StudentDashboard, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load enrollments")
	}
	out := &dto.StudentDashboard{Courses: make([]dto.StudentCourseCard, 0, len(enrollments))}
	for _, e := range enrollments {
		card := dto.StudentCourseCard{
			CourseID:   e.CourseID,
			CourseCode: e.CourseCode,
			CourseName: e.CourseName,
			Progress:   e.Progress,
			Trend:      models.TrendDown,
		}
		grade, err := s.grades.CourseGrade(ctx, studentID, e.CourseID)
		if err != nil {
			s.logger.Warn("dashboard grade unavailable", zap.String("course_id", e.CourseID), zap.Error(err))
		} else {
			card.Average = grade.Average
			card.Trend = grade.Trend
		}
		out.Courses = append(out.Courses, card)
	}
	return out, nil
}

// Teacher lists owned courses with the number of submissions awaiting a grade.
func (s *DashboardService) Teacher(ctx context.Context, teacherID string) (*dto.TeacherDashboard, error) {
	courses, err := s.courses.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load courses")
	}
	pending, err := s.courses.PendingByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count pending work")
	}
	byCourse := make(map[string]int, len(pending))
	for _, p := range pending {
		byCourse[p.CourseID] = p.Pending
	}

	out := &dto.TeacherDashboard{Courses: make([]dto.TeacherCourseCard, 0, len(courses))}
	for _, c := range courses {
		n := byCourse[c.ID]
		out.Courses = append(out.Courses, dto.TeacherCourseCard{CourseID: c.ID, CourseCode: c.Code, CourseName: c.Name, Pending: n})
		out.TotalPending += n
	}
	return out, nil
}

// Admin aggregates platform totals and the latest activity.
func (s *DashboardService) Admin(ctx context.Context) (*dto.AdminDashboard, error) {
	counts, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count users")
	}
	courses, err := s.courses.Count(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count courses")
	}
	enrollments, err := s.enrollments.Count(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count enrollments")
	}

	out := &dto.AdminDashboard{
		UsersByRole: map[models.UserRole]int{models.RoleAdmin: 0, models.RoleTeacher: 0, models.RoleStudent: 0},
		Courses:     courses,
		Enrollments: enrollments,
		RecentLogs:  []models.SystemLog{},
	}
	for _, c := range counts {
		out.UsersByRole[c.Role] = c.Total
	}

	logs, _, err := s.activity.List(ctx, models.SystemLogFilter{Page: 1, PageSize: recentLogLimit})
	if err != nil {
		s.logger.Warn("dashboard logs unavailable", zap.Error(err))
	} else if logs != nil {
		out.RecentLogs = logs
	}
	return out, nil
}
