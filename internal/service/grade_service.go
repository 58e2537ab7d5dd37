package service

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	"github.com/noah-isme/campus-virtual-api/pkg/cache"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

// DefaultTrendThreshold is the average at or above which a course trends up.
const DefaultTrendThreshold = 51.0

type gradeItemRepository interface {
	ListGradedItems(ctx context.Context, studentID, courseID string) ([]models.GradedItem, error)
}

type gradeEnrollmentRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
}

// ComputeCourseGrade derives the weighted average of the graded items.
// Items without a grade are skipped. Each grade is normalised to 0-100
// against its own total points and weighted by the item weight; the result
// is divided by the sum of weights of graded items only.
func ComputeCourseGrade(items []models.GradedItem, threshold float64) (models.CourseGrade, error) {
	result := models.CourseGrade{Details: []models.GradeDetail{}}

	var weightedSum, totalWeight float64
	for _, item := range items {
		if item.Grade == nil {
			continue
		}
		if item.TotalPoints <= 0 {
			return models.CourseGrade{}, appErrors.Clone(appErrors.ErrInvalidPoints, "\""+item.Title+"\" has no points to grade against")
		}
		normalized := *item.Grade / item.TotalPoints * 100
		weightedSum += normalized * item.Weight
		totalWeight += item.Weight
		result.Details = append(result.Details, models.GradeDetail{
			Type:   item.Title,
			Kind:   item.Kind,
			Score:  *item.Grade,
			Max:    item.TotalPoints,
			Weight: item.Weight * 100,
			Date:   item.Date,
		})
	}

	if totalWeight > 0 {
		result.Average = math.Round(weightedSum/totalWeight*10) / 10
	}
	result.Trend = models.TrendDown
	if result.Average >= threshold {
		result.Trend = models.TrendUp
	}
	return result, nil
}

// GradeService builds per-course grade summaries for students and caches them.
type GradeService struct {
	items       gradeItemRepository
	enrollments gradeEnrollmentRepository
	cache       *CacheService
	threshold   float64
	logger      *zap.Logger
}

// NewGradeService constructs a GradeService. A non-positive threshold falls
// back to DefaultTrendThreshold.
func NewGradeService(items gradeItemRepository, enrollments gradeEnrollmentRepository, cacheSvc *CacheService, threshold float64, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if threshold <= 0 {
		threshold = DefaultTrendThreshold
	}
	return &GradeService{items: items, enrollments: enrollments, cache: cacheSvc, threshold: threshold, logger: logger}
}

// Threshold returns the configured trend threshold.
func (s *GradeService) Threshold() float64 { return s.threshold }

// StudentGrades summarises every course the calling student is enrolled in.
// Callers that are not students get an empty list.
func (s *GradeService) StudentGrades(ctx context.Context, claims *models.SessionClaims) ([]models.CourseGrade, error) {
	if claims == nil || !claims.Is(models.RoleStudent) {
		return []models.CourseGrade{}, nil
	}
	enrollments, err := s.enrollments.ListByStudent(ctx, claims.User.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load enrollments")
	}
	grades := make([]models.CourseGrade, 0, len(enrollments))
	for _, e := range enrollments {
		grade, err := s.CourseGrade(ctx, claims.User.ID, e.CourseID)
		if err != nil {
			return nil, err
		}
		grade.CourseCode = e.CourseCode
		grade.CourseName = e.CourseName
		grades = append(grades, *grade)
	}
	return grades, nil
}

// CourseGrade summarises one course for one student, reading through the cache.
func (s *GradeService) CourseGrade(ctx context.Context, studentID, courseID string) (*models.CourseGrade, error) {
	grade, err := Remember(ctx, s.cache, cache.Key("grades", studentID, courseID), func(ctx context.Context) (models.CourseGrade, error) {
		items, err := s.items.ListGradedItems(ctx, studentID, courseID)
		if err != nil {
			return models.CourseGrade{}, appErrors.Internal(err, "failed to load grades")
		}
		grade, err := ComputeCourseGrade(items, s.threshold)
		grade.CourseID = courseID
		return grade, err
	})
	if err != nil {
		return nil, err
	}
	return &grade, nil
}

// Invalidate drops every cached summary of a student.
func (s *GradeService) Invalidate(ctx context.Context, studentID string) {
	if s == nil {
		return
	}
	if err := s.cache.Forget(ctx, cache.Key("grades", studentID, "*")); err != nil {
		s.logger.Warn("failed to invalidate grade cache", zap.String("student_id", studentID), zap.Error(err))
	}
}
