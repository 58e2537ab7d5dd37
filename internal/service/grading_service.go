package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-virtual-api/internal/dto"
	"github.com/noah-isme/campus-virtual-api/internal/models"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

type gradingAssignmentRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error)
	ListSubmissionsByCourse(ctx context.Context, courseID string) ([]models.SubmissionDetail, error)
	FindSubmission(ctx context.Context, id string) (*models.SubmissionDetail, error)
	GradeSubmission(ctx context.Context, id string, grade float64, feedback string, gradedAt time.Time) error
}

type gradingExamRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Exam, error)
	ListResultsByCourse(ctx context.Context, courseID string) ([]models.ExamResultDetail, error)
	FindResult(ctx context.Context, id string) (*models.ExamResultDetail, error)
	ListQuestions(ctx context.Context, examID string) ([]models.Question, error)
	ListAnswers(ctx context.Context, resultID string) ([]models.StudentAnswer, error)
	GradeResult(ctx context.Context, id string, grade float64, feedback string, gradedAt time.Time) error
}

// GradingService lets teachers review and grade course work.
type GradingService struct {
	assignments gradingAssignmentRepository
	exams       gradingExamRepository
	access      *CourseAccess
	grades      *GradeService
	notifier    *NotificationService
	activity    *SystemLogService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewGradingService constructs a GradingService.
func NewGradingService(
	assignments gradingAssignmentRepository,
	exams gradingExamRepository,
	access *CourseAccess,
	grades *GradeService,
	notifier *NotificationService,
	activity *SystemLogService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *GradingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &GradingService{
		assignments: assignments,
		exams:       exams,
		access:      access,
		grades:      grades,
		notifier:    notifier,
		activity:    activity,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// CourseSubmissions lists every submission and exam result of a course,
// grouped by assignment and exam.
func (s *GradingService) CourseSubmissions(ctx context.Context, claims *models.SessionClaims, courseID string) (*dto.CourseSubmissions, error) {
	if _, err := s.access.Teach(ctx, claims, courseID); err != nil {
		return nil, err
	}

	assignments, err := s.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list assignments")
	}
	submissions, err := s.assignments.ListSubmissionsByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list submissions")
	}
	exams, err := s.exams.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list exams")
	}
	results, err := s.exams.ListResultsByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list exam results")
	}

	bySubmission := make(map[string][]models.SubmissionDetail)
	for _, sub := range submissions {
		bySubmission[sub.AssignmentID] = append(bySubmission[sub.AssignmentID], sub)
	}
	byResult := make(map[string][]models.ExamResultDetail)
	for _, res := range results {
		byResult[res.ExamID] = append(byResult[res.ExamID], res)
	}

	out := &dto.CourseSubmissions{
		CourseID:    courseID,
		Assignments: make([]dto.AssignmentSubmissions, 0, len(assignments)),
		Exams:       make([]dto.ExamSubmissions, 0, len(exams)),
	}
	for _, a := range assignments {
		subs := bySubmission[a.ID]
		if subs == nil {
			subs = []models.SubmissionDetail{}
		}
		out.Assignments = append(out.Assignments, dto.AssignmentSubmissions{Assignment: a, Submissions: subs})
	}
	for _, e := range exams {
		res := byResult[e.ID]
		if res == nil {
			res = []models.ExamResultDetail{}
		}
		out.Exams = append(out.Exams, dto.ExamSubmissions{Exam: e, Results: res})
	}
	return out, nil
}

// SubmissionDetail returns one submission for review.
func (s *GradingService) SubmissionDetail(ctx context.Context, claims *models.SessionClaims, submissionID string) (*dto.SubmissionReview, error) {
	sub, err := s.submission(ctx, claims, submissionID)
	if err != nil {
		return nil, err
	}
	return &dto.SubmissionReview{Submission: *sub}, nil
}

// ResultDetail pairs every question of the exam with the student's answer.
// Multiple choice answers are marked correct or not.
func (s *GradingService) ResultDetail(ctx context.Context, claims *models.SessionClaims, resultID string) (*dto.ExamResultReview, error) {
	result, err := s.result(ctx, claims, resultID)
	if err != nil {
		return nil, err
	}
	questions, err := s.exams.ListQuestions(ctx, result.ExamID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load questions")
	}
	answers, err := s.exams.ListAnswers(ctx, result.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load answers")
	}
	return &dto.ExamResultReview{Result: *result, Questions: reviewQuestions(questions, answers)}, nil
}

func reviewQuestions(questions []models.Question, answers []models.StudentAnswer) []dto.ReviewedQuestion {
	byQuestion := make(map[string]models.StudentAnswer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	out := make([]dto.ReviewedQuestion, 0, len(questions))
	for _, q := range questions {
		rq := dto.ReviewedQuestion{ID: q.ID, Text: q.Text, Type: q.Type, Points: q.Points}
		for _, o := range q.Options {
			rq.Options = append(rq.Options, dto.ReviewedOption{ID: o.ID, Text: o.Text, IsCorrect: o.IsCorrect})
		}
		if a, ok := byQuestion[q.ID]; ok {
			rq.Answered = true
			rq.Answer = &dto.ReviewedAnswer{Text: a.Text, OptionID: a.OptionID}
			if q.Type == models.QuestionMultipleChoice && a.OptionID != nil {
				correct := false
				for _, o := range q.Options {
					if o.ID == *a.OptionID {
						correct = o.IsCorrect
						break
					}
				}
				rq.Correct = &correct
			}
		}
		out = append(out, rq)
	}
	return out
}

// GradeSubmission publishes a grade for an assignment submission.
func (s *GradingService) GradeSubmission(ctx context.Context, actor Actor, submissionID string, req models.GradeRequest) (*models.SubmissionDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid grade payload")
	}
	sub, err := s.submission(ctx, actor.Claims, submissionID)
	if err != nil {
		return nil, err
	}
	grade := *req.Grade
	if err := checkGradeRange(grade, sub.TotalPoints); err != nil {
		return nil, err
	}

	feedback := strings.TrimSpace(req.Feedback)
	gradedAt := s.now().UTC()
	if err := s.assignments.GradeSubmission(ctx, sub.ID, grade, feedback, gradedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Internal(err, "failed to grade submission")
	}
	sub.Grade = &grade
	sub.Feedback = &feedback
	sub.Status = models.SubmissionGraded
	sub.GradedAt = &gradedAt

	s.published(ctx, actor, models.KindAssignment, sub.ID, sub.StudentID, sub.StudentEmail, sub.StudentName, sub.AssignmentTitle, grade, sub.TotalPoints)
	return sub, nil
}

// GradeResult publishes a grade for an exam result.
func (s *GradingService) GradeResult(ctx context.Context, actor Actor, resultID string, req models.GradeRequest) (*models.ExamResultDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid grade payload")
	}
	result, err := s.result(ctx, actor.Claims, resultID)
	if err != nil {
		return nil, err
	}
	grade := *req.Grade
	if err := checkGradeRange(grade, result.TotalPoints); err != nil {
		return nil, err
	}

	feedback := strings.TrimSpace(req.Feedback)
	gradedAt := s.now().UTC()
	if err := s.exams.GradeResult(ctx, result.ID, grade, feedback, gradedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam result not found")
		}
		return nil, appErrors.Internal(err, "failed to grade exam result")
	}
	result.Grade = &grade
	result.Feedback = &feedback
	result.Status = models.ResultGraded
	result.GradedAt = &gradedAt

	s.published(ctx, actor, models.KindExam, result.ID, result.StudentID, result.StudentEmail, result.StudentName, result.ExamTitle, grade, result.TotalPoints)
	return result, nil
}

func (s *GradingService) published(ctx context.Context, actor Actor, kind models.GradedKind, id, studentID, email, name, title string, grade, total float64) {
	s.grades.Invalidate(ctx, studentID)
	s.metrics.IncGradesPublished(string(kind))
	s.activity.Record(ctx, actor, models.ActionGradePublish, string(kind), id, map[string]interface{}{
		"student_id": studentID,
		"grade":      grade,
	})
	s.notifier.GradePublished(email, name, title, grade, total)
}

func (s *GradingService) submission(ctx context.Context, claims *models.SessionClaims, id string) (*models.SubmissionDetail, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	sub, err := s.assignments.FindSubmission(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Internal(err, "failed to load submission")
	}
	if _, err := s.access.Teach(ctx, claims, sub.CourseID); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *GradingService) result(ctx context.Context, claims *models.SessionClaims, id string) (*models.ExamResultDetail, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	result, err := s.exams.FindResult(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam result not found")
		}
		return nil, appErrors.Internal(err, "failed to load exam result")
	}
	if _, err := s.access.Teach(ctx, claims, result.CourseID); err != nil {
		return nil, err
	}
	return result, nil
}

func checkGradeRange(grade, total float64) error {
	if grade < 0 || grade > total {
		e := appErrors.Clone(appErrors.ErrGradeOutOfRange, fmt.Sprintf("grade must be between 0 and %g", total))
		e.Field = "grade"
		return e
	}
	return nil
}
