package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-virtual-api/internal/dto"
	"github.com/noah-isme/campus-virtual-api/internal/models"
	"github.com/noah-isme/campus-virtual-api/internal/repository"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

type examRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	ListQuestions(ctx context.Context, examID string) ([]models.Question, error)
	SubmitResult(ctx context.Context, result *models.ExamResult, answers []models.StudentAnswer) error
	HasResult(ctx context.Context, examID, studentID string) (bool, error)
}

// ExamService handles exam authoring, delivery to students and submission.
type ExamService struct {
	repo      examRepository
	access    *CourseAccess
	activity  *SystemLogService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamService constructs an ExamService.
func NewExamService(repo examRepository, access *CourseAccess, activity *SystemLogService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &ExamService{repo: repo, access: access, activity: activity, metrics: metrics, validator: validate, logger: logger}
}

// Create stores an exam with its questions for a course the caller teaches.
func (s *ExamService) Create(ctx context.Context, actor Actor, req models.CreateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid exam payload")
	}
	if _, err := s.access.Teach(ctx, actor.Claims, req.CourseID); err != nil {
		return nil, err
	}

	exam := &models.Exam{
		CourseID:    req.CourseID,
		Title:       strings.TrimSpace(req.Title),
		Date:        req.Date.UTC(),
		Duration:    req.Duration,
		TotalPoints: req.TotalPoints,
		Weight:      1.0,
		Questions:   make([]models.Question, 0, len(req.Questions)),
	}
	if req.Weight != nil {
		exam.Weight = *req.Weight
	}

	for i, q := range req.Questions {
		field := fmt.Sprintf("questions[%d]", i)
		question := models.Question{Text: strings.TrimSpace(q.Text), Type: q.Type, Points: q.Points}
		switch q.Type {
		case models.QuestionOpen:
			if len(q.Options) > 0 {
				return nil, appErrors.FieldError(field, "open questions cannot have options")
			}
		case models.QuestionMultipleChoice:
			if len(q.Options) < 2 {
				return nil, appErrors.FieldError(field, "multiple choice questions need at least two options")
			}
			correct := 0
			for _, o := range q.Options {
				if o.IsCorrect {
					correct++
				}
				question.Options = append(question.Options, models.Option{Text: strings.TrimSpace(o.Text), IsCorrect: o.IsCorrect})
			}
			if correct == 0 {
				return nil, appErrors.FieldError(field, "multiple choice questions need a correct option")
			}
		}
		exam.Questions = append(exam.Questions, question)
	}

	if err := s.repo.Create(ctx, exam); err != nil {
		if errors.Is(err, repository.ErrReference) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Internal(err, "failed to create exam")
	}

	s.activity.Record(ctx, actor, models.ActionExamCreate, "exam", exam.ID, map[string]interface{}{
		"course_id": exam.CourseID,
		"questions": len(exam.Questions),
	})
	return exam, nil
}

// GetForStudent returns the exam for taking without its answer key. Callers
// without a session or not acting as a student get a nil exam and no error.
func (s *ExamService) GetForStudent(ctx context.Context, claims *models.SessionClaims, examID string) (*dto.StudentExam, error) {
	if claims == nil || !claims.Is(models.RoleStudent) {
		return nil, nil
	}
	exam, err := s.load(ctx, examID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.Attend(ctx, claims, exam.CourseID); err != nil {
		return nil, err
	}
	taken, err := s.repo.HasResult(ctx, exam.ID, claims.User.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check exam result")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrAlreadySubmitted, "exam already submitted")
	}
	return dto.NewStudentExam(exam), nil
}

// Submit records the caller's answers as a single exam attempt. Unanswered
// questions are simply absent. A second attempt is rejected.
func (s *ExamService) Submit(ctx context.Context, actor Actor, examID string, req models.SubmitExamRequest) (*models.ExamResult, error) {
	if actor.Claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !actor.Claims.Is(models.RoleStudent) {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid exam submission")
	}
	exam, err := s.load(ctx, examID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.Attend(ctx, actor.Claims, exam.CourseID); err != nil {
		return nil, err
	}

	answers, err := buildAnswers(exam.Questions, req.Answers)
	if err != nil {
		return nil, err
	}

	result := &models.ExamResult{ExamID: exam.ID, StudentID: actor.Claims.User.ID}
	if err := s.repo.SubmitResult(ctx, result, answers); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrAlreadySubmitted, "exam already submitted")
		}
		s.logger.Error("exam submission failed", zap.String("exam_id", exam.ID), zap.String("student_id", result.StudentID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to submit exam")
	}
	s.metrics.IncExamSubmissions()
	return result, nil
}

func (s *ExamService) load(ctx context.Context, examID string) (*models.Exam, error) {
	exam, err := s.repo.FindByID(ctx, examID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Internal(err, "failed to load exam")
	}
	questions, err := s.repo.ListQuestions(ctx, exam.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load questions")
	}
	exam.Questions = questions
	return exam, nil
}

// buildAnswers checks every answer against the exam's questions.
func buildAnswers(questions []models.Question, inputs []models.AnswerInput) ([]models.StudentAnswer, error) {
	byID := make(map[string]*models.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	seen := make(map[string]struct{}, len(inputs))
	answers := make([]models.StudentAnswer, 0, len(inputs))
	for i, in := range inputs {
		field := fmt.Sprintf("answers[%d]", i)
		q, ok := byID[in.QuestionID]
		if !ok {
			return nil, appErrors.FieldError(field, "question does not belong to this exam")
		}
		if _, dup := seen[q.ID]; dup {
			return nil, appErrors.FieldError(field, "question answered more than once")
		}
		seen[q.ID] = struct{}{}

		answer := models.StudentAnswer{QuestionID: q.ID}
		switch q.Type {
		case models.QuestionOpen:
			if in.Text == nil || strings.TrimSpace(*in.Text) == "" {
				return nil, appErrors.FieldError(field, "open questions need a text answer")
			}
			text := strings.TrimSpace(*in.Text)
			answer.Text = &text
		case models.QuestionMultipleChoice:
			if in.OptionID == nil || !hasOption(q, *in.OptionID) {
				return nil, appErrors.FieldError(field, "choose one of the question's options")
			}
			option := *in.OptionID
			answer.OptionID = &option
		}
		answers = append(answers, answer)
	}
	return answers, nil
}

func hasOption(q *models.Question, optionID string) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}
