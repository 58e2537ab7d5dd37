package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-virtual-api/internal/models"
)

const examColumns = `id, course_id, title, date, duration, total_points, weight, created_at`

const resultDetailSelect = `SELECT er.id, er.exam_id, er.student_id, er.status, er.grade, er.feedback, er.submitted_at, er.graded_at,
	e.title AS exam_title, e.total_points, e.course_id, u.name AS student_name, u.email AS student_email
FROM exam_results er
JOIN exams e ON e.id = er.exam_id
JOIN users u ON u.id = er.student_id`

// ExamRepository persists exams, their questions and student results.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs the repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// Create inserts an exam with its questions and options in one transaction.
// Question and option positions follow slice order.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) (err error) {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	exam.CreatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin exam transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const examQuery = `INSERT INTO exams (` + examColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err = tx.ExecContext(ctx, examQuery, exam.ID, exam.CourseID, exam.Title, exam.Date, exam.Duration, exam.TotalPoints, exam.Weight, exam.CreatedAt); err != nil {
		return classify("insert exam", err)
	}

	const questionQuery = `INSERT INTO questions (id, exam_id, text, type, points, position) VALUES ($1, $2, $3, $4, $5, $6)`
	const optionQuery = `INSERT INTO options (id, question_id, text, is_correct, position) VALUES ($1, $2, $3, $4, $5)`
	for i := range exam.Questions {
		q := &exam.Questions[i]
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		q.ExamID = exam.ID
		q.Position = i
		if _, err = tx.ExecContext(ctx, questionQuery, q.ID, q.ExamID, q.Text, q.Type, q.Points, q.Position); err != nil {
			return fmt.Errorf("insert question %d: %w", i, err)
		}
		for j := range q.Options {
			o := &q.Options[j]
			if o.ID == "" {
				o.ID = uuid.NewString()
			}
			o.QuestionID = q.ID
			o.Position = j
			if _, err = tx.ExecContext(ctx, optionQuery, o.ID, o.QuestionID, o.Text, o.IsCorrect, o.Position); err != nil {
				return fmt.Errorf("insert option %d of question %d: %w", j, i, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit exam transaction: %w", err)
	}
	return nil
}

// FindByID returns an exam without its questions.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, `SELECT `+examColumns+` FROM exams WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find exam: %w", err)
	}
	return &exam, nil
}

// ListQuestions returns the ordered questions of an exam with their options,
// answer key included.
func (r *ExamRepository) ListQuestions(ctx context.Context, examID string) ([]models.Question, error) {
	var questions []models.Question
	const questionQuery = `SELECT id, exam_id, text, type, points, position FROM questions WHERE exam_id = $1 ORDER BY position ASC`
	if err := r.db.SelectContext(ctx, &questions, questionQuery, examID); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return questions, nil
	}

	var options []models.Option
	const optionQuery = `SELECT o.id, o.question_id, o.text, o.is_correct, o.position
FROM options o
JOIN questions q ON q.id = o.question_id
WHERE q.exam_id = $1
ORDER BY q.position ASC, o.position ASC`
	if err := r.db.SelectContext(ctx, &options, optionQuery, examID); err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}

	index := make(map[string]int, len(questions))
	for i, q := range questions {
		index[q.ID] = i
	}
	for _, o := range options {
		if i, ok := index[o.QuestionID]; ok {
			questions[i].Options = append(questions[i].Options, o)
		}
	}
	return questions, nil
}

// ListByCourse returns a course's exams ordered by date.
func (r *ExamRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Exam, error) {
	var items []models.Exam
	if err := r.db.SelectContext(ctx, &items, `SELECT `+examColumns+` FROM exams WHERE course_id = $1 ORDER BY date ASC`, courseID); err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return items, nil
}

// ListForStudent returns a course's exams with the student's result state.
func (r *ExamRepository) ListForStudent(ctx context.Context, courseID, studentID string) ([]models.ExamView, error) {
	const query = `SELECT e.id, e.course_id, e.title, e.date, e.duration, e.total_points, e.weight, e.created_at,
	er.id AS result_id, er.status AS result_status, er.grade AS result_grade
FROM exams e
LEFT JOIN exam_results er ON er.exam_id = e.id AND er.student_id = $2
WHERE e.course_id = $1
ORDER BY e.date ASC`
	var items []models.ExamView
	if err := r.db.SelectContext(ctx, &items, query, courseID, studentID); err != nil {
		return nil, fmt.Errorf("list exams for student: %w", err)
	}
	return items, nil
}

// SubmitResult records a result and its answers atomically. When the student
// already has a result for the exam nothing is written and ErrDuplicate is
// returned.
func (r *ExamRepository) SubmitResult(ctx context.Context, result *models.ExamResult, answers []models.StudentAnswer) (err error) {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.SubmittedAt.IsZero() {
		result.SubmittedAt = time.Now().UTC()
	}
	result.Status = models.ResultSubmitted
	result.Grade = nil

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin exam submission: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const resultQuery = `INSERT INTO exam_results (id, exam_id, student_id, status, submitted_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (exam_id, student_id) DO NOTHING
RETURNING id`
	var insertedID string
	if err = tx.QueryRowxContext(ctx, resultQuery, result.ID, result.ExamID, result.StudentID, result.Status, result.SubmittedAt).Scan(&insertedID); err != nil {
		if err == sql.ErrNoRows {
			err = ErrDuplicate
			return err
		}
		return fmt.Errorf("insert exam result: %w", err)
	}

	const answerQuery = `INSERT INTO student_answers (id, exam_result_id, question_id, text, option_id) VALUES ($1, $2, $3, $4, $5)`
	for i := range answers {
		a := &answers[i]
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		a.ExamResultID = result.ID
		if _, err = tx.ExecContext(ctx, answerQuery, a.ID, a.ExamResultID, a.QuestionID, a.Text, a.OptionID); err != nil {
			return fmt.Errorf("insert answer %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit exam submission: %w", err)
	}
	return nil
}

// FindResult returns a result with exam and student info.
func (r *ExamRepository) FindResult(ctx context.Context, id string) (*models.ExamResultDetail, error) {
	var detail models.ExamResultDetail
	if err := r.db.GetContext(ctx, &detail, resultDetailSelect+" WHERE er.id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find exam result: %w", err)
	}
	return &detail, nil
}

// HasResult reports whether the student already submitted the exam.
func (r *ExamRepository) HasResult(ctx context.Context, examID, studentID string) (bool, error) {
	var exists bool
	const query = `SELECT EXISTS (SELECT 1 FROM exam_results WHERE exam_id = $1 AND student_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, examID, studentID); err != nil {
		return false, fmt.Errorf("check exam result: %w", err)
	}
	return exists, nil
}

// ListResultsByCourse returns every exam result in a course.
func (r *ExamRepository) ListResultsByCourse(ctx context.Context, courseID string) ([]models.ExamResultDetail, error) {
	var items []models.ExamResultDetail
	if err := r.db.SelectContext(ctx, &items, resultDetailSelect+" WHERE e.course_id = $1 ORDER BY e.date ASC, u.name ASC", courseID); err != nil {
		return nil, fmt.Errorf("list exam results by course: %w", err)
	}
	return items, nil
}

// ListAnswers returns the answers recorded for a result.
func (r *ExamRepository) ListAnswers(ctx context.Context, resultID string) ([]models.StudentAnswer, error) {
	var items []models.StudentAnswer
	const query = `SELECT id, exam_result_id, question_id, text, option_id FROM student_answers WHERE exam_result_id = $1`
	if err := r.db.SelectContext(ctx, &items, query, resultID); err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return items, nil
}

// GradeResult publishes a grade for an exam result. Last write wins.
func (r *ExamRepository) GradeResult(ctx context.Context, id string, grade float64, feedback string, gradedAt time.Time) error {
	const query = `UPDATE exam_results SET grade = $2, feedback = $3, status = 'graded', graded_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, grade, feedback, gradedAt)
	if err != nil {
		return fmt.Errorf("grade exam result: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
