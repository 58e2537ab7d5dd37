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

const assignmentColumns = `id, course_id, title, description, due_date, total_points, weight, created_at`

const submissionDetailSelect = `SELECT s.id, s.assignment_id, s.student_id, s.file_url, s.content, s.status, s.grade, s.feedback, s.submitted_at, s.graded_at,
	a.title AS assignment_title, a.total_points, a.course_id, u.name AS student_name, u.email AS student_email
FROM submissions s
JOIN assignments a ON a.id = s.assignment_id
JOIN users u ON u.id = s.student_id`

// AssignmentRepository persists assignments and their submissions.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts an assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	assignment.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO assignments (` + assignmentColumns + `)
VALUES (:id, :course_id, :title, :description, :due_date, :total_points, :weight, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return classify("create assignment", err)
	}
	return nil
}

// FindByID returns an assignment by identifier.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, `SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return &assignment, nil
}

// ListByCourse returns a course's assignments ordered by due date.
func (r *AssignmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error) {
	var items []models.Assignment
	if err := r.db.SelectContext(ctx, &items, `SELECT `+assignmentColumns+` FROM assignments WHERE course_id = $1 ORDER BY due_date ASC`, courseID); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return items, nil
}

// ListForStudent returns a course's assignments with the student's submission state.
func (r *AssignmentRepository) ListForStudent(ctx context.Context, courseID, studentID string) ([]models.AssignmentView, error) {
	const query = `SELECT a.id, a.course_id, a.title, a.description, a.due_date, a.total_points, a.weight, a.created_at,
	s.id AS submission_id, s.status AS submission_status, s.grade AS submission_grade, s.feedback AS submission_feedback
FROM assignments a
LEFT JOIN submissions s ON s.assignment_id = a.id AND s.student_id = $2
WHERE a.course_id = $1
ORDER BY a.due_date ASC`
	var items []models.AssignmentView
	if err := r.db.SelectContext(ctx, &items, query, courseID, studentID); err != nil {
		return nil, fmt.Errorf("list assignments for student: %w", err)
	}
	return items, nil
}

// UpsertSubmission stores a student's submission. A resubmission updates the
// existing row in place and clears any previous grade and feedback.
func (r *AssignmentRepository) UpsertSubmission(ctx context.Context, sub *models.Submission) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now().UTC()
	}
	sub.Status = models.SubmissionSubmitted
	sub.Grade = nil
	sub.Feedback = nil
	sub.GradedAt = nil

	const query = `INSERT INTO submissions (id, assignment_id, student_id, file_url, content, status, submitted_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (assignment_id, student_id) DO UPDATE SET
	file_url = EXCLUDED.file_url,
	content = EXCLUDED.content,
	status = EXCLUDED.status,
	submitted_at = EXCLUDED.submitted_at,
	grade = NULL,
	feedback = NULL,
	graded_at = NULL
RETURNING id`
	row := r.db.QueryRowxContext(ctx, query, sub.ID, sub.AssignmentID, sub.StudentID, sub.FileURL, sub.Content, sub.Status, sub.SubmittedAt)
	if err := row.Scan(&sub.ID); err != nil {
		return classify("upsert submission", err)
	}
	return nil
}

// FindSubmission returns a submission with assignment and student info.
func (r *AssignmentRepository) FindSubmission(ctx context.Context, id string) (*models.SubmissionDetail, error) {
	var detail models.SubmissionDetail
	if err := r.db.GetContext(ctx, &detail, submissionDetailSelect+" WHERE s.id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return &detail, nil
}

// ListSubmissionsByCourse returns every submission in a course.
func (r *AssignmentRepository) ListSubmissionsByCourse(ctx context.Context, courseID string) ([]models.SubmissionDetail, error) {
	var items []models.SubmissionDetail
	if err := r.db.SelectContext(ctx, &items, submissionDetailSelect+" WHERE a.course_id = $1 ORDER BY a.due_date ASC, u.name ASC", courseID); err != nil {
		return nil, fmt.Errorf("list submissions by course: %w", err)
	}
	return items, nil
}

// GradeSubmission publishes a grade. Concurrent graders overwrite each other.
func (r *AssignmentRepository) GradeSubmission(ctx context.Context, id string, grade float64, feedback string, gradedAt time.Time) error {
	const query = `UPDATE submissions SET grade = $2, feedback = $3, status = 'graded', graded_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, grade, feedback, gradedAt)
	if err != nil {
		return fmt.Errorf("grade submission: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
