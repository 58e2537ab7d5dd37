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

const enrollmentDetailSelect = `SELECT e.id, e.student_id, e.course_id, e.progress, e.enrolled_at,
	u.name AS student_name, u.email AS student_email, c.code AS course_code, c.name AS course_name
FROM enrollments e
JOIN users u ON u.id = e.student_id
JOIN courses c ON c.id = e.course_id`

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create enrolls a student. The (student, course) pair is unique; a repeat
// yields ErrDuplicate.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	const query = `INSERT INTO enrollments (id, student_id, course_id, progress, enrolled_at) VALUES (:id, :student_id, :course_id, :progress, :enrolled_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return classify("create enrollment", err)
	}
	return nil
}

// FindByID returns an enrollment with student and course info.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, enrollmentDetailSelect+" WHERE e.id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &detail, nil
}

// FindByPair returns the enrollment of student in course.
func (r *EnrollmentRepository) FindByPair(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, course_id, progress, enrolled_at FROM enrollments WHERE student_id = $1 AND course_id = $2`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment by pair: %w", err)
	}
	return &enrollment, nil
}

// ListByCourse returns the course roster ordered by student name.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error) {
	var items []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &items, enrollmentDetailSelect+" WHERE e.course_id = $1 ORDER BY u.name ASC", courseID); err != nil {
		return nil, fmt.Errorf("list enrollments by course: %w", err)
	}
	return items, nil
}

// ListByStudent returns a student's enrollments ordered by course code.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	var items []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &items, enrollmentDetailSelect+" WHERE e.student_id = $1 ORDER BY c.code ASC", studentID); err != nil {
		return nil, fmt.Errorf("list enrollments by student: %w", err)
	}
	return items, nil
}

// UpdateProgress sets the progress percentage of an enrollment.
func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, id string, progress int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE enrollments SET progress = $2 WHERE id = $1`, id, progress)
	if err != nil {
		return fmt.Errorf("update enrollment progress: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Count returns the number of enrollments.
func (r *EnrollmentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM enrollments`); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return total, nil
}
