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

const courseSelect = `SELECT c.id, c.code, c.name, c.description, c.credits, c.schedule, c.teacher_id, u.name AS teacher_name, c.created_at, c.updated_at
FROM courses c
LEFT JOIN users u ON u.id = c.teacher_id`

// CourseRepository provides database access for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses matching the filter with total count.
func (r *CourseRepository) List(ctx context.Context, opts models.CourseFilter) ([]models.Course, int, error) {
	var f filter
	if opts.TeacherID != "" {
		f.add("c.teacher_id = ?", opts.TeacherID)
	}
	if opts.StudentID != "" {
		f.add("c.id IN (SELECT course_id FROM enrollments WHERE student_id = ?)", opts.StudentID)
	}
	f.contains(opts.Search, "c.code", "c.name")

	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, courseSelect+f.where()+" ORDER BY c.code ASC"+page(opts.Page, opts.PageSize), f.args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM courses c"+f.where(), f.args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// ListByTeacher returns every course owned by the teacher.
func (r *CourseRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, courseSelect+" WHERE c.teacher_id = $1 ORDER BY c.code ASC", teacherID); err != nil {
		return nil, fmt.Errorf("list courses by teacher: %w", err)
	}
	return courses, nil
}

// FindByID returns a course by identifier.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	if err := r.db.GetContext(ctx, &course, courseSelect+" WHERE c.id = $1 LIMIT 1", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course by id: %w", err)
	}
	return &course, nil
}

// Count returns the number of courses.
func (r *CourseRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM courses`); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return total, nil
}

// Create inserts a course. A taken code yields ErrDuplicate and an unknown
// teacher ErrReference.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	const query = `INSERT INTO courses (id, code, name, description, credits, schedule, teacher_id, created_at, updated_at)
VALUES (:id, :code, :name, :description, :credits, :schedule, :teacher_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return classify("create course", err)
	}
	return nil
}

// Update persists the mutable fields of a course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET code = :code, name = :name, description = :description, credits = :credits,
schedule = :schedule, teacher_id = :teacher_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return classify("update course", err)
	}
	return nil
}

// Delete removes a course and, by cascade, its coursework.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// PendingByTeacher counts submitted but ungraded work per owned course.
func (r *CourseRepository) PendingByTeacher(ctx context.Context, teacherID string) ([]models.PendingCount, error) {
	const query = `SELECT c.id AS course_id,
	(SELECT COUNT(*) FROM submissions s JOIN assignments a ON a.id = s.assignment_id WHERE a.course_id = c.id AND s.status = 'submitted') +
	(SELECT COUNT(*) FROM exam_results er JOIN exams e ON e.id = er.exam_id WHERE e.course_id = c.id AND er.status = 'submitted') AS pending
FROM courses c
WHERE c.teacher_id = $1`
	var counts []models.PendingCount
	if err := r.db.SelectContext(ctx, &counts, query, teacherID); err != nil {
		return nil, fmt.Errorf("count pending work: %w", err)
	}
	return counts, nil
}
