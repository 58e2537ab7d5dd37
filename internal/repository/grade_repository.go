package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-virtual-api/internal/models"
)

// GradeRepository reads the inputs of grade summaries.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// ListGradedItems returns every assignment and exam of a course paired with
// the student's grade. Ungraded or unsubmitted items carry a nil grade.
func (r *GradeRepository) ListGradedItems(ctx context.Context, studentID, courseID string) ([]models.GradedItem, error) {
	const query = `SELECT a.id AS item_id, 'assignment' AS kind, a.title, a.total_points, a.weight, a.due_date AS date, s.grade
FROM assignments a
LEFT JOIN submissions s ON s.assignment_id = a.id AND s.student_id = $1 AND s.status = 'graded'
WHERE a.course_id = $2
UNION ALL
SELECT e.id AS item_id, 'exam' AS kind, e.title, e.total_points, e.weight, e.date, er.grade
FROM exams e
LEFT JOIN exam_results er ON er.exam_id = e.id AND er.student_id = $1 AND er.status = 'graded'
WHERE e.course_id = $2
ORDER BY kind ASC, date ASC`
	var items []models.GradedItem
	if err := r.db.SelectContext(ctx, &items, query, studentID, courseID); err != nil {
		return nil, fmt.Errorf("list graded items: %w", err)
	}
	return items, nil
}
