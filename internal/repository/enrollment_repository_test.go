package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-virtual-api/internal/models"
)

func TestEnrollmentRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "course_id", "progress", "enrolled_at", "student_name", "student_email", "course_code", "course_name"}).
		AddRow("enr-1", "stu-1", "course-1", 40, time.Now(), "Ana", "ana@uni.edu", "MAT101", "Cálculo")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.student_id = $1 ORDER BY c.code ASC")).
		WithArgs("stu-1").
		WillReturnRows(rows)

	items, err := repo.ListByStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 40, items[0].Progress)
	assert.Equal(t, "MAT101", items[0].CourseCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO enrollments").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "enrollments_student_id_course_id_key"})

	err := repo.Create(context.Background(), &models.Enrollment{StudentID: "stu-1", CourseID: "course-1"})
	assert.True(t, errors.Is(err, ErrDuplicate))
}

func TestEnrollmentRepositoryCreateUnknownStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO enrollments").
		WillReturnError(&pq.Error{Code: "23503", Constraint: "enrollments_student_id_fkey"})

	err := repo.Create(context.Background(), &models.Enrollment{StudentID: "ghost", CourseID: "course-1"})
	assert.True(t, errors.Is(err, ErrReference))
}

func TestEnrollmentRepositoryUpdateProgress(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET progress = $2 WHERE id = $1")).
		WithArgs("enr-1", 75).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET progress = $2 WHERE id = $1")).
		WithArgs("missing", 10).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdateProgress(context.Background(), "enr-1", 75))
	assert.ErrorIs(t, repo.UpdateProgress(context.Background(), "missing", 10), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
