package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

func newGradebookFixture() *GradebookService {
	other := enrolled("33333333-aaaa-4aaa-8aaa-333333333333", courseID, 10)
	other.StudentName = "Luis"
	other.StudentEmail = "luis@campus.edu"
	enrollments := &fakeEnrollments{items: []models.EnrollmentDetail{enrolled(studentID, courseID, 40), other}}

	date := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	items := &fakeGradeItems{items: map[string][]models.GradedItem{
		studentID + "/" + courseID: {
			{ItemID: "a1", Kind: models.KindAssignment, Title: "Tarea", TotalPoints: 100, Weight: 0.3, Date: date, Grade: floatPtr(80)},
			{ItemID: "e1", Kind: models.KindExam, Title: "Tarea", TotalPoints: 50, Weight: 0.7, Date: date, Grade: floatPtr(40)},
		},
		other.StudentID + "/" + courseID: {
			{ItemID: "a1", Kind: models.KindAssignment, Title: "Tarea", TotalPoints: 100, Weight: 0.3, Date: date, Grade: floatPtr(30)},
			{ItemID: "e1", Kind: models.KindExam, Title: "Tarea", TotalPoints: 50, Weight: 0.7, Date: date},
		},
	}}
	access := NewCourseAccess(newFakeCourses(ownedCourse()), enrollments)
	svc := NewGradebookService(access, enrollments, items, 0, nil)
	svc.now = func() time.Time { return time.Date(2024, 12, 15, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestGradebookServiceTable(t *testing.T) {
	svc := newGradebookFixture()

	table, err := svc.Table(context.Background(), courseID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Estudiante", "Email", "Tarea", "Tarea (2)", "Promedio", "Tendencia"}, table.Columns)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, []string{"Ana", "ana@campus.edu", "80", "40", "80.0", "up"}, table.Rows[0])
	assert.Equal(t, []string{"Luis", "luis@campus.edu", "30", "", "30.0", "down"}, table.Rows[1])
}

func TestGradebookServiceEmptyRoster(t *testing.T) {
	enrollments := &fakeEnrollments{}
	access := NewCourseAccess(newFakeCourses(ownedCourse()), enrollments)
	svc := NewGradebookService(access, enrollments, &fakeGradeItems{}, 0, nil)

	file, err := svc.Export(context.Background(), claimsFor(teacherID, models.RoleTeacher), courseID, "csv")
	require.NoError(t, err)
	assert.Equal(t, "Estudiante,Email,Promedio,Tendencia\n", string(file.Data))
}

func TestGradebookServiceExport(t *testing.T) {
	svc := newGradebookFixture()
	teacher := claimsFor(teacherID, models.RoleTeacher)

	csvFile, err := svc.Export(context.Background(), teacher, courseID, "")
	require.NoError(t, err)
	assert.Equal(t, "mat101-gradebook-20241215.csv", csvFile.Name)
	assert.Contains(t, string(csvFile.Data), "Estudiante,Email,Tarea,Tarea (2),Promedio,Tendencia")

	pdfFile, err := svc.Export(context.Background(), teacher, courseID, "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdfFile.ContentType)
	assert.True(t, bytes.HasPrefix(pdfFile.Data, []byte("%PDF")))
}

func TestGradebookServiceExportRules(t *testing.T) {
	svc := newGradebookFixture()

	_, err := svc.Export(context.Background(), claimsFor(teacherID, models.RoleTeacher), courseID, "xlsx")
	assertFieldError(t, err, "format")

	_, err = svc.Export(context.Background(), claimsFor(studentID, models.RoleStudent), courseID, "csv")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}
