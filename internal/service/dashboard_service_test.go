package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-virtual-api/internal/dto"
	"github.com/noah-isme/campus-virtual-api/internal/models"
)

func newDashboardFixture() (*DashboardService, *fakeCourses, *fakeLogs) {
	courses := newFakeCourses(ownedCourse())
	courses.pending = []models.PendingCount{{CourseID: courseID, Pending: 3}}
	enrollments := &fakeEnrollments{items: []models.EnrollmentDetail{enrolled(studentID, courseID, 45)}}
	users := newFakeUsers(
		&models.User{ID: studentID, Role: models.RoleStudent},
		&models.User{ID: teacherID, Role: models.RoleTeacher},
	)
	items := &fakeGradeItems{items: map[string][]models.GradedItem{
		studentID + "/" + courseID: {{ItemID: "a1", Title: "Tarea", TotalPoints: 20, Weight: 1, Grade: floatPtr(8)}},
	}}
	logs := &fakeLogs{}
	svc := NewDashboardService(courses, enrollments, users, NewGradeService(items, enrollments, nil, 0, nil), NewSystemLogService(logs, nil), nil)
	return svc, courses, logs
}

func TestDashboardServiceStudent(t *testing.T) {
	svc, _, _ := newDashboardFixture()

	out, err := svc.For(context.Background(), claimsFor(studentID, models.RoleStudent))
	require.NoError(t, err)
	dash, ok := out.(*dto.StudentDashboard)
	require.True(t, ok)
	require.Len(t, dash.Courses, 1)
	assert.Equal(t, 45, dash.Courses[0].Progress)
	assert.Equal(t, 40.0, dash.Courses[0].Average)
	assert.Equal(t, models.TrendDown, dash.Courses[0].Trend)
}

func TestDashboardServiceTeacher(t *testing.T) {
	svc, _, _ := newDashboardFixture()

	out, err := svc.For(context.Background(), claimsFor(teacherID, models.RoleTeacher))
	require.NoError(t, err)
	dash := out.(*dto.TeacherDashboard)
	require.Len(t, dash.Courses, 1)
	assert.Equal(t, 3, dash.Courses[0].Pending)
	assert.Equal(t, 3, dash.TotalPending)
}

func TestDashboardServiceAdmin(t *testing.T) {
	svc, _, logs := newDashboardFixture()
	logs.entries = []models.SystemLog{{Action: models.ActionLogin}}

	out, err := svc.For(context.Background(), claimsFor(adminID, models.RoleAdmin))
	require.NoError(t, err)
	dash := out.(*dto.AdminDashboard)
	assert.Equal(t, 0, dash.UsersByRole[models.RoleAdmin])
	assert.Equal(t, 1, dash.UsersByRole[models.RoleStudent])
	assert.Equal(t, 1, dash.Courses)
	assert.Equal(t, 1, dash.Enrollments)
	assert.Len(t, dash.RecentLogs, 1)
}

func TestDashboardServiceWithoutSession(t *testing.T) {
	svc, _, _ := newDashboardFixture()

	out, err := svc.For(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, out)
}
