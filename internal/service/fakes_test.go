package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	"github.com/noah-isme/campus-virtual-api/internal/repository"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

const (
	courseID  = "7b0b4f5e-1c2d-4e5f-8a9b-0c1d2e3f4a5b"
	teacherID = "11111111-1111-4111-8111-111111111111"
	studentID = "22222222-2222-4222-8222-222222222222"
	adminID   = "33333333-3333-4333-8333-333333333333"
)

func claimsFor(id string, role models.UserRole) *models.SessionClaims {
	return &models.SessionClaims{User: models.SessionUser{ID: id, Email: id + "@campus.edu", Name: string(role), Role: role}}
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
func teacherActor() Actor {
	return Actor{Claims: claimsFor(teacherID, models.RoleTeacher), IP: "10.0.0.1"}
}
func studentActor() Actor {
	return Actor{Claims: claimsFor(studentID, models.RoleStudent), IP: "10.0.0.2"}
}
func adminActor() Actor { return Actor{Claims: claimsFor(adminID, models.RoleAdmin), IP: "10.0.0.3"} }
func ownedCourse() *models.Course {
	return &models.Course{ID: courseID, Code: "MAT101", Name: "Cálculo", TeacherID: strPtr(teacherID)}
}

type fakeCourses struct {
	items     map[string]*models.Course
	createErr error
	updateErr error
	lastList  models.CourseFilter
	pending   []models.PendingCount
}

func newFakeCourses(courses ...*models.Course) *fakeCourses {
	f := &fakeCourses{items: map[string]*models.Course{}}
	for _, c := range courses {
		f.items[c.ID] = c
	}
	return f
}

func (f *fakeCourses) FindByID(ctx context.Context, id string) (*models.Course, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *c
	return &clone, nil
}

func (f *fakeCourses) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	f.lastList = filter
	var out []models.Course
	for _, c := range f.items {
		if filter.TeacherID != "" && (c.TeacherID == nil || *c.TeacherID != filter.TeacherID) {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (f *fakeCourses) ListByTeacher(ctx context.Context, id string) ([]models.Course, error) {
	out, _, err := f.List(ctx, models.CourseFilter{TeacherID: id})
	return out, err
}

func (f *fakeCourses) PendingByTeacher(ctx context.Context, id string) ([]models.PendingCount, error) {
	return f.pending, nil
}

func (f *fakeCourses) Count(ctx context.Context) (int, error) { return len(f.items), nil }

func (f *fakeCourses) Create(ctx context.Context, c *models.Course) error {
	if f.createErr != nil {
		return f.createErr
	}
	c.ID = uuid.NewString()
	f.items[c.ID] = c
	return nil
}

func (f *fakeCourses) Update(ctx context.Context, c *models.Course) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.items[c.ID] = c
	return nil
}

func (f *fakeCourses) Delete(ctx context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.items, id)
	return nil
}

type fakeEnrollments struct {
	items     []models.EnrollmentDetail
	createErr error
}

func enrolled(student, course string, progress int) models.EnrollmentDetail {
	return models.EnrollmentDetail{
		Enrollment:   models.Enrollment{ID: uuid.NewString(), StudentID: student, CourseID: course, Progress: progress},
		StudentName:  "Ana",
		StudentEmail: "ana@campus.edu",
		CourseCode:   "MAT101",
		CourseName:   "Cálculo",
	}
}

func (f *fakeEnrollments) FindByPair(ctx context.Context, s, c string) (*models.Enrollment, error) {
	for _, e := range f.items {
		if e.StudentID == s && e.CourseID == c {
			clone := e.Enrollment
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEnrollments) FindByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	for _, e := range f.items {
		if e.ID == id {
			clone := e
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEnrollments) Create(ctx context.Context, e *models.Enrollment) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, err := f.FindByPair(ctx, e.StudentID, e.CourseID); err == nil {
		return &repository.ConstraintError{Kind: repository.ErrDuplicate, Constraint: "enrollments_student_id_course_id_key"}
	}
	e.ID = uuid.NewString()
	f.items = append(f.items, models.EnrollmentDetail{Enrollment: *e})
	return nil
}

func (f *fakeEnrollments) ListByCourse(ctx context.Context, c string) ([]models.EnrollmentDetail, error) {
	var out []models.EnrollmentDetail
	for _, e := range f.items {
		if e.CourseID == c {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEnrollments) ListByStudent(ctx context.Context, s string) ([]models.EnrollmentDetail, error) {
	var out []models.EnrollmentDetail
	for _, e := range f.items {
		if e.StudentID == s {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEnrollments) UpdateProgress(ctx context.Context, id string, progress int) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Progress = progress
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeEnrollments) Delete(ctx context.Context, id string) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeEnrollments) Count(ctx context.Context) (int, error) { return len(f.items), nil }

type fakeUsers struct {
	items     map[string]*models.User
	createErr error
	deleted   []string
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{items: map[string]*models.User{}}
	for _, u := range users {
		f.items[u.ID] = u
	}
	return f
}

func (f *fakeUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.items {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUsers) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var out []models.User
	for _, u := range f.items {
		if filter.Role == nil || u.Role == *filter.Role {
			out = append(out, *u)
		}
	}
	return out, len(out), nil
}

func (f *fakeUsers) CountByRole(ctx context.Context) ([]models.RoleCount, error) {
	counts := map[models.UserRole]int{}
	for _, u := range f.items {
		counts[u.Role]++
	}
	var out []models.RoleCount
	for role, n := range counts {
		out = append(out, models.RoleCount{Role: role, Total: n})
	}
	return out, nil
}

func (f *fakeUsers) Create(ctx context.Context, u *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	u.ID = uuid.NewString()
	f.items[u.ID] = u
	return nil
}

func (f *fakeUsers) Update(ctx context.Context, u *models.User) error {
	f.items[u.ID] = u
	return nil
}

func (f *fakeUsers) Delete(ctx context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.items, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeUsers) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if u, ok := f.items[id]; ok {
		u.LastLogin = &ts
	}
	return nil
}

func (f *fakeUsers) UpdatePassword(ctx context.Context, id, hash string, updatedAt time.Time) error {
	u, ok := f.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = &hash
	return nil
}

type fakeLogs struct {
	mu      sync.Mutex
	entries []models.SystemLog
}

func (f *fakeLogs) Create(ctx context.Context, log *models.SystemLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *log)
	return nil
}

func (f *fakeLogs) List(ctx context.Context, filter models.SystemLogFilter) ([]models.SystemLog, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.SystemLog(nil), f.entries...), len(f.entries), nil
}

func (f *fakeLogs) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

// fakeGradeItems serves graded items per (student, course).
type fakeGradeItems struct {
	items map[string][]models.GradedItem
	calls int
}

func (f *fakeGradeItems) ListGradedItems(ctx context.Context, s, c string) ([]models.GradedItem, error) {
	f.calls++
	return f.items[s+"/"+c], nil
}

// memoryCache is an in-process stand-in for the Redis cache repository.
type memoryCache struct {
	values map[string]models.CourseGrade
}

func newMemoryCache() *memoryCache { return &memoryCache{values: map[string]models.CourseGrade{}} }

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	v, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*(dest.(*models.CourseGrade)) = v
	return nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.values[key] = value.(models.CourseGrade)
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := pattern[:len(pattern)-1]
	for k := range m.values {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(m.values, k)
		}
	}
	return nil
}
