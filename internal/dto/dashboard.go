package dto

import "github.com/noah-isme/campus-virtual-api/internal/models"

// StudentDashboard lists the caller's courses with progress and grade.
type StudentDashboard struct {
	Courses []StudentCourseCard `json:"courses"`
}

// StudentCourseCard summarises one enrolled course.
type StudentCourseCard struct {
	CourseID   string            `json:"courseId"`
	CourseCode string            `json:"courseCode"`
	CourseName string            `json:"courseName"`
	Progress   int               `json:"progress"`
	Average    float64           `json:"average"`
	Trend      models.GradeTrend `json:"trend"`
}

// TeacherDashboard lists owned courses with pending grading work.
type TeacherDashboard struct {
	Courses      []TeacherCourseCard `json:"courses"`
	TotalPending int                 `json:"totalPending"`
}

// TeacherCourseCard summarises one taught course.
type TeacherCourseCard struct {
	CourseID   string `json:"courseId"`
	CourseCode string `json:"courseCode"`
	CourseName string `json:"courseName"`
	Pending    int    `json:"pending"`
}

// AdminDashboard aggregates platform totals.
type AdminDashboard struct {
	UsersByRole map[models.UserRole]int `json:"usersByRole"`
	Courses     int                     `json:"courses"`
	Enrollments int                     `json:"enrollments"`
	RecentLogs  []models.SystemLog      `json:"recentLogs"`
}
