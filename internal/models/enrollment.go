package models

import "time"

// Enrollment registers a student in a course. Progress is a 0-100 percentage
// maintained by staff.
type Enrollment struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	Progress   int       `db:"progress" json:"progress"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// EnrollmentDetail enriches Enrollment with student and course info.
type EnrollmentDetail struct {
	Enrollment
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
	CourseCode   string `db:"course_code" json:"course_code"`
	CourseName   string `db:"course_name" json:"course_name"`
}

// EnrollRequest enrolls a student into a course.
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	CourseID  string `json:"course_id" validate:"required,uuid"`
}

// UpdateProgressRequest sets an enrollment's progress.
type UpdateProgressRequest struct {
	Progress *int `json:"progress" validate:"required,gte=0,lte=100"`
}
