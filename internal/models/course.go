package models

import "time"

// Course is a subject offering taught by one teacher.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Credits     int       `db:"credits" json:"credits"`
	Schedule    string    `db:"schedule" json:"schedule"`
	TeacherID   *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	TeacherName *string   `db:"teacher_name" json:"teacher_name,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CourseFilter captures listing criteria for courses.
type CourseFilter struct {
	TeacherID string
	StudentID string
	Search    string
	Page      int
	PageSize  int
}

// CreateCourseRequest is the admin payload for adding a course.
type CreateCourseRequest struct {
	Code        string  `json:"code" validate:"required,notblank,min=2,max=20"`
	Name        string  `json:"name" validate:"required,notblank,min=2,max=160"`
	Description string  `json:"description" validate:"max=2000"`
	Credits     int     `json:"credits" validate:"gte=0,lte=30"`
	Schedule    string  `json:"schedule" validate:"max=120"`
	TeacherID   *string `json:"teacher_id" validate:"omitempty,uuid"`
}

// UpdateCourseRequest is the admin payload for editing a course.
type UpdateCourseRequest struct {
	Code        *string `json:"code" validate:"omitempty,min=2,max=20"`
	Name        *string `json:"name" validate:"omitempty,min=2,max=160"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Credits     *int    `json:"credits" validate:"omitempty,gte=0,lte=30"`
	Schedule    *string `json:"schedule" validate:"omitempty,max=120"`
	TeacherID   *string `json:"teacher_id" validate:"omitempty,uuid"`
}

// PendingCount reports ungraded work waiting in a course.
type PendingCount struct {
	CourseID string `db:"course_id" json:"course_id"`
	Pending  int    `db:"pending" json:"pending"`
}
