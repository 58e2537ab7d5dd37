package models

import "time"

// SubmissionStatus enumerates the lifecycle of an assignment submission.
type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "pending"
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionGraded    SubmissionStatus = "graded"
)

// Assignment is coursework with a due date, point scale and weight.
type Assignment struct {
	ID          string    `db:"id" json:"id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	DueDate     time.Time `db:"due_date" json:"due_date"`
	TotalPoints float64   `db:"total_points" json:"total_points"`
	Weight      float64   `db:"weight" json:"weight"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Submission is a student's single answer to an assignment. Grade stays nil
// until a teacher grades it.
type Submission struct {
	ID           string           `db:"id" json:"id"`
	AssignmentID string           `db:"assignment_id" json:"assignment_id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	FileURL      string           `db:"file_url" json:"file_url"`
	Content      *string          `db:"content" json:"content,omitempty"`
	Status       SubmissionStatus `db:"status" json:"status"`
	Grade        *float64         `db:"grade" json:"grade"`
	Feedback     *string          `db:"feedback" json:"feedback,omitempty"`
	SubmittedAt  time.Time        `db:"submitted_at" json:"submitted_at"`
	GradedAt     *time.Time       `db:"graded_at" json:"graded_at,omitempty"`
}

// SubmissionDetail joins a submission with its assignment and student.
type SubmissionDetail struct {
	Submission
	AssignmentTitle string  `db:"assignment_title" json:"assignment_title"`
	TotalPoints     float64 `db:"total_points" json:"total_points"`
	CourseID        string  `db:"course_id" json:"course_id"`
	StudentName     string  `db:"student_name" json:"student_name"`
	StudentEmail    string  `db:"student_email" json:"student_email"`
}

// AssignmentView is an assignment as seen by one student.
type AssignmentView struct {
	Assignment
	SubmissionID *string           `db:"submission_id" json:"submission_id,omitempty"`
	Status       *SubmissionStatus `db:"submission_status" json:"status,omitempty"`
	Grade        *float64          `db:"submission_grade" json:"grade,omitempty"`
	Feedback     *string           `db:"submission_feedback" json:"feedback,omitempty"`
}

// CreateAssignmentRequest is the teacher payload for new coursework.
type CreateAssignmentRequest struct {
	CourseID    string    `json:"-" validate:"required,uuid"`
	Title       string    `json:"title" validate:"required,notblank,min=2,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	DueDate     time.Time `json:"due_date" validate:"required"`
	TotalPoints float64   `json:"total_points" validate:"gt=0"`
	Weight      *float64  `json:"weight" validate:"omitempty,gt=0"`
}

// SubmitAssignmentRequest carries a student's upload reference.
type SubmitAssignmentRequest struct {
	FileURL string  `json:"file_url" validate:"required,max=2048"`
	Content *string `json:"content" validate:"omitempty,max=10000"`
}
