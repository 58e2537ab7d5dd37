package dto

import "github.com/noah-isme/campus-virtual-api/internal/models"

// CourseDetail is the full course page for a student or teacher.
type CourseDetail struct {
	Course      models.Course           `json:"course"`
	Materials   []models.Material       `json:"materials"`
	Assignments []models.AssignmentView `json:"assignments"`
	Exams       []models.ExamView       `json:"exams"`
	Progress    *int                    `json:"progress,omitempty"`
	Grade       *models.CourseGrade     `json:"grade,omitempty"`
}
