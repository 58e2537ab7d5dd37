package models

import "time"

// Material is a read-only course resource such as slides or a link.
type Material struct {
	ID        string    `db:"id" json:"id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	Title     string    `db:"title" json:"title"`
	Type      string    `db:"type" json:"type"`
	URL       string    `db:"url" json:"url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CreateMaterialRequest is the teacher payload for a new material.
type CreateMaterialRequest struct {
	CourseID string `json:"-" validate:"required,uuid"`
	Title    string `json:"title" validate:"required,notblank,min=2,max=200"`
	Type     string `json:"type" validate:"required,oneof=pdf video link document slides"`
	URL      string `json:"url" validate:"required,max=2048"`
}
