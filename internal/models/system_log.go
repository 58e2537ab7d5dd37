package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// SystemLog actions recorded for administrative activity.
const (
	ActionLogin            = "LOGIN"
	ActionLogout           = "LOGOUT"
	ActionPasswordChange   = "PASSWORD_CHANGE"
	ActionUserCreate       = "USER_CREATE"
	ActionUserUpdate       = "USER_UPDATE"
	ActionUserDelete       = "USER_DELETE"
	ActionCourseCreate     = "COURSE_CREATE"
	ActionCourseUpdate     = "COURSE_UPDATE"
	ActionCourseDelete     = "COURSE_DELETE"
	ActionEnroll           = "ENROLL"
	ActionUnenroll         = "UNENROLL"
	ActionProgressUpdate   = "PROGRESS_UPDATE"
	ActionAssignmentCreate = "ASSIGNMENT_CREATE"
	ActionExamCreate       = "EXAM_CREATE"
	ActionMaterialCreate   = "MATERIAL_CREATE"
	ActionGradePublish     = "GRADE_PUBLISH"
)

// SystemLog represents an activity trail record.
type SystemLog struct {
	ID         string         `db:"id" json:"id"`
	UserID     *string        `db:"user_id" json:"user_id,omitempty"`
	Action     string         `db:"action" json:"action"`
	Resource   string         `db:"resource" json:"resource"`
	ResourceID *string        `db:"resource_id" json:"resource_id,omitempty"`
	Details    types.JSONText `db:"details" json:"details,omitempty"`
	IPAddress  string         `db:"ip_address" json:"ip_address"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// SystemLogFilter pages through recent activity.
type SystemLogFilter struct {
	Action   string
	UserID   string
	Page     int
	PageSize int
}
