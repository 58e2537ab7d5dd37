package models

import "time"

// GradeTrend is a coarse pass/fail indicator derived from the average.
type GradeTrend string

const (
	TrendUp   GradeTrend = "up"
	TrendDown GradeTrend = "down"
)

// GradedKind distinguishes the two graded item sources.
type GradedKind string

const (
	KindAssignment GradedKind = "assignment"
	KindExam       GradedKind = "exam"
)

// GradedItem is an assignment or exam paired with one student's grade, if any.
type GradedItem struct {
	ItemID      string     `db:"item_id"`
	Kind        GradedKind `db:"kind"`
	Title       string     `db:"title"`
	TotalPoints float64    `db:"total_points"`
	Weight      float64    `db:"weight"`
	Date        time.Time  `db:"date"`
	Grade       *float64   `db:"grade"`
}

// GradeDetail is one graded row of a course summary. Weight is expressed in
// percentage points.
type GradeDetail struct {
	Type   string     `json:"type"`
	Kind   GradedKind `json:"kind"`
	Score  float64    `json:"score"`
	Max    float64    `json:"max"`
	Weight float64    `json:"weight"`
	Date   time.Time  `json:"date"`
}

// CourseGrade is the weighted summary for one student in one course.
type CourseGrade struct {
	CourseID   string        `json:"course_id"`
	CourseCode string        `json:"course_code"`
	CourseName string        `json:"course_name"`
	Average    float64       `json:"average"`
	Trend      GradeTrend    `json:"trend"`
	Details    []GradeDetail `json:"details"`
}

// GradeRequest publishes a grade for a submission or exam result.
type GradeRequest struct {
	Grade    *float64 `json:"grade" validate:"required"`
	Feedback string   `json:"feedback" validate:"max=5000"`
}
