package models

import "time"

// QuestionType enumerates exam question formats.
type QuestionType string

const (
	QuestionOpen           QuestionType = "OPEN"
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
)

// ResultStatus enumerates the lifecycle of an exam result.
type ResultStatus string

const (
	ResultSubmitted ResultStatus = "submitted"
	ResultGraded    ResultStatus = "graded"
)

// Exam is a timed assessment made of ordered questions.
type Exam struct {
	ID          string     `db:"id" json:"id"`
	CourseID    string     `db:"course_id" json:"course_id"`
	Title       string     `db:"title" json:"title"`
	Date        time.Time  `db:"date" json:"date"`
	Duration    int        `db:"duration" json:"duration"`
	TotalPoints float64    `db:"total_points" json:"total_points"`
	Weight      float64    `db:"weight" json:"weight"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	Questions   []Question `db:"-" json:"questions,omitempty"`
}

// Question belongs to an exam. Options are only set for multiple choice.
type Question struct {
	ID       string       `db:"id" json:"id"`
	ExamID   string       `db:"exam_id" json:"exam_id"`
	Text     string       `db:"text" json:"text"`
	Type     QuestionType `db:"type" json:"type"`
	Points   float64      `db:"points" json:"points"`
	Position int          `db:"position" json:"position"`
	Options  []Option     `db:"-" json:"options,omitempty"`
}

// Option is a multiple choice alternative including the answer key.
type Option struct {
	ID         string `db:"id" json:"id"`
	QuestionID string `db:"question_id" json:"question_id"`
	Text       string `db:"text" json:"text"`
	IsCorrect  bool   `db:"is_correct" json:"is_correct"`
	Position   int    `db:"position" json:"position"`
}

// ExamResult is one student's submission of an exam.
type ExamResult struct {
	ID          string       `db:"id" json:"id"`
	ExamID      string       `db:"exam_id" json:"exam_id"`
	StudentID   string       `db:"student_id" json:"student_id"`
	Status      ResultStatus `db:"status" json:"status"`
	Grade       *float64     `db:"grade" json:"grade"`
	Feedback    *string      `db:"feedback" json:"feedback,omitempty"`
	SubmittedAt time.Time    `db:"submitted_at" json:"submitted_at"`
	GradedAt    *time.Time   `db:"graded_at" json:"graded_at,omitempty"`
}

// ExamResultDetail joins a result with its exam and student.
type ExamResultDetail struct {
	ExamResult
	ExamTitle    string  `db:"exam_title" json:"exam_title"`
	TotalPoints  float64 `db:"total_points" json:"total_points"`
	CourseID     string  `db:"course_id" json:"course_id"`
	StudentName  string  `db:"student_name" json:"student_name"`
	StudentEmail string  `db:"student_email" json:"student_email"`
}

// StudentAnswer references one question of a result. Text is set for open
// questions, OptionID for multiple choice.
type StudentAnswer struct {
	ID           string  `db:"id" json:"id"`
	ExamResultID string  `db:"exam_result_id" json:"exam_result_id"`
	QuestionID   string  `db:"question_id" json:"question_id"`
	Text         *string `db:"text" json:"text,omitempty"`
	OptionID     *string `db:"option_id" json:"option_id,omitempty"`
}

// ExamView is an exam as seen by one student.
type ExamView struct {
	Exam
	ResultID     *string       `db:"result_id" json:"result_id,omitempty"`
	ResultStatus *ResultStatus `db:"result_status" json:"status,omitempty"`
	Grade        *float64      `db:"result_grade" json:"grade,omitempty"`
}

// CreateExamRequest is the teacher payload for a new exam with its questions.
type CreateExamRequest struct {
	CourseID    string                  `json:"-" validate:"required,uuid"`
	Title       string                  `json:"title" validate:"required,notblank,min=2,max=200"`
	Date        time.Time               `json:"date" validate:"required"`
	Duration    int                     `json:"duration" validate:"gt=0,lte=600"`
	TotalPoints float64                 `json:"total_points" validate:"gt=0"`
	Weight      *float64                `json:"weight" validate:"omitempty,gt=0"`
	Questions   []CreateQuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

// CreateQuestionRequest describes one question of a new exam.
type CreateQuestionRequest struct {
	Text    string                `json:"text" validate:"required,notblank,max=5000"`
	Type    QuestionType          `json:"type" validate:"required,oneof=OPEN MULTIPLE_CHOICE"`
	Points  float64               `json:"points" validate:"gte=0"`
	Options []CreateOptionRequest `json:"options" validate:"dive"`
}

// CreateOptionRequest describes one multiple choice alternative.
type CreateOptionRequest struct {
	Text      string `json:"text" validate:"required,notblank,max=1000"`
	IsCorrect bool   `json:"is_correct"`
}

// AnswerInput is one answered question in an exam submission.
type AnswerInput struct {
	QuestionID string  `json:"question_id" validate:"required,uuid"`
	Text       *string `json:"text" validate:"omitempty,max=10000"`
	OptionID   *string `json:"option_id" validate:"omitempty,uuid"`
}

// SubmitExamRequest carries all answers of an exam attempt.
type SubmitExamRequest struct {
	Answers []AnswerInput `json:"answers" validate:"dive"`
}
