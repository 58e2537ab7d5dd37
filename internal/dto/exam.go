package dto

import (
	"time"

	"github.com/noah-isme/campus-virtual-api/internal/models"
)

// StudentExam is the exam payload served to a student taking it. The types
// below deliberately have no answer key fields.
type StudentExam struct {
	ID          string            `json:"id"`
	CourseID    string            `json:"courseId"`
	Title       string            `json:"title"`
	Date        time.Time         `json:"date"`
	Duration    int               `json:"duration"`
	TotalPoints float64           `json:"totalPoints"`
	Questions   []StudentQuestion `json:"questions"`
}

// StudentQuestion is a question without its correct answers.
type StudentQuestion struct {
	ID      string              `json:"id"`
	Text    string              `json:"text"`
	Type    models.QuestionType `json:"type"`
	Points  float64             `json:"points"`
	Options []StudentOption     `json:"options,omitempty"`
}

// StudentOption exposes only the option identifier and text.
type StudentOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// NewStudentExam strips the answer key from exam.
func NewStudentExam(exam *models.Exam) *StudentExam {
	if exam == nil {
		return nil
	}
	out := &StudentExam{
		ID:          exam.ID,
		CourseID:    exam.CourseID,
		Title:       exam.Title,
		Date:        exam.Date,
		Duration:    exam.Duration,
		TotalPoints: exam.TotalPoints,
		Questions:   make([]StudentQuestion, 0, len(exam.Questions)),
	}
	for _, q := range exam.Questions {
		sq := StudentQuestion{ID: q.ID, Text: q.Text, Type: q.Type, Points: q.Points}
		for _, o := range q.Options {
			sq.Options = append(sq.Options, StudentOption{ID: o.ID, Text: o.Text})
		}
		out.Questions = append(out.Questions, sq)
	}
	return out
}

// ExamResultReview is the teacher-facing detail of one exam result.
type ExamResultReview struct {
	Result    models.ExamResultDetail `json:"result"`
	Questions []ReviewedQuestion      `json:"questions"`
}

// ReviewedQuestion pairs a question with the student's answer. Correct is
// only set for answered multiple choice questions.
type ReviewedQuestion struct {
	ID       string              `json:"id"`
	Text     string              `json:"text"`
	Type     models.QuestionType `json:"type"`
	Points   float64             `json:"points"`
	Options  []ReviewedOption    `json:"options,omitempty"`
	Answer   *ReviewedAnswer     `json:"answer,omitempty"`
	Correct  *bool               `json:"correct,omitempty"`
	Answered bool                `json:"answered"`
}

// ReviewedOption includes the answer key.
type ReviewedOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// ReviewedAnswer is what the student sent for a question.
type ReviewedAnswer struct {
	Text     *string `json:"text,omitempty"`
	OptionID *string `json:"optionId,omitempty"`
}

// SubmissionReview is the teacher-facing detail of an assignment submission.
type SubmissionReview struct {
	Submission models.SubmissionDetail `json:"submission"`
}

// CourseSubmissions lists everything submitted in a course for grading.
type CourseSubmissions struct {
	CourseID    string                  `json:"courseId"`
	Assignments []AssignmentSubmissions `json:"assignments"`
	Exams       []ExamSubmissions       `json:"exams"`
}

// AssignmentSubmissions groups submissions under their assignment.
type AssignmentSubmissions struct {
	Assignment  models.Assignment         `json:"assignment"`
	Submissions []models.SubmissionDetail `json:"submissions"`
}

// ExamSubmissions groups results under their exam.
type ExamSubmissions struct {
	Exam    models.Exam               `json:"exam"`
	Results []models.ExamResultDetail `json:"results"`
}
