package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-virtual-api/internal/dto"
	"github.com/noah-isme/campus-virtual-api/internal/models"
	"github.com/noah-isme/campus-virtual-api/internal/service"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

type fakeAssignmentService struct {
	created models.CreateAssignmentRequest
	actor   service.Actor
	err     error
}

func (f *fakeAssignmentService) Create(_ context.Context, actor service.Actor, req models.CreateAssignmentRequest) (*models.Assignment, error) {
	f.created, f.actor = req, actor
	if f.err != nil {
		return nil, f.err
	}
	return &models.Assignment{ID: "a-1", CourseID: req.CourseID, Title: req.Title}, nil
}

func (f *fakeAssignmentService) Submit(_ context.Context, actor service.Actor, id string, req models.SubmitAssignmentRequest) (*models.Submission, error) {
	f.actor = actor
	if f.err != nil {
		return nil, f.err
	}
	return &models.Submission{ID: "s-1", AssignmentID: id, StudentID: actor.Claims.User.ID, FileURL: req.FileURL}, nil
}

type fakeExamService struct {
	exam      *dto.StudentExam
	err       error
	submitted models.SubmitExamRequest
}

func (f *fakeExamService) Create(_ context.Context, _ service.Actor, req models.CreateExamRequest) (*models.Exam, error) {
	return &models.Exam{ID: "e-1", CourseID: req.CourseID, Title: req.Title}, f.err
}

func (f *fakeExamService) GetForStudent(_ context.Context, _ *models.SessionClaims, _ string) (*dto.StudentExam, error) {
	return f.exam, f.err
}

func (f *fakeExamService) Submit(_ context.Context, actor service.Actor, id string, req models.SubmitExamRequest) (*models.ExamResult, error) {
	f.submitted = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.ExamResult{ID: "r-1", ExamID: id, StudentID: actor.Claims.User.ID}, nil
}

type fakeGradingService struct {
	graded map[string]models.GradeRequest
	err    error
}

func (f *fakeGradingService) CourseSubmissions(_ context.Context, _ *models.SessionClaims, courseID string) (*dto.CourseSubmissions, error) {
	return &dto.CourseSubmissions{CourseID: courseID}, f.err
}

func (f *fakeGradingService) SubmissionDetail(_ context.Context, _ *models.SessionClaims, id string) (*dto.SubmissionReview, error) {
	return &dto.SubmissionReview{}, f.err
}

func (f *fakeGradingService) ResultDetail(_ context.Context, _ *models.SessionClaims, id string) (*dto.ExamResultReview, error) {
	return &dto.ExamResultReview{}, f.err
}

func (f *fakeGradingService) GradeSubmission(_ context.Context, _ service.Actor, id string, req models.GradeRequest) (*models.SubmissionDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.graded["submission:"+id] = req
	return &models.SubmissionDetail{}, nil
}

func (f *fakeGradingService) GradeResult(_ context.Context, _ service.Actor, id string, req models.GradeRequest) (*models.ExamResultDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.graded["result:"+id] = req
	return &models.ExamResultDetail{}, nil
}

func withParam(c *gin.Context, key, value string) {
	c.Params = append(c.Params, gin.Param{Key: key, Value: value})
}

func TestAssignmentCreateTakesCourseFromPath(t *testing.T) {
	svc := &fakeAssignmentService{}
	h := NewAssignmentHandler(svc)

	payload := map[string]interface{}{"course_id": "ignored", "title": "Tarea 1", "total_points": 100, "due_date": "2024-12-01T00:00:00Z"}
	c, rec := newContext(http.MethodPost, "/courses/c-1/assignments", payload, claimsFor("t-1", models.RoleTeacher))
	withParam(c, "id", "c-1")
	h.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "c-1", svc.created.CourseID)
	assert.Equal(t, "t-1", svc.actor.Claims.User.ID)
}

func TestAssignmentSubmitPropagatesConflict(t *testing.T) {
	svc := &fakeAssignmentService{err: appErrors.Clone(appErrors.ErrConflict, "submission already graded")}
	h := NewAssignmentHandler(svc)

	c, rec := newContext(http.MethodPut, "/assignments/a-1/submission", map[string]string{"file_url": "https://files/x"}, claimsFor("s-1", models.RoleStudent))
	withParam(c, "id", "a-1")
	h.Submit(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "submission already graded", decode(t, rec).Error.Message)
}

func TestExamTakeHidesAnswerKey(t *testing.T) {
	exam := dto.NewStudentExam(&models.Exam{
		ID:    "e-1",
		Title: "Parcial",
		Questions: []models.Question{{
			ID:   "q-1",
			Type: models.QuestionMultipleChoice,
			Options: []models.Option{
				{ID: "o-1", Text: "4", IsCorrect: true},
				{ID: "o-2", Text: "5"},
			},
		}},
	})
	h := NewExamHandler(&fakeExamService{exam: exam})

	c, rec := newContext(http.MethodGet, "/exams/e-1", nil, claimsFor("s-1", models.RoleStudent))
	withParam(c, "id", "e-1")
	h.Take(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"o-1"`)
	assert.NotContains(t, rec.Body.String(), "correct")
}

func TestExamTakeWithoutExam(t *testing.T) {
	h := NewExamHandler(&fakeExamService{})

	c, rec := newContext(http.MethodGet, "/exams/e-1", nil, claimsFor("t-1", models.RoleTeacher))
	withParam(c, "id", "e-1")
	h.Take(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExamSubmit(t *testing.T) {
	svc := &fakeExamService{}
	h := NewExamHandler(svc)

	payload := map[string]interface{}{"answers": []map[string]string{{"question_id": "q-1", "option_id": "o-1"}}}
	c, rec := newContext(http.MethodPost, "/exams/e-1/submit", payload, claimsFor("s-1", models.RoleStudent))
	withParam(c, "id", "e-1")
	h.Submit(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, svc.submitted.Answers, 1)
	assert.Equal(t, "q-1", svc.submitted.Answers[0].QuestionID)

	var result models.ExamResult
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &result))
	assert.Equal(t, "e-1", result.ExamID)

	svc.err = appErrors.Clone(appErrors.ErrAlreadySubmitted, "exam already submitted")
	c, rec = newContext(http.MethodPost, "/exams/e-1/submit", payload, claimsFor("s-1", models.RoleStudent))
	withParam(c, "id", "e-1")
	h.Submit(c)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, appErrors.ErrAlreadySubmitted.Code, decode(t, rec).Error.Code)
}

func TestGradeSubmissionAndResult(t *testing.T) {
	svc := &fakeGradingService{graded: map[string]models.GradeRequest{}}
	h := NewGradingHandler(svc)
	teacher := claimsFor("t-1", models.RoleTeacher)

	c, rec := newContext(http.MethodPut, "/submissions/s-1/grade", map[string]interface{}{"grade": 95, "feedback": "Bien"}, teacher)
	withParam(c, "id", "s-1")
	h.GradeSubmission(c)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.graded["submission:s-1"].Grade)
	assert.Equal(t, 95.0, *svc.graded["submission:s-1"].Grade)
	assert.Equal(t, "Bien", svc.graded["submission:s-1"].Feedback)

	c, rec = newContext(http.MethodPut, "/exam-results/r-1/grade", map[string]interface{}{"grade": 40}, teacher)
	withParam(c, "id", "r-1")
	h.GradeResult(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, svc.graded, "result:r-1")
}

func TestGradeRejectsMalformedPayload(t *testing.T) {
	svc := &fakeGradingService{graded: map[string]models.GradeRequest{}}
	h := NewGradingHandler(svc)

	c, rec := newContext(http.MethodPut, "/submissions/s-1/grade", `{"grade":"ninety"}`, claimsFor("t-1", models.RoleTeacher))
	withParam(c, "id", "s-1")
	h.GradeSubmission(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.graded)
}

func TestGradeOutOfRangeCarriesField(t *testing.T) {
	rangeErr := appErrors.Clone(appErrors.ErrGradeOutOfRange, "grade must be between 0 and 100")
	rangeErr.Field = "grade"
	h := NewGradingHandler(&fakeGradingService{err: rangeErr})

	c, rec := newContext(http.MethodPut, "/submissions/s-1/grade", map[string]interface{}{"grade": 120}, claimsFor("t-1", models.RoleTeacher))
	withParam(c, "id", "s-1")
	h.GradeSubmission(c)

	assert.Equal(t, appErrors.ErrGradeOutOfRange.Status, rec.Code)
	assert.Equal(t, "grade", decode(t, rec).Error.Field)
}
