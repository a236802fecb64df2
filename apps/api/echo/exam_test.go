package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educert/backend/core/exam"
	"github.com/educert/backend/core/user"
)

func Test_examApi_create(t *testing.T) {
	instructor := createTestUser(t, "Examiner", "examiner@test.cd", user.RoleInstructor)
	other := createTestUser(t, "Not Examiner", "notexaminer@test.cd", user.RoleInstructor)
	crs := createTestCourse(t, instructor.ID, "Examinable Go")

	body := marchallObj(t, exam.NewExam{Title: "Final Exam", TotalPoints: 100, PassingScore: 60, CourseID: crs.ID})

	t.Run("non-owner forbidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/exams", getToken(t, other), body)
		app.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("owner creates", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/exams", getToken(t, instructor), body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var exm exam.Exam
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exm))
		assert.Equal(t, 100, exm.TotalPoints)
		assert.Equal(t, 60, exm.PassingScore)
		assert.Equal(t, 0, exm.NumQuestions)
	})

	t.Run("passing score above total", func(t *testing.T) {
		bad := marchallObj(t, exam.NewExam{Title: "Broken", TotalPoints: 50, PassingScore: 60, CourseID: crs.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/exams", getToken(t, instructor), bad)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})
}

func Test_examApi_update(t *testing.T) {
	instructor := createTestUser(t, "Exam Tuner", "examtuner@test.cd", user.RoleInstructor)
	other := createTestUser(t, "Other Tuner", "othertuner@test.cd", user.RoleInstructor)
	crs := createTestCourse(t, instructor.ID, "Tunable Go")
	exm := createTestExam(t, crs.ID, 100, 60)

	t.Run("non-owner forbidden", func(t *testing.T) {
		body := marchallObj(t, exam.UpdateExam{Title: "Hijacked"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/exams/"+itoa(exm.ID), getToken(t, other), body)
		app.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("owner updates", func(t *testing.T) {
		body := marchallObj(t, exam.UpdateExam{Title: "Final Exam v2", PassingScore: 75})
		req, rec := newAuthRequest(http.MethodPut, "/v1/exams/"+itoa(exm.ID), getToken(t, instructor), body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got exam.Exam
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Final Exam v2", got.Title)
		assert.Equal(t, 75, got.PassingScore)
		// untouched fields survive
		assert.Equal(t, 100, got.TotalPoints)
	})

	t.Run("passing score above total", func(t *testing.T) {
		body := marchallObj(t, exam.UpdateExam{PassingScore: 150})
		req, rec := newAuthRequest(http.MethodPut, "/v1/exams/"+itoa(exm.ID), getToken(t, instructor), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("unknown exam", func(t *testing.T) {
		body := marchallObj(t, exam.UpdateExam{Title: "Ghost"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/exams/999999", getToken(t, instructor), body)
		app.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "exam not found"}),
		}
		checkCodeAndData(t, tt, rec)
	})
}

func Test_examApi_questions(t *testing.T) {
	instructor := createTestUser(t, "Quiz Writer", "quizwriter@test.cd", user.RoleInstructor)
	crs := createTestCourse(t, instructor.ID, "Questionable Go")
	exm := createTestExam(t, crs.ID, 100, 60)
	token := getToken(t, instructor)

	var questionID int

	t.Run("create question", func(t *testing.T) {
		body := marchallObj(t, exam.NewQuestion{Text: "What is a goroutine?", Type: "short", Points: 50, CorrectAnswer: "a lightweight thread"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/exams/questions", token, body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var qst exam.Question
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &qst))
		assert.Equal(t, 50, qst.Points)
		questionID = qst.ID
	})

	t.Run("attach", func(t *testing.T) {
		body := marchallObj(t, exam.AddExamQuestion{QuestionID: questionID, OrderNumber: 1})
		req, rec := newAuthRequest(http.MethodPost, "/v1/exams/"+itoa(exm.ID)+"/questions", token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		got, err := examSvc.GetByID(context.Background(), exm.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.NumQuestions)
	})

	t.Run("attach twice", func(t *testing.T) {
		body := marchallObj(t, exam.AddExamQuestion{QuestionID: questionID, OrderNumber: 2})
		req, rec := newAuthRequest(http.MethodPost, "/v1/exams/"+itoa(exm.ID)+"/questions", token, body)
		app.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Message: "question already attached to this exam"}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("list omits answers", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/exams/"+itoa(exm.ID)+"/questions", token)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "lightweight thread")
		var qsts []exam.Question
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &qsts))
		require.Len(t, qsts, 1)
		assert.Equal(t, questionID, qsts[0].ID)
	})

	t.Run("detach", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/exams/"+itoa(exm.ID)+"/questions/"+itoa(questionID), token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		got, err := examSvc.GetByID(context.Background(), exm.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.NumQuestions)
	})
}

func Test_examApi_attempts(t *testing.T) {
	instructor := createTestUser(t, "Proctor", "proctor@test.cd", user.RoleInstructor)
	student := createTestUser(t, "Test Taker", "taker@test.cd", user.RoleStudent)
	intruder := createTestUser(t, "Test Peeker", "peeker@test.cd", user.RoleStudent)
	crs := createTestCourse(t, instructor.ID, "Attemptable Go")
	exm := createTestExam(t, crs.ID, 100, 60)

	ctx := context.Background()
	q1, err := examSvc.CreateQuestion(ctx, exam.NewQuestion{Text: "Q1", Points: 60, CorrectAnswer: "yes"})
	require.NoError(t, err)
	q2, err := examSvc.CreateQuestion(ctx, exam.NewQuestion{Text: "Q2", Points: 40, CorrectAnswer: "no"})
	require.NoError(t, err)
	require.NoError(t, examSvc.AttachQuestion(ctx, exm.ID, exam.AddExamQuestion{QuestionID: q1.ID, OrderNumber: 1}))
	require.NoError(t, examSvc.AttachQuestion(ctx, exm.ID, exam.AddExamQuestion{QuestionID: q2.ID, OrderNumber: 2}))

	token := getToken(t, student)
	var attemptID int

	t.Run("start", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/exams/"+itoa(exm.ID)+"/attempt", token)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var att exam.Attempt
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &att))
		assert.Equal(t, exam.StatusInProgress, att.Status)
		assert.False(t, att.Score.Valid)
		attemptID = att.ID
	})

	t.Run("one open attempt at a time", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/exams/"+itoa(exm.ID)+"/attempt", token)
		app.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Message: "an attempt is already in progress for this exam"}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("others cannot submit it", func(t *testing.T) {
		body := marchallObj(t, exam.SubmitAttempt{Answers: []exam.Answer{{QuestionID: q1.ID, Answer: "yes"}}})
		req, rec := newAuthRequest(http.MethodPut, "/v1/exams/attempt/"+itoa(attemptID)+"/submit", getToken(t, intruder), body)
		app.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("submit scores and closes", func(t *testing.T) {
		body := marchallObj(t, exam.SubmitAttempt{
			Answers: []exam.Answer{
				{QuestionID: q1.ID, Answer: " YES "}, // matching ignores case and whitespace
				{QuestionID: q2.ID, Answer: "maybe"},
			},
			TimeSpentMinutes: 42,
		})
		req, rec := newAuthRequest(http.MethodPut, "/v1/exams/attempt/"+itoa(attemptID)+"/submit", token, body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res exam.AttemptResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, exam.StatusCompleted, res.Status)
		require.True(t, res.Score.Valid)
		assert.Equal(t, 60, res.Score.Int)
		assert.Equal(t, 42, res.TimeSpentMinutes)
		assert.True(t, res.Passed)
	})

	t.Run("resubmit", func(t *testing.T) {
		body := marchallObj(t, exam.SubmitAttempt{Answers: []exam.Answer{{QuestionID: q1.ID, Answer: "yes"}}})
		req, rec := newAuthRequest(http.MethodPut, "/v1/exams/attempt/"+itoa(attemptID)+"/submit", token, body)
		app.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Message: "attempt already completed"}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("retake after completion", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/exams/"+itoa(exm.ID)+"/attempt", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		req, rec = newAuthRequest(http.MethodGet, "/v1/exams/"+itoa(exm.ID)+"/attempts", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var atts []exam.Attempt
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &atts))
		assert.Len(t, atts, 2)
	})

	t.Run("instructor sees every student's attempts", func(t *testing.T) {
		_, err := examSvc.StartAttempt(ctx, intruder.ID, exm.ID)
		require.NoError(t, err)

		req, rec := newAuthRequest(http.MethodGet, "/v1/exams/"+itoa(exm.ID)+"/attempts", getToken(t, instructor))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var atts []exam.Attempt
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &atts))
		require.Len(t, atts, 3)
		students := make(map[int]bool, len(atts))
		for _, att := range atts {
			students[att.StudentID] = true
		}
		assert.True(t, students[student.ID])
		assert.True(t, students[intruder.ID])
	})

	t.Run("non-owner instructor forbidden", func(t *testing.T) {
		nosy := createTestUser(t, "Nosy Proctor", "nosyproctor@test.cd", user.RoleInstructor)
		req, rec := newAuthRequest(http.MethodGet, "/v1/exams/"+itoa(exm.ID)+"/attempts", getToken(t, nosy))
		app.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		checkCodeAndData(t, tt, rec)
	})
}
