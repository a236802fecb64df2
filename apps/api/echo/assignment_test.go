package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educert/backend/core/assignment"
	"github.com/educert/backend/core/user"
)

func Test_assignmentApi_create(t *testing.T) {
	instructor := createTestUser(t, "Task Master", "taskmaster@test.cd", user.RoleInstructor)
	other := createTestUser(t, "Outside Teach", "outside@test.cd", user.RoleInstructor)
	crs := createTestCourse(t, instructor.ID, "Gradeable Go")
	lec := createTestLecture(t, crs.ID)

	body := marchallObj(t, assignment.NewAssignment{Title: "Homework 1", MaxPoints: 100, Weight: 0.2, LectureID: lec.ID})

	t.Run("non-owner forbidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/assignments", getToken(t, other), body)
		app.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("owner creates", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/assignments", getToken(t, instructor), body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var asg assignment.Assignment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &asg))
		assert.Equal(t, "Homework 1", asg.Title)
		assert.Equal(t, lec.ID, asg.LectureID)
		assert.Equal(t, 100, asg.MaxPoints)
	})

	t.Run("unknown lecture", func(t *testing.T) {
		bad := marchallObj(t, assignment.NewAssignment{Title: "Orphan", LectureID: 999999})
		req, rec := newAuthRequest(http.MethodPost, "/v1/assignments", getToken(t, instructor), bad)
		app.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "lecture not found"}),
		}
		checkCodeAndData(t, tt, rec)
	})
}

func Test_assignmentApi_submissions(t *testing.T) {
	instructor := createTestUser(t, "Grader", "grader@test.cd", user.RoleInstructor)
	student := createTestUser(t, "Diligent One", "diligent@test.cd", user.RoleStudent)
	crs := createTestCourse(t, instructor.ID, "Submittable Go")
	lec := createTestLecture(t, crs.ID)
	asg := createTestAssignment(t, lec.ID, 50)

	studentToken := getToken(t, student)
	instructorToken := getToken(t, instructor)

	var submissionID int

	t.Run("submit", func(t *testing.T) {
		body := marchallObj(t, assignment.NewSubmission{SubmissionContent: "my answer v1"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/assignments/"+itoa(asg.ID)+"/submit", studentToken, body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var sub assignment.Submission
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
		assert.Equal(t, student.ID, sub.StudentID)
		assert.Equal(t, "my answer v1", sub.SubmissionContent)
		assert.False(t, sub.Grade.Valid)
		submissionID = sub.ID
	})

	t.Run("instructor cannot submit", func(t *testing.T) {
		body := marchallObj(t, assignment.NewSubmission{SubmissionContent: "cheating"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/assignments/"+itoa(asg.ID)+"/submit", instructorToken, body)
		app.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("grade", func(t *testing.T) {
		body := marchallObj(t, assignment.GradeSubmission{Grade: 42, FeedbackText: "well done"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/submissions/"+itoa(submissionID)+"/grade", instructorToken, body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var sub assignment.Submission
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
		require.True(t, sub.Grade.Valid)
		assert.Equal(t, 42, sub.Grade.Int)
		assert.Equal(t, "well done", sub.FeedbackText)
	})

	t.Run("grade above max points", func(t *testing.T) {
		body := marchallObj(t, assignment.GradeSubmission{Grade: 51})
		req, rec := newAuthRequest(http.MethodPut, "/v1/submissions/"+itoa(submissionID)+"/grade", instructorToken, body)
		app.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Message: "grade exceeds the assignment's maximum points"}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("resubmission resets grading", func(t *testing.T) {
		body := marchallObj(t, assignment.NewSubmission{SubmissionContent: "my answer v2"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/assignments/"+itoa(asg.ID)+"/submit", studentToken, body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var sub assignment.Submission
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
		assert.Equal(t, submissionID, sub.ID)
		assert.Equal(t, "my answer v2", sub.SubmissionContent)
		assert.False(t, sub.Grade.Valid)
		assert.Empty(t, sub.FeedbackText)
	})

	t.Run("instructor lists submissions", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/assignments/"+itoa(asg.ID)+"/submissions", instructorToken)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var subs []assignment.Submission
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &subs))
		require.Len(t, subs, 1)
		assert.Equal(t, student.ID, subs[0].StudentID)
	})

	t.Run("student lists own", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/submissions/mine", studentToken)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var subs []assignment.Submission
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &subs))
		require.Len(t, subs, 1)
		assert.Equal(t, asg.ID, subs[0].AssignmentID)
	})

	t.Run("content required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/assignments/"+itoa(asg.ID)+"/submit", studentToken, []byte("{}"))
		app.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"submissionContent": "this field is required"}),
		}
		checkCodeAndData(t, tt, rec)
	})
}
