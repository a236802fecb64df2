package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educert/backend/core/enrollment"
	"github.com/educert/backend/core/user"
)

func Test_enrollmentApi_enroll(t *testing.T) {
	instructor := createTestUser(t, "Course Smith", "smith@test.cd", user.RoleInstructor)
	student := createTestUser(t, "Eager Student", "eager@test.cd", user.RoleStudent)
	crs := createTestCourse(t, instructor.ID, "Go for Gophers")
	token := getToken(t, student)

	t.Run("enroll", func(t *testing.T) {
		body := marchallObj(t, enrollment.NewEnrollment{CourseID: crs.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/enrollments/enroll", token, body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var enr enrollment.Enrollment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enr))
		assert.Equal(t, student.ID, enr.StudentID)
		assert.Equal(t, crs.ID, enr.CourseID)
		assert.Equal(t, enrollment.StatusActive, enr.Status)
		assert.Equal(t, 0, enr.Progress)
		assert.False(t, enr.CompletionDate.Valid)
		assert.False(t, enr.EnrollmentDate.IsZero())
	})

	t.Run("unknown course", func(t *testing.T) {
		body := marchallObj(t, enrollment.NewEnrollment{CourseID: 987654})
		req, rec := newAuthRequest(http.MethodPost, "/v1/enrollments/enroll", token, body)
		app.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "course not found"}),
		}
		checkCodeAndData(t, tt, rec)

		// no phantom row was created
		enrs, err := enrollSvc.QueryByStudent(context.Background(), student.ID)
		require.NoError(t, err)
		require.Len(t, enrs, 1)
	})

	t.Run("duplicate enroll rejected", func(t *testing.T) {
		body := marchallObj(t, enrollment.NewEnrollment{CourseID: crs.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/enrollments/enroll", token, body)
		app.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Message: "already enrolled in this course"}),
		}
		checkCodeAndData(t, tt, rec)

		// the original row is untouched and remains the only one
		enrs, err := enrollSvc.QueryByStudent(context.Background(), student.ID)
		require.NoError(t, err)
		require.Len(t, enrs, 1)
	})

	t.Run("instructor cannot enroll", func(t *testing.T) {
		body := marchallObj(t, enrollment.NewEnrollment{CourseID: crs.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/enrollments/enroll", getToken(t, instructor), body)
		app.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		checkCodeAndData(t, tt, rec)
	})
}

func Test_enrollmentApi_updateProgress(t *testing.T) {
	instructor := createTestUser(t, "Pace Setter", "pace@test.cd", user.RoleInstructor)
	student := createTestUser(t, "Slow Burner", "slow@test.cd", user.RoleStudent)
	crs := createTestCourse(t, instructor.ID, "Progressive Go")
	token := getToken(t, student)

	enr, err := enrollSvc.Enroll(context.Background(), student.ID, crs.ID)
	require.NoError(t, err)

	path := "/v1/enrollments/" + itoa(crs.ID) + "/progress"

	progress := func(t *testing.T, p int) (*json.Decoder, int, string) {
		body := marchallObj(t, enrollment.UpdateProgress{Progress: p})
		req, rec := newAuthRequest(http.MethodPut, path, token, body)
		app.ServeHTTP(rec, req)
		return json.NewDecoder(rec.Body), rec.Code, rec.Body.String()
	}

	t.Run("out of range rejected", func(t *testing.T) {
		for _, p := range []int{-1, 101} {
			body := marchallObj(t, enrollment.UpdateProgress{Progress: p})
			req, rec := newAuthRequest(http.MethodPut, path, token, body)
			app.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		}

		// the stored progress did not move
		got, err := enrollSvc.Get(context.Background(), student.ID, crs.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Progress)
	})

	t.Run("partial progress", func(t *testing.T) {
		dec, code, raw := progress(t, 40)
		require.Equal(t, http.StatusOK, code, raw)
		var got enrollment.Enrollment
		require.NoError(t, dec.Decode(&got))
		assert.Equal(t, 40, got.Progress)
		assert.Equal(t, enrollment.StatusActive, got.Status)
		assert.False(t, got.CompletionDate.Valid)
	})

	t.Run("completion stamps the date", func(t *testing.T) {
		dec, code, raw := progress(t, 100)
		require.Equal(t, http.StatusOK, code, raw)
		var got enrollment.Enrollment
		require.NoError(t, dec.Decode(&got))
		assert.Equal(t, enrollment.StatusCompleted, got.Status)
		require.True(t, got.CompletionDate.Valid)
		assert.False(t, got.CompletionDate.Time.Before(enr.EnrollmentDate))
	})

	t.Run("regression clears the date", func(t *testing.T) {
		dec, code, raw := progress(t, 80)
		require.Equal(t, http.StatusOK, code, raw)
		var got enrollment.Enrollment
		require.NoError(t, dec.Decode(&got))
		assert.Equal(t, enrollment.StatusActive, got.Status)
		assert.False(t, got.CompletionDate.Valid)
	})

	t.Run("unknown enrollment", func(t *testing.T) {
		body := marchallObj(t, enrollment.UpdateProgress{Progress: 10})
		req, rec := newAuthRequest(http.MethodPut, "/v1/enrollments/999999/progress", token, body)
		app.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "enrollment not found"}),
		}
		checkCodeAndData(t, tt, rec)
	})
}

func Test_enrollmentApi_detail(t *testing.T) {
	instructor := createTestUser(t, "Detail Devil", "detaildevil@test.cd", user.RoleInstructor)
	student := createTestUser(t, "Curious Cat", "curiouscat@test.cd", user.RoleStudent)
	crs := createTestCourse(t, instructor.ID, "Detailed Go")
	lec := createTestLecture(t, crs.ID)
	token := getToken(t, student)

	_, err := enrollSvc.Enroll(context.Background(), student.ID, crs.ID)
	require.NoError(t, err)

	t.Run("detail embeds the course tree", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/enrollments/"+itoa(crs.ID), token)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got enrollment.EnrollmentDetail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, student.ID, got.StudentID)
		assert.Equal(t, crs.ID, got.CourseID)
		assert.Equal(t, crs.ID, got.Course.ID)
		require.Len(t, got.Course.Modules, 1)
		require.Len(t, got.Course.Modules[0].Lectures, 1)
		assert.Equal(t, lec.ID, got.Course.Modules[0].Lectures[0].ID)
	})

	t.Run("not enrolled", func(t *testing.T) {
		other := createTestCourse(t, instructor.ID, "Unvisited Go")
		req, rec := newAuthRequest(http.MethodGet, "/v1/enrollments/"+itoa(other.ID), token)
		app.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "enrollment not found"}),
		}
		checkCodeAndData(t, tt, rec)
	})
}

func Test_enrollmentApi_unenroll(t *testing.T) {
	instructor := createTestUser(t, "Leaver Coach", "leaver@test.cd", user.RoleInstructor)
	student := createTestUser(t, "Quitter Kid", "quitter@test.cd", user.RoleStudent)
	crs := createTestCourse(t, instructor.ID, "Quittable Go")
	token := getToken(t, student)

	_, err := enrollSvc.Enroll(context.Background(), student.ID, crs.ID)
	require.NoError(t, err)

	t.Run("unenroll", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/enrollments/"+itoa(crs.ID), token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	})

	t.Run("repeat is not found", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/enrollments/"+itoa(crs.ID), token)
		app.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "enrollment not found"}),
		}
		checkCodeAndData(t, tt, rec)
	})
}
