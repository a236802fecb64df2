package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educert/backend/core/course"
	"github.com/educert/backend/core/user"
)

func Test_courseApi_create(t *testing.T) {
	instructor := createTestUser(t, "Ada Teach", "ada@test.cd", user.RoleInstructor)
	student := createTestUser(t, "No Perms", "noperms@test.cd", user.RoleStudent)

	t.Run("student forbidden", func(t *testing.T) {
		body := marchallObj(t, course.NewCourse{Title: "Sneaky Course"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", getToken(t, student), body)
		app.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("instructor creates", func(t *testing.T) {
		body := marchallObj(t, course.NewCourse{Title: "Intro to Go", Difficulty: "Beginner", Language: "en"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", getToken(t, instructor), body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var crs course.Course
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &crs))
		assert.Equal(t, "Intro to Go", crs.Title)
		assert.Equal(t, instructor.ID, crs.InstructorID)
		assert.Equal(t, course.StatusActive, crs.Status)
	})

	t.Run("title required", func(t *testing.T) {
		body := marchallObj(t, course.NewCourse{Difficulty: "Beginner"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", getToken(t, instructor), body)
		app.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"title": "this field is required"}),
		}
		checkCodeAndData(t, tt, rec)
	})
}

func Test_courseApi_ownership(t *testing.T) {
	owner := createTestUser(t, "Rightful Owner", "owner@test.cd", user.RoleInstructor)
	other := createTestUser(t, "Other Teach", "other@test.cd", user.RoleInstructor)
	admin := createTestUser(t, "Super User", "super@test.cd", user.RoleAdministrator)
	crs := createTestCourse(t, owner.ID, "Owned Course")

	update := marchallObj(t, course.UpdateCourse{Title: "Renamed Course"})

	t.Run("non-owner forbidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+itoa(crs.ID), getToken(t, other), update)
		app.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("owner updates", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+itoa(crs.ID), getToken(t, owner), update)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got course.Course
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Renamed Course", got.Title)
	})

	t.Run("admin updates any", func(t *testing.T) {
		body := marchallObj(t, course.UpdateCourse{Status: course.StatusArchived})
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+itoa(crs.ID), getToken(t, admin), body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got course.Course
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, course.StatusArchived, got.Status)
	})

	t.Run("unknown course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/999999", getToken(t, owner), update)
		app.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "course not found"}),
		}
		checkCodeAndData(t, tt, rec)
	})
}

func Test_courseApi_reviews(t *testing.T) {
	instructor := createTestUser(t, "Rated Teach", "rated@test.cd", user.RoleInstructor)
	student := createTestUser(t, "Harsh Critic", "critic@test.cd", user.RoleStudent)
	crs := createTestCourse(t, instructor.ID, "Reviewable Go")
	token := getToken(t, student)

	t.Run("no reviews yet means zero rating", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+itoa(crs.ID), token)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got course.Course
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, float64(0), got.AverageRating)
		assert.Equal(t, 0, got.ReviewCount)
	})

	t.Run("review", func(t *testing.T) {
		body := marchallObj(t, course.NewReview{Rating: 4, Comment: "solid"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+itoa(crs.ID)+"/reviews", token, body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var rev course.Review
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rev))
		assert.Equal(t, 4, rev.Rating)
		assert.Equal(t, student.ID, rev.StudentID)
	})

	t.Run("one review per student per course", func(t *testing.T) {
		body := marchallObj(t, course.NewReview{Rating: 5})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+itoa(crs.ID)+"/reviews", token, body)
		app.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Message: "course already reviewed"}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("rating out of range", func(t *testing.T) {
		other := createTestUser(t, "Second Critic", "critic2@test.cd", user.RoleStudent)
		body := marchallObj(t, course.NewReview{Rating: 6})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+itoa(crs.ID)+"/reviews", getToken(t, other), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("average reflects reviews", func(t *testing.T) {
		second := createTestUser(t, "Kind Critic", "kind@test.cd", user.RoleStudent)
		_, err := courseSvc.CreateReview(context.Background(), course.NewReview{Rating: 2, CourseID: crs.ID}, second.ID)
		require.NoError(t, err)

		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+itoa(crs.ID), token)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got course.Course
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, 2, got.ReviewCount)
		assert.InDelta(t, 3.0, got.AverageRating, 0.001)
	})
}

func Test_courseApi_hierarchy(t *testing.T) {
	instructor := createTestUser(t, "Deep Thinker", "deep@test.cd", user.RoleInstructor)
	crs := createTestCourse(t, instructor.ID, "Structured Go")
	token := getToken(t, instructor)

	var moduleID, lectureID, contentID int

	t.Run("create module", func(t *testing.T) {
		body := marchallObj(t, course.NewModule{Title: "Basics", OrderNumber: 1})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+itoa(crs.ID)+"/modules", token, body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var mod course.Module
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mod))
		assert.Equal(t, crs.ID, mod.CourseID)
		moduleID = mod.ID
	})

	t.Run("create lecture", func(t *testing.T) {
		body := marchallObj(t, course.NewLecture{Title: "Hello World", DurationMinutes: 15})
		req, rec := newAuthRequest(http.MethodPost, "/v1/modules/"+itoa(moduleID)+"/lectures", token, body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var lec course.Lecture
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lec))
		assert.Equal(t, moduleID, lec.ModuleID)
		lectureID = lec.ID
	})

	t.Run("create content", func(t *testing.T) {
		body := marchallObj(t, course.NewContent{Title: "Slides", Type: "pdf", Data: "https://cdn.test/slides.pdf"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/lectures/"+itoa(lectureID)+"/contents", token, body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var cnt course.Content
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cnt))
		assert.Equal(t, lectureID, cnt.LectureID)
		assert.False(t, cnt.UploadDate.IsZero())
		contentID = cnt.ID
	})

	t.Run("update content", func(t *testing.T) {
		body := marchallObj(t, course.NewContent{Title: "Slides v2", Type: "pdf", Data: "https://cdn.test/slides-v2.pdf"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/contents/"+itoa(contentID), token, body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var cnt course.Content
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cnt))
		assert.Equal(t, "Slides v2", cnt.Title)
		assert.Equal(t, lectureID, cnt.LectureID)
	})

	t.Run("update content by non-owner", func(t *testing.T) {
		intruder := createTestUser(t, "Other Teacher", "otherteacher@test.cd", user.RoleInstructor)
		body := marchallObj(t, course.NewContent{Title: "Hijacked", Type: "pdf", Data: "https://cdn.test/evil.pdf"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/contents/"+itoa(contentID), getToken(t, intruder), body)
		app.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("update unknown content", func(t *testing.T) {
		body := marchallObj(t, course.NewContent{Title: "Ghost", Type: "pdf", Data: "https://cdn.test/ghost.pdf"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/contents/999999", token, body)
		app.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "content not found"}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("detail embeds the tree", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+itoa(crs.ID), token)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got course.Course
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got.Modules, 1)
		require.Len(t, got.Modules[0].Lectures, 1)
		require.Len(t, got.Modules[0].Lectures[0].Contents, 1)
	})

	t.Run("module on unknown course", func(t *testing.T) {
		body := marchallObj(t, course.NewModule{Title: "Orphan"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/999999/modules", token, body)
		app.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "course not found"}),
		}
		checkCodeAndData(t, tt, rec)
	})
}
