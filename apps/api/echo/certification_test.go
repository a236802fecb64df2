package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/educert/backend/core/certification"
	"github.com/educert/backend/core/user"
)

func Test_certificationApi_manage(t *testing.T) {
	admin := createTestUser(t, "Cert Admin", "certadmin@test.cd", user.RoleAdministrator)
	student := createTestUser(t, "Cert Seeker", "certseeker@test.cd", user.RoleStudent)
	adminToken := getToken(t, admin)

	var certID int

	t.Run("student cannot create", func(t *testing.T) {
		body := marchallObj(t, certification.NewCertification{Title: "Fake Cert"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/certifications", getToken(t, student), body)
		app.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("admin creates", func(t *testing.T) {
		body := marchallObj(t, certification.NewCertification{Title: "Go Developer", IssuingBody: "EduCert"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/certifications", adminToken, body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var cert certification.Certification
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cert))
		assert.Equal(t, "Go Developer", cert.Title)
		certID = cert.ID
	})

	t.Run("associate course", func(t *testing.T) {
		instructor := createTestUser(t, "Cert Teach", "certteach@test.cd", user.RoleInstructor)
		crs := createTestCourse(t, instructor.ID, "Certifiable Go")

		body := marchallObj(t, AssociateCourseRequest{CourseID: crs.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/certifications/"+itoa(certID)+"/courses", adminToken, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		req, rec = newAuthRequest(http.MethodGet, "/v1/courses/"+itoa(crs.ID)+"/certifications", adminToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var certs []certification.Certification
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &certs))
		require.Len(t, certs, 1)
		assert.Equal(t, certID, certs[0].ID)

		t.Run("dissociate", func(t *testing.T) {
			path := "/v1/certifications/" + itoa(certID) + "/courses/" + itoa(crs.ID)
			req, rec := newAuthRequest(http.MethodDelete, path, adminToken)
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

			req, rec = newAuthRequest(http.MethodGet, "/v1/courses/"+itoa(crs.ID)+"/certifications", adminToken)
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var left []certification.Certification
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &left))
			assert.Len(t, left, 0)
		})

		t.Run("dissociate again", func(t *testing.T) {
			path := "/v1/certifications/" + itoa(certID) + "/courses/" + itoa(crs.ID)
			req, rec := newAuthRequest(http.MethodDelete, path, adminToken)
			app.ServeHTTP(rec, req)

			tt := httpTest{
				wantCode: http.StatusNotFound,
				wantData: marchallObj(t, httpErr{Message: "certification not associated with this course"}),
			}
			checkCodeAndData(t, tt, rec)
		})
	})

	t.Run("issue", func(t *testing.T) {
		body := marchallObj(t, certification.NewIssuance{StudentID: student.ID, CertificationID: certID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/certifications/issue", adminToken, body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var iss certification.Issuance
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &iss))
		assert.Equal(t, student.ID, iss.StudentID)
		assert.False(t, iss.IssueDate.IsZero())
	})

	t.Run("issue twice", func(t *testing.T) {
		body := marchallObj(t, certification.NewIssuance{StudentID: student.ID, CertificationID: certID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/certifications/issue", adminToken, body)
		app.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Message: "certification already issued to this student"}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("student lists own", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/certifications/mine", getToken(t, student))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var isss []certification.Issuance
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &isss))
		require.Len(t, isss, 1)
		assert.Equal(t, certID, isss[0].CertificationID)
	})
}

func Test_certificationApi_verify(t *testing.T) {
	holder := createTestUser(t, "Cert Holder", "holder@test.cd", user.RoleStudent)
	outsider := createTestUser(t, "Cert Less", "certless@test.cd", user.RoleStudent)

	ctx := context.Background()
	cert, err := certSvc.Create(ctx, certification.NewCertification{Title: "Verified Gopher"})
	require.NoError(t, err)
	_, err = certSvc.Issue(ctx, certification.NewIssuance{StudentID: holder.ID, CertificationID: cert.ID})
	require.NoError(t, err)

	expired, err := certSvc.Create(ctx, certification.NewCertification{
		Title:      "Expired Gopher",
		ExpiryDate: null.TimeFrom(time.Now().UTC().Add(-24 * time.Hour)),
	})
	require.NoError(t, err)
	_, err = certSvc.Issue(ctx, certification.NewIssuance{StudentID: holder.ID, CertificationID: expired.ID})
	require.NoError(t, err)

	verifyPath := func(certID, studentID int) string {
		return "/v1/certifications/verify?certificationId=" + itoa(certID) + "&studentId=" + itoa(studentID)
	}

	tests := []httpTest{
		{
			name:     "no auth required",
			method:   http.MethodGet,
			path:     verifyPath(cert.ID, holder.ID),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, certification.Verification{Verified: true, IsExpired: false}),
		},
		{
			name:     "not issued",
			method:   http.MethodGet,
			path:     verifyPath(cert.ID, outsider.ID),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "certification not issued to this student"}),
		},
		{
			name:     "unknown certification",
			method:   http.MethodGet,
			path:     verifyPath(999999, holder.ID),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "certification not found"}),
		},
		{
			name:     "expired",
			method:   http.MethodGet,
			path:     verifyPath(expired.ID, holder.ID),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, certification.Verification{Verified: false, IsExpired: true}),
		},
		{
			name:     "bad query param",
			method:   http.MethodGet,
			path:     "/v1/certifications/verify?certificationId=abc&studentId=" + itoa(holder.ID),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"certificationId": "a valid integer is required"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
