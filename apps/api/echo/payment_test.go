package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educert/backend/core/payment"
	"github.com/educert/backend/core/user"
)

func Test_paymentApi(t *testing.T) {
	instructor := createTestUser(t, "Paid Teach", "paidteach@test.cd", user.RoleInstructor)
	student := createTestUser(t, "Paying Student", "payer@test.cd", user.RoleStudent)
	admin := createTestUser(t, "Bursar", "bursar@test.cd", user.RoleAdministrator)
	crs := createTestCourse(t, instructor.ID, "Payable Go")

	studentToken := getToken(t, student)
	adminToken := getToken(t, admin)

	var paymentID int

	t.Run("record", func(t *testing.T) {
		body := marchallObj(t, payment.NewPayment{Amount: 49.99, Method: "card", CourseID: crs.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/payments", studentToken, body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var pmt payment.Payment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pmt))
		assert.Equal(t, payment.StatusCompleted, pmt.Status)
		assert.Equal(t, student.ID, pmt.StudentID)
		assert.NotEmpty(t, pmt.TransactionID)
		paymentID = pmt.ID
	})

	t.Run("amount must be positive", func(t *testing.T) {
		body := marchallObj(t, payment.NewPayment{Amount: -5, Method: "card", CourseID: crs.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/payments", studentToken, body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("instructor cannot pay", func(t *testing.T) {
		body := marchallObj(t, payment.NewPayment{Amount: 10, Method: "card", CourseID: crs.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/payments", getToken(t, instructor), body)
		app.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("student lists own", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/payments", studentToken)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var pmts []payment.Payment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pmts))
		require.Len(t, pmts, 1)
		assert.Equal(t, paymentID, pmts[0].ID)
	})

	t.Run("admin lists by course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/payments/course/"+itoa(crs.ID), adminToken)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var pmts []payment.Payment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pmts))
		require.Len(t, pmts, 1)
	})

	t.Run("owner instructor lists by course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/payments/course/"+itoa(crs.ID), getToken(t, instructor))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var pmts []payment.Payment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pmts))
		require.Len(t, pmts, 1)
		assert.Equal(t, paymentID, pmts[0].ID)
	})

	t.Run("non-owner instructor forbidden", func(t *testing.T) {
		rival := createTestUser(t, "Rival Teach", "rivalteach@test.cd", user.RoleInstructor)
		req, rec := newAuthRequest(http.MethodGet, "/v1/payments/course/"+itoa(crs.ID), getToken(t, rival))
		app.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("list by unknown course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/payments/course/999999", adminToken)
		app.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "course not found"}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("student cannot refund", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/payments/"+itoa(paymentID)+"/refund", studentToken)
		app.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("admin refunds", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/payments/"+itoa(paymentID)+"/refund", adminToken)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var pmt payment.Payment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pmt))
		assert.Equal(t, payment.StatusRefunded, pmt.Status)
	})

	t.Run("refund unknown payment", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/payments/999999/refund", adminToken)
		app.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "payment not found"}),
		}
		checkCodeAndData(t, tt, rec)
	})
}
