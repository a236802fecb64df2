package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educert/backend/core/user"
)

func Test_userApi_register(t *testing.T) {
	existing := createTestUser(t, "Hero Kid", "hero@test.cd", user.RoleStudent)

	tests := []httpTest{
		{
			name: "empty body", method: http.MethodPost, path: "/v1/users/register",
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"email":    "this field is required",
				"name":     "this field is required",
				"password": "this field is required",
				"role":     "this field is required",
			}),
		},
		{
			name: "invalid role", method: http.MethodPost, path: "/v1/users/register",
			body: marchallObj(t, map[string]interface{}{
				"name": "New Kid", "email": "kid@test.cd", "password": "S3cretPwd!", "role": "Overlord",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"role": "role must be one of Student, Instructor or Administrator"}),
		},
		{
			name: "duplicate email", method: http.MethodPost, path: "/v1/users/register",
			body: marchallObj(t, map[string]interface{}{
				"name": "Hero Clone", "email": existing.Email, "password": "S3cretPwd!", "role": user.RoleStudent,
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "a user with this email already exists"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("student registered with profile", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{
			"name": "New Kid", "email": "kid@test.cd", "password": "S3cretPwd!",
			"role": user.RoleStudent, "educationLevel": "BSc",
		})
		req, rec := newRequest(http.MethodPost, "/v1/users/register", body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var res RegisterResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "kid@test.cd", res.User.Email)
		assert.Equal(t, user.RoleStudent, res.User.Role)
		require.NotNil(t, res.User.Student)
		assert.Equal(t, "BSc", res.User.Student.EducationLevel)
		assert.True(t, res.User.IsActive)
		assert.NotEmpty(t, res.Token)

		// the issued token is immediately usable
		req, rec = newAuthRequest(http.MethodGet, "/v1/users/me", res.Token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("administrator defaults to standard access", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{
			"name": "Desk Admin", "email": "desk@test.cd", "password": "S3cretPwd!",
			"role": user.RoleAdministrator, "department": "Operations",
		})
		req, rec := newRequest(http.MethodPost, "/v1/users/register", body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var res RegisterResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		require.NotNil(t, res.User.Administrator)
		assert.Equal(t, "Operations", res.User.Administrator.Department)
		assert.Equal(t, user.AccessLevelStandard, res.User.Administrator.AccessLevel)
	})
}

func Test_userApi_login(t *testing.T) {
	usr := createTestUser(t, "Log In", "login@test.cd", user.RoleStudent)

	tests := []httpTest{
		{
			name: "unknown user", method: http.MethodPost, path: "/v1/users/login",
			body:     marchallObj(t, LoginRequest{Email: "ghost@test.cd", Password: "nope"}),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Message: "invalid credentials"}),
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/v1/users/login",
			body:     marchallObj(t, LoginRequest{Email: usr.Email, Password: "nope"}),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Message: "invalid credentials"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("valid credentials", func(t *testing.T) {
		body := marchallObj(t, LoginRequest{Email: usr.Email, Password: "S3cretPwd!"})
		req, rec := newRequest(http.MethodPost, "/v1/users/login", body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.NotEmpty(t, res.Token)
	})
}

func Test_userApi_me(t *testing.T) {
	usr := createTestUser(t, "Self Serve", "self@test.cd", user.RoleInstructor)
	token := getToken(t, usr)

	t.Run("requires auth", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodGet, "/v1/users/me")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("retrieve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", token)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, usr.ID, got.ID)
		assert.Equal(t, usr.Email, got.Email)
	})

	t.Run("update profile", func(t *testing.T) {
		body := marchallObj(t, user.UpdateProfile{Name: "Self Served", Description: "teaches Go"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/me", token, body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Self Served", got.Name)
		require.NotNil(t, got.Instructor)
		assert.Equal(t, "teaches Go", got.Instructor.Description)
	})
}

func Test_userApi_adminOnly(t *testing.T) {
	student := createTestUser(t, "Mere Mortal", "mortal@test.cd", user.RoleStudent)
	admin := createTestUser(t, "Big Boss", "boss@test.cd", user.RoleAdministrator)

	tests := []httpTest{
		{
			name: "query forbidden for student", method: http.MethodGet, path: "/v1/users",
			token:    getToken(t, student),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name: "destroy self forbidden", method: http.MethodDelete, path: "/v1/users/" + itoa(admin.ID),
			token:    getToken(t, admin),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("admin queries users", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users?role=Student", getToken(t, admin))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var users []user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
		for _, u := range users {
			assert.Equal(t, user.RoleStudent, u.Role)
		}
	})
}
