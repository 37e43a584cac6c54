package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fitnease/fitnease-auth/internal/config"
	"github.com/fitnease/fitnease-auth/internal/middleware"
	"github.com/fitnease/fitnease-auth/internal/models"
	"github.com/fitnease/fitnease-auth/internal/repo"
	"github.com/fitnease/fitnease-auth/internal/service"
	"github.com/fitnease/fitnease-auth/pkg/logging"
	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	e    *echo.Echo
	repo *repo.GormRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	gormRepo := repo.New(db)
	authSvc := &service.AuthService{Repo: gormRepo, BcryptCost: 4}

	e := echo.New()
	Register(e, &Deps{
		AuthHandler:  &AuthHTTP{Svc: authSvc},
		RolesHandler: &RolesHTTP{Svc: &service.RBACService{Repo: gormRepo}},
		UsersHandler: &UsersHTTP{Svc: &service.UserService{Repo: gormRepo}},
		AuthMw:       middleware.NewAuth(authSvc),
		Logger:       logging.New("error"),
	})

	return &testServer{e: e, repo: gormRepo}
}

func (s *testServer) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *testServer) registerAndVerify(t *testing.T, username, email string) (uint, string) {
	t.Helper()

	rec := s.request(t, http.MethodPost, "/auth/register", "", map[string]interface{}{
		"username":   username,
		"email":      email,
		"password":   "password123",
		"first_name": "Test",
		"last_name":  "User",
		"age":        30,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	userID := uint(decodeBody(t, rec)["user_id"].(float64))

	stored, err := s.repo.UserByID(context.Background(), userID)
	require.NoError(t, err)

	rec = s.request(t, http.MethodPost, "/auth/verify-code", "", map[string]string{
		"email": email,
		"code":  stored.EmailVerificationCode,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return userID, decodeBody(t, rec)["token"].(string)
}

func (s *testServer) grantAdmin(t *testing.T, userID uint) {
	t.Helper()
	ctx := context.Background()

	role, err := s.repo.RoleByName(ctx, "admin")
	if err != nil {
		role = &models.Role{Name: "admin", IsActive: true}
		require.NoError(t, s.repo.CreateRole(ctx, role))
	}
	require.NoError(t, s.repo.CreateRoleAssignment(ctx, &models.UserRole{
		UserID: userID, RoleID: role.ID, AssignedAt: time.Now().UTC(),
	}))
}

func TestHealth(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := s.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fitnease-auth", decodeBody(t, rec)["service"])
}

func TestRegistrationToLoginFlow(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := s.request(t, http.MethodPost, "/auth/register", "", map[string]interface{}{
		"username":   "flowuser",
		"email":      "flow@example.com",
		"password":   "password123",
		"first_name": "Flow",
		"last_name":  "User",
		"age":        28,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	userID := uint(decodeBody(t, rec)["user_id"].(float64))

	t.Run("duplicate registration is a 400", func(t *testing.T) {
		rec := s.request(t, http.MethodPost, "/auth/register", "", map[string]interface{}{
			"username":   "flowuser",
			"email":      "other@example.com",
			"password":   "password123",
			"first_name": "Flow",
			"last_name":  "User",
			"age":        28,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("login before verification is a 403", func(t *testing.T) {
		rec := s.request(t, http.MethodPost, "/auth/login", "", map[string]string{
			"email": "flow@example.com", "password": "password123",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("wrong password is a 401", func(t *testing.T) {
		rec := s.request(t, http.MethodPost, "/auth/login", "", map[string]string{
			"email": "flow@example.com", "password": "wrongpassword",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("status endpoint reports unverified", func(t *testing.T) {
		rec := s.request(t, http.MethodGet, fmt.Sprintf("/auth/email-verification-status/%d", userID), "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, false, decodeBody(t, rec)["email_verified"])
	})

	stored, err := s.repo.UserByID(context.Background(), userID)
	require.NoError(t, err)

	t.Run("wrong code is a 400", func(t *testing.T) {
		wrong := "000000"
		if stored.EmailVerificationCode == wrong {
			wrong = "000001"
		}
		rec := s.request(t, http.MethodPost, "/auth/verify-code", "", map[string]string{
			"email": "flow@example.com", "code": wrong,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	var token string
	t.Run("verify-code logs the user in", func(t *testing.T) {
		rec := s.request(t, http.MethodPost, "/auth/verify-code", "", map[string]string{
			"email": "flow@example.com", "code": stored.EmailVerificationCode,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decodeBody(t, rec)
		token = body["token"].(string)
		assert.NotEmpty(t, token)
		assert.NotEmpty(t, body["abilities"])
	})

	t.Run("login works after verification", func(t *testing.T) {
		rec := s.request(t, http.MethodPost, "/auth/login", "", map[string]string{
			"email": "flow@example.com", "password": "password123",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("token resolves the account", func(t *testing.T) {
		rec := s.request(t, http.MethodGet, "/auth/user", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "flowuser", decodeBody(t, rec)["username"])
	})

	t.Run("validate echoes the snapshot", func(t *testing.T) {
		rec := s.request(t, http.MethodGet, "/auth/validate", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["valid"])
		assert.Equal(t, true, body["email_verified"])
	})
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	cases := []struct {
		name  string
		token string
	}{
		{"no token", ""},
		{"malformed token", "garbage"},
		{"unknown token", "999|" + "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := s.request(t, http.MethodGet, "/auth/user", tc.token, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestTokenLifecycleOverHTTP(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	_, token := s.registerAndVerify(t, "lifecycle", "lifecycle@example.com")

	var newToken string
	t.Run("refresh rotates the credential", func(t *testing.T) {
		rec := s.request(t, http.MethodPost, "/auth/refresh", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		newToken = decodeBody(t, rec)["token"].(string)
		require.NotEmpty(t, newToken)
		assert.NotEqual(t, token, newToken)
	})

	t.Run("old credential stops working", func(t *testing.T) {
		rec := s.request(t, http.MethodGet, "/auth/user", token, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("new credential works", func(t *testing.T) {
		rec := s.request(t, http.MethodGet, "/auth/user", newToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("logout revokes it", func(t *testing.T) {
		rec := s.request(t, http.MethodDelete, "/auth/logout", newToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = s.request(t, http.MethodGet, "/auth/user", newToken, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAdminGate(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	userID, token := s.registerAndVerify(t, "plain", "plain@example.com")

	t.Run("regular token cannot reach admin routes", func(t *testing.T) {
		rec := s.request(t, http.MethodGet, "/all-users", token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	// The role grant takes effect on the next mint, not on existing tokens.
	s.grantAdmin(t, userID)

	t.Run("existing token keeps its old snapshot", func(t *testing.T) {
		rec := s.request(t, http.MethodGet, "/all-users", token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	rec := s.request(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "plain@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	adminToken := decodeBody(t, rec)["token"].(string)

	t.Run("fresh admin token passes the gate", func(t *testing.T) {
		rec := s.request(t, http.MethodGet, "/all-users", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.EqualValues(t, 1, body["total"])
	})

	t.Run("role management round trip", func(t *testing.T) {
		rec := s.request(t, http.MethodPost, "/roles", adminToken, map[string]string{
			"role_name": "premium", "role_description": "paying members",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		roleID := uint(decodeBody(t, rec)["role_id"].(float64))

		rec = s.request(t, http.MethodPost, "/assign-role", adminToken, map[string]uint{
			"user_id": userID, "role_id": roleID,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.EqualValues(t, userID, decodeBody(t, rec)["assigned_by"])

		// A duplicate edge is rejected.
		rec = s.request(t, http.MethodPost, "/assign-role", adminToken, map[string]uint{
			"user_id": userID, "role_id": roleID,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = s.request(t, http.MethodGet, fmt.Sprintf("/users/%d/roles", userID), adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("service token minting", func(t *testing.T) {
		rec := s.request(t, http.MethodPost, "/auth/create-service-token", adminToken, map[string]string{
			"service_name": "fitnease-ml",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decodeBody(t, rec)
		assert.NotEmpty(t, body["service_token"])
		assert.Len(t, body["abilities"], 2)
	})
}

func TestProfileRoutes(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	userID, token := s.registerAndVerify(t, "profiled", "profiled@example.com")

	t.Run("owner reads their profile", func(t *testing.T) {
		rec := s.request(t, http.MethodGet, fmt.Sprintf("/auth/user-profile/%d", userID), token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "profiled", decodeBody(t, rec)["username"])
	})

	t.Run("verified owner updates their profile", func(t *testing.T) {
		rec := s.request(t, http.MethodPut, fmt.Sprintf("/auth/user-profile/%d", userID), token, map[string]interface{}{
			"first_name": "Renamed",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "Renamed", decodeBody(t, rec)["first_name"])
	})

	t.Run("invalid update is a 400", func(t *testing.T) {
		rec := s.request(t, http.MethodPut, fmt.Sprintf("/auth/user-profile/%d", userID), token, map[string]interface{}{
			"age": 5,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
