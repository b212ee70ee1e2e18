package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	"github.com/wanderwise/wanderwise-backend/internal/app/service"
	"github.com/wanderwise/wanderwise-backend/internal/errors"
	"github.com/wanderwise/wanderwise-backend/pkg/util"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

func setupMiddlewareTest() (*gin.Engine, *AuthMiddleware) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router, NewAuthMiddleware(testJWTSecret)
}

func generateTestTokens(t *testing.T, userID uint, role string) *util.TokenPair {
	t.Helper()
	tokens, err := util.GenerateTokenPair(userID, "traveler@wanderwise.test", role, testJWTSecret, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return tokens
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errors.ErrorResponse {
	t.Helper()
	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func whoAmI(c *gin.Context) {
	userID, _ := GetUserID(c)
	role, _ := GetUserRole(c)
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": role})
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	router, auth := setupMiddlewareTest()
	router.GET("/me", auth.Authenticate(), whoAmI)

	tokens := generateTestTokens(t, 7, "user")
	expired, err := util.GenerateTokenPair(7, "traveler@wanderwise.test", "user", testJWTSecret, -time.Minute, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
		wantCode   string
	}{
		{name: "bearer header", header: "Bearer " + tokens.AccessToken, wantStatus: http.StatusOK},
		{name: "token query param", query: "?token=" + tokens.AccessToken, wantStatus: http.StatusOK},
		{name: "missing", wantStatus: http.StatusUnauthorized, wantCode: errors.AuthUnauthorized},
		{name: "wrong scheme", header: "Basic " + tokens.AccessToken, wantStatus: http.StatusUnauthorized, wantCode: errors.AuthUnauthorized},
		{name: "garbage token", header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantCode: errors.AuthTokenInvalid},
		{name: "refresh token", header: "Bearer " + tokens.RefreshToken, wantStatus: http.StatusUnauthorized, wantCode: errors.AuthTokenInvalid},
		{name: "expired", header: "Bearer " + expired.AccessToken, wantStatus: http.StatusUnauthorized, wantCode: errors.AuthTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				resp := decodeError(t, w)
				assert.False(t, resp.Success)
				assert.Equal(t, tt.wantCode, resp.Code)
			} else {
				assert.JSONEq(t, `{"user_id":7,"role":"user"}`, w.Body.String())
			}
		})
	}
}

func TestAuthMiddleware_OptionalAuthenticate(t *testing.T) {
	router, auth := setupMiddlewareTest()
	router.GET("/reviews", auth.OptionalAuthenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"viewer": OptionalUserID(c)})
	})

	tokens := generateTestTokens(t, 3, "user")

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "guest", want: `{"viewer":null}`},
		{name: "invalid token is ignored", header: "Bearer broken", want: `{"viewer":null}`},
		{name: "valid token", header: "Bearer " + tokens.AccessToken, want: `{"viewer":3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/reviews", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	router, auth := setupMiddlewareTest()
	router.GET("/admin", auth.Authenticate(), auth.RequireRole(model.RoleAdmin), whoAmI)

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+generateTestTokens(t, 1, "admin").AccessToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("user is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+generateTestTokens(t, 2, "user").AccessToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, errors.AuthzAdminOnly, decodeError(t, w).Code)
	})
}

type stubUsers map[uint]*model.User

// brokenUserID simulates a database failure during the lookup.
const brokenUserID = 500

func (s stubUsers) GetActiveUser(_ context.Context, id uint) (*model.User, error) {
	if id == brokenUserID {
		return nil, assert.AnError
	}
	u, ok := s[id]
	if !ok {
		return nil, service.ErrUserNotFound
	}
	if !u.IsActive {
		return nil, service.ErrUserInactive
	}
	return u, nil
}

func TestAuthMiddleware_RequireActiveAdmin(t *testing.T) {
	router, auth := setupMiddlewareTest()
	users := stubUsers{
		1: {ID: 1, Role: model.RoleAdmin, IsActive: true},
		2: {ID: 2, Role: model.RoleAdmin, IsActive: false},
		3: {ID: 3, Role: model.RoleUser, IsActive: true},
	}
	router.GET("/admin", auth.Authenticate(), auth.RequireRole(model.RoleAdmin), auth.RequireActiveAdmin(users), whoAmI)

	tests := []struct {
		name       string
		userID     uint
		wantStatus int
		wantCode   string
	}{
		{"active admin", 1, http.StatusOK, ""},
		{"deactivated admin", 2, http.StatusForbidden, errors.AuthAccountInactive},
		{"demoted admin with stale token", 3, http.StatusForbidden, errors.AuthzAdminOnly},
		{"deleted admin", 4, http.StatusForbidden, errors.AuthAccountInactive},
		{"lookup failure", brokenUserID, http.StatusInternalServerError, errors.InternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("Authorization", "Bearer "+generateTestTokens(t, tt.userID, "admin").AccessToken)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
			}
		})
	}
}

func TestContextGetters_Empty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetUserID(c)
	assert.False(t, ok)
	_, ok = GetUserEmail(c)
	assert.False(t, ok)
	_, ok = GetUserRole(c)
	assert.False(t, ok)
	assert.Nil(t, OptionalUserID(c))
	assert.Empty(t, GetToken(c))
}
