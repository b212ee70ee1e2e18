package controller

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	apperrors "github.com/wanderwise/wanderwise-backend/internal/errors"
)

func TestAuthController_RegisterLoginMe(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Email:    "nomad@wanderwise.test",
		Password: "password123",
		FullName: "Nia Nomad",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "Nia Nomad", user["full_name"])
	assert.NotContains(t, user, "password_hash")

	w = s.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "nomad@wanderwise.test", Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	tokens := decode(t, w)["tokens"].(map[string]interface{})
	access := tokens["access_token"].(string)

	w = s.do(t, http.MethodGet, "/api/auth/me", access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nomad@wanderwise.test", decode(t, w)["user"].(map[string]interface{})["email"])

	w = s.do(t, http.MethodPost, "/api/auth/refresh", "", RefreshTokenRequest{RefreshToken: tokens["refresh_token"].(string)})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/logout", access, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthController_Failures(t *testing.T) {
	s := setupTestServer(t)
	s.account(t, "taken", model.RoleUser)

	tests := []struct {
		name       string
		path       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{"invalid email", "/api/auth/register", RegisterRequest{Email: "nope", Password: "password123", FullName: "X"}, http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"short password", "/api/auth/register", RegisterRequest{Email: "a@wanderwise.test", Password: "short", FullName: "X"}, http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"duplicate email", "/api/auth/register", RegisterRequest{Email: "taken@wanderwise.test", Password: "password123", FullName: "X"}, http.StatusConflict, apperrors.AuthEmailAlreadyExists},
		{"malformed body", "/api/auth/login", "{", http.StatusBadRequest, apperrors.ValidationInvalidFormat},
		{"bad credentials", "/api/auth/login", LoginRequest{Email: "taken@wanderwise.test", Password: "whatever1"}, http.StatusUnauthorized, apperrors.AuthInvalidCredentials},
		{"bad refresh token", "/api/auth/refresh", RefreshTokenRequest{RefreshToken: "x.y.z"}, http.StatusUnauthorized, apperrors.AuthTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, tt.path, "", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantCode, body["code"])
		})
	}

	t.Run("me requires a token", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
