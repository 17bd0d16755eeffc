package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipebox-server/internal/dto"
)

func TestCreateUser_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/user/create", map[string]any{
		"email":    "Cook@EXAMPLE.com",
		"password": "testpass123",
		"name":     "Test Cook",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var env testEnvelope[dto.User]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, 1, env.Version)
	assert.NotZero(t, env.Data.ID)
	assert.Equal(t, "cook@example.com", env.Data.Email)
	assert.Equal(t, "Test Cook", env.Data.Name)
	assert.NotContains(t, resp.Body.String(), "password")
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerAndLogin(t, "dup@example.com")

	resp := ts.api.Post("/api/v1/user/create", map[string]any{
		"email":    "dup@example.com",
		"password": "testpass123",
		"name":     "Again",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)

	var env testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "ALREADY_EXISTS", env.Code)
}

func TestCreateUser_Validation(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing email", map[string]any{"password": "testpass123", "name": "X"}},
		{"missing name", map[string]any{"email": "a@example.com", "password": "testpass123"}},
		{"short password", map[string]any{"email": "a@example.com", "password": "pw", "name": "X"}},
		{"bad email", map[string]any{"email": "not-an-email", "password": "testpass123", "name": "X"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/user/create", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

			var env testEnvelope[any]
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
			assert.Equal(t, "VALIDATION", env.Code)
		})
	}
}

func TestCreateToken_InvalidCredentials(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerAndLogin(t, "cook@example.com")

	resp := ts.api.Post("/api/v1/user/token", map[string]any{
		"email":    "cook@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	unknown := ts.api.Post("/api/v1/user/token", map[string]any{
		"email":    "nobody@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)

	var a, b testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(unknown.Body.Bytes(), &b))
	assert.Equal(t, a.Message, b.Message)
}

func TestGetMe_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/user/me")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/user/me", "Authorization: Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	var env testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.Equal(t, "UNAUTHORIZED", env.Code)
}

func TestGetMe_Success(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "me@example.com")

	resp := ts.api.Get("/api/v1/user/me", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var env testEnvelope[dto.User]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.Equal(t, "me@example.com", env.Data.Email)
}

func TestUpdateMe_ChangesNameAndPassword(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "me@example.com")

	resp := ts.api.Patch("/api/v1/user/me", bearer(token), map[string]any{
		"name":     "New Name",
		"password": "newpass123",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var env testEnvelope[dto.User]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.Equal(t, "New Name", env.Data.Name)

	login := ts.api.Post("/api/v1/user/token", map[string]any{
		"email":    "me@example.com",
		"password": "newpass123",
	})
	assert.Equal(t, http.StatusOK, login.Code)
}

func TestRefreshToken_Rotates(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerAndLogin(t, "me@example.com")

	resp := ts.api.Post("/api/v1/user/token", map[string]any{
		"email":    "me@example.com",
		"password": "testpass123",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	var login testEnvelope[TokenResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &login))
	assert.Equal(t, "Bearer", login.Data.TokenType)
	assert.Equal(t, 900, login.Data.ExpiresIn)

	resp = ts.api.Post("/api/v1/user/token/refresh", map[string]any{
		"refresh_token": login.Data.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var refreshed testEnvelope[TokenResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &refreshed))
	assert.NotEqual(t, login.Data.RefreshToken, refreshed.Data.RefreshToken)

	// The old refresh token is spent.
	resp = ts.api.Post("/api/v1/user/token/refresh", map[string]any{
		"refresh_token": login.Data.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogout_RevokesToken(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "me@example.com")

	resp := ts.api.Post("/api/v1/user/logout", bearer(token))
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/user/me", bearer(token))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreateToken_RateLimited(t *testing.T) {
	ts := setupTestServerWithOptions(t, Options{AuthRateLimit: 1, AuthRateBurst: 2})

	body := map[string]any{"email": "nobody@example.com", "password": "whatever"}
	for range 2 {
		resp := ts.api.Post("/api/v1/user/token", body, "X-Forwarded-For: 203.0.113.7")
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	}

	resp := ts.api.Post("/api/v1/user/token", body, "X-Forwarded-For: 203.0.113.7")
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("Retry-After"))

	var env testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.Equal(t, "RATE_LIMITED", env.Code)

	// Other clients are unaffected.
	other := ts.api.Post("/api/v1/user/token", body, "X-Forwarded-For: 198.51.100.1")
	assert.Equal(t, http.StatusUnauthorized, other.Code)
}

func TestExtractIP(t *testing.T) {
	assert.Equal(t, "203.0.113.7", extractIP("203.0.113.7, 10.0.0.1", "10.0.0.2"))
	assert.Equal(t, "10.0.0.2", extractIP("", "10.0.0.2"))
	assert.Equal(t, "", extractIP("", ""))
}
