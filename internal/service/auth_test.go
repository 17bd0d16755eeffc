package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/recipebox/recipebox-server/internal/errors"
)

var testClient = ClientInfo{IPAddress: "127.0.0.1", UserAgent: "go-test"}

func TestAuthService_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, RegisterRequest{
		Email:    "Chef@Example.com",
		Password: "testpass123",
		Name:     "Chef",
	})
	require.NoError(t, err)
	assert.Equal(t, "chef@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.NotEqual(t, "testpass123", user.PasswordHash)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.makeUser(t, "chef@example.com")

	_, err := env.auth.Register(ctx, RegisterRequest{
		Email:    "CHEF@example.com",
		Password: "testpass123",
		Name:     "Again",
	})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"short password", RegisterRequest{Email: "a@example.com", Password: "pw", Name: "A"}},
		{"bad email", RegisterRequest{Email: "not-an-email", Password: "testpass123", Name: "A"}},
		{"blank name", RegisterRequest{Email: "a@example.com", Password: "testpass123", Name: "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, tt.req)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.makeUser(t, "chef@example.com")

	resp, err := env.auth.Login(ctx, LoginRequest{Email: "chef@example.com", Password: "testpass123"}, testClient)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 900, resp.ExpiresIn)

	got, claims, err := env.auth.VerifyAccessToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, resp.SessionID, claims.SessionID)

	sessions, err := env.sessionSvc.ListUserSessions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "go-test", sessions[0].UserAgent)
}

func TestAuthService_LoginFailuresLookAlike(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.makeUser(t, "chef@example.com")

	_, wrongPassword := env.auth.Login(ctx, LoginRequest{Email: "chef@example.com", Password: "nope"}, testClient)
	_, unknownEmail := env.auth.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "testpass123"}, testClient)

	require.ErrorIs(t, wrongPassword, domainerrors.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, domainerrors.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthService_LoginInactiveUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.makeUser(t, "chef@example.com")

	user.IsActive = false
	require.NoError(t, env.store.UpdateUser(ctx, user))

	_, err := env.auth.Login(ctx, LoginRequest{Email: "chef@example.com", Password: "testpass123"}, testClient)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_RefreshRotatesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.makeUser(t, "chef@example.com")

	first, err := env.auth.Login(ctx, LoginRequest{Email: "chef@example.com", Password: "testpass123"}, testClient)
	require.NoError(t, err)

	second, err := env.auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: first.RefreshToken}, testClient)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, first.SessionID, second.SessionID)

	// The old refresh token is spent.
	_, err = env.auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: first.RefreshToken}, testClient)
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)

	_, err = env.auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: second.RefreshToken}, testClient)
	assert.NoError(t, err)
}

func TestAuthService_LogoutRevokesAccessToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.makeUser(t, "chef@example.com")

	resp, err := env.auth.Login(ctx, LoginRequest{Email: "chef@example.com", Password: "testpass123"}, testClient)
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, resp.SessionID))

	_, _, err = env.auth.VerifyAccessToken(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = env.auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: resp.RefreshToken}, testClient)
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
}

func TestAuthService_VerifyAccessTokenRejectsGarbage(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.auth.VerifyAccessToken(context.Background(), "v4.local.garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestAuthService_CreateSuperuser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin, err := env.auth.CreateSuperuser(ctx, "admin@example.com", "Admin", "adminpass")
	require.NoError(t, err)
	assert.True(t, admin.IsStaff)
	assert.True(t, admin.IsSuperuser)

	_, err = env.auth.CreateSuperuser(ctx, "admin@example.com", "Admin", "adminpass")
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)

	_, err = env.auth.Login(ctx, LoginRequest{Email: "admin@example.com", Password: "adminpass"}, testClient)
	assert.NoError(t, err)
}
