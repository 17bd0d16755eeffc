package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/recipebox/recipebox-server/internal/errors"
)

func TestUserService_GetProfile(t *testing.T) {
	env := newTestEnv(t)
	user := env.makeUser(t, "chef@example.com")

	got, err := env.users.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "chef@example.com", got.Email)
	assert.Equal(t, "Test User", got.Name)

	_, err = env.users.GetProfile(context.Background(), 4242)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUserService_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.makeUser(t, "chef@example.com")

	name := "Updated Name"
	password := "newpassword123"
	updated, err := env.users.UpdateProfile(ctx, user.ID, UpdateProfileRequest{Name: &name, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "Updated Name", updated.Name)
	assert.Equal(t, user.Email, updated.Email)

	_, err = env.auth.Login(ctx, LoginRequest{Email: "chef@example.com", Password: "newpassword123"}, testClient)
	assert.NoError(t, err)
	_, err = env.auth.Login(ctx, LoginRequest{Email: "chef@example.com", Password: "testpass123"}, testClient)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestUserService_UpdateProfileNameOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.makeUser(t, "chef@example.com")

	name := "Just A Name"
	_, err := env.users.UpdateProfile(ctx, user.ID, UpdateProfileRequest{Name: &name})
	require.NoError(t, err)

	_, err = env.auth.Login(ctx, LoginRequest{Email: "chef@example.com", Password: "testpass123"}, testClient)
	assert.NoError(t, err)
}

func TestUserService_UpdateProfileRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.makeUser(t, "chef@example.com")

	blank := "   "
	_, err := env.users.UpdateProfile(ctx, user.ID, UpdateProfileRequest{Name: &blank})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	short := "pw"
	_, err = env.users.UpdateProfile(ctx, user.ID, UpdateProfileRequest{Password: &short})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
