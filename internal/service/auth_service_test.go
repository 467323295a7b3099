package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habscollection/storefront/internal/entity"
	"github.com/habscollection/storefront/internal/repository/memory"
	"github.com/habscollection/storefront/internal/service"
)

func setupAuth(t *testing.T) *service.AuthService {
	t.Helper()
	return service.NewAuthService(memory.NewUserStore(), service.NewSessionStore(time.Hour))
}

func TestSignupAndLogin(t *testing.T) {
	auth := setupAuth(t)
	ctx := context.Background()

	user, token, err := auth.Signup(ctx, service.SignupParams{
		Email:     "Amina@Example.com",
		Password:  "correcthorse",
		FirstName: "Amina",
		LastName:  "Khan",
	})
	require.NoError(t, err)
	assert.Equal(t, "amina@example.com", user.Email)
	assert.NotEmpty(t, token)

	resolved, err := auth.UserFromToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	// Login is case-insensitive on email and never leaks the hash path.
	again, token2, err := auth.Login(ctx, "AMINA@example.com", "correcthorse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.NotEqual(t, token, token2)
}

func TestSignupValidation(t *testing.T) {
	auth := setupAuth(t)
	ctx := context.Background()

	_, _, err := auth.Signup(ctx, service.SignupParams{Email: "not-an-email", Password: "correcthorse"})
	assert.ErrorIs(t, err, entity.ErrValidation)

	_, _, err = auth.Signup(ctx, service.SignupParams{Email: "a@b.com", Password: "short"})
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestSignupDuplicateEmail(t *testing.T) {
	auth := setupAuth(t)
	ctx := context.Background()

	_, _, err := auth.Signup(ctx, service.SignupParams{Email: "a@b.com", Password: "correcthorse"})
	require.NoError(t, err)

	_, _, err = auth.Signup(ctx, service.SignupParams{Email: "A@B.com", Password: "correcthorse"})
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth := setupAuth(t)
	ctx := context.Background()

	_, _, err := auth.Signup(ctx, service.SignupParams{Email: "a@b.com", Password: "correcthorse"})
	require.NoError(t, err)

	_, _, err = auth.Login(ctx, "a@b.com", "wrongpassword")
	assert.ErrorIs(t, err, entity.ErrUnauthorized)

	_, _, err = auth.Login(ctx, "nobody@b.com", "correcthorse")
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	auth := setupAuth(t)
	ctx := context.Background()

	_, token, err := auth.Signup(ctx, service.SignupParams{Email: "a@b.com", Password: "correcthorse"})
	require.NoError(t, err)

	auth.Logout(token)
	_, err = auth.UserFromToken(ctx, token)
	assert.ErrorIs(t, err, entity.ErrUnauthorized)

	// Idempotent.
	auth.Logout(token)
}

func TestUpdateProfile(t *testing.T) {
	auth := setupAuth(t)
	ctx := context.Background()

	user, _, err := auth.Signup(ctx, service.SignupParams{Email: "a@b.com", Password: "correcthorse", FirstName: "A"})
	require.NoError(t, err)

	updated, err := auth.UpdateProfile(ctx, user.ID, "Amina", "Khan")
	require.NoError(t, err)
	assert.Equal(t, "Amina", updated.FirstName)
	assert.Equal(t, "Khan", updated.LastName)

	_, err = auth.UpdateProfile(ctx, "missing-user", "X", "Y")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestChangePassword(t *testing.T) {
	auth := setupAuth(t)
	ctx := context.Background()

	user, _, err := auth.Signup(ctx, service.SignupParams{Email: "a@b.com", Password: "correcthorse"})
	require.NoError(t, err)

	err = auth.ChangePassword(ctx, user.ID, "wrongcurrent", "batterystaple")
	assert.ErrorIs(t, err, entity.ErrUnauthorized)

	err = auth.ChangePassword(ctx, user.ID, "correcthorse", "tiny")
	assert.ErrorIs(t, err, entity.ErrValidation)

	require.NoError(t, auth.ChangePassword(ctx, user.ID, "correcthorse", "batterystaple"))

	_, _, err = auth.Login(ctx, "a@b.com", "correcthorse")
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
	_, _, err = auth.Login(ctx, "a@b.com", "batterystaple")
	assert.NoError(t, err)
}
