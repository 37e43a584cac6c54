package service

import (
	"context"
	"testing"
	"time"

	"github.com/fitnease/fitnease-auth/internal/abilities"
	"github.com/fitnease/fitnease-auth/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)

	cases := []struct {
		name   string
		mutate func(*RegisterRequest)
	}{
		{"missing username", func(r *RegisterRequest) { r.Username = "" }},
		{"missing email", func(r *RegisterRequest) { r.Email = "" }},
		{"invalid email", func(r *RegisterRequest) { r.Email = "not-an-email" }},
		{"short password", func(r *RegisterRequest) { r.Password = "short" }},
		{"missing first name", func(r *RegisterRequest) { r.FirstName = "" }},
		{"underage", func(r *RegisterRequest) { r.Age = 17 }},
		{"overage", func(r *RegisterRequest) { r.Age = 101 }},
		{"bad gender", func(r *RegisterRequest) { r.Gender = "unknown" }},
		{"bad activity level", func(r *RegisterRequest) { r.ActivityLevel = "couch" }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := registerRequest("valid_user", "valid@example.com")
			tc.mutate(&req)

			_, err := svc.Register(context.Background(), req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestRegisterCreatesChallenge(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)

	user := registerUser(t, svc, "alice", "alice@example.com")

	assert.NotZero(t, user.ID)
	assert.True(t, user.IsActive)
	assert.Nil(t, user.EmailVerifiedAt)
	assert.Len(t, user.EmailVerificationToken, 64)
	assert.Len(t, user.EmailVerificationCode, 6)
	require.NotNil(t, user.EmailVerificationCodeExpiresAt)
	require.NotNil(t, user.EmailVerificationSentAt)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), *user.EmailVerificationCodeExpiresAt, time.Minute)

	// The stored hash must not leak the plaintext.
	stored, err := svc.Repo.UserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestRegisterDuplicateIdentity(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)

	registerUser(t, svc, "bob", "bob@example.com")

	_, err := svc.Register(context.Background(), registerRequest("bob", "other@example.com"))
	assert.ErrorIs(t, err, ErrDuplicateIdentity)

	_, err = svc.Register(context.Background(), registerRequest("bob2", "bob@example.com"))
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
}

func TestRegisterDefaults(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)

	user := registerUser(t, svc, "carol", "carol@example.com")
	assert.Equal(t, "sedentary", user.ActivityLevel)
	assert.Equal(t, 20, user.TimeConstraintsMinutes)
}

func TestLoginFailureOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestAuthService(t)

	user := registerUser(t, svc, "dave", "dave@example.com")

	t.Run("unknown email reads as bad credentials", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password wins over unverified email", func(t *testing.T) {
		_, err := svc.Login(ctx, "dave@example.com", "wrongpassword")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unverified account with good credentials", func(t *testing.T) {
		_, err := svc.Login(ctx, "dave@example.com", "password123")
		assert.ErrorIs(t, err, ErrEmailUnverified)
	})

	t.Run("disabled wins over unverified", func(t *testing.T) {
		user.IsActive = false
		require.NoError(t, svc.Repo.SaveUser(ctx, user))

		_, err := svc.Login(ctx, "dave@example.com", "password123")
		assert.ErrorIs(t, err, ErrAccountDisabled)

		user.IsActive = true
		require.NoError(t, svc.Repo.SaveUser(ctx, user))
	})

	t.Run("verified active account logs in", func(t *testing.T) {
		verifyUser(t, svc, user)

		res, err := svc.Login(ctx, "dave@example.com", "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, user.ID, res.User.ID)
		assert.True(t, abilities.Contains(res.Abilities, "access-workouts"))
		assert.False(t, abilities.Contains(res.Abilities, abilities.AdminAccess))
	})
}

func TestLoginBumpsActiveDaysOncePerDay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestAuthService(t)

	user := registerUser(t, svc, "erin", "erin@example.com")
	verifyUser(t, svc, user)

	res, err := svc.Login(ctx, "erin@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, 1, res.User.ActiveDays)
	assert.NotNil(t, res.User.LastLogin)

	// Second login the same day must not bump the counter again.
	res, err = svc.Login(ctx, "erin@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, 1, res.User.ActiveDays)

	// Simulate the last activity being yesterday.
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	require.NoError(t, svc.Repo.UpdateUserFields(ctx, user.ID, map[string]interface{}{
		"last_active_date": yesterday,
	}))

	res, err = svc.Login(ctx, "erin@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, 2, res.User.ActiveDays)
}

func TestLoginAbilitiesFollowRoles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestAuthService(t)

	user := registerUser(t, svc, "frank", "frank@example.com")
	verifyUser(t, svc, user)

	admin := createRole(t, svc.Repo, "admin")
	require.NoError(t, svc.Repo.CreateRoleAssignment(ctx, &models.UserRole{
		UserID: user.ID, RoleID: admin.ID, AssignedAt: time.Now().UTC(),
	}))

	res, err := svc.Login(ctx, "frank@example.com", "password123")
	require.NoError(t, err)
	assert.True(t, abilities.Contains(res.Abilities, abilities.AdminAccess))

	// Revoking the role changes the snapshot of the NEXT login only.
	_, err = svc.Repo.DeleteRoleAssignment(ctx, user.ID, admin.ID)
	require.NoError(t, err)

	_, _, snapshot, err := svc.Resolve(ctx, res.Token)
	require.NoError(t, err)
	assert.True(t, abilities.Contains(snapshot, abilities.AdminAccess),
		"existing token keeps its snapshot")

	res2, err := svc.Login(ctx, "frank@example.com", "password123")
	require.NoError(t, err)
	assert.False(t, abilities.Contains(res2.Abilities, abilities.AdminAccess))
}
