package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backdateSentAt moves the challenge send time so cooldown and link-expiry
// paths can be exercised without sleeping.
func backdateSentAt(t *testing.T, svc *AuthService, userID uint, age time.Duration) {
	t.Helper()
	sentAt := time.Now().UTC().Add(-age)
	require.NoError(t, svc.Repo.UpdateUserFields(context.Background(), userID, map[string]interface{}{
		"email_verification_sent_at": sentAt,
	}))
}

func TestVerifyByToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestAuthService(t)

	user := registerUser(t, svc, "olga", "olga@example.com")

	t.Run("empty token", func(t *testing.T) {
		err := svc.VerifyByToken(ctx, "")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown token", func(t *testing.T) {
		err := svc.VerifyByToken(ctx, "nonexistent-token-value")
		assert.ErrorIs(t, err, ErrInvalidVerificationToken)
	})

	t.Run("expired link", func(t *testing.T) {
		backdateSentAt(t, svc, user.ID, 25*time.Hour)
		err := svc.VerifyByToken(ctx, user.EmailVerificationToken)
		assert.ErrorIs(t, err, ErrInvalidVerificationToken)
		backdateSentAt(t, svc, user.ID, time.Minute)
	})

	t.Run("valid token verifies and clears the challenge", func(t *testing.T) {
		require.NoError(t, svc.VerifyByToken(ctx, user.EmailVerificationToken))

		stored, err := svc.Repo.UserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored.EmailVerifiedAt)
		assert.Empty(t, stored.EmailVerificationToken)
		assert.Empty(t, stored.EmailVerificationCode)
		assert.Nil(t, stored.EmailVerificationCodeExpiresAt)
		assert.Nil(t, stored.EmailVerificationSentAt)
	})

	t.Run("token single use", func(t *testing.T) {
		err := svc.VerifyByToken(ctx, user.EmailVerificationToken)
		assert.ErrorIs(t, err, ErrInvalidVerificationToken)
	})
}

func TestVerifyByCode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestAuthService(t)

	user := registerUser(t, svc, "pete", "pete@example.com")

	t.Run("missing input", func(t *testing.T) {
		_, err := svc.VerifyByCode(ctx, "", "123456")
		assert.ErrorIs(t, err, ErrValidation)
		_, err = svc.VerifyByCode(ctx, "pete@example.com", "123")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.VerifyByCode(ctx, "nobody@example.com", "123456")
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("wrong code", func(t *testing.T) {
		wrong := "000000"
		if user.EmailVerificationCode == wrong {
			wrong = "000001"
		}
		_, err := svc.VerifyByCode(ctx, "pete@example.com", wrong)
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("expired code", func(t *testing.T) {
		past := time.Now().UTC().Add(-time.Minute)
		require.NoError(t, svc.Repo.UpdateUserFields(ctx, user.ID, map[string]interface{}{
			"email_verification_code_expires_at": past,
		}))
		_, err := svc.VerifyByCode(ctx, "pete@example.com", user.EmailVerificationCode)
		assert.ErrorIs(t, err, ErrCodeExpired)

		future := time.Now().UTC().Add(10 * time.Minute)
		require.NoError(t, svc.Repo.UpdateUserFields(ctx, user.ID, map[string]interface{}{
			"email_verification_code_expires_at": future,
		}))
	})

	t.Run("valid code verifies and logs in", func(t *testing.T) {
		res, err := svc.VerifyByCode(ctx, "pete@example.com", user.EmailVerificationCode)
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.NotNil(t, res.User.EmailVerifiedAt)
		assert.Equal(t, 1, res.User.ActiveDays, "implicit login counts as activity")

		gotUser, _, _, err := svc.Resolve(ctx, res.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, gotUser.ID)
	})

	t.Run("code single use", func(t *testing.T) {
		_, err := svc.VerifyByCode(ctx, "pete@example.com", user.EmailVerificationCode)
		assert.ErrorIs(t, err, ErrInvalidCode)
	})
}

func TestResendVerification(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestAuthService(t)

	user := registerUser(t, svc, "quinn", "quinn@example.com")

	t.Run("missing email", func(t *testing.T) {
		err := svc.ResendVerification(ctx, "")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown email", func(t *testing.T) {
		err := svc.ResendVerification(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("cooldown after registration", func(t *testing.T) {
		err := svc.ResendVerification(ctx, "quinn@example.com")
		assert.ErrorIs(t, err, ErrRateLimited)
	})

	t.Run("resend after cooldown rotates the challenge", func(t *testing.T) {
		backdateSentAt(t, svc, user.ID, 6*time.Minute)
		require.NoError(t, svc.ResendVerification(ctx, "quinn@example.com"))

		stored, err := svc.Repo.UserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.NotEqual(t, user.EmailVerificationToken, stored.EmailVerificationToken)

		// The rotated-out token no longer verifies.
		err = svc.VerifyByToken(ctx, user.EmailVerificationToken)
		assert.ErrorIs(t, err, ErrInvalidVerificationToken)
		require.NoError(t, svc.VerifyByToken(ctx, stored.EmailVerificationToken))
	})

	t.Run("already verified reads as not found", func(t *testing.T) {
		err := svc.ResendVerification(ctx, "quinn@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestVerificationStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestAuthService(t)

	user := registerUser(t, svc, "rosa", "rosa@example.com")

	verified, at, err := svc.VerificationStatus(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, verified)
	assert.Nil(t, at)

	verifyUser(t, svc, user)

	verified, at, err = svc.VerificationStatus(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, verified)
	assert.NotNil(t, at)

	_, _, err = svc.VerificationStatus(ctx, 99999)
	assert.ErrorIs(t, err, ErrNotFound)
}
