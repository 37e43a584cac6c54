package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitnease/fitnease-auth/internal/models"
	"github.com/fitnease/fitnease-auth/pkg/logging"
	"github.com/fitnease/fitnease-auth/pkg/tokens"
	"gorm.io/gorm"
)

// newChallenge produces a fresh verification token/code pair stamped now.
func newChallenge() (token, code string, now time.Time, err error) {
	now = time.Now().UTC()
	token, err = tokens.RandomString(64)
	if err != nil {
		return "", "", now, err
	}
	code, err = tokens.VerificationCode()
	if err != nil {
		return "", "", now, err
	}
	return token, code, now, nil
}

// ResendVerification reissues the challenge, invalidating the previous
// token and code. Enforces the 5-minute cooldown from the last send.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "auth.resend_verification")

	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}

	user, err := s.Repo.UnverifiedUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if user.EmailVerificationSentAt != nil &&
		time.Now().UTC().Before(user.EmailVerificationSentAt.Add(resendCooldown)) {
		l.Warn("resend_rate_limited", "user_id", user.ID)
		return ErrRateLimited
	}

	token, code, now, err := newChallenge()
	if err != nil {
		return err
	}
	codeExp := now.Add(codeTTL)

	err = s.Repo.UpdateUserFields(ctx, user.ID, map[string]interface{}{
		"email_verification_token":           token,
		"email_verification_code":            code,
		"email_verification_code_expires_at": codeExp,
		"email_verification_sent_at":         now,
	})
	if err != nil {
		return err
	}

	user.EmailVerificationToken = token
	user.EmailVerificationCode = code
	user.EmailVerificationCodeExpiresAt = &codeExp
	user.EmailVerificationSentAt = &now

	if s.Comms != nil {
		s.Comms.SendVerification(ctx, user)
	}
	l.Info("verification_resent", "user_id", user.ID)
	return nil
}

// VerifyByToken completes the link-based flow. The link is valid for 24
// hours from the send time.
func (s *AuthService) VerifyByToken(ctx context.Context, token string) error {
	l := logging.FromContext(ctx).With("svc", "auth.verify_email")

	if token == "" {
		return fmt.Errorf("%w: verification token required", ErrValidation)
	}

	user, err := s.Repo.UnverifiedUserByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidVerificationToken
		}
		return err
	}

	if user.EmailVerificationSentAt == nil ||
		time.Now().UTC().After(user.EmailVerificationSentAt.Add(linkTokenTTL)) {
		return ErrInvalidVerificationToken
	}

	if err := s.markVerified(ctx, user); err != nil {
		return err
	}
	l.Info("email_verified", "user_id", user.ID, "flow", "token")
	return nil
}

// VerifyByCode completes the code-based flow and performs an implicit
// login: the caller gets a minted token so onboarding is one round trip.
func (s *AuthService) VerifyByCode(ctx context.Context, email, code string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.verify_code")

	if email == "" || len(code) != 6 {
		return nil, fmt.Errorf("%w: email and 6-digit code are required", ErrValidation)
	}

	user, err := s.Repo.UnverifiedUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}
	if user.EmailVerificationCode == "" || user.EmailVerificationCode != code {
		l.Warn("verify_code_failed", "reason", "code mismatch", "user_id", user.ID)
		return nil, ErrInvalidCode
	}
	if user.EmailVerificationCodeExpiresAt == nil ||
		time.Now().UTC().After(*user.EmailVerificationCodeExpiresAt) {
		l.Warn("verify_code_failed", "reason", "code expired", "user_id", user.ID)
		return nil, ErrCodeExpired
	}

	if err := s.markVerified(ctx, user); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	touchActivity(user, now)
	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	userAbilities, err := s.resolveAbilities(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	plain, token, err := s.Mint(ctx, user, defaultTokenName, userAbilities)
	if err != nil {
		return nil, err
	}

	l.Info("email_verified", "user_id", user.ID, "flow", "code")
	return &LoginResult{
		User:      user,
		Token:     plain,
		Abilities: userAbilities,
		ExpiresAt: *token.ExpiresAt,
	}, nil
}

// markVerified transitions the account to verified, clearing every
// challenge field in one write, then fires the welcome notifications.
func (s *AuthService) markVerified(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	err := s.Repo.UpdateUserFields(ctx, user.ID, map[string]interface{}{
		"email_verified_at":                  now,
		"email_verification_token":           nil,
		"email_verification_code":            nil,
		"email_verification_code_expires_at": nil,
		"email_verification_sent_at":         nil,
	})
	if err != nil {
		return err
	}

	user.EmailVerifiedAt = &now
	user.EmailVerificationToken = ""
	user.EmailVerificationCode = ""
	user.EmailVerificationCodeExpiresAt = nil
	user.EmailVerificationSentAt = nil

	if s.Comms != nil {
		s.Comms.SendWelcome(ctx, user)
		s.Comms.CancelVerification(ctx, user.ID)
	}
	if s.Engagement != nil {
		s.Engagement.EmailVerified(ctx, user.ID)
	}
	if s.Events != nil {
		s.Events.Publish(ctx, "email_verified", user.ID, nil)
	}
	return nil
}

// VerificationStatus reports whether an account's email is verified.
func (s *AuthService) VerificationStatus(ctx context.Context, userID uint) (bool, *time.Time, error) {
	user, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, ErrNotFound
		}
		return false, nil, err
	}
	return user.EmailVerifiedAt != nil, user.EmailVerifiedAt, nil
}
