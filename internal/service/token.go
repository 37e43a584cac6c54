package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fitnease/fitnease-auth/internal/abilities"
	"github.com/fitnease/fitnease-auth/internal/hash"
	"github.com/fitnease/fitnease-auth/internal/models"
	"github.com/fitnease/fitnease-auth/pkg/logging"
	"github.com/fitnease/fitnease-auth/pkg/tokens"
	"gorm.io/gorm"
)

const serviceAccountEmail = "service@fitnease.local"

// Mint creates a token row holding only the secret's digest and the ability
// snapshot, and returns the one-time plaintext. The plaintext is not
// recoverable afterwards.
func (s *AuthService) Mint(ctx context.Context, user *models.User, name string, abilitySet []string) (string, *models.AccessToken, error) {
	secret, err := tokens.NewSecret()
	if err != nil {
		return "", nil, err
	}
	snapshot, err := json.Marshal(abilitySet)
	if err != nil {
		return "", nil, err
	}

	exp := time.Now().UTC().Add(tokenTTL)
	token := &models.AccessToken{
		UserID:    user.ID,
		Name:      name,
		Digest:    tokens.Sha256Hex(secret),
		Abilities: string(snapshot),
		ExpiresAt: &exp,
	}
	if err := s.Repo.CreateToken(ctx, token); err != nil {
		return "", nil, err
	}
	return tokens.Compose(token.ID, secret), token, nil
}

// Resolve maps a presented bearer credential back to its account and
// ability snapshot, touching last_used_at on the way.
func (s *AuthService) Resolve(ctx context.Context, plain string) (*models.User, *models.AccessToken, []string, error) {
	id, secret, err := tokens.Split(plain)
	if err != nil {
		return nil, nil, nil, ErrInvalidToken
	}

	token, err := s.Repo.TokenByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrInvalidToken
		}
		return nil, nil, nil, err
	}

	digest := tokens.Sha256Hex(secret)
	if subtle.ConstantTimeCompare([]byte(digest), []byte(token.Digest)) != 1 {
		return nil, nil, nil, ErrInvalidToken
	}
	if token.ExpiresAt != nil && token.ExpiresAt.Before(time.Now().UTC()) {
		return nil, nil, nil, ErrInvalidToken
	}

	user, err := s.Repo.UserByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrInvalidToken
		}
		return nil, nil, nil, err
	}

	var snapshot []string
	if err := json.Unmarshal([]byte(token.Abilities), &snapshot); err != nil {
		return nil, nil, nil, ErrInvalidToken
	}

	now := time.Now().UTC()
	if err := s.Repo.TouchToken(ctx, token.ID, now); err != nil {
		logging.FromContext(ctx).Warn("token_touch_failed", "token_id", token.ID, "error", err)
	}
	token.LastUsedAt = &now

	return user, token, snapshot, nil
}

// Refresh invalidates the presented token and mints a replacement carrying
// the same ability snapshot. Delete-then-mint; the two writes are
// independent rows, not a transaction.
func (s *AuthService) Refresh(ctx context.Context, plain string) (*LoginResult, error) {
	user, old, snapshot, err := s.Resolve(ctx, plain)
	if err != nil {
		return nil, err
	}

	if _, err := s.Repo.DeleteToken(ctx, old.ID); err != nil {
		return nil, err
	}

	newPlain, token, err := s.Mint(ctx, user, old.Name, snapshot)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:      user,
		Token:     newPlain,
		Abilities: snapshot,
		ExpiresAt: *token.ExpiresAt,
	}, nil
}

// Logout revokes the presented token only.
func (s *AuthService) Logout(ctx context.Context, tokenID uint) error {
	_, err := s.Repo.DeleteToken(ctx, tokenID)
	return err
}

// LogoutAll revokes every token the account owns.
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) (int64, error) {
	return s.Repo.DeleteAllTokens(ctx, userID)
}

func (s *AuthService) Tokens(ctx context.Context, userID uint) ([]models.AccessToken, error) {
	return s.Repo.TokensByUser(ctx, userID)
}

// RevokeUserToken deletes one of the caller's tokens by id.
func (s *AuthService) RevokeUserToken(ctx context.Context, userID, tokenID uint) error {
	affected, err := s.Repo.DeleteUserToken(ctx, userID, tokenID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// CreateServiceToken mints a token for the shared system service account,
// creating that account on first use.
func (s *AuthService) CreateServiceToken(ctx context.Context, serviceName string, abilitySet []string) (string, []string, error) {
	if serviceName == "" {
		return "", nil, fmt.Errorf("%w: service_name is required", ErrValidation)
	}
	if len(abilitySet) == 0 {
		abilitySet = abilities.ServiceDefaults
	}

	user, err := s.Repo.UserByEmail(ctx, serviceAccountEmail)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = s.createServiceAccount(ctx)
	}
	if err != nil {
		return "", nil, err
	}

	plain, _, err := s.Mint(ctx, user, serviceName, abilitySet)
	if err != nil {
		return "", nil, err
	}
	return plain, abilitySet, nil
}

func (s *AuthService) createServiceAccount(ctx context.Context) (*models.User, error) {
	secret, err := tokens.NewSecret()
	if err != nil {
		return nil, err
	}
	pwHash, err := hash.HashPassword(secret, s.BcryptCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		Username:        "system_service",
		Email:           serviceAccountEmail,
		PasswordHash:    pwHash,
		FirstName:       "System",
		LastName:        "Service",
		Age:             25,
		IsActive:        true,
		EmailVerifiedAt: &now,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
