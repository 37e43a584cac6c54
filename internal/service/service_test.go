package service

import (
	"context"
	"testing"
	"time"

	"github.com/fitnease/fitnease-auth/internal/config"
	"github.com/fitnease/fitnease-auth/internal/models"
	"github.com/fitnease/fitnease-auth/internal/repo"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to connect to in-memory db")
	require.NoError(t, config.Migrate(db), "failed to migrate tables")
	return db
}

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	return &AuthService{
		Repo:       repo.New(newTestDB(t)),
		BcryptCost: 4, // minimum cost keeps the suite fast
	}
}

func registerRequest(username, email string) RegisterRequest {
	return RegisterRequest{
		Username:  username,
		Email:     email,
		Password:  "password123",
		FirstName: "Test",
		LastName:  "User",
		Age:       30,
	}
}

func registerUser(t *testing.T, svc *AuthService, username, email string) *models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), registerRequest(username, email))
	require.NoError(t, err)
	return user
}

func verifyUser(t *testing.T, svc *AuthService, user *models.User) {
	t.Helper()
	now := time.Now().UTC()
	err := svc.Repo.UpdateUserFields(context.Background(), user.ID, map[string]interface{}{
		"email_verified_at":                  now,
		"email_verification_token":           nil,
		"email_verification_code":            nil,
		"email_verification_code_expires_at": nil,
		"email_verification_sent_at":         nil,
	})
	require.NoError(t, err)
}

func createRole(t *testing.T, r *repo.GormRepo, name string) *models.Role {
	t.Helper()
	role := &models.Role{Name: name, IsActive: true}
	require.NoError(t, r.CreateRole(context.Background(), role))
	return role
}
