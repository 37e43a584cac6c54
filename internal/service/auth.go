package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/fitnease/fitnease-auth/internal/abilities"
	"github.com/fitnease/fitnease-auth/internal/hash"
	"github.com/fitnease/fitnease-auth/internal/models"
	"github.com/fitnease/fitnease-auth/internal/repo"
	"github.com/fitnease/fitnease-auth/pkg/logging"
	"gorm.io/gorm"
)

const (
	tokenTTL         = 365 * 24 * time.Hour
	codeTTL          = 15 * time.Minute
	linkTokenTTL     = 24 * time.Hour
	resendCooldown   = 5 * time.Minute
	defaultTokenName = "fitnease-mobile"
)

// Comms is the email-delivery collaborator. All methods are fire-and-forget.
type Comms interface {
	SendVerification(ctx context.Context, user *models.User)
	SendWelcome(ctx context.Context, user *models.User)
	CancelVerification(ctx context.Context, userID uint)
}

// Engagement is the activity-tracking collaborator. Fire-and-forget.
type Engagement interface {
	UserRegistered(ctx context.Context, user *models.User)
	EmailVerified(ctx context.Context, userID uint)
	UserLoggedIn(ctx context.Context, userID uint)
}

// Events publishes lifecycle events to the message broker. Fire-and-forget.
type Events interface {
	Publish(ctx context.Context, eventType string, userID uint, data map[string]interface{})
}

// Directory maintains the admin search index. Best-effort.
type Directory interface {
	Index(ctx context.Context, user *models.User)
	Delete(ctx context.Context, userID uint)
	Search(ctx context.Context, query string, from, size int) (int64, []uint, error)
}

type AuthService struct {
	Repo       *repo.GormRepo
	BcryptCost int

	Comms      Comms
	Engagement Engagement
	Events     Events
	Directory  Directory
}

type RegisterRequest struct {
	Username               string `json:"username"`
	Email                  string `json:"email"`
	Password               string `json:"password"`
	FirstName              string `json:"first_name"`
	LastName               string `json:"last_name"`
	Age                    int    `json:"age"`
	Gender                 string `json:"gender"`
	PhoneNumber            string `json:"phone_number"`
	ActivityLevel          string `json:"activity_level"`
	MedicalConditions      string `json:"medical_conditions"`
	WorkoutExperienceYears int    `json:"workout_experience_years"`
	TimeConstraintsMinutes int    `json:"time_constraints_minutes"`
}

type LoginResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	Abilities []string     `json:"abilities"`
	ExpiresAt time.Time    `json:"expires_at"`
}

var validGenders = map[string]bool{"": true, "male": true, "female": true, "other": true}
var validActivityLevels = map[string]bool{
	"": true, "sedentary": true, "lightly_active": true,
	"moderately_active": true, "very_active": true,
}

func (req *RegisterRequest) validate() error {
	switch {
	case req.Username == "":
		return fmt.Errorf("%w: username is required", ErrValidation)
	case req.Email == "":
		return fmt.Errorf("%w: email is required", ErrValidation)
	case req.FirstName == "" || req.LastName == "":
		return fmt.Errorf("%w: first_name and last_name are required", ErrValidation)
	case len(req.Password) < 8:
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	case req.Age < 18 || req.Age > 100:
		return fmt.Errorf("%w: age must be between 18 and 100", ErrValidation)
	case !validGenders[req.Gender]:
		return fmt.Errorf("%w: invalid gender", ErrValidation)
	case !validActivityLevels[req.ActivityLevel]:
		return fmt.Errorf("%w: invalid activity_level", ErrValidation)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fmt.Errorf("%w: invalid email", ErrValidation)
	}
	return nil
}

// Register creates the account with an outstanding verification challenge
// and dispatches the verification email plus registration events.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if err := req.validate(); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(req.Password, s.BcryptCost)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	token, code, now, err := newChallenge()
	if err != nil {
		return nil, err
	}
	codeExp := now.Add(codeTTL)

	activityLevel := req.ActivityLevel
	if activityLevel == "" {
		activityLevel = "sedentary"
	}
	timeConstraints := req.TimeConstraintsMinutes
	if timeConstraints == 0 {
		timeConstraints = 20
	}

	user := &models.User{
		Username:               req.Username,
		Email:                  req.Email,
		PasswordHash:           pwHash,
		FirstName:              req.FirstName,
		LastName:               req.LastName,
		Age:                    req.Age,
		Gender:                 req.Gender,
		PhoneNumber:            req.PhoneNumber,
		ActivityLevel:          activityLevel,
		MedicalConditions:      req.MedicalConditions,
		WorkoutExperienceYears: req.WorkoutExperienceYears,
		TimeConstraintsMinutes: timeConstraints,
		IsActive:               true,

		EmailVerificationToken:         token,
		EmailVerificationCode:          code,
		EmailVerificationCodeExpiresAt: &codeExp,
		EmailVerificationSentAt:        &now,
	}

	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_failed", "reason", "duplicate identity", "username", req.Username)
			return nil, ErrDuplicateIdentity
		}
		l.Error("register_error", "error", err)
		return nil, err
	}

	if s.Comms != nil {
		s.Comms.SendVerification(ctx, user)
	}
	if s.Engagement != nil {
		s.Engagement.UserRegistered(ctx, user)
	}
	if s.Events != nil {
		s.Events.Publish(ctx, "user_registered", user.ID, map[string]interface{}{
			"username": user.Username,
		})
	}
	if s.Directory != nil {
		s.Directory.Index(ctx, user)
	}

	l.Info("user_registered", "user_id", user.ID)
	return user, nil
}

// Login authenticates in fixed order: credentials, active flag, verified
// flag. The first failing check decides the error; callers learn nothing
// past it.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "credential mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		l.Warn("login_failed", "reason", "account disabled", "user_id", user.ID)
		return nil, ErrAccountDisabled
	}
	if user.EmailVerifiedAt == nil {
		l.Warn("login_failed", "reason", "email unverified", "user_id", user.ID)
		return nil, ErrEmailUnverified
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

	if s.Engagement != nil {
		s.Engagement.UserLoggedIn(ctx, user.ID)
	}
	if s.Events != nil {
		s.Events.Publish(ctx, "user_logged_in", user.ID, nil)
	}

	l.Info("login_successful", "user_id", user.ID)
	return &LoginResult{
		User:      user,
		Token:     plain,
		Abilities: userAbilities,
		ExpiresAt: *token.ExpiresAt,
	}, nil
}

// resolveAbilities snapshots the account's abilities from role membership.
// Role-permission grants are deliberately not expanded here.
func (s *AuthService) resolveAbilities(ctx context.Context, userID uint) ([]string, error) {
	roleNames, err := s.Repo.RoleNamesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return abilities.ForRoles(roleNames), nil
}

// touchActivity updates last_login and bumps the daily-activity counter at
// most once per UTC calendar day.
func touchActivity(user *models.User, now time.Time) {
	user.LastLogin = &now
	today := now.Format("2006-01-02")
	if user.LastActiveDate != today {
		user.ActiveDays++
		user.LastActiveDate = today
	}
}
