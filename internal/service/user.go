package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitnease/fitnease-auth/internal/models"
	"github.com/fitnease/fitnease-auth/internal/repo"
	"github.com/fitnease/fitnease-auth/pkg/logging"
	"gorm.io/gorm"
)

// UserService covers the admin-facing account management surface.
type UserService struct {
	Repo      *repo.GormRepo
	Directory Directory
}

type ListUsersQuery struct {
	Search        string
	IsActive      *bool
	EmailVerified *bool
	Page          int
	PageSize      int
}

type UserPage struct {
	Users    []models.User `json:"users"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// ListUsers serves the admin listing. Free-text search goes through the
// directory index when available and falls back to SQL LIKE otherwise.
// Directory documents carry no verification state, so searches combined with
// structured filters always take the SQL path.
func (s *UserService) ListUsers(ctx context.Context, q ListUsersQuery) (*UserPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 20
	}
	offset := (q.Page - 1) * q.PageSize

	if q.Search != "" && s.Directory != nil && q.IsActive == nil && q.EmailVerified == nil {
		total, ids, err := s.Directory.Search(ctx, q.Search, offset, q.PageSize)
		if err == nil {
			users := make([]models.User, 0, len(ids))
			for _, id := range ids {
				u, err := s.Repo.UserByID(ctx, id)
				if err != nil {
					continue // index may lag behind deletes
				}
				users = append(users, *u)
			}
			return &UserPage{Users: users, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
		}
		logging.FromContext(ctx).Warn("directory_search_failed", "error", err)
	}

	users, total, err := s.Repo.ListUsers(ctx, repo.UserFilter{
		Search:        q.Search,
		IsActive:      q.IsActive,
		EmailVerified: q.EmailVerified,
		Limit:         q.PageSize,
		Offset:        offset,
	})
	if err != nil {
		return nil, err
	}
	return &UserPage{Users: users, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

func (s *UserService) User(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Repo.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

type ProfileUpdate struct {
	FirstName              *string `json:"first_name"`
	LastName               *string `json:"last_name"`
	Age                    *int    `json:"age"`
	Gender                 *string `json:"gender"`
	ActivityLevel          *string `json:"activity_level"`
	MedicalConditions      *string `json:"medical_conditions"`
	WorkoutExperienceYears *int    `json:"workout_experience_years"`
	TimeConstraintsMinutes *int    `json:"time_constraints_minutes"`
	PhoneNumber            *string `json:"phone_number"`
	ProfilePicture         *string `json:"profile_picture"`
	OnboardingCompleted    *bool   `json:"onboarding_completed"`
}

func (s *UserService) UpdateProfile(ctx context.Context, id uint, upd ProfileUpdate) (*models.User, error) {
	user, err := s.User(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Age != nil && (*upd.Age < 18 || *upd.Age > 100) {
		return nil, fmt.Errorf("%w: age must be between 18 and 100", ErrValidation)
	}
	if upd.Gender != nil && !validGenders[*upd.Gender] {
		return nil, fmt.Errorf("%w: invalid gender", ErrValidation)
	}
	if upd.ActivityLevel != nil && !validActivityLevels[*upd.ActivityLevel] {
		return nil, fmt.Errorf("%w: invalid activity_level", ErrValidation)
	}

	if upd.FirstName != nil {
		user.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		user.LastName = *upd.LastName
	}
	if upd.Age != nil {
		user.Age = *upd.Age
	}
	if upd.Gender != nil {
		user.Gender = *upd.Gender
	}
	if upd.ActivityLevel != nil {
		user.ActivityLevel = *upd.ActivityLevel
	}
	if upd.MedicalConditions != nil {
		user.MedicalConditions = *upd.MedicalConditions
	}
	if upd.WorkoutExperienceYears != nil {
		user.WorkoutExperienceYears = *upd.WorkoutExperienceYears
	}
	if upd.TimeConstraintsMinutes != nil {
		user.TimeConstraintsMinutes = *upd.TimeConstraintsMinutes
	}
	if upd.PhoneNumber != nil {
		user.PhoneNumber = *upd.PhoneNumber
	}
	if upd.ProfilePicture != nil {
		user.ProfilePicture = *upd.ProfilePicture
	}
	if upd.OnboardingCompleted != nil {
		user.OnboardingCompleted = *upd.OnboardingCompleted
		if *upd.OnboardingCompleted {
			now := time.Now().UTC()
			user.OnboardingCompletedAt = &now
		} else {
			user.OnboardingCompletedAt = nil
		}
	}

	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	if s.Directory != nil {
		s.Directory.Index(ctx, user)
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	affected, err := s.Repo.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	if s.Directory != nil {
		s.Directory.Delete(ctx, id)
	}
	return nil
}

func (s *UserService) SetActive(ctx context.Context, id uint, active bool) (*models.User, error) {
	user, err := s.User(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsActive = active
	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	if s.Directory != nil {
		s.Directory.Index(ctx, user)
	}
	return user, nil
}

func (s *UserService) SetOnboarding(ctx context.Context, id uint, completed bool) (*models.User, error) {
	user, err := s.User(ctx, id)
	if err != nil {
		return nil, err
	}
	user.OnboardingCompleted = completed
	if completed {
		now := time.Now().UTC()
		user.OnboardingCompletedAt = &now
	} else {
		user.OnboardingCompletedAt = nil
	}
	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

type BulkUpdate struct {
	UserIDs []uint `json:"user_ids"`
	// Only the fields an admin may bulk-set.
	IsActive *bool `json:"is_active"`
}

func (s *UserService) BulkUpdateUsers(ctx context.Context, upd BulkUpdate) (int64, error) {
	if len(upd.UserIDs) == 0 {
		return 0, fmt.Errorf("%w: user_ids is required", ErrValidation)
	}
	updates := map[string]interface{}{}
	if upd.IsActive != nil {
		updates["is_active"] = *upd.IsActive
	}
	if len(updates) == 0 {
		return 0, fmt.Errorf("%w: updates is required", ErrValidation)
	}
	return s.Repo.BulkUpdateUsers(ctx, upd.UserIDs, updates)
}

func (s *UserService) Stats(ctx context.Context) (*repo.UserStats, error) {
	return s.Repo.CountUserStats(ctx, time.Now().UTC())
}

func (s *UserService) Preferences(ctx context.Context, userID uint) ([]models.UserPreference, error) {
	if _, err := s.User(ctx, userID); err != nil {
		return nil, err
	}
	return s.Repo.PreferencesForUser(ctx, userID)
}

func (s *UserService) SetPreference(ctx context.Context, userID uint, key, value string) (*models.UserPreference, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: preference_key is required", ErrValidation)
	}
	if _, err := s.User(ctx, userID); err != nil {
		return nil, err
	}
	pref := &models.UserPreference{UserID: userID, Key: key, Value: value}
	if err := s.Repo.UpsertPreference(ctx, pref); err != nil {
		return nil, err
	}
	return pref, nil
}
