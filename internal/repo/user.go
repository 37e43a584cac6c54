package repo

import (
	"context"
	"errors"
	"time"

	"github.com/fitnease/fitnease-auth/internal/models"
	"gorm.io/gorm"
)

var ErrUserAlreadyExist = errors.New("user already exist")

// CreateUser inserts a new account. The unique indexes on username and email
// back the pre-check, so a racing duplicate surfaces as the same error.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", u.Username, u.Email).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUserAlreadyExist
	}
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExist
		}
		return err
	}
	return nil
}

func (r *GormRepo) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("user_id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UnverifiedUserByToken finds the account holding an outstanding link-flow
// challenge token.
func (r *GormRepo) UnverifiedUserByToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Where("email_verification_token = ? AND email_verified_at IS NULL", token).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) UnverifiedUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Where("email = ? AND email_verified_at IS NULL", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) SaveUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Save(u).Error
}

// UpdateUserFields applies a partial update. The map form is used where nil
// values must reach the store (clearing challenge fields).
func (r *GormRepo) UpdateUserFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", id).
		Updates(fields).Error
}

// DeleteUser removes the account and cascades to its tokens, role
// assignments, preferences and assessments.
func (r *GormRepo) DeleteUser(ctx context.Context, id uint) (int64, error) {
	var affected int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.AccessToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.UserPreference{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.FitnessAssessment{}).Error; err != nil {
			return err
		}
		result := tx.Where("user_id = ?", id).Delete(&models.User{})
		affected = result.RowsAffected
		return result.Error
	})
	return affected, err
}

type UserFilter struct {
	Search        string
	IsActive      *bool
	EmailVerified *bool
	Limit         int
	Offset        int
}

func (r *GormRepo) ListUsers(ctx context.Context, f UserFilter) ([]models.User, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.User{})
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("username LIKE ? OR email LIKE ? OR first_name LIKE ? OR last_name LIKE ?",
			like, like, like, like)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.EmailVerified != nil {
		if *f.EmailVerified {
			q = q.Where("email_verified_at IS NOT NULL")
		} else {
			q = q.Where("email_verified_at IS NULL")
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	if err := q.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *GormRepo) BulkUpdateUsers(ctx context.Context, ids []uint, updates map[string]interface{}) (int64, error) {
	result := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("user_id IN ?", ids).
		Updates(updates)
	return result.RowsAffected, result.Error
}

type UserStats struct {
	TotalUsers          int64 `json:"total_users"`
	ActiveUsers         int64 `json:"active_users"`
	VerifiedUsers       int64 `json:"verified_users"`
	OnboardedUsers      int64 `json:"onboarded_users"`
	RecentRegistrations int64 `json:"recent_registrations"`
}

func (r *GormRepo) CountUserStats(ctx context.Context, now time.Time) (*UserStats, error) {
	stats := &UserStats{}
	db := r.DB.WithContext(ctx).Model(&models.User{})
	if err := db.Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	counts := []struct {
		cond string
		args []interface{}
		dst  *int64
	}{
		{"is_active = ?", []interface{}{true}, &stats.ActiveUsers},
		{"email_verified_at IS NOT NULL", nil, &stats.VerifiedUsers},
		{"onboarding_completed = ?", []interface{}{true}, &stats.OnboardedUsers},
		{"created_at >= ?", []interface{}{now.AddDate(0, 0, -30)}, &stats.RecentRegistrations},
	}
	for _, c := range counts {
		q := r.DB.WithContext(ctx).Model(&models.User{}).Where(c.cond, c.args...)
		if err := q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return stats, nil
}
