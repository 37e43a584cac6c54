package repo

import (
	"context"
	"errors"

	"github.com/fitnease/fitnease-auth/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *GormRepo) PreferencesForUser(ctx context.Context, userID uint) ([]models.UserPreference, error) {
	var prefs []models.UserPreference
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("preference_key").
		Find(&prefs).Error
	return prefs, err
}

func (r *GormRepo) UpsertPreference(ctx context.Context, p *models.UserPreference) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "preference_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"preference_value", "updated_at"}),
	}).Create(p).Error
}

func (r *GormRepo) CreateAssessment(ctx context.Context, a *models.FitnessAssessment) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *GormRepo) AssessmentByID(ctx context.Context, id uint) (*models.FitnessAssessment, error) {
	var a models.FitnessAssessment
	if err := r.DB.WithContext(ctx).Where("assessment_id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormRepo) AssessmentsForUser(ctx context.Context, userID uint) ([]models.FitnessAssessment, error) {
	var list []models.FitnessAssessment
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("assessed_at DESC").
		Find(&list).Error
	return list, err
}

func (r *GormRepo) SaveAssessment(ctx context.Context, a *models.FitnessAssessment) error {
	return r.DB.WithContext(ctx).Save(a).Error
}

func (r *GormRepo) DeleteAssessment(ctx context.Context, id uint) (int64, error) {
	result := r.DB.WithContext(ctx).
		Where("assessment_id = ?", id).
		Delete(&models.FitnessAssessment{})
	return result.RowsAffected, result.Error
}

// LatestAssessment returns the newest assessment for a user, or nil when the
// user has none. The user's fitness level is projected from this row.
func (r *GormRepo) LatestAssessment(ctx context.Context, userID uint) (*models.FitnessAssessment, error) {
	var a models.FitnessAssessment
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("assessed_at DESC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
