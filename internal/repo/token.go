package repo

import (
	"context"
	"time"

	"github.com/fitnease/fitnease-auth/internal/models"
)

func (r *GormRepo) CreateToken(ctx context.Context, t *models.AccessToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *GormRepo) TokenByID(ctx context.Context, id uint) (*models.AccessToken, error) {
	var token models.AccessToken
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *GormRepo) TokensByUser(ctx context.Context, userID uint) ([]models.AccessToken, error) {
	var list []models.AccessToken
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *GormRepo) TouchToken(ctx context.Context, id uint, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.AccessToken{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error
}

func (r *GormRepo) DeleteToken(ctx context.Context, id uint) (int64, error) {
	result := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.AccessToken{})
	return result.RowsAffected, result.Error
}

// DeleteUserToken deletes a token only when it belongs to the given user.
func (r *GormRepo) DeleteUserToken(ctx context.Context, userID, tokenID uint) (int64, error) {
	result := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", tokenID, userID).
		Delete(&models.AccessToken{})
	return result.RowsAffected, result.Error
}

func (r *GormRepo) DeleteAllTokens(ctx context.Context, userID uint) (int64, error) {
	result := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.AccessToken{})
	return result.RowsAffected, result.Error
}
