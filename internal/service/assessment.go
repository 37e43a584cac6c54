package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitnease/fitnease-auth/internal/models"
	"gorm.io/gorm"
)

var validFitnessLevels = map[string]bool{"beginner": true, "intermediate": true, "advanced": true}

type AssessmentInput struct {
	AssessmentType string    `json:"assessment_type"`
	FitnessLevel   string    `json:"fitness_level"`
	Score          float64   `json:"score"`
	Notes          string    `json:"notes"`
	AssessedAt     time.Time `json:"assessed_at"`
}

func (in *AssessmentInput) validate() error {
	if in.AssessmentType == "" {
		return fmt.Errorf("%w: assessment_type is required", ErrValidation)
	}
	if !validFitnessLevels[in.FitnessLevel] {
		return fmt.Errorf("%w: fitness_level must be beginner, intermediate or advanced", ErrValidation)
	}
	return nil
}

func (s *UserService) CreateAssessment(ctx context.Context, userID uint, in AssessmentInput) (*models.FitnessAssessment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.User(ctx, userID); err != nil {
		return nil, err
	}
	if in.AssessedAt.IsZero() {
		in.AssessedAt = time.Now().UTC()
	}
	a := &models.FitnessAssessment{
		UserID:         userID,
		AssessmentType: in.AssessmentType,
		FitnessLevel:   in.FitnessLevel,
		Score:          in.Score,
		Notes:          in.Notes,
		AssessedAt:     in.AssessedAt,
	}
	if err := s.Repo.CreateAssessment(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *UserService) Assessment(ctx context.Context, id uint) (*models.FitnessAssessment, error) {
	a, err := s.Repo.AssessmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *UserService) Assessments(ctx context.Context, userID uint) ([]models.FitnessAssessment, error) {
	if _, err := s.User(ctx, userID); err != nil {
		return nil, err
	}
	return s.Repo.AssessmentsForUser(ctx, userID)
}

func (s *UserService) UpdateAssessment(ctx context.Context, id uint, in AssessmentInput) (*models.FitnessAssessment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	a, err := s.Assessment(ctx, id)
	if err != nil {
		return nil, err
	}
	a.AssessmentType = in.AssessmentType
	a.FitnessLevel = in.FitnessLevel
	a.Score = in.Score
	a.Notes = in.Notes
	if !in.AssessedAt.IsZero() {
		a.AssessedAt = in.AssessedAt
	}
	if err := s.Repo.SaveAssessment(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *UserService) DeleteAssessment(ctx context.Context, id uint) error {
	affected, err := s.Repo.DeleteAssessment(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// FitnessLevel projects the user's level from the newest assessment. There
// is no stored column to drift; no assessments means "beginner".
func (s *UserService) FitnessLevel(ctx context.Context, userID uint) (string, error) {
	latest, err := s.Repo.LatestAssessment(ctx, userID)
	if err != nil {
		return "", err
	}
	if latest == nil {
		return "beginner", nil
	}
	return latest.FitnessLevel, nil
}
