package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jcdigital/lms-grading-api/internal/models"
)

// AttemptRepository defines data operations for evaluation attempts. The
// grading engine reads attempts for aggregation and writes only the grade
// fields the scoring flow leaves to it.
type AttemptRepository interface {
	GetByID(ctx context.Context, id uint) (models.EvaluationAttempt, error)
	ListByEnrollment(ctx context.Context, enrollmentID uint) ([]models.EvaluationAttempt, error)
	Update(ctx context.Context, attempt *models.EvaluationAttempt) error
}

type attemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository instantiates the repository.
func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) GetByID(ctx context.Context, id uint) (models.EvaluationAttempt, error) {
	var attempt models.EvaluationAttempt
	if err := r.db.WithContext(ctx).
		Preload("Evaluation").
		First(&attempt, id).Error; err != nil {
		return models.EvaluationAttempt{}, err
	}

	return attempt, nil
}

func (r *attemptRepository) ListByEnrollment(ctx context.Context, enrollmentID uint) ([]models.EvaluationAttempt, error) {
	var attempts []models.EvaluationAttempt
	if err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Order("evaluation_id ASC, attempt_number ASC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}

	return attempts, nil
}

func (r *attemptRepository) Update(ctx context.Context, attempt *models.EvaluationAttempt) error {
	return r.db.WithContext(ctx).Save(attempt).Error
}
