package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jcdigital/lms-grading-api/internal/models"
)

// ReviewLogFilter narrows review log queries.
type ReviewLogFilter struct {
	EnrollmentID *uint
	ActorID      *uint
	Action       string
	Limit        int
}

// ReviewLogRepository persists and lists review audit entries.
type ReviewLogRepository interface {
	Create(ctx context.Context, entry *models.ReviewLog) error
	List(ctx context.Context, filter ReviewLogFilter) ([]models.ReviewLog, error)
}

type reviewLogRepository struct {
	db *gorm.DB
}

// NewReviewLogRepository instantiates the repository.
func NewReviewLogRepository(db *gorm.DB) ReviewLogRepository {
	return &reviewLogRepository{db: db}
}

func (r *reviewLogRepository) Create(ctx context.Context, entry *models.ReviewLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *reviewLogRepository) List(ctx context.Context, filter ReviewLogFilter) ([]models.ReviewLog, error) {
	query := r.db.WithContext(ctx).Model(&models.ReviewLog{})

	if filter.EnrollmentID != nil {
		query = query.Where("enrollment_id = ?", *filter.EnrollmentID)
	}
	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var entries []models.ReviewLog
	if err := query.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}
