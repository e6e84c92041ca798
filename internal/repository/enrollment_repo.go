package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jcdigital/lms-grading-api/internal/models"
)

// EnrollmentRepository defines data operations for enrollments. All grading
// writes go through WithLock so concurrent recomputations or racing
// administrator decisions on the same enrollment serialize on the row.
type EnrollmentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Enrollment, error)
	// WithLock runs fn inside a transaction holding an exclusive row lock on
	// the enrollment and persists the (possibly mutated) row when fn
	// returns nil. An error from fn rolls the transaction back.
	WithLock(ctx context.Context, id uint, fn func(enrollment *models.Enrollment) error) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository instantiates the repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) GetByID(ctx context.Context, id uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).
		Preload("Course").
		First(&enrollment, id).Error; err != nil {
		return models.Enrollment{}, err
	}

	return enrollment, nil
}

func (r *enrollmentRepository) WithLock(ctx context.Context, id uint, fn func(enrollment *models.Enrollment) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		// SQLite has no SELECT ... FOR UPDATE; its transactions already
		// serialize writers.
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var enrollment models.Enrollment
		if err := query.First(&enrollment, id).Error; err != nil {
			return err
		}

		if err := fn(&enrollment); err != nil {
			return err
		}

		return tx.Save(&enrollment).Error
	})
}
