package service

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/jcdigital/lms-grading-api/internal/dto"
	"github.com/jcdigital/lms-grading-api/internal/models"
	"github.com/jcdigital/lms-grading-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func floatPtr(v float64) *float64 { return &v }

type fakeEnrollmentRepo struct {
	mu          sync.Mutex
	enrollments map[uint]*models.Enrollment
	lockCalls   int
}

func newFakeEnrollmentRepo(enrollments ...*models.Enrollment) *fakeEnrollmentRepo {
	repo := &fakeEnrollmentRepo{enrollments: make(map[uint]*models.Enrollment)}
	for _, enrollment := range enrollments {
		repo.enrollments[enrollment.ID] = enrollment
	}
	return repo
}

func (r *fakeEnrollmentRepo) GetByID(_ context.Context, id uint) (models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	enrollment, ok := r.enrollments[id]
	if !ok {
		return models.Enrollment{}, gorm.ErrRecordNotFound
	}
	return *enrollment, nil
}

func (r *fakeEnrollmentRepo) WithLock(_ context.Context, id uint, fn func(enrollment *models.Enrollment) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lockCalls++
	enrollment, ok := r.enrollments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	working := *enrollment
	if err := fn(&working); err != nil {
		return err
	}
	*enrollment = working
	return nil
}

type fakeEvaluationRepo struct {
	byCourse map[uint][]models.Evaluation
}

func (r *fakeEvaluationRepo) ListByCourse(_ context.Context, courseID uint) ([]models.Evaluation, error) {
	return r.byCourse[courseID], nil
}

func (r *fakeEvaluationRepo) GetByID(_ context.Context, id uint) (models.Evaluation, error) {
	for _, evaluations := range r.byCourse {
		for _, evaluation := range evaluations {
			if evaluation.ID == id {
				return evaluation, nil
			}
		}
	}
	return models.Evaluation{}, gorm.ErrRecordNotFound
}

type fakeAttemptRepo struct {
	byID         map[uint]models.EvaluationAttempt
	byEnrollment map[uint][]models.EvaluationAttempt
	updated      []models.EvaluationAttempt
	listCalls    int
}

func (r *fakeAttemptRepo) GetByID(_ context.Context, id uint) (models.EvaluationAttempt, error) {
	attempt, ok := r.byID[id]
	if !ok {
		return models.EvaluationAttempt{}, gorm.ErrRecordNotFound
	}
	return attempt, nil
}

func (r *fakeAttemptRepo) ListByEnrollment(_ context.Context, enrollmentID uint) ([]models.EvaluationAttempt, error) {
	r.listCalls++
	return r.byEnrollment[enrollmentID], nil
}

func (r *fakeAttemptRepo) Update(_ context.Context, attempt *models.EvaluationAttempt) error {
	if r.byID == nil {
		r.byID = make(map[uint]models.EvaluationAttempt)
	}
	r.byID[attempt.ID] = *attempt
	r.updated = append(r.updated, *attempt)
	return nil
}

type fakeReviewRecorder struct {
	entries []ReviewEntry
}

func (r *fakeReviewRecorder) Record(_ context.Context, entry ReviewEntry) (dto.ReviewLogResponse, error) {
	r.entries = append(r.entries, entry)
	return dto.ReviewLogResponse{}, nil
}

type fakeEventPublisher struct {
	events []EnrollmentEvent
}

func (p *fakeEventPublisher) Publish(_ context.Context, event EnrollmentEvent) {
	p.events = append(p.events, event)
}

var _ repository.EnrollmentRepository = (*fakeEnrollmentRepo)(nil)
var _ repository.EvaluationRepository = (*fakeEvaluationRepo)(nil)
var _ repository.AttemptRepository = (*fakeAttemptRepo)(nil)
