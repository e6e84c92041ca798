package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jcdigital/lms-grading-api/internal/dto"
	"github.com/jcdigital/lms-grading-api/internal/models"
	"github.com/jcdigital/lms-grading-api/internal/repository"
)

// ReviewActor represents the authenticated administrator or instructor
// performing a grading action.
type ReviewActor struct {
	ID   uint
	Role string
}

// ReviewEntry captures the details required to persist one audit entry.
type ReviewEntry struct {
	ActorID      uint
	ActorRole    string
	Action       string
	EnrollmentID uint
	Metadata     map[string]interface{}
}

// ReviewRecorder defines behaviour for recording review audit entries.
type ReviewRecorder interface {
	Record(ctx context.Context, entry ReviewEntry) (dto.ReviewLogResponse, error)
}

// ReviewService exposes methods to persist and query the review audit log.
type ReviewService interface {
	ReviewRecorder
	ListByEnrollment(ctx context.Context, enrollmentID uint, limit int) ([]dto.ReviewLogResponse, error)
}

type reviewService struct {
	repo   repository.ReviewLogRepository
	logger zerolog.Logger
}

// NewReviewService constructs the review audit service.
func NewReviewService(repo repository.ReviewLogRepository, logger zerolog.Logger) ReviewService {
	return &reviewService{
		repo:   repo,
		logger: logger.With().Str("component", "review_service").Logger(),
	}
}

func (s *reviewService) Record(ctx context.Context, entry ReviewEntry) (dto.ReviewLogResponse, error) {
	if strings.TrimSpace(entry.Action) == "" {
		return dto.ReviewLogResponse{}, fmt.Errorf("action is required")
	}
	if entry.EnrollmentID == 0 {
		return dto.ReviewLogResponse{}, fmt.Errorf("enrollment id is required")
	}

	model := models.ReviewLog{
		ActorID:      entry.ActorID,
		ActorRole:    strings.ToLower(strings.TrimSpace(entry.ActorRole)),
		Action:       strings.ToLower(strings.TrimSpace(entry.Action)),
		EnrollmentID: entry.EnrollmentID,
		Metadata:     entry.Metadata,
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Uint("enrollment_id", entry.EnrollmentID).Msg("failed to persist review log")
		return dto.ReviewLogResponse{}, err
	}

	return dto.NewReviewLogResponse(model), nil
}

func (s *reviewService) ListByEnrollment(ctx context.Context, enrollmentID uint, limit int) ([]dto.ReviewLogResponse, error) {
	entries, err := s.repo.List(ctx, repository.ReviewLogFilter{
		EnrollmentID: &enrollmentID,
		Limit:        limit,
	})
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ReviewLogResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewReviewLogResponse(entry))
	}

	return responses, nil
}
