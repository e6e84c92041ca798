package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/jcdigital/lms-grading-api/internal/dto"
	"github.com/jcdigital/lms-grading-api/internal/grading"
	"github.com/jcdigital/lms-grading-api/internal/repository"
)

const transcriptCacheKeyFormat = "grading:transcript:%d"

// TranscriptService builds the read-only per-evaluation grade breakdown of
// an enrollment. Results are cached in Redis with a short TTL, which bounds
// how long a transcript can lag behind a fresh grading pass or decision.
type TranscriptService interface {
	GetTranscript(ctx context.Context, enrollmentID uint) (dto.TranscriptResponse, error)
	Invalidate(ctx context.Context, enrollmentID uint)
}

type transcriptService struct {
	enrollments repository.EnrollmentRepository
	evaluations repository.EvaluationRepository
	attempts    repository.AttemptRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	thresholds  grading.RequirementThresholds
	logger      zerolog.Logger
}

// NewTranscriptService constructs the transcript service. The cache client
// may be nil, in which case every call rebuilds the transcript.
func NewTranscriptService(
	enrollments repository.EnrollmentRepository,
	evaluations repository.EvaluationRepository,
	attempts repository.AttemptRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	thresholds grading.RequirementThresholds,
	logger zerolog.Logger,
) TranscriptService {
	return &transcriptService{
		enrollments: enrollments,
		evaluations: evaluations,
		attempts:    attempts,
		cache:       cache,
		cacheTTL:    cacheTTL,
		thresholds:  thresholds,
		logger:      logger.With().Str("component", "transcript_service").Logger(),
	}
}

func (s *transcriptService) GetTranscript(ctx context.Context, enrollmentID uint) (dto.TranscriptResponse, error) {
	cacheKey := fmt.Sprintf(transcriptCacheKeyFormat, enrollmentID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.TranscriptResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				return response, nil
			}
			s.logger.Warn().Str("key", cacheKey).Msg("discarding unreadable cached transcript")
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("key", cacheKey).Msg("transcript cache read failed")
		}
	}

	response, err := s.buildTranscript(ctx, enrollmentID)
	if err != nil {
		return dto.TranscriptResponse{}, err
	}

	if s.cache != nil {
		if payload, marshalErr := json.Marshal(response); marshalErr == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Str("key", cacheKey).Msg("transcript cache write failed")
			}
		}
	}

	return response, nil
}

func (s *transcriptService) Invalidate(ctx context.Context, enrollmentID uint) {
	if s.cache == nil {
		return
	}
	cacheKey := fmt.Sprintf(transcriptCacheKeyFormat, enrollmentID)
	if err := s.cache.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", cacheKey).Msg("transcript cache invalidation failed")
	}
}

func (s *transcriptService) buildTranscript(ctx context.Context, enrollmentID uint) (dto.TranscriptResponse, error) {
	enrollment, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TranscriptResponse{}, ErrEnrollmentNotFound
		}
		return dto.TranscriptResponse{}, err
	}

	evaluations, err := s.evaluations.ListByCourse(ctx, enrollment.CourseID)
	if err != nil {
		return dto.TranscriptResponse{}, err
	}

	attempts, err := s.attempts.ListByEnrollment(ctx, enrollment.ID)
	if err != nil {
		return dto.TranscriptResponse{}, err
	}

	lines := make([]dto.TranscriptEvaluation, 0, len(evaluations))
	for _, evaluation := range evaluations {
		line := dto.TranscriptEvaluation{
			EvaluationID:  evaluation.ID,
			Name:          evaluation.Name,
			Kind:          string(evaluation.Kind),
			WeightPercent: evaluation.WeightPercent,
		}
		if best := grading.BestAttempt(attempts, evaluation.ID); best != nil {
			line.AttemptID = &best.ID
			line.AttemptNumber = &best.AttemptNumber
			line.ScoreObtained = best.ScoreObtained
			line.ScoreMax = best.ScoreMax
			line.Grade = best.GradeObtained
			line.Passed = best.Passed
			line.CompletedAt = best.FinishedAt
		}
		lines = append(lines, line)
	}

	var finalGrade float64
	if enrollment.FinalGradeCalculated != nil {
		finalGrade = *enrollment.FinalGradeCalculated
	} else {
		computed, computeErr := grading.ComputeFinalGrade(evaluations, attempts)
		if computeErr != nil {
			// A misconfigured course must not masquerade as a 0.0 verdict.
			return dto.TranscriptResponse{}, computeErr
		}
		finalGrade = computed
	}
	verdict := grading.CheckRequirements(finalGrade, enrollment.AttendancePercent, s.thresholds)

	return dto.TranscriptResponse{
		EnrollmentID:          enrollment.ID,
		CourseID:              enrollment.CourseID,
		StudentID:             enrollment.StudentID,
		Status:                string(enrollment.Status),
		FinalGradeCalculated:  enrollment.FinalGradeCalculated,
		FinalGradeOfficial:    enrollment.FinalGradeOfficial,
		AttendancePercent:     enrollment.AttendancePercent,
		ManualOverride:        enrollment.ManualOverride,
		OverrideJustification: enrollment.OverrideJustification,
		ReviewedBy:            enrollment.ReviewedBy,
		ReviewedAt:            enrollment.ReviewedAt,
		Evaluations:           lines,
		Verdict:               verdict,
	}, nil
}
