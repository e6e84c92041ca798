package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/jcdigital/lms-grading-api/internal/dto"
	"github.com/jcdigital/lms-grading-api/internal/grading"
	"github.com/jcdigital/lms-grading-api/internal/repository"
)

// ErrAttemptNotFound indicates the evaluation attempt was not located.
var ErrAttemptNotFound = errors.New("attempt not found")

// ErrAttemptNotCompleted indicates the attempt is not in a gradable state.
var ErrAttemptNotCompleted = errors.New("attempt is not completed")

// ErrScoreMissing indicates the attempt has no score pair to grade.
var ErrScoreMissing = errors.New("attempt has no recorded score")

// GradingService converts attempt scores into grades and validates a
// course's evaluation weight configuration.
type GradingService interface {
	GradeAttempt(ctx context.Context, attemptID uint, payload dto.GradeAttemptRequest) (dto.AttemptGradeResponse, error)
	ValidateCourseWeights(ctx context.Context, courseID uint) (dto.WeightValidationResponse, error)
}

type gradingService struct {
	attempts    repository.AttemptRepository
	evaluations repository.EvaluationRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewGradingService constructs the grading service.
func NewGradingService(
	attempts repository.AttemptRepository,
	evaluations repository.EvaluationRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) GradingService {
	return &gradingService{
		attempts:    attempts,
		evaluations: evaluations,
		validator:   validate,
		logger:      logger.With().Str("component", "grading_service").Logger(),
	}
}

func (s *gradingService) GradeAttempt(ctx context.Context, attemptID uint, payload dto.GradeAttemptRequest) (dto.AttemptGradeResponse, error) {
	tracer := otel.Tracer("github.com/jcdigital/lms-grading-api/internal/service/grading")
	ctx, span := tracer.Start(ctx, "grading.grade_attempt")
	span.SetAttributes(attribute.Int64("grading.attempt_id", int64(attemptID)))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AttemptGradeResponse{}, err
	}

	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttemptGradeResponse{}, ErrAttemptNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "load_failed")
		return dto.AttemptGradeResponse{}, err
	}

	if !attempt.IsGradable() {
		if attempt.ScoreObtained == nil || attempt.ScoreMax == nil {
			return dto.AttemptGradeResponse{}, ErrScoreMissing
		}
		return dto.AttemptGradeResponse{}, ErrAttemptNotCompleted
	}

	scale := grading.ScaleForEvaluation(attempt.Evaluation)
	if payload.PassThresholdPercent != nil {
		scale.PassThresholdPercent = *payload.PassThresholdPercent
	}
	if payload.GradeMin != nil {
		scale.GradeMin = *payload.GradeMin
	}
	if payload.GradeMax != nil {
		scale.GradeMax = *payload.GradeMax
	}
	if payload.GradePass != nil {
		scale.GradePass = *payload.GradePass
	}

	grade := scale.ScoreToGrade(*attempt.ScoreObtained, *attempt.ScoreMax)
	passed := grade >= scale.GradePass

	attempt.GradeObtained = &grade
	attempt.Passed = &passed
	if err := s.attempts.Update(ctx, &attempt); err != nil {
		s.logger.Error().Err(err).Uint("attempt_id", attemptID).Msg("failed to persist attempt grade")
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist_failed")
		return dto.AttemptGradeResponse{}, err
	}

	var percentage float64
	if *attempt.ScoreMax > 0 {
		percentage = *attempt.ScoreObtained / *attempt.ScoreMax * 100
	}

	span.SetAttributes(
		attribute.Float64("grading.grade", grade),
		attribute.Bool("grading.passed", passed),
	)

	return dto.AttemptGradeResponse{
		AttemptID:     attempt.ID,
		AttemptNumber: attempt.AttemptNumber,
		ScoreObtained: *attempt.ScoreObtained,
		ScoreMax:      *attempt.ScoreMax,
		Percentage:    percentage,
		Grade:         grade,
		Passed:        passed,
		Scale:         dto.NewScaleUsed(scale),
	}, nil
}

func (s *gradingService) ValidateCourseWeights(ctx context.Context, courseID uint) (dto.WeightValidationResponse, error) {
	evaluations, err := s.evaluations.ListByCourse(ctx, courseID)
	if err != nil {
		return dto.WeightValidationResponse{}, err
	}

	report, err := grading.ValidateWeights(evaluations)
	if err != nil && !grading.IsConfigurationError(err) {
		return dto.WeightValidationResponse{}, err
	}

	return dto.WeightValidationResponse{
		Valid:       err == nil,
		Sum:         report.Sum,
		Count:       report.Count,
		Evaluations: report.Evaluations,
	}, nil
}
