package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/jcdigital/lms-grading-api/internal/dto"
	"github.com/jcdigital/lms-grading-api/internal/grading"
	"github.com/jcdigital/lms-grading-api/internal/models"
	"github.com/jcdigital/lms-grading-api/internal/repository"
)

// ErrEnrollmentNotFound indicates the enrollment was not located.
var ErrEnrollmentNotFound = errors.New("enrollment not found")

// ErrJustificationRequired indicates a manual decision that contradicts the
// automatic requirement verdict was submitted without an explanation.
var ErrJustificationRequired = errors.New("justification required")

// ApprovalService owns the approval workflow of an enrollment: the weighted
// final grade, the requirement verdict, the automatic advance into
// pending_review and the administrator's manual approve/reject decision.
type ApprovalService interface {
	ComputeFinalGrade(ctx context.Context, enrollmentID uint) (float64, error)
	CheckRequirements(ctx context.Context, enrollmentID uint) (grading.RequirementVerdict, error)
	AutoAdvance(ctx context.Context, enrollmentID uint) (dto.AutoAdvanceResponse, error)
	Approve(ctx context.Context, enrollmentID uint, actor ReviewActor, payload dto.ReviewDecisionRequest) (dto.ReviewDecisionResponse, error)
	Reject(ctx context.Context, enrollmentID uint, actor ReviewActor, payload dto.ReviewDecisionRequest) (dto.ReviewDecisionResponse, error)
}

type approvalService struct {
	enrollments repository.EnrollmentRepository
	evaluations repository.EvaluationRepository
	attempts    repository.AttemptRepository
	reviews     ReviewRecorder
	events      EnrollmentEventPublisher
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	thresholds  grading.RequirementThresholds
	logger      zerolog.Logger
	now         func() time.Time
}

// NewApprovalService constructs the approval service.
func NewApprovalService(
	enrollments repository.EnrollmentRepository,
	evaluations repository.EvaluationRepository,
	attempts repository.AttemptRepository,
	reviews ReviewRecorder,
	events EnrollmentEventPublisher,
	validate *validator.Validate,
	thresholds grading.RequirementThresholds,
	logger zerolog.Logger,
) ApprovalService {
	return &approvalService{
		enrollments: enrollments,
		evaluations: evaluations,
		attempts:    attempts,
		reviews:     reviews,
		events:      events,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		thresholds:  thresholds,
		logger:      logger.With().Str("component", "approval_service").Logger(),
		now:         time.Now,
	}
}

func (s *approvalService) ComputeFinalGrade(ctx context.Context, enrollmentID uint) (float64, error) {
	enrollment, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		return 0, s.mapNotFound(err)
	}

	evaluations, attempts, err := s.loadCourseWork(ctx, enrollment.CourseID, enrollment.ID)
	if err != nil {
		return 0, err
	}

	return grading.ComputeFinalGrade(evaluations, attempts)
}

func (s *approvalService) CheckRequirements(ctx context.Context, enrollmentID uint) (grading.RequirementVerdict, error) {
	var verdict grading.RequirementVerdict
	err := s.enrollments.WithLock(ctx, enrollmentID, func(enrollment *models.Enrollment) error {
		v, err := s.verdictLocked(ctx, enrollment)
		if err != nil {
			return err
		}
		verdict = v
		return nil
	})
	if err != nil {
		return grading.RequirementVerdict{}, s.mapNotFound(err)
	}

	return verdict, nil
}

func (s *approvalService) AutoAdvance(ctx context.Context, enrollmentID uint) (dto.AutoAdvanceResponse, error) {
	tracer := otel.Tracer("github.com/jcdigital/lms-grading-api/internal/service/approval")
	ctx, span := tracer.Start(ctx, "approval.auto_advance")
	span.SetAttributes(attribute.Int64("approval.enrollment_id", int64(enrollmentID)))
	defer span.End()

	var (
		response     dto.AutoAdvanceResponse
		transitioned bool
		event        EnrollmentEvent
	)

	err := s.enrollments.WithLock(ctx, enrollmentID, func(enrollment *models.Enrollment) error {
		evaluations, attempts, err := s.loadCourseWork(ctx, enrollment.CourseID, enrollment.ID)
		if err != nil {
			return err
		}

		finalGrade, err := grading.ComputeFinalGrade(evaluations, attempts)
		if err != nil {
			return err
		}

		verdict := grading.CheckRequirements(finalGrade, enrollment.AttendancePercent, s.thresholds)
		enrollment.FinalGradeCalculated = &finalGrade
		enrollment.MeetsApprovalRequirements = verdict.MeetsRequirements

		completed := grading.CompletedEvaluationCount(evaluations, attempts)
		if completed >= len(evaluations) && len(evaluations) > 0 && enrollment.IsReviewable() {
			enrollment.Status = models.EnrollmentStatusPendingReview
			transitioned = true
		}

		response = dto.AutoAdvanceResponse{
			FinalGrade:        finalGrade,
			MeetsRequirements: verdict.MeetsRequirements,
			Status:            string(enrollment.Status),
			Verdict:           verdict,
		}
		event = s.eventFor("enrollment.pending_review", *enrollment)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "auto_advance_failed")
		return dto.AutoAdvanceResponse{}, s.mapNotFound(err)
	}

	if transitioned && s.events != nil {
		s.events.Publish(ctx, event)
	}

	span.SetAttributes(
		attribute.Float64("approval.final_grade", response.FinalGrade),
		attribute.Bool("approval.meets_requirements", response.MeetsRequirements),
		attribute.String("approval.status", response.Status),
	)

	return response, nil
}

func (s *approvalService) Approve(ctx context.Context, enrollmentID uint, actor ReviewActor, payload dto.ReviewDecisionRequest) (dto.ReviewDecisionResponse, error) {
	return s.decide(ctx, enrollmentID, actor, payload, true)
}

func (s *approvalService) Reject(ctx context.Context, enrollmentID uint, actor ReviewActor, payload dto.ReviewDecisionRequest) (dto.ReviewDecisionResponse, error) {
	return s.decide(ctx, enrollmentID, actor, payload, false)
}

// decide applies a manual administrator decision. Approving an enrollment
// that fails the automatic requirements, or rejecting one that meets them,
// is an override and demands a justification. The decision is deliberately
// not gated on the enrollment having reached pending_review first.
func (s *approvalService) decide(ctx context.Context, enrollmentID uint, actor ReviewActor, payload dto.ReviewDecisionRequest, approve bool) (dto.ReviewDecisionResponse, error) {
	tracer := otel.Tracer("github.com/jcdigital/lms-grading-api/internal/service/approval")
	ctx, span := tracer.Start(ctx, "approval.decide")
	span.SetAttributes(
		attribute.Int64("approval.enrollment_id", int64(enrollmentID)),
		attribute.Int64("approval.actor_id", int64(actor.ID)),
		attribute.Bool("approval.approve", approve),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ReviewDecisionResponse{}, err
	}

	justification := strings.TrimSpace(s.sanitizer.Sanitize(payload.Justification))

	var (
		response dto.ReviewDecisionResponse
		override bool
		event    EnrollmentEvent
	)

	err := s.enrollments.WithLock(ctx, enrollmentID, func(enrollment *models.Enrollment) error {
		verdict, err := s.verdictLocked(ctx, enrollment)
		if err != nil {
			return err
		}

		if approve && !verdict.MeetsRequirements && justification == "" {
			return fmt.Errorf("%w: approving an enrollment that does not meet the automatic requirements needs an explanation", ErrJustificationRequired)
		}
		if !approve && verdict.MeetsRequirements && justification == "" {
			return fmt.Errorf("%w: rejecting an enrollment that meets the automatic requirements needs an explanation", ErrJustificationRequired)
		}

		if approve {
			enrollment.Status = models.EnrollmentStatusApproved
			override = !verdict.MeetsRequirements
		} else {
			enrollment.Status = models.EnrollmentStatusRejected
			override = verdict.MeetsRequirements
		}

		reviewedAt := s.now().UTC()
		enrollment.FinalGradeOfficial = enrollment.FinalGradeCalculated
		enrollment.ManualOverride = override
		enrollment.OverrideJustification = justification
		enrollment.ReviewedBy = &actor.ID
		enrollment.ReviewedAt = &reviewedAt

		response = dto.ReviewDecisionResponse{
			Approved:           approve,
			ManualOverride:     override,
			FinalGradeOfficial: enrollment.FinalGradeOfficial,
			Status:             string(enrollment.Status),
			ReviewedBy:         enrollment.ReviewedBy,
			ReviewedAt:         enrollment.ReviewedAt,
		}
		event = s.eventFor("enrollment."+response.Status, *enrollment)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decision_failed")
		return dto.ReviewDecisionResponse{}, s.mapNotFound(err)
	}

	s.recordDecision(ctx, actor, enrollmentID, response)
	if s.events != nil {
		s.events.Publish(ctx, event)
	}

	span.SetAttributes(
		attribute.Bool("approval.manual_override", response.ManualOverride),
		attribute.String("approval.status", response.Status),
	)

	return response, nil
}

// verdictLocked evaluates the requirement verdict for an enrollment held
// under lock, computing and caching the final grade on first use.
func (s *approvalService) verdictLocked(ctx context.Context, enrollment *models.Enrollment) (grading.RequirementVerdict, error) {
	var finalGrade float64
	if enrollment.FinalGradeCalculated == nil {
		evaluations, attempts, err := s.loadCourseWork(ctx, enrollment.CourseID, enrollment.ID)
		if err != nil {
			return grading.RequirementVerdict{}, err
		}

		finalGrade, err = grading.ComputeFinalGrade(evaluations, attempts)
		if err != nil {
			return grading.RequirementVerdict{}, err
		}
		enrollment.FinalGradeCalculated = &finalGrade
	} else {
		finalGrade = *enrollment.FinalGradeCalculated
	}

	return grading.CheckRequirements(finalGrade, enrollment.AttendancePercent, s.thresholds), nil
}

func (s *approvalService) loadCourseWork(ctx context.Context, courseID, enrollmentID uint) ([]models.Evaluation, []models.EvaluationAttempt, error) {
	evaluations, err := s.evaluations.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}

	attempts, err := s.attempts.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, nil, err
	}

	return evaluations, attempts, nil
}

func (s *approvalService) recordDecision(ctx context.Context, actor ReviewActor, enrollmentID uint, decision dto.ReviewDecisionResponse) {
	if s.reviews == nil {
		return
	}

	action := "enrollment.approved"
	if !decision.Approved {
		action = "enrollment.rejected"
	}

	metadata := map[string]interface{}{
		"status":          decision.Status,
		"manual_override": decision.ManualOverride,
	}
	if decision.FinalGradeOfficial != nil {
		metadata["final_grade_official"] = *decision.FinalGradeOfficial
	}

	if _, err := s.reviews.Record(ctx, ReviewEntry{
		ActorID:      actor.ID,
		ActorRole:    actor.Role,
		Action:       action,
		EnrollmentID: enrollmentID,
		Metadata:     metadata,
	}); err != nil {
		s.logger.Warn().Err(err).Uint("enrollment_id", enrollmentID).Msg("failed to record review decision")
	}
}

func (s *approvalService) eventFor(eventType string, enrollment models.Enrollment) EnrollmentEvent {
	return EnrollmentEvent{
		Type:         eventType,
		EnrollmentID: enrollment.ID,
		CourseID:     enrollment.CourseID,
		StudentID:    enrollment.StudentID,
		Status:       string(enrollment.Status),
		FinalGrade:   enrollment.FinalGradeCalculated,
	}
}

func (s *approvalService) mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrEnrollmentNotFound
	}
	return err
}
