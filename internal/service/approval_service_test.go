package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/jcdigital/lms-grading-api/internal/dto"
	"github.com/jcdigital/lms-grading-api/internal/grading"
	"github.com/jcdigital/lms-grading-api/internal/models"
)

type approvalFixture struct {
	enrollments *fakeEnrollmentRepo
	evaluations *fakeEvaluationRepo
	attempts    *fakeAttemptRepo
	recorder    *fakeReviewRecorder
	publisher   *fakeEventPublisher
	service     ApprovalService
}

func newApprovalFixture(enrollment *models.Enrollment, evaluations []models.Evaluation, attempts []models.EvaluationAttempt) *approvalFixture {
	f := &approvalFixture{
		enrollments: newFakeEnrollmentRepo(enrollment),
		evaluations: &fakeEvaluationRepo{byCourse: map[uint][]models.Evaluation{enrollment.CourseID: evaluations}},
		attempts:    &fakeAttemptRepo{byEnrollment: map[uint][]models.EvaluationAttempt{enrollment.ID: attempts}},
		recorder:    &fakeReviewRecorder{},
		publisher:   &fakeEventPublisher{},
	}
	f.service = NewApprovalService(
		f.enrollments, f.evaluations, f.attempts,
		f.recorder, f.publisher,
		validator.New(), grading.DefaultThresholds(), testLogger(),
	)
	return f
}

func twoEvaluationCourse() []models.Evaluation {
	return []models.Evaluation{
		{ID: 1, CourseID: 10, Name: "Midterm", Kind: models.EvaluationKindExam, WeightPercent: 40},
		{ID: 2, CourseID: 10, Name: "Final Project", Kind: models.EvaluationKindProject, WeightPercent: 60},
	}
}

func completedAttempt(id, evaluationID uint, grade float64) models.EvaluationAttempt {
	passed := grade >= 4.0
	return models.EvaluationAttempt{
		ID:            id,
		EvaluationID:  evaluationID,
		EnrollmentID:  100,
		AttemptNumber: 1,
		Status:        models.AttemptStatusCompleted,
		GradeObtained: floatPtr(grade),
		Passed:        &passed,
	}
}

func TestComputeFinalGradeWeightedAggregation(t *testing.T) {
	enrollment := &models.Enrollment{ID: 100, CourseID: 10, StudentID: 7, Status: models.EnrollmentStatusInProgress}
	f := newApprovalFixture(enrollment, twoEvaluationCourse(), []models.EvaluationAttempt{
		completedAttempt(1, 1, 5.0),
		completedAttempt(2, 2, 6.0),
	})

	grade, err := f.service.ComputeFinalGrade(context.Background(), 100)
	require.NoError(t, err)
	require.InDelta(t, 5.6, grade, 1e-9)
}

func TestComputeFinalGradeUnknownEnrollment(t *testing.T) {
	enrollment := &models.Enrollment{ID: 100, CourseID: 10, Status: models.EnrollmentStatusInProgress}
	f := newApprovalFixture(enrollment, twoEvaluationCourse(), nil)

	_, err := f.service.ComputeFinalGrade(context.Background(), 999)
	require.ErrorIs(t, err, ErrEnrollmentNotFound)
}

func TestComputeFinalGradeInvalidWeights(t *testing.T) {
	enrollment := &models.Enrollment{ID: 100, CourseID: 10, Status: models.EnrollmentStatusInProgress}
	evaluations := []models.Evaluation{
		{ID: 1, CourseID: 10, WeightPercent: 40},
		{ID: 2, CourseID: 10, WeightPercent: 50},
	}
	f := newApprovalFixture(enrollment, evaluations, nil)

	_, err := f.service.ComputeFinalGrade(context.Background(), 100)
	require.True(t, grading.IsConfigurationError(err))
}

func TestCheckRequirementsCachesFinalGrade(t *testing.T) {
	enrollment := &models.Enrollment{ID: 100, CourseID: 10, Status: models.EnrollmentStatusInProgress, AttendancePercent: 80}
	f := newApprovalFixture(enrollment, twoEvaluationCourse(), []models.EvaluationAttempt{
		completedAttempt(1, 1, 5.0),
		completedAttempt(2, 2, 6.0),
	})

	verdict, err := f.service.CheckRequirements(context.Background(), 100)
	require.NoError(t, err)
	require.True(t, verdict.MeetsRequirements)
	require.InDelta(t, 5.6, verdict.FinalGrade, 1e-9)

	stored, err := f.enrollments.GetByID(context.Background(), 100)
	require.NoError(t, err)
	require.NotNil(t, stored.FinalGradeCalculated)
	require.InDelta(t, 5.6, *stored.FinalGradeCalculated, 1e-9)

	// Subsequent checks read the cached grade instead of recomputing.
	f.attempts.byEnrollment[100] = nil
	verdict, err = f.service.CheckRequirements(context.Background(), 100)
	require.NoError(t, err)
	require.InDelta(t, 5.6, verdict.FinalGrade, 1e-9)
}

func TestAutoAdvanceTransitionsWhenAllEvaluationsAttempted(t *testing.T) {
	enrollment := &models.Enrollment{ID: 100, CourseID: 10, StudentID: 7, Status: models.EnrollmentStatusInProgress, AttendancePercent: 90}
	f := newApprovalFixture(enrollment, twoEvaluationCourse(), []models.EvaluationAttempt{
		completedAttempt(1, 1, 5.0),
		completedAttempt(2, 2, 6.0),
	})

	result, err := f.service.AutoAdvance(context.Background(), 100)
	require.NoError(t, err)
	require.InDelta(t, 5.6, result.FinalGrade, 1e-9)
	require.True(t, result.MeetsRequirements)
	require.Equal(t, string(models.EnrollmentStatusPendingReview), result.Status)

	stored, err := f.enrollments.GetByID(context.Background(), 100)
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusPendingReview, stored.Status)
	require.True(t, stored.MeetsApprovalRequirements)

	require.Len(t, f.publisher.events, 1)
	require.Equal(t, "enrollment.pending_review", f.publisher.events[0].Type)
	require.Equal(t, uint(100), f.publisher.events[0].EnrollmentID)
}

func TestAutoAdvanceStaysWithPendingEvaluations(t *testing.T) {
	enrollment := &models.Enrollment{ID: 100, CourseID: 10, Status: models.EnrollmentStatusInProgress, AttendancePercent: 90}
	f := newApprovalFixture(enrollment, twoEvaluationCourse(), []models.EvaluationAttempt{
		completedAttempt(1, 1, 5.0),
	})

	result, err := f.service.AutoAdvance(context.Background(), 100)
	require.NoError(t, err)
	// Only the 40% evaluation counts; the unattempted one contributes nothing.
	require.InDelta(t, 2.0, result.FinalGrade, 1e-9)
	require.False(t, result.MeetsRequirements)
	require.Equal(t, string(models.EnrollmentStatusInProgress), result.Status)
	require.Empty(t, f.publisher.events)
}

func TestAutoAdvanceIsIdempotent(t *testing.T) {
	enrollment := &models.Enrollment{ID: 100, CourseID: 10, Status: models.EnrollmentStatusCompleted, AttendancePercent: 90}
	f := newApprovalFixture(enrollment, twoEvaluationCourse(), []models.EvaluationAttempt{
		completedAttempt(1, 1, 5.0),
		completedAttempt(2, 2, 6.0),
	})

	first, err := f.service.AutoAdvance(context.Background(), 100)
	require.NoError(t, err)
	second, err := f.service.AutoAdvance(context.Background(), 100)
	require.NoError(t, err)

	require.Equal(t, first.FinalGrade, second.FinalGrade)
	require.Equal(t, string(models.EnrollmentStatusPendingReview), second.Status)
	// Only the run that performed the transition announces it.
	require.Len(t, f.publisher.events, 1)
}

func TestAutoAdvanceDoesNotTransitionFromApproved(t *testing.T) {
	enrollment := &models.Enrollment{ID: 100, CourseID: 10, Status: models.EnrollmentStatusApproved, AttendancePercent: 90}
	f := newApprovalFixture(enrollment, twoEvaluationCourse(), []models.EvaluationAttempt{
		completedAttempt(1, 1, 5.0),
		completedAttempt(2, 2, 6.0),
	})

	result, err := f.service.AutoAdvance(context.Background(), 100)
	require.NoError(t, err)
	require.Equal(t, string(models.EnrollmentStatusApproved), result.Status)
	require.InDelta(t, 5.6, result.FinalGrade, 1e-9)
	require.Empty(t, f.publisher.events)
}

func TestApproveMeetingRequirementsNeedsNoJustification(t *testing.T) {
	enrollment := &models.Enrollment{ID: 100, CourseID: 10, StudentID: 7, Status: models.EnrollmentStatusPendingReview, AttendancePercent: 90}
	f := newApprovalFixture(enrollment, twoEvaluationCourse(), []models.EvaluationAttempt{
		completedAttempt(1, 1, 5.0),
		completedAttempt(2, 2, 6.0),
	})

	actor := ReviewActor{ID: 42, Role: "admin"}
	decision, err := f.service.Approve(context.Background(), 100, actor, dto.ReviewDecisionRequest{})
	require.NoError(t, err)
	require.True(t, decision.Approved)
	require.False(t, decision.ManualOverride)
	require.Equal(t, string(models.EnrollmentStatusApproved), decision.Status)
	require.NotNil(t, decision.FinalGradeOfficial)
	require.InDelta(t, 5.6, *decision.FinalGradeOfficial, 1e-9)
	require.NotNil(t, decision.ReviewedBy)
	require.Equal(t, uint(42), *decision.ReviewedBy)
	require.NotNil(t, decision.ReviewedAt)

	require.Len(t, f.recorder.entries, 1)
	require.Equal(t, "enrollment.approved", f.recorder.entries[0].Action)
	require.Equal(t, uint(42), f.recorder.entries[0].ActorID)

	require.Len(t, f.publisher.events, 1)
	require.Equal(t, "enrollment.approved", f.publisher.events[0].Type)
}

func TestApproveAgainstVerdictRequiresJustification(t *testing.T) {
	enrollment := &models.Enrollment{ID: 100, CourseID: 10, Status: models.EnrollmentStatusPendingReview, AttendancePercent: 90}
	f := newApprovalFixture(enrollment, twoEvaluationCourse(), []models.EvaluationAttempt{
		completedAttempt(1, 1, 3.0),
		completedAttempt(2, 2, 3.5),
	})

	actor := ReviewActor{ID: 42, Role: "admin"}
	_, err := f.service.Approve(context.Background(), 100, actor, dto.ReviewDecisionRequest{})
	require.ErrorIs(t, err, ErrJustificationRequired)

	// Whitespace-only justification does not count.
	_, err = f.service.Approve(context.Background(), 100, actor, dto.ReviewDecisionRequest{Justification: "   "})
	require.ErrorIs(t, err, ErrJustificationRequired)

	stored, getErr := f.enrollments.GetByID(context.Background(), 100)
	require.NoError(t, getErr)
	require.Equal(t, models.EnrollmentStatusPendingReview, stored.Status)
	require.Empty(t, f.recorder.entries)
	require.Empty(t, f.publisher.events)
}

func TestApproveAgainstVerdictWithJustificationIsOverride(t *testing.T) {
	enrollment := &models.Enrollment{ID: 100, CourseID: 10, Status: models.EnrollmentStatusPendingReview, AttendancePercent: 90}
	f := newApprovalFixture(enrollment, twoEvaluationCourse(), []models.EvaluationAttempt{
		completedAttempt(1, 1, 3.0),
		completedAttempt(2, 2, 3.5),
	})

	actor := ReviewActor{ID: 42, Role: "admin"}
	payload := dto.ReviewDecisionRequest{Justification: "<b>Documented medical leave</b> during the final exam"}
	decision, err := f.service.Approve(context.Background(), 100, actor, payload)
	require.NoError(t, err)
	require.True(t, decision.ManualOverride)

	stored, err := f.enrollments.GetByID(context.Background(), 100)
	require.NoError(t, err)
	require.True(t, stored.ManualOverride)
	require.Equal(t, "Documented medical leave during the final exam", stored.OverrideJustification)
}

func TestRejectMeetingRequirementsRequiresJustification(t *testing.T) {
	enrollment := &models.Enrollment{ID: 100, CourseID: 10, Status: models.EnrollmentStatusPendingReview, AttendancePercent: 90}
	f := newApprovalFixture(enrollment, twoEvaluationCourse(), []models.EvaluationAttempt{
		completedAttempt(1, 1, 5.0),
		completedAttempt(2, 2, 6.0),
	})

	actor := ReviewActor{ID: 42, Role: "admin"}
	_, err := f.service.Reject(context.Background(), 100, actor, dto.ReviewDecisionRequest{})
	require.ErrorIs(t, err, ErrJustificationRequired)

	decision, err := f.service.Reject(context.Background(), 100, actor, dto.ReviewDecisionRequest{Justification: "Plagiarism confirmed on the final project"})
	require.NoError(t, err)
	require.False(t, decision.Approved)
	require.True(t, decision.ManualOverride)
	require.Equal(t, string(models.EnrollmentStatusRejected), decision.Status)

	require.Len(t, f.recorder.entries, 1)
	require.Equal(t, "enrollment.rejected", f.recorder.entries[0].Action)
}

func TestRejectFailingEnrollmentNeedsNoJustification(t *testing.T) {
	enrollment := &models.Enrollment{ID: 100, CourseID: 10, Status: models.EnrollmentStatusPendingReview, AttendancePercent: 50}
	f := newApprovalFixture(enrollment, twoEvaluationCourse(), []models.EvaluationAttempt{
		completedAttempt(1, 1, 3.0),
		completedAttempt(2, 2, 3.5),
	})

	decision, err := f.service.Reject(context.Background(), 100, ReviewActor{ID: 42, Role: "admin"}, dto.ReviewDecisionRequest{})
	require.NoError(t, err)
	require.False(t, decision.ManualOverride)
	require.Equal(t, string(models.EnrollmentStatusRejected), decision.Status)
}

func TestDecideUnknownEnrollment(t *testing.T) {
	enrollment := &models.Enrollment{ID: 100, CourseID: 10, Status: models.EnrollmentStatusPendingReview}
	f := newApprovalFixture(enrollment, twoEvaluationCourse(), nil)

	_, err := f.service.Approve(context.Background(), 999, ReviewActor{ID: 42}, dto.ReviewDecisionRequest{})
	require.ErrorIs(t, err, ErrEnrollmentNotFound)
}
