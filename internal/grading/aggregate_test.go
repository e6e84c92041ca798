package grading

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jcdigital/lms-grading-api/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestBestAttemptPicksHighestCompletedGrade(t *testing.T) {
	attempts := []models.EvaluationAttempt{
		{ID: 1, EvaluationID: 7, Status: models.AttemptStatusCompleted, GradeObtained: floatPtr(4.5)},
		{ID: 2, EvaluationID: 7, Status: models.AttemptStatusCompleted, GradeObtained: floatPtr(6.0)},
		{ID: 3, EvaluationID: 7, Status: models.AttemptStatusAbandoned, GradeObtained: floatPtr(7.0)},
		{ID: 4, EvaluationID: 7, Status: models.AttemptStatusCompleted},
		{ID: 5, EvaluationID: 9, Status: models.AttemptStatusCompleted, GradeObtained: floatPtr(6.8)},
	}

	best := BestAttempt(attempts, 7)
	require.NotNil(t, best)
	require.Equal(t, uint(2), best.ID)
}

func TestBestAttemptTieKeepsEarliest(t *testing.T) {
	attempts := []models.EvaluationAttempt{
		{ID: 1, EvaluationID: 3, Status: models.AttemptStatusCompleted, GradeObtained: floatPtr(5.0)},
		{ID: 2, EvaluationID: 3, Status: models.AttemptStatusCompleted, GradeObtained: floatPtr(5.0)},
	}

	best := BestAttempt(attempts, 3)
	require.NotNil(t, best)
	require.Equal(t, uint(1), best.ID)
}

func TestBestAttemptNoQualifyingAttempt(t *testing.T) {
	attempts := []models.EvaluationAttempt{
		{ID: 1, EvaluationID: 3, Status: models.AttemptStatusInProgress},
	}

	require.Nil(t, BestAttempt(attempts, 3))
}

func TestComputeFinalGradeWeightedSum(t *testing.T) {
	evaluations := []models.Evaluation{
		{ID: 1, WeightPercent: 40},
		{ID: 2, WeightPercent: 60},
	}
	attempts := []models.EvaluationAttempt{
		{ID: 1, EvaluationID: 1, Status: models.AttemptStatusCompleted, GradeObtained: floatPtr(5.0)},
		{ID: 2, EvaluationID: 2, Status: models.AttemptStatusCompleted, GradeObtained: floatPtr(6.0)},
	}

	grade, err := ComputeFinalGrade(evaluations, attempts)
	require.NoError(t, err)
	require.InDelta(t, 5.6, grade, 1e-9)
}

func TestComputeFinalGradeBestAttemptWins(t *testing.T) {
	evaluations := []models.Evaluation{{ID: 1, WeightPercent: 100}}
	attempts := []models.EvaluationAttempt{
		{ID: 1, EvaluationID: 1, Status: models.AttemptStatusCompleted, GradeObtained: floatPtr(3.2)},
		{ID: 2, EvaluationID: 1, Status: models.AttemptStatusCompleted, GradeObtained: floatPtr(5.8)},
	}

	grade, err := ComputeFinalGrade(evaluations, attempts)
	require.NoError(t, err)
	require.InDelta(t, 5.8, grade, 1e-9)
}

func TestComputeFinalGradeUnattemptedEvaluationContributesNothing(t *testing.T) {
	evaluations := []models.Evaluation{
		{ID: 1, WeightPercent: 40},
		{ID: 2, WeightPercent: 60},
	}
	attempts := []models.EvaluationAttempt{
		{ID: 1, EvaluationID: 2, Status: models.AttemptStatusCompleted, GradeObtained: floatPtr(5.0)},
	}

	grade, err := ComputeFinalGrade(evaluations, attempts)
	require.NoError(t, err)
	require.InDelta(t, 3.0, grade, 1e-9)
}

func TestComputeFinalGradeNoQualifyingAttempts(t *testing.T) {
	evaluations := []models.Evaluation{
		{ID: 1, WeightPercent: 40},
		{ID: 2, WeightPercent: 60},
	}

	grade, err := ComputeFinalGrade(evaluations, nil)
	require.NoError(t, err)
	require.Equal(t, 0.0, grade)
}

func TestComputeFinalGradePropagatesConfigurationError(t *testing.T) {
	evaluations := []models.Evaluation{
		{ID: 1, WeightPercent: 40},
		{ID: 2, WeightPercent: 40},
	}

	_, err := ComputeFinalGrade(evaluations, nil)
	require.ErrorIs(t, err, ErrWeightSumInvalid)

	_, err = ComputeFinalGrade(nil, nil)
	require.ErrorIs(t, err, ErrNoEvaluations)
}

func TestCompletedEvaluationCount(t *testing.T) {
	evaluations := []models.Evaluation{
		{ID: 1, WeightPercent: 50},
		{ID: 2, WeightPercent: 50},
	}
	attempts := []models.EvaluationAttempt{
		{ID: 1, EvaluationID: 1, Status: models.AttemptStatusCompleted, GradeObtained: floatPtr(4.0)},
		{ID: 2, EvaluationID: 2, Status: models.AttemptStatusCompleted},
	}

	require.Equal(t, 1, CompletedEvaluationCount(evaluations, attempts))
}
