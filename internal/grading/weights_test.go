package grading

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jcdigital/lms-grading-api/internal/models"
)

func TestValidateWeightsEmptyList(t *testing.T) {
	_, err := ValidateWeights(nil)
	require.ErrorIs(t, err, ErrNoEvaluations)
	require.True(t, IsConfigurationError(err))
}

func TestValidateWeightsCompletePartition(t *testing.T) {
	evaluations := []models.Evaluation{
		{ID: 1, Name: "Midterm", Kind: models.EvaluationKindExam, WeightPercent: 40},
		{ID: 2, Name: "Final Project", Kind: models.EvaluationKindProject, WeightPercent: 60},
	}

	report, err := ValidateWeights(evaluations)
	require.NoError(t, err)
	require.InDelta(t, 100.0, report.Sum, 1e-9)
	require.Equal(t, 2, report.Count)
	require.Len(t, report.Evaluations, 2)
	require.Equal(t, "Midterm", report.Evaluations[0].Name)
}

func TestValidateWeightsWithinTolerance(t *testing.T) {
	evaluations := []models.Evaluation{
		{ID: 1, WeightPercent: 39.998},
		{ID: 2, WeightPercent: 60.007},
	}

	report, err := ValidateWeights(evaluations)
	require.NoError(t, err)
	require.InDelta(t, 100.005, report.Sum, 1e-6)
}

func TestValidateWeightsBeyondTolerance(t *testing.T) {
	evaluations := []models.Evaluation{
		{ID: 1, WeightPercent: 40},
		{ID: 2, WeightPercent: 50},
	}

	_, err := ValidateWeights(evaluations)
	require.ErrorIs(t, err, ErrWeightSumInvalid)
	require.ErrorContains(t, err, "90.00")
	require.True(t, IsConfigurationError(err))
}
