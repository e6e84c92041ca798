package grading

import (
	"errors"
	"fmt"
	"math"

	"github.com/jcdigital/lms-grading-api/internal/models"
)

// WeightSumTolerance absorbs rounding noise in authored weight percentages.
const WeightSumTolerance = 0.01

// ErrNoEvaluations indicates a course without any configured evaluations.
var ErrNoEvaluations = errors.New("course has no evaluations configured")

// ErrWeightSumInvalid indicates evaluation weights that do not form a
// complete partition of the final grade.
var ErrWeightSumInvalid = errors.New("evaluation weights must sum to 100%")

// WeightEntry describes one evaluation's contribution, for diagnostics.
type WeightEntry struct {
	EvaluationID  uint    `json:"evaluation_id"`
	Name          string  `json:"name"`
	Kind          string  `json:"kind"`
	WeightPercent float64 `json:"weight_percent"`
}

// WeightReport is the diagnostic result of a successful weight validation.
type WeightReport struct {
	Sum         float64       `json:"sum"`
	Count       int           `json:"count"`
	Evaluations []WeightEntry `json:"evaluations"`
}

// ValidateWeights checks that the evaluations of one course carry weights
// summing to 100% within tolerance. Silently normalizing the weights would
// hide authoring mistakes in the course setup, so any deviation fails.
func ValidateWeights(evaluations []models.Evaluation) (WeightReport, error) {
	if len(evaluations) == 0 {
		return WeightReport{}, ErrNoEvaluations
	}

	report := WeightReport{
		Count:       len(evaluations),
		Evaluations: make([]WeightEntry, 0, len(evaluations)),
	}
	for _, evaluation := range evaluations {
		report.Sum += evaluation.WeightPercent
		report.Evaluations = append(report.Evaluations, WeightEntry{
			EvaluationID:  evaluation.ID,
			Name:          evaluation.Name,
			Kind:          string(evaluation.Kind),
			WeightPercent: evaluation.WeightPercent,
		})
	}

	if math.Abs(report.Sum-100.0) > WeightSumTolerance {
		// The populated report still goes back so callers can surface
		// which evaluation carries the wrong weight.
		return report, fmt.Errorf("%w: weights currently sum to %.2f%%", ErrWeightSumInvalid, report.Sum)
	}

	return report, nil
}

// IsConfigurationError reports whether err stems from invalid course
// evaluation configuration, recoverable by fixing the course setup.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrNoEvaluations) || errors.Is(err, ErrWeightSumInvalid)
}
