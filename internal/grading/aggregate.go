package grading

import "github.com/jcdigital/lms-grading-api/internal/models"

// BestAttempt returns the completed, graded attempt with the highest grade
// for the given evaluation, or nil when no attempt qualifies. A learner who
// improves on a retake is rewarded with the better grade, never averaged
// down. Ties keep the earliest qualifying attempt.
func BestAttempt(attempts []models.EvaluationAttempt, evaluationID uint) *models.EvaluationAttempt {
	var best *models.EvaluationAttempt
	for i := range attempts {
		attempt := &attempts[i]
		if attempt.EvaluationID != evaluationID {
			continue
		}
		if attempt.Status != models.AttemptStatusCompleted || attempt.GradeObtained == nil {
			continue
		}
		if best == nil || *attempt.GradeObtained > *best.GradeObtained {
			best = attempt
		}
	}
	return best
}

// ComputeFinalGrade aggregates the best attempt of every evaluation into the
// weighted final course grade. Evaluations without a qualifying attempt
// contribute nothing; they do not disqualify the enrollment. When no
// evaluation has a qualifying attempt the result is 0.0 without rounding.
// Weight validation failures propagate unchanged.
func ComputeFinalGrade(evaluations []models.Evaluation, attempts []models.EvaluationAttempt) (float64, error) {
	if _, err := ValidateWeights(evaluations); err != nil {
		return 0, err
	}

	var sum float64
	graded := 0
	for _, evaluation := range evaluations {
		best := BestAttempt(attempts, evaluation.ID)
		if best == nil {
			continue
		}
		sum += *best.GradeObtained * evaluation.WeightPercent / 100
		graded++
	}

	if graded == 0 {
		return 0.0, nil
	}

	return RoundToGradingPrecision(sum), nil
}

// CompletedEvaluationCount counts the distinct evaluations that have at
// least one completed, graded attempt.
func CompletedEvaluationCount(evaluations []models.Evaluation, attempts []models.EvaluationAttempt) int {
	count := 0
	for _, evaluation := range evaluations {
		if BestAttempt(attempts, evaluation.ID) != nil {
			count++
		}
	}
	return count
}
