package grading

import "github.com/jcdigital/lms-grading-api/internal/models"

// Scale describes the bounded grade scale of a single evaluation: the
// minimum and maximum grade, the grade awarded exactly at the passing
// threshold, and the percentage of the maximum score required to reach it.
type Scale struct {
	PassThresholdPercent int
	GradeMin             float64
	GradeMax             float64
	GradePass            float64
}

// DefaultScale returns the standard 1.0-7.0 scale with a 60% threshold.
func DefaultScale() Scale {
	return Scale{
		PassThresholdPercent: 60,
		GradeMin:             1.0,
		GradeMax:             7.0,
		GradePass:            4.0,
	}
}

// ScaleForEvaluation builds the scale from an evaluation's configuration,
// falling back to the defaults for unset fields.
func ScaleForEvaluation(evaluation models.Evaluation) Scale {
	scale := DefaultScale()
	if evaluation.PassThresholdPercent > 0 {
		scale.PassThresholdPercent = evaluation.PassThresholdPercent
	}
	if evaluation.GradeMax > 0 {
		scale.GradeMin = evaluation.GradeMin
		scale.GradeMax = evaluation.GradeMax
		scale.GradePass = evaluation.GradePass
	}
	return scale
}

// PassingScore returns the minimum score required to land on GradePass.
func (s Scale) PassingScore(scoreMax float64) float64 {
	return scoreMax * float64(s.PassThresholdPercent) / 100
}

// ScoreToGrade maps a (score, max score) pair onto the scale using two
// linear segments. Scores at or below the passing score interpolate between
// (0, GradeMin) and (passingScore, GradePass); scores above interpolate
// between (passingScore, GradePass) and (scoreMax, GradeMax), so the
// passing-threshold score lands exactly on GradePass. Out-of-range scores
// are clamped into [0, scoreMax] rather than rejected. The result carries
// the grading rounding convention.
func (s Scale) ScoreToGrade(scoreObtained, scoreMax float64) float64 {
	if scoreObtained < 0 {
		scoreObtained = 0
	}
	if scoreObtained > scoreMax {
		scoreObtained = scoreMax
	}

	passingScore := s.PassingScore(scoreMax)

	var grade float64
	if scoreObtained <= passingScore {
		if passingScore == 0 {
			grade = s.GradeMin
		} else {
			grade = s.GradeMin + (scoreObtained/passingScore)*(s.GradePass-s.GradeMin)
		}
	} else {
		scoreRange := scoreMax - passingScore
		if scoreRange == 0 {
			grade = s.GradeMax
		} else {
			grade = s.GradePass + ((scoreObtained-passingScore)/scoreRange)*(s.GradeMax-s.GradePass)
		}
	}

	return RoundToGradingPrecision(grade)
}
