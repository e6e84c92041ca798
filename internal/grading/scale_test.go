package grading

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jcdigital/lms-grading-api/internal/models"
)

func TestScoreToGradeStandardScale(t *testing.T) {
	scale := DefaultScale()

	cases := []struct {
		name     string
		score    float64
		max      float64
		expected float64
	}{
		{"zero score maps to minimum", 0, 100, 1.0},
		{"passing threshold lands exactly on pass grade", 60, 100, 4.0},
		{"upper segment interpolation", 80, 100, 5.5},
		{"perfect score maps to maximum", 100, 100, 7.0},
		{"lower segment interpolation", 30, 100, 2.5},
		{"just above threshold", 61, 100, 4.1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.expected, scale.ScoreToGrade(tc.score, tc.max), 1e-9)
		})
	}
}

func TestScoreToGradeClampsOutOfRangeScores(t *testing.T) {
	scale := DefaultScale()

	require.InDelta(t, 1.0, scale.ScoreToGrade(-10, 100), 1e-9)
	require.InDelta(t, 7.0, scale.ScoreToGrade(150, 100), 1e-9)
}

func TestScoreToGradeDegenerateThresholds(t *testing.T) {
	zero := Scale{PassThresholdPercent: 0, GradeMin: 1.0, GradeMax: 7.0, GradePass: 4.0}
	require.InDelta(t, 1.0, zero.ScoreToGrade(0, 100), 1e-9)
	require.InDelta(t, 5.5, zero.ScoreToGrade(50, 100), 1e-9)

	// With a 100% threshold every score sits in the lower segment, so the
	// maximum score earns the pass grade, not the maximum grade.
	full := Scale{PassThresholdPercent: 100, GradeMin: 1.0, GradeMax: 7.0, GradePass: 4.0}
	require.InDelta(t, 4.0, full.ScoreToGrade(100, 100), 1e-9)
	require.InDelta(t, 2.5, full.ScoreToGrade(50, 100), 1e-9)
}

func TestScaleForEvaluation(t *testing.T) {
	scale := ScaleForEvaluation(models.Evaluation{
		PassThresholdPercent: 70,
		GradeMin:             1.0,
		GradeMax:             7.0,
		GradePass:            4.0,
	})
	require.Equal(t, 70, scale.PassThresholdPercent)

	fallback := ScaleForEvaluation(models.Evaluation{})
	require.Equal(t, DefaultScale(), fallback)
}

func TestScoreToGradeNonHundredMaximum(t *testing.T) {
	scale := DefaultScale()

	// 24/40 is exactly the 60% threshold.
	require.InDelta(t, 4.0, scale.ScoreToGrade(24, 40), 1e-9)
	require.InDelta(t, 7.0, scale.ScoreToGrade(40, 40), 1e-9)
}
