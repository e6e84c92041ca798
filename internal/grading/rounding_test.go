package grading

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundToGradingPrecision(t *testing.T) {
	cases := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"hundredths below five truncate", 3.94, 3.9},
		{"hundredths at five round up", 3.95, 4.0},
		{"hundredths above five round up", 5.46, 5.5},
		{"already one decimal", 5.5, 5.5},
		{"whole number", 7.0, 7.0},
		{"zero", 0.0, 0.0},
		{"carry across the integer boundary", 6.95, 7.0},
		{"thousandths round the hundredths first", 5.951, 6.0},
		{"pre-round lifts hundredths onto the five boundary", 5.146, 5.2},
		{"decimal midpoint honoured over float neighbour", 2.675, 2.7},
		{"long tail below the midpoint", 4.3449, 4.3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.expected, RoundToGradingPrecision(tc.input), 1e-9)
		})
	}
}

func TestRoundToGradingPrecisionNegativeClampsToZero(t *testing.T) {
	require.Equal(t, 0.0, RoundToGradingPrecision(-0.3))
}
