// Package grading implements the numeric core of the course grading engine:
// the locale rounding convention, the dual-segment score-to-grade scale,
// weight validation and best-attempt grade aggregation. Everything here is
// pure computation over in-memory values; persistence belongs to the
// services that call it.
package grading

import "strconv"

// RoundToGradingPrecision applies the locale rounding convention used for
// every grade in the system: the value is first quantized to two decimal
// places rounding half-up, then the hundredths digit decides the tenths
// digit. A hundredths digit of 5 or more rounds the tenths up; anything
// below truncates. The two stages are intentionally kept separate instead of
// collapsing them into a single round-to-nearest-tenth, because the
// pre-round can lift a hundredths digit onto the 5 boundary (5.146 becomes
// 5.15 and then 5.2, not 5.1).
//
//	RoundToGradingPrecision(3.94) == 3.9
//	RoundToGradingPrecision(3.95) == 4.0
func RoundToGradingPrecision(value float64) float64 {
	cents := quantizeCentsHalfUp(value)

	if cents%10 >= 5 {
		return float64((cents+5)/10) / 10
	}
	return float64(cents/10) / 10
}

// quantizeCentsHalfUp rounds value to hundredths using half-up over its
// shortest decimal representation, so 2.675 quantizes to 268 cents even
// though its float64 neighbour sits just below the midpoint.
func quantizeCentsHalfUp(value float64) int64 {
	if value < 0 {
		value = 0
	}

	text := strconv.FormatFloat(value, 'f', -1, 64)
	integer := text
	fraction := ""
	for i := 0; i < len(text); i++ {
		if text[i] == '.' {
			integer = text[:i]
			fraction = text[i+1:]
			break
		}
	}

	whole, err := strconv.ParseInt(integer, 10, 64)
	if err != nil {
		return 0
	}

	cents := whole * 100
	if len(fraction) >= 1 {
		cents += int64(fraction[0]-'0') * 10
	}
	if len(fraction) >= 2 {
		cents += int64(fraction[1] - '0')
	}
	if len(fraction) >= 3 && fraction[2] >= '5' {
		cents++
	}

	return cents
}
