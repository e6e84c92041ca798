package grading

import "fmt"

// Default approval thresholds, overridable per deployment via configuration.
const (
	DefaultGradeThreshold      = 4.0
	DefaultAttendanceThreshold = 75
)

// RequirementThresholds are the cutoffs an enrollment must clear for
// automatic approval eligibility.
type RequirementThresholds struct {
	GradeMin      float64
	AttendanceMin int
}

// DefaultThresholds returns the standard grade/attendance cutoffs.
func DefaultThresholds() RequirementThresholds {
	return RequirementThresholds{
		GradeMin:      DefaultGradeThreshold,
		AttendanceMin: DefaultAttendanceThreshold,
	}
}

// RequirementVerdict is the outcome of checking an enrollment against the
// approval thresholds, with a human-readable reason per unmet condition.
type RequirementVerdict struct {
	MeetsRequirements bool     `json:"meets_requirements"`
	FinalGrade        float64  `json:"final_grade"`
	MeetsGrade        bool     `json:"meets_grade"`
	AttendancePercent int      `json:"attendance_percent"`
	MeetsAttendance   bool     `json:"meets_attendance"`
	Reasons           []string `json:"reasons"`
}

// CheckRequirements evaluates a (final grade, attendance) pair against the
// thresholds. Attendance is read, never computed, here.
func CheckRequirements(finalGrade float64, attendancePercent int, thresholds RequirementThresholds) RequirementVerdict {
	verdict := RequirementVerdict{
		FinalGrade:        finalGrade,
		AttendancePercent: attendancePercent,
		MeetsGrade:        finalGrade >= thresholds.GradeMin,
		MeetsAttendance:   attendancePercent >= thresholds.AttendanceMin,
		Reasons:           []string{},
	}
	verdict.MeetsRequirements = verdict.MeetsGrade && verdict.MeetsAttendance

	if !verdict.MeetsGrade {
		verdict.Reasons = append(verdict.Reasons,
			fmt.Sprintf("insufficient grade: %.1f (minimum required: %.1f)", finalGrade, thresholds.GradeMin))
	}
	if !verdict.MeetsAttendance {
		verdict.Reasons = append(verdict.Reasons,
			fmt.Sprintf("insufficient attendance: %d%% (minimum required: %d%%)", attendancePercent, thresholds.AttendanceMin))
	}

	return verdict
}
