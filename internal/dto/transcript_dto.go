package dto

import (
	"time"

	"github.com/jcdigital/lms-grading-api/internal/grading"
)

// TranscriptEvaluation is the per-evaluation line of a grade transcript,
// built from the best qualifying attempt when one exists.
type TranscriptEvaluation struct {
	EvaluationID  uint       `json:"evaluation_id"`
	Name          string     `json:"name"`
	Kind          string     `json:"kind"`
	WeightPercent float64    `json:"weight_percent"`
	AttemptID     *uint      `json:"attempt_id"`
	AttemptNumber *int       `json:"attempt_number"`
	ScoreObtained *float64   `json:"score_obtained"`
	ScoreMax      *float64   `json:"score_max"`
	Grade         *float64   `json:"grade"`
	Passed        *bool      `json:"passed"`
	CompletedAt   *time.Time `json:"completed_at"`
}

// TranscriptResponse is the full grade breakdown for one enrollment.
type TranscriptResponse struct {
	EnrollmentID          uint                       `json:"enrollment_id"`
	CourseID              uint                       `json:"course_id"`
	StudentID             uint                       `json:"student_id"`
	Status                string                     `json:"status"`
	FinalGradeCalculated  *float64                   `json:"final_grade_calculated"`
	FinalGradeOfficial    *float64                   `json:"final_grade_official"`
	AttendancePercent     int                        `json:"attendance_percent"`
	ManualOverride        bool                       `json:"manual_override"`
	OverrideJustification string                     `json:"override_justification"`
	ReviewedBy            *uint                      `json:"reviewed_by"`
	ReviewedAt            *time.Time                 `json:"reviewed_at"`
	Evaluations           []TranscriptEvaluation     `json:"evaluations"`
	Verdict               grading.RequirementVerdict `json:"requirement_verdict"`
}
