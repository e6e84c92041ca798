package dto

import (
	"time"

	"github.com/jcdigital/lms-grading-api/internal/grading"
	"github.com/jcdigital/lms-grading-api/internal/models"
)

// ReviewDecisionRequest carries the administrator's justification for a
// manual approve/reject decision. The justification is optional here;
// whether it is mandatory depends on the requirement verdict.
type ReviewDecisionRequest struct {
	Justification string `json:"justification" validate:"omitempty,max=2000"`
}

// ReviewDecisionResponse summarizes the outcome of a manual decision.
type ReviewDecisionResponse struct {
	Approved           bool       `json:"approved"`
	ManualOverride     bool       `json:"manual_override"`
	FinalGradeOfficial *float64   `json:"final_grade_official"`
	Status             string     `json:"status"`
	ReviewedBy         *uint      `json:"reviewed_by"`
	ReviewedAt         *time.Time `json:"reviewed_at"`
}

// AutoAdvanceResponse reports a recomputation pass over an enrollment.
type AutoAdvanceResponse struct {
	FinalGrade        float64                    `json:"final_grade"`
	MeetsRequirements bool                       `json:"meets_requirements"`
	Status            string                     `json:"status"`
	Verdict           grading.RequirementVerdict `json:"verdict"`
}

// EnrollmentResponse serializes the grading-relevant view of an enrollment.
type EnrollmentResponse struct {
	ID                        uint       `json:"id"`
	CourseID                  uint       `json:"course_id"`
	StudentID                 uint       `json:"student_id"`
	Status                    string     `json:"status"`
	FinalGradeCalculated      *float64   `json:"final_grade_calculated"`
	FinalGradeOfficial        *float64   `json:"final_grade_official"`
	MeetsApprovalRequirements bool       `json:"meets_approval_requirements"`
	AttendancePercent         int        `json:"attendance_percent"`
	ManualOverride            bool       `json:"manual_override"`
	OverrideJustification     string     `json:"override_justification"`
	ReviewedBy                *uint      `json:"reviewed_by"`
	ReviewedAt                *time.Time `json:"reviewed_at"`
}

// NewEnrollmentResponse builds the response view of an enrollment.
func NewEnrollmentResponse(enrollment models.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:                        enrollment.ID,
		CourseID:                  enrollment.CourseID,
		StudentID:                 enrollment.StudentID,
		Status:                    string(enrollment.Status),
		FinalGradeCalculated:      enrollment.FinalGradeCalculated,
		FinalGradeOfficial:        enrollment.FinalGradeOfficial,
		MeetsApprovalRequirements: enrollment.MeetsApprovalRequirements,
		AttendancePercent:         enrollment.AttendancePercent,
		ManualOverride:            enrollment.ManualOverride,
		OverrideJustification:     enrollment.OverrideJustification,
		ReviewedBy:                enrollment.ReviewedBy,
		ReviewedAt:                enrollment.ReviewedAt,
	}
}
