package models

import "time"

// EnrollmentStatus enumerates the lifecycle states of an enrollment. The
// grading engine only drives the transition into pending_review and the
// administrator-decided approved/rejected states; withdrawal and suspension
// belong to the enrollment lifecycle outside this engine.
type EnrollmentStatus string

const (
	EnrollmentStatusEnrolled      EnrollmentStatus = "enrolled"
	EnrollmentStatusInProgress    EnrollmentStatus = "in_progress"
	EnrollmentStatusCompleted     EnrollmentStatus = "completed"
	EnrollmentStatusPendingReview EnrollmentStatus = "pending_review"
	EnrollmentStatusApproved      EnrollmentStatus = "approved"
	EnrollmentStatusRejected      EnrollmentStatus = "rejected"
	EnrollmentStatusWithdrawn     EnrollmentStatus = "withdrawn"
	EnrollmentStatusSuspended     EnrollmentStatus = "suspended"
)

// Enrollment is one learner's registration in one course together with the
// grading fields this engine owns. FinalGradeCalculated is the engine's own
// weighted computation; FinalGradeOfficial is assigned only when an
// administrator approves or rejects the enrollment. OverrideJustification
// must be non-empty whenever ManualOverride is true for the decision that
// produced the current status.
type Enrollment struct {
	ID                        uint             `gorm:"primaryKey" json:"id"`
	CourseID                  uint             `gorm:"not null;index" json:"course_id"`
	StudentID                 uint             `gorm:"not null;index" json:"student_id"`
	Status                    EnrollmentStatus `gorm:"size:20;default:enrolled;index" json:"status"`
	FinalGradeOfficial        *float64         `json:"final_grade_official"`
	FinalGradeCalculated      *float64         `json:"final_grade_calculated"`
	MeetsApprovalRequirements bool             `gorm:"default:false" json:"meets_approval_requirements"`
	ProgressPercent           int              `gorm:"default:0" json:"progress_percent"`
	AttendancePercent         int              `gorm:"default:0" json:"attendance_percent"`
	ManualOverride            bool             `gorm:"default:false" json:"manual_override"`
	OverrideJustification     string           `gorm:"type:text" json:"override_justification"`
	ReviewedBy                *uint            `gorm:"index" json:"reviewed_by"`
	ReviewedAt                *time.Time       `json:"reviewed_at"`
	EnrolledAt                time.Time        `json:"enrolled_at"`
	CreatedAt                 time.Time        `json:"created_at"`
	UpdatedAt                 time.Time        `json:"updated_at"`
	Course                    Course           `json:"course,omitempty"`
}

// IsReviewable reports whether auto-advance may move the enrollment into
// pending_review from its current status.
func (e Enrollment) IsReviewable() bool {
	return e.Status == EnrollmentStatusInProgress || e.Status == EnrollmentStatusCompleted
}
