package models

import "time"

// AttemptStatus enumerates the lifecycle states of an evaluation attempt.
type AttemptStatus string

const (
	AttemptStatusInProgress   AttemptStatus = "in_progress"
	AttemptStatusCompleted    AttemptStatus = "completed"
	AttemptStatusAbandoned    AttemptStatus = "abandoned"
	AttemptStatusTimeExceeded AttemptStatus = "time_exceeded"
)

// EvaluationAttempt records one learner's run of an evaluation. The scoring
// subsystem fills ScoreObtained/ScoreMax; GradeObtained and Passed are set by
// the grading engine once the score pair is converted onto the grade scale.
type EvaluationAttempt struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	EvaluationID  uint          `gorm:"not null;index" json:"evaluation_id"`
	EnrollmentID  uint          `gorm:"not null;index" json:"enrollment_id"`
	StudentID     uint          `gorm:"not null;index" json:"student_id"`
	AttemptNumber int           `gorm:"not null;default:1" json:"attempt_number"`
	Status        AttemptStatus `gorm:"size:20;default:in_progress;index" json:"status"`
	StartedAt     time.Time     `json:"started_at"`
	FinishedAt    *time.Time    `json:"finished_at"`
	ScoreObtained *float64      `json:"score_obtained"`
	ScoreMax      *float64      `json:"score_max"`
	GradeObtained *float64      `json:"grade_obtained"`
	Passed        *bool         `json:"passed"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Evaluation    Evaluation    `json:"evaluation,omitempty"`
}

// IsGradable reports whether the attempt is completed and carries a score pair.
func (a EvaluationAttempt) IsGradable() bool {
	return a.Status == AttemptStatusCompleted && a.ScoreObtained != nil && a.ScoreMax != nil
}
