package models

import "time"

// EvaluationKind enumerates the gradable activity types.
type EvaluationKind string

const (
	EvaluationKindQuiz       EvaluationKind = "quiz"
	EvaluationKindAssignment EvaluationKind = "assignment"
	EvaluationKindProject    EvaluationKind = "project"
	EvaluationKindExam       EvaluationKind = "exam"
)

// Evaluation is a gradable activity configured inside a course. Its weight
// contributes to the weighted final grade; weights of one course are expected
// to sum to 100%, which is checked lazily when grades are aggregated.
type Evaluation struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	CourseID             uint           `gorm:"not null;index" json:"course_id"`
	Name                 string         `gorm:"size:255;not null" json:"name"`
	Kind                 EvaluationKind `gorm:"size:32;default:quiz" json:"kind"`
	Position             int            `gorm:"default:0" json:"position"`
	WeightPercent        float64        `gorm:"not null" json:"weight_percent"`
	PassThresholdPercent int            `gorm:"default:60" json:"pass_threshold_percent"`
	GradeMin             float64        `gorm:"default:1.0" json:"grade_min"`
	GradeMax             float64        `gorm:"default:7.0" json:"grade_max"`
	GradePass            float64        `gorm:"default:4.0" json:"grade_pass"`
	AttemptsAllowed      int            `gorm:"default:2" json:"attempts_allowed"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}
