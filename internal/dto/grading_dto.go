package dto

import "github.com/jcdigital/lms-grading-api/internal/grading"

// GradeAttemptRequest optionally overrides the evaluation's configured scale
// for a single grading call.
type GradeAttemptRequest struct {
	PassThresholdPercent *int     `json:"pass_threshold_percent" validate:"omitempty,gte=0,lte=100"`
	GradeMin             *float64 `json:"grade_min" validate:"omitempty,gte=0"`
	GradeMax             *float64 `json:"grade_max" validate:"omitempty,gt=0"`
	GradePass            *float64 `json:"grade_pass" validate:"omitempty,gt=0"`
}

// ScaleUsed echoes the scale configuration applied to a grading call.
type ScaleUsed struct {
	PassThresholdPercent int     `json:"pass_threshold_percent"`
	GradeMin             float64 `json:"grade_min"`
	GradeMax             float64 `json:"grade_max"`
	GradePass            float64 `json:"grade_pass"`
}

// NewScaleUsed converts a grading scale into its response form.
func NewScaleUsed(scale grading.Scale) ScaleUsed {
	return ScaleUsed{
		PassThresholdPercent: scale.PassThresholdPercent,
		GradeMin:             scale.GradeMin,
		GradeMax:             scale.GradeMax,
		GradePass:            scale.GradePass,
	}
}

// AttemptGradeResponse is returned after converting an attempt's score pair
// into a grade.
type AttemptGradeResponse struct {
	AttemptID     uint      `json:"attempt_id"`
	AttemptNumber int       `json:"attempt_number"`
	ScoreObtained float64   `json:"score_obtained"`
	ScoreMax      float64   `json:"score_max"`
	Percentage    float64   `json:"percentage"`
	Grade         float64   `json:"grade"`
	Passed        bool      `json:"passed"`
	Scale         ScaleUsed `json:"scale_used"`
}

// WeightValidationResponse surfaces the weight configuration check.
type WeightValidationResponse struct {
	Valid       bool                  `json:"valid"`
	Sum         float64               `json:"sum"`
	Count       int                   `json:"count"`
	Evaluations []grading.WeightEntry `json:"evaluations"`
}
