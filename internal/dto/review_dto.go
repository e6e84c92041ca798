package dto

import (
	"time"

	"github.com/jcdigital/lms-grading-api/internal/models"
)

// ReviewLogResponse serializes one review audit entry.
type ReviewLogResponse struct {
	ID           uint                   `json:"id"`
	ActorID      uint                   `json:"actor_id"`
	ActorRole    string                 `json:"actor_role"`
	Action       string                 `json:"action"`
	EnrollmentID uint                   `json:"enrollment_id"`
	Metadata     map[string]interface{} `json:"metadata"`
	CreatedAt    time.Time              `json:"created_at"`
}

// NewReviewLogResponse builds the response view of a review log entry.
func NewReviewLogResponse(entry models.ReviewLog) ReviewLogResponse {
	return ReviewLogResponse{
		ID:           entry.ID,
		ActorID:      entry.ActorID,
		ActorRole:    entry.ActorRole,
		Action:       entry.Action,
		EnrollmentID: entry.EnrollmentID,
		Metadata:     entry.Metadata,
		CreatedAt:    entry.CreatedAt,
	}
}
