package models

import (
	"time"

	"gorm.io/datatypes"
)

// ReviewLog captures auditable grading and approval decisions made by
// administrators, one row per action.
type ReviewLog struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	ActorID      uint              `gorm:"not null;index" json:"actor_id"`
	ActorRole    string            `gorm:"size:32;not null" json:"actor_role"`
	Action       string            `gorm:"size:64;not null;index" json:"action"`
	EnrollmentID uint              `gorm:"not null;index" json:"enrollment_id"`
	Metadata     datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt    time.Time         `json:"created_at"`
}
