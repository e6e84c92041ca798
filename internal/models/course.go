package models

import "time"

// CourseStatus enumerates the lifecycle states of a course.
type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "draft"
	CourseStatusPublished CourseStatus = "published"
	CourseStatusArchived  CourseStatus = "archived"
)

// Course represents a training course whose evaluations feed the weighted final grade.
type Course struct {
	ID                   uint         `gorm:"primaryKey" json:"id"`
	Name                 string       `gorm:"size:255;not null" json:"name"`
	Code                 string       `gorm:"size:64" json:"code"`
	Status               CourseStatus `gorm:"size:20;default:draft" json:"status"`
	PassingGrade         float64      `gorm:"default:4.0" json:"passing_grade"`
	MinAttendancePercent int          `gorm:"default:75" json:"min_attendance_percent"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
	Evaluations          []Evaluation `json:"evaluations,omitempty"`
}
