package models

import "time"

// EnrollmentStatus enumerates the lifecycle of a challenge enrollment.
// Completed, failed and abandoned are terminal; further check-ins never
// change a terminal enrollment.
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentFailed    EnrollmentStatus = "failed"
	EnrollmentAbandoned EnrollmentStatus = "abandoned"
)

// Terminal reports whether the status can no longer change.
func (s EnrollmentStatus) Terminal() bool {
	return s == EnrollmentCompleted || s == EnrollmentFailed || s == EnrollmentAbandoned
}

// ChallengeEnrollment tracks one user's run at an N-day challenge. CurrentDay
// counts successful days credited so far; it only ever grows while the
// enrollment is active.
type ChallengeEnrollment struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	UserID     uint             `gorm:"index;not null" json:"user_id"`
	LengthDays int              `gorm:"not null" json:"length_days"`
	StartDate  time.Time        `gorm:"type:date;not null" json:"start_date"`
	CurrentDay int              `gorm:"not null;default:0" json:"current_day"`
	Status     EnrollmentStatus `gorm:"type:varchar(16);not null;default:'active';index" json:"status"`
	EndedAt    *time.Time       `json:"ended_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}
