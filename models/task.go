package models

import "time"

// ChallengeTask stores the weekly generated mini-task shown to a user, one
// row per user per day the task was issued.
type ChallengeTask struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_tasks_user_date,unique;not null" json:"user_id"`
	Date      time.Time `gorm:"index:idx_tasks_user_date,unique;type:date;not null" json:"date"`
	Text      string    `gorm:"size:1024;not null" json:"text"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
