package models

import "time"

// DailyActivity stores aggregated request counts per user and day.
type DailyActivity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      time.Time `gorm:"index:idx_activity_date_user,unique;type:date;not null" json:"date"`
	UserID    uint      `gorm:"index;index:idx_activity_date_user,unique;not null" json:"user_id"`
	Requests  int64     `gorm:"not null;default:0" json:"requests"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
