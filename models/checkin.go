package models

import "time"

// CheckIn stores one daily check-in per user. Date is normalized to midnight
// UTC of the user's local calendar day, so (UserID, Date) is unique and a
// repeated check-in for the same day overwrites the earlier row.
type CheckIn struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_checkins_user_date,unique;not null" json:"user_id"`
	Date      time.Time `gorm:"index:idx_checkins_user_date,unique;type:date;not null" json:"date"`
	Success   bool      `gorm:"not null" json:"success"`
	Note      string    `gorm:"size:512" json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
