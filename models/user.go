package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a person tracking a sugar-free habit. Passwords are stored
// as bcrypt hashes only; chat-platform accounts authenticate via Provider and
// ProviderID and carry no password at all.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"size:64;not null" json:"username"`
	FirstName    string         `gorm:"size:64" json:"first_name"`
	Email        string         `gorm:"size:255" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Provider     string         `gorm:"size:32;index:idx_users_provider" json:"provider"`
	ProviderID   string         `gorm:"size:255;index:idx_users_provider" json:"provider_id"`
	RegisterIP   string         `gorm:"size:45" json:"register_ip"`
	AvatarURL    string         `gorm:"size:512" json:"avatar_url"`
	UTCOffsetMin int            `gorm:"default:0" json:"utc_offset_min"`
	RemindersOn  bool           `gorm:"default:true" json:"reminders_on"`

	// Cached streak counters, maintained by the tracker so reads never
	// rescan the check-in history.
	CurrentStreak int        `gorm:"default:0" json:"current_streak"`
	LongestStreak int        `gorm:"default:0" json:"longest_streak"`
	TotalDays     int        `gorm:"default:0" json:"total_days"`
	TotalSlipUps  int        `gorm:"default:0" json:"total_slip_ups"`
	LastCheckInAt *time.Time `json:"last_check_in_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CheckIns  []CheckIn      `json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
