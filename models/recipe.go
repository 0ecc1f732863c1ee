package models

import "time"

// Recipe records a generated sugar-free recipe so the history can be listed
// without calling the model again.
type Recipe struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Ingredients string    `gorm:"size:512;not null" json:"ingredients"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	FromCache   bool      `gorm:"-" json:"from_cache,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
