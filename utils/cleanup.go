package utils

import (
	"log"
	"time"

	"github.com/sugarstop/sugarstop/config"
	"github.com/sugarstop/sugarstop/models"
)

// activityRetentionDays bounds the daily activity table; rows past it only
// feed stats nobody queries anymore.
const activityRetentionDays = 90

// StartActivityCleaner launches a background goroutine that periodically
// prunes old daily activity rows. It is best-effort and logs failures.
func StartActivityCleaner(interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			db := config.DB()
			if db == nil {
				continue
			}
			cutoff := time.Now().UTC().AddDate(0, 0, -activityRetentionDays)
			res := db.Where("date < ?", cutoff).Delete(&models.DailyActivity{})
			if res.Error != nil {
				log.Printf("activity cleaner delete failed: %v", res.Error)
				continue
			}
			if res.RowsAffected > 0 {
				log.Printf("activity cleaner pruned %d rows", res.RowsAffected)
			}
		}
	}()
}
