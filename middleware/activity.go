package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sugarstop/sugarstop/models"
)

// ActivityRecorder counts one row per user and day for authenticated traffic.
// The daily rows feed the community stats endpoint ("active today").
func ActivityRecorder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 400 {
			return
		}

		val, exists := c.Get(ContextUserIDKey)
		if !exists {
			return
		}
		userID, ok := val.(uint)
		if !ok || userID == 0 {
			return
		}

		// Use UTC midnight to align with the DATE column
		now := time.Now().UTC()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

		// Atomic upsert to avoid duplicate key errors under concurrency
		_ = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"requests": gorm.Expr("requests + 1"), "updated_at": time.Now()}),
		}).Create(&models.DailyActivity{Date: midnight, UserID: userID, Requests: 1}).Error
	}
}
