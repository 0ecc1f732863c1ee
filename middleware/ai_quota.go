package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sugarstop/sugarstop/utils"
)

// AIQuotaMiddleware guards model-backed endpoints. It enforces a short
// per-user cooldown between calls plus a daily request cap, both tracked
// in Redis and failing open when Redis is down.
// Must run after AuthRequired so the user ID is present in context.
func AIQuotaMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		val, exists := ctx.Get(ContextUserIDKey)
		if !exists {
			utils.Error(ctx, http.StatusUnauthorized, 40106, "authentication required")
			ctx.Abort()
			return
		}
		userID, ok := val.(uint)
		if !ok || userID == 0 {
			utils.Error(ctx, http.StatusUnauthorized, 40106, "authentication required")
			ctx.Abort()
			return
		}

		if !utils.AICooldownTry(userID) {
			utils.Error(ctx, http.StatusTooManyRequests, 42902, "slow down, try again in a few seconds")
			ctx.Abort()
			return
		}

		if !utils.AIDailyQuotaCheck(userID) {
			utils.Error(ctx, http.StatusTooManyRequests, 42903, "daily generation quota reached")
			ctx.Abort()
			return
		}

		ctx.Next()

		// Count only requests that actually reached the model
		if status := ctx.Writer.Status(); status >= 200 && status < 400 {
			utils.AIDailyQuotaIncrement(userID)
		}
	}
}
