package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sugarstop/sugarstop/models"
	"github.com/sugarstop/sugarstop/utils"
)

// StatsController provides community-wide statistics such as counts and
// daily active users. The endpoint is public and cached.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

const communityStatsCacheKey = "cache:stats:community"

// GetCommunityStats returns aggregate statistics across all users.
func (s *StatsController) GetCommunityStats(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(communityStatsCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var userCount int64
	var checkInCount int64
	var successDayCount int64
	var activeChallenges int64
	var activeToday int64

	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		userCount = 0
	}

	if err := s.db.Model(&models.CheckIn{}).Count(&checkInCount).Error; err != nil {
		checkInCount = 0
	}

	if err := s.db.Model(&models.CheckIn{}).Where("success = ?", true).Count(&successDayCount).Error; err != nil {
		successDayCount = 0
	}

	if err := s.db.Model(&models.ChallengeEnrollment{}).
		Where("status = ?", models.EnrollmentActive).
		Count(&activeChallenges).Error; err != nil {
		activeChallenges = 0
	}

	// Use string date equality to avoid timezone/type mismatches with DATE column
	today := time.Now().UTC().Format("2006-01-02")
	if err := s.db.Model(&models.DailyActivity{}).
		Where("date = ?", today).
		Count(&activeToday).Error; err != nil {
		activeToday = 0
	}

	payload := gin.H{
		"user_count":        userCount,
		"checkin_count":     checkInCount,
		"success_day_count": successDayCount,
		"active_challenges": activeChallenges,
		"active_today":      activeToday,
	}

	wrapper := struct {
		Code    int         `json:"code"`
		Message string      `json:"message"`
		Data    interface{} `json:"data"`
	}{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(communityStatsCacheKey, wrapper, 5*time.Minute)

	utils.Success(ctx, payload)
}
