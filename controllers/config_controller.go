package controllers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/sugarstop/sugarstop/config"
	"github.com/sugarstop/sugarstop/utils"
)

// ConfigController serves environment-driven product settings the gateway
// front-end renders without hardcoding.
type ConfigController struct{}

func NewConfigController() *ConfigController { return &ConfigController{} }

// GetProduct returns challenge defaults and the notification schedule.
func (c *ConfigController) GetProduct(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{
		"default_challenge_days": cfg.DefaultChallengeDays,
		"reminder_time":          fmt.Sprintf("%02d:%02d", cfg.ReminderHour, cfg.ReminderMinute),
		"task_weekday":           cfg.TaskWeekday,
		"task_time":              fmt.Sprintf("%02d:%02d", cfg.TaskHour, cfg.TaskMinute),
		"utc_offset_min":         cfg.SchedulerZoneMin,
	})
}
