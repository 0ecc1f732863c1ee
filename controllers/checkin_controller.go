package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sugarstop/sugarstop/services"
	"github.com/sugarstop/sugarstop/utils"
)

// CheckInController exposes the daily check-in flow: recording a day, adding a
// follow-up note, browsing history and reading the personal summary.
type CheckInController struct {
	tracker    *services.Tracker
	motivation *services.MotivationService
	states     *services.StateService
}

// NewCheckInController creates a CheckInController.
func NewCheckInController(tracker *services.Tracker, motivation *services.MotivationService, states *services.StateService) *CheckInController {
	return &CheckInController{tracker: tracker, motivation: motivation, states: states}
}

// Create records a check-in for today, or for a past date when one is given.
func (c *CheckInController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var req struct {
		Success *bool  `json:"success" binding:"required"`
		Note    string `json:"note"`
		Date    string `json:"date"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid request payload")
		return
	}

	note := utils.SanitizeText(req.Note)

	var summary *services.Summary
	var err error
	if strings.TrimSpace(req.Date) != "" {
		date, parseErr := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
		if parseErr != nil {
			utils.Error(ctx, http.StatusBadRequest, 40013, "date must be YYYY-MM-DD")
			return
		}
		summary, err = c.tracker.RecordCheckInOn(ctx.Request.Context(), userID, date, *req.Success, note)
	} else {
		summary, err = c.tracker.RecordCheckIn(ctx.Request.Context(), userID, *req.Success, note)
	}
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	// Move the conversation to the follow-up question the bot asks next
	var message string
	if *req.Success {
		message = c.motivation.SuccessMessage(summary.Streak.Current)
		_ = c.states.Set(ctx.Request.Context(), userID, services.StateAwaitingNote)
	} else {
		message = c.motivation.SlipUpMessage()
		_ = c.states.Set(ctx.Request.Context(), userID, services.StateAwaitingSlipReason)
	}

	utils.Success(ctx, gin.H{
		"summary": summary,
		"message": message,
	})
}

// AddNote attaches free text to today's check-in: a diary note after a clean
// day or the reason behind a slip-up. The check-in itself must exist already.
func (c *CheckInController) AddNote(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var req struct {
		Note string `json:"note" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40014, "note must not be empty")
		return
	}

	note := utils.SanitizeText(req.Note)
	if note == "" {
		utils.Error(ctx, http.StatusBadRequest, 40014, "note must not be empty")
		return
	}
	if len([]rune(note)) > 512 {
		rs := []rune(note)
		note = string(rs[:512])
	}

	today, err := c.tracker.Today(ctx.Request.Context(), userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	if today == nil {
		utils.Error(ctx, http.StatusNotFound, 40402, "no check-in recorded today")
		return
	}

	summary, err := c.tracker.RecordCheckInOn(ctx.Request.Context(), userID, today.Date, today.Success, note)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	c.states.Clear(ctx.Request.Context(), userID)

	utils.Success(ctx, gin.H{"summary": summary})
}

// History lists check-ins in ascending date order, optionally bounded by
// from/to query parameters (YYYY-MM-DD, inclusive).
func (c *CheckInController) History(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var from, to time.Time
	if v := strings.TrimSpace(ctx.Query("from")); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40013, "from must be YYYY-MM-DD")
			return
		}
		from = parsed
	}
	if v := strings.TrimSpace(ctx.Query("to")); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40013, "to must be YYYY-MM-DD")
			return
		}
		to = parsed
	}

	items, err := c.tracker.History(ctx.Request.Context(), userID, from, to)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"items": items, "count": len(items)})
}

// Stats returns the personal summary: streaks, relapse count, success rate
// and the state of the current challenge.
func (c *CheckInController) Stats(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	summary, err := c.tracker.GetStats(ctx.Request.Context(), userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, summary)
}

// Motivation returns a pep talk tuned to the current streak.
func (c *CheckInController) Motivation(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	summary, err := c.tracker.GetStats(ctx.Request.Context(), userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	message := c.motivation.Daily(ctx.Request.Context(), summary.Streak.Current)
	utils.Success(ctx, gin.H{"message": message})
}
