package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sugarstop/sugarstop/config"
	"github.com/sugarstop/sugarstop/services"
	"github.com/sugarstop/sugarstop/utils"
)

// ChallengeController manages no-sugar challenge enrollments and the weekly
// mini-tasks issued alongside them.
type ChallengeController struct {
	tracker *services.Tracker
	tasks   *services.TaskService
}

// NewChallengeController creates a ChallengeController.
func NewChallengeController(tracker *services.Tracker, tasks *services.TaskService) *ChallengeController {
	return &ChallengeController{tracker: tracker, tasks: tasks}
}

// Enroll starts a challenge for the authenticated user. An active challenge,
// if any, is abandoned and replaced by the new one.
func (c *ChallengeController) Enroll(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var req struct {
		LengthDays int `json:"length_days"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	if req.LengthDays == 0 {
		req.LengthDays = config.Get().DefaultChallengeDays
	}

	enr, err := c.tracker.EnrollChallenge(ctx.Request.Context(), userID, req.LengthDays)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, enr)
}

// Status returns the most recent enrollment in any state.
func (c *ChallengeController) Status(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	enr, err := c.tracker.ChallengeStatus(ctx.Request.Context(), userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	if enr == nil {
		utils.Error(ctx, http.StatusNotFound, 40403, "no challenge found")
		return
	}

	utils.Success(ctx, enr)
}

// Abandon ends the active challenge. Calling it without an active challenge
// is a no-op.
func (c *ChallengeController) Abandon(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	if err := c.tracker.AbandonChallenge(ctx.Request.Context(), userID); err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"message": "challenge abandoned"})
}

// CurrentTask returns the latest weekly task issued to the user.
func (c *ChallengeController) CurrentTask(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	task, err := c.tasks.Current(ctx.Request.Context(), userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	if task == nil {
		utils.Error(ctx, http.StatusNotFound, 40404, "no task issued yet")
		return
	}

	utils.Success(ctx, task)
}

// CompleteTask marks the latest weekly task as done.
func (c *ChallengeController) CompleteTask(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	task, err := c.tasks.Complete(ctx.Request.Context(), userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	if task == nil {
		utils.Error(ctx, http.StatusNotFound, 40404, "no task issued yet")
		return
	}

	utils.Success(ctx, task)
}
