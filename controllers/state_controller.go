package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sugarstop/sugarstop/services"
	"github.com/sugarstop/sugarstop/utils"
)

// StateController exposes the short-lived conversation state the bot front-end
// uses to route the user's next free-text message.
type StateController struct {
	states *services.StateService
}

// NewStateController creates a StateController.
func NewStateController(states *services.StateService) *StateController {
	return &StateController{states: states}
}

// Get returns the current conversation state, falling back to idle.
func (s *StateController) Get(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	state := s.states.Get(ctx.Request.Context(), userID)
	utils.Success(ctx, gin.H{"state": state})
}

// Set replaces the conversation state. Setting idle clears it.
func (s *StateController) Set(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var req struct {
		State string `json:"state" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	if err := s.states.Set(ctx.Request.Context(), userID, services.ConversationState(req.State)); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40061, "unknown conversation state")
		return
	}

	utils.Success(ctx, gin.H{"state": req.State})
}

// Clear resets the conversation back to idle.
func (s *StateController) Clear(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	s.states.Clear(ctx.Request.Context(), userID)
	utils.Success(ctx, gin.H{"state": services.StateIdle})
}
