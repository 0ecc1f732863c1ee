package services

import (
	"context"
	"fmt"
	"time"
)

// ConversationState tells the transport layer what the next free-text
// message from a user means.
type ConversationState string

const (
	StateIdle               ConversationState = "idle"
	StateAwaitingIngredient ConversationState = "awaiting_ingredients"
	StateAwaitingNote       ConversationState = "awaiting_note"
	StateAwaitingSlipReason ConversationState = "awaiting_slip_reason"
)

func (s ConversationState) valid() bool {
	switch s {
	case StateIdle, StateAwaitingIngredient, StateAwaitingNote, StateAwaitingSlipReason:
		return true
	}
	return false
}

// StateService keeps the per-user conversation state with a TTL so an
// abandoned prompt quietly expires back to idle.
type StateService struct {
	cache Cache
	ttl   time.Duration
}

func NewStateService(cache Cache) *StateService {
	return &StateService{cache: cache, ttl: 15 * time.Minute}
}

func stateKey(userID uint) string {
	return fmt.Sprintf("convstate:%d", userID)
}

// Set stores the state; setting StateIdle clears it instead.
func (s *StateService) Set(ctx context.Context, userID uint, state ConversationState) error {
	if !state.valid() {
		return fmt.Errorf("unknown conversation state %q", state)
	}
	if state == StateIdle {
		s.cache.Del(ctx, stateKey(userID))
		return nil
	}
	s.cache.Set(ctx, stateKey(userID), []byte(state), s.ttl)
	return nil
}

// Get returns the current state, StateIdle when none is stored.
func (s *StateService) Get(ctx context.Context, userID uint) ConversationState {
	b, ok := s.cache.Get(ctx, stateKey(userID))
	if !ok {
		return StateIdle
	}
	state := ConversationState(b)
	if !state.valid() {
		return StateIdle
	}
	return state
}

// Clear resets the user to idle.
func (s *StateService) Clear(ctx context.Context, userID uint) {
	s.cache.Del(ctx, stateKey(userID))
}
