package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateService_SetGet(t *testing.T) {
	svc := NewStateService(NewMemoryCache())
	ctx := context.Background()

	assert.Equal(t, StateIdle, svc.Get(ctx, 1), "unset user is idle")

	require.NoError(t, svc.Set(ctx, 1, StateAwaitingNote))
	assert.Equal(t, StateAwaitingNote, svc.Get(ctx, 1))
	assert.Equal(t, StateIdle, svc.Get(ctx, 2), "states are per user")
}

func TestStateService_SetIdleClears(t *testing.T) {
	svc := NewStateService(NewMemoryCache())
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, 1, StateAwaitingIngredient))
	require.NoError(t, svc.Set(ctx, 1, StateIdle))
	assert.Equal(t, StateIdle, svc.Get(ctx, 1))
}

func TestStateService_InvalidState(t *testing.T) {
	svc := NewStateService(NewMemoryCache())

	err := svc.Set(context.Background(), 1, ConversationState("dancing"))
	assert.Error(t, err)
}

func TestStateService_Clear(t *testing.T) {
	svc := NewStateService(NewMemoryCache())
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, 1, StateAwaitingSlipReason))
	svc.Clear(ctx, 1)
	assert.Equal(t, StateIdle, svc.Get(ctx, 1))
}

func TestStateService_CorruptedValueReadsIdle(t *testing.T) {
	cache := NewMemoryCache()
	svc := NewStateService(cache)
	ctx := context.Background()

	cache.Set(ctx, stateKey(7), []byte("garbage"), 0)
	assert.Equal(t, StateIdle, svc.Get(ctx, 7))
}
