package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sugarstop/sugarstop/models"
)

func newTestEngine(t *testing.T) (*ChallengeEngine, *MemoryStore, *FixedClock, uint) {
	t.Helper()
	clock := &FixedClock{T: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(clock)
	u := store.AddUser(&models.User{Username: "lena"})
	return NewChallengeEngine(store, store, clock), store, clock, u.ID
}

func TestChallengeEngine_Enroll_InvalidLength(t *testing.T) {
	engine, _, _, userID := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Enroll(ctx, userID, 0)
	assert.ErrorIs(t, err, ErrInvalidLength)
	_, err = engine.Enroll(ctx, userID, -7)
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestChallengeEngine_Enroll_UnknownUser(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	_, err := engine.Enroll(context.Background(), 999, 30)
	assert.ErrorIs(t, err, ErrInvalidUser)
}

func TestChallengeEngine_Enroll_StartsToday(t *testing.T) {
	engine, _, clock, userID := newTestEngine(t)

	enr, err := engine.Enroll(context.Background(), userID, 30)
	require.NoError(t, err)
	assert.Equal(t, DateOnly(clock.T), enr.StartDate)
	assert.Equal(t, 0, enr.CurrentDay)
	assert.Equal(t, models.EnrollmentActive, enr.Status)
	assert.Nil(t, enr.EndedAt)
}

func TestChallengeEngine_Enroll_ReplacesActive(t *testing.T) {
	engine, store, _, userID := newTestEngine(t)
	ctx := context.Background()

	first, err := engine.Enroll(ctx, userID, 30)
	require.NoError(t, err)
	second, err := engine.Enroll(ctx, userID, 7)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	active, err := store.ActiveEnrollment(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID, "only the new enrollment stays active")

	latest, err := store.LatestEnrollment(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}

func TestChallengeEngine_Advance_NoActiveEnrollment(t *testing.T) {
	engine, _, _, userID := newTestEngine(t)

	enr, err := engine.Advance(context.Background(), userID, true)
	assert.NoError(t, err)
	assert.Nil(t, enr, "advance without an enrollment is a no-op")
}

func TestChallengeEngine_Advance_SuccessCredits(t *testing.T) {
	engine, _, _, userID := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Enroll(ctx, userID, 5)
	require.NoError(t, err)

	enr, err := engine.Advance(ctx, userID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, enr.CurrentDay)
	assert.Equal(t, models.EnrollmentActive, enr.Status)
}

func TestChallengeEngine_Advance_CompletesAtLength(t *testing.T) {
	engine, _, clock, userID := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Enroll(ctx, userID, 3)
	require.NoError(t, err)

	var enr *models.ChallengeEnrollment
	for i := 0; i < 3; i++ {
		enr, err = engine.Advance(ctx, userID, true)
		require.NoError(t, err)
		clock.Advance(24 * time.Hour)
	}
	assert.Equal(t, models.EnrollmentCompleted, enr.Status)
	assert.Equal(t, 3, enr.CurrentDay)
	require.NotNil(t, enr.EndedAt)

	// A terminal enrollment absorbs further check-ins.
	after, err := engine.Advance(ctx, userID, true)
	assert.NoError(t, err)
	assert.Nil(t, after)
}

func TestChallengeEngine_Advance_FailureEndsChallenge(t *testing.T) {
	engine, store, _, userID := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Enroll(ctx, userID, 30)
	require.NoError(t, err)
	_, err = engine.Advance(ctx, userID, true)
	require.NoError(t, err)

	enr, err := engine.Advance(ctx, userID, false)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentFailed, enr.Status)
	require.NotNil(t, enr.EndedAt)
	assert.Equal(t, 1, enr.CurrentDay, "credited days stay where the failure caught them")

	active, err := store.ActiveEnrollment(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestChallengeEngine_Abandon_Idempotent(t *testing.T) {
	engine, _, _, userID := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Enroll(ctx, userID, 30)
	require.NoError(t, err)

	require.NoError(t, engine.Abandon(ctx, userID))
	enr, err := engine.Status(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentAbandoned, enr.Status)

	// Second abandon finds nothing active and stays silent.
	assert.NoError(t, engine.Abandon(ctx, userID))
}

func TestChallengeEngine_Abandon_NeverEnrolled(t *testing.T) {
	engine, _, _, userID := newTestEngine(t)
	assert.NoError(t, engine.Abandon(context.Background(), userID))
}

func TestChallengeEngine_Status(t *testing.T) {
	engine, _, _, userID := newTestEngine(t)
	ctx := context.Background()

	enr, err := engine.Status(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, enr, "no enrollment yet")

	_, err = engine.Enroll(ctx, userID, 30)
	require.NoError(t, err)
	_, err = engine.Advance(ctx, userID, false)
	require.NoError(t, err)

	enr, err = engine.Status(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, enr)
	assert.Equal(t, models.EnrollmentFailed, enr.Status, "status reports terminal enrollments too")

	_, err = engine.Status(ctx, 999)
	assert.ErrorIs(t, err, ErrInvalidUser)
}
