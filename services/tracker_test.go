package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sugarstop/sugarstop/models"
)

func newTestTracker(t *testing.T) (*Tracker, *MemoryStore, *FixedClock, uint) {
	t.Helper()
	clock := &FixedClock{T: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(clock)
	u := store.AddUser(&models.User{Username: "misha"})
	return NewTracker(store, clock, zap.NewNop()), store, clock, u.ID
}

func TestTracker_RecordCheckIn_UnknownUser(t *testing.T) {
	tracker, _, _, _ := newTestTracker(t)

	_, err := tracker.RecordCheckIn(context.Background(), 999, true, "")
	assert.ErrorIs(t, err, ErrInvalidUser)
}

func TestTracker_RecordCheckIn_BuildsSummary(t *testing.T) {
	tracker, _, _, userID := newTestTracker(t)

	sum, err := tracker.RecordCheckIn(context.Background(), userID, true, "день без сахара")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Streak.Current)
	assert.Equal(t, 1, sum.Streak.TotalSuccessDays)
	assert.InDelta(t, 100.0, sum.SuccessRate, 0.01)
	assert.Nil(t, sum.Challenge)
}

func TestTracker_RecordCheckIn_ReplayDoesNotDoubleCredit(t *testing.T) {
	tracker, _, _, userID := newTestTracker(t)
	ctx := context.Background()

	_, err := tracker.EnrollChallenge(ctx, userID, 30)
	require.NoError(t, err)

	sum, err := tracker.RecordCheckIn(ctx, userID, true, "")
	require.NoError(t, err)
	require.NotNil(t, sum.Challenge)
	assert.Equal(t, 1, sum.Challenge.CurrentDay)

	// Same result again on the same day: nothing moves.
	sum, err = tracker.RecordCheckIn(ctx, userID, true, "")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Challenge.CurrentDay)
	assert.Equal(t, 1, sum.Streak.Current)
}

func TestTracker_RecordCheckIn_FlipToFailureFailsChallenge(t *testing.T) {
	tracker, _, _, userID := newTestTracker(t)
	ctx := context.Background()

	_, err := tracker.EnrollChallenge(ctx, userID, 30)
	require.NoError(t, err)
	_, err = tracker.RecordCheckIn(ctx, userID, true, "")
	require.NoError(t, err)

	sum, err := tracker.RecordCheckIn(ctx, userID, false, "сорвался вечером")
	require.NoError(t, err)
	require.NotNil(t, sum.Challenge)
	assert.Equal(t, models.EnrollmentFailed, sum.Challenge.Status)
	assert.Equal(t, 0, sum.Streak.Current)
	assert.Equal(t, 1, sum.Streak.Relapses)
}

func TestTracker_RecordCheckInOn_FutureDateRejected(t *testing.T) {
	tracker, _, clock, userID := newTestTracker(t)

	tomorrow := DateOnly(clock.T).AddDate(0, 0, 1)
	_, err := tracker.RecordCheckInOn(context.Background(), userID, tomorrow, true, "")
	assert.ErrorIs(t, err, ErrFutureDate)
}

func TestTracker_RecordCheckInOn_BackfillNeverMovesChallenge(t *testing.T) {
	tracker, _, clock, userID := newTestTracker(t)
	ctx := context.Background()

	_, err := tracker.EnrollChallenge(ctx, userID, 30)
	require.NoError(t, err)

	yesterday := DateOnly(clock.T).AddDate(0, 0, -1)
	sum, err := tracker.RecordCheckInOn(ctx, userID, yesterday, true, "")
	require.NoError(t, err)
	require.NotNil(t, sum.Challenge)
	assert.Equal(t, 0, sum.Challenge.CurrentDay, "backfilled days never credit a challenge")
	assert.Equal(t, 1, sum.Streak.Current, "backfilled yesterday still counts toward the streak")
}

func TestTracker_ChallengeCompletesAcrossDays(t *testing.T) {
	tracker, _, clock, userID := newTestTracker(t)
	ctx := context.Background()

	_, err := tracker.EnrollChallenge(ctx, userID, 5)
	require.NoError(t, err)

	var sum *Summary
	for i := 0; i < 5; i++ {
		sum, err = tracker.RecordCheckIn(ctx, userID, true, "")
		require.NoError(t, err)
		clock.Advance(24 * time.Hour)
	}
	require.NotNil(t, sum.Challenge)
	assert.Equal(t, models.EnrollmentCompleted, sum.Challenge.Status)
	assert.Equal(t, 5, sum.Challenge.CurrentDay)
	assert.Equal(t, 5, sum.Streak.Current)
}

func TestTracker_ChallengeFailsMidway(t *testing.T) {
	tracker, _, clock, userID := newTestTracker(t)
	ctx := context.Background()

	_, err := tracker.EnrollChallenge(ctx, userID, 7)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = tracker.RecordCheckIn(ctx, userID, true, "")
		require.NoError(t, err)
		clock.Advance(24 * time.Hour)
	}

	sum, err := tracker.RecordCheckIn(ctx, userID, false, "сорвался")
	require.NoError(t, err)
	require.NotNil(t, sum.Challenge)
	assert.Equal(t, models.EnrollmentFailed, sum.Challenge.Status)
	assert.Equal(t, 2, sum.Challenge.CurrentDay)
	assert.Equal(t, 0, sum.Streak.Current)
	assert.Equal(t, 1, sum.Streak.Relapses)
}

func TestTracker_RecordCheckIn_MirrorsStatsOntoUser(t *testing.T) {
	tracker, store, _, userID := newTestTracker(t)
	ctx := context.Background()

	_, err := tracker.RecordCheckIn(ctx, userID, true, "")
	require.NoError(t, err)

	user, err := store.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, user.CurrentStreak)
	assert.Equal(t, 1, user.LongestStreak)
	assert.Equal(t, 1, user.TotalDays)
	assert.NotNil(t, user.LastCheckInAt)
}

func TestTracker_RecordCheckIn_NoteUpdateKeepsCredit(t *testing.T) {
	tracker, _, _, userID := newTestTracker(t)
	ctx := context.Background()

	_, err := tracker.EnrollChallenge(ctx, userID, 30)
	require.NoError(t, err)
	_, err = tracker.RecordCheckIn(ctx, userID, true, "")
	require.NoError(t, err)

	sum, err := tracker.RecordCheckIn(ctx, userID, true, "прошёл мимо кондитерской")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Challenge.CurrentDay)

	rec, err := tracker.Today(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "прошёл мимо кондитерской", rec.Note)
}

func TestTracker_Today(t *testing.T) {
	tracker, _, _, userID := newTestTracker(t)
	ctx := context.Background()

	rec, err := tracker.Today(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, rec, "no check-in yet")

	_, err = tracker.RecordCheckIn(ctx, userID, false, "")
	require.NoError(t, err)

	rec, err = tracker.Today(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.False(t, rec.Success)
}

func TestTracker_History_RangeFilter(t *testing.T) {
	tracker, _, clock, userID := newTestTracker(t)
	ctx := context.Background()

	start := DateOnly(clock.T)
	for i := 0; i < 4; i++ {
		_, err := tracker.RecordCheckIn(ctx, userID, true, "")
		require.NoError(t, err)
		clock.Advance(24 * time.Hour)
	}

	items, err := tracker.History(ctx, userID, start.AddDate(0, 0, 1), start.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, start.AddDate(0, 0, 1), items[0].Date)
	assert.Equal(t, start.AddDate(0, 0, 2), items[1].Date)

	_, err = tracker.History(ctx, 999, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidUser)
}

func TestTracker_GetStats_EmptyUser(t *testing.T) {
	tracker, _, _, userID := newTestTracker(t)

	sum, err := tracker.GetStats(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, StreakSnapshot{}, sum.Streak)
	assert.Zero(t, sum.SuccessRate)
	assert.Nil(t, sum.Challenge)
}

func TestTracker_ConcurrentCheckIns(t *testing.T) {
	tracker, store, _, _ := newTestTracker(t)
	ctx := context.Background()

	ids := make([]uint, 8)
	for i := range ids {
		u := store.AddUser(&models.User{Username: "user" + string(rune('a'+i))})
		ids[i] = u.ID
	}

	done := make(chan error, len(ids)*4)
	for _, id := range ids {
		for j := 0; j < 4; j++ {
			go func(id uint) {
				_, err := tracker.RecordCheckIn(ctx, id, true, "")
				done <- err
			}(id)
		}
	}
	for i := 0; i < len(ids)*4; i++ {
		assert.NoError(t, <-done)
	}

	for _, id := range ids {
		sum, err := tracker.GetStats(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, sum.Streak.Current, "replayed same-day check-ins collapse to one")
	}
}
