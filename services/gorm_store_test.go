package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sugarstop/sugarstop/models"
)

// openTestDB spins up an isolated in-memory sqlite database per test. The
// shared-cache DSN keyed by test name keeps parallel tests apart; a single
// open connection avoids SQLITE_BUSY on concurrent writers.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.CheckIn{},
		&models.ChallengeEnrollment{},
		&models.ChallengeTask{},
		&models.Note{},
		&models.Recipe{},
		&models.DailyActivity{},
	))
	return db
}

func newGormFixture(t *testing.T) (*GormStore, *gorm.DB, *FixedClock, uint) {
	t.Helper()
	db := openTestDB(t)
	clock := &FixedClock{T: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	user := models.User{Username: "dana"}
	require.NoError(t, db.Create(&user).Error)
	return NewGormStore(db, clock), db, clock, user.ID
}

func TestGormStore_GetUser(t *testing.T) {
	store, _, _, userID := newGormFixture(t)
	ctx := context.Background()

	u, err := store.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "dana", u.Username)

	_, err = store.GetUser(ctx, 999)
	assert.ErrorIs(t, err, ErrInvalidUser)
}

func TestGormStore_RecordCheckIn_UpsertSameDay(t *testing.T) {
	store, db, clock, userID := newGormFixture(t)
	ctx := context.Background()
	today := DateOnly(clock.T)

	rec, prev, err := store.RecordCheckIn(ctx, userID, today, true, "")
	require.NoError(t, err)
	assert.Nil(t, prev, "first write has no previous record")
	assert.True(t, rec.Success)

	rec, prev, err = store.RecordCheckIn(ctx, userID, today, false, "")
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.True(t, prev.Success, "previous record keeps the old value")
	assert.False(t, rec.Success)

	var count int64
	require.NoError(t, db.Model(&models.CheckIn{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "same-day writes collapse into one row")
}

func TestGormStore_RecordCheckIn_EmptyNoteKeepsExisting(t *testing.T) {
	store, _, clock, userID := newGormFixture(t)
	ctx := context.Background()
	today := DateOnly(clock.T)

	_, _, err := store.RecordCheckIn(ctx, userID, today, true, "без срывов")
	require.NoError(t, err)

	rec, _, err := store.RecordCheckIn(ctx, userID, today, true, "")
	require.NoError(t, err)
	assert.Equal(t, "без срывов", rec.Note)

	rec, _, err = store.RecordCheckIn(ctx, userID, today, true, "новая заметка")
	require.NoError(t, err)
	assert.Equal(t, "новая заметка", rec.Note)
}

func TestGormStore_RecordCheckIn_FutureDateRejected(t *testing.T) {
	store, _, clock, userID := newGormFixture(t)

	tomorrow := DateOnly(clock.T).AddDate(0, 0, 1)
	_, _, err := store.RecordCheckIn(context.Background(), userID, tomorrow, true, "")
	assert.ErrorIs(t, err, ErrFutureDate)
}

func TestGormStore_RecordCheckIn_UnknownUser(t *testing.T) {
	store, _, clock, _ := newGormFixture(t)

	_, _, err := store.RecordCheckIn(context.Background(), 999, DateOnly(clock.T), true, "")
	assert.ErrorIs(t, err, ErrInvalidUser)
}

func TestGormStore_GetHistory_RangeAndOrder(t *testing.T) {
	store, _, clock, userID := newGormFixture(t)
	ctx := context.Background()
	base := DateOnly(clock.T).AddDate(0, 0, -5)

	for i := 0; i < 5; i++ {
		_, _, err := store.RecordCheckIn(ctx, userID, base.AddDate(0, 0, i), i%2 == 0, "")
		require.NoError(t, err)
	}

	all, err := store.GetHistory(ctx, userID, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].Date.Before(all[i].Date), "history is ordered oldest first")
	}

	window, err := store.GetHistory(ctx, userID, base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Len(t, window, 3)
}

func TestGormStore_GetLastCheckIn(t *testing.T) {
	store, _, clock, userID := newGormFixture(t)
	ctx := context.Background()

	last, err := store.GetLastCheckIn(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, last)

	today := DateOnly(clock.T)
	_, _, err = store.RecordCheckIn(ctx, userID, today.AddDate(0, 0, -2), true, "")
	require.NoError(t, err)
	_, _, err = store.RecordCheckIn(ctx, userID, today, false, "")
	require.NoError(t, err)

	last, err = store.GetLastCheckIn(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, today, DateOnly(last.Date))
	assert.False(t, last.Success)
}

func TestGormStore_Enrollments(t *testing.T) {
	store, _, clock, userID := newGormFixture(t)
	ctx := context.Background()

	active, err := store.ActiveEnrollment(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, active)
	latest, err := store.LatestEnrollment(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	first := &models.ChallengeEnrollment{
		UserID:     userID,
		LengthDays: 30,
		StartDate:  DateOnly(clock.T),
		Status:     models.EnrollmentActive,
	}
	require.NoError(t, store.CreateEnrollment(ctx, first))

	now := clock.Now()
	first.Status = models.EnrollmentFailed
	first.EndedAt = &now
	require.NoError(t, store.SaveEnrollment(ctx, first))

	second := &models.ChallengeEnrollment{
		UserID:     userID,
		LengthDays: 7,
		StartDate:  DateOnly(clock.T),
		Status:     models.EnrollmentActive,
	}
	require.NoError(t, store.CreateEnrollment(ctx, second))

	active, err = store.ActiveEnrollment(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID)

	latest, err = store.LatestEnrollment(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID, "latest picks the newest row regardless of status")
}

func TestGormStore_UpdateUserStats(t *testing.T) {
	store, db, clock, userID := newGormFixture(t)
	ctx := context.Background()

	snap := StreakSnapshot{Current: 4, Longest: 9, TotalSuccessDays: 20, Relapses: 3}
	require.NoError(t, store.UpdateUserStats(ctx, userID, snap, clock.Now()))

	var u models.User
	require.NoError(t, db.First(&u, userID).Error)
	assert.Equal(t, 4, u.CurrentStreak)
	assert.Equal(t, 9, u.LongestStreak)
	assert.Equal(t, 20, u.TotalDays)
	assert.Equal(t, 3, u.TotalSlipUps)
	require.NotNil(t, u.LastCheckInAt)

	err := store.UpdateUserStats(ctx, 999, snap, clock.Now())
	assert.ErrorIs(t, err, ErrInvalidUser)
}

func TestGormStore_TrackerEndToEnd(t *testing.T) {
	store, _, clock, userID := newGormFixture(t)
	tracker := NewTracker(store, clock, zap.NewNop())
	ctx := context.Background()

	_, err := tracker.EnrollChallenge(ctx, userID, 2)
	require.NoError(t, err)

	sum, err := tracker.RecordCheckIn(ctx, userID, true, "")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Challenge.CurrentDay)

	clock.Advance(24 * time.Hour)
	sum, err = tracker.RecordCheckIn(ctx, userID, true, "")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentCompleted, sum.Challenge.Status)
	assert.Equal(t, 2, sum.Streak.Current)
}
