package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sugarstop/sugarstop/models"
)

// Tracker is the façade the transport layer talks to. Every operation for a
// given user runs under that user's lock, so a check-in and a concurrent
// challenge change can never interleave; operations for different users run
// in parallel. All dependencies are passed in explicitly, there are no
// package-level singletons behind it.
type Tracker struct {
	store  Store
	engine *ChallengeEngine
	stats  *StatsAggregator
	clock  Clock
	locks  *keyedMutex
	log    *zap.Logger
}

// NewTracker wires the engine, aggregator and stores into one façade.
func NewTracker(store Store, clock Clock, log *zap.Logger) *Tracker {
	engine := NewChallengeEngine(store, store, clock)
	return &Tracker{
		store:  store,
		engine: engine,
		stats:  NewStatsAggregator(store, store, engine, clock),
		clock:  clock,
		locks:  newKeyedMutex(),
		log:    log,
	}
}

// Engine exposes the challenge engine for callers that only transition
// enrollment state.
func (t *Tracker) Engine() *ChallengeEngine { return t.engine }

// RecordCheckIn records today's check-in for the user and returns the
// refreshed summary. Calling it twice with the same result on the same day
// changes nothing the second time.
func (t *Tracker) RecordCheckIn(ctx context.Context, userID uint, success bool, note string) (*Summary, error) {
	unlock := t.locks.Lock(userID)
	defer unlock()
	return t.record(ctx, userID, time.Time{}, success, note)
}

// RecordCheckInOn records a check-in for an explicit date, normally today as
// seen by a client clock. Dates after the user's current day are rejected
// with ErrFutureDate; past dates backfill history but never move a challenge.
func (t *Tracker) RecordCheckInOn(ctx context.Context, userID uint, date time.Time, success bool, note string) (*Summary, error) {
	unlock := t.locks.Lock(userID)
	defer unlock()
	return t.record(ctx, userID, date, success, note)
}

func (t *Tracker) record(ctx context.Context, userID uint, date time.Time, success bool, note string) (*Summary, error) {
	user, err := t.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := LocalToday(t.clock, user.UTCOffsetMin)
	if date.IsZero() {
		date = today
	} else {
		date = DateOnly(date)
	}

	rec, prev, err := t.store.RecordCheckIn(ctx, userID, date, success, note)
	if err != nil {
		return nil, err
	}

	// Only a new or flipped record for the current day moves the
	// challenge; a replayed identical check-in must not credit twice.
	if date.Equal(today) && (prev == nil || prev.Success != rec.Success) {
		if _, err := t.engine.Advance(ctx, userID, success); err != nil {
			return nil, err
		}
	}

	sum, err := t.stats.Summarize(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := t.store.UpdateUserStats(ctx, userID, sum.Streak, rec.UpdatedAt); err != nil {
		return nil, err
	}

	t.log.Info("check-in recorded",
		zap.Uint("user_id", userID),
		zap.String("date", date.Format("2006-01-02")),
		zap.Bool("success", success),
		zap.Int("current_streak", sum.Streak.Current))
	return sum, nil
}

// GetStats returns the user's current summary without writing anything.
func (t *Tracker) GetStats(ctx context.Context, userID uint) (*Summary, error) {
	unlock := t.locks.Lock(userID)
	defer unlock()
	return t.stats.Summarize(ctx, userID)
}

// EnrollChallenge starts a lengthDays challenge, abandoning any active one.
func (t *Tracker) EnrollChallenge(ctx context.Context, userID uint, lengthDays int) (*models.ChallengeEnrollment, error) {
	unlock := t.locks.Lock(userID)
	defer unlock()

	enr, err := t.engine.Enroll(ctx, userID, lengthDays)
	if err != nil {
		return nil, err
	}
	t.log.Info("challenge enrolled",
		zap.Uint("user_id", userID),
		zap.Int("length_days", lengthDays))
	return enr, nil
}

// AbandonChallenge ends the user's active challenge if one exists.
func (t *Tracker) AbandonChallenge(ctx context.Context, userID uint) error {
	unlock := t.locks.Lock(userID)
	defer unlock()

	if err := t.engine.Abandon(ctx, userID); err != nil {
		return err
	}
	t.log.Info("challenge abandoned", zap.Uint("user_id", userID))
	return nil
}

// ChallengeStatus returns the user's most recent enrollment in any state, or
// nil when the user never enrolled.
func (t *Tracker) ChallengeStatus(ctx context.Context, userID uint) (*models.ChallengeEnrollment, error) {
	unlock := t.locks.Lock(userID)
	defer unlock()
	return t.engine.Status(ctx, userID)
}

// History returns the user's check-ins between from and to, oldest first.
func (t *Tracker) History(ctx context.Context, userID uint, from, to time.Time) ([]models.CheckIn, error) {
	unlock := t.locks.Lock(userID)
	defer unlock()

	if _, err := t.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return t.store.GetHistory(ctx, userID, from, to)
}

// Today returns the user's check-in for their current day, or nil when none
// has been recorded yet.
func (t *Tracker) Today(ctx context.Context, userID uint) (*models.CheckIn, error) {
	unlock := t.locks.Lock(userID)
	defer unlock()

	user, err := t.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := LocalToday(t.clock, user.UTCOffsetMin)
	items, err := t.store.GetHistory(ctx, userID, today, today)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}
