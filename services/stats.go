package services

import (
	"context"
	"time"

	"github.com/sugarstop/sugarstop/models"
)

// Summary is the user-facing stats view combining the streak snapshot with
// the state of the most recent challenge, if any.
type Summary struct {
	Streak      StreakSnapshot              `json:"streak"`
	Challenge   *models.ChallengeEnrollment `json:"challenge,omitempty"`
	SuccessRate float64                     `json:"success_rate"`
}

// StatsAggregator composes the streak calculator and the challenge engine
// into one summary. It holds no state of its own.
type StatsAggregator struct {
	users    UserStore
	checkins CheckInStore
	engine   *ChallengeEngine
	clock    Clock
}

// NewStatsAggregator builds an aggregator over the given dependencies.
func NewStatsAggregator(users UserStore, checkins CheckInStore, engine *ChallengeEngine, clock Clock) *StatsAggregator {
	return &StatsAggregator{users: users, checkins: checkins, engine: engine, clock: clock}
}

// Summarize recomputes the user's streak snapshot from the full history and
// attaches the latest enrollment. A user with no history gets the zero
// snapshot and no challenge.
func (a *StatsAggregator) Summarize(ctx context.Context, userID uint) (*Summary, error) {
	user, err := a.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := LocalToday(a.clock, user.UTCOffsetMin)
	history, err := a.checkins.GetHistory(ctx, userID, time.Time{}, today)
	if err != nil {
		return nil, err
	}
	snap := ComputeStreaks(history, today)
	challenge, err := a.engine.Status(ctx, userID)
	if err != nil {
		return nil, err
	}
	sum := &Summary{Streak: snap, Challenge: challenge}
	if total := snap.TotalSuccessDays + snap.Relapses; total > 0 {
		sum.SuccessRate = float64(snap.TotalSuccessDays) / float64(total) * 100
	}
	return sum, nil
}
