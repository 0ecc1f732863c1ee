package services

import (
	"context"
	"time"

	"github.com/sugarstop/sugarstop/models"
)

// ChallengeEngine owns all enrollment state transitions. An enrollment moves
// active -> completed | failed | abandoned and never leaves a terminal state.
type ChallengeEngine struct {
	users UserStore
	store EnrollmentStore
	clock Clock
}

// NewChallengeEngine builds an engine over the given stores.
func NewChallengeEngine(users UserStore, store EnrollmentStore, clock Clock) *ChallengeEngine {
	return &ChallengeEngine{users: users, store: store, clock: clock}
}

// Enroll starts a fresh lengthDays challenge for the user. Any existing
// active enrollment is abandoned first, so a user holds at most one active
// enrollment at a time. The new enrollment starts today with zero days
// credited.
func (e *ChallengeEngine) Enroll(ctx context.Context, userID uint, lengthDays int) (*models.ChallengeEnrollment, error) {
	if lengthDays <= 0 {
		return nil, ErrInvalidLength
	}
	user, err := e.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	active, err := e.store.ActiveEnrollment(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		if err := e.finish(ctx, active, models.EnrollmentAbandoned); err != nil {
			return nil, err
		}
	}
	enr := &models.ChallengeEnrollment{
		UserID:     userID,
		LengthDays: lengthDays,
		StartDate:  LocalToday(e.clock, user.UTCOffsetMin),
		CurrentDay: 0,
		Status:     models.EnrollmentActive,
	}
	if err := e.store.CreateEnrollment(ctx, enr); err != nil {
		return nil, err
	}
	return enr, nil
}

// Advance applies one check-in result to the user's active enrollment. A
// success credits one day and completes the challenge when the credited days
// reach its length; a failure fails it outright. Without an active enrollment
// Advance is a no-op. The caller is responsible for invoking Advance at most
// once per new check-in so a replayed day never double-credits.
func (e *ChallengeEngine) Advance(ctx context.Context, userID uint, success bool) (*models.ChallengeEnrollment, error) {
	if _, err := e.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	active, err := e.store.ActiveEnrollment(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, nil
	}
	if !success {
		if err := e.finish(ctx, active, models.EnrollmentFailed); err != nil {
			return nil, err
		}
		return active, nil
	}
	active.CurrentDay++
	if active.CurrentDay >= active.LengthDays {
		active.CurrentDay = active.LengthDays
		return active, e.finish(ctx, active, models.EnrollmentCompleted)
	}
	if err := e.store.SaveEnrollment(ctx, active); err != nil {
		return nil, err
	}
	return active, nil
}

// Abandon ends the user's active enrollment. It is a silent no-op when the
// latest enrollment is already terminal or the user never enrolled.
func (e *ChallengeEngine) Abandon(ctx context.Context, userID uint) error {
	if _, err := e.users.GetUser(ctx, userID); err != nil {
		return err
	}
	active, err := e.store.ActiveEnrollment(ctx, userID)
	if err != nil {
		return err
	}
	if active == nil {
		return nil
	}
	return e.finish(ctx, active, models.EnrollmentAbandoned)
}

// Status returns the user's most recent enrollment in any state, or nil when
// the user never enrolled.
func (e *ChallengeEngine) Status(ctx context.Context, userID uint) (*models.ChallengeEnrollment, error) {
	if _, err := e.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return e.store.LatestEnrollment(ctx, userID)
}

func (e *ChallengeEngine) finish(ctx context.Context, enr *models.ChallengeEnrollment, status models.EnrollmentStatus) error {
	now := e.clock.Now()
	enr.Status = status
	enr.EndedAt = &now
	return e.store.SaveEnrollment(ctx, enr)
}
