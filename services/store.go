package services

import (
	"context"
	"time"

	"github.com/sugarstop/sugarstop/models"
)

// UserStore looks up tracked users and persists their cached streak counters.
type UserStore interface {
	// GetUser returns the user or ErrInvalidUser when the id is unknown.
	GetUser(ctx context.Context, id uint) (*models.User, error)

	// UpdateUserStats writes the cached counters kept on the user row.
	UpdateUserStats(ctx context.Context, id uint, snap StreakSnapshot, lastCheckIn time.Time) error
}

// CheckInStore is the durable record of one check-in per user per calendar
// day. Dates passed in and returned are normalized to midnight UTC.
type CheckInStore interface {
	// RecordCheckIn upserts the record for (userID, date) and returns the
	// stored row together with the previous row for that day, if any.
	// Repeated identical calls are idempotent. Fails with ErrInvalidUser
	// for unknown users and ErrFutureDate when date is after the user's
	// current day; neither failure leaves a record behind. An empty note
	// keeps whatever note the day already had.
	RecordCheckIn(ctx context.Context, userID uint, date time.Time, success bool, note string) (rec, prev *models.CheckIn, err error)

	// GetHistory returns check-ins ordered by date ascending. A zero from
	// or to leaves that end of the range unbounded. An empty range yields
	// an empty slice, never an error.
	GetHistory(ctx context.Context, userID uint, from, to time.Time) ([]models.CheckIn, error)

	// GetLastCheckIn returns the most recent check-in, or nil when the
	// user has none.
	GetLastCheckIn(ctx context.Context, userID uint) (*models.CheckIn, error)
}

// EnrollmentStore persists challenge enrollments. Only the ChallengeEngine
// mutates enrollment state through it.
type EnrollmentStore interface {
	// ActiveEnrollment returns the user's active enrollment, or nil when
	// there is none.
	ActiveEnrollment(ctx context.Context, userID uint) (*models.ChallengeEnrollment, error)

	// LatestEnrollment returns the most recently created enrollment in any
	// status, or nil when the user never enrolled.
	LatestEnrollment(ctx context.Context, userID uint) (*models.ChallengeEnrollment, error)

	CreateEnrollment(ctx context.Context, e *models.ChallengeEnrollment) error
	SaveEnrollment(ctx context.Context, e *models.ChallengeEnrollment) error
}

// Store bundles the three persistence interfaces; both the GORM store and the
// in-memory store satisfy it.
type Store interface {
	UserStore
	CheckInStore
	EnrollmentStore
}
