package services

import "errors"

// Sentinel errors returned by the tracker and its stores. Callers distinguish
// them with errors.Is; everything else coming out of a store is wrapped in
// ErrStoreUnavailable.
var (
	// ErrInvalidUser means the user identifier is unknown.
	ErrInvalidUser = errors.New("unknown user")

	// ErrFutureDate means a check-in was requested for a date after the
	// user's current day. Such writes are rejected and leave no record.
	ErrFutureDate = errors.New("check-in date is in the future")

	// ErrInvalidLength means a challenge was requested with a non-positive
	// number of days.
	ErrInvalidLength = errors.New("challenge length must be positive")

	// ErrStoreUnavailable wraps transient persistence failures. The caller
	// decides whether to retry; the tracker never retries internally.
	ErrStoreUnavailable = errors.New("store unavailable")
)
