package services

import "time"

// Clock supplies the current instant. Abstracted so tests and the scheduler
// can run against synthetic dates instead of the wall clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }

// FixedClock is a Clock pinned to T. Tests mutate T to move between days.
type FixedClock struct {
	T time.Time
}

func (c *FixedClock) Now() time.Time { return c.T }

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) { c.T = c.T.Add(d) }

// DateOnly strips the time of day and returns midnight UTC for t's calendar
// day. All stored check-in dates are normalized through this so (user, date)
// comparisons never depend on the wall-clock time or zone a row was written
// with.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LocalToday returns the current calendar day for a user whose day boundary
// sits offsetMin minutes east of UTC.
func LocalToday(c Clock, offsetMin int) time.Time {
	return DateOnly(c.Now().UTC().Add(time.Duration(offsetMin) * time.Minute))
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}
