package services

import (
	"time"

	"github.com/sugarstop/sugarstop/models"
)

// StreakSnapshot is the derived view of a user's check-in history. It is
// recomputed on demand and never persisted as a row of its own, though the
// counters are mirrored onto the user record for cheap reads elsewhere.
type StreakSnapshot struct {
	Current          int `json:"current"`
	Longest          int `json:"longest"`
	TotalSuccessDays int `json:"total_success_days"`
	Relapses         int `json:"relapses"`
}

// ComputeStreaks derives a snapshot from a check-in history ordered by date
// ascending. The current streak walks backward from today; when today has no
// record yet the day counts as pending, not broken, and the walk starts at
// yesterday. A missing day or a success=false record ends the walk. Empty
// history yields the zero snapshot.
func ComputeStreaks(history []models.CheckIn, today time.Time) StreakSnapshot {
	var snap StreakSnapshot
	if len(history) == 0 {
		return snap
	}

	today = DateOnly(today)
	byDate := make(map[time.Time]bool, len(history))
	for _, c := range history {
		byDate[DateOnly(c.Date)] = c.Success
		if c.Success {
			snap.TotalSuccessDays++
		} else {
			snap.Relapses++
		}
	}

	cursor := today
	if _, ok := byDate[cursor]; !ok {
		cursor = cursor.AddDate(0, 0, -1)
	}
	for {
		success, ok := byDate[cursor]
		if !ok || !success {
			break
		}
		snap.Current++
		cursor = cursor.AddDate(0, 0, -1)
	}

	// Longest run of consecutive successful days anywhere in history.
	run := 0
	var prev time.Time
	for _, c := range history {
		d := DateOnly(c.Date)
		switch {
		case !c.Success:
			run = 0
		case run > 0 && d.Equal(prev.AddDate(0, 0, 1)):
			run++
		default:
			run = 1
		}
		if run > snap.Longest {
			snap.Longest = run
		}
		prev = d
	}
	return snap
}
