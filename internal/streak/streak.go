// Package streak derives current and longest streaks from a habit's
// completed ledger dates.
package streak

import (
	"time"

	"github.com/limbo/habitrack/pkg/calendar"
)

type Result struct {
	Current int
	Longest int
}

// Calculate expects the completed dates of a single habit ordered from the
// newest to the oldest. Only a gap of exactly one day extends a run, so a
// repeated date breaks it.
//
// The current streak is alive only when the newest date is today or
// yesterday. The longest streak is computed over the whole list
// independently of the current one.
func Calculate(completedDesc []time.Time, today time.Time) Result {
	if len(completedDesc) == 0 {
		return Result{}
	}
	today = calendar.Day(today)

	var res Result
	if gap := calendar.DaysBetween(today, completedDesc[0]); gap == 0 || gap == 1 {
		res.Current = 1
		for i := 1; i < len(completedDesc); i++ {
			if calendar.DaysBetween(completedDesc[i-1], completedDesc[i]) != 1 {
				break
			}
			res.Current++
		}
	}

	run := 1
	res.Longest = 1
	for i := 1; i < len(completedDesc); i++ {
		if calendar.DaysBetween(completedDesc[i-1], completedDesc[i]) == 1 {
			run++
			res.Longest = max(res.Longest, run)
		} else {
			run = 1
		}
	}
	return res
}
