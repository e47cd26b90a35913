// Package schedule holds the pure slot-availability computation. It has no
// I/O and no locking; callers fetch the operating window and the busy
// intervals, and this package derives the free candidates.
package schedule

import (
	"time"

	"shopbook/internal/domain/appointment"
)

// Window is a shop's open interval on one calendar date.
type Window struct {
	Start time.Time
	End   time.Time
}

// Available partitions the window into candidate slots of the service
// duration, stepping by granularity, and drops every candidate that
//   - would run past the closing time,
//   - starts before "now" (relevant when the date is today),
//   - overlaps a busy interval.
//
// Candidates may overlap each other; they only have to be disjoint from the
// busy set. The result is ordered by start time; empty is a valid result.
func Available(
	w Window,
	duration time.Duration,
	granularity time.Duration,
	busy []appointment.TimeSlot,
	now time.Time,
) []appointment.TimeSlot {
	if duration <= 0 || granularity <= 0 || !w.Start.Before(w.End) {
		return nil
	}

	var slots []appointment.TimeSlot
	for start := w.Start; !start.Add(duration).After(w.End); start = start.Add(granularity) {
		if start.Before(now) {
			continue
		}

		candidate, err := appointment.NewTimeSlot(start, start.Add(duration))
		if err != nil {
			continue
		}

		if overlapsAny(candidate, busy) {
			continue
		}
		slots = append(slots, candidate)
	}
	return slots
}

func overlapsAny(candidate appointment.TimeSlot, busy []appointment.TimeSlot) bool {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}
