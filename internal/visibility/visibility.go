// Package visibility decides which tasks appear for a selected calendar
// date.
//
// The backend returns the full task set for an identity; this package
// derives the subset that is due on a given day. One-time tasks appear only
// on their creation date. Daily recurring tasks appear on every date inside
// their [start, end] range. All comparisons are at calendar-date
// granularity in the selected date's location.
//
// Recurrence patterns other than daily can be stored and round-trip through
// the client untouched, but they are never considered due: their visibility
// semantics have not been defined by the product, and guessing here would
// silently show or hide tasks. See Matches.
package visibility

import (
	"time"

	"github.com/tarefista/tarefista/internal/api"
)

// Filter returns the tasks visible on the selected date, preserving input
// order. It is a pure function: the input slice is never mutated, identical
// inputs yield identical outputs, and malformed or absent dates never cause
// a panic.
func Filter(tasks []api.Task, selected time.Time) []api.Task {
	visible := make([]api.Task, 0, len(tasks))
	for _, t := range tasks {
		if VisibleOn(t, selected) {
			visible = append(visible, t)
		}
	}
	return visible
}

// VisibleOn reports whether a single task is due on the selected date.
func VisibleOn(t api.Task, selected time.Time) bool {
	if t.Recurrence == nil {
		// One-time tasks appear only on the day they were created.
		// A task with no creation date cannot be placed on any day.
		if t.CreatedAt.IsZero() {
			return false
		}
		return sameDay(t.CreatedAt, selected)
	}

	if !Matches(t.Recurrence.Pattern) {
		return false
	}

	day := dayOf(selected, selected)

	if !t.Recurrence.Start.IsZero() {
		if day.Before(dayOf(t.Recurrence.Start, selected)) {
			return false
		}
	}

	if !t.Recurrence.End.IsZero() {
		if day.After(dayOf(t.Recurrence.End, selected)) {
			return false
		}
	}

	return true
}

// Matches reports whether a recurrence pattern has defined visibility
// semantics. Only daily is evaluated; the remaining patterns are selectable
// when creating tasks but their due-date rules are an open extension point.
func Matches(p api.Pattern) bool {
	return p == api.PatternDaily
}

// sameDay reports whether a and b fall on the same calendar date, evaluated
// in b's location.
func sameDay(a, b time.Time) bool {
	return dayOf(a, b).Equal(dayOf(b, b))
}

// dayOf truncates t to midnight of its calendar date in ref's location.
func dayOf(t, ref time.Time) time.Time {
	t = t.In(ref.Location())
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ref.Location())
}
