// Package recurrence derives the next occurrence of a completed recurring task.
package recurrence

import (
	"time"

	"github.com/fentz26/tickit/internal/models"
)

// Advance moves due forward by one step of r, keeping the wall-clock time of
// day in loc. Monthly steps clamp to the last day of the target month.
func Advance(due time.Time, r models.Recurrence, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	d := due.In(loc)

	var next time.Time
	switch r {
	case models.RecurDaily:
		next = d.AddDate(0, 0, 1)
	case models.RecurWeekly:
		next = d.AddDate(0, 0, 7)
	case models.RecurMonthly:
		y, m, day := d.Date()
		last := daysIn(y, m+1, loc)
		if day > last {
			day = last
		}
		next = time.Date(y, m+1, day, d.Hour(), d.Minute(), d.Second(), d.Nanosecond(), loc)
	default:
		return time.Time{}, false
	}
	return next.UTC(), true
}

// daysIn returns the number of days in month m of year y. m may overflow 12.
func daysIn(y int, m time.Month, loc *time.Location) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, loc).Day()
}

// Successor builds the next occurrence of t. It returns false when t is not
// recurring or has no due date. The caller assigns Order.
func Successor(t models.Task, now time.Time, loc *time.Location, newID func() string) (models.Task, bool) {
	if t.Recurring == models.RecurNone || t.Due == nil {
		return models.Task{}, false
	}
	due, ok := Advance(*t.Due, t.Recurring, loc)
	if !ok {
		return models.Task{}, false
	}

	subtasks := make([]models.Subtask, len(t.Subtasks))
	for i, st := range t.Subtasks {
		subtasks[i] = models.Subtask{ID: newID(), Title: st.Title}
	}

	next := models.Task{
		ID:        newID(),
		Title:     t.Title,
		Notes:     t.Notes,
		Due:       &due,
		Priority:  t.Priority,
		Tags:      append([]string{}, t.Tags...),
		Subtasks:  subtasks,
		CreatedAt: now,
		Recurring: t.Recurring,
	}
	next.Normalize()
	return next, true
}
