package view

import (
	"time"

	"github.com/fentz26/tickit/internal/models"
)

// Project filters tasks by q and returns them in display order.
func Project(tasks []models.Task, q Query, now time.Time) []models.Task {
	visible := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if q.Matches(t, now) {
			visible = append(visible, t)
		}
	}
	return q.Sort.Apply(visible)
}

// Stats summarizes the collection.
type Stats struct {
	Total     int
	Active    int
	Completed int
	Overdue   int
	DueToday  int
	Archived  int
}

// Summarize counts tasks by state. Archived tasks count only as archived.
func Summarize(tasks []models.Task, now time.Time) Stats {
	var s Stats
	for _, t := range tasks {
		s.Total++
		if t.Archived {
			s.Archived++
			continue
		}
		if t.Completed {
			s.Completed++
		} else {
			s.Active++
		}
		if IsOverdue(t, now) {
			s.Overdue++
		}
		if !t.Completed && matchesWindow(t, FilterToday, now) {
			s.DueToday++
		}
	}
	return s
}
