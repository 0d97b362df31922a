// Package view projects the task collection into what the user sees:
// filtered by text and date window, then sorted.
package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/fentz26/tickit/internal/models"
)

// Filter is a date-based view window.
type Filter string

const (
	FilterAll     Filter = "all"
	FilterToday   Filter = "today"
	FilterOverdue Filter = "overdue"
	FilterDue7    Filter = "due7"
)

var filters = []Filter{FilterAll, FilterToday, FilterOverdue, FilterDue7}

// ParseFilter accepts all, today, overdue or due7 (alias week). Empty means all.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterToday, FilterOverdue, FilterDue7:
		return f, nil
	case "week":
		return FilterDue7, nil
	}
	return "", fmt.Errorf("unknown view %q (want all, today, overdue or due7)", s)
}

// Next cycles to the following filter.
func (f Filter) Next() Filter {
	if f == "" {
		f = FilterAll
	}
	for i, v := range filters {
		if v == f {
			return filters[(i+1)%len(filters)]
		}
	}
	return FilterAll
}

// Query is everything the projector needs besides the tasks themselves.
type Query struct {
	Text          string
	Filter        Filter
	ShowCompleted bool
	ShowArchived  bool
	Sort          Sort
}

// Matches reports whether t passes every active criterion of q at now.
func (q Query) Matches(t models.Task, now time.Time) bool {
	if t.Completed && !q.ShowCompleted {
		return false
	}
	if t.Archived && !q.ShowArchived {
		return false
	}
	if !matchesText(t, q.Text) {
		return false
	}
	return matchesWindow(t, q.Filter, now)
}

// matchesText is a case-insensitive substring match over title, notes and tags.
func matchesText(t models.Task, text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Title), text) ||
		strings.Contains(strings.ToLower(t.Notes), text) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), text) {
			return true
		}
	}
	return false
}

func matchesWindow(t models.Task, f Filter, now time.Time) bool {
	switch f {
	case FilterToday:
		return t.Due != nil && sameDay(t.Due.In(now.Location()), now)
	case FilterOverdue:
		return IsOverdue(t, now)
	case FilterDue7:
		return t.Due != nil && !t.Due.Before(now) && !t.Due.After(now.Add(7*24*time.Hour))
	}
	return true
}

// IsOverdue reports whether t is incomplete and past due at now.
func IsOverdue(t models.Task, now time.Time) bool {
	return t.Due != nil && !t.Completed && t.Due.Before(now)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
