package view

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fentz26/tickit/internal/models"
)

// Sort is the display ordering.
type Sort string

const (
	SortManual      Sort = "manual"
	SortDueAsc      Sort = "due-asc"
	SortDueDesc     Sort = "due-desc"
	SortPriority    Sort = "priority"
	SortCreatedDesc Sort = "created-desc"
)

var sorts = []Sort{SortManual, SortDueAsc, SortDueDesc, SortPriority, SortCreatedDesc}

// ParseSort accepts the sort names above. Empty means manual.
func ParseSort(s string) (Sort, error) {
	v := Sort(strings.ToLower(strings.TrimSpace(s)))
	if v == "" {
		return SortManual, nil
	}
	for _, known := range sorts {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown sort %q (want manual, due-asc, due-desc, priority or created-desc)", s)
}

// Next cycles to the following sort.
func (s Sort) Next() Sort {
	if s == "" {
		s = SortManual
	}
	for i, v := range sorts {
		if v == s {
			return sorts[(i+1)%len(sorts)]
		}
	}
	return SortManual
}

// Apply returns a sorted copy of tasks. Ties keep manual order.
func (s Sort) Apply(tasks []models.Task) []models.Task {
	result := make([]models.Task, len(tasks))
	copy(result, tasks)

	// manual order first so every other sort is stable on it
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Order < result[j].Order
	})

	switch s {
	case SortDueAsc, SortDueDesc:
		desc := s == SortDueDesc
		sort.SliceStable(result, func(i, j int) bool {
			a, b := result[i].Due, result[j].Due
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			case desc:
				return a.After(*b)
			}
			return a.Before(*b)
		})
	case SortPriority:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Priority.Rank() < result[j].Priority.Rank()
		})
	case SortCreatedDesc:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		})
	}
	return result
}
