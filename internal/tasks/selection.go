package tasks

import (
	"sort"

	"github.com/fentz26/tickit/internal/models"
)

// Selection is a set of task ids chosen for a bulk action. It lives only in
// the UI session and is never persisted.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// Toggle flips membership of id and reports whether it is now selected.
func (s *Selection) Toggle(id string) bool {
	if s.Has(id) {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

func (s *Selection) Add(id string)    { s.ids[id] = struct{}{} }
func (s *Selection) Remove(id string) { delete(s.ids, id) }

func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// SelectAll adds every task in tasks.
func (s *Selection) SelectAll(tasks []models.Task) {
	for _, t := range tasks {
		s.ids[t.ID] = struct{}{}
	}
}

func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
}

func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids in sorted order.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Prune drops ids that no longer refer to a task in tasks.
func (s *Selection) Prune(tasks []models.Task) {
	live := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		live[t.ID] = true
	}
	for id := range s.ids {
		if !live[id] {
			delete(s.ids, id)
		}
	}
}
