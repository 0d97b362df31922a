// Package models defines the core domain types for tickit.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// CurrentVersion is the version tag written with every persisted AppState.
const CurrentVersion = 1

// Priority ranks a task. The zero value is treated as medium.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Recurrence describes how a task repeats. The empty value means non-recurring.
type Recurrence string

const (
	RecurNone    Recurrence = ""
	RecurDaily   Recurrence = "daily"
	RecurWeekly  Recurrence = "weekly"
	RecurMonthly Recurrence = "monthly"
)

var (
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrInvalidRecurrence = errors.New("invalid recurrence")
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank orders priorities high < medium < low. Unknown values rank as medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

// ParsePriority accepts high/medium/low (case-insensitive). Empty input yields medium.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PriorityMedium, nil
	}
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return p, nil
}

// Valid reports whether r is a known recurrence, including none.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurNone, RecurDaily, RecurWeekly, RecurMonthly:
		return true
	}
	return false
}

// ParseRecurrence accepts "", none, daily, weekly or monthly.
func ParseRecurrence(s string) (Recurrence, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "none" {
		return RecurNone, nil
	}
	r := Recurrence(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRecurrence, s)
	}
	return r, nil
}

// Subtask is a checklist entry owned by exactly one Task.
type Subtask struct {
	ID        string `json:"id" yaml:"id" toml:"id"`
	Title     string `json:"title" yaml:"title" toml:"title"`
	Completed bool   `json:"completed" yaml:"completed" toml:"completed"`
}

// Task is a single to-do item.
type Task struct {
	ID        string     `json:"id" yaml:"id" toml:"id"`
	Title     string     `json:"title" yaml:"title" toml:"title"`
	Notes     string     `json:"notes" yaml:"notes" toml:"notes"`
	Completed bool       `json:"completed" yaml:"completed" toml:"completed"`
	Due       *time.Time `json:"due" yaml:"due,omitempty" toml:"due,omitempty"`
	Priority  Priority   `json:"priority" yaml:"priority" toml:"priority"`
	Tags      []string   `json:"tags" yaml:"tags" toml:"tags"`
	Subtasks  []Subtask  `json:"subtasks" yaml:"subtasks" toml:"subtasks"`
	CreatedAt time.Time  `json:"createdAt" yaml:"createdAt" toml:"createdAt"`
	Order     int        `json:"order" yaml:"order" toml:"order"`
	Recurring Recurrence `json:"recurring" yaml:"recurring" toml:"recurring"`
	Archived  bool       `json:"archived" yaml:"archived" toml:"archived"`
}

// Clone returns a deep copy of t. Tags, subtasks and due never alias the original.
func (t Task) Clone() Task {
	c := t
	if t.Due != nil {
		due := *t.Due
		c.Due = &due
	}
	c.Tags = append([]string{}, t.Tags...)
	c.Subtasks = append([]Subtask{}, t.Subtasks...)
	return c
}

// Normalize replaces nil collections with empty ones, fills in the default
// priority and puts timestamps in UTC.
func (t *Task) Normalize() {
	t.CreatedAt = t.CreatedAt.UTC()
	if t.Due != nil {
		due := t.Due.UTC()
		t.Due = &due
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.Subtasks == nil {
		t.Subtasks = []Subtask{}
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
}

// HasTag reports whether tag is attached to the task (exact match).
func (t Task) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// AppState is the unit of persistence and of undo snapshotting.
type AppState struct {
	Tasks   []Task `json:"tasks" yaml:"tasks" toml:"tasks"`
	Version int    `json:"version" yaml:"version" toml:"version"`
}

// DefaultState returns the empty state used on first run and on corruption.
func DefaultState() AppState {
	return AppState{Tasks: []Task{}, Version: CurrentVersion}
}

// Clone returns a deep copy of s.
func (s AppState) Clone() AppState {
	c := AppState{Tasks: make([]Task, len(s.Tasks)), Version: s.Version}
	for i, t := range s.Tasks {
		c.Tasks[i] = t.Clone()
	}
	return c
}

// Normalize fixes up nil collections and a missing version tag.
func (s *AppState) Normalize() {
	if s.Tasks == nil {
		s.Tasks = []Task{}
	}
	for i := range s.Tasks {
		s.Tasks[i].Normalize()
	}
	if s.Version == 0 {
		s.Version = CurrentVersion
	}
}

// NewTask is the input to task creation.
type NewTask struct {
	Title     string
	Notes     string
	Due       *time.Time
	Priority  Priority
	Tags      []string
	Subtasks  []string // titles
	Recurring Recurrence
}

// Patch represents a partial update.
// nil pointer => "no change". ClearDue removes the due date.
type Patch struct {
	Title     *string
	Notes     *string
	Due       *time.Time
	ClearDue  bool
	Priority  *Priority
	Tags      *[]string
	Recurring *Recurrence
	Completed *bool
	Archived  *bool
}

// IsEmpty reports whether the patch would change nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Notes == nil && p.Due == nil && !p.ClearDue &&
		p.Priority == nil && p.Tags == nil && p.Recurring == nil &&
		p.Completed == nil && p.Archived == nil
}

// AuditEntry records a state-mutating action.
type AuditEntry struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	InputsHash string    `json:"inputs_hash"`
	Outcome    string    `json:"outcome"`
	TaskID     string    `json:"task_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
