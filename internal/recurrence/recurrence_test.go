package recurrence

import (
	"fmt"
	"testing"
	"time"

	"github.com/fentz26/tickit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvance(t *testing.T) {
	utc := func(y int, m time.Month, d, h, min int) time.Time {
		return time.Date(y, m, d, h, min, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		due  time.Time
		rec  models.Recurrence
		want time.Time
		ok   bool
	}{
		{"daily", utc(2025, 1, 1, 9, 30), models.RecurDaily, utc(2025, 1, 2, 9, 30), true},
		{"daily across month", utc(2025, 1, 31, 23, 0), models.RecurDaily, utc(2025, 2, 1, 23, 0), true},
		{"weekly", utc(2025, 1, 1, 0, 0), models.RecurWeekly, utc(2025, 1, 8, 0, 0), true},
		{"monthly", utc(2025, 1, 1, 0, 0), models.RecurMonthly, utc(2025, 2, 1, 0, 0), true},
		{"monthly clamps", utc(2025, 1, 31, 8, 0), models.RecurMonthly, utc(2025, 2, 28, 8, 0), true},
		{"monthly clamps leap", utc(2024, 1, 31, 8, 0), models.RecurMonthly, utc(2024, 2, 29, 8, 0), true},
		{"monthly december", utc(2025, 12, 15, 8, 0), models.RecurMonthly, utc(2026, 1, 15, 8, 0), true},
		{"none", utc(2025, 1, 1, 0, 0), models.RecurNone, time.Time{}, false},
		{"unknown", utc(2025, 1, 1, 0, 0), models.Recurrence("yearly"), time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Advance(tt.due, tt.rec, time.UTC)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestAdvance_KeepsLocalTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	due := time.Date(2025, 3, 10, 7, 0, 0, 0, loc)

	got, ok := Advance(due, models.RecurDaily, loc)
	require.True(t, ok)
	assert.Equal(t, 7, got.In(loc).Hour())
	assert.Equal(t, time.UTC, got.Location())
}

func TestSuccessor(t *testing.T) {
	due := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	src := models.Task{
		ID:        "orig",
		Title:     "Pay rent",
		Notes:     "landlord",
		Completed: true,
		Archived:  true,
		Due:       &due,
		Priority:  models.PriorityHigh,
		Tags:      []string{"bills"},
		Subtasks:  []models.Subtask{{ID: "s1", Title: "transfer", Completed: true}},
		Order:     4,
		Recurring: models.RecurMonthly,
	}

	n := 0
	newID := func() string { n++; return fmt.Sprintf("id-%d", n) }

	next, ok := Successor(src, now, time.UTC, newID)
	require.True(t, ok)
	assert.Equal(t, "id-2", next.ID)
	assert.Equal(t, "Pay rent", next.Title)
	assert.Equal(t, "landlord", next.Notes)
	assert.False(t, next.Completed)
	assert.False(t, next.Archived)
	assert.Equal(t, models.PriorityHigh, next.Priority)
	assert.Equal(t, models.RecurMonthly, next.Recurring)
	assert.Equal(t, now, next.CreatedAt)
	require.NotNil(t, next.Due)
	assert.Equal(t, "2025-02-01T00:00:00Z", next.Due.Format(time.RFC3339))
	require.Len(t, next.Subtasks, 1)
	assert.Equal(t, "id-1", next.Subtasks[0].ID)
	assert.False(t, next.Subtasks[0].Completed)

	// Tags are copied, not shared
	next.Tags[0] = "changed"
	assert.Equal(t, "bills", src.Tags[0])
}

func TestSuccessor_InertWithoutDue(t *testing.T) {
	src := models.Task{ID: "a", Title: "x", Recurring: models.RecurDaily}
	_, ok := Successor(src, time.Now(), time.UTC, func() string { return "b" })
	assert.False(t, ok)
}
