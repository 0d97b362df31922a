package undo

import (
	"fmt"
	"testing"
	"time"

	"github.com/fentz26/tickit/internal/models"
	"github.com/fentz26/tickit/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState(n int) models.AppState {
	s := models.DefaultState()
	for i := 0; i < n; i++ {
		due := time.Date(2025, 1, i+1, 9, 30, 0, 0, time.UTC)
		s.Tasks = append(s.Tasks, models.Task{
			ID:        fmt.Sprintf("task-%d", i),
			Title:     fmt.Sprintf("Task %d", i),
			Due:       &due,
			Priority:  models.PriorityHigh,
			Tags:      []string{"home"},
			Subtasks:  []models.Subtask{{ID: "s1", Title: "step"}},
			CreatedAt: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
			Order:     i,
			Recurring: models.RecurWeekly,
		})
	}
	return s
}

func TestUndo_Empty(t *testing.T) {
	l := New(state.New(models.DefaultState()), 0)

	ok, err := l.Undo()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, DefaultCapacity, l.Capacity())
}

func TestUndo_RoundTrip(t *testing.T) {
	c := state.New(sampleState(2))
	l := New(c, 5)
	before := c.Snapshot()

	require.NoError(t, l.Capture())
	c.Get().Tasks = c.Get().Tasks[:1]
	c.Get().Tasks[0].Title = "changed"

	ok, err := l.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, before, c.Snapshot())
	assert.Equal(t, 0, l.Len())
}

func TestUndo_CapacityEvictsOldest(t *testing.T) {
	c := state.New(models.DefaultState())
	l := New(c, 3)

	for i := 1; i <= 5; i++ {
		require.NoError(t, l.Capture())
		c.Replace(sampleState(i))
	}
	assert.Equal(t, 3, l.Len())

	// Newest snapshots are the states before mutations 3, 4 and 5.
	for _, want := range []int{4, 3, 2} {
		ok, err := l.Undo()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Len(t, c.Get().Tasks, want)
	}

	ok, err := l.Undo()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, c.Get().Tasks, 2)
}

func TestUndo_RestoreKeepsNewest(t *testing.T) {
	c := state.New(models.DefaultState())
	var entries [][]byte
	for i := 0; i < 4; i++ {
		data, err := Encode(sampleState(i))
		require.NoError(t, err)
		entries = append(entries, data)
	}

	l := New(c, 2)
	l.Restore(entries)
	require.Equal(t, 2, l.Len())

	ok, err := l.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, c.Get().Tasks, 3)
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode([]byte{0xc1, 0x00, 0xff})
	assert.Error(t, err)
}

func TestUndo_CorruptNewestReportsAndKeepsOlder(t *testing.T) {
	c := state.New(sampleState(1))
	l := New(c, 5)
	require.NoError(t, l.Capture())
	c.Replace(sampleState(2))
	live := c.Snapshot()

	entries := l.Entries()
	l.Restore(append(entries, []byte{0xc1, 0x00, 0xff}))
	require.Equal(t, 2, l.Len())

	ok, err := l.Undo()
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
	assert.Contains(t, err.Error(), "1 older step(s) remain")
	assert.Equal(t, live, c.Snapshot(), "live state untouched")

	ok, err = l.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, c.Get().Tasks, 1)
}

func TestUndo_RestoresUTCTimes(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*3600)
	due := time.Date(2025, 3, 1, 10, 0, 0, 0, zone)
	c := state.New(models.AppState{Tasks: []models.Task{{
		ID:        "a",
		Title:     "call",
		Due:       &due,
		CreatedAt: time.Date(2025, 1, 1, 9, 0, 0, 0, zone),
	}}})
	before := c.Snapshot()
	l := New(c, 5)

	require.NoError(t, l.Capture())
	c.Get().Tasks = append(c.Get().Tasks, models.Task{ID: "b", Title: "other"})

	ok, err := l.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, before, c.Snapshot())
	assert.Equal(t, time.UTC, c.Get().Tasks[0].Due.Location())
	assert.Equal(t, time.UTC, c.Get().Tasks[0].CreatedAt.Location())
}
