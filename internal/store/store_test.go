package store

import (
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fentz26/tickit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestLoad_EmptySlotYieldsDefault(t *testing.T) {
	s := New(NewMemorySlot(), quietLogger())

	assert.Equal(t, models.DefaultState(), s.Load())
}

func TestLoad_CorruptedSlotYieldsDefault(t *testing.T) {
	for name, data := range map[string]string{
		"not json":    "{{{ definitely not json",
		"wrong shape": `{"tasks": "nope"}`,
		"truncated":   `{"tasks":[{"id":"a"`,
	} {
		t.Run(name, func(t *testing.T) {
			slot := NewMemorySlot()
			require.NoError(t, slot.Put(StateKey, []byte(data)))

			got := New(slot, quietLogger()).Load()
			assert.Equal(t, models.DefaultState(), got)
		})
	}
}

func TestLoad_NormalizesMissingFields(t *testing.T) {
	slot := NewMemorySlot()
	require.NoError(t, slot.Put(StateKey, []byte(`{"tasks":[{"id":"a","title":"x"}]}`)))

	got := New(slot, quietLogger()).Load()
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, models.CurrentVersion, got.Version)
	assert.Equal(t, models.PriorityMedium, got.Tasks[0].Priority)
	assert.NotNil(t, got.Tasks[0].Tags)
	assert.NotNil(t, got.Tasks[0].Subtasks)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := New(NewMemorySlot(), quietLogger())
	due := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	st := models.AppState{
		Version: 1,
		Tasks: []models.Task{{
			ID:        "a",
			Title:     "Pay rent",
			Due:       &due,
			Priority:  models.PriorityHigh,
			Tags:      []string{"bills"},
			Subtasks:  []models.Subtask{{ID: "s", Title: "find checkbook"}},
			CreatedAt: time.Date(2024, 12, 20, 8, 0, 0, 0, time.UTC),
			Recurring: models.RecurMonthly,
		}},
	}

	require.NoError(t, s.Save(st))
	assert.Equal(t, st, s.Load())
}

func TestSave_FailureIsWriteError(t *testing.T) {
	slot := NewMemorySlot()
	slot.FailWrites(errors.New("quota exceeded"))
	s := New(slot, quietLogger())

	err := s.Save(models.DefaultState())
	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, StateKey, we.Key)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestHistory_RoundTripAndCorruption(t *testing.T) {
	slot := NewMemorySlot()
	s := New(slot, quietLogger())

	assert.Nil(t, s.LoadHistory())

	entries := [][]byte{{1}, {2, 3}}
	require.NoError(t, s.SaveHistory(entries))
	assert.Equal(t, entries, s.LoadHistory())

	require.NoError(t, slot.Put(HistoryKey, []byte{0xc1}))
	assert.Nil(t, s.LoadHistory())
}

func TestFileSlot_GetPut(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	slot, err := NewFileSlot(dir)
	require.NoError(t, err)
	defer slot.Close()

	_, err = slot.Get(StateKey)
	assert.ErrorIs(t, err, ErrSlotEmpty)

	require.NoError(t, slot.Put(StateKey, []byte("one")))
	require.NoError(t, slot.Put(StateKey, []byte("two")))
	got, err := slot.Get(StateKey)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	_, err = slot.Get("../escape")
	assert.Error(t, err)
}

func TestFileSlot_StoreIntegration(t *testing.T) {
	slot, err := NewFileSlot(t.TempDir())
	require.NoError(t, err)
	s := New(slot, quietLogger())
	defer s.Close()

	st := models.DefaultState()
	st.Tasks = append(st.Tasks, models.Task{ID: "x", Title: "t", Priority: models.PriorityLow, Tags: []string{}, Subtasks: []models.Subtask{}})
	require.NoError(t, s.Save(st))
	assert.Equal(t, st, s.Load())
}
