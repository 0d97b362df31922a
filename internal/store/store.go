// Package store provides durable persistence of the task collection.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/fentz26/tickit/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// Slot keys.
const (
	StateKey   = "appstate"
	HistoryKey = "undo"
)

// ErrSlotEmpty is returned by Slot.Get when nothing is stored under a key.
var ErrSlotEmpty = errors.New("slot empty")

// Slot is a durable key-value slot.
type Slot interface {
	Get(key string) ([]byte, error)
	Put(key string, data []byte) error
	Close() error
}

// WriteError reports a failed save. It is a warning: the in-memory state
// stays authoritative.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("save %s: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Store loads and saves AppState through a Slot.
type Store struct {
	slot   Slot
	logger *log.Logger
}

// New creates a store over slot. A nil logger uses log.Default().
func New(slot Slot, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{slot: slot, logger: logger}
}

// Slot returns the underlying slot.
func (s *Store) Slot() Slot {
	return s.slot
}

// Load reads the persisted state. An absent, unreadable or unparseable slot
// yields the default state; corruption is never fatal.
func (s *Store) Load() models.AppState {
	data, err := s.slot.Get(StateKey)
	if errors.Is(err, ErrSlotEmpty) {
		return models.DefaultState()
	}
	if err != nil {
		s.logger.Warn("state unreadable, starting empty", "err", err)
		return models.DefaultState()
	}

	var st models.AppState
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn("state corrupted, starting empty", "err", err)
		return models.DefaultState()
	}
	st.Normalize()
	return st
}

// Save serializes st and overwrites the slot.
func (s *Store) Save(st models.AppState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return &WriteError{Key: StateKey, Err: err}
	}
	if err := s.slot.Put(StateKey, data); err != nil {
		return &WriteError{Key: StateKey, Err: err}
	}
	return nil
}

// LoadHistory returns persisted undo snapshots, oldest first. Anything
// unreadable yields an empty history.
func (s *Store) LoadHistory() [][]byte {
	data, err := s.slot.Get(HistoryKey)
	if err != nil {
		if !errors.Is(err, ErrSlotEmpty) {
			s.logger.Warn("undo history unreadable", "err", err)
		}
		return nil
	}
	var entries [][]byte
	if err := msgpack.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("undo history corrupted, discarding", "err", err)
		return nil
	}
	return entries
}

// SaveHistory persists undo snapshots.
func (s *Store) SaveHistory(entries [][]byte) error {
	data, err := msgpack.Marshal(entries)
	if err != nil {
		return &WriteError{Key: HistoryKey, Err: err}
	}
	if err := s.slot.Put(HistoryKey, data); err != nil {
		return &WriteError{Key: HistoryKey, Err: err}
	}
	return nil
}

// Close closes the slot.
func (s *Store) Close() error {
	return s.slot.Close()
}
