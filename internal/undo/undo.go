// Package undo keeps a bounded history of AppState snapshots.
package undo

import (
	"errors"
	"fmt"

	"github.com/fentz26/tickit/internal/models"
	"github.com/fentz26/tickit/internal/state"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultCapacity is the number of snapshots retained when none is configured.
const DefaultCapacity = 50

// Log is a capped stack of serialized snapshots. When full, the oldest
// snapshot is evicted; Undo always pops the newest.
type Log struct {
	container *state.Container
	capacity  int
	entries   [][]byte // oldest first
}

// New creates an undo log over c. A non-positive capacity means DefaultCapacity.
func New(c *state.Container, capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{container: c, capacity: capacity}
}

// Capture pushes a snapshot of the container's current state.
func (l *Log) Capture() error {
	data, err := Encode(*l.container.Get())
	if err != nil {
		return err
	}
	if len(l.entries) == l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, data)
	return nil
}

// ErrCorruptSnapshot reports a newest snapshot that could not be decoded.
// The snapshot is discarded; older ones stay available.
var ErrCorruptSnapshot = errors.New("undo snapshot unreadable")

// Undo replaces the container's state with the newest snapshot.
// It returns false when there is nothing to undo.
func (l *Log) Undo() (bool, error) {
	n := len(l.entries)
	if n == 0 {
		return false, nil
	}

	s, err := Decode(l.entries[n-1])
	l.entries[n-1] = nil
	l.entries = l.entries[:n-1]
	if err != nil {
		return false, fmt.Errorf("%w (%d older step(s) remain): %v", ErrCorruptSnapshot, len(l.entries), err)
	}
	l.container.Replace(s)
	return true, nil
}

// Len returns the number of retained snapshots.
func (l *Log) Len() int { return len(l.entries) }

// Capacity returns the maximum number of retained snapshots.
func (l *Log) Capacity() int { return l.capacity }

// Entries returns the retained snapshots, oldest first.
func (l *Log) Entries() [][]byte {
	out := make([][]byte, len(l.entries))
	copy(out, l.entries)
	return out
}

// Restore replaces the history with entries (oldest first), keeping only the
// newest Capacity() of them.
func (l *Log) Restore(entries [][]byte) {
	if len(entries) > l.capacity {
		entries = entries[len(entries)-l.capacity:]
	}
	l.entries = make([][]byte, len(entries))
	copy(l.entries, entries)
}

// Encode serializes an AppState snapshot.
func Encode(s models.AppState) ([]byte, error) {
	data, err := msgpack.Marshal(&s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode deserializes a snapshot produced by Encode.
func Decode(data []byte) (models.AppState, error) {
	var s models.AppState
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return models.AppState{}, fmt.Errorf("decode snapshot: %w", err)
	}
	s.Normalize()
	return s, nil
}
