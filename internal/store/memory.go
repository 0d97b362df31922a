package store

import "sync"

// MemorySlot keeps values in process memory. Nothing survives exit.
type MemorySlot struct {
	mu       sync.Mutex
	values   map[string][]byte
	writeErr error
}

// NewMemorySlot creates an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: map[string][]byte{}}
}

// Get returns a copy of the value stored under key.
func (s *MemorySlot) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), v...), nil
}

// Put stores a copy of data under key, or fails with the injected write error.
func (s *MemorySlot) Put(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeErr != nil {
		return s.writeErr
	}
	s.values[key] = append([]byte(nil), data...)
	return nil
}

// FailWrites makes every subsequent Put return err. Pass nil to recover.
func (s *MemorySlot) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// Close is a no-op.
func (s *MemorySlot) Close() error { return nil }
