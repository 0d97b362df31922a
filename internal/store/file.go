package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gofrs/flock"
)

var keyPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// FileSlot stores each key in its own file under dir. Writes go through a
// temp file and rename, serialized across processes by an advisory lock.
type FileSlot struct {
	dir string
	flk *flock.Flock
}

// NewFileSlot creates the directory if needed.
func NewFileSlot(dir string) (*FileSlot, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", dir, err)
	}
	return &FileSlot{
		dir: dir,
		flk: flock.New(filepath.Join(dir, ".lock")),
	}, nil
}

func (s *FileSlot) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid slot key %q", key)
	}
	return filepath.Join(s.dir, key+".dat"), nil
}

// Get reads the file for key.
func (s *FileSlot) Get(key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}

	if err := s.flk.RLock(); err != nil {
		return nil, fmt.Errorf("lock %s: %w", s.dir, err)
	}
	defer func() { _ = s.flk.Unlock() }()

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return data, nil
}

// Put atomically replaces the file for key.
func (s *FileSlot) Put(key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", s.dir, err)
	}
	defer func() { _ = s.flk.Unlock() }()

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename to %s: %w", p, err)
	}
	return nil
}

// Close releases the lock handle.
func (s *FileSlot) Close() error {
	return s.flk.Close()
}
