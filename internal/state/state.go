// Package state holds the single live AppState shared by the repository,
// the undo log and the store.
package state

import "github.com/fentz26/tickit/internal/models"

// Container owns the live AppState. It is not safe for concurrent use; all
// mutations happen on one logical thread.
type Container struct {
	current models.AppState
}

// New creates a container around s.
func New(s models.AppState) *Container {
	s.Normalize()
	return &Container{current: s}
}

// Get returns a pointer to the live state. Callers holding it must not keep
// it across a Replace.
func (c *Container) Get() *models.AppState {
	return &c.current
}

// Replace swaps the live state wholesale.
func (c *Container) Replace(s models.AppState) {
	s.Normalize()
	c.current = s
}

// Snapshot returns a deep copy of the live state.
func (c *Container) Snapshot() models.AppState {
	return c.current.Clone()
}
