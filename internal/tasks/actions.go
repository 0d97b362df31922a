package tasks

import (
	"fmt"
	"strings"

	"github.com/fentz26/tickit/internal/models"
)

// Action is a quick action applied to a single task. The concrete types are
// AddTag, ArchiveAction and DuplicateAction.
type Action interface {
	Name() string
	isAction()
}

// AddTag appends Tag to the task.
type AddTag struct {
	Tag string
}

// ArchiveAction archives the task.
type ArchiveAction struct{}

// DuplicateAction copies the task.
type DuplicateAction struct{}

func (AddTag) Name() string          { return "tag" }
func (ArchiveAction) Name() string   { return "archive" }
func (DuplicateAction) Name() string { return "duplicate" }

func (AddTag) isAction()          {}
func (ArchiveAction) isAction()   {}
func (DuplicateAction) isAction() {}

// ParseAction parses "tag:<name>", "archive" or "duplicate" (alias "dup").
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	name, arg, hasArg := strings.Cut(s, ":")
	switch strings.ToLower(name) {
	case "tag":
		tag := strings.TrimSpace(arg)
		if !hasArg || tag == "" {
			return nil, fmt.Errorf("%w: tag needs a name (tag:<name>)", ErrInvalidAction)
		}
		return AddTag{Tag: tag}, nil
	case "archive":
		if hasArg {
			return nil, fmt.Errorf("%w: archive takes no argument", ErrInvalidAction)
		}
		return ArchiveAction{}, nil
	case "duplicate", "dup":
		if hasArg {
			return nil, fmt.Errorf("%w: duplicate takes no argument", ErrInvalidAction)
		}
		return DuplicateAction{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidAction, s)
}

// Apply dispatches a to the task with id. For DuplicateAction the returned
// task is the copy.
func (r *Repository) Apply(id string, a Action) (models.Task, error) {
	switch act := a.(type) {
	case AddTag:
		return r.AddTag(id, act.Tag)
	case ArchiveAction:
		return r.Archive(id)
	case DuplicateAction:
		return r.Duplicate(id)
	case nil:
		return models.Task{}, fmt.Errorf("%w: nil action", ErrInvalidAction)
	}
	return models.Task{}, fmt.Errorf("%w: %s", ErrInvalidAction, a.Name())
}
