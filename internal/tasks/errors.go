package tasks

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for task operations.
var (
	ErrEmptyTitle      = errors.New("title must not be blank")
	ErrTaskNotFound    = errors.New("task not found")
	ErrSubtaskNotFound = errors.New("subtask not found")
	ErrInvalidAction   = errors.New("invalid action")
	ErrAmbiguousID     = errors.New("ambiguous task id")
	ErrUnknownFormat   = errors.New("unknown format")
)

// ImportError reports a rejected import. Nothing from the file was merged.
type ImportError struct {
	Reason  string
	Details []string
	Err     error
}

func (e *ImportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "import rejected: %s", e.Reason)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	for _, d := range e.Details {
		b.WriteString("\n  - " + d)
	}
	return b.String()
}

func (e *ImportError) Unwrap() error {
	return e.Err
}
