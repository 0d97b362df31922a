// Package notify delivers "due soon" alerts for newly created tasks.
package notify

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fentz26/tickit/internal/models"
)

// DefaultWindow is how far ahead a due date may be and still trigger an alert.
const DefaultWindow = 60 * time.Minute

// Notifier receives a task whose due date is within the alert window.
type Notifier interface {
	Notify(t models.Task, until time.Duration)
}

// Func adapts a function to Notifier.
type Func func(t models.Task, until time.Duration)

// Notify calls f.
func (f Func) Notify(t models.Task, until time.Duration) { f(t, until) }

// Nop discards every alert.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(models.Task, time.Duration) {}

// LogNotifier writes alerts to a logger.
type LogNotifier struct {
	Logger *log.Logger
}

// Notify logs a warning naming the task.
func (n LogNotifier) Notify(t models.Task, until time.Duration) {
	logger := n.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Warn("task due soon", "title", t.Title, "in", until.Round(time.Minute).String())
}

// Bell rings the terminal bell and prints a line to W.
type Bell struct {
	W io.Writer
}

// Notify writes the alert.
func (b Bell) Notify(t models.Task, until time.Duration) {
	fmt.Fprintf(b.W, "\a⏰ %q is due in %s\n", t.Title, until.Round(time.Minute))
}

// DueWithin reports whether t is due in the future no later than window from
// now, and how long remains.
func DueWithin(t models.Task, now time.Time, window time.Duration) (time.Duration, bool) {
	if t.Due == nil || t.Completed {
		return 0, false
	}
	until := t.Due.Sub(now)
	if until <= 0 || until > window {
		return 0, false
	}
	return until, true
}
