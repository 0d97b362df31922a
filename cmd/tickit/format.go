package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fentz26/tickit/internal/models"
	"github.com/fentz26/tickit/internal/view"
)

func doneMark(t models.Task) string {
	switch {
	case t.Archived:
		return "archived"
	case t.Completed:
		return "yes"
	}
	return ""
}

// dueLabel renders a due date in loc, flagging overdue tasks.
func dueLabel(t models.Task, now time.Time, loc *time.Location) string {
	if t.Due == nil {
		return "-"
	}
	s := t.Due.In(loc).Format("2006-01-02 15:04")
	if view.IsOverdue(t, now) {
		s += " (overdue)"
	}
	return s
}

func printTask(c *cli, t models.Task) {
	now := c.now().In(c.loc)
	fmt.Fprintf(c.out, "ID:        %s\n", t.ID)
	fmt.Fprintf(c.out, "Title:     %s\n", t.Title)
	fmt.Fprintf(c.out, "Status:    %s\n", status(t))
	fmt.Fprintf(c.out, "Priority:  %s\n", t.Priority)
	fmt.Fprintf(c.out, "Due:       %s\n", dueLabel(t, now, c.loc))
	if t.Recurring != models.RecurNone {
		fmt.Fprintf(c.out, "Repeats:   %s\n", t.Recurring)
	}
	if len(t.Tags) > 0 {
		fmt.Fprintf(c.out, "Tags:      %s\n", strings.Join(t.Tags, ", "))
	}
	fmt.Fprintf(c.out, "Created:   %s\n", t.CreatedAt.In(c.loc).Format(time.RFC3339))
	if t.Notes != "" {
		fmt.Fprintf(c.out, "\n%s\n", t.Notes)
	}
	if len(t.Subtasks) > 0 {
		fmt.Fprintln(c.out, "\nSubtasks:")
		for i, st := range t.Subtasks {
			box := "[ ]"
			if st.Completed {
				box = "[x]"
			}
			fmt.Fprintf(c.out, "  %d. %s %s\n", i+1, box, st.Title)
		}
	}
}

func status(t models.Task) string {
	switch {
	case t.Archived && t.Completed:
		return "completed, archived"
	case t.Archived:
		return "archived"
	case t.Completed:
		return "completed"
	}
	return "open"
}
