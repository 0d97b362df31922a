package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fentz26/tickit/internal/tasks"
	"github.com/spf13/cobra"
)

func newSubtaskCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subtask",
		Aliases: []string{"sub"},
		Short:   "Manage a task's checklist",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add [task-id] [title]",
		Short: "Append a subtask",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.resolve(args[0])
			if err != nil {
				return err
			}
			st, err := c.repo.AddSubtask(id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			c.warnUnsaved()
			fmt.Fprintf(c.out, "Added subtask %s\n", st.Title)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "done [task-id] [n|subtask-id]",
		Short: "Toggle a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, sid, err := c.resolveSubtask(args[0], args[1])
			if err != nil {
				return err
			}
			st, err := c.repo.ToggleSubtask(id, sid)
			if err != nil {
				return err
			}
			c.warnUnsaved()
			mark := "open"
			if st.Completed {
				mark = "done"
			}
			fmt.Fprintf(c.out, "%s: %s\n", st.Title, mark)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm [task-id] [n|subtask-id]",
		Aliases: []string{"remove"},
		Short:   "Remove a subtask",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, sid, err := c.resolveSubtask(args[0], args[1])
			if err != nil {
				return err
			}
			if err := c.repo.RemoveSubtask(id, sid); err != nil {
				return err
			}
			c.warnUnsaved()
			fmt.Fprintln(c.out, "Removed subtask")
			return nil
		},
	})

	return cmd
}

// resolveSubtask accepts a 1-based position or an id prefix for the subtask.
func (c *cli) resolveSubtask(taskRef, subRef string) (string, string, error) {
	id, err := c.resolve(taskRef)
	if err != nil {
		return "", "", err
	}
	t, _ := c.repo.Get(id)

	if n, err := strconv.Atoi(subRef); err == nil {
		if n < 1 || n > len(t.Subtasks) {
			return "", "", fmt.Errorf("%w: no subtask %d", tasks.ErrSubtaskNotFound, n)
		}
		return id, t.Subtasks[n-1].ID, nil
	}

	var match string
	for _, st := range t.Subtasks {
		if strings.HasPrefix(st.ID, subRef) {
			if match != "" {
				return "", "", fmt.Errorf("%w: %s", tasks.ErrAmbiguousID, subRef)
			}
			match = st.ID
		}
	}
	if match == "" {
		return "", "", fmt.Errorf("%w: %s", tasks.ErrSubtaskNotFound, subRef)
	}
	return id, match, nil
}
