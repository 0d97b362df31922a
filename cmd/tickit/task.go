package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fentz26/tickit/internal/models"
	"github.com/fentz26/tickit/internal/tasks"
	"github.com/fentz26/tickit/internal/view"
	"github.com/spf13/cobra"
)

func newAddCmd(c *cli) *cobra.Command {
	var (
		notes     string
		due       string
		priority  string
		tags      []string
		subtasks  []string
		recurring string
	)
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a new task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := models.NewTask{
				Title:    strings.Join(args, " "),
				Notes:    notes,
				Tags:     tags,
				Subtasks: subtasks,
			}
			var err error
			if in.Priority, err = models.ParsePriority(priority); err != nil {
				return err
			}
			if in.Recurring, err = models.ParseRecurrence(recurring); err != nil {
				return err
			}
			if in.Due, err = tasks.ParseDue(due, c.now(), c.loc); err != nil {
				return err
			}

			t, err := c.repo.Create(in)
			if err != nil {
				return err
			}
			c.warnUnsaved()
			fmt.Fprintf(c.out, "Created task %s: %s\n", truncateID(t.ID), t.Title)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&notes, "notes", "", "Free-form notes")
	f.StringVar(&due, "due", "", "Due date (2025-01-31, \"2025-01-31 18:00\", today, tomorrow)")
	f.StringVarP(&priority, "priority", "p", "medium", "Priority: high, medium or low")
	f.StringSliceVarP(&tags, "tag", "t", nil, "Tag (repeatable or comma separated)")
	f.StringArrayVarP(&subtasks, "subtask", "s", nil, "Subtask title (repeatable)")
	f.StringVarP(&recurring, "recurring", "r", "", "Repeat: daily, weekly or monthly")
	return cmd
}

func newListCmd(c *cli) *cobra.Command {
	var (
		q        view.Query
		filter   string
		sortName string
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if q.Filter, err = view.ParseFilter(filter); err != nil {
				return err
			}
			if q.Sort, err = view.ParseSort(sortName); err != nil {
				return err
			}

			now := c.now().In(c.loc)
			shown := view.Project(c.repo.Tasks(), q, now)
			if len(shown) == 0 {
				fmt.Fprintln(c.out, "No tasks found")
				return nil
			}

			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDONE\tPRIORITY\tDUE\tTITLE\tTAGS")
			for _, t := range shown {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					truncateID(t.ID), doneMark(t), t.Priority, dueLabel(t, now, c.loc),
					truncate(t.Title, 48), strings.Join(t.Tags, ","))
			}
			return w.Flush()
		},
	}
	f := cmd.Flags()
	f.StringVarP(&q.Text, "query", "q", "", "Text to match in title, notes or tags")
	f.StringVar(&filter, "view", "all", "View: all, today, overdue or due7")
	f.StringVar(&sortName, "sort", "manual", "Sort: manual, due-asc, due-desc, priority or created-desc")
	f.BoolVarP(&q.ShowCompleted, "completed", "c", false, "Include completed tasks")
	f.BoolVarP(&q.ShowArchived, "archived", "a", false, "Include archived tasks")
	return cmd
}

func newShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show [task-id]",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.resolve(args[0])
			if err != nil {
				return err
			}
			t, _ := c.repo.Get(id)
			printTask(c, t)
			return nil
		},
	}
}

func newEditCmd(c *cli) *cobra.Command {
	var (
		title     string
		notes     string
		due       string
		priority  string
		tags      []string
		recurring string
	)
	cmd := &cobra.Command{
		Use:   "edit [task-id]",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.resolve(args[0])
			if err != nil {
				return err
			}

			var p models.Patch
			f := cmd.Flags()
			if f.Changed("title") {
				p.Title = &title
			}
			if f.Changed("notes") {
				p.Notes = &notes
			}
			if f.Changed("due") {
				d, err := tasks.ParseDue(due, c.now(), c.loc)
				if err != nil {
					return err
				}
				p.Due, p.ClearDue = d, d == nil
			}
			if f.Changed("priority") {
				pr, err := models.ParsePriority(priority)
				if err != nil {
					return err
				}
				p.Priority = &pr
			}
			if f.Changed("tag") {
				p.Tags = &tags
			}
			if f.Changed("recurring") {
				r, err := models.ParseRecurrence(recurring)
				if err != nil {
					return err
				}
				p.Recurring = &r
			}
			if p.IsEmpty() {
				return fmt.Errorf("nothing to change (see tickit edit --help)")
			}

			t, err := c.repo.Update(id, p)
			if err != nil {
				return err
			}
			c.warnUnsaved()
			fmt.Fprintf(c.out, "Updated task %s\n", truncateID(t.ID))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "New title")
	f.StringVar(&notes, "notes", "", "New notes")
	f.StringVar(&due, "due", "", "New due date, or none to clear")
	f.StringVarP(&priority, "priority", "p", "", "New priority")
	f.StringSliceVarP(&tags, "tag", "t", nil, "Replace tags (pass --tag= to clear)")
	f.StringVarP(&recurring, "recurring", "r", "", "New recurrence, or none")
	return cmd
}

func newDoneCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "done [task-id]",
		Aliases: []string{"toggle"},
		Short:   "Toggle a task's completion",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.resolve(args[0])
			if err != nil {
				return err
			}
			res, err := c.repo.ToggleComplete(id)
			if err != nil {
				return err
			}
			c.warnUnsaved()
			if !res.Task.Completed {
				fmt.Fprintf(c.out, "Reopened %s\n", res.Task.Title)
				return nil
			}
			fmt.Fprintf(c.out, "Completed %s\n", res.Task.Title)
			if res.Next != nil {
				fmt.Fprintf(c.out, "Next occurrence %s due %s\n",
					truncateID(res.Next.ID), res.Next.Due.In(c.loc).Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func newRmCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "rm [task-id...]",
		Aliases: []string{"delete"},
		Short:   "Delete tasks",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := c.resolveAll(args)
			if err != nil {
				return err
			}
			n := c.repo.BulkDelete(ids)
			c.warnUnsaved()
			fmt.Fprintf(c.out, "Deleted %d task(s)\n", n)
			return nil
		},
	}
}

func newDupCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "dup [task-id]",
		Short: "Duplicate a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.resolve(args[0])
			if err != nil {
				return err
			}
			t, err := c.repo.Duplicate(id)
			if err != nil {
				return err
			}
			c.warnUnsaved()
			fmt.Fprintf(c.out, "Created task %s: %s\n", truncateID(t.ID), t.Title)
			return nil
		},
	}
}

func newArchiveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "archive [task-id...]",
		Short: "Archive tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := c.resolveAll(args)
			if err != nil {
				return err
			}
			sel := tasks.NewSelection()
			for _, id := range ids {
				sel.Add(id)
			}
			n := c.repo.ArchiveSelected(sel)
			c.warnUnsaved()
			fmt.Fprintf(c.out, "Archived %d task(s)\n", n)
			return nil
		},
	}
}

func newUnarchiveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "unarchive [task-id]",
		Short: "Restore an archived task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.resolve(args[0])
			if err != nil {
				return err
			}
			t, err := c.repo.Unarchive(id)
			if err != nil {
				return err
			}
			c.warnUnsaved()
			fmt.Fprintf(c.out, "Restored %s\n", t.Title)
			return nil
		},
	}
}

func newReorderCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder [task-id] [before-task-id]",
		Short: "Move a task to sit just before another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := c.resolveAll(args)
			if err != nil {
				return err
			}
			if !c.repo.Reorder(ids[0], ids[1]) {
				return fmt.Errorf("cannot move %s before %s (same task or archived)", args[0], args[1])
			}
			c.warnUnsaved()
			fmt.Fprintln(c.out, "Moved")
			return nil
		},
	}
}

func newClearCmd(c *cli) *cobra.Command {
	var archive bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete (or archive) completed tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if archive {
				n := c.repo.ArchiveCompleted()
				c.warnUnsaved()
				fmt.Fprintf(c.out, "Archived %d completed task(s)\n", n)
				return nil
			}
			n := c.repo.ClearCompleted()
			c.warnUnsaved()
			fmt.Fprintf(c.out, "Deleted %d completed task(s)\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&archive, "archive", false, "Archive instead of deleting")
	return cmd
}

func newActionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "action [task-id] [tag:<name>|archive|duplicate]",
		Short: "Apply a quick action to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			act, err := tasks.ParseAction(args[1])
			if err != nil {
				return err
			}
			id, err := c.resolve(args[0])
			if err != nil {
				return err
			}
			t, err := c.repo.Apply(id, act)
			if err != nil {
				return err
			}
			c.warnUnsaved()
			fmt.Fprintf(c.out, "%s: %s %s\n", act.Name(), truncateID(t.ID), t.Title)
			return nil
		},
	}
}

// --- Helpers ---

func (c *cli) resolveAll(refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := c.resolve(ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
