package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fentz26/tickit/internal/store"
	"github.com/fentz26/tickit/internal/view"
	"github.com/spf13/cobra"
)

func newUndoCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the most recent change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.repo.CanUndo() {
				fmt.Fprintln(c.out, "Nothing to undo")
				return nil
			}
			ok, err := c.repo.Undo()
			if err != nil {
				c.warnUnsaved()
				return err
			}
			if !ok {
				fmt.Fprintln(c.out, "Nothing to undo")
				return nil
			}
			c.warnUnsaved()
			fmt.Fprintf(c.out, "Undone (%d more step(s) available)\n", c.repo.UndoDepth())
			return nil
		},
	}
}

func newHistoryCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the audit trail of recent changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, ok := c.slot.(*store.SQLiteSlot)
			if !ok {
				return fmt.Errorf("history needs the sqlite backend (current: %s)", c.cfg.Backend)
			}
			entries, err := db.ListAudit(limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(c.out, "No history yet")
				return nil
			}

			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tACTION\tOUTCOME\tTASK")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					e.Timestamp.In(c.loc).Format("2006-01-02 15:04:05"), e.Action,
					truncate(e.Outcome, 40), truncateID(e.TaskID))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	return cmd
}

func newStatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the task list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := view.Summarize(c.repo.Tasks(), c.now().In(c.loc))
			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Total:\t%d\n", s.Total)
			fmt.Fprintf(w, "Active:\t%d\n", s.Active)
			fmt.Fprintf(w, "Completed:\t%d\n", s.Completed)
			fmt.Fprintf(w, "Overdue:\t%d\n", s.Overdue)
			fmt.Fprintf(w, "Due today:\t%d\n", s.DueToday)
			fmt.Fprintf(w, "Archived:\t%d\n", s.Archived)
			fmt.Fprintf(w, "Undo steps:\t%d\n", c.repo.UndoDepth())
			return w.Flush()
		},
	}
}
