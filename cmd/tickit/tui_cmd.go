package main

import (
	"fmt"

	"github.com/fentz26/tickit/internal/tui"
	"github.com/spf13/cobra"
)

func newTUICmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch the interactive TUI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := tui.New(c.repo, tui.WithClock(c.now), tui.WithLocation(c.loc))
			if err := app.Run(); err != nil {
				return fmt.Errorf("TUI error: %w", err)
			}
			return nil
		},
	}
}
