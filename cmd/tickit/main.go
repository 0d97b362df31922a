package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd(c *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tickit",
		Short:         "tickit - a local task manager",
		Long:          `tickit keeps a to-do list with due dates, priorities, tags, subtasks and recurrence on your machine, with undo for every change.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.out = cmd.OutOrStdout()
			// Skip opening the store for commands that never touch it
			skipCommands := map[string]bool{
				"version":    true,
				"help":       true,
				"completion": true,
			}
			if skipCommands[cmd.Name()] || (cmd.Parent() != nil && skipCommands[cmd.Parent().Name()]) {
				return nil
			}
			if cmd.Annotations[annotationConfigOnly] == "true" {
				return c.loadConfig()
			}
			return c.open()
		},
		// No RunE - defaults to showing help when no subcommand is provided
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "Config file (default ~/.tickit/config.yaml)")
	flags.StringVar(&c.dataDir, "data-dir", "", "Directory holding tickit data")
	flags.StringVar(&c.backend, "backend", "", "Storage backend: sqlite, file or memory")
	flags.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newAddCmd(c),
		newListCmd(c),
		newShowCmd(c),
		newEditCmd(c),
		newDoneCmd(c),
		newRmCmd(c),
		newDupCmd(c),
		newArchiveCmd(c),
		newUnarchiveCmd(c),
		newReorderCmd(c),
		newClearCmd(c),
		newActionCmd(c),
		newSubtaskCmd(c),
		newUndoCmd(c),
		newExportCmd(c),
		newImportCmd(c),
		newHistoryCmd(c),
		newStatsCmd(c),
		newTUICmd(c),
		newConfigCmd(c),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tickit version",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tickit version %s\n", version)
			fmt.Fprintf(out, "  OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			fmt.Fprintf(out, "  Go version: %s\n", runtime.Version())
		},
	}
}

// execute runs one invocation and always tears the session down.
func execute(args []string, stdout, stderr io.Writer) error {
	c := &cli{errOut: stderr}
	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if cerr := c.close(); cerr != nil && err == nil {
		fmt.Fprintln(stderr, "warning:", cerr)
	}
	return err
}

func main() {
	if err := execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
