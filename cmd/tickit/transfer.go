package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fentz26/tickit/internal/tasks"
	"github.com/spf13/cobra"
)

func newExportCmd(c *cli) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all tasks as JSON, YAML or TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			name := format
			if name == "" && out != "" {
				name = string(tasks.FormatFromPath(out))
			}
			if name == "" {
				name = c.cfg.ExportFormat
			}
			f, err := tasks.ParseFormat(name)
			if err != nil {
				return err
			}

			var w io.Writer = c.out
			if out != "" {
				file, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer file.Close()
				w = file
			}
			if err := c.repo.Export(w, f); err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintf(c.out, "Exported %d task(s) to %s\n", len(c.repo.Tasks()), out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Format: json, yaml or toml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to file instead of stdout")
	return cmd
}

func newImportCmd(c *cli) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Merge tasks from an exported file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f := tasks.FormatFromPath(path)
			if format != "" {
				var err error
				if f, err = tasks.ParseFormat(format); err != nil {
					return err
				}
			}

			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer file.Close()

			res, err := c.repo.Import(file, f)
			if err != nil {
				return err
			}
			c.warnUnsaved()
			fmt.Fprintf(c.out, "Imported %d task(s), skipped %d\n", res.Added, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Format: json, yaml or toml (default from extension)")
	return cmd
}
