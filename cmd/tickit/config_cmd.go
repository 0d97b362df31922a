package main

import (
	"fmt"
	"os"

	"github.com/fentz26/tickit/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// annotationConfigOnly marks commands that need settings but not the store.
const annotationConfigOnly = "tickit/config-only"

func newConfigCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the settings file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write the effective settings to the config file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationConfigOnly: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.settingsPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.SaveConfig(path, c.cfg); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	showCmd := &cobra.Command{
		Use:         "show",
		Short:       "Print the effective settings",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationConfigOnly: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(c.out, "# %s\n", c.settingsPath())
			enc := yaml.NewEncoder(c.out)
			defer enc.Close()
			return enc.Encode(c.cfg)
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func (c *cli) settingsPath() string {
	if c.configPath != "" {
		return c.configPath
	}
	return config.DefaultPath()
}
