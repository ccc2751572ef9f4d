package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notegrid"
)

func newConfigCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the settings file of a data directory",
	}
	cmd.AddCommand(newConfigInitCmd(c), newConfigShowCmd(c))
	return cmd
}

func newConfigInitCmd(c *cli) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write notegrid.yaml with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.dir
			if dir == "" {
				dir = "."
			}
			path, err := notegrid.WriteSettings(dir, notegrid.DefaultSettings(), force)
			if err != nil {
				return err
			}
			c.log().Debug("settings written", "path", path)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

func newConfigShowCmd(c *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings (defaults, file and environment)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.dataDir()
			if err != nil {
				return err
			}
			s, err := notegrid.LoadSettings(dir)
			if err != nil {
				return err
			}
			f := formatYAML
			if asJSON {
				f = formatJSON
			}
			return encode(cmd.OutOrStdout(), f, s)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}
