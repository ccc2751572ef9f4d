package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notegrid/pkg/search"
)

func newListCmd(c *cli) *cobra.Command {
	var asJSON, asYAML bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := pickFormat(asJSON, asYAML)
			if err != nil {
				return err
			}

			b, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			notes := b.List()
			if f != formatText {
				return encode(cmd.OutOrStdout(), f, notes)
			}
			if len(notes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No notes yet")
				return nil
			}
			return printNotes(cmd.OutOrStdout(), notes)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Output in YAML format")
	return cmd
}

func newSearchCmd(c *cli) *cobra.Command {
	var asJSON, asYAML bool

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Rank notes by how well their title or content matches QUERY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := pickFormat(asJSON, asYAML)
			if err != nil {
				return err
			}

			b, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			results := b.Search(args[0])
			if results == nil {
				results = []search.Result{}
			}
			if f != formatText {
				return encode(cmd.OutOrStdout(), f, results)
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches")
				return nil
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "SCORE\tID\tTITLE")
			for _, r := range results {
				fmt.Fprintf(tw, "%g\t%s\t%s\n", r.Score, r.Note.ID, r.Note.Title)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Output in YAML format")
	return cmd
}
