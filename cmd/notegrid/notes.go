package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/notegrid/pkg/core"
)

func newAddCmd(c *cli) *cobra.Command {
	var (
		content string
		plain   bool
		color   string
	)

	cmd := &cobra.Command{
		Use:   "add [TITLE]",
		Short: "Create a note in front of the board",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			d := core.Draft{Content: content, ContentType: core.ContentRich}
			if len(args) == 1 {
				d.Title = args[0]
			}
			if plain {
				d.ContentType = core.ContentPlain
			}
			if color != "" {
				d.Color = parseColor(c, color)
			}

			n, err := b.Create(cmd.Context(), d)
			if err := c.warnWrite(err); err != nil {
				return err
			}
			printNote(cmd.OutOrStdout(), n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&content, "content", "c", "", "Note content (markup unless --plain)")
	cmd.Flags().BoolVar(&plain, "plain", false, "Store the content as plain text")
	cmd.Flags().StringVar(&color, "color", "", "Background color ("+paletteNames()+")")
	return cmd
}

func newEditCmd(c *cli) *cobra.Command {
	var (
		title   string
		content string
		plain   bool
		rich    bool
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the title or content of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if plain && rich {
				return fmt.Errorf("--plain and --rich are mutually exclusive")
			}

			var p core.Patch
			flags := cmd.Flags()
			if flags.Changed("title") {
				p.Title = &title
			}
			if flags.Changed("content") {
				p.Content = &content
			}
			if plain || rich {
				ct := core.ContentRich
				if plain {
					ct = core.ContentPlain
				}
				p.ContentType = &ct
			}
			if p == (core.Patch{}) {
				return fmt.Errorf("nothing to change, use --title, --content, --plain or --rich")
			}

			b, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			n, err := b.Update(cmd.Context(), args[0], p)
			if errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("%w: %s", errNotFound, args[0])
			}
			if err := c.warnWrite(err); err != nil {
				return err
			}
			printNote(cmd.OutOrStdout(), n)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "New content")
	cmd.Flags().BoolVar(&plain, "plain", false, "Treat the content as plain text")
	cmd.Flags().BoolVar(&rich, "rich", false, "Treat the content as markup")
	return cmd
}

func newRmCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a note permanently",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			ok, err := b.Delete(cmd.Context(), args[0])
			if err := c.warnWrite(err); err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", errNotFound, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newMoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "move ID INDEX",
		Short: "Move a note to a position of the board (0 is first)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[1], err)
			}

			b, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			if _, ok := b.Get(args[0]); !ok {
				return fmt.Errorf("%w: %s", errNotFound, args[0])
			}

			moved, err := b.Reorder(cmd.Context(), args[0], index)
			if err := c.warnWrite(err); err != nil {
				return err
			}
			if !moved {
				fmt.Fprintln(cmd.OutOrStdout(), "Already in place")
				return nil
			}
			return printNotes(cmd.OutOrStdout(), b.List())
		},
	}
}

func newColorCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "color ID COLOR",
		Short: "Set the background color of a note (" + paletteNames() + ")",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			parseColor(c, args[1])
			n, err := b.SetColor(cmd.Context(), args[0], args[1])
			if errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("%w: %s", errNotFound, args[0])
			}
			if err := c.warnWrite(err); err != nil {
				return err
			}
			printNote(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

// parseColor maps name onto the palette, warning when it falls back.
func parseColor(c *cli, name string) core.Color {
	color, ok := core.ParseColor(name)
	if !ok {
		c.log().Warn("unknown color, using default", "color", name, "palette", paletteNames())
	}
	return color
}

func paletteNames() string {
	names := make([]string, len(core.Palette))
	for i, p := range core.Palette {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
