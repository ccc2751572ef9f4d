package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/notegrid"
)

// cli holds the state shared by every command of one invocation.
type cli struct {
	dir     string
	verbose bool
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "notegrid",
		Short: "A personal note board: create, color, search and reorder notes",
		Long: `notegrid keeps small notes in a single JSON file of a data directory.
Notes can be colored, searched by title and content, dragged (moved) into any
order, and packed into a masonry grid for a given container width.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if c.verbose {
				level = slog.LevelDebug
			}

			opts := &slog.HandlerOptions{
				Level: level,
			}
			c.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
			slog.SetDefault(c.logger)
		},
	}

	root.PersistentFlags().StringVarP(&c.dir, "dir", "d", "", "Data directory (default: nearest directory holding notes, else the current one)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newAddCmd(c),
		newEditCmd(c),
		newRmCmd(c),
		newListCmd(c),
		newSearchCmd(c),
		newMoveCmd(c),
		newColorCmd(c),
		newLayoutCmd(c),
		newConfigCmd(c),
		newVersionCmd(),
	)
	return root
}

// dataDir resolves --dir, falling back to the nearest data directory above
// the working directory and then to the working directory itself.
func (c *cli) dataDir() (string, error) {
	if c.dir != "" {
		return c.dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	if root, err := notegrid.FindDataRoot(wd); err == nil {
		return root, nil
	}
	return wd, nil
}

// open opens the board of the data directory. Persist warnings are logged,
// not returned.
func (c *cli) open(ctx context.Context, opts ...notegrid.Option) (*notegrid.Board, error) {
	dir, err := c.dataDir()
	if err != nil {
		return nil, err
	}

	opts = append([]notegrid.Option{notegrid.WithLogger(c.log())}, opts...)
	b, err := notegrid.Open(ctx, dir, opts...)
	if err != nil && !notegrid.IsWriteWarning(err) {
		return nil, fmt.Errorf("failed to open notes in %s: %w", dir, err)
	}
	if err != nil {
		c.log().Warn("notes loaded but could not be saved back", "error", err)
	}
	if readErr := b.Store().LastReadError(); readErr != nil {
		c.log().Debug("starting from an empty board", "reason", readErr)
	}
	return b, nil
}

func (c *cli) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.logger
}

// warnWrite reports a failed persist. The command itself succeeded in memory
// but the change is lost once the process exits, so it is returned as error.
func (c *cli) warnWrite(err error) error {
	if err == nil {
		return nil
	}
	if notegrid.IsWriteWarning(err) {
		return fmt.Errorf("change applied but not saved: %w", err)
	}
	return err
}

var errNotFound = errors.New("note not found")
