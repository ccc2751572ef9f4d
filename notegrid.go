package notegrid

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/notegrid/internal/platform"
	"github.com/aretw0/notegrid/pkg/board"
	"github.com/aretw0/notegrid/pkg/core"
)

// --- Types ---

// Board is the application context returned by New and Open.
type Board = board.Board

// Note is the central entity.
type Note = core.Note

// Draft carries the fields of a note being created.
type Draft = core.Draft

// Patch describes a partial note update.
type Patch = core.Patch

// Settings are the tunables read from notegrid.yaml and NOTEGRID_* variables.
type Settings = platform.Settings

// --- Configuration ---

// Option defines a functional option for configuring a Board.
type Option = platform.Option

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository injects a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithAdapter selects the storage adapter by name ("fs" or "memory").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithConfig replaces the settings loaded from file and environment.
func WithConfig(s Settings) Option {
	return platform.WithConfig(s)
}

// WithStorageKey overrides the key notes are persisted under.
func WithStorageKey(key string) Option {
	return platform.WithStorageKey(key)
}

// WithClock sets the time source.
func WithClock(clock func() time.Time) Option {
	return platform.WithClock(clock)
}

// WithIDGenerator sets the function generating note ids.
func WithIDGenerator(fn func() string) Option {
	return platform.WithIDGenerator(fn)
}

// WithEventBuffer sets the size of the store event buffer.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithWatch reloads the board when another process edits the storage.
func WithWatch(enabled bool) Option {
	return platform.WithWatch(enabled)
}

// WithReadOnly opens the data directory without ever writing to it.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithMustExist fails instead of creating a missing data directory.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithRelayout registers the callback asking for a new layout.
func WithRelayout(fn func(width float64)) Option {
	return platform.WithRelayout(fn)
}

// WithWatcherErrorHandler receives runtime failures of the watch loop.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New builds a Board over the data directory at path without opening it.
func New(path string, opts ...Option) (*Board, error) {
	return platform.New(path, opts...)
}

// Open builds and opens a Board. A persistence warning from the initial load
// is returned along with a usable board; check it with IsWriteWarning.
func Open(ctx context.Context, path string, opts ...Option) (*Board, error) {
	return platform.Open(ctx, path, opts...)
}

// Init prepares the storage at path and returns the repository.
func Init(path string, opts ...Option) (core.Repository, error) {
	return platform.Init(path, opts...)
}

// --- Utils ---

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return platform.DefaultSettings()
}

// LoadSettings reads the settings of the data directory at dir.
func LoadSettings(dir string) (Settings, error) {
	return platform.LoadSettings(dir)
}

// WriteSettings writes s as notegrid.yaml into dir and returns the path.
// An existing file is only replaced when force is set.
func WriteSettings(dir string, s Settings, force bool) (string, error) {
	return platform.WriteSettings(dir, s, force)
}

// FindDataRoot walks up from startDir to the nearest data directory.
func FindDataRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir, core.DefaultKey)
}

// IsWriteWarning reports whether err only signals a failed persist while
// the in-memory change succeeded.
func IsWriteWarning(err error) bool {
	return core.IsWriteWarning(err)
}
