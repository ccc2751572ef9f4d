package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/notegrid/pkg/core"
)

// options holds the internal configuration of a board.
type options struct {
	repository   core.Repository
	logger       *slog.Logger
	adapter      string
	settings     *Settings
	storageKey   string
	clock        func() time.Time
	newID        func() string
	eventBuffer  int
	watch        *bool
	readOnly     bool
	mustExist    bool
	onRelayout   func(width float64)
	errorHandler func(error)
}

// Option defines a functional option for configuring a board.
type Option func(*options)

func defaultOptions() *options {
	return &options{adapter: "fs"}
}

// WithLogger sets the logger shared by every component. Nil discards.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository injects a storage adapter. The adapter named by
// WithAdapter is then skipped.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithAdapter selects the storage adapter by name: "fs" (default) or
// "memory".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithConfig replaces the settings otherwise loaded from notegrid.yaml and
// the environment.
func WithConfig(s Settings) Option {
	return func(o *options) {
		o.settings = &s
	}
}

// WithStorageKey overrides the key notes are persisted under.
func WithStorageKey(key string) Option {
	return func(o *options) {
		o.storageKey = key
	}
}

// WithClock sets the time source used for timestamps and order keys.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithIDGenerator sets the function generating note ids.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.newID = fn
	}
}

// WithEventBuffer sets the size of the store event buffer.
// Zero means default (64).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithWatch makes the board reload when the storage is changed by another
// process. It overrides the "watch" setting.
func WithWatch(enabled bool) Option {
	return func(o *options) {
		o.watch = &enabled
	}
}

// WithReadOnly opens the fs adapter read-only: nothing is created and
// every persist fails with a warning.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithMustExist fails instead of creating a missing data directory.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithRelayout registers the callback asking the renderer for a new
// layout at the given container width.
func WithRelayout(fn func(width float64)) Option {
	return func(o *options) {
		o.onRelayout = fn
	}
}

// WithWatcherErrorHandler receives runtime failures of the watch loop,
// which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
