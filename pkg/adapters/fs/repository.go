package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/notegrid/pkg/core"
)

const (
	// DefaultExtension is appended to a key to build its file name.
	DefaultExtension = ".json"

	defaultDebounce = 50 * time.Millisecond
)

var (
	// ErrReadOnly is returned by Write when the repository is read-only.
	ErrReadOnly = errors.New("repository is read-only")
	// ErrInvalidKey is returned for keys that cannot be used as a file name.
	ErrInvalidKey = errors.New("invalid storage key")
)

// Repository implements core.Repository with one file per key inside a
// directory. Writes are atomic: a reader never sees a half-written blob.
type Repository struct {
	Path   string
	config Config

	mu            sync.RWMutex
	watcherActive bool
	reads         int
	writes        int
	lastWrite     *time.Time
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path         string
	MustExist    bool   // fail Initialize instead of creating the directory
	ReadOnly     bool   // reject writes and skip directory creation
	Extension    string // defaults to DefaultExtension
	Logger       *slog.Logger
	ErrorHandler func(error)   // receives watcher failures
	Debounce     time.Duration // coalescing window for watch events
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.Extension == "" {
		config.Extension = DefaultExtension
	}
	if !strings.HasPrefix(config.Extension, ".") {
		config.Extension = "." + config.Extension
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.Debounce <= 0 {
		config.Debounce = defaultDebounce
	}
	return &Repository{Path: config.Path, config: config}
}

// Initialize makes sure the data directory exists.
func (r *Repository) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if r.config.MustExist || r.config.ReadOnly {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			if r.config.ReadOnly && !r.config.MustExist {
				return nil
			}
			return fmt.Errorf("data directory does not exist: %s", r.Path)
		}
		if err != nil {
			return fmt.Errorf("failed to stat data directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("data path is not a directory: %s", r.Path)
		}
		return nil
	}

	if err := os.MkdirAll(r.Path, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// Read implements core.Repository.
func (r *Repository) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filename, err := r.filename(key)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.reads++
	r.mu.Unlock()

	data, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil, core.ErrAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return data, nil
}

// Write implements core.Repository.
func (r *Repository) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.config.ReadOnly {
		return ErrReadOnly
	}
	filename, err := r.filename(key)
	if err != nil {
		return err
	}

	if err := writeFileAtomic(filename, data, 0644); err != nil {
		return err
	}

	now := time.Now()
	r.mu.Lock()
	r.writes++
	r.lastWrite = &now
	r.mu.Unlock()

	r.config.Logger.Debug("blob written", "key", key, "bytes", len(data))
	return nil
}

// Watch implements core.Watchable. pattern is a doublestar glob matched
// against keys; events carry the key as ID. The channel is closed once ctx
// is done and the watcher has stopped.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	events := make(chan core.Event, 16)
	w := newWatchWorker(r, pattern, events)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}

	go func() {
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := w.Stop(stopCtx); err != nil {
			r.config.Logger.Debug("watcher stop", "error", err)
		}
		close(events)
	}()
	return events, nil
}

// filename maps a key to its file. Keys must be plain file names.
func (r *Repository) filename(key string) (string, error) {
	if key == "" || key == "." || key == ".." || filepath.Base(key) != key || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(r.Path, key+r.config.Extension), nil
}

// resolveID maps a file path back to its key.
func (r *Repository) resolveID(path string) (string, error) {
	base := filepath.Base(path)
	if filepath.Ext(base) != r.config.Extension {
		return "", fmt.Errorf("not a %s file: %s", r.config.Extension, base)
	}
	key := strings.TrimSuffix(base, r.config.Extension)
	if key == "" {
		return "", fmt.Errorf("empty key: %s", base)
	}
	return key, nil
}

// shouldIgnore filters out temp files, foreign files and keys that do not
// match pattern.
func (r *Repository) shouldIgnore(event fsnotify.Event, pattern string) bool {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, TempFilePrefix) || strings.HasPrefix(base, ".") {
		return true
	}
	key, err := r.resolveID(event.Name)
	if err != nil {
		return true
	}
	ok, err := doublestar.Match(pattern, key)
	return err != nil || !ok
}

func (r *Repository) mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	}
	return ""
}

var _ core.Repository = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
