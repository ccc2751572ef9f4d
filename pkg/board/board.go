// Package board wires the note components into one explicitly owned
// context object: a Store, the order Allocator, the search Scorer, the
// layout defaults and a ResizeCoordinator.
//
// A Board is constructed once, opened, handed to whatever drives it (a CLI,
// a UI shell) and closed at teardown. There is no package level state.
package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/notegrid/pkg/core"
	"github.com/aretw0/notegrid/pkg/drag"
	"github.com/aretw0/notegrid/pkg/layout"
	"github.com/aretw0/notegrid/pkg/order"
	"github.com/aretw0/notegrid/pkg/search"
)

// Config holds everything needed to build a Board.
type Config struct {
	Repository  core.Repository
	Key         string // storage key, defaults to core.DefaultKey
	Logger      *slog.Logger
	Clock       func() time.Time
	NewID       func() string
	EventBuffer int

	OrderGap      float64
	Search        search.Config
	Gap           *float64 // layout gutter; nil or negative means layout.DefaultGap
	MinCardWidth  float64  // defaults to layout.DefaultMinCardWidth
	Resize        layout.ResizeConfig
	DragThreshold float64

	// Watch reloads the store when a Watchable repository reports an
	// external change to the storage key.
	Watch bool
	// OnRelayout is called with the current container width whenever the
	// cards need to be measured and packed again.
	OnRelayout func(width float64)
	// OnWatchError receives failures of the watch loop. Nil logs them.
	OnWatchError func(error)
}

// Board is the application context. It is safe for concurrent use.
type Board struct {
	cfg    Config
	logger *slog.Logger

	store  *core.Store
	gap    float64
	alloc  *order.Allocator
	scorer *search.Scorer
	resize *layout.ResizeCoordinator

	mu          sync.Mutex
	width       float64
	hasWidth    bool
	opened      bool
	closed      bool
	watching    bool
	stopWatch   context.CancelFunc
	relayoutCnt int
}

// New builds a Board. It does not touch the storage until Open.
func New(cfg Config) (*Board, error) {
	if cfg.Repository == nil {
		return nil, errors.New("board: repository is required")
	}
	if cfg.Key == "" {
		cfg.Key = core.DefaultKey
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	gap := float64(layout.DefaultGap)
	if cfg.Gap != nil && *cfg.Gap >= 0 {
		gap = *cfg.Gap
	}
	if cfg.MinCardWidth <= 0 {
		cfg.MinCardWidth = layout.DefaultMinCardWidth
	}
	if cfg.DragThreshold <= 0 {
		cfg.DragThreshold = drag.DefaultThreshold
	}
	if cfg.Resize.Logger == nil {
		cfg.Resize.Logger = cfg.Logger
	}
	if cfg.Search.MinQueryLength <= 0 {
		cfg.Search.MinQueryLength = search.DefaultMinQueryLength
	}

	store := core.NewStore(core.StoreConfig{
		Repository:  cfg.Repository,
		Key:         cfg.Key,
		Logger:      cfg.Logger,
		Clock:       cfg.Clock,
		NewID:       cfg.NewID,
		EventBuffer: cfg.EventBuffer,
	})

	b := &Board{
		cfg:    cfg,
		logger: cfg.Logger,
		store:  store,
		gap:    gap,
		alloc: order.NewAllocator(store, order.Config{
			Gap:    cfg.OrderGap,
			Clock:  cfg.Clock,
			Logger: cfg.Logger,
		}),
		scorer: search.NewScorer(cfg.Search),
	}
	b.resize = layout.NewResizeCoordinator(cfg.Resize, b.resized)
	return b, nil
}

// Open loads the notes and, if configured, starts watching the storage.
// A read failure never fails Open; see Store.LastReadError.
func (b *Board) Open(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return core.ErrClosed
	}
	if b.opened {
		b.mu.Unlock()
		return nil
	}
	b.opened = true
	b.mu.Unlock()

	loadErr := b.store.Load(ctx)
	if loadErr != nil && !core.IsWriteWarning(loadErr) {
		return fmt.Errorf("failed to load notes: %w", loadErr)
	}

	if b.cfg.Watch {
		if err := b.startWatch(ctx); err != nil {
			return err
		}
	}
	return loadErr
}

func (b *Board) startWatch(ctx context.Context) error {
	w, ok := b.cfg.Repository.(core.Watchable)
	if !ok {
		b.logger.Debug("repository does not support watching, skipping")
		return nil
	}

	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	events, err := w.Watch(watchCtx, b.cfg.Key)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to watch storage: %w", err)
	}

	b.mu.Lock()
	b.stopWatch = cancel
	b.watching = true
	b.mu.Unlock()

	lifecycle.Go(watchCtx, func(ctx context.Context) error {
		defer b.setWatching(false)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				b.logger.Debug("storage changed externally", "event", e.String())
				if err := b.store.Reload(ctx); err != nil {
					if errors.Is(err, core.ErrClosed) {
						return nil
					}
					b.watchError(fmt.Errorf("reload failed: %w", err))
					continue
				}
				b.requestRelayout()
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		b.watchError(fmt.Errorf("watch loop panic: %w", err))
	}))
	return nil
}

func (b *Board) watchError(err error) {
	if b.cfg.OnWatchError != nil {
		b.cfg.OnWatchError(err)
		return
	}
	b.logger.Error("watch failed", "error", err)
}

func (b *Board) setWatching(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.watching = v
}

// Close stops the resize coordinator and the watcher and closes the store.
func (b *Board) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	stop := b.stopWatch
	b.mu.Unlock()

	b.resize.Stop()
	if stop != nil {
		stop()
	}
	return b.store.Close()
}

// Store exposes the underlying store for read access and events.
func (b *Board) Store() *core.Store { return b.store }

// Events returns the store change notifications.
func (b *Board) Events() <-chan core.Event { return b.store.Events() }

// Create adds a note in front of the board.
func (b *Board) Create(ctx context.Context, d core.Draft) (core.Note, error) {
	n, err := b.store.Create(ctx, d)
	if err == nil || core.IsWriteWarning(err) {
		b.requestRelayout()
	}
	return n, err
}

// Update applies a patch. Content changes alter card heights, so a
// re-layout is requested.
func (b *Board) Update(ctx context.Context, id string, p core.Patch) (core.Note, error) {
	n, err := b.store.Update(ctx, id, p)
	if err == nil || core.IsWriteWarning(err) {
		b.requestRelayout()
	}
	return n, err
}

// SetColor changes the background color of a note. Unknown names fall
// back to the default color.
func (b *Board) SetColor(ctx context.Context, id, name string) (core.Note, error) {
	c, ok := core.ParseColor(name)
	if !ok {
		b.logger.Debug("unknown color, using default", "color", name)
	}
	return b.Update(ctx, id, core.Patch{Color: &c})
}

// Delete removes a note. It reports false when id is unknown.
func (b *Board) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := b.store.Delete(ctx, id)
	if ok {
		b.requestRelayout()
	}
	return ok, err
}

// Get returns a note by id.
func (b *Board) Get(id string) (core.Note, bool) { return b.store.Get(id) }

// List returns the notes in display order.
func (b *Board) List() []core.Note { return b.store.List() }

// Reorder moves a note to targetIndex of the display order.
func (b *Board) Reorder(ctx context.Context, id string, targetIndex int) (bool, error) {
	moved, err := b.alloc.Reorder(ctx, id, targetIndex)
	if moved {
		b.requestRelayout()
	}
	return moved, err
}

// Search ranks the current notes against query.
func (b *Board) Search(query string) []search.Result {
	return b.scorer.Search(query, b.store.List())
}

// Layout packs cards of the given heights, in display order, into a
// container of width using the board's gap and minimum card width.
func (b *Board) Layout(width float64, heights []float64) layout.Result {
	res := layout.Pack(layout.Params{
		ContainerWidth: width,
		Heights:        heights,
		Gap:            b.gap,
		MinCardWidth:   b.cfg.MinCardWidth,
	})
	b.resize.MarkLaidOut(width)

	b.mu.Lock()
	b.width, b.hasWidth = width, true
	b.mu.Unlock()
	return res
}

// Resize reports a new container width. OnRelayout fires once resizing
// settles and the width changed enough.
func (b *Board) Resize(width float64) { b.resize.Observe(width) }

// FlushResize handles a pending resize without waiting.
func (b *Board) FlushResize() bool { return b.resize.Flush() }

// NewDrag returns a drag session committing moves through the board.
// cleanup runs at the end of every gesture.
func (b *Board) NewDrag(cleanup func()) *drag.Session {
	return drag.NewSession(b, drag.Config{
		Threshold: b.cfg.DragThreshold,
		Cleanup:   cleanup,
		Logger:    b.logger,
	})
}

func (b *Board) resized(width float64) {
	b.mu.Lock()
	b.width, b.hasWidth = width, true
	b.mu.Unlock()
	b.notify(width)
}

// requestRelayout asks the renderer for a new layout at the last known
// width. Nothing happens before the first layout.
func (b *Board) requestRelayout() {
	b.mu.Lock()
	width, ok := b.width, b.hasWidth && !b.closed
	b.mu.Unlock()

	if ok {
		b.notify(width)
	}
}

func (b *Board) notify(width float64) {
	b.mu.Lock()
	b.relayoutCnt++
	b.mu.Unlock()

	if b.cfg.OnRelayout != nil {
		b.cfg.OnRelayout(width)
	}
}
