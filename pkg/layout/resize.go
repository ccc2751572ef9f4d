package layout

import (
	"io"
	"log/slog"
	"math"
	"sync"
	"time"
)

const (
	DefaultResizeQuiet     = 150 * time.Millisecond
	DefaultResizeThreshold = 10
)

// ResizeConfig holds the configuration of a ResizeCoordinator.
type ResizeConfig struct {
	Quiet     time.Duration // quiet period before a resize is handled
	Threshold float64       // minimum width change worth a re-layout
	Logger    *slog.Logger
}

// ResizeCoordinator coalesces viewport width changes. Only the last width
// observed before a quiet period triggers relayout, and only when it differs
// enough from the width of the previous layout.
type ResizeCoordinator struct {
	mu        sync.Mutex
	quiet     time.Duration
	threshold float64
	logger    *slog.Logger
	relayout  func(width float64)

	timer   *time.Timer
	gen     uint64
	pending float64
	waiting bool
	last    float64
	laidOut bool
	stopped bool
}

// NewResizeCoordinator creates a coordinator calling relayout from its own
// goroutine once resizing settles.
func NewResizeCoordinator(cfg ResizeConfig, relayout func(width float64)) *ResizeCoordinator {
	if cfg.Quiet <= 0 {
		cfg.Quiet = DefaultResizeQuiet
	}
	if cfg.Threshold < 0 {
		cfg.Threshold = 0
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ResizeCoordinator{
		quiet:     cfg.Quiet,
		threshold: cfg.Threshold,
		logger:    cfg.Logger,
		relayout:  relayout,
	}
}

// Observe records a new container width and restarts the quiet period.
func (c *ResizeCoordinator) Observe(width float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}

	c.pending = width
	c.waiting = true
	c.gen++
	gen := c.gen

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.quiet, func() { c.fire(gen) })
}

// MarkLaidOut tells the coordinator a layout at width happened for another
// reason (mutation, reorder), so later resizes are measured against it.
func (c *ResizeCoordinator) MarkLaidOut(width float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = width
	c.laidOut = true
}

// Flush handles a pending width immediately instead of waiting for the
// quiet period. It reports whether relayout was called.
func (c *ResizeCoordinator) Flush() bool {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	width, ok := c.takeLocked()
	c.mu.Unlock()

	if ok {
		c.relayout(width)
	}
	return ok
}

// Stop cancels any pending resize. relayout is never called afterwards.
func (c *ResizeCoordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	c.waiting = false
	if c.timer != nil {
		c.timer.Stop()
	}
}

func (c *ResizeCoordinator) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	width, ok := c.takeLocked()
	c.mu.Unlock()

	if ok {
		c.relayout(width)
	}
}

// takeLocked consumes the pending width and applies the threshold.
func (c *ResizeCoordinator) takeLocked() (float64, bool) {
	if c.stopped || !c.waiting {
		return 0, false
	}
	c.waiting = false

	width := c.pending
	if c.laidOut && math.Abs(width-c.last) < c.threshold {
		c.logger.Debug("resize ignored, below threshold", "width", width, "last", c.last)
		return 0, false
	}

	c.last = width
	c.laidOut = true
	return width, true
}
