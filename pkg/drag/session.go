// Package drag tracks one pointer-driven reorder gesture over a laid out
// board: press, move past a threshold, release.
//
// Moving never touches the store. The new position is committed once, on
// release, and the cleanup hook runs on every release whatever the outcome.
package drag

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/aretw0/notegrid/pkg/layout"
)

// DefaultThreshold is the pointer travel, in pixels, that turns a press
// into a drag.
const DefaultThreshold = 5

// Point is a pointer position in container coordinates.
type Point struct {
	X, Y float64
}

// Rect is the rendered box of one card.
type Rect struct {
	X, Y, Width, Height float64
}

// Center returns the middle of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Rects pairs layout positions with rendered heights, in display order.
// Missing heights count as zero.
func Rects(res layout.Result, heights []float64) []Rect {
	rects := make([]Rect, len(res.Positions))
	for i, p := range res.Positions {
		var h float64
		if i < len(heights) {
			h = heights[i]
		}
		rects[i] = Rect{X: p.X, Y: p.Y, Width: p.Width, Height: h}
	}
	return rects
}

// Reorderer commits a move. order.Allocator satisfies it.
type Reorderer interface {
	Reorder(ctx context.Context, id string, targetIndex int) (bool, error)
}

// Phase is the state of a Session.
type Phase int

const (
	Idle Phase = iota
	Pressed
	Dragging
)

func (p Phase) String() string {
	switch p {
	case Pressed:
		return "pressed"
	case Dragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Config holds the configuration of a Session.
type Config struct {
	Threshold float64 // zero means DefaultThreshold
	Cleanup   func()  // run once at the end of every gesture
	Logger    *slog.Logger
}

// Session is a reusable drag state machine. It is safe for concurrent use,
// though gestures are expected to arrive from a single event loop.
type Session struct {
	reorderer Reorderer
	threshold float64
	cleanup   func()
	logger    *slog.Logger

	mu     sync.Mutex
	phase  Phase
	id     string
	from   int
	origin Point
	rects  []Rect
	target int
}

// NewSession creates an idle Session committing through r.
func NewSession(r Reorderer, cfg Config) *Session {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		reorderer: r,
		threshold: cfg.Threshold,
		cleanup:   cfg.Cleanup,
		logger:    cfg.Logger,
		target:    -1,
	}
}

// Press starts a gesture on the card id, which sits at index from of the
// display order. rects are the current card boxes in display order.
// A press while another gesture is active restarts it.
func (s *Session) Press(id string, from int, at Point, rects []Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = Pressed
	s.id = id
	s.from = from
	s.origin = at
	s.rects = append([]Rect(nil), rects...)
	s.target = -1
}

// Move updates the pointer. Once the pointer has travelled further than the
// threshold from the press, the session is dragging and the drop index
// follows the card whose center is nearest. It returns the current drop
// index, or -1 while not dragging or without a target.
func (s *Session) Move(at Point) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case Idle:
		return -1
	case Pressed:
		if distance(s.origin, at) <= s.threshold {
			return -1
		}
		s.phase = Dragging
		s.logger.Debug("drag started", "id", s.id, "from", s.from)
	}

	s.target = Nearest(s.rects, at)
	return s.target
}

// Release ends the gesture. When dragging over a target the move is
// committed exactly once; moved reports whether the order changed. The
// cleanup hook runs on every path, including errors and missing targets.
func (s *Session) Release(ctx context.Context) (moved bool, err error) {
	s.mu.Lock()
	phase, id, target := s.phase, s.id, s.target
	s.reset()
	s.mu.Unlock()

	defer s.runCleanup(phase)

	if phase != Dragging || target < 0 {
		return false, nil
	}

	moved, err = s.reorderer.Reorder(ctx, id, target)
	s.logger.Debug("drag committed", "id", id, "target", target, "moved", moved)
	return moved, err
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Target returns the current drop index, or -1.
func (s *Session) Target() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

func (s *Session) reset() {
	s.phase = Idle
	s.id = ""
	s.from = 0
	s.rects = nil
	s.target = -1
}

func (s *Session) runCleanup(phase Phase) {
	if phase == Idle || s.cleanup == nil {
		return
	}
	s.cleanup()
}

// Nearest returns the index of the rect whose center is closest to p, lowest
// index on ties, or -1 when rects is empty.
func Nearest(rects []Rect, p Point) int {
	best, bestDist := -1, math.Inf(1)
	for i, r := range rects {
		if d := distance(r.Center(), p); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
