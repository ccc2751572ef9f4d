// Package order persists drag-to-reposition moves by rewriting the order
// key of every note.
//
// Rewriting the whole list is O(n) per move. A midpoint key between two
// neighbours would be O(1) but its precision decays when notes keep being
// inserted at the same spot; evenly spaced fresh keys never do.
//
// The scheme has no conflict resolution: two clients reordering the same
// collection concurrently would overwrite each other's keys.
package order

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/notegrid/pkg/core"
)

// DefaultGap separates consecutive keys, in milliseconds.
// It is a thousand times the resolution of the clock the keys derive from.
const DefaultGap = 1000

// Store is the subset of core.Store the allocator needs.
type Store interface {
	List() []core.Note
	ApplyOrderKeys(ctx context.Context, keys map[string]float64) error
}

// Config holds the configuration of an Allocator.
type Config struct {
	Gap    float64          // zero means DefaultGap
	Clock  func() time.Time // defaults to time.Now
	Logger *slog.Logger
}

// Allocator recomputes order keys when a note moves.
type Allocator struct {
	store  Store
	gap    float64
	clock  func() time.Time
	logger *slog.Logger
}

// NewAllocator creates an Allocator working on store.
func NewAllocator(store Store, cfg Config) *Allocator {
	if cfg.Gap <= 0 {
		cfg.Gap = DefaultGap
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Allocator{store: store, gap: cfg.Gap, clock: cfg.Clock, logger: cfg.Logger}
}

// Reorder moves the note identified by id to targetIndex of the current
// display order. targetIndex is clamped to [0, n-1].
//
// It does nothing and reports false if id is unknown or the note already
// sits at the target. Otherwise every note gets a fresh key and the batch
// is persisted; a persist failure is returned as a *core.PersistenceWriteError
// with moved still true.
func (a *Allocator) Reorder(ctx context.Context, id string, targetIndex int) (moved bool, err error) {
	notes := a.store.List()

	ids := make([]string, len(notes))
	from := -1
	for i, n := range notes {
		ids[i] = n.ID
		if n.ID == id {
			from = i
		}
	}
	if from < 0 {
		a.logger.Debug("reorder ignored, unknown note", "id", id)
		return false, nil
	}

	to := Clamp(targetIndex, len(ids))
	if to == from {
		return false, nil
	}

	ordered := Move(ids, from, to)
	keys := Keys(len(ordered), float64(a.clock().UnixMilli()), a.gap)

	assign := make(map[string]float64, len(ordered))
	for i, noteID := range ordered {
		assign[noteID] = keys[i]
	}

	a.logger.Debug("reordering note", "id", id, "from", from, "to", to, "notes", len(ordered))
	return true, a.store.ApplyOrderKeys(ctx, assign)
}

// Clamp limits index to [0, n-1]. It returns 0 when n is zero.
func Clamp(index, n int) int {
	if index >= n {
		index = n - 1
	}
	if index < 0 {
		index = 0
	}
	return index
}

// Move returns a copy of ids with the element at from moved to to.
// Both indexes must be in range.
func Move(ids []string, from, to int) []string {
	out := make([]string, 0, len(ids))
	moving := ids[from]
	for i, id := range ids {
		if i != from {
			out = append(out, id)
		}
	}
	out = append(out, "")
	copy(out[to+1:], out[to:])
	out[to] = moving
	return out
}

// Keys returns n strictly decreasing keys starting at base.
func Keys(n int, base, gap float64) []float64 {
	keys := make([]float64, n)
	for i := range keys {
		keys[i] = base - float64(i)*gap
	}
	return keys
}
