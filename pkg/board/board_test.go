package board_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notegrid/pkg/adapters/memory"
	"github.com/aretw0/notegrid/pkg/board"
	"github.com/aretw0/notegrid/pkg/core"
	"github.com/aretw0/notegrid/pkg/drag"
	"github.com/aretw0/notegrid/pkg/layout"
)

type relayouts struct {
	mu     sync.Mutex
	widths []float64
}

func (r *relayouts) record(w float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.widths = append(r.widths, w)
}

func (r *relayouts) get() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.widths...)
}

func newBoard(t *testing.T, mutate ...func(*board.Config)) (*board.Board, *memory.Repository, *relayouts) {
	t.Helper()

	repo := memory.NewRepository()
	rec := &relayouts{}
	ms := int64(1_000_000)
	var mu sync.Mutex
	ids := 0

	cfg := board.Config{
		Repository: repo,
		Clock: func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			ms++
			return time.UnixMilli(ms)
		},
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			ids++
			return fmt.Sprintf("n%d", ids)
		},
		Resize:     layout.ResizeConfig{Quiet: time.Hour, Threshold: 10},
		OnRelayout: rec.record,
	}
	for _, m := range mutate {
		m(&cfg)
	}

	b, err := board.New(cfg)
	require.NoError(t, err)
	require.NoError(t, b.Open(context.Background()))
	t.Cleanup(func() { _ = b.Close() })
	return b, repo, rec
}

func titles(notes []core.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Title
	}
	return out
}

func TestNew_RequiresRepository(t *testing.T) {
	_, err := board.New(board.Config{})
	assert.Error(t, err)
}

func TestBoard_CRUD(t *testing.T) {
	ctx := context.Background()
	b, repo, _ := newBoard(t)

	first, err := b.Create(ctx, core.Draft{Title: "first"})
	require.NoError(t, err)
	_, err = b.Create(ctx, core.Draft{Title: "second", Content: "body", ContentType: core.ContentPlain})
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first"}, titles(b.List()))

	title := "renamed"
	updated, err := b.Update(ctx, first.ID, core.Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)

	_, err = b.Update(ctx, "missing", core.Patch{Title: &title})
	assert.ErrorIs(t, err, core.ErrNotFound)

	colored, err := b.SetColor(ctx, first.ID, "Blue")
	require.NoError(t, err)
	assert.Equal(t, core.ColorBlue, colored.Color)

	colored, err = b.SetColor(ctx, first.ID, "magenta")
	require.NoError(t, err)
	assert.Equal(t, core.ColorDefault, colored.Color)

	got, ok := b.Get(first.ID)
	require.True(t, ok)
	assert.Equal(t, "renamed", got.Title)

	deleted, err := b.Delete(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = b.Delete(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	assert.Equal(t, []string{"second"}, titles(b.List()))
	blob, ok := repo.Blob(core.DefaultKey)
	require.True(t, ok)
	assert.Contains(t, string(blob), `"second"`)
}

func TestBoard_Search(t *testing.T) {
	ctx := context.Background()
	b, _, _ := newBoard(t)

	_, err := b.Create(ctx, core.Draft{Content: "I love cat food", ContentType: core.ContentPlain})
	require.NoError(t, err)
	_, err = b.Create(ctx, core.Draft{Title: "Cats are great"})
	require.NoError(t, err)

	results := b.Search("cat")
	require.Len(t, results, 2)
	assert.Equal(t, "Cats are great", results[0].Note.Title)
	assert.Equal(t, 15.0, results[0].Score)
	assert.Equal(t, 4.0, results[1].Score)

	assert.Empty(t, b.Search("c"))
}

func TestBoard_ReorderRequestsRelayout(t *testing.T) {
	ctx := context.Background()
	b, _, rec := newBoard(t)

	var ids []string
	for _, title := range []string{"C", "B", "A"} {
		n, err := b.Create(ctx, core.Draft{Title: title})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}
	assert.Empty(t, rec.get(), "nothing laid out yet")

	res := b.Layout(500, []float64{100, 50, 80})
	assert.Equal(t, 2, res.Columns)

	moved, err := b.Reorder(ctx, ids[2], 2)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []string{"B", "C", "A"}, titles(b.List()))
	assert.Equal(t, []float64{500}, rec.get())

	moved, err = b.Reorder(ctx, ids[2], 5)
	require.NoError(t, err)
	assert.False(t, moved, "already last")
	assert.Len(t, rec.get(), 1)
}

func TestBoard_MutationsRequestRelayout(t *testing.T) {
	ctx := context.Background()
	b, _, rec := newBoard(t)

	n, err := b.Create(ctx, core.Draft{Title: "only"})
	require.NoError(t, err)
	b.Layout(500, []float64{100})
	require.Empty(t, rec.get())

	_, err = b.SetColor(ctx, n.ID, "red")
	require.NoError(t, err)
	assert.Equal(t, []float64{500}, rec.get(), "color changes are re-laid out")

	_, err = b.SetColor(ctx, "missing", "red")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Len(t, rec.get(), 1, "failed updates change nothing")

	title := "renamed"
	_, err = b.Update(ctx, n.ID, core.Patch{Title: &title})
	require.NoError(t, err)
	_, err = b.Delete(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, []float64{500, 500, 500}, rec.get())
}

func TestBoard_Layout(t *testing.T) {
	b, _, _ := newBoard(t, func(c *board.Config) {
		gap := 24.0
		c.Gap = &gap
		c.MinCardWidth = 200
	})

	res := b.Layout(500, []float64{100, 50, 80})
	assert.Equal(t, 238.0, res.CardWidth)
	assert.Equal(t, []layout.Position{
		{Column: 0, X: 0, Y: 0, Width: 238},
		{Column: 1, X: 262, Y: 0, Width: 238},
		{Column: 1, X: 262, Y: 74, Width: 238},
	}, res.Positions)
}

func TestBoard_ZeroGap(t *testing.T) {
	b, _, _ := newBoard(t, func(c *board.Config) {
		gap := 0.0
		c.Gap = &gap
		c.MinCardWidth = 100
	})

	res := b.Layout(300, []float64{10, 20, 30, 40})
	assert.Equal(t, 3, res.Columns)
	assert.Equal(t, 100.0, res.CardWidth)
	assert.Equal(t, 100.0, res.Positions[1].X, "no gutter between cards")
	assert.Equal(t, 10.0, res.Positions[3].Y)
	assert.Equal(t, 0.0, b.State().(board.BoardState).Gap)

	unset, _, _ := newBoard(t)
	assert.Equal(t, float64(layout.DefaultGap), unset.State().(board.BoardState).Gap)

	negative, _, _ := newBoard(t, func(c *board.Config) {
		gap := -5.0
		c.Gap = &gap
	})
	assert.Equal(t, float64(layout.DefaultGap), negative.State().(board.BoardState).Gap)
}

func TestBoard_Resize(t *testing.T) {
	b, _, rec := newBoard(t)

	b.Layout(800, nil)
	b.Resize(805)
	assert.False(t, b.FlushResize(), "below threshold")

	b.Resize(600)
	assert.True(t, b.FlushResize())
	assert.Equal(t, []float64{600}, rec.get())

	state := b.State().(board.BoardState)
	assert.Equal(t, 600.0, state.Width)
	assert.Equal(t, 1, state.Relayouts)
}

func TestBoard_WriteFailureIsWarning(t *testing.T) {
	ctx := context.Background()
	b, repo, _ := newBoard(t)

	repo.FailWrites(errors.New("quota exceeded"))
	n, err := b.Create(ctx, core.Draft{Title: "kept"})
	require.Error(t, err)
	assert.True(t, core.IsWriteWarning(err))
	assert.NotEmpty(t, n.ID)

	_, ok := b.Get(n.ID)
	assert.True(t, ok, "memory state survives a failed persist")
}

func TestBoard_Drag(t *testing.T) {
	ctx := context.Background()
	b, _, _ := newBoard(t)

	for _, title := range []string{"C", "B", "A"} {
		_, err := b.Create(ctx, core.Draft{Title: title})
		require.NoError(t, err)
	}
	heights := []float64{100, 100, 100}
	rects := drag.Rects(b.Layout(520, heights), heights)

	cleaned := false
	s := b.NewDrag(func() { cleaned = true })
	s.Press(b.List()[0].ID, 0, drag.Point{X: 10, Y: 10}, rects)
	require.Equal(t, 2, s.Move(rects[2].Center()))

	moved, err := s.Release(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.True(t, cleaned)
	assert.Equal(t, []string{"B", "C", "A"}, titles(b.List()))
}

func TestBoard_WatchReloadsExternalChanges(t *testing.T) {
	ctx := context.Background()
	b, repo, rec := newBoard(t, func(c *board.Config) { c.Watch = true })

	require.Eventually(t, func() bool {
		return b.State().(board.BoardState).Watching
	}, time.Second, 5*time.Millisecond)

	_, err := b.Create(ctx, core.Draft{Title: "local"})
	require.NoError(t, err)
	b.Layout(300, []float64{10})

	repo.Set(core.DefaultKey, []byte(`[{"id":"ext","title":"from elsewhere","orderKey":5}]`))

	require.Eventually(t, func() bool {
		_, ok := b.Get("ext")
		return ok
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"from elsewhere"}, titles(b.List()))
	require.Eventually(t, func() bool { return len(rec.get()) > 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 300.0, rec.get()[0])

	require.NoError(t, b.Close())
	require.Eventually(t, func() bool {
		return !b.State().(board.BoardState).Watching
	}, time.Second, 5*time.Millisecond)
}

func TestBoard_OpenClose(t *testing.T) {
	b, _, _ := newBoard(t)

	require.NoError(t, b.Open(context.Background()), "second open is a no-op")
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	assert.ErrorIs(t, b.Open(context.Background()), core.ErrClosed)
	_, err := b.Create(context.Background(), core.Draft{Title: "late"})
	assert.ErrorIs(t, err, core.ErrClosed)

	state := b.State().(board.BoardState)
	assert.True(t, state.Closed)
	assert.Equal(t, "board", b.ComponentType())
}
