package order_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/aretw0/notegrid/pkg/adapters/memory"
	"github.com/aretw0/notegrid/pkg/core"
	"github.com/aretw0/notegrid/pkg/order"
)

type fakeClock struct{ ms int64 }

// fataler is satisfied by both *testing.T and *rapid.T.
type fataler interface {
	Fatalf(format string, args ...any)
}

func (c *fakeClock) Now() time.Time { return time.UnixMilli(c.ms) }

// setupNotes creates n notes titled A, B, C... displayed in that order.
func setupNotes(t fataler, n int) (*core.Store, *memory.Repository, *order.Allocator, *fakeClock) {
	repo := memory.NewRepository()
	clock := &fakeClock{ms: 10_000_000}
	store := core.NewStore(core.StoreConfig{Repository: repo, Clock: clock.Now})
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	// Create in reverse so the first title ends up in front.
	for i := n - 1; i >= 0; i-- {
		clock.ms++
		title := string(rune('A' + i%26))
		if i >= 26 {
			title += fmt.Sprint(i / 26)
		}
		if _, err := store.Create(context.Background(), core.Draft{Title: title}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	clock.ms += 1000

	return store, repo, order.NewAllocator(store, order.Config{Clock: clock.Now}), clock
}

func titles(notes []core.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Title
	}
	return out
}

func idOf(t fataler, store *core.Store, title string) string {
	for _, n := range store.List() {
		if n.Title == title {
			return n.ID
		}
	}
	t.Fatalf("no note titled %q", title)
	return ""
}

func assertStrictlyDecreasing(t fataler, notes []core.Note) {
	for i := 0; i+1 < len(notes); i++ {
		if !(notes[i].OrderKey > notes[i+1].OrderKey) {
			t.Fatalf("order keys not strictly decreasing at %d: %v then %v", i, notes[i].OrderKey, notes[i+1].OrderKey)
		}
	}
}

func TestReorder_MoveToFront(t *testing.T) {
	store, _, alloc, _ := setupNotes(t, 5)
	require.Equal(t, []string{"A", "B", "C", "D", "E"}, titles(store.List()))

	moved, err := alloc.Reorder(context.Background(), idOf(t, store, "C"), 0)
	require.NoError(t, err)
	assert.True(t, moved)

	list := store.List()
	assert.Equal(t, []string{"C", "A", "B", "D", "E"}, titles(list))
	assertStrictlyDecreasing(t, list)
}

func TestReorder_MoveDown(t *testing.T) {
	store, _, alloc, _ := setupNotes(t, 5)

	_, err := alloc.Reorder(context.Background(), idOf(t, store, "A"), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "D", "A", "E"}, titles(store.List()))
}

func TestReorder_ClampsTarget(t *testing.T) {
	store, _, alloc, _ := setupNotes(t, 4)

	_, err := alloc.Reorder(context.Background(), idOf(t, store, "B"), 99)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "D", "B"}, titles(store.List()))

	_, err = alloc.Reorder(context.Background(), idOf(t, store, "D"), -3)
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "A", "C", "B"}, titles(store.List()))
}

func TestReorder_NoOp(t *testing.T) {
	store, repo, alloc, _ := setupNotes(t, 3)
	before := store.List()
	writes := repo.Writes()

	moved, err := alloc.Reorder(context.Background(), idOf(t, store, "B"), 1)
	require.NoError(t, err)
	assert.False(t, moved)

	moved, err = alloc.Reorder(context.Background(), "unknown", 0)
	require.NoError(t, err)
	assert.False(t, moved)

	moved, err = alloc.Reorder(context.Background(), idOf(t, store, "C"), 7)
	require.NoError(t, err)
	assert.False(t, moved, "clamped target equal to current index is a no-op")

	assert.Equal(t, writes, repo.Writes())
	assert.Equal(t, before, store.List())
}

func TestReorder_SingleAndEmpty(t *testing.T) {
	store, repo, alloc, _ := setupNotes(t, 1)
	writes := repo.Writes()

	moved, err := alloc.Reorder(context.Background(), idOf(t, store, "A"), 5)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, writes, repo.Writes())

	empty, _, emptyAlloc, _ := setupNotes(t, 0)
	moved, err = emptyAlloc.Reorder(context.Background(), "x", 0)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Zero(t, empty.Len())
}

func TestReorder_PersistsOnce(t *testing.T) {
	store, repo, alloc, _ := setupNotes(t, 6)
	writes := repo.Writes()

	_, err := alloc.Reorder(context.Background(), idOf(t, store, "F"), 2)
	require.NoError(t, err)
	assert.Equal(t, writes+1, repo.Writes())
}

func TestReorder_RepeatedInsertionsKeepKeysSeparated(t *testing.T) {
	store, _, alloc, clock := setupNotes(t, 8)

	// Keep dropping the last note right behind the first one.
	for i := 0; i < 500; i++ {
		list := store.List()
		_, err := alloc.Reorder(context.Background(), list[len(list)-1].ID, 1)
		require.NoError(t, err)
		clock.ms++
	}

	list := store.List()
	assertStrictlyDecreasing(t, list)
	for i := 0; i+1 < len(list); i++ {
		assert.Equal(t, float64(order.DefaultGap), list[i].OrderKey-list[i+1].OrderKey)
	}
}

func TestReorder_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(t, "n")
		store, _, alloc, _ := setupNotes(t, n)

		before := store.List()
		from := rapid.IntRange(0, n-1).Draw(t, "from")
		target := rapid.IntRange(-2, n+2).Draw(t, "target")
		id := before[from].ID

		if _, err := alloc.Reorder(context.Background(), id, target); err != nil {
			t.Fatalf("reorder failed: %v", err)
		}

		after := store.List()
		want := order.Clamp(target, n)
		if after[want].ID != id {
			t.Fatalf("note %s at %d, want %d", id, indexOf(after, id), want)
		}
		assertStrictlyDecreasing(t, after)

		// Relative order of the other notes is preserved.
		var restBefore, restAfter []string
		for _, note := range before {
			if note.ID != id {
				restBefore = append(restBefore, note.ID)
			}
		}
		for _, note := range after {
			if note.ID != id {
				restAfter = append(restAfter, note.ID)
			}
		}
		if fmt.Sprint(restBefore) != fmt.Sprint(restAfter) {
			t.Fatalf("other notes reordered: %v -> %v", restBefore, restAfter)
		}
	})
}

func indexOf(notes []core.Note, id string) int {
	for i, n := range notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func TestMove(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}

	assert.Equal(t, []string{"c", "a", "b", "d"}, order.Move(ids, 2, 0))
	assert.Equal(t, []string{"b", "c", "d", "a"}, order.Move(ids, 0, 3))
	assert.Equal(t, []string{"a", "c", "b", "d"}, order.Move(ids, 1, 2))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids, "input must not be modified")
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []float64{5000, 4000, 3000}, order.Keys(3, 5000, 1000))
	assert.Empty(t, order.Keys(0, 5000, 1000))
}
