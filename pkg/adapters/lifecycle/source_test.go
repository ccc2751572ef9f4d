package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notegrid/pkg/adapters/lifecycle"
	"github.com/aretw0/notegrid/pkg/adapters/memory"
	"github.com/aretw0/notegrid/pkg/core"
)

func TestSource_ForwardsStoreEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := core.NewStore(core.StoreConfig{Repository: memory.NewRepository()})
	require.NoError(t, store.Load(ctx))

	src := lifecycle.NewSource(store.Events(), core.EventCreate, core.EventDelete)
	require.NoError(t, src.Start(ctx))

	n, err := store.Create(ctx, core.Draft{Title: "a"})
	require.NoError(t, err)
	title := "b"
	_, err = store.Update(ctx, n.ID, core.Patch{Title: &title})
	require.NoError(t, err)
	_, err = store.Delete(ctx, n.ID)
	require.NoError(t, err)

	var got []string
	for len(got) < 2 {
		select {
		case e := <-src.Events():
			got = append(got, e.String())
		case <-time.After(time.Second):
			t.Fatalf("timeout, got %v", got)
		}
	}
	assert.Equal(t, []string{"CREATE " + n.ID, "DELETE " + n.ID}, got)

	require.NoError(t, store.Close())
	select {
	case _, ok := <-src.Events():
		assert.False(t, ok, "closing the store ends the source")
	case <-time.After(time.Second):
		t.Fatal("source not closed")
	}
}

func TestSource_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := lifecycle.NewSource(make(chan core.Event))
	require.NoError(t, src.Start(ctx))

	cancel()
	select {
	case _, ok := <-src.Events():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("source not closed after cancel")
	}
}
