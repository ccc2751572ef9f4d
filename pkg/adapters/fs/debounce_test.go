package fs

import (
	"sync"
	"testing"
	"time"

	"github.com/aretw0/notegrid/pkg/core"
)

type collector struct {
	mu     sync.Mutex
	events []core.Event
}

func (c *collector) add(e core.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *collector) get() []core.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.Event(nil), c.events...)
}

func TestDebouncer_LastEventWins(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)
	c := &collector{}

	d.add(core.Event{Type: core.EventCreate, ID: "notes"}, c.add)
	d.add(core.Event{Type: core.EventModify, ID: "notes"}, c.add)
	d.add(core.Event{Type: core.EventModify, ID: "other"}, c.add)

	time.Sleep(100 * time.Millisecond)

	got := c.get()
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d: %v", len(got), got)
	}
	for _, e := range got {
		if e.ID == "notes" && e.Type != core.EventModify {
			t.Errorf("expected latest event for notes, got %v", e)
		}
	}

	if !d.stopAndWait(time.Second) {
		t.Error("stopAndWait timed out")
	}
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	d := newDebouncer(time.Hour)
	c := &collector{}

	d.add(core.Event{Type: core.EventModify, ID: "notes"}, c.add)
	if !d.stopAndWait(time.Second) {
		t.Fatal("stopAndWait timed out")
	}

	d.add(core.Event{Type: core.EventModify, ID: "late"}, c.add)
	if got := c.get(); len(got) != 0 {
		t.Errorf("expected no events after stop, got %v", got)
	}
}
