package fs

import (
	"sync"
	"time"

	"github.com/aretw0/notegrid/pkg/core"
)

// debouncer coalesces bursts of events per key: only the last event of a
// burst is delivered, once the key has been quiet for delay.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	wg      sync.WaitGroup
	entries map[string]*pending
	gen     uint64
	stopped bool
}

type pending struct {
	gen   uint64
	event core.Event
	fn    func(core.Event)
	timer *time.Timer
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, entries: make(map[string]*pending)}
}

// add schedules fn(e), replacing any event still waiting for the same key.
func (d *debouncer) add(e core.Event, fn func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if old, ok := d.entries[e.ID]; ok && old.timer.Stop() {
		d.wg.Done()
	}

	d.gen++
	p := &pending{gen: d.gen, event: e, fn: fn}
	d.entries[e.ID] = p

	d.wg.Add(1)
	p.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.fire(e.ID, p.gen)
	})
}

func (d *debouncer) fire(key string, gen uint64) {
	d.mu.Lock()
	p, ok := d.entries[key]
	if !ok || p.gen != gen || d.stopped {
		d.mu.Unlock()
		return
	}
	delete(d.entries, key)
	d.mu.Unlock()

	p.fn(p.event)
}

// stopAndWait drops pending events and waits up to timeout for callbacks
// already running. It reports whether they all finished in time.
func (d *debouncer) stopAndWait(timeout time.Duration) bool {
	d.mu.Lock()
	d.stopped = true
	for key, p := range d.entries {
		if p.timer.Stop() {
			d.wg.Done()
		}
		delete(d.entries, key)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
