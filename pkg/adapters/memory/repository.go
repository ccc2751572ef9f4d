// Package memory implements core.Repository in process memory.
// It is used by tests and by shells that persist elsewhere themselves.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/notegrid/pkg/core"
)

// Repository keeps blobs in a map. Writes can be made to fail to simulate
// quota errors, and Set plays the part of another process editing the
// storage, which watchers are told about.
type Repository struct {
	mu       sync.RWMutex
	blobs    map[string][]byte
	writeErr error
	reads    int
	writes   int
	watchers map[*watcher]struct{}
}

type watcher struct {
	pattern string
	ch      chan core.Event
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		blobs:    make(map[string][]byte),
		watchers: make(map[*watcher]struct{}),
	}
}

// Read implements core.Repository.
func (r *Repository) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.reads++
	data, ok := r.blobs[key]
	if !ok {
		return nil, core.ErrAbsent
	}
	return append([]byte(nil), data...), nil
}

// Write implements core.Repository.
func (r *Repository) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.writes++
	if r.writeErr != nil {
		return r.writeErr
	}
	r.blobs[key] = append([]byte(nil), data...)
	return nil
}

// Set stores a raw blob without counting it as a write and notifies the
// watchers whose pattern matches key.
func (r *Repository) Set(key string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blobs[key] = append([]byte(nil), data...)

	e := core.Event{Type: core.EventModify, ID: key, Timestamp: time.Now().UnixMilli()}
	for w := range r.watchers {
		if ok, _ := doublestar.Match(w.pattern, key); !ok {
			continue
		}
		select {
		case w.ch <- e:
		default:
		}
	}
}

// Watch implements core.Watchable. Only changes made through Set are
// reported; the channel is closed once ctx is done.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}

	w := &watcher{pattern: pattern, ch: make(chan core.Event, 16)}
	r.mu.Lock()
	r.watchers[w] = struct{}{}
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		delete(r.watchers, w)
		close(w.ch)
		r.mu.Unlock()
	}()
	return w.ch, nil
}

// Blob returns the raw blob stored under key.
func (r *Repository) Blob(key string) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.blobs[key]
	return data, ok
}

// FailWrites makes every following Write return err. Passing nil restores
// normal behavior.
func (r *Repository) FailWrites(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writeErr = err
}

// Writes returns the number of Write calls, failed ones included.
func (r *Repository) Writes() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.writes
}

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Keys     int `json:"keys"`
	Reads    int `json:"reads"`
	Writes   int `json:"writes"`
	Watchers int `json:"watchers"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RepositoryState{Keys: len(r.blobs), Reads: r.reads, Writes: r.writes, Watchers: len(r.watchers)}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "memory"
}

var _ core.Repository = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
