package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultKey is the storage key notes are persisted under.
	DefaultKey = "notes"

	defaultEventBuffer = 64
)

// StoreConfig holds the configuration of a Store.
type StoreConfig struct {
	Repository  Repository
	Key         string           // defaults to DefaultKey
	Logger      *slog.Logger     // nil discards
	Clock       func() time.Time // defaults to time.Now
	NewID       func() string    // defaults to uuid.NewString
	EventBuffer int              // zero means default (64)
}

// Store owns the authoritative collection of notes.
// Every mutation is applied and persisted before the call returns; a failed
// persist is reported as a *PersistenceWriteError but never rolled back.
type Store struct {
	mu      sync.RWMutex
	repo    Repository
	key     string
	logger  *slog.Logger
	clock   func() time.Time
	newID   func() string
	notes   map[string]Note
	events  chan Event
	closed  bool
	dirty   bool   // last persist failed
	last    []byte // last blob read or written
	readErr error
	writes  int
}

// NewStore creates a Store. Call Load before using it.
func NewStore(cfg StoreConfig) *Store {
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = defaultEventBuffer
	}

	return &Store{
		repo:   cfg.Repository,
		key:    cfg.Key,
		logger: cfg.Logger,
		clock:  cfg.Clock,
		newID:  cfg.NewID,
		notes:  make(map[string]Note),
		events: make(chan Event, cfg.EventBuffer),
	}
}

// Key returns the storage key the store persists under.
func (s *Store) Key() string { return s.key }

// Now returns the store clock reading in epoch milliseconds.
func (s *Store) Now() int64 { return s.clock().UnixMilli() }

// Load reads and normalizes the persisted collection.
//
// Absent or malformed data never fails the call: the store resets to an
// empty collection and the failure is available through LastReadError.
// If normalization had to correct anything, the corrected collection is
// persisted immediately and a write failure is returned as a warning.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	return s.loadLocked(ctx, false)
}

// Reload re-reads the collection after an external change to the storage.
// It is skipped while an earlier write is still failing, since the in-memory
// state is then newer than the stored one.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.dirty {
		s.logger.Warn("skipping reload, in-memory notes have unsaved changes", "key", s.key)
		return nil
	}
	return s.loadLocked(ctx, true)
}

func (s *Store) loadLocked(ctx context.Context, reload bool) error {
	data, err := s.repo.Read(ctx, s.key)
	if err == nil && reload && s.last != nil && bytes.Equal(data, s.last) {
		return nil
	}

	var records []Record
	if err == nil {
		records, err = DecodeRecords(data)
	}
	if err != nil {
		s.notes = make(map[string]Note)
		s.last = nil
		s.readErr = &PersistenceReadError{Key: s.key, Err: err}
		if errors.Is(err, ErrAbsent) {
			s.logger.Debug("no stored notes, starting empty", "key", s.key)
		} else {
			s.logger.Warn("stored notes unreadable, starting empty", "key", s.key, "error", err)
		}
		if reload {
			s.publish(Event{Type: EventReload})
		}
		return nil
	}

	notes, changed := Normalize(records, s.clock(), s.newID)
	s.notes = make(map[string]Note, len(notes))
	for _, n := range notes {
		s.notes[n.ID] = n
	}
	s.readErr = nil
	s.last = data
	s.logger.Debug("notes loaded", "key", s.key, "count", len(notes), "migrated", changed)

	if reload {
		s.publish(Event{Type: EventReload})
	}
	if changed {
		return s.persistLocked(ctx)
	}
	return nil
}

// LastReadError returns the *PersistenceReadError of the last Load, if any.
func (s *Store) LastReadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readErr
}

// Dirty reports whether the last persist attempt failed.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Writes returns the number of persist attempts made so far.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Create adds a new note in front of the collection.
func (s *Store) Create(ctx context.Context, d Draft) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Note{}, ErrClosed
	}

	now := s.clock().UnixMilli()
	n := Note{
		ID:          s.uniqueIDLocked(),
		Title:       d.Title,
		Content:     d.Content,
		ContentType: d.ContentType,
		Color:       d.Color,
		OrderKey:    float64(now),
		CreatedAt:   now,
		ModifiedAt:  now,
	}
	Patch{}.apply(&n)

	s.notes[n.ID] = n
	s.publish(Event{Type: EventCreate, ID: n.ID, Timestamp: now})
	return n, s.persistLocked(ctx)
}

func (s *Store) uniqueIDLocked() string {
	for {
		id := s.newID()
		if _, taken := s.notes[id]; !taken && id != "" {
			return id
		}
	}
}

// Update merges p into the note identified by id.
// It returns ErrNotFound if there is no such note.
func (s *Store) Update(ctx context.Context, id string, p Patch) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Note{}, ErrClosed
	}

	n, ok := s.notes[id]
	if !ok {
		return Note{}, ErrNotFound
	}
	if p.OrderKey != nil && !finite(*p.OrderKey) {
		return Note{}, fmt.Errorf("%w: %v", ErrInvalidOrderKey, *p.OrderKey)
	}

	p.apply(&n)
	n.ModifiedAt = s.clock().UnixMilli()
	s.notes[id] = n

	s.publish(Event{Type: EventModify, ID: id, Timestamp: n.ModifiedAt})
	return n, s.persistLocked(ctx)
}

// ApplyOrderKeys assigns order keys to several notes and persists once.
// Unknown ids are ignored. A non-finite key rejects the whole batch.
func (s *Store) ApplyOrderKeys(ctx context.Context, keys map[string]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	for id, key := range keys {
		if !finite(key) {
			return fmt.Errorf("%w: %v for note %s", ErrInvalidOrderKey, key, id)
		}
	}

	now := s.clock().UnixMilli()
	for id, key := range keys {
		n, ok := s.notes[id]
		if !ok {
			continue
		}
		n.OrderKey = key
		n.ModifiedAt = now
		s.notes[id] = n
		s.publish(Event{Type: EventModify, ID: id, Timestamp: now})
	}
	return s.persistLocked(ctx)
}

// Delete removes a note permanently. It reports false if id is unknown.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrClosed
	}

	if _, ok := s.notes[id]; !ok {
		return false, nil
	}
	delete(s.notes, id)

	s.publish(Event{Type: EventDelete, ID: id, Timestamp: s.clock().UnixMilli()})
	return true, s.persistLocked(ctx)
}

// Replace swaps the whole collection, normalizing the given notes the same
// way Load does, and persists it.
func (s *Store) Replace(ctx context.Context, notes []Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	records := make([]Record, len(notes))
	for i := range notes {
		records[i] = toRecord(notes[i])
	}
	normalized, _ := Normalize(records, s.clock(), s.newID)

	s.notes = make(map[string]Note, len(normalized))
	for _, n := range normalized {
		s.notes[n.ID] = n
	}
	s.publish(Event{Type: EventReload, Timestamp: s.clock().UnixMilli()})
	return s.persistLocked(ctx)
}

func toRecord(n Note) Record {
	ct, color := string(n.ContentType), string(n.Color)
	r := Record{
		ID:          &n.ID,
		Title:       &n.Title,
		Content:     &n.Content,
		ContentType: &ct,
		Color:       &color,
	}
	if n.OrderKey != 0 && finite(n.OrderKey) {
		r.OrderKey = &n.OrderKey
	}
	if n.CreatedAt != 0 {
		r.CreatedAt = &n.CreatedAt
	}
	if n.ModifiedAt != 0 {
		r.ModifiedAt = &n.ModifiedAt
	}
	return r
}

// Get returns the note identified by id.
func (s *Store) Get(id string) (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[id]
	return n, ok
}

// Len returns the number of notes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// List returns a snapshot of the notes in display order: descending order
// key, then descending modification time, then ascending id.
func (s *Store) List() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked()
}

func (s *Store) listLocked() []Note {
	out := make([]Note, 0, len(s.notes))
	for _, n := range s.notes {
		out = append(out, n)
	}
	SortNotes(out)
	return out
}

// SortNotes sorts notes in display order in place.
func SortNotes(notes []Note) {
	sort.Slice(notes, func(i, j int) bool {
		a, b := notes[i], notes[j]
		if a.OrderKey != b.OrderKey {
			return a.OrderKey > b.OrderKey
		}
		if a.ModifiedAt != b.ModifiedAt {
			return a.ModifiedAt > b.ModifiedAt
		}
		return a.ID < b.ID
	})
}

// IndexOf returns the display position of id, or -1.
func (s *Store) IndexOf(id string) int {
	for i, n := range s.List() {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// Events returns the channel of change notifications. Events are dropped
// when the buffer is full. The channel is closed by Close.
func (s *Store) Events() <-chan Event {
	return s.events
}

// Close releases the store. Further mutations return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	close(s.events)
	return nil
}

// publish must be called with s.mu held.
func (s *Store) publish(e Event) {
	if s.closed {
		return
	}
	if e.Timestamp == 0 {
		e.Timestamp = s.clock().UnixMilli()
	}
	select {
	case s.events <- e:
	default:
		s.logger.Debug("event dropped, buffer full", "type", e.Type, "id", e.ID)
	}
}

// persistLocked writes the whole collection. Must be called with s.mu held.
func (s *Store) persistLocked(ctx context.Context) error {
	s.writes++

	data, err := EncodeNotes(s.listLocked())
	if err == nil {
		err = s.repo.Write(ctx, s.key, data)
	}
	if err != nil {
		s.dirty = true
		s.logger.Warn("failed to persist notes", "key", s.key, "error", err)
		return &PersistenceWriteError{Key: s.key, Err: err}
	}

	s.dirty = false
	s.last = data
	return nil
}
