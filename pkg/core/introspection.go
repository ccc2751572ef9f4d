package core

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Key             string `json:"key"`
	Notes           int    `json:"notes"`
	Writes          int    `json:"writes"`
	Dirty           bool   `json:"dirty"`
	Closed          bool   `json:"closed"`
	EventBufferSize int    `json:"event_buffer_size"`
	RepositoryType  string `json:"repository_type"`
	LastReadError   string `json:"last_read_error,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	repoType := "unknown"
	if s.repo != nil {
		repoType = "repository"
		if comp, ok := s.repo.(introspection.Component); ok {
			repoType = comp.ComponentType()
		}
	}

	state := StoreState{
		Key:             s.key,
		Notes:           len(s.notes),
		Writes:          s.writes,
		Dirty:           s.dirty,
		Closed:          s.closed,
		EventBufferSize: cap(s.events),
		RepositoryType:  repoType,
	}
	if s.readErr != nil {
		state.LastReadError = s.readErr.Error()
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
