package core

import "context"

// Repository defines the contract of the durable key/value storage the
// Store persists into. Adhering to this interface keeps the core
// independent of the underlying mechanism (files, browser storage, SQL...).
type Repository interface {
	// Read returns the blob stored under key, or ErrAbsent if there is none.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write replaces the blob stored under key.
	Write(ctx context.Context, key string, data []byte) error
}

// Watchable defines an interface for repositories that report changes made
// by other processes.
type Watchable interface {
	// Watch emits an event whenever a key matching pattern changes.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}
