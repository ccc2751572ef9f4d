package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrNotFound = errors.New("note not found")
	ErrAbsent   = errors.New("key not present in storage")
	ErrClosed   = errors.New("store is closed")

	ErrInvalidOrderKey = errors.New("order key must be a finite number")
)

// PersistenceReadError reports a stored blob that could not be read or decoded.
// The store recovers from it by starting with an empty collection.
type PersistenceReadError struct {
	Key string
	Err error
}

func (e *PersistenceReadError) Error() string {
	return fmt.Sprintf("failed to read notes from %q: %v", e.Key, e.Err)
}

func (e *PersistenceReadError) Unwrap() error { return e.Err }

// PersistenceWriteError reports a failed write. The in-memory mutation that
// triggered it has already been applied and stays authoritative.
type PersistenceWriteError struct {
	Key string
	Err error
}

func (e *PersistenceWriteError) Error() string {
	return fmt.Sprintf("failed to write notes to %q: %v", e.Key, e.Err)
}

func (e *PersistenceWriteError) Unwrap() error { return e.Err }

// IsWriteWarning reports whether err only signals a failed persist,
// meaning the requested operation itself succeeded in memory.
func IsWriteWarning(err error) bool {
	var we *PersistenceWriteError
	return errors.As(err, &we)
}
