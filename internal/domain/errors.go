// Package domain holds the error kinds shared by the swipe ledger, the match
// store and the facade. Storage adapters wrap driver errors into these
// sentinels so callers only ever need errors.Is.
package domain

import "errors"

var (
	// ErrInvalidInput is returned before any write for self-swipes, nil ids
	// and decisions outside the closed set.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict marks a storage-level constraint or serialization failure
	// between racing writers. The facade recovers from it internally.
	ErrConflict = errors.New("concurrency conflict")

	// ErrStorageUnavailable means the persistence layer could not be reached.
	// The operation is safe to retry.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFound is returned by point lookups such as a single match.
	ErrNotFound = errors.New("not found")
)
