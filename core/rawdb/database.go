// Package rawdb provides the narrow key-value layer backing the
// settlement core's durable state: the claim-consumption record. Two
// implementations are provided, an in-memory store for tests and
// embedding, and a file-backed store that survives process restarts.
package rawdb

import "errors"

// Database errors.
var (
	ErrNotFound = errors.New("rawdb: not found")
	ErrClosed   = errors.New("rawdb: database closed")
)

// Database is a minimal key-value store. Implementations must be safe
// for concurrent use from multiple goroutines.
type Database interface {
	// Has reports whether a value exists for key.
	Has(key []byte) (bool, error)

	// Get returns the value for key, or ErrNotFound.
	Get(key []byte) ([]byte, error)

	// Put stores value under key, overwriting any previous value.
	Put(key, value []byte) error

	// Delete removes the value for key. Deleting a missing key is not
	// an error.
	Delete(key []byte) error

	// Close releases underlying resources. Operations after Close
	// return ErrClosed.
	Close() error
}
