// The one-time-consumption record: the only durable mutable state in
// the settlement core. It is modeled as a narrow injected capability so
// the gate stays unit-testable with an in-memory store and deployments
// can supply a transactional one.
package core

import (
	"sync"

	"github.com/crossfill/crossfill/core/rawdb"
	"github.com/crossfill/crossfill/core/types"
)

// ConsumedStore tracks which claim hashes have been consumed. The
// record must survive for the lifetime of the deployment: a consumed
// claim stays consumed forever.
type ConsumedStore interface {
	// Consumed reports whether the claim hash has been consumed.
	Consumed(h types.Hash) (bool, error)

	// Consume marks the claim hash consumed. It is an atomic
	// test-and-set: already reports whether the hash was consumed
	// before this call, in which case the call has no effect.
	Consume(h types.Hash) (already bool, err error)
}

// MemoryStore is an in-memory ConsumedStore for tests and embedding.
type MemoryStore struct {
	mu sync.Mutex
	db *rawdb.MemoryDB
}

// NewMemoryStore creates an empty in-memory consumption record.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{db: rawdb.NewMemoryDB()}
}

func (s *MemoryStore) Consumed(h types.Hash) (bool, error) {
	return s.db.Has(consumedKey(h))
}

func (s *MemoryStore) Consume(h types.Hash) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dbConsume(s.db, h)
}

// DBStore is a ConsumedStore over an arbitrary rawdb.Database, one
// keyed entry per consumed claim hash.
type DBStore struct {
	mu sync.Mutex
	db rawdb.Database
}

// NewDBStore wraps db as a consumption record. The caller owns the
// database lifecycle.
func NewDBStore(db rawdb.Database) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Consumed(h types.Hash) (bool, error) {
	return s.db.Has(consumedKey(h))
}

func (s *DBStore) Consume(h types.Hash) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dbConsume(s.db, h)
}

// consumedPrefix namespaces consumption entries within a shared
// database.
var consumedPrefix = []byte("consumed-")

func consumedKey(h types.Hash) []byte {
	return append(append([]byte{}, consumedPrefix...), h[:]...)
}

// dbConsume performs the test-and-set against db. Callers hold the
// store mutex so the Has/Put pair is atomic; the value stored is a
// single marker byte.
func dbConsume(db rawdb.Database, h types.Hash) (bool, error) {
	key := consumedKey(h)
	already, err := db.Has(key)
	if err != nil {
		return false, err
	}
	if already {
		return true, nil
	}
	if err := db.Put(key, []byte{1}); err != nil {
		return false, err
	}
	return false, nil
}
