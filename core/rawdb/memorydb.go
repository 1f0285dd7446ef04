package rawdb

import "sync"

// MemoryDB is an in-memory key-value database implementing the Database
// interface. It is safe for concurrent use. Intended for testing and
// single-process deployments that accept losing the consumption record
// on restart.
type MemoryDB struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemoryDB creates a new in-memory database.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{data: make(map[string][]byte)}
}

func (db *MemoryDB) Has(key []byte) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return false, ErrClosed
	}
	_, ok := db.data[string(key)]
	return ok, nil
}

func (db *MemoryDB) Get(key []byte) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return nil, ErrClosed
	}
	val, ok := db.data[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	ret := make([]byte, len(val))
	copy(ret, val)
	return ret, nil
}

func (db *MemoryDB) Put(key, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrClosed
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	db.data[string(key)] = cp
	return nil
}

func (db *MemoryDB) Delete(key []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrClosed
	}
	delete(db.data, string(key))
	return nil
}

func (db *MemoryDB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.closed = true
	db.data = nil
	return nil
}

// Len returns the number of stored entries.
func (db *MemoryDB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.data)
}
