// FileDB implements a persistent file-based key-value store using a
// flat directory layout. Keys are hex-encoded and stored as individual
// files under a data/ subdirectory. An in-memory index is maintained
// for fast lookups and rebuilt from disk on open. A file lock prevents
// concurrent process access.
//
// Layout:
//
//	<dir>/
//	  LOCK          - flock-based exclusive lock
//	  data/         - key-value files (filename = hex(key))
//
// Writes go through a temp file followed by rename, so a crash never
// leaves a torn value behind.
package rawdb

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
)

// FileDB is a file-backed persistent key-value store implementing the
// Database interface. It is safe for concurrent use from multiple
// goroutines within a single process. Cross-process safety is provided
// by a file lock.
type FileDB struct {
	mu      sync.RWMutex
	dir     string            // root directory
	dataDir string            // dir + "/data"
	index   map[string][]byte // in-memory cache of all key-value pairs
	lockFd  int               // file descriptor for LOCK file
	closed  bool
}

// NewFileDB opens or creates a file-based key-value database at dir.
// The directory is created if it does not exist. An exclusive file
// lock is acquired to prevent concurrent access from other processes.
func NewFileDB(dir string) (*FileDB, error) {
	dataDir := filepath.Join(dir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("filedb: mkdir: %w", err)
	}

	lockFd, err := acquireLock(filepath.Join(dir, "LOCK"))
	if err != nil {
		return nil, fmt.Errorf("filedb: lock: %w", err)
	}

	db := &FileDB{
		dir:     dir,
		dataDir: dataDir,
		index:   make(map[string][]byte),
		lockFd:  lockFd,
	}
	if err := db.loadIndex(); err != nil {
		releaseLock(lockFd)
		return nil, err
	}
	return db, nil
}

// acquireLock opens path and takes an exclusive non-blocking flock.
func acquireLock(path string) (int, error) {
	fd, err := syscall.Open(path, syscall.O_CREAT|syscall.O_RDWR, 0o644)
	if err != nil {
		return -1, err
	}
	if err := syscall.Flock(fd, syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		syscall.Close(fd)
		return -1, fmt.Errorf("already locked by another process: %w", err)
	}
	return fd, nil
}

func releaseLock(fd int) {
	syscall.Flock(fd, syscall.LOCK_UN)
	syscall.Close(fd)
}

// loadIndex rebuilds the in-memory index from the data directory.
func (db *FileDB) loadIndex() error {
	entries, err := os.ReadDir(db.dataDir)
	if err != nil {
		return fmt.Errorf("filedb: read data dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		key, err := hex.DecodeString(e.Name())
		if err != nil {
			// Not one of ours (editor droppings, temp files).
			continue
		}
		val, err := os.ReadFile(filepath.Join(db.dataDir, e.Name()))
		if err != nil {
			return fmt.Errorf("filedb: read %s: %w", e.Name(), err)
		}
		db.index[string(key)] = val
	}
	return nil
}

func (db *FileDB) keyPath(key []byte) string {
	return filepath.Join(db.dataDir, hex.EncodeToString(key))
}

func (db *FileDB) Has(key []byte) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return false, ErrClosed
	}
	_, ok := db.index[string(key)]
	return ok, nil
}

func (db *FileDB) Get(key []byte) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return nil, ErrClosed
	}
	val, ok := db.index[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	ret := make([]byte, len(val))
	copy(ret, val)
	return ret, nil
}

func (db *FileDB) Put(key, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrClosed
	}
	path := db.keyPath(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("filedb: write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("filedb: rename: %w", err)
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	db.index[string(key)] = cp
	return nil
}

func (db *FileDB) Delete(key []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrClosed
	}
	if err := os.Remove(db.keyPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("filedb: remove: %w", err)
	}
	delete(db.index, string(key))
	return nil
}

func (db *FileDB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil
	}
	db.closed = true
	db.index = nil
	releaseLock(db.lockFd)
	return nil
}
