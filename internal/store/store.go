// store.go - Transactional key-value store contract for account records.
//
// Every ledger operation runs inside one Txn: all mutations commit together
// or not at all. The host runtime serializes writers; implementations only
// need to keep reads consistent.

package store

import "errors"

// ErrNotFound indicates a key with no stored record.
var ErrNotFound = errors.New("key not found")

// Store opens transactions over account records.
type Store interface {
	// Begin starts a transaction. Read-only transactions must not call
	// Set, Delete, or Commit.
	Begin(writable bool) (Txn, error)

	// Close releases the underlying resources.
	Close() error
}

// Txn is a single atomic unit of work. Discard is safe to call after
// Commit, so callers can defer it unconditionally.
type Txn interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Commit() error
	Discard()
}
