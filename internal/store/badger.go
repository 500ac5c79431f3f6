// badger.go - Badger-backed persistent store.

package store

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// Badger is a Store over a Badger database directory.
type Badger struct {
	db *badger.DB
}

// OpenBadger opens (or creates) the database at dir. Badger's own logger is
// disabled; the daemon logs at the operation level instead.
func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	return &Badger{db: db}, nil
}

// Begin implements Store.
func (b *Badger) Begin(writable bool) (Txn, error) {
	return &badgerTxn{txn: b.db.NewTransaction(writable)}, nil
}

// Close implements Store.
func (b *Badger) Close() error {
	return b.db.Close()
}

type badgerTxn struct {
	txn *badger.Txn
}

func (t *badgerTxn) Get(key []byte) ([]byte, error) {
	item, err := t.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (t *badgerTxn) Set(key, value []byte) error {
	return t.txn.Set(key, value)
}

func (t *badgerTxn) Delete(key []byte) error {
	return t.txn.Delete(key)
}

func (t *badgerTxn) Commit() error {
	return t.txn.Commit()
}

func (t *badgerTxn) Discard() {
	t.txn.Discard()
}
