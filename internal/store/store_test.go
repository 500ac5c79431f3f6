package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stores under test: the in-memory map and the badger directory store
// behave identically through the Store interface.
func openStores(t *testing.T) map[string]Store {
	t.Helper()
	b, err := OpenBadger(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return map[string]Store{
		"memory": NewMemory(),
		"badger": b,
	}
}

func TestGetSetDelete(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			txn, err := s.Begin(true)
			require.NoError(t, err)
			require.NoError(t, txn.Set([]byte("k1"), []byte("v1")))

			// Reads inside the transaction see pending writes.
			got, err := txn.Get([]byte("k1"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v1"), got)
			require.NoError(t, txn.Commit())

			txn, err = s.Begin(false)
			require.NoError(t, err)
			got, err = txn.Get([]byte("k1"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v1"), got)
			_, err = txn.Get([]byte("absent"))
			assert.ErrorIs(t, err, ErrNotFound)
			txn.Discard()

			txn, err = s.Begin(true)
			require.NoError(t, err)
			require.NoError(t, txn.Delete([]byte("k1")))
			require.NoError(t, txn.Commit())

			txn, err = s.Begin(false)
			require.NoError(t, err)
			_, err = txn.Get([]byte("k1"))
			assert.ErrorIs(t, err, ErrNotFound)
			txn.Discard()
		})
	}
}

func TestDiscardLeavesNoTrace(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			txn, err := s.Begin(true)
			require.NoError(t, err)
			require.NoError(t, txn.Set([]byte("ghost"), []byte("boo")))
			txn.Discard()

			read, err := s.Begin(false)
			require.NoError(t, err)
			defer read.Discard()
			_, err = read.Get([]byte("ghost"))
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestCommitIsAtomic(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			txn, err := s.Begin(true)
			require.NoError(t, err)
			require.NoError(t, txn.Set([]byte("a"), []byte("1")))
			require.NoError(t, txn.Set([]byte("b"), []byte("2")))

			// Nothing is visible until commit.
			read, err := s.Begin(false)
			require.NoError(t, err)
			_, err = read.Get([]byte("a"))
			assert.ErrorIs(t, err, ErrNotFound)
			read.Discard()

			require.NoError(t, txn.Commit())

			read, err = s.Begin(false)
			require.NoError(t, err)
			defer read.Discard()
			a, err := read.Get([]byte("a"))
			require.NoError(t, err)
			b, err := read.Get([]byte("b"))
			require.NoError(t, err)
			assert.Equal(t, []byte("1"), a)
			assert.Equal(t, []byte("2"), b)
		})
	}
}

func TestReadOnlyTransactionRejectsWrites(t *testing.T) {
	s := NewMemory()
	txn, err := s.Begin(false)
	require.NoError(t, err)
	defer txn.Discard()
	assert.Error(t, txn.Set([]byte("k"), []byte("v")))
	assert.Error(t, txn.Delete([]byte("k")))
}
