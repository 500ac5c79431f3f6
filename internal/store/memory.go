// memory.go - In-memory store for tests and the scenario runner.

package store

import (
	"errors"
	"sync"
)

// Memory is a map-backed Store. Safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Begin implements Store.
func (m *Memory) Begin(writable bool) (Txn, error) {
	return &memoryTxn{
		store:    m,
		writable: writable,
		pending:  make(map[string]pendingWrite),
	}, nil
}

// Close implements Store.
func (m *Memory) Close() error {
	return nil
}

type pendingWrite struct {
	value   []byte
	deleted bool
}

type memoryTxn struct {
	store    *Memory
	writable bool
	pending  map[string]pendingWrite
	done     bool
}

func (t *memoryTxn) Get(key []byte) ([]byte, error) {
	if w, ok := t.pending[string(key)]; ok {
		if w.deleted {
			return nil, ErrNotFound
		}
		out := make([]byte, len(w.value))
		copy(out, w.value)
		return out, nil
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	v, ok := t.store.data[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (t *memoryTxn) Set(key, value []byte) error {
	if !t.writable {
		return errors.New("set on read-only transaction")
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	t.pending[string(key)] = pendingWrite{value: cp}
	return nil
}

func (t *memoryTxn) Delete(key []byte) error {
	if !t.writable {
		return errors.New("delete on read-only transaction")
	}
	t.pending[string(key)] = pendingWrite{deleted: true}
	return nil
}

func (t *memoryTxn) Commit() error {
	if t.done {
		return errors.New("transaction already finished")
	}
	t.done = true
	if !t.writable {
		return errors.New("commit on read-only transaction")
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for k, w := range t.pending {
		if w.deleted {
			delete(t.store.data, k)
		} else {
			t.store.data[k] = w.value
		}
	}
	return nil
}

func (t *memoryTxn) Discard() {
	t.done = true
	t.pending = nil
}
