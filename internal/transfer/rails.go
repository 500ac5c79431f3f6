// rails.go - Funds-transfer contracts and the public reference book.

package transfer

import (
	"errors"
	"fmt"
	"sync"
)

// Account identifies a balance-holding account on the rails. The payroll
// ledger passes its derived account addresses through unchanged.
type Account [32]byte

// Transfer errors.
var (
	// ErrInsufficientBalance indicates the source cannot cover the move.
	ErrInsufficientBalance = errors.New("insufficient rail balance")

	// ErrBalanceOverflow indicates the destination balance would wrap.
	ErrBalanceOverflow = errors.New("rail balance overflow")
)

// Rails moves public value between accounts. Implementations must be
// atomic per call: either both balances change or neither does.
type Rails interface {
	MoveValue(source, dest Account, amount uint64) error
}

// Book is an in-memory Rails implementation. Safe for concurrent use.
type Book struct {
	mu       sync.Mutex
	balances map[Account]uint64
}

// NewBook creates an empty balance book.
func NewBook() *Book {
	return &Book{balances: make(map[Account]uint64)}
}

// Credit adds external value to an account, e.g. funding a depositor in a
// test or demo scenario.
func (b *Book) Credit(acct Account, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cur := b.balances[acct]
	if cur+amount < cur {
		return ErrBalanceOverflow
	}
	b.balances[acct] = cur + amount
	return nil
}

// Balance returns the public balance of an account.
func (b *Book) Balance(acct Account) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[acct]
}

// MoveValue implements Rails.
func (b *Book) MoveValue(source, dest Account, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	src := b.balances[source]
	if src < amount {
		return fmt.Errorf("%w: account %x", ErrInsufficientBalance, source[:4])
	}
	dst := b.balances[dest]
	if dst+amount < dst {
		return ErrBalanceOverflow
	}
	b.balances[source] = src - amount
	b.balances[dest] = dst + amount
	return nil
}
