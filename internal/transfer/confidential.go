// confidential.go - Encrypted-amount rails backed by the compute service.
//
// Mirrors a confidential token program: each account's balance is a
// ciphertext handle, moves are homomorphic subtract/add, and the public
// side learns nothing beyond "a transfer happened".

package transfer

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"payroll/internal/confidential"
)

// ConfidentialRails moves encrypted value between accounts.
type ConfidentialRails interface {
	MoveEncrypted(source, dest Account, amount confidential.Value) error
}

// ConfidentialBook is an in-memory ConfidentialRails over an Engine.
// Safe for concurrent use.
type ConfidentialBook struct {
	mu       sync.Mutex
	engine   confidential.Engine
	balances map[Account]confidential.Value
}

// NewConfidentialBook creates an empty encrypted balance book.
func NewConfidentialBook(engine confidential.Engine) *ConfidentialBook {
	return &ConfidentialBook{
		engine:   engine,
		balances: make(map[Account]confidential.Value),
	}
}

// balance returns the account's ciphertext balance, initializing absent
// accounts to an encryption of zero. The caller must hold c.mu.
func (c *ConfidentialBook) balance(acct Account) (confidential.Value, error) {
	if v, ok := c.balances[acct]; ok {
		return v, nil
	}
	zero, err := c.engine.Encrypt(big.NewInt(0))
	if err != nil {
		return confidential.Value{}, err
	}
	c.balances[acct] = zero
	return zero, nil
}

// CreditEncrypted adds encrypted value to an account from outside the
// book, e.g. funding a depositor.
func (c *ConfidentialBook) CreditEncrypted(acct Account, amount confidential.Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	bal, err := c.balance(acct)
	if err != nil {
		return err
	}
	sum, err := c.engine.Add(bal, amount)
	if err != nil {
		return err
	}
	c.balances[acct] = sum
	return nil
}

// EncryptedBalance returns the account's ciphertext balance handle.
func (c *ConfidentialBook) EncryptedBalance(acct Account) (confidential.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balance(acct)
}

// MoveEncrypted implements ConfidentialRails. The subtract runs first; if
// the source cannot cover the amount the engine reports underflow and no
// balance changes.
func (c *ConfidentialBook) MoveEncrypted(source, dest Account, amount confidential.Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	srcBal, err := c.balance(source)
	if err != nil {
		return err
	}
	dstBal, err := c.balance(dest)
	if err != nil {
		return err
	}
	newSrc, err := c.engine.Sub(srcBal, amount)
	if err != nil {
		if errors.Is(err, confidential.ErrUnderflow) {
			return fmt.Errorf("%w: encrypted source balance", ErrInsufficientBalance)
		}
		return err
	}
	newDst, err := c.engine.Add(dstBal, amount)
	if err != nil {
		return err
	}
	c.balances[source] = newSrc
	c.balances[dest] = newDst
	return nil
}
