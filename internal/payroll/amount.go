// amount.go - Tagged amount payload for deposits and withdrawals.
//
// An operation carries either a public amount or a ciphertext, never both.
// The two cases are distinct types so every consumer type-switches
// exhaustively instead of testing a nullable field.

package payroll

import (
	"fmt"
	"math/big"

	"payroll/internal/confidential"
)

// Amount is the sum of PlainAmount and EncryptedAmount.
type Amount interface {
	isAmount()
}

// PlainAmount is a public amount in base units, used on the
// non-confidential fallback path.
type PlainAmount uint64

func (PlainAmount) isAmount() {}

// EncryptedAmount is a raw ciphertext buffer, used when confidential
// transfers are enabled. Must be exactly confidential.ValueSize bytes.
type EncryptedAmount []byte

func (EncryptedAmount) isAmount() {}

// handle validates the buffer and converts it to a ciphertext handle.
func (a EncryptedAmount) handle() (confidential.Value, error) {
	v, err := confidential.ValueFromBytes(a)
	if err != nil {
		return confidential.Value{}, fmt.Errorf("%w: amount ciphertext must be %d bytes", ErrInvalidCiphertext, confidential.ValueSize)
	}
	return v, nil
}

func bigZero() *big.Int { return new(big.Int) }

func bigUint(x uint64) *big.Int { return new(big.Int).SetUint64(x) }
