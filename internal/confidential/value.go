// value.go - Opaque ciphertext handle type for encrypted ledger quantities.

package confidential

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
)

// ValueSize is the fixed width of a ciphertext handle in bytes.
const ValueSize = 16

// Errors surfaced by the confidential boundary. The ledger maps these onto
// its own taxonomy before they reach a caller.
var (
	// ErrInvalidCiphertext indicates a ciphertext buffer of the wrong length.
	ErrInvalidCiphertext = errors.New("invalid ciphertext length")

	// ErrUnknownHandle indicates a handle the engine never issued.
	ErrUnknownHandle = errors.New("unknown ciphertext handle")

	// ErrOverflow indicates an encrypted result outside the 128-bit range.
	ErrOverflow = errors.New("encrypted arithmetic overflow")

	// ErrUnderflow indicates an encrypted subtraction below zero.
	ErrUnderflow = errors.New("encrypted arithmetic underflow")

	// ErrUnauthorized indicates a decrypt attempt without the provisioned
	// authorization token.
	ErrUnauthorized = errors.New("unauthorized decrypt")
)

// Value is an opaque handle to an encrypted 128-bit quantity. The bytes are
// meaningless outside the engine that issued them; the ledger only stores,
// copies, and compares them for equality.
type Value [ValueSize]byte

// ValueFromBytes converts a raw ciphertext buffer into a Value.
// The buffer must be exactly ValueSize bytes.
func ValueFromBytes(b []byte) (Value, error) {
	var v Value
	if len(b) != ValueSize {
		return v, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidCiphertext, len(b), ValueSize)
	}
	copy(v[:], b)
	return v, nil
}

// Bytes returns a copy of the handle's raw bytes.
func (v Value) Bytes() []byte {
	out := make([]byte, ValueSize)
	copy(out, v[:])
	return out
}

// IsZero reports whether the handle is the all-zero placeholder, i.e. no
// ciphertext has been assigned yet.
func (v Value) IsZero() bool {
	return v == Value{}
}

// String renders the handle as hex. Safe to log: a handle reveals nothing
// about the plaintext it refers to.
func (v Value) String() string {
	return hex.EncodeToString(v[:])
}

// maxPlaintext is the exclusive upper bound for encrypted quantities (2^128).
var maxPlaintext = new(big.Int).Lsh(big.NewInt(1), 128)

// inRange reports whether x is a valid plaintext for encryption.
func inRange(x *big.Int) bool {
	return x.Sign() >= 0 && x.Cmp(maxPlaintext) < 0
}
