// engine.go - Call contract for the external Confidential Compute Service.

package confidential

import "math/big"

// Authorization is the token that gates decryption. In production it is the
// vault's derived signing authority; the engine compares it against the
// token it was provisioned with.
type Authorization []byte

// Engine is the contract the payroll protocols program against. All
// implementations live outside the ledger core; ServiceEngine is the
// in-process reference used by tests and local deployments.
//
// Every operation is total over handles the engine issued: passing a handle
// from a different engine instance fails with ErrUnknownHandle rather than
// producing garbage.
type Engine interface {
	// Encrypt seals a plaintext quantity and returns a fresh handle.
	// The plaintext must fit in 128 bits.
	Encrypt(plaintext *big.Int) (Value, error)

	// Add returns a handle to a + b.
	Add(a, b Value) (Value, error)

	// Sub returns a handle to a - b, failing with ErrUnderflow if the
	// result would be negative.
	Sub(a, b Value) (Value, error)

	// Scale returns a handle to a * factor, where factor is public. Used
	// for accrual: elapsed time is public, the encrypted rate is not.
	Scale(a Value, factor uint64) (Value, error)

	// LessOrEqual reports whether the quantity behind a is <= the quantity
	// behind b, without revealing either.
	LessOrEqual(a, b Value) (bool, error)

	// DecryptForTransfer opens a handle for the final value-movement step
	// of a withdrawal. It is the only way plaintext leaves the service and
	// requires the provisioned authorization token. Callers must never log
	// the result.
	DecryptForTransfer(v Value, auth Authorization) (*big.Int, error)
}
