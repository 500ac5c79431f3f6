// circuit.go - Groth16 circuit for hidden-amount transfers.
//
// Proves, for a public commitment, knowledge of an amount and blinding
// factor such that cm = MiMC(amount, blinding) and the amount fits in 64
// bits. The verifier learns that a well-formed amount was transferred and
// nothing else.

package private

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// CircuitHiddenTransfer is the hidden-amount transfer statement.
type CircuitHiddenTransfer struct {
	// Public
	Commitment frontend.Variable `gnark:",public"`

	// Private
	Amount   frontend.Variable
	Blinding frontend.Variable
}

// Define encodes the constraints.
func (c *CircuitHiddenTransfer) Define(api frontend.API) error {
	// (1) Amount is a valid 64-bit quantity.
	api.ToBinary(c.Amount, 64)

	// (2) Commitment opens to (amount, blinding).
	hasher, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	hasher.Write(c.Amount)
	hasher.Write(c.Blinding)
	api.AssertIsEqual(c.Commitment, hasher.Sum())

	return nil
}
