// private.go - Prove/verify wrappers modelling the Private Transfer
// Service.

package private

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	bw6761_fr "github.com/consensys/gnark-crypto/ecc/bw6-761/fr"
	mimcNative "github.com/consensys/gnark-crypto/ecc/bw6-761/fr/mimc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"payroll/internal/confidential"
	"payroll/internal/transfer"
)

// ErrInvalidProof indicates a range proof that fails verification.
var ErrInvalidProof = errors.New("invalid hidden-amount proof")

// Setup compiles the circuit and runs the Groth16 setup. Deployments cache
// the keys; tests call this once per run.
func Setup() (constraint.ConstraintSystem, groth16.ProvingKey, groth16.VerifyingKey, error) {
	var circuit CircuitHiddenTransfer
	ccs, err := frontend.Compile(ecc.BW6_761.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("compile hidden-transfer circuit: %w", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("groth16 setup: %w", err)
	}
	return ccs, pk, vk, nil
}

// RandomBlinding draws a fresh blinding factor.
func RandomBlinding() (*big.Int, error) {
	var r bw6761_fr.Element
	if _, err := r.SetRandom(); err != nil {
		return nil, err
	}
	return r.BigInt(new(big.Int)), nil
}

// Commit computes the native commitment MiMC(amount, blinding), matching
// the in-circuit hash: both inputs are hashed as canonical field elements.
func Commit(amount uint64, blinding *big.Int) *big.Int {
	var a, b bw6761_fr.Element
	a.SetUint64(amount)
	b.SetBigInt(blinding)
	aBytes := a.Bytes()
	bBytes := b.Bytes()
	h := mimcNative.NewMiMC()
	h.Write(aBytes[:])
	h.Write(bBytes[:])
	return new(big.Int).SetBytes(h.Sum(nil))
}

// Prove produces the commitment and a serialized Groth16 proof for the
// given amount.
func Prove(amount uint64, blinding *big.Int, ccs constraint.ConstraintSystem, pk groth16.ProvingKey) (*big.Int, []byte, error) {
	cm := Commit(amount, blinding)
	assignment := &CircuitHiddenTransfer{
		Commitment: cm,
		Amount:     new(big.Int).SetUint64(amount),
		Blinding:   blinding,
	}
	witness, err := frontend.NewWitness(assignment, ecc.BW6_761.ScalarField())
	if err != nil {
		return nil, nil, fmt.Errorf("build witness: %w", err)
	}
	proof, err := groth16.Prove(ccs, pk, witness)
	if err != nil {
		return nil, nil, fmt.Errorf("prove hidden amount: %w", err)
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, nil, fmt.Errorf("serialize proof: %w", err)
	}
	return cm, buf.Bytes(), nil
}

// Verify checks a serialized proof against a commitment.
func Verify(commitment *big.Int, proofBytes []byte, vk groth16.VerifyingKey) error {
	proof := groth16.NewProof(ecc.BW6_761)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return fmt.Errorf("%w: cannot deserialize", ErrInvalidProof)
	}
	public := &CircuitHiddenTransfer{Commitment: commitment}
	witness, err := frontend.NewWitness(public, ecc.BW6_761.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("%w: cannot build public witness", ErrInvalidProof)
	}
	if err := groth16.Verify(proof, vk, witness); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	return nil
}

// Service verifies hidden-amount transfers and executes them on the
// confidential rails. It models the external Private Transfer Service.
type Service struct {
	vk    groth16.VerifyingKey
	rails transfer.ConfidentialRails
}

// NewService wires a verifying key to a set of confidential rails.
func NewService(vk groth16.VerifyingKey, rails transfer.ConfidentialRails) *Service {
	return &Service{vk: vk, rails: rails}
}

// TransferWithHiddenAmount verifies the range proof for the committed
// amount and, on success, moves the ciphertext between accounts.
func (s *Service) TransferWithHiddenAmount(source, dest transfer.Account, amount confidential.Value, commitment *big.Int, proof []byte) error {
	if err := Verify(commitment, proof, s.vk); err != nil {
		return err
	}
	return s.rails.MoveEncrypted(source, dest, amount)
}
