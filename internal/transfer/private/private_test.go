package private

import (
	"math/big"
	"testing"

	"payroll/internal/confidential"
	"payroll/internal/transfer"
)

// TestHiddenTransferEndToEnd proves and verifies a hidden amount, then
// runs the full service path against the confidential rails. Groth16
// setup dominates the runtime, so everything shares one setup.
func TestHiddenTransferEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Groth16 setup in short mode")
	}

	ccs, pk, vk, err := Setup()
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	blinding, err := RandomBlinding()
	if err != nil {
		t.Fatalf("RandomBlinding failed: %v", err)
	}
	const amount = uint64(60_000)

	cm, proof, err := Prove(amount, blinding, ccs, pk)
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}
	if err := Verify(cm, proof, vk); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	// A different commitment must not verify against the same proof.
	wrong := new(big.Int).Add(cm, big.NewInt(1))
	if err := Verify(wrong, proof, vk); err == nil {
		t.Fatal("Verify accepted a proof for the wrong commitment")
	}

	// Service path: verify then move ciphertext between accounts.
	auth := confidential.Authorization("auth")
	engine := confidential.NewServiceEngine(auth)
	book := transfer.NewConfidentialBook(engine)
	svc := NewService(vk, book)

	var src, dst transfer.Account
	src[0], dst[0] = 1, 2

	funding, err := engine.Encrypt(new(big.Int).SetUint64(amount))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if err := book.CreditEncrypted(src, funding); err != nil {
		t.Fatalf("CreditEncrypted failed: %v", err)
	}
	hidden, err := engine.Encrypt(new(big.Int).SetUint64(amount))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	if err := svc.TransferWithHiddenAmount(src, dst, hidden, cm, proof); err != nil {
		t.Fatalf("TransferWithHiddenAmount failed: %v", err)
	}

	dstBal, err := book.EncryptedBalance(dst)
	if err != nil {
		t.Fatalf("EncryptedBalance failed: %v", err)
	}
	got, err := engine.DecryptForTransfer(dstBal, auth)
	if err != nil {
		t.Fatalf("DecryptForTransfer failed: %v", err)
	}
	if got.Uint64() != amount {
		t.Fatalf("destination balance = %d, want %d", got.Uint64(), amount)
	}

	// Garbage proofs are rejected before any balance moves.
	if err := svc.TransferWithHiddenAmount(src, dst, hidden, cm, []byte("junk")); err == nil {
		t.Fatal("TransferWithHiddenAmount accepted a garbage proof")
	}
}

func TestCommitDeterministic(t *testing.T) {
	blinding := big.NewInt(424242)
	a := Commit(1000, blinding)
	b := Commit(1000, blinding)
	if a.Cmp(b) != 0 {
		t.Fatal("Commit is not deterministic")
	}
	if Commit(1001, blinding).Cmp(a) == 0 {
		t.Fatal("Commit collides across amounts")
	}
}
