// main.go - End-to-end demonstration of the confidential payroll protocol.
//
// Runs the full lifecycle against in-memory infrastructure: vault setup,
// business registration, employee onboarding, funding, accrual, and a
// withdrawal on both the public and confidential paths, finishing with a
// hidden-amount transfer proof. Ciphertext handles are printed as opaque
// hex; no plaintext salary or balance ever appears in the output.

package main

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/rs/zerolog"

	"payroll/internal/confidential"
	"payroll/internal/payroll"
	"payroll/internal/store"
	"payroll/internal/transfer"
	"payroll/internal/transfer/private"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "scenario failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(zerolog.InfoLevel).
		With().Timestamp().Logger()

	// Simulated clock so the cooldown window can be crossed instantly.
	now := int64(1_700_000_000)
	clock := func() int64 { return now }

	auth := confidential.Authorization("demo-vault-signing-authority")
	engine := confidential.NewServiceEngine(auth)
	rails := transfer.NewBook()
	confRails := transfer.NewConfidentialBook(engine)

	ledger := payroll.New(payroll.Config{
		Store:         store.NewMemory(),
		Engine:        engine,
		Rails:         rails,
		Confidential:  confRails,
		Clock:         clock,
		Logger:        logger,
		Authorization: auth,
	})

	authority := []byte("demo-authority")

	// ------------------------------------------------------------------
	// 1. Vault setup and registration
	// ------------------------------------------------------------------
	fmt.Println("=== Vault setup ===")
	if err := ledger.InitializeVault(authority); err != nil {
		return err
	}

	employerID, err := engine.Encrypt(confidential.HashIdentity([]byte("acme-corp-pubkey")))
	if err != nil {
		return err
	}
	businessIdx, err := ledger.RegisterBusiness(employerID.Bytes())
	if err != nil {
		return err
	}
	fmt.Printf("business registered at index %d\n", businessIdx)

	employeeID, err := engine.Encrypt(confidential.HashIdentity([]byte("alice-pubkey")))
	if err != nil {
		return err
	}
	salary, err := engine.Encrypt(big.NewInt(1_000)) // base units per second
	if err != nil {
		return err
	}
	employeeIdx, err := ledger.AddEmployee(businessIdx, employeeID.Bytes(), salary.Bytes())
	if err != nil {
		return err
	}
	fmt.Printf("employee added at index %d (salary handle %s)\n",
		employeeIdx, hex.EncodeToString(salary.Bytes()))

	// ------------------------------------------------------------------
	// 2. Funding on the public path
	// ------------------------------------------------------------------
	fmt.Println("\n=== Funding ===")
	var depositor, recipient transfer.Account
	depositor[0], recipient[0] = 0xD1, 0xA1

	if err := rails.Credit(depositor, 10_000_000); err != nil {
		return err
	}
	if err := ledger.Deposit(businessIdx, depositor, payroll.PlainAmount(1_000_000)); err != nil {
		return err
	}
	vault, err := ledger.Vault()
	if err != nil {
		return err
	}
	fmt.Printf("vault public balance after deposit: %d\n", vault.TotalBalance)

	// ------------------------------------------------------------------
	// 3. Accrual and public withdrawal
	// ------------------------------------------------------------------
	fmt.Println("\n=== Withdrawal (public path) ===")
	err = ledger.RequestWithdrawal(businessIdx, employeeIdx, recipient, payroll.PlainAmount(1), false)
	fmt.Printf("immediate withdrawal rejected: %v\n", err)

	now += 60 // cross the cooldown; 60s of accrual at the encrypted rate
	if err := ledger.RequestWithdrawal(businessIdx, employeeIdx, recipient, payroll.PlainAmount(60_000), false); err != nil {
		return err
	}
	fmt.Printf("recipient rail balance: %d\n", rails.Balance(recipient))

	// ------------------------------------------------------------------
	// 4. Confidential path
	// ------------------------------------------------------------------
	fmt.Println("\n=== Confidential path ===")
	if err := ledger.ConfigureConfidentialMint(authority, []byte{0xCC}, true); err != nil {
		return err
	}
	confDeposit, err := engine.Encrypt(big.NewInt(500_000))
	if err != nil {
		return err
	}
	if err := confRails.CreditEncrypted(depositor, confDeposit); err != nil {
		return err
	}
	if err := ledger.Deposit(businessIdx, depositor, payroll.EncryptedAmount(confDeposit.Bytes())); err != nil {
		return err
	}
	vault, err = ledger.Vault()
	if err != nil {
		return err
	}
	fmt.Printf("vault public balance after confidential deposit (unchanged): %d\n", vault.TotalBalance)

	now += 60
	confAmount, err := engine.Encrypt(big.NewInt(30_000))
	if err != nil {
		return err
	}
	if err := ledger.RequestWithdrawal(businessIdx, employeeIdx, recipient, payroll.EncryptedAmount(confAmount.Bytes()), false); err != nil {
		return err
	}
	confBal, err := confRails.EncryptedBalance(recipient)
	if err != nil {
		return err
	}
	fmt.Printf("recipient confidential balance handle: %s\n", hex.EncodeToString(confBal.Bytes()))

	// ------------------------------------------------------------------
	// 5. Hidden-amount transfer with a Groth16 proof
	// ------------------------------------------------------------------
	fmt.Println("\n=== Hidden-amount transfer ===")
	fmt.Println("compiling circuit and running Groth16 setup (takes a moment)...")
	start := time.Now()
	ccs, pk, vk, err := private.Setup()
	if err != nil {
		return err
	}
	fmt.Printf("setup done in %s (%d constraints)\n", time.Since(start).Round(time.Millisecond), ccs.GetNbConstraints())

	blinding, err := private.RandomBlinding()
	if err != nil {
		return err
	}
	const hidden = uint64(10_000)
	commitment, proof, err := private.Prove(hidden, blinding, ccs, pk)
	if err != nil {
		return err
	}

	svc := private.NewService(vk, confRails)
	hiddenCt, err := engine.Encrypt(new(big.Int).SetUint64(hidden))
	if err != nil {
		return err
	}
	if err := svc.TransferWithHiddenAmount(recipient, depositor, hiddenCt, commitment, proof); err != nil {
		return err
	}
	fmt.Printf("hidden transfer verified and applied (commitment %s...)\n",
		commitment.Text(16)[:16])

	fmt.Println("\nscenario complete")
	return nil
}
