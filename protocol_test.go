package main

import (
	"math/big"
	"testing"

	"github.com/rs/zerolog"

	"payroll/internal/confidential"
	"payroll/internal/payroll"
	"payroll/internal/store"
	"payroll/internal/transfer"
	"payroll/internal/transfer/private"
)

// =============================================================================
// END-TO-END PROTOCOL TESTS
//
// These exercise the full stack the way the demo scenario does: memory
// store, in-process compute service, public and confidential rails.
// =============================================================================

type protocolEnv struct {
	ledger    *payroll.Ledger
	engine    *confidential.ServiceEngine
	rails     *transfer.Book
	confRails *transfer.ConfidentialBook
	auth      confidential.Authorization
	authority []byte
	now       *int64
}

func newProtocolEnv(t *testing.T) *protocolEnv {
	t.Helper()
	now := int64(1_700_000_000)
	env := &protocolEnv{
		auth:      confidential.Authorization("protocol-test-signing"),
		authority: []byte("protocol-test-authority"),
		now:       &now,
	}
	env.engine = confidential.NewServiceEngine(env.auth)
	env.rails = transfer.NewBook()
	env.confRails = transfer.NewConfidentialBook(env.engine)
	env.ledger = payroll.New(payroll.Config{
		Store:         store.NewMemory(),
		Engine:        env.engine,
		Rails:         env.rails,
		Confidential:  env.confRails,
		Clock:         func() int64 { return *env.now },
		Logger:        zerolog.Nop(),
		Authorization: env.auth,
	})
	return env
}

func (env *protocolEnv) encrypt(t *testing.T, x uint64) confidential.Value {
	t.Helper()
	v, err := env.engine.Encrypt(new(big.Int).SetUint64(x))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	return v
}

func (env *protocolEnv) identity(t *testing.T, who string) []byte {
	t.Helper()
	v, err := env.engine.Encrypt(confidential.HashIdentity([]byte(who)))
	if err != nil {
		t.Fatalf("Encrypt identity failed: %v", err)
	}
	return v.Bytes()
}

func TestFullPayrollLifecycle(t *testing.T) {
	env := newProtocolEnv(t)
	var depositor, recipient transfer.Account
	depositor[0], recipient[0] = 0xD1, 0xA1

	if err := env.ledger.InitializeVault(env.authority); err != nil {
		t.Fatalf("InitializeVault failed: %v", err)
	}

	businessIdx, err := env.ledger.RegisterBusiness(env.identity(t, "employer"))
	if err != nil {
		t.Fatalf("RegisterBusiness failed: %v", err)
	}
	salary := env.encrypt(t, 1_000)
	employeeIdx, err := env.ledger.AddEmployee(businessIdx, env.identity(t, "employee"), salary.Bytes())
	if err != nil {
		t.Fatalf("AddEmployee failed: %v", err)
	}

	if err := env.rails.Credit(depositor, 10_000_000); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if err := env.ledger.Deposit(businessIdx, depositor, payroll.PlainAmount(1_000_000)); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	vault, err := env.ledger.Vault()
	if err != nil {
		t.Fatalf("Vault failed: %v", err)
	}
	if vault.TotalBalance != 1_000_000 {
		t.Fatalf("vault balance = %d, want 1000000", vault.TotalBalance)
	}

	t.Run("cooldown gates the first withdrawal", func(t *testing.T) {
		err := env.ledger.RequestWithdrawal(businessIdx, employeeIdx, recipient, payroll.PlainAmount(1), false)
		if err == nil {
			t.Fatal("withdrawal inside the cooldown window succeeded")
		}
	})

	*env.now += 60

	t.Run("accrued salary pays out on the public path", func(t *testing.T) {
		if err := env.ledger.RequestWithdrawal(businessIdx, employeeIdx, recipient, payroll.PlainAmount(60_000), false); err != nil {
			t.Fatalf("RequestWithdrawal failed: %v", err)
		}
		if got := env.rails.Balance(recipient); got != 60_000 {
			t.Fatalf("recipient balance = %d, want 60000", got)
		}
		vault, err := env.ledger.Vault()
		if err != nil {
			t.Fatalf("Vault failed: %v", err)
		}
		if vault.TotalBalance != 940_000 {
			t.Fatalf("vault balance = %d, want 940000", vault.TotalBalance)
		}
	})

	t.Run("over-withdrawal is rejected without side effects", func(t *testing.T) {
		*env.now += 60
		// 60s at rate 1000 accrues 60000; asking for one more must fail.
		err := env.ledger.RequestWithdrawal(businessIdx, employeeIdx, recipient, payroll.PlainAmount(60_001), false)
		if err == nil {
			t.Fatal("over-withdrawal succeeded")
		}
		if got := env.rails.Balance(recipient); got != 60_000 {
			t.Fatalf("recipient balance moved on failed withdrawal: %d", got)
		}
		// The accrued balance is intact: the exact amount still clears.
		if err := env.ledger.RequestWithdrawal(businessIdx, employeeIdx, recipient, payroll.PlainAmount(60_000), false); err != nil {
			t.Fatalf("exact withdrawal after failed attempt: %v", err)
		}
	})

	t.Run("salary update folds accrual at the old rate", func(t *testing.T) {
		*env.now += 30
		newSalary := env.encrypt(t, 5_000)
		if err := env.ledger.UpdateSalary(businessIdx, employeeIdx, newSalary.Bytes()); err != nil {
			t.Fatalf("UpdateSalary failed: %v", err)
		}
		*env.now += 60
		// 30s at 1000 plus 60s at 5000 = 330000.
		if err := env.ledger.RequestWithdrawal(businessIdx, employeeIdx, recipient, payroll.PlainAmount(330_000), false); err != nil {
			t.Fatalf("withdrawal after salary update failed: %v", err)
		}
	})
}

func TestConfidentialTransferPath(t *testing.T) {
	env := newProtocolEnv(t)
	var depositor, recipient transfer.Account
	depositor[0], recipient[0] = 0xD2, 0xA2

	if err := env.ledger.InitializeVault(env.authority); err != nil {
		t.Fatalf("InitializeVault failed: %v", err)
	}
	businessIdx, err := env.ledger.RegisterBusiness(env.identity(t, "employer"))
	if err != nil {
		t.Fatalf("RegisterBusiness failed: %v", err)
	}
	salary := env.encrypt(t, 1_000)
	employeeIdx, err := env.ledger.AddEmployee(businessIdx, env.identity(t, "employee"), salary.Bytes())
	if err != nil {
		t.Fatalf("AddEmployee failed: %v", err)
	}

	// Encrypted amounts are rejected until the mint is configured.
	funding := env.encrypt(t, 500_000)
	if err := env.confRails.CreditEncrypted(depositor, funding); err != nil {
		t.Fatalf("CreditEncrypted failed: %v", err)
	}
	if err := env.ledger.Deposit(businessIdx, depositor, payroll.EncryptedAmount(funding.Bytes())); err == nil {
		t.Fatal("encrypted deposit succeeded with confidential transfers disabled")
	}

	if err := env.ledger.ConfigureConfidentialMint(env.authority, []byte{0xCC}, true); err != nil {
		t.Fatalf("ConfigureConfidentialMint failed: %v", err)
	}
	if err := env.ledger.Deposit(businessIdx, depositor, payroll.EncryptedAmount(funding.Bytes())); err != nil {
		t.Fatalf("encrypted deposit failed: %v", err)
	}

	// Confidential movement leaves the public aggregate untouched.
	vault, err := env.ledger.Vault()
	if err != nil {
		t.Fatalf("Vault failed: %v", err)
	}
	if vault.TotalBalance != 0 {
		t.Fatalf("public balance changed on confidential deposit: %d", vault.TotalBalance)
	}

	*env.now += 60
	amount := env.encrypt(t, 30_000)
	if err := env.ledger.RequestWithdrawal(businessIdx, employeeIdx, recipient, payroll.EncryptedAmount(amount.Bytes()), false); err != nil {
		t.Fatalf("confidential withdrawal failed: %v", err)
	}

	got, err := env.confRails.EncryptedBalance(recipient)
	if err != nil {
		t.Fatalf("EncryptedBalance failed: %v", err)
	}
	opened, err := env.engine.DecryptForTransfer(got, env.auth)
	if err != nil {
		t.Fatalf("DecryptForTransfer failed: %v", err)
	}
	if opened.Uint64() != 30_000 {
		t.Fatalf("recipient confidential balance = %d, want 30000", opened.Uint64())
	}
}

func TestHiddenAmountTransferIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Groth16 setup in short mode")
	}
	env := newProtocolEnv(t)
	var src, dst transfer.Account
	src[0], dst[0] = 0xE1, 0xE2

	ccs, pk, vk, err := private.Setup()
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	const amount = uint64(10_000)
	funding := env.encrypt(t, amount)
	if err := env.confRails.CreditEncrypted(src, funding); err != nil {
		t.Fatalf("CreditEncrypted failed: %v", err)
	}

	blinding, err := private.RandomBlinding()
	if err != nil {
		t.Fatalf("RandomBlinding failed: %v", err)
	}
	commitment, proof, err := private.Prove(amount, blinding, ccs, pk)
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}

	svc := private.NewService(vk, env.confRails)
	hidden := env.encrypt(t, amount)
	if err := svc.TransferWithHiddenAmount(src, dst, hidden, commitment, proof); err != nil {
		t.Fatalf("TransferWithHiddenAmount failed: %v", err)
	}

	balance, err := env.confRails.EncryptedBalance(dst)
	if err != nil {
		t.Fatalf("EncryptedBalance failed: %v", err)
	}
	opened, err := env.engine.DecryptForTransfer(balance, env.auth)
	if err != nil {
		t.Fatalf("DecryptForTransfer failed: %v", err)
	}
	if opened.Uint64() != amount {
		t.Fatalf("destination balance = %d, want %d", opened.Uint64(), amount)
	}
}
