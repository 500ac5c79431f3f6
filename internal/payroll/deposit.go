// deposit.go - Deposit protocol.
//
// A deposit credits one business entry and, on the public path, the
// vault's public aggregate. Either both balances update or neither does.

package payroll

import (
	"fmt"

	"payroll/internal/transfer"
)

// Deposit moves value from the depositor's rail account into the vault and
// credits the business's encrypted balance.
//
// With a PlainAmount the value moves on public rails and the vault's
// public aggregate grows by the same amount. With an EncryptedAmount the
// value moves on confidential rails; the public aggregate tracks only
// publicly visible funds and is left unchanged.
func (l *Ledger) Deposit(businessIndex uint64, depositor transfer.Account, amount Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	txn, err := l.store.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Discard()

	vault, err := loadVault(txn)
	if err != nil {
		return err
	}
	if !vault.IsActive {
		return ErrVaultPaused
	}
	business, businessAddr, err := loadBusiness(txn, businessIndex)
	if err != nil {
		return err
	}
	if !business.IsActive {
		return ErrPayrollInactive
	}

	switch a := amount.(type) {
	case PlainAmount:
		if a == 0 {
			return ErrInvalidAmount
		}
		vault.TotalBalance, err = checkedAdd(vault.TotalBalance, uint64(a))
		if err != nil {
			return err
		}
		deposited, err := l.encryptUint(uint64(a))
		if err != nil {
			return err
		}
		business.EncryptedBalance, err = l.engine.Add(business.EncryptedBalance, deposited)
		if err != nil {
			return mapEngineErr(err)
		}
		if err := l.rails.MoveValue(depositor, l.VaultAccount(), uint64(a)); err != nil {
			return fmt.Errorf("deposit transfer: %w", err)
		}

	case EncryptedAmount:
		if !vault.UseConfidentialTransfers || l.confRails == nil {
			return ErrConfidentialDisabled
		}
		deposited, err := a.handle()
		if err != nil {
			return err
		}
		business.EncryptedBalance, err = l.engine.Add(business.EncryptedBalance, deposited)
		if err != nil {
			return mapEngineErr(err)
		}
		if err := l.confRails.MoveEncrypted(depositor, l.VaultAccount(), deposited); err != nil {
			return fmt.Errorf("confidential deposit transfer: %w", err)
		}

	default:
		return ErrInvalidAmount
	}

	if err := putRecord(txn, businessAddr, business); err != nil {
		return err
	}
	if err := putRecord(txn, VaultAddress(), vault); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return err
	}

	now := l.clock()
	l.logger.Info().Uint64("entry_index", businessIndex).Msg("deposit received")
	l.emit(FundsDeposited{EntryIndex: businessIndex, Timestamp: now})
	return nil
}
