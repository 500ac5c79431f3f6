// withdraw.go - Withdrawal protocol and salary updates.
//
// Withdrawal is the only operation that opens a ciphertext, and only at
// the final transfer step, authorized by the vault's signing authority.
// Every precondition is checked before the first mutation.

package payroll

import (
	"fmt"

	"payroll/internal/confidential"
	"payroll/internal/transfer"
)

// RequestWithdrawal pays out part of an employee's accrued balance.
//
// The sequence follows the protocol exactly: resolve accounts, gate on
// activity and cooldown, fold pending accrual into the accrued balance,
// check sufficiency, then debit employee, business, and vault together and
// hand the value movement to the rails. A failure at any step leaves all
// balances unchanged.
//
// useExternalTransfer requests routing through the external private
// transfer service; the ledger records the flag in the emitted event and
// leaves proof handling to that service.
func (l *Ledger) RequestWithdrawal(businessIndex, employeeIndex uint64, recipient transfer.Account, amount Amount, useExternalTransfer bool) error {
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
	employee, employeeAddr, err := loadEmployee(txn, businessAddr, employeeIndex)
	if err != nil {
		return err
	}
	if !business.IsActive || !employee.IsActive {
		return ErrPayrollInactive
	}

	now := l.clock()
	elapsed, err := Elapsed(employee.LastAction, now)
	if err != nil {
		return err
	}
	if elapsed < uint64(l.cooldown) {
		return ErrWithdrawTooSoon
	}

	// Fold pending accrual into the accrued balance. The elapsed time is
	// public; the rate stays encrypted end to end.
	if elapsed > 0 {
		delta, err := l.engine.Scale(employee.EncryptedSalary, elapsed)
		if err != nil {
			return mapEngineErr(err)
		}
		employee.EncryptedAccrued, err = l.engine.Add(employee.EncryptedAccrued, delta)
		if err != nil {
			return mapEngineErr(err)
		}
	}

	var requested confidential.Value
	var publicAmount uint64
	switch a := amount.(type) {
	case PlainAmount:
		if a == 0 {
			return ErrInvalidAmount
		}
		if uint64(a) > vault.TotalBalance {
			return ErrInsufficientFunds
		}
		requested, err = l.encryptUint(uint64(a))
		if err != nil {
			return err
		}
		publicAmount = uint64(a)
	case EncryptedAmount:
		if !vault.UseConfidentialTransfers || l.confRails == nil {
			return ErrConfidentialDisabled
		}
		requested, err = a.handle()
		if err != nil {
			return err
		}
	default:
		return ErrInvalidAmount
	}

	covered, err := l.engine.LessOrEqual(requested, employee.EncryptedAccrued)
	if err != nil {
		return mapEngineErr(err)
	}
	if !covered {
		return ErrInsufficientAccrued
	}

	employee.EncryptedAccrued, err = l.engine.Sub(employee.EncryptedAccrued, requested)
	if err != nil {
		return mapEngineErr(err)
	}
	business.EncryptedBalance, err = l.engine.Sub(business.EncryptedBalance, requested)
	if err != nil {
		return mapEngineErr(err)
	}
	if publicAmount > 0 {
		vault.TotalBalance, err = checkedSub(vault.TotalBalance, publicAmount)
		if err != nil {
			return err
		}
	}
	employee.LastAction = now

	// Hand off the value movement, authorized by the vault's signing
	// authority. The decrypted transfer amount is never logged.
	switch amount.(type) {
	case PlainAmount:
		opened, err := l.engine.DecryptForTransfer(requested, l.auth)
		if err != nil {
			return mapEngineErr(err)
		}
		if err := l.rails.MoveValue(l.VaultAccount(), recipient, opened.Uint64()); err != nil {
			return fmt.Errorf("withdrawal transfer: %w", err)
		}
	case EncryptedAmount:
		if err := l.confRails.MoveEncrypted(l.VaultAccount(), recipient, requested); err != nil {
			return fmt.Errorf("confidential withdrawal transfer: %w", err)
		}
	}

	if err := putRecord(txn, employeeAddr, employee); err != nil {
		return err
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

	l.logger.Info().
		Uint64("business_index", businessIndex).
		Uint64("employee_index", employeeIndex).
		Bool("external_transfer", useExternalTransfer).
		Msg("withdrawal processed")
	l.emit(WithdrawalProcessed{
		BusinessIndex:    businessIndex,
		EmployeeIndex:    employeeIndex,
		Timestamp:        now,
		ExternalTransfer: useExternalTransfer,
	})
	return nil
}

// UpdateSalary replaces an employee's encrypted rate. Accrual at the old
// rate is folded in up to the current clock reading first, so the change
// never rewrites history.
func (l *Ledger) UpdateSalary(businessIndex, employeeIndex uint64, encryptedSalary []byte) error {
	salary, err := confidential.ValueFromBytes(encryptedSalary)
	if err != nil {
		return fmt.Errorf("%w: salary", ErrInvalidCiphertext)
	}

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
	employee, employeeAddr, err := loadEmployee(txn, businessAddr, employeeIndex)
	if err != nil {
		return err
	}
	if !business.IsActive || !employee.IsActive {
		return ErrPayrollInactive
	}

	now := l.clock()
	elapsed, err := Elapsed(employee.LastAction, now)
	if err != nil {
		return err
	}
	if elapsed > 0 {
		delta, err := l.engine.Scale(employee.EncryptedSalary, elapsed)
		if err != nil {
			return mapEngineErr(err)
		}
		employee.EncryptedAccrued, err = l.engine.Add(employee.EncryptedAccrued, delta)
		if err != nil {
			return mapEngineErr(err)
		}
	}

	employee.EncryptedSalary = salary
	employee.LastAction = now

	if err := putRecord(txn, employeeAddr, employee); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return err
	}

	l.logger.Info().
		Uint64("business_index", businessIndex).
		Uint64("employee_index", employeeIndex).
		Msg("salary updated")
	l.emit(SalaryUpdated{BusinessIndex: businessIndex, EmployeeIndex: employeeIndex, Timestamp: now})
	return nil
}
