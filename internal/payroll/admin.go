// admin.go - Authority-gated vault administration.

package payroll

import "bytes"

// requireAuthority checks the caller against the vault authority.
func requireAuthority(vault *MasterVault, caller []byte) error {
	if !bytes.Equal(vault.Authority, caller) {
		return ErrUnauthorized
	}
	return nil
}

// ConfigureConfidentialMint sets the vault's confidential token mint and
// toggles confidential transfer mode. Authority only.
func (l *Ledger) ConfigureConfidentialMint(caller, mint []byte, enable bool) error {
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
	if err := requireAuthority(vault, caller); err != nil {
		return err
	}

	vault.ConfidentialMint = append([]byte(nil), mint...)
	vault.UseConfidentialTransfers = enable

	if err := putRecord(txn, VaultAddress(), vault); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return err
	}

	now := l.clock()
	l.logger.Info().Bool("enabled", enable).Msg("confidential mint configured")
	l.emit(ConfidentialMintConfigured{Enabled: enable, Timestamp: now})
	return nil
}

// SetVaultActive pauses or resumes the vault. While paused, every
// value-moving operation fails with ErrVaultPaused. Authority only.
func (l *Ledger) SetVaultActive(caller []byte, active bool) error {
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
	if err := requireAuthority(vault, caller); err != nil {
		return err
	}
	vault.IsActive = active
	if err := putRecord(txn, VaultAddress(), vault); err != nil {
		return err
	}
	return txn.Commit()
}

// SetEmployeeActive toggles withdrawal eligibility for an employee.
// Deactivation folds pending accrual in first and preserves the accrued
// balance for a later reactivation; reactivation restarts the accrual
// clock at now, so inactive time never accrues. Authority only.
func (l *Ledger) SetEmployeeActive(caller []byte, businessIndex, employeeIndex uint64, active bool) error {
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
	if err := requireAuthority(vault, caller); err != nil {
		return err
	}
	_, businessAddr, err := loadBusiness(txn, businessIndex)
	if err != nil {
		return err
	}
	employee, employeeAddr, err := loadEmployee(txn, businessAddr, employeeIndex)
	if err != nil {
		return err
	}

	now := l.clock()
	if employee.IsActive && !active {
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
	}
	employee.IsActive = active
	employee.LastAction = now

	if err := putRecord(txn, employeeAddr, employee); err != nil {
		return err
	}
	return txn.Commit()
}

// CloseBusiness deactivates a business entry once its encrypted balance is
// provably zero. The record and its index survive; indices are never
// reused. Authority only.
func (l *Ledger) CloseBusiness(caller []byte, businessIndex uint64) error {
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
	if err := requireAuthority(vault, caller); err != nil {
		return err
	}
	business, businessAddr, err := loadBusiness(txn, businessIndex)
	if err != nil {
		return err
	}

	zero, err := l.encryptZero()
	if err != nil {
		return err
	}
	empty, err := l.engine.LessOrEqual(business.EncryptedBalance, zero)
	if err != nil {
		return mapEngineErr(err)
	}
	if !empty {
		return ErrBusinessNotEmpty
	}

	business.IsActive = false
	if err := putRecord(txn, businessAddr, business); err != nil {
		return err
	}
	return txn.Commit()
}

// CloseVault removes the vault record. Only permitted while the public
// aggregate is zero. Authority only.
func (l *Ledger) CloseVault(caller []byte) error {
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
	if err := requireAuthority(vault, caller); err != nil {
		return err
	}
	if vault.TotalBalance != 0 {
		return ErrVaultNotEmpty
	}

	if err := txn.Delete(accountKey(VaultAddress())); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return err
	}
	l.logger.Info().Msg("master vault closed")
	return nil
}
