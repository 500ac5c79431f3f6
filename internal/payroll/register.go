// register.go - Business registration and employee creation.
//
// Both operations allocate an index from the parent's counter inside the
// same transaction that creates the child record, so assignment and
// creation cannot diverge.

package payroll

import (
	"fmt"

	"payroll/internal/confidential"
)

// RegisterBusiness creates a BusinessEntry addressed by the next free
// entry index. The payload is the employer's encrypted identity hash; the
// plaintext identity never reaches the ledger. Returns the assigned index.
func (l *Ledger) RegisterBusiness(encryptedEmployerID []byte) (uint64, error) {
	employerID, err := confidential.ValueFromBytes(encryptedEmployerID)
	if err != nil {
		return 0, fmt.Errorf("%w: employer id", ErrInvalidCiphertext)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	txn, err := l.store.Begin(true)
	if err != nil {
		return 0, err
	}
	defer txn.Discard()

	vault, err := loadVault(txn)
	if err != nil {
		return 0, err
	}
	if !vault.IsActive {
		return 0, ErrVaultPaused
	}

	entryIndex, err := AllocateIndex(&vault.NextBusinessIndex)
	if err != nil {
		return 0, err
	}

	balance, err := l.encryptZero()
	if err != nil {
		return 0, err
	}
	employeeCount, err := l.encryptZero()
	if err != nil {
		return 0, err
	}
	vault.EncryptedBusinessCount, err = l.incrementCount(vault.EncryptedBusinessCount)
	if err != nil {
		return 0, err
	}

	entry := &BusinessEntry{
		MasterVault:            VaultAddress(),
		EntryIndex:             entryIndex,
		EncryptedEmployerID:    employerID,
		EncryptedBalance:       balance,
		EncryptedEmployeeCount: employeeCount,
		IsActive:               true,
	}
	if err := putRecord(txn, BusinessAddress(VaultAddress(), entryIndex), entry); err != nil {
		return 0, err
	}
	if err := putRecord(txn, VaultAddress(), vault); err != nil {
		return 0, err
	}
	if err := txn.Commit(); err != nil {
		return 0, err
	}

	now := l.clock()
	l.logger.Info().Uint64("entry_index", entryIndex).Msg("business registered")
	l.emit(BusinessRegistered{EntryIndex: entryIndex, Timestamp: now})
	return entryIndex, nil
}

// AddEmployee creates an EmployeeEntry under a business, addressed by the
// business's next free employee index. Identity and salary arrive as
// ciphertext; accrual starts at the current clock reading. Returns the
// assigned index.
func (l *Ledger) AddEmployee(businessIndex uint64, encryptedEmployeeID, encryptedSalary []byte) (uint64, error) {
	employeeID, err := confidential.ValueFromBytes(encryptedEmployeeID)
	if err != nil {
		return 0, fmt.Errorf("%w: employee id", ErrInvalidCiphertext)
	}
	salary, err := confidential.ValueFromBytes(encryptedSalary)
	if err != nil {
		return 0, fmt.Errorf("%w: salary", ErrInvalidCiphertext)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	txn, err := l.store.Begin(true)
	if err != nil {
		return 0, err
	}
	defer txn.Discard()

	vault, err := loadVault(txn)
	if err != nil {
		return 0, err
	}
	if !vault.IsActive {
		return 0, ErrVaultPaused
	}
	business, businessAddr, err := loadBusiness(txn, businessIndex)
	if err != nil {
		return 0, err
	}
	if !business.IsActive {
		return 0, ErrPayrollInactive
	}

	employeeIndex, err := AllocateIndex(&business.NextEmployeeIndex)
	if err != nil {
		return 0, err
	}

	accrued, err := l.encryptZero()
	if err != nil {
		return 0, err
	}
	business.EncryptedEmployeeCount, err = l.incrementCount(business.EncryptedEmployeeCount)
	if err != nil {
		return 0, err
	}
	vault.EncryptedEmployeeCount, err = l.incrementCount(vault.EncryptedEmployeeCount)
	if err != nil {
		return 0, err
	}

	now := l.clock()
	entry := &EmployeeEntry{
		BusinessEntry:       businessAddr,
		EmployeeIndex:       employeeIndex,
		EncryptedEmployeeID: employeeID,
		EncryptedSalary:     salary,
		EncryptedAccrued:    accrued,
		LastAction:          now,
		IsActive:            true,
	}
	if err := putRecord(txn, EmployeeAddress(businessAddr, employeeIndex), entry); err != nil {
		return 0, err
	}
	if err := putRecord(txn, businessAddr, business); err != nil {
		return 0, err
	}
	if err := putRecord(txn, VaultAddress(), vault); err != nil {
		return 0, err
	}
	if err := txn.Commit(); err != nil {
		return 0, err
	}

	l.logger.Info().
		Uint64("business_index", businessIndex).
		Uint64("employee_index", employeeIndex).
		Msg("employee added")
	l.emit(EmployeeAdded{BusinessIndex: businessIndex, EmployeeIndex: employeeIndex, Timestamp: now})
	return employeeIndex, nil
}
