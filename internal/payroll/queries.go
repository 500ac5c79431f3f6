// queries.go - Read-only account lookups.

package payroll

// Vault returns the master vault record.
func (l *Ledger) Vault() (*MasterVault, error) {
	txn, err := l.store.Begin(false)
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	return loadVault(txn)
}

// Business returns the business entry with the given allocation index.
func (l *Ledger) Business(entryIndex uint64) (*BusinessEntry, error) {
	txn, err := l.store.Begin(false)
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	entry, _, err := loadBusiness(txn, entryIndex)
	return entry, err
}

// Employee returns the employee entry with the given allocation indices.
func (l *Ledger) Employee(businessIndex, employeeIndex uint64) (*EmployeeEntry, error) {
	txn, err := l.store.Begin(false)
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	_, businessAddr, err := loadBusiness(txn, businessIndex)
	if err != nil {
		return nil, err
	}
	entry, _, err := loadEmployee(txn, businessAddr, employeeIndex)
	return entry, err
}
