// records.go - Store access helpers for account records.

package payroll

import (
	"encoding"
	"errors"
	"fmt"

	"payroll/internal/store"
)

func accountKey(a Address) []byte {
	key := make([]byte, 0, len(accountKeyPrefix)+AddressSize)
	key = append(key, accountKeyPrefix...)
	key = append(key, a[:]...)
	return key
}

func putRecord(txn store.Txn, addr Address, rec encoding.BinaryMarshaler) error {
	data, err := rec.MarshalBinary()
	if err != nil {
		return err
	}
	return txn.Set(accountKey(addr), data)
}

func getRecord(txn store.Txn, addr Address, rec encoding.BinaryUnmarshaler, kind string) error {
	data, err := txn.Get(accountKey(addr))
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, kind)
	}
	if err != nil {
		return err
	}
	return rec.UnmarshalBinary(data)
}

// loadVault reads the master vault record.
func loadVault(txn store.Txn) (*MasterVault, error) {
	vault := new(MasterVault)
	if err := getRecord(txn, VaultAddress(), vault, "master vault"); err != nil {
		return nil, err
	}
	return vault, nil
}

// loadBusiness reads the business entry with the given allocation index.
func loadBusiness(txn store.Txn, entryIndex uint64) (*BusinessEntry, Address, error) {
	addr := BusinessAddress(VaultAddress(), entryIndex)
	entry := new(BusinessEntry)
	if err := getRecord(txn, addr, entry, fmt.Sprintf("business entry %d", entryIndex)); err != nil {
		return nil, Address{}, err
	}
	return entry, addr, nil
}

// loadEmployee reads the employee entry with the given allocation index
// under a business entry.
func loadEmployee(txn store.Txn, business Address, employeeIndex uint64) (*EmployeeEntry, Address, error) {
	addr := EmployeeAddress(business, employeeIndex)
	entry := new(EmployeeEntry)
	if err := getRecord(txn, addr, entry, fmt.Sprintf("employee entry %d", employeeIndex)); err != nil {
		return nil, Address{}, err
	}
	return entry, addr, nil
}
