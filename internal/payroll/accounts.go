// accounts.go - Persistent account records and their binary codec.
//
// Each record serializes as an 8-byte discriminator followed by its fields
// in declared order: integers little-endian, ConfidentialValue fields as
// fixed 16-byte buffers, variable-length buffers prefixed with a 4-byte
// little-endian length.

package payroll

import (
	"crypto/sha256"
	"fmt"

	"payroll/internal/confidential"
)

// Account discriminators, anchor-style: the first 8 bytes of
// sha256("account:<Name>").
var (
	masterVaultDiscriminator   = discriminator("MasterVault")
	businessEntryDiscriminator = discriminator("BusinessEntry")
	employeeEntryDiscriminator = discriminator("EmployeeEntry")
)

func discriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

// MasterVault is the deployment's single fund pool and allocation root.
// TotalBalance is the only public aggregate; everything countable is held
// encrypted.
type MasterVault struct {
	Authority                []byte
	TotalBalance             uint64
	EncryptedBusinessCount   confidential.Value
	EncryptedEmployeeCount   confidential.Value
	NextBusinessIndex        uint64
	ConfidentialMint         []byte
	UseConfidentialTransfers bool
	IsActive                 bool
}

// BusinessEntry is one registered employer, addressed by
// (master_vault, entry_index).
type BusinessEntry struct {
	MasterVault            Address
	EntryIndex             uint64
	EncryptedEmployerID    confidential.Value
	EncryptedBalance       confidential.Value
	EncryptedEmployeeCount confidential.Value
	NextEmployeeIndex      uint64
	IsActive               bool
}

// EmployeeEntry is one employee, addressed by (business_entry,
// employee_index). LastAction anchors both accrual and the withdrawal
// cooldown.
type EmployeeEntry struct {
	BusinessEntry       Address
	EmployeeIndex       uint64
	EncryptedEmployeeID confidential.Value
	EncryptedSalary     confidential.Value
	EncryptedAccrued    confidential.Value
	LastAction          int64
	IsActive            bool
}

// MarshalBinary encodes the vault record.
func (v *MasterVault) MarshalBinary() ([]byte, error) {
	w := newRecordWriter(masterVaultDiscriminator)
	w.varBytes(v.Authority)
	w.u64(v.TotalBalance)
	w.value(v.EncryptedBusinessCount)
	w.value(v.EncryptedEmployeeCount)
	w.u64(v.NextBusinessIndex)
	w.varBytes(v.ConfidentialMint)
	w.boolean(v.UseConfidentialTransfers)
	w.boolean(v.IsActive)
	return w.finish()
}

// UnmarshalBinary decodes the vault record.
func (v *MasterVault) UnmarshalBinary(data []byte) error {
	r, err := newRecordReader(data, masterVaultDiscriminator)
	if err != nil {
		return err
	}
	v.Authority = r.varBytes()
	v.TotalBalance = r.u64()
	v.EncryptedBusinessCount = r.value()
	v.EncryptedEmployeeCount = r.value()
	v.NextBusinessIndex = r.u64()
	v.ConfidentialMint = r.varBytes()
	v.UseConfidentialTransfers = r.boolean()
	v.IsActive = r.boolean()
	return r.finish("MasterVault")
}

// MarshalBinary encodes the business record.
func (b *BusinessEntry) MarshalBinary() ([]byte, error) {
	w := newRecordWriter(businessEntryDiscriminator)
	w.address(b.MasterVault)
	w.u64(b.EntryIndex)
	w.value(b.EncryptedEmployerID)
	w.value(b.EncryptedBalance)
	w.value(b.EncryptedEmployeeCount)
	w.u64(b.NextEmployeeIndex)
	w.boolean(b.IsActive)
	return w.finish()
}

// UnmarshalBinary decodes the business record.
func (b *BusinessEntry) UnmarshalBinary(data []byte) error {
	r, err := newRecordReader(data, businessEntryDiscriminator)
	if err != nil {
		return err
	}
	b.MasterVault = r.address()
	b.EntryIndex = r.u64()
	b.EncryptedEmployerID = r.value()
	b.EncryptedBalance = r.value()
	b.EncryptedEmployeeCount = r.value()
	b.NextEmployeeIndex = r.u64()
	b.IsActive = r.boolean()
	return r.finish("BusinessEntry")
}

// MarshalBinary encodes the employee record.
func (e *EmployeeEntry) MarshalBinary() ([]byte, error) {
	w := newRecordWriter(employeeEntryDiscriminator)
	w.address(e.BusinessEntry)
	w.u64(e.EmployeeIndex)
	w.value(e.EncryptedEmployeeID)
	w.value(e.EncryptedSalary)
	w.value(e.EncryptedAccrued)
	w.i64(e.LastAction)
	w.boolean(e.IsActive)
	return w.finish()
}

// UnmarshalBinary decodes the employee record.
func (e *EmployeeEntry) UnmarshalBinary(data []byte) error {
	r, err := newRecordReader(data, employeeEntryDiscriminator)
	if err != nil {
		return err
	}
	e.BusinessEntry = r.address()
	e.EmployeeIndex = r.u64()
	e.EncryptedEmployeeID = r.value()
	e.EncryptedSalary = r.value()
	e.EncryptedAccrued = r.value()
	e.LastAction = r.i64()
	e.IsActive = r.boolean()
	return r.finish("EmployeeEntry")
}

func corrupt(kind, detail string) error {
	return fmt.Errorf("%w: %s: %s", ErrCorruptRecord, kind, detail)
}
