// address.go - Index-based account addressing and index allocation.
//
// Addresses are derived from a constant seed, the parent address, and the
// child's allocation index. Identities never enter the derivation, so an
// observer of the address graph learns nothing about who owns an entry.

package payroll

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// Derivation seeds, one per account kind.
const (
	masterVaultSeed   = "master_vault"
	businessEntrySeed = "entry"
	employeeEntrySeed = "employee"
)

// AddressSize is the width of a derived account address in bytes.
const AddressSize = 32

// Address identifies an account record in the store.
type Address [AddressSize]byte

// String renders the address as hex.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// deriveAddress hashes the seed with the given components.
func deriveAddress(seed string, components ...[]byte) Address {
	h := sha256.New()
	h.Write([]byte(seed))
	for _, c := range components {
		h.Write(c)
	}
	var a Address
	copy(a[:], h.Sum(nil))
	return a
}

// VaultAddress returns the address of the deployment's single MasterVault.
func VaultAddress() Address {
	return deriveAddress(masterVaultSeed)
}

// BusinessAddress returns the address of the BusinessEntry with the given
// allocation index under the vault.
func BusinessAddress(vault Address, entryIndex uint64) Address {
	var idx [8]byte
	binary.LittleEndian.PutUint64(idx[:], entryIndex)
	return deriveAddress(businessEntrySeed, vault[:], idx[:])
}

// EmployeeAddress returns the address of the EmployeeEntry with the given
// allocation index under a business entry.
func EmployeeAddress(business Address, employeeIndex uint64) Address {
	var idx [8]byte
	binary.LittleEndian.PutUint64(idx[:], employeeIndex)
	return deriveAddress(employeeEntrySeed, business[:], idx[:])
}

// AllocateIndex assigns the next index from a monotonic counter and
// advances it. Must be called inside the same transaction that creates the
// child record, so assignment and creation cannot diverge. Fails with
// ErrIndexOverflow at the numeric limit.
func AllocateIndex(counter *uint64) (uint64, error) {
	if *counter == math.MaxUint64 {
		return 0, ErrIndexOverflow
	}
	assigned := *counter
	*counter++
	return assigned, nil
}
