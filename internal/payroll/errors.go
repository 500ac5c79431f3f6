// errors.go - Error taxonomy for the payroll ledger.
//
// Every precondition failure maps to exactly one of these sentinels. Error
// text identifies the violated invariant but never includes a decrypted
// value; callers classify with errors.Is.

package payroll

import "errors"

var (
	// ErrNotFound indicates a missing vault, business, or employee record.
	ErrNotFound = errors.New("account not found")

	// ErrUnauthorized indicates the caller lacks the required relationship
	// to the account being mutated.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyInitialized indicates a second attempt to create the vault.
	ErrAlreadyInitialized = errors.New("vault already initialized")

	// ErrVaultPaused indicates the vault is paused for maintenance.
	ErrVaultPaused = errors.New("vault is paused")

	// ErrPayrollInactive indicates a withdrawal against a deactivated
	// employee or business entry.
	ErrPayrollInactive = errors.New("payroll inactive")

	// ErrWithdrawTooSoon indicates the withdrawal cooldown has not elapsed.
	ErrWithdrawTooSoon = errors.New("withdraw too soon")

	// ErrInsufficientAccrued indicates a withdrawal exceeding the accrued
	// balance.
	ErrInsufficientAccrued = errors.New("insufficient accrued balance")

	// ErrInsufficientFunds indicates a withdrawal exceeding the vault's
	// liquid balance.
	ErrInsufficientFunds = errors.New("insufficient vault funds")

	// ErrArithmeticOverflow indicates checked arithmetic that would wrap.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	// ErrArithmeticUnderflow indicates checked arithmetic below zero.
	ErrArithmeticUnderflow = errors.New("arithmetic underflow")

	// ErrInvalidTimeOrdering indicates a clock reading before the account's
	// last recorded action.
	ErrInvalidTimeOrdering = errors.New("invalid time ordering")

	// ErrIndexOverflow indicates an index counter at its numeric limit.
	ErrIndexOverflow = errors.New("index counter overflow")

	// ErrInvalidCiphertext indicates a ciphertext payload of the wrong
	// length.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")

	// ErrInvalidAmount indicates a zero or malformed amount payload.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrConfidentialDisabled indicates an encrypted amount was supplied
	// while the vault has confidential transfers disabled.
	ErrConfidentialDisabled = errors.New("confidential transfers disabled")

	// ErrVaultNotEmpty indicates an attempt to close the vault while it
	// still holds funds.
	ErrVaultNotEmpty = errors.New("vault balance not zero")

	// ErrBusinessNotEmpty indicates an attempt to close a business whose
	// encrypted balance is not provably zero.
	ErrBusinessNotEmpty = errors.New("business balance not zero")

	// ErrCorruptRecord indicates a stored record that fails to decode.
	ErrCorruptRecord = errors.New("corrupt account record")
)
