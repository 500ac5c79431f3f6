// Package payroll implements the confidential payroll ledger state machine.
//
// Overview:
//   - Three account kinds: a single MasterVault, one BusinessEntry per
//     registered employer, one EmployeeEntry per employee. Numeric state
//     that would identify or quantify anyone is held as opaque ciphertext
//     handles (see internal/confidential); only the vault's aggregate
//     balance and the allocation indices are public.
//   - Accounts are addressed by (parent, index) pairs through hash-derived
//     addresses. No address ever derives from an identity, so the account
//     graph reveals nothing about who pays whom.
//   - The Ledger type exposes the operations: InitializeVault,
//     RegisterBusiness, AddEmployee, Deposit, RequestWithdrawal, plus the
//     administrative operations (salary update, pause, mint configuration,
//     close). Every operation validates all preconditions before the first
//     mutation and commits through a single store transaction, so a failed
//     operation leaves no partial state.
//
// Privacy model:
//   - Events and log lines carry indices, flags, and timestamps. Never
//     amounts, salaries, or identities.
//   - Employer/employee identities are MiMC-hashed before encryption; even
//     an authorized decrypt yields only the hash.
//
// See internal/store for the transactional account store and
// internal/transfer for the value-movement rails.
package payroll
