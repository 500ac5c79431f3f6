// events.go - Ledger events.
//
// Event payloads carry indices, flags, and timestamps only. Amounts and
// identities are never emitted, mirroring what the accounts themselves
// expose publicly.

package payroll

// Event is implemented by every ledger event.
type Event interface {
	EventName() string
}

// EventSink receives events as operations commit. A nil sink is valid.
type EventSink func(Event)

// VaultInitialized is emitted once, when the master vault is created.
type VaultInitialized struct {
	Timestamp int64 `json:"timestamp"`
}

func (VaultInitialized) EventName() string { return "vault_initialized" }

// BusinessRegistered is emitted when a business entry is created.
type BusinessRegistered struct {
	EntryIndex uint64 `json:"entry_index"`
	Timestamp  int64  `json:"timestamp"`
}

func (BusinessRegistered) EventName() string { return "business_registered" }

// EmployeeAdded is emitted when an employee entry is created.
type EmployeeAdded struct {
	BusinessIndex uint64 `json:"business_index"`
	EmployeeIndex uint64 `json:"employee_index"`
	Timestamp     int64  `json:"timestamp"`
}

func (EmployeeAdded) EventName() string { return "employee_added" }

// FundsDeposited is emitted when a deposit commits.
type FundsDeposited struct {
	EntryIndex uint64 `json:"entry_index"`
	Timestamp  int64  `json:"timestamp"`
}

func (FundsDeposited) EventName() string { return "funds_deposited" }

// WithdrawalProcessed is emitted when a withdrawal commits.
type WithdrawalProcessed struct {
	BusinessIndex    uint64 `json:"business_index"`
	EmployeeIndex    uint64 `json:"employee_index"`
	Timestamp        int64  `json:"timestamp"`
	ExternalTransfer bool   `json:"external_transfer"`
}

func (WithdrawalProcessed) EventName() string { return "withdrawal_processed" }

// SalaryUpdated is emitted when an employee's rate is replaced.
type SalaryUpdated struct {
	BusinessIndex uint64 `json:"business_index"`
	EmployeeIndex uint64 `json:"employee_index"`
	Timestamp     int64  `json:"timestamp"`
}

func (SalaryUpdated) EventName() string { return "salary_updated" }

// ConfidentialMintConfigured is emitted when the vault's confidential token
// mode is reconfigured.
type ConfidentialMintConfigured struct {
	Enabled   bool  `json:"enabled"`
	Timestamp int64 `json:"timestamp"`
}

func (ConfidentialMintConfigured) EventName() string { return "confidential_mint_configured" }
