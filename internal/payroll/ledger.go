// ledger.go - Ledger handle, construction, and vault initialization.

package payroll

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"payroll/internal/confidential"
	"payroll/internal/store"
	"payroll/internal/transfer"
)

// MinWithdrawInterval is the default cooldown between withdrawals by the
// same employee, in seconds.
const MinWithdrawInterval int64 = 60

// accountKeyPrefix namespaces account records in the store.
const accountKeyPrefix = "acct/"

// Config wires a Ledger to its collaborators. Store, Engine, and Rails are
// required; everything else has a usable default.
type Config struct {
	Store  store.Store
	Engine confidential.Engine
	Rails  transfer.Rails

	// Confidential carries encrypted-amount transfers. Required only when
	// the vault enables confidential transfers.
	Confidential transfer.ConfidentialRails

	// Clock returns the current unix time in seconds. Defaults to the
	// system clock. Must be monotonic per deployment.
	Clock func() int64

	// Logger receives operation logs. Indices and timestamps only.
	Logger zerolog.Logger

	// Events receives committed-operation events. May be nil.
	Events EventSink

	// Cooldown overrides MinWithdrawInterval when positive.
	Cooldown int64

	// Authorization is the vault's derived signing authority, presented to
	// the compute service for the final transfer decrypt.
	Authorization confidential.Authorization
}

// Ledger executes the payroll state transitions. Operations are serialized
// by an internal mutex, standing in for the host runtime's single-writer
// discipline.
type Ledger struct {
	mu        sync.Mutex
	store     store.Store
	engine    confidential.Engine
	rails     transfer.Rails
	confRails transfer.ConfidentialRails
	clock     func() int64
	logger    zerolog.Logger
	sink      EventSink
	cooldown  int64
	auth      confidential.Authorization
}

// New creates a Ledger from the given configuration.
func New(cfg Config) *Ledger {
	clock := cfg.Clock
	if clock == nil {
		clock = func() int64 { return time.Now().Unix() }
	}
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = MinWithdrawInterval
	}
	return &Ledger{
		store:     cfg.Store,
		engine:    cfg.Engine,
		rails:     cfg.Rails,
		confRails: cfg.Confidential,
		clock:     clock,
		logger:    cfg.Logger,
		sink:      cfg.Events,
		cooldown:  cooldown,
		auth:      cfg.Authorization,
	}
}

// VaultAccount is the vault's account on the transfer rails.
func (l *Ledger) VaultAccount() transfer.Account {
	return transfer.Account(VaultAddress())
}

// InitializeVault creates the deployment's master vault. Fails with
// ErrAlreadyInitialized on a second call.
func (l *Ledger) InitializeVault(authority []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	txn, err := l.store.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Discard()

	if _, err := txn.Get(accountKey(VaultAddress())); err == nil {
		return ErrAlreadyInitialized
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	businessCount, err := l.encryptZero()
	if err != nil {
		return err
	}
	employeeCount, err := l.encryptZero()
	if err != nil {
		return err
	}

	vault := &MasterVault{
		Authority:              append([]byte(nil), authority...),
		EncryptedBusinessCount: businessCount,
		EncryptedEmployeeCount: employeeCount,
		IsActive:               true,
	}
	if err := putRecord(txn, VaultAddress(), vault); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return err
	}

	now := l.clock()
	l.logger.Info().Int64("timestamp", now).Msg("master vault initialized")
	l.emit(VaultInitialized{Timestamp: now})
	return nil
}

// emit delivers an event to the sink, if one is configured.
func (l *Ledger) emit(ev Event) {
	if l.sink != nil {
		l.sink(ev)
	}
}

// encryptZero returns a fresh encryption of zero.
func (l *Ledger) encryptZero() (confidential.Value, error) {
	v, err := l.engine.Encrypt(bigZero())
	if err != nil {
		return confidential.Value{}, mapEngineErr(err)
	}
	return v, nil
}

// encryptUint encrypts a public amount for homomorphic bookkeeping.
func (l *Ledger) encryptUint(x uint64) (confidential.Value, error) {
	v, err := l.engine.Encrypt(bigUint(x))
	if err != nil {
		return confidential.Value{}, mapEngineErr(err)
	}
	return v, nil
}

// incrementCount homomorphically adds one to an encrypted counter.
func (l *Ledger) incrementCount(count confidential.Value) (confidential.Value, error) {
	one, err := l.encryptUint(1)
	if err != nil {
		return confidential.Value{}, err
	}
	out, err := l.engine.Add(count, one)
	if err != nil {
		return confidential.Value{}, mapEngineErr(err)
	}
	return out, nil
}

// mapEngineErr translates compute-service failures into the ledger's
// taxonomy.
func mapEngineErr(err error) error {
	switch {
	case errors.Is(err, confidential.ErrOverflow):
		return fmt.Errorf("%w: %v", ErrArithmeticOverflow, err)
	case errors.Is(err, confidential.ErrUnderflow):
		return fmt.Errorf("%w: %v", ErrArithmeticUnderflow, err)
	case errors.Is(err, confidential.ErrInvalidCiphertext):
		return fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	case errors.Is(err, confidential.ErrUnauthorized):
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	default:
		return err
	}
}
