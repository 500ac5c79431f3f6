// server.go - HTTP surface for the payroll ledger.
//
// Request payloads carry ciphertext as hex. For local deployments the
// handlers also accept plaintext identities and amounts and encrypt them
// server-side before they reach the ledger; responses and logs only ever
// contain indices, public balances, and opaque handles.

package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"payroll/internal/confidential"
	"payroll/internal/payroll"
	"payroll/internal/transfer"
)

// Server routes HTTP requests to the ledger.
type Server struct {
	ledger    *payroll.Ledger
	engine    confidential.Engine
	logger    zerolog.Logger
	metrics   *Metrics
	limiter   *ClientRateLimiter
	registry  *prometheus.Registry
	startTime time.Time
}

// NewServer wires the HTTP surface to its collaborators.
func NewServer(ledger *payroll.Ledger, engine confidential.Engine, logger zerolog.Logger, metrics *Metrics, limiter *ClientRateLimiter, registry *prometheus.Registry) *Server {
	return &Server{
		ledger:    ledger,
		engine:    engine,
		logger:    logger,
		metrics:   metrics,
		limiter:   limiter,
		registry:  registry,
		startTime: time.Now(),
	}
}

// Router builds the daemon's route table.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := r.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/vault", s.handleInitVault).Methods(http.MethodPost)
	api.HandleFunc("/vault", s.handleGetVault).Methods(http.MethodGet)
	api.HandleFunc("/vault", s.handleCloseVault).Methods(http.MethodDelete)
	api.HandleFunc("/vault/active", s.handleSetVaultActive).Methods(http.MethodPut)
	api.HandleFunc("/vault/confidential-mint", s.handleConfigureMint).Methods(http.MethodPost)

	api.HandleFunc("/businesses", s.handleRegisterBusiness).Methods(http.MethodPost)
	api.HandleFunc("/businesses/{index}", s.handleGetBusiness).Methods(http.MethodGet)
	api.HandleFunc("/businesses/{index}", s.handleCloseBusiness).Methods(http.MethodDelete)
	api.HandleFunc("/businesses/{index}/deposits", s.handleDeposit).Methods(http.MethodPost)

	api.HandleFunc("/businesses/{index}/employees", s.handleAddEmployee).Methods(http.MethodPost)
	api.HandleFunc("/businesses/{index}/employees/{employee}", s.handleGetEmployee).Methods(http.MethodGet)
	api.HandleFunc("/businesses/{index}/employees/{employee}/salary", s.handleUpdateSalary).Methods(http.MethodPut)
	api.HandleFunc("/businesses/{index}/employees/{employee}/active", s.handleSetEmployeeActive).Methods(http.MethodPut)
	api.HandleFunc("/businesses/{index}/employees/{employee}/withdrawals", s.handleWithdraw).Methods(http.MethodPost)

	if s.limiter != nil {
		api.Use(s.limiter.Middleware(s.metrics))
	}
	return r
}

// instrument wraps a ledger call with metrics and logging.
func (s *Server) instrument(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.metrics.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	s.metrics.Operations.WithLabelValues(op).Inc()
	if err != nil {
		s.metrics.Failures.WithLabelValues(op, errorLabel(err)).Inc()
	}
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if _, err := s.ledger.Vault(); err != nil && !errors.Is(err, payroll.ErrNotFound) {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":         status,
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
		"version":        version,
	})
}

type initVaultRequest struct {
	Authority string `json:"authority"`
}

func (s *Server) handleInitVault(w http.ResponseWriter, r *http.Request) {
	var req initVaultRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	err := s.instrument("initialize_vault", func() error {
		return s.ledger.InitializeVault([]byte(req.Authority))
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"status": "initialized"})
}

func (s *Server) handleGetVault(w http.ResponseWriter, r *http.Request) {
	vault, err := s.ledger.Vault()
	if err != nil {
		writeError(w, err)
		return
	}
	s.metrics.VaultBalance.Set(float64(vault.TotalBalance))
	writeJSON(w, http.StatusOK, map[string]any{
		"total_balance":            vault.TotalBalance,
		"next_business_index":      vault.NextBusinessIndex,
		"active":                   vault.IsActive,
		"confidential_transfers":   vault.UseConfidentialTransfers,
		"encrypted_business_count": hex.EncodeToString(vault.EncryptedBusinessCount.Bytes()),
		"encrypted_employee_count": hex.EncodeToString(vault.EncryptedEmployeeCount.Bytes()),
	})
}

type authorityRequest struct {
	Authority string `json:"authority"`
}

func (s *Server) handleCloseVault(w http.ResponseWriter, r *http.Request) {
	var req authorityRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	err := s.instrument("close_vault", func() error {
		return s.ledger.CloseVault([]byte(req.Authority))
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "closed"})
}

type setActiveRequest struct {
	Authority string `json:"authority"`
	Active    bool   `json:"active"`
}

func (s *Server) handleSetVaultActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	err := s.instrument("set_vault_active", func() error {
		return s.ledger.SetVaultActive([]byte(req.Authority), req.Active)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"active": req.Active})
}

type configureMintRequest struct {
	Authority string `json:"authority"`
	Mint      string `json:"mint"`
	Enable    bool   `json:"enable"`
}

func (s *Server) handleConfigureMint(w http.ResponseWriter, r *http.Request) {
	var req configureMintRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	mint, err := hex.DecodeString(req.Mint)
	if err != nil {
		writeError(w, badRequest("mint must be hex"))
		return
	}
	err = s.instrument("configure_confidential_mint", func() error {
		return s.ledger.ConfigureConfidentialMint([]byte(req.Authority), mint, req.Enable)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"confidential_transfers": req.Enable})
}

type registerBusinessRequest struct {
	// Exactly one of the two fields.
	EncryptedEmployerID string `json:"encrypted_employer_id,omitempty"`
	EmployerIdentity    string `json:"employer_identity,omitempty"`
}

func (s *Server) handleRegisterBusiness(w http.ResponseWriter, r *http.Request) {
	var req registerBusinessRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ct, err := s.resolveIdentity(req.EncryptedEmployerID, req.EmployerIdentity)
	if err != nil {
		writeError(w, err)
		return
	}
	var index uint64
	err = s.instrument("register_business", func() error {
		var inner error
		index, inner = s.ledger.RegisterBusiness(ct)
		return inner
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"entry_index": index})
}

func (s *Server) handleGetBusiness(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		writeError(w, err)
		return
	}
	entry, err := s.ledger.Business(index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entry_index":         entry.EntryIndex,
		"next_employee_index": entry.NextEmployeeIndex,
		"active":              entry.IsActive,
		"encrypted_balance":   hex.EncodeToString(entry.EncryptedBalance.Bytes()),
	})
}

func (s *Server) handleCloseBusiness(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		writeError(w, err)
		return
	}
	var req authorityRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	err = s.instrument("close_business", func() error {
		return s.ledger.CloseBusiness([]byte(req.Authority), index)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "closed"})
}

type addEmployeeRequest struct {
	EncryptedEmployeeID string `json:"encrypted_employee_id,omitempty"`
	EmployeeIdentity    string `json:"employee_identity,omitempty"`
	EncryptedSalary     string `json:"encrypted_salary,omitempty"`
	Salary              uint64 `json:"salary,omitempty"`
}

func (s *Server) handleAddEmployee(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		writeError(w, err)
		return
	}
	var req addEmployeeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id, err := s.resolveIdentity(req.EncryptedEmployeeID, req.EmployeeIdentity)
	if err != nil {
		writeError(w, err)
		return
	}
	salary, err := s.resolveCiphertext(req.EncryptedSalary, req.Salary)
	if err != nil {
		writeError(w, err)
		return
	}
	var employeeIndex uint64
	err = s.instrument("add_employee", func() error {
		var inner error
		employeeIndex, inner = s.ledger.AddEmployee(index, id, salary)
		return inner
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"employee_index": employeeIndex})
}

func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		writeError(w, err)
		return
	}
	employeeIndex, err := pathIndex(r, "employee")
	if err != nil {
		writeError(w, err)
		return
	}
	entry, err := s.ledger.Employee(index, employeeIndex)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"employee_index":    entry.EmployeeIndex,
		"last_action":       entry.LastAction,
		"active":            entry.IsActive,
		"encrypted_accrued": hex.EncodeToString(entry.EncryptedAccrued.Bytes()),
	})
}

type updateSalaryRequest struct {
	EncryptedSalary string `json:"encrypted_salary,omitempty"`
	Salary          uint64 `json:"salary,omitempty"`
}

func (s *Server) handleUpdateSalary(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		writeError(w, err)
		return
	}
	employeeIndex, err := pathIndex(r, "employee")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateSalaryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	salary, err := s.resolveCiphertext(req.EncryptedSalary, req.Salary)
	if err != nil {
		writeError(w, err)
		return
	}
	err = s.instrument("update_salary", func() error {
		return s.ledger.UpdateSalary(index, employeeIndex, salary)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "updated"})
}

type setEmployeeActiveRequest struct {
	Authority string `json:"authority"`
	Active    bool   `json:"active"`
}

func (s *Server) handleSetEmployeeActive(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		writeError(w, err)
		return
	}
	employeeIndex, err := pathIndex(r, "employee")
	if err != nil {
		writeError(w, err)
		return
	}
	var req setEmployeeActiveRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	err = s.instrument("set_employee_active", func() error {
		return s.ledger.SetEmployeeActive([]byte(req.Authority), index, employeeIndex, req.Active)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"active": req.Active})
}

type depositRequest struct {
	Depositor       string `json:"depositor"`
	Amount          uint64 `json:"amount,omitempty"`
	EncryptedAmount string `json:"encrypted_amount,omitempty"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		writeError(w, err)
		return
	}
	var req depositRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	depositor, err := parseAccount(req.Depositor)
	if err != nil {
		writeError(w, err)
		return
	}
	amount, err := parseAmount(req.Amount, req.EncryptedAmount)
	if err != nil {
		writeError(w, err)
		return
	}
	err = s.instrument("deposit", func() error {
		return s.ledger.Deposit(index, depositor, amount)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deposited"})
}

type withdrawRequest struct {
	Recipient        string `json:"recipient"`
	Amount           uint64 `json:"amount,omitempty"`
	EncryptedAmount  string `json:"encrypted_amount,omitempty"`
	ExternalTransfer bool   `json:"external_transfer,omitempty"`
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		writeError(w, err)
		return
	}
	employeeIndex, err := pathIndex(r, "employee")
	if err != nil {
		writeError(w, err)
		return
	}
	var req withdrawRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	recipient, err := parseAccount(req.Recipient)
	if err != nil {
		writeError(w, err)
		return
	}
	amount, err := parseAmount(req.Amount, req.EncryptedAmount)
	if err != nil {
		writeError(w, err)
		return
	}
	err = s.instrument("request_withdrawal", func() error {
		return s.ledger.RequestWithdrawal(index, employeeIndex, recipient, amount, req.ExternalTransfer)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "withdrawn"})
}

// resolveIdentity returns identity ciphertext bytes from either a hex
// ciphertext or a plaintext identity encrypted server-side.
func (s *Server) resolveIdentity(encryptedHex, plaintext string) ([]byte, error) {
	if encryptedHex != "" {
		ct, err := hex.DecodeString(encryptedHex)
		if err != nil {
			return nil, badRequest("ciphertext must be hex")
		}
		return ct, nil
	}
	if plaintext == "" {
		return nil, badRequest("missing identity")
	}
	v, err := s.engine.Encrypt(confidential.HashIdentity([]byte(plaintext)))
	if err != nil {
		return nil, err
	}
	return v.Bytes(), nil
}

// resolveCiphertext returns value ciphertext bytes from either a hex
// ciphertext or a plaintext amount encrypted server-side.
func (s *Server) resolveCiphertext(encryptedHex string, plaintext uint64) ([]byte, error) {
	if encryptedHex != "" {
		ct, err := hex.DecodeString(encryptedHex)
		if err != nil {
			return nil, badRequest("ciphertext must be hex")
		}
		return ct, nil
	}
	v, err := s.engine.Encrypt(new(big.Int).SetUint64(plaintext))
	if err != nil {
		return nil, err
	}
	return v.Bytes(), nil
}

func parseAmount(plain uint64, encryptedHex string) (payroll.Amount, error) {
	if encryptedHex != "" {
		ct, err := hex.DecodeString(encryptedHex)
		if err != nil {
			return nil, badRequest("encrypted_amount must be hex")
		}
		return payroll.EncryptedAmount(ct), nil
	}
	return payroll.PlainAmount(plain), nil
}

func parseAccount(s string) (transfer.Account, error) {
	var a transfer.Account
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) == 0 || len(raw) > len(a) {
		return a, badRequest("account must be 1-32 hex-encoded bytes")
	}
	copy(a[:], raw)
	return a, nil
}

func pathIndex(r *http.Request, name string) (uint64, error) {
	raw := mux.Vars(r)[name]
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, badRequest("invalid index")
	}
	return v, nil
}

func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest("invalid request body")
	}
	return nil
}

// httpError carries an explicit status for request-shape problems.
type httpError struct {
	status  int
	message string
}

func (e *httpError) Error() string { return e.message }

func badRequest(msg string) error { return &httpError{status: http.StatusBadRequest, message: msg} }

// writeError maps ledger errors onto HTTP statuses. Messages come from the
// error taxonomy and never include decrypted values.
func writeError(w http.ResponseWriter, err error) {
	var he *httpError
	if errors.As(err, &he) {
		writeJSON(w, he.status, map[string]any{"error": he.message})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, payroll.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, payroll.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, payroll.ErrAlreadyInitialized),
		errors.Is(err, payroll.ErrVaultPaused),
		errors.Is(err, payroll.ErrPayrollInactive),
		errors.Is(err, payroll.ErrConfidentialDisabled),
		errors.Is(err, payroll.ErrVaultNotEmpty),
		errors.Is(err, payroll.ErrBusinessNotEmpty):
		status = http.StatusConflict
	case errors.Is(err, payroll.ErrWithdrawTooSoon):
		status = http.StatusTooManyRequests
	case errors.Is(err, payroll.ErrInsufficientAccrued),
		errors.Is(err, payroll.ErrInsufficientFunds):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, payroll.ErrInvalidCiphertext),
		errors.Is(err, payroll.ErrInvalidAmount),
		errors.Is(err, payroll.ErrInvalidTimeOrdering):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// errorLabel collapses an error chain to its sentinel for metric labels.
func errorLabel(err error) string {
	for _, sentinel := range []error{
		payroll.ErrNotFound, payroll.ErrUnauthorized, payroll.ErrAlreadyInitialized,
		payroll.ErrVaultPaused, payroll.ErrPayrollInactive, payroll.ErrWithdrawTooSoon,
		payroll.ErrInsufficientAccrued, payroll.ErrInsufficientFunds,
		payroll.ErrArithmeticOverflow, payroll.ErrArithmeticUnderflow,
		payroll.ErrInvalidTimeOrdering, payroll.ErrIndexOverflow,
		payroll.ErrInvalidCiphertext, payroll.ErrInvalidAmount,
		payroll.ErrConfidentialDisabled, payroll.ErrVaultNotEmpty,
		payroll.ErrBusinessNotEmpty,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal"
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
