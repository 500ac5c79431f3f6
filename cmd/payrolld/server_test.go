package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payroll/internal/confidential"
	"payroll/internal/payroll"
	"payroll/internal/store"
	"payroll/internal/transfer"
)

type testHarness struct {
	server *Server
	router http.Handler
	rails  *transfer.Book
	now    *int64
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	now := int64(1_700_000_000)
	auth := confidential.Authorization("test-signing")
	engine := confidential.NewServiceEngine(auth)
	rails := transfer.NewBook()
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	ledger := payroll.New(payroll.Config{
		Store:         store.NewMemory(),
		Engine:        engine,
		Rails:         rails,
		Confidential:  transfer.NewConfidentialBook(engine),
		Clock:         func() int64 { return now },
		Logger:        zerolog.Nop(),
		Events:        metrics.EventSink(),
		Authorization: auth,
	})
	srv := NewServer(ledger, engine, zerolog.Nop(), metrics, nil, registry)
	return &testHarness{server: srv, router: srv.Router(), rails: rails, now: &now}
}

func (h *testHarness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *testHarness) decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestVaultLifecycleOverHTTP(t *testing.T) {
	h := newTestHarness(t)

	w := h.do(t, http.MethodPost, "/v1/vault", map[string]any{"authority": "boss"})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Second initialization conflicts.
	w = h.do(t, http.MethodPost, "/v1/vault", map[string]any{"authority": "boss"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(t, http.MethodGet, "/v1/vault", nil)
	require.Equal(t, http.StatusOK, w.Code)
	vault := h.decode(t, w)
	assert.Equal(t, float64(0), vault["total_balance"])
	assert.Equal(t, true, vault["active"])

	// Closing requires the right authority.
	w = h.do(t, http.MethodDelete, "/v1/vault", map[string]any{"authority": "impostor"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = h.do(t, http.MethodDelete, "/v1/vault", map[string]any{"authority": "boss"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = h.do(t, http.MethodGet, "/v1/vault", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPayrollFlowOverHTTP(t *testing.T) {
	h := newTestHarness(t)
	require.NoError(t, h.rails.Credit(mustAccount(t, "d1"), 10_000_000))

	w := h.do(t, http.MethodPost, "/v1/vault", map[string]any{"authority": "boss"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = h.do(t, http.MethodPost, "/v1/businesses", map[string]any{"employer_identity": "acme"})
	require.Equal(t, http.StatusCreated, w.Code)
	businessIdx := h.decode(t, w)["entry_index"]
	assert.Equal(t, float64(0), businessIdx)

	w = h.do(t, http.MethodPost, "/v1/businesses/0/employees", map[string]any{
		"employee_identity": "alice",
		"salary":            1000,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(0), h.decode(t, w)["employee_index"])

	w = h.do(t, http.MethodPost, "/v1/businesses/0/deposits", map[string]any{
		"depositor": "d1",
		"amount":    1_000_000,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Cooldown: an immediate withdrawal is throttled.
	w = h.do(t, http.MethodPost, "/v1/businesses/0/employees/0/withdrawals", map[string]any{
		"recipient": "a1",
		"amount":    1,
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	*h.now += 60
	w = h.do(t, http.MethodPost, "/v1/businesses/0/employees/0/withdrawals", map[string]any{
		"recipient": "a1",
		"amount":    60_000,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint64(60_000), h.rails.Balance(mustAccount(t, "a1")))

	// Over-withdrawal maps to 422.
	*h.now += 60
	w = h.do(t, http.MethodPost, "/v1/businesses/0/employees/0/withdrawals", map[string]any{
		"recipient": "a1",
		"amount":    60_001,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = h.do(t, http.MethodGet, "/v1/businesses/0/employees/0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	employee := h.decode(t, w)
	assert.Equal(t, true, employee["active"])
	// Responses carry opaque handles only, never a salary field.
	assert.NotContains(t, employee, "salary")
	assert.NotContains(t, employee, "encrypted_salary")
}

func TestBadRequestsOverHTTP(t *testing.T) {
	h := newTestHarness(t)
	w := h.do(t, http.MethodPost, "/v1/vault", map[string]any{"authority": "boss"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Unknown fields are rejected.
	w = h.do(t, http.MethodPost, "/v1/businesses", map[string]any{"bogus": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Malformed ciphertext hex.
	w = h.do(t, http.MethodPost, "/v1/businesses", map[string]any{"encrypted_employer_id": "zz"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Wrong-size ciphertext reaches the ledger and comes back 400.
	w = h.do(t, http.MethodPost, "/v1/businesses", map[string]any{"encrypted_employer_id": "abcd"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown business index.
	w = h.do(t, http.MethodGet, "/v1/businesses/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHarness(t)
	w := h.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := h.decode(t, w)
	assert.Equal(t, "ok", body["status"])
}

func TestClientRateLimiter(t *testing.T) {
	rl := NewClientRateLimiter(3, 60)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "request %d should pass", i)
	}
	assert.False(t, rl.Allow("10.0.0.1"))
	// Other clients are unaffected.
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestTokenBucketRefill(t *testing.T) {
	tb := newTokenBucket(1, 1, 10*time.Millisecond)
	require.True(t, tb.allow())
	require.False(t, tb.allow())
	time.Sleep(25 * time.Millisecond)
	assert.True(t, tb.allow())
}

func mustAccount(t *testing.T, s string) transfer.Account {
	t.Helper()
	a, err := parseAccount(s)
	require.NoError(t, err)
	return a
}
