// metrics.go - Prometheus metrics for the payroll daemon.

package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"payroll/internal/payroll"
)

// Metrics holds the daemon's Prometheus collectors.
type Metrics struct {
	Operations   *prometheus.CounterVec
	Failures     *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
	Events       *prometheus.CounterVec
	RateLimited  prometheus.Counter
	VaultBalance prometheus.Gauge
}

// NewMetrics registers the daemon's collectors on the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "payrolld",
			Name:      "operations_total",
			Help:      "Ledger operations processed, by operation name.",
		}, []string{"op"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "payrolld",
			Name:      "operation_failures_total",
			Help:      "Ledger operations rejected, by operation name and error.",
		}, []string{"op", "error"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "payrolld",
			Name:      "operation_duration_seconds",
			Help:      "Ledger operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "payrolld",
			Name:      "events_total",
			Help:      "Ledger events emitted, by event name.",
		}, []string{"event"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "payrolld",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter.",
		}),
		VaultBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "payrolld",
			Name:      "vault_public_balance",
			Help:      "Public (non-confidential) balance held by the vault.",
		}),
	}
	reg.MustRegister(m.Operations, m.Failures, m.Duration, m.Events, m.RateLimited, m.VaultBalance)
	return m
}

// EventSink returns a payroll.EventSink that counts emitted events.
func (m *Metrics) EventSink() payroll.EventSink {
	return func(ev payroll.Event) {
		m.Events.WithLabelValues(ev.EventName()).Inc()
	}
}
