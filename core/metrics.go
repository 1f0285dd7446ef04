package core

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects settlement-gate counters on a private prometheus
// registry. All methods are nil-safe so the gate can run unmetered.
type Metrics struct {
	registry       *prometheus.Registry
	fillsTotal     *prometheus.CounterVec
	claimsConsumed prometheus.Counter
}

// NewMetrics creates a Metrics with its own registry.
func NewMetrics() *Metrics {
	fills := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crossfill_fill_attempts_total",
		Help: "Total fill attempts by outcome",
	}, []string{"outcome"})

	consumed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crossfill_claims_consumed_total",
		Help: "Claim hashes consumed by successful fills",
	})

	r := prometheus.NewRegistry()
	r.MustRegister(fills, consumed)

	return &Metrics{
		registry:       r,
		fillsTotal:     fills,
		claimsConsumed: consumed,
	}
}

// Handler returns an HTTP handler exposing the registry in prometheus
// text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeFill(outcome string) {
	if m == nil {
		return
	}
	m.fillsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeConsumed() {
	if m == nil {
		return
	}
	m.claimsConsumed.Inc()
}
