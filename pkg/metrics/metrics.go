package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records lifecycle transitions by target status.
type OrderMetrics struct {
	transitions *prometheus.CounterVec
	expansions  prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Order status transitions by target status.",
	}, []string{"status"})
	expansions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_bom_expansions_total",
		Help: "Parent orders expanded into child orders.",
	})
	reg.MustRegister(transitions, expansions)
	return &OrderMetrics{
		transitions: transitions,
		expansions:  expansions,
	}
}

// IncTransition increments the transition counter for the target status.
func (m *OrderMetrics) IncTransition(status string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncExpansion increments the BOM expansion counter.
func (m *OrderMetrics) IncExpansion() {
	if m == nil || m.expansions == nil {
		return
	}
	m.expansions.Inc()
}

// IssuanceMetrics records issuance engine outcomes.
type IssuanceMetrics struct {
	outcomes *prometheus.CounterVec
}

// NewIssuanceMetrics registers the issuance metrics on the provided registerer.
func NewIssuanceMetrics(reg prometheus.Registerer) *IssuanceMetrics {
	if reg == nil {
		return &IssuanceMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "issuance_outcomes_total",
		Help: "Issuance attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(outcomes)
	return &IssuanceMetrics{outcomes: outcomes}
}

// IncOutcome increments the outcome counter (issued, rejected, canceled).
func (m *IssuanceMetrics) IncOutcome(outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// AddOutcome adds n to the outcome counter, one unit per ledger row.
func (m *IssuanceMetrics) AddOutcome(outcome string, n int) {
	if m == nil || m.outcomes == nil || n <= 0 {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(outcome)).Add(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
