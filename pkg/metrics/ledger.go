package metrics

import "github.com/prometheus/client_golang/prometheus"

// LedgerMetrics counts payout ledger activity by transition.
type LedgerMetrics struct {
	entries     *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewLedgerMetrics registers ledger counters on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	entries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_ledger_entries_total",
		Help: "Ledger entries created, by kind (earning or adjustment).",
	}, []string{"kind", "entity_type"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_ledger_transitions_total",
		Help: "Ledger status transitions applied.",
	}, []string{"to_status"})
	reg.MustRegister(entries, transitions)
	return &LedgerMetrics{entries: entries, transitions: transitions}
}

// IncEntry counts a newly created ledger entry.
func (m *LedgerMetrics) IncEntry(kind, entityType string) {
	if m == nil || m.entries == nil {
		return
	}
	m.entries.WithLabelValues(normalizeLabel(kind), normalizeLabel(entityType)).Inc()
}

// IncTransition counts a status transition to the given status.
func (m *LedgerMetrics) IncTransition(toStatus string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(toStatus)).Inc()
}
