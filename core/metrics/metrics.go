package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the compliance engine.
type Metrics struct {
	// Audits by rule and result (clean, failed, defect)
	Audits *prometheus.CounterVec

	// Audit latency by rule
	AuditLatency *prometheus.HistogramVec

	// Ledger writes by type (create, update)
	LedgerWrites *prometheus.CounterVec

	// Records deleted by orphan reclamation
	Reclaimed prometheus.Counter
}

// New creates a Metrics instance registered with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Audits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "compliance_audits_total",
			Help: "Total audits by rule and result",
		}, []string{"rule", "result"}),

		AuditLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "compliance_audit_duration_seconds",
			Help:    "Duration of single rule audits",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"rule"}),

		LedgerWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "compliance_ledger_writes_total",
			Help: "Total ledger writes by type",
		}, []string{"type"}),

		Reclaimed: f.NewCounter(prometheus.CounterOpts{
			Name: "compliance_reclaimed_records_total",
			Help: "Total ledger records deleted because their object no longer exists",
		}),
	}
}

// IncrementAudit records an audit result.
func (m *Metrics) IncrementAudit(rule, result string) {
	if m != nil {
		m.Audits.WithLabelValues(rule, result).Inc()
	}
}

// ObserveAuditLatency records how long an audit took.
func (m *Metrics) ObserveAuditLatency(rule string, d time.Duration) {
	if m != nil {
		m.AuditLatency.WithLabelValues(rule).Observe(d.Seconds())
	}
}

// AddLedgerWrites records n ledger writes of the given type.
func (m *Metrics) AddLedgerWrites(writeType string, n int) {
	if m != nil && n > 0 {
		m.LedgerWrites.WithLabelValues(writeType).Add(float64(n))
	}
}

// AddReclaimed records n reclaimed records.
func (m *Metrics) AddReclaimed(n int) {
	if m != nil && n > 0 {
		m.Reclaimed.Add(float64(n))
	}
}
