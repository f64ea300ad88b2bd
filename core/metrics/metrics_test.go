package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementAudit("r", "clean")
		m.ObserveAuditLatency("r", time.Millisecond)
		m.AddLedgerWrites("create", 2)
		m.AddReclaimed(3)
	})
}

func TestMetrics_Counts(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementAudit("rule-a", "failed")
	m.IncrementAudit("rule-a", "failed")
	m.AddLedgerWrites("update", 3)
	m.AddLedgerWrites("create", 0)
	m.AddReclaimed(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Audits.WithLabelValues("rule-a", "failed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.LedgerWrites.WithLabelValues("update")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LedgerWrites.WithLabelValues("create")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Reclaimed))
}
