package compliance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"compliance-engine/core/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_Execute(t *testing.T) {
	obj := newObject("device", "A", nil)
	ctx := context.Background()

	tests := []struct {
		name       string
		fn         AuditFunc
		wantFailed bool
		wantMsgs   map[string]string
		wantDefect bool
		result     string
	}{
		{
			name:   "clean",
			fn:     func(ctx context.Context, obj Object) error { return nil },
			result: "clean",
		},
		{
			name:       "compliance failure",
			fn:         func(ctx context.Context, obj Object) error { return Fail("foo", "bad foo") },
			wantFailed: true,
			wantMsgs:   map[string]string{"foo": "bad foo"},
			result:     "failed",
		},
		{
			name: "wrapped compliance failure",
			fn: func(ctx context.Context, obj Object) error {
				return fmt.Errorf("checks: %w", Fail("foo", "bad foo"))
			},
			wantFailed: true,
			wantMsgs:   map[string]string{"foo": "bad foo"},
			result:     "failed",
		},
		{
			name:       "empty compliance failure",
			fn:         func(ctx context.Context, obj Object) error { return &ComplianceError{} },
			wantFailed: true,
			wantMsgs:   map[string]string{},
			result:     "failed",
		},
		{
			name:       "plain error is a defect",
			fn:         func(ctx context.Context, obj Object) error { return errors.New("boom") },
			wantDefect: true,
			result:     "defect",
		},
		{
			name:       "panic is a defect",
			fn:         func(ctx context.Context, obj Object) error { panic("nil map") },
			wantDefect: true,
			result:     "defect",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New(prometheus.NewRegistry())
			exec := NewExecutor(nil, m, time.Second)
			rule := &FuncRule{RuleID: "R", TargetKind: "device", Fn: tt.fn}

			outcome, err := exec.Execute(ctx, rule, obj)
			if tt.wantDefect {
				var de *RuleDefectError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, "R", de.RuleID)
				assert.Equal(t, obj.Ref(), de.Object)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantFailed, outcome.Failed)
				if tt.wantFailed {
					assert.Equal(t, tt.wantMsgs, outcome.Messages)
				}
			}
			assert.Equal(t, float64(1), testutil.ToFloat64(m.Audits.WithLabelValues("R", tt.result)))
		})
	}
}

func TestExecutor_Timeout(t *testing.T) {
	exec := NewExecutor(nil, nil, 20*time.Millisecond)
	release := make(chan struct{})
	defer close(release)

	rule := &FuncRule{RuleID: "slow", TargetKind: "device", Fn: func(ctx context.Context, obj Object) error {
		<-release
		return nil
	}}

	start := time.Now()
	_, err := exec.Execute(context.Background(), rule, newObject("device", "A", nil))
	assert.Less(t, time.Since(start), time.Second)

	var de *RuleDefectError
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecutor_NoTimeout(t *testing.T) {
	exec := NewExecutor(nil, nil, 0)
	rule := &FuncRule{RuleID: "r", TargetKind: "device", Fn: func(ctx context.Context, obj Object) error {
		_, ok := ctx.Deadline()
		if ok {
			return errors.New("unexpected deadline")
		}
		return nil
	}}

	_, err := exec.Execute(context.Background(), rule, newObject("device", "A", nil))
	assert.NoError(t, err)
}
