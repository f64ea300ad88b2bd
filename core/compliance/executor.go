package compliance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"compliance-engine/core/metrics"

	"go.uber.org/zap"
)

// Executor runs one rule against one object.
type Executor struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

// NewExecutor creates an executor. A zero timeout disables the per-audit deadline.
func NewExecutor(logger *zap.Logger, m *metrics.Metrics, timeout time.Duration) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{logger: logger, metrics: m, timeout: timeout}
}

type auditResult struct {
	err error
}

// Execute invokes rule.Audit and converts the result into an Outcome.
// A *ComplianceError becomes a failed outcome. Anything else, including a
// panic or a timeout, is returned as a *RuleDefectError and the outcome must
// be ignored.
func (e *Executor) Execute(ctx context.Context, rule Rule, obj Object) (Outcome, error) {
	ref := obj.Ref()
	start := time.Now()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	// Buffered so a rule that outlives the deadline does not leak a blocked sender.
	done := make(chan auditResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- auditResult{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		done <- auditResult{err: rule.Audit(ctx, obj)}
	}()

	var err error
	select {
	case res := <-done:
		err = res.err
	case <-ctx.Done():
		err = fmt.Errorf("audit aborted: %w", ctx.Err())
	}
	e.metrics.ObserveAuditLatency(rule.ID(), time.Since(start))

	if err == nil {
		e.metrics.IncrementAudit(rule.ID(), "clean")
		return Clean(), nil
	}

	var ce *ComplianceError
	if errors.As(err, &ce) {
		e.metrics.IncrementAudit(rule.ID(), "failed")
		return Failed(ce.Messages()), nil
	}

	e.metrics.IncrementAudit(rule.ID(), "defect")
	e.logger.Error("Rule defect",
		zap.String("rule", rule.ID()),
		zap.String("object", ref.String()),
		zap.Error(err),
	)
	return Outcome{}, &RuleDefectError{RuleID: rule.ID(), Object: ref, Err: err}
}
