package compliance

import (
	"context"
	"sync"
	"time"

	"compliance-engine/core/metrics"

	"go.uber.org/zap"
)

// Engine couples the executor with the ledger reconciler.
type Engine struct {
	executor *Executor
	store    Store
	locks    *pairLocks
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewEngine creates an engine writing to store.
func NewEngine(executor *Executor, store Store, logger *zap.Logger, m *metrics.Metrics) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		executor: executor,
		store:    store,
		locks:    newPairLocks(),
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

// Executor returns the engine's audit executor.
func (e *Engine) Executor() *Executor {
	return e.executor
}

// Reconcile converges the ledger rows of (ref, ruleID) to outcome and returns
// the writes that were applied. Reconciliations of the same pair are serialized
// in-process; the store makes load and apply one transaction.
func (e *Engine) Reconcile(ctx context.Context, ref ObjectRef, ruleID string, outcome Outcome) (Plan, error) {
	unlock := e.locks.lock(pairKey{ref: ref, rule: ruleID})
	defer unlock()

	target := TargetState(ref, outcome)
	now := e.now().UTC()

	plan, err := e.store.ReconcilePair(ctx, ref, ruleID, func(existing []Record) Plan {
		return Diff(ref, ruleID, existing, target, now)
	})
	if err != nil {
		return Plan{}, &PersistenceError{RuleID: ruleID, Object: ref, Err: err}
	}

	e.metrics.AddLedgerWrites(string(WriteCreate), plan.Count(WriteCreate))
	e.metrics.AddLedgerWrites(string(WriteUpdate), plan.Count(WriteUpdate))
	if !plan.Empty() {
		e.logger.Debug("Ledger reconciled",
			zap.String("object", ref.String()),
			zap.String("rule", ruleID),
			zap.Int("creates", plan.Count(WriteCreate)),
			zap.Int("updates", plan.Count(WriteUpdate)),
		)
	}
	return plan, nil
}

// Audit executes rule against obj and records the verdict in the ledger.
//
// The returned outcome is valid unless err is a *RuleDefectError. When the rule
// enforces and the outcome failed, err is an *EnforcementError carrying the
// attribute map that was written, even if the ledger write itself failed; the
// write failure is logged in that case.
func (e *Engine) Audit(ctx context.Context, rule Rule, obj Object) (Outcome, error) {
	outcome, err := e.executor.Execute(ctx, rule, obj)
	if err != nil {
		return Outcome{}, err
	}

	ref := obj.Ref()
	// The write for a pair is never abandoned half way through a cancellation.
	if _, err := e.Reconcile(context.WithoutCancel(ctx), ref, rule.ID(), outcome); err != nil {
		if !(rule.Enforce() && outcome.Failed) {
			return outcome, err
		}
		e.logger.Error("Ledger write failed for enforced audit",
			zap.String("object", ref.String()),
			zap.String("rule", rule.ID()),
			zap.Error(err),
		)
	}

	if rule.Enforce() && outcome.Failed {
		return outcome, &EnforcementError{RuleID: rule.ID(), Object: ref, Attributes: enforcedAttributes(ref, outcome)}
	}
	return outcome, nil
}

// enforcedAttributes is the failure map carried by an EnforcementError. A
// failure naming no attribute carries the __all__ summary the ledger holds.
func enforcedAttributes(ref ObjectRef, outcome Outcome) map[string]string {
	for attr := range outcome.Messages {
		if attr != AttributeAll {
			return outcome.Messages
		}
	}
	return map[string]string{AttributeAll: TargetState(ref, outcome)[AttributeAll].Message}
}

// pairKey identifies one (object, rule) pair.
type pairKey struct {
	ref  ObjectRef
	rule string
}

// pairLocks hands out one mutex per pair, dropping it once unused.
type pairLocks struct {
	mu    sync.Mutex
	locks map[pairKey]*pairLock
}

type pairLock struct {
	mu   sync.Mutex
	refs int
}

func newPairLocks() *pairLocks {
	return &pairLocks{locks: make(map[pairKey]*pairLock)}
}

func (p *pairLocks) lock(key pairKey) func() {
	p.mu.Lock()
	l, ok := p.locks[key]
	if !ok {
		l = &pairLock{}
		p.locks[key] = l
	}
	l.refs++
	p.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, key)
		}
		p.mu.Unlock()
	}
}
