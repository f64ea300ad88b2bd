package compliance

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Validator plugs the engine into a host's full-validation step.
type Validator struct {
	catalog *Catalog
	engine  *Engine
	logger  *zap.Logger
}

// NewValidator creates a validator over the catalog's rules.
func NewValidator(catalog *Catalog, engine *Engine, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{catalog: catalog, engine: engine, logger: logger}
}

// FullClean audits obj against every rule for its kind and records each
// verdict. Passive rules never block. When one or more enforcing rules fail,
// a *ValidationError with their full attribute maps is returned. Rule defects
// and ledger failures are logged and do not block.
func (v *Validator) FullClean(ctx context.Context, obj Object) error {
	ref := obj.Ref()
	var blocked *ValidationError

	for _, rule := range v.catalog.ForKind(ref.Kind) {
		_, err := v.engine.Audit(ctx, rule, obj)
		if err == nil {
			continue
		}
		var ee *EnforcementError
		if errors.As(err, &ee) {
			if blocked == nil {
				blocked = &ValidationError{Object: ref, Rules: make(map[string]map[string]string)}
			}
			blocked.Rules[ee.RuleID] = ee.Attributes
			continue
		}
		v.logger.Warn("Audit failed during validation",
			zap.String("object", ref.String()),
			zap.String("rule", rule.ID()),
			zap.Error(err),
		)
	}

	if blocked != nil {
		return blocked
	}
	return nil
}

// Evaluate audits obj against every rule for its kind without touching the
// ledger. It returns the failing rules' attribute maps keyed by rule id, and
// the defects keyed the same way.
func (v *Validator) Evaluate(ctx context.Context, obj Object) (map[string]map[string]string, map[string]string) {
	failures := make(map[string]map[string]string)
	defects := make(map[string]string)
	for _, rule := range v.catalog.ForKind(obj.Ref().Kind) {
		outcome, err := v.engine.Executor().Execute(ctx, rule, obj)
		if err != nil {
			defects[rule.ID()] = err.Error()
			continue
		}
		if outcome.Failed {
			failures[rule.ID()] = outcome.Messages
		}
	}
	return failures, defects
}
