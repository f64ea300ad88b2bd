package compliance

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FailureKind classifies an entry in a run report.
type FailureKind string

const (
	// FailureDefect is an unexpected error inside rule code.
	FailureDefect FailureKind = "rule_defect"
	// FailurePersistence is a ledger read or write failure.
	FailurePersistence FailureKind = "persistence"
	// FailureEnumeration is a failure listing a rule's target population.
	FailureEnumeration FailureKind = "enumeration"
)

// PairFailure records one pair (or rule sub-pass) that could not be reconciled.
type PairFailure struct {
	Kind   FailureKind `json:"kind"`
	RuleID string      `json:"rule_id"`
	Object *ObjectRef  `json:"object,omitempty"`
	Error  string      `json:"error"`
}

// RunReport summarizes one reconciliation run.
type RunReport struct {
	RunID             string        `json:"run_id"`
	StartedAt         time.Time     `json:"started_at"`
	FinishedAt        time.Time     `json:"finished_at"`
	Rules             []string      `json:"rules"`
	ObjectsProcessed  int           `json:"objects_processed"`
	ObjectsInvalid    int           `json:"objects_invalid"`
	AttributeFailures int           `json:"attribute_failures"`
	Defects           int           `json:"defects"`
	RecordsCreated    int           `json:"records_created"`
	RecordsUpdated    int           `json:"records_updated"`
	Skipped           int           `json:"skipped"`
	Cancelled         bool          `json:"cancelled"`
	Failures          []PairFailure `json:"failures"`
}

// Job reconciles the ledger for a selection of rules over their populations.
type Job struct {
	catalog *Catalog
	objects ObjectSource
	engine  *Engine
	workers int
	logger  *zap.Logger
}

// NewJob creates a reconciliation job with a bounded worker pool.
func NewJob(catalog *Catalog, objects ObjectSource, engine *Engine, workers int, logger *zap.Logger) *Job {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{catalog: catalog, objects: objects, engine: engine, workers: workers, logger: logger}
}

// Run audits every object of each selected rule's kind and reconciles the
// ledger. An empty selection runs every rule. Per-pair failures are reported,
// not returned; the only error is an invalid selection.
//
// Cancelling ctx stops new pairs from starting. Pairs already running finish
// their audit and ledger write.
func (j *Job) Run(ctx context.Context, ruleIDs []string) (*RunReport, error) {
	rules, err := j.catalog.Select(ruleIDs)
	if err != nil {
		return nil, err
	}

	report := &RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Rules:     make([]string, 0, len(rules)),
		Failures:  []PairFailure{},
	}
	for _, r := range rules {
		report.Rules = append(report.Rules, r.ID())
	}
	l := j.logger.With(zap.String("run_id", report.RunID))
	l.Info("Reconciliation started", zap.Int("rules", len(rules)), zap.Int("workers", j.workers))

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(j.workers)

launch:
	for _, rule := range rules {
		if ctx.Err() != nil {
			break
		}
		objs, err := j.objects.Enumerate(ctx, rule.Kind())
		if err != nil {
			l.Error("Failed to enumerate population", zap.String("rule", rule.ID()), zap.String("kind", rule.Kind()), zap.Error(err))
			mu.Lock()
			report.Failures = append(report.Failures, PairFailure{
				Kind:   FailureEnumeration,
				RuleID: rule.ID(),
				Error:  err.Error(),
			})
			mu.Unlock()
			continue
		}

		for _, obj := range objs {
			if ctx.Err() != nil {
				break launch
			}
			rule, obj := rule, obj
			g.Go(func() error {
				j.reconcilePair(ctx, rule, obj, report, &mu)
				return nil
			})
		}
	}
	_ = g.Wait()

	report.Cancelled = ctx.Err() != nil
	report.FinishedAt = time.Now().UTC()
	l.Info("Reconciliation finished",
		zap.Int("objects", report.ObjectsProcessed),
		zap.Int("invalid", report.ObjectsInvalid),
		zap.Int("attribute_failures", report.AttributeFailures),
		zap.Int("defects", report.Defects),
		zap.Int("failures", len(report.Failures)),
		zap.Bool("cancelled", report.Cancelled),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

func (j *Job) reconcilePair(ctx context.Context, rule Rule, obj Object, report *RunReport, mu *sync.Mutex) {
	ref := obj.Ref()

	// A pair that waited for a worker past cancellation never starts.
	if ctx.Err() != nil {
		mu.Lock()
		report.Skipped++
		mu.Unlock()
		return
	}

	// A started pair runs to completion; only the per-audit timeout applies.
	pairCtx := context.WithoutCancel(ctx)
	outcome, err := j.engine.Executor().Execute(pairCtx, rule, obj)
	if err != nil {
		mu.Lock()
		defer mu.Unlock()
		report.Defects++
		report.Failures = append(report.Failures, PairFailure{
			Kind:   FailureDefect,
			RuleID: rule.ID(),
			Object: &ref,
			Error:  err.Error(),
		})
		return
	}

	plan, err := j.engine.Reconcile(pairCtx, ref, rule.ID(), outcome)

	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		var pe *PersistenceError
		kind := FailureDefect
		if errors.As(err, &pe) {
			kind = FailurePersistence
		}
		report.Failures = append(report.Failures, PairFailure{
			Kind:   kind,
			RuleID: rule.ID(),
			Object: &ref,
			Error:  err.Error(),
		})
		return
	}
	report.ObjectsProcessed++
	report.RecordsCreated += plan.Count(WriteCreate)
	report.RecordsUpdated += plan.Count(WriteUpdate)
	if outcome.Failed {
		report.ObjectsInvalid++
		report.AttributeFailures += outcome.AttributeFailures()
	}
}
