package compliance

import (
	"context"
	"time"

	"compliance-engine/core/compliance"
	"compliance-engine/core/metrics"

	"go.uber.org/zap"
)

// Service exposes the engine's operations to the HTTP and CLI surfaces.
type Service struct {
	catalog   *compliance.Catalog
	engine    *compliance.Engine
	store     compliance.Store
	objects   compliance.ObjectSource
	validator *compliance.Validator
	job       *compliance.Job
	reclaimer *compliance.Reclaimer
	logger    *zap.Logger
}

// NewService wires the engine components.
func NewService(catalog *compliance.Catalog, engine *compliance.Engine, store compliance.Store, objects compliance.ObjectSource, workers int, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog:   catalog,
		engine:    engine,
		store:     store,
		objects:   objects,
		validator: compliance.NewValidator(catalog, engine, logger),
		job:       compliance.NewJob(catalog, objects, engine, workers, logger),
		reclaimer: compliance.NewReclaimer(store, objects, logger, m),
		logger:    logger,
	}
}

// Validator returns the write-path validator.
func (s *Service) Validator() *compliance.Validator {
	return s.validator
}

// RuleInfo describes a catalog entry.
type RuleInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Enforce bool   `json:"enforce"`
	Source  string `json:"source,omitempty"`
}

// Rules lists the catalog.
func (s *Service) Rules() []RuleInfo {
	list := s.catalog.List()
	out := make([]RuleInfo, 0, len(list))
	for _, r := range list {
		info := RuleInfo{ID: r.ID(), Name: r.Name(), Kind: r.Kind(), Enforce: r.Enforce()}
		if src, ok := r.(interface{ Source() string }); ok {
			info.Source = src.Source()
		}
		out = append(out, info)
	}
	return out
}

// SyncRules reloads the catalog from its providers.
func (s *Service) SyncRules(ctx context.Context) error {
	return s.catalog.Sync(ctx)
}

// ListRecords queries the ledger.
func (s *Service) ListRecords(ctx context.Context, filter compliance.Filter) ([]compliance.Record, error) {
	return s.store.List(ctx, filter)
}

// Reconcile runs a reconciliation job over the selected rules (all when empty).
func (s *Service) Reconcile(ctx context.Context, ruleIDs []string) (*compliance.RunReport, error) {
	return s.job.Run(ctx, ruleIDs)
}

// Reclaim deletes ledger records of objects that no longer exist.
func (s *Service) Reclaim(ctx context.Context) (int, error) {
	return s.reclaimer.Reclaim(ctx)
}

// ValidationReport is the live verdict for one object. Nothing is written.
type ValidationReport struct {
	Object      compliance.ObjectRef         `json:"object"`
	Valid       bool                         `json:"valid"`
	Failures    map[string]map[string]string `json:"failures"`
	Defects     map[string]string            `json:"defects,omitempty"`
	Rules       int                          `json:"rules"`
	GeneratedAt string                       `json:"generated_at"`
}

// Validate audits one stored object against every rule for its kind without
// touching the ledger.
func (s *Service) Validate(ctx context.Context, ref compliance.ObjectRef) (*ValidationReport, error) {
	obj, err := s.objects.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.validate(ctx, obj), nil
}

// ValidateKind audits every stored object of kind without touching the ledger.
func (s *Service) ValidateKind(ctx context.Context, kind string) ([]*ValidationReport, error) {
	objects, err := s.objects.Enumerate(ctx, kind)
	if err != nil {
		return nil, err
	}
	reports := make([]*ValidationReport, 0, len(objects))
	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		reports = append(reports, s.validate(ctx, obj))
	}
	return reports, nil
}

func (s *Service) validate(ctx context.Context, obj compliance.Object) *ValidationReport {
	ref := obj.Ref()
	failures, defects := s.validator.Evaluate(ctx, obj)
	return &ValidationReport{
		Object:      ref,
		Valid:       len(failures) == 0 && len(defects) == 0,
		Failures:    failures,
		Defects:     defects,
		Rules:       len(s.catalog.ForKind(ref.Kind)),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}
