package compliance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Provider supplies rules from one source (bundled, remote, ...).
type Provider interface {
	// Name identifies the source in logs.
	Name() string

	// Rules loads the source's current rules.
	Rules(ctx context.Context) ([]Rule, error)
}

// StaticProvider serves a fixed list of rules.
type StaticProvider struct {
	name  string
	rules []Rule
}

// NewStaticProvider creates a provider over the given rules.
func NewStaticProvider(name string, rules ...Rule) *StaticProvider {
	return &StaticProvider{name: name, rules: rules}
}

func (p *StaticProvider) Name() string { return p.name }

func (p *StaticProvider) Rules(ctx context.Context) ([]Rule, error) {
	return p.rules, nil
}

// Catalog is the process-wide lookup table of rules keyed by ID.
// It is built from an ordered list of providers; on ID collision the later
// provider wins.
type Catalog struct {
	providers []Provider
	logger    *zap.Logger

	mu      sync.RWMutex
	bySrc   map[string][]Rule
	rules   map[string]Rule
	byKind  map[string][]Rule
	synced  bool
	syncing singleflight.Group
}

// NewCatalog creates an empty catalog. Call Sync to populate it.
func NewCatalog(logger *zap.Logger, providers ...Provider) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		providers: providers,
		logger:    logger,
		bySrc:     make(map[string][]Rule),
		rules:     make(map[string]Rule),
		byKind:    make(map[string][]Rule),
	}
}

// Sync reloads every provider and rebuilds the lookup table. Concurrent calls
// share one reload. A provider that fails keeps its previously loaded rules
// and its error is returned after the table is rebuilt.
func (c *Catalog) Sync(ctx context.Context) error {
	_, err, _ := c.syncing.Do("sync", func() (interface{}, error) {
		return nil, c.sync(ctx)
	})
	return err
}

func (c *Catalog) sync(ctx context.Context) error {
	loaded := make(map[string][]Rule, len(c.providers))
	var errs []error
	for _, p := range c.providers {
		rules, err := p.Rules(ctx)
		if err != nil {
			c.logger.Warn("Rule provider failed, keeping previous rules",
				zap.String("provider", p.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("provider %s: %w", p.Name(), err))
			c.mu.RLock()
			loaded[p.Name()] = c.bySrc[p.Name()]
			c.mu.RUnlock()
			continue
		}
		loaded[p.Name()] = rules
	}

	rules := make(map[string]Rule)
	for _, p := range c.providers {
		for _, r := range loaded[p.Name()] {
			id := normalizeID(r.ID())
			if prev, ok := rules[id]; ok {
				c.logger.Warn("Duplicate rule id, later provider wins",
					zap.String("rule", r.ID()),
					zap.String("replaced", prev.Name()),
					zap.String("provider", p.Name()))
			}
			rules[id] = r
		}
	}

	byKind := make(map[string][]Rule)
	for _, r := range rules {
		byKind[r.Kind()] = append(byKind[r.Kind()], r)
	}
	for kind := range byKind {
		sortRules(byKind[kind])
	}

	c.mu.Lock()
	c.bySrc = loaded
	c.rules = rules
	c.byKind = byKind
	c.synced = true
	c.mu.Unlock()

	c.logger.Info("Rule catalog synced", zap.Int("rules", len(rules)), zap.Int("kinds", len(byKind)))
	return errors.Join(errs...)
}

// Synced reports whether Sync has completed at least once.
func (c *Catalog) Synced() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.synced
}

// Get returns a rule by ID.
func (c *Catalog) Get(id string) (Rule, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.rules[normalizeID(id)]
	return r, ok
}

// List returns every rule sorted by ID.
func (c *Catalog) List() []Rule {
	c.mu.RLock()
	out := make([]Rule, 0, len(c.rules))
	for _, r := range c.rules {
		out = append(out, r)
	}
	c.mu.RUnlock()
	sortRules(out)
	return out
}

// ForKind returns the rules targeting kind, sorted by ID.
func (c *Catalog) ForKind(kind string) []Rule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Rule(nil), c.byKind[kind]...)
}

// Select resolves a set of rule IDs. An empty selection returns every rule.
func (c *Catalog) Select(ids []string) ([]Rule, error) {
	if len(ids) == 0 {
		return c.List(), nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]Rule, 0, len(ids))
	for _, id := range ids {
		key := normalizeID(id)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		r, ok := c.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRule, id)
		}
		out = append(out, r)
	}
	sortRules(out)
	return out, nil
}

func normalizeID(id string) string {
	return strings.TrimSpace(id)
}

func sortRules(rules []Rule) {
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID() < rules[j].ID() })
}
