package compliance

import (
	"context"
	"sort"
	"sync"
	"time"
)

// testObject is an in-memory Object.
type testObject struct {
	ref   ObjectRef
	attrs map[string]any
}

func newObject(kind, id string, attrs map[string]any) *testObject {
	if attrs == nil {
		attrs = map[string]any{}
	}
	return &testObject{ref: ObjectRef{Kind: kind, ID: id}, attrs: attrs}
}

func (o *testObject) Ref() ObjectRef { return o.ref }

func (o *testObject) Attribute(name string) (any, bool) {
	v, ok := o.attrs[name]
	return v, ok
}

// memStore is an in-memory Store.
type memStore struct {
	mu          sync.Mutex
	rows        map[string]Record
	writes      int
	err         error
	beforeApply func()
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]Record)}
}

func rowKey(ref ObjectRef, ruleID, attr string) string {
	return ref.String() + "|" + ruleID + "|" + attr
}

func (s *memStore) ReconcilePair(ctx context.Context, ref ObjectRef, ruleID string, plan func([]Record) Plan) (Plan, error) {
	if s.beforeApply != nil {
		s.beforeApply()
	}
	if err := ctx.Err(); err != nil {
		return Plan{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return Plan{}, s.err
	}

	var existing []Record
	for _, r := range s.rows {
		if r.Object == ref && r.RuleID == ruleID {
			existing = append(existing, r)
		}
	}
	sort.Slice(existing, func(i, j int) bool { return existing[i].Attribute < existing[j].Attribute })

	p := plan(existing)
	for _, w := range p.Writes {
		s.rows[rowKey(ref, ruleID, w.Record.Attribute)] = w.Record
		s.writes++
	}
	return p, nil
}

func (s *memStore) List(ctx context.Context, filter Filter) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, r := range s.rows {
		if filter.Valid != nil && r.Valid != *filter.Valid {
			continue
		}
		if filter.RuleID != "" && r.RuleID != filter.RuleID {
			continue
		}
		if filter.Kind != "" && r.Object.Kind != filter.Kind {
			continue
		}
		if filter.ObjectID != "" && r.Object.ID != filter.ObjectID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *memStore) ObjectRefs(ctx context.Context) ([]ObjectRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[ObjectRef]struct{})
	var out []ObjectRef
	for _, r := range s.rows {
		if _, ok := seen[r.Object]; ok {
			continue
		}
		seen[r.Object] = struct{}{}
		out = append(out, r.Object)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (s *memStore) DeleteObject(ctx context.Context, ref ObjectRef) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, r := range s.rows {
		if r.Object == ref {
			delete(s.rows, k)
			n++
		}
	}
	return n, nil
}

// pair returns the rows of one pair keyed by attribute.
func (s *memStore) pair(ref ObjectRef, ruleID string) map[string]Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Record)
	for _, r := range s.rows {
		if r.Object == ref && r.RuleID == ruleID {
			out[r.Attribute] = r
		}
	}
	return out
}

func (s *memStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// memSource is an in-memory ObjectSource.
type memSource struct {
	mu        sync.Mutex
	objects   map[ObjectRef]Object
	enumErr   map[string]error
	existsErr map[ObjectRef]error
}

func newMemSource(objs ...Object) *memSource {
	s := &memSource{
		objects:   make(map[ObjectRef]Object),
		enumErr:   make(map[string]error),
		existsErr: make(map[ObjectRef]error),
	}
	for _, o := range objs {
		s.objects[o.Ref()] = o
	}
	return s
}

func (s *memSource) remove(ref ObjectRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, ref)
}

func (s *memSource) Enumerate(ctx context.Context, kind string) ([]Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enumErr[kind]; err != nil {
		return nil, err
	}
	var out []Object
	for ref, o := range s.objects {
		if ref.Kind == kind {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref().ID < out[j].Ref().ID })
	return out, nil
}

func (s *memSource) Resolve(ctx context.Context, ref ObjectRef) (Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[ref]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return o, nil
}

func (s *memSource) Exists(ctx context.Context, ref ObjectRef) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.existsErr[ref]; err != nil {
		return false, err
	}
	_, ok := s.objects[ref]
	return ok, nil
}

// fakeClock advances by one second on every call.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestEngine(store Store) *Engine {
	e := NewEngine(NewExecutor(nil, nil, 0), store, nil, nil)
	e.now = newFakeClock().Now
	return e
}

// attrRule fails each attribute whose value is "bad", with message "bad <attr>".
func attrRule(id, kind string, enforce bool, attrs ...string) *FuncRule {
	return &FuncRule{
		RuleID:     id,
		TargetKind: kind,
		Enforcing:  enforce,
		Fn: func(ctx context.Context, obj Object) error {
			checks := make([]error, 0, len(attrs))
			for _, a := range attrs {
				if v, _ := obj.Attribute(a); v == "bad" {
					checks = append(checks, Fail(a, "bad "+a))
				}
			}
			return Merge(checks...)
		},
	}
}
