package compliance

import (
	"context"
	"time"
)

// AttributeAll is the reserved attribute that carries the overall status of an
// (object, rule) pair. It is synthesized by the engine, never by rules.
const AttributeAll = "__all__"

// ObjectRef identifies an audited object by kind and identity.
// The ledger only references objects; it never owns them.
type ObjectRef struct {
	// Kind is the type discriminator (e.g. "dcim.device").
	Kind string `json:"kind"`

	// ID is the object's identity within its kind.
	ID string `json:"id"`
}

// String returns "kind:id".
func (r ObjectRef) String() string {
	return r.Kind + ":" + r.ID
}

// Object is anything a rule can audit.
type Object interface {
	// Ref returns the object's reference.
	Ref() ObjectRef

	// Attribute returns the value of a named attribute and whether it is set.
	Attribute(name string) (any, bool)
}

// Record is a persisted ledger row for one (object, rule, attribute) triple.
type Record struct {
	Object      ObjectRef `json:"object"`
	RuleID      string    `json:"rule_id"`
	Attribute   string    `json:"attribute"`
	Valid       bool      `json:"valid"`
	Message     string    `json:"message"`
	LastUpdated time.Time `json:"last_updated"`
}

// Filter narrows a ledger listing. Zero values match everything.
type Filter struct {
	Valid     *bool
	RuleID    string
	Kind      string
	ObjectID  string
	Attribute string
	Limit     int
	Offset    int
}

// Store persists ledger records.
type Store interface {
	// ReconcilePair loads the existing rows of a pair, hands them to plan and
	// applies the returned writes. Load, plan and apply form one exclusive unit
	// for the pair.
	ReconcilePair(ctx context.Context, ref ObjectRef, ruleID string, plan func(existing []Record) Plan) (Plan, error)

	// List returns records matching the filter.
	List(ctx context.Context, filter Filter) ([]Record, error)

	// ObjectRefs returns every distinct object referenced by the ledger.
	ObjectRefs(ctx context.Context) ([]ObjectRef, error)

	// DeleteObject removes every record referencing ref and returns the count.
	DeleteObject(ctx context.Context, ref ObjectRef) (int64, error)
}

// ObjectSource is the host persistence layer as seen by the engine.
type ObjectSource interface {
	// Enumerate returns every object of the given kind.
	Enumerate(ctx context.Context, kind string) ([]Object, error)

	// Resolve loads a single object. It returns ErrObjectNotFound when the
	// reference no longer resolves.
	Resolve(ctx context.Context, ref ObjectRef) (Object, error)

	// Exists reports whether the reference still resolves.
	Exists(ctx context.Context, ref ObjectRef) (bool, error)
}
