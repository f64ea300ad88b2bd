package compliance

import "context"

// Rule is a compliance rule supplied by the operator.
type Rule interface {
	// ID is the stable catalog identifier.
	ID() string

	// Name is the human-readable name.
	Name() string

	// Kind is the object kind this rule audits.
	Kind() string

	// Enforce reports whether a failure blocks the write that triggered it.
	Enforce() bool

	// Audit returns nil when obj is compliant and a *ComplianceError when one or
	// more attributes are invalid. Any other error is treated as a defect.
	Audit(ctx context.Context, obj Object) error
}

// AuditFunc is the audit operation of a FuncRule.
type AuditFunc func(ctx context.Context, obj Object) error

// FuncRule adapts a plain function into a Rule.
type FuncRule struct {
	RuleID     string
	RuleName   string
	TargetKind string
	Enforcing  bool
	Fn         AuditFunc
}

func (r *FuncRule) ID() string    { return r.RuleID }
func (r *FuncRule) Kind() string  { return r.TargetKind }
func (r *FuncRule) Enforce() bool { return r.Enforcing }

func (r *FuncRule) Name() string {
	if r.RuleName == "" {
		return r.RuleID
	}
	return r.RuleName
}

func (r *FuncRule) Audit(ctx context.Context, obj Object) error {
	if r.Fn == nil {
		return nil
	}
	return r.Fn(ctx, obj)
}

// Outcome is the verdict of one audit: clean, or failed with attribute messages.
type Outcome struct {
	Failed   bool              `json:"failed"`
	Messages map[string]string `json:"messages,omitempty"`
}

// Clean returns a passing outcome.
func Clean() Outcome {
	return Outcome{}
}

// Failed returns a failing outcome. An empty map is allowed.
func Failed(messages map[string]string) Outcome {
	if messages == nil {
		messages = map[string]string{}
	}
	return Outcome{Failed: true, Messages: messages}
}

// AttributeFailures counts attribute-level failures. A failure with no
// attribute details counts once.
func (o Outcome) AttributeFailures() int {
	if !o.Failed {
		return 0
	}
	n := 0
	for attr := range o.Messages {
		if attr != AttributeAll {
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return n
}
