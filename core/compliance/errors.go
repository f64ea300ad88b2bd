package compliance

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrObjectNotFound is returned by an ObjectSource when a reference does not resolve.
	ErrObjectNotFound = errors.New("object not found")

	// ErrUnknownRule is returned when a selection names a rule the catalog does not hold.
	ErrUnknownRule = errors.New("unknown rule")
)

// ComplianceError is the aggregated failure a rule returns from Audit.
// It maps attribute names to messages and can be merged with other failures.
type ComplianceError struct {
	Attributes map[string]string
}

// Fail builds a ComplianceError for one attribute. Additional pairs may be
// passed as alternating attribute, message values; an attribute without a
// message panics.
func Fail(attribute, message string, more ...string) *ComplianceError {
	if len(more)%2 != 0 {
		panic(fmt.Sprintf("compliance: Fail got attribute %q without a message", more[len(more)-1]))
	}
	e := &ComplianceError{Attributes: map[string]string{attribute: message}}
	for i := 0; i < len(more); i += 2 {
		e.Attributes[more[i]] = more[i+1]
	}
	return e
}

// Add sets the message for an attribute and returns e.
func (e *ComplianceError) Add(attribute, message string) *ComplianceError {
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[attribute] = message
	return e
}

// Merge unions other into e. Values from other win on collision.
func (e *ComplianceError) Merge(other *ComplianceError) *ComplianceError {
	if other == nil {
		return e
	}
	for attr, msg := range other.Attributes {
		e.Add(attr, msg)
	}
	return e
}

// Messages returns a copy of the attribute map.
func (e *ComplianceError) Messages() map[string]string {
	out := make(map[string]string, len(e.Attributes))
	for k, v := range e.Attributes {
		out[k] = v
	}
	return out
}

func (e *ComplianceError) Error() string {
	if len(e.Attributes) == 0 {
		return "compliance failure"
	}
	return formatAttributes(e.Attributes)
}

// Merge combines rule check results into one error.
// Nil entries are skipped. ComplianceErrors are unioned in order, so later
// values win. Any other error is a defect and takes precedence: the defects are
// returned joined and the compliance failures are discarded.
func Merge(errs ...error) error {
	var (
		agg     *ComplianceError
		defects []error
	)
	for _, err := range errs {
		if err == nil {
			continue
		}
		var ce *ComplianceError
		if errors.As(err, &ce) {
			if agg == nil {
				agg = &ComplianceError{Attributes: make(map[string]string)}
			}
			agg.Merge(ce)
			continue
		}
		defects = append(defects, err)
	}
	if len(defects) > 0 {
		return errors.Join(defects...)
	}
	if agg == nil {
		return nil
	}
	return agg
}

// RuleDefectError reports an unexpected failure inside rule code.
type RuleDefectError struct {
	RuleID string
	Object ObjectRef
	Err    error
}

func (e *RuleDefectError) Error() string {
	return fmt.Sprintf("rule %s defect auditing %s: %v", e.RuleID, e.Object, e.Err)
}

func (e *RuleDefectError) Unwrap() error { return e.Err }

// PersistenceError reports a ledger read or write failure for one pair.
type PersistenceError struct {
	RuleID string
	Object ObjectRef
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ledger write for %s/%s failed: %v", e.Object, e.RuleID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// EnforcementError is returned when an enforcing rule fails. Attributes is the
// same map that was written to the ledger.
type EnforcementError struct {
	RuleID     string
	Object     ObjectRef
	Attributes map[string]string
}

func (e *EnforcementError) Error() string {
	return fmt.Sprintf("%s failed enforced rule %s: %s", e.Object, e.RuleID, formatAttributes(e.Attributes))
}

// ValidationError blocks a write. It carries the full attribute map of every
// enforcing rule that failed, keyed by rule id.
type ValidationError struct {
	Object ObjectRef                    `json:"object"`
	Rules  map[string]map[string]string `json:"rules"`
}

func (e *ValidationError) Error() string {
	ids := make([]string, 0, len(e.Rules))
	for id := range e.Rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id+" ("+formatAttributes(e.Rules[id])+")")
	}
	return fmt.Sprintf("%s is not compliant: %s", e.Object, strings.Join(parts, "; "))
}

func formatAttributes(attrs map[string]string) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+attrs[k])
	}
	return strings.Join(parts, "; ")
}
