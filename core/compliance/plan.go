package compliance

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Status is the target state of a single attribute.
type Status struct {
	Valid   bool
	Message string
}

// WriteType is the kind of ledger write in a Plan.
type WriteType string

const (
	// WriteCreate inserts a new record.
	WriteCreate WriteType = "create"
	// WriteUpdate changes valid/message of an existing record in place.
	WriteUpdate WriteType = "update"
)

// Write is one planned ledger mutation.
type Write struct {
	Type   WriteType `json:"type"`
	Record Record    `json:"record"`
}

// Plan is the minimal set of writes converging a pair to its target state.
type Plan struct {
	Writes []Write `json:"writes"`
}

// Empty reports whether the plan has no writes.
func (p Plan) Empty() bool {
	return len(p.Writes) == 0
}

// Count returns the number of writes of the given type.
func (p Plan) Count(t WriteType) int {
	n := 0
	for _, w := range p.Writes {
		if w.Type == t {
			n++
		}
	}
	return n
}

// GenericFailureMessage is used for the "__all__" row when a rule fails without
// naming any attribute.
const GenericFailureMessage = "rule reported a failure without attribute details"

// TargetState computes the sparse attribute map an outcome asserts for a pair.
// Attributes the outcome does not mention are absent from the result.
func TargetState(ref ObjectRef, outcome Outcome) map[string]Status {
	if !outcome.Failed {
		return map[string]Status{
			AttributeAll: {Valid: true, Message: fmt.Sprintf("%s is valid", ref)},
		}
	}

	target := make(map[string]Status, len(outcome.Messages)+1)
	var failed []string
	for attr, msg := range outcome.Messages {
		if attr == AttributeAll {
			continue
		}
		target[attr] = Status{Valid: false, Message: msg}
		failed = append(failed, attr)
	}

	summary := GenericFailureMessage
	if len(failed) > 0 {
		sort.Strings(failed)
		summary = fmt.Sprintf("%s is not valid: %s", ref, strings.Join(failed, ", "))
	}
	if msg, ok := outcome.Messages[AttributeAll]; ok && msg != "" {
		summary = msg
	}
	target[AttributeAll] = Status{Valid: false, Message: summary}
	return target
}

// ResolvedMessage is the message stored on a record whose attribute stopped failing.
func ResolvedMessage(attribute string) string {
	return attribute + " is valid."
}

// Diff computes the writes that converge existing rows of one pair to target.
// Rows already in the target state are left alone, so diffing twice yields an
// empty plan. Rows absent from target are flipped to valid, never deleted.
func Diff(ref ObjectRef, ruleID string, existing []Record, target map[string]Status, now time.Time) Plan {
	byAttr := make(map[string]Record, len(existing))
	for _, rec := range existing {
		byAttr[rec.Attribute] = rec
	}

	var plan Plan
	for _, attr := range sortedKeys(target) {
		want := target[attr]
		rec, ok := byAttr[attr]
		if !ok {
			plan.Writes = append(plan.Writes, Write{Type: WriteCreate, Record: Record{
				Object:      ref,
				RuleID:      ruleID,
				Attribute:   attr,
				Valid:       want.Valid,
				Message:     want.Message,
				LastUpdated: now,
			}})
			continue
		}
		if rec.Valid == want.Valid && rec.Message == want.Message {
			continue
		}
		rec.Valid = want.Valid
		rec.Message = want.Message
		rec.LastUpdated = now
		plan.Writes = append(plan.Writes, Write{Type: WriteUpdate, Record: rec})
	}

	for _, rec := range existing {
		if rec.Attribute == AttributeAll {
			continue
		}
		if _, ok := target[rec.Attribute]; ok {
			continue
		}
		msg := ResolvedMessage(rec.Attribute)
		if rec.Valid && rec.Message == msg {
			continue
		}
		rec.Valid = true
		rec.Message = msg
		rec.LastUpdated = now
		plan.Writes = append(plan.Writes, Write{Type: WriteUpdate, Record: rec})
	}

	return plan
}

func sortedKeys(m map[string]Status) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
