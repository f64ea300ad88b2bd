package rules

import (
	"context"
	"fmt"
	"strconv"

	"compliance-engine/core/compliance"
	"compliance-engine/core/utils"
)

// Counter looks up how many other objects share an attribute value.
type Counter interface {
	// CountOthers returns the number of objects of kind, other than exclude,
	// whose attribute equals value.
	CountOthers(ctx context.Context, kind, attribute, value string, exclude compliance.ObjectRef) (int64, error)
}

// Rule is a compiled rule set. It implements compliance.Rule.
type Rule struct {
	set     RuleSet
	source  string
	checks  []compiledCheck
	counter Counter
}

func (r *Rule) ID() string    { return r.set.ID }
func (r *Rule) Kind() string  { return r.set.Kind }
func (r *Rule) Enforce() bool { return r.set.Enforce }

// Source names where the rule set was loaded from.
func (r *Rule) Source() string { return r.source }

// Checks returns the declared checks.
func (r *Rule) Checks() []Check {
	out := make([]Check, 0, len(r.checks))
	for _, c := range r.checks {
		out = append(out, c.Check)
	}
	return out
}

func (r *Rule) Name() string {
	if r.set.Name == "" {
		return r.set.ID
	}
	return r.set.Name
}

// Audit runs every check and merges their failures. A failing lookup aborts
// the audit as a defect.
func (r *Rule) Audit(ctx context.Context, obj compliance.Object) error {
	results := make([]error, 0, len(r.checks))
	for _, c := range r.checks {
		value, _ := obj.Attribute(c.Attribute)
		var err error
		switch {
		case c.re != nil:
			err = checkRegex(c, value)
		case c.Min != nil || c.Max != nil:
			err = checkRange(c, value)
		case c.Required:
			err = checkRequired(c, value)
		case c.unique > 0:
			err = r.checkUnique(ctx, c, obj, value)
		}
		results = append(results, err)
	}
	return compliance.Merge(results...)
}

func checkRegex(c compiledCheck, value any) error {
	if c.re.MatchString(utils.ToString(value)) {
		return nil
	}
	return compliance.Fail(c.Attribute, messageOr(c, "Value does not conform to regex: "+c.Regex))
}

func checkRange(c compiledCheck, value any) error {
	if value == nil {
		return compliance.Fail(c.Attribute, messageOr(c, fmt.Sprintf(
			"Value does not conform to min/max validation: min %s, max %s", bound(c.Min), bound(c.Max))))
	}
	n, ok := numeric(value)
	if !ok {
		return compliance.Fail(c.Attribute, fmt.Sprintf(
			"Unable to validate against min/max rule because the value %q is not numeric.", utils.ToString(value)))
	}
	if c.Min != nil && n < *c.Min {
		return compliance.Fail(c.Attribute, messageOr(c, "Value is less than minimum value: "+bound(c.Min)))
	}
	if c.Max != nil && n > *c.Max {
		return compliance.Fail(c.Attribute, messageOr(c, "Value is more than maximum value: "+bound(c.Max)))
	}
	return nil
}

func checkRequired(c compiledCheck, value any) error {
	if value == nil || value == "" {
		return compliance.Fail(c.Attribute, messageOr(c, "This field cannot be blank."))
	}
	return nil
}

func (r *Rule) checkUnique(ctx context.Context, c compiledCheck, obj compliance.Object, value any) error {
	if value == nil {
		return nil
	}
	others, err := r.counter.CountOthers(ctx, r.set.Kind, c.Attribute, utils.ToString(value), obj.Ref())
	if err != nil {
		return fmt.Errorf("count %s values: %w", c.Attribute, err)
	}
	if others+1 <= int64(c.unique) {
		return nil
	}
	suffix := "s"
	if c.unique == 1 {
		suffix = ""
	}
	return compliance.Fail(c.Attribute, messageOr(c, fmt.Sprintf("There can only be %d instance%s with this value.", c.unique, suffix)))
}

// numeric accepts numbers only; strings holding numbers are not numeric values.
func numeric(value any) (float64, bool) {
	switch value.(type) {
	case string, []byte:
		return 0, false
	}
	return utils.ToFloat(value)
}

func bound(v *float64) string {
	if v == nil {
		return "none"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func messageOr(c compiledCheck, fallback string) string {
	if c.Message != "" {
		return c.Message
	}
	return fallback
}
