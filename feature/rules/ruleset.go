package rules

import (
	"fmt"
	"regexp"
	"strings"

	"compliance-engine/core/compliance"

	"gopkg.in/yaml.v3"
)

// File is one YAML document holding rule sets.
type File struct {
	Rules []RuleSet `yaml:"rules"`
}

// RuleSet declares one rule: the checks run against every object of Kind.
type RuleSet struct {
	ID      string  `yaml:"id"`
	Name    string  `yaml:"name"`
	Kind    string  `yaml:"kind"`
	Enforce bool    `yaml:"enforce"`
	Checks  []Check `yaml:"checks"`
}

// Check is a single attribute constraint. Exactly one of Regex, Min/Max,
// Required or Unique is expected; Min and Max may be combined.
type Check struct {
	Attribute string   `yaml:"attribute"`
	Regex     string   `yaml:"regex,omitempty"`
	Min       *float64 `yaml:"min,omitempty"`
	Max       *float64 `yaml:"max,omitempty"`
	Required  bool     `yaml:"required,omitempty"`
	// Unique is the maximum number of objects of the kind sharing a value.
	Unique int `yaml:"unique,omitempty"`
	// Message replaces the default failure message.
	Message string `yaml:"message,omitempty"`
}

// Parse decodes a rule file and compiles every rule set in it. Unique checks
// resolve their lookups through counter, which may be nil when no rule set
// uses them.
func Parse(data []byte, source string, counter Counter) ([]compliance.Rule, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}

	out := make([]compliance.Rule, 0, len(f.Rules))
	for _, rs := range f.Rules {
		r, err := compile(rs, source, counter)
		if err != nil {
			return nil, fmt.Errorf("compile rule %q in %s: %w", rs.ID, source, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func compile(rs RuleSet, source string, counter Counter) (*Rule, error) {
	rs.ID = strings.TrimSpace(rs.ID)
	rs.Kind = strings.TrimSpace(rs.Kind)
	if rs.ID == "" || rs.Kind == "" {
		return nil, fmt.Errorf("missing required fields (id/kind)")
	}
	if len(rs.Checks) == 0 {
		return nil, fmt.Errorf("no checks")
	}

	r := &Rule{set: rs, source: source, counter: counter}
	for i, c := range rs.Checks {
		cc, err := compileCheck(c)
		if err != nil {
			return nil, fmt.Errorf("check %d (%s): %w", i, c.Attribute, err)
		}
		if cc.unique > 0 && counter == nil {
			return nil, fmt.Errorf("check %d (%s): unique checks need an object counter", i, c.Attribute)
		}
		r.checks = append(r.checks, cc)
	}
	return r, nil
}

type compiledCheck struct {
	Check
	re     *regexp.Regexp
	unique int
}

func compileCheck(c Check) (compiledCheck, error) {
	c.Attribute = strings.TrimSpace(c.Attribute)
	if c.Attribute == "" {
		return compiledCheck{}, fmt.Errorf("missing attribute")
	}
	if c.Attribute == compliance.AttributeAll {
		return compiledCheck{}, fmt.Errorf("%s is reserved", compliance.AttributeAll)
	}

	cc := compiledCheck{Check: c, unique: c.Unique}
	kinds := 0
	if c.Regex != "" {
		// Patterns match from the start of the value.
		re, err := regexp.Compile("^(?:" + c.Regex + ")")
		if err != nil {
			return compiledCheck{}, fmt.Errorf("regex: %w", err)
		}
		cc.re = re
		kinds++
	}
	if c.Min != nil || c.Max != nil {
		if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
			return compiledCheck{}, fmt.Errorf("min %v is greater than max %v", *c.Min, *c.Max)
		}
		kinds++
	}
	if c.Required {
		kinds++
	}
	if c.Unique < 0 {
		return compiledCheck{}, fmt.Errorf("unique must be positive")
	}
	if c.Unique > 0 {
		kinds++
	}

	switch kinds {
	case 0:
		return compiledCheck{}, fmt.Errorf("no constraint")
	case 1:
		return cc, nil
	default:
		return compiledCheck{}, fmt.Errorf("more than one constraint; split it into separate checks")
	}
}
