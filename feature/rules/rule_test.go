package rules

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"compliance-engine/core/compliance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapObject struct {
	ref   compliance.ObjectRef
	attrs map[string]any
}

func (o mapObject) Ref() compliance.ObjectRef { return o.ref }

func (o mapObject) Attribute(name string) (any, bool) {
	v, ok := o.attrs[name]
	return v, ok
}

func device(attrs map[string]any) mapObject {
	return mapObject{ref: compliance.ObjectRef{Kind: "device", ID: "d1"}, attrs: attrs}
}

// fakeCounter reports a fixed count of other objects.
type fakeCounter struct {
	others int64
	err    error
	calls  int
}

func (c *fakeCounter) CountOthers(ctx context.Context, kind, attribute, value string, exclude compliance.ObjectRef) (int64, error) {
	c.calls++
	return c.others, c.err
}

func ptr(f float64) *float64 { return &f }

func compileOne(t *testing.T, counter Counter, checks ...Check) *Rule {
	t.Helper()
	r, err := compile(RuleSet{ID: "r", Kind: "device", Checks: checks}, "test", counter)
	require.NoError(t, err)
	return r
}

func auditMessages(t *testing.T, r *Rule, obj compliance.Object) map[string]string {
	t.Helper()
	err := r.Audit(context.Background(), obj)
	if err == nil {
		return nil
	}
	var ce *compliance.ComplianceError
	require.ErrorAs(t, err, &ce)
	return ce.Attributes
}

func TestRule_Regex(t *testing.T) {
	r := compileOne(t, nil, Check{Attribute: "name", Regex: "[a-z]+$"})

	assert.Nil(t, auditMessages(t, r, device(map[string]any{"name": "edge"})))
	assert.Equal(t, map[string]string{"name": "Value does not conform to regex: [a-z]+$"},
		auditMessages(t, r, device(map[string]any{"name": "Edge"})))

	t.Run("match is anchored at the start", func(t *testing.T) {
		assert.NotNil(t, auditMessages(t, r, device(map[string]any{"name": "1edge"})))
	})

	t.Run("nil is matched as empty", func(t *testing.T) {
		optional := compileOne(t, nil, Check{Attribute: "name", Regex: "[a-z]*$"})
		assert.Nil(t, auditMessages(t, optional, device(nil)))
		assert.NotNil(t, auditMessages(t, r, device(nil)))
	})

	t.Run("custom message", func(t *testing.T) {
		custom := compileOne(t, nil, Check{Attribute: "name", Regex: "[a-z]+$", Message: "lowercase only"})
		assert.Equal(t, map[string]string{"name": "lowercase only"}, auditMessages(t, custom, device(map[string]any{"name": "X"})))
	})
}

func TestRule_Range(t *testing.T) {
	r := compileOne(t, nil, Check{Attribute: "position", Min: ptr(1), Max: ptr(52)})

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"inside", 10, ""},
		{"json number", json.Number("42"), ""},
		{"float inside", 1.5, ""},
		{"below", 0, "Value is less than minimum value: 1"},
		{"above", 60.5, "Value is more than maximum value: 52"},
		{"nil", nil, "Value does not conform to min/max validation: min 1, max 52"},
		{"string", "10", `Unable to validate against min/max rule because the value "10" is not numeric.`},
		{"bool", true, `Unable to validate against min/max rule because the value "true" is not numeric.`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := auditMessages(t, r, device(map[string]any{"position": tt.value}))
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, map[string]string{"position": tt.want}, got)
		})
	}

	t.Run("open bound", func(t *testing.T) {
		minOnly := compileOne(t, nil, Check{Attribute: "position", Min: ptr(1)})
		assert.Nil(t, auditMessages(t, minOnly, device(map[string]any{"position": 1000})))
		assert.Equal(t, "Value does not conform to min/max validation: min 1, max none",
			auditMessages(t, minOnly, device(nil))["position"])
	})
}

func TestRule_Required(t *testing.T) {
	r := compileOne(t, nil, Check{Attribute: "serial", Required: true})

	assert.Nil(t, auditMessages(t, r, device(map[string]any{"serial": "X1"})))
	assert.Nil(t, auditMessages(t, r, device(map[string]any{"serial": 0})))
	// Whitespace is a value; only nil and "" count as blank.
	assert.Nil(t, auditMessages(t, r, device(map[string]any{"serial": "   "})))
	assert.Equal(t, map[string]string{"serial": "This field cannot be blank."}, auditMessages(t, r, device(nil)))
	assert.Equal(t, map[string]string{"serial": "This field cannot be blank."}, auditMessages(t, r, device(map[string]any{"serial": ""})))
}

func TestRule_Unique(t *testing.T) {
	t.Run("within limit", func(t *testing.T) {
		counter := &fakeCounter{others: 1}
		r := compileOne(t, counter, Check{Attribute: "asset_tag", Unique: 2})
		assert.Nil(t, auditMessages(t, r, device(map[string]any{"asset_tag": "A-1"})))
	})

	t.Run("over limit", func(t *testing.T) {
		counter := &fakeCounter{others: 1}
		r := compileOne(t, counter, Check{Attribute: "asset_tag", Unique: 1})
		assert.Equal(t, map[string]string{"asset_tag": "There can only be 1 instance with this value."},
			auditMessages(t, r, device(map[string]any{"asset_tag": "A-1"})))

		r = compileOne(t, &fakeCounter{others: 3}, Check{Attribute: "asset_tag", Unique: 2})
		assert.Equal(t, map[string]string{"asset_tag": "There can only be 2 instances with this value."},
			auditMessages(t, r, device(map[string]any{"asset_tag": "A-1"})))
	})

	t.Run("unset values are not counted", func(t *testing.T) {
		counter := &fakeCounter{others: 5}
		r := compileOne(t, counter, Check{Attribute: "asset_tag", Unique: 1})
		assert.Nil(t, auditMessages(t, r, device(nil)))
		assert.Zero(t, counter.calls)
	})

	t.Run("lookup failure is a defect", func(t *testing.T) {
		r := compileOne(t, &fakeCounter{err: errors.New("db down")}, Check{Attribute: "asset_tag", Unique: 1}, Check{Attribute: "name", Required: true})
		err := r.Audit(context.Background(), device(map[string]any{"asset_tag": "A-1"}))
		require.Error(t, err)
		var ce *compliance.ComplianceError
		assert.False(t, errors.As(err, &ce))
		assert.Contains(t, err.Error(), "db down")
	})
}

func TestRule_MergesChecks(t *testing.T) {
	r := compileOne(t, nil,
		Check{Attribute: "name", Required: true},
		Check{Attribute: "position", Min: ptr(1)},
		Check{Attribute: "name", Regex: "x", Message: "must start with x"},
	)

	got := auditMessages(t, r, device(map[string]any{"position": 0}))
	assert.Equal(t, map[string]string{
		"name":     "must start with x",
		"position": "Value is less than minimum value: 1",
	}, got)
}

func TestRule_Metadata(t *testing.T) {
	r, err := compile(RuleSet{ID: " dev ", Kind: "device", Enforce: true, Checks: []Check{{Attribute: "a", Required: true}}}, "bundled/x.yaml", nil)
	require.NoError(t, err)

	assert.Equal(t, "dev", r.ID())
	assert.Equal(t, "dev", r.Name())
	assert.Equal(t, "device", r.Kind())
	assert.True(t, r.Enforce())
	assert.Equal(t, "bundled/x.yaml", r.Source())
	assert.Len(t, r.Checks(), 1)
}
