package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"nil", nil, 0, false},
		{"int", 42, 42, true},
		{"uint8", uint8(7), 7, true},
		{"float", 1.5, 1.5, true},
		{"json number", json.Number("3.25"), 3.25, true},
		{"numeric string", " 12 ", 12, true},
		{"bytes", []byte("9"), 9, true},
		{"word", "twelve", 0, false},
		{"bool", true, 0, false},
		{"slice", []any{1}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "abc", ToString("abc"))
	assert.Equal(t, "abc", ToString([]byte("abc")))
	assert.Equal(t, "2", ToString(float64(2)))
	assert.Equal(t, "2.5", ToString(2.5))
	assert.Equal(t, "7", ToString(7))
	assert.Equal(t, "true", ToString(true))
}
