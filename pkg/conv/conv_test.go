package conv

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat64(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   float64
		wantOK bool
	}{
		{"float64", 25.5, 25.5, true},
		{"int", 25, 25, true},
		{"int64", int64(7), 7, true},
		{"float32", float32(0.5), 0.5, true},
		{"json number", json.Number("12.25"), 12.25, true},
		{"bad json number", json.Number("abc"), 0, false},
		{"bool", true, 1, true},
		{"string is not parsed", "25", 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat64(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToFiniteFloat64(t *testing.T) {
	_, ok := ToFiniteFloat64(math.NaN())
	assert.False(t, ok)
	_, ok = ToFiniteFloat64(math.Inf(1))
	assert.False(t, ok)
	v, ok := ToFiniteFloat64(3)
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
}

func TestConfigGet(t *testing.T) {
	m := map[string]any{"endpoint": "http://localhost:8000", "timeout": 5.0, "retries": 3}

	assert.Equal(t, "http://localhost:8000", ConfigGet(m, "endpoint", ""))
	assert.Equal(t, "fallback", ConfigGet(m, "missing", "fallback"))
	assert.Equal(t, "", ConfigGet(m, "timeout", ""))
	assert.Equal(t, int64(5), ConfigGetInt64(m, "timeout", 0))
	assert.Equal(t, int64(3), ConfigGetInt64(m, "retries", 0))
	assert.Equal(t, int64(9), ConfigGetInt64(nil, "retries", 9))
}
