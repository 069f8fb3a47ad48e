package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRule_Match(t *testing.T) {
	tests := []struct {
		expr string
		age  float64
		want bool
	}{
		{"age <= 25.0", 25, true},
		{"age <= 25.0", 25.5, false},
		{"age <= 25.0", 26, false},
		{"age > 25.0", 26, true},
		{"age > 25.0", 25, false},
		{"age >= 18.0 && age < 60.0", 40, true},
		{"age >= 18.0 && age < 60.0", 60, false},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			rule, err := Compile(tt.expr)
			require.NoError(t, err)
			got, err := rule.Match(tt.age)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile("")
	assert.Error(t, err)

	_, err = Compile("age <=")
	assert.Error(t, err)

	_, err = Compile("income > 10.0")
	assert.Error(t, err, "undeclared variable")
}

func TestRule_NonBoolean(t *testing.T) {
	rule, err := Compile("age + 1.0")
	require.NoError(t, err)

	_, err = rule.Match(20)
	assert.Error(t, err)
}

func TestMustCompile(t *testing.T) {
	assert.Equal(t, "age > 25.0", MustCompile("age > 25.0").String())
	assert.Panics(t, func() { MustCompile("age >") })
}
