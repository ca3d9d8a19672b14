package coercer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocredit/domain/core"
)

func TestParseNumeric(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" 3.5 ", 3.5, true},
		{"(120)", -120, true},
		{"$1,000", 1, true}, // a lone comma is a decimal separator
		{"1.234,56", 1234.56, true},
		{"1 234,5", 1234.5, true},
		{"0,25", 0.25, true},
		{"12%", 0.12, true},
		{"1e3", 1000, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := c.ParseNumeric(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseBooleanRespectsConfig(t *testing.T) {
	on := NewTypeCoercer(DefaultCoercionConfig())
	v, ok := on.ParseBoolean("Yes")
	require.True(t, ok)
	assert.Equal(t, 1.0, v)

	off := NewTypeCoercer(CoercionConfig{})
	_, ok = off.ParseBoolean("yes")
	assert.False(t, ok)
}

func TestCoerceColumn(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	got, err := c.CoerceColumn([]string{"1", "no", "2.5"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 2.5}, got)

	_, err = c.CoerceColumn([]string{"1", "", "2"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNonNumeric))
	assert.True(t, core.IsInvalidColumnError(err))
}

func TestAnalyze(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())
	a := c.Analyze([]string{"1", "yes", "x", "2"})
	assert.Equal(t, 4, a.TotalCount)
	assert.Equal(t, 2, a.NumericCount)
	assert.Equal(t, 1, a.BooleanCount)
	assert.Equal(t, 2, a.FailureIndex)
	assert.Equal(t, "x", a.FirstFailure)
	assert.InDelta(t, 0.75, a.NumericRatio, 1e-12)
}
