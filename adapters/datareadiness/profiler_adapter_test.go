package datareadiness

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocredit/domain/core"
	"gocredit/domain/dataset"
)

func sampleTable(t *testing.T) *dataset.Table {
	t.Helper()
	nan := math.NaN()
	tbl, err := dataset.NewTable(
		dataset.NewTextColumn("name", []string{"John Doe", "Peter Gynn", "Jolie Hope"}),
		dataset.NewNumericColumn("birth_year", []float64{1980, 1985, 1971}),
		dataset.NewNumericColumn("salary", []float64{20000, nan, 10000}),
		dataset.NewTextColumn("rate", []string{"12%", "", ""}),
	)
	require.NoError(t, err)
	return tbl
}

func TestProfileTable(t *testing.T) {
	profiles, err := NewProfilerAdapter(nil).ProfileTable(context.Background(), sampleTable(t))
	require.NoError(t, err)
	require.Len(t, profiles, 4)

	tests := []struct {
		variable string
		missing  int
		ratio    float64
	}{
		{"name", 0, 0},
		{"birth_year", 0, 0},
		{"salary", 1, 1.0 / 3},
		{"rate", 2, 2.0 / 3},
	}
	for i, tt := range tests {
		t.Run(tt.variable, func(t *testing.T) {
			p := profiles[i]
			assert.Equal(t, tt.variable, p.Variable)
			assert.Equal(t, tt.missing, p.Missing)
			assert.InDelta(t, tt.ratio, p.MissingRatio, 1e-12)
			assert.InDelta(t, 1-tt.ratio, p.Completeness, 1e-12)
		})
	}

	salary := profiles[2].NumericStats
	require.NotNil(t, salary)
	assert.Equal(t, 15000.0, salary.Mean)
	assert.Equal(t, 2, profiles[2].Distinct)
	assert.False(t, profiles[0].Coercible)
	assert.True(t, profiles[3].Coercible)
}

func TestEliminateMissing(t *testing.T) {
	p := NewProfilerAdapter(nil)
	out, dropped, err := p.EliminateMissing(context.Background(), sampleTable(t), 0.10)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "birth_year"}, out.Names())
	require.Len(t, dropped, 2)
	assert.Equal(t, "salary", dropped[0].Variable)

	out, _, err = p.EliminateMissing(context.Background(), sampleTable(t), 0.5, "rate")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "birth_year", "salary", "rate"}, out.Names())

	_, _, err = p.EliminateMissing(context.Background(), sampleTable(t), 1.5)
	assert.True(t, core.IsConfigurationError(err))
}
