package testkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortfolioGenerator_Deterministic(t *testing.T) {
	cfg := DefaultPortfolioConfig()
	cfg.Records = 200

	a := MustGenerate(cfg)
	b := MustGenerate(cfg)
	for _, name := range a.Names() {
		ca, err := a.Column(name)
		require.NoError(t, err)
		cb, err := b.Column(name)
		require.NoError(t, err)
		assert.Equal(t, ca, cb, name)
	}

	cfg.Seed++
	c := MustGenerate(cfg)
	pa, _ := a.Numeric(ColumnPD)
	pc, _ := c.Numeric(ColumnPD)
	assert.NotEqual(t, pa, pc)
}

func TestPortfolioGenerator_Shape(t *testing.T) {
	tbl := MustGenerate(DefaultPortfolioConfig())
	require.Equal(t, 2000, tbl.Len())

	labels, err := tbl.Labels(ColumnDefault)
	require.NoError(t, err)
	events := 0
	for _, l := range labels {
		events += l
	}
	rate := float64(events) / float64(len(labels))
	assert.Greater(t, rate, 0.04)
	assert.Less(t, rate, 0.3)

	pd, err := tbl.Numeric(ColumnPD)
	require.NoError(t, err)
	for _, p := range pd {
		assert.True(t, p > 0 && p < 1)
	}

	period, err := tbl.Column(ColumnPeriod)
	require.NoError(t, err)
	assert.Equal(t, "2024-01", period.Text[0])
	assert.Equal(t, "2024-04", period.Text[3])
}

func TestPortfolioGenerator_RejectsEmpty(t *testing.T) {
	_, err := NewPortfolioGenerator(PortfolioGeneratorConfig{}).Generate()
	assert.Error(t, err)
}
