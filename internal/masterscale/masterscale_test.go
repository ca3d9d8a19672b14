package masterscale

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocredit/domain/core"
	"gocredit/domain/dataset"
)

func TestBuildSimpleScale(t *testing.T) {
	ms, err := Build([]float64{0.1, 0.1, 0.3, 0.3}, []int{0, 1, 1, 1}, 2)
	require.NoError(t, err)
	require.Len(t, ms.Rows, 2)

	first := ms.Rows[0]
	assert.Equal(t, 1, first.Grade)
	assert.Equal(t, 2, first.Total)
	assert.Equal(t, 1, first.Good)
	assert.Equal(t, 1, first.Bad)
	assert.InDelta(t, 0.25, first.GoodShare, 1e-12)
	assert.InDelta(t, 0.5, first.BadRate, 1e-12)
	assert.InDelta(t, 0.1, first.AvgPD, 1e-12)
	assert.Equal(t, 0.0, first.StdPD)
	assert.InDelta(t, -100*math.Log(0.1/0.9), first.Score, 1e-9)

	second := ms.Rows[1]
	assert.Equal(t, 2, second.Grade)
	assert.InDelta(t, -100*math.Log(0.3/0.7), second.Score, 1e-9)
	assert.InDelta(t, 0.3, second.PDUpper, 1e-12)
}

func TestBuildInvariants(t *testing.T) {
	pd := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}
	labels := []int{1, 0, 0, 1, 1, 0, 0, 1, 1}

	ms, err := Build(pd, labels, 10)
	require.NoError(t, err)

	assert.Equal(t, len(pd), ms.Observations())
	assert.Equal(t, 5, ms.Bads())

	var totalShare float64
	for i, r := range ms.Rows {
		assert.Equal(t, i+1, r.Grade)
		assert.Equal(t, r.Total, r.Good+r.Bad)
		assert.False(t, math.IsNaN(r.StdPD))
		totalShare += r.TotalShare
		if i > 0 {
			assert.GreaterOrEqual(t, r.AvgPD, ms.Rows[i-1].AvgPD)
		}
	}
	assert.InDelta(t, 1.0, totalShare, 1e-12)
}

func TestBuildOmitsEmptyBins(t *testing.T) {
	ms, err := Build([]float64{0.1, 0.9}, []int{0, 1}, 4)
	require.NoError(t, err)
	assert.Len(t, ms.Rows, 2)
}

func TestBuildRejectsBadInput(t *testing.T) {
	_, err := Build([]float64{0.1, 1.2}, []int{0, 1}, 2)
	assert.True(t, core.IsInvalidColumnError(err))

	_, err = Build([]float64{0.1}, []int{0, 1}, 2)
	assert.True(t, core.IsInvalidColumnError(err))

	_, err = Build([]float64{0, 0, 0.5}, []int{0, 0, 1}, 2)
	assert.True(t, core.IsDegenerateBinError(err))

	_, err = Build([]float64{0.1, 0.2}, []int{0, 1}, 0)
	assert.True(t, core.IsConfigurationError(err))
}

func TestBuildFromTable(t *testing.T) {
	tbl, err := dataset.NewTable(
		dataset.NewTextColumn("default_f", []string{"0", "1", "1", "1"}),
		dataset.NewNumericColumn("Probability", []float64{0.1, 0.1, 0.3, 0.3}),
	)
	require.NoError(t, err)

	ms, err := BuildFromTable(tbl, "default_f", "Probability", 2)
	require.NoError(t, err)
	assert.Len(t, ms.Rows, 2)

	_, err = BuildFromTable(tbl, "default_f", "missing", 2)
	assert.True(t, core.IsInvalidColumnError(err))
}

func TestScaledScore(t *testing.T) {
	got, err := ScaledScore(0.5, 1000, 15)
	require.NoError(t, err)
	factor := 15 / math.Ln2
	assert.InDelta(t, 1000-factor*math.Log(15), got, 1e-9)

	// doubling the odds adds increase points
	a, _ := ScaledScore(1.0/3, 1000, 15)
	b, _ := ScaledScore(1.0/5, 1000, 15)
	assert.InDelta(t, 15, b-a, 1e-9)

	_, err = ScaledScore(0, 1000, 15)
	assert.True(t, core.IsDegenerateBinError(err))
	_, err = ScaledScore(0.2, 1000, 0)
	assert.True(t, core.IsConfigurationError(err))
}

func TestWithScaledScoresCopies(t *testing.T) {
	ms, err := Build([]float64{0.1, 0.1, 0.3, 0.3}, []int{0, 1, 1, 1}, 2)
	require.NoError(t, err)

	scaled, err := WithScaledScores(ms, 600, 20)
	require.NoError(t, err)
	assert.True(t, scaled.Rows[0].HasScaled)
	assert.False(t, ms.Rows[0].HasScaled)
	assert.Greater(t, scaled.Rows[0].ScaledScore, scaled.Rows[1].ScaledScore)
}

func TestAveragePD(t *testing.T) {
	ms, err := Build([]float64{0.1, 0.1, 0.3, 0.3}, []int{0, 1, 1, 1}, 2)
	require.NoError(t, err)
	avg, err := AveragePD(ms)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, avg, 1e-12)
}
