package sampling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocredit/domain/core"
	"gocredit/domain/dataset"
)

func portfolio(t *testing.T, n int) *dataset.Table {
	t.Helper()
	ids := make([]float64, n)
	flags := make([]float64, n)
	for i := range ids {
		ids[i] = float64(i)
		if i%4 == 0 {
			flags[i] = 1
		}
	}
	tbl, err := dataset.NewTable(
		dataset.NewNumericColumn("id", ids),
		dataset.NewNumericColumn("default", flags),
	)
	require.NoError(t, err)
	return tbl
}

func TestStreamIsDeterministic(t *testing.T) {
	rng := SeededRNG{}
	a := rng.Stream("op", 7).Perm(10)
	b := rng.Stream("op", 7).Perm(10)
	c := rng.Stream("other", 7).Perm(10)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestTrainTestSplit(t *testing.T) {
	tbl := portfolio(t, 100)
	train, test, err := TrainTestSplit(tbl, 1, 0.67)
	require.NoError(t, err)
	assert.Equal(t, 67, train.Len())
	assert.Equal(t, 33, test.Len())

	seen := map[float64]bool{}
	for _, part := range []*dataset.Table{train, test} {
		ids, _ := part.Numeric("id")
		for _, id := range ids {
			assert.False(t, seen[id], "id %v twice", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, 100)

	again, _, err := TrainTestSplit(tbl, 1, 0.67)
	require.NoError(t, err)
	a, _ := train.Numeric("id")
	b, _ := again.Numeric("id")
	assert.Equal(t, a, b)

	_, _, err = TrainTestSplit(tbl, 1, 1)
	assert.True(t, core.IsConfigurationError(err))
}

func TestBalancedSplit(t *testing.T) {
	train, test, err := BalancedSplit(portfolio(t, 100), "default", 20, 3, 0.7)
	require.NoError(t, err)
	assert.Equal(t, 40, train.Len())
	assert.Equal(t, 30, test.Len())

	labels, err := train.Labels("default")
	require.NoError(t, err)
	bads := 0
	for _, l := range labels {
		bads += l
	}
	assert.Equal(t, 20, bads)

	_, _, err = BalancedSplit(portfolio(t, 10), "default", 0, 3, 0.7)
	assert.True(t, core.IsConfigurationError(err))
}

func TestStratifiedFolds(t *testing.T) {
	labels := make([]int, 40)
	for i := 0; i < 10; i++ {
		labels[i*4] = 1
	}
	folds, err := StratifiedFolds(labels, 5, 42)
	require.NoError(t, err)
	require.Len(t, folds, 5)

	covered := map[int]bool{}
	for _, f := range folds {
		bads := 0
		for _, i := range f {
			assert.False(t, covered[i])
			covered[i] = true
			bads += labels[i]
		}
		assert.Len(t, f, 8)
		assert.Equal(t, 2, bads)
	}
	assert.Len(t, covered, 40)
	assert.Len(t, Complement(40, folds[0]), 32)

	_, err = StratifiedFolds(labels, 1, 42)
	assert.True(t, core.IsConfigurationError(err))
	_, err = StratifiedFolds(labels, 11, 42)
	assert.True(t, core.IsConfigurationError(err))
}
