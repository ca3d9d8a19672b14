package dataset

import (
	"testing"

	"gocredit/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable(
		NewNumericColumn("default_f", []float64{1, 0, 0, 1, 1, 0}),
		NewNumericColumn("age", []float64{23, 45, 31, 52, 27, 38}),
		NewTextColumn("housing", []string{"own", "rent", "own", "free", "rent", "own"}),
	)
	require.NoError(t, err)
	return tbl
}

func TestNewTableRejectsRaggedColumns(t *testing.T) {
	_, err := NewTable(
		NewNumericColumn("a", []float64{1, 2, 3}),
		NewNumericColumn("b", []float64{1, 2}),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrLengthMismatch)

	_, err = NewTable(NewNumericColumn("a", []float64{1}), NewNumericColumn("a", []float64{2}))
	assert.True(t, core.IsInvalidColumnError(err))
}

func TestLabels(t *testing.T) {
	tbl := sampleTable(t)

	labels, err := tbl.Labels("default_f")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 0, 1, 1, 0}, labels)

	_, err = tbl.Labels("missing")
	assert.ErrorIs(t, err, core.ErrMissingColumn)

	_, err = tbl.Labels("age")
	assert.ErrorIs(t, err, core.ErrLabelDomain)

	text, err := NewTable(NewTextColumn("flag", []string{"1", "0", "0"}))
	require.NoError(t, err)
	labels, err = text.Labels("flag")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 0}, labels)
}

func TestNumericRejectsText(t *testing.T) {
	tbl := sampleTable(t)
	_, err := tbl.Numeric("housing")
	assert.ErrorIs(t, err, core.ErrNonNumeric)
}

func TestColumnReturnsCopy(t *testing.T) {
	tbl := sampleTable(t)
	age, err := tbl.Numeric("age")
	require.NoError(t, err)
	age[0] = -1

	again, err := tbl.Numeric("age")
	require.NoError(t, err)
	assert.Equal(t, 23.0, again[0], "callers must not alias table storage")
}

func TestSelectAndWithColumn(t *testing.T) {
	tbl := sampleTable(t)

	sub, err := tbl.Select([]int{3, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, sub.Len())
	age, _ := sub.Numeric("age")
	assert.Equal(t, []float64{52, 23}, age)

	_, err = tbl.Select([]int{6})
	assert.Error(t, err)

	replaced, err := tbl.WithColumn(NewNumericColumn("age", []float64{1, 2, 3, 4, 5, 6}))
	require.NoError(t, err)
	assert.Equal(t, tbl.Names(), replaced.Names())
	original, _ := tbl.Numeric("age")
	assert.Equal(t, 23.0, original[0])

	dropped := tbl.Drop("housing")
	assert.Equal(t, []string{"default_f", "age"}, dropped.Names())
	assert.Equal(t, []string{"age", "housing"}, tbl.Predictors("default_f"))
}

func TestKeysRoundTrip(t *testing.T) {
	col := NewNumericColumn("x", []float64{1, 1.0, 2.5})
	assert.Equal(t, []string{"1", "1", "2.5"}, col.Keys())
	assert.Equal(t, []string{"1", "2.5"}, DistinctKeys(col.Keys()))
}

func TestSummaryByOutcome(t *testing.T) {
	tbl := sampleTable(t)
	summary, err := SummaryByOutcome(tbl, "default_f", "age")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Good.Count)
	assert.Equal(t, 3, summary.Bad.Count)
	assert.InDelta(t, (45.0+31+38)/3, summary.Good.Mean, 1e-9)
	assert.InDelta(t, (23.0+52+27)/3, summary.Bad.Mean, 1e-9)
	assert.Equal(t, 23.0, summary.Bad.Min)
	assert.Equal(t, 52.0, summary.Bad.Max)
}
