package validation

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocredit/domain/core"
	"gocredit/domain/dataset"
	"gocredit/domain/scale"
	"gocredit/domain/verdict"
	"gocredit/internal/binning"
)

func grade(id, total, bad int, pd float64) scale.Row {
	return scale.Row{Grade: id, Total: total, Bad: bad, Good: total - bad, AvgPD: pd}
}

func TestParseTail(t *testing.T) {
	tail, err := ParseTail(" One ")
	require.NoError(t, err)
	assert.Equal(t, OneTail, tail)

	_, err = ParseTail("three")
	assert.True(t, core.IsConfigurationError(err))
}

func TestBinomialOneTailLiteral(t *testing.T) {
	tests := []struct {
		observed int
		want     verdict.Verdict
	}{
		{40, verdict.TargetCorrect},
		{58, verdict.TargetCorrect},
		{59, verdict.TargetUnderestimated},
		{90, verdict.TargetUnderestimated},
	}
	for _, tt := range tests {
		results, err := Binomial([]scale.Row{grade(1, 1000, tt.observed, 0.05)}, 0.90, OneTail)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.InDelta(t, 58.8325, results[0].Upper, 1e-3)
		assert.InDelta(t, 50, results[0].Expected, 1e-9)
		assert.Equal(t, tt.want, results[0].Verdict, "observed %d", tt.observed)
		assert.Equal(t, "grade 1", results[0].Subject)
	}
}

func TestBinomialTwoTail(t *testing.T) {
	rows := []scale.Row{
		grade(1, 1000, 40, 0.05),
		grade(2, 1000, 50, 0.05),
		grade(3, 1000, 90, 0.05),
	}
	results, err := Binomial(rows, 0.90, TwoTail)
	require.NoError(t, err)

	assert.InDelta(t, 41.1675, results[0].Lower, 1e-3)
	assert.Equal(t, verdict.TargetOverestimated, results[0].Verdict)
	assert.Equal(t, verdict.TargetCorrect, results[1].Verdict)
	assert.Equal(t, verdict.TargetUnderestimated, results[2].Verdict)
}

func TestBinomialRejectsBadParameters(t *testing.T) {
	rows := []scale.Row{grade(1, 100, 5, 0.05)}

	_, err := Binomial(rows, 1.2, OneTail)
	assert.True(t, core.IsConfigurationError(err))

	_, err = Binomial(rows, 0.9, Tail("both"))
	assert.True(t, core.IsConfigurationError(err))

	_, err = Binomial([]scale.Row{grade(1, 100, 5, 1.5)}, 0.9, OneTail)
	assert.True(t, core.IsInvalidColumnError(err))
}

func TestAdjustedBinomialZeroCorrelationIsBinomial(t *testing.T) {
	rows := []scale.Row{grade(1, 1000, 40, 0.05)}
	plain, err := Binomial(rows, 0.90, OneTail)
	require.NoError(t, err)
	adjusted, err := AdjustedBinomial(rows, 0.90, OneTail, 0)
	require.NoError(t, err)

	assert.Equal(t, plain[0].Upper, adjusted[0].Upper)
	assert.Equal(t, verdict.KindAdjustedBinomial, adjusted[0].Kind)
}

func TestAdjustedBinomialWidensWithCorrelation(t *testing.T) {
	rows := []scale.Row{grade(1, 1000, 40, 0.05)}
	plain, err := Binomial(rows, 0.90, OneTail)
	require.NoError(t, err)

	prev := plain[0].Upper
	for _, r := range []float64{0.01, 0.05, 0.1, 0.2, 0.4} {
		res, err := AdjustedBinomial(rows, 0.90, OneTail, r)
		require.NoError(t, err)
		assert.Greater(t, res[0].Upper, prev, "r=%v", r)
		assert.Equal(t, math.Round(res[0].Upper*100)/100, res[0].Upper)
		prev = res[0].Upper
	}
}

func TestAdjustedBinomialLiteral(t *testing.T) {
	rows := []scale.Row{grade(1, 1000, 150, 0.05)}
	res, err := AdjustedBinomial(rows, 0.90, TwoTail, 0.4)
	require.NoError(t, err)
	assert.InDelta(t, 141.07, res[0].Upper, 0.011)
	assert.InDelta(t, 139.64, res[0].Lower, 0.011)
	assert.Equal(t, verdict.TargetUnderestimated, res[0].Verdict)
}

func TestAdjustedBinomialRejectsBadCorrelation(t *testing.T) {
	rows := []scale.Row{grade(1, 1000, 40, 0.05)}
	for _, r := range []float64{-0.1, 1, 1.5, math.NaN()} {
		_, err := AdjustedBinomial(rows, 0.9, OneTail, r)
		assert.True(t, core.IsConfigurationError(err), "r=%v", r)
	}

	_, err := AdjustedBinomial([]scale.Row{grade(1, 10, 0, 0)}, 0.9, OneTail, 0.2)
	assert.True(t, core.IsDegenerateBinError(err))
}

func TestChiSquare(t *testing.T) {
	exact := []scale.Row{grade(1, 1000, 50, 0.05), grade(2, 500, 50, 0.1)}
	res, err := ChiSquare(exact, 0.95)
	require.NoError(t, err)
	assert.InDelta(t, 0, res.Statistic, 1e-12)
	assert.InDelta(t, 1, res.PValue, 1e-12)
	assert.Equal(t, verdict.Fail, res.Verdict)
	assert.Contains(t, res.Summary(), "did not pass")

	off := []scale.Row{grade(1, 1000, 90, 0.05)}
	res, err = ChiSquare(off, 0.95)
	require.NoError(t, err)
	assert.InDelta(t, 32, res.Statistic, 1e-9)
	assert.Less(t, res.PValue, 0.05)
	assert.Equal(t, verdict.Pass, res.Verdict)
	assert.InDelta(t, 0.05, res.Threshold, 1e-12)

	_, err = ChiSquare([]scale.Row{grade(1, 100, 0, 0)}, 0.95)
	assert.True(t, core.IsDegenerateBinError(err))
}

func TestKolmogorovSmirnov(t *testing.T) {
	pd := []float64{0.6, 0.7, 0.8, 0.1, 0.2, 0.3}
	labels := []int{1, 1, 1, 0, 0, 0}
	res, err := KolmogorovSmirnov(pd, labels)
	require.NoError(t, err)
	assert.InDelta(t, 100, res.Statistic, 1e-9)
	assert.Less(t, res.PValue, 0.1)

	same, err := KolmogorovSmirnov([]float64{0.1, 0.2, 0.1, 0.2}, []int{1, 1, 0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0, same.Statistic, 1e-12)
	assert.InDelta(t, 1, same.PValue, 1e-12)

	_, err = KolmogorovSmirnov([]float64{0.1, 0.2}, []int{0, 0})
	assert.True(t, core.IsDegenerateBinError(err))
}

func TestKolmogorovQ(t *testing.T) {
	// Q_KS(1) ≈ 0.27
	assert.InDelta(t, 0.2700, kolmogorovQ(1), 1e-4)
	assert.Equal(t, 1.0, kolmogorovQ(0))
	assert.Less(t, kolmogorovQ(3), 1e-6)
}

func TestPSI(t *testing.T) {
	rule, err := binning.FromEdges("x", []float64{0, 1, 2})
	require.NoError(t, err)

	main := []float64{0.5, 0.5, 1.5, 1.5}
	same, err := PSI(rule, main, main, DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, 0.0, same.Statistic)
	assert.Equal(t, verdict.Green, same.Verdict)

	shifted, err := PSI(rule, main, []float64{0.5, 1.5, 1.5, 1.5}, DefaultThresholds())
	require.NoError(t, err)
	want := (0.25*math.Log(2) + (-0.25)*math.Log(2.0/3)) * 100
	assert.InDelta(t, want, shifted.Statistic, 1e-9)
	assert.Equal(t, verdict.Red, shifted.Verdict)
	assert.Equal(t, verdict.KindPSI, shifted.Kind)

	// a bin empty in one sample contributes nothing
	gap, err := PSI(rule, main, []float64{1.5, 1.5}, DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, 0.0, gap.Bins[0].Contribution)
	assert.False(t, math.IsInf(gap.Statistic, 0))
}

func TestSSI(t *testing.T) {
	res, err := SSI("region", []string{"a", "a", "b"}, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.InDelta(t, math.Log(2)/3, res.Statistic, 1e-12)
	require.Len(t, res.Bins, 3)
	assert.Equal(t, "c", res.Bins[2].Label)
	assert.Equal(t, verdict.KindSSI, res.Kind)
}

func TestThresholds(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, verdict.Green, th.Classify(5))
	assert.Equal(t, verdict.Yellow, th.Classify(15))
	assert.Equal(t, verdict.Red, th.Classify(25))
	assert.True(t, core.IsConfigurationError(Thresholds{Green: 30, Yellow: 10}.Validate()))
}

func TestStabilityDatasets(t *testing.T) {
	main, err := dataset.NewTable(
		dataset.NewNumericColumn("income", []float64{1, 2, 3, 4}),
		dataset.NewTextColumn("region", []string{"n", "s", "n", "s"}),
		dataset.NewNumericColumn("default", []float64{0, 1, 0, 0}),
	)
	require.NoError(t, err)

	psi, err := PSIDataset(context.Background(), main, main, "default", BinSpec{Count: 2}, DefaultThresholds(), 2)
	require.Error(t, err, "region is not numeric")
	assert.True(t, core.IsInvalidColumnError(err))
	assert.Nil(t, psi)

	numeric := main.Drop("region")
	psi, err = PSIDataset(context.Background(), numeric, numeric, "default",
		BinSpec{Edges: map[string][]float64{"income": {0, 2, 5}}}, DefaultThresholds(), 0)
	require.NoError(t, err)
	require.Len(t, psi, 1)
	assert.Equal(t, "income", psi[0].Variable)
	assert.Equal(t, 0.0, psi[0].Statistic)

	ssi, err := SSIDataset(context.Background(), main, main, "default", 0)
	require.NoError(t, err)
	require.Len(t, ssi, 2)
	assert.Equal(t, "income", ssi[0].Variable)
	assert.Equal(t, "region", ssi[1].Variable)

	_, err = SSIDataset(context.Background(), main, numeric, "default", 0)
	assert.True(t, core.IsInvalidColumnError(err))
}

func TestHHI(t *testing.T) {
	uniform := []scale.Row{grade(1, 25, 1, 0.1), grade(2, 25, 1, 0.1), grade(3, 25, 1, 0.1), grade(4, 25, 1, 0.1)}
	h, err := HHI(uniform)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, h.Statistic, 1e-12)

	adj, err := AdjustedHHI(uniform)
	require.NoError(t, err)
	assert.InDelta(t, 0, adj.Statistic, 1e-12)

	concentrated := []scale.Row{grade(1, 100, 1, 0.1), grade(2, 0, 0, 0.2)}
	adj, err = AdjustedHHI(concentrated)
	require.NoError(t, err)
	assert.InDelta(t, 1, adj.Statistic, 1e-12)

	_, err = AdjustedHHI(uniform[:1])
	assert.True(t, core.IsDegenerateBinError(err))

	_, err = HHI([]scale.Row{grade(1, 10, 1, 0.1), grade(1, 10, 1, 0.1)})
	assert.True(t, core.IsInvalidColumnError(err))
}

func TestAnchorPoint(t *testing.T) {
	rows := []scale.Row{grade(1, 500, 10, 0.02), grade(2, 500, 40, 0.08)}

	tests := []struct {
		ct   float64
		want verdict.Verdict
	}{
		{0.05, verdict.Green},
		{0.039, verdict.Yellow},
		{0.062, verdict.Yellow},
		{0.03, verdict.Red},
		{0.07, verdict.Red},
	}
	for _, tt := range tests {
		res, err := AnchorPoint(rows, tt.ct, DefaultBands())
		require.NoError(t, err)
		assert.InDelta(t, 0.05, res.AveragePD, 1e-12)
		assert.Equal(t, tt.want, res.Verdict, "ct %v", tt.ct)
	}

	res, err := AnchorPoint(rows, 0.05, DefaultBands())
	require.NoError(t, err)
	assert.InDelta(t, 0.035, res.LowerRed, 1e-12)
	assert.InDelta(t, 0.065, res.UpperRed, 1e-12)

	_, err = AnchorPoint(rows, 0.05, Bands{LowerRed: 0.9, LowerGreen: 0.8, UpperGreen: 1.2, UpperRed: 1.3})
	assert.True(t, core.IsConfigurationError(err))
}
