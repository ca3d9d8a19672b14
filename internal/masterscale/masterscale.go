package masterscale

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"gocredit/domain/core"
	"gocredit/domain/dataset"
	"gocredit/domain/scale"
	"gocredit/internal/binning"
	"gocredit/internal/errors"
)

const pdVariable = "pd"

// Build groups records into binCount equal-width PD bands over the observed PD
// range and summarises each non-empty band as a grade. Grades are numbered
// from 1 in increasing PD order.
func Build(pd []float64, labels []int, binCount int) (scale.MasterScale, error) {
	if len(pd) != len(labels) {
		return scale.MasterScale{}, errors.InvalidColumn(pdVariable, fmt.Errorf("%w: %d PDs for %d labels", core.ErrLengthMismatch, len(pd), len(labels)))
	}
	for i, p := range pd {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return scale.MasterScale{}, errors.InvalidColumn(pdVariable, fmt.Errorf("%w: row %d PD %v outside [0,1]", core.ErrInvalidColumn, i, p))
		}
		if labels[i] != 0 && labels[i] != 1 {
			return scale.MasterScale{}, errors.InvalidColumn(pdVariable, fmt.Errorf("%w: row %d holds %d", core.ErrLabelDomain, i, labels[i]))
		}
	}

	rule, err := binning.FitUniform(pdVariable, pd, binCount)
	if err != nil {
		return scale.MasterScale{}, err
	}
	assigned, err := binning.Apply(rule, pd)
	if err != nil {
		return scale.MasterScale{}, err
	}

	k := rule.Bins()
	members := make([][]float64, k)
	bads := make([]int, k)
	for i, b := range assigned {
		members[b] = append(members[b], pd[i])
		bads[b] += labels[i]
	}

	n := float64(len(pd))
	var ms scale.MasterScale
	for b := 0; b < k; b++ {
		if len(members[b]) == 0 {
			continue
		}
		mean, err := stats.Mean(members[b])
		if err != nil {
			return scale.MasterScale{}, errors.Wrapf(err, "mean PD of bin %s", rule.Label(b))
		}
		if mean <= 0 || mean >= 1 {
			return scale.MasterScale{}, errors.DegenerateBin(pdVariable, rule.Label(b), fmt.Sprintf("average PD %v has no finite score", mean))
		}
		std := 0.0
		if len(members[b]) > 1 {
			if std, err = stats.StandardDeviationSample(members[b]); err != nil {
				return scale.MasterScale{}, errors.Wrapf(err, "PD deviation of bin %s", rule.Label(b))
			}
		}

		total := len(members[b])
		bad := bads[b]
		good := total - bad
		ms.Rows = append(ms.Rows, scale.Row{
			Grade:      len(ms.Rows) + 1,
			PDLower:    rule.Edges[b],
			PDUpper:    rule.Edges[b+1],
			Total:      total,
			Good:       good,
			Bad:        bad,
			TotalShare: float64(total) / n,
			GoodShare:  float64(good) / n,
			BadShare:   float64(bad) / n,
			BadRate:    float64(bad) / float64(total),
			AvgPD:      mean,
			StdPD:      std,
			Score:      Score(mean),
		})
	}
	return ms, nil
}

// BuildFromTable reads the outcome and PD columns of t and builds the scale
func BuildFromTable(t *dataset.Table, outcome, pdColumn string, binCount int) (scale.MasterScale, error) {
	labels, err := t.Labels(outcome)
	if err != nil {
		return scale.MasterScale{}, errors.InvalidColumn(outcome, err)
	}
	col, err := t.Column(pdColumn)
	if err != nil {
		return scale.MasterScale{}, errors.InvalidColumn(pdColumn, err)
	}
	pd, err := binning.CoerceNumeric(col)
	if err != nil {
		return scale.MasterScale{}, err
	}
	return Build(pd, labels, binCount)
}

// Score is the log-odds score of a PD, −100·ln(PD/(1−PD))
func Score(pd float64) float64 {
	return -100 * math.Log(pd/(1-pd))
}

// ScaledScore maps a PD onto a points scale where ceiling is the score at
// odds equal to increase and every doubling of the good/bad odds adds
// increase points.
func ScaledScore(pd, ceiling, increase float64) (float64, error) {
	if increase <= 0 || math.IsNaN(increase) {
		return 0, errors.Configuration("increase", "must be positive")
	}
	if pd <= 0 || pd >= 1 || math.IsNaN(pd) {
		return 0, errors.DegenerateBin(pdVariable, fmt.Sprintf("%v", pd), "PD must lie strictly between 0 and 1")
	}
	factor := increase / math.Ln2
	offset := ceiling - factor*math.Log(increase)
	return offset + factor*math.Log((1-pd)/pd), nil
}

// WithScaledScores returns a copy of ms whose rows carry the scaled score of
// their average PD
func WithScaledScores(ms scale.MasterScale, ceiling, increase float64) (scale.MasterScale, error) {
	out := ms.Clone()
	for i := range out.Rows {
		s, err := ScaledScore(out.Rows[i].AvgPD, ceiling, increase)
		if err != nil {
			return scale.MasterScale{}, err
		}
		out.Rows[i].ScaledScore = s
		out.Rows[i].HasScaled = true
	}
	return out, nil
}

// AveragePD is the observation-weighted mean PD of the scale
func AveragePD(ms scale.MasterScale) (float64, error) {
	n := ms.Observations()
	if n == 0 {
		return 0, errors.InvalidInput("master scale has no observations")
	}
	sum := 0.0
	for _, r := range ms.Rows {
		sum += r.AvgPD * float64(r.Total)
	}
	return sum / float64(n), nil
}
