// Package discrimination measures how well scores rank defaulters above
// non-defaulters, as Gini = 2·AUC − 1.
package discrimination

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"gocredit/domain/core"
	"gocredit/domain/dataset"
	"gocredit/internal/binning"
	"gocredit/internal/errors"
	"gocredit/internal/modelfit"
)

// AUC is the probability that a random event outscores a random non-event,
// computed from average ranks so tied scores count one half
func AUC(scores []float64, labels []int) (float64, error) {
	if len(scores) != len(labels) {
		return 0, errors.InvalidColumn("score", fmt.Errorf("%w: %d scores for %d labels", core.ErrLengthMismatch, len(scores), len(labels)))
	}
	order := make([]int, len(scores))
	for i := range order {
		if math.IsNaN(scores[i]) {
			return 0, errors.InvalidColumn("score", fmt.Errorf("%w: row %d is missing", core.ErrNonNumeric, i))
		}
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	var rankSum float64
	var events, nonEvents int
	for start := 0; start < len(order); {
		end := start + 1
		for end < len(order) && scores[order[end]] == scores[order[start]] {
			end++
		}
		// ranks start+1..end share their mean
		rank := float64(start+1+end) / 2
		for _, idx := range order[start:end] {
			switch labels[idx] {
			case 1:
				rankSum += rank
				events++
			case 0:
				nonEvents++
			default:
				return 0, errors.InvalidColumn("default_flag", fmt.Errorf("%w: row %d holds %d", core.ErrLabelDomain, idx, labels[idx]))
			}
		}
		start = end
	}
	if events == 0 || nonEvents == 0 {
		return 0, errors.DegenerateBin("default_flag", "all", "both events and non-events are required")
	}
	e := float64(events)
	return (rankSum - e*(e+1)/2) / (e * float64(nonEvents)), nil
}

// Gini is 2·AUC − 1
func Gini(scores []float64, labels []int) (float64, error) {
	auc, err := AUC(scores, labels)
	if err != nil {
		return 0, err
	}
	return 2*auc - 1, nil
}

// VariableGini is the in-sample Gini of a one-variable logistic model
type VariableGini struct {
	Variable string  `json:"variable"`
	Gini     float64 `json:"gini"`
}

// Skipped records a variable that could not be scored and why
type Skipped struct {
	Variable string
	Err      error
}

// UnivariateGini fits outcome on variable alone and returns the Gini of the
// fitted PDs on the same table
func UnivariateGini(t *dataset.Table, outcome, variable string, opts modelfit.Options) (float64, error) {
	m, err := modelfit.FitTable(t, outcome, []string{variable}, opts)
	if err != nil {
		return 0, err
	}
	pd, err := m.PredictPD(t)
	if err != nil {
		return 0, err
	}
	labels, err := t.Labels(outcome)
	if err != nil {
		return 0, errors.InvalidColumn(outcome, err)
	}
	return Gini(pd, labels)
}

// UnivariateGiniDataset scores every non-outcome column, highest Gini first
// with ties broken by name. Variables whose fit fails are returned in skipped.
func UnivariateGiniDataset(ctx context.Context, t *dataset.Table, outcome string, opts modelfit.Options, workers int) ([]VariableGini, []Skipped, error) {
	if _, err := t.Labels(outcome); err != nil {
		return nil, nil, errors.InvalidColumn(outcome, err)
	}
	predictors := t.Predictors(outcome)
	ginis := make([]float64, len(predictors))
	errs := make([]error, len(predictors))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, name := range predictors {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ginis[i], errs[i] = UnivariateGini(t, outcome, name, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var ranked []VariableGini
	var skipped []Skipped
	for i, name := range predictors {
		if errs[i] != nil {
			skipped = append(skipped, Skipped{Variable: name, Err: errs[i]})
			continue
		}
		ranked = append(ranked, VariableGini{Variable: name, Gini: ginis[i]})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Gini != ranked[j].Gini {
			return ranked[i].Gini > ranked[j].Gini
		}
		return ranked[i].Variable < ranked[j].Variable
	})
	return ranked, skipped, nil
}

// PeriodGini is the Gini of one time period
type PeriodGini struct {
	Period string  `json:"period"`
	Count  int     `json:"count"`
	Gini   float64 `json:"gini"`
}

// TimeSeries holds per-period Ginis in order of first appearance and their
// unweighted mean
type TimeSeries struct {
	Periods []PeriodGini `json:"periods"`
	Average float64      `json:"average"`
}

// TimeSeriesGini computes the Gini of the PD column within each distinct
// value of the time column
func TimeSeriesGini(t *dataset.Table, outcome, pdColumn, timeColumn string) (TimeSeries, error) {
	labels, err := t.Labels(outcome)
	if err != nil {
		return TimeSeries{}, errors.InvalidColumn(outcome, err)
	}
	pdCol, err := t.Column(pdColumn)
	if err != nil {
		return TimeSeries{}, errors.InvalidColumn(pdColumn, err)
	}
	pd, err := binning.CoerceNumeric(pdCol)
	if err != nil {
		return TimeSeries{}, err
	}
	timeCol, err := t.Column(timeColumn)
	if err != nil {
		return TimeSeries{}, errors.InvalidColumn(timeColumn, err)
	}

	var order []string
	groups := make(map[string][]int)
	for i, key := range timeCol.Keys() {
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	var ts TimeSeries
	for _, period := range order {
		rows := groups[period]
		s := make([]float64, len(rows))
		l := make([]int, len(rows))
		for j, r := range rows {
			s[j] = pd[r]
			l[j] = labels[r]
		}
		g, err := Gini(s, l)
		if err != nil {
			return TimeSeries{}, errors.Wrapf(err, "period %s", period)
		}
		ts.Periods = append(ts.Periods, PeriodGini{Period: period, Count: len(rows), Gini: g})
		ts.Average += g
	}
	if len(ts.Periods) > 0 {
		ts.Average /= float64(len(ts.Periods))
	}
	return ts, nil
}
