package binning

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	bins "gocredit/domain/binning"
	"gocredit/domain/core"
	"gocredit/domain/dataset"
	"gocredit/internal/errors"
)

// Skipped records a predictor that could not be binned and why
type Skipped struct {
	Variable string
	Err      error
}

// WOEModel holds the frozen rules and WOE lookups fitted on a training table
type WOEModel struct {
	Outcome    string
	Rules      bins.RuleSet
	Tables     map[string]bins.WOETable
	Statistics map[string][]bins.Statistics
	Skipped    []Skipped
}

// Variables returns the fitted predictors in name order
func (m *WOEModel) Variables() []string {
	names := make([]string, 0, len(m.Rules))
	for name := range m.Rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type fitOutcome struct {
	variable string
	rule     bins.Rule
	stats    []bins.Statistics
	table    bins.WOETable
	err      error
}

// FitWOE fits a quantile rule and WOE table for every predictor of train.
// Predictors that cannot be coerced or binned are reported in Skipped rather
// than dropped silently; workers bounds the fan-out (0 means unbounded).
func FitWOE(ctx context.Context, train *dataset.Table, outcome string, binCount, workers int) (*WOEModel, error) {
	if binCount < 1 {
		return nil, errors.Configuration("bin_number", fmt.Sprintf("must be at least 1, got %d", binCount))
	}
	labels, err := train.Labels(outcome)
	if err != nil {
		return nil, errors.InvalidColumn(outcome, err)
	}

	predictors := train.Predictors(outcome)
	results := make([]fitOutcome, len(predictors))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, name := range predictors {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = fitVariable(train, name, labels, binCount)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	model := &WOEModel{
		Outcome:    outcome,
		Rules:      make(bins.RuleSet, len(predictors)),
		Tables:     make(map[string]bins.WOETable, len(predictors)),
		Statistics: make(map[string][]bins.Statistics, len(predictors)),
	}
	for _, r := range results {
		if r.err != nil {
			model.Skipped = append(model.Skipped, Skipped{Variable: r.variable, Err: r.err})
			continue
		}
		model.Rules[r.variable] = r.rule
		model.Tables[r.variable] = r.table
		model.Statistics[r.variable] = r.stats
	}
	return model, nil
}

func fitVariable(t *dataset.Table, name string, labels []int, binCount int) fitOutcome {
	res := fitOutcome{variable: name}
	col, err := t.Column(name)
	if err != nil {
		res.err = err
		return res
	}
	values, err := CoerceNumeric(col)
	if err != nil {
		res.err = err
		return res
	}
	if res.rule, err = FitQuantile(name, values, binCount); err != nil {
		res.err = err
		return res
	}
	assigned, err := Apply(res.rule, values)
	if err != nil {
		res.err = err
		return res
	}
	res.stats, res.table, res.err = ComputeWOE(name, assigned, labels, res.rule)
	return res
}

// Transform returns a new table holding the outcome (when present) and one
// WOE column per fitted predictor. Values falling in a bin unseen during
// fitting get a WOE of 0.
func (m *WOEModel) Transform(t *dataset.Table) (*dataset.Table, error) {
	var cols []dataset.Column
	if t.Has(m.Outcome) {
		c, err := t.Column(m.Outcome)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}

	for _, name := range m.Variables() {
		if !t.Has(name) {
			return nil, errors.InvalidColumn(name, core.ErrMissingColumn)
		}
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		values, err := CoerceNumeric(col)
		if err != nil {
			return nil, err
		}
		assigned, err := Apply(m.Rules[name], values)
		if err != nil {
			return nil, err
		}
		woe := make([]float64, len(assigned))
		lookup := m.Tables[name]
		for i, b := range assigned {
			woe[i] = lookup[b]
		}
		cols = append(cols, dataset.NewNumericColumn(name, woe))
	}
	return dataset.NewTable(cols...)
}
