package discrimination

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"gocredit/domain/core"
	"gocredit/domain/dataset"
	"gocredit/internal/errors"
	"gocredit/internal/modelfit"
)

// SubsetOptions bounds the best-subset search
type SubsetOptions struct {
	MaxSubsetSize  int     // largest predictor count tried
	MinImprovement float64 // stop when a larger size gains less than this
	Workers        int
	Fit            modelfit.Options
}

// DefaultSubsetOptions tries up to three predictors
func DefaultSubsetOptions() SubsetOptions {
	return SubsetOptions{
		MaxSubsetSize:  3,
		MinImprovement: 0.001,
		Workers:        4,
		Fit:            modelfit.DefaultOptions(),
	}
}

// SubsetModel is the winner of a best-subset search
type SubsetModel struct {
	Predictors []string        `json:"predictors"`
	Gini       float64         `json:"gini"`
	Model      *modelfit.Model `json:"model"`
	Evaluated  int             `json:"evaluated"`
	Failed     int             `json:"failed"`
}

// MaxGiniModel fits a logistic model for every predictor subset of size 1 up
// to MaxSubsetSize and keeps the one with the highest in-sample Gini. The
// search stops early once the best model of a size improves on the best so
// far by less than MinImprovement. Subsets whose fit fails are counted and
// skipped.
func MaxGiniModel(ctx context.Context, t *dataset.Table, outcome string, opts SubsetOptions) (*SubsetModel, error) {
	predictors := t.Predictors(outcome)
	if len(predictors) == 0 {
		return nil, errors.InvalidInput("no predictors to search")
	}
	if opts.MaxSubsetSize < 1 {
		return nil, errors.Configuration("max_subset_size", fmt.Sprintf("must be at least 1, got %d", opts.MaxSubsetSize))
	}
	if opts.MinImprovement < 0 {
		return nil, errors.Configuration("min_improvement", "must not be negative")
	}
	labels, err := t.Labels(outcome)
	if err != nil {
		return nil, errors.InvalidColumn(outcome, err)
	}
	maxSize := min(opts.MaxSubsetSize, len(predictors))

	var best *SubsetModel
	evaluated, failed := 0, 0
	for size := 1; size <= maxSize; size++ {
		combos := combinations(predictors, size)
		models := make([]*modelfit.Model, len(combos))
		ginis := make([]float64, len(combos))
		errs := make([]error, len(combos))

		g, gctx := errgroup.WithContext(ctx)
		if opts.Workers > 0 {
			g.SetLimit(opts.Workers)
		}
		for i, combo := range combos {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				m, err := modelfit.FitTable(t, outcome, combo, opts.Fit)
				if err != nil {
					errs[i] = err
					return nil
				}
				pd, err := m.PredictPD(t)
				if err != nil {
					errs[i] = err
					return nil
				}
				models[i] = m
				ginis[i], errs[i] = Gini(pd, labels)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		var sizeBest *SubsetModel
		for i, combo := range combos {
			evaluated++
			if errs[i] != nil {
				failed++
				continue
			}
			if sizeBest == nil || ginis[i] > sizeBest.Gini {
				sizeBest = &SubsetModel{Predictors: combo, Gini: ginis[i], Model: models[i]}
			}
		}
		if sizeBest == nil {
			continue
		}
		if best == nil {
			best = sizeBest
			continue
		}
		gain := sizeBest.Gini - best.Gini
		if gain > 0 {
			best = sizeBest
		}
		if gain < opts.MinImprovement {
			break
		}
	}

	if best == nil {
		return nil, errors.ModelFit(strings.Join(predictors, ","), fmt.Errorf("%w: none of %d subsets could be fitted", core.ErrModelFit, evaluated))
	}
	best.Evaluated = evaluated
	best.Failed = failed
	return best, nil
}

// combinations lists every size-k subset of names in lexicographic index order
func combinations(names []string, k int) [][]string {
	var out [][]string
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		combo := make([]string, k)
		for i, j := range idx {
			combo[i] = names[j]
		}
		out = append(out, combo)

		i := k - 1
		for i >= 0 && idx[i] == len(names)-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
