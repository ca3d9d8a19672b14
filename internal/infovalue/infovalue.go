// Package infovalue measures how well a variable separates defaulters from
// non-defaulters. Each distinct value is a category; numeric predictors are
// expected to be binned beforehand.
package infovalue

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"gocredit/domain/core"
	"gocredit/domain/dataset"
	"gocredit/internal/errors"
)

// Cell is the contribution of one category
type Cell struct {
	Value        string  `json:"value"`
	NonEvents    int     `json:"non_events"`
	Events       int     `json:"events"`
	NonEventPct  float64 `json:"percentx"`
	EventPct     float64 `json:"percenty"`
	Contribution float64 `json:"iv"`
}

// Result is the information value of one variable with its per-category detail
type Result struct {
	Variable string  `json:"variable"`
	IV       float64 `json:"iv"`
	Strength string  `json:"strength"`
	Cells    []Cell  `json:"cells"`
}

// IV computes Σ (px−py)·ln(px/py) over the categories of values, where px is
// the category's share of non-events and py its share of events. A category
// missing from either outcome group contributes 0.
func IV(values []string, labels []int) (Result, error) {
	if len(values) != len(labels) {
		return Result{}, errors.InvalidColumn("", fmt.Errorf("%w: %d values for %d labels", core.ErrLengthMismatch, len(values), len(labels)))
	}

	nonEvents := make(map[string]int)
	events := make(map[string]int)
	for i, v := range values {
		switch labels[i] {
		case 0:
			nonEvents[v]++
		case 1:
			events[v]++
		default:
			return Result{}, errors.InvalidColumn("", fmt.Errorf("%w: row %d holds %d", core.ErrLabelDomain, i, labels[i]))
		}
	}

	keys := make([]string, 0, len(nonEvents)+len(events))
	for k := range nonEvents {
		keys = append(keys, k)
	}
	for k := range events {
		if _, ok := nonEvents[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	good := make([]float64, len(keys))
	bad := make([]float64, len(keys))
	for i, k := range keys {
		good[i] = float64(nonEvents[k])
		bad[i] = float64(events[k])
	}
	res, err := IVFromCounts(good, bad)
	if err != nil {
		return Result{}, err
	}
	for i := range res.Cells {
		res.Cells[i].Value = keys[i]
	}
	return res, nil
}

// IVFromCounts computes IV for pre-aggregated bins given non-event (good) and
// event (bad) counts per bin.
func IVFromCounts(good, bad []float64) (Result, error) {
	if len(good) != len(bad) {
		return Result{}, errors.InvalidColumn("", fmt.Errorf("%w: %d good bins for %d bad bins", core.ErrLengthMismatch, len(good), len(bad)))
	}
	var goodTotal, badTotal float64
	for i := range good {
		if good[i] < 0 || bad[i] < 0 {
			return Result{}, errors.InvalidInput(fmt.Sprintf("bin %d has a negative count", i))
		}
		goodTotal += good[i]
		badTotal += bad[i]
	}

	res := Result{Cells: make([]Cell, len(good))}
	for i := range good {
		c := Cell{
			Value:     fmt.Sprintf("%d", i),
			NonEvents: int(good[i]),
			Events:    int(bad[i]),
		}
		if goodTotal > 0 {
			c.NonEventPct = good[i] / goodTotal
		}
		if badTotal > 0 {
			c.EventPct = bad[i] / badTotal
		}
		if c.NonEventPct > 0 && c.EventPct > 0 {
			c.Contribution = (c.NonEventPct - c.EventPct) * math.Log(c.NonEventPct/c.EventPct)
		}
		res.IV += c.Contribution
		res.Cells[i] = c
	}
	res.Strength = Strength(res.IV)
	return res, nil
}

// Strength labels an IV with the usual rule of thumb
func Strength(iv float64) string {
	switch {
	case iv < 0.02:
		return "useless"
	case iv < 0.1:
		return "weak"
	case iv < 0.3:
		return "medium"
	case iv < 0.5:
		return "strong"
	default:
		return "suspicious"
	}
}

// VariableIV is one line of an IV ranking
type VariableIV struct {
	Variable string  `json:"variable"`
	IV       float64 `json:"iv"`
	Strength string  `json:"strength"`
}

// Rank computes the IV of every non-outcome column of t, highest first with
// ties broken by name. workers bounds the fan-out (0 means unbounded).
func Rank(ctx context.Context, t *dataset.Table, outcome string, workers int) ([]VariableIV, error) {
	labels, err := t.Labels(outcome)
	if err != nil {
		return nil, errors.InvalidColumn(outcome, err)
	}

	predictors := t.Predictors(outcome)
	ranked := make([]VariableIV, len(predictors))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, name := range predictors {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			col, err := t.Column(name)
			if err != nil {
				return err
			}
			res, err := IV(col.Keys(), labels)
			if err != nil {
				return errors.Wrapf(err, "information value of %s", name)
			}
			ranked[i] = VariableIV{Variable: name, IV: res.IV, Strength: res.Strength}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].IV != ranked[j].IV {
			return ranked[i].IV > ranked[j].IV
		}
		return ranked[i].Variable < ranked[j].Variable
	})
	return ranked, nil
}

// Eliminate returns a copy of t without the predictors whose IV is below
// threshold, together with the dropped names in ranking order.
func Eliminate(ctx context.Context, t *dataset.Table, outcome string, threshold float64, workers int) (*dataset.Table, []VariableIV, error) {
	if threshold < 0 || math.IsNaN(threshold) {
		return nil, nil, errors.Configuration("iv_threshold", "must be a non-negative number")
	}
	ranked, err := Rank(ctx, t, outcome, workers)
	if err != nil {
		return nil, nil, err
	}
	var dropped []VariableIV
	var names []string
	for _, r := range ranked {
		if r.IV < threshold {
			dropped = append(dropped, r)
			names = append(names, r.Variable)
		}
	}
	return t.Drop(names...), dropped, nil
}
