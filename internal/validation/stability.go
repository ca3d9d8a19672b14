package validation

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	bins "gocredit/domain/binning"
	"gocredit/domain/core"
	"gocredit/domain/dataset"
	"gocredit/domain/verdict"
	"gocredit/internal/binning"
	"gocredit/internal/errors"
)

// Thresholds grade a PSI: below Green is stable, below Yellow needs
// attention, anything else is a significant shift
type Thresholds struct {
	Green  float64 `json:"green" yaml:"green"`
	Yellow float64 `json:"yellow" yaml:"yellow"`
}

// DefaultThresholds returns the conventional 10 / 25 cut-offs
func DefaultThresholds() Thresholds {
	return Thresholds{Green: 10, Yellow: 25}
}

// Validate checks 0 < Green ≤ Yellow
func (t Thresholds) Validate() error {
	if !(t.Green > 0 && t.Green <= t.Yellow) {
		return errors.Configuration("psi_thresholds", fmt.Sprintf("need 0 < green <= yellow, got %v / %v", t.Green, t.Yellow))
	}
	return nil
}

// Classify grades a PSI value
func (t Thresholds) Classify(psi float64) verdict.Verdict {
	switch {
	case psi < t.Green:
		return verdict.Green
	case psi < t.Yellow:
		return verdict.Yellow
	default:
		return verdict.Red
	}
}

// StabilityBin compares one bin or category across the two datasets
type StabilityBin struct {
	Label        string  `json:"label"`
	MainShare    float64 `json:"main_share"`
	SecondShare  float64 `json:"second_share"`
	Contribution float64 `json:"contribution"`
}

// Stability is the PSI or SSI of one variable
type Stability struct {
	verdict.TestResult
	Variable string         `json:"variable"`
	Bins     []StabilityBin `json:"bins"`
}

// PSI bins both samples with the same frozen rule and returns
// |Σ (x−y)·ln(x/y)|·100 over bins, x and y being the main and second shares.
// Bins empty in either sample contribute 0.
func PSI(rule bins.Rule, main, second []float64, th Thresholds) (Stability, error) {
	if err := th.Validate(); err != nil {
		return Stability{}, err
	}
	a, err := binning.Apply(rule, main)
	if err != nil {
		return Stability{}, err
	}
	b, err := binning.Apply(rule, second)
	if err != nil {
		return Stability{}, err
	}
	labels := rule.Labels()
	keyA := make([]string, len(a))
	for i, v := range a {
		keyA[i] = labels[v]
	}
	keyB := make([]string, len(b))
	for i, v := range b {
		keyB[i] = labels[v]
	}

	s, err := index(rule.Variable, keyA, keyB, labels)
	if err != nil {
		return Stability{}, err
	}
	s.Kind = verdict.KindPSI
	s.Statistic = math.Abs(s.Statistic) * 100
	s.Threshold = th.Green
	s.Verdict = th.Classify(s.Statistic)
	return s, nil
}

// SSI compares raw category shares, Σ (x−y)·ln(x/y), unscaled. Categories
// absent from either sample contribute 0.
func SSI(variable string, main, second []string) (Stability, error) {
	s, err := index(variable, main, second, nil)
	if err != nil {
		return Stability{}, err
	}
	s.Kind = verdict.KindSSI
	s.Verdict = verdict.Informational
	return s, nil
}

// index outer-joins the category shares of a and b. order fixes the row
// order; categories not in order follow in sorted order.
func index(variable string, a, b []string, order []string) (Stability, error) {
	if len(a) == 0 || len(b) == 0 {
		return Stability{}, errors.InvalidColumn(variable, fmt.Errorf("%w: both samples must be non-empty", core.ErrInvalidColumn))
	}
	countA := make(map[string]int)
	for _, k := range a {
		countA[k]++
	}
	countB := make(map[string]int)
	for _, k := range b {
		countB[k]++
	}

	seen := make(map[string]bool)
	var keys []string
	for _, k := range order {
		if countA[k] > 0 || countB[k] > 0 {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for _, m := range []map[string]int{countA, countB} {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				rest = append(rest, k)
			}
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	s := Stability{
		TestResult: verdict.NewResult(verdict.KindSSI, variable),
		Variable:   variable,
		Bins:       make([]StabilityBin, 0, len(keys)),
	}
	for _, k := range keys {
		bin := StabilityBin{
			Label:       k,
			MainShare:   float64(countA[k]) / float64(len(a)),
			SecondShare: float64(countB[k]) / float64(len(b)),
		}
		if bin.MainShare > 0 && bin.SecondShare > 0 {
			bin.Contribution = (bin.MainShare - bin.SecondShare) * math.Log(bin.MainShare/bin.SecondShare)
		}
		s.Statistic += bin.Contribution
		s.Bins = append(s.Bins, bin)
	}
	return s, nil
}

// BinSpec chooses how PSI bins each variable: explicit Edges when present,
// otherwise Count equal-width bins fitted on the main dataset
type BinSpec struct {
	Count int
	Edges map[string][]float64
}

func (spec BinSpec) rule(variable string, main []float64) (bins.Rule, error) {
	if edges, ok := spec.Edges[variable]; ok {
		return binning.FromEdges(variable, edges)
	}
	return binning.FitUniform(variable, main, spec.Count)
}

// PSIDataset computes the PSI of every non-outcome column of main against
// the same column of second, sorted by variable name.
func PSIDataset(ctx context.Context, main, second *dataset.Table, outcome string, spec BinSpec, th Thresholds, workers int) ([]Stability, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	return perVariable(ctx, main, second, outcome, workers, func(name string, a, b dataset.Column) (Stability, error) {
		x, err := binning.CoerceNumeric(a)
		if err != nil {
			return Stability{}, err
		}
		y, err := binning.CoerceNumeric(b)
		if err != nil {
			return Stability{}, err
		}
		rule, err := spec.rule(name, x)
		if err != nil {
			return Stability{}, err
		}
		return PSI(rule, x, y, th)
	})
}

// SSIDataset computes the SSI of every non-outcome column, sorted by
// variable name.
func SSIDataset(ctx context.Context, main, second *dataset.Table, outcome string, workers int) ([]Stability, error) {
	return perVariable(ctx, main, second, outcome, workers, func(name string, a, b dataset.Column) (Stability, error) {
		return SSI(name, a.Keys(), b.Keys())
	})
}

func perVariable(ctx context.Context, main, second *dataset.Table, outcome string, workers int,
	fn func(name string, a, b dataset.Column) (Stability, error)) ([]Stability, error) {
	predictors := main.Predictors(outcome)
	out := make([]Stability, len(predictors))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, name := range predictors {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, err := main.Column(name)
			if err != nil {
				return errors.InvalidColumn(name, err)
			}
			b, err := second.Column(name)
			if err != nil {
				return errors.InvalidColumn(name, err)
			}
			if out[i], err = fn(name, a, b); err != nil {
				return errors.Wrapf(err, "stability of %s", name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Variable < out[j].Variable })
	return out, nil
}
