package binning

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	bins "gocredit/domain/binning"
	"gocredit/domain/core"
	"gocredit/internal/errors"
)

// FitQuantile derives equal-frequency edges from column. Cut points sit at the
// empirical i/binCount quantiles with min and max as the outer edges; tied cut
// points collapse, so the rule may hold fewer than binCount bins.
func FitQuantile(variable string, column []float64, binCount int) (bins.Rule, error) {
	sorted, err := prepare(variable, column, binCount)
	if err != nil {
		return bins.Rule{}, err
	}

	edges := make([]float64, 0, binCount+1)
	edges = append(edges, sorted[0])
	for i := 1; i < binCount; i++ {
		edges = append(edges, stat.Quantile(float64(i)/float64(binCount), stat.Empirical, sorted, nil))
	}
	edges = append(edges, sorted[len(sorted)-1])

	return bins.NewRule(variable, bins.MethodQuantile, collapse(edges)), nil
}

// FitUniform derives equal-width edges over [min, max]
func FitUniform(variable string, column []float64, binCount int) (bins.Rule, error) {
	sorted, err := prepare(variable, column, binCount)
	if err != nil {
		return bins.Rule{}, err
	}
	return bins.NewRule(variable, bins.MethodUniform, UniformEdges(sorted[0], sorted[len(sorted)-1], binCount)), nil
}

// UniformEdges splits [lo, hi] into binCount equal-width intervals. The last
// edge is hi exactly.
func UniformEdges(lo, hi float64, binCount int) []float64 {
	if lo == hi || binCount < 1 {
		return []float64{lo, hi}
	}
	width := (hi - lo) / float64(binCount)
	edges := make([]float64, binCount+1)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[binCount] = hi
	return collapse(edges)
}

// FromEdges freezes externally supplied edges
func FromEdges(variable string, edges []float64) (bins.Rule, error) {
	if len(edges) < 2 {
		return bins.Rule{}, errors.Configuration("edges", fmt.Sprintf("variable %s needs at least two edges", variable))
	}
	for i, e := range edges {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return bins.Rule{}, errors.Configuration("edges", fmt.Sprintf("variable %s edge %d is not finite", variable, i))
		}
		if i > 0 && e <= edges[i-1] {
			return bins.Rule{}, errors.Configuration("edges", fmt.Sprintf("variable %s edges must be strictly increasing", variable))
		}
	}
	return bins.NewRule(variable, bins.MethodExplicit, edges), nil
}

// Apply assigns every value to a bin of rule. Values outside the fitted
// range land in the nearest boundary bin.
func Apply(rule bins.Rule, column []float64) ([]int, error) {
	if rule.Bins() < 1 {
		return nil, errors.Configuration("rule", fmt.Sprintf("variable %s has no bins", rule.Variable))
	}
	out := make([]int, len(column))
	for i, v := range column {
		if math.IsNaN(v) {
			return nil, errors.InvalidColumn(rule.Variable, fmt.Errorf("%w: missing value at row %d", core.ErrNonNumeric, i))
		}
		out[i] = rule.Index(v)
	}
	return out, nil
}

func prepare(variable string, column []float64, binCount int) ([]float64, error) {
	if binCount < 1 {
		return nil, errors.Configuration("bin_number", fmt.Sprintf("must be at least 1, got %d", binCount))
	}
	if len(column) == 0 {
		return nil, errors.InvalidColumn(variable, fmt.Errorf("%w: column is empty", core.ErrInvalidColumn))
	}
	sorted := make([]float64, len(column))
	for i, v := range column {
		if math.IsNaN(v) {
			return nil, errors.InvalidColumn(variable, fmt.Errorf("%w: missing value at row %d", core.ErrNonNumeric, i))
		}
		sorted[i] = v
	}
	sort.Float64s(sorted)
	return sorted, nil
}

// collapse drops repeated edges. A constant column keeps a single closed bin.
func collapse(edges []float64) []float64 {
	out := edges[:1:1]
	for _, e := range edges[1:] {
		if e > out[len(out)-1] {
			out = append(out, e)
		}
	}
	if len(out) == 1 {
		out = append(out, out[0])
	}
	return out
}
