// Package modelfit fits unregularised logistic regressions by iteratively
// reweighted least squares. It backs calibration and discrimination only; it
// is not a general model-training facility.
package modelfit

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"gocredit/domain/core"
	"gocredit/domain/dataset"
	"gocredit/internal/binning"
	"gocredit/internal/errors"
)

// Options bounds the IRLS iteration
type Options struct {
	MaxIterations int
	Tolerance     float64 // largest absolute coefficient change at convergence
}

// DefaultOptions returns 100 iterations with a 1e-8 tolerance
func DefaultOptions() Options {
	return Options{MaxIterations: 100, Tolerance: 1e-8}
}

// Model is a fitted logistic regression, log-odds = Intercept + Σ Coefficients·x
type Model struct {
	ID            core.ModelID `json:"id"`
	Predictors    []string     `json:"predictors"`
	Intercept     float64      `json:"intercept"`
	Coefficients  []float64    `json:"coefficients"`
	Iterations    int          `json:"iterations"`
	LogLikelihood float64      `json:"log_likelihood"`
}

// Fit regresses labels on the given predictor columns. columns[j] holds the
// values of names[j].
func Fit(names []string, columns [][]float64, labels []int, opts Options) (*Model, error) {
	subject := strings.Join(names, ",")
	if len(names) != len(columns) {
		return nil, errors.Configuration("predictors", fmt.Sprintf("%d names for %d columns", len(names), len(columns)))
	}
	if opts.MaxIterations < 1 || opts.Tolerance <= 0 {
		return nil, errors.Configuration("fit_options", "iterations and tolerance must be positive")
	}
	n := len(labels)
	for j, c := range columns {
		if len(c) != n {
			return nil, errors.InvalidColumn(names[j], fmt.Errorf("%w: %d values for %d labels", core.ErrLengthMismatch, len(c), n))
		}
	}
	p := len(columns) + 1
	if n < p {
		return nil, errors.ModelFit(subject, fmt.Errorf("%w: %d records for %d parameters", core.ErrSingularSystem, n, p))
	}

	x := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		if labels[i] != 0 && labels[i] != 1 {
			return nil, errors.InvalidColumn(subject, fmt.Errorf("%w: row %d holds %d", core.ErrLabelDomain, i, labels[i]))
		}
		y.SetVec(i, float64(labels[i]))
		x.Set(i, 0, 1)
		for j, c := range columns {
			if math.IsNaN(c[i]) || math.IsInf(c[i], 0) {
				return nil, errors.InvalidColumn(names[j], fmt.Errorf("%w: row %d is not finite", core.ErrNonNumeric, i))
			}
			x.Set(i, j+1, c[i])
		}
	}

	beta := mat.NewVecDense(p, nil)
	eta := mat.NewVecDense(n, nil)
	resid := mat.NewVecDense(n, nil)
	weighted := mat.NewDense(n, p, nil)
	var grad, step mat.VecDense
	var chol mat.Cholesky

	for iter := 1; iter <= opts.MaxIterations; iter++ {
		eta.MulVec(x, beta)
		for i := 0; i < n; i++ {
			mu := sigmoid(eta.AtVec(i))
			w := mu * (1 - mu)
			resid.SetVec(i, y.AtVec(i)-mu)
			for j := 0; j < p; j++ {
				weighted.Set(i, j, w*x.At(i, j))
			}
		}

		// H = Xᵀ W X, g = Xᵀ (y − μ)
		var h mat.Dense
		h.Mul(x.T(), weighted)
		grad.MulVec(x.T(), resid)

		if ok := chol.Factorize(symmetric(&h)); !ok {
			return nil, errors.ModelFit(subject, core.ErrSingularSystem)
		}
		if err := chol.SolveVecTo(&step, &grad); err != nil {
			return nil, errors.ModelFit(subject, fmt.Errorf("%w: %v", core.ErrSingularSystem, err))
		}
		beta.AddVec(beta, &step)

		if mat.Norm(&step, math.Inf(1)) < opts.Tolerance {
			return newModel(names, beta, iter, logLikelihood(x, y, beta)), nil
		}
	}
	return nil, errors.ModelFit(subject, fmt.Errorf("%w after %d iterations", core.ErrNotConverged, opts.MaxIterations))
}

// FitTable fits outcome on the named predictors of t. Text predictors are
// coerced to numbers.
func FitTable(t *dataset.Table, outcome string, predictors []string, opts Options) (*Model, error) {
	labels, err := t.Labels(outcome)
	if err != nil {
		return nil, errors.InvalidColumn(outcome, err)
	}
	columns, err := numericColumns(t, predictors)
	if err != nil {
		return nil, err
	}
	return Fit(predictors, columns, labels, opts)
}

func newModel(names []string, beta *mat.VecDense, iterations int, ll float64) *Model {
	coef := make([]float64, len(names))
	for j := range coef {
		coef[j] = beta.AtVec(j + 1)
	}
	return &Model{
		ID:            core.NewModelID(),
		Predictors:    append([]string(nil), names...),
		Intercept:     beta.AtVec(0),
		Coefficients:  coef,
		Iterations:    iterations,
		LogLikelihood: ll,
	}
}

// LogOdds evaluates the linear predictor for one record
func (m *Model) LogOdds(row []float64) float64 {
	z := m.Intercept
	for j, c := range m.Coefficients {
		z += c * row[j]
	}
	return z
}

// PredictColumns returns the PD of every record given predictor columns in
// model order
func (m *Model) PredictColumns(columns [][]float64) []float64 {
	if len(columns) == 0 {
		return nil
	}
	out := make([]float64, len(columns[0]))
	row := make([]float64, len(columns))
	for i := range out {
		for j := range columns {
			row[j] = columns[j][i]
		}
		out[i] = sigmoid(m.LogOdds(row))
	}
	return out
}

// PredictPD scores every record of t
func (m *Model) PredictPD(t *dataset.Table) ([]float64, error) {
	columns, err := numericColumns(t, m.Predictors)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		out := make([]float64, t.Len())
		for i := range out {
			out[i] = sigmoid(m.Intercept)
		}
		return out, nil
	}
	return m.PredictColumns(columns), nil
}

// Equation renders the linear predictor, coefficients to seven decimals
func (m *Model) Equation() string {
	var b strings.Builder
	for j, name := range m.Predictors {
		fmt.Fprintf(&b, "%.7f*%s + ", m.Coefficients[j], name)
	}
	fmt.Fprintf(&b, "%.7f", m.Intercept)
	return b.String()
}

// Formula renders the PD as a function of the predictors
func (m *Model) Formula() string {
	return "1/(1 + exp(-(" + m.Equation() + ")))"
}

func numericColumns(t *dataset.Table, names []string) ([][]float64, error) {
	columns := make([][]float64, len(names))
	for j, name := range names {
		col, err := t.Column(name)
		if err != nil {
			return nil, errors.InvalidColumn(name, err)
		}
		if columns[j], err = binning.CoerceNumeric(col); err != nil {
			return nil, err
		}
	}
	return columns, nil
}

func symmetric(a *mat.Dense) *mat.SymDense {
	r, _ := a.Dims()
	s := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			s.SetSym(i, j, (a.At(i, j)+a.At(j, i))/2)
		}
	}
	return s
}

func logLikelihood(x *mat.Dense, y, beta *mat.VecDense) float64 {
	var eta mat.VecDense
	eta.MulVec(x, beta)
	ll := 0.0
	for i := 0; i < eta.Len(); i++ {
		z := eta.AtVec(i)
		// log(1+e^z) computed stably
		softplus := math.Max(z, 0) + math.Log1p(math.Exp(-math.Abs(z)))
		ll += y.AtVec(i)*z - softplus
	}
	return ll
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
