package calibration

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"gocredit/domain/calibration"
	"gocredit/domain/core"
	"gocredit/domain/scale"
	"gocredit/internal/errors"
	"gocredit/internal/masterscale"
)

// CalibratedGrade is one master-scale grade after the target shift
type CalibratedGrade struct {
	Grade        int     `json:"grade"`
	Total        int     `json:"total"`
	PD           float64 `json:"pd"`
	Score        float64 `json:"score"`
	CalibratedPD float64 `json:"calibrated_pd"`
	OddsRatio    float64 `json:"odds_ratio"`
}

// BayesianResult holds the shifted grades and the fitted score mapping
type BayesianResult struct {
	AveragePD       float64           `json:"average_pd"`
	CentralTendency float64           `json:"central_tendency"`
	Grades          []CalibratedGrade `json:"grades"`
	Model           calibration.Model `json:"model"`
	RSquared        float64           `json:"r_squared"`
}

// Bayesian moves each grade's PD from the scale's observation-weighted
// average PD to centralTendency by Bayes' rule, then fits
// ln((1−cPD)/cPD) = a + b·score by ordinary least squares. scores overrides
// the per-grade score when non-nil and must have one entry per grade.
func Bayesian(ms scale.MasterScale, centralTendency float64, scores []float64) (*BayesianResult, error) {
	if !(centralTendency > 0 && centralTendency < 1) {
		return nil, errors.Configuration("central_tendency", fmt.Sprintf("must lie in (0,1), got %v", centralTendency))
	}
	avg, err := masterscale.AveragePD(ms)
	if err != nil {
		return nil, err
	}
	if !(avg > 0 && avg < 1) {
		return nil, errors.Configuration("average_pd", fmt.Sprintf("must lie in (0,1), got %v", avg))
	}
	if scores != nil && len(scores) != len(ms.Rows) {
		return nil, errors.InvalidColumn("score", fmt.Errorf("%w: %d scores for %d grades", core.ErrLengthMismatch, len(scores), len(ms.Rows)))
	}
	if len(ms.Rows) < 2 {
		return nil, errors.ModelFit("score", fmt.Errorf("%w: %d grades cannot fit a line", core.ErrSingularSystem, len(ms.Rows)))
	}

	res := &BayesianResult{AveragePD: avg, CentralTendency: centralTendency}
	x := make([]float64, len(ms.Rows))
	y := make([]float64, len(ms.Rows))
	for i, r := range ms.Rows {
		score := r.Score
		if scores != nil {
			score = scores[i]
		}
		cpd := ShiftPD(r.AvgPD, avg, centralTendency)
		if !(cpd > 0 && cpd < 1) {
			return nil, errors.DegenerateBin("pd", strconv.Itoa(r.Grade), "calibrated PD has no finite log-odds")
		}
		g := CalibratedGrade{
			Grade:        r.Grade,
			Total:        r.Total,
			PD:           r.AvgPD,
			Score:        score,
			CalibratedPD: cpd,
			OddsRatio:    (1 - cpd) / cpd,
		}
		res.Grades = append(res.Grades, g)
		x[i] = score
		y[i] = math.Log(g.OddsRatio)
	}
	if stat.Variance(x, nil) == 0 {
		return nil, errors.ModelFit("score", fmt.Errorf("%w: scores have zero variance", core.ErrSingularSystem))
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	res.RSquared = stat.RSquared(x, y, nil, intercept, slope)
	res.Model = calibration.Model{
		ID:        core.NewModelID(),
		Method:    calibration.MethodBayesian,
		Intercept: intercept,
		Slope:     slope,
		Formula:   bayesianFormula(intercept, slope),
	}
	return res, nil
}

// ShiftPD applies the Bayes target shift from average avg to target ct
func ShiftPD(pd, avg, ct float64) float64 {
	num := pd * ct / avg
	return num / (num + (1-pd)*(1-ct)/(1-avg))
}

// Apply evaluates the calibrated PD at every score
func Apply(m calibration.Model, scores []float64) []float64 {
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = m.PD(s)
	}
	return out
}

func bayesianFormula(intercept, slope float64) string {
	return fmt.Sprintf("1/(1+exp(%s + Score * %s))",
		strconv.FormatFloat(intercept, 'g', -1, 64),
		strconv.FormatFloat(slope, 'g', -1, 64))
}

// Description restates the formula with its symbolic form
func (r *BayesianResult) Description() string {
	return "Calibration method can be applied with: 1/(1+exp(Intercept + Score * Coefficient)) formula. Numerically: " + r.Model.Formula
}
