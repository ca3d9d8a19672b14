package calibration

import (
	"fmt"
	"math"
	"strconv"

	"gocredit/domain/calibration"
	"gocredit/domain/dataset"
	"gocredit/internal/errors"
	"gocredit/internal/modelfit"
	"gocredit/ports"
)

// Columns added to the calibration sample
const (
	ColumnModelPD         = "modelpd"
	ColumnModelScore      = "modelscore"
	ColumnCalibratedPD    = "calibrated_pd"
	ColumnCalibratedScore = "calibrated_score"
)

// RegressionResult is a calibration sample annotated with the model and
// calibrated PDs and scores
type RegressionResult struct {
	Data    *dataset.Table    `json:"-"`
	Model   calibration.Model `json:"model"`
	Fit     *modelfit.Model   `json:"fit"`
	Formula string            `json:"formula"`
}

// Regression scores sample with scorer, converts each PD to its log-odds
// model score and fits a one-variable logistic regression of the outcome on
// that score. A fit that does not converge is reported, not retried.
func Regression(scorer ports.Scorer, sample *dataset.Table, outcome string, opts modelfit.Options) (*RegressionResult, error) {
	labels, err := sample.Labels(outcome)
	if err != nil {
		return nil, errors.InvalidColumn(outcome, err)
	}
	pd, err := scorer.PredictPD(sample)
	if err != nil {
		return nil, errors.Wrap(err, "scoring calibration sample")
	}
	if len(pd) != len(labels) {
		return nil, errors.InvalidInput(fmt.Sprintf("scorer returned %d PDs for %d records", len(pd), len(labels)))
	}

	modelScore := make([]float64, len(pd))
	for i, p := range pd {
		if !(p > 0 && p < 1) {
			return nil, errors.DegenerateBin(ColumnModelPD, "record "+strconv.Itoa(i), fmt.Sprintf("PD %v has no finite log-odds", p))
		}
		modelScore[i] = math.Log(p / (1 - p))
	}

	fit, err := modelfit.Fit([]string{ColumnModelScore}, [][]float64{modelScore}, labels, opts)
	if err != nil {
		return nil, err
	}

	calScore := make([]float64, len(pd))
	calPD := make([]float64, len(pd))
	for i, s := range modelScore {
		calScore[i] = fit.LogOdds([]float64{s})
		calPD[i] = 1 / (1 + math.Exp(-calScore[i]))
	}

	data := sample
	for _, col := range []dataset.Column{
		dataset.NewNumericColumn(ColumnModelPD, pd),
		dataset.NewNumericColumn(ColumnModelScore, modelScore),
		dataset.NewNumericColumn(ColumnCalibratedPD, calPD),
		dataset.NewNumericColumn(ColumnCalibratedScore, calScore),
	} {
		if data, err = data.WithColumn(col); err != nil {
			return nil, err
		}
	}

	formula := fmt.Sprintf("modelscore formula ::: %s, calibrated_score formula ::: %s, Calibration Formula to get calibrated_pd ::: 1/(1 + exp(-calibrated_score))",
		scorer.Equation(), fit.Equation())

	return &RegressionResult{
		Data: data,
		Model: calibration.Model{
			ID:        fit.ID,
			Method:    calibration.MethodRegression,
			Intercept: -fit.Intercept,
			Slope:     -fit.Coefficients[0],
			Formula:   formula,
		},
		Fit:     fit,
		Formula: formula,
	}, nil
}
