package app

import (
	"gocredit/domain/dataset"
	"gocredit/domain/scale"
	"gocredit/internal"
	"gocredit/internal/calibration"
	"gocredit/internal/config"
	"gocredit/internal/errors"
	"gocredit/internal/modelfit"
	"gocredit/ports"
)

// CalibrationService moves model output onto a target default rate
type CalibrationService struct {
	cfg *config.Config
	log *internal.Logger
}

// NewCalibrationService creates a calibration service
func NewCalibrationService(cfg *config.Config, log *internal.Logger) *CalibrationService {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &CalibrationService{cfg: cfg, log: log.With("service", "calibration")}
}

// Bayesian shifts the master scale grades to the central tendency, which
// falls back to the configured value when zero
func (s *CalibrationService) Bayesian(ms scale.MasterScale, centralTendency float64) (*calibration.BayesianResult, error) {
	if centralTendency == 0 {
		centralTendency = s.cfg.Validation.CentralTendency
	}
	res, err := calibration.Bayesian(ms, centralTendency, nil)
	if err != nil {
		return nil, err
	}
	s.log.Info("bayesian calibration from %.4f to %.4f, r² %.4f", res.AveragePD, res.CentralTendency, res.RSquared)
	s.log.Debug("%s", res.Description())
	return res, nil
}

// Regression fits a logistic model of outcome on the given predictors of
// train, then recalibrates its output on sample
func (s *CalibrationService) Regression(train, sample *dataset.Table, outcome string, predictors []string) (*calibration.RegressionResult, error) {
	if len(predictors) == 0 {
		predictors = train.Predictors(outcome)
	}
	model, err := modelfit.FitTable(train, outcome, predictors, modelfit.DefaultOptions())
	if err != nil {
		return nil, errors.Wrap(err, "fitting development model")
	}
	s.log.Debug("development model: %s", model.Formula())

	res, err := calibration.Regression(model, sample, outcome, modelfit.DefaultOptions())
	if err != nil {
		return nil, err
	}
	s.log.Info("regression calibration: intercept %.4f slope %.4f", res.Model.Intercept, res.Model.Slope)
	return res, nil
}

// RegressionReport renders the calibrated sample and the formula
func RegressionReport(res *calibration.RegressionResult) (ports.Report, error) {
	pd, err := res.Data.Numeric(calibration.ColumnModelPD)
	if err != nil {
		return ports.Report{}, err
	}
	cal, err := res.Data.Numeric(calibration.ColumnCalibratedPD)
	if err != nil {
		return ports.Report{}, err
	}
	score, err := res.Data.Numeric(calibration.ColumnCalibratedScore)
	if err != nil {
		return ports.Report{}, err
	}
	records := ports.Section{Name: "Calibrated sample", Header: []string{"record", "model_pd", "calibrated_score", "calibrated_pd"}}
	for i := range pd {
		records.Rows = append(records.Rows, []string{itoa(i + 1), num(pd[i]), num(score[i]), num(cal[i])})
	}
	return ports.Report{
		Title: "Regression calibration",
		Sections: []ports.Section{
			{Name: "Formula", Header: []string{"formula"}, Rows: [][]string{{res.Formula}}},
			records,
		},
	}, nil
}

// BayesianReport renders a Bayesian calibration
func BayesianReport(res *calibration.BayesianResult) ports.Report {
	return ports.Report{Title: "Bayesian calibration", Sections: BayesianSection(res)}
}
