package app

import (
	"context"
	"strings"
	"time"

	"gocredit/domain/core"
	"gocredit/domain/dataset"
	"gocredit/domain/scale"
	"gocredit/internal"
	"gocredit/internal/binning"
	"gocredit/internal/config"
	"gocredit/internal/discrimination"
	"gocredit/internal/errors"
	"gocredit/internal/infovalue"
	"gocredit/internal/masterscale"
	"gocredit/internal/modelfit"
	"gocredit/internal/sampling"
	"gocredit/ports"
)

// DevelopmentService runs the model development steps on a loaded table
type DevelopmentService struct {
	cfg *config.Config
	log *internal.Logger
}

// NewDevelopmentService creates a development service
func NewDevelopmentService(cfg *config.Config, log *internal.Logger) *DevelopmentService {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &DevelopmentService{cfg: cfg, log: log.With("service", "development")}
}

// MasterScale builds the grade table from a PD column and attaches scaled
// scores using the configured ceiling and increase
func (s *DevelopmentService) MasterScale(t *dataset.Table, outcome, pdColumn string) (scale.MasterScale, error) {
	ms, err := masterscale.BuildFromTable(t, outcome, pdColumn, s.cfg.Scale.BinNumber)
	if err != nil {
		return scale.MasterScale{}, err
	}
	ms, err = masterscale.WithScaledScores(ms, s.cfg.Scale.CeilingScore, s.cfg.Scale.Increase)
	if err != nil {
		return scale.MasterScale{}, err
	}
	s.log.Info("master scale: %d grades over %d observations, %d bads", len(ms.Rows), ms.Observations(), ms.Bads())
	return ms, nil
}

// InformationValue ranks every predictor by IV. Numeric predictors are
// first cut into the configured number of quantile bins.
func (s *DevelopmentService) InformationValue(ctx context.Context, t *dataset.Table, outcome string) ([]infovalue.VariableIV, error) {
	binned, err := binning.Discretize(t, outcome, s.cfg.Scale.BinNumber)
	if err != nil {
		return nil, err
	}
	ranked, err := infovalue.Rank(ctx, binned, outcome, s.cfg.Runtime.Workers)
	if err != nil {
		return nil, err
	}
	for _, v := range ranked {
		s.log.Debug("iv %s = %.4f (%s)", v.Variable, v.IV, v.Strength)
	}
	return ranked, nil
}

// WOEResult is a fitted WOE model with the train and test tables transformed
type WOEResult struct {
	Model *binning.WOEModel
	Train *dataset.Table
	Test  *dataset.Table
}

// WOE splits t with the configured seed and ratio, fits WOE bins on the
// training part and transforms both parts with the frozen rules
func (s *DevelopmentService) WOE(ctx context.Context, t *dataset.Table, outcome string) (*WOEResult, error) {
	train, test, err := sampling.TrainTestSplit(t, s.cfg.Sampling.SeedValue, s.cfg.Sampling.Ratio)
	if err != nil {
		return nil, err
	}
	model, err := binning.FitWOE(ctx, train, outcome, s.cfg.Scale.BinNumber, s.cfg.Runtime.Workers)
	if err != nil {
		return nil, err
	}
	for _, sk := range model.Skipped {
		s.log.Warn("woe skipped %s: %v", sk.Variable, sk.Err)
	}
	res := &WOEResult{Model: model}
	if res.Train, err = model.Transform(train); err != nil {
		return nil, errors.Wrap(err, "transforming train")
	}
	if res.Test, err = model.Transform(test); err != nil {
		return nil, errors.Wrap(err, "transforming test")
	}
	s.log.Info("woe fitted on %d variables, %d train / %d test records", len(model.Rules), train.Len(), test.Len())
	return res, nil
}

// DiscriminationResult bundles the Gini analyses of one table
type DiscriminationResult struct {
	Univariate []discrimination.VariableGini
	Skipped    []discrimination.Skipped
	KFold      *discrimination.KFoldResult
	Best       *discrimination.SubsetModel
}

// Discrimination scores each predictor alone, cross-validates the full
// numeric model and searches for the best predictor subset
func (s *DevelopmentService) Discrimination(ctx context.Context, t *dataset.Table, outcome string, maxSubset int) (*DiscriminationResult, error) {
	start := time.Now()
	opts := modelfit.DefaultOptions()

	res := &DiscriminationResult{}
	var err error
	res.Univariate, res.Skipped, err = discrimination.UnivariateGiniDataset(ctx, t, outcome, opts, s.cfg.Runtime.Workers)
	if err != nil {
		return nil, err
	}
	for _, sk := range res.Skipped {
		s.log.Warn("gini skipped %s: %v", sk.Variable, sk.Err)
	}

	res.KFold, err = discrimination.KFoldGini(ctx, t, outcome, s.cfg.Sampling.Folds, s.cfg.Sampling.SeedValue, opts)
	if err != nil {
		return nil, err
	}

	if maxSubset > 0 {
		subset := discrimination.DefaultSubsetOptions()
		subset.MaxSubsetSize = maxSubset
		subset.Workers = s.cfg.Runtime.Workers
		subset.Fit = opts
		res.Best, err = discrimination.MaxGiniModel(ctx, t, outcome, subset)
		if err != nil {
			if !core.IsModelFitError(err) {
				return nil, err
			}
			s.log.Warn("subset search found no model: %v", err)
		}
	}
	s.log.Info("discrimination done in %s", time.Since(start).Round(time.Millisecond))
	return res, nil
}

// Report renders the discrimination analyses
func (r *DiscriminationResult) Report() ports.Report {
	rep := ports.Report{Title: "Discrimination", Sections: []ports.Section{GiniSection(r.Univariate), KFoldSection(r.KFold)}}
	if r.Best != nil {
		rep.Sections = append(rep.Sections, ports.Section{
			Name:   "Best subset",
			Header: []string{"predictors", "gini", "evaluated", "failed", "equation"},
			Rows: [][]string{{strings.Join(r.Best.Predictors, ", "), num(r.Best.Gini), itoa(r.Best.Evaluated),
				itoa(r.Best.Failed), r.Best.Model.Equation()}},
		})
	}
	return rep
}
