package discrimination

import (
	"context"
	"fmt"

	"gocredit/domain/dataset"
	"gocredit/internal/errors"
	"gocredit/internal/modelfit"
	"gocredit/internal/sampling"
)

// FoldGini is the train and test Gini of one cross-validation fold
type FoldGini struct {
	Fold  int     `json:"fold"`
	Train float64 `json:"gini_train"`
	Test  float64 `json:"gini_test"`
}

// KFoldResult lists every fold and the averages over folds
type KFoldResult struct {
	Predictors   []string   `json:"predictors"`
	Folds        []FoldGini `json:"folds"`
	AverageTrain float64    `json:"average_train"`
	AverageTest  float64    `json:"average_test"`
}

// KFoldGini cross-validates a logistic model of outcome on every numeric
// column of t over stratified folds. Text columns are left out.
func KFoldGini(ctx context.Context, t *dataset.Table, outcome string, folds int, seed int64, opts modelfit.Options) (*KFoldResult, error) {
	labels, err := t.Labels(outcome)
	if err != nil {
		return nil, errors.InvalidColumn(outcome, err)
	}
	var predictors []string
	for _, name := range t.Predictors(outcome) {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		if col.Kind == dataset.KindNumeric {
			predictors = append(predictors, name)
		}
	}
	if len(predictors) == 0 {
		return nil, errors.InvalidInput("no numeric predictors to cross-validate")
	}

	parts, err := sampling.StratifiedFolds(labels, folds, seed)
	if err != nil {
		return nil, err
	}

	res := &KFoldResult{Predictors: predictors}
	for k, testRows := range parts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		trainRows := sampling.Complement(t.Len(), testRows)
		train, err := t.Select(trainRows)
		if err != nil {
			return nil, err
		}
		test, err := t.Select(testRows)
		if err != nil {
			return nil, err
		}

		m, err := modelfit.FitTable(train, outcome, predictors, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d", k+1)
		}
		fg := FoldGini{Fold: k + 1}
		if fg.Train, err = scoreGini(m, train, outcome); err != nil {
			return nil, errors.Wrapf(err, "fold %d train", k+1)
		}
		if fg.Test, err = scoreGini(m, test, outcome); err != nil {
			return nil, errors.Wrapf(err, "fold %d test", k+1)
		}
		res.Folds = append(res.Folds, fg)
		res.AverageTrain += fg.Train
		res.AverageTest += fg.Test
	}
	res.AverageTrain /= float64(len(res.Folds))
	res.AverageTest /= float64(len(res.Folds))
	return res, nil
}

func scoreGini(m *modelfit.Model, t *dataset.Table, outcome string) (float64, error) {
	pd, err := m.PredictPD(t)
	if err != nil {
		return 0, err
	}
	labels, err := t.Labels(outcome)
	if err != nil {
		return 0, fmt.Errorf("labels: %w", err)
	}
	return Gini(pd, labels)
}
