package binning

import (
	"gocredit/domain/dataset"
)

// Discretize replaces every numeric predictor of t with the text labels of
// its quantile bins. Text columns and the outcome pass through unchanged.
func Discretize(t *dataset.Table, outcome string, binCount int) (*dataset.Table, error) {
	out := t
	for _, name := range t.Predictors(outcome) {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		if col.Kind != dataset.KindNumeric {
			continue
		}
		rule, err := FitQuantile(name, col.Numeric, binCount)
		if err != nil {
			return nil, err
		}
		assigned, err := Apply(rule, col.Numeric)
		if err != nil {
			return nil, err
		}
		labels := make([]string, len(assigned))
		for i, b := range assigned {
			labels[i] = rule.Label(b)
		}
		if out, err = out.WithColumn(dataset.NewTextColumn(name, labels)); err != nil {
			return nil, err
		}
	}
	return out, nil
}
