package calibration

import (
	"math"

	"gocredit/domain/core"
)

// Method names a calibration technique
type Method string

const (
	MethodBayesian   Method = "bayesian"
	MethodRegression Method = "regression"
)

// Model maps a score to a calibrated PD as 1/(1+exp(Intercept+Slope*score)).
// It is immutable once produced.
type Model struct {
	ID        core.ModelID `json:"id"`
	Method    Method       `json:"method"`
	Intercept float64      `json:"intercept"`
	Slope     float64      `json:"slope"`
	Formula   string       `json:"formula"`
}

// PD evaluates the calibrated probability of default at score
func (m Model) PD(score float64) float64 {
	return 1 / (1 + math.Exp(m.Intercept+m.Slope*score))
}
