package ports

import (
	"gocredit/domain/dataset"
)

// Scorer produces a probability of default for every record of a table
type Scorer interface {
	PredictPD(t *dataset.Table) ([]float64, error)
	// Equation renders the scorer's linear predictor as text
	Equation() string
}
