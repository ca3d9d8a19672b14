package dataset

import (
	"github.com/montanaflynn/stats"
)

// Description holds descriptive statistics of one group of records
type Description struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// OutcomeSummary compares a variable between good (0) and bad (1) records
type OutcomeSummary struct {
	Variable string      `json:"variable"`
	Good     Description `json:"good"`
	Bad      Description `json:"bad"`
}

// SummaryByOutcome describes a numeric variable separately for good and bad records
func SummaryByOutcome(t *Table, outcome, variable string) (OutcomeSummary, error) {
	labels, err := t.Labels(outcome)
	if err != nil {
		return OutcomeSummary{}, err
	}
	values, err := t.Numeric(variable)
	if err != nil {
		return OutcomeSummary{}, err
	}

	var good, bad []float64
	for i, v := range values {
		if labels[i] == 1 {
			bad = append(bad, v)
		} else {
			good = append(good, v)
		}
	}

	return OutcomeSummary{
		Variable: variable,
		Good:     describe(good),
		Bad:      describe(bad),
	}, nil
}

func describe(data []float64) Description {
	d := Description{Count: len(data)}
	if len(data) == 0 {
		return d
	}
	d.Mean, _ = stats.Mean(data)
	if len(data) > 1 {
		d.StdDev, _ = stats.StandardDeviationSample(data)
	}
	d.Min, _ = stats.Min(data)
	d.Max, _ = stats.Max(data)
	d.Median, _ = stats.Median(data)
	d.Q25, _ = stats.Percentile(data, 25)
	d.Q75, _ = stats.Percentile(data, 75)
	return d
}
