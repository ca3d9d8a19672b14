package validation

import (
	"fmt"
	"strconv"

	"gocredit/domain/core"
	"gocredit/domain/scale"
	"gocredit/domain/verdict"
	"gocredit/internal/errors"
)

// HHI is Σ share² of grade populations. It equals 1/N for N equally
// populated grades and 1 when one grade holds everything.
func HHI(rows []scale.Row) (verdict.TestResult, error) {
	h, _, err := concentration(rows)
	if err != nil {
		return verdict.TestResult{}, err
	}
	res := verdict.NewResult(verdict.KindHHI, verdict.SubjectPortfolio)
	res.Statistic = h
	res.Verdict = verdict.Informational
	return res, nil
}

// AdjustedHHI rescales HHI onto [0,1] against the uniform floor,
// (HHI − 1/N)/(1 − 1/N) with N the number of grades
func AdjustedHHI(rows []scale.Row) (verdict.TestResult, error) {
	h, n, err := concentration(rows)
	if err != nil {
		return verdict.TestResult{}, err
	}
	if n < 2 {
		return verdict.TestResult{}, errors.DegenerateBin("grade", strconv.Itoa(rows[0].Grade), "adjusted HHI needs at least two grades")
	}
	floor := 1 / float64(n)
	res := verdict.NewResult(verdict.KindAdjustedHHI, verdict.SubjectPortfolio)
	res.Statistic = (h - floor) / (1 - floor)
	res.Threshold = floor
	res.Observed = h
	res.Verdict = verdict.Informational
	return res, nil
}

func concentration(rows []scale.Row) (float64, int, error) {
	if len(rows) == 0 {
		return 0, 0, errors.InvalidInput("master scale has no grades")
	}
	seen := make(map[int]bool, len(rows))
	total := 0
	for _, r := range rows {
		if seen[r.Grade] {
			return 0, 0, errors.InvalidColumn("grade", fmt.Errorf("%w: grade %d appears twice", core.ErrInvalidColumn, r.Grade))
		}
		seen[r.Grade] = true
		if r.Total < 0 {
			return 0, 0, errors.InvalidColumn("total_observations", fmt.Errorf("%w: grade %d has %d records", core.ErrInvalidColumn, r.Grade, r.Total))
		}
		total += r.Total
	}
	if total == 0 {
		return 0, 0, errors.DegenerateBin("total_observations", "all", "scale has no observations")
	}
	h := 0.0
	for _, r := range rows {
		share := float64(r.Total) / float64(total)
		h += share * share
	}
	return h, len(rows), nil
}
