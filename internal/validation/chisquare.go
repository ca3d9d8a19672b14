package validation

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat/distuv"

	"gocredit/domain/scale"
	"gocredit/domain/verdict"
	"gocredit/internal/errors"
)

// ChiSquareDegreesOfFreedom is fixed regardless of the number of grades.
// TODO: revisit once validation owners decide between 1 and grades−1.
const ChiSquareDegreesOfFreedom = 1

// ChiSquareResult carries the portfolio statistic and per-grade terms
type ChiSquareResult struct {
	verdict.TestResult
	Contributions []float64 `json:"contributions"`
}

// ChiSquare sums (expected−observed)²/expected over grades, expected = PD·n,
// and takes the p-value from the chi-square survival function. The scale
// fails when the p-value exceeds 1 − confidence.
func ChiSquare(rows []scale.Row, confidence float64) (ChiSquareResult, error) {
	if err := checkConfidence(confidence); err != nil {
		return ChiSquareResult{}, err
	}
	if err := checkRows(rows); err != nil {
		return ChiSquareResult{}, err
	}

	res := ChiSquareResult{
		TestResult:    verdict.NewResult(verdict.KindChiSquare, verdict.SubjectPortfolio),
		Contributions: make([]float64, len(rows)),
	}
	for i, r := range rows {
		expected := r.AvgPD * float64(r.Total)
		if expected == 0 {
			return ChiSquareResult{}, errors.DegenerateBin("pd", strconv.Itoa(r.Grade), "expected bad count is zero")
		}
		observed := float64(r.Bad)
		res.Contributions[i] = (expected - observed) * (expected - observed) / expected
		res.Statistic += res.Contributions[i]
		res.Expected += expected
		res.Observed += observed
	}

	dist := distuv.ChiSquared{K: ChiSquareDegreesOfFreedom}
	res.PValue = math.Max(0, 1-dist.CDF(res.Statistic))
	res.Confidence = confidence
	res.Threshold = 1 - confidence
	if res.PValue > res.Threshold {
		res.Verdict = verdict.Fail
	} else {
		res.Verdict = verdict.Pass
	}
	return res, nil
}

// Summary renders the verdict as a sentence
func (r ChiSquareResult) Summary() string {
	if r.Verdict == verdict.Fail {
		return fmt.Sprintf("The rating scale did not pass the test %.3f > %v", r.PValue, r.Threshold)
	}
	return fmt.Sprintf("The rating scale passed the test. %.3f < %v", r.PValue, r.Threshold)
}
