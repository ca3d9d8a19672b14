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

// Binomial tests each grade's observed bad count against the normal
// approximation of a Binomial(n, PD) bound, estimate = PD·n ± z·sqrt(PD·n·(1−PD))
// with z = Φ⁻¹(confidence).
func Binomial(rows []scale.Row, confidence float64, tail Tail) ([]verdict.TestResult, error) {
	if err := checkConfidence(confidence); err != nil {
		return nil, err
	}
	tail, err := ParseTail(string(tail))
	if err != nil {
		return nil, err
	}
	if err := checkRows(rows); err != nil {
		return nil, err
	}

	z := distuv.UnitNormal.Quantile(confidence)
	out := make([]verdict.TestResult, 0, len(rows))
	for _, r := range rows {
		n := float64(r.Total)
		expected := r.AvgPD * n
		half := z * math.Sqrt(expected*(1-r.AvgPD))
		out = append(out, classify(verdict.KindBinomial, r, confidence, tail, expected, expected-half, expected+half))
	}
	return out, nil
}

// AdjustedBinomial widens the binomial bound for default correlation r with
// the Vasicek one-factor approximation. Estimates are rounded to two
// decimals. r = 0 falls back to the uncorrelated binomial bound, which the
// first-order correction cannot represent.
func AdjustedBinomial(rows []scale.Row, confidence float64, tail Tail, r float64) ([]verdict.TestResult, error) {
	if !(r >= 0 && r < 1) {
		return nil, errors.Configuration("r", fmt.Sprintf("must lie in [0,1), got %v", r))
	}
	if r == 0 {
		results, err := Binomial(rows, confidence, tail)
		for i := range results {
			results[i].Kind = verdict.KindAdjustedBinomial
		}
		return results, err
	}
	if err := checkConfidence(confidence); err != nil {
		return nil, err
	}
	tail, err := ParseTail(string(tail))
	if err != nil {
		return nil, err
	}
	if err := checkRows(rows); err != nil {
		return nil, err
	}

	zc := distuv.UnitNormal.Quantile(confidence)
	zc1 := distuv.UnitNormal.Quantile(1 - confidence)
	sr := math.Sqrt(r)
	s1r := math.Sqrt(1 - r)

	out := make([]verdict.TestResult, 0, len(rows))
	for _, row := range rows {
		if row.Total == 0 {
			return nil, errors.DegenerateBin("total_observations", strconv.Itoa(row.Grade), "grade has no observations")
		}
		if !(row.AvgPD > 0 && row.AvgPD < 1) {
			return nil, errors.DegenerateBin("pd", strconv.Itoa(row.Grade), "PD must lie strictly between 0 and 1")
		}
		n := float64(row.Total)
		t := distuv.UnitNormal.Quantile(row.AvgPD)
		q := distuv.UnitNormal.CDF((sr*zc + t) / s1r)
		density := distuv.UnitNormal.Prob((sr*zc1 - t) / s1r)
		correction := q * (1 - q) / density * ((2*r-1)*zc1 - t*sr) / math.Sqrt(r*(1-r))

		upper := round2((q + (2*q-1+correction)/(2*n)) * n)
		lower := round2((q + (2*q-1-correction)/(2*n)) * n)
		out = append(out, classify(verdict.KindAdjustedBinomial, row, confidence, tail, row.AvgPD*n, lower, upper))
	}
	return out, nil
}

// classify applies the one- or two-tail verdict. Two-tail bands are closed
// below and open above.
func classify(kind verdict.Kind, r scale.Row, confidence float64, tail Tail, expected, lower, upper float64) verdict.TestResult {
	res := verdict.NewResult(kind, gradeSubject(r))
	res.Confidence = confidence
	res.Expected = expected
	res.Observed = float64(r.Bad)
	res.Upper = upper
	res.Threshold = upper
	res.Statistic = upper - res.Observed

	if tail == OneTail {
		if upper-res.Observed < 0 {
			res.Verdict = verdict.TargetUnderestimated
		} else {
			res.Verdict = verdict.TargetCorrect
		}
		return res
	}

	res.Lower = lower
	switch {
	case res.Observed < lower:
		res.Verdict = verdict.TargetOverestimated
	case res.Observed < upper:
		res.Verdict = verdict.TargetCorrect
	default:
		res.Verdict = verdict.TargetUnderestimated
	}
	return res
}
