package validation

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"gocredit/domain/core"
	"gocredit/domain/verdict"
	"gocredit/internal/errors"
)

// KolmogorovSmirnov compares the PD distributions of defaulted and performing
// records. The statistic is reported as a percentage; the p-value uses the
// asymptotic Kolmogorov distribution with Stephens' small-sample correction.
func KolmogorovSmirnov(pd []float64, labels []int) (verdict.TestResult, error) {
	if len(pd) != len(labels) {
		return verdict.TestResult{}, errors.InvalidColumn("pd", fmt.Errorf("%w: %d PDs for %d labels", core.ErrLengthMismatch, len(pd), len(labels)))
	}
	var events, nonEvents []float64
	for i, p := range pd {
		if math.IsNaN(p) {
			return verdict.TestResult{}, errors.InvalidColumn("pd", fmt.Errorf("%w: row %d is missing", core.ErrNonNumeric, i))
		}
		switch labels[i] {
		case 1:
			events = append(events, p)
		case 0:
			nonEvents = append(nonEvents, p)
		default:
			return verdict.TestResult{}, errors.InvalidColumn("default_flag", fmt.Errorf("%w: row %d holds %d", core.ErrLabelDomain, i, labels[i]))
		}
	}
	if len(events) == 0 || len(nonEvents) == 0 {
		return verdict.TestResult{}, errors.DegenerateBin("pd", "all", "both events and non-events are required")
	}
	sort.Float64s(events)
	sort.Float64s(nonEvents)

	d := stat.KolmogorovSmirnov(events, nil, nonEvents, nil)

	res := verdict.NewResult(verdict.KindKS, verdict.SubjectPortfolio)
	res.Statistic = d * 100
	res.PValue = ksPValue(d, len(events), len(nonEvents))
	res.Observed = float64(len(events))
	res.Expected = float64(len(nonEvents))
	res.Verdict = verdict.Informational
	return res, nil
}

// ksPValue evaluates Q_KS((√ne + 0.12 + 0.11/√ne)·d), ne = n1·n2/(n1+n2)
func ksPValue(d float64, n1, n2 int) float64 {
	ne := float64(n1) * float64(n2) / float64(n1+n2)
	en := math.Sqrt(ne)
	lambda := (en + 0.12 + 0.11/en) * d
	return kolmogorovQ(lambda)
}

// kolmogorovQ is the Kolmogorov survival function 2·Σ(−1)^(j−1)·exp(−2j²λ²)
func kolmogorovQ(lambda float64) float64 {
	if lambda < 1e-3 {
		return 1
	}
	const eps1, eps2 = 1e-6, 1e-16
	sum, sign, prev := 0.0, 2.0, 0.0
	a := -2 * lambda * lambda
	for j := 1; j <= 100; j++ {
		term := sign * math.Exp(a*float64(j*j))
		sum += term
		if math.Abs(term) <= eps1*prev || math.Abs(term) <= eps2*sum {
			return math.Min(1, math.Max(0, sum))
		}
		sign = -sign
		prev = math.Abs(term)
	}
	// series did not settle; λ is tiny enough that the tail is ~1
	return 1
}
