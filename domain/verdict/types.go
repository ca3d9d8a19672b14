package verdict

import (
	"gocredit/domain/core"
)

// Kind identifies the validation test that produced a result
type Kind string

const (
	KindBinomial         Kind = "binomial"
	KindAdjustedBinomial Kind = "adjusted_binomial"
	KindChiSquare        Kind = "chi_square"
	KindKS               Kind = "kolmogorov_smirnov"
	KindPSI              Kind = "psi"
	KindSSI              Kind = "ssi"
	KindHHI              Kind = "hhi"
	KindAdjustedHHI      Kind = "adjusted_hhi"
	KindAnchorPoint      Kind = "anchor_point"
)

// Verdict is the judgment attached to a test result
type Verdict string

const (
	TargetCorrect        Verdict = "Target Value Correct"
	TargetUnderestimated Verdict = "Target Value Underestimated"
	TargetOverestimated  Verdict = "Target Value Overestimated"

	Pass Verdict = "Pass"
	Fail Verdict = "Fail"

	Green  Verdict = "Green"
	Yellow Verdict = "Yellow"
	Red    Verdict = "Red"

	// Informational results carry a statistic without a judgment
	Informational Verdict = "Informational"
)

// SubjectPortfolio names a result computed over the whole sample
const SubjectPortfolio = "portfolio"

// TestResult is the single result shape shared by every validation test.
// Fields that a test does not produce are left at zero.
type TestResult struct {
	ID         core.ResultID `json:"id"`
	Kind       Kind          `json:"kind"`
	Subject    string        `json:"subject"`
	Statistic  float64       `json:"statistic"`
	PValue     float64       `json:"p_value"`
	Threshold  float64       `json:"threshold"`
	Confidence float64       `json:"confidence"`
	Lower      float64       `json:"lower"`
	Upper      float64       `json:"upper"`
	Observed   float64       `json:"observed"`
	Expected   float64       `json:"expected"`
	Verdict    Verdict       `json:"verdict"`
}

// NewResult stamps a fresh id on a result of the given kind
func NewResult(kind Kind, subject string) TestResult {
	return TestResult{
		ID:      core.NewResultID(),
		Kind:    kind,
		Subject: subject,
	}
}

// Passed reports whether the verdict is favourable
func (r TestResult) Passed() bool {
	switch r.Verdict {
	case TargetCorrect, Pass, Green, Informational:
		return true
	}
	return false
}
