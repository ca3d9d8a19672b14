package validation

import (
	"fmt"

	"gocredit/domain/scale"
	"gocredit/domain/verdict"
	"gocredit/internal/errors"
	"gocredit/internal/masterscale"
)

// Bands are multipliers of the average PD bounding the anchor-point zones
type Bands struct {
	LowerRed   float64 `json:"lower_red" yaml:"lower_red"`
	LowerGreen float64 `json:"lower_green" yaml:"lower_green"`
	UpperGreen float64 `json:"upper_green" yaml:"upper_green"`
	UpperRed   float64 `json:"upper_red" yaml:"upper_red"`
}

// DefaultBands returns 0.7 / 0.8 / 1.2 / 1.3
func DefaultBands() Bands {
	return Bands{LowerRed: 0.7, LowerGreen: 0.8, UpperGreen: 1.2, UpperRed: 1.3}
}

// Validate requires 0 ≤ lower_red ≤ lower_green ≤ 1 ≤ upper_green ≤ upper_red
func (b Bands) Validate() error {
	if !(0 <= b.LowerRed && b.LowerRed <= b.LowerGreen && b.LowerGreen <= 1 && 1 <= b.UpperGreen && b.UpperGreen <= b.UpperRed) {
		return errors.Configuration("anchor_bands", fmt.Sprintf("need 0 <= lower_red <= lower_green <= 1 <= upper_green <= upper_red, got %+v", b))
	}
	return nil
}

// AnchorResult reports the zones the central tendency was judged against
type AnchorResult struct {
	verdict.TestResult
	AveragePD  float64 `json:"average_pd"`
	LowerRed   float64 `json:"lower_r"`
	LowerGreen float64 `json:"lower_g"`
	UpperGreen float64 `json:"upper_g"`
	UpperRed   float64 `json:"upper_r"`
}

// AnchorPoint checks a central tendency against bands around the
// observation-weighted average PD. Green strictly inside the inner band, Red
// strictly outside the outer band, Yellow otherwise.
func AnchorPoint(rows []scale.Row, centralTendency float64, bands Bands) (AnchorResult, error) {
	if err := bands.Validate(); err != nil {
		return AnchorResult{}, err
	}
	if err := checkRows(rows); err != nil {
		return AnchorResult{}, err
	}
	avg, err := masterscale.AveragePD(scale.MasterScale{Rows: rows})
	if err != nil {
		return AnchorResult{}, err
	}

	res := AnchorResult{
		TestResult: verdict.NewResult(verdict.KindAnchorPoint, verdict.SubjectPortfolio),
		AveragePD:  avg,
		LowerRed:   avg * bands.LowerRed,
		LowerGreen: avg * bands.LowerGreen,
		UpperGreen: avg * bands.UpperGreen,
		UpperRed:   avg * bands.UpperRed,
	}
	res.Statistic = centralTendency
	res.Expected = avg
	res.Lower = res.LowerGreen
	res.Upper = res.UpperGreen

	switch {
	case centralTendency > res.LowerGreen && centralTendency < res.UpperGreen:
		res.Verdict = verdict.Green
	case centralTendency < res.LowerRed || centralTendency > res.UpperRed:
		res.Verdict = verdict.Red
	default:
		res.Verdict = verdict.Yellow
	}
	return res, nil
}
