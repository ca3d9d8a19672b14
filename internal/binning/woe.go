package binning

import (
	"fmt"
	"math"

	"gocredit/adapters/datareadiness/coercer"
	bins "gocredit/domain/binning"
	"gocredit/domain/core"
	"gocredit/domain/dataset"
	"gocredit/internal/errors"
)

// ComputeWOE aggregates binned values against a 0/1 outcome. Empty bins are
// omitted. A bin with no events gets -WOESentinel and one with no non-events
// gets +WOESentinel; both are flagged Degenerate.
func ComputeWOE(variable string, assigned []int, labels []int, rule bins.Rule) ([]bins.Statistics, bins.WOETable, error) {
	if len(assigned) != len(labels) {
		return nil, nil, errors.InvalidColumn(variable, fmt.Errorf("%w: %d bins for %d labels", core.ErrLengthMismatch, len(assigned), len(labels)))
	}

	k := rule.Bins()
	events := make([]int, k)
	nonEvents := make([]int, k)
	totalEvents, totalNonEvents := 0, 0
	for i, b := range assigned {
		if b < 0 || b >= k {
			return nil, nil, errors.Configuration("bin", fmt.Sprintf("row %d assigned to bin %d of %d", i, b, k))
		}
		switch labels[i] {
		case 1:
			events[b]++
			totalEvents++
		case 0:
			nonEvents[b]++
			totalNonEvents++
		default:
			return nil, nil, errors.InvalidColumn(variable, fmt.Errorf("%w: row %d holds %d", core.ErrLabelDomain, i, labels[i]))
		}
	}
	if totalEvents == 0 || totalNonEvents == 0 {
		return nil, nil, errors.DegenerateBin(variable, "all", "outcome holds a single class")
	}

	stats := make([]bins.Statistics, 0, k)
	table := make(bins.WOETable, k)
	for b := 0; b < k; b++ {
		pop := events[b] + nonEvents[b]
		if pop == 0 {
			continue
		}
		s := bins.Statistics{
			Bin:           b,
			Label:         rule.Label(b),
			Population:    pop,
			Events:        events[b],
			NonEvents:     nonEvents[b],
			EventShare:    float64(events[b]) / float64(totalEvents),
			NonEventShare: float64(nonEvents[b]) / float64(totalNonEvents),
		}
		switch {
		case s.Events == 0:
			s.WOE = -bins.WOESentinel
			s.Degenerate = true
		case s.NonEvents == 0:
			s.WOE = bins.WOESentinel
			s.Degenerate = true
		default:
			s.WOE = math.Log(s.EventShare / s.NonEventShare)
		}
		stats = append(stats, s)
		table[b] = s.WOE
	}
	return stats, table, nil
}

// RequireNonDegenerate fails on the first bin whose WOE is a sentinel
func RequireNonDegenerate(variable string, stats []bins.Statistics) error {
	for _, s := range stats {
		if !s.Degenerate {
			continue
		}
		reason := "no events"
		if s.NonEvents == 0 {
			reason = "no non-events"
		}
		return errors.DegenerateBin(variable, s.Label, reason)
	}
	return nil
}

var defaultCoercer = coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())

// CoerceNumeric returns a numeric copy of col. Text columns go through the
// coercer and fail as a whole when any value does not parse.
func CoerceNumeric(col dataset.Column) ([]float64, error) {
	if col.Kind == dataset.KindNumeric {
		return append([]float64(nil), col.Numeric...), nil
	}
	values, err := defaultCoercer.CoerceColumn(col.Text)
	if err != nil {
		return nil, errors.InvalidColumn(col.Name, err)
	}
	return values, nil
}
