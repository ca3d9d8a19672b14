package datareadiness

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"gocredit/adapters/datareadiness/coercer"
	"gocredit/domain/dataset"
	"gocredit/internal/errors"
)

// FieldProfile describes the completeness and shape of one column
type FieldProfile struct {
	Variable     string             `json:"variable"`
	Kind         dataset.ColumnKind `json:"kind"`
	SampleSize   int                `json:"sample_size"`
	Missing      int                `json:"missing"`
	MissingRatio float64            `json:"missing_ratio"`
	Completeness float64            `json:"completeness"`
	Distinct     int                `json:"distinct"`
	// Coercible reports whether a text column would convert to numbers
	Coercible    bool          `json:"coercible"`
	NumericStats *NumericStats `json:"numeric_stats,omitempty"`
	Mode         string        `json:"mode,omitempty"`
}

// NumericStats summarises the present values of a numeric column
type NumericStats struct {
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	Mean          float64 `json:"mean"`
	ZeroCount     int     `json:"zero_count"`
	NegativeCount int     `json:"negative_count"`
}

// ProfilerAdapter profiles tables column by column
type ProfilerAdapter struct {
	coercer *coercer.TypeCoercer
}

// NewProfilerAdapter creates a new profiler adapter
func NewProfilerAdapter(c *coercer.TypeCoercer) *ProfilerAdapter {
	if c == nil {
		c = coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())
	}
	return &ProfilerAdapter{coercer: c}
}

// ProfileTable analyzes every column in table order. NaN numeric cells and
// blank text cells count as missing.
func (p *ProfilerAdapter) ProfileTable(ctx context.Context, t *dataset.Table) ([]FieldProfile, error) {
	profiles := make([]FieldProfile, 0, len(t.Names()))
	for _, name := range t.Names() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p.profileField(col))
	}
	return profiles, nil
}

func (p *ProfilerAdapter) profileField(col dataset.Column) FieldProfile {
	profile := FieldProfile{Variable: col.Name, Kind: col.Kind, SampleSize: col.Len()}

	switch col.Kind {
	case dataset.KindNumeric:
		present := make([]float64, 0, len(col.Numeric))
		for _, v := range col.Numeric {
			if math.IsNaN(v) {
				profile.Missing++
				continue
			}
			present = append(present, v)
		}
		profile.Distinct = len(dataset.DistinctKeys(dataset.NewNumericColumn(col.Name, present).Keys()))
		profile.NumericStats = computeNumericStats(present)
	default:
		present := make([]string, 0, len(col.Text))
		for _, v := range col.Text {
			if strings.TrimSpace(v) == "" {
				profile.Missing++
				continue
			}
			present = append(present, v)
		}
		profile.Distinct = len(dataset.DistinctKeys(present))
		profile.Mode = mode(present)
		if len(present) > 0 {
			_, err := p.coercer.CoerceColumn(present)
			profile.Coercible = err == nil
		}
	}

	if profile.SampleSize > 0 {
		profile.MissingRatio = float64(profile.Missing) / float64(profile.SampleSize)
	}
	profile.Completeness = 1 - profile.MissingRatio
	return profile
}

func computeNumericStats(values []float64) *NumericStats {
	if len(values) == 0 {
		return nil
	}
	s := &NumericStats{}
	s.Min, _ = stats.Min(values)
	s.Max, _ = stats.Max(values)
	s.Mean, _ = stats.Mean(values)
	for _, v := range values {
		if v == 0 {
			s.ZeroCount++
		}
		if v < 0 {
			s.NegativeCount++
		}
	}
	return s
}

// mode returns the most frequent value, the smallest on ties
func mode(values []string) string {
	freq := make(map[string]int)
	for _, v := range values {
		freq[v]++
	}
	keys := make([]string, 0, len(freq))
	for k := range freq {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best, bestFreq := "", 0
	for _, k := range keys {
		if freq[k] > bestFreq {
			best, bestFreq = k, freq[k]
		}
	}
	return best
}

// EliminateMissing drops every column other than keep whose missing ratio
// is strictly above threshold and returns the dropped profiles
func (p *ProfilerAdapter) EliminateMissing(ctx context.Context, t *dataset.Table, threshold float64, keep ...string) (*dataset.Table, []FieldProfile, error) {
	if !(threshold >= 0 && threshold <= 1) {
		return nil, nil, errors.Configuration("missing_ratio_threshold", fmt.Sprintf("must lie in [0,1], got %v", threshold))
	}
	profiles, err := p.ProfileTable(ctx, t)
	if err != nil {
		return nil, nil, err
	}
	protected := make(map[string]bool, len(keep))
	for _, k := range keep {
		protected[k] = true
	}
	var dropped []FieldProfile
	var names []string
	for _, prof := range profiles {
		if prof.MissingRatio > threshold && !protected[prof.Variable] {
			dropped = append(dropped, prof)
			names = append(names, prof.Variable)
		}
	}
	return t.Drop(names...), dropped, nil
}
