package app

import (
	"context"
	"fmt"

	"gocredit/domain/core"
	"gocredit/domain/dataset"
	"gocredit/domain/scale"
	"gocredit/domain/verdict"
	"gocredit/internal"
	"gocredit/internal/config"
	"gocredit/internal/validation"
	"gocredit/ports"
)

// ValidationService runs the validation suite against a master scale
type ValidationService struct {
	cfg *config.Config
	log *internal.Logger
}

// NewValidationService creates a validation service
func NewValidationService(cfg *config.Config, log *internal.Logger) *ValidationService {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &ValidationService{cfg: cfg, log: log.With("service", "validation")}
}

// ValidationRequest names the inputs of one run. Optional parts are skipped
// when absent: KS without PD and Labels, stability without Second, anchor
// point without a central tendency.
type ValidationRequest struct {
	Scale           scale.MasterScale
	PD              []float64
	Labels          []int
	Main            *dataset.Table
	Second          *dataset.Table
	Outcome         string
	CentralTendency float64
}

// ValidationResult holds every test outcome of one run
type ValidationResult struct {
	RunID       core.RunID
	Binomial    []verdict.TestResult
	Adjusted    []verdict.TestResult
	ChiSquare   validation.ChiSquareResult
	KS          *verdict.TestResult
	HHI         verdict.TestResult
	AdjustedHHI verdict.TestResult
	Anchor      *validation.AnchorResult
	PSI         []validation.Stability
	SSI         []validation.Stability
}

// Run executes the suite. Parameter errors abort the run; nothing is retried.
func (s *ValidationService) Run(ctx context.Context, req ValidationRequest) (*ValidationResult, error) {
	v := s.cfg.Validation
	tail, err := validation.ParseTail(v.Tail)
	if err != nil {
		return nil, err
	}
	rows := req.Scale.Rows
	res := &ValidationResult{RunID: core.NewRunID()}
	log := s.log.With("run", res.RunID.String())

	if res.Binomial, err = validation.Binomial(rows, v.ConfidenceLevel, tail); err != nil {
		return nil, err
	}
	if res.Adjusted, err = validation.AdjustedBinomial(rows, v.ConfidenceLevel, tail, v.R); err != nil {
		return nil, err
	}
	if res.ChiSquare, err = validation.ChiSquare(rows, v.ChiSquareConfidence); err != nil {
		return nil, err
	}
	log.Info("chi-square: %s", res.ChiSquare.Summary())
	if res.HHI, err = validation.HHI(rows); err != nil {
		return nil, err
	}
	if res.AdjustedHHI, err = validation.AdjustedHHI(rows); err != nil {
		return nil, err
	}

	if req.PD != nil {
		ks, err := validation.KolmogorovSmirnov(req.PD, req.Labels)
		if err != nil {
			return nil, err
		}
		res.KS = &ks
	}

	ct := req.CentralTendency
	if ct == 0 {
		ct = v.CentralTendency
	}
	if ct > 0 {
		anchor, err := validation.AnchorPoint(rows, ct, v.Anchor)
		if err != nil {
			return nil, err
		}
		res.Anchor = &anchor
	}

	if req.Main != nil && req.Second != nil {
		spec := validation.BinSpec{Count: s.cfg.Scale.BinNumber}
		if res.PSI, err = validation.PSIDataset(ctx, req.Main, req.Second, req.Outcome, spec, v.PSI, s.cfg.Runtime.Workers); err != nil {
			return nil, err
		}
		if res.SSI, err = validation.SSIDataset(ctx, req.Main, req.Second, req.Outcome, s.cfg.Runtime.Workers); err != nil {
			return nil, err
		}
	}

	for _, r := range res.All() {
		if !r.Passed() {
			log.Warn("%s %s: %s", r.Kind, r.Subject, r.Verdict)
		}
	}
	log.Info("validation finished: %d results, %d flagged", len(res.All()), res.Flagged())
	return res, nil
}

// All flattens every judged result in run order
func (r *ValidationResult) All() []verdict.TestResult {
	out := append([]verdict.TestResult(nil), r.Binomial...)
	out = append(out, r.Adjusted...)
	out = append(out, r.ChiSquare.TestResult, r.HHI, r.AdjustedHHI)
	if r.KS != nil {
		out = append(out, *r.KS)
	}
	if r.Anchor != nil {
		out = append(out, r.Anchor.TestResult)
	}
	for _, p := range r.PSI {
		out = append(out, p.TestResult)
	}
	for _, p := range r.SSI {
		out = append(out, p.TestResult)
	}
	return out
}

// Flagged counts results whose verdict is unfavourable
func (r *ValidationResult) Flagged() int {
	n := 0
	for _, t := range r.All() {
		if !t.Passed() {
			n++
		}
	}
	return n
}

// Report renders the run, one section per test family
func (r *ValidationResult) Report() ports.Report {
	rep := ports.Report{
		Title: fmt.Sprintf("Validation %s", r.RunID),
		Sections: []ports.Section{
			ResultsSection("Binomial", r.Binomial),
			ResultsSection("Adjusted binomial", r.Adjusted),
			ResultsSection("Chi-square", []verdict.TestResult{r.ChiSquare.TestResult}),
			ResultsSection("Concentration", []verdict.TestResult{r.HHI, r.AdjustedHHI}),
		},
	}
	if r.KS != nil {
		rep.Sections = append(rep.Sections, ResultsSection("Kolmogorov-Smirnov", []verdict.TestResult{*r.KS}))
	}
	if r.Anchor != nil {
		rep.Sections = append(rep.Sections, AnchorSection(*r.Anchor))
	}
	if len(r.PSI) > 0 {
		rep.Sections = append(rep.Sections, StabilitySection("PSI", r.PSI))
	}
	if len(r.SSI) > 0 {
		rep.Sections = append(rep.Sections, StabilitySection("SSI", r.SSI))
	}
	return rep
}
