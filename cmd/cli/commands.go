package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gocredit/adapters/datareadiness"
	"gocredit/app"
	"gocredit/internal/validation"
	"gocredit/ports"
)

func newMasterScaleCmd() *cobra.Command {
	var outcome, pdColumn string

	cmd := &cobra.Command{
		Use:   "masterscale [file]",
		Short: "Aggregate per-record PDs into rating grades",
		Long: `Cut the PD column into bin_number equal-width grades and report
population, defaults, average PD, log-odds score and scaled score per grade.

Example: gocredit masterscale book.csv --outcome default_flag --pd pd`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			ms, err := app.NewDevelopmentService(rt.cfg, rt.log).MasterScale(t, outcome, pdColumn)
			if err != nil {
				return err
			}
			return emit(cmd.Context(), ports.Report{Title: "Master scale", Sections: []ports.Section{app.ScaleSection(ms)}})
		},
	}

	cmd.Flags().StringVar(&outcome, "outcome", "default_flag", "binary default flag column")
	cmd.Flags().StringVar(&pdColumn, "pd", "pd", "probability of default column")
	return cmd
}

func newIVCmd() *cobra.Command {
	var outcome string

	cmd := &cobra.Command{
		Use:   "iv [file]",
		Short: "Rank predictors by information value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			ranked, err := app.NewDevelopmentService(rt.cfg, rt.log).InformationValue(cmd.Context(), t, outcome)
			if err != nil {
				return err
			}
			return emit(cmd.Context(), ports.Report{Title: "Information value", Sections: []ports.Section{app.IVSection(ranked)}})
		},
	}

	cmd.Flags().StringVar(&outcome, "outcome", "default_flag", "binary default flag column")
	return cmd
}

func newWOECmd() *cobra.Command {
	var outcome string

	cmd := &cobra.Command{
		Use:   "woe [file]",
		Short: "Fit quantile bins and weight of evidence on a training split",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res, err := app.NewDevelopmentService(rt.cfg, rt.log).WOE(cmd.Context(), t, outcome)
			if err != nil {
				return err
			}
			return emit(cmd.Context(), ports.Report{Title: "Weight of evidence", Sections: []ports.Section{app.WOESection(res.Model)}})
		},
	}

	cmd.Flags().StringVar(&outcome, "outcome", "default_flag", "binary default flag column")
	return cmd
}

func newGiniCmd() *cobra.Command {
	var outcome string
	var maxSubset int
	var drop []string

	cmd := &cobra.Command{
		Use:   "gini [file]",
		Short: "Univariate, k-fold and best-subset Gini",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res, err := app.NewDevelopmentService(rt.cfg, rt.log).Discrimination(cmd.Context(), t.Drop(drop...), outcome, maxSubset)
			if err != nil {
				return err
			}
			return emit(cmd.Context(), res.Report())
		},
	}

	cmd.Flags().StringVar(&outcome, "outcome", "default_flag", "binary default flag column")
	cmd.Flags().IntVar(&maxSubset, "max-subset", 3, "largest predictor subset searched, 0 skips the search")
	cmd.Flags().StringSliceVar(&drop, "drop", nil, "columns to leave out, e.g. the PD or an id")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var outcome, pdColumn, secondPath string
	var ct float64

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Run the validation suite on a scored portfolio",
		Long: `Build the master scale from the PD column and run the binomial,
adjusted binomial, chi-square, Kolmogorov-Smirnov, HHI and anchor point
tests. With --second, PSI and SSI compare the file against a second sample.

Example: gocredit validate book.csv --central-tendency 0.04 --second recent.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			book, err := load(ctx, args[0])
			if err != nil {
				return err
			}
			ms, err := app.NewDevelopmentService(rt.cfg, rt.log).MasterScale(book, outcome, pdColumn)
			if err != nil {
				return err
			}
			pd, err := book.Numeric(pdColumn)
			if err != nil {
				return err
			}
			labels, err := book.Labels(outcome)
			if err != nil {
				return err
			}
			req := app.ValidationRequest{
				Scale:           ms,
				PD:              pd,
				Labels:          labels,
				Outcome:         outcome,
				CentralTendency: ct,
			}
			if secondPath != "" {
				second, err := load(ctx, secondPath)
				if err != nil {
					return err
				}
				req.Main, req.Second = book, second
			}
			res, err := app.NewValidationService(rt.cfg, rt.log).Run(ctx, req)
			if err != nil {
				return err
			}
			return emit(ctx, res.Report())
		},
	}

	cmd.Flags().StringVar(&outcome, "outcome", "default_flag", "binary default flag column")
	cmd.Flags().StringVar(&pdColumn, "pd", "pd", "probability of default column")
	cmd.Flags().StringVar(&secondPath, "second", "", "second sample for PSI and SSI")
	cmd.Flags().Float64Var(&ct, "central-tendency", 0, "target average default rate for the anchor point test")
	return cmd
}

func newPSICmd() *cobra.Command {
	var outcome string
	var text bool

	cmd := &cobra.Command{
		Use:   "psi [main] [second]",
		Short: "Population stability of every variable between two samples",
		Long: `Bin each variable on the main sample and compare shares with the
second sample. --text switches to the system stability index, which compares
category shares without binning.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			book, err := load(ctx, args[0])
			if err != nil {
				return err
			}
			second, err := load(ctx, args[1])
			if err != nil {
				return err
			}
			workers := rt.cfg.Runtime.Workers
			if text {
				ssi, err := validation.SSIDataset(ctx, book, second, outcome, workers)
				if err != nil {
					return err
				}
				return emit(ctx, ports.Report{Title: "System stability", Sections: []ports.Section{app.StabilitySection("SSI", ssi)}})
			}
			spec := validation.BinSpec{Count: rt.cfg.Scale.BinNumber}
			psi, err := validation.PSIDataset(ctx, book, second, outcome, spec, rt.cfg.Validation.PSI, workers)
			if err != nil {
				return err
			}
			return emit(ctx, ports.Report{Title: "Population stability", Sections: []ports.Section{app.StabilitySection("PSI", psi)}})
		},
	}

	cmd.Flags().StringVar(&outcome, "outcome", "default_flag", "column left out of the comparison")
	cmd.Flags().BoolVar(&text, "text", false, "compute SSI on category shares instead of PSI")
	return cmd
}

func newCalibrateCmd() *cobra.Command {
	var outcome, pdColumn, method, samplePath string
	var ct float64
	var predictors []string

	cmd := &cobra.Command{
		Use:   "calibrate [file]",
		Short: "Calibrate PDs with the bayesian or regression method",
		Long: `bayesian: shift master scale grades from the observed average PD to
--central-tendency and fit the score mapping.
regression: fit a logistic model on the file, score --sample with it and
recalibrate by regressing the outcome on the model score.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := load(ctx, args[0])
			if err != nil {
				return err
			}
			svc := app.NewCalibrationService(rt.cfg, rt.log)
			switch method {
			case "bayesian":
				ms, err := app.NewDevelopmentService(rt.cfg, rt.log).MasterScale(t, outcome, pdColumn)
				if err != nil {
					return err
				}
				res, err := svc.Bayesian(ms, ct)
				if err != nil {
					return err
				}
				return emit(ctx, app.BayesianReport(res))
			case "regression":
				if samplePath == "" {
					return fmt.Errorf("regression calibration needs --sample")
				}
				sample, err := load(ctx, samplePath)
				if err != nil {
					return err
				}
				res, err := svc.Regression(t, sample, outcome, predictors)
				if err != nil {
					return err
				}
				rep, err := app.RegressionReport(res)
				if err != nil {
					return err
				}
				return emit(ctx, rep)
			}
			return fmt.Errorf("unknown method %s, want bayesian or regression", strconv.Quote(method))
		},
	}

	cmd.Flags().StringVar(&outcome, "outcome", "default_flag", "binary default flag column")
	cmd.Flags().StringVar(&pdColumn, "pd", "pd", "probability of default column (bayesian)")
	cmd.Flags().StringVar(&method, "method", "bayesian", "bayesian or regression")
	cmd.Flags().StringVar(&samplePath, "sample", "", "calibration sample (regression)")
	cmd.Flags().Float64Var(&ct, "central-tendency", 0, "target average default rate (bayesian)")
	cmd.Flags().StringSliceVar(&predictors, "predictors", nil, "model predictors (regression), default every column")
	return cmd
}

func newProfileCmd() *cobra.Command {
	var outcome string
	var maxMissing float64

	cmd := &cobra.Command{
		Use:   "profile [file]",
		Short: "Missing ratio and completeness of every column",
		Long: `Profile each column. With --max-missing, also list the columns whose
missing ratio exceeds the threshold and would be eliminated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := load(ctx, args[0])
			if err != nil {
				return err
			}
			profiler := datareadiness.NewProfilerAdapter(nil)
			profiles, err := profiler.ProfileTable(ctx, t)
			if err != nil {
				return err
			}
			rep := ports.Report{Title: "Profile", Sections: []ports.Section{profileSection("Columns", profiles)}}
			if cmd.Flags().Changed("max-missing") {
				_, dropped, err := profiler.EliminateMissing(ctx, t, maxMissing, outcome)
				if err != nil {
					return err
				}
				rep.Sections = append(rep.Sections, profileSection("Eliminated", dropped))
			}
			return emit(ctx, rep)
		},
	}

	cmd.Flags().StringVar(&outcome, "outcome", "default_flag", "column never eliminated")
	cmd.Flags().Float64Var(&maxMissing, "max-missing", 0, "missing ratio above which a column is eliminated")
	return cmd
}

func profileSection(name string, profiles []datareadiness.FieldProfile) ports.Section {
	s := ports.Section{Name: name, Header: []string{"variable", "kind", "missing_ratio", "completeness", "distinct"}}
	for _, p := range profiles {
		s.Rows = append(s.Rows, []string{p.Variable, string(p.Kind),
			strconv.FormatFloat(p.MissingRatio, 'f', 4, 64), strconv.FormatFloat(p.Completeness, 'f', 4, 64),
			strconv.Itoa(p.Distinct)})
	}
	return s
}
