package app

import (
	"strconv"

	"gocredit/domain/scale"
	"gocredit/domain/verdict"
	"gocredit/internal/binning"
	"gocredit/internal/calibration"
	"gocredit/internal/discrimination"
	"gocredit/internal/infovalue"
	"gocredit/internal/validation"
	"gocredit/ports"
)

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

// ScaleSection lays out a master scale one grade per row
func ScaleSection(ms scale.MasterScale) ports.Section {
	s := ports.Section{
		Name: "Master scale",
		Header: []string{"grade", "pd_lower", "pd_upper", "total", "good", "bad",
			"total_share", "bad_rate", "avg_pd", "std_pd", "score"},
	}
	scaled := len(ms.Rows) > 0 && ms.Rows[0].HasScaled
	if scaled {
		s.Header = append(s.Header, "scaled_score")
	}
	for _, r := range ms.Rows {
		row := []string{itoa(r.Grade), num(r.PDLower), num(r.PDUpper), itoa(r.Total), itoa(r.Good), itoa(r.Bad),
			num(r.TotalShare), num(r.BadRate), num(r.AvgPD), num(r.StdPD), num(r.Score)}
		if scaled {
			row = append(row, num(r.ScaledScore))
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

// ResultsSection lays out test results sharing one kind
func ResultsSection(name string, results []verdict.TestResult) ports.Section {
	s := ports.Section{
		Name:   name,
		Header: []string{"subject", "statistic", "p_value", "lower", "upper", "observed", "expected", "verdict"},
	}
	for _, r := range results {
		s.Rows = append(s.Rows, []string{r.Subject, num(r.Statistic), num(r.PValue), num(r.Lower), num(r.Upper),
			num(r.Observed), num(r.Expected), string(r.Verdict)})
	}
	return s
}

// StabilitySection lists PSI or SSI per variable
func StabilitySection(name string, results []validation.Stability) ports.Section {
	s := ports.Section{Name: name, Header: []string{"variable", "index", "bins", "verdict"}}
	for _, r := range results {
		s.Rows = append(s.Rows, []string{r.Variable, num(r.Statistic), itoa(len(r.Bins)), string(r.Verdict)})
	}
	return s
}

// AnchorSection shows the anchor point zones and verdict
func AnchorSection(r validation.AnchorResult) ports.Section {
	return ports.Section{
		Name:   "Anchor point",
		Header: []string{"central_tendency", "average_pd", "lower_red", "lower_green", "upper_green", "upper_red", "verdict"},
		Rows: [][]string{{num(r.Statistic), num(r.AveragePD), num(r.LowerRed), num(r.LowerGreen),
			num(r.UpperGreen), num(r.UpperRed), string(r.Verdict)}},
	}
}

// IVSection ranks variables by information value
func IVSection(ranked []infovalue.VariableIV) ports.Section {
	s := ports.Section{Name: "Information value", Header: []string{"variable", "iv", "strength"}}
	for _, v := range ranked {
		s.Rows = append(s.Rows, []string{v.Variable, num(v.IV), v.Strength})
	}
	return s
}

// WOESection lists every bin of every fitted variable
func WOESection(m *binning.WOEModel) ports.Section {
	s := ports.Section{
		Name:   "Weight of evidence",
		Header: []string{"variable", "bin", "population", "events", "non_events", "woe", "degenerate"},
	}
	for _, name := range m.Variables() {
		for _, st := range m.Statistics[name] {
			s.Rows = append(s.Rows, []string{name, st.Label, itoa(st.Population), itoa(st.Events), itoa(st.NonEvents),
				num(st.WOE), strconv.FormatBool(st.Degenerate)})
		}
	}
	return s
}

// GiniSection ranks variables by univariate Gini
func GiniSection(ranked []discrimination.VariableGini) ports.Section {
	s := ports.Section{Name: "Univariate Gini", Header: []string{"variable", "gini"}}
	for _, v := range ranked {
		s.Rows = append(s.Rows, []string{v.Variable, num(v.Gini)})
	}
	return s
}

// KFoldSection lists train and test Gini per fold plus the averages
func KFoldSection(r *discrimination.KFoldResult) ports.Section {
	s := ports.Section{Name: "K-fold Gini", Header: []string{"fold", "gini_train", "gini_test"}}
	for _, f := range r.Folds {
		s.Rows = append(s.Rows, []string{itoa(f.Fold), num(f.Train), num(f.Test)})
	}
	s.Rows = append(s.Rows, []string{"average", num(r.AverageTrain), num(r.AverageTest)})
	return s
}

// BayesianSection shows shifted grade PDs and the fitted mapping
func BayesianSection(r *calibration.BayesianResult) []ports.Section {
	grades := ports.Section{
		Name:   "Bayesian calibration",
		Header: []string{"grade", "total", "pd", "score", "calibrated_pd"},
	}
	for _, g := range r.Grades {
		grades.Rows = append(grades.Rows, []string{itoa(g.Grade), itoa(g.Total), num(g.PD), num(g.Score), num(g.CalibratedPD)})
	}
	model := ports.Section{
		Name:   "Calibration model",
		Header: []string{"average_pd", "central_tendency", "intercept", "slope", "r_squared", "formula"},
		Rows: [][]string{{num(r.AveragePD), num(r.CentralTendency), num(r.Model.Intercept), num(r.Model.Slope),
			num(r.RSquared), r.Model.Formula}},
	}
	return []ports.Section{grades, model}
}
