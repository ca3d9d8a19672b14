package binning

import (
	"fmt"
	"sort"
	"strconv"

	"gocredit/domain/core"
)

// Method records how a rule's edges were derived
type Method string

const (
	MethodQuantile Method = "quantile"
	MethodUniform  Method = "uniform"
	MethodExplicit Method = "explicit"
)

// WOESentinel is the magnitude used in place of an infinite weight of evidence
// when a bin has no events (−WOESentinel) or no non-events (+WOESentinel).
const WOESentinel = 20.0

// Rule is a frozen set of k+1 increasing edges defining k bins. Bins are
// left-closed and right-open except the last, which is closed. Values outside
// the fitted range belong to the nearest boundary bin.
type Rule struct {
	Variable    string        `json:"variable"`
	Method      Method        `json:"method"`
	Edges       []float64     `json:"edges"`
	Fingerprint core.RuleHash `json:"fingerprint"`
}

// NewRule copies edges and fingerprints the result
func NewRule(variable string, method Method, edges []float64) Rule {
	e := append([]float64(nil), edges...)
	return Rule{
		Variable:    variable,
		Method:      method,
		Edges:       e,
		Fingerprint: core.ComputeRuleHash(variable, string(method), e),
	}
}

// Bins returns the number of bins
func (r Rule) Bins() int {
	if len(r.Edges) < 2 {
		return 0
	}
	return len(r.Edges) - 1
}

// Index returns the bin a value falls into
func (r Rule) Index(v float64) int {
	if r.Bins() <= 1 {
		return 0
	}
	interior := r.Edges[1 : len(r.Edges)-1]
	return sort.Search(len(interior), func(i int) bool { return interior[i] > v })
}

// Label renders bin i as an interval
func (r Rule) Label(i int) string {
	if i < 0 || i >= r.Bins() {
		return fmt.Sprintf("bin_%d", i)
	}
	lo := strconv.FormatFloat(r.Edges[i], 'g', 6, 64)
	hi := strconv.FormatFloat(r.Edges[i+1], 'g', 6, 64)
	if i == r.Bins()-1 {
		return "[" + lo + ", " + hi + "]"
	}
	return "[" + lo + ", " + hi + ")"
}

// Labels renders every bin
func (r Rule) Labels() []string {
	out := make([]string, r.Bins())
	for i := range out {
		out[i] = r.Label(i)
	}
	return out
}

// RuleSet maps a variable name to its frozen rule
type RuleSet map[string]Rule

// Statistics summarises one bin against the outcome. EventShare and
// NonEventShare are the bin's share of all events and of all non-events.
type Statistics struct {
	Bin           int     `json:"bin"`
	Label         string  `json:"label"`
	Population    int     `json:"population"`
	Events        int     `json:"events"`
	NonEvents     int     `json:"non_events"`
	EventShare    float64 `json:"event_share"`
	NonEventShare float64 `json:"non_event_share"`
	WOE           float64 `json:"woe"`
	Degenerate    bool    `json:"degenerate"` // WOE is the sentinel, not a log ratio
}

// WOETable looks up the weight of evidence of a bin index
type WOETable map[int]float64
