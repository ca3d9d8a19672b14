package coercer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gocredit/domain/core"
)

// TypeCoercer converts text columns into numeric predictors with fixed rules
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion rules
type CoercionConfig struct {
	AllowBoolean  bool `json:"allow_boolean"`  // map yes/no, true/false onto 1/0
	AllowPercent  bool `json:"allow_percent"`  // "12%" -> 0.12
	AllowCurrency bool `json:"allow_currency"` // strip currency symbols and codes
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		AllowBoolean:  true,
		AllowPercent:  true,
		AllowCurrency: true,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// Analysis counts how the values of a text column parse
type Analysis struct {
	TotalCount   int     `json:"total_count"`
	NumericCount int     `json:"numeric_count"`
	BooleanCount int     `json:"boolean_count"`
	NumericRatio float64 `json:"numeric_ratio"`
	// FirstFailure is the first value that parsed as neither kind
	FirstFailure string `json:"first_failure,omitempty"`
	FailureIndex int    `json:"failure_index"`
}

// Analyze classifies every value without converting the column
func (c *TypeCoercer) Analyze(values []string) Analysis {
	a := Analysis{TotalCount: len(values), FailureIndex: -1}
	for i, v := range values {
		if _, ok := c.ParseNumeric(v); ok {
			a.NumericCount++
			continue
		}
		if _, ok := c.ParseBoolean(v); ok {
			a.BooleanCount++
			continue
		}
		if a.FailureIndex < 0 {
			a.FailureIndex = i
			a.FirstFailure = v
		}
	}
	if a.TotalCount > 0 {
		a.NumericRatio = float64(a.NumericCount+a.BooleanCount) / float64(a.TotalCount)
	}
	return a
}

// CoerceColumn converts every value or fails. A column is never partially
// converted: one unparseable or missing value rejects the whole column.
func (c *TypeCoercer) CoerceColumn(values []string) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		if f, ok := c.ParseNumeric(v); ok {
			out[i] = f
			continue
		}
		if b, ok := c.ParseBoolean(v); ok {
			out[i] = b
			continue
		}
		return nil, fmt.Errorf("%w: row %d value %q", core.ErrNonNumeric, i, v)
	}
	return out, nil
}

// ParseNumeric parses a single value. It handles parenthesised negatives,
// currency symbols, percentages and European decimal commas.
func (c *TypeCoercer) ParseNumeric(raw string) (float64, bool) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = strings.TrimSuffix(strings.TrimPrefix(clean, "("), ")")
		negative = true
	}

	if c.config.AllowCurrency {
		for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY"} {
			clean = strings.ReplaceAll(clean, symbol, "")
		}
		clean = strings.TrimSpace(clean)
	}

	percent := false
	if c.config.AllowPercent && strings.HasSuffix(clean, "%") {
		clean = strings.TrimSpace(strings.TrimSuffix(clean, "%"))
		percent = true
	}

	hasComma := strings.Contains(clean, ",")
	hasPeriod := strings.Contains(clean, ".")
	hasSpace := strings.Contains(clean, " ")
	switch {
	case hasComma && (hasPeriod || hasSpace):
		// 1.234,56 or 1 234,56 when the comma comes last with up to 3 digits
		after := clean[strings.LastIndex(clean, ",")+1:]
		if len(after) <= 3 && isDigits(after) {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.ReplaceAll(clean, " ", "")
			clean = strings.ReplaceAll(clean, ",", ".")
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case hasComma:
		clean = strings.ReplaceAll(clean, ",", ".")
	default:
		clean = strings.ReplaceAll(clean, " ", "")
	}

	if negative {
		clean = "-" + clean
	}

	val, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	if percent {
		val /= 100
	}
	return val, true
}

// ParseBoolean maps common boolean spellings onto 1 and 0
func (c *TypeCoercer) ParseBoolean(raw string) (float64, bool) {
	if !c.config.AllowBoolean {
		return 0, false
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "y", "on":
		return 1, true
	case "false", "no", "n", "off":
		return 0, true
	}
	return 0, false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
