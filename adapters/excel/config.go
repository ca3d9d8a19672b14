package excel

import (
	"gocredit/adapters/datareadiness/coercer"
)

// ExcelConfig holds configuration for spreadsheet and CSV sources
type ExcelConfig struct {
	Sheet          string                 `json:"sheet" yaml:"sheet"` // empty selects the first sheet
	CoercionConfig coercer.CoercionConfig `json:"coercion_config" yaml:"coercion_config"`
}

// DefaultExcelConfig returns sensible defaults for Excel processing
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		CoercionConfig: coercer.DefaultCoercionConfig(),
	}
}
