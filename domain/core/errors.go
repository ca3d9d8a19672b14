package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input contract errors
	ErrInvalidColumn  = errors.New("invalid column")
	ErrMissingColumn  = fmt.Errorf("%w: column not found", ErrInvalidColumn)
	ErrNonNumeric     = fmt.Errorf("%w: column is not numeric", ErrInvalidColumn)
	ErrLabelDomain    = fmt.Errorf("%w: outcome label outside {0,1}", ErrInvalidColumn)
	ErrLengthMismatch = fmt.Errorf("%w: column length mismatch", ErrInvalidColumn)

	// Numeric degeneracy errors
	ErrDegenerateBin = errors.New("degenerate bin")

	// Parameter errors
	ErrConfiguration = errors.New("invalid configuration")

	// Fitting errors
	ErrModelFit       = errors.New("model fit failed")
	ErrNotConverged   = fmt.Errorf("%w: did not converge", ErrModelFit)
	ErrSingularSystem = fmt.Errorf("%w: singular system", ErrModelFit)
)

// Error constructors with context
func NewColumnError(column string, err error) error {
	return fmt.Errorf("%w (column %q)", err, column)
}

func NewDegenerateBinError(variable string, bin string, reason string) error {
	return fmt.Errorf("%w: variable %s bin %s: %s", ErrDegenerateBin, variable, bin, reason)
}

func NewConfigurationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrConfiguration, field, reason)
}

// Error checking helpers
func IsInvalidColumnError(err error) bool {
	return errors.Is(err, ErrInvalidColumn)
}

func IsDegenerateBinError(err error) bool {
	return errors.Is(err, ErrDegenerateBin)
}

func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsModelFitError(err error) bool {
	return errors.Is(err, ErrModelFit)
}
