package errors

import (
	stderrors "errors"
	"fmt"

	"gocredit/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code     string
	Message  string
	Variable string // offending variable, bin or record when known
	Cause    error
}

func (e *AppError) Error() string {
	msg := e.Message
	if e.Variable != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Variable)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:     appErr.Code,
			Message:  message,
			Variable: appErr.Variable,
			Cause:    err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeInvalidColumn = "INVALID_COLUMN"
	CodeDegenerateBin = "DEGENERATE_BIN"
	CodeConfiguration = "CONFIGURATION"
	CodeModelFit      = "MODEL_FIT"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeInternalError = "INTERNAL_ERROR"
)

// InvalidColumn reports a named column that is absent or has the wrong type.
// cause should be one of the core.ErrInvalidColumn family.
func InvalidColumn(column string, cause error) *AppError {
	if cause == nil {
		cause = core.ErrInvalidColumn
	}
	return &AppError{
		Code:     CodeInvalidColumn,
		Message:  "invalid column",
		Variable: column,
		Cause:    cause,
	}
}

// DegenerateBin reports a bin whose population, events or non-events are zero
// where a log-odds quantity is required.
func DegenerateBin(variable, bin, reason string) *AppError {
	return &AppError{
		Code:     CodeDegenerateBin,
		Message:  fmt.Sprintf("bin %s: %s", bin, reason),
		Variable: variable,
		Cause:    core.ErrDegenerateBin,
	}
}

// Configuration reports an invalid call parameter.
func Configuration(field, reason string) *AppError {
	return &AppError{
		Code:     CodeConfiguration,
		Message:  reason,
		Variable: field,
		Cause:    core.ErrConfiguration,
	}
}

// ModelFit reports a regression fit that failed. cause should wrap core.ErrModelFit.
func ModelFit(variable string, cause error) *AppError {
	if cause == nil {
		cause = core.ErrModelFit
	}
	return &AppError{
		Code:     CodeModelFit,
		Message:  "model fit failed",
		Variable: variable,
		Cause:    cause,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidInput,
		Message: message,
		Cause:   core.ErrInvalidColumn,
	}
}
