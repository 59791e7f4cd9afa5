package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Field   string // optional field path, e.g. "analysis_steps[2].filters[0].operator"
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
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
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Field:   appErr.Field,
			Message: message,
			Cause:   appErr,
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
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}

// Error codes used across the engine. Validation and IO errors are fatal for
// the whole request; data and compute errors are confined to a single step.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeDataError       = "DATA_ERROR"
	CodeComputeError    = "COMPUTE_ERROR"
	CodeIOError         = "IO_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
)

// Validation creates a fatal recipe validation error with a field path.
func Validation(field, message string) *AppError {
	return &AppError{Code: CodeValidationError, Field: field, Message: message}
}

// Validationf creates a fatal recipe validation error with a formatted message.
func Validationf(field, format string, args ...interface{}) *AppError {
	return &AppError{Code: CodeValidationError, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Data creates a per-step data error (missing column, empty input).
func Data(message string) *AppError {
	return New(CodeDataError, message)
}

// Dataf creates a per-step data error with a formatted message.
func Dataf(format string, args ...interface{}) *AppError {
	return New(CodeDataError, fmt.Sprintf(format, args...))
}

// Compute creates a per-step computation error (singular design matrix,
// nothing numeric to aggregate).
func Compute(message string) *AppError {
	return New(CodeComputeError, message)
}

// Computef creates a per-step computation error with a formatted message.
func Computef(format string, args ...interface{}) *AppError {
	return New(CodeComputeError, fmt.Sprintf(format, args...))
}

// IO creates a fatal ingestion/transport error.
func IO(message string, cause error) *AppError {
	return &AppError{Code: CodeIOError, Message: message, Cause: cause}
}
