package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"fam450/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
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

// Wrap wraps an error with additional context. Domain errors keep their code.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    GetCode(err),
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

// IsAppError checks if an error is, or wraps, an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError, else the code of a known domain error,
// else CodeInternalError.
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return FromDomain(err)
}

// FromDomain classifies domain sentinels.
func FromDomain(err error) string {
	switch {
	case core.IsInvalidParameter(err):
		return CodeInvalidParameter
	case core.IsUnsupportedDirection(err):
		return CodeUnsupportedDirection
	case core.IsUnattainable(err):
		return CodeUnattainableResult
	default:
		return CodeInternalError
	}
}

// HTTPStatus maps an error code to a response status.
func HTTPStatus(code string) int {
	switch code {
	case CodeInvalidParameter, CodeUnsupportedDirection, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnattainableResult:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Predefined error codes
const (
	CodeConfigInvalid        = "CONFIG_INVALID"
	CodeInvalidParameter     = "INVALID_PARAMETER"
	CodeUnsupportedDirection = "UNSUPPORTED_DIRECTION"
	CodeUnattainableResult   = "UNATTAINABLE_RESULT"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeExportFailed         = "EXPORT_FAILED"
	CodeInternalError        = "INTERNAL_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func ExportFailed(format string, cause error) *AppError {
	return &AppError{
		Code:    CodeExportFailed,
		Message: fmt.Sprintf("%s export failed", format),
		Cause:   cause,
	}
}
