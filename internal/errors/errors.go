package errors

import (
	"fmt"
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

// Wrap wraps an error with additional context, preserving its code
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
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

// Predefined error codes
const (
	CodeShapeMismatch     = "SHAPE_MISMATCH"
	CodeBadOrder          = "BAD_ORDER"
	CodeTableInvalid      = "TABLE_INVALID"
	CodeBoundsInvalid     = "BOUNDS_INVALID"
	CodeCurveInconsistent = "CURVE_INCONSISTENT"
	CodeRootBracket       = "ROOT_BRACKET"
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInternalError     = "INTERNAL_ERROR"
)

// Common error constructors

// ShapeMismatch reports mismatched slice or matrix dimensions.
func ShapeMismatch(format string, args ...interface{}) *AppError {
	return New(CodeShapeMismatch, fmt.Sprintf(format, args...))
}

// BadOrder reports an unusable Hermite truncation order.
func BadOrder(order int) *AppError {
	return New(CodeBadOrder, fmt.Sprintf("hermite order must be >= 1, got %d", order))
}

// TableInvalid reports an unusable transformation table.
func TableInvalid(message string) *AppError {
	return New(CodeTableInvalid, message)
}

// BoundsInvalid reports unusable interval indices or targets.
func BoundsInvalid(message string) *AppError {
	return New(CodeBoundsInvalid, message)
}

// CurveInconsistent reports a fitted curve that violates its control-point
// contract.
func CurveInconsistent(format string, args ...interface{}) *AppError {
	return New(CodeCurveInconsistent, fmt.Sprintf(format, args...))
}

// RootBracket reports a bracketed search whose endpoints do not straddle a
// root.
func RootBracket(message string) *AppError {
	return New(CodeRootBracket, message)
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}
