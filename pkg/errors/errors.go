// Package errors provides custom error types for the application.
// It defines domain-specific errors with error codes for better error handling and API responses.
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode represents application error codes
type ErrorCode string

// Error codes for different error categories
const (
	// General errors (1xxx)
	ErrCodeInternal   ErrorCode = "E1000"
	ErrCodeValidation ErrorCode = "E1001"
	ErrCodeNotFound   ErrorCode = "E1002"
	ErrCodeConflict   ErrorCode = "E1003"

	// Telemetry source errors (2xxx)
	ErrCodeDataUnavailable   ErrorCode = "E2001"
	ErrCodeUnknownMetricPath ErrorCode = "E2002"

	// Report composition errors (3xxx)
	ErrCodeUnknownTemplate      ErrorCode = "E3001"
	ErrCodeMissingChartData     ErrorCode = "E3002"
	ErrCodeChartRenderingFailed ErrorCode = "E3003"
	ErrCodeArtifactWrite        ErrorCode = "E3004"

	// Record store errors (4xxx)
	ErrCodeRecordNotFound ErrorCode = "E4001"

	// Database errors (5xxx)
	ErrCodeDBConnection ErrorCode = "E5001"
	ErrCodeDBQuery      ErrorCode = "E5002"
	ErrCodeDBMigration  ErrorCode = "E5003"

	// Configuration errors (6xxx)
	ErrCodeConfigNotFound ErrorCode = "E6001"
	ErrCodeConfigInvalid  ErrorCode = "E6002"
	ErrCodeConfigParse    ErrorCode = "E6003"
)

// AppError represents an application-level error with code and context
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
	Details any       `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code for the error
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeNotFound, ErrCodeRecordNotFound, ErrCodeUnknownMetricPath:
		return http.StatusNotFound
	case ErrCodeValidation, ErrCodeUnknownTemplate:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeDataUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with AppError
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// Common error constructors for convenience

// ErrInternal creates an internal server error
func ErrInternal(message string, err error) *AppError {
	return Wrap(ErrCodeInternal, message, err)
}

// ErrValidation creates a validation error
func ErrValidation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// ErrDataUnavailable creates a snapshot fetch failure error.
// The message is user-facing; the wrapped error carries the endpoint detail.
func ErrDataUnavailable(err error) *AppError {
	return Wrap(ErrCodeDataUnavailable, "telemetry data is unavailable", err)
}

// ErrUnknownTemplate creates an error for a template name outside the registry
func ErrUnknownTemplate(name string) *AppError {
	return New(ErrCodeUnknownTemplate, fmt.Sprintf("unknown report template: %s", name))
}

// ErrUnknownMetricPath creates an error for an unresolvable snapshot path
func ErrUnknownMetricPath(path string) *AppError {
	return New(ErrCodeUnknownMetricPath, fmt.Sprintf("unknown metric path: %s", path))
}

// ErrRecordNotFound creates an error for a missing report record
func ErrRecordNotFound(id string) *AppError {
	return New(ErrCodeRecordNotFound, fmt.Sprintf("report record not found: %s", id))
}

// ErrMissingChartData creates an error for chart composition without chart series
func ErrMissingChartData() *AppError {
	return New(ErrCodeMissingChartData, "chart series not present in snapshot")
}

// ErrChartRenderingFailed creates a per-chart rasterization error
func ErrChartRenderingFailed(name string, err error) *AppError {
	return Wrap(ErrCodeChartRenderingFailed, fmt.Sprintf("failed to render chart: %s", name), err)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError attempts to convert an error to AppError
func AsAppError(err error) (*AppError, bool) {
	appErr, ok := err.(*AppError)
	return appErr, ok
}

// HasCode reports whether err is an AppError carrying the given code
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
