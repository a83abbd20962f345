package domain

import (
	"errors"
	"fmt"
)

// Error codes used by WeatherError. Handlers map them to HTTP status codes.
const (
	CodeConfigurationMissing = "CONFIGURATION_MISSING"
	CodeUpstreamTransport    = "UPSTREAM_TRANSPORT"
	CodeUpstreamData         = "UPSTREAM_DATA"
	CodeGeocodingFailed      = "GEOCODING_FAILED"
	CodeLocationUnavailable  = "LOCATION_UNAVAILABLE"
	CodeValidationFailed     = "VALIDATION_FAILED"
	CodeNotFound             = "NOT_FOUND"
)

// WeatherError represents domain-specific errors that can occur while building a report.
// It provides structured error information with error codes, the upstream response that
// caused it (if any) and an optional underlying cause.
type WeatherError struct {
	// Code identifies the type of error for programmatic handling
	Code string

	// Message provides a human-readable error description
	Message string

	// Status is the upstream HTTP status code, zero when no response was received
	Status int

	// Body is the upstream response body kept for diagnostics
	Body string

	// Cause wraps an underlying error if applicable
	Cause error
}

// Error implements the error interface for WeatherError.
// It formats the error message to include the code, message, and underlying cause.
func (e WeatherError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e WeatherError) Unwrap() error {
	return e.Cause
}

// NewError builds a WeatherError without upstream details.
func NewError(code, message string, cause error) *WeatherError {
	return &WeatherError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ErrorCode returns the WeatherError code carried by err, or "" when err is
// not a WeatherError.
func ErrorCode(err error) string {
	var e *WeatherError

	if errors.As(err, &e) {
		return e.Code
	}

	return ""
}
