package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeConflict indicates a conflict with existing data
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeUnauthorized indicates unauthorized access
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeExternal indicates an error from external service
	ErrorTypeExternal ErrorType = "EXTERNAL"

	// ErrorTypeUpstream indicates the external service answered with a non-2xx status
	// whose code should be mirrored back to the caller
	ErrorTypeUpstream ErrorType = "UPSTREAM"

	// ErrorTypeConfiguration indicates a required setting is missing
	ErrorTypeConfiguration ErrorType = "CONFIGURATION"
)

// AppError represents an application error
type AppError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Err        error
	// Fields are extra members of the JSON error body, e.g. details or raw
	Fields map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithField attaches an extra member to the error body and returns e
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// HTTPStatus maps the error type to a response status code
func (e *AppError) HTTPStatus() int {
	switch e.Type {
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case ErrorTypeExternal:
		return http.StatusBadGateway
	case ErrorTypeUpstream:
		if e.StatusCode >= 400 && e.StatusCode <= 599 {
			return e.StatusCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// As extracts an *AppError from err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an AppError of the given type
func IsType(err error, t ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == t
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: message,
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// NewExternalError creates a new external service error
func NewExternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExternal,
		Message: message,
		Err:     err,
	}
}

// NewUpstreamError creates an error that mirrors an upstream status code
func NewUpstreamError(message string, statusCode int, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeUpstream,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConfiguration,
		Message: message,
	}
}
