// Package errors defines the application error model shared by the mind map
// core and the outer HTTP surface.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorType classifies an AppError.
type ErrorType string

const (
	// Core kinds raised by the graph model.
	ErrorTypeMalformedInput   ErrorType = "MALFORMED_INPUT"
	ErrorTypeInvalidReference ErrorType = "INVALID_REFERENCE"
	ErrorTypeExportFailure    ErrorType = "EXPORT_FAILURE"

	// Request and access errors
	ErrorTypeValidation   ErrorType = "VALIDATION"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"

	// Infrastructure errors
	ErrorTypeInternal    ErrorType = "INTERNAL"
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"
	ErrorTypeDatabase    ErrorType = "DATABASE"
	ErrorTypeExternal    ErrorType = "EXTERNAL"
)

// AppError is the error value returned across package boundaries.
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode sets a machine readable code.
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetail attaches one key to Details.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause wraps an underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

func newAppError(t ErrorType, status int, message string) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		HTTPStatus: status,
		StackTrace: captureStackTrace(),
	}
}

func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(4, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return b.String()
}

// NewMalformedInputError reports a payload that cannot be parsed at all.
func NewMalformedInputError(message string, cause error) *AppError {
	return newAppError(ErrorTypeMalformedInput, http.StatusBadRequest, message).WithCause(cause)
}

// NewInvalidReferenceError reports an edge operation naming an unknown node.
func NewInvalidReferenceError(nodeID string) *AppError {
	return newAppError(ErrorTypeInvalidReference, http.StatusUnprocessableEntity,
		fmt.Sprintf("node %q does not exist", nodeID)).WithDetail("node_id", nodeID)
}

// NewExportFailureError reports a failed render or file generation.
func NewExportFailureError(format string, cause error) *AppError {
	return newAppError(ErrorTypeExportFailure, http.StatusInternalServerError,
		fmt.Sprintf("%s export failed", format)).WithCause(cause).WithDetail("format", format)
}

func NewValidationError(message string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message)
}

func NewNotFoundError(resource string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, fmt.Sprintf("%s not found", resource))
}

func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return newAppError(ErrorTypeUnauthorized, http.StatusUnauthorized, message)
}

func NewForbiddenError(message string) *AppError {
	if message == "" {
		message = "forbidden"
	}
	return newAppError(ErrorTypeForbidden, http.StatusForbidden, message)
}

func NewInternalError(message string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message)
}

func NewUnavailableError(service string) *AppError {
	return newAppError(ErrorTypeUnavailable, http.StatusServiceUnavailable,
		fmt.Sprintf("service '%s' is unavailable", service))
}

func NewDatabaseError(operation string, err error) *AppError {
	return newAppError(ErrorTypeDatabase, http.StatusInternalServerError,
		fmt.Sprintf("database operation '%s' failed", operation)).WithCause(err)
}

func NewExternalError(service string, err error) *AppError {
	return newAppError(ErrorTypeExternal, http.StatusBadGateway,
		fmt.Sprintf("external service '%s' error", service)).WithCause(err)
}

// GetAppError extracts the first AppError from an error chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType reports whether err carries an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

func IsMalformedInput(err error) bool   { return IsType(err, ErrorTypeMalformedInput) }
func IsInvalidReference(err error) bool { return IsType(err, ErrorTypeInvalidReference) }
func IsExportFailure(err error) bool    { return IsType(err, ErrorTypeExportFailure) }
func IsValidation(err error) bool       { return IsType(err, ErrorTypeValidation) }
func IsNotFound(err error) bool         { return IsType(err, ErrorTypeNotFound) }
func IsForbidden(err error) bool        { return IsType(err, ErrorTypeForbidden) }
func IsUnauthorized(err error) bool     { return IsType(err, ErrorTypeUnauthorized) }

// Wrap adds context to err. AppErrors keep their type; anything else
// becomes an internal error.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr := GetAppError(err); appErr != nil {
		wrapped := *appErr
		wrapped.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		wrapped.Cause = err
		return &wrapped
	}
	return NewInternalError(message).WithCause(err)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
