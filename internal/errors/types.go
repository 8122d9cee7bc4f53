package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeScript     ErrorType = "script"
	ErrorTypeLookup     ErrorType = "lookup"
)

// Common error codes.
const (
	ErrCodeInvalidPath       = "ERR_INVALID_PATH"
	ErrCodePathTraversal     = "ERR_PATH_TRAVERSAL"
	ErrCodeComponentNotFound = "ERR_COMPONENT_NOT_FOUND"
	ErrCodeConfigInvalid     = "ERR_CONFIG_INVALID"
	ErrCodeScriptFailed      = "ERR_SCRIPT_FAILED"
	ErrCodeReadFailed        = "ERR_READ_FAILED"
	ErrCodeWriteFailed       = "ERR_WRITE_FAILED"
	ErrCodeInvalidName       = "ERR_INVALID_NAME"
	ErrCodeComponentExists   = "ERR_COMPONENT_EXISTS"
)

// PartialsError is a structured error type with context.
type PartialsError struct {
	Type      ErrorType
	Code      string
	Message   string
	Cause     error
	Component string
	FilePath  string
}

// Error implements the error interface.
func (e *PartialsError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *PartialsError) Unwrap() error {
	return e.Cause
}

// Is matches another PartialsError with the same type and code.
func (e *PartialsError) Is(target error) bool {
	var t *PartialsError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithComponent adds component context.
func (e *PartialsError) WithComponent(component string) *PartialsError {
	e.Component = component

	return e
}

// WithPath adds the source file the error relates to.
func (e *PartialsError) WithPath(path string) *PartialsError {
	e.FilePath = path

	return e
}

// WithCause sets the underlying error.
func (e *PartialsError) WithCause(cause error) *PartialsError {
	e.Cause = cause

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *PartialsError {
	return &PartialsError{Type: ErrorTypeValidation, Code: code, Message: message}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *PartialsError {
	return &PartialsError{Type: ErrorTypeConfig, Code: code, Message: message}
}

// NewIOError creates an I/O error wrapping cause.
func NewIOError(code, message string, cause error) *PartialsError {
	return &PartialsError{Type: ErrorTypeIO, Code: code, Message: message, Cause: cause}
}

// NewScriptError wraps a failure raised while running a component script.
func NewScriptError(component, path string, cause error) *PartialsError {
	return &PartialsError{
		Type:      ErrorTypeScript,
		Code:      ErrCodeScriptFailed,
		Message:   "script execution failed",
		Cause:     cause,
		Component: component,
		FilePath:  path,
	}
}

// ErrPathTraversal reports a configured path that escapes the working tree.
func ErrPathTraversal(path string) *PartialsError {
	return NewValidationError(ErrCodePathTraversal, "path traversal not allowed: "+path)
}

// IsScriptError reports whether err came from a component script.
func IsScriptError(err error) bool {
	var pe *PartialsError
	if errors.As(err, &pe) {
		return pe.Type == ErrorTypeScript
	}

	return false
}

// IsCode reports whether err is a PartialsError carrying code.
func IsCode(err error, code string) bool {
	var pe *PartialsError
	if errors.As(err, &pe) {
		return pe.Code == code
	}

	return false
}
