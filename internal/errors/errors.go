package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeImageLoad  ErrorType = "image_load"
	ErrorTypeUsage      ErrorType = "usage"
	ErrorTypeInput      ErrorType = "input"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Process exit codes. Verdict codes live next to the command; these cover failures.
const (
	ExitUsage     = 2
	ExitImageLoad = 3
	ExitInput     = 4
	ExitInternal  = 5
)

// AppError represents a structured application error
type AppError struct {
	Type     ErrorType `json:"type"`
	Message  string    `json:"message"`
	Details  string    `json:"details,omitempty"`
	ExitCode int       `json:"exit_code"`
	Cause    error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewImageLoadError creates an error for an image that could not be fetched or decoded
func NewImageLoadError(message string, cause error) *AppError {
	return &AppError{
		Type:     ErrorTypeImageLoad,
		Message:  message,
		ExitCode: ExitImageLoad,
		Cause:    cause,
	}
}

// NewUsageError creates an error for a malformed command line
func NewUsageError(message string, cause error) *AppError {
	return &AppError{
		Type:     ErrorTypeUsage,
		Message:  message,
		ExitCode: ExitUsage,
		Cause:    cause,
	}
}

// NewInputError creates an error for a failed interactive read
func NewInputError(message string, cause error) *AppError {
	return &AppError{
		Type:     ErrorTypeInput,
		Message:  message,
		ExitCode: ExitInput,
		Cause:    cause,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:     ErrorTypeValidation,
		Message:  message,
		ExitCode: ExitImageLoad,
		Cause:    cause,
	}
}

// NewConfigError creates a new configuration error
func NewConfigError(message string, cause error) *AppError {
	return &AppError{
		Type:     ErrorTypeConfig,
		Message:  message,
		ExitCode: ExitInternal,
		Cause:    cause,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:     ErrorTypeInternal,
		Message:  message,
		ExitCode: ExitInternal,
		Cause:    cause,
	}
}

// IsType checks if the error chain contains an AppError of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetExitCode extracts the process exit code from an error
func GetExitCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}
	return ExitInternal
}
