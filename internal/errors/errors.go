// Package errors provides a lightweight structured error type (BuildError)
// for category-based classification and exit-code mapping in the CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a smartbuild error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryValidation ErrorCategory = "validation"
	CategoryPlatform   ErrorCategory = "platform"
	CategoryConfig     ErrorCategory = "config"

	// Build pipeline errors
	CategoryStage      ErrorCategory = "stage"
	CategoryScript     ErrorCategory = "script"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Everything else
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// BuildError is a structured error with category, severity, and context.
// For CategoryStage errors, ExitCode carries the failing child process's
// exit status so the CLI can propagate it.
type BuildError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	ExitCode int           `json:"exit_code,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for BuildError
type ContextFields map[string]any

// Error implements the error interface
func (e *BuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *BuildError) WithContext(key string, value any) *BuildError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// WithExitCode records the child process exit status on the error.
func (e *BuildError) WithExitCode(code int) *BuildError {
	e.ExitCode = code
	return e
}

// New creates a new BuildError
func New(category ErrorCategory, severity ErrorSeverity, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new BuildError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// Validation creates a validation error (incompatible options/platform).
func Validation(message string) *BuildError {
	return New(CategoryValidation, SeverityError, message)
}

// PlatformError creates an unsupported-platform error.
func PlatformError(message string) *BuildError {
	return New(CategoryPlatform, SeverityFatal, message)
}

// StageFailure creates a stage error carrying the child exit code.
func StageFailure(stage string, exitCode int, message string) *BuildError {
	e := New(CategoryStage, SeverityFatal, message).WithExitCode(exitCode)
	return e.WithContext("stage", stage)
}

// MissingScript creates an error for a stage whose entry point cannot be located.
func MissingScript(stage, script string) *BuildError {
	e := New(CategoryScript, SeverityFatal, fmt.Sprintf("build script for stage %s not found: %s", stage, script))
	return e.WithContext("stage", stage)
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if be, ok := err.(*BuildError); ok {
		return be.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a BuildError
func GetCategory(err error) ErrorCategory {
	if be, ok := err.(*BuildError); ok {
		return be.Category
	}
	return CategoryInternal
}
