package util

import (
	"errors"
	"fmt"
	"strings"
)

// Common error types for the migration tool
var (
	// ErrInvalidConfig indicates a configuration error
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrTargetExists indicates the target RRD file already exists
	ErrTargetExists = errors.New("target already exists")

	// ErrResourceListMissing indicates a .vmlist or .members file could not be read
	ErrResourceListMissing = errors.New("resource list not readable")

	// ErrCancelled indicates an operation was cancelled
	ErrCancelled = errors.New("operation cancelled")
)

// ResourceError wraps an error with the resource (node name, VMID, storage
// id) it concerns.
type ResourceError struct {
	Resource string
	Err      error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource %q: %v", e.Resource, e.Err)
}

// Unwrap returns the wrapped error for errors.Is/As compatibility
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// WrapResourceError wraps an error with resource context
func WrapResourceError(resource string, err error) error {
	if err == nil {
		return nil
	}
	return &ResourceError{
		Resource: resource,
		Err:      err,
	}
}

// MultiError aggregates multiple errors, typically one per migration phase
type MultiError struct {
	Errors []error
}

// Error implements the error interface
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:", len(m.Errors)))
	for i, err := range m.Errors {
		if i < 10 { // Limit to first 10 errors in the message
			sb.WriteString(fmt.Sprintf("\n  %d. %v", i+1, err))
		} else if i == 10 {
			sb.WriteString(fmt.Sprintf("\n  ... and %d more errors", len(m.Errors)-10))
			break
		}
	}
	return sb.String()
}

// Unwrap returns the errors for errors.Is/As compatibility
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Add adds an error to the multi-error
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// ErrorOrNil returns nil if no errors were added, otherwise returns the MultiError
func (m *MultiError) ErrorOrNil() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}

// CombineErrors combines multiple errors into a single error, filtering out
// nils. Returns nil if all errors are nil.
func CombineErrors(errs ...error) error {
	m := &MultiError{Errors: make([]error, 0, len(errs))}
	for _, err := range errs {
		m.Add(err)
	}
	return m.ErrorOrNil()
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	if v.Value != nil {
		return fmt.Sprintf("validation failed for field %q (value: %v): %s", v.Field, v.Value, v.Message)
	}
	return fmt.Sprintf("validation failed for field %q: %s", v.Field, v.Message)
}

// Unwrap marks every validation failure as a configuration error.
func (v *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// IsTargetExists checks if an error is a target-exists error
func IsTargetExists(err error) bool {
	return errors.Is(err, ErrTargetExists)
}

// IsCancelled checks if an error is a cancellation error
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// FriendlyError converts technical errors to user-friendly messages
func FriendlyError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case IsCancelled(err):
		return "Operation was cancelled."
	case IsTargetExists(err):
		return "Target RRD file already exists. Re-run with --force to overwrite migrated files."
	case errors.Is(err, ErrResourceListMissing):
		return "Resource list could not be read. Check the --resources directory for .vmlist and .members files."
	case errors.Is(err, ErrInvalidConfig):
		return fmt.Sprintf("Invalid configuration: %s. Check your config file and command-line flags.", err.Error())
	default:
		return err.Error()
	}
}

// WrapErrorf wraps an error with a formatted message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
