package utils

import (
	"errors"
	"fmt"
	"strings"
)

// Custom error types
var (
	// ErrValidation is returned when a single field fails its format or checksum rule
	ErrValidation = errors.New("validation error")

	// ErrIncompleteSubmission is returned when a required field is blank
	ErrIncompleteSubmission = errors.New("incomplete submission")

	// ErrStorage is returned when the record store cannot complete an operation
	ErrStorage = errors.New("storage error")
)

// ValidationError describes one violated field rule
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// IncompleteSubmissionError lists the fields that were left blank
type IncompleteSubmissionError struct {
	Fields []string
}

func (e *IncompleteSubmissionError) Error() string {
	if len(e.Fields) == 0 {
		return "incomplete submission: please fill in all fields"
	}
	return fmt.Sprintf("incomplete submission: missing %s", strings.Join(e.Fields, ", "))
}

func (e *IncompleteSubmissionError) Unwrap() error {
	return ErrIncompleteSubmission
}

// StorageError represents a failure in schema management or a write/read against the store
type StorageError struct {
	Operation string
	Cause     error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage error during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("storage error during %s", e.Operation)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *StorageError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrStorage}
	}
	return []error{ErrStorage, e.Cause}
}

// Error wrapping functions

// WrapValidationError wraps a field failure as a validation error
func WrapValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// WrapStorageError wraps an error as a storage error. A nil cause yields nil.
func WrapStorageError(operation string, cause error) error {
	if cause == nil {
		return nil
	}
	var existing *StorageError
	if errors.As(cause, &existing) {
		return cause
	}
	return &StorageError{
		Operation: operation,
		Cause:     cause,
	}
}

// Error checking functions

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsIncompleteSubmission checks if an error reports blank fields
func IsIncompleteSubmission(err error) bool {
	return errors.Is(err, ErrIncompleteSubmission)
}

// IsStorageError checks if an error is a storage error
func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorage)
}
