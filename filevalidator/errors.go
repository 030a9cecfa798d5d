package filevalidator

import (
	"errors"
	"fmt"
)

// ValidationErrorType represents different types of validation errors
type ValidationErrorType string

const (
	ErrorTypeSize    ValidationErrorType = "size"
	ErrorTypeCount   ValidationErrorType = "count"
	ErrorTypeRatio   ValidationErrorType = "ratio"
	ErrorTypePath    ValidationErrorType = "path"
	ErrorTypeContent ValidationErrorType = "content"
)

// ValidationError represents a rejected archive.
type ValidationError struct {
	// Type categorizes the validation failure.
	Type ValidationErrorType

	// Message is the human-readable error description.
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation error: %s", e.Type, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(errType ValidationErrorType, message string) *ValidationError {
	return &ValidationError{
		Type:    errType,
		Message: message,
	}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsErrorOfType checks if an error is a ValidationError of the specified type
func IsErrorOfType(err error, errType ValidationErrorType) bool {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Type == errType
	}
	return false
}
