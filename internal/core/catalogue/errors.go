package catalogue

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the place or image does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidID indicates an id that is not a positive integer
	ErrInvalidID = errors.New("invalid id")
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
