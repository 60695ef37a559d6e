package reactions

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidVoteValue indicates a vote value other than +1 or -1
	ErrInvalidVoteValue = errors.New("invalid vote value: must be 1 or -1")

	// ErrInvalidSubject indicates an unknown subject kind or empty subject id
	ErrInvalidSubject = errors.New("invalid subject")

	// ErrInvalidVoter indicates a voter identity that cannot be used as a dedup key
	ErrInvalidVoter = errors.New("invalid voter identity")

	// ErrSubjectNotFound indicates a vote against a subject the catalogue no longer has
	ErrSubjectNotFound = errors.New("subject not found")
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
