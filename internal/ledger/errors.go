package ledger

import (
	"errors"
	"fmt"
)

// ErrValidation matches every business-rule violation raised by this package
// and by the operation handlers built on it.
var ErrValidation = errors.New("validation failed")

// ValidationError is a business-rule violation detected before any write.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Message, e.Value)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// Invalidf creates a ValidationError without a field.
func Invalidf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a business-rule violation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
