package operations

import (
	"errors"
	"fmt"

	"tracker/internal/models"
)

// ErrRecordNotFound is returned when an operation references a missing record.
var ErrRecordNotFound = errors.New("record not found")

// RecordError identifies the missing record.
type RecordError struct {
	Op         string
	Collection models.Collection
	ID         string
	Err        error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: %s %q: %v", e.Op, e.Collection, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

func (e *RecordError) Is(target error) bool {
	return target == e.Err
}

func notFound(op string, c models.Collection, id string) error {
	return &RecordError{Op: op, Collection: c, ID: id, Err: ErrRecordNotFound}
}

// IsNotFound reports whether err references a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}
