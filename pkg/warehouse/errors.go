package warehouse

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested row doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrForeignKey is returned when a write references a parent row that
	// doesn't exist, e.g. a video whose channel has not been upserted yet.
	ErrForeignKey = errors.New("foreign key violation")

	// ErrInvalidIdentifier is returned for table, column or savepoint names
	// that cannot be safely interpolated into SQL.
	ErrInvalidIdentifier = errors.New("invalid SQL identifier")
)

// Error describes a failed warehouse operation on a single entity.
type Error struct {
	Op     string
	Entity string
	ID     string
	Err    error
}

func (e *Error) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
	}
	return fmt.Sprintf("%s %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrap builds an *Error for op on entity/id, tagging foreign key violations
// reported by the backend with ErrForeignKey.
func (q *Queries) wrap(op, entity, id string, err error) error {
	if err == nil {
		return nil
	}
	if q.backend.IsForeignKeyViolation(err) {
		err = fmt.Errorf("%w: %w", ErrForeignKey, err)
	}
	return &Error{Op: op, Entity: entity, ID: id, Err: err}
}
