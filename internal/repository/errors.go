package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrDuplicate signals a unique constraint violation.
	ErrDuplicate = errors.New("duplicate record")
	// ErrReference signals a foreign key pointing at a missing row.
	ErrReference = errors.New("referenced record not found")
)

// ConstraintError carries the violated constraint name alongside a sentinel.
type ConstraintError struct {
	Kind       error
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%v (%s): %v", e.Kind, e.Constraint, e.Err)
}

func (e *ConstraintError) Unwrap() []error { return []error{e.Kind, e.Err} }

// classify maps Postgres constraint violations onto repository sentinels and
// wraps anything else with op.
func classify(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return &ConstraintError{Kind: ErrDuplicate, Constraint: pqErr.Constraint, Err: err}
		case "23503":
			return &ConstraintError{Kind: ErrReference, Constraint: pqErr.Constraint, Err: err}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Constraint returns the violated constraint name, if err carries one.
func Constraint(err error) string {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce.Constraint
	}
	return ""
}
