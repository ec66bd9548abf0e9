package store

import (
	"context"
	"errors"
	"strings"
)

// StateIntegrityConstraintViolation is the SQLSTATE reported for integrity
// constraint violations. Every state in class "23" is treated as one.
const StateIntegrityConstraintViolation = "23000"

// Row maps column names to values for a single insert.
type Row map[string]any

// Conn is a storage connection capable of inserting a single row.
//
// Constraint violations must be reported through an error in the returned
// chain that implements SQLState() string. Drivers that already do this
// (e.g. Postgres) can be used as-is; others wrap their failure in ConnError.
type Conn interface {
	Insert(ctx context.Context, table string, row Row) error
}

// ConnError attaches a SQLSTATE code to a driver failure.
type ConnError struct {
	State string
	Err   error
}

func (e *ConnError) Error() string {
	if e.Err == nil {
		return "sqlstate " + e.State
	}
	return e.Err.Error()
}

// SQLState returns the five-character SQLSTATE code.
func (e *ConnError) SQLState() string {
	return e.State
}

func (e *ConnError) Unwrap() error {
	return e.Err
}

// ConstraintViolation wraps err as an integrity constraint violation.
func ConstraintViolation(err error) error {
	return &ConnError{State: StateIntegrityConstraintViolation, Err: err}
}

// IsConstraintViolation reports whether err carries a class "23" SQLSTATE.
func IsConstraintViolation(err error) bool {
	var stater interface{ SQLState() string }
	if !errors.As(err, &stater) {
		return false
	}
	return strings.HasPrefix(stater.SQLState(), "23")
}
