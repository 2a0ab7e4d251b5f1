package store

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConstraint matches every *ConstraintError.
var ErrConstraint = errors.New("constraint violation")

// ErrInvalidFilter is returned when a list filter names an unknown column.
var ErrInvalidFilter = errors.New("invalid filter")

// ConstraintError reports an invariant that a write would have broken.
// The write is not applied.
type ConstraintError struct {
	// Constraint names the violated invariant (e.g., "cities.country_id").
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return "constraint violation: " + e.Constraint
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

func (e *ConstraintError) Is(target error) bool {
	return target == ErrConstraint
}

func violation(constraint string) error {
	return &ConstraintError{Constraint: constraint}
}

// IsViolation reports whether err is a ConstraintError for constraint.
func IsViolation(err error, constraint string) bool {
	var cErr *ConstraintError
	return errors.As(err, &cErr) && cErr.Constraint == constraint
}

// mapDriverError converts driver-level integrity errors into ConstraintError.
func mapDriverError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23502", "23503", "23505", "23514":
			name := pqErr.Constraint
			if name == "" {
				name = pqErr.Table + "." + pqErr.Column
			}
			return &ConstraintError{Constraint: name, Err: err}
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint {
		return &ConstraintError{Constraint: sqliteConstraint(liteErr), Err: err}
	}
	return err
}

// sqliteConstraint extracts "table.column" from messages such as
// "UNIQUE constraint failed: users.email".
func sqliteConstraint(err sqlite3.Error) string {
	msg := err.Error()
	if _, after, ok := strings.Cut(msg, "constraint failed: "); ok {
		return after
	}
	switch err.ExtendedCode {
	case sqlite3.ErrConstraintForeignKey:
		return "foreign_key"
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return "unique"
	case sqlite3.ErrConstraintCheck:
		return "check"
	}
	return msg
}
