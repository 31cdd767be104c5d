package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Store result variants. Callers match these with errors.Is and never look at
// driver error codes.
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// DuplicateKeyError carries the violated constraint of a unique violation
type DuplicateKeyError struct {
	Constraint string
	Err        error
}

func (e *DuplicateKeyError) Error() string {
	if e.Constraint == "" {
		return ErrDuplicateKey.Error()
	}
	return ErrDuplicateKey.Error() + ": " + e.Constraint
}

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}

const (
	pqUniqueViolation           = "23505"
	pqInvalidTextRepresentation = "22P02"
)

// mapError converts driver errors into store result variants. An id that is
// not a valid UUID cannot name any row, so it reads as not found.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return &DuplicateKeyError{Constraint: pqErr.Constraint, Err: err}
		case pqInvalidTextRepresentation:
			return fmt.Errorf("%w: %s", ErrNotFound, pqErr.Message)
		}
	}
	return err
}

// IsNotFound reports whether err is ErrNotFound, including driver errors
// that were returned without passing through mapError
func IsNotFound(err error) bool {
	return errors.Is(mapError(err), ErrNotFound)
}

// IsDuplicateKey reports whether err is ErrDuplicateKey
func IsDuplicateKey(err error) bool {
	return errors.Is(mapError(err), ErrDuplicateKey)
}

// ConstraintOf returns the violated constraint name of a duplicate key error
func ConstraintOf(err error) string {
	var dup *DuplicateKeyError
	if errors.As(err, &dup) {
		return dup.Constraint
	}
	return ""
}
