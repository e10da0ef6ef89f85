package repository

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Fields that carry a uniqueness constraint.
const (
	FieldEmail    = "email"
	FieldUsername = "username"
	FieldPhone    = "phone"
)

// ConflictError reports a unique constraint violation on Field.
// It matches ErrConflict with errors.Is.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return ErrConflict.Error()
	}
	return fmt.Sprintf("%s: duplicate %s", ErrConflict, e.Field)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
