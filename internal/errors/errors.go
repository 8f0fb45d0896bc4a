package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a referenced entity that no longer exists. Deferred
	// actions treat it as a silent no-op.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a uniqueness violation; the milestone detector
	// treats it as "already exists".
	ErrConflict = errors.New("conflict")
)

func NewNotFound(format string, a ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrNotFound}, a...)...)
}

func NewConflict(format string, a ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrConflict}, a...)...)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
