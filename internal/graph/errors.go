package graph

import (
	"errors"
	"fmt"
)

// ValidationError rejects a mutation before any write is attempted: bad
// option index, unknown event id, malformed input. Fully recoverable.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a pre-write rejection.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// ErrModeConflict rejects switching an option between probability and
// skill-check mode while it still holds targets of the current mode.
var ErrModeConflict = errors.New("option holds targets of the other mode")

// StorageError surfaces a failed persistence port call. The in-memory model
// is left unchanged, but the store may already have diverged on earlier
// writes of the same operation; the caller decides whether to retry or
// reload.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
