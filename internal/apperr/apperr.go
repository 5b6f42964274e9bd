// Package apperr defines the domain error taxonomy shared by services and
// handlers. Every core operation fails with one of the five kinds below;
// callers branch with errors.Is(err, apperr.ErrState) etc.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or constraint-violating input.
	ErrValidation = errors.New("validation error")
	// ErrState marks an operation attempted from a wrong lifecycle state.
	ErrState = errors.New("invalid state")
	// ErrConflict marks transient resource contention. The whole operation
	// may be retried by the caller; the core never retries it.
	ErrConflict = errors.New("conflict")
	// ErrNotFound marks an entity that is absent or not owned by the
	// caller's tenant. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")
	// ErrExhausted marks an exhausted identifier space (revision suffixes).
	ErrExhausted = errors.New("exhausted")
)

// Error carries a kind, an optional field name for form-level display, and a
// user-facing message.
type Error struct {
	kind  error
	Field string
	msg   string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.msg
	}
	return e.msg
}

func (e *Error) Is(target error) bool { return target == e.kind }

func newError(kind error, field, format string, args ...any) *Error {
	return &Error{kind: kind, Field: field, msg: fmt.Sprintf(format, args...)}
}

func Validation(field, format string, args ...any) *Error {
	return newError(ErrValidation, field, format, args...)
}

func State(format string, args ...any) *Error {
	return newError(ErrState, "", format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newError(ErrConflict, "", format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newError(ErrNotFound, "", format, args...)
}

func Exhausted(format string, args ...any) *Error {
	return newError(ErrExhausted, "", format, args...)
}
