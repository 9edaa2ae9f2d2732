package errors

import (
	"errors"
	"fmt"
)

// Error represents a typed failure raised while computing or persisting IDP results.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so wrapped clones still match the sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Sentinel errors for the batch failure taxonomy.
var (
	ErrConnectivity       = New("CONNECTIVITY", "data store unreachable")
	ErrStudentComputation = New("STUDENT_COMPUTATION", "student evaluation failed")
	ErrSubjectFailure     = New("SUBJECT_FAILURE", "subject processing failed")
	ErrInvariant          = New("INVARIANT_VIOLATION", "data invariant violated")
	ErrPaceUndefined      = New("PACE_UNDEFINED", "ideal date cannot be derived")
	ErrInvalidWeights     = New("INVALID_WEIGHTS", "invalid indicator weights")
	ErrRunLocked          = New("RUN_LOCKED", "another run holds the lock")
	ErrInternal           = New("INTERNAL_ERROR", "internal error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// WrapAs returns a copy of base that wraps err, keeping base's code.
func WrapAs(base *Error, err error, message string) *Error {
	clone := Clone(base, message)
	if clone == nil {
		return nil
	}
	clone.Err = err
	return clone
}
