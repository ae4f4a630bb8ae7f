package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents an engine error code.
type ErrorCode string

// Error codes. C0xxx are raised while compiling, R0xxx while running.
const (
	// C0xxx: Compile-time structural errors
	ErrInvalidNode      ErrorCode = "C0101"
	ErrInvalidStep      ErrorCode = "C0102"
	ErrMalformedNode    ErrorCode = "C0103"
	ErrUnknownExtension ErrorCode = "C0104"
	ErrArgumentCount    ErrorCode = "C0105"
	ErrInvalidPattern   ErrorCode = "C0106"

	// R0xxx: Runtime errors
	ErrInvalidInput   ErrorCode = "R0201"
	ErrRuntimePattern ErrorCode = "R0202"
)

// Error represents a structured engine error.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int
	Token    string
	Err      error
}

// NewError creates a new engine error. Pass -1 as position when the error
// is not tied to a place in the tree.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Errorf creates a new engine error with a formatted message.
func Errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return NewError(code, fmt.Sprintf(format, args...), -1)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Token != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Token)
	}
	if e.Position >= 0 {
		return fmt.Sprintf("%s at step %d: %s", e.Code, e.Position, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken adds the offending tag or name to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithPosition records the index of the pipeline step being compiled.
func (e *Error) WithPosition(pos int) *Error {
	e.Position = pos
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// IsCode reports whether err, or any error it wraps, is an *Error with code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
