// Package errors provides common error behavior used throughout the
// application, mainly to render actionable failure messages to users.
package errors

// WithCause is an error with an underlying cause.
type WithCause interface{ Cause() error }

// WithHint is an error that carries advice for resolving it.
type WithHint interface{ Hint() string }

// Runtime is a general purpose application error.
type Runtime struct {
	msg   string
	cause error
	hint  string
}

// NewRuntimeError returns a Runtime error with an optional cause and hint.
func NewRuntimeError(msg string, cause error, hint string) Runtime {
	return Runtime{msg: msg, cause: cause, hint: hint}
}

func (e Runtime) Error() string {
	return e.msg
}

// Cause returns the underlying error, if any.
func (e Runtime) Cause() error {
	return e.cause
}

// Unwrap makes the cause visible to errors.Is and errors.As.
func (e Runtime) Unwrap() error {
	return e.cause
}

// Hint returns advice for resolving the error, if any.
func (e Runtime) Hint() string {
	return e.hint
}
