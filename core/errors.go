package core

import "github.com/pkg/errors"

// FieldError ties an error message to a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is returned to API clients as a 400 with either a global
// message or per-field messages.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown signals that the service cannot continue and the server should
// gracefully stop. Checked by the HTTP error handler.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string { return s.message }

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
