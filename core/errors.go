package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// unavailable signals that the persistence collaborator could not be
// reached. It surfaces as a service-unavailable response and is never
// masked as an authentication failure.
type unavailable struct {
	err error
}

func NewUnavailableError(err error) error {
	return &unavailable{err: err}
}

func (u unavailable) Error() string {
	return u.err.Error()
}

func IsUnavailable(err error) bool {
	_, ok := errors.Cause(err).(*unavailable)
	return ok
}
