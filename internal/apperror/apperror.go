// Package apperror defines the error kinds shared by every module and how they
// surface over HTTP.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidPrice      = errors.New("invalid price")
	ErrInsufficientCash  = errors.New("insufficient cash")
	ErrConflict          = errors.New("conflict")
	ErrNoData            = errors.New("no data")
	ErrStorage           = errors.New("storage failure")
	ErrUnauthorized      = errors.New("unauthorized")
)

// Error carries a kind, a caller-facing message and an optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.Error()
	}
}

// Is reports kind membership. Price-floor and cash failures are validation
// failures too.
func (e *Error) Is(target error) bool {
	if target == e.Kind {
		return true
	}
	if target == ErrValidation && (e.Kind == ErrInvalidPrice || e.Kind == ErrInsufficientCash) {
		return true
	}
	return false
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an error of the given kind with a formatted message.
func New(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound is shorthand for New(ErrNotFound, ...).
func NotFound(format string, args ...interface{}) *Error {
	return New(ErrNotFound, format, args...)
}

// Validation is shorthand for New(ErrValidation, ...).
func Validation(format string, args ...interface{}) *Error {
	return New(ErrValidation, format, args...)
}

// Storage wraps a persistence failure. Errors that already carry a kind are
// returned unchanged.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: ErrStorage, Err: err}
}

// HTTPStatus maps an error to the status code the API answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrNoData):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to return to a caller. Storage and
// unclassified failures are reported generically.
func PublicMessage(err error) string {
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}
