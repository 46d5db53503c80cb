// Package apperror defines the error taxonomy shared by the portal API,
// the console store and the reconciler, and its mapping to HTTP statuses.
package apperror

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Kind classifies a failure for callers and for HTTP translation.
type Kind int

const (
	// KindUnknown is the zero value; treated as a store error.
	KindUnknown Kind = iota
	// KindInvalidInput covers bad or missing request fields.
	KindInvalidInput
	// KindUnauthorized covers failed credential checks.
	KindUnauthorized
	// KindNotFound covers unknown ids and access codes.
	KindNotFound
	// KindInvalidTransition covers illegal appointment status changes.
	KindInvalidTransition
	// KindMissingResource covers actions requiring a resource not yet
	// allocated, e.g. starting a call without a room link.
	KindMissingResource
	// KindRemoteUnavailable covers an unreachable sync target.
	KindRemoteUnavailable
	// KindStore covers generic persistence failures.
	KindStore
)

// Error carries a kind and a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error that wraps an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message extracts the human-readable message from err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error kind to the equivalent HTTP status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition, KindMissingResource:
		return http.StatusConflict
	case KindRemoteUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// JSON writes the portal's standard failure envelope for err.
func JSON(c echo.Context, err error) error {
	return c.JSON(HTTPStatus(err), map[string]interface{}{
		"success": false,
		"message": Message(err),
	})
}
