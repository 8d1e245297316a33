// Package apierr carries an HTTP status alongside an error, so handlers can
// pass a single error value to one shared error writer that derives the
// response code via StatusOf, instead of choosing a status inline at every
// call site.
package apierr

import (
	"errors"
	"net/http"
)

// Error pairs an HTTP status code with a client-facing message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New constructs an Error with the given status and message.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// BadRequest is shorthand for New(http.StatusBadRequest, message).
func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// NotFound is shorthand for New(http.StatusNotFound, message).
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// Conflict is shorthand for New(http.StatusConflict, message).
func Conflict(message string) *Error {
	return New(http.StatusConflict, message)
}

// TooLarge is shorthand for New(http.StatusRequestEntityTooLarge, message).
func TooLarge(message string) *Error {
	return New(http.StatusRequestEntityTooLarge, message)
}

// Unauthorized is shorthand for New(http.StatusUnauthorized, message).
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// Internal is shorthand for New(http.StatusInternalServerError, message).
func Internal(message string) *Error {
	return New(http.StatusInternalServerError, message)
}

// StatusOf returns the status code to report for err: its own status if it
// is (or wraps) an *Error, else 500.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}
