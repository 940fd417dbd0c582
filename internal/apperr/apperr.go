// Package apperr holds the error values shared across the journal packages.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized         = errors.New("authentication required")
	ErrVerificationRequired = errors.New("password verification required")
	ErrNotFound             = errors.New("not found")
	ErrUpstream             = errors.New("upstream request failed")
)

// Error carries an HTTP status and a user-facing message next to the cause.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, msg string, err error) *Error {
	return &Error{Status: status, Message: msg, Err: err}
}

// Status maps err to the HTTP status a handler should answer with.
func Status(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
