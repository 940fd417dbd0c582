// Package identity signs users in and registers them against an identity
// provider, and turns provider error codes into messages fit for a flash.
package identity

import (
	"context"
	"errors"
	"strings"
)

const (
	CodeEmailNotFound   = "EMAIL_NOT_FOUND"
	CodeInvalidPassword = "INVALID_PASSWORD"
	CodeEmailExists     = "EMAIL_EXISTS"
	CodeWeakPassword    = "WEAK_PASSWORD"
	CodeInvalidEmail    = "INVALID_EMAIL"
	CodeMissingPassword = "MISSING_PASSWORD"
)

// Account is what a successful sign-in yields.
type Account struct {
	UserID  string
	Email   string
	IDToken string
}

type Gateway interface {
	SignIn(ctx context.Context, email, password string) (Account, error)
	CreateUser(ctx context.Context, email, password string) error
}

// Error is a provider rejection identified by a machine code.
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "identity: " + e.Code + ": " + e.Err.Error()
	}
	return "identity: " + e.Code
}

func (e *Error) Unwrap() error { return e.Err }

func codeErr(code string) *Error { return &Error{Code: code} }

var knownMessages = map[string]string{
	CodeEmailNotFound:   "Email not found.",
	CodeInvalidPassword: "Wrong password.",
	CodeEmailExists:     "Email already in use.",
	CodeWeakPassword:    "Password too weak.",
}

// Message renders err for the user. Known codes get fixed wording, other codes
// are humanized, and anything else reads "Authentication failed.".
func Message(err error) string {
	var ie *Error
	if !errors.As(err, &ie) || ie.Code == "" {
		return "Authentication failed."
	}
	if msg, ok := knownMessages[ie.Code]; ok {
		return msg
	}
	return humanize(ie.Code)
}

func humanize(code string) string {
	s := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(code, "_", " ")))
	if s == "" {
		return "Authentication failed."
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
