package domain

import (
	"errors"
	"strings"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("please try to login with correct credentials")
	ErrTooManyAttempts    = errors.New("too many failed login attempts, try again later")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoteNotFound       = errors.New("note not found")
	ErrHashing            = errors.New("password hashing failed")
	ErrInternal           = errors.New("internal error")
)

// ErrUnauthenticated is the only authentication failure visible outside the
// token layer. ErrInvalidToken and ErrMalformedToken both match it.
var ErrUnauthenticated = errors.New("please authenticate using a valid token")

var (
	ErrInvalidToken   = &tokenError{reason: "invalid token signature or claims"}
	ErrMalformedToken = &tokenError{reason: "malformed token"}
)

type tokenError struct {
	reason string
}

func (e *tokenError) Error() string { return e.reason }

func (e *tokenError) Is(target error) bool { return target == ErrUnauthenticated }

// FieldError describes a single invalid input field.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// ValidationError carries every field that failed validation so a client
// can render the messages next to the matching inputs.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Msg)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
