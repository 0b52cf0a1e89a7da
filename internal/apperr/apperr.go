// Package apperr classifies errors returned to API callers.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// Internal is the zero value so unclassified errors are never exposed.
	Internal Kind = iota
	Validation
	Conflict
	NotFound
	Unauthorized
	Forbidden
)

func (k Kind) String() string {
	return [...]string{"internal", "validation", "conflict", "not_found", "unauthorized", "forbidden"}[k]
}

// Error carries a machine readable code and a message which is safe to show
// to the caller. Err is the underlying cause, if any.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by code, so wrapped copies of a sentinel still
// compare equal to it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Kind == t.Kind
}

// Wrap returns a copy of e with err as its cause.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.Err = err
	return &c
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func NewValidation(code, message string) *Error   { return New(Validation, code, message) }
func NewConflict(code, message string) *Error     { return New(Conflict, code, message) }
func NewNotFound(code, message string) *Error     { return New(NotFound, code, message) }
func NewInternal(code, message string) *Error     { return New(Internal, code, message) }
func NewUnauthorized(code, message string) *Error { return New(Unauthorized, code, message) }
func NewForbidden(code, message string) *Error    { return New(Forbidden, code, message) }

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, Internal when it is not classified.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return Internal
}
