// Package apperr classifies failures into the four kinds callers can see:
// NotFound, Forbidden, InvalidArgument and Internal.
//
// Stores return raw driver errors or sentinels; the registry wraps them
// with a Kind and a caller-safe message. Transport layers use KindOf,
// Status and PublicMessage and never print the wrapped cause.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is the caller-visible category of an error.
type Kind int

const (
	Internal Kind = iota
	NotFound
	Forbidden
	InvalidArgument
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	case InvalidArgument:
		return "invalid_argument"
	default:
		return "internal"
	}
}

// Status maps a Kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case NotFound:
		return http.StatusNotFound
	case Forbidden:
		return http.StatusForbidden
	case InvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a Kind, a caller-safe message and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of the given kind with a caller-safe message.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap attaches kind and msg to err. A nil err yields nil.
func Wrap(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain.
// Errors that were never classified are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

const internalMessage = "internal server error"

// PublicMessage is the text a caller may see for err. Internal errors
// always collapse to a fixed message so store details do not leak.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == Internal {
		return internalMessage
	}
	return e.Msg
}
