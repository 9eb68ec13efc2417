// Package errors defines the typed error surface shared by the dmlkit
// packages. Every rejected request carries a Kind so callers can tell a
// bad filter apart from a system fault.
package errors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	ErrIO                  Kind = "io"
	ErrSQL                 Kind = "sql"
	ErrSchema              Kind = "schema"
	ErrConfig              Kind = "config"
	ErrNotFound            Kind = "not_found"
	ErrMalformedCriteria   Kind = "malformed_criteria"
	ErrUnknownField        Kind = "unknown_field"
	ErrUnsupportedOperator Kind = "unsupported_operator"
	ErrValueShapeMismatch  Kind = "value_shape_mismatch"
)

type Error struct {
	Kind    Kind
	Message string
	Field   string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	base := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Field != "" {
		base = fmt.Sprintf("%s (field=%s)", base, e.Field)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func MalformedCriteria(msg string) *Error {
	return &Error{Kind: ErrMalformedCriteria, Message: msg}
}

func UnknownField(field string) *Error {
	return &Error{Kind: ErrUnknownField, Message: "unknown field", Field: field}
}

func UnsupportedOperator(op string) *Error {
	return &Error{Kind: ErrUnsupportedOperator, Message: fmt.Sprintf("unsupported operator %q", op)}
}

func ValueShapeMismatch(field, msg string) *Error {
	return &Error{Kind: ErrValueShapeMismatch, Field: field, Message: msg}
}

func SchemaError(msg string) *Error {
	return &Error{Kind: ErrSchema, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

// IsKind reports whether err (or anything it wraps) is a dmlkit error of
// the given kind
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
