package codec

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	ErrParse        = errors.New("malformed document")
	ErrMissingField = errors.New("missing required field")
	ErrTypeMismatch = errors.New("type mismatch")
)

// FieldErrorKind classifies a fatal per-field decode failure.
type FieldErrorKind int

// Field error kinds. The zero value is not a valid kind.
const (
	MissingRequiredField FieldErrorKind = iota + 1
	TypeMismatch
)

// String returns the kind as used in error messages.
func (k FieldErrorKind) String() string {
	switch k {
	case MissingRequiredField:
		return "missing required field"
	case TypeMismatch:
		return "type mismatch"
	default:
		return fmt.Sprintf("FieldErrorKind(%d)", int(k))
	}
}

// FieldError reports a field that is absent with no default, or present
// with an incompatible shape. It aborts the decode of Entity.
type FieldError struct {
	Entity string // "bundle", "pipe", "instance", "reqserv", "storage", "operation"
	Field  string // dotted path inside the entity document, e.g. "members[1].dims[0]"
	Kind   FieldErrorKind
	Want   string // expected kind, TypeMismatch only
	Got    string // actual kind, TypeMismatch only
}

func (e *FieldError) Error() string {
	if e.Kind == TypeMismatch {
		return fmt.Sprintf("decode %s: field %q: %s: want %s, got %s",
			e.Entity, e.Field, e.Kind, e.Want, e.Got)
	}
	return fmt.Sprintf("decode %s: field %q: %s", e.Entity, e.Field, e.Kind)
}

// Is matches the sentinel for the error kind.
func (e *FieldError) Is(target error) bool {
	switch e.Kind {
	case MissingRequiredField:
		return target == ErrMissingField
	case TypeMismatch:
		return target == ErrTypeMismatch
	}
	return false
}

// ParseError reports document text that is not well-formed.
type ParseError struct {
	Entity string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Entity, e.Err)
}

// Unwrap returns the document parse error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is matches ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// IsFieldError reports whether err is a *FieldError and returns it.
func IsFieldError(err error) (*FieldError, bool) {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
