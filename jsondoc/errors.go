package jsondoc

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Parse when the document file does not exist.
	ErrNotFound = errors.New("jsondoc: document not found")

	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("jsondoc: malformed document")

	// ErrKeyNotFound is returned when an object has no field with the requested key.
	ErrKeyNotFound = errors.New("jsondoc: key not found")

	// ErrTypeMismatch is returned when a value is not of the requested kind.
	ErrTypeMismatch = errors.New("jsondoc: type mismatch")

	// ErrIndexOutOfRange is returned by Array.At for an invalid index.
	ErrIndexOutOfRange = errors.New("jsondoc: index out of range")
)

// ParseError describes a malformed document. Line and Column are 1-based and
// zero when the position is unknown.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	src := e.Path
	if src == "" {
		src = "<input>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d:%d: %v", src, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", src, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// LookupError describes a failed field lookup or type conversion.
type LookupError struct {
	Key  string
	Want Kind
	Got  Kind
	Err  error
}

func (e *LookupError) Error() string {
	switch {
	case errors.Is(e.Err, ErrTypeMismatch) && e.Key != "":
		return fmt.Sprintf("jsondoc: field %q is %s, not %s", e.Key, e.Got, e.Want)
	case errors.Is(e.Err, ErrTypeMismatch):
		return fmt.Sprintf("jsondoc: value is %s, not %s", e.Got, e.Want)
	default:
		return fmt.Sprintf("jsondoc: field %q: %v", e.Key, e.Err)
	}
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

func mismatch(key string, want, got Kind) error {
	return &LookupError{Key: key, Want: want, Got: got, Err: ErrTypeMismatch}
}
