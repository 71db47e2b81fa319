package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey marks a source mapping that repeats a key.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrMalformed marks any other structural parse failure.
	ErrMalformed = errors.New("malformed source")

	// ErrUnsupportedValue marks a value a format or the document model cannot
	// represent.
	ErrUnsupportedValue = errors.New("unsupported value")
)

// DuplicateKeyError reports a repeated mapping key and where it was found.
type DuplicateKeyError struct {
	Format Format
	Key    string
	Line   int
}

func (e *DuplicateKeyError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: duplicate key %q", e.Format, e.Line, e.Key)
	}
	return fmt.Sprintf("%s: duplicate key %q", e.Format, e.Key)
}

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// MalformedError wraps a parser failure.
type MalformedError struct {
	Format Format
	Line   int
	Cause  error
}

func (e *MalformedError) Error() string {
	switch {
	case e.Line > 0 && e.Cause != nil:
		return fmt.Sprintf("malformed %s at line %d: %v", e.Format, e.Line, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("malformed %s: %v", e.Format, e.Cause)
	default:
		return fmt.Sprintf("malformed %s", e.Format)
	}
}

func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}

func (e *MalformedError) Unwrap() error {
	return e.Cause
}

// UnsupportedValueError reports a value a reader or writer cannot represent.
type UnsupportedValueError struct {
	Format Format
	Path   string
	Reason string
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("%s cannot represent value at %s: %s", e.Format, e.Path, e.Reason)
}

func (e *UnsupportedValueError) Is(target error) bool {
	return target == ErrUnsupportedValue
}

// NewDuplicateKeyError creates a duplicate key error
func NewDuplicateKeyError(format Format, key string, line int) error {
	return &DuplicateKeyError{Format: format, Key: key, Line: line}
}

// NewMalformedError creates a malformed source error
func NewMalformedError(format Format, line int, cause error) error {
	return &MalformedError{Format: format, Line: line, Cause: cause}
}

// NewUnsupportedValueError creates an unsupported value error
func NewUnsupportedValueError(format Format, path, reason string) error {
	return &UnsupportedValueError{Format: format, Path: path, Reason: reason}
}
