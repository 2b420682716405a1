package strreader

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/strscan/pkg/token"
)

// Kind classifies a ParseError.
type Kind uint8

// Failure classes.
const (
	KindLiteralMismatch Kind = iota + 1
	KindUnexpectedEnd
	KindMalformedNumber
	KindMalformedBoolean
	KindMalformedWord
)

// Sentinel errors, one per Kind, for use with errors.Is.
var (
	ErrLiteralMismatch  = errors.New("literal mismatch")
	ErrUnexpectedEnd    = errors.New("unexpected end of input")
	ErrMalformedNumber  = errors.New("malformed number")
	ErrMalformedBoolean = errors.New("malformed boolean")
	ErrMalformedWord    = errors.New("malformed word")
)

func (k Kind) sentinel() error {
	switch k {
	case KindLiteralMismatch:
		return ErrLiteralMismatch
	case KindUnexpectedEnd:
		return ErrUnexpectedEnd
	case KindMalformedNumber:
		return ErrMalformedNumber
	case KindMalformedBoolean:
		return ErrMalformedBoolean
	case KindMalformedWord:
		return ErrMalformedWord
	}
	return nil
}

// String returns the description of the kind.
func (k Kind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseError describes a failed Reader operation.
type ParseError struct {
	Kind     Kind
	Expected string // literal, value type, or empty when nothing specific was expected
	Offset   int    // byte offset at which the operation started
	Err      error  // underlying conversion error, if any
}

func newError(kind Kind, expected string, offset int, err error) *ParseError {
	return &ParseError{Kind: kind, Expected: expected, Offset: offset, Err: err}
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s at offset %d", e.Kind, e.Offset)
	if e.Expected != "" {
		msg += fmt.Sprintf(": expected %q", e.Expected)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying conversion error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel error for the error's kind.
func (e *ParseError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// Position returns the line and column of the error within src, which
// should be the input the failing Reader was created with.
func (e *ParseError) Position(src string) token.Position {
	return token.PositionFor(src, e.Offset)
}

// Convert maps a *ParseError found in err's chain to a caller-defined error
// using conv. Any other non-nil error is returned unchanged, and a nil err
// yields nil.
func Convert[E error](err error, conv func(*ParseError) E) error {
	if err == nil {
		return nil
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return conv(pe)
	}
	return err
}
