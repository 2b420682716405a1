// Package httpline parses the first line and header lines of an HTTP/1.x
// response with a strreader.Reader.
package httpline

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/leapstack-labs/strscan/pkg/strreader"
)

// ErrMalformedStatusLine is matched by every error returned by ParseStatusLine.
var ErrMalformedStatusLine = errors.New("malformed status line")

// ErrMalformedHeader is matched by every error returned by ParseHeaderLine.
var ErrMalformedHeader = errors.New("malformed header line")

// Error describes a line that could not be parsed.
type Error struct {
	Line   string
	Reason string
	Offset int
	Err    error // *strreader.ParseError when the reader failed
	kind   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %q at offset %d: %s", e.kind, e.Line, e.Offset, e.Reason)
}

// Unwrap returns the underlying reader error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches ErrMalformedStatusLine or ErrMalformedHeader.
func (e *Error) Is(target error) bool {
	return target == e.kind
}

// StatusLine is a parsed HTTP response status line.
type StatusLine struct {
	Proto  string // e.g. "HTTP/1.1"
	Major  int
	Minor  int
	Code   uint16
	Reason string
}

var versions = map[string][2]int{
	"1.0": {1, 0},
	"1.1": {1, 1},
	"2":   {2, 0},
	"3":   {3, 0},
}

// ParseStatusLine parses a line such as "HTTP/1.1 404 Not Found".
// The reason phrase may be empty.
func ParseStatusLine(line string) (StatusLine, error) {
	r := strreader.New(line)
	conv := converter(line, ErrMalformedStatusLine)

	if err := r.MatchString("HTTP/"); err != nil {
		return StatusLine{}, strreader.Convert(err, conv)
	}

	start := r.Pos()
	version := r.ReadWord()
	v, ok := versions[version]
	if !ok {
		return StatusLine{}, &Error{
			Line:   line,
			Reason: fmt.Sprintf("unsupported protocol version %q", version),
			Offset: start,
			kind:   ErrMalformedStatusLine,
		}
	}

	start = r.Pos()
	code, err := r.ReadUint16()
	if err != nil {
		return StatusLine{}, strreader.Convert(err, conv)
	}
	if code < 100 || code > 999 {
		return StatusLine{}, &Error{
			Line:   line,
			Reason: fmt.Sprintf("status code %d out of range", code),
			Offset: start,
			kind:   ErrMalformedStatusLine,
		}
	}
	if c, ok := r.Peek(); ok && !unicode.IsSpace(c) {
		return StatusLine{}, &Error{
			Line:   line,
			Reason: "status code must be followed by a space",
			Offset: r.Pos(),
			kind:   ErrMalformedStatusLine,
		}
	}

	return StatusLine{
		Proto:  "HTTP/" + version,
		Major:  v[0],
		Minor:  v[1],
		Code:   code,
		Reason: strings.TrimSpace(r.Rest()),
	}, nil
}

// Header is a single parsed header field.
type Header struct {
	Name  string
	Value string
}

// ParseHeaderLine parses a line such as "Content-Type: text/html".
// The name must be non-empty and must not contain whitespace; the value is
// trimmed.
func ParseHeaderLine(line string) (Header, error) {
	r := strreader.New(line)
	conv := converter(line, ErrMalformedHeader)

	name := r.ReadUntil(func(c rune) bool { return c == ':' || unicode.IsSpace(c) })
	if name == "" {
		return Header{}, &Error{Line: line, Reason: "empty header name", kind: ErrMalformedHeader}
	}
	if err := r.MatchRune(':'); err != nil {
		return Header{}, strreader.Convert(err, conv)
	}

	return Header{Name: name, Value: strings.TrimSpace(r.Rest())}, nil
}

func converter(line string, kind error) func(*strreader.ParseError) *Error {
	return func(pe *strreader.ParseError) *Error {
		return &Error{
			Line:   line,
			Reason: pe.Error(),
			Offset: pe.Offset,
			Err:    pe,
			kind:   kind,
		}
	}
}
