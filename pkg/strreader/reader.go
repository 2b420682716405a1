package strreader

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Reader reads tokens and values from a string.
// The zero value is a Reader over the empty string.
type Reader struct {
	src string
	pos int // byte offset of the first unconsumed byte
}

// Mark is a saved cursor position. See Reader.Mark and Reader.Reset.
type Mark int

// New creates a Reader positioned at the start of s.
func New(s string) *Reader {
	return &Reader{src: s}
}

// Source returns the complete input, including the consumed part.
func (r *Reader) Source() string {
	return r.src
}

// Rest returns the unconsumed part of the input.
func (r *Reader) Rest() string {
	return r.src[r.pos:]
}

// Pos returns the current byte offset into the input.
func (r *Reader) Pos() int {
	return r.pos
}

// Len returns the number of unconsumed bytes.
func (r *Reader) Len() int {
	return len(r.src) - r.pos
}

// IsEmpty reports whether the whole input has been consumed.
func (r *Reader) IsEmpty() bool {
	return r.pos == len(r.src)
}

// Mark returns the current cursor so it can later be restored with Reset.
func (r *Reader) Mark() Mark {
	return Mark(r.pos)
}

// Reset moves the cursor to m. It panics if m lies outside the input or
// inside a multi-byte character.
func (r *Reader) Reset(m Mark) {
	p := int(m)
	if p < 0 || p > len(r.src) {
		panic("strreader: mark out of range")
	}
	if p < len(r.src) && !utf8.RuneStart(r.src[p]) {
		panic("strreader: mark splits a character")
	}
	r.pos = p
}

// Peek returns the next character without consuming it.
// The second result is false at the end of the input.
func (r *Reader) Peek() (rune, bool) {
	if r.pos >= len(r.src) {
		return 0, false
	}
	c, _ := utf8.DecodeRuneInString(r.src[r.pos:])
	return c, true
}

// ReadRune consumes and returns the next character.
func (r *Reader) ReadRune() (rune, error) {
	if r.pos >= len(r.src) {
		return 0, newError(KindUnexpectedEnd, "", r.pos, nil)
	}
	c, size := utf8.DecodeRuneInString(r.src[r.pos:])
	r.pos += size
	return c, nil
}

// SkipRune consumes the next character, if any.
func (r *Reader) SkipRune() {
	if r.pos < len(r.src) {
		_, size := utf8.DecodeRuneInString(r.src[r.pos:])
		r.pos += size
	}
}

// MatchString consumes lit if the unconsumed input starts with it.
// Matching is exact and case-sensitive; no whitespace is skipped.
func (r *Reader) MatchString(lit string) error {
	rest := r.src[r.pos:]
	if strings.HasPrefix(rest, lit) {
		// A literal ending inside a multi-byte character does not match.
		if len(rest) > len(lit) && !utf8.RuneStart(rest[len(lit)]) {
			return newError(KindLiteralMismatch, lit, r.pos, nil)
		}
		r.pos += len(lit)
		return nil
	}
	if len(rest) < len(lit) && strings.HasPrefix(lit, rest) {
		return newError(KindUnexpectedEnd, lit, r.pos, nil)
	}
	return newError(KindLiteralMismatch, lit, r.pos, nil)
}

// MatchRune consumes c if it is the next character.
func (r *Reader) MatchRune(c rune) error {
	if r.pos == len(r.src) {
		return newError(KindUnexpectedEnd, string(c), r.pos, nil)
	}
	next, size := utf8.DecodeRuneInString(r.src[r.pos:])
	if next != c {
		return newError(KindLiteralMismatch, string(c), r.pos, nil)
	}
	r.pos += size
	return nil
}

// SkipWhitespace consumes all leading whitespace.
func (r *Reader) SkipWhitespace() {
	r.pos += whitespaceLen(r.src[r.pos:])
}

// ReadWhile consumes and returns the longest prefix of the unconsumed input
// whose characters all satisfy pred. The result may be empty.
func (r *Reader) ReadWhile(pred func(rune) bool) string {
	rest := r.src[r.pos:]
	n := strings.IndexFunc(rest, func(c rune) bool { return !pred(c) })
	if n < 0 {
		n = len(rest)
	}
	r.pos += n
	return rest[:n]
}

// ReadUntil consumes and returns everything before the first character
// that satisfies pred, or the remaining input if none does.
func (r *Reader) ReadUntil(pred func(rune) bool) string {
	rest := r.src[r.pos:]
	n := strings.IndexFunc(rest, pred)
	if n < 0 {
		n = len(rest)
	}
	r.pos += n
	return rest[:n]
}

// ReadWord consumes and returns the run of non-whitespace characters at the
// cursor. Leading whitespace is not skipped: if the cursor is on whitespace
// or at the end of the input the result is empty and nothing is consumed.
func (r *Reader) ReadWord() string {
	return r.ReadUntil(unicode.IsSpace)
}

// whitespaceLen returns the byte length of the leading whitespace of s.
func whitespaceLen(s string) int {
	n := strings.IndexFunc(s, func(c rune) bool { return !unicode.IsSpace(c) })
	if n < 0 {
		return len(s)
	}
	return n
}
