// Package token describes locations within scanned input.
package token

import "fmt"

// Position represents a location in the input.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number, counted in characters
	Offset int // 0-based byte offset
}

// IsValid returns true if the position is valid (line > 0).
func (p Position) IsValid() bool {
	return p.Line > 0
}

// String returns the position as "line:column".
func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// PositionFor returns the position of the byte offset within src.
// Offsets outside src are clamped to its bounds.
func PositionFor(src string, offset int) Position {
	offset = max(0, min(offset, len(src)))

	line, col := 1, 1
	for _, c := range src[:offset] {
		if c == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return Position{Line: line, Column: col, Offset: offset}
}

// Span represents a range in the input.
type Span struct {
	Start Position
	End   Position
}

// SpanFor returns the span of src between the byte offsets start and end.
func SpanFor(src string, start, end int) Span {
	return Span{Start: PositionFor(src, start), End: PositionFor(src, end)}
}

// Contains returns true if the span contains the given offset.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start.Offset && offset < s.End.Offset
}

// IsValid returns true if both start and end positions are valid.
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid()
}

// Len returns the length of the span in bytes.
func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}

// Text returns the part of src covered by the span. Invalid or out of
// range spans yield the empty string.
func (s Span) Text(src string) string {
	if !s.IsValid() || s.Start.Offset > s.End.Offset || s.End.Offset > len(src) {
		return ""
	}
	return src[s.Start.Offset:s.End.Offset]
}
