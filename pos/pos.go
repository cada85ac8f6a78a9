// Package pos holds the value types used to locate lexemes and syntax
// errors in source text: a byte/line/column Position and a Span covering a
// run of bytes starting at one.
package pos

import "fmt"

// Position is a single point in source text: a zero-based byte offset paired
// with a 1-based (line, column). The zero value has Line and Col both 0 and
// is reserved as the "no position" / default value; every real position has
// Line >= 1 and Col >= 1.
type Position struct {
	Byte int
	Line int
	Col  int
}

// IsZero returns whether p is the reserved default value.
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Col == 0
}

// ShiftColumn returns a copy of p with its column (and byte offset) moved by
// delta, which may be negative. It fails if the resulting column would be
// less than 1.
func (p Position) ShiftColumn(delta int) (Position, error) {
	newCol := p.Col + delta
	if newCol < 1 {
		return Position{}, fmt.Errorf("cannot shift column %d by %d: result %d is not positive", p.Col, delta, newCol)
	}
	return Position{Byte: p.Byte + delta, Line: p.Line, Col: newCol}, nil
}

// Equal returns whether p and o denote the same position.
func (p Position) Equal(o any) bool {
	other, ok := o.(Position)
	if !ok {
		return false
	}
	return p.Byte == other.Byte && p.Line == other.Line && p.Col == other.Col
}

// String renders p as "line:col".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// PositionAt converts a byte offset into a Position using the ascending list
// of newline offsets produced alongside the buffer it indexes into (e.g.
// lexer.Result.NewlineOffsets). Line and column are both 1-based.
func PositionAt(byteOffset int, newlineOffsets []int) Position {
	line := 1
	lineStart := 0
	for _, nl := range newlineOffsets {
		if nl < byteOffset {
			line++
			lineStart = nl + 1
			continue
		}
		break
	}
	return Position{Byte: byteOffset, Line: line, Col: byteOffset - lineStart + 1}
}

// Span is an inclusive-start, length-delimited run of bytes in source text.
type Span struct {
	Start  Position
	Length int
}

// End returns the byte offset one past the last byte covered by s.
func (s Span) End() int {
	return s.Start.Byte + s.Length
}

// WithLength returns a copy of s with its length replaced by n.
func (s Span) WithLength(n int) Span {
	return Span{Start: s.Start, Length: n}
}

// Contains returns whether the given byte offset falls within s.
func (s Span) Contains(byteOffset int) bool {
	return byteOffset >= s.Start.Byte && byteOffset < s.End()
}

// Merge returns the smallest Span covering both a and b. The earlier of the
// two starts is used as the result's start.
func Merge(a, b Span) Span {
	start := a.Start
	if b.Start.Byte < a.Start.Byte {
		start = b.Start
	}
	end := a.End()
	if b.End() > end {
		end = b.End()
	}
	return Span{Start: start, Length: end - start.Byte}
}

// Equal returns whether s and o cover the same bytes.
func (s Span) Equal(o any) bool {
	other, ok := o.(Span)
	if !ok {
		return false
	}
	return s.Start.Equal(other.Start) && s.Length == other.Length
}

// String renders s as "line:col+length".
func (s Span) String() string {
	return fmt.Sprintf("%s+%d", s.Start.String(), s.Length)
}
