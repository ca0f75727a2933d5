// Package span provides source positions shared by every compiler stage.
package span

import "fmt"

// Pos identifies a location in a source file.
// The zero value is an invalid position.
type Pos struct {
	File   string // source file name
	Line   uint32 // 1-based line number
	Col    uint32 // 1-based column number (byte offset in line)
	Offset int    // byte offset from the beginning of the source
}

// NewPos creates a position. Line and column are 1-based.
func NewPos(file string, line, col uint32, offset int) Pos {
	return Pos{File: file, Line: line, Col: col, Offset: offset}
}

// String returns "file:line:col", or "line:col" if the file name is empty.
func (p Pos) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// IsValid reports whether the position is valid.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

// Span is a half-open source range [Start, End).
type Span struct {
	Start Pos
	End   Pos
}

func (s Span) String() string {
	return fmt.Sprintf("%s..%d:%d", s.Start, s.End.Line, s.End.Col)
}

// Len returns the byte length of the span.
func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}
