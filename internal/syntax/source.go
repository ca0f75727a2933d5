package syntax

import (
	"unicode/utf8"

	"github.com/vellum-lang/vellum/internal/diag"
	"github.com/vellum-lang/vellum/internal/span"
)

// source is a character reader with position tracking.
// The whole unit is held in memory; the scanner slices raw token and
// trivia text straight out of the buffer.
type source struct {
	buf  []byte // entire source text
	file string // source file name

	line, col uint32 // position of the current character (1-based)
	ch        rune   // current character, -1 at EOF
	chOffs    int    // byte offset of the current character
	offs      int    // byte offset of the next character to read

	bag *diag.Bag
}

func newSource(file string, text []byte, bag *diag.Bag) *source {
	s := &source{
		buf:  text,
		file: file,
		line: 1,
		col:  0,  // incremented to 1 by the first nextch
		ch:   -1, // sentinel: before first character
		bag:  bag,
	}
	s.nextch()
	return s
}

// nextch advances to the next character, updating position state.
// Sets s.ch to -1 at EOF.
func (s *source) nextch() {
	if s.ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}

	s.chOffs = s.offs
	if s.offs >= len(s.buf) {
		s.ch = -1
		return
	}

	r, width := utf8.DecodeRune(s.buf[s.offs:])
	if r == utf8.RuneError && width == 1 {
		s.errorf(diag.InvalidCharacter, "invalid UTF-8 encoding")
	}
	s.ch = r
	s.offs += width
}

// pos returns the position of the current character.
func (s *source) pos() span.Pos {
	return span.NewPos(s.file, s.line, s.col, s.chOffs)
}

// errorf reports a lexical error at the current position.
func (s *source) errorf(kind diag.Kind, format string, args ...interface{}) {
	if s.bag != nil {
		s.bag.Add(diag.Errorf(kind, s.pos(), format, args...))
	}
}

// warnf reports a lexical warning at the current position.
func (s *source) warnf(kind diag.Kind, format string, args ...interface{}) {
	if s.bag != nil {
		s.bag.Add(diag.Warningf(kind, s.pos(), format, args...))
	}
}

// Character classification helpers

// isLetter reports whether r can start an identifier.
func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_'
}

// isDigit reports whether r is a decimal digit.
func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// isHexDigit reports whether r is a hexadecimal digit.
func isHexDigit(r rune) bool {
	return isDigit(r) || 'a' <= lower(r) && lower(r) <= 'f'
}

// lower returns the ASCII lowercase of r, other characters unchanged.
func lower(r rune) rune {
	return ('a' - 'A') | r
}

// isWhitespace reports whether r is intra-line whitespace.
// Newline is not included: it is a token in its own right.
func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r'
}
