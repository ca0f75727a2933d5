package syntax

import (
	"strconv"
	"strings"

	"github.com/vellum-lang/vellum/internal/diag"
	"github.com/vellum-lang/vellum/internal/span"
)

// CommentKind distinguishes the comment forms retained for the formatter.
type CommentKind int

const (
	LineComment  CommentKind = iota // ; to end of line
	BlockComment                    // ;/ ... /;
	DocComment                      // { ... }, attaches to the nearest declaration
)

// Comment is a retained comment span. The core discards comments from
// the token stream but keeps their text and position so the formatter
// can re-print sources faithfully.
type Comment struct {
	Pos  span.Pos
	Kind CommentKind
	Text string // inner text, delimiters stripped
}

// Scanner performs lexical analysis on one Vellum source unit.
// It is pull-based: each call to Next advances to the following token.
// A Scanner is created per unit and restarted by creating a new one.
type Scanner struct {
	source // embedded character reader

	// Current token info
	tok    Token
	lit    string  // decoded literal or identifier text
	kind   LitKind // valid when tok is _Literal
	tokPos span.Pos

	// Raw text, sliced from the source buffer
	text   string // raw text of the current token
	trivia string // raw whitespace and comments preceding the token

	// Retained comments, in source order
	comments []Comment

	// terminal is set when an unterminated literal or comment was hit;
	// the parser stops consuming this unit when it sees the error token.
	terminal bool
}

// NewScanner creates a Scanner over text. Diagnostics go into bag.
func NewScanner(file string, text []byte, bag *diag.Bag) *Scanner {
	return &Scanner{source: *newSource(file, text, bag)}
}

// Next advances to the next token.
func (s *Scanner) Next() {
	triviaStart := s.chOffs
	s.skipTrivia()
	s.trivia = string(s.buf[triviaStart:s.chOffs])

	s.tokPos = s.pos()
	tokStart := s.chOffs
	s.terminal = false

	switch {
	case s.ch < 0:
		s.tok = _EOF
		s.lit = ""

	case s.ch == '\n':
		s.nextch()
		s.tok = _Newline
		s.lit = "\n"

	case isLetter(s.ch):
		s.scanIdent()

	case isDigit(s.ch):
		s.scanNumber()

	case s.ch == '"':
		s.scanString()

	default:
		s.scanOperator()
	}

	s.text = string(s.buf[tokStart:s.chOffs])
}

// Token returns the current token type.
func (s *Scanner) Token() Token { return s.tok }

// Literal returns the decoded text of the current token.
func (s *Scanner) Literal() string { return s.lit }

// LitKind returns the literal kind (valid when Token() is a literal).
func (s *Scanner) LitKind() LitKind { return s.kind }

// Pos returns the start position of the current token.
func (s *Scanner) Pos() span.Pos { return s.tokPos }

// Text returns the raw source text of the current token.
func (s *Scanner) Text() string { return s.text }

// Trivia returns the raw whitespace and comment text that preceded the
// current token. Concatenating Trivia()+Text() across all tokens up to
// and including EOF reproduces the source byte-for-byte.
func (s *Scanner) Trivia() string { return s.trivia }

// Comments returns the comments retained so far, in source order.
func (s *Scanner) Comments() []Comment { return s.comments }

// Terminal reports whether the current error token came from an
// unterminated literal or comment.
func (s *Scanner) Terminal() bool { return s.terminal }

// skipTrivia consumes whitespace and comments, retaining comment text.
func (s *Scanner) skipTrivia() {
	for {
		switch {
		case isWhitespace(s.ch):
			s.nextch()

		case s.ch == ';':
			pos := s.pos()
			s.nextch()
			if s.ch == '/' {
				s.scanBlockComment(pos)
			} else {
				s.scanLineComment(pos)
			}

		case s.ch == '{':
			s.scanDocComment()

		default:
			return
		}
	}
}

// scanLineComment consumes "; ..." up to, not including, the newline.
// pos is the position of the ';'.
func (s *Scanner) scanLineComment(pos span.Pos) {
	var b strings.Builder
	for s.ch >= 0 && s.ch != '\n' {
		b.WriteRune(s.ch)
		s.nextch()
	}
	s.comments = append(s.comments, Comment{Pos: pos, Kind: LineComment, Text: b.String()})
}

// scanBlockComment consumes ";/ ... /;". pos is the position of the
// leading ';', already consumed; s.ch is '/'.
func (s *Scanner) scanBlockComment(pos span.Pos) {
	s.nextch() // skip '/'
	var b strings.Builder
	for {
		if s.ch < 0 {
			s.errorf(diag.UnterminatedComment, "unterminated block comment")
			break
		}
		if s.ch == '/' {
			s.nextch()
			if s.ch == ';' {
				s.nextch()
				break
			}
			b.WriteRune('/')
			continue
		}
		b.WriteRune(s.ch)
		s.nextch()
	}
	s.comments = append(s.comments, Comment{Pos: pos, Kind: BlockComment, Text: b.String()})
}

// scanDocComment consumes "{ ... }" documentation text.
func (s *Scanner) scanDocComment() {
	pos := s.pos()
	s.nextch() // skip '{'
	var b strings.Builder
	for {
		if s.ch < 0 {
			s.errorf(diag.UnterminatedComment, "unterminated documentation block")
			break
		}
		if s.ch == '}' {
			s.nextch()
			break
		}
		b.WriteRune(s.ch)
		s.nextch()
	}
	s.comments = append(s.comments, Comment{Pos: pos, Kind: DocComment, Text: b.String()})
}

// scanIdent scans an identifier or keyword.
func (s *Scanner) scanIdent() {
	var b strings.Builder
	for isLetter(s.ch) || isDigit(s.ch) {
		b.WriteRune(s.ch)
		s.nextch()
	}
	s.lit = b.String()
	if kw, ok := lookupKeyword(s.lit); ok {
		s.tok = kw
		return
	}
	s.tok = _Name
}

// scanNumber scans an integer or float literal.
// Integers are decimal or 0x hex, 32-bit signed; floats are
// decimal with a single fraction point.
func (s *Scanner) scanNumber() {
	var b strings.Builder

	if s.ch == '0' {
		b.WriteRune(s.ch)
		s.nextch()
		if lower(s.ch) == 'x' {
			b.WriteRune(s.ch)
			s.nextch()
			digits := 0
			for isHexDigit(s.ch) {
				b.WriteRune(s.ch)
				s.nextch()
				digits++
			}
			s.tok = _Literal
			s.kind = IntLit
			s.lit = b.String()
			if digits == 0 {
				s.errorf(diag.MalformedNumber, "hex literal has no digits")
				s.lit = "0"
				return
			}
			if _, err := strconv.ParseInt(s.lit[2:], 16, 32); err != nil {
				s.errorf(diag.MalformedNumber, "hex literal out of range: %s", s.lit)
				s.lit = "0"
			}
			return
		}
	}

	isFloat := false
	for isDigit(s.ch) || s.ch == '.' {
		if s.ch == '.' {
			if isFloat {
				break // second point ends the literal
			}
			isFloat = true
		}
		b.WriteRune(s.ch)
		s.nextch()
	}

	s.tok = _Literal
	s.lit = b.String()
	if isFloat {
		s.kind = FloatLit
		if _, err := strconv.ParseFloat(s.lit, 32); err != nil {
			s.errorf(diag.MalformedNumber, "malformed float literal: %s", s.lit)
			s.lit = "0.0"
		}
		return
	}
	s.kind = IntLit
	if _, err := strconv.ParseInt(s.lit, 10, 32); err != nil {
		s.errorf(diag.MalformedNumber, "integer literal out of range: %s", s.lit)
		s.lit = "0"
	}
}

// scanString scans a double-quoted string literal with escape
// sequences. A string must terminate before the end of the line.
func (s *Scanner) scanString() {
	s.nextch() // skip opening quote
	var b strings.Builder
	for {
		if s.ch < 0 || s.ch == '\n' {
			s.errorf(diag.UnterminatedString, "unterminated string literal")
			s.tok = _Error
			s.lit = b.String()
			s.terminal = true
			return
		}
		if s.ch == '"' {
			s.nextch()
			break
		}
		if s.ch == '\\' {
			s.nextch()
			switch s.ch {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case '\\':
				b.WriteRune('\\')
			case '"':
				b.WriteRune('"')
			default:
				s.errorf(diag.InvalidCharacter, "invalid escape character %q", s.ch)
				b.WriteRune(s.ch)
			}
			s.nextch()
			continue
		}
		b.WriteRune(s.ch)
		s.nextch()
	}
	s.tok = _Literal
	s.kind = StringLit
	s.lit = b.String()
}

// scanOperator scans operators and delimiters via longest match.
// An unrecognized character produces an error token and the scanner
// keeps going, so one bad character does not abort lexing.
func (s *Scanner) scanOperator() {
	ch := s.ch
	s.nextch()
	switch ch {
	case '(':
		s.setOp(_Lparen)
	case ')':
		s.setOp(_Rparen)
	case '[':
		s.setOp(_Lbrack)
	case ']':
		s.setOp(_Rbrack)
	case ',':
		s.setOp(_Comma)
	case '.':
		s.setOp(_Dot)
	case '+':
		s.setOpEq(_AddAssign, _Add)
	case '-':
		s.setOpEq(_SubAssign, _Sub)
	case '*':
		s.setOpEq(_MulAssign, _Mul)
	case '/':
		s.setOpEq(_DivAssign, _Div)
	case '%':
		s.setOpEq(_RemAssign, _Rem)
	case '=':
		s.setOpEq(_Eql, _Assign)
	case '!':
		s.setOpEq(_Neq, _Not)
	case '<':
		s.setOpEq(_Leq, _Lss)
	case '>':
		s.setOpEq(_Geq, _Gtr)
	case '&':
		if s.ch == '&' {
			s.nextch()
		} else {
			s.warnf(diag.InvalidCharacter, "expected second '&' for logical AND")
		}
		s.setOp(_AndAnd)
	case '|':
		if s.ch == '|' {
			s.nextch()
		} else {
			s.warnf(diag.InvalidCharacter, "expected second '|' for logical OR")
		}
		s.setOp(_OrOr)
	default:
		s.errorf(diag.InvalidCharacter, "unexpected character %q", ch)
		s.tok = _Error
		s.lit = string(ch)
	}
}

func (s *Scanner) setOp(tok Token) {
	s.tok = tok
	s.lit = tok.String()
}

// setOpEq consumes a trailing '=' and picks between the compound and
// plain form of an operator.
func (s *Scanner) setOpEq(withEq, plain Token) {
	if s.ch == '=' {
		s.nextch()
		s.setOp(withEq)
		return
	}
	s.setOp(plain)
}
