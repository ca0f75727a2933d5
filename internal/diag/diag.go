// Package diag provides the diagnostic values accumulated by every
// compiler stage. Stages never abort on user errors; they append
// diagnostics to a Bag and keep going so one invocation reports as
// much as possible.
package diag

import (
	"fmt"

	"github.com/vellum-lang/vellum/internal/span"
)

// Kind is the stable machine-readable tag of a diagnostic.
// Downstream tools filter on Kind, so values must not be renumbered.
type Kind int

const (
	// Lexical errors
	InvalidCharacter Kind = iota
	UnterminatedString
	UnterminatedComment
	MalformedNumber

	// Syntax errors
	SyntaxError

	// Semantic errors
	DuplicateSymbol
	CyclicInheritance
	UndefinedSymbol
	TypeMismatch
	OverrideMismatch

	kindCount
)

var kindNames = [kindCount]string{
	InvalidCharacter:    "invalid-character",
	UnterminatedString:  "unterminated-string",
	UnterminatedComment: "unterminated-comment",
	MalformedNumber:     "malformed-number",
	SyntaxError:         "syntax-error",
	DuplicateSymbol:     "duplicate-symbol",
	CyclicInheritance:   "cyclic-inheritance",
	UndefinedSymbol:     "undefined-symbol",
	TypeMismatch:        "type-mismatch",
	OverrideMismatch:    "override-mismatch",
}

func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}
	return "unknown"
}

// Severity indicates how serious a diagnostic is.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic is one reported problem with a stable kind, a severity,
// a source position, and a human-readable message.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Pos      span.Pos
	Msg      string
	Hint     string // optional suggestion, may be empty
}

// String formats the diagnostic for terminal output.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s: %s [%s]", d.Pos, d.Severity, d.Msg, d.Kind)
	if d.Hint != "" {
		s += " (hint: " + d.Hint + ")"
	}
	return s
}

// Errorf creates an error diagnostic.
func Errorf(kind Kind, pos span.Pos, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Kind:     kind,
		Severity: Error,
		Pos:      pos,
		Msg:      fmt.Sprintf(format, args...),
	}
}

// Warningf creates a warning diagnostic.
func Warningf(kind Kind, pos span.Pos, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Kind:     kind,
		Severity: Warning,
		Pos:      pos,
		Msg:      fmt.Sprintf(format, args...),
	}
}

// Bag accumulates diagnostics in emission order.
// The zero value is ready to use. A Bag is not safe for concurrent
// use; parallel stages fill per-unit bags and merge them.
type Bag struct {
	diags  []Diagnostic
	errors int
}

// Add appends a diagnostic.
func (b *Bag) Add(d Diagnostic) {
	b.diags = append(b.diags, d)
	if d.Severity == Error {
		b.errors++
	}
}

// Merge appends all diagnostics from other, preserving their order.
func (b *Bag) Merge(other *Bag) {
	b.diags = append(b.diags, other.diags...)
	b.errors += other.errors
}

// All returns the accumulated diagnostics in emission order.
func (b *Bag) All() []Diagnostic {
	return b.diags
}

// Len returns the number of accumulated diagnostics.
func (b *Bag) Len() int {
	return len(b.diags)
}

// Errors returns the number of error-severity diagnostics.
func (b *Bag) Errors() int {
	return b.errors
}

// HasErrors reports whether any error-severity diagnostic was added.
func (b *Bag) HasErrors() bool {
	return b.errors > 0
}

// ErrorsIn returns the number of error-severity diagnostics whose
// position belongs to the given file.
func (b *Bag) ErrorsIn(file string) int {
	n := 0
	for _, d := range b.diags {
		if d.Severity == Error && d.Pos.File == file {
			n++
		}
	}
	return n
}
