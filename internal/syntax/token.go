// Package syntax implements lexical and syntactic analysis for the
// Vellum scripting language.
package syntax

import "strings"

// Token represents the type of a lexical token.
type Token uint

// EOF is exported for consumers that drive the Scanner directly; all
// other tokens stay internal to the parser.
const EOF = _EOF

const (
	// Special tokens
	_EOF     Token = iota // end of file
	_Error                // lexical error (scanner recovered past it)
	_Newline              // end of line; terminates members and statements

	// Literals
	_Name    // identifier: health, OnActivate
	_Literal // literal value (used with LitKind)

	// Operators
	_Assign    // =
	_AddAssign // +=
	_SubAssign // -=
	_MulAssign // *=
	_DivAssign // /=
	_RemAssign // %=
	_OrOr      // ||
	_AndAnd    // &&
	_Eql       // ==
	_Neq       // !=
	_Lss       // <
	_Leq       // <=
	_Gtr       // >
	_Geq       // >=
	_Add       // +
	_Sub       // -
	_Mul       // *
	_Div       // /
	_Rem       // %
	_Not       // !

	// Delimiters
	_Lparen // (
	_Rparen // )
	_Lbrack // [
	_Rbrack // ]
	_Comma  // ,
	_Dot    // .

	// Keywords (matched case-insensitively)
	_As
	_Auto
	_AutoReadOnly
	_Bool
	_Else
	_ElseIf
	_EndEvent
	_EndForEach
	_EndFunction
	_EndIf
	_EndProperty
	_EndState
	_EndWhile
	_Event
	_Extends
	_False
	_Float
	_ForEach
	_Function
	_Global
	_Hidden
	_If
	_Import
	_In
	_Int
	_Length
	_Native
	_New
	_None
	_Parent
	_Property
	_Return
	_ScriptName
	_Self
	_State
	_String
	_True
	_While

	tokenCount
)

// tokenNames maps tokens to their string representation.
var tokenNames = [tokenCount]string{
	_EOF:     "EOF",
	_Error:   "ERROR",
	_Newline: "newline",

	_Name:    "NAME",
	_Literal: "LITERAL",

	_Assign:    "=",
	_AddAssign: "+=",
	_SubAssign: "-=",
	_MulAssign: "*=",
	_DivAssign: "/=",
	_RemAssign: "%=",
	_OrOr:      "||",
	_AndAnd:    "&&",
	_Eql:       "==",
	_Neq:       "!=",
	_Lss:       "<",
	_Leq:       "<=",
	_Gtr:       ">",
	_Geq:       ">=",
	_Add:       "+",
	_Sub:       "-",
	_Mul:       "*",
	_Div:       "/",
	_Rem:       "%",
	_Not:       "!",

	_Lparen: "(",
	_Rparen: ")",
	_Lbrack: "[",
	_Rbrack: "]",
	_Comma:  ",",
	_Dot:    ".",

	_As:           "as",
	_Auto:         "auto",
	_AutoReadOnly: "autoreadonly",
	_Bool:         "bool",
	_Else:         "else",
	_ElseIf:       "elseif",
	_EndEvent:     "endevent",
	_EndForEach:   "endforeach",
	_EndFunction:  "endfunction",
	_EndIf:        "endif",
	_EndProperty:  "endproperty",
	_EndState:     "endstate",
	_EndWhile:     "endwhile",
	_Event:        "event",
	_Extends:      "extends",
	_False:        "false",
	_Float:        "float",
	_ForEach:      "foreach",
	_Function:     "function",
	_Global:       "global",
	_Hidden:       "hidden",
	_If:           "if",
	_Import:       "import",
	_In:           "in",
	_Int:          "int",
	_Length:       "length",
	_Native:       "native",
	_New:          "new",
	_None:         "none",
	_Parent:       "parent",
	_Property:     "property",
	_Return:       "return",
	_ScriptName:   "scriptname",
	_Self:         "self",
	_State:        "state",
	_String:       "string",
	_True:         "true",
	_While:        "while",
}

// String returns the string representation of the token.
func (t Token) String() string {
	if t < tokenCount {
		return tokenNames[t]
	}
	return "unknown"
}

// keywords maps lowercased reserved words to their token.
// Built once at init and never mutated.
var keywords = func() map[string]Token {
	m := make(map[string]Token, int(tokenCount-_As))
	for t := _As; t < tokenCount; t++ {
		m[tokenNames[t]] = t
	}
	return m
}()

// lookupKeyword returns the keyword token for an identifier, if any.
// Keyword matching is case-insensitive.
func lookupKeyword(ident string) (Token, bool) {
	t, ok := keywords[strings.ToLower(ident)]
	return t, ok
}

// isKeyword reports whether t is a reserved word.
func (t Token) isKeyword() bool {
	return t >= _As && t < tokenCount
}

// lowerIdent normalizes an identifier for the language's
// case-insensitive name comparisons.
func lowerIdent(s string) string {
	return strings.ToLower(s)
}

// LitKind describes the kind of a literal token or BasicLit node.
type LitKind int

const (
	IntLit LitKind = iota
	FloatLit
	StringLit
	BoolLit // built by the parser from true/false keywords
	NoneLit // built by the parser from the none keyword
)

func (k LitKind) String() string {
	switch k {
	case IntLit:
		return "int"
	case FloatLit:
		return "float"
	case StringLit:
		return "string"
	case BoolLit:
		return "bool"
	case NoneLit:
		return "none"
	}
	return "unknown"
}

// Operator identifies the operation of an Operation node or the
// combining operation of a compound assignment. The parser maps
// operator tokens onto this closed set so consumers never depend on
// token values.
type Operator int

const (
	OpNone Operator = iota

	// Binary, lowest to highest precedence
	OpOrOr   // ||
	OpAndAnd // &&
	OpEql    // ==
	OpNeq    // !=
	OpLss    // <
	OpLeq    // <=
	OpGtr    // >
	OpGeq    // >=
	OpAdd    // +
	OpSub    // -
	OpMul    // *
	OpDiv    // /
	OpRem    // %

	// Unary
	OpNot // !
	OpNeg // - (negation)
)

var operatorNames = [...]string{
	OpNone:   "?",
	OpOrOr:   "||",
	OpAndAnd: "&&",
	OpEql:    "==",
	OpNeq:    "!=",
	OpLss:    "<",
	OpLeq:    "<=",
	OpGtr:    ">",
	OpGeq:    ">=",
	OpAdd:    "+",
	OpSub:    "-",
	OpMul:    "*",
	OpDiv:    "/",
	OpRem:    "%",
	OpNot:    "!",
	OpNeg:    "-",
}

func (op Operator) String() string {
	if int(op) < len(operatorNames) {
		return operatorNames[op]
	}
	return "unknown"
}

// Precedence levels for binary operators, higher binds tighter.
const (
	precLowest = iota
	precOrOr
	precAndAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
)

// binaryOps maps a binary operator token to its Operator and precedence.
var binaryOps = map[Token]struct {
	op   Operator
	prec int
}{
	_OrOr:   {OpOrOr, precOrOr},
	_AndAnd: {OpAndAnd, precAndAnd},
	_Eql:    {OpEql, precEquality},
	_Neq:    {OpNeq, precEquality},
	_Lss:    {OpLss, precRelational},
	_Leq:    {OpLeq, precRelational},
	_Gtr:    {OpGtr, precRelational},
	_Geq:    {OpGeq, precRelational},
	_Add:    {OpAdd, precAdditive},
	_Sub:    {OpSub, precAdditive},
	_Mul:    {OpMul, precMultiplicative},
	_Div:    {OpDiv, precMultiplicative},
	_Rem:    {OpRem, precMultiplicative},
}

// assignOps maps compound-assignment tokens to the binary operator
// they combine with plain assignment. _Assign maps to OpNone.
var assignOps = map[Token]Operator{
	_Assign:    OpNone,
	_AddAssign: OpAdd,
	_SubAssign: OpSub,
	_MulAssign: OpMul,
	_DivAssign: OpDiv,
	_RemAssign: OpRem,
}
