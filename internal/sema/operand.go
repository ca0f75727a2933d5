package sema

import (
	"github.com/vellum-lang/vellum/internal/syntax"
	"github.com/vellum-lang/vellum/internal/types"
)

// An operandMode specifies the (addressing) mode of an operand.
type operandMode byte

const (
	invalid  operandMode = iota // operand is invalid (an error was reported)
	novalue                     // operand is a call of a function with no result
	value                       // operand is a computed value
	variable                    // operand is an addressable value (assignment target)
	static                      // operand is a script name used as a receiver for global calls
)

// An operand represents an intermediate value during type checking.
// An operand with invalid mode has already been reported; callers
// propagate it silently.
type operand struct {
	mode operandMode
	expr syntax.Expr
	typ  types.Type
}

func (x *operand) isValid() bool { return x.mode != invalid }

// describe returns the operand's type name for diagnostics, or a mode
// description when no type applies.
func (x *operand) describe() string {
	switch x.mode {
	case invalid:
		return "invalid operand"
	case novalue:
		return "no value"
	case static:
		return "script " + x.typ.String()
	default:
		if x.typ == nil {
			return "untyped"
		}
		return x.typ.String()
	}
}
