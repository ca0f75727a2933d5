package types

import "strings"

// Fold normalizes a name for the language's case-insensitive
// identifier comparisons.
func Fold(name string) string {
	return strings.ToLower(name)
}

// Array represents an array type with element type Elem.
type Array struct {
	typ
	elem Type
}

// NewArray creates an array type.
func NewArray(elem Type) *Array {
	return &Array{elem: elem}
}

// Elem returns the element type.
func (a *Array) Elem() Type { return a.elem }

// String implements Type.
func (a *Array) String() string { return a.elem.String() + "[]" }

// Script represents a script-object type. Script types are nominal:
// two scripts are the same type only if they are the same declaration.
// The parent link is set once during ancestor resolution and never
// mutated afterwards.
type Script struct {
	typ
	name   string
	parent *Script
}

// NewScript creates a script type with no parent link yet.
func NewScript(name string) *Script {
	return &Script{name: name}
}

// Name returns the declared script name.
func (s *Script) Name() string { return s.name }

// Parent returns the direct ancestor script type, or nil.
func (s *Script) Parent() *Script { return s.parent }

// SetParent links the direct ancestor. Called exactly once by the
// semantic analyzer after cycle checking.
func (s *Script) SetParent(p *Script) { s.parent = p }

// Extends reports whether s equals other or has other in its
// ancestor chain.
func (s *Script) Extends(other *Script) bool {
	for t := s; t != nil; t = t.parent {
		if t == other {
			return true
		}
	}
	return false
}

// String implements Type.
func (s *Script) String() string { return s.name }

// Func represents a function or event signature.
type Func struct {
	typ
	params []*Var // parameters in declaration order
	result Type   // Typ[None] for no return value
	global bool
	native bool
	event  bool
}

// NewFunc creates a function signature.
func NewFunc(params []*Var, result Type, global, native, event bool) *Func {
	if result == nil {
		result = Typ[None]
	}
	return &Func{params: params, result: result, global: global, native: native, event: event}
}

// NumParams returns the number of parameters.
func (f *Func) NumParams() int { return len(f.params) }

// Param returns the i-th parameter.
func (f *Func) Param(i int) *Var { return f.params[i] }

// Result returns the return type (Typ[None] for no value).
func (f *Func) Result() Type { return f.result }

// Global reports whether the function is callable without an instance.
func (f *Func) Global() bool { return f.global }

// Native reports whether the body is provided by the runtime.
func (f *Func) Native() bool { return f.native }

// Event reports whether this is an event handler signature.
func (f *Func) Event() bool { return f.event }

// String implements Type.
func (f *Func) String() string {
	var b strings.Builder
	b.WriteString("func(")
	for i, p := range f.params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Type().String())
	}
	b.WriteString(")")
	if f.result != Typ[None] {
		b.WriteString(" ")
		b.WriteString(f.result.String())
	}
	return b.String()
}

// Identical reports whether two types are the same type.
// Script types compare by declaration identity.
func Identical(a, b Type) bool {
	switch a := a.(type) {
	case *Basic:
		bb, ok := b.(*Basic)
		return ok && a.kind == bb.kind
	case *Array:
		bb, ok := b.(*Array)
		return ok && Identical(a.elem, bb.elem)
	case *Script:
		return a == b
	case *Func:
		bb, ok := b.(*Func)
		if !ok || len(a.params) != len(bb.params) || !Identical(a.result, bb.result) {
			return false
		}
		for i := range a.params {
			if !Identical(a.params[i].Type(), bb.params[i].Type()) {
				return false
			}
		}
		return true
	}
	return a == b
}
