package bytecode

import (
	"fmt"
	"strconv"
)

// ConstKind discriminates constant pool entries.
type ConstKind int

const (
	ConstNone ConstKind = iota
	ConstInt
	ConstFloat
	ConstString
	ConstBool
)

// Const is one constant pool entry. The struct is comparable so the
// pool can deduplicate by value.
type Const struct {
	Kind     ConstKind
	IntVal   int32
	FloatVal float32
	StrVal   string
	BoolVal  bool
}

func IntConst(v int32) Const     { return Const{Kind: ConstInt, IntVal: v} }
func FloatConst(v float32) Const { return Const{Kind: ConstFloat, FloatVal: v} }
func StringConst(v string) Const { return Const{Kind: ConstString, StrVal: v} }
func BoolConst(v bool) Const     { return Const{Kind: ConstBool, BoolVal: v} }
func NoneConst() Const           { return Const{Kind: ConstNone} }

func (c Const) String() string {
	switch c.Kind {
	case ConstInt:
		return fmt.Sprintf("int %d", c.IntVal)
	case ConstFloat:
		return fmt.Sprintf("float %g", c.FloatVal)
	case ConstString:
		return "string " + strconv.Quote(c.StrVal)
	case ConstBool:
		return fmt.Sprintf("bool %t", c.BoolVal)
	default:
		return "none"
	}
}

// Param is one function parameter in the emitted module.
type Param struct {
	Name string
	Type string
}

// Function is one emitted function body: a flat instruction sequence
// with named jump targets. Accessor functions are named
// "Property.Get" / "Property.Set"; state overrides carry the owning
// state's name.
type Function struct {
	Name   string
	State  string // owning state, "" for script-level functions
	Params []Param
	Return string // "" for none
	Global bool
	Native bool // no body; Code is empty
	Event  bool

	Locals []Param        // declared local variables, in declaration order
	Temps  int            // number of temporary slots the body uses
	Code   []Instruction
	Labels map[string]int // label name -> index into Code
}

// Variable is one script-level variable, including the hidden backing
// storage of auto properties. Init is the constant pool index of the
// initial value, -1 when the variable starts at the type default.
type Variable struct {
	Name string
	Type string
	Init int
}

// Property is one property table entry. Backing is the hidden
// variable name for auto properties and "" for explicit ones.
type Property struct {
	Name     string
	Type     string
	Auto     bool
	ReadOnly bool
	Backing  string
	Getter   string // function name, "" if absent
	Setter   string
}

// State is one state table entry: the function overrides active while
// the owning object is in that state. Override names are emitted in
// declaration order.
type State struct {
	Name      string
	Auto      bool
	Overrides []string
}

// Module is the bytecode for one script.
type Module struct {
	Name   string
	Parent string // "" when the script has no ancestor

	Consts []Const
	Vars   []Variable
	Props  []Property
	States []State
	Funcs  []*Function

	index map[Const]int
}

// NewModule creates an empty module for the named script.
func NewModule(name, parent string) *Module {
	return &Module{Name: name, Parent: parent, index: make(map[Const]int)}
}

// Intern adds a constant to the pool, deduplicating by value, and
// returns its index.
func (m *Module) Intern(c Const) int {
	if i, ok := m.index[c]; ok {
		return i
	}
	i := len(m.Consts)
	m.Consts = append(m.Consts, c)
	m.index[c] = i
	return i
}

// Func returns the function with the given name (and state, "" for
// script level), or nil.
func (m *Module) Func(name, state string) *Function {
	for _, f := range m.Funcs {
		if f.Name == name && f.State == state {
			return f
		}
	}
	return nil
}

// Validate checks that the module is self-contained: every temp,
// constant, and label reference resolves within its owner. A failure
// is a code generator bug, not a user error.
func (m *Module) Validate() error {
	for _, f := range m.Funcs {
		for i := range f.Code {
			in := &f.Code[i]
			if in.Target != "" {
				if _, ok := f.Labels[in.Target]; !ok {
					return fmt.Errorf("%s.%s: instruction %d targets unknown label %s",
						m.Name, f.Name, i, in.Target)
				}
			}
			for _, v := range append([]Value{in.Dest}, in.Args...) {
				switch v.Kind {
				case KindTemp:
					if v.Index < 0 || v.Index >= f.Temps {
						return fmt.Errorf("%s.%s: instruction %d references temp %d outside 0..%d",
							m.Name, f.Name, i, v.Index, f.Temps-1)
					}
				case KindConst:
					if v.Index < 0 || v.Index >= len(m.Consts) {
						return fmt.Errorf("%s.%s: instruction %d references constant %d outside the pool",
							m.Name, f.Name, i, v.Index)
					}
				}
			}
		}
		for name, idx := range f.Labels {
			if idx < 0 || idx > len(f.Code) {
				return fmt.Errorf("%s.%s: label %s points outside the body", m.Name, f.Name, name)
			}
		}
	}
	return nil
}
