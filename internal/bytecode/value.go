package bytecode

import "fmt"

// ValueKind discriminates instruction operands.
type ValueKind int

const (
	KindNone  ValueKind = iota // absent operand (e.g. a bare return)
	KindTemp                   // generated temporary; Index < Function.Temps
	KindLocal                  // named local variable or parameter
	KindField                  // script-level variable, including auto-property backing storage
	KindConst                  // constant pool entry; Index < len(Module.Consts)
	KindSelf                   // the receiver object
)

// Value is one instruction operand.
type Value struct {
	Kind  ValueKind
	Index int    // temp or constant pool index
	Name  string // local or field name
}

func Temp(i int) Value        { return Value{Kind: KindTemp, Index: i} }
func Local(name string) Value { return Value{Kind: KindLocal, Name: name} }
func Field(name string) Value { return Value{Kind: KindField, Name: name} }
func ConstRef(i int) Value    { return Value{Kind: KindConst, Index: i} }
func Self() Value             { return Value{Kind: KindSelf} }

// IsNone reports whether the value is the absent operand.
func (v Value) IsNone() bool { return v.Kind == KindNone }

func (v Value) String() string {
	switch v.Kind {
	case KindNone:
		return "_"
	case KindTemp:
		return fmt.Sprintf("t%d", v.Index)
	case KindLocal:
		return v.Name
	case KindField:
		return v.Name
	case KindConst:
		return fmt.Sprintf("c%d", v.Index)
	case KindSelf:
		return "self"
	}
	return "?"
}

// Instruction is one typed bytecode instruction. The fields an
// instruction uses depend on its opcode; see the Op constants.
type Instruction struct {
	Op     Op
	Type   string // operand type name for typed ops
	Dest   Value  // zero Value when the op writes nothing
	Args   []Value
	Aux    string // callee or property name
	Target string // label name for jumps and branches
}

func (in *Instruction) String() string {
	s := in.Op.String()
	if in.Type != "" {
		s += " <" + in.Type + ">"
	}
	if !in.Dest.IsNone() {
		s += " " + in.Dest.String() + " ="
	}
	if in.Aux != "" {
		s += " {" + in.Aux + "}"
	}
	for _, a := range in.Args {
		s += " " + a.String()
	}
	if in.Target != "" {
		s += " -> " + in.Target
	}
	return s
}
