// Package bytecode defines the assembly-like intermediate module the
// code generator emits: a constant pool, a property table, a state
// table, and flat instruction sequences with named labels. The module
// is self-contained; after generation every temp, constant, and label
// reference resolves within it.
package bytecode

// Op is an instruction opcode.
type Op int

const (
	OpInvalid Op = iota

	// Data movement
	OpAssign // Dest = Args[0]
	OpCast   // Dest = Args[0] converted to Type

	// Arithmetic; Type selects the int or float form
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod // int only
	OpNeg
	OpConcat // string concatenation; operands already stringified

	// Comparison; produce bool, Type is the operand type
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	// Boolean
	OpNot

	// Control flow; Target names a label in the owning function
	OpJump
	OpBranchFalse // jump to Target when Args[0] is false
	OpBranchTrue  // jump to Target when Args[0] is true
	OpReturn      // Args[0] is the result, absent for none

	// Calls; Aux is the callee name
	OpCall       // Args[0] = receiver, Args[1:] = arguments
	OpCallParent // parent-scoped call on self; Args = arguments
	OpCallStatic // global call; Aux = "Script.Func"; Args = arguments

	// Properties on an explicit receiver; Aux is the property name
	OpPropGet // Dest = Args[0].Aux
	OpPropSet // Args[0].Aux = Args[1]

	// Arrays; Type is the element type
	OpArrayNew // Dest = new array of length Args[0]
	OpArrayGet // Dest = Args[0][Args[1]]
	OpArraySet // Args[0][Args[1]] = Args[2]
	OpArrayLen // Dest = length of Args[0]

	opCount // sentinel; must be last
)

// OpInfo holds assembler metadata about an opcode.
type OpInfo struct {
	Name    string
	HasDest bool // the instruction writes a destination
	Typed   bool // the instruction carries an operand type
}

var opInfoTable = [opCount]OpInfo{
	OpInvalid: {Name: "invalid"},

	OpAssign: {Name: "assign", HasDest: true},
	OpCast:   {Name: "cast", HasDest: true, Typed: true},

	OpAdd:    {Name: "add", HasDest: true, Typed: true},
	OpSub:    {Name: "sub", HasDest: true, Typed: true},
	OpMul:    {Name: "mul", HasDest: true, Typed: true},
	OpDiv:    {Name: "div", HasDest: true, Typed: true},
	OpMod:    {Name: "mod", HasDest: true, Typed: true},
	OpNeg:    {Name: "neg", HasDest: true, Typed: true},
	OpConcat: {Name: "concat", HasDest: true},

	OpEq: {Name: "cmp_eq", HasDest: true, Typed: true},
	OpNe: {Name: "cmp_ne", HasDest: true, Typed: true},
	OpLt: {Name: "cmp_lt", HasDest: true, Typed: true},
	OpLe: {Name: "cmp_le", HasDest: true, Typed: true},
	OpGt: {Name: "cmp_gt", HasDest: true, Typed: true},
	OpGe: {Name: "cmp_ge", HasDest: true, Typed: true},

	OpNot: {Name: "not", HasDest: true},

	OpJump:        {Name: "jump"},
	OpBranchFalse: {Name: "branch_false"},
	OpBranchTrue:  {Name: "branch_true"},
	OpReturn:      {Name: "ret"},

	OpCall:       {Name: "call", HasDest: true},
	OpCallParent: {Name: "call_parent", HasDest: true},
	OpCallStatic: {Name: "call_static", HasDest: true},

	OpPropGet: {Name: "prop_get", HasDest: true},
	OpPropSet: {Name: "prop_set"},

	OpArrayNew: {Name: "array_new", HasDest: true, Typed: true},
	OpArrayGet: {Name: "array_get", HasDest: true, Typed: true},
	OpArraySet: {Name: "array_set", Typed: true},
	OpArrayLen: {Name: "array_len", HasDest: true},
}

// Info returns the assembler metadata for op.
func (op Op) Info() OpInfo {
	if op < 0 || op >= opCount {
		return opInfoTable[OpInvalid]
	}
	return opInfoTable[op]
}

func (op Op) String() string { return op.Info().Name }
