package codegen

import (
	"github.com/vellum-lang/vellum/internal/bytecode"
	"github.com/vellum-lang/vellum/internal/syntax"
	"github.com/vellum-lang/vellum/internal/types"
)

var binaryOps = map[syntax.Operator]bytecode.Op{
	syntax.OpAdd: bytecode.OpAdd,
	syntax.OpSub: bytecode.OpSub,
	syntax.OpMul: bytecode.OpMul,
	syntax.OpDiv: bytecode.OpDiv,
	syntax.OpRem: bytecode.OpMod,
	syntax.OpEql: bytecode.OpEq,
	syntax.OpNeq: bytecode.OpNe,
	syntax.OpLss: bytecode.OpLt,
	syntax.OpLeq: bytecode.OpLe,
	syntax.OpGtr: bytecode.OpGt,
	syntax.OpGeq: bytecode.OpGe,
}

// expr lowers an expression and returns the value holding its result.
func (g *generator) expr(e syntax.Expr) bytecode.Value {
	switch e := e.(type) {
	case *syntax.BasicLit:
		return bytecode.ConstRef(g.m.Intern(constOf(e)))

	case *syntax.Ident:
		return g.identRef(e)

	case *syntax.ParenExpr:
		return g.expr(e.X)

	case *syntax.SelectorExpr:
		return g.selector(e)

	case *syntax.IndexExpr:
		arr := g.expr(e.X)
		idx := g.expr(e.Index)
		dest := g.newTemp()
		g.emit(bytecode.Instruction{
			Op:   bytecode.OpArrayGet,
			Type: g.typeOfExpr(e).String(),
			Dest: dest,
			Args: []bytecode.Value{arr, idx},
		})
		return dest

	case *syntax.CallExpr:
		return g.call(e)

	case *syntax.CastExpr:
		src := g.expr(e.X)
		from, to := g.typeOfExpr(e.X), g.typeOfExpr(e)
		if types.Identical(from, to) {
			return src
		}
		dest := g.newTemp()
		g.emit(bytecode.Instruction{
			Op:   bytecode.OpCast,
			Type: to.String(),
			Dest: dest,
			Args: []bytecode.Value{src},
		})
		return dest

	case *syntax.NewExpr:
		length := g.expr(e.Len)
		dest := g.newTemp()
		g.emit(bytecode.Instruction{
			Op:   bytecode.OpArrayNew,
			Type: g.typeString(e.Elem),
			Dest: dest,
			Args: []bytecode.Value{length},
		})
		return dest

	case *syntax.Operation:
		if e.Y == nil {
			return g.unary(e)
		}
		return g.binary(e)
	}
	panic("internal error: unexpected expression node")
}

// identRef lowers an identifier reference. The receivers self and
// parent both denote the current object; a bare property reference is
// a getter dispatch on self.
func (g *generator) identRef(e *syntax.Ident) bytecode.Value {
	obj := g.res.Info.ObjectOf(e)
	if obj == nil {
		// Only self and parent resolve without a recorded object.
		return bytecode.Self()
	}
	switch obj := obj.(type) {
	case *types.Var:
		return g.varRef(obj)
	case *types.Prop:
		dest := g.newTemp()
		g.emit(bytecode.Instruction{
			Op:   bytecode.OpPropGet,
			Dest: dest,
			Aux:  obj.Name(),
			Args: []bytecode.Value{bytecode.Self()},
		})
		return dest
	}
	panic("internal error: identifier " + e.Value + " is not a value")
}

// varRef maps a variable object to its storage: script-level
// variables (including auto-property backing) live in fields, locals
// and parameters in the frame.
func (g *generator) varRef(v *types.Var) bytecode.Value {
	if p := v.Parent(); p != nil && p.Kind() == types.ScriptScope {
		return bytecode.Field(v.Name())
	}
	return bytecode.Local(v.Name())
}

func (g *generator) selector(e *syntax.SelectorExpr) bytecode.Value {
	if _, ok := g.typeOfExpr(e.X).(*types.Array); ok {
		arr := g.expr(e.X)
		dest := g.newTemp()
		g.emit(bytecode.Instruction{
			Op:   bytecode.OpArrayLen,
			Dest: dest,
			Args: []bytecode.Value{arr},
		})
		return dest
	}
	prop, ok := g.res.Info.ObjectOf(e.Sel).(*types.Prop)
	if !ok {
		panic("internal error: selector " + e.Sel.Value + " is not a property")
	}
	recv := g.expr(e.X)
	dest := g.newTemp()
	g.emit(bytecode.Instruction{
		Op:   bytecode.OpPropGet,
		Dest: dest,
		Aux:  prop.Name(),
		Args: []bytecode.Value{recv},
	})
	return dest
}

// call lowers a call expression. Arguments are evaluated in
// declaration order; omitted trailing arguments take their declared
// defaults from the constant pool.
func (g *generator) call(e *syntax.CallExpr) bytecode.Value {
	fn := g.res.Info.Callees[e]
	if fn == nil {
		panic("internal error: unresolved call")
	}
	sig := fn.Signature()

	args := make([]bytecode.Value, 0, sig.NumParams())
	for i := 0; i < sig.NumParams(); i++ {
		pt := sig.Param(i).Type()
		if i < len(e.Args) {
			v := g.expr(e.Args[i])
			args = append(args, g.coerce(v, g.typeOfExpr(e.Args[i]), pt))
		} else {
			d := fn.Decl().Params[i].Default
			args = append(args, bytecode.ConstRef(g.m.Intern(g.literalConst(d, pt))))
		}
	}

	var dest bytecode.Value
	if !types.IsNone(sig.Result()) {
		dest = g.newTemp()
	}

	switch {
	case sig.Global():
		owner := fn.Parent().Comment()
		if s, ok := g.res.Info.Statics[e]; ok {
			owner = s
		}
		g.emit(bytecode.Instruction{
			Op:   bytecode.OpCallStatic,
			Dest: dest,
			Aux:  owner + "." + fn.Name(),
			Args: args,
		})

	case g.isParentCall(e):
		g.emit(bytecode.Instruction{
			Op:   bytecode.OpCallParent,
			Dest: dest,
			Aux:  fn.Name(),
			Args: args,
		})

	default:
		recv := bytecode.Self()
		if sel, ok := e.Fun.(*syntax.SelectorExpr); ok {
			recv = g.expr(sel.X)
		}
		g.emit(bytecode.Instruction{
			Op:   bytecode.OpCall,
			Dest: dest,
			Aux:  fn.Name(),
			Args: append([]bytecode.Value{recv}, args...),
		})
	}
	return dest
}

// isParentCall reports whether the call's receiver is the parent
// keyword, which bypasses state and override dispatch.
func (g *generator) isParentCall(e *syntax.CallExpr) bool {
	sel, ok := e.Fun.(*syntax.SelectorExpr)
	if !ok {
		return false
	}
	rx, ok := sel.X.(*syntax.Ident)
	return ok && types.Fold(rx.Value) == "parent" && g.res.Info.ObjectOf(rx) == nil
}

// coerce inserts an explicit widening cast when the context requires
// a float and the value is an int. All other conversions in the
// language are explicit casts handled by the cast expression.
func (g *generator) coerce(v bytecode.Value, from, to types.Type) bytecode.Value {
	if from == nil || to == nil || !types.Widens(from, to) {
		return v
	}
	dest := g.newTemp()
	g.emit(bytecode.Instruction{
		Op:   bytecode.OpCast,
		Type: to.String(),
		Dest: dest,
		Args: []bytecode.Value{v},
	})
	return dest
}

func (g *generator) unary(e *syntax.Operation) bytecode.Value {
	x := g.expr(e.X)
	dest := g.newTemp()
	op := bytecode.OpNeg
	typ := g.typeOfExpr(e).String()
	if e.Op == syntax.OpNot {
		op = bytecode.OpNot
		typ = ""
	}
	g.emit(bytecode.Instruction{Op: op, Type: typ, Dest: dest, Args: []bytecode.Value{x}})
	return dest
}

func (g *generator) binary(e *syntax.Operation) bytecode.Value {
	switch e.Op {
	case syntax.OpAndAnd, syntax.OpOrOr:
		return g.shortCircuit(e)
	}

	tx, ty := g.typeOfExpr(e.X), g.typeOfExpr(e.Y)
	x := g.expr(e.X)
	y := g.expr(e.Y)
	dest := g.newTemp()

	// String concatenation stringifies both operands first.
	rt := g.typeOfExpr(e)
	if e.Op == syntax.OpAdd && types.IsStringType(rt) {
		x = g.stringify(x, tx)
		y = g.stringify(y, ty)
		g.emit(bytecode.Instruction{Op: bytecode.OpConcat, Dest: dest, Args: []bytecode.Value{x, y}})
		return dest
	}

	ct := commonOperandType(tx, ty)
	x = g.coerce(x, tx, ct)
	y = g.coerce(y, ty, ct)
	g.emit(bytecode.Instruction{
		Op:   binaryOps[e.Op],
		Type: ct.String(),
		Dest: dest,
		Args: []bytecode.Value{x, y},
	})
	return dest
}

// shortCircuit lowers && and || with conditional jumps so the right
// operand is only evaluated when the left does not decide the result.
func (g *generator) shortCircuit(e *syntax.Operation) bytecode.Value {
	dest := g.newTemp()
	x := g.expr(e.X)
	g.emit(bytecode.Instruction{Op: bytecode.OpAssign, Dest: dest, Args: []bytecode.Value{x}})

	end := g.newLabel()
	br := bytecode.OpBranchFalse
	if e.Op == syntax.OpOrOr {
		br = bytecode.OpBranchTrue
	}
	g.emit(bytecode.Instruction{Op: br, Args: []bytecode.Value{dest}, Target: end})

	y := g.expr(e.Y)
	g.emit(bytecode.Instruction{Op: bytecode.OpAssign, Dest: dest, Args: []bytecode.Value{y}})
	g.defineLabel(end)
	return dest
}

func (g *generator) stringify(v bytecode.Value, t types.Type) bytecode.Value {
	if types.IsStringType(t) {
		return v
	}
	dest := g.newTemp()
	g.emit(bytecode.Instruction{
		Op:   bytecode.OpCast,
		Type: types.Typ[types.String].String(),
		Dest: dest,
		Args: []bytecode.Value{v},
	})
	return dest
}

// commonOperandType picks the shared operand type of a comparison or
// arithmetic pair: numeric pairs meet at float when either side is
// float, and none meets an object type at that object type.
func commonOperandType(a, b types.Type) types.Type {
	switch {
	case types.IsNumericType(a) && types.IsNumericType(b):
		if types.IsFloatType(a) || types.IsFloatType(b) {
			return types.Typ[types.Float]
		}
		return types.Typ[types.Int]
	case types.IsNone(a):
		return b
	case types.IsNone(b):
		return a
	case types.AssignableTo(a, b):
		return b
	default:
		return a
	}
}
