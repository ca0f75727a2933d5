package sema

import (
	"github.com/vellum-lang/vellum/internal/diag"
	"github.com/vellum-lang/vellum/internal/syntax"
	"github.com/vellum-lang/vellum/internal/types"
)

// expr type-checks e and stores the result in x. On error a
// diagnostic has been reported and x.mode is invalid; callers
// propagate invalid operands without further reports so one bad
// subexpression yields one diagnostic.
func (c *checker) expr(x *operand, e syntax.Expr) {
	x.mode = invalid
	x.expr = e
	x.typ = nil

	switch e := e.(type) {
	case *syntax.BasicLit:
		x.mode = value
		x.typ = litType(e.Kind)

	case *syntax.Ident:
		c.ident(x, e)

	case *syntax.ParenExpr:
		c.expr(x, e.X)
		x.expr = e

	case *syntax.SelectorExpr:
		c.selector(x, e)

	case *syntax.IndexExpr:
		c.index(x, e)

	case *syntax.CallExpr:
		c.call(x, e)

	case *syntax.CastExpr:
		c.cast(x, e)

	case *syntax.NewExpr:
		c.arrayNew(x, e)

	case *syntax.Operation:
		if e.Y == nil {
			c.unary(x, e)
		} else {
			c.binary(x, e)
		}

	default:
		panic("internal error: unexpected expression node")
	}

	if x.mode == value || x.mode == variable {
		c.recordType(e, x.typ)
	}
}

// wantValue rejects an operand that is a call of a function with no
// return value. Such a call is a valid statement but never a value.
func (c *checker) wantValue(x *operand) {
	if x.mode != novalue {
		return
	}
	c.errorf(diag.TypeMismatch, x.expr.Pos(),
		"call of a function with no return value used as a value")
	x.mode = invalid
}

func litType(kind syntax.LitKind) types.Type {
	switch kind {
	case syntax.IntLit:
		return types.Typ[types.Int]
	case syntax.FloatLit:
		return types.Typ[types.Float]
	case syntax.StringLit:
		return types.Typ[types.String]
	case syntax.BoolLit:
		return types.Typ[types.Bool]
	default:
		return types.Typ[types.None]
	}
}

// ident resolves a bare identifier: the receivers self and parent,
// then the lexical scope chain, then script names for static calls.
func (c *checker) ident(x *operand, e *syntax.Ident) {
	switch types.Fold(e.Value) {
	case "self":
		if c.global {
			c.errorf(diag.UndefinedSymbol, e.Pos(), "self is not available in a global function")
			return
		}
		x.mode = value
		x.typ = c.cur.Type
		return
	case "parent":
		if c.global {
			c.errorf(diag.UndefinedSymbol, e.Pos(), "parent is not available in a global function")
			return
		}
		if c.cur.Type.Parent() == nil {
			c.errorf(diag.UndefinedSymbol, e.Pos(), "script %s has no parent", c.cur.Name)
			return
		}
		x.mode = value
		x.typ = c.cur.Type.Parent()
		return
	}

	obj, where := c.scope.LookupParent(e.Value)
	if obj == nil {
		// A script name is valid here only as the receiver of a
		// global call; the selector check rejects other uses.
		if s, ok := c.result.Scripts[types.Fold(e.Value)]; ok {
			x.mode = static
			x.typ = s.Type
			return
		}
		c.errorf(diag.UndefinedSymbol, e.Pos(), "undefined: %s", e.Value)
		return
	}
	c.recordUse(e, obj)

	// Globals run without an instance, so script members other than
	// global functions are out of reach.
	if c.global && where.Kind() != types.LocalScope {
		if fn, ok := obj.(*types.FuncObj); !ok || !fn.Signature().Global() {
			c.errorf(diag.UndefinedSymbol, e.Pos(),
				"cannot use instance member %s in a global function", e.Value)
			return
		}
	}

	switch obj := obj.(type) {
	case *types.Var:
		x.mode = variable
		x.typ = obj.Type()
	case *types.Prop:
		x.mode = variable
		x.typ = obj.Type()
	case *types.FuncObj:
		// Only legal as the callee of a call expression; the call
		// check consumes this mode.
		x.mode = value
		x.typ = obj.Signature()
	case *types.StateObj:
		c.errorf(diag.TypeMismatch, e.Pos(), "%s is a state, not a value", e.Value)
		return
	}
	if x.typ == nil {
		x.mode = invalid
	}
}

// selector checks a member access X.Sel: the length pseudo-member on
// arrays, instance members on script-typed values, and global
// functions through a script name.
func (c *checker) selector(x *operand, e *syntax.SelectorExpr) {
	c.expr(x, e.X)
	if !x.isValid() {
		return
	}

	if _, ok := x.typ.(*types.Array); ok {
		if types.Fold(e.Sel.Value) == "length" {
			x.mode = value
			x.typ = types.Typ[types.Int]
			return
		}
		c.errorf(diag.UndefinedSymbol, e.Sel.Pos(),
			"arrays have no member %s (only length)", e.Sel.Value)
		x.mode = invalid
		return
	}

	st, ok := x.typ.(*types.Script)
	if !ok {
		c.errorf(diag.TypeMismatch, e.Sel.Pos(),
			"%s has no members", x.describe())
		x.mode = invalid
		return
	}
	target := c.result.ScriptFor(st)
	if target == nil {
		x.mode = invalid
		return
	}
	obj := target.LookupMember(e.Sel.Value)

	if x.mode == static {
		// Script-name receiver: only global functions are reachable.
		fn, ok := obj.(*types.FuncObj)
		if !ok || !fn.Signature().Global() {
			c.errorf(diag.UndefinedSymbol, e.Sel.Pos(),
				"script %s has no global function %s", st.Name(), e.Sel.Value)
			x.mode = invalid
			return
		}
		c.recordUse(e.Sel, fn)
		x.mode = value
		x.typ = fn.Signature()
		return
	}

	switch obj := obj.(type) {
	case *types.Prop:
		c.recordUse(e.Sel, obj)
		x.mode = variable
		x.typ = obj.Type()
	case *types.FuncObj:
		c.recordUse(e.Sel, obj)
		x.mode = value
		x.typ = obj.Signature()
	default:
		// Script variables are private to their script; from the
		// outside only properties and functions exist.
		c.errorf(diag.UndefinedSymbol, e.Sel.Pos(),
			"script %s has no accessible member %s", st.Name(), e.Sel.Value)
		x.mode = invalid
	}
}

func (c *checker) index(x *operand, e *syntax.IndexExpr) {
	c.expr(x, e.X)
	if !x.isValid() {
		return
	}
	arr, ok := x.typ.(*types.Array)
	if !ok {
		c.errorf(diag.TypeMismatch, e.Pos(), "cannot index %s", x.describe())
		x.mode = invalid
		return
	}

	var idx operand
	c.expr(&idx, e.Index)
	if idx.isValid() && !types.IsIntegerType(idx.typ) {
		c.errorf(diag.TypeMismatch, e.Index.Pos(),
			"array index must be int, have %s", idx.describe())
	}

	x.mode = variable
	x.typ = arr.Elem()
}

// call checks a call expression: resolves the callee, matches
// arguments against parameters (trailing parameters with defaults may
// be omitted), and records the resolved function for the code
// generator.
func (c *checker) call(x *operand, e *syntax.CallExpr) {
	var fn *types.FuncObj
	isStatic := ""

	switch callee := e.Fun.(type) {
	case *syntax.Ident:
		var cx operand
		c.ident(&cx, callee)
		if !cx.isValid() {
			x.mode = invalid
			return
		}
		obj := c.result.Info.ObjectOf(callee)
		f, ok := obj.(*types.FuncObj)
		if !ok {
			c.errorf(diag.TypeMismatch, callee.Pos(), "%s is not a function", callee.Value)
			x.mode = invalid
			return
		}
		fn = f

	case *syntax.SelectorExpr:
		var cx operand
		c.selector(&cx, callee)
		if !cx.isValid() {
			x.mode = invalid
			return
		}
		obj := c.result.Info.ObjectOf(callee.Sel)
		f, ok := obj.(*types.FuncObj)
		if !ok {
			c.errorf(diag.TypeMismatch, callee.Sel.Pos(), "%s is not a function", callee.Sel.Value)
			x.mode = invalid
			return
		}
		fn = f
		if rx, ok := callee.X.(*syntax.Ident); ok {
			var recv operand
			// Re-resolving the receiver is cheap and tells us whether
			// it named a script rather than a value.
			c.identQuiet(&recv, rx)
			if recv.mode == static {
				isStatic = recv.typ.(*types.Script).Name()
			}
		}

	default:
		c.errorf(diag.SyntaxError, e.Fun.Pos(), "expression is not callable")
		x.mode = invalid
		return
	}

	sig := fn.Signature()
	c.arguments(e, fn, sig)

	c.result.Info.Callees[e] = fn
	if isStatic != "" {
		c.result.Info.Statics[e] = isStatic
	}

	if types.IsNone(sig.Result()) {
		x.mode = novalue
	} else {
		x.mode = value
	}
	x.typ = sig.Result()
	c.recordType(e, sig.Result())
}

// identQuiet resolves an identifier without reporting diagnostics.
// Used to re-classify an already-checked call receiver.
func (c *checker) identQuiet(x *operand, e *syntax.Ident) {
	x.mode = invalid
	if obj, _ := c.scope.LookupParent(e.Value); obj != nil {
		x.mode = value
		x.typ = obj.Type()
		return
	}
	if s, ok := c.result.Scripts[types.Fold(e.Value)]; ok {
		x.mode = static
		x.typ = s.Type
	}
}

func (c *checker) arguments(e *syntax.CallExpr, fn *types.FuncObj, sig *types.Func) {
	if len(e.Args) > sig.NumParams() {
		c.errorf(diag.TypeMismatch, e.Pos(),
			"too many arguments in call to %s (have %d, want at most %d)",
			fn.Name(), len(e.Args), sig.NumParams())
	}
	for i := 0; i < sig.NumParams(); i++ {
		param := sig.Param(i)
		if i >= len(e.Args) {
			if decl := fn.Decl(); decl == nil || i >= len(decl.Params) || decl.Params[i].Default == nil {
				c.errorf(diag.TypeMismatch, e.Pos(),
					"missing argument %s in call to %s", param.Name(), fn.Name())
			}
			continue
		}
		var a operand
		c.expr(&a, e.Args[i])
		c.wantValue(&a)
		if a.isValid() && !types.AssignableTo(a.typ, param.Type()) {
			c.errorf(diag.TypeMismatch, e.Args[i].Pos(),
				"cannot use %s as %s for parameter %s of %s",
				a.describe(), param.Type(), param.Name(), fn.Name())
		}
	}
}

func (c *checker) cast(x *operand, e *syntax.CastExpr) {
	c.expr(x, e.X)
	target := c.typeOf(e.Type)
	if target == nil {
		x.mode = invalid
		return
	}
	if !x.isValid() {
		return
	}
	if !types.ConvertibleTo(x.typ, target) {
		c.errorf(diag.TypeMismatch, e.Pos(),
			"cannot cast %s to %s", x.describe(), target)
		x.mode = invalid
		return
	}
	x.mode = value
	x.typ = target
}

func (c *checker) arrayNew(x *operand, e *syntax.NewExpr) {
	elem := c.typeOf(e.Elem)
	if elem == nil {
		return
	}
	if types.IsNone(elem) {
		c.errorf(diag.TypeMismatch, e.Elem.Pos(), "none is not a valid array element type")
		return
	}
	var n operand
	c.expr(&n, e.Len)
	if n.isValid() && !types.IsIntegerType(n.typ) {
		c.errorf(diag.TypeMismatch, e.Len.Pos(),
			"array length must be int, have %s", n.describe())
	}
	x.mode = value
	x.typ = types.NewArray(elem)
}

func (c *checker) unary(x *operand, e *syntax.Operation) {
	c.expr(x, e.X)
	if !x.isValid() {
		return
	}
	switch e.Op {
	case syntax.OpNot:
		if !types.IsBool(x.typ) {
			c.errorf(diag.TypeMismatch, e.Pos(), "operator ! requires bool, have %s", x.describe())
			x.mode = invalid
			return
		}
	case syntax.OpNeg:
		if !types.IsNumericType(x.typ) {
			c.errorf(diag.TypeMismatch, e.Pos(), "operator - requires int or float, have %s", x.describe())
			x.mode = invalid
			return
		}
	default:
		panic("internal error: unexpected unary operator")
	}
	x.mode = value
	x.expr = e
}

func (c *checker) binary(x *operand, e *syntax.Operation) {
	var y operand
	c.expr(x, e.X)
	c.expr(&y, e.Y)
	if !x.isValid() || !y.isValid() {
		x.mode = invalid
		return
	}

	switch e.Op {
	case syntax.OpAndAnd, syntax.OpOrOr:
		if !types.IsBool(x.typ) || !types.IsBool(y.typ) {
			c.errorf(diag.TypeMismatch, e.Pos(),
				"operator %s requires bool operands, have %s and %s",
				e.Op, x.describe(), y.describe())
			x.mode = invalid
			return
		}
		x.typ = types.Typ[types.Bool]

	case syntax.OpEql, syntax.OpNeq:
		if !types.EquatableWith(x.typ, y.typ) {
			c.errorf(diag.TypeMismatch, e.Pos(),
				"cannot compare %s %s %s", x.describe(), e.Op, y.describe())
			x.mode = invalid
			return
		}
		x.typ = types.Typ[types.Bool]

	case syntax.OpLss, syntax.OpLeq, syntax.OpGtr, syntax.OpGeq:
		if !types.ComparableWith(x.typ, y.typ) {
			c.errorf(diag.TypeMismatch, e.Pos(),
				"cannot order %s %s %s", x.describe(), e.Op, y.describe())
			x.mode = invalid
			return
		}
		x.typ = types.Typ[types.Bool]

	case syntax.OpAdd, syntax.OpSub, syntax.OpMul, syntax.OpDiv, syntax.OpRem:
		if e.Op == syntax.OpRem && !(types.IsIntegerType(x.typ) && types.IsIntegerType(y.typ)) {
			c.errorf(diag.TypeMismatch, e.Pos(),
				"operator %% requires int operands, have %s and %s", x.describe(), y.describe())
			x.mode = invalid
			return
		}
		result := types.ArithmeticResult(x.typ, y.typ, e.Op == syntax.OpAdd)
		if result == nil {
			c.errorf(diag.TypeMismatch, e.Pos(),
				"invalid operation: %s %s %s", x.describe(), e.Op, y.describe())
			x.mode = invalid
			return
		}
		x.typ = result

	default:
		panic("internal error: unexpected binary operator")
	}

	x.mode = value
	x.expr = e
}
