package sema

import (
	"github.com/vellum-lang/vellum/internal/diag"
	"github.com/vellum-lang/vellum/internal/syntax"
	"github.com/vellum-lang/vellum/internal/types"
)

// stmtList checks the statements of a block in the current scope.
func (c *checker) stmtList(b *syntax.BlockStmt) {
	for _, s := range b.Stmts {
		c.stmt(s)
	}
}

func (c *checker) stmt(s syntax.Stmt) {
	switch s := s.(type) {
	case *syntax.BlockStmt:
		c.openScope(types.LocalScope, "block")
		c.stmtList(s)
		c.closeScope()

	case *syntax.DeclStmt:
		c.localVarDecl(s.Decl)

	case *syntax.ExprStmt:
		call, ok := s.X.(*syntax.CallExpr)
		if !ok {
			c.errorf(diag.SyntaxError, s.Pos(), "only call expressions may be used as statements")
			return
		}
		var x operand
		c.expr(&x, call)

	case *syntax.AssignStmt:
		c.assign(s)

	case *syntax.IfStmt:
		c.condition(s.Cond, "If")
		c.openScope(types.LocalScope, "if")
		c.stmtList(s.Then)
		c.closeScope()
		if s.Else != nil {
			c.stmt(s.Else)
		}

	case *syntax.WhileStmt:
		c.condition(s.Cond, "While")
		c.openScope(types.LocalScope, "while")
		c.stmtList(s.Body)
		c.closeScope()

	case *syntax.ForEachStmt:
		c.forEach(s)

	case *syntax.ReturnStmt:
		c.returnStmt(s)

	default:
		panic("internal error: unexpected statement node")
	}
}

// condition checks a control-flow condition, which must be strictly
// boolean; there is no implicit truthiness.
func (c *checker) condition(e syntax.Expr, construct string) {
	var x operand
	c.expr(&x, e)
	if x.isValid() && !types.IsBool(x.typ) {
		c.errorf(diag.TypeMismatch, e.Pos(),
			"%s condition must be bool, have %s", construct, x.describe())
	}
}

func (c *checker) localVarDecl(d *syntax.VarDecl) {
	t := c.typeOrInvalid(d.Type)
	obj := types.NewVar(d.Pos(), d.Name.Value, t)
	c.declare(d.Name, obj)
	if d.Init == nil {
		return
	}
	var x operand
	c.expr(&x, d.Init)
	c.wantValue(&x)
	if x.isValid() && !types.AssignableTo(x.typ, t) {
		c.errorf(diag.TypeMismatch, d.Init.Pos(),
			"cannot initialize %s %s with %s", t, d.Name.Value, x.describe())
	}
}

// assign checks an assignment statement. Compound assignments are
// checked as the combining binary operation followed by a plain
// assignment; the code generator performs the same desugaring.
func (c *checker) assign(s *syntax.AssignStmt) {
	var lhs operand
	c.expr(&lhs, s.LHS)
	if lhs.isValid() {
		if lhs.mode != variable {
			c.errorf(diag.TypeMismatch, s.LHS.Pos(), "cannot assign to %s", lhs.describe())
			lhs.mode = invalid
		} else if prop := c.assignedProp(s.LHS); prop != nil {
			if prop.ReadOnly() {
				c.errorf(diag.TypeMismatch, s.LHS.Pos(),
					"cannot assign to read-only property %s", prop.Name())
				lhs.mode = invalid
			} else if !prop.Auto() && prop.Setter() == nil {
				c.errorf(diag.TypeMismatch, s.LHS.Pos(),
					"property %s has no setter", prop.Name())
				lhs.mode = invalid
			}
		}
	}

	var rhs operand
	c.expr(&rhs, s.RHS)
	c.wantValue(&rhs)
	if !lhs.isValid() || !rhs.isValid() {
		return
	}

	rt := rhs.typ
	if s.Op != syntax.OpNone {
		if s.Op == syntax.OpRem && !(types.IsIntegerType(lhs.typ) && types.IsIntegerType(rt)) {
			c.errorf(diag.TypeMismatch, s.Pos(),
				"operator %%= requires int operands, have %s and %s", lhs.describe(), rhs.describe())
			return
		}
		rt = types.ArithmeticResult(lhs.typ, rt, s.Op == syntax.OpAdd)
		if rt == nil {
			c.errorf(diag.TypeMismatch, s.Pos(),
				"invalid operation: %s %s= %s", lhs.describe(), s.Op, rhs.describe())
			return
		}
	}
	if !types.AssignableTo(rt, lhs.typ) {
		c.errorf(diag.TypeMismatch, s.RHS.Pos(),
			"cannot assign %s to %s", rt, lhs.typ)
	}
}

// assignedProp returns the property object an assignment target
// denotes, or nil for non-property targets.
func (c *checker) assignedProp(lhs syntax.Expr) *types.Prop {
	var sel *syntax.Ident
	switch lhs := lhs.(type) {
	case *syntax.Ident:
		sel = lhs
	case *syntax.SelectorExpr:
		sel = lhs.Sel
	default:
		return nil
	}
	prop, _ := c.result.Info.ObjectOf(sel).(*types.Prop)
	return prop
}

// forEach declares the loop variable in a fresh scope, typed as the
// iterated array's element type.
func (c *checker) forEach(s *syntax.ForEachStmt) {
	var iter operand
	c.expr(&iter, s.Iter)

	var elem types.Type = types.Typ[types.None]
	if iter.isValid() {
		arr, ok := iter.typ.(*types.Array)
		if !ok {
			c.errorf(diag.TypeMismatch, s.Iter.Pos(),
				"ForEach requires an array, have %s", iter.describe())
		} else {
			elem = arr.Elem()
		}
	}

	c.openScope(types.LocalScope, "foreach")
	c.declare(s.Var, types.NewVar(s.Var.Pos(), s.Var.Value, elem))
	c.stmtList(s.Body)
	c.closeScope()
}

func (c *checker) returnStmt(s *syntax.ReturnStmt) {
	if types.IsNone(c.ret) {
		if s.Result != nil {
			c.errorf(diag.TypeMismatch, s.Result.Pos(),
				"function has no return type but returns a value")
		}
		return
	}
	if s.Result == nil {
		c.errorf(diag.TypeMismatch, s.Pos(), "missing return value (want %s)", c.ret)
		return
	}
	var x operand
	c.expr(&x, s.Result)
	c.wantValue(&x)
	if x.isValid() && !types.AssignableTo(x.typ, c.ret) {
		c.errorf(diag.TypeMismatch, s.Result.Pos(),
			"cannot return %s (want %s)", x.describe(), c.ret)
	}
}
