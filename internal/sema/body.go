package sema

import (
	"github.com/vellum-lang/vellum/internal/diag"
	"github.com/vellum-lang/vellum/internal/syntax"
	"github.com/vellum-lang/vellum/internal/types"
)

// checkBodies type-checks every script-level function body and every
// property accessor body, including the synthesized accessors of auto
// properties so the side tables cover them too.
func (c *checker) checkBodies() {
	for _, s := range c.result.Order {
		if s.severed {
			continue
		}
		for _, m := range s.Unit.Members {
			switch m := m.(type) {
			case *syntax.VarDecl:
				obj, ok := s.Scope.Lookup(m.Name.Value).(*types.Var)
				if !ok || m.Init == nil {
					continue
				}
				c.cur = s
				c.scope = s.Scope
				c.literalInit(m.Init, obj.Type(), "variable "+m.Name.Value)

			case *syntax.FuncDecl:
				if obj, ok := s.Scope.Lookup(m.Name.Value).(*types.FuncObj); ok && obj.Decl() == m {
					c.checkFunc(s, obj)
				}

			case *syntax.PropertyDecl:
				prop, ok := s.Scope.Lookup(m.Name.Value).(*types.Prop)
				if !ok || prop.Decl() != m {
					continue
				}
				if get := prop.Getter(); get != nil {
					c.checkFunc(s, get)
				}
				if set := prop.Setter(); set != nil {
					c.checkFunc(s, set)
				}
			}
		}
	}
	c.cur, c.scope = nil, nil
}

// checkFunc checks one function body in a fresh local scope seeded
// with the signature's parameters. Native functions have no body;
// their parameter defaults are still validated.
func (c *checker) checkFunc(s *Script, obj *types.FuncObj) {
	decl := obj.Decl()
	sig := obj.Signature()

	c.cur = s
	c.scope = types.NewScope(s.Scope, types.LocalScope, obj.Name())
	c.ret = sig.Result()
	c.global = sig.Global()

	for i := 0; i < sig.NumParams(); i++ {
		c.scope.Insert(sig.Param(i))
		if i < len(decl.Params) && decl.Params[i].Default != nil {
			c.checkDefault(decl.Params[i], sig.Param(i).Type())
		}
	}
	if decl.Body != nil {
		c.stmtList(decl.Body)
	}

	c.scope = s.Scope
	c.ret = nil
	c.global = false
}

// checkDefault validates a parameter's default value, which must be a
// literal (possibly negated) assignable to the parameter type.
func (c *checker) checkDefault(p *syntax.ParamDecl, t types.Type) {
	c.literalInit(p.Default, t, "parameter "+p.Name.Value)
}

// literalInit validates a script-level initial value, which must be a
// literal (possibly negated) assignable to the declared type. Records
// the literal's type on success.
func (c *checker) literalInit(init syntax.Expr, t types.Type, what string) {
	e := init
	if op, ok := e.(*syntax.Operation); ok && op.Op == syntax.OpNeg && op.Y == nil {
		e = op.X
	}
	lit, ok := e.(*syntax.BasicLit)
	if !ok {
		c.errorf(diag.TypeMismatch, init.Pos(),
			"initial value of %s must be a literal", what)
		return
	}
	lt := litType(lit.Kind)
	if e != init && !types.IsNumericType(lt) {
		c.errorf(diag.TypeMismatch, init.Pos(), "cannot negate a %s literal", lt)
		return
	}
	if !types.AssignableTo(lt, t) {
		c.errorf(diag.TypeMismatch, init.Pos(),
			"cannot initialize %s %s with %s", t, what, lt)
		return
	}
	c.recordType(init, lt)
	if e != init {
		c.recordType(e, lt)
	}
}

// checkStates validates every state-scoped function: it must override
// a function visible at script level (own or inherited) with an
// exactly matching signature. Valid overrides are registered on the
// state object and their bodies checked.
func (c *checker) checkStates() {
	for _, s := range c.result.Order {
		if s.severed {
			continue
		}
		c.cur = s
		c.scope = s.Scope
		for _, st := range s.States {
			for _, f := range st.Decl().Funcs {
				c.scope = s.Scope
				obj := types.NewFuncObj(f.Name.Pos(), f.Name.Value, f)
				obj.SetSignature(c.funcSignature(f))

				target, ok := s.LookupMember(f.Name.Value).(*types.FuncObj)
				if !ok {
					c.errorf(diag.UndefinedSymbol, f.Name.Pos(),
						"state %s overrides %s, which is not a function of %s",
						st.Name(), f.Name.Value, s.Name)
					continue
				}
				if !signaturesMatch(obj.Signature(), target.Signature()) {
					c.errorf(diag.OverrideMismatch, f.Name.Pos(),
						"state %s overrides %s with a different signature (script-level: %s)",
						st.Name(), f.Name.Value, target.Signature())
					continue
				}
				if existing := st.AddOverride(obj); existing != nil {
					c.errorf(diag.DuplicateSymbol, f.Name.Pos(),
						"function %s already overridden in state %s at %s",
						f.Name.Value, st.Name(), existing.Pos())
					continue
				}
				c.checkFunc(s, obj)
			}
		}
	}
	c.cur, c.scope = nil, nil
}
