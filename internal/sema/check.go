package sema

import (
	"github.com/vellum-lang/vellum/internal/diag"
	"github.com/vellum-lang/vellum/internal/span"
	"github.com/vellum-lang/vellum/internal/syntax"
	"github.com/vellum-lang/vellum/internal/types"
)

// checker carries the state of one Resolve invocation.
type checker struct {
	bag    *diag.Bag
	result *Result

	// Current checking context
	cur    *Script      // script being checked
	scope  *types.Scope // current scope
	ret    types.Type   // current function result type
	global bool         // current function is global (no self)
}

// errorf reports an error diagnostic against the current script.
func (c *checker) errorf(kind diag.Kind, pos span.Pos, format string, args ...interface{}) {
	c.bag.Add(diag.Errorf(kind, pos, format, args...))
	if c.cur != nil {
		c.cur.Failed = true
	}
}

// errorfFor reports an error attributed to a specific script.
func (c *checker) errorfFor(s *Script, kind diag.Kind, pos span.Pos, format string, args ...interface{}) {
	c.bag.Add(diag.Errorf(kind, pos, format, args...))
	if s != nil {
		s.Failed = true
	}
}

// recordType records an expression's resolved type.
func (c *checker) recordType(e syntax.Expr, t types.Type) {
	if t != nil {
		c.result.Info.Types[e] = t
	}
}

// recordUse records an identifier's resolved object.
func (c *checker) recordUse(n *syntax.Ident, obj types.Object) {
	if obj != nil {
		c.result.Info.Uses[n] = obj
	}
}

// openScope pushes a child scope.
func (c *checker) openScope(kind types.ScopeKind, comment string) {
	c.scope = types.NewScope(c.scope, kind, comment)
}

// closeScope pops to the parent scope.
func (c *checker) closeScope() {
	c.scope = c.scope.Parent()
}

// declare inserts an object into the current scope, reporting a
// duplicate-symbol diagnostic if the name is taken. The first
// declaration wins.
func (c *checker) declare(name *syntax.Ident, obj types.Object) {
	if existing := c.scope.Insert(obj); existing != nil {
		c.errorf(diag.DuplicateSymbol, name.Pos(),
			"%s already declared at %s", name.Value, existing.Pos())
		return
	}
	c.recordUse(name, obj)
}

// typeOf resolves a type reference to a types.Type. Unknown script
// names produce an undefined-symbol diagnostic and an invalid type.
func (c *checker) typeOf(t *syntax.TypeExpr) types.Type {
	var base types.Type
	if b := types.BasicByName(t.Name); b != nil {
		base = b
	} else if s, ok := c.result.Scripts[types.Fold(t.Name)]; ok {
		base = s.Type
	} else {
		c.errorf(diag.UndefinedSymbol, t.Pos(), "unknown type %s", t.Name)
		return nil
	}
	if t.Array {
		if types.IsNone(base) {
			c.errorf(diag.TypeMismatch, t.Pos(), "none is not a valid array element type")
			return nil
		}
		return types.NewArray(base)
	}
	return base
}
