package sema

import (
	"github.com/vellum-lang/vellum/internal/diag"
	"github.com/vellum-lang/vellum/internal/syntax"
	"github.com/vellum-lang/vellum/internal/types"
)

// collectScripts registers every unit under its folded name. A second
// unit with the same script name is rejected; the first wins.
func (c *checker) collectScripts(units []*syntax.ScriptUnit) {
	for _, unit := range units {
		if unit.Name == nil || unit.Name.Value == "_" {
			// Header never parsed; nothing to register.
			continue
		}
		name := unit.Name.Value
		key := types.Fold(name)
		if prev, ok := c.result.Scripts[key]; ok {
			c.bag.Add(diag.Errorf(diag.DuplicateSymbol, unit.Name.Pos(),
				"script %s already provided (from %s)", name, prev.File))
			continue
		}
		s := &Script{
			Unit:  unit,
			Name:  name,
			File:  unit.Pos().File,
			Type:  types.NewScript(name),
			Scope: types.NewScope(nil, types.ScriptScope, name),
		}
		c.result.Scripts[key] = s
		c.result.Order = append(c.result.Order, s)
	}
}

// linkAncestors resolves each script's parent name and links the type
// and scope chains. A cycle aborts resolution for the scripts on it
// (one diagnostic per cycle); the rest of the batch proceeds. There is
// no depth limit on acyclic chains.
func (c *checker) linkAncestors() {
	parents := make(map[*Script]*Script)
	for _, s := range c.result.Order {
		p := s.Unit.Parent
		if p == nil {
			continue
		}
		parent, ok := c.result.Scripts[types.Fold(p.Value)]
		if !ok {
			c.errorfFor(s, diag.UndefinedSymbol, p.Pos(),
				"parent script %s is not in the build set", p.Value)
			continue
		}
		if parent == s {
			c.errorfFor(s, diag.CyclicInheritance, p.Pos(),
				"script %s extends itself", s.Name)
			continue
		}
		parents[s] = parent
	}

	// Color-marking walk over the parent graph. Each script is visited
	// once, so a chain of any length terminates and each cycle is
	// reported exactly once, at the script where it closes.
	const (
		white = iota // unvisited
		grey         // on the current chain
		black        // done
	)
	color := make(map[*Script]int)
	var visit func(s *Script)
	visit = func(s *Script) {
		color[s] = grey
		p := parents[s]
		if p != nil {
			switch color[p] {
			case white:
				visit(p)
			case grey:
				// Closing edge of a cycle: report once and cut every
				// link on the cycle so no chain walk can loop.
				c.errorfFor(s, diag.CyclicInheritance, s.Unit.Parent.Pos(),
					"cyclic inheritance: %s and %s extend each other", s.Name, p.Name)
				// The cycle runs from p along the parent links back to
				// s, whose parent is p. Sever every script on it.
				for t := p; ; {
					next := parents[t]
					delete(parents, t)
					t.Failed = true
					t.severed = true
					if t == s || next == nil {
						break
					}
					t = next
				}
			}
		}
		color[s] = black
	}
	for _, s := range c.result.Order {
		if color[s] == white {
			visit(s)
		}
	}

	for s, p := range parents {
		s.Type.SetParent(p.Type)
		s.Scope.SetParent(p.Scope)
	}
}

// collectMembers builds each script's symbol table from its own
// declarations in a single pass. Duplicate same-scope names keep the
// first declaration.
func (c *checker) collectMembers() {
	for _, s := range c.result.Order {
		c.cur = s
		c.scope = s.Scope
		for _, m := range s.Unit.Members {
			switch m := m.(type) {
			case *syntax.VarDecl:
				c.declare(m.Name, types.NewVar(m.Pos(), m.Name.Value, nil))

			case *syntax.PropertyDecl:
				c.declare(m.Name, types.NewProp(m.Pos(), m.Name.Value, nil, m))

			case *syntax.FuncDecl:
				c.declare(m.Name, types.NewFuncObj(m.Pos(), m.Name.Value, m))

			case *syntax.StateDecl:
				st := types.NewStateObj(m.Pos(), m.Name.Value, m.Auto, m)
				c.declare(m.Name, st)
				if obj := s.Scope.Lookup(m.Name.Value); obj == st {
					s.States = append(s.States, st)
					if m.Auto {
						if s.AutoState != nil {
							c.errorf(diag.DuplicateSymbol, m.Pos(),
								"auto state already declared: %s", s.AutoState.Name())
						} else {
							s.AutoState = st
						}
					}
				}

			case *syntax.ImportDecl:
				// Imports name external namespaces for the resolver of
				// global calls; nothing to declare locally.
			}
		}
	}
	c.cur = nil
}

// resolveSignatures types every declared member, ancestors before
// descendants so override checks always see a resolved ancestor
// signature. Script-level functions whose name exists in an ancestor
// must match the ancestor signature exactly.
func (c *checker) resolveSignatures() {
	done := make(map[*Script]bool)
	var doScript func(s *Script)
	doScript = func(s *Script) {
		if done[s] {
			return
		}
		done[s] = true
		if p := s.Type.Parent(); p != nil {
			if ps := c.result.ScriptFor(p); ps != nil {
				doScript(ps)
			}
		}

		c.cur = s
		c.scope = s.Scope
		for _, name := range s.Scope.Names() {
			switch obj := s.Scope.Lookup(name).(type) {
			case *types.Var:
				if decl := c.varDeclFor(s, obj); decl != nil {
					obj.SetType(c.typeOrInvalid(decl.Type))
				}

			case *types.Prop:
				obj.SetType(c.typeOrInvalid(obj.Decl().Type))

			case *types.FuncObj:
				c.resolveFuncSignature(s, obj)
			}
		}
	}
	for _, s := range c.result.Order {
		doScript(s)
	}
	c.cur = nil
}

// typeOrInvalid resolves a type reference, substituting the none type
// after an error so checking can continue.
func (c *checker) typeOrInvalid(t *syntax.TypeExpr) types.Type {
	if resolved := c.typeOf(t); resolved != nil {
		return resolved
	}
	return types.Typ[types.None]
}

// varDeclFor finds the declaration of a script-level variable object.
func (c *checker) varDeclFor(s *Script, v *types.Var) *syntax.VarDecl {
	for _, m := range s.Unit.Members {
		if vd, ok := m.(*syntax.VarDecl); ok && types.Fold(vd.Name.Value) == types.Fold(v.Name()) {
			return vd
		}
	}
	return nil
}

// funcSignature builds a signature from a function declaration,
// reporting duplicate parameter names.
func (c *checker) funcSignature(decl *syntax.FuncDecl) *types.Func {
	params := make([]*types.Var, 0, len(decl.Params))
	seen := make(map[string]bool)
	for _, p := range decl.Params {
		pt := c.typeOrInvalid(p.Type)
		if seen[types.Fold(p.Name.Value)] {
			c.errorf(diag.DuplicateSymbol, p.Pos(),
				"duplicate parameter name %s", p.Name.Value)
		}
		seen[types.Fold(p.Name.Value)] = true
		params = append(params, types.NewParam(p.Pos(), p.Name.Value, pt))
	}

	var result types.Type
	if decl.Return != nil {
		result = c.typeOrInvalid(decl.Return)
	}
	return types.NewFunc(params, result, decl.Global, decl.Native, decl.Event)
}

// resolveFuncSignature builds a function object's signature and
// validates it against any same-named ancestor function.
func (c *checker) resolveFuncSignature(s *Script, obj *types.FuncObj) {
	decl := obj.Decl()
	sig := c.funcSignature(decl)
	obj.SetSignature(sig)

	// Override check against the ancestor chain.
	if parent := s.Scope.Parent(); parent != nil {
		if ancestor, _ := parent.LookupParent(obj.Name()); ancestor != nil {
			af, ok := ancestor.(*types.FuncObj)
			if !ok {
				c.errorf(diag.DuplicateSymbol, decl.Pos(),
					"%s hides an inherited %s member of a different kind", obj.Name(), ancestor.Parent().Comment())
				return
			}
			if !signaturesMatch(sig, af.Signature()) {
				c.errorf(diag.OverrideMismatch, decl.Pos(),
					"%s overrides an inherited function with a different signature (inherited: %s)",
					obj.Name(), af.Signature())
			}
		}
	}
}

// signaturesMatch reports whether an override's signature matches the
// overridden one: same arity, identical parameter types, identical
// return type. This is the strict policy; relaxing it means changing
// only this function.
func signaturesMatch(a, b *types.Func) bool {
	if a.NumParams() != b.NumParams() || !types.Identical(a.Result(), b.Result()) {
		return false
	}
	for i := 0; i < a.NumParams(); i++ {
		if !types.Identical(a.Param(i).Type(), b.Param(i).Type()) {
			return false
		}
	}
	return true
}
