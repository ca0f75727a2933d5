// Package codegen lowers resolved scripts into bytecode modules. It
// consumes the analyzer's side tables and never re-derives types;
// invoking it on a failed script is a pipeline bug and panics.
package codegen

import (
	"fmt"
	"strconv"

	"github.com/vellum-lang/vellum/internal/bytecode"
	"github.com/vellum-lang/vellum/internal/sema"
	"github.com/vellum-lang/vellum/internal/syntax"
	"github.com/vellum-lang/vellum/internal/types"
)

// Generate lowers one resolved script into a self-contained bytecode
// module. The script must have resolved without errors.
func Generate(s *sema.Script, res *sema.Result) *bytecode.Module {
	if s.Failed {
		panic("internal error: code generation requested for failed script " + s.Name)
	}
	g := &generator{res: res, s: s}

	parent := ""
	if p := s.Type.Parent(); p != nil {
		parent = p.Name()
	}
	g.m = bytecode.NewModule(s.Name, parent)

	for _, m := range s.Unit.Members {
		switch m := m.(type) {
		case *syntax.VarDecl:
			g.scriptVar(m)
		case *syntax.PropertyDecl:
			g.property(m)
		case *syntax.FuncDecl:
			g.m.Funcs = append(g.m.Funcs, g.function(m, "", m.Name.Value))
		case *syntax.StateDecl:
			g.state(m)
		}
	}

	if err := g.m.Validate(); err != nil {
		panic("internal error: " + err.Error())
	}
	return g.m
}

// generator carries the state of one Generate invocation. The f,
// temps, and labels fields are per-function and reset by function.
type generator struct {
	res *sema.Result
	s   *sema.Script
	m   *bytecode.Module

	f      *bytecode.Function
	ret    types.Type // result type of the function being lowered
	temps  int
	labels int
}

func (g *generator) emit(in bytecode.Instruction) {
	g.f.Code = append(g.f.Code, in)
}

func (g *generator) newTemp() bytecode.Value {
	v := bytecode.Temp(g.temps)
	g.temps++
	return v
}

func (g *generator) newLabel() string {
	l := fmt.Sprintf("L%d", g.labels)
	g.labels++
	return l
}

func (g *generator) defineLabel(name string) {
	g.f.Labels[name] = len(g.f.Code)
}

func (g *generator) typeOfExpr(e syntax.Expr) types.Type {
	return g.res.Info.TypeOf(e)
}

// resolveType maps a type reference to its resolved type. The
// analyzer already validated every reference, so failure is a bug.
func (g *generator) resolveType(t *syntax.TypeExpr) types.Type {
	var base types.Type
	if b := types.BasicByName(t.Name); b != nil {
		base = b
	} else if s, ok := g.res.Scripts[types.Fold(t.Name)]; ok {
		base = s.Type
	} else {
		panic("internal error: unresolved type " + t.Name)
	}
	if t.Array {
		return types.NewArray(base)
	}
	return base
}

func (g *generator) typeString(t *syntax.TypeExpr) string {
	return g.resolveType(t).String()
}

func (g *generator) scriptVar(d *syntax.VarDecl) {
	obj, ok := g.s.Scope.Lookup(d.Name.Value).(*types.Var)
	if !ok {
		return
	}
	init := -1
	if d.Init != nil {
		init = g.m.Intern(g.literalConst(d.Init, obj.Type()))
	}
	g.m.Vars = append(g.m.Vars, bytecode.Variable{
		Name: obj.Name(),
		Type: obj.Type().String(),
		Init: init,
	})
}

// property emits one property table entry plus its accessor function
// bodies. Auto properties additionally contribute their hidden
// backing variable; by this point the analyzer has given every
// property a getter, so the two forms lower identically.
func (g *generator) property(d *syntax.PropertyDecl) {
	prop, ok := g.s.Scope.Lookup(d.Name.Value).(*types.Prop)
	if !ok || prop.Decl() != d {
		return
	}
	entry := bytecode.Property{
		Name:     prop.Name(),
		Type:     prop.Type().String(),
		Auto:     prop.Auto(),
		ReadOnly: prop.ReadOnly(),
	}
	if backing := prop.Backing(); backing != nil {
		init := -1
		if d.Init != nil {
			init = g.m.Intern(g.literalConst(d.Init, prop.Type()))
		}
		g.m.Vars = append(g.m.Vars, bytecode.Variable{
			Name: backing.Name(),
			Type: prop.Type().String(),
			Init: init,
		})
		entry.Backing = backing.Name()
	}
	if get := prop.Getter(); get != nil {
		entry.Getter = prop.Name() + ".Get"
		g.m.Funcs = append(g.m.Funcs, g.function(get.Decl(), "", entry.Getter))
	}
	if set := prop.Setter(); set != nil {
		entry.Setter = prop.Name() + ".Set"
		g.m.Funcs = append(g.m.Funcs, g.function(set.Decl(), "", entry.Setter))
	}
	g.m.Props = append(g.m.Props, entry)
}

// state emits one state table entry and the bodies of its overrides.
func (g *generator) state(d *syntax.StateDecl) {
	st := g.s.State(d.Name.Value)
	if st == nil || st.Decl() != d {
		return
	}
	entry := bytecode.State{Name: st.Name(), Auto: st.Auto()}
	for _, f := range d.Funcs {
		ov := st.Override(f.Name.Value)
		if ov == nil || ov.Decl() != f {
			continue
		}
		entry.Overrides = append(entry.Overrides, ov.Name())
		g.m.Funcs = append(g.m.Funcs, g.function(f, st.Name(), ov.Name()))
	}
	g.m.States = append(g.m.States, entry)
}

// function lowers one function body. Native functions contribute only
// their signature.
func (g *generator) function(decl *syntax.FuncDecl, state, name string) *bytecode.Function {
	f := &bytecode.Function{
		Name:   name,
		State:  state,
		Global: decl.Global,
		Native: decl.Native,
		Event:  decl.Event,
		Labels: make(map[string]int),
	}
	for _, p := range decl.Params {
		f.Params = append(f.Params, bytecode.Param{
			Name: p.Name.Value,
			Type: g.typeString(p.Type),
		})
	}
	g.ret = types.Typ[types.None]
	if decl.Return != nil {
		g.ret = g.resolveType(decl.Return)
		f.Return = g.ret.String()
	}
	if decl.Native {
		return f
	}

	g.f = f
	g.temps, g.labels = 0, 0
	g.block(decl.Body)
	f.Temps = g.temps
	g.f = nil
	return f
}

// literalConst converts a literal initializer (possibly negated) into
// a constant pool entry, widening int to float when the declared type
// requires it.
func (g *generator) literalConst(e syntax.Expr, target types.Type) bytecode.Const {
	neg := false
	if op, ok := e.(*syntax.Operation); ok && op.Op == syntax.OpNeg && op.Y == nil {
		neg = true
		e = op.X
	}
	lit, ok := e.(*syntax.BasicLit)
	if !ok {
		panic("internal error: non-literal initializer survived checking")
	}
	c := constOf(lit)
	if neg {
		switch c.Kind {
		case bytecode.ConstInt:
			c.IntVal = -c.IntVal
		case bytecode.ConstFloat:
			c.FloatVal = -c.FloatVal
		}
	}
	if c.Kind == bytecode.ConstInt && types.IsFloatType(target) {
		c = bytecode.FloatConst(float32(c.IntVal))
	}
	return c
}

func constOf(lit *syntax.BasicLit) bytecode.Const {
	switch lit.Kind {
	case syntax.IntLit:
		v, err := strconv.ParseInt(lit.Value, 0, 32)
		if err != nil {
			panic("internal error: malformed int literal " + lit.Value)
		}
		return bytecode.IntConst(int32(v))
	case syntax.FloatLit:
		v, err := strconv.ParseFloat(lit.Value, 32)
		if err != nil {
			panic("internal error: malformed float literal " + lit.Value)
		}
		return bytecode.FloatConst(float32(v))
	case syntax.StringLit:
		return bytecode.StringConst(lit.Value)
	case syntax.BoolLit:
		return bytecode.BoolConst(lit.Value == "true")
	default:
		return bytecode.NoneConst()
	}
}
