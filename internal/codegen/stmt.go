package codegen

import (
	"github.com/vellum-lang/vellum/internal/bytecode"
	"github.com/vellum-lang/vellum/internal/syntax"
	"github.com/vellum-lang/vellum/internal/types"
)

func (g *generator) block(b *syntax.BlockStmt) {
	for _, s := range b.Stmts {
		g.stmt(s)
	}
}

func (g *generator) stmt(s syntax.Stmt) {
	switch s := s.(type) {
	case *syntax.BlockStmt:
		g.block(s)

	case *syntax.DeclStmt:
		g.localDecl(s.Decl)

	case *syntax.ExprStmt:
		g.expr(s.X)

	case *syntax.AssignStmt:
		g.assign(s)

	case *syntax.IfStmt:
		g.ifStmt(s)

	case *syntax.WhileStmt:
		g.whileStmt(s)

	case *syntax.ForEachStmt:
		g.forEachStmt(s)

	case *syntax.ReturnStmt:
		g.returnStmt(s)

	default:
		panic("internal error: unexpected statement node")
	}
}

func (g *generator) localDecl(d *syntax.VarDecl) {
	obj, ok := g.res.Info.ObjectOf(d.Name).(*types.Var)
	if !ok {
		return // lost a duplicate-symbol conflict
	}
	g.f.Locals = append(g.f.Locals, bytecode.Param{
		Name: obj.Name(),
		Type: obj.Type().String(),
	})
	if d.Init == nil {
		return
	}
	v := g.expr(d.Init)
	v = g.coerce(v, g.typeOfExpr(d.Init), obj.Type())
	g.emit(bytecode.Instruction{
		Op:   bytecode.OpAssign,
		Dest: bytecode.Local(obj.Name()),
		Args: []bytecode.Value{v},
	})
}

// assign lowers plain and compound assignments. The target's
// subexpressions (property receiver, array index) are evaluated
// exactly once, so a compound assignment's load and store see the
// same location even when an index has side effects.
func (g *generator) assign(s *syntax.AssignStmt) {
	dst := g.target(s.LHS)
	rhs := g.expr(s.RHS)
	rt := g.typeOfExpr(s.RHS)
	lt := g.typeOfExpr(s.LHS)

	if s.Op != syntax.OpNone {
		cur := g.load(&dst)
		dest := g.newTemp()
		ct := types.ArithmeticResult(lt, rt, s.Op == syntax.OpAdd)
		if types.IsStringType(ct) {
			cur = g.stringify(cur, lt)
			rhs = g.stringify(rhs, rt)
			g.emit(bytecode.Instruction{Op: bytecode.OpConcat, Dest: dest, Args: []bytecode.Value{cur, rhs}})
		} else {
			cur = g.coerce(cur, lt, ct)
			rhs = g.coerce(rhs, rt, ct)
			g.emit(bytecode.Instruction{
				Op:   binaryOps[s.Op],
				Type: ct.String(),
				Dest: dest,
				Args: []bytecode.Value{cur, rhs},
			})
		}
		rhs, rt = dest, ct
	}

	rhs = g.coerce(rhs, rt, lt)
	g.store(&dst, rhs)
}

// targetKind discriminates assignment destinations.
type targetKind int

const (
	targetVar  targetKind = iota // local or field storage
	targetProp                   // property, accessor dispatch
	targetElem                   // array element
)

// assignTarget is an assignment destination with its subexpressions
// already evaluated.
type assignTarget struct {
	kind targetKind
	dest bytecode.Value // targetVar: the storage location
	prop string         // targetProp: property name
	recv bytecode.Value // targetProp: receiver
	arr  bytecode.Value // targetElem: the array
	idx  bytecode.Value // targetElem: the element index
	elem string         // targetElem: element type
}

// target evaluates an assignment target's subexpressions and
// classifies its destination.
func (g *generator) target(lhs syntax.Expr) assignTarget {
	switch lhs := lhs.(type) {
	case *syntax.Ident:
		switch obj := g.res.Info.ObjectOf(lhs).(type) {
		case *types.Var:
			return assignTarget{kind: targetVar, dest: g.varRef(obj)}
		case *types.Prop:
			return assignTarget{kind: targetProp, prop: obj.Name(), recv: bytecode.Self()}
		}
		panic("internal error: identifier " + lhs.Value + " is not assignable")

	case *syntax.SelectorExpr:
		prop, ok := g.res.Info.ObjectOf(lhs.Sel).(*types.Prop)
		if !ok {
			panic("internal error: selector " + lhs.Sel.Value + " is not assignable")
		}
		return assignTarget{kind: targetProp, prop: prop.Name(), recv: g.expr(lhs.X)}

	case *syntax.IndexExpr:
		return assignTarget{
			kind: targetElem,
			arr:  g.expr(lhs.X),
			idx:  g.expr(lhs.Index),
			elem: g.typeOfExpr(lhs).String(),
		}
	}
	panic("internal error: unexpected assignment target")
}

// load reads the target's current value.
func (g *generator) load(t *assignTarget) bytecode.Value {
	switch t.kind {
	case targetVar:
		return t.dest
	case targetProp:
		dest := g.newTemp()
		g.emit(bytecode.Instruction{
			Op:   bytecode.OpPropGet,
			Dest: dest,
			Aux:  t.prop,
			Args: []bytecode.Value{t.recv},
		})
		return dest
	default:
		dest := g.newTemp()
		g.emit(bytecode.Instruction{
			Op:   bytecode.OpArrayGet,
			Type: t.elem,
			Dest: dest,
			Args: []bytecode.Value{t.arr, t.idx},
		})
		return dest
	}
}

// store writes a value into the target.
func (g *generator) store(t *assignTarget, v bytecode.Value) {
	switch t.kind {
	case targetVar:
		g.emit(bytecode.Instruction{Op: bytecode.OpAssign, Dest: t.dest, Args: []bytecode.Value{v}})
	case targetProp:
		g.emit(bytecode.Instruction{
			Op:   bytecode.OpPropSet,
			Aux:  t.prop,
			Args: []bytecode.Value{t.recv, v},
		})
	default:
		g.emit(bytecode.Instruction{
			Op:   bytecode.OpArraySet,
			Type: t.elem,
			Args: []bytecode.Value{t.arr, t.idx, v},
		})
	}
}

// ifStmt lowers an if chain. A condition that is a boolean literal
// drops the dead branch entirely.
func (g *generator) ifStmt(s *syntax.IfStmt) {
	if v, ok := constBool(s.Cond); ok {
		if v {
			g.block(s.Then)
		} else if s.Else != nil {
			g.stmt(s.Else)
		}
		return
	}

	cond := g.expr(s.Cond)
	if s.Else == nil {
		end := g.newLabel()
		g.emit(bytecode.Instruction{Op: bytecode.OpBranchFalse, Args: []bytecode.Value{cond}, Target: end})
		g.block(s.Then)
		g.defineLabel(end)
		return
	}

	els, end := g.newLabel(), g.newLabel()
	g.emit(bytecode.Instruction{Op: bytecode.OpBranchFalse, Args: []bytecode.Value{cond}, Target: els})
	g.block(s.Then)
	g.emit(bytecode.Instruction{Op: bytecode.OpJump, Target: end})
	g.defineLabel(els)
	g.stmt(s.Else)
	g.defineLabel(end)
}

func (g *generator) whileStmt(s *syntax.WhileStmt) {
	head, end := g.newLabel(), g.newLabel()
	g.defineLabel(head)
	cond := g.expr(s.Cond)
	g.emit(bytecode.Instruction{Op: bytecode.OpBranchFalse, Args: []bytecode.Value{cond}, Target: end})
	g.block(s.Body)
	g.emit(bytecode.Instruction{Op: bytecode.OpJump, Target: head})
	g.defineLabel(end)
}

// forEachStmt lowers array iteration into an index loop: the array
// and its length are captured once, the loop variable is refreshed
// from the current element at the head of each pass.
func (g *generator) forEachStmt(s *syntax.ForEachStmt) {
	obj, ok := g.res.Info.ObjectOf(s.Var).(*types.Var)
	if !ok {
		panic("internal error: unresolved loop variable " + s.Var.Value)
	}
	g.f.Locals = append(g.f.Locals, bytecode.Param{
		Name: obj.Name(),
		Type: obj.Type().String(),
	})

	arr := g.expr(s.Iter)
	length := g.newTemp()
	g.emit(bytecode.Instruction{Op: bytecode.OpArrayLen, Dest: length, Args: []bytecode.Value{arr}})

	idx := g.newTemp()
	zero := bytecode.ConstRef(g.m.Intern(bytecode.IntConst(0)))
	one := bytecode.ConstRef(g.m.Intern(bytecode.IntConst(1)))
	g.emit(bytecode.Instruction{Op: bytecode.OpAssign, Dest: idx, Args: []bytecode.Value{zero}})

	head, end := g.newLabel(), g.newLabel()
	intName := types.Typ[types.Int].String()

	g.defineLabel(head)
	more := g.newTemp()
	g.emit(bytecode.Instruction{Op: bytecode.OpLt, Type: intName, Dest: more, Args: []bytecode.Value{idx, length}})
	g.emit(bytecode.Instruction{Op: bytecode.OpBranchFalse, Args: []bytecode.Value{more}, Target: end})
	g.emit(bytecode.Instruction{
		Op:   bytecode.OpArrayGet,
		Type: obj.Type().String(),
		Dest: bytecode.Local(obj.Name()),
		Args: []bytecode.Value{arr, idx},
	})
	g.block(s.Body)
	g.emit(bytecode.Instruction{Op: bytecode.OpAdd, Type: intName, Dest: idx, Args: []bytecode.Value{idx, one}})
	g.emit(bytecode.Instruction{Op: bytecode.OpJump, Target: head})
	g.defineLabel(end)
}

func (g *generator) returnStmt(s *syntax.ReturnStmt) {
	if s.Result == nil {
		g.emit(bytecode.Instruction{Op: bytecode.OpReturn})
		return
	}
	v := g.expr(s.Result)
	v = g.coerce(v, g.typeOfExpr(s.Result), g.ret)
	g.emit(bytecode.Instruction{Op: bytecode.OpReturn, Args: []bytecode.Value{v}})
}

// constBool unwraps parentheses and reports a boolean literal's value.
func constBool(e syntax.Expr) (bool, bool) {
	for {
		p, ok := e.(*syntax.ParenExpr)
		if !ok {
			break
		}
		e = p.X
	}
	lit, ok := e.(*syntax.BasicLit)
	if !ok || lit.Kind != syntax.BoolLit {
		return false, false
	}
	return lit.Value == "true", true
}
