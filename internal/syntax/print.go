package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a canonical source rendering of the AST to w.
// The output is valid Vellum source: re-parsing it yields a
// structurally identical tree (positions aside). The standalone
// formatter builds on this printer.
func Fprint(w io.Writer, unit *ScriptUnit) error {
	p := &printer{w: w}
	p.unit(unit)
	return p.err
}

// String renders the AST to a string.
func String(unit *ScriptUnit) string {
	var b strings.Builder
	Fprint(&b, unit)
	return b.String()
}

type printer struct {
	w      io.Writer
	indent int
	err    error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) line(format string, args ...interface{}) {
	p.printf(strings.Repeat("  ", p.indent)+format+"\n", args...)
}

func (p *printer) unit(u *ScriptUnit) {
	header := "ScriptName " + u.Name.Value
	if u.Parent != nil {
		header += " extends " + u.Parent.Value
	}
	if u.Native {
		header += " Native"
	}
	if u.Hidden {
		header += " Hidden"
	}
	p.line("%s", header)

	for _, m := range u.Members {
		p.printf("\n")
		p.memberDecl(m)
	}
}

func (p *printer) memberDecl(m Member) {
	switch m := m.(type) {
	case *ImportDecl:
		p.line("Import %s", m.Name.Value)

	case *VarDecl:
		p.varDecl(m)

	case *PropertyDecl:
		p.property(m)

	case *FuncDecl:
		p.funcDecl(m)

	case *StateDecl:
		head := "State " + m.Name.Value
		if m.Auto {
			head = "Auto " + head
		}
		p.line("%s", head)
		p.indent++
		for _, f := range m.Funcs {
			p.funcDecl(f)
		}
		p.indent--
		p.line("EndState")
	}
}

func (p *printer) varDecl(d *VarDecl) {
	s := typeString(d.Type) + " " + d.Name.Value
	if d.Init != nil {
		s += " = " + exprString(d.Init)
	}
	p.line("%s", s)
}

func (p *printer) property(d *PropertyDecl) {
	head := typeString(d.Type) + " Property " + d.Name.Value
	if d.Init != nil {
		head += " = " + exprString(d.Init)
	}
	switch {
	case d.Auto:
		head += " Auto"
	case d.ReadOnly:
		head += " AutoReadOnly"
	}
	p.line("%s", head)
	if d.IsAuto() {
		return
	}
	p.indent++
	if d.Get != nil && !d.Get.Synthesized {
		p.funcDecl(d.Get)
	}
	if d.Set != nil && !d.Set.Synthesized {
		p.funcDecl(d.Set)
	}
	p.indent--
	p.line("EndProperty")
}

func (p *printer) funcDecl(d *FuncDecl) {
	var head string
	if d.Return != nil {
		head = typeString(d.Return) + " "
	}
	kw, end := "Function", "EndFunction"
	if d.Event {
		kw, end = "Event", "EndEvent"
	}
	head += kw + " " + d.Name.Value + "("
	for i, param := range d.Params {
		if i > 0 {
			head += ", "
		}
		head += typeString(param.Type) + " " + param.Name.Value
		if param.Default != nil {
			head += " = " + exprString(param.Default)
		}
	}
	head += ")"
	if d.Global {
		head += " Global"
	}
	if d.Native {
		head += " Native"
	}
	p.line("%s", head)
	if d.Native {
		return
	}
	p.indent++
	p.block(d.Body)
	p.indent--
	p.line("%s", end)
}

func (p *printer) block(b *BlockStmt) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		p.stmtDecl(s)
	}
}

func (p *printer) stmtDecl(s Stmt) {
	switch s := s.(type) {
	case *DeclStmt:
		p.varDecl(s.Decl)

	case *ExprStmt:
		p.line("%s", exprString(s.X))

	case *AssignStmt:
		op := "="
		if s.Op != OpNone {
			op = s.Op.String() + "="
		}
		p.line("%s %s %s", exprString(s.LHS), op, exprString(s.RHS))

	case *IfStmt:
		p.ifChain(s, "If")
		p.line("EndIf")

	case *WhileStmt:
		p.line("While %s", exprString(s.Cond))
		p.indent++
		p.block(s.Body)
		p.indent--
		p.line("EndWhile")

	case *ForEachStmt:
		p.line("ForEach %s in %s", s.Var.Value, exprString(s.Iter))
		p.indent++
		p.block(s.Body)
		p.indent--
		p.line("EndForEach")

	case *ReturnStmt:
		if s.Result != nil {
			p.line("Return %s", exprString(s.Result))
		} else {
			p.line("Return")
		}
	}
}

// ifChain prints an if statement and its elseif/else tail without the
// closing EndIf, which belongs to the outermost statement.
func (p *printer) ifChain(s *IfStmt, kw string) {
	p.line("%s %s", kw, exprString(s.Cond))
	p.indent++
	p.block(s.Then)
	p.indent--
	switch e := s.Else.(type) {
	case *IfStmt:
		p.ifChain(e, "ElseIf")
	case *BlockStmt:
		p.line("Else")
		p.indent++
		p.block(e)
		p.indent--
	}
}

func typeString(t *TypeExpr) string {
	if t == nil {
		return ""
	}
	if t.Array {
		return t.Name + "[]"
	}
	return t.Name
}

// exprString renders an expression with explicit parentheses where the
// source had them; operator spacing is canonical.
func exprString(e Expr) string {
	switch e := e.(type) {
	case *Ident:
		return e.Value

	case *BasicLit:
		if e.Kind == StringLit {
			return quoteString(e.Value)
		}
		return e.Value

	case *Operation:
		if e.Y == nil {
			return e.Op.String() + exprString(e.X)
		}
		return exprString(e.X) + " " + e.Op.String() + " " + exprString(e.Y)

	case *CallExpr:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = exprString(a)
		}
		return exprString(e.Fun) + "(" + strings.Join(args, ", ") + ")"

	case *IndexExpr:
		return exprString(e.X) + "[" + exprString(e.Index) + "]"

	case *SelectorExpr:
		return exprString(e.X) + "." + e.Sel.Value

	case *CastExpr:
		return exprString(e.X) + " as " + typeString(e.Type)

	case *NewExpr:
		return "new " + e.Elem.Name + "[" + exprString(e.Len) + "]"

	case *ParenExpr:
		return "(" + exprString(e.X) + ")"
	}
	return "<?>"
}

// quoteString re-escapes a decoded string literal.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
