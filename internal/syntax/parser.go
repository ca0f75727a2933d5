package syntax

import (
	"github.com/vellum-lang/vellum/internal/diag"
	"github.com/vellum-lang/vellum/internal/span"
)

// Parser performs syntax analysis on one Vellum source unit.
// It is recursive-descent with one token of lookahead (two where the
// grammar needs to tell a local array declaration from an index
// expression) and precedence climbing for expressions.
type Parser struct {
	scanner *Scanner
	bag     *diag.Bag

	// Current token info (cached from scanner)
	tok  Token
	lit  string
	kind LitKind
	pos  span.Pos

	// Lookahead buffer for peek; consumed before the scanner.
	ahead []savedTok

	// aborted is set on a terminal lexical error (unterminated token);
	// the remainder of the unit is not parsed.
	aborted bool

	// commentMark tracks how many scanner comments have been consumed
	// into documentation attachments.
	commentMark int
}

type savedTok struct {
	tok  Token
	lit  string
	kind LitKind
	pos  span.Pos
}

// NewParser creates a Parser over text. Diagnostics go into bag.
func NewParser(file string, text []byte, bag *diag.Bag) *Parser {
	p := &Parser{
		scanner: NewScanner(file, text, bag),
		bag:     bag,
	}
	p.next() // prime with the first token
	return p
}

// Comments exposes the retained comment spans for the formatter.
func (p *Parser) Comments() []Comment { return p.scanner.Comments() }

// ----------------------------------------------------------------------------
// Token navigation

// next advances to the next token, resolving lexical error tokens.
func (p *Parser) next() {
	for {
		if len(p.ahead) > 0 {
			s := p.ahead[0]
			p.ahead = p.ahead[1:]
			p.tok, p.lit, p.kind, p.pos = s.tok, s.lit, s.kind, s.pos
		} else {
			p.scanner.Next()
			p.tok = p.scanner.Token()
			p.lit = p.scanner.Literal()
			p.kind = p.scanner.LitKind()
			p.pos = p.scanner.Pos()
		}

		if p.tok != _Error {
			return
		}
		// The scanner already reported the error. An unterminated
		// literal is terminal for this unit; a stray character is
		// skipped so lexing and parsing continue.
		if p.scanner.Terminal() {
			p.aborted = true
			p.tok = _EOF
			return
		}
	}
}

// peek returns the n-th upcoming token without consuming it (n >= 1).
func (p *Parser) peek(n int) Token {
	for len(p.ahead) < n {
		p.scanner.Next()
		p.ahead = append(p.ahead, savedTok{
			tok:  p.scanner.Token(),
			lit:  p.scanner.Literal(),
			kind: p.scanner.LitKind(),
			pos:  p.scanner.Pos(),
		})
	}
	return p.ahead[n-1].tok
}

// got consumes the current token if it is tok and reports whether it did.
func (p *Parser) got(tok Token) bool {
	if p.tok == tok {
		p.next()
		return true
	}
	return false
}

// want consumes the current token if it matches tok, otherwise reports
// a syntax error and resynchronizes.
func (p *Parser) want(tok Token) {
	if !p.got(tok) {
		p.syntaxError("expected " + tok.String() + ", found " + p.describe())
		p.advance()
	}
}

// wantLine consumes the end-of-line terminating a statement or member
// header. EOF is accepted so a missing final newline is not an error.
func (p *Parser) wantLine() {
	if p.tok == _EOF || p.got(_Newline) {
		return
	}
	p.syntaxError("expected end of line, found " + p.describe())
	p.advance()
}

// skipLines consumes blank lines.
func (p *Parser) skipLines() {
	for p.tok == _Newline {
		p.next()
	}
}

// describe renders the current token for error messages.
func (p *Parser) describe() string {
	switch p.tok {
	case _Name:
		return "'" + p.lit + "'"
	case _Literal:
		return "literal '" + p.lit + "'"
	default:
		return "'" + p.tok.String() + "'"
	}
}

// ----------------------------------------------------------------------------
// Error handling

// syntaxError reports a syntax error at the current position.
func (p *Parser) syntaxError(msg string) {
	p.syntaxErrorAt(p.pos, msg)
}

func (p *Parser) syntaxErrorAt(pos span.Pos, msg string) {
	if p.aborted {
		return
	}
	p.bag.Add(diag.Errorf(diag.SyntaxError, pos, "%s", msg))
}

// advance performs panic-mode recovery: it skips tokens until a
// statement or member boundary so one error does not poison the rest
// of the unit.
func (p *Parser) advance() {
	for p.tok != _EOF {
		switch p.tok {
		case _Newline:
			p.next() // consume the terminator itself
			return
		case _EndFunction, _EndEvent, _EndState, _EndProperty,
			_EndIf, _EndWhile, _EndForEach, _Else, _ElseIf,
			_Function, _Event, _State, _Property, _Import,
			_If, _While, _ForEach, _Return:
			return
		}
		p.next()
	}
}

// atBoundary reports whether the current token starts or ends a member
// or statement construct; recovery loops never consume past these.
func (p *Parser) atBoundary() bool {
	switch p.tok {
	case _EndFunction, _EndEvent, _EndState, _EndProperty,
		_EndIf, _EndWhile, _EndForEach, _Else, _ElseIf,
		_Function, _Event, _State, _Property, _Import,
		_If, _While, _ForEach, _Return:
		return true
	}
	return false
}

// ----------------------------------------------------------------------------
// Entry point

// Parse parses a complete source unit. It always returns a non-nil
// ScriptUnit; syntax problems are reported to the diagnostic bag.
func (p *Parser) Parse() *ScriptUnit {
	unit := &ScriptUnit{}
	unit.pos = p.pos

	p.skipLines()
	p.parseHeader(unit)
	unit.Doc = p.takeDoc()

	for !p.aborted && p.tok != _EOF {
		p.skipLines()
		if p.tok == _EOF {
			break
		}
		before := p.pos
		if m := p.member(); m == nil && p.pos == before {
			// Recovery made no progress; drop the token to guarantee
			// forward motion.
			p.next()
		} else if m != nil {
			unit.Members = append(unit.Members, m)
			if imp, ok := m.(*ImportDecl); ok {
				// Imports are listed separately as well; order is kept.
				unit.Imports = append(unit.Imports, imp)
			}
		}
	}
	return unit
}

// parseHeader parses: ScriptName Name [extends Name] [Native] [Hidden]
func (p *Parser) parseHeader(unit *ScriptUnit) {
	p.want(_ScriptName)
	unit.Name = p.name()
	if p.got(_Extends) {
		unit.Parent = p.name()
	}
	for {
		switch {
		case p.got(_Native):
			unit.Native = true
		case p.got(_Hidden):
			unit.Hidden = true
		default:
			p.wantLine()
			return
		}
	}
}

// name parses an identifier.
func (p *Parser) name() *Ident {
	if p.tok == _Name {
		n := &Ident{Value: p.lit}
		n.pos = p.pos
		p.next()
		return n
	}
	p.syntaxError("expected identifier, found " + p.describe())
	n := &Ident{Value: "_"}
	n.pos = p.pos
	p.advance()
	return n
}

// takeDoc returns the text of a documentation block scanned since the
// last call, if any. Docs follow the declaration header line.
func (p *Parser) takeDoc() string {
	comments := p.scanner.Comments()
	doc := ""
	for i := p.commentMark; i < len(comments); i++ {
		if comments[i].Kind == DocComment {
			doc = comments[i].Text
		}
	}
	p.commentMark = len(comments)
	return doc
}

// ----------------------------------------------------------------------------
// Members

// startsType reports whether the current token can begin a type
// reference.
func (p *Parser) startsType() bool {
	switch p.tok {
	case _Bool, _Int, _Float, _String, _Name:
		return true
	}
	return false
}

// member parses one script-level member declaration.
func (p *Parser) member() Member {
	switch p.tok {
	case _Import:
		return p.importDecl()

	case _Auto, _State:
		return p.stateDecl()

	case _Event:
		return p.funcDecl(nil, true)

	case _Function:
		return p.funcDecl(nil, false)

	case _Bool, _Int, _Float, _String:
		return p.typedMember()

	case _Name:
		// A member starting with an identifier must be a typed
		// declaration (variable, property, or function).
		return p.typedMember()

	default:
		p.syntaxError("expected member declaration, found " + p.describe())
		p.advance()
		return nil
	}
}

// importDecl parses: Import Name
func (p *Parser) importDecl() *ImportDecl {
	d := &ImportDecl{}
	d.pos = p.pos
	p.want(_Import)
	d.Name = p.name()
	p.wantLine()
	return d
}

// typedMember parses a member that begins with a type reference:
// a variable, a property, or a function with a return type.
func (p *Parser) typedMember() Member {
	typ := p.typeExpr()
	switch p.tok {
	case _Property:
		return p.propertyDecl(typ)
	case _Function:
		return p.funcDecl(typ, false)
	case _Name:
		return p.varDecl(typ)
	default:
		p.syntaxError("expected property, function, or variable name, found " + p.describe())
		p.advance()
		return nil
	}
}

// typeExpr parses: (bool|int|float|string|Name) [ "[" "]" ]
func (p *Parser) typeExpr() *TypeExpr {
	t := &TypeExpr{}
	t.pos = p.pos
	switch p.tok {
	case _Bool, _Int, _Float, _String:
		t.Name = p.tok.String()
		p.next()
	case _Name:
		t.Name = p.lit
		p.next()
	default:
		p.syntaxError("expected type, found " + p.describe())
		t.Name = "_"
		p.advance()
		return t
	}
	if p.tok == _Lbrack && p.peek(1) == _Rbrack {
		p.next()
		p.next()
		t.Array = true
	}
	return t
}

// varDecl parses: Type Name [= Expr]
func (p *Parser) varDecl(typ *TypeExpr) *VarDecl {
	d := &VarDecl{Type: typ}
	d.pos = typ.Pos()
	d.Name = p.name()
	if p.got(_Assign) {
		d.Init = p.expression()
	}
	p.wantLine()
	return d
}

// propertyDecl parses the auto and full property forms.
func (p *Parser) propertyDecl(typ *TypeExpr) *PropertyDecl {
	d := &PropertyDecl{Type: typ}
	d.pos = typ.Pos()
	p.want(_Property)
	d.Name = p.name()

	if p.got(_Assign) {
		d.Init = p.expression()
	}
	switch {
	case p.got(_Auto):
		d.Auto = true
	case p.got(_AutoReadOnly):
		d.ReadOnly = true
	}
	p.wantLine()
	d.Doc = p.takeDoc()

	if d.IsAuto() {
		return d
	}
	if d.Init != nil {
		p.syntaxErrorAt(d.Pos(), "only auto properties may declare an initial value")
	}

	// Full form: explicit accessor bodies until EndProperty.
	for !p.aborted && p.tok != _EndProperty && p.tok != _EOF {
		p.skipLines()
		if p.tok == _EndProperty || p.tok == _EOF {
			break
		}
		var ret *TypeExpr
		if p.tok != _Function {
			ret = p.typeExpr()
		}
		fn := p.funcDecl(ret, false)
		if fn == nil {
			continue
		}
		switch lowerIdent(fn.Name.Value) {
		case "get":
			d.Get = fn
		case "set":
			d.Set = fn
		default:
			p.syntaxErrorAt(fn.Pos(), "property accessor must be named Get or Set")
		}
	}
	p.want(_EndProperty)
	p.wantLine()
	return d
}

// funcDecl parses a function or event declaration. ret is the already
// parsed return type (nil for none); event selects Event/EndEvent.
func (p *Parser) funcDecl(ret *TypeExpr, event bool) *FuncDecl {
	d := &FuncDecl{Return: ret, Event: event}
	if ret != nil {
		d.pos = ret.Pos()
	} else {
		d.pos = p.pos
	}

	if event {
		p.want(_Event)
	} else {
		p.want(_Function)
	}
	d.Name = p.name()

	p.want(_Lparen)
	for p.tok != _Rparen && p.tok != _EOF && p.tok != _Newline && !p.atBoundary() {
		if len(d.Params) > 0 {
			p.want(_Comma)
		}
		d.Params = append(d.Params, p.paramDecl())
	}
	p.want(_Rparen)

	for {
		switch {
		case p.got(_Global):
			d.Global = true
		case p.got(_Native):
			d.Native = true
		default:
			p.wantLine()
			d.Doc = p.takeDoc()
			if d.Native {
				return d
			}
			end := _EndFunction
			if event {
				end = _EndEvent
			}
			d.Body = p.blockStmt(end)
			p.want(end)
			p.wantLine()
			return d
		}
	}
}

// paramDecl parses: Type Name [= Expr]
func (p *Parser) paramDecl() *ParamDecl {
	d := &ParamDecl{Type: p.typeExpr()}
	d.pos = d.Type.Pos()
	d.Name = p.name()
	if p.got(_Assign) {
		d.Default = p.expression()
	}
	return d
}

// stateDecl parses: [Auto] State Name ... EndState
func (p *Parser) stateDecl() *StateDecl {
	d := &StateDecl{}
	d.pos = p.pos
	d.Auto = p.got(_Auto)
	p.want(_State)
	d.Name = p.name()
	p.wantLine()

	for !p.aborted && p.tok != _EndState && p.tok != _EOF {
		p.skipLines()
		if p.tok == _EndState || p.tok == _EOF {
			break
		}
		var fn *FuncDecl
		switch {
		case p.tok == _Event:
			fn = p.funcDecl(nil, true)
		case p.tok == _Function:
			fn = p.funcDecl(nil, false)
		case p.startsType():
			ret := p.typeExpr()
			if p.tok == _Function {
				fn = p.funcDecl(ret, false)
			} else {
				p.syntaxError("only functions and events may appear in a state")
				p.advance()
			}
		default:
			p.syntaxError("only functions and events may appear in a state")
			p.advance()
		}
		if fn != nil {
			d.Funcs = append(d.Funcs, fn)
		}
	}
	p.want(_EndState)
	p.wantLine()
	return d
}

// ----------------------------------------------------------------------------
// Statements

// blockStmt parses statements until one of the given terminators.
// The terminator token itself is not consumed.
func (p *Parser) blockStmt(terms ...Token) *BlockStmt {
	b := &BlockStmt{}
	b.pos = p.pos
	stop := map[Token]bool{_EOF: true}
	for _, t := range terms {
		stop[t] = true
	}
	for !p.aborted && !stop[p.tok] {
		if p.tok == _Newline {
			p.next()
			continue
		}
		before := p.pos
		s := p.stmt()
		if s != nil {
			b.Stmts = append(b.Stmts, s)
		}
		if p.pos == before && !stop[p.tok] {
			// Recovery stalled on a token the block does not own
			// (e.g. a mismatched End keyword); drop it.
			p.next()
		}
	}
	return b
}

// stmt parses one statement.
func (p *Parser) stmt() Stmt {
	switch p.tok {
	case _If:
		return p.ifStmt()
	case _While:
		return p.whileStmt()
	case _ForEach:
		return p.forEachStmt()
	case _Return:
		return p.returnStmt()
	case _Bool, _Int, _Float, _String:
		typ := p.typeExpr()
		d := p.varDecl(typ)
		s := &DeclStmt{Decl: d}
		s.pos = d.Pos()
		return s
	case _Name:
		// Distinguish a local declaration (Name Name, Name[] Name)
		// from an expression statement or assignment.
		if p.peek(1) == _Name ||
			(p.peek(1) == _Lbrack && p.peek(2) == _Rbrack) {
			typ := p.typeExpr()
			d := p.varDecl(typ)
			s := &DeclStmt{Decl: d}
			s.pos = d.Pos()
			return s
		}
		return p.simpleStmt()
	default:
		return p.simpleStmt()
	}
}

// simpleStmt parses an assignment or expression statement.
func (p *Parser) simpleStmt() Stmt {
	pos := p.pos
	x := p.expression()

	if op, ok := assignOps[p.tok]; ok {
		p.next()
		rhs := p.expression()
		if !assignable(x) {
			p.syntaxErrorAt(pos, "left side of assignment must be a variable, property, or array element")
		}
		s := &AssignStmt{Op: op, LHS: x, RHS: rhs}
		s.pos = pos
		p.wantLine()
		return s
	}

	s := &ExprStmt{X: x}
	s.pos = pos
	p.wantLine()
	return s
}

// assignable reports whether an expression may appear on the left side
// of an assignment.
func assignable(x Expr) bool {
	switch x.(type) {
	case *Ident, *SelectorExpr, *IndexExpr:
		return true
	}
	return false
}

// ifStmt parses: If Cond ... [ElseIf ...] [Else ...] EndIf
func (p *Parser) ifStmt() *IfStmt {
	s := &IfStmt{}
	s.pos = p.pos
	p.want(_If)
	s.Cond = p.expression()
	p.wantLine()
	s.Then = p.blockStmt(_ElseIf, _Else, _EndIf)

	switch p.tok {
	case _ElseIf:
		// Rewrite the chain as a nested if in the else branch.
		nested := &IfStmt{}
		nested.pos = p.pos
		p.next()
		nested.Cond = p.expression()
		p.wantLine()
		nested.Then = p.blockStmt(_ElseIf, _Else, _EndIf)
		nested.Else = p.elseTail()
		s.Else = nested
		return s
	case _Else:
		s.Else = p.elseBlock()
	}
	p.want(_EndIf)
	p.wantLine()
	return s
}

// elseTail parses the continuation of an elseif chain.
func (p *Parser) elseTail() Stmt {
	switch p.tok {
	case _ElseIf:
		nested := &IfStmt{}
		nested.pos = p.pos
		p.next()
		nested.Cond = p.expression()
		p.wantLine()
		nested.Then = p.blockStmt(_ElseIf, _Else, _EndIf)
		nested.Else = p.elseTail()
		return nested
	case _Else:
		b := p.elseBlock()
		p.want(_EndIf)
		p.wantLine()
		return b
	default:
		p.want(_EndIf)
		p.wantLine()
		return nil
	}
}

// elseBlock parses: Else ... (up to EndIf, which the caller consumes)
func (p *Parser) elseBlock() *BlockStmt {
	p.want(_Else)
	p.wantLine()
	return p.blockStmt(_EndIf)
}

// whileStmt parses: While Cond ... EndWhile
func (p *Parser) whileStmt() *WhileStmt {
	s := &WhileStmt{}
	s.pos = p.pos
	p.want(_While)
	s.Cond = p.expression()
	p.wantLine()
	s.Body = p.blockStmt(_EndWhile)
	p.want(_EndWhile)
	p.wantLine()
	return s
}

// forEachStmt parses: ForEach Name in Expr ... EndForEach
func (p *Parser) forEachStmt() *ForEachStmt {
	s := &ForEachStmt{}
	s.pos = p.pos
	p.want(_ForEach)
	s.Var = p.name()
	p.want(_In)
	s.Iter = p.expression()
	p.wantLine()
	s.Body = p.blockStmt(_EndForEach)
	p.want(_EndForEach)
	p.wantLine()
	return s
}

// returnStmt parses: Return [Expr]
func (p *Parser) returnStmt() *ReturnStmt {
	s := &ReturnStmt{}
	s.pos = p.pos
	p.want(_Return)
	if p.tok != _Newline && p.tok != _EOF {
		s.Result = p.expression()
	}
	p.wantLine()
	return s
}

// ----------------------------------------------------------------------------
// Expressions

// expression parses an expression with precedence climbing.
func (p *Parser) expression() Expr {
	return p.binaryExpr(precLowest + 1)
}

// binaryExpr parses binary operations at or above minPrec.
func (p *Parser) binaryExpr(minPrec int) Expr {
	x := p.unaryExpr()
	for {
		info, ok := binaryOps[p.tok]
		if !ok || info.prec < minPrec {
			return x
		}
		pos := p.pos
		p.next()
		y := p.binaryExpr(info.prec + 1)
		op := &Operation{Op: info.op, X: x, Y: y}
		op.pos = pos
		x = op
	}
}

// unaryExpr parses: [-|!] unaryExpr | castExpr
func (p *Parser) unaryExpr() Expr {
	switch p.tok {
	case _Sub:
		pos := p.pos
		p.next()
		op := &Operation{Op: OpNeg, X: p.unaryExpr()}
		op.pos = pos
		return op
	case _Not:
		pos := p.pos
		p.next()
		op := &Operation{Op: OpNot, X: p.unaryExpr()}
		op.pos = pos
		return op
	}
	return p.castExpr()
}

// castExpr parses: postfixExpr { as Type }
func (p *Parser) castExpr() Expr {
	x := p.postfixExpr()
	for p.tok == _As {
		pos := p.pos
		p.next()
		c := &CastExpr{X: x, Type: p.typeExpr()}
		c.pos = pos
		x = c
	}
	return x
}

// postfixExpr parses a primary expression followed by calls, member
// accesses, and index operations.
func (p *Parser) postfixExpr() Expr {
	x := p.primaryExpr()
	for {
		switch p.tok {
		case _Dot:
			pos := p.pos
			p.next()
			sel := &SelectorExpr{X: x}
			sel.pos = pos
			if p.tok == _Length {
				// The array length pseudo-member is a keyword.
				n := &Ident{Value: "length"}
				n.pos = p.pos
				p.next()
				sel.Sel = n
			} else {
				sel.Sel = p.name()
			}
			x = sel

		case _Lparen:
			pos := p.pos
			p.next()
			call := &CallExpr{Fun: x}
			call.pos = pos
			for p.tok != _Rparen && p.tok != _EOF && p.tok != _Newline && !p.atBoundary() {
				if len(call.Args) > 0 {
					p.want(_Comma)
				}
				call.Args = append(call.Args, p.expression())
			}
			p.want(_Rparen)
			x = call

		case _Lbrack:
			pos := p.pos
			p.next()
			idx := &IndexExpr{X: x, Index: p.expression()}
			idx.pos = pos
			p.want(_Rbrack)
			x = idx

		default:
			return x
		}
	}
}

// primaryExpr parses literals, identifiers, receivers, parenthesized
// expressions, and array creation.
func (p *Parser) primaryExpr() Expr {
	pos := p.pos
	switch p.tok {
	case _Literal:
		lit := &BasicLit{Value: p.lit, Kind: p.kind}
		lit.pos = pos
		p.next()
		return lit

	case _True, _False:
		lit := &BasicLit{Value: p.tok.String(), Kind: BoolLit}
		lit.pos = pos
		p.next()
		return lit

	case _None:
		lit := &BasicLit{Value: "none", Kind: NoneLit}
		lit.pos = pos
		p.next()
		return lit

	case _Name:
		return p.name()

	case _Self:
		n := &Ident{Value: "self"}
		n.pos = pos
		p.next()
		return n

	case _Parent:
		n := &Ident{Value: "parent"}
		n.pos = pos
		p.next()
		return n

	case _Lparen:
		p.next()
		inner := p.expression()
		p.want(_Rparen)
		x := &ParenExpr{X: inner}
		x.pos = pos
		return x

	case _New:
		p.next()
		n := &NewExpr{}
		n.pos = pos
		n.Elem = &TypeExpr{}
		n.Elem.pos = p.pos
		switch p.tok {
		case _Bool, _Int, _Float, _String:
			n.Elem.Name = p.tok.String()
			p.next()
		case _Name:
			n.Elem.Name = p.lit
			p.next()
		default:
			p.syntaxError("expected element type after new, found " + p.describe())
		}
		p.want(_Lbrack)
		n.Len = p.expression()
		p.want(_Rbrack)
		return n

	default:
		p.syntaxError("expected expression, found " + p.describe())
		bad := &BasicLit{Value: "none", Kind: NoneLit}
		bad.pos = pos
		p.advance()
		return bad
	}
}
