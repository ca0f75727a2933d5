package syntax

// NewAutoAccessors builds the synthesized getter and setter bodies for
// an auto property: a getter returning the hidden backing variable and
// a setter assigning it. The semantic analyzer attaches the results to
// the property declaration so later stages never special-case auto
// properties. set is nil for read-only properties.
func NewAutoAccessors(p *PropertyDecl, backing string) (get, set *FuncDecl) {
	pos := p.Pos()

	retType := &TypeExpr{Name: p.Type.Name, Array: p.Type.Array}
	retType.pos = pos

	backingRef := func() *Ident {
		n := &Ident{Value: backing}
		n.pos = pos
		return n
	}

	getName := &Ident{Value: "Get"}
	getName.pos = pos
	ret := &ReturnStmt{Result: backingRef()}
	ret.pos = pos
	getBody := &BlockStmt{Stmts: []Stmt{ret}}
	getBody.pos = pos
	get = &FuncDecl{
		Return:      retType,
		Name:        getName,
		Body:        getBody,
		Synthesized: true,
	}
	get.pos = pos

	if p.ReadOnly {
		return get, nil
	}

	paramType := &TypeExpr{Name: p.Type.Name, Array: p.Type.Array}
	paramType.pos = pos
	paramName := &Ident{Value: "value"}
	paramName.pos = pos
	param := &ParamDecl{Type: paramType, Name: paramName}
	param.pos = pos

	valueRef := &Ident{Value: "value"}
	valueRef.pos = pos
	assign := &AssignStmt{Op: OpNone, LHS: backingRef(), RHS: valueRef}
	assign.pos = pos
	setBody := &BlockStmt{Stmts: []Stmt{assign}}
	setBody.pos = pos

	setName := &Ident{Value: "Set"}
	setName.pos = pos
	set = &FuncDecl{
		Name:        setName,
		Params:      []*ParamDecl{param},
		Body:        setBody,
		Synthesized: true,
	}
	set.pos = pos
	return get, set
}
