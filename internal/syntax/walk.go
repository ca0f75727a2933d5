package syntax

// Visitor is called for each node during a walk. If the result is
// false, the node's children are not visited.
type Visitor func(Node) bool

// Walk traverses an AST in depth-first order, calling v for each node.
// Nil children are skipped. The formatter and linter collaborators use
// this to traverse without knowing the full node set.
func Walk(n Node, v Visitor) {
	if n == nil || !v(n) {
		return
	}
	switch n := n.(type) {
	case *ScriptUnit:
		walkIdent(n.Name, v)
		walkIdent(n.Parent, v)
		for _, m := range n.Members {
			Walk(m, v)
		}

	case *ImportDecl:
		walkIdent(n.Name, v)

	case *VarDecl:
		Walk(n.Type, v)
		walkIdent(n.Name, v)
		walkExpr(n.Init, v)

	case *PropertyDecl:
		Walk(n.Type, v)
		walkIdent(n.Name, v)
		walkExpr(n.Init, v)
		if n.Get != nil {
			Walk(n.Get, v)
		}
		if n.Set != nil {
			Walk(n.Set, v)
		}

	case *FuncDecl:
		if n.Return != nil {
			Walk(n.Return, v)
		}
		walkIdent(n.Name, v)
		for _, p := range n.Params {
			Walk(p, v)
		}
		if n.Body != nil {
			Walk(n.Body, v)
		}

	case *ParamDecl:
		Walk(n.Type, v)
		walkIdent(n.Name, v)
		walkExpr(n.Default, v)

	case *StateDecl:
		walkIdent(n.Name, v)
		for _, f := range n.Funcs {
			Walk(f, v)
		}

	case *TypeExpr:
		// leaf

	case *Ident, *BasicLit:
		// leaf

	case *Operation:
		walkExpr(n.X, v)
		walkExpr(n.Y, v)

	case *CallExpr:
		walkExpr(n.Fun, v)
		for _, a := range n.Args {
			walkExpr(a, v)
		}

	case *IndexExpr:
		walkExpr(n.X, v)
		walkExpr(n.Index, v)

	case *SelectorExpr:
		walkExpr(n.X, v)
		walkIdent(n.Sel, v)

	case *CastExpr:
		walkExpr(n.X, v)
		Walk(n.Type, v)

	case *NewExpr:
		Walk(n.Elem, v)
		walkExpr(n.Len, v)

	case *ParenExpr:
		walkExpr(n.X, v)

	case *BlockStmt:
		for _, s := range n.Stmts {
			Walk(s, v)
		}

	case *DeclStmt:
		Walk(n.Decl, v)

	case *ExprStmt:
		walkExpr(n.X, v)

	case *AssignStmt:
		walkExpr(n.LHS, v)
		walkExpr(n.RHS, v)

	case *IfStmt:
		walkExpr(n.Cond, v)
		Walk(n.Then, v)
		if n.Else != nil {
			Walk(n.Else, v)
		}

	case *WhileStmt:
		walkExpr(n.Cond, v)
		Walk(n.Body, v)

	case *ForEachStmt:
		walkIdent(n.Var, v)
		walkExpr(n.Iter, v)
		Walk(n.Body, v)

	case *ReturnStmt:
		walkExpr(n.Result, v)
	}
}

func walkIdent(n *Ident, v Visitor) {
	if n != nil {
		Walk(n, v)
	}
}

func walkExpr(e Expr, v Visitor) {
	if e != nil {
		Walk(e, v)
	}
}
