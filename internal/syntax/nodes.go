package syntax

import "github.com/vellum-lang/vellum/internal/span"

// ----------------------------------------------------------------------------
// Interfaces
//
// There are three main classes of nodes: Expressions, Statements, and
// Members (script-level declarations). All nodes implement the Node
// interface. The node set is closed: consumers switch exhaustively.

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() span.Pos // position of the first character belonging to the node
	aNode()        // marker method to restrict implementations to this package
}

// Expr is the interface for all expression nodes.
type Expr interface {
	Node
	aExpr()
}

// Stmt is the interface for all statement nodes.
type Stmt interface {
	Node
	aStmt()
}

// Member is the interface for all script-level declaration nodes.
type Member interface {
	Node
	aMember()
}

// ----------------------------------------------------------------------------
// Base node types

// node is the base struct embedded in all AST nodes.
type node struct {
	pos span.Pos
}

func (n *node) Pos() span.Pos { return n.pos }
func (n *node) aNode()        {}

// expr is embedded in all expression nodes.
type expr struct{ node }

func (*expr) aExpr() {}

// stmt is embedded in all statement nodes.
type stmt struct{ node }

func (*stmt) aStmt() {}

// member is embedded in all member declaration nodes.
type member struct{ node }

func (*member) aMember() {}

// ----------------------------------------------------------------------------
// Script unit

// ScriptUnit is the AST of one compiled source unit. It is created by
// the Parser, enriched in place by the semantic analyzer (synthesized
// accessors for auto-properties), and read-only for the code generator.
type ScriptUnit struct {
	node
	Name    *Ident        // script name
	Parent  *Ident        // parent script name, nil for a root script
	Native  bool          // script is provided by the runtime
	Hidden  bool          // script is hidden from editor listings
	Doc     string        // documentation text, may be empty
	Imports []*ImportDecl // import declarations
	Members []Member      // properties, variables, functions, events, states
}

// ImportDecl represents an import declaration: Import Name
type ImportDecl struct {
	member
	Name *Ident
}

// VarDecl represents a variable declaration: Type Name [= Init].
// At script level it is a Member; inside a function body the parser
// wraps it in a DeclStmt.
type VarDecl struct {
	member
	Type *TypeExpr
	Name *Ident
	Init Expr // nil if none
}

// PropertyDecl represents a property declaration.
// The auto forms (Auto, AutoReadOnly) have no accessor bodies; the
// semantic analyzer synthesizes them. The full form carries explicit
// Get and/or Set function declarations.
type PropertyDecl struct {
	member
	Type     *TypeExpr
	Name     *Ident
	Init     Expr   // initial value, nil if none (auto forms only)
	Auto     bool   // declared Auto
	ReadOnly bool   // declared AutoReadOnly
	Doc      string // documentation text
	Get      *FuncDecl
	Set      *FuncDecl
}

// IsAuto reports whether the property was declared without accessor
// bodies and needs synthesized backing storage.
func (p *PropertyDecl) IsAuto() bool { return p.Auto || p.ReadOnly }

// FuncDecl represents a function or event declaration.
// Events are functions with the Event flag; native declarations have a
// nil Body.
type FuncDecl struct {
	member
	Return *TypeExpr // nil for none/void
	Name   *Ident
	Params []*ParamDecl
	Global bool // callable without an instance
	Native bool // body provided by the runtime
	Event  bool // declared with Event/EndEvent
	Doc    string
	Body   *BlockStmt // nil when Native

	// Synthesized marks accessor functions materialized by the semantic
	// analyzer for auto-properties. They never appear in source.
	Synthesized bool
}

// ParamDecl represents one function parameter.
type ParamDecl struct {
	node
	Type    *TypeExpr
	Name    *Ident
	Default Expr // default value expression, nil if none
}

// StateDecl groups function overrides that are active only while the
// owning object is in this state. At most one state is the auto state.
type StateDecl struct {
	member
	Name  *Ident
	Auto  bool // the default state on object creation
	Funcs []*FuncDecl
}

// TypeExpr is a type reference in source: a named base type and an
// optional array marker.
type TypeExpr struct {
	node
	Name  string // bool, int, float, string, or a script name
	Array bool   // true for T[]
}

// ----------------------------------------------------------------------------
// Expressions

// Ident represents an identifier reference, including the receivers
// self and parent.
type Ident struct {
	expr
	Value string
}

// BasicLit represents a literal value.
type BasicLit struct {
	expr
	Value string  // literal text (decoded for strings)
	Kind  LitKind // IntLit, FloatLit, StringLit, BoolLit, NoneLit
}

// Operation represents a unary or binary operation.
// For unary operations Y is nil.
type Operation struct {
	expr
	Op Operator
	X  Expr
	Y  Expr // nil for unary
}

// CallExpr represents a function call: Fun(Args...).
// Fun is an Ident for unqualified calls or a SelectorExpr for method
// calls on an explicit receiver.
type CallExpr struct {
	expr
	Fun  Expr
	Args []Expr
}

// IndexExpr represents an array element access: X[Index].
type IndexExpr struct {
	expr
	X     Expr
	Index Expr
}

// SelectorExpr represents a member access: X.Sel.
// Sel may be the length pseudo-member on arrays.
type SelectorExpr struct {
	expr
	X   Expr
	Sel *Ident
}

// CastExpr represents a cast: X as Type.
type CastExpr struct {
	expr
	X    Expr
	Type *TypeExpr
}

// NewExpr represents array creation: new Elem[Len].
type NewExpr struct {
	expr
	Elem *TypeExpr // element type (Array flag unset)
	Len  Expr
}

// ParenExpr represents a parenthesized expression: (X).
type ParenExpr struct {
	expr
	X Expr
}

// ----------------------------------------------------------------------------
// Statements

// BlockStmt is a sequence of statements delimited by the surrounding
// construct's keywords (there are no explicit block delimiters).
type BlockStmt struct {
	stmt
	Stmts []Stmt
}

// DeclStmt wraps a local variable declaration as a statement.
type DeclStmt struct {
	stmt
	Decl *VarDecl
}

// ExprStmt represents an expression used as a statement (a call).
type ExprStmt struct {
	stmt
	X Expr
}

// AssignStmt represents an assignment: LHS = RHS.
// Op is the combining operator for compound assignments (+=, -=, ...)
// and OpNone for plain assignment.
type AssignStmt struct {
	stmt
	Op  Operator
	LHS Expr
	RHS Expr
}

// IfStmt represents an If/ElseIf/Else/EndIf construct. ElseIf chains
// are represented as a nested IfStmt in Else.
type IfStmt struct {
	stmt
	Cond Expr
	Then *BlockStmt
	Else Stmt // nil, *IfStmt (elseif), or *BlockStmt (else)
}

// WhileStmt represents a While/EndWhile loop.
type WhileStmt struct {
	stmt
	Cond Expr
	Body *BlockStmt
}

// ForEachStmt represents iteration over an array:
// ForEach Var in Iter ... EndForEach.
type ForEachStmt struct {
	stmt
	Var  *Ident // loop variable, declared by the statement
	Iter Expr   // array expression
	Body *BlockStmt
}

// ReturnStmt represents a return statement: Return [Result].
type ReturnStmt struct {
	stmt
	Result Expr // nil for a bare return
}
