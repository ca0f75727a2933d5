// Package sema implements semantic resolution for Vellum script
// units: symbol tables, inheritance linking, type checking, and
// materialization of implicit constructs. A batch of units is
// resolved together because member lookup needs the ancestor chain.
package sema

import (
	"github.com/vellum-lang/vellum/internal/diag"
	"github.com/vellum-lang/vellum/internal/syntax"
	"github.com/vellum-lang/vellum/internal/types"
)

// Info holds the side tables produced by resolution. The code
// generator reads these instead of re-deriving types.
type Info struct {
	// Types maps expressions to their resolved types.
	Types map[syntax.Expr]types.Type

	// Uses maps referencing identifiers to the objects they denote.
	Uses map[*syntax.Ident]types.Object

	// Callees maps call expressions to the resolved function.
	Callees map[*syntax.CallExpr]*types.FuncObj

	// Statics maps call expressions that invoke a global function
	// through a script name (Script.Fn()) to that script's name.
	Statics map[*syntax.CallExpr]string
}

func newInfo() *Info {
	return &Info{
		Types:   make(map[syntax.Expr]types.Type),
		Uses:    make(map[*syntax.Ident]types.Object),
		Callees: make(map[*syntax.CallExpr]*types.FuncObj),
		Statics: make(map[*syntax.CallExpr]string),
	}
}

// TypeOf returns the resolved type of an expression, or nil.
func (info *Info) TypeOf(e syntax.Expr) types.Type {
	return info.Types[e]
}

// ObjectOf returns the object an identifier denotes, or nil.
func (info *Info) ObjectOf(n *syntax.Ident) types.Object {
	return info.Uses[n]
}

// Script is one resolved unit: its AST, its script type, its published
// symbol table, and its states. Once Resolve returns, a Script with
// Failed == false is immutable and safe for concurrent reads.
type Script struct {
	Unit  *syntax.ScriptUnit
	Name  string // declared name, original casing
	File  string
	Type  *types.Script
	Scope *types.Scope // script-level symbol table

	States    []*types.StateObj
	AutoState *types.StateObj // nil if no auto state declared

	// Failed is set when the script has at least one error-severity
	// diagnostic. The code generator refuses failed scripts.
	Failed bool

	// severed marks scripts whose inheritance link was cut by cycle
	// detection. Member lookup on them would be misleading, so body
	// and state checks skip them.
	severed bool
}

// LookupMember searches the script's own table and then the ancestor
// chain, nearest ancestor first. The first match wins, giving derived
// scripts shadowing semantics.
func (s *Script) LookupMember(name string) types.Object {
	obj, _ := s.Scope.LookupParent(name)
	return obj
}

// State returns the declared state with the given case-insensitive
// name, or nil.
func (s *Script) State(name string) *types.StateObj {
	key := types.Fold(name)
	for _, st := range s.States {
		if types.Fold(st.Name()) == key {
			return st
		}
	}
	return nil
}

// Result is the output of Resolve.
type Result struct {
	// Scripts is keyed by folded script name.
	Scripts map[string]*Script

	// Order preserves the input order of successfully collected units.
	Order []*Script

	Info *Info
}

// ScriptFor returns the resolved script declaring the given script
// type, or nil.
func (r *Result) ScriptFor(t *types.Script) *Script {
	return r.Scripts[types.Fold(t.Name())]
}

// Resolve performs semantic analysis over a batch of parsed units.
// The batch must contain every ancestor of every unit in it.
// Diagnostics are accumulated in bag; resolution of one script's
// malformed member does not block its siblings.
func Resolve(units []*syntax.ScriptUnit, bag *diag.Bag) *Result {
	c := &checker{
		bag:    bag,
		result: &Result{Scripts: make(map[string]*Script), Info: newInfo()},
	}

	c.collectScripts(units)
	c.linkAncestors()
	c.collectMembers()
	c.resolveSignatures()
	c.materializeProperties()
	c.checkBodies()
	c.checkStates()

	return c.result
}
