package syntax

import (
	"testing"

	"github.com/vellum-lang/vellum/internal/diag"
)

func parseSrc(t *testing.T, src string) (*ScriptUnit, *diag.Bag) {
	t.Helper()
	bag := new(diag.Bag)
	unit := NewParser("test.vel", []byte(src), bag).Parse()
	return unit, bag
}

func parseClean(t *testing.T, src string) *ScriptUnit {
	t.Helper()
	unit, bag := parseSrc(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	return unit
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		sname  string
		parent string
		native bool
		hidden bool
	}{
		{"plain", "ScriptName Door", "Door", "", false, false},
		{"extends", "ScriptName Door extends ObjectBase", "Door", "ObjectBase", false, false},
		{"native", "scriptname Form Native", "Form", "", true, false},
		{"both_flags", "ScriptName Form Native Hidden", "Form", "", true, true},
		{"case_insensitive", "SCRIPTNAME Door EXTENDS base", "Door", "base", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := parseClean(t, tt.src+"\n")
			if unit.Name.Value != tt.sname {
				t.Errorf("name = %q, want %q", unit.Name.Value, tt.sname)
			}
			parent := ""
			if unit.Parent != nil {
				parent = unit.Parent.Value
			}
			if parent != tt.parent {
				t.Errorf("parent = %q, want %q", parent, tt.parent)
			}
			if unit.Native != tt.native || unit.Hidden != tt.hidden {
				t.Errorf("flags = %v/%v, want %v/%v", unit.Native, unit.Hidden, tt.native, tt.hidden)
			}
		})
	}
}

func TestParseMembers(t *testing.T) {
	src := `ScriptName Door extends ObjectBase
{A sliding door.}

import Utility

int count = 0
float Property Speed = 1.5 Auto
int Property Uses = 10 AutoReadOnly

int Function Open(ObjectBase akActivator, bool force = false)
	count += 1
	Return count
EndFunction

Event OnActivate(ObjectBase akSource)
	Open(akSource)
EndEvent

Function Describe() Native

Auto State Closed
	Int Function Open(ObjectBase akActivator, bool force = false)
		Return 0
	EndFunction
EndState
`
	unit := parseClean(t, src)

	if unit.Doc != "A sliding door." {
		t.Errorf("doc = %q", unit.Doc)
	}
	if len(unit.Imports) != 1 || unit.Imports[0].Name.Value != "Utility" {
		t.Fatalf("imports = %v", unit.Imports)
	}
	if len(unit.Members) != 8 {
		t.Fatalf("got %d members, want 8", len(unit.Members))
	}

	v, ok := unit.Members[1].(*VarDecl)
	if !ok || v.Name.Value != "count" || v.Init == nil {
		t.Errorf("member 1 = %#v", unit.Members[1])
	}

	p, ok := unit.Members[2].(*PropertyDecl)
	if !ok || p.Name.Value != "Speed" || !p.Auto || p.ReadOnly || !p.IsAuto() {
		t.Errorf("member 2 = %#v", unit.Members[2])
	}
	ro, ok := unit.Members[3].(*PropertyDecl)
	if !ok || !ro.ReadOnly || ro.Init == nil {
		t.Errorf("member 3 = %#v", unit.Members[3])
	}

	fn, ok := unit.Members[4].(*FuncDecl)
	if !ok || fn.Name.Value != "Open" || fn.Event || fn.Return == nil {
		t.Fatalf("member 4 = %#v", unit.Members[4])
	}
	if len(fn.Params) != 2 || fn.Params[1].Default == nil {
		t.Errorf("params = %#v", fn.Params)
	}

	ev, ok := unit.Members[5].(*FuncDecl)
	if !ok || !ev.Event || ev.Name.Value != "OnActivate" {
		t.Errorf("member 5 = %#v", unit.Members[5])
	}

	nat, ok := unit.Members[6].(*FuncDecl)
	if !ok || !nat.Native || nat.Body != nil {
		t.Errorf("member 6 = %#v", unit.Members[6])
	}

	st, ok := unit.Members[7].(*StateDecl)
	if !ok || st.Name.Value != "Closed" || !st.Auto {
		t.Fatalf("member 7 = %#v", unit.Members[7])
	}
	if len(st.Funcs) != 1 || st.Funcs[0].Name.Value != "Open" {
		t.Errorf("state funcs = %#v", st.Funcs)
	}
}

func TestParseState(t *testing.T) {
	src := `ScriptName Door
Function Open()
EndFunction
Auto State Closed
	Function Open()
	EndFunction
EndState
State Open
EndState
`
	unit := parseClean(t, src)
	st, ok := unit.Members[1].(*StateDecl)
	if !ok || st.Name.Value != "Closed" || !st.Auto {
		t.Fatalf("member 1 = %#v", unit.Members[1])
	}
	if len(st.Funcs) != 1 || st.Funcs[0].Name.Value != "Open" {
		t.Errorf("state funcs = %#v", st.Funcs)
	}
	st2, ok := unit.Members[2].(*StateDecl)
	if !ok || st2.Auto || len(st2.Funcs) != 0 {
		t.Errorf("member 2 = %#v", unit.Members[2])
	}
}

func TestParseExplicitProperty(t *testing.T) {
	src := `ScriptName Door
int hidden_count

int Property Count
	int Function Get()
		Return hidden_count
	EndFunction
	Function Set(int value)
		hidden_count = value
	EndFunction
EndProperty
`
	unit := parseClean(t, src)
	p, ok := unit.Members[1].(*PropertyDecl)
	if !ok {
		t.Fatalf("member 1 = %#v", unit.Members[1])
	}
	if p.IsAuto() {
		t.Error("explicit property reported auto")
	}
	if p.Get == nil || p.Set == nil {
		t.Fatalf("accessors = %v/%v", p.Get, p.Set)
	}
	if len(p.Set.Params) != 1 || p.Set.Params[0].Name.Value != "value" {
		t.Errorf("setter params = %#v", p.Set.Params)
	}
}

func TestParseExpressions(t *testing.T) {
	// Shape checks: operator precedence and postfix chains.
	src := `ScriptName T
Function F(int a, int b)
	int x = a + b * 2
	bool y = a < b && b < 10 || false
	float z = (a + b) as float
	int n = arr[i].length
	obj.Prop = new int[8]
	Parent.F(1, 2)
EndFunction
`
	unit := parseClean(t, src)
	fn := unit.Members[0].(*FuncDecl)
	stmts := fn.Body.Stmts

	mul := stmts[0].(*DeclStmt).Decl.Init.(*Operation)
	if mul.Op != OpAdd {
		t.Errorf("x: top op = %s, want +", mul.Op)
	}
	if inner, ok := mul.Y.(*Operation); !ok || inner.Op != OpMul {
		t.Errorf("x: rhs = %#v, want *", mul.Y)
	}

	or := stmts[1].(*DeclStmt).Decl.Init.(*Operation)
	if or.Op != OpOrOr {
		t.Errorf("y: top op = %s, want ||", or.Op)
	}
	if and, ok := or.X.(*Operation); !ok || and.Op != OpAndAnd {
		t.Errorf("y: lhs = %#v, want &&", or.X)
	}

	if _, ok := stmts[2].(*DeclStmt).Decl.Init.(*CastExpr); !ok {
		t.Errorf("z: want cast, got %#v", stmts[2].(*DeclStmt).Decl.Init)
	}

	sel := stmts[3].(*DeclStmt).Decl.Init.(*SelectorExpr)
	if sel.Sel.Value != "length" {
		t.Errorf("n: selector = %q", sel.Sel.Value)
	}
	if _, ok := sel.X.(*IndexExpr); !ok {
		t.Errorf("n: base = %#v, want index", sel.X)
	}

	asn := stmts[4].(*AssignStmt)
	if _, ok := asn.LHS.(*SelectorExpr); !ok {
		t.Errorf("assign lhs = %#v", asn.LHS)
	}
	if _, ok := asn.RHS.(*NewExpr); !ok {
		t.Errorf("assign rhs = %#v", asn.RHS)
	}

	call := stmts[5].(*ExprStmt).X.(*CallExpr)
	recv := call.Fun.(*SelectorExpr).X.(*Ident)
	if recv.Value != "parent" {
		t.Errorf("receiver = %q", recv.Value)
	}
}

func TestParseControlFlow(t *testing.T) {
	src := `ScriptName T
Function F(int a)
	If a > 0
		a = 1
	ElseIf a < 0
		a = 2
	Else
		a = 3
	EndIf
	While a > 0
		a -= 1
	EndWhile
	ForEach item in items
		Use(item)
	EndForEach
EndFunction
`
	unit := parseClean(t, src)
	fn := unit.Members[0].(*FuncDecl)
	stmts := fn.Body.Stmts

	ifs := stmts[0].(*IfStmt)
	elseif, ok := ifs.Else.(*IfStmt)
	if !ok {
		t.Fatalf("elseif chain = %#v", ifs.Else)
	}
	if _, ok := elseif.Else.(*BlockStmt); !ok {
		t.Errorf("final else = %#v", elseif.Else)
	}

	ws := stmts[1].(*WhileStmt)
	if len(ws.Body.Stmts) != 1 {
		t.Errorf("while body = %#v", ws.Body.Stmts)
	}
	if asn, ok := ws.Body.Stmts[0].(*AssignStmt); !ok || asn.Op != OpSub {
		t.Errorf("compound assign = %#v", ws.Body.Stmts[0])
	}

	fe := stmts[2].(*ForEachStmt)
	if fe.Var.Value != "item" {
		t.Errorf("loop var = %q", fe.Var.Value)
	}
}

// One syntax error must not abort the file: later members still parse
// and every malformed construct gets its own diagnostic.
func TestParseRecovery(t *testing.T) {
	src := `ScriptName T
Function F(
	x = 1
EndFunction
Function G()
	Return 1 +
EndFunction
Function H()
EndFunction
`
	unit, bag := parseSrc(t, src)
	if !bag.HasErrors() {
		t.Fatal("expected syntax errors")
	}
	for _, d := range bag.All() {
		if d.Severity == diag.Error && d.Kind != diag.SyntaxError {
			t.Errorf("unexpected kind %s", d.Kind)
		}
	}
	var names []string
	for _, m := range unit.Members {
		if fn, ok := m.(*FuncDecl); ok {
			names = append(names, fn.Name.Value)
		}
	}
	found := false
	for _, n := range names {
		if n == "H" {
			found = true
		}
	}
	if !found {
		t.Errorf("recovery lost function H; parsed %v", names)
	}
}

// An unterminated string is terminal for the unit: parsing stops with
// a single lexical diagnostic instead of cascading syntax errors.
func TestParseTerminalLexError(t *testing.T) {
	src := "ScriptName T\nFunction F()\n\tstring s = \"oops\nEndFunction\n"
	_, bag := parseSrc(t, src)
	if got := bag.Errors(); got != 1 {
		t.Fatalf("got %d errors, want 1: %v", got, bag.All())
	}
	if bag.All()[0].Kind != diag.UnterminatedString {
		t.Errorf("kind = %s", bag.All()[0].Kind)
	}
}

// Printing a parsed unit and re-parsing the output must yield the
// same canonical form.
func TestPrintReparse(t *testing.T) {
	src := `ScriptName Door extends ObjectBase
int count = 0
float Property Speed = 1.5 Auto
Function Open(int force = 0)
	If force > 0 && count < 10
		count = count + 1
	Else
		count = 0
	EndIf
	While count > 0
		count -= 1
	EndWhile
EndFunction
Auto State Closed
	Function Open(int force = 0)
	EndFunction
EndState
`
	unit := parseClean(t, src)
	printed := String(unit)

	again := parseClean(t, printed)
	reprinted := String(again)
	if printed != reprinted {
		t.Errorf("print not idempotent:\nfirst:\n%s\nsecond:\n%s", printed, reprinted)
	}
}
