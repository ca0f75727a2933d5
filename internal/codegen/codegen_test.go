package codegen

import (
	"fmt"
	"testing"

	"github.com/vellum-lang/vellum/internal/bytecode"
	"github.com/vellum-lang/vellum/internal/diag"
	"github.com/vellum-lang/vellum/internal/sema"
	"github.com/vellum-lang/vellum/internal/syntax"
)

// gen compiles a batch of sources and lowers every script, failing
// the test on any diagnostic. Modules come back in input order.
func gen(t *testing.T, srcs ...string) []*bytecode.Module {
	t.Helper()
	bag := new(diag.Bag)
	units := make([]*syntax.ScriptUnit, 0, len(srcs))
	for i, src := range srcs {
		file := fmt.Sprintf("s%d.vlm", i)
		units = append(units, syntax.NewParser(file, []byte(src), bag).Parse())
	}
	res := sema.Resolve(units, bag)
	if bag.HasErrors() {
		t.Fatalf("diagnostics:\n%v", bag.All())
	}
	mods := make([]*bytecode.Module, 0, len(srcs))
	for _, s := range res.Order {
		mods = append(mods, Generate(s, res))
	}
	return mods
}

// genFunc lowers a single function body wrapped in a scratch script.
func genFunc(t *testing.T, body string) *bytecode.Function {
	t.Helper()
	src := "ScriptName T\nFunction F()\n" + body + "\nEndFunction\n"
	f := gen(t, src)[0].Func("F", "")
	if f == nil {
		t.Fatal("function F missing from module")
	}
	return f
}

func ops(f *bytecode.Function) []bytecode.Op {
	out := make([]bytecode.Op, len(f.Code))
	for i, in := range f.Code {
		out[i] = in.Op
	}
	return out
}

func TestWideningAssign(t *testing.T) {
	f := genFunc(t, "float f = 5")

	if len(f.Code) != 2 {
		t.Fatalf("code = %v", f.Code)
	}
	cast := f.Code[0]
	if cast.Op != bytecode.OpCast || cast.Type != "float" {
		t.Fatalf("first instruction = %v, want a float cast", cast)
	}
	asn := f.Code[1]
	if asn.Op != bytecode.OpAssign || asn.Dest != bytecode.Local("f") || asn.Args[0] != cast.Dest {
		t.Fatalf("second instruction = %v, want assign of the cast result", asn)
	}
}

func TestShortCircuit(t *testing.T) {
	f := genFunc(t, "bool x = true\nbool y = true\nbool b = x && y")

	// Skip the two literal initializers.
	code := f.Code[2:]
	if len(code) != 4 {
		t.Fatalf("code = %v", code)
	}
	if code[0].Op != bytecode.OpAssign || code[1].Op != bytecode.OpBranchFalse {
		t.Fatalf("got %v, want assign of lhs then conditional branch", code[:2])
	}
	if code[1].Args[0] != code[0].Dest {
		t.Error("branch must test the accumulated result")
	}
	if code[2].Op != bytecode.OpAssign || code[2].Args[0] != bytecode.Local("y") {
		t.Fatalf("rhs must load only after the branch, got %v", code[2])
	}
	// The target sits right after the rhs assign, before the final
	// store into b.
	if end, ok := f.Labels[code[1].Target]; !ok || end != 5 {
		t.Errorf("branch target at %d, want 5", end)
	}
}

func TestDeadBranchElimination(t *testing.T) {
	src := `ScriptName T
Function Doomed()
EndFunction
Function Kept()
EndFunction
Function F()
	If false
		Doomed()
	Else
		Kept()
	EndIf
EndFunction
`
	f := gen(t, src)[0].Func("F", "")
	if len(f.Code) != 1 {
		t.Fatalf("code = %v, want the surviving call only", f.Code)
	}
	in := f.Code[0]
	if in.Op != bytecode.OpCall || in.Aux != "Kept" {
		t.Errorf("instruction = %v, want a call of Kept", in)
	}
}

func TestAutoPropertyLowering(t *testing.T) {
	m := gen(t, `ScriptName Door
float Property Speed = 1.5 Auto
int Property Uses = 10 AutoReadOnly
`)[0]

	if len(m.Vars) != 2 {
		t.Fatalf("vars = %v, want the two backing variables", m.Vars)
	}
	backing := m.Vars[0]
	if backing.Name != "::Speed_var" || backing.Type != "float" || backing.Init < 0 {
		t.Fatalf("backing = %v", backing)
	}
	if c := m.Consts[backing.Init]; c != bytecode.FloatConst(1.5) {
		t.Errorf("backing init = %v", c)
	}

	if len(m.Props) != 2 {
		t.Fatalf("props = %v", m.Props)
	}
	speed := m.Props[0]
	if !speed.Auto || speed.Backing != "::Speed_var" || speed.Getter != "Speed.Get" || speed.Setter != "Speed.Set" {
		t.Errorf("prop = %+v", speed)
	}
	uses := m.Props[1]
	if !uses.ReadOnly || uses.Setter != "" {
		t.Errorf("read-only prop = %+v", uses)
	}

	get := m.Func("Speed.Get", "")
	if get == nil {
		t.Fatal("getter body missing")
	}
	last := get.Code[len(get.Code)-1]
	if last.Op != bytecode.OpReturn || len(last.Args) != 1 || last.Args[0].Kind != bytecode.KindField {
		t.Errorf("getter must return the backing field, got %v", last)
	}
	set := m.Func("Speed.Set", "")
	if set == nil || len(set.Params) != 1 {
		t.Fatalf("setter = %+v", set)
	}
	if m.Func("Uses.Set", "") != nil {
		t.Error("read-only property must not emit a setter body")
	}
}

func TestPropertyDispatch(t *testing.T) {
	m := gen(t, `ScriptName T
float Property Speed = 1.0 Auto
Function F()
	Speed = Speed + 0.5
EndFunction
`)[0]
	f := m.Func("F", "")

	got := ops(f)
	want := []bytecode.Op{bytecode.OpPropGet, bytecode.OpAdd, bytecode.OpPropSet}
	if len(got) != len(want) {
		t.Fatalf("code = %v", f.Code)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ops = %v, want %v", got, want)
		}
	}
	if f.Code[0].Aux != "Speed" || f.Code[0].Args[0] != bytecode.Self() {
		t.Errorf("getter dispatch = %v", f.Code[0])
	}
	if f.Code[2].Aux != "Speed" || f.Code[2].Args[0] != bytecode.Self() {
		t.Errorf("setter dispatch = %v", f.Code[2])
	}
}

func TestCompoundIndexEvaluatesOnce(t *testing.T) {
	m := gen(t, `ScriptName T
int calls = 0
int Function Idx()
	calls += 1
	Return 0
EndFunction
Function F()
	int[] a = new int[4]
	a[Idx()] += 1
EndFunction
`)[0]
	f := m.Func("F", "")

	var calls int
	var get, set *bytecode.Instruction
	for i := range f.Code {
		switch f.Code[i].Op {
		case bytecode.OpCall:
			calls++
		case bytecode.OpArrayGet:
			get = &f.Code[i]
		case bytecode.OpArraySet:
			set = &f.Code[i]
		}
	}
	if calls != 1 {
		t.Fatalf("index expression evaluated %d times, want 1:\n%v", calls, f.Code)
	}
	if get == nil || set == nil {
		t.Fatalf("code = %v, want an element load and store", f.Code)
	}
	if set.Args[0] != get.Args[0] || set.Args[1] != get.Args[1] {
		t.Errorf("load %v and store %v must address the same element", get, set)
	}
}

func TestStateLowering(t *testing.T) {
	m := gen(t, `ScriptName Door
Function Open()
EndFunction
Auto State Closed
	Function Open()
	EndFunction
EndState
`)[0]

	if len(m.States) != 1 {
		t.Fatalf("states = %v", m.States)
	}
	st := m.States[0]
	if st.Name != "Closed" || !st.Auto || len(st.Overrides) != 1 || st.Overrides[0] != "Open" {
		t.Errorf("state = %+v", st)
	}
	if m.Func("Open", "Closed") == nil {
		t.Error("override body missing")
	}
	if m.Func("Open", "") == nil {
		t.Error("script-level body missing")
	}
}

func TestForEachShape(t *testing.T) {
	f := genFunc(t, "int[] a = new int[3]\nint sum = 0\nForEach v In a\nsum += v\nEndForEach")

	want := []bytecode.Op{
		bytecode.OpArrayLen,
		bytecode.OpAssign,      // index = 0
		bytecode.OpLt,          // head
		bytecode.OpBranchFalse, // exit test
		bytecode.OpArrayGet,    // v = a[index]
	}
	got := ops(f)
	var start int
	for i, op := range got {
		if op == bytecode.OpArrayLen {
			start = i
			break
		}
	}
	for i, op := range want {
		if start+i >= len(got) || got[start+i] != op {
			t.Fatalf("loop shape = %v, want prefix %v from index %d", got, want, start)
		}
	}
	if got[len(got)-1] != bytecode.OpJump {
		t.Errorf("loop must end with a back jump, got %v", got[len(got)-1])
	}
	var v bool
	for _, l := range f.Locals {
		if l.Name == "v" {
			v = true
		}
	}
	if !v {
		t.Error("loop variable missing from locals")
	}
}

func TestCallDispatch(t *testing.T) {
	mods := gen(t,
		`ScriptName MathUtil
int Function Half(int n) Global
	Return n / 2
EndFunction
`,
		`ScriptName Base
Function Greet()
EndFunction
`,
		`ScriptName Child extends Base
Function Greet()
	Parent.Greet()
	Greet()
	int h = MathUtil.Half(4)
EndFunction
`)
	f := mods[2].Func("Greet", "")
	got := ops(f)

	want := []bytecode.Op{bytecode.OpCallParent, bytecode.OpCall, bytecode.OpCallStatic, bytecode.OpAssign}
	if len(got) != len(want) {
		t.Fatalf("code = %v", f.Code)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ops = %v, want %v", got, want)
		}
	}
	if f.Code[0].Aux != "Greet" {
		t.Errorf("parent call aux = %q", f.Code[0].Aux)
	}
	if f.Code[1].Args[0] != bytecode.Self() {
		t.Errorf("self call receiver = %v", f.Code[1].Args[0])
	}
	if f.Code[2].Aux != "MathUtil.Half" {
		t.Errorf("static call aux = %q", f.Code[2].Aux)
	}
}

func TestOmittedDefaultArgument(t *testing.T) {
	m := gen(t, `ScriptName T
Function F(int a, int b = 7)
EndFunction
Function Use()
	F(1)
EndFunction
`)[0]
	f := m.Func("Use", "")
	call := f.Code[len(f.Code)-1]
	if call.Op != bytecode.OpCall || len(call.Args) != 3 {
		t.Fatalf("call = %v", call)
	}
	d := call.Args[2]
	if d.Kind != bytecode.KindConst || m.Consts[d.Index] != bytecode.IntConst(7) {
		t.Errorf("omitted argument = %v, want the declared default", d)
	}
}

func TestConcatStringifies(t *testing.T) {
	f := genFunc(t, `string s = "n=" + 3`)

	var sawCast, sawConcat bool
	for _, in := range f.Code {
		switch in.Op {
		case bytecode.OpCast:
			if in.Type == "string" {
				sawCast = true
			}
		case bytecode.OpConcat:
			sawConcat = true
		}
	}
	if !sawCast || !sawConcat {
		t.Errorf("want a string cast feeding a concat, got %v", f.Code)
	}
}

func TestScriptVarInit(t *testing.T) {
	m := gen(t, "ScriptName T\nfloat rate = 2\nint bare\n")[0]
	if len(m.Vars) != 2 {
		t.Fatalf("vars = %v", m.Vars)
	}
	rate := m.Vars[0]
	if rate.Init < 0 || m.Consts[rate.Init] != bytecode.FloatConst(2) {
		t.Errorf("int initializer must widen to the declared float, got %v", rate)
	}
	if m.Vars[1].Init != -1 {
		t.Errorf("uninitialized variable Init = %d, want -1", m.Vars[1].Init)
	}
}

func TestGenerateRejectsFailedScript(t *testing.T) {
	bag := new(diag.Bag)
	unit := syntax.NewParser("bad.vlm", []byte("ScriptName T\nint x = missing\n"), bag).Parse()
	res := sema.Resolve([]*syntax.ScriptUnit{unit}, bag)
	if !bag.HasErrors() {
		t.Fatal("expected resolution errors")
	}
	defer func() {
		if recover() == nil {
			t.Error("Generate must panic on a failed script")
		}
	}()
	Generate(res.Order[0], res)
}

func TestModulesValidate(t *testing.T) {
	mods := gen(t,
		`ScriptName Base
int Property Health = 100 Auto
Event OnInit()
	Health = Health - 1
EndEvent
`,
		`ScriptName Child extends Base
Function Tick(float dt)
	While dt > 0.5
		dt -= 0.25
	EndWhile
EndFunction
`)
	for _, m := range mods {
		if err := m.Validate(); err != nil {
			t.Errorf("%s: %v", m.Name, err)
		}
	}
	if mods[1].Parent != "Base" {
		t.Errorf("parent = %q", mods[1].Parent)
	}
}
