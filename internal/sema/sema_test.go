package sema

import (
	"fmt"
	"testing"

	"github.com/vellum-lang/vellum/internal/diag"
	"github.com/vellum-lang/vellum/internal/syntax"
	"github.com/vellum-lang/vellum/internal/types"
)

// resolveSrcs parses and resolves a batch of sources as one build set.
func resolveSrcs(t *testing.T, srcs ...string) (*Result, *diag.Bag) {
	t.Helper()
	bag := new(diag.Bag)
	units := make([]*syntax.ScriptUnit, 0, len(srcs))
	for i, src := range srcs {
		file := fmt.Sprintf("s%d.vlm", i)
		units = append(units, syntax.NewParser(file, []byte(src), bag).Parse())
	}
	if bag.HasErrors() {
		t.Fatalf("parse errors:\n%v", bag.All())
	}
	return Resolve(units, bag), bag
}

// kinds collects the kinds of all error-severity diagnostics.
func kinds(bag *diag.Bag) []diag.Kind {
	var ks []diag.Kind
	for _, d := range bag.All() {
		if d.Severity == diag.Error {
			ks = append(ks, d.Kind)
		}
	}
	return ks
}

func TestResolveShadowing(t *testing.T) {
	res, bag := resolveSrcs(t,
		`ScriptName Base
int hp = 10
int Function Bonus()
	Return 1
EndFunction
Function Reset()
EndFunction
`,
		`ScriptName Child extends Base
int Function Bonus()
	Return 2
EndFunction
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}

	base := res.Scripts["base"]
	child := res.Scripts["child"]
	if base == nil || child == nil {
		t.Fatal("scripts missing from result")
	}
	if child.Type.Parent() != base.Type {
		t.Error("child type is not linked to base")
	}

	baseBonus := base.Scope.Lookup("bonus")
	childBonus := child.Scope.Lookup("BONUS")
	if baseBonus == nil || childBonus == nil || baseBonus == childBonus {
		t.Fatal("each script should declare its own Bonus")
	}
	if got := child.LookupMember("Bonus"); got != childBonus {
		t.Errorf("LookupMember(Bonus) = %v, want the derived override", got)
	}
	if got := child.LookupMember("reset"); got != base.Scope.Lookup("reset") {
		t.Errorf("LookupMember(reset) = %v, want the inherited function", got)
	}
	if got := child.LookupMember("hp"); got == nil {
		t.Error("inherited variable should resolve through the chain")
	}
}

func TestResolveCycle(t *testing.T) {
	res, bag := resolveSrcs(t,
		"ScriptName A extends B\n",
		"ScriptName B extends A\n",
		"ScriptName C\n")

	var cyclic int
	for _, k := range kinds(bag) {
		if k == diag.CyclicInheritance {
			cyclic++
		}
	}
	if cyclic != 1 {
		t.Errorf("got %d cyclic-inheritance errors, want exactly 1", cyclic)
	}
	for _, name := range []string{"a", "b"} {
		s := res.Scripts[name]
		if !s.Failed || !s.severed {
			t.Errorf("script %s: Failed=%v severed=%v, want both", name, s.Failed, s.severed)
		}
	}
	if c := res.Scripts["c"]; c.Failed || c.severed {
		t.Error("script outside the cycle must be unaffected")
	}
}

func TestResolveLongCycle(t *testing.T) {
	res, bag := resolveSrcs(t,
		"ScriptName A extends B\n",
		"ScriptName B extends C\n",
		"ScriptName C extends A\n")

	var cyclic int
	for _, k := range kinds(bag) {
		if k == diag.CyclicInheritance {
			cyclic++
		}
	}
	if cyclic != 1 {
		t.Errorf("got %d cyclic-inheritance errors, want exactly 1", cyclic)
	}
	for _, name := range []string{"a", "b", "c"} {
		s := res.Scripts[name]
		if !s.Failed || !s.severed {
			t.Errorf("script %s: Failed=%v severed=%v, want both", name, s.Failed, s.severed)
		}
	}
}

func TestResolveSelfExtend(t *testing.T) {
	_, bag := resolveSrcs(t, "ScriptName Loop extends Loop\n")
	ks := kinds(bag)
	if len(ks) != 1 || ks[0] != diag.CyclicInheritance {
		t.Fatalf("got %v, want one cyclic-inheritance error", bag.All())
	}
}

func TestResolveUnknownParent(t *testing.T) {
	_, bag := resolveSrcs(t, "ScriptName A extends Phantom\n")
	ks := kinds(bag)
	if len(ks) != 1 || ks[0] != diag.UndefinedSymbol {
		t.Fatalf("got %v, want one undefined-symbol error", bag.All())
	}
}

func TestCheckTypes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want diag.Kind // ignored when ok
		ok   bool
	}{
		{"widening assign", "float f = 5", 0, true},
		{"narrowing assign", "int i = 1.5", diag.TypeMismatch, false},
		{"string to int", `int i = "x"`, diag.TypeMismatch, false},
		{"explicit narrow cast", "int i = 1.5 as int", 0, true},
		{"int condition", "If 1\nEndIf", diag.TypeMismatch, false},
		{"bool condition", "If count > 0\nEndIf", 0, true},
		{"and needs bool", "bool b = count && true", diag.TypeMismatch, false},
		{"modulo floats", "float f = 1.5 % 2.0", diag.TypeMismatch, false},
		{"concat mixed", `string s = "n=" + count`, 0, true},
		{"add bool", "int i = true + 1", diag.TypeMismatch, false},
		{"negate string", `string s = -"x"`, diag.TypeMismatch, false},
		{"undefined name", "int i = missing", diag.UndefinedSymbol, false},
		{"while bool", "While count < 3\ncount += 1\nEndWhile", 0, true},
		{"return mismatch", `Return "no"`, diag.TypeMismatch, false},
		{"array elem", "int[] a = new int[4]\na[0] = 1", 0, true},
		{"foreach elem type", "float[] a = new float[2]\nfloat total = 0.0\nForEach v In a\ntotal += v\nEndForEach", 0, true},
		{"foreach non-array", "ForEach v In 3\nEndForEach", diag.TypeMismatch, false},
		{"array bad index", "int[] a = new int[4]\nint i = a[true]", diag.TypeMismatch, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "ScriptName T\nint count = 0\nFunction F()\n" + tt.body + "\nEndFunction\n"
			_, bag := resolveSrcs(t, src)
			if tt.ok {
				if bag.HasErrors() {
					t.Fatalf("unexpected errors: %v", bag.All())
				}
				return
			}
			ks := kinds(bag)
			if len(ks) == 0 || ks[0] != tt.want {
				t.Fatalf("got %v, want first error %v", bag.All(), tt.want)
			}
		})
	}
}

func TestAutoPropertyMaterialization(t *testing.T) {
	res, bag := resolveSrcs(t, `ScriptName Door
float Property Speed = 1.5 Auto
int Property Uses = 10 AutoReadOnly
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	s := res.Scripts["door"]

	speed, ok := s.Scope.Lookup("speed").(*types.Prop)
	if !ok {
		t.Fatal("Speed is not a property object")
	}
	if speed.Getter() == nil || speed.Setter() == nil || speed.Backing() == nil {
		t.Fatal("auto property missing accessors or backing storage")
	}
	if !speed.Backing().Hidden() {
		t.Error("backing variable must be hidden")
	}
	if !speed.Getter().Decl().Synthesized || !speed.Setter().Decl().Synthesized {
		t.Error("accessor declarations must be marked synthesized")
	}
	sig := speed.Getter().Signature()
	if sig == nil || sig.NumParams() != 0 || !types.Identical(sig.Result(), types.Typ[types.Float]) {
		t.Errorf("getter signature = %v", sig)
	}

	uses, _ := s.Scope.Lookup("uses").(*types.Prop)
	if uses == nil || !uses.ReadOnly() {
		t.Fatal("Uses should be read-only")
	}
	if uses.Setter() != nil {
		t.Error("read-only property must have no setter")
	}
	if uses.Getter() == nil || uses.Backing() == nil {
		t.Error("read-only property still needs getter and backing")
	}
}

func TestAutoReadOnlyRequiresInit(t *testing.T) {
	_, bag := resolveSrcs(t, "ScriptName T\nint Property Max AutoReadOnly\n")
	ks := kinds(bag)
	if len(ks) != 1 || ks[0] != diag.TypeMismatch {
		t.Fatalf("got %v, want one type-mismatch error", bag.All())
	}
}

func TestReadOnlyPropertyAssign(t *testing.T) {
	_, bag := resolveSrcs(t, `ScriptName T
int Property Max = 5 AutoReadOnly
Function F()
	Max = 6
EndFunction
`)
	ks := kinds(bag)
	if len(ks) != 1 || ks[0] != diag.TypeMismatch {
		t.Fatalf("got %v, want one type-mismatch error", bag.All())
	}
}

func TestExplicitProperty(t *testing.T) {
	res, bag := resolveSrcs(t, `ScriptName T
int raw = 0
int Property Value
	int Function Get()
		Return raw
	EndFunction
	Function Set(int v)
		raw = v
	EndFunction
EndProperty
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	p, _ := res.Scripts["t"].Scope.Lookup("value").(*types.Prop)
	if p == nil || p.Getter() == nil || p.Setter() == nil {
		t.Fatal("explicit property accessors not attached")
	}
	if p.Backing() != nil {
		t.Error("explicit property must not get backing storage")
	}
	if p.Getter().Decl().Synthesized {
		t.Error("explicit accessor is not synthesized")
	}
}

func TestExplicitPropertyBadAccessors(t *testing.T) {
	tests := []struct {
		name, src string
		want      diag.Kind
	}{
		{"no accessors", `ScriptName T
int Property P
EndProperty
`, diag.SyntaxError},
		{"getter wrong type", `ScriptName T
int Property P
	float Function Get()
		Return 1.0
	EndFunction
EndProperty
`, diag.TypeMismatch},
		{"setter wrong arity", `ScriptName T
int Property P
	int Function Get()
		Return 0
	EndFunction
	Function Set(int a, int b)
	EndFunction
EndProperty
`, diag.TypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, bag := resolveSrcs(t, tt.src)
			ks := kinds(bag)
			if len(ks) == 0 || ks[0] != tt.want {
				t.Fatalf("got %v, want first error %v", bag.All(), tt.want)
			}
		})
	}
}

func TestOverrideSignatureMismatch(t *testing.T) {
	_, bag := resolveSrcs(t,
		`ScriptName Base
Function Act(int n)
EndFunction
`,
		`ScriptName Child extends Base
Function Act(float n)
EndFunction
`)
	ks := kinds(bag)
	if len(ks) != 1 || ks[0] != diag.OverrideMismatch {
		t.Fatalf("got %v, want one override-mismatch error", bag.All())
	}
}

func TestDuplicateMember(t *testing.T) {
	_, bag := resolveSrcs(t, `ScriptName T
int x = 0
float x = 1.0
`)
	ks := kinds(bag)
	if len(ks) != 1 || ks[0] != diag.DuplicateSymbol {
		t.Fatalf("got %v, want one duplicate-symbol error", bag.All())
	}
}

func TestStateOverrides(t *testing.T) {
	res, bag := resolveSrcs(t, `ScriptName Door
Function Open()
EndFunction
Auto State Closed
	Function Open()
	EndFunction
EndState
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	s := res.Scripts["door"]
	if s.AutoState == nil || types.Fold(s.AutoState.Name()) != "closed" {
		t.Fatalf("auto state = %v", s.AutoState)
	}
	st := s.State("closed")
	if st == nil || st.Override("OPEN") == nil {
		t.Fatal("state override not recorded")
	}
	if st.Override("Open") == s.Scope.Lookup("open") {
		t.Error("state override must be a distinct function object")
	}
}

func TestStateOverrideErrors(t *testing.T) {
	tests := []struct {
		name, src string
		want      diag.Kind
	}{
		{"missing target", `ScriptName T
State S
	Function Ghost()
	EndFunction
EndState
`, diag.UndefinedSymbol},
		{"signature mismatch", `ScriptName T
Function Act(int n)
EndFunction
State S
	Function Act(string n)
	EndFunction
EndState
`, diag.OverrideMismatch},
		{"overrides accessor", `ScriptName T
int Property P = 1 Auto
State S
	Function Get()
	EndFunction
EndState
`, diag.UndefinedSymbol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, bag := resolveSrcs(t, tt.src)
			ks := kinds(bag)
			if len(ks) == 0 || ks[0] != tt.want {
				t.Fatalf("got %v, want first error %v", bag.All(), tt.want)
			}
		})
	}
}

func TestScriptVarsPrivate(t *testing.T) {
	_, bag := resolveSrcs(t,
		`ScriptName Store
int stock = 3
int Property Shown = 3 Auto
`,
		`ScriptName User
Store s
Function F()
	int a = s.Shown
	int b = s.stock
EndFunction
`)
	ks := kinds(bag)
	if len(ks) != 1 || ks[0] != diag.UndefinedSymbol {
		t.Fatalf("got %v, want one undefined-symbol error for the raw variable", bag.All())
	}
}

func TestCallArguments(t *testing.T) {
	tests := []struct {
		name, call string
		ok         bool
	}{
		{"all args", "F(1, 2)", true},
		{"trailing default", "F(1)", true},
		{"missing required", "F()", false},
		{"too many", "F(1, 2, 3)", false},
		{"widened arg", "G(4)", true},
		{"bad arg type", `F("x")`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := `ScriptName T
Function F(int a, int b = 2)
EndFunction
Function G(float f)
EndFunction
Function Use()
	` + tt.call + `
EndFunction
`
			_, bag := resolveSrcs(t, src)
			if tt.ok != !bag.HasErrors() {
				t.Fatalf("ok=%v but diagnostics: %v", tt.ok, bag.All())
			}
		})
	}
}

func TestVoidCallIsNotAValue(t *testing.T) {
	tests := []struct {
		name, body string
	}{
		{"assign to object var", "other = V()"},
		{"local initializer", "int n = V()"},
		{"argument", "Take(V())"},
		{"return value", "Return V()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := `ScriptName T
T other
Function V()
EndFunction
Function Take(int n)
EndFunction
int Function F()
	` + tt.body + `
	Return 0
EndFunction
`
			_, bag := resolveSrcs(t, src)
			ks := kinds(bag)
			if len(ks) == 0 || ks[0] != diag.TypeMismatch {
				t.Fatalf("got %v, want a type-mismatch error", bag.All())
			}
		})
	}

	// A bare call statement is still fine.
	_, bag := resolveSrcs(t, `ScriptName T
Function V()
EndFunction
Function F()
	V()
EndFunction
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
}

func TestStaticCall(t *testing.T) {
	res, bag := resolveSrcs(t,
		`ScriptName MathUtil
int Function Half(int n) Global
	Return n / 2
EndFunction
`,
		`ScriptName User
Function F()
	int h = MathUtil.Half(4)
EndFunction
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	var found bool
	for _, owner := range res.Info.Statics {
		if types.Fold(owner) == "mathutil" {
			found = true
		}
	}
	if !found {
		t.Error("static call owner not recorded")
	}
}

func TestGlobalFunctionNoSelf(t *testing.T) {
	_, bag := resolveSrcs(t, `ScriptName T
int hp = 1
int Function F() Global
	Return hp
EndFunction
`)
	ks := kinds(bag)
	if len(ks) == 0 || ks[0] != diag.UndefinedSymbol {
		t.Fatalf("got %v, want undefined-symbol (no instance state in global)", bag.All())
	}
}

func TestParentCall(t *testing.T) {
	_, bag := resolveSrcs(t,
		`ScriptName Base
Function Greet()
EndFunction
`,
		`ScriptName Child extends Base
Function Greet()
	Parent.Greet()
EndFunction
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
}

func TestVarInitLiteralOnly(t *testing.T) {
	tests := []struct {
		name, decl string
		ok         bool
	}{
		{"literal", "int x = 3", true},
		{"negated literal", "int x = -3", true},
		{"negated string", `string s = -"x"`, false},
		{"expression", "int x = 1 + 2", false},
		{"wrong type", `int x = "s"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, bag := resolveSrcs(t, "ScriptName T\n"+tt.decl+"\n")
			if tt.ok != !bag.HasErrors() {
				t.Fatalf("ok=%v but diagnostics: %v", tt.ok, bag.All())
			}
		})
	}
}
