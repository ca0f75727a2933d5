package bytecode

import (
	"strings"
	"testing"
)

func TestInternDedup(t *testing.T) {
	m := NewModule("T", "")

	a := m.Intern(IntConst(5))
	b := m.Intern(IntConst(5))
	if a != b {
		t.Errorf("same int interned twice: %d, %d", a, b)
	}
	if m.Intern(FloatConst(5)) == a {
		t.Error("float 5 must not collide with int 5")
	}
	s1 := m.Intern(StringConst("hi"))
	s2 := m.Intern(StringConst("hi"))
	if s1 != s2 {
		t.Errorf("same string interned twice: %d, %d", s1, s2)
	}
	if m.Intern(NoneConst()) != m.Intern(NoneConst()) {
		t.Error("none must dedup")
	}
	if len(m.Consts) != 4 {
		t.Errorf("pool size = %d, want 4", len(m.Consts))
	}
	for want, c := range m.Consts {
		if m.Intern(c) != want {
			t.Errorf("re-intern of pool entry %d moved it", want)
		}
	}
}

func TestValidate(t *testing.T) {
	mk := func(f *Function) *Module {
		m := NewModule("T", "")
		m.Intern(IntConst(1))
		m.Funcs = append(m.Funcs, f)
		return m
	}

	ok := mk(&Function{
		Name:  "F",
		Temps: 1,
		Code: []Instruction{
			{Op: OpAssign, Type: "int", Dest: Temp(0), Args: []Value{ConstRef(0)}},
			{Op: OpJump, Target: "end"},
		},
		Labels: map[string]int{"end": 2},
	})
	if err := ok.Validate(); err != nil {
		t.Errorf("valid module rejected: %v", err)
	}

	tests := []struct {
		name string
		f    *Function
	}{
		{"unknown label", &Function{
			Name:   "F",
			Code:   []Instruction{{Op: OpJump, Target: "nowhere"}},
			Labels: map[string]int{},
		}},
		{"temp out of range", &Function{
			Name:  "F",
			Temps: 1,
			Code: []Instruction{
				{Op: OpAssign, Type: "int", Dest: Temp(3), Args: []Value{ConstRef(0)}},
			},
		}},
		{"const out of pool", &Function{
			Name:  "F",
			Temps: 1,
			Code: []Instruction{
				{Op: OpAssign, Type: "int", Dest: Temp(0), Args: []Value{ConstRef(9)}},
			},
		}},
		{"label past body", &Function{
			Name:   "F",
			Labels: map[string]int{"end": 5},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := mk(tt.f).Validate(); err == nil {
				t.Error("Validate accepted a malformed module")
			}
		})
	}
}

func TestFuncLookup(t *testing.T) {
	m := NewModule("T", "")
	plain := &Function{Name: "Open"}
	inState := &Function{Name: "Open", State: "Closed"}
	m.Funcs = append(m.Funcs, plain, inState)

	if m.Func("Open", "") != plain {
		t.Error("script-level lookup hit the wrong function")
	}
	if m.Func("Open", "Closed") != inState {
		t.Error("state lookup hit the wrong function")
	}
	if m.Func("Open", "Ajar") != nil {
		t.Error("lookup in unknown state should be nil")
	}
}

func TestOpInfo(t *testing.T) {
	for op := OpInvalid + 1; op < opCount; op++ {
		info := op.Info()
		if info.Name == "" {
			t.Errorf("op %d has no name", op)
		}
		if op.String() != info.Name {
			t.Errorf("op %d: String() = %q, want %q", op, op.String(), info.Name)
		}
	}
	branches := []Op{OpJump, OpBranchFalse, OpBranchTrue}
	for _, op := range branches {
		if op.Info().HasDest {
			t.Errorf("%s must not write a destination", op)
		}
	}
	if !OpAdd.Info().HasDest || !OpAdd.Info().Typed {
		t.Error("add writes a typed destination")
	}
}

func TestPrintDeterministic(t *testing.T) {
	build := func() *Module {
		m := NewModule("Door", "ObjectBase")
		c0 := m.Intern(FloatConst(1.5))
		m.Vars = append(m.Vars, Variable{Name: "::Speed_var", Type: "float", Init: c0})
		m.Props = append(m.Props, Property{
			Name: "Speed", Type: "float", Auto: true,
			Backing: "::Speed_var", Getter: "Speed.Get", Setter: "Speed.Set",
		})
		m.States = append(m.States, State{Name: "Closed", Auto: true, Overrides: []string{"Open"}})
		m.Funcs = append(m.Funcs, &Function{
			Name:   "Open",
			Return: "int",
			Temps:  1,
			Locals: []Param{{Name: "n", Type: "int"}},
			Code: []Instruction{
				{Op: OpAssign, Type: "int", Dest: Local("n"), Args: []Value{ConstRef(m.Intern(IntConst(0)))}},
				{Op: OpReturn, Args: []Value{Local("n")}},
			},
			Labels: map[string]int{"L0": 1, "L1": 1},
		})
		return m
	}

	first := build().String()
	for i := 0; i < 10; i++ {
		if got := build().String(); got != first {
			t.Fatalf("listing differs between runs:\n%s\n---\n%s", first, got)
		}
	}

	for _, want := range []string{
		"Door", "ObjectBase", ".const", ".prop", ".state", "Speed.Get", "L0:", "L1:",
	} {
		if !strings.Contains(first, want) {
			t.Errorf("listing missing %q:\n%s", want, first)
		}
	}
	if strings.Index(first, "L0:") > strings.Index(first, "L1:") {
		t.Error("labels at the same index must print in name order")
	}
}
