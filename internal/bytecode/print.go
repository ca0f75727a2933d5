package bytecode

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Fprint writes a deterministic assembly listing of the module to w.
//
// Format:
//
//	module Door extends ObjectBase
//	.const c0 = int 3
//	.prop Health int auto backing=::Health_var
//	.state Open auto { OnActivate }
//	func OnActivate(akSource ObjectBase) [state Open]
//	  L0:
//	    assign t0, c0
//	    ret t0
func Fprint(w io.Writer, m *Module) {
	fmt.Fprintf(w, "module %s", m.Name)
	if m.Parent != "" {
		fmt.Fprintf(w, " extends %s", m.Parent)
	}
	fmt.Fprintln(w)

	for i, c := range m.Consts {
		fmt.Fprintf(w, ".const c%d = %s\n", i, c)
	}
	for _, v := range m.Vars {
		fmt.Fprintf(w, ".var %s %s", v.Name, v.Type)
		if v.Init >= 0 {
			fmt.Fprintf(w, " init=c%d", v.Init)
		}
		fmt.Fprintln(w)
	}
	for _, p := range m.Props {
		fmt.Fprintf(w, ".prop %s %s", p.Name, p.Type)
		switch {
		case p.ReadOnly:
			fmt.Fprintf(w, " autoreadonly")
		case p.Auto:
			fmt.Fprintf(w, " auto")
		}
		if p.Backing != "" {
			fmt.Fprintf(w, " backing=%s", p.Backing)
		}
		if p.Getter != "" {
			fmt.Fprintf(w, " get=%s", p.Getter)
		}
		if p.Setter != "" {
			fmt.Fprintf(w, " set=%s", p.Setter)
		}
		fmt.Fprintln(w)
	}
	for _, s := range m.States {
		fmt.Fprintf(w, ".state %s", s.Name)
		if s.Auto {
			fmt.Fprintf(w, " auto")
		}
		fmt.Fprintf(w, " { %s }\n", strings.Join(s.Overrides, " "))
	}
	for _, f := range m.Funcs {
		fprintFunc(w, f)
	}
}

func fprintFunc(w io.Writer, f *Function) {
	fmt.Fprintf(w, "func %s(", f.Name)
	for i, p := range f.Params {
		if i > 0 {
			fmt.Fprintf(w, ", ")
		}
		fmt.Fprintf(w, "%s %s", p.Name, p.Type)
	}
	fmt.Fprintf(w, ")")
	if f.Return != "" {
		fmt.Fprintf(w, " %s", f.Return)
	}
	if f.State != "" {
		fmt.Fprintf(w, " [state %s]", f.State)
	}
	var marks []string
	if f.Global {
		marks = append(marks, "global")
	}
	if f.Native {
		marks = append(marks, "native")
	}
	if f.Event {
		marks = append(marks, "event")
	}
	if len(marks) > 0 {
		fmt.Fprintf(w, " [%s]", strings.Join(marks, " "))
	}
	if f.Temps > 0 {
		fmt.Fprintf(w, " temps=%d", f.Temps)
	}
	fmt.Fprintln(w)
	for _, l := range f.Locals {
		fmt.Fprintf(w, "  .local %s %s\n", l.Name, l.Type)
	}

	// Labels at the same index print in name order.
	at := make(map[int][]string)
	for name, idx := range f.Labels {
		at[idx] = append(at[idx], name)
	}
	for _, names := range at {
		sort.Strings(names)
	}
	for i := range f.Code {
		for _, name := range at[i] {
			fmt.Fprintf(w, "  %s:\n", name)
		}
		fmt.Fprintf(w, "    %s\n", f.Code[i].String())
	}
	for _, name := range at[len(f.Code)] {
		fmt.Fprintf(w, "  %s:\n", name)
	}
}

// String returns the assembly listing of the module.
func (m *Module) String() string {
	var sb strings.Builder
	Fprint(&sb, m)
	return sb.String()
}
