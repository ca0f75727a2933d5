// Package build drives the compilation pipeline: sources are lexed
// and parsed concurrently, resolved together once every unit is
// available, and lowered to bytecode per script. The package owns the
// only synchronization in the compiler; the stages themselves share
// nothing mutable.
package build

import (
	"sync"

	"github.com/vellum-lang/vellum/internal/bytecode"
	"github.com/vellum-lang/vellum/internal/codegen"
	"github.com/vellum-lang/vellum/internal/diag"
	"github.com/vellum-lang/vellum/internal/sema"
	"github.com/vellum-lang/vellum/internal/syntax"
)

// Source is one input file, already materialized; the core does no
// I/O of its own.
type Source struct {
	File string
	Text []byte
}

// Result is the outcome of one build. Modules holds the bytecode of
// every script that compiled cleanly, in input order; scripts with
// errors are absent but never block their siblings.
type Result struct {
	Units   []*syntax.ScriptUnit
	Sema    *sema.Result
	Modules []*bytecode.Module
	Bag     *diag.Bag
}

// Compile runs the full pipeline over a batch of sources. The batch
// must contain the ancestor closure of every script in it.
func Compile(sources []Source) *Result {
	units := make([]*syntax.ScriptUnit, len(sources))
	bags := make([]*diag.Bag, len(sources))

	// Each unit parses in isolation with its own diagnostic bag, so
	// no ordering is imposed until the merge below.
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			bags[i] = new(diag.Bag)
			units[i] = syntax.NewParser(src.File, src.Text, bags[i]).Parse()
		}(i, src)
	}
	wg.Wait()

	bag := new(diag.Bag)
	for _, b := range bags {
		bag.Merge(b)
	}

	// Resolution needs every unit; this is the pipeline's barrier.
	res := sema.Resolve(units, bag)

	// Generation is independent per script once resolution is done.
	mods := make([]*bytecode.Module, len(res.Order))
	for i, s := range res.Order {
		if s.Failed || bag.ErrorsIn(s.File) > 0 {
			continue
		}
		wg.Add(1)
		go func(i int, s *sema.Script) {
			defer wg.Done()
			mods[i] = codegen.Generate(s, res)
		}(i, s)
	}
	wg.Wait()

	out := &Result{Units: units, Sema: res, Bag: bag}
	for _, m := range mods {
		if m != nil {
			out.Modules = append(out.Modules, m)
		}
	}
	return out
}
