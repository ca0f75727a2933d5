// Package main implements the Vellum compiler entry point.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/sanity-io/litter"

	"github.com/vellum-lang/vellum/internal/build"
	"github.com/vellum-lang/vellum/internal/bytecode"
	"github.com/vellum-lang/vellum/internal/diag"
	"github.com/vellum-lang/vellum/internal/syntax"
)

// Compiler flags
var (
	emitTokens = flag.Bool("emit-tokens", false, "Output token stream")
	emitAST    = flag.Bool("emit-ast", false, "Output AST")
	output     = flag.String("o", "", "Output file for the assembly listing")
	replMode   = flag.Bool("repl", false, "Start the interactive inspector")
	version    = flag.Bool("version", false, "Print version")
)

// Version information
const Version = "0.1.0-dev"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Vellum Compiler %s\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: vellumc [options] <file.vel>...\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *version {
		fmt.Printf("vellumc version %s\n", Version)
		fmt.Printf("go version %s\n", runtime.Version())
		os.Exit(0)
	}

	if *replMode {
		cmdRepl()
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "error: no input files")
		fmt.Fprintln(os.Stderr, "usage: vellumc [options] <file.vel>...")
		os.Exit(1)
	}

	if *emitTokens {
		os.Exit(runEmitTokens(args[0]))
	}

	sources := make([]build.Source, 0, len(args))
	for _, name := range args {
		text, err := os.ReadFile(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		sources = append(sources, build.Source{File: name, Text: text})
	}

	res := build.Compile(sources)
	printDiagnostics(res.Bag)

	if *emitAST {
		for _, u := range res.Units {
			litter.Dump(u)
		}
	}

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	for _, m := range res.Modules {
		bytecode.Fprint(out, m)
	}

	if res.Bag.HasErrors() {
		os.Exit(1)
	}
}

// runEmitTokens lexes one file and prints its token stream.
func runEmitTokens(name string) int {
	text, err := os.ReadFile(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	bag := new(diag.Bag)
	s := syntax.NewScanner(name, text, bag)
	for {
		s.Next()
		fmt.Printf("%s\t%s\t%q\n", s.Pos(), s.Token(), s.Text())
		if s.Token() == syntax.EOF {
			break
		}
	}
	printDiagnostics(bag)
	if bag.HasErrors() {
		return 1
	}
	return 0
}

func printDiagnostics(bag *diag.Bag) {
	for _, d := range bag.All() {
		fmt.Fprintln(os.Stderr, d)
	}
}
