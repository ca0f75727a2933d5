package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sanity-io/litter"

	"github.com/vellum-lang/vellum/internal/build"
	"github.com/vellum-lang/vellum/internal/bytecode"
	"github.com/vellum-lang/vellum/internal/diag"
	"github.com/vellum-lang/vellum/internal/syntax"
	"github.com/vellum-lang/vellum/internal/types"
)

// ---- ANSI colors ----

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// cmdRepl runs the interactive inspector: paste a script, finish with
// a blank line, and see its diagnostics and bytecode. The :tokens and
// :ast commands toggle extra dumps.
func cmdRepl() {
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".vellum_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            colorGreen + "vellum> " + colorReset,
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline init failed: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "%s%svellum inspector%s %s(blank line compiles, 'exit' or Ctrl+D quits)%s\n\n",
		colorBold, colorCyan, colorReset, colorGray, colorReset)

	showTokens := false
	showAST := false
	var buf strings.Builder

	for {
		if buf.Len() > 0 {
			rl.SetPrompt(colorGray + "...     " + colorReset)
		} else {
			rl.SetPrompt(colorGreen + "vellum> " + colorReset)
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if buf.Len() > 0 {
					buf.Reset()
					continue
				}
				fmt.Fprintf(rl.Stdout(), "\n%s(use 'exit' or Ctrl+D to quit)%s\n", colorGray, colorReset)
				continue
			}
			fmt.Fprintln(rl.Stdout())
			return
		}

		switch strings.TrimSpace(line) {
		case "exit", "quit":
			return
		case ":tokens":
			showTokens = !showTokens
			fmt.Fprintf(rl.Stdout(), "%stoken dump %v%s\n", colorGray, showTokens, colorReset)
			continue
		case ":ast":
			showAST = !showAST
			fmt.Fprintf(rl.Stdout(), "%sAST dump %v%s\n", colorGray, showAST, colorReset)
			continue
		case "":
			if buf.Len() == 0 {
				continue
			}
			compileSnippet(rl, buf.String(), showTokens, showAST)
			buf.Reset()
			continue
		}
		buf.WriteString(line)
		buf.WriteString("\n")
	}
}

func compileSnippet(rl *readline.Instance, text string, showTokens, showAST bool) {
	// Bare members are accepted; wrap them in a scratch script header.
	if !strings.Contains(types.Fold(text), "scriptname") {
		text = "ScriptName Scratch\n" + text
	}
	src := []byte(text)

	if showTokens {
		bag := new(diag.Bag)
		s := syntax.NewScanner("<repl>", src, bag)
		for {
			s.Next()
			fmt.Fprintf(rl.Stdout(), "%s%s\t%q%s\n", colorGray, s.Token(), s.Text(), colorReset)
			if s.Token() == syntax.EOF {
				break
			}
		}
	}

	res := build.Compile([]build.Source{{File: "<repl>", Text: src}})

	if showAST {
		for _, u := range res.Units {
			litter.Dump(u)
		}
	}
	for _, d := range res.Bag.All() {
		color := colorRed
		if d.Severity == diag.Warning {
			color = colorCyan
		}
		fmt.Fprintf(rl.Stdout(), "%s%s%s\n", color, d, colorReset)
	}
	for _, m := range res.Modules {
		bytecode.Fprint(rl.Stdout(), m)
	}
}
