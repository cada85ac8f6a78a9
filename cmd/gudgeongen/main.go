/*
Gudgeongen compiles a declarative langfile grammar into an action/goto table
and reports the result.

It reads a TOML langfile describing a grammar's token kinds and reduction
rules, elaborates it into a rule set, and constructs the SLR(1) table for it.
No reduction callbacks are attached (a langfile cannot carry them), so
gudgeongen never runs a parse — it only validates that the grammar
constructs without conflict and reports the compiled shape.

Usage:

	gudgeongen [flags] FILE

The flags are:

	-v, --version
		Give the current version of gudgeon and then exit.

	-t, --table
		Print the full action/goto table instead of just a summary.

	-o, --out FILE
		Write the rezi-encoded rule-set cache to FILE for reuse by a host
		program that supplies reduction callbacks by rule id.
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/dekarrin/gudgeon/automaton"
	"github.com/dekarrin/gudgeon/internal/langfile"
	"github.com/dekarrin/gudgeon/internal/version"
	"github.com/dekarrin/gudgeon/ruleset"
)

const (
	ExitSuccess = iota
	ExitUsageError
	ExitGrammarError
	ExitWriteError
)

var (
	returnCode  int     = ExitSuccess
	flagVersion *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	flagTable   *bool   = pflag.BoolP("table", "t", false, "Print the full action/goto table")
	flagOut     *string = pflag.StringP("out", "o", "", "Write the rezi-encoded rule-set cache to this file")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "ERROR: exactly one langfile argument is required")
		returnCode = ExitUsageError
		return
	}

	spec, err := langfile.Load(pflag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitGrammarError
		return
	}

	decl := ruleset.Declaration{RootType: spec.RootType, RootMaxRank: spec.RootMaxRank, Rules: spec.Rules}
	rs, err := ruleset.Elaborate(spec.Tokens, decl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: elaborating grammar: %s\n", err.Error())
		returnCode = ExitGrammarError
		return
	}

	table, err := automaton.Construct(rs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: constructing table: %s\n", err.Error())
		returnCode = ExitGrammarError
		return
	}

	fmt.Printf("grammar %q: %d tokens, %d rules, %d states\n", spec.RootType, spec.Tokens.Len(), len(rs.Rules), table.StateCount)
	if *flagTable {
		fmt.Println(table.String())
	}

	if *flagOut != "" {
		if err := os.WriteFile(*flagOut, ruleset.EncodeCache(rs), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: writing cache: %s\n", err.Error())
			returnCode = ExitWriteError
			return
		}
	}
}
