/*
Gudgeonrepl starts an interactive session that lexes and parses each line of
input against a small built-in arithmetic grammar, printing the evaluated
result or a syntax error.

It reads from stdin using GNU-readline-style editing where available, or
directly if forced to. Each line is an independent parse; the grammar and its
reduction callbacks never change across lines.

Usage:

	gudgeonrepl [flags]

The flags are:

	-v, --version
		Give the current version of gudgeon and then exit.

	-d, --direct
		Force reading directly from stdin instead of going through GNU
		readline where possible.

Once a session has started, type any arithmetic expression (numbers, + - * /,
and parentheses) and press enter to see it evaluated. Type "quit" to exit.
*/
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/pflag"

	"github.com/dekarrin/gudgeon/automaton"
	"github.com/dekarrin/gudgeon/internal/demogrammar"
	"github.com/dekarrin/gudgeon/internal/langfile"
	"github.com/dekarrin/gudgeon/internal/version"
	"github.com/dekarrin/gudgeon/lexer"
	"github.com/dekarrin/gudgeon/parse"
	"github.com/dekarrin/gudgeon/ruleset"
)

const (
	ExitSuccess = iota
	ExitInitError
)

var (
	returnCode  int   = ExitSuccess
	flagVersion *bool = pflag.BoolP("version", "v", false, "Gives the version info")
	forceDirect *bool = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible")
)

// lineReader abstracts over the two ways this tool can read a line, mirroring
// the teacher's DirectCommandReader / InteractiveCommandReader split.
type lineReader interface {
	ReadLine() (string, error)
	Close() error
}

type directReader struct{ r *bufio.Reader }

func (d *directReader) ReadLine() (string, error) {
	line, err := d.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (d *directReader) Close() error { return nil }

type interactiveReader struct{ rl *readline.Instance }

func (i *interactiveReader) ReadLine() (string, error) {
	line, err := i.rl.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (i *interactiveReader) Close() error { return i.rl.Close() }

func newLineReader(direct bool) (lineReader, error) {
	if direct {
		return &directReader{r: bufio.NewReader(os.Stdin)}, nil
	}
	rl, err := readline.NewEx(&readline.Config{Prompt: "gudgeon> "})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}
	return &interactiveReader{rl: rl}, nil
}

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

	p, lx, err := buildParser()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	reader, err := newLineReader(*forceDirect)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	defer reader.Close()

	for {
		line, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				return
			}
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			return
		}
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "quit") {
			return
		}

		res := lx.Lex(line, false)
		value, err := p.ParseResult(res)
		if err != nil {
			fmt.Printf("syntax error: %s\n", err.Error())
			continue
		}
		fmt.Println(value)
	}
}

func buildParser() (*parse.Parser, *lexer.Lexer, error) {
	spec, err := langfile.LoadString(demogrammar.Arithmetic)
	if err != nil {
		return nil, nil, err
	}

	methods := map[string]ruleset.ReduceFunc{
		"atom": func(args []ruleset.ReducedArg) (any, error) {
			return strconv.Atoi(args[0].Text)
		},
		"paren": func(args []ruleset.ReducedArg) (any, error) {
			return args[1].Value, nil
		},
		"muldiv": func(args []ruleset.ReducedArg) (any, error) {
			left := args[0].Value.(int)
			right := args[2].Value.(int)
			if args[1].Text == "*" {
				return left * right, nil
			}
			return left / right, nil
		},
		"addsub": func(args []ruleset.ReducedArg) (any, error) {
			left := args[0].Value.(int)
			right := args[2].Value.(int)
			if args[1].Text == "+" {
				return left + right, nil
			}
			return left - right, nil
		},
	}
	if err := langfile.AttachMethods(spec.Rules, spec.RuleNames, methods); err != nil {
		return nil, nil, err
	}

	decl := ruleset.Declaration{RootType: spec.RootType, RootMaxRank: spec.RootMaxRank, Rules: spec.Rules}
	rs, err := ruleset.Elaborate(spec.Tokens, decl)
	if err != nil {
		return nil, nil, fmt.Errorf("elaborating grammar: %w", err)
	}

	table, err := automaton.Construct(rs)
	if err != nil {
		return nil, nil, fmt.Errorf("constructing table: %w", err)
	}

	forest, err := lexer.BuildForest(spec.Tokens)
	if err != nil {
		return nil, nil, fmt.Errorf("building lexer forest: %w", err)
	}
	lx := lexer.New(spec.Tokens, forest, lexer.Options{})

	return parse.New(spec.Tokens, rs, table, nil), lx, nil
}
