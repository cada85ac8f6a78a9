// Package parse implements the shift/reduce parse interpreter that drives a
// compiled action table and a rule set's reduction callbacks over a token
// stream (§4.6), plus the syntax-error reporting that kicks in on an
// unrecoverable (state, token) pair (§4.7).
package parse

import (
	"fmt"

	"github.com/dekarrin/gudgeon/automaton"
	"github.com/dekarrin/gudgeon/internal/util"
	"github.com/dekarrin/gudgeon/lexer"
	"github.com/dekarrin/gudgeon/parseerr"
	"github.com/dekarrin/gudgeon/pos"
	"github.com/dekarrin/gudgeon/ruleset"
	"github.com/dekarrin/gudgeon/token"
)

// Parser ties together the three immutable, shareable pieces a parse needs:
// the token kinds, the elaborated rule set (and its reduction callbacks),
// and the compiled action table. A Parser has no mutable state of its own,
// so one instance may be reused across calls to Parse as long as those
// calls do not overlap (§5).
type Parser struct {
	Tokens *token.Set
	Rules  *ruleset.Set
	Table  *automaton.Table
	Namer  parseerr.TokenNamer

	// Trace, if non-nil, is called with a one-line description of every
	// shift, reduce, goto, and error the interpreter performs. Nil-safe: a
	// Parser with no Trace set pays nothing for it.
	Trace func(string)
}

// New returns a Parser wired to the given tokens, rules, and table. A nil
// namer falls back to parseerr.DefaultNamer(tokens).
func New(tokens *token.Set, rules *ruleset.Set, table *automaton.Table, namer parseerr.TokenNamer) *Parser {
	if namer == nil {
		namer = parseerr.DefaultNamer(tokens)
	}
	return &Parser{Tokens: tokens, Rules: rules, Table: table, Namer: namer}
}

func (p *Parser) trace(format string, args ...any) {
	if p.Trace == nil {
		return
	}
	p.Trace(fmt.Sprintf(format, args...))
}

// ParseResult runs the full lex-then-parse pipeline described in §5 and §7:
// if res carries any Error token, the first one is reported without ever
// invoking the parse interpreter; otherwise res's buffer and token stream
// are parsed directly.
func (p *Parser) ParseResult(res *lexer.Result) (any, error) {
	if res.HasErrors {
		for _, tok := range res.Tokens {
			if tok.Kind == p.Tokens.Error() {
				return nil, p.lexErrorToSyntaxError(res, tok)
			}
		}
	}
	return p.Parse(res.Buffer, res.Tokens, res.NewlineOffsets)
}

func (p *Parser) lexErrorToSyntaxError(res *lexer.Result, tok lexer.Token) *parseerr.SyntaxError {
	text := res.Buffer[tok.Start : tok.Start+tok.Length]
	span := tokenSpan(tok, res.NewlineOffsets)
	return parseerr.NewSyntaxError(text, nil, span)
}

// Parse runs the shift/reduce interpreter of §4.6 over toks (the full token
// stream produced for buf, including the trailing EndOfStream) and returns
// the root value produced by whichever initial rule ultimately reduces, or
// a *parseerr.SyntaxError on the first unrecoverable (state, token) pair.
func (p *Parser) Parse(buf string, toks []lexer.Token, newlineOffsets []int) (any, error) {
	if len(toks) == 0 {
		return nil, fmt.Errorf("parse: empty token stream")
	}

	state := p.Table.InitialState
	tokPos := 0

	var values util.Stack[any]
	var listLengths util.Stack[int]
	var startTokens util.Stack[int]
	var stateStack util.Stack[int]

	current := func() lexer.Token {
		if tokPos < len(toks) {
			return toks[tokPos]
		}
		return toks[len(toks)-1]
	}

	for {
		tok := current()
		action := p.Table.Action(state, int(tok.Kind))

		switch {
		case action == 0:
			p.trace("error: state %d, token kind %d", state, tok.Kind)
			return nil, p.syntaxErrorAt(buf, toks, newlineOffsets, tok, state, stateStack.Of)

		case action > 0:
			p.trace("shift: state %d -> %d on token kind %d", state, action, tok.Kind)
			startTokens.Push(tokPos)
			stateStack.Push(state)
			state = int(action)
			tokPos++

		default:
			ruleID := ruleset.EntityID(-action)
			rule := p.Rules.Rule(ruleID)
			n := len(rule.Steps)
			p.trace("reduce: rule %d (%s, rank %d), %d steps", int(ruleID), rule.ResultType, rule.Rank, n)

			// n == 0 is an all-optional rule whose current variant provided
			// none of its parameters: a zero-width reduction. It consumes no
			// stacked state and contributes a fresh start-token entry at the
			// current position, standing in for the shift that never
			// happened.
			if n == 0 {
				args := p.bindArgs(rule, buf, toks, nil, nil, newlineOffsets, &values, &listLengths)
				value, err := rule.Method(args)
				if err != nil {
					return nil, err
				}
				values.Push(value)
				startTokens.Push(tokPos)
				stateStack.Push(state)

				gotoAction := p.Table.Action(state, int(ruleID))
				state = int(gotoAction)

				if rule.IsInitial(p.Rules.RootType, p.Rules.RootMaxRank) && stateStack.Len() == 1 &&
					tok.Kind == p.Tokens.EndOfStream() && p.Table.Action(state, int(tok.Kind)) == 0 {
					return values.Pop(), nil
				}
				break
			}

			total := len(startTokens.Of)
			stepStartTok := append([]int(nil), startTokens.Of[total-n:]...)
			stepEndTok := make([]int, n)
			for i := 0; i < n-1; i++ {
				stepEndTok[i] = stepStartTok[i+1] - 1
			}
			stepEndTok[n-1] = tokPos - 1

			isInitial := false
			switch {
			case rule.IsListEnd:
				listLengths.Push(1)

			case rule.IsListLoop:
				nonTerminalSteps := 0
				for _, s := range rule.Steps {
					if !s.IsTerminal {
						nonTerminalSteps++
					}
				}
				top := listLengths.Pop()
				listLengths.Push(top + nonTerminalSteps - 1)

			default:
				args := p.bindArgs(rule, buf, toks, stepStartTok, stepEndTok, newlineOffsets, &values, &listLengths)
				value, err := rule.Method(args)
				if err != nil {
					return nil, err
				}
				values.Push(value)
				isInitial = rule.IsInitial(p.Rules.RootType, p.Rules.RootMaxRank)
			}

			for i := 0; i < n-1; i++ {
				startTokens.Pop()
			}
			for i := 0; i < n-1; i++ {
				stateStack.Pop()
			}
			newTop := stateStack.Peek()
			gotoAction := p.Table.Action(newTop, int(ruleID))
			state = int(gotoAction)
			p.trace("goto: state %d -> %d on rule %d", newTop, gotoAction, int(ruleID))

			// the root value is complete once an initial rule has reduced
			// everything from the first token, the lookahead is EndOfStream,
			// and no further action is pending on it
			if isInitial && stateStack.Len() == 1 &&
				tok.Kind == p.Tokens.EndOfStream() && p.Table.Action(state, int(tok.Kind)) == 0 {
				return values.Pop(), nil
			}
		}
	}
}

// bindArgs builds rule's callback packet in the original declared-parameter
// order, binding provided parameters from right to left (the order their
// values come off the stacks in) and filling every parameter the current
// optional-subset variant did not provide with a neutral value shaped to
// its kind.
func (p *Parser) bindArgs(rule ruleset.Rule, buf string, toks []lexer.Token, stepStartTok, stepEndTok, newlineOffsets []int, values *util.Stack[any], listLengths *util.Stack[int]) []ruleset.ReducedArg {
	args := make([]ruleset.ReducedArg, len(rule.ParamKinds))

	for idx := len(rule.Steps) - 1; idx >= 0; idx-- {
		step := rule.Steps[idx]
		paramIdx := rule.ProvidedParamIndex[idx]
		span := pos.Merge(
			tokenSpan(toks[stepStartTok[idx]], newlineOffsets),
			tokenSpan(toks[stepEndTok[idx]], newlineOffsets),
		)

		switch {
		case step.IsTerminal:
			tok := toks[stepStartTok[idx]]
			arg := ruleset.ReducedArg{
				Provided:   true,
				IsTerminal: true,
				TokenKind:  tok.Kind,
				Want:       step.Want,
				Span:       span,
			}
			if step.Want == ruleset.ArgKind_Substring || step.Want == ruleset.ArgKind_SubstringAndSpan {
				arg.Text = buf[tok.Start : tok.Start+tok.Length]
			}
			args[paramIdx] = arg

		case step.IsList:
			m := listLengths.Pop()
			elems := make([]any, m)
			for i := m - 1; i >= 0; i-- {
				elems[i] = values.Pop()
			}
			args[paramIdx] = ruleset.ReducedArg{Provided: true, IsTerminal: false, Span: span, Value: elems}

		default:
			args[paramIdx] = ruleset.ReducedArg{Provided: true, IsTerminal: false, Span: span, Value: values.Pop()}
		}
	}

	for i, kind := range rule.ParamKinds {
		if args[i].Provided {
			continue
		}
		switch kind {
		case ruleset.ParamList:
			args[i] = ruleset.ReducedArg{Provided: false, Value: []any{}}
		default:
			args[i] = ruleset.ReducedArg{Provided: false}
		}
	}

	return args
}

func (p *Parser) syntaxErrorAt(buf string, toks []lexer.Token, newlineOffsets []int, tok lexer.Token, state int, stateStack []int) *parseerr.SyntaxError {
	text := p.Namer.Name(tok.Kind)
	if tok.Length > 0 {
		text = buf[tok.Start : tok.Start+tok.Length]
	}

	kinds := parseerr.Acceptable(p.Table, p.Rules, state, stateStack)
	expected := parseerr.ExpectedNames(kinds, p.Namer)

	return parseerr.NewSyntaxError(text, expected, tokenSpan(tok, newlineOffsets))
}

func tokenSpan(tok lexer.Token, newlineOffsets []int) pos.Span {
	return pos.Span{Start: pos.PositionAt(tok.Start, newlineOffsets), Length: tok.Length}
}
