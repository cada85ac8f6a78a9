package automaton_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/gudgeon/automaton"
	"github.com/dekarrin/gudgeon/ruleset"
	"github.com/dekarrin/gudgeon/token"
)

func mustRegex(t *testing.T, pattern string) *token.Def {
	d, err := token.NewRegexDef(pattern, false)
	require.NoError(t, err)
	return d
}

func noop(args []ruleset.ReducedArg) (any, error) { return nil, nil }

func buildArithmeticRuleset(t *testing.T) *ruleset.Set {
	b := token.NewBuilder()
	eos, _ := b.Add(token.Declaration{Name: "$", Role: token.RoleEndOfStream})
	b.Add(token.Declaration{Name: "error", Role: token.RoleError})
	num, _ := b.Add(token.Declaration{Name: "number", Def: mustRegex(t, `[0-9]+`)})
	add, _ := b.Add(token.Declaration{Name: "+", Def: token.NewLiteralDef([]string{"+"}, false)})
	sub, _ := b.Add(token.Declaration{Name: "-", Def: token.NewLiteralDef([]string{"-"}, false)})
	mul, _ := b.Add(token.Declaration{Name: "*", Def: token.NewLiteralDef([]string{"*"}, false)})
	div, _ := b.Add(token.Declaration{Name: "/", Def: token.NewLiteralDef([]string{"/"}, false)})
	open, _ := b.Add(token.Declaration{Name: "(", Def: token.NewLiteralDef([]string{"("}, false)})
	closeP, _ := b.Add(token.Declaration{Name: ")", Def: token.NewLiteralDef([]string{")"}, false)})
	_ = eos

	tokens, err := b.Finish()
	require.NoError(t, err)

	decl := ruleset.Declaration{
		RootType:    "Expr",
		RootMaxRank: 2,
		Rules: []ruleset.DeclaredRule{
			{ResultType: "Expr", Rank: 0, Method: noop,
				Params: []ruleset.Param{ruleset.Term(ruleset.ArgKind_Substring, false, num)}},
			{ResultType: "Expr", Rank: 0, Method: noop,
				Params: []ruleset.Param{
					ruleset.Term(ruleset.ArgKind_TokenKind, false, open),
					ruleset.NonTerm("Expr", 2, false),
					ruleset.Term(ruleset.ArgKind_TokenKind, false, closeP),
				}},
			{ResultType: "Expr", Rank: 1, Method: noop,
				Params: []ruleset.Param{
					ruleset.NonTerm("Expr", 1, false),
					ruleset.Term(ruleset.ArgKind_TokenKind, false, mul, div),
					ruleset.NonTerm("Expr", 0, false),
				}},
			{ResultType: "Expr", Rank: 2, Method: noop,
				Params: []ruleset.Param{
					ruleset.NonTerm("Expr", 2, false),
					ruleset.Term(ruleset.ArgKind_TokenKind, false, add, sub),
					ruleset.NonTerm("Expr", 1, false),
				}},
		},
	}

	set, err := ruleset.Elaborate(tokens, decl)
	require.NoError(t, err)
	return set
}

func Test_Construct_ArithmeticGrammarBuildsWithoutConflict(t *testing.T) {
	assert := assert.New(t)

	rs := buildArithmeticRuleset(t)

	table, err := automaton.Construct(rs)
	require.NoError(t, err)

	assert.Greater(table.StateCount, 0)
	assert.Equal(1, table.InitialState)
	assert.Equal(rs.EntityCount(), table.EntityCount)

	// every state has at least one non-error action
	for s := 1; s <= table.StateCount; s++ {
		hasAction := false
		for e := 0; e < table.EntityCount; e++ {
			if table.Action(s, e) != 0 {
				hasAction = true
				break
			}
		}
		assert.True(hasAction, "state %d has no actions at all", s)
	}
}

func Test_Construct_ReduceReduceConflictFailsConstruction(t *testing.T) {
	assert := assert.New(t)

	b := token.NewBuilder()
	b.Add(token.Declaration{Name: "$", Role: token.RoleEndOfStream})
	b.Add(token.Declaration{Name: "error", Role: token.RoleError})
	ident, _ := b.Add(token.Declaration{Name: "identifier", Def: mustRegex(t, `[a-z]+`)})

	tokens, err := b.Finish()
	require.NoError(t, err)

	decl := ruleset.Declaration{
		RootType: "Stmt",
		Rules: []ruleset.DeclaredRule{
			{ResultType: "Stmt", Rank: 0, Method: noop,
				Params: []ruleset.Param{ruleset.NonTerm("A", 0, false)}},
			{ResultType: "Stmt", Rank: 0, Method: noop,
				Params: []ruleset.Param{ruleset.NonTerm("B", 0, false)}},
			{ResultType: "A", Rank: 0, Method: noop,
				Params: []ruleset.Param{ruleset.Term(ruleset.ArgKind_TokenKind, false, ident)}},
			{ResultType: "B", Rank: 0, Method: noop,
				Params: []ruleset.Param{ruleset.Term(ruleset.ArgKind_TokenKind, false, ident)}},
		},
	}

	rs, err := ruleset.Elaborate(tokens, decl)
	require.NoError(t, err)

	_, err = automaton.Construct(rs)
	assert.Error(err)
}
