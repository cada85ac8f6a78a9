package langedit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/gudgeon/automaton"
	"github.com/dekarrin/gudgeon/langedit"
	"github.com/dekarrin/gudgeon/lexer"
	"github.com/dekarrin/gudgeon/ruleset"
	"github.com/dekarrin/gudgeon/token"
)

func mustRegex(t *testing.T, pattern string) *token.Def {
	d, err := token.NewRegexDef(pattern, false)
	require.NoError(t, err)
	return d
}

func noop(args []ruleset.ReducedArg) (any, error) { return nil, nil }

func buildGrammar(t *testing.T) (*token.Set, *ruleset.Set, *automaton.Table) {
	tb := token.NewBuilder()
	tb.Add(token.Declaration{Name: "$", Role: token.RoleEndOfStream})
	tb.Add(token.Declaration{Name: "error", Role: token.RoleError})
	num, _ := tb.Add(token.Declaration{Name: "number", Def: mustRegex(t, `[0-9]+`)})
	add, _ := tb.Add(token.Declaration{Name: "+", Def: token.NewLiteralDef([]string{"+"}, false)})

	tag := 1
	tokens, err := tb.Finish()
	require.NoError(t, err)

	decl := ruleset.Declaration{
		RootType: "Expr",
		Rules: []ruleset.DeclaredRule{
			{ResultType: "Expr", Rank: 0, Method: noop, ContextTag: &tag,
				Params: []ruleset.Param{ruleset.Term(ruleset.ArgKind_Substring, false, num)}},
			{ResultType: "Expr", Rank: 0, Method: noop,
				Params: []ruleset.Param{
					ruleset.NonTerm("Expr", 0, false),
					ruleset.Term(ruleset.ArgKind_TokenKind, false, add),
					ruleset.NonTerm("Expr", 0, false),
				}},
		},
	}

	rs, err := ruleset.Elaborate(tokens, decl)
	require.NoError(t, err)
	table, err := automaton.Construct(rs)
	require.NoError(t, err)

	return tokens, rs, table
}

func Test_Evaluate_StopsAtOffsetAndReportsShiftable(t *testing.T) {
	assert := assert.New(t)

	tokens, rs, table := buildGrammar(t)

	forest, err := lexer.BuildForest(tokens)
	require.NoError(t, err)
	lx := lexer.New(tokens, forest, lexer.Options{})

	res := lx.Lex("1 + 2", false)
	require.False(t, res.HasErrors)

	ev := langedit.New(tokens, rs, table)
	result := ev.Evaluate(res.Tokens, 1) // stop right after "1"

	assert.NotEmpty(result.CorrelationID)
	assert.False(result.StoppedOnError)
	require.NotNil(result.LastToken)
	assert.Equal(0, result.LastToken.Start)
	assert.NotEmpty(result.Shiftable)
}

func Test_Evaluate_StopsOnSyntaxError(t *testing.T) {
	assert := assert.New(t)

	tokens, rs, table := buildGrammar(t)

	forest, err := lexer.BuildForest(tokens)
	require.NoError(t, err)
	lx := lexer.New(tokens, forest, lexer.Options{})

	res := lx.Lex("+ 1", false)
	require.False(t, res.HasErrors)

	ev := langedit.New(tokens, rs, table)
	result := ev.Evaluate(res.Tokens, len(res.Buffer))

	assert.True(result.StoppedOnError)
}
