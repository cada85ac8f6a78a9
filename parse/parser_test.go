package parse_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/gudgeon/automaton"
	"github.com/dekarrin/gudgeon/lexer"
	"github.com/dekarrin/gudgeon/parse"
	"github.com/dekarrin/gudgeon/parseerr"
	"github.com/dekarrin/gudgeon/ruleset"
	"github.com/dekarrin/gudgeon/token"
)

func mustRegex(t *testing.T, pattern string) *token.Def {
	d, err := token.NewRegexDef(pattern, false)
	require.NoError(t, err)
	return d
}

// buildCalculator wires a full lexer + elaborated rule set + compiled table
// for a tiny arithmetic grammar whose reduction callbacks actually evaluate
// the expression, so Parse can be exercised end to end.
func buildCalculator(t *testing.T) (*lexer.Lexer, *parse.Parser) {
	tb := token.NewBuilder()
	tb.Add(token.Declaration{Name: "$", Role: token.RoleEndOfStream})
	tb.Add(token.Declaration{Name: "error", Role: token.RoleError})
	num, _ := tb.Add(token.Declaration{Name: "number", Def: mustRegex(t, `[0-9]+`)})
	add, _ := tb.Add(token.Declaration{Name: "+", Def: token.NewLiteralDef([]string{"+"}, false)})
	sub, _ := tb.Add(token.Declaration{Name: "-", Def: token.NewLiteralDef([]string{"-"}, false)})
	mul, _ := tb.Add(token.Declaration{Name: "*", Def: token.NewLiteralDef([]string{"*"}, false)})
	div, _ := tb.Add(token.Declaration{Name: "/", Def: token.NewLiteralDef([]string{"/"}, false)})
	open, _ := tb.Add(token.Declaration{Name: "(", Def: token.NewLiteralDef([]string{"("}, false)})
	closeP, _ := tb.Add(token.Declaration{Name: ")", Def: token.NewLiteralDef([]string{")"}, false)})

	tokens, err := tb.Finish()
	require.NoError(t, err)

	forest, err := lexer.BuildForest(tokens)
	require.NoError(t, err)
	lx := lexer.New(tokens, forest, lexer.Options{})

	atomMethod := func(args []ruleset.ReducedArg) (any, error) {
		return strconv.Atoi(args[0].Text)
	}
	parenMethod := func(args []ruleset.ReducedArg) (any, error) {
		return args[1].Value, nil
	}
	mulDivMethod := func(args []ruleset.ReducedArg) (any, error) {
		left := args[0].Value.(int)
		right := args[2].Value.(int)
		if args[1].TokenKind == mul {
			return left * right, nil
		}
		return left / right, nil
	}
	addSubMethod := func(args []ruleset.ReducedArg) (any, error) {
		left := args[0].Value.(int)
		right := args[2].Value.(int)
		if args[1].TokenKind == add {
			return left + right, nil
		}
		return left - right, nil
	}

	decl := ruleset.Declaration{
		RootType:    "Expr",
		RootMaxRank: 2,
		Rules: []ruleset.DeclaredRule{
			{ResultType: "Expr", Rank: 0, Method: atomMethod,
				Params: []ruleset.Param{ruleset.Term(ruleset.ArgKind_Substring, false, num)}},
			{ResultType: "Expr", Rank: 0, Method: parenMethod,
				Params: []ruleset.Param{
					ruleset.Term(ruleset.ArgKind_TokenKind, false, open),
					ruleset.NonTerm("Expr", 2, false),
					ruleset.Term(ruleset.ArgKind_TokenKind, false, closeP),
				}},
			{ResultType: "Expr", Rank: 1, Method: mulDivMethod,
				Params: []ruleset.Param{
					ruleset.NonTerm("Expr", 1, false),
					ruleset.Term(ruleset.ArgKind_TokenKind, false, mul, div),
					ruleset.NonTerm("Expr", 0, false),
				}},
			{ResultType: "Expr", Rank: 2, Method: addSubMethod,
				Params: []ruleset.Param{
					ruleset.NonTerm("Expr", 2, false),
					ruleset.Term(ruleset.ArgKind_TokenKind, false, add, sub),
					ruleset.NonTerm("Expr", 1, false),
				}},
		},
	}

	rs, err := ruleset.Elaborate(tokens, decl)
	require.NoError(t, err)

	table, err := automaton.Construct(rs)
	require.NoError(t, err)

	return lx, parse.New(tokens, rs, table, parseerr.DefaultNamer(tokens))
}

func Test_Parse_EvaluatesPrecedence(t *testing.T) {
	assert := assert.New(t)

	lx, p := buildCalculator(t)

	res := lx.Lex("1 + 2 * 3", false)
	require.False(t, res.HasErrors)

	value, err := p.ParseResult(res)
	require.NoError(t, err)
	assert.Equal(7, value)
}

func Test_Parse_ParenthesesOverridePrecedence(t *testing.T) {
	assert := assert.New(t)

	lx, p := buildCalculator(t)

	res := lx.Lex("(1 + 2) * 3", false)
	require.False(t, res.HasErrors)

	value, err := p.ParseResult(res)
	require.NoError(t, err)
	assert.Equal(9, value)
}

func Test_Parse_SyntaxErrorOnUnexpectedToken(t *testing.T) {
	assert := assert.New(t)

	lx, p := buildCalculator(t)

	res := lx.Lex("1 + * 2", false)
	require.False(t, res.HasErrors)

	_, err := p.ParseResult(res)
	require.Error(t, err)

	var synErr *parseerr.SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Equal("*", synErr.Token)
	assert.NotEmpty(synErr.Expected)
}

func Test_Parse_LexErrorReportedWithoutInvokingParser(t *testing.T) {
	assert := assert.New(t)

	lx, p := buildCalculator(t)

	res := lx.Lex("1 + @", false)
	require.True(t, res.HasErrors)

	_, err := p.ParseResult(res)
	require.Error(t, err)

	var synErr *parseerr.SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Equal("@", synErr.Token)
	assert.Empty(synErr.Expected)
}
