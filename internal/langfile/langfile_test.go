package langfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/gudgeon/internal/langfile"
	"github.com/dekarrin/gudgeon/ruleset"
)

const sampleLangfile = `
format = "gudgeon"
type = "LANG"

[root]
type = "Expr"
max_rank = 0

[[token]]
name = "$"
role = "end_of_stream"

[[token]]
name = "error"
role = "error"

[[token]]
name = "number"
regex = "[0-9]+"

[[rule]]
name = "atom"
result = "Expr"
rank = 0

[[rule.param]]
kind = "terminal"
tokens = ["number"]
want = "substring"
`

func writeSample(t *testing.T) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.lang.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleLangfile), 0o644))
	return path
}

func Test_Load_TokensAndRules(t *testing.T) {
	assert := assert.New(t)

	spec, err := langfile.Load(writeSample(t))
	require.NoError(t, err)

	assert.Equal("Expr", spec.RootType)
	assert.Equal(0, spec.RootMaxRank)
	assert.Equal(3, spec.Tokens.Len())
	require.Len(t, spec.Rules, 1)
	assert.Equal("Expr", spec.Rules[0].ResultType)
	assert.Equal([]string{"atom"}, spec.RuleNames)
	require.Len(t, spec.Rules[0].Params, 1)
	assert.Equal(ruleset.ParamTerminal, spec.Rules[0].Params[0].Kind)
}

func Test_AttachMethods_BindsByName(t *testing.T) {
	assert := assert.New(t)

	spec, err := langfile.Load(writeSample(t))
	require.NoError(t, err)

	methods := map[string]ruleset.ReduceFunc{
		"atom": func(args []ruleset.ReducedArg) (any, error) {
			return args[0].Text, nil
		},
	}

	require.NoError(t, langfile.AttachMethods(spec.Rules, spec.RuleNames, methods))
	require.NotNil(t, spec.Rules[0].Method)

	value, err := spec.Rules[0].Method([]ruleset.ReducedArg{{Provided: true, Text: "42"}})
	require.NoError(t, err)
	assert.Equal("42", value)
}

func Test_AttachMethods_MissingNameErrors(t *testing.T) {
	assert := assert.New(t)

	spec, err := langfile.Load(writeSample(t))
	require.NoError(t, err)

	err = langfile.AttachMethods(spec.Rules, spec.RuleNames, map[string]ruleset.ReduceFunc{})
	assert.Error(err)
}
