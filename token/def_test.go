package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_LiteralDef_LongestMatch(t *testing.T) {
	assert := assert.New(t)

	d := NewLiteralDef([]string{"=", "=="}, false)

	assert.Equal(2, d.MatchLength("== frob", 0))
	assert.Equal(1, d.MatchLength("= frob", 0))
	assert.Equal(0, d.MatchLength("frob", 0))
}

func Test_LiteralDef_CaseInsensitive(t *testing.T) {
	assert := assert.New(t)

	d := NewLiteralDef([]string{"if"}, true)

	assert.Equal(2, d.MatchLength("IF x", 0))
	assert.True(d.StartsWith('I'))
	assert.True(d.StartsWith('i'))
}

func Test_RegexDef_AnchoredAtCursor(t *testing.T) {
	assert := assert.New(t)

	d, err := NewRegexDef(`[0-9]+`, false)
	assert.NoError(err)

	assert.Equal(3, d.MatchLength("123+456", 0))
	assert.Equal(3, d.MatchLength("123+456", 4))
	assert.Equal(0, d.MatchLength("123+456", 3))
}

func Test_NewSelfNamedDef(t *testing.T) {
	assert := assert.New(t)

	d := NewSelfNamedDef("else")
	assert.Equal(4, d.MatchLength("ELSE x", 0))
}
