package parseerr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/gudgeon/parseerr"
	"github.com/dekarrin/gudgeon/pos"
)

func Test_SyntaxError_MessageFormats(t *testing.T) {
	assert := assert.New(t)

	span := pos.Span{Start: pos.Position{Line: 1, Col: 3}, Length: 1}

	unexpected := parseerr.NewSyntaxError("+", nil, span)
	assert.Equal("Syntax error, unexpected +.", unexpected.Error())

	single := parseerr.NewSyntaxError("+", []string{"number"}, span)
	assert.Equal("Syntax error, found + but expected number.", single.Error())

	multi := parseerr.NewSyntaxError("+", []string{"number", "("}, span)
	assert.Equal("Syntax error, found + but expected number or (.", multi.Error())

	three := parseerr.NewSyntaxError("+", []string{"number", "(", "identifier"}, span)
	assert.Equal("Syntax error, found + but expected number, ( or identifier.", three.Error())
}

func Test_SyntaxError_ZeroLengthSpanExpandsToOne(t *testing.T) {
	assert := assert.New(t)

	span := pos.Span{Start: pos.Position{Line: 2, Col: 1}, Length: 0}
	err := parseerr.NewSyntaxError("end-of-script", []string{"number"}, span)

	assert.Equal(1, err.Location.Length)
}
