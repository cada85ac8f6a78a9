// Package parseerr implements the parser's structured syntax-error type and
// the "what could have come next" computation used to build its expected-
// token list (§4.7, §6 "Error payload").
package parseerr

import (
	"fmt"
	"strings"

	"github.com/dekarrin/gudgeon/pos"
)

// SyntaxError is the error payload raised on the first unrecoverable
// (state, token) pair encountered during a parse (§6 "Error payload").
type SyntaxError struct {
	// Token is the offending token's text, or its display name if the
	// token has zero length.
	Token string

	// Expected is the deduplicated, insertion-ordered list of human-
	// readable names for tokens that would have been acceptable here.
	Expected []string

	// Location is the offending token's span, expanded to length 1 if the
	// token itself has zero length.
	Location pos.Span
}

// NewSyntaxError builds a SyntaxError, expanding a zero-length span to
// length 1 per §6.
func NewSyntaxError(tokenText string, expected []string, span pos.Span) *SyntaxError {
	if span.Length == 0 {
		span = span.WithLength(1)
	}
	return &SyntaxError{Token: tokenText, Expected: expected, Location: span}
}

// Error renders the message format from §6:
//
//	"Syntax error, found {token} but expected {e1}, {e2} … or {en}."
//	"Syntax error, unexpected {token}." (when Expected is empty)
//
// With exactly one expected entry, no commas or "or" are used.
func (e *SyntaxError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("Syntax error, unexpected %s.", e.Token)
	}
	if len(e.Expected) == 1 {
		return fmt.Sprintf("Syntax error, found %s but expected %s.", e.Token, e.Expected[0])
	}

	allButLast := strings.Join(e.Expected[:len(e.Expected)-1], ", ")
	last := e.Expected[len(e.Expected)-1]
	return fmt.Sprintf("Syntax error, found %s but expected %s or %s.", e.Token, allButLast, last)
}
