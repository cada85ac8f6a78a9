package ruleset

import "github.com/dekarrin/gudgeon/token"

// ParamKind distinguishes the three parameter shapes a declared rule's
// parameter list may contain (§4.4).
type ParamKind int

const (
	ParamTerminal ParamKind = iota
	ParamNonTerminal
	ParamList
)

// TerminalSpec is a terminal parameter: it accepts any token whose kind is
// listed (after public-descendant expansion), and may be optional.
type TerminalSpec struct {
	Tokens   []token.Kind
	Optional bool
	Want     ArgKind
}

// NonTerminalSpec is a non-terminal parameter: it accepts the result of any
// rule producing ResultType at a rank no greater than MaxRank (MaxRank < 0
// means unbounded), and may be optional.
type NonTerminalSpec struct {
	ResultType string
	MaxRank    int
	Optional   bool
}

// ListSpec is a list-of-non-terminal parameter: an ordered sequence of
// ElementType values, at least Min of them, optionally separated by
// Separator and/or closed by Terminator, each element capped at MaxRank.
type ListSpec struct {
	ElementType string
	Min         int
	Separator   *token.Kind
	Terminator  *token.Kind
	MaxRank     int
}

// Param is one parameter of a declared rule. Exactly one of Terminal,
// NonTerminal, or List is non-nil, matching Kind.
type Param struct {
	Kind        ParamKind
	Terminal    *TerminalSpec
	NonTerminal *NonTerminalSpec
	List        *ListSpec
}

// Term declares a terminal parameter.
func Term(want ArgKind, optional bool, tokens ...token.Kind) Param {
	return Param{Kind: ParamTerminal, Terminal: &TerminalSpec{Tokens: tokens, Optional: optional, Want: want}}
}

// NonTerm declares a non-terminal parameter. maxRank < 0 means unbounded.
func NonTerm(resultType string, maxRank int, optional bool) Param {
	return Param{Kind: ParamNonTerminal, NonTerminal: &NonTerminalSpec{ResultType: resultType, MaxRank: maxRank, Optional: optional}}
}

// List declares a list-of-non-terminal parameter.
func List(elementType string, min int, separator, terminator *token.Kind, maxRank int) Param {
	return Param{Kind: ParamList, List: &ListSpec{ElementType: elementType, Min: min, Separator: separator, Terminator: terminator, MaxRank: maxRank}}
}

// DeclaredRule is one rule as supplied by the external grammar author, prior
// to elaboration.
type DeclaredRule struct {
	ResultType string
	Rank       int
	ContextTag *int
	Params     []Param
	Method     ReduceFunc
}

// Declaration is the full input to Elaborate: every declared rule plus the
// name of the root (start) semantic type.
type Declaration struct {
	RootType    string
	RootMaxRank int // < 0 means unbounded
	Rules       []DeclaredRule
}
