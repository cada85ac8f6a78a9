package parseerr

import (
	"github.com/dekarrin/gudgeon/automaton"
	"github.com/dekarrin/gudgeon/ruleset"
	"github.com/dekarrin/gudgeon/token"
)

// TokenNamer translates token kinds to their human-readable display form
// and optionally "folds" a kind out of an expected-set (e.g. an `Operator`
// kind folding its more specific children like `Plus`), per §4.7.
// ExpectedNames requires a non-nil TokenNamer; parse.New substitutes
// DefaultNamer when given nil.
type TokenNamer interface {
	Name(k token.Kind) string
	IsFolded(k token.Kind) bool
}

// defaultNamer names kinds by their declared display name and never folds,
// matching the sample grammars' IsFolded implementation noted in §9 (the
// source always returns false; general folding is optional).
type defaultNamer struct {
	tokens *token.Set
}

func (n defaultNamer) Name(k token.Kind) string  { return n.tokens.Class(k).Human() }
func (n defaultNamer) IsFolded(token.Kind) bool   { return false }

// DefaultNamer returns the trivial TokenNamer used when a grammar does not
// supply its own.
func DefaultNamer(tokens *token.Set) TokenNamer {
	return defaultNamer{tokens: tokens}
}

// Acceptable computes the set of token kinds that could be shifted in the
// current (state, stateStack) configuration, including any reachable by
// first simulating one or more reductions (§4.7). The result is ordered by
// first discovery, suitable for direct use as an expected-names list once
// translated and de-folded.
func Acceptable(table *automaton.Table, rs *ruleset.Set, state int, stateStack []int) []token.Kind {
	var order []token.Kind
	seen := map[token.Kind]bool{}
	visited := map[int]bool{state: true}

	var walk func(state int, stateStack []int)
	walk = func(state int, stateStack []int) {
		for t := 0; t < table.TokenCount; t++ {
			a := table.Action(state, t)
			if a > 0 {
				k := token.Kind(t)
				if !seen[k] {
					seen[k] = true
					order = append(order, k)
				}
			}
			if a < 0 {
				ruleID := ruleset.EntityID(-a)
				rule := rs.Rule(ruleID)
				n := len(rule.Steps)

				combined := make([]int, 0, len(stateStack)+1)
				combined = append(combined, stateStack...)
				combined = append(combined, state)

				if n > len(combined) {
					continue
				}
				popped := combined[:len(combined)-n]
				if len(popped) == 0 {
					continue
				}
				newTop := popped[len(popped)-1]

				aPrime := table.Action(newTop, int(ruleID))
				if aPrime > 0 && !visited[newTop] {
					visited[newTop] = true
					walk(int(aPrime), popped)
				}
			}
		}
	}

	walk(state, stateStack)
	return order
}

// ExpectedNames turns an Acceptable result into the deduplicated,
// insertion-ordered display-name list the SyntaxError carries, applying
// namer's folding and naming.
func ExpectedNames(kinds []token.Kind, namer TokenNamer) []string {
	var names []string
	seen := map[string]bool{}
	for _, k := range kinds {
		if namer.IsFolded(k) {
			continue
		}
		name := namer.Name(k)
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
