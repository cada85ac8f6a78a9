package lexer

import (
	"fmt"
	"sort"

	"github.com/dekarrin/gudgeon/token"
)

// node is one tree node of the lexer rule forest: a root kind (one without a
// from-parent) together with its from-descendants, each of which is matched
// only against the text its parent already recognized.
type node struct {
	kind     token.Kind
	def      *token.Def
	children []*node
}

// Forest is the rule forest built from a token.Set's from-relations: roots
// are kinds without a parent, descendants hang off the ancestor whose
// already-matched text they are tried against (§3 "Lexer rule forest").
type Forest struct {
	set   *token.Set
	roots []*node
}

// BuildForest partitions set's kinds into root/descendant trees following
// their from-relations. Only kinds with a Def are eligible to appear (role
// kinds with no text form — EndOfStream, EndOfLine, Indent, Dedent — are
// never matched directly and are excluded).
func BuildForest(set *token.Set) (*Forest, error) {
	nodes := make(map[token.Kind]*node, set.Len())
	for k := 0; k < set.Len(); k++ {
		cls := set.Class(token.Kind(k))
		if cls.Def() == nil {
			continue
		}
		nodes[cls.ID()] = &node{kind: cls.ID(), def: cls.Def()}
	}

	var roots []*node
	for k := 0; k < set.Len(); k++ {
		cls := set.Class(token.Kind(k))
		n, ok := nodes[cls.ID()]
		if !ok {
			continue
		}
		if parent, has := cls.Parent(); has {
			parentNode, ok := nodes[parent]
			if !ok {
				return nil, fmt.Errorf("kind %q declares from-parent %d which has no matchable definition", cls.Human(), parent)
			}
			parentNode.children = append(parentNode.children, n)
		} else {
			roots = append(roots, n)
		}
	}

	// deterministic order: first-declared wins ties in longest-match (§4.3
	// step 5), so roots must be walked in declaration order.
	sort.Slice(roots, func(i, j int) bool { return roots[i].kind < roots[j].kind })
	for _, n := range nodes {
		sort.Slice(n.children, func(i, j int) bool { return n.children[i].kind < n.children[j].kind })
	}

	return &Forest{set: set, roots: roots}, nil
}
