// Package automaton builds the canonical LR(0) automaton from an elaborated
// ruleset.Set and compiles it into a dense SLR(1) action/goto table (§4.5).
package automaton

import (
	"fmt"
	"sort"

	"github.com/dekarrin/gudgeon/ruleset"
)

// Item is one LR(0) item: a rule together with a dot position in its steps.
// dot == len(rule.Steps) marks a complete item, eligible for reduction.
type Item struct {
	Rule ruleset.EntityID
	Dot  int
}

func (i Item) key() string { return fmt.Sprintf("%d.%d", i.Rule, i.Dot) }

// itemSet is a canonical, hash-consable LR(0) state: a sorted, deduplicated
// list of items.
type itemSet []Item

func newItemSet(items []Item) itemSet {
	seen := map[Item]bool{}
	var out itemSet
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Rule != out[b].Rule {
			return out[a].Rule < out[b].Rule
		}
		return out[a].Dot < out[b].Dot
	})
	return out
}

// key is the canonical string used to hash-cons states during construction.
func (s itemSet) key() string {
	b := make([]byte, 0, len(s)*8)
	for _, it := range s {
		b = append(b, it.key()...)
		b = append(b, '|')
	}
	return string(b)
}

// closure computes the closure of items under rs: repeatedly, for every item
// whose step at the dot is non-terminal, add a zero-dot item for every rule
// in that step's sources (§4.5 "Closure").
func closure(rs *ruleset.Set, items []Item) itemSet {
	seen := map[Item]bool{}
	var queue []Item
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			queue = append(queue, it)
		}
	}

	for i := 0; i < len(queue); i++ {
		it := queue[i]
		rule := rs.Rule(it.Rule)
		if it.Dot >= len(rule.Steps) {
			continue
		}
		step := rule.Steps[it.Dot]
		if step.IsTerminal {
			continue
		}
		for _, src := range step.Sources {
			cand := Item{Rule: src, Dot: 0}
			if !seen[cand] {
				seen[cand] = true
				queue = append(queue, cand)
			}
		}
	}

	return newItemSet(queue)
}

// gotoSet computes Goto(state, entity): the closure of advancing the dot in
// every item of state whose current step accepts entity (§4.5 "Goto").
func gotoSet(rs *ruleset.Set, state itemSet, entity ruleset.EntityID) itemSet {
	var advanced []Item
	for _, it := range state {
		rule := rs.Rule(it.Rule)
		if it.Dot >= len(rule.Steps) {
			continue
		}
		step := rule.Steps[it.Dot]
		for _, src := range step.Sources {
			if src == entity {
				advanced = append(advanced, Item{Rule: it.Rule, Dot: it.Dot + 1})
				break
			}
		}
	}
	if len(advanced) == 0 {
		return nil
	}
	return closure(rs, advanced)
}
