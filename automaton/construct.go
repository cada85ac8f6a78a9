package automaton

import (
	"fmt"

	"github.com/dekarrin/gudgeon/ruleset"
)

// Construct builds the canonical LR(0) automaton over rs's initial rules and
// compiles it into a dense SLR(1) action table (§4.5).
//
// Conflict policy: a shift is always preferred over a competing reduce (the
// commonly useful resolution for dangling-else and infix-operator
// grammars); a reduce/reduce conflict on the *same* rule is idempotent and
// ignored. A reduce/reduce conflict between *different* rules fails
// construction outright — per §9's open-question guidance, this library
// takes the safer of the two sanctioned choices rather than silently
// keeping the first-declared rule, since a silent reduce/reduce conflict
// almost always indicates an ambiguous grammar the author did not intend.
func Construct(rs *ruleset.Set) (*Table, error) {
	initialItems := make([]Item, 0, len(rs.InitialRules()))
	for _, r := range rs.InitialRules() {
		initialItems = append(initialItems, Item{Rule: r, Dot: 0})
	}
	if len(initialItems) == 0 {
		return nil, fmt.Errorf("automaton: no rule produces the root type at an acceptable rank")
	}

	start := closure(rs, initialItems)

	stateKeys := map[string]int{}
	states := []itemSet{nil} // index 0 unused; states numbered from 1
	states = append(states, start)
	stateKeys[start.key()] = 1

	entityCount := rs.EntityCount()

	// BFS over states, discovering new ones via goto.
	for i := 1; i < len(states); i++ {
		if len(states) > maxStates {
			return nil, fmt.Errorf("automaton: grammar requires more than %d states", maxStates)
		}
		state := states[i]
		for e := 0; e < entityCount; e++ {
			target := gotoSet(rs, state, ruleset.EntityID(e))
			if target == nil {
				continue
			}
			key := target.key()
			if _, ok := stateKeys[key]; !ok {
				states = append(states, target)
				stateKeys[key] = len(states) - 1
			}
		}
	}

	stateCount := len(states) - 1
	if stateCount > maxStates {
		return nil, fmt.Errorf("automaton: grammar requires more than %d states", maxStates)
	}

	table := &Table{
		EntityCount:  entityCount,
		TokenCount:   rs.TokenCount,
		StateCount:   stateCount,
		Actions:      make([]int16, stateCount*entityCount),
		ContextTags:  make([][]int, stateCount),
		InitialState: 1,
	}

	for i := 1; i <= stateCount; i++ {
		state := states[i]

		// shifts and gotos
		for e := 0; e < entityCount; e++ {
			target := gotoSet(rs, state, ruleset.EntityID(e))
			if target == nil {
				continue
			}
			targetState := stateKeys[target.key()]
			table.setAction(i, e, int16(targetState))
		}

		// reduces
		for _, it := range state {
			rule := rs.Rule(it.Rule)
			if it.Dot != len(rule.Steps) {
				continue
			}
			for _, t := range rule.ReducingTokens.Elements() {
				e := int(t)
				existing := table.Action(i, e)
				if existing > 0 {
					continue // shift wins
				}
				if existing < 0 {
					if -existing == int(it.Rule) {
						continue // idempotent
					}
					return nil, fmt.Errorf("automaton: reduce/reduce conflict in state %d on token %d between rules %d and %d", i, e, -existing, it.Rule)
				}
				table.setAction(i, e, int16(-int(it.Rule)))
			}
		}

		table.ContextTags[i-1] = collectContextTags(rs, state)
	}

	return table, nil
}

// collectContextTags gathers the deduplicated context tags visible from
// state's items: a step-level tag where present, else the owning rule's tag
// (§4.5 "Context tags per state").
func collectContextTags(rs *ruleset.Set, state itemSet) []int {
	seen := map[int]bool{}
	var tags []int
	add := func(tag *int) {
		if tag == nil || seen[*tag] {
			return
		}
		seen[*tag] = true
		tags = append(tags, *tag)
	}

	for _, it := range state {
		rule := rs.Rule(it.Rule)
		if it.Dot < len(rule.Steps) && rule.Steps[it.Dot].Tag != nil {
			add(rule.Steps[it.Dot].Tag)
		} else {
			add(rule.ContextTag)
		}
	}
	return tags
}
