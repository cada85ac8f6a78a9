package ruleset

import (
	"fmt"

	"github.com/dekarrin/gudgeon/internal/util"
	"github.com/dekarrin/gudgeon/token"
)

// pendingSource marks a step whose Sources still need to be resolved once
// every rule (including list auxiliary rules) has been assigned a final id:
// a non-terminal or list-element parameter may reference a result type
// produced by a rule declared later in the list, or by a rule synthesized
// from a different list construct.
type pendingSource struct {
	ruleIdx    int
	stepIdx    int
	resultType string
	maxRank    int
}

type listKey struct {
	elemType string
	maxRank  int
	hasSep   bool
	sep      token.Kind
	hasTerm  bool
	term     token.Kind
}

type listConstruct struct {
	endID, loopID EntityID
}

// elaborator holds the working state of one Elaborate call.
type elaborator struct {
	tokens *token.Set
	out    *Set

	maxRankByType map[string]int
	knownTypes    map[string]bool

	pending []pendingSource
	lists   map[listKey]*listConstruct
}

// Elaborate expands decl into a flat Set of rules, resolving ranked-type
// references, list repetitions, and starting/reducing token sets (§4.4).
func Elaborate(tokens *token.Set, decl Declaration) (*Set, error) {
	e := &elaborator{
		tokens:        tokens,
		out:           &Set{TokenCount: tokens.Len(), RootType: decl.RootType, RootMaxRank: decl.RootMaxRank},
		maxRankByType: map[string]int{},
		knownTypes:    map[string]bool{},
		lists:         map[listKey]*listConstruct{},
	}

	for _, dr := range decl.Rules {
		e.knownTypes[dr.ResultType] = true
		if dr.Rank > e.maxRankByType[dr.ResultType] {
			e.maxRankByType[dr.ResultType] = dr.Rank
		}
	}

	for _, dr := range decl.Rules {
		for _, p := range dr.Params {
			switch p.Kind {
			case ParamTerminal:
				// always acceptable; nothing to validate against knownTypes.
			case ParamNonTerminal:
				if !e.knownTypes[p.NonTerminal.ResultType] {
					return nil, fmt.Errorf("rule producing %q: unknown non-terminal type %q", dr.ResultType, p.NonTerminal.ResultType)
				}
			case ParamList:
				if !e.knownTypes[p.List.ElementType] {
					return nil, fmt.Errorf("rule producing %q: list parameter element type %q is not a known result type", dr.ResultType, p.List.ElementType)
				}
			default:
				return nil, fmt.Errorf("rule producing %q: parameter is neither terminal, non-terminal, nor list", dr.ResultType)
			}
		}
	}

	for _, dr := range decl.Rules {
		if err := e.expandDeclared(dr); err != nil {
			return nil, err
		}
	}

	e.resolvePending()

	e.computeFirstFollow()

	return e.out, nil
}

// nextID returns the EntityID the next-appended rule will receive.
func (e *elaborator) nextID() EntityID {
	return EntityID(e.out.TokenCount + len(e.out.Rules))
}

func (e *elaborator) resolvedMaxRank(resultType string, declared int) int {
	if declared >= 0 {
		return declared
	}
	return e.maxRankByType[resultType]
}

// resolvePending runs after all rules exist, replacing each pending entry
// with the Sources slice of every rule producing its type at an allowed rank.
func (e *elaborator) resolvePending() {
	byType := map[string]map[int][]EntityID{}
	for _, r := range e.out.Rules {
		if r.IsListEnd || r.IsListLoop {
			continue
		}
		if byType[r.ResultType] == nil {
			byType[r.ResultType] = map[int][]EntityID{}
		}
		byType[r.ResultType][r.Rank] = append(byType[r.ResultType][r.Rank], r.ID)
	}

	for _, p := range e.pending {
		var sources []EntityID
		for rank := 0; rank <= p.maxRank; rank++ {
			sources = append(sources, byType[p.resultType][rank]...)
		}
		e.out.Rules[p.ruleIdx].Steps[p.stepIdx].Sources = sources
	}
}

// expandDeclared synthesizes one rule per subset of dr's optional
// parameters (§4.4 Pass 2).
func (e *elaborator) expandDeclared(dr DeclaredRule) error {
	var optionalIdx []int
	for i, p := range dr.Params {
		switch p.Kind {
		case ParamTerminal:
			if p.Terminal.Optional {
				optionalIdx = append(optionalIdx, i)
			}
		case ParamNonTerminal:
			if p.NonTerminal.Optional {
				optionalIdx = append(optionalIdx, i)
			}
		case ParamList:
			if p.List.Min == 0 {
				optionalIdx = append(optionalIdx, i)
			}
		}
	}

	variants := 1 << uint(len(optionalIdx))
	for mask := 0; mask < variants; mask++ {
		provided := make([]bool, len(dr.Params))
		for i := range provided {
			provided[i] = true
		}
		for bit, idx := range optionalIdx {
			if mask&(1<<uint(bit)) == 0 {
				provided[idx] = false
			}
		}
		if err := e.synthesizeVariant(dr, provided); err != nil {
			return err
		}
	}
	return nil
}

func (e *elaborator) synthesizeVariant(dr DeclaredRule, provided []bool) error {
	id := e.nextID()

	paramKinds := make([]ParamKind, len(dr.Params))
	for i, p := range dr.Params {
		paramKinds[i] = p.Kind
	}

	rule := Rule{
		ID:         id,
		ResultType: dr.ResultType,
		Rank:       dr.Rank,
		ContextTag: dr.ContextTag,
		Provided:   provided,
		Method:     dr.Method,
		ParamKinds: paramKinds,
	}

	ruleIdx := len(e.out.Rules)
	// append first so pending entries can reference ruleIdx/stepIdx safely
	// even though Steps is filled in below.
	e.out.Rules = append(e.out.Rules, rule)

	var steps []RuleStep
	var stepParamIdx []int
	for i, p := range dr.Params {
		if !provided[i] {
			continue
		}
		switch p.Kind {
		case ParamTerminal:
			expanded := e.tokens.ExpandPublic(p.Terminal.Tokens)
			sources := make([]EntityID, len(expanded))
			for j, k := range expanded {
				sources[j] = EntityID(k)
			}
			steps = append(steps, RuleStep{Sources: sources, IsTerminal: true, Want: p.Terminal.Want})
		case ParamNonTerminal:
			stepIdx := len(steps)
			steps = append(steps, RuleStep{IsTerminal: false})
			e.pending = append(e.pending, pendingSource{
				ruleIdx: ruleIdx, stepIdx: stepIdx,
				resultType: p.NonTerminal.ResultType,
				maxRank:    e.resolvedMaxRank(p.NonTerminal.ResultType, p.NonTerminal.MaxRank),
			})
		case ParamList:
			lc, err := e.getOrBuildListConstruct(*p.List)
			if err != nil {
				return err
			}
			entry := e.listEntrySources(*p.List, lc)
			steps = append(steps, RuleStep{Sources: entry, IsTerminal: false, IsList: true})
		}
		stepParamIdx = append(stepParamIdx, i)
	}

	e.out.Rules[ruleIdx].Steps = steps
	e.out.Rules[ruleIdx].ProvidedParamIndex = stepParamIdx
	return nil
}

// listKeyOf builds the dedup key for a list spec's END/LOOP auxiliary rules;
// Min does not participate, since only the entry point into the construct
// (not the construct itself) depends on Min.
func listKeyOf(spec ListSpec) listKey {
	k := listKey{elemType: spec.ElementType, maxRank: spec.MaxRank}
	if spec.Separator != nil {
		k.hasSep, k.sep = true, *spec.Separator
	}
	if spec.Terminator != nil {
		k.hasTerm, k.term = true, *spec.Terminator
	}
	return k
}

// getOrBuildListConstruct returns the (possibly newly synthesized) LIST_END
// / LIST_LOOP rule pair for spec's element type, separator, and terminator,
// hash-consing on repeat requests (§4.4 "List repetition").
func (e *elaborator) getOrBuildListConstruct(spec ListSpec) (*listConstruct, error) {
	key := listKeyOf(spec)
	if existing, ok := e.lists[key]; ok {
		return existing, nil
	}

	maxRank := e.resolvedMaxRank(spec.ElementType, spec.MaxRank)

	endID := e.nextID()
	endIdx := len(e.out.Rules)
	e.out.Rules = append(e.out.Rules, Rule{ID: endID, IsListEnd: true, ElementType: spec.ElementType})

	loopID := e.nextID()
	loopIdx := len(e.out.Rules)
	e.out.Rules = append(e.out.Rules, Rule{ID: loopID, IsListLoop: true, ElementType: spec.ElementType})

	lc := &listConstruct{endID: endID, loopID: loopID}
	e.lists[key] = lc

	elemStep := RuleStep{IsTerminal: false}
	e.pending = append(e.pending, pendingSource{ruleIdx: endIdx, stepIdx: 0, resultType: spec.ElementType, maxRank: maxRank})
	endSteps := []RuleStep{elemStep}
	if spec.Terminator != nil {
		endSteps = append(endSteps, RuleStep{IsTerminal: true, Sources: []EntityID{EntityID(*spec.Terminator)}})
	}
	e.out.Rules[endIdx].Steps = endSteps

	loopElemStep := RuleStep{IsTerminal: false}
	e.pending = append(e.pending, pendingSource{ruleIdx: loopIdx, stepIdx: 0, resultType: spec.ElementType, maxRank: maxRank})
	loopSteps := []RuleStep{loopElemStep}
	if spec.Separator != nil {
		loopSteps = append(loopSteps, RuleStep{IsTerminal: true, Sources: []EntityID{EntityID(*spec.Separator)}})
	} else if spec.Terminator != nil {
		loopSteps = append(loopSteps, RuleStep{IsTerminal: true, Sources: []EntityID{EntityID(*spec.Terminator)}})
	}
	loopSteps = append(loopSteps, RuleStep{IsTerminal: false, Sources: []EntityID{endID, loopID}})
	e.out.Rules[loopIdx].Steps = loopSteps

	return lc, nil
}

// listEntrySources picks the step sources a list parameter's own step uses
// to enter the construct, honoring Min: Min <= 1 enters at LIST_END or
// LIST_LOOP, Min == 2 enters at LIST_LOOP, and Min >= 3 enters through one
// init rule that unrolls Min-2 leading elements (see buildListInit).
func (e *elaborator) listEntrySources(spec ListSpec, lc *listConstruct) []EntityID {
	switch {
	case spec.Min <= 1:
		return []EntityID{lc.endID, lc.loopID}
	case spec.Min == 2:
		return []EntityID{lc.loopID}
	default:
		initID := e.buildListInit(spec, lc)
		return []EntityID{initID}
	}
}

// buildListInit synthesizes a non-reused rule unrolling Min-2 leading
// elements before requiring the loop construct (which already guarantees
// >= 2 elements), giving >= Min total.
func (e *elaborator) buildListInit(spec ListSpec, lc *listConstruct) EntityID {
	maxRank := e.resolvedMaxRank(spec.ElementType, spec.MaxRank)
	initID := e.nextID()
	initIdx := len(e.out.Rules)
	e.out.Rules = append(e.out.Rules, Rule{ID: initID, IsListEnd: false, IsListLoop: true, ElementType: spec.ElementType})

	var steps []RuleStep
	for i := 0; i < spec.Min-2; i++ {
		stepIdx := len(steps)
		steps = append(steps, RuleStep{IsTerminal: false})
		e.pending = append(e.pending, pendingSource{ruleIdx: initIdx, stepIdx: stepIdx, resultType: spec.ElementType, maxRank: maxRank})
		if spec.Separator != nil {
			steps = append(steps, RuleStep{IsTerminal: true, Sources: []EntityID{EntityID(*spec.Separator)}})
		}
	}
	steps = append(steps, RuleStep{IsTerminal: false, Sources: []EntityID{lc.loopID}})
	e.out.Rules[initIdx].Steps = steps
	return initID
}

// computeFirstFollow runs Pass 3: starting_tokens by fixed-point propagation
// through non-terminal first steps, then reducing_tokens (follow sets) via
// the consecutive-step propagation rule, both iterated to a fixed point.
func (e *elaborator) computeFirstFollow() {
	rules := e.out.Rules

	for i := range rules {
		rules[i].StartingTokens = util.NewSet[token.Kind]()
		if len(rules[i].Steps) > 0 && rules[i].Steps[0].IsTerminal {
			for _, src := range rules[i].Steps[0].Sources {
				rules[i].StartingTokens.Add(token.Kind(src))
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for i := range rules {
			if len(rules[i].Steps) == 0 || rules[i].Steps[0].IsTerminal {
				continue
			}
			before := rules[i].StartingTokens.Len()
			for _, sid := range rules[i].Steps[0].Sources {
				src := e.out.Rule(sid)
				rules[i].StartingTokens.AddAll(src.StartingTokens)
			}
			if rules[i].StartingTokens.Len() != before {
				changed = true
			}
		}
	}

	for i := range rules {
		rules[i].ReducingTokens = util.NewSet[token.Kind]()
		rules[i].ReducingTokens.Add(e.tokens.EndOfStream())
	}

	for changed := true; changed; {
		changed = false
		for i := range rules {
			steps := rules[i].Steps
			for stepIdx := 0; stepIdx+1 < len(steps); stepIdx++ {
				cur := steps[stepIdx]
				if cur.IsTerminal {
					continue
				}
				next := steps[stepIdx+1]
				var follow util.Set[token.Kind]
				if next.IsTerminal {
					follow = util.NewSet[token.Kind]()
					for _, src := range next.Sources {
						follow.Add(token.Kind(src))
					}
				} else {
					follow = util.NewSet[token.Kind]()
					for _, sid := range next.Sources {
						follow.AddAll(e.out.Rule(sid).StartingTokens)
					}
				}
				for _, sid := range cur.Sources {
					idx := e.out.RuleIndex(sid)
					before := rules[idx].ReducingTokens.Len()
					rules[idx].ReducingTokens.AddAll(follow)
					if rules[idx].ReducingTokens.Len() != before {
						changed = true
					}
				}
			}

			if len(steps) > 0 {
				last := steps[len(steps)-1]
				if !last.IsTerminal {
					for _, sid := range last.Sources {
						idx := e.out.RuleIndex(sid)
						before := rules[idx].ReducingTokens.Len()
						rules[idx].ReducingTokens.AddAll(rules[i].ReducingTokens)
						if rules[idx].ReducingTokens.Len() != before {
							changed = true
						}
					}
				}
			}
		}
	}
}
