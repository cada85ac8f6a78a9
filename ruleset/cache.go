package ruleset

import (
	"fmt"

	"github.com/dekarrin/rezi"

	"github.com/dekarrin/gudgeon/internal/util"
	"github.com/dekarrin/gudgeon/token"
)

// snapshotRule is the binary-serializable shadow of a Rule: everything
// except its ReduceFunc, which cannot survive a round trip through storage
// and must be re-attached by the caller after loading (§4.4 lifecycle note:
// "rules are immutable thereafter").
type snapshotRule struct {
	ID         int
	ResultType string
	Rank       int
	HasTag     bool
	ContextTag int
	Steps      []snapshotStep
	Provided   []bool

	IsListEnd   bool
	IsListLoop  bool
	ElementType string

	StartingTokens []int
	ReducingTokens []int
}

type snapshotStep struct {
	Sources    []int
	IsTerminal bool
	HasTag     bool
	Tag        int
}

type snapshot struct {
	TokenCount  int
	RootType    string
	RootMaxRank int
	Rules       []snapshotRule
}

// EncodeCache serializes s's structural shape (everything but the reduction
// callbacks) for reuse across process runs, grounded on the teacher's use of
// rezi.EncBinary for its own compiled-state cache (internal dao/sqlite
// session persistence).
func EncodeCache(s *Set) []byte {
	snap := snapshot{TokenCount: s.TokenCount, RootType: s.RootType, RootMaxRank: s.RootMaxRank}
	for _, r := range s.Rules {
		sr := snapshotRule{
			ID: int(r.ID), ResultType: r.ResultType, Rank: r.Rank,
			Provided: r.Provided, IsListEnd: r.IsListEnd, IsListLoop: r.IsListLoop,
			ElementType: r.ElementType,
		}
		if r.ContextTag != nil {
			sr.HasTag = true
			sr.ContextTag = *r.ContextTag
		}
		for _, step := range r.Steps {
			ss := snapshotStep{IsTerminal: step.IsTerminal}
			for _, src := range step.Sources {
				ss.Sources = append(ss.Sources, int(src))
			}
			if step.Tag != nil {
				ss.HasTag = true
				ss.Tag = *step.Tag
			}
			sr.Steps = append(sr.Steps, ss)
		}
		for _, k := range r.StartingTokens.SortedElements(func(a, b token.Kind) bool { return a < b }) {
			sr.StartingTokens = append(sr.StartingTokens, int(k))
		}
		for _, k := range r.ReducingTokens.SortedElements(func(a, b token.Kind) bool { return a < b }) {
			sr.ReducingTokens = append(sr.ReducingTokens, int(k))
		}
		snap.Rules = append(snap.Rules, sr)
	}
	return rezi.EncBinary(snap)
}

// DecodeCache restores the structural shape of a cached Set. methods supplies
// the reduction callback for each rule by id (typically re-derived from the
// same Declaration the cache was originally built from); a missing entry
// leaves that rule's Method nil, which is only safe if the caller never
// reduces by that rule (e.g. a cache used solely for the context-evaluation
// surface's no-reduction mode).
func DecodeCache(data []byte, methods map[int]ReduceFunc) (*Set, error) {
	var snap snapshot
	if _, err := rezi.DecBinary(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding cached rule set: %w", err)
	}

	out := &Set{TokenCount: snap.TokenCount, RootType: snap.RootType, RootMaxRank: snap.RootMaxRank}
	for _, sr := range snap.Rules {
		r := Rule{
			ID: EntityID(sr.ID), ResultType: sr.ResultType, Rank: sr.Rank,
			Provided: sr.Provided, IsListEnd: sr.IsListEnd, IsListLoop: sr.IsListLoop,
			ElementType:    sr.ElementType,
			Method:         methods[sr.ID],
			StartingTokens: util.NewSet[token.Kind](),
			ReducingTokens: util.NewSet[token.Kind](),
		}
		if sr.HasTag {
			tag := sr.ContextTag
			r.ContextTag = &tag
		}
		for _, ss := range sr.Steps {
			step := RuleStep{IsTerminal: ss.IsTerminal}
			for _, src := range ss.Sources {
				step.Sources = append(step.Sources, EntityID(src))
			}
			if ss.HasTag {
				tag := ss.Tag
				step.Tag = &tag
			}
			r.Steps = append(r.Steps, step)
		}
		for _, k := range sr.StartingTokens {
			r.StartingTokens.Add(token.Kind(k))
		}
		for _, k := range sr.ReducingTokens {
			r.ReducingTokens.Add(token.Kind(k))
		}
		out.Rules = append(out.Rules, r)
	}
	return out, nil
}
