// Package langedit implements the context-evaluation surface described in
// §6 "External interfaces": a companion entry point that runs the shift/
// reduce interpreter in "no-reduction" mode up to a given byte offset, for
// editor tooling (auto-completion, hover, live diagnostics) that needs to
// know what state the grammar is in at the cursor without caring about the
// semantic values a full parse would produce.
//
// No-reduction mode performs every shift and every state/goto transition a
// real parse would, so the reported state is exact, but it never invokes a
// rule's reduction callback — callbacks are host-supplied code that may be
// arbitrarily expensive or side-effecting, and an editor re-evaluating
// context on every keystroke cannot afford to run it.
package langedit

import (
	"github.com/google/uuid"

	"github.com/dekarrin/gudgeon/automaton"
	"github.com/dekarrin/gudgeon/internal/util"
	"github.com/dekarrin/gudgeon/lexer"
	"github.com/dekarrin/gudgeon/ruleset"
	"github.com/dekarrin/gudgeon/token"
)

// ShiftOption describes one terminal that could be shifted from the state
// evaluation stopped in, and the context tags of the state shifting it
// would reach.
type ShiftOption struct {
	Kind        token.Kind
	ResultState int
	ContextTags []int
}

// Result is everything the context-evaluation surface reports about the
// state reached at (or just before) a requested byte offset.
type Result struct {
	// CorrelationID tags this evaluation request for editor-tooling logs,
	// independent of any particular buffer or cursor position.
	CorrelationID string

	// ContextStack is the context tags of every state above the cursor,
	// oldest (outermost) first, ending with the state evaluation stopped
	// in.
	ContextStack []int

	// StateTags is the context tag list of the state evaluation stopped in.
	StateTags []int

	// Shiftable is the set of terminals that could be shifted from the
	// state evaluation stopped in, each paired with the context it would
	// lead to.
	Shiftable []ShiftOption

	// LastToken is the last token actually shifted before evaluation
	// stopped, or nil if none was (the offset fell before the first
	// token).
	LastToken *lexer.Token

	// StoppedOnError is true if evaluation stopped because the next token
	// to shift had no valid action in the current state (action == 0),
	// rather than because the requested offset was reached.
	StoppedOnError bool
}

// Evaluator runs the context-evaluation surface over a fixed grammar
// (tokens, elaborated rules, and compiled table), mirroring parse.Parser's
// shape but never invoking a reduction callback.
type Evaluator struct {
	Tokens *token.Set
	Rules  *ruleset.Set
	Table  *automaton.Table
}

// New returns an Evaluator for the given compiled grammar.
func New(tokens *token.Set, rules *ruleset.Set, table *automaton.Table) *Evaluator {
	return &Evaluator{Tokens: tokens, Rules: rules, Table: table}
}

// Evaluate drives the no-reduction interpreter over toks, stopping before
// shifting the first token whose start offset is >= offset (the reductions
// that token triggers as lookahead are still performed, as in a real parse),
// or at the first unrecoverable (state, token) pair, whichever comes first,
// and reports the resulting Result.
func (e *Evaluator) Evaluate(toks []lexer.Token, offset int) *Result {
	result := &Result{CorrelationID: uuid.New().String()}

	state := e.Table.InitialState
	var stateStack util.Stack[int]

	// contextStack holds one entry per stacked state (mirroring
	// stateStack's depth exactly, plus the current state), each entry
	// being that state's own context tag list; flattened together these
	// form the reported ContextStack.
	var contextStack util.Stack[[]int]
	contextStack.Push(e.Table.ContextTags[state-1])

	tokPos := 0
	for tokPos < len(toks) {
		tok := toks[tokPos]
		action := e.Table.Action(state, int(tok.Kind))
		if tok.Start >= offset && action >= 0 {
			break
		}

		if action == 0 {
			result.StoppedOnError = true
			break
		}

		if action > 0 {
			stateStack.Push(state)
			state = int(action)
			contextStack.Push(e.Table.ContextTags[state-1])
			lastTok := tok
			result.LastToken = &lastTok
			tokPos++
			continue
		}

		// reduce: pop n-1 states (no value-stack bookkeeping needed since
		// no callback will ever run), then goto on the rule id.
		ruleID := ruleset.EntityID(-action)
		rule := e.Rules.Rule(ruleID)
		n := len(rule.Steps)

		// n == 0 is a zero-width reduction: nothing was ever pushed for it,
		// so the goto is taken from the current state directly and no
		// contextStack entry is popped, only the new one pushed.
		if n == 0 {
			stateStack.Push(state)
			gotoAction := e.Table.Action(state, int(ruleID))
			state = int(gotoAction)
			contextStack.Push(e.Table.ContextTags[state-1])
			continue
		}

		for j := 0; j < n-1; j++ {
			stateStack.Pop()
			contextStack.Pop()
		}

		newTop := stateStack.Peek()
		gotoAction := e.Table.Action(newTop, int(ruleID))
		state = int(gotoAction)
		contextStack.Pop()
		contextStack.Push(e.Table.ContextTags[state-1])
	}

	result.ContextStack = flattenContextStack(contextStack.Of)
	result.StateTags = append([]int(nil), e.Table.ContextTags[state-1]...)
	result.Shiftable = e.shiftableFrom(state)

	return result
}

func flattenContextStack(levels [][]int) []int {
	var flat []int
	for _, tags := range levels {
		flat = append(flat, tags...)
	}
	return flat
}

func (e *Evaluator) shiftableFrom(state int) []ShiftOption {
	var options []ShiftOption
	for t := 0; t < e.Table.TokenCount; t++ {
		a := e.Table.Action(state, t)
		if a <= 0 {
			continue
		}
		options = append(options, ShiftOption{
			Kind:        token.Kind(t),
			ResultState: int(a),
			ContextTags: append([]int(nil), e.Table.ContextTags[a-1]...),
		})
	}
	return options
}
