package automaton

import (
	"fmt"

	"github.com/dekarrin/rosed"
)

// maxStates is the largest state count the dense int16 action table can
// address (§4.5 "Size bound").
const maxStates = 32767

// Table is the compiled SLR(1) action/goto table: a dense matrix indexed by
// (state-1)*EntityCount+entity. A positive value shifts to that state; a
// negative value reduces by rule -value; zero is an error. State 0 is
// reserved and never appears as a current state; real states are numbered
// from 1.
type Table struct {
	EntityCount int
	TokenCount  int
	StateCount  int
	Actions     []int16

	// ContextTags holds, for each state (indexed by state-1), the
	// deduplicated context tags collected from its items (§4.5 "Context
	// tags per state").
	ContextTags [][]int

	// InitialState is the state number the parse interpreter starts in.
	InitialState int
}

// Action returns the raw action cell for (state, entity).
func (t *Table) Action(state int, entity int) int16 {
	return t.Actions[(state-1)*t.EntityCount+entity]
}

func (t *Table) setAction(state, entity int, value int16) {
	t.Actions[(state-1)*t.EntityCount+entity] = value
}

// String renders the table as a rosed-formatted grid, one row per state and
// one column per entity, for diagnostic dumps (grounded on the teacher's
// slrTable.String, which renders the same shape via rosed.InsertTableOpts).
func (t *Table) String() string {
	header := []string{"state"}
	for e := 0; e < t.EntityCount; e++ {
		header = append(header, fmt.Sprintf("%d", e))
	}

	data := [][]string{header}
	for s := 1; s <= t.StateCount; s++ {
		row := []string{fmt.Sprintf("%d", s)}
		for e := 0; e < t.EntityCount; e++ {
			act := t.Action(s, e)
			cell := ""
			switch {
			case act > 0:
				cell = fmt.Sprintf("s%d", act)
			case act < 0:
				cell = fmt.Sprintf("r%d", -act)
			}
			row = append(row, cell)
		}
		data = append(data, row)
	}

	return rosed.Edit("").InsertTableOpts(0, data, 20, rosed.Options{
		TableHeaders:             true,
		NoTrailingLineSeparators: true,
	}).String()
}
