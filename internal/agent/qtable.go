package agent

import (
	"expvar"
	"sort"

	"blackjack_ai/internal/domain"
)

var numStates = expvar.NewInt("q_table_states")

// State is the key of the table: the agent's view of one hand.
type State = domain.Observation

// Values holds one estimate per action, indexed by domain.Action.
type Values [domain.NumActions]float64

// Best returns the greedy action. Ties go to the lowest index, so Stand
// wins an even row.
func (v Values) Best() domain.Action {
	best := 0
	for a := 1; a < len(v); a++ {
		if v[a] > v[best] {
			best = a
		}
	}
	return domain.Action(best)
}

func (v Values) Max() float64 {
	return v[v.Best()]
}

// QTable maps states to action values. Rows are created on first
// reference with every value at zero.
type QTable struct {
	rows map[State]*Values
}

func NewQTable() *QTable {
	return &QTable{rows: make(map[State]*Values)}
}

// Row returns the row for s, inserting a zero row on a miss.
func (t *QTable) Row(s State) *Values {
	row, ok := t.rows[s]
	if !ok {
		row = &Values{}
		t.rows[s] = row
		numStates.Set(int64(len(t.rows)))
	}
	return row
}

// Lookup reads a row without inserting. Unseen states read as zero.
func (t *QTable) Lookup(s State) (Values, bool) {
	row, ok := t.rows[s]
	if !ok {
		return Values{}, false
	}
	return *row, true
}

func (t *QTable) Set(s State, v Values) {
	*t.Row(s) = v
}

func (t *QTable) Len() int {
	return len(t.rows)
}

// States returns every stored state ordered by hand value, upcard, then
// usable ace.
func (t *QTable) States() []State {
	out := make([]State, 0, len(t.rows))
	for s := range t.rows {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.HandValue != b.HandValue {
			return a.HandValue < b.HandValue
		}
		if a.DealerUpcard != b.DealerUpcard {
			return a.DealerUpcard < b.DealerUpcard
		}
		return !a.UsableAce && b.UsableAce
	})
	return out
}

// Iterate calls fn for each row in States order.
func (t *QTable) Iterate(fn func(s State, v Values)) {
	for _, s := range t.States() {
		fn(s, *t.rows[s])
	}
}
