// Package agent implements a tabular Q-learning agent for the hit/stand
// decision and the loop that trains it against a domain.Environment.
package agent

import (
	"errors"
	"fmt"
	"math/rand"

	"blackjack_ai/internal/domain"
)

type Config struct {
	Epsilon float64 // exploration rate
	Alpha   float64 // learning rate
	Gamma   float64 // discount factor
}

func DefaultConfig() Config {
	return Config{Epsilon: 0.1, Alpha: 0.1, Gamma: 0.9}
}

func (c Config) Validate() error {
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("epsilon must be in [0,1], got %v", c.Epsilon)
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("alpha must be in (0,1], got %v", c.Alpha)
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("gamma must be in [0,1], got %v", c.Gamma)
	}
	return nil
}

// QLearner is an epsilon-greedy tabular Q-learning agent.
//
// Learn and exploring GetAction calls mutate the learner and must be
// serialised by the caller. Greedy GetAction calls only read the table and
// may run concurrently once training has stopped.
type QLearner struct {
	cfg   Config
	rng   *rand.Rand
	table *QTable
}

func New(cfg Config, rng *rand.Rand) *QLearner {
	if rng == nil {
		rng = domain.NewRNG(0)
	}
	return &QLearner{cfg: cfg, rng: rng, table: NewQTable()}
}

func (q *QLearner) Config() Config {
	return q.cfg
}

func (q *QLearner) Table() *QTable {
	return q.table
}

// SetTable swaps in a table, e.g. one loaded from Postgres.
func (q *QLearner) SetTable(t *QTable) {
	if t == nil {
		t = NewQTable()
	}
	q.table = t
}

// GetAction picks a uniformly random action with probability epsilon when
// explore is set, and the greedy action otherwise.
func (q *QLearner) GetAction(s State, explore bool) domain.Action {
	if explore && q.rng.Float64() < q.cfg.Epsilon {
		return domain.Action(q.rng.Intn(domain.NumActions))
	}
	v, _ := q.table.Lookup(s)
	return v.Best()
}

// Learn applies the one-step Q-learning update for a transition.
func (q *QLearner) Learn(s State, a domain.Action, r domain.Reward, next State) error {
	if !a.Valid() {
		return fmt.Errorf("%w: %d", domain.ErrInvalidAction, int(a))
	}
	target := float64(r) + q.cfg.Gamma*q.table.Row(next).Max()
	row := q.table.Row(s)
	row[a] += q.cfg.Alpha * (target - row[a])
	return nil
}

// ErrNoTable is returned when a named table does not exist in storage.
var ErrNoTable = errors.New("q-table not found")
