// Package table runs one player's game against the dealer with the learned
// agent playing its own hand alongside.
package table

import (
	"errors"
	"fmt"

	"blackjack_ai/internal/domain"
)

var (
	ErrNoGame    = errors.New("no active game")
	ErrRoundOver = errors.New("round is over")
)

// Policy chooses the AI's action. *agent.QLearner satisfies it.
type Policy interface {
	GetAction(s domain.Observation, explore bool) domain.Action
}

// maxAIDraws bounds the AI turn. A hand reaches 21 within 11 cards, so
// this is only hit by a policy that keeps hitting on a done hand.
const maxAIDraws = 12

// Table is one game session. It is not safe for concurrent use.
type Table struct {
	env    *domain.Environment
	policy Policy

	started bool
	done    bool
	reward  domain.Reward
	aiDone  bool
	// dealerPlayed is set once the player stands. A bust ends the round
	// without the dealer acting, so the hole card stays down.
	dealerPlayed bool
}

func New(env *domain.Environment, policy Policy) *Table {
	return &Table{env: env, policy: policy}
}

// NewGame deals a fresh round and lets the AI make its opening decision.
func (t *Table) NewGame() (View, error) {
	t.env.Reset()
	t.started = true
	t.done = false
	t.reward = domain.Push
	t.aiDone = false
	t.dealerPlayed = false
	if err := t.aiDecide(); err != nil {
		return View{}, err
	}
	return t.View(), nil
}

// Hit draws for the player. If the player survives the AI decides once.
func (t *Table) Hit() (View, error) {
	if err := t.playable(); err != nil {
		return View{}, err
	}
	_, reward, done, err := t.env.Step(domain.Hit)
	if err != nil {
		return View{}, err
	}
	t.reward, t.done = reward, done
	if !done {
		if err := t.aiDecide(); err != nil {
			return View{}, err
		}
	}
	return t.View(), nil
}

// Stand ends the player's turn, plays the dealer out and then lets the AI
// finish its hand.
func (t *Table) Stand() (View, error) {
	if err := t.playable(); err != nil {
		return View{}, err
	}
	_, reward, done, err := t.env.Step(domain.Stand)
	if err != nil {
		return View{}, err
	}
	t.reward, t.done = reward, done
	t.dealerPlayed = true
	if err := t.aiFinish(); err != nil {
		return View{}, err
	}
	return t.View(), nil
}

// Act applies an action by value.
func (t *Table) Act(a domain.Action) (View, error) {
	switch a {
	case domain.Hit:
		return t.Hit()
	case domain.Stand:
		return t.Stand()
	}
	return View{}, fmt.Errorf("%w: %d", domain.ErrInvalidAction, int(a))
}

func (t *Table) playable() error {
	if !t.started {
		return ErrNoGame
	}
	if t.done {
		return ErrRoundOver
	}
	return nil
}

// aiDecide asks the policy once and draws a card if it hits.
func (t *Table) aiDecide() error {
	if t.aiDone {
		return nil
	}
	if t.policy.GetAction(t.env.Observe(domain.SeatAI), false) != domain.Hit {
		return nil
	}
	_, _, done, err := t.env.AIStep()
	if err != nil {
		return err
	}
	t.aiDone = done
	return nil
}

// aiFinish keeps drawing for the AI until it stands or reaches 21.
func (t *Table) aiFinish() error {
	for i := 0; i < maxAIDraws && !t.aiDone; i++ {
		if t.policy.GetAction(t.env.Observe(domain.SeatAI), false) != domain.Hit {
			break
		}
		_, _, done, err := t.env.AIStep()
		if err != nil {
			return err
		}
		t.aiDone = done
	}
	t.aiDone = true
	return nil
}

// Started reports whether NewGame has been called.
func (t *Table) Started() bool {
	return t.started
}

// View is the visible state of the table. The dealer's hole card stays
// hidden until the dealer has played.
type View struct {
	PlayerHand  []string `json:"player_hand"`
	DealerHand  []string `json:"dealer_hand"`
	AIHand      []string `json:"ai_hand"`
	PlayerValue int      `json:"player_value"`
	DealerValue int      `json:"dealer_value"`
	AIValue     int      `json:"ai_value"`
	Done        bool     `json:"done"`
	Reward      int      `json:"reward"`
	AIDone      bool     `json:"ai_done"`
}

func (t *Table) View() View {
	if !t.started {
		return View{}
	}
	dealer := t.env.Hand(domain.SeatDealer)
	if !t.dealerPlayed && len(dealer) > 0 {
		dealer = dealer[:1]
	}
	return View{
		PlayerHand:  t.env.Hand(domain.SeatPlayer).Strings(),
		DealerHand:  dealer.Strings(),
		AIHand:      t.env.Hand(domain.SeatAI).Strings(),
		PlayerValue: t.env.Value(domain.SeatPlayer),
		DealerValue: dealer.Value(),
		AIValue:     t.env.Value(domain.SeatAI),
		Done:        t.done,
		Reward:      int(t.reward),
		AIDone:      t.aiDone,
	}
}
