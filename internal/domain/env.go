package domain

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrInvalidAction is returned for any action outside {Stand, Hit}.
var ErrInvalidAction = errors.New("invalid action")

// ErrNotDealt is returned when stepping an environment before Reset.
var ErrNotDealt = errors.New("hand not dealt")

type Action int

const (
	Stand Action = 0
	Hit   Action = 1
)

// NumActions is the size of the action space.
const NumActions = 2

func (a Action) Valid() bool {
	return a == Stand || a == Hit
}

func (a Action) String() string {
	switch a {
	case Stand:
		return "stand"
	case Hit:
		return "hit"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ParseAction maps the wire names "stand" and "hit" to actions.
func ParseAction(s string) (Action, error) {
	switch s {
	case "stand":
		return Stand, nil
	case "hit":
		return Hit, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAction, s)
}

type Seat string

const (
	SeatPlayer Seat = "player"
	SeatDealer Seat = "dealer"
	SeatAI     Seat = "ai"
)

const dealerStandsOn = 17

// Environment is one blackjack episode: a player, a dealer, an autonomous
// AI hand and the deck they share. It is not safe for concurrent use.
type Environment struct {
	rng     *rand.Rand
	newDeck func() *Deck

	deck   *Deck
	player Hand
	dealer Hand
	ai     Hand
}

func NewEnvironment(rng *rand.Rand) *Environment {
	if rng == nil {
		rng = NewRNG(0)
	}
	e := &Environment{rng: rng}
	e.newDeck = func() *Deck { return NewDeck(e.rng) }
	return e
}

// Reset replaces the deck and all hands, deals two cards each to player,
// dealer and AI, and returns the player's observation.
func (e *Environment) Reset() Observation {
	e.deck = e.newDeck()
	e.player = Hand{e.deck.Draw(), e.deck.Draw()}
	e.dealer = Hand{e.deck.Draw(), e.deck.Draw()}
	e.ai = Hand{e.deck.Draw(), e.deck.Draw()}
	return e.Observe(SeatPlayer)
}

// Dealt reports whether Reset has been called.
func (e *Environment) Dealt() bool {
	return e.deck != nil
}

// Step applies the player's action. Standing ends the episode and plays
// out the dealer; hitting ends it only on a bust.
func (e *Environment) Step(a Action) (Observation, Reward, bool, error) {
	if !a.Valid() {
		return Observation{}, 0, false, fmt.Errorf("%w: %d", ErrInvalidAction, int(a))
	}
	if !e.Dealt() {
		return Observation{}, 0, false, ErrNotDealt
	}

	if a == Hit {
		e.player = append(e.player, e.deck.Draw())
		if e.player.Value() > 21 {
			return e.Observe(SeatPlayer), Loss, true, nil
		}
		return e.Observe(SeatPlayer), Push, false, nil
	}

	playerValue := e.player.Value()
	dealerValue := e.playDealer()
	reward := Win
	if dealerValue <= 21 {
		reward = compare(playerValue, dealerValue)
	}
	return e.Observe(SeatPlayer), reward, true, nil
}

// playDealer draws while the dealer is under 17. Soft 17 stands.
func (e *Environment) playDealer() int {
	v := e.dealer.Value()
	for v < dealerStandsOn {
		e.dealer = append(e.dealer, e.deck.Draw())
		v = e.dealer.Value()
	}
	return v
}

// AIStep deals one card to the AI hand. The AI is only ever penalised for
// busting; reaching or passing 21 ends its turn.
func (e *Environment) AIStep() (Observation, Reward, bool, error) {
	if !e.Dealt() {
		return Observation{}, 0, false, ErrNotDealt
	}
	e.ai = append(e.ai, e.deck.Draw())
	v := e.ai.Value()
	reward := Push
	if v > 21 {
		reward = Loss
	}
	return e.Observe(SeatAI), reward, v >= 21, nil
}

// Observe builds the agent-visible state for a seat, keyed on the
// dealer's first card.
func (e *Environment) Observe(seat Seat) Observation {
	v, soft := HandValue(e.Hand(seat))
	o := Observation{HandValue: v, UsableAce: soft}
	if len(e.dealer) > 0 {
		o.DealerUpcard = e.dealer[0].Value()
	}
	return o
}

// Hand returns a copy of the seat's cards.
func (e *Environment) Hand(seat Seat) Hand {
	var h Hand
	switch seat {
	case SeatPlayer:
		h = e.player
	case SeatDealer:
		h = e.dealer
	case SeatAI:
		h = e.ai
	}
	out := make(Hand, len(h))
	copy(out, h)
	return out
}

func (e *Environment) Value(seat Seat) int {
	return e.Hand(seat).Value()
}

// Upcard returns the dealer's first card, the only one shown mid-round.
func (e *Environment) Upcard() (Card, bool) {
	if len(e.dealer) == 0 {
		return Card{}, false
	}
	return e.dealer[0], true
}
