package domain

import (
	"encoding/json"
	"math/rand"
	"time"
)

type Suit string

const (
	Spades   Suit = "♠"
	Clubs    Suit = "♣"
	Hearts   Suit = "♥"
	Diamonds Suit = "♦"
)

var suits = [...]Suit{Spades, Clubs, Hearts, Diamonds}

type Rank string

var ranks = [...]Rank{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

const Ace Rank = "A"

// Card is immutable. Suit is for display only.
type Card struct {
	Rank Rank
	Suit Suit
}

// Value returns the card's blackjack value with aces counted as 11.
func (c Card) Value() int {
	switch c.Rank {
	case "J", "Q", "K":
		return 10
	case Ace:
		return 11
	}
	n := 0
	for _, ch := range c.Rank {
		n = n*10 + int(ch-'0')
	}
	return n
}

func (c Card) String() string {
	return string(c.Rank) + string(c.Suit)
}

func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// NewRNG returns a source seeded from the clock when seed is zero.
func NewRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// ChildRNG derives an independent source from parent, so one seed can
// drive several generators without their streams repeating each other.
func ChildRNG(parent *rand.Rand) *rand.Rand {
	return rand.New(rand.NewSource(parent.Int63()))
}

// Deck is a single 52-card deck consumed from the end of its slice.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		rng = NewRNG(0)
	}
	d := &Deck{rng: rng}
	d.Reset()
	return d
}

// Reset refills the deck with all 52 cards in uniformly random order.
func (d *Deck) Reset() {
	cards := make([]Card, 0, len(suits)*len(ranks))
	for _, s := range suits {
		for _, r := range ranks {
			cards = append(cards, Card{Rank: r, Suit: s})
		}
	}
	d.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	d.cards = cards
}

// Draw removes the top card, reshuffling a fresh deck first if it is empty.
func (d *Deck) Draw() Card {
	if len(d.cards) == 0 {
		d.Reset()
	}
	c := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c
}

func (d *Deck) Len() int {
	return len(d.cards)
}
