package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandValue(t *testing.T) {
	tests := []struct {
		name   string
		cards  []Card
		value  int
		usable bool
	}{
		{"hard 16", []Card{c("10", Spades), c("6", Clubs)}, 16, false},
		{"soft 17", []Card{c("A", Spades), c("6", Clubs)}, 17, true},
		{"demoted ace", []Card{c("A", Spades), c("6", Clubs), c("10", Diamonds)}, 17, false},
		{"two aces", []Card{c("A", Spades), c("A", Hearts)}, 12, true},
		{"blackjack", []Card{c("A", Spades), c("K", Hearts)}, 21, true},
		{"both aces demoted", []Card{c("A", Spades), c("A", Hearts), c("Q", Clubs), c("9", Clubs)}, 21, false},
		{"bust without aces", []Card{c("10", Spades), c("5", Hearts), c("8", Clubs)}, 23, false},
		{"empty", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, usable := HandValue(tt.cards)
			assert.Equal(t, tt.value, v)
			assert.Equal(t, tt.usable, usable)
		})
	}
}

func TestHandValue_RederivedAfterEachCard(t *testing.T) {
	h := Hand{c("A", Spades), c("5", Clubs)}
	v, usable := HandValue(h)
	assert.Equal(t, 16, v)
	assert.True(t, usable)

	h = append(h, c("9", Hearts))
	v, usable = HandValue(h)
	assert.Equal(t, 15, v)
	assert.False(t, usable)
}

func TestHand_Strings(t *testing.T) {
	h := Hand{c("10", Spades), c("A", Hearts)}
	assert.Equal(t, []string{"10♠", "A♥"}, h.Strings())
}

func TestCompare(t *testing.T) {
	assert.Equal(t, Win, compare(20, 19))
	assert.Equal(t, Loss, compare(18, 20))
	assert.Equal(t, Push, compare(19, 19))
}
