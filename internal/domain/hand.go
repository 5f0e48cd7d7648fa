package domain

// Hand is an ordered list of cards owned by one seat.
type Hand []Card

// HandValue totals the cards counting aces as 11, then demotes aces to 1
// one at a time while the total is over 21. usableAce reports whether an
// ace is still counted as 11 afterwards.
func HandValue(cards []Card) (value int, usableAce bool) {
	soft := 0
	for _, c := range cards {
		if c.Rank == Ace {
			soft++
		}
		value += c.Value()
	}
	for value > 21 && soft > 0 {
		value -= 10
		soft--
	}
	return value, soft > 0
}

func (h Hand) Value() int {
	v, _ := HandValue(h)
	return v
}

func (h Hand) Strings() []string {
	out := make([]string, len(h))
	for i, c := range h {
		out[i] = c.String()
	}
	return out
}

// Observation is the abstraction of a hand the learning agent sees.
type Observation struct {
	HandValue    int
	DealerUpcard int
	UsableAce    bool
}

type Reward int

const (
	Loss Reward = -1
	Push Reward = 0
	Win  Reward = 1
)

// compare returns -1, 0 or +1 as a is less than, equal to or greater than b.
func compare(a, b int) Reward {
	switch {
	case a > b:
		return Win
	case a < b:
		return Loss
	}
	return Push
}
