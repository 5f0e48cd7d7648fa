package table

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blackjack_ai/internal/agent"
	"blackjack_ai/internal/domain"
)

type fixedPolicy struct {
	action domain.Action
	seen   []domain.Observation
}

func (p *fixedPolicy) GetAction(s domain.Observation, explore bool) domain.Action {
	p.seen = append(p.seen, s)
	return p.action
}

func newTable(seed int64, p Policy) *Table {
	return New(domain.NewEnvironment(rand.New(rand.NewSource(seed))), p)
}

func TestTable_ActionsBeforeNewGame(t *testing.T) {
	tb := newTable(1, &fixedPolicy{})
	_, err := tb.Hit()
	assert.ErrorIs(t, err, ErrNoGame)
	_, err = tb.Stand()
	assert.ErrorIs(t, err, ErrNoGame)
	assert.False(t, tb.Started())
	assert.Equal(t, View{}, tb.View())
}

func TestTable_NewGameHidesHoleCard(t *testing.T) {
	p := &fixedPolicy{action: domain.Stand}
	tb := newTable(2, p)
	v, err := tb.NewGame()
	require.NoError(t, err)

	assert.Len(t, v.PlayerHand, 2)
	assert.Len(t, v.DealerHand, 1)
	assert.Len(t, v.AIHand, 2)
	assert.False(t, v.Done)
	up, _ := tb.env.Upcard()
	assert.Equal(t, up.Value(), v.DealerValue)
	require.Len(t, p.seen, 1)
	assert.Equal(t, tb.env.Observe(domain.SeatAI), p.seen[0])
}

func TestTable_NewGameAIHitsOnce(t *testing.T) {
	tb := newTable(3, &fixedPolicy{action: domain.Hit})
	v, err := tb.NewGame()
	require.NoError(t, err)
	assert.Len(t, v.AIHand, 3)
}

func TestTable_HitLetsAIDecide(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		p := &fixedPolicy{action: domain.Stand}
		tb := newTable(seed, p)
		_, err := tb.NewGame()
		require.NoError(t, err)

		v, err := tb.Hit()
		require.NoError(t, err)
		assert.Len(t, v.PlayerHand, 3)
		if v.Done {
			assert.Equal(t, -1, v.Reward)
			assert.Greater(t, v.PlayerValue, 21)
			assert.Len(t, p.seen, 1, "AI does not act after the player busts")
		} else {
			assert.Len(t, p.seen, 2)
			assert.Len(t, v.DealerHand, 1)
		}
	}
}

func TestTable_StandRevealsDealerAndFinishesAI(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		tb := newTable(seed, &fixedPolicy{action: domain.Hit})
		_, err := tb.NewGame()
		require.NoError(t, err)

		v, err := tb.Stand()
		require.NoError(t, err)
		assert.True(t, v.Done)
		assert.True(t, v.AIDone)
		assert.GreaterOrEqual(t, len(v.DealerHand), 2)
		assert.GreaterOrEqual(t, v.DealerValue, 17)
		assert.GreaterOrEqual(t, v.AIValue, 21, "always-hit AI plays to 21 or bust")
		assert.Contains(t, []int{-1, 0, 1}, v.Reward)
	}
}

func TestTable_StandingAIKeepsItsHand(t *testing.T) {
	tb := newTable(4, &fixedPolicy{action: domain.Stand})
	_, err := tb.NewGame()
	require.NoError(t, err)
	v, err := tb.Stand()
	require.NoError(t, err)
	assert.Len(t, v.AIHand, 2)
	assert.True(t, v.AIDone)
}

func TestTable_ActionsAfterRoundOver(t *testing.T) {
	tb := newTable(5, &fixedPolicy{action: domain.Stand})
	_, err := tb.NewGame()
	require.NoError(t, err)
	_, err = tb.Stand()
	require.NoError(t, err)

	_, err = tb.Hit()
	assert.ErrorIs(t, err, ErrRoundOver)
	_, err = tb.Stand()
	assert.ErrorIs(t, err, ErrRoundOver)

	v, err := tb.NewGame()
	require.NoError(t, err)
	assert.False(t, v.Done)
}

func TestTable_HitUntilBust(t *testing.T) {
	tb := newTable(6, &fixedPolicy{action: domain.Stand})
	_, err := tb.NewGame()
	require.NoError(t, err)
	var v View
	for i := 0; i < 12 && !v.Done; i++ {
		v, err = tb.Hit()
		require.NoError(t, err)
	}
	require.True(t, v.Done)
	assert.Equal(t, -1, v.Reward)
	// the dealer never played, so the hole card is still down
	require.Len(t, v.DealerHand, 1)
	up, _ := tb.env.Upcard()
	assert.Equal(t, up.String(), v.DealerHand[0])
	assert.Equal(t, up.Value(), v.DealerValue)

	v, err = tb.NewGame()
	require.NoError(t, err)
	assert.Len(t, v.DealerHand, 1)
}

func TestTable_Act(t *testing.T) {
	tb := newTable(7, &fixedPolicy{action: domain.Stand})
	_, err := tb.NewGame()
	require.NoError(t, err)
	_, err = tb.Act(domain.Action(5))
	assert.ErrorIs(t, err, domain.ErrInvalidAction)
	v, err := tb.Act(domain.Stand)
	require.NoError(t, err)
	assert.True(t, v.Done)
}

func TestTable_WithTrainedAgent(t *testing.T) {
	q := agent.New(agent.DefaultConfig(), rand.New(rand.NewSource(1)))
	q.Table().Set(agent.State{HandValue: 20, DealerUpcard: 10}, agent.Values{0.5, -0.9})
	tb := newTable(8, q)
	_, err := tb.NewGame()
	require.NoError(t, err)
	v, err := tb.Stand()
	require.NoError(t, err)
	assert.True(t, v.Done)
}
