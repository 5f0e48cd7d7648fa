package agent

import (
	"bytes"
	"context"
	"encoding/gob"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blackjack_ai/internal/domain"
)

func trainedLearner(t *testing.T, seed int64, episodes int) *QLearner {
	t.Helper()
	q := newLearner(seed)
	env := domain.NewEnvironment(rand.New(rand.NewSource(seed)))
	_, err := Train(context.Background(), env, q, TrainOptions{Episodes: episodes})
	require.NoError(t, err)
	return q
}

func TestQTable_BinaryRoundTrip(t *testing.T) {
	tbl := NewQTable()
	tbl.Set(State{HandValue: 21, DealerUpcard: 11, UsableAce: true}, Values{0.123456789012345, -1e-300})
	tbl.Set(State{HandValue: 4, DealerUpcard: 2}, Values{-0.9999999999, 0.1})

	b, err := tbl.MarshalBinary()
	require.NoError(t, err)
	got := NewQTable()
	require.NoError(t, got.UnmarshalBinary(b))

	assert.Equal(t, tbl.States(), got.States())
	tbl.Iterate(func(s State, v Values) {
		gv, ok := got.Lookup(s)
		require.True(t, ok)
		assert.Equal(t, v, gv)
	})
}

func TestQTable_UnmarshalGarbage(t *testing.T) {
	assert.Error(t, NewQTable().UnmarshalBinary([]byte("not a table")))
}

func TestQTable_UnmarshalHugeRowCount(t *testing.T) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	require.NoError(t, enc.Encode(tableFormatVersion))
	require.NoError(t, enc.Encode(1<<36))

	tbl := NewQTable()
	tbl.Row(State{HandValue: 9, DealerUpcard: 3})
	assert.Error(t, tbl.UnmarshalBinary(buf.Bytes()))
	assert.Equal(t, 1, tbl.Len(), "failed decode keeps the old rows")
}

func TestQTable_UnmarshalNegativeRowCount(t *testing.T) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	require.NoError(t, enc.Encode(tableFormatVersion))
	require.NoError(t, enc.Encode(-3))
	assert.Error(t, NewQTable().UnmarshalBinary(buf.Bytes()))
}

func TestSaveLoad_SameChoices(t *testing.T) {
	q := trainedLearner(t, 21, 500)
	require.Positive(t, q.Table().Len())

	path := filepath.Join(t.TempDir(), "agent.gob")
	require.NoError(t, q.Save(path))

	fresh := newLearner(99)
	require.NoError(t, fresh.Load(path))
	require.Equal(t, q.Table().Len(), fresh.Table().Len())

	q.Table().Iterate(func(s State, v Values) {
		lv, ok := fresh.Table().Lookup(s)
		require.True(t, ok)
		assert.Equal(t, v, lv)
		assert.Equal(t, q.GetAction(s, false), fresh.GetAction(s, false))
	})
}

func TestLoad_KeepsLazyDefault(t *testing.T) {
	q := trainedLearner(t, 4, 50)
	path := filepath.Join(t.TempDir(), "agent.gob")
	require.NoError(t, q.Save(path))

	fresh := newLearner(1)
	require.NoError(t, fresh.Load(path))
	unseen := State{HandValue: 31, DealerUpcard: 2, UsableAce: true}
	assert.Equal(t, Values{0, 0}, *fresh.Table().Row(unseen))
	assert.Equal(t, domain.Stand, fresh.GetAction(unseen, false))
}

func TestLoad_Missing(t *testing.T) {
	err := newLearner(1).Load(filepath.Join(t.TempDir(), "missing.gob"))
	assert.ErrorIs(t, err, ErrNoTable)
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gob")
	require.NoError(t, os.WriteFile(path, []byte{0x01, 0x02}, 0o644))
	q := newLearner(1)
	q.Table().Row(State{HandValue: 5, DealerUpcard: 5})

	assert.Error(t, q.Load(path))
	assert.Equal(t, 1, q.Table().Len(), "failed load keeps the old table")
}

func TestSave_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.gob")
	a := trainedLearner(t, 1, 20)
	require.NoError(t, a.Save(path))
	b := trainedLearner(t, 2, 300)
	require.NoError(t, b.Save(path))

	fresh := newLearner(3)
	require.NoError(t, fresh.Load(path))
	assert.Equal(t, b.Table().Len(), fresh.Table().Len())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
