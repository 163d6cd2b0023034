package turnlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delveworks/dungeon-delve-engine/internal/engine"
)

func TestStoreAppendAndList(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	first := engine.NewTurn("g1", "player1", 1)
	first.Record(engine.ActionMove, "", nil)
	first.Close()
	second := engine.NewTurn("g1", "player2", 2)
	second.Close()

	require.NoError(t, store.Append("g1", first))
	require.NoError(t, store.Append("g1", second))

	records, err := store.List("g1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, first.TurnID, records[0].TurnID)
	assert.Equal(t, "player1", records[0].PlayerID)
	assert.Equal(t, 1, records[0].TurnNumber)
	assert.Len(t, records[0].Actions, 1)
	assert.NotNil(t, records[0].EndTime)
	assert.Equal(t, second.TurnID, records[1].TurnID)
}

func TestStoreUnknownGameIsEmpty(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	records, err := store.List("missing")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStoreAttachPersistsOnTurnEnded(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	g, err := engine.NewGame("g-attach", []string{"player1", "player2"}, nil)
	require.NoError(t, err)
	store.Attach(g)
	require.NoError(t, g.Start())

	require.NoError(t, g.EndTurn("player1", g.CurrentTurnID()))

	records, err := store.List("g-attach")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "player1", records[0].PlayerID)
}
