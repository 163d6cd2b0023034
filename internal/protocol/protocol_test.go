package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delveworks/dungeon-delve-engine/internal/engine"
	"github.com/delveworks/dungeon-delve-engine/internal/geometry"
)

func TestGlyphTable(t *testing.T) {
	cases := []struct {
		orientation geometry.TileOrientation
		room        bool
		want        string
	}{
		{geometry.FourSide, false, "╋"},
		{geometry.FourSide, true, "╬"},
		{geometry.TwoSideStraight, false, "┃"},
		{geometry.TwoSideStraight.Rotated(geometry.Right), false, "━"},
		{geometry.TwoSideCorner, true, "╚"},
		{geometry.ThreeSide, false, "┻"},
		{geometry.NewTileOrientation(true, false, false, false), false, "·"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Glyph(c.orientation, c.room), "orientation %s room=%t", c.orientation, c.room)
	}
}

func TestFromErrorKeepsGameErrorShape(t *testing.T) {
	err := engine.NewGameError(engine.ErrMissingKey, "a key is needed").
		WithDetails(map[string]any{"chestType": "chest"})

	resp := FromError(err)
	assert.Equal(t, engine.ErrMissingKey, resp.Code)
	assert.Equal(t, "a key is needed", resp.Message)
	assert.Equal(t, "chest", resp.Details["chestType"])

	plain := FromError(assert.AnError)
	assert.Equal(t, "InternalError", plain.Code)
}

func TestBuildGameResponse(t *testing.T) {
	g, err := engine.NewGame("view-game", []string{"player1", "player2"}, &engine.TestConfig{
		TileSequence: []engine.TileSpec{{Name: "fourSideRoom"}, {Name: "threeSideRoom"}},
		ItemSequence: []string{"giant_rat"},
	})
	require.NoError(t, err)
	require.NoError(t, g.Start())

	resp := BuildGameResponse(g.Snapshot())

	assert.Equal(t, "view-game", resp.GameID)
	assert.Equal(t, engine.StatusStarted, resp.State.Status)
	assert.Equal(t, "player1", resp.State.CurrentPlayerID)
	assert.Len(t, resp.Players, 2)

	start, ok := resp.Field.Tiles["0,0"]
	require.True(t, ok, "start tile missing from view")
	assert.Equal(t, "╬", start.Glyph)
	assert.Contains(t, resp.Field.HealingFountainPositions, "0,0")
	assert.Contains(t, resp.Field.RoomFieldPlaces, "0,0")
	assert.Equal(t, "player1", resp.State.CurrentPlayerID)
	assert.Equal(t, "0,0", resp.Field.PlayerPositions["player1"])
	assert.Len(t, resp.Field.AvailablePlaces, 4)
	assert.Equal(t, 1, resp.State.Deck.RemainingTiles)
}

func TestBuildGameResponseCarriesUnplacedTile(t *testing.T) {
	g, err := engine.NewGame("view-game-2", []string{"player1"}, &engine.TestConfig{
		TileSequence: []engine.TileSpec{{Name: "fourSideRoom"}, {Name: "twoSideStraight"}},
	})
	require.NoError(t, err)
	require.NoError(t, g.Start())

	tile, err := g.PickTile("player1", g.CurrentTurnID(), geometry.Bottom)
	require.NoError(t, err)

	resp := BuildGameResponse(g.Snapshot())
	require.NotNil(t, resp.Field.UnplacedTile)
	assert.Equal(t, tile.ID, resp.Field.UnplacedTile.TileID)
	assert.Equal(t, "┃", resp.Field.UnplacedTile.Glyph)
}

func TestAttachPatchesSequencesEvents(t *testing.T) {
	g, err := engine.NewGame("patch-game", []string{"player1", "player2"}, nil)
	require.NoError(t, err)

	var patches []PatchEnvelope
	AttachPatches(g, func(p PatchEnvelope) { patches = append(patches, p) })

	require.NoError(t, g.Start())
	require.NoError(t, g.EndTurn("player1", g.CurrentTurnID()))

	require.NotEmpty(t, patches)
	types := make([]string, 0, len(patches))
	for i, patch := range patches {
		assert.Equal(t, uint64(i+1), patch.Sequence, "sequence must be gapless")
		assert.Equal(t, "patch-game", patch.GameID)
		types = append(types, patch.Type)
	}
	assert.Equal(t, []string{"GameStarted", "TurnStarted", "TurnEnded", "TurnStarted"}, types)
}
