package protocol

import (
	"github.com/delveworks/dungeon-delve-engine/internal/engine"
	"github.com/delveworks/dungeon-delve-engine/internal/items"
)

// TileView is one placed tile on the wire: orientation in "t,r,b,l" form
// plus its field map glyph.
type TileView struct {
	TileID      string   `json:"tileId"`
	Orientation string   `json:"orientation"`
	Room        bool     `json:"room"`
	Features    []string `json:"features,omitempty"`
	Glyph       string   `json:"glyph"`
}

// DeckState is the client-visible deck status. An empty deck switches the
// client into movement-only mode.
type DeckState struct {
	RemainingTiles int  `json:"remainingTiles"`
	IsEmpty        bool `json:"isEmpty"`
}

// GameState is the turn-level half of the snapshot.
type GameState struct {
	Status          engine.GameStatus      `json:"status"`
	Turn            int                    `json:"turn"`
	CurrentPlayerID string                 `json:"currentPlayerId"`
	CurrentTurnID   string                 `json:"currentTurnId"`
	MustEndTurn     bool                   `json:"mustEndTurn"`
	WinnerID        string                 `json:"winnerId,omitempty"`
	AvailablePlaces engine.AvailablePlaces `json:"availablePlaces"`
	LastBattleInfo  *engine.BattleInfo     `json:"lastBattleInfo,omitempty"`
	Deck            DeckState              `json:"deck"`
}

// FieldState is the board half of the snapshot. Maps are keyed by the
// canonical "x,y" place string.
type FieldState struct {
	Tiles                      map[string]TileView    `json:"tiles"`
	TileOrientations           map[string]string      `json:"tileOrientations"`
	RoomFieldPlaces            []string               `json:"roomFieldPlaces"`
	PlayerPositions            map[string]string      `json:"playerPositions"`
	AvailablePlaces            []string               `json:"availablePlaces"`
	Items                      map[string]*items.Item `json:"items"`
	HealingFountainPositions   []string               `json:"healingFountainPositions"`
	TeleportationGatePositions []string               `json:"teleportationGatePositions"`
	Size                       engine.FieldBounds     `json:"size"`
	UnplacedTile               *TileView              `json:"unplacedTile,omitempty"`
}

// GameResponse is the full GET payload for one game.
type GameResponse struct {
	GameID  string                  `json:"gameId"`
	State   GameState               `json:"state"`
	Players []engine.PlayerSnapshot `json:"players"`
	Field   FieldState              `json:"field"`
}

// NewTileView converts a tile into its wire form.
func NewTileView(tile *engine.Tile) TileView {
	view := TileView{
		TileID:      tile.ID,
		Orientation: tile.Orientation.String(),
		Room:        tile.Room,
		Glyph:       Glyph(tile.Orientation, tile.Room),
	}
	for _, feature := range tile.Features {
		view.Features = append(view.Features, string(feature))
	}
	return view
}

// BuildGameResponse converts an engine snapshot into the wire shape.
func BuildGameResponse(snap *engine.GameSnapshot) GameResponse {
	field := FieldState{
		Tiles:                      make(map[string]TileView, len(snap.Tiles)),
		TileOrientations:           make(map[string]string, len(snap.Tiles)),
		RoomFieldPlaces:            make([]string, 0),
		PlayerPositions:            make(map[string]string, len(snap.PlayerPositions)),
		AvailablePlaces:            make([]string, 0, len(snap.AvailableFields)),
		Items:                      make(map[string]*items.Item, len(snap.Items)),
		HealingFountainPositions:   make([]string, 0, len(snap.Fountains)),
		TeleportationGatePositions: make([]string, 0, len(snap.Gates)),
		Size:                       snap.Bounds,
	}

	for place, tile := range snap.Tiles {
		key := place.String()
		field.Tiles[key] = NewTileView(tile)
		field.TileOrientations[key] = tile.Orientation.String()
		if tile.Room {
			field.RoomFieldPlaces = append(field.RoomFieldPlaces, key)
		}
	}
	for playerID, place := range snap.PlayerPositions {
		field.PlayerPositions[playerID] = place.String()
	}
	for _, place := range snap.AvailableFields {
		field.AvailablePlaces = append(field.AvailablePlaces, place.String())
	}
	for place, item := range snap.Items {
		field.Items[place.String()] = item
	}
	for _, place := range snap.Fountains {
		field.HealingFountainPositions = append(field.HealingFountainPositions, place.String())
	}
	for _, place := range snap.Gates {
		field.TeleportationGatePositions = append(field.TeleportationGatePositions, place.String())
	}
	if snap.UnplacedTile != nil {
		view := NewTileView(snap.UnplacedTile)
		field.UnplacedTile = &view
	}

	return GameResponse{
		GameID: snap.GameID,
		State: GameState{
			Status:          snap.Status,
			Turn:            snap.TurnNumber,
			CurrentPlayerID: snap.CurrentPlayerID,
			CurrentTurnID:   snap.CurrentTurnID,
			MustEndTurn:     snap.MustEndTurn,
			WinnerID:        snap.WinnerID,
			AvailablePlaces: snap.Available,
			LastBattleInfo:  snap.LastBattle,
			Deck:            DeckState{RemainingTiles: snap.DeckRemaining, IsEmpty: snap.DeckIsEmpty},
		},
		Players: snap.Players,
		Field:   field,
	}
}
