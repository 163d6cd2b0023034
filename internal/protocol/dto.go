package protocol

import (
	"github.com/delveworks/dungeon-delve-engine/internal/engine"
)

// Request bodies of the HTTP command surface. Field places and sides travel
// as their canonical strings ("x,y", "top").

type ToggleModeRequest struct {
	Enabled bool `json:"enabled"`
}

type SetupGameRequest struct {
	GameID        string                         `json:"gameId" binding:"required"`
	DiceRolls     []int                          `json:"diceRolls,omitempty"`
	TileSequence  []engine.TileSpec              `json:"tileSequence,omitempty"`
	ItemSequence  []string                       `json:"itemSequence,omitempty"`
	PlayerConfigs map[string]engine.PlayerConfig `json:"playerConfigs,omitempty"`
}

// TestConfig converts the request into the engine's per-game configuration.
func (r *SetupGameRequest) TestConfig() *engine.TestConfig {
	return &engine.TestConfig{
		DiceRolls:     r.DiceRolls,
		TileSequence:  r.TileSequence,
		ItemSequence:  r.ItemSequence,
		PlayerConfigs: r.PlayerConfigs,
	}
}

type PickTileRequest struct {
	GameID           string `json:"gameId" binding:"required"`
	TileID           string `json:"tileId"`
	PlayerID         string `json:"playerId" binding:"required"`
	TurnID           string `json:"turnId" binding:"required"`
	RequiredOpenSide string `json:"requiredOpenSide" binding:"required"`
}

type RotateTileRequest struct {
	GameID           string `json:"gameId" binding:"required"`
	TileID           string `json:"tileId" binding:"required"`
	PlayerID         string `json:"playerId" binding:"required"`
	TurnID           string `json:"turnId" binding:"required"`
	TopSide          string `json:"topSide" binding:"required"`
	RequiredOpenSide string `json:"requiredOpenSide" binding:"required"`
}

type PlaceTileRequest struct {
	GameID     string `json:"gameId" binding:"required"`
	TileID     string `json:"tileId" binding:"required"`
	PlayerID   string `json:"playerId" binding:"required"`
	TurnID     string `json:"turnId" binding:"required"`
	FieldPlace string `json:"fieldPlace" binding:"required"`
}

type MovePlayerRequest struct {
	GameID              string `json:"gameId" binding:"required"`
	PlayerID            string `json:"playerId" binding:"required"`
	TurnID              string `json:"turnId" binding:"required"`
	FromPosition        string `json:"fromPosition"`
	ToPosition          string `json:"toPosition" binding:"required"`
	IgnoreMonster       bool   `json:"ignoreMonster"`
	IsTilePlacementMove bool   `json:"isTilePlacementMove"`
}

type FinalizeBattleRequest struct {
	BattleID              string   `json:"battleId" binding:"required"`
	GameID                string   `json:"gameId" binding:"required"`
	PlayerID              string   `json:"playerId" binding:"required"`
	TurnID                string   `json:"turnId" binding:"required"`
	SelectedConsumableIDs []string `json:"selectedConsumableIds"`
	PickupItem            bool     `json:"pickupItem"`
}

type PickItemRequest struct {
	GameID          string `json:"gameId" binding:"required"`
	PlayerID        string `json:"playerId" binding:"required"`
	TurnID          string `json:"turnId" binding:"required"`
	Position        string `json:"position" binding:"required"`
	ItemIDToReplace string `json:"itemIdToReplace,omitempty"`
}

type InventoryActionRequest struct {
	GameID          string `json:"gameId" binding:"required"`
	PlayerID        string `json:"playerId" binding:"required"`
	Action          string `json:"action" binding:"required"`
	ItemID          string `json:"item,omitempty"`
	ItemIDToReplace string `json:"itemIdToReplace" binding:"required"`
}

type UseSpellRequest struct {
	GameID   string `json:"gameId" binding:"required"`
	PlayerID string `json:"playerId" binding:"required"`
	TurnID   string `json:"turnId" binding:"required"`
	ItemID   string `json:"item" binding:"required"`
	Target   string `json:"target" binding:"required"`
}

type EndTurnRequest struct {
	GameID   string `json:"gameId" binding:"required"`
	PlayerID string `json:"playerId" binding:"required"`
	TurnID   string `json:"turnId" binding:"required"`
}

// ErrorResponse is the uniform failure body: a stable code, a human message,
// and optional structured details for rule conflicts.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// FromError maps any error onto the wire shape. Non-game errors surface as
// an internal error without leaking internals.
func FromError(err error) ErrorResponse {
	if gameErr, ok := err.(*engine.GameError); ok {
		return ErrorResponse{Code: gameErr.Code, Message: gameErr.Message, Details: gameErr.Details}
	}
	return ErrorResponse{Code: "InternalError", Message: "internal error"}
}
