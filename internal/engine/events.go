package engine

import (
	"github.com/delveworks/dungeon-delve-engine/internal/geometry"
	"github.com/delveworks/dungeon-delve-engine/internal/items"
)

// Domain events. Every mutation a component wants peers to react to rides the
// per-game bus as one of these; the transport forwards them to websocket
// clients as patches.

type GameCreated struct {
	GameID  string   `json:"gameId"`
	Players []string `json:"players"`
}

type GameStarted struct {
	GameID string `json:"gameId"`
}

type GameFinished struct {
	GameID   string `json:"gameId"`
	WinnerID string `json:"winnerId"`
}

type TurnStarted struct {
	GameID     string `json:"gameId"`
	TurnID     string `json:"turnId"`
	PlayerID   string `json:"playerId"`
	TurnNumber int    `json:"turnNumber"`
}

type TurnEnded struct {
	GameID   string `json:"gameId"`
	TurnID   string `json:"turnId"`
	PlayerID string `json:"playerId"`
	// Turn carries the closed action log so persistence subscribers do not
	// have to reach back into the game under its own lock.
	Turn *Turn `json:"turn,omitempty"`
}

type TilePicked struct {
	GameID      string                   `json:"gameId"`
	PlayerID    string                   `json:"playerId"`
	TileID      string                   `json:"tileId"`
	Orientation geometry.TileOrientation `json:"orientation"`
	Room        bool                     `json:"room"`
	Features    []TileFeature            `json:"features,omitempty"`
}

type TileRotated struct {
	GameID      string                   `json:"gameId"`
	PlayerID    string                   `json:"playerId"`
	TileID      string                   `json:"tileId"`
	Orientation geometry.TileOrientation `json:"orientation"`
}

type TilePlaced struct {
	GameID   string              `json:"gameId"`
	PlayerID string              `json:"playerId"`
	TileID   string              `json:"tileId"`
	Place    geometry.FieldPlace `json:"place"`
	Room     bool                `json:"room"`
}

type PlayerMoved struct {
	GameID         string              `json:"gameId"`
	PlayerID       string              `json:"playerId"`
	From           geometry.FieldPlace `json:"from"`
	To             geometry.FieldPlace `json:"to"`
	IsBattleReturn bool                `json:"isBattleReturn"`
}

type StartBattle struct {
	GameID       string              `json:"gameId"`
	PlayerID     string              `json:"playerId"`
	Position     geometry.FieldPlace `json:"position"`
	FromPosition geometry.FieldPlace `json:"fromPosition"`
	MonsterName  string              `json:"monsterName"`
	MonsterHP    int                 `json:"monsterHP"`
}

type BattleCompleted struct {
	GameID       string              `json:"gameId"`
	BattleID     string              `json:"battleId"`
	PlayerID     string              `json:"playerId"`
	Position     geometry.FieldPlace `json:"position"`
	FromPosition geometry.FieldPlace `json:"fromPosition"`
	MonsterName  string              `json:"monsterName"`
	MonsterHP    int                 `json:"monsterHP"`
	DiceRolls    []int               `json:"diceRolls"`
	TotalDamage  int                 `json:"totalDamage"`
	Result       BattleResult        `json:"result"`
}

type MonsterDefeated struct {
	GameID      string              `json:"gameId"`
	PlayerID    string              `json:"playerId"`
	Position    geometry.FieldPlace `json:"position"`
	MonsterName string              `json:"monsterName"`
	Reward      *items.Item         `json:"reward,omitempty"`
}

type ItemPickedUp struct {
	GameID   string              `json:"gameId"`
	PlayerID string              `json:"playerId"`
	Position geometry.FieldPlace `json:"position"`
	Item     *items.Item         `json:"item"`
}

type ItemRemovedFromInventory struct {
	GameID   string      `json:"gameId"`
	PlayerID string      `json:"playerId"`
	ItemID   string      `json:"itemId"`
	Item     *items.Item `json:"item"`
}

type ItemPlacedOnField struct {
	GameID   string              `json:"gameId"`
	Position geometry.FieldPlace `json:"position"`
	Item     *items.Item         `json:"item"`
}

type PlayerHealedAtFountain struct {
	GameID   string              `json:"gameId"`
	PlayerID string              `json:"playerId"`
	Position geometry.FieldPlace `json:"position"`
	HP       int                 `json:"hp"`
}

type PlayerStunned struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

type SpellUsed struct {
	GameID   string              `json:"gameId"`
	PlayerID string              `json:"playerId"`
	ItemID   string              `json:"itemId"`
	Target   geometry.FieldPlace `json:"target"`
}
