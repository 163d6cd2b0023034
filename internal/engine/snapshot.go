package engine

import (
	"github.com/delveworks/dungeon-delve-engine/internal/geometry"
	"github.com/delveworks/dungeon-delve-engine/internal/items"
)

// AvailablePlaces groups the current player's movement and placement options.
type AvailablePlaces struct {
	MoveTo    []geometry.FieldPlace `json:"moveTo"`
	PlaceTile []geometry.FieldPlace `json:"placeTile"`
}

// FieldBounds is the inclusive rectangle covering all placed tiles.
type FieldBounds struct {
	MinX int `json:"minX"`
	MaxX int `json:"maxX"`
	MinY int `json:"minY"`
	MaxY int `json:"maxY"`
}

// PlayerSnapshot is one player's externally visible state.
type PlayerSnapshot struct {
	ID            string     `json:"id"`
	HP            int        `json:"hp"`
	MaxHP         int        `json:"maxHp"`
	Defeated      bool       `json:"defeated"`
	StunnedAtZero bool       `json:"stunnedAtZero"`
	Inventory     *Inventory `json:"inventory"`
}

// GameSnapshot is a consistent point-in-time copy of everything the
// transport exposes. Built under the game lock; safe to read afterwards.
type GameSnapshot struct {
	GameID          string          `json:"gameId"`
	Status          GameStatus      `json:"status"`
	TurnNumber      int             `json:"turn"`
	CurrentPlayerID string          `json:"currentPlayerId"`
	CurrentTurnID   string          `json:"currentTurnId"`
	WinnerID        string          `json:"winnerId,omitempty"`
	MustEndTurn     bool            `json:"mustEndTurn"`
	Available       AvailablePlaces `json:"availablePlaces"`
	LastBattle      *BattleInfo     `json:"lastBattleInfo,omitempty"`
	DeckRemaining   int             `json:"remainingTiles"`
	DeckIsEmpty     bool            `json:"deckIsEmpty"`

	Players []PlayerSnapshot `json:"players"`

	Tiles           map[geometry.FieldPlace]*Tile       `json:"-"`
	Items           map[geometry.FieldPlace]*items.Item `json:"-"`
	PlayerPositions map[string]geometry.FieldPlace      `json:"-"`
	AvailableFields []geometry.FieldPlace               `json:"-"`
	Fountains       []geometry.FieldPlace               `json:"-"`
	Gates           []geometry.FieldPlace               `json:"-"`
	Bounds          FieldBounds                         `json:"-"`
	UnplacedTile    *Tile                               `json:"-"`
}

// Snapshot captures the current game state.
func (g *Game) Snapshot() *GameSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := &GameSnapshot{
		GameID:          g.id,
		Status:          g.status,
		WinnerID:        g.winnerID,
		DeckRemaining:   g.deck.Remaining(),
		DeckIsEmpty:     g.deck.IsEmpty(),
		Tiles:           g.field.Tiles(),
		Items:           g.field.Items(),
		PlayerPositions: g.movement.Positions(),
		AvailableFields: g.field.AvailableFieldPlaces(),
		Fountains:       g.field.Fountains(),
		Gates:           g.field.Gates(),
		UnplacedTile:    g.field.UnplacedTile(),
		LastBattle:      g.field.LastBattle(),
	}
	minX, minY, maxX, maxY := g.field.Bounds()
	snap.Bounds = FieldBounds{MinX: minX, MaxX: maxX, MinY: minY, MaxY: maxY}

	if g.currentTurn != nil {
		snap.TurnNumber = g.currentTurn.TurnNumber
		snap.CurrentPlayerID = g.currentTurn.PlayerID
		snap.CurrentTurnID = g.currentTurn.TurnID
		snap.MustEndTurn = g.currentTurn.MustEnd()

		if player := g.byID[g.currentTurn.PlayerID]; player != nil && g.status == StatusStarted {
			if pos, ok := g.movement.PositionOf(player.ID); ok {
				moveTo, placeTile := g.field.AvailablePlaces(player, pos)
				snap.Available = AvailablePlaces{MoveTo: moveTo, PlaceTile: placeTile}
			}
		}
	}

	for _, player := range g.players {
		snap.Players = append(snap.Players, PlayerSnapshot{
			ID:            player.ID,
			HP:            player.HP,
			MaxHP:         player.MaxHP,
			Defeated:      player.Defeated,
			StunnedAtZero: player.StunnedAtZero,
			Inventory:     copyInventory(player.Inventory),
		})
	}
	return snap
}

func copyInventory(inv *Inventory) *Inventory {
	copied := NewInventory()
	copied.Keys = append(copied.Keys, inv.Keys...)
	copied.Weapons = append(copied.Weapons, inv.Weapons...)
	copied.Spells = append(copied.Spells, inv.Spells...)
	copied.Treasures = append(copied.Treasures, inv.Treasures...)
	return copied
}

// Turns returns the closed turns in order.
func (g *Game) Turns() []*Turn {
	g.mu.Lock()
	defer g.mu.Unlock()
	copied := make([]*Turn, len(g.history))
	copy(copied, g.history)
	return copied
}

// Status returns the lifecycle state.
func (g *Game) Status() GameStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Winner returns the winning player id once the game is finished.
func (g *Game) Winner() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.winnerID
}

// CurrentTurnID returns the id commands must quote.
func (g *Game) CurrentTurnID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentTurn == nil {
		return ""
	}
	return g.currentTurn.TurnID
}

// CurrentPlayerID returns whose turn it is.
func (g *Game) CurrentPlayerID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentTurn == nil {
		return ""
	}
	return g.currentTurn.PlayerID
}

// PlayerState returns a copy-safe view of one player, for tests and tools.
func (g *Game) PlayerState(playerID string) (*PlayerSnapshot, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	player := g.byID[playerID]
	if player == nil {
		return nil, false
	}
	return &PlayerSnapshot{
		ID:            player.ID,
		HP:            player.HP,
		MaxHP:         player.MaxHP,
		Defeated:      player.Defeated,
		StunnedAtZero: player.StunnedAtZero,
		Inventory:     copyInventory(player.Inventory),
	}, true
}

// PositionOf returns a player's current position.
func (g *Game) PositionOf(playerID string) (geometry.FieldPlace, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.movement.PositionOf(playerID)
}
