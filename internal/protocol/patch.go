package protocol

import (
	"sync/atomic"

	"github.com/delveworks/dungeon-delve-engine/internal/engine"
	"github.com/delveworks/dungeon-delve-engine/internal/events"
)

// PatchEnvelope wraps one domain event for the websocket stream. Sequence
// numbers are per game and let clients detect gaps after a reconnect.
type PatchEnvelope struct {
	Sequence uint64 `json:"seq"`
	GameID   string `json:"gameId"`
	Type     string `json:"type"`
	Payload  any    `json:"payload"`
}

// AttachPatches subscribes to every domain event of the game and forwards
// each one as a typed patch. The sink runs inside the emitting command and
// must not block on the game.
func AttachPatches(g *engine.Game, sink func(PatchEnvelope)) {
	var seq atomic.Uint64
	forward := func(eventType string, payload any) {
		sink(PatchEnvelope{
			Sequence: seq.Add(1),
			GameID:   g.ID(),
			Type:     eventType,
			Payload:  payload,
		})
	}

	bus := g.Bus()
	events.Subscribe(bus, func(e engine.GameStarted) { forward("GameStarted", e) })
	events.Subscribe(bus, func(e engine.GameFinished) { forward("GameFinished", e) })
	events.Subscribe(bus, func(e engine.TurnStarted) { forward("TurnStarted", e) })
	events.Subscribe(bus, func(e engine.TurnEnded) { forward("TurnEnded", e) })
	events.Subscribe(bus, func(e engine.TilePicked) { forward("TilePicked", e) })
	events.Subscribe(bus, func(e engine.TileRotated) { forward("TileRotated", e) })
	events.Subscribe(bus, func(e engine.TilePlaced) { forward("TilePlaced", e) })
	events.Subscribe(bus, func(e engine.PlayerMoved) { forward("PlayerMoved", e) })
	events.Subscribe(bus, func(e engine.StartBattle) { forward("StartBattle", e) })
	events.Subscribe(bus, func(e engine.BattleCompleted) { forward("BattleCompleted", e) })
	events.Subscribe(bus, func(e engine.MonsterDefeated) { forward("MonsterDefeated", e) })
	events.Subscribe(bus, func(e engine.ItemPickedUp) { forward("ItemPickedUp", e) })
	events.Subscribe(bus, func(e engine.ItemRemovedFromInventory) { forward("ItemRemovedFromInventory", e) })
	events.Subscribe(bus, func(e engine.ItemPlacedOnField) { forward("ItemPlacedOnField", e) })
	events.Subscribe(bus, func(e engine.PlayerHealedAtFountain) { forward("PlayerHealedAtFountain", e) })
	events.Subscribe(bus, func(e engine.PlayerStunned) { forward("PlayerStunned", e) })
	events.Subscribe(bus, func(e engine.SpellUsed) { forward("SpellUsed", e) })
}
