package engine

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/delveworks/dungeon-delve-engine/internal/events"
	"github.com/delveworks/dungeon-delve-engine/internal/geometry"
	"github.com/delveworks/dungeon-delve-engine/internal/items"
	"github.com/delveworks/dungeon-delve-engine/internal/logger"
)

// GameStatus is the lifecycle state of a game.
type GameStatus string

const (
	StatusCreated  GameStatus = "created"
	StatusStarted  GameStatus = "started"
	StatusFinished GameStatus = "finished"
)

// MoveOutcome is what a move command reports back: a battle that started, or
// an item that was force-picked on entry.
type MoveOutcome struct {
	Battle *BattleInfo `json:"battleInfo,omitempty"`
	Item   *items.Item `json:"itemInfo,omitempty"`
}

// PickOutcome reports a successful item pickup.
type PickOutcome struct {
	Item     *items.Item `json:"item"`
	Replaced bool        `json:"itemReplaced"`
	Evicted  *items.Item `json:"evictedItem,omitempty"`
}

// Game is the root aggregate of one match. All commands serialize on its
// mutex; event fan-out runs synchronously inside the command that emits it,
// so subscribers observe events in emission order.
type Game struct {
	mu  sync.Mutex
	id  string
	log *zap.Logger
	bus *events.Bus

	status   GameStatus
	players  []*Player
	byID     map[string]*Player
	winnerID string

	currentIdx  int
	turnNumber  int
	currentTurn *Turn
	history     []*Turn

	testMode bool

	field    *Field
	deck     *Deck
	bag      *Bag
	movement *Movement
	battle   *BattleSystem

	activeBattle  *BattleInfo
	settledBattle *BattleInfo
}

// NewGame builds a game for the given players, optionally seeded by a test
// configuration, and emits GameCreated. Call Start to begin the first turn.
func NewGame(gameID string, playerIDs []string, cfg *TestConfig) (*Game, error) {
	if len(playerIDs) == 0 {
		return nil, NewGameError(ErrPlayerCannotBeFound, "a game needs at least one player")
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var (
		deck *Deck
		bag  *Bag
		err  error
	)
	if cfg != nil && len(cfg.TileSequence) > 0 {
		deck, err = NewDeckFromSequence(cfg.TileSequence)
		if err != nil {
			return nil, err
		}
	} else {
		deck = NewDeck(DefaultDeckSize, rng)
	}
	if cfg != nil && len(cfg.ItemSequence) > 0 {
		bag, err = NewBagFromSequence(cfg.ItemSequence)
		if err != nil {
			return nil, err
		}
	} else {
		bag = NewBag(rng)
	}

	start, err := deck.NextTile()
	if err != nil {
		return nil, err
	}

	var queuedRolls []int
	if cfg != nil {
		queuedRolls = cfg.DiceRolls
	}

	g := &Game{
		id:       gameID,
		log:      logger.Get().With(zap.String("gameId", gameID)),
		bus:      events.NewBus(),
		status:   StatusCreated,
		byID:     make(map[string]*Player),
		deck:     deck,
		bag:      bag,
		field:    NewField(gameID, start),
		testMode: cfg.Enabled(),
	}
	g.movement = NewMovement(g.field)
	g.battle = NewBattleSystem(gameID, NewDiceRoller(queuedRolls, rng))

	for _, id := range playerIDs {
		maxHP := DefaultMaxHP
		if cfg != nil {
			if pc, ok := cfg.PlayerConfigs[id]; ok && pc.MaxHP > 0 {
				maxHP = pc.MaxHP
			}
		}
		player := NewPlayer(id, maxHP)
		g.players = append(g.players, player)
		g.byID[id] = player
	}

	g.subscribe()
	events.Publish(g.bus, GameCreated{GameID: gameID, Players: playerIDs})
	return g, nil
}

// subscribe wires the cross-aggregate reactions onto the game's own bus.
func (g *Game) subscribe() {
	// Room tiles get their guarded loot from the bag.
	events.Subscribe(g.bus, func(e TilePlaced) {
		if !e.Room {
			return
		}
		item, err := g.bag.NextItem()
		if err != nil {
			g.log.Warn("room placed with an empty bag", zap.String("place", e.Place.String()))
			return
		}
		g.field.SetItem(e.Place, item)
		events.Publish(g.bus, ItemPlacedOnField{GameID: g.id, Position: e.Place, Item: item})
	})

	// Battle returns onto a fountain heal for free.
	events.Subscribe(g.bus, func(e PlayerMoved) {
		if !e.IsBattleReturn || !g.field.IsFountain(e.To) {
			return
		}
		player := g.byID[e.PlayerID]
		if player == nil || !player.NeedsHealing() {
			return
		}
		player.Heal()
		events.Publish(g.bus, PlayerHealedAtFountain{
			GameID: g.id, PlayerID: player.ID, Position: e.To, HP: player.HP,
		})
	})

	// A completed battle pins the player for the rest of the turn.
	events.Subscribe(g.bus, func(e BattleCompleted) {
		g.movement.Lock(e.PlayerID)
	})

	// Evicted items return to the field at the owner's position, unless they
	// were burned in a battle.
	events.Subscribe(g.bus, func(e ItemRemovedFromInventory) {
		if g.field.IsConsumed(e.ItemID) || e.Item == nil {
			return
		}
		pos, ok := g.movement.PositionOf(e.PlayerID)
		if !ok {
			return
		}
		g.field.SetItem(pos, e.Item)
		events.Publish(g.bus, ItemPlacedOnField{GameID: g.id, Position: pos, Item: e.Item})
	})

	// Ending a turn on a fountain heals.
	events.Subscribe(g.bus, func(e TurnEnded) {
		player := g.byID[e.PlayerID]
		if player == nil || !player.NeedsHealing() {
			return
		}
		pos, ok := g.movement.PositionOf(player.ID)
		if !ok || !g.field.IsFountain(pos) {
			return
		}
		player.Heal()
		events.Publish(g.bus, PlayerHealedAtFountain{
			GameID: g.id, PlayerID: player.ID, Position: pos, HP: player.HP,
		})
	})
}

// Bus exposes the game's event bus for transport-side subscribers. Register
// before issuing commands; handlers run inside the command's critical
// section and must not call back into the game.
func (g *Game) Bus() *events.Bus {
	return g.bus
}

// ID returns the game id.
func (g *Game) ID() string {
	return g.id
}

// Start begins the match: all players at the origin, first player's turn.
func (g *Game) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusCreated {
		return NewGameError(ErrActionNotAllowed, "game %s has already started", g.id)
	}
	g.status = StatusStarted

	ids := make([]string, 0, len(g.players))
	for _, player := range g.players {
		ids = append(ids, player.ID)
	}
	g.movement.InitPositions(ids)
	events.Publish(g.bus, GameStarted{GameID: g.id})

	g.currentIdx = 0
	g.turnNumber = 1
	g.beginTurnLocked(g.players[0])
	return nil
}

func (g *Game) beginTurnLocked(player *Player) {
	turn := NewTurn(g.id, player.ID, g.turnNumber)
	g.currentTurn = turn
	g.field.SetLastBattle(nil)
	g.activeBattle = nil
	if g.settledBattle != nil && g.settledBattle.PlayerID == player.ID {
		g.settledBattle = nil
	}
	g.movement.ClearLock(player.ID)
	events.Publish(g.bus, TurnStarted{
		GameID: g.id, TurnID: turn.TurnID, PlayerID: player.ID, TurnNumber: turn.TurnNumber,
	})
}

// guardCommand validates the shared preconditions of every player command.
func (g *Game) guardCommand(playerID, turnID string) (*Player, error) {
	switch g.status {
	case StatusFinished:
		return nil, NewGameError(ErrGameAlreadyFinished, "game %s is finished", g.id)
	case StatusCreated:
		return nil, NewGameError(ErrGameNotStarted, "game %s has not started", g.id)
	}
	player := g.byID[playerID]
	if player == nil {
		return nil, NewGameError(ErrPlayerCannotBeFound, "player %s is not in game %s", playerID, g.id)
	}
	if g.currentTurn.PlayerID != playerID {
		return nil, NewGameError(ErrNotYourTurn, "it is %s's turn", g.currentTurn.PlayerID)
	}
	if turnID != "" && turnID != g.currentTurn.TurnID {
		return nil, NewGameError(ErrInvalidTurnId, "turn %s is not the current turn", turnID)
	}
	return player, nil
}

// record appends an action the matrix has already admitted. Mutations happen
// only after CanPerform passed for the command, so a failure here is an
// invariant break and gets logged instead of unwinding partial state.
func (g *Game) record(action TurnAction, tileID string, data map[string]any) {
	if err := g.currentTurn.Record(action, tileID, data); err != nil {
		g.log.Error("turn record rejected",
			zap.String("turnId", g.currentTurn.TurnID),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}

// PickTile draws the next deck tile, rotates requiredOpenSide open, and
// parks it for placement.
func (g *Game) PickTile(playerID, turnID string, requiredOpenSide geometry.Side) (*Tile, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	player, err := g.guardCommand(playerID, turnID)
	if err != nil {
		return nil, err
	}
	if err := g.currentTurn.CanPerform(ActionPickTile); err != nil {
		return nil, err
	}
	if g.field.UnplacedTile() != nil {
		return nil, NewGameError(ErrCannotPickUntilPlaced, "tile %s is still unplaced", g.field.UnplacedTile().ID)
	}

	tile, err := g.deck.NextTile()
	if err != nil {
		return nil, err
	}
	if _, err := g.field.PickTile(tile, requiredOpenSide); err != nil {
		return nil, err
	}
	g.record(ActionPickTile, tile.ID, map[string]any{
		"requiredOpenSide": requiredOpenSide.String(),
	})
	events.Publish(g.bus, TilePicked{
		GameID: g.id, PlayerID: player.ID, TileID: tile.ID,
		Orientation: tile.Orientation, Room: tile.Room, Features: tile.Features,
	})
	return tile, nil
}

// RotateTile spins the unplaced tile.
func (g *Game) RotateTile(playerID, turnID, tileID string, topSide, requiredOpenSide geometry.Side) (*Tile, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	player, err := g.guardCommand(playerID, turnID)
	if err != nil {
		return nil, err
	}
	if err := g.currentTurn.CanPerform(ActionRotateTile); err != nil {
		return nil, err
	}
	tile, err := g.field.RotateUnplaced(tileID, topSide, requiredOpenSide)
	if err != nil {
		return nil, err
	}
	g.record(ActionRotateTile, tileID, map[string]any{
		"topSide":          topSide.String(),
		"requiredOpenSide": requiredOpenSide.String(),
	})
	events.Publish(g.bus, TileRotated{
		GameID: g.id, PlayerID: player.ID, TileID: tileID, Orientation: tile.Orientation,
	})
	return tile, nil
}

// PlaceTile commits the unplaced tile at place.
func (g *Game) PlaceTile(playerID, turnID, tileID string, place geometry.FieldPlace) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	player, err := g.guardCommand(playerID, turnID)
	if err != nil {
		return err
	}
	if err := g.currentTurn.CanPerform(ActionPlaceTile); err != nil {
		return err
	}
	pos, ok := g.movement.PositionOf(player.ID)
	if !ok {
		return NewGameError(ErrPlayerCannotBeFound, "player %s has no position", player.ID)
	}
	tile, err := g.field.PlaceTile(tileID, place, pos)
	if err != nil {
		return err
	}
	g.record(ActionPlaceTile, tileID, map[string]any{"place": place.String()})
	events.Publish(g.bus, TilePlaced{
		GameID: g.id, PlayerID: player.ID, TileID: tile.ID, Place: place, Room: tile.Room,
	})
	return nil
}

// MovePlayer walks the current player one step. Entering an undefeated
// monster's room starts a battle instead of a plain move; entering free loot
// force-picks it.
func (g *Game) MovePlayer(playerID, turnID string, to geometry.FieldPlace, ignoreMonster, isTilePlacementMove bool) (*MoveOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	player, err := g.guardCommand(playerID, turnID)
	if err != nil {
		return nil, err
	}
	pos, ok := g.movement.PositionOf(player.ID)
	if !ok {
		return nil, NewGameError(ErrPlayerCannotBeFound, "player %s has no position", player.ID)
	}

	if err := g.movement.Validate(player.ID, to); err != nil {
		return nil, err
	}
	action := ActionMove
	switch {
	case isTilePlacementMove:
		action = ActionDiscoverTile
	case g.isGateHop(pos, to):
		action = ActionUseTeleport
	}
	if err := g.currentTurn.CanPerform(action); err != nil {
		return nil, err
	}

	outcome := &MoveOutcome{}
	item := g.field.ItemAt(to)

	if item != nil && item.Guarded() && !(ignoreMonster && g.testMode) {
		// The player steps into the room and the fight starts. The step
		// itself is free; losing walks them back out.
		g.movement.SetPosition(player.ID, to)
		g.record(ActionFightMonster, "", map[string]any{
			"monster":  item.Name,
			"position": to.String(),
		})
		events.Publish(g.bus, StartBattle{
			GameID: g.id, PlayerID: player.ID, Position: to, FromPosition: pos,
			MonsterName: item.Name, MonsterHP: item.GuardHP,
		})

		info := g.battle.Resolve(player, item, to, pos)
		if info.NeedsConsumableConfirmation {
			preview := item.DefeatGuard()
			info.Reward = preview
			info.IsPotentialReward = true
		}
		g.field.SetLastBattle(info)
		g.activeBattle = info
		if !info.NeedsConsumableConfirmation {
			if err := g.finalizeBattleLocked(player, info, nil, false); err != nil {
				return nil, err
			}
		}
		outcome.Battle = info
		return outcome, nil
	}

	forcedPickup := item != nil && !item.Locked()
	if forcedPickup && !player.Inventory.HasRoomFor(item.Type) {
		return nil, NewGameError(ErrInventoryBlocks, "%s at %s does not fit the inventory", item.Type, to).
			WithDetails(map[string]any{
				"itemCategory":       items.CategoryOf(item.Type),
				"maxItemsInCategory": CapacityOf(items.CategoryOf(item.Type)),
			})
	}

	if err := g.currentTurn.Record(action, "", map[string]any{
		"from": pos.String(), "to": to.String(),
	}); err != nil {
		return nil, err
	}
	g.movement.SetPosition(player.ID, to)
	events.Publish(g.bus, PlayerMoved{
		GameID: g.id, PlayerID: player.ID, From: pos, To: to, IsBattleReturn: false,
	})

	if forcedPickup {
		g.field.RemoveItem(to)
		outcome.Item = item
		g.record(ActionPickUpEquipment, "", map[string]any{"itemId": item.ID})
		g.collectLocked(player, item, to)
	}
	return outcome, nil
}

// isGateHop reports whether a step rides the teleportation mesh rather than
// a shared edge.
func (g *Game) isGateHop(from, to geometry.FieldPlace) bool {
	fromGate, toGate := false, false
	for _, gate := range g.field.Gates() {
		if gate == from {
			fromGate = true
		}
		if gate == to {
			toGate = true
		}
	}
	if !fromGate || !toGate {
		return false
	}
	// Adjacent gates with matching openings are an ordinary walk.
	for _, sibling := range from.Siblings() {
		if sibling == to {
			return false
		}
	}
	return true
}

// FinalizeBattle confirms a paused battle with the chosen consumables.
func (g *Game) FinalizeBattle(playerID, turnID, battleID string, selectedConsumableIDs []string, pickupItem bool) (*BattleInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	info := g.activeBattle
	if info == nil || info.BattleID != battleID {
		// Confirming a battle that already settled itself is a no-op ack,
		// even when the settlement ended the turn.
		if last := g.settledBattle; last != nil && last.BattleID == battleID &&
			last.Finalized && last.PlayerID == playerID {
			return last, nil
		}
		if _, err := g.guardCommand(playerID, turnID); err != nil {
			return nil, err
		}
		return nil, NewGameError(ErrBattleCannotBeFound, "battle %s is not awaiting finalization", battleID)
	}

	player, err := g.guardCommand(playerID, turnID)
	if err != nil {
		return nil, err
	}
	if info.PlayerID != playerID {
		return nil, NewGameError(ErrNotYourTurn, "battle %s belongs to %s", battleID, info.PlayerID)
	}
	if err := g.finalizeBattleLocked(player, info, selectedConsumableIDs, pickupItem); err != nil {
		return nil, err
	}
	return info, nil
}

// finalizeBattleLocked burns consumables, fixes the outcome, and applies its
// consequences: defeat and reward on a win, damage and step-back otherwise.
func (g *Game) finalizeBattleLocked(player *Player, info *BattleInfo, selectedConsumableIDs []string, pickupItem bool) error {
	burned, err := g.battle.ApplyConsumables(info, player, selectedConsumableIDs)
	if err != nil {
		return err
	}
	for _, consumable := range burned {
		g.field.MarkConsumed(consumable.ID)
		player.Inventory.Remove(consumable.ID)
		events.Publish(g.bus, ItemRemovedFromInventory{
			GameID: g.id, PlayerID: player.ID, ItemID: consumable.ID, Item: consumable,
		})
	}
	g.activeBattle = nil
	g.settledBattle = info

	events.Publish(g.bus, BattleCompleted{
		GameID: g.id, BattleID: info.BattleID, PlayerID: player.ID,
		Position: info.Position, FromPosition: info.FromPosition,
		MonsterName: info.MonsterName, MonsterHP: info.MonsterHP,
		DiceRolls: info.DiceRolls, TotalDamage: info.TotalDamage, Result: info.Result,
	})

	if info.Result == BattleResultWin {
		monster := g.field.ItemAt(info.Position)
		if monster == nil {
			return NewGameError(ErrInvariantViolated, "no monster left at %s for battle %s", info.Position, info.BattleID)
		}
		defeated := monster.DefeatGuard()
		g.field.ReplaceItem(info.Position, defeated)
		info.Reward = defeated
		info.IsPotentialReward = false
		events.Publish(g.bus, MonsterDefeated{
			GameID: g.id, PlayerID: player.ID, Position: info.Position,
			MonsterName: info.MonsterName, Reward: defeated,
		})

		// Chests earned in combat are spoils, no key needed.
		if defeated.Type == items.TypeChest || defeated.Type == items.TypeRubyChest {
			g.field.RemoveItem(info.Position)
			g.record(ActionPickItem, "", map[string]any{"itemId": defeated.ID, "autoCollected": true})
			g.collectLocked(player, defeated, info.Position)
		} else if pickupItem && player.Inventory.HasRoomFor(defeated.Type) {
			g.field.RemoveItem(info.Position)
			g.record(ActionPickItem, "", map[string]any{"itemId": defeated.ID})
			g.collectLocked(player, defeated, info.Position)
		}
		return nil
	}

	// DRAW or LOSE: one point of damage and a forced retreat.
	player.TakeDamage(1)
	if player.HP == 0 {
		events.Publish(g.bus, PlayerStunned{GameID: g.id, PlayerID: player.ID})
	}
	if g.field.TileAt(info.FromPosition) != nil {
		g.movement.SetPosition(player.ID, info.FromPosition)
		events.Publish(g.bus, PlayerMoved{
			GameID: g.id, PlayerID: player.ID,
			From: info.Position, To: info.FromPosition, IsBattleReturn: true,
		})
	} else {
		g.log.Warn("battle return target no longer exists, keeping player in place",
			zap.String("battleId", info.BattleID),
			zap.String("fromPosition", info.FromPosition.String()))
	}
	g.endTurnLocked()
	return nil
}

// collectLocked puts an item into the player's inventory and checks for
// victory. The caller has already taken the item off the field.
func (g *Game) collectLocked(player *Player, item *items.Item, position geometry.FieldPlace) {
	if err := player.Inventory.Add(item); err != nil {
		// Give it back to the field rather than losing it.
		g.log.Warn("auto-collect failed, leaving item on field",
			zap.String("itemId", item.ID), zap.Error(err))
		g.field.SetItem(position, item)
		return
	}
	events.Publish(g.bus, ItemPickedUp{
		GameID: g.id, PlayerID: player.ID, Position: position, Item: item,
	})
	if item.EndsGame() {
		g.finishLocked(player.ID)
	}
}

func (g *Game) finishLocked(winnerID string) {
	g.status = StatusFinished
	g.winnerID = winnerID
	if turn := g.currentTurn; turn != nil && !turn.Ended() {
		turn.Close()
		g.history = append(g.history, turn)
		events.Publish(g.bus, TurnEnded{GameID: g.id, TurnID: turn.TurnID, PlayerID: turn.PlayerID, Turn: turn})
	}
	events.Publish(g.bus, GameFinished{GameID: g.id, WinnerID: winnerID})
	g.log.Info("game finished", zap.String("winnerId", winnerID))
}

// PickItem collects the item at the player's position into their inventory.
// Guarded items need a proven win this turn; chests need a key, which is
// consumed. itemIDToReplace resolves a full category by eviction.
func (g *Game) PickItem(playerID, turnID string, position geometry.FieldPlace, itemIDToReplace string) (*PickOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	player, err := g.guardCommand(playerID, turnID)
	if err != nil {
		return nil, err
	}
	if err := g.currentTurn.CanPerform(ActionPickItem); err != nil {
		return nil, err
	}
	return g.pickItemLocked(player, position, itemIDToReplace)
}

func (g *Game) pickItemLocked(player *Player, position geometry.FieldPlace, itemIDToReplace string) (*PickOutcome, error) {
	pos, ok := g.movement.PositionOf(player.ID)
	if !ok || pos != position {
		return nil, NewGameError(ErrActionNotAllowed, "items can only be picked at the player's position")
	}
	item := g.field.ItemAt(position)
	if item == nil {
		return nil, NewGameError(ErrItemCannotBeFound, "no item at %s", position)
	}

	if item.Guarded() {
		last := g.field.LastBattle()
		wonHere := last != nil && last.Result == BattleResultWin &&
			last.PlayerID == player.ID && last.Position == position
		if !wonHere {
			return nil, NewGameError(ErrActionNotAllowed, "%s still guards the item at %s", item.Name, position)
		}
		item = item.DefeatGuard()
		g.field.ReplaceItem(position, item)
	}

	data := map[string]any{"itemId": item.ID}
	if item.Type == items.TypeChest {
		if len(player.Inventory.Keys) == 0 {
			return nil, NewGameError(ErrMissingKey, "a key is needed to open the %s", item.Type).
				WithDetails(map[string]any{"chestType": item.Type})
		}
		key := player.Inventory.Keys[0]
		g.field.MarkConsumed(key.ID)
		player.Inventory.Remove(key.ID)
		events.Publish(g.bus, ItemRemovedFromInventory{
			GameID: g.id, PlayerID: player.ID, ItemID: key.ID, Item: key,
		})
		data["keyConsumed"] = key.ID
	}

	outcome := &PickOutcome{Item: item}
	switch {
	case itemIDToReplace != "":
		evicted, err := player.Inventory.Replace(item, itemIDToReplace)
		if err != nil {
			return nil, err
		}
		outcome.Replaced = true
		outcome.Evicted = evicted
		events.Publish(g.bus, ItemRemovedFromInventory{
			GameID: g.id, PlayerID: player.ID, ItemID: evicted.ID, Item: evicted,
		})
	case item.Type == items.TypeKey && len(player.Inventory.Keys) >= MaxKeys:
		// Keys are interchangeable, swap silently.
		evicted, err := player.Inventory.Replace(item, player.Inventory.Keys[0].ID)
		if err != nil {
			return nil, err
		}
		outcome.Replaced = true
		outcome.Evicted = evicted
		events.Publish(g.bus, ItemRemovedFromInventory{
			GameID: g.id, PlayerID: player.ID, ItemID: evicted.ID, Item: evicted,
		})
	default:
		if err := player.Inventory.Add(item); err != nil {
			return nil, err
		}
	}

	// The eviction handler may have re-placed the evicted item here; only
	// clear the cell if it still holds what we just picked.
	if current := g.field.ItemAt(position); current != nil && current.ID == item.ID {
		g.field.RemoveItem(position)
	}

	g.record(ActionPickItem, "", data)
	events.Publish(g.bus, ItemPickedUp{
		GameID: g.id, PlayerID: player.ID, Position: position, Item: item,
	})
	if item.EndsGame() {
		g.finishLocked(player.ID)
	}
	return outcome, nil
}

// ReplaceInventoryItem resolves a full-inventory conflict: the item still on
// the field at the player's position goes in, the named held item goes out.
func (g *Game) ReplaceInventoryItem(playerID, itemID, itemIDToReplace string) (*PickOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	player, err := g.guardCommand(playerID, "")
	if err != nil {
		return nil, err
	}
	pos, ok := g.movement.PositionOf(player.ID)
	if !ok {
		return nil, NewGameError(ErrPlayerCannotBeFound, "player %s has no position", player.ID)
	}
	item := g.field.ItemAt(pos)
	if item == nil || (itemID != "" && item.ID != itemID) {
		return nil, NewGameError(ErrItemCannotBeFound, "item %s is not at %s", itemID, pos)
	}
	if err := g.currentTurn.CanPerform(ActionPickItem); err != nil {
		return nil, err
	}
	return g.pickItemLocked(player, pos, itemIDToReplace)
}

// UseSpell casts a held spell. Teleport is the only active spell type: it
// jumps the caster to a healing fountain and ends the turn.
func (g *Game) UseSpell(playerID, turnID, itemID string, target geometry.FieldPlace) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	player, err := g.guardCommand(playerID, turnID)
	if err != nil {
		return err
	}
	if err := g.currentTurn.CanPerform(ActionUseSpell); err != nil {
		return err
	}
	spell := player.Inventory.Find(itemID)
	if spell == nil {
		return NewGameError(ErrItemCannotBeFound, "spell %s is not in inventory", itemID)
	}
	if spell.Type != items.TypeTeleport {
		return NewGameError(ErrSpellCannotBeUsed, "%s cannot be cast", spell.Type)
	}
	if !g.field.IsFountain(target) {
		return NewGameError(ErrSpellCannotBeUsed, "teleport target %s is not a healing fountain", target)
	}

	pos, _ := g.movement.PositionOf(player.ID)
	g.field.MarkConsumed(spell.ID)
	player.Inventory.Remove(spell.ID)
	events.Publish(g.bus, ItemRemovedFromInventory{
		GameID: g.id, PlayerID: player.ID, ItemID: spell.ID, Item: spell,
	})

	g.movement.SetPosition(player.ID, target)
	g.record(ActionUseSpell, "", map[string]any{
		"itemId": spell.ID, "target": target.String(),
	})
	events.Publish(g.bus, SpellUsed{GameID: g.id, PlayerID: player.ID, ItemID: spell.ID, Target: target})
	events.Publish(g.bus, PlayerMoved{
		GameID: g.id, PlayerID: player.ID, From: pos, To: target, IsBattleReturn: false,
	})

	g.endTurnLocked()
	return nil
}

// EndTurn closes the current turn and hands play to the next player.
func (g *Game) EndTurn(playerID, turnID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := g.guardCommand(playerID, turnID); err != nil {
		return err
	}
	g.endTurnLocked()
	return nil
}

func (g *Game) endTurnLocked() {
	turn := g.currentTurn
	if turn.Ended() {
		return
	}
	g.record(ActionEndTurn, "", nil)
	turn.Close()
	g.history = append(g.history, turn)
	events.Publish(g.bus, TurnEnded{GameID: g.id, TurnID: turn.TurnID, PlayerID: turn.PlayerID, Turn: turn})

	if g.status == StatusFinished {
		return
	}
	g.advanceTurnLocked()
}

// advanceTurnLocked rotates to the next playable player. Stunned players get
// their HP back and their turn auto-ended.
func (g *Game) advanceTurnLocked() {
	for attempts := 0; attempts < len(g.players)*2; attempts++ {
		g.currentIdx = (g.currentIdx + 1) % len(g.players)
		g.turnNumber++
		player := g.players[g.currentIdx]
		if player.Defeated {
			continue
		}

		g.beginTurnLocked(player)

		if player.HP > 0 {
			return
		}

		// Stun recovery: HP comes back, the turn does not.
		if g.field.IsFountain(g.mustPositionOf(player.ID)) {
			player.Heal()
			g.record(ActionHealAtFountain, "", nil)
			events.Publish(g.bus, PlayerHealedAtFountain{
				GameID: g.id, PlayerID: player.ID,
				Position: g.mustPositionOf(player.ID), HP: player.HP,
			})
		} else {
			player.Heal()
		}
		turn := g.currentTurn
		turn.Close()
		g.history = append(g.history, turn)
		events.Publish(g.bus, TurnEnded{GameID: g.id, TurnID: turn.TurnID, PlayerID: turn.PlayerID, Turn: turn})
	}
	g.log.Error("no playable player found, game is stuck")
}

func (g *Game) mustPositionOf(playerID string) geometry.FieldPlace {
	pos, _ := g.movement.PositionOf(playerID)
	return pos
}
