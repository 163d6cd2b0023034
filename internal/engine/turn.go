package engine

import (
	"time"

	"github.com/google/uuid"
)

// TurnAction is one entry type in a turn's action log.
type TurnAction string

const (
	ActionMove            TurnAction = "MOVE"
	ActionDiscoverTile    TurnAction = "DISCOVER_TILE"
	ActionUseTeleport     TurnAction = "USE_TELEPORT"
	ActionPickTile        TurnAction = "PICK_TILE"
	ActionPlaceTile       TurnAction = "PLACE_TILE"
	ActionRotateTile      TurnAction = "ROTATE_TILE"
	ActionPickItem        TurnAction = "PICK_ITEM"
	ActionFightMonster    TurnAction = "FIGHT_MONSTER"
	ActionEndTurn         TurnAction = "END_TURN"
	ActionHealAtFountain  TurnAction = "HEAL_AT_FOUNTAIN"
	ActionUseSpell        TurnAction = "USE_SPELL"
	ActionUseHeroAbility  TurnAction = "USE_HERO_ABILITY"
	ActionPickUpEquipment TurnAction = "PICK_UP_EQUIPMENT"
	ActionUnlockChest     TurnAction = "UNLOCK_CHEST"
)

// countsTowardBudget reports whether the action consumes the per-turn budget.
// Tile exploration is free; only crossing the dungeon costs.
func countsTowardBudget(action TurnAction) bool {
	return action == ActionMove || action == ActionUseTeleport
}

// allowedAfter returns the actions permitted after the previous one. END_TURN
// is always permitted and not listed. A nil return means no restriction
// beyond the tile-placement chain.
func allowedAfter(previous TurnAction) []TurnAction {
	switch previous {
	case ActionPickTile, ActionRotateTile:
		return []TurnAction{ActionPlaceTile, ActionRotateTile}
	case ActionFightMonster:
		return []TurnAction{ActionPickItem}
	case ActionPickUpEquipment, ActionUnlockChest, ActionHealAtFountain:
		return []TurnAction{}
	default:
		return nil
	}
}

// TurnActionRecord is one logged action inside a turn.
type TurnActionRecord struct {
	Action         TurnAction     `json:"action"`
	TileID         string         `json:"tileId,omitempty"`
	AdditionalData map[string]any `json:"additionalData,omitempty"`
	At             time.Time      `json:"at"`
}

// Turn is the action log of one player's turn.
type Turn struct {
	TurnID        string             `json:"turnId"`
	GameID        string             `json:"gameId"`
	PlayerID      string             `json:"playerId"`
	TurnNumber    int                `json:"turnNumber"`
	StartTime     time.Time          `json:"startTime"`
	EndTime       *time.Time         `json:"endTime,omitempty"`
	Actions       []TurnActionRecord `json:"actions"`
	ActionCounter int                `json:"actionCounter"`
}

// NewTurn opens a fresh turn for the player.
func NewTurn(gameID, playerID string, turnNumber int) *Turn {
	return &Turn{
		TurnID:     uuid.NewString(),
		GameID:     gameID,
		PlayerID:   playerID,
		TurnNumber: turnNumber,
		StartTime:  time.Now().UTC(),
		Actions:    make([]TurnActionRecord, 0),
	}
}

// LastAction returns the most recent logged action, or "" on an empty turn.
func (t *Turn) LastAction() TurnAction {
	if len(t.Actions) == 0 {
		return ""
	}
	return t.Actions[len(t.Actions)-1].Action
}

// HasBattle reports whether a battle was fought this turn.
func (t *Turn) HasBattle() bool {
	for _, record := range t.Actions {
		if record.Action == ActionFightMonster {
			return true
		}
	}
	return false
}

// Ended reports whether the turn is closed.
func (t *Turn) Ended() bool {
	return t.EndTime != nil
}

// CanPerform checks the action against the allowed-next-action matrix and the
// action budget without recording anything.
func (t *Turn) CanPerform(action TurnAction) error {
	if t.Ended() {
		return NewGameError(ErrActionNotAllowed, "turn %s has ended", t.TurnID)
	}
	if action == ActionEndTurn {
		return nil
	}
	if t.ActionCounter >= MaxActionsPerTurn && countsTowardBudget(action) {
		return NewGameError(ErrActionNotAllowed, "action budget of %d is spent, end the turn", MaxActionsPerTurn)
	}

	previous := t.LastAction()
	switch previous {
	case "":
		switch action {
		case ActionMove, ActionDiscoverTile, ActionUseTeleport, ActionPickTile,
			ActionPickItem, ActionHealAtFountain, ActionFightMonster:
			return nil
		}
		return NewGameError(ErrActionNotAllowed, "%s cannot open a turn", action)
	case ActionUseSpell, ActionUseHeroAbility:
		if action == ActionUseSpell || action == ActionUseHeroAbility {
			return NewGameError(ErrActionNotAllowed, "%s cannot follow %s", action, previous)
		}
		return nil
	}

	allowed := allowedAfter(previous)
	if allowed == nil {
		// Free sequencing, except the placement chain must start with a pick.
		if action == ActionPlaceTile || action == ActionRotateTile {
			return NewGameError(ErrActionNotAllowed, "%s requires a picked tile", action)
		}
		return nil
	}
	for _, candidate := range allowed {
		if candidate == action {
			return nil
		}
	}
	return NewGameError(ErrActionNotAllowed, "%s cannot follow %s", action, previous)
}

// Record validates and appends an action to the log.
func (t *Turn) Record(action TurnAction, tileID string, data map[string]any) error {
	if err := t.CanPerform(action); err != nil {
		return err
	}
	t.Actions = append(t.Actions, TurnActionRecord{
		Action:         action,
		TileID:         tileID,
		AdditionalData: data,
		At:             time.Now().UTC(),
	})
	if countsTowardBudget(action) {
		t.ActionCounter++
	}
	return nil
}

// MustEnd reports whether the action budget is spent.
func (t *Turn) MustEnd() bool {
	return t.ActionCounter >= MaxActionsPerTurn
}

// Close stamps the end time.
func (t *Turn) Close() {
	now := time.Now().UTC()
	t.EndTime = &now
}
