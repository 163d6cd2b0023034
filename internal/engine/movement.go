package engine

import (
	"github.com/delveworks/dungeon-delve-engine/internal/geometry"
)

// Movement tracks per-player positions and the post-battle move lock for one
// game. Reachability itself is the field's concern; movement only validates
// against it.
type Movement struct {
	field            *Field
	positions        map[string]geometry.FieldPlace
	postBattleLocked map[string]bool
}

// NewMovement creates the movement aggregate bound to a field.
func NewMovement(field *Field) *Movement {
	return &Movement{
		field:            field,
		positions:        make(map[string]geometry.FieldPlace),
		postBattleLocked: make(map[string]bool),
	}
}

// InitPositions puts every player on the starting tile.
func (m *Movement) InitPositions(playerIDs []string) {
	for _, id := range playerIDs {
		m.positions[id] = StartingPlace
	}
}

// PositionOf returns a player's position.
func (m *Movement) PositionOf(playerID string) (geometry.FieldPlace, bool) {
	pos, ok := m.positions[playerID]
	return pos, ok
}

// Positions returns a copy of the position map.
func (m *Movement) Positions() map[string]geometry.FieldPlace {
	copied := make(map[string]geometry.FieldPlace, len(m.positions))
	for id, pos := range m.positions {
		copied[id] = pos
	}
	return copied
}

// Validate checks that a single step to target is legal for the player. It
// does not mutate anything.
func (m *Movement) Validate(playerID string, target geometry.FieldPlace) error {
	pos, ok := m.positions[playerID]
	if !ok {
		return NewGameError(ErrPlayerCannotBeFound, "player %s has no position", playerID)
	}
	if m.postBattleLocked[playerID] {
		return NewGameError(ErrCannotMoveAfterBattle, "player %s cannot move again after a battle this turn", playerID)
	}
	if m.field.TileAt(target) == nil || !m.field.CanTransition(pos, target) {
		return NewGameError(ErrPositionUnreachable, "position %s is not reachable from %s", target, pos)
	}
	return nil
}

// SetPosition moves the player unconditionally. Battle returns and spells use
// this to bypass validation.
func (m *Movement) SetPosition(playerID string, target geometry.FieldPlace) {
	m.positions[playerID] = target
}

// Lock blocks further voluntary moves for the player this turn.
func (m *Movement) Lock(playerID string) {
	m.postBattleLocked[playerID] = true
}

// IsLocked reports whether the post-battle lock is set.
func (m *Movement) IsLocked(playerID string) bool {
	return m.postBattleLocked[playerID]
}

// ClearLock lifts the post-battle lock, at turn start.
func (m *Movement) ClearLock(playerID string) {
	delete(m.postBattleLocked, playerID)
}
