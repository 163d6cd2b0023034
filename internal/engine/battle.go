package engine

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/delveworks/dungeon-delve-engine/internal/geometry"
	"github.com/delveworks/dungeon-delve-engine/internal/items"
	"github.com/delveworks/dungeon-delve-engine/internal/logger"
)

// BattleResult is the outcome of comparing total damage against monster HP.
type BattleResult string

const (
	BattleResultWin  BattleResult = "WIN"
	BattleResultDraw BattleResult = "DRAW"
	BattleResultLose BattleResult = "LOSE"
)

// BattleInfo is the snapshot of one battle. It stays attached to the field as
// lastBattleInfo until the turn ends and doubles as the transport payload.
type BattleInfo struct {
	BattleID     string              `json:"battleId"`
	PlayerID     string              `json:"playerId"`
	Position     geometry.FieldPlace `json:"position"`
	FromPosition geometry.FieldPlace `json:"fromPosition"`
	MonsterName  string              `json:"monsterType"`
	MonsterHP    int                 `json:"monsterHP"`
	DiceRolls    []int               `json:"diceRolls"`
	WeaponDamage int                 `json:"weaponDamage"`
	TotalDamage  int                 `json:"totalDamage"`
	Result       BattleResult        `json:"result"`

	AvailableConsumables        []*items.Item `json:"availableConsumables,omitempty"`
	NeedsConsumableConfirmation bool          `json:"needsConsumableConfirmation"`
	Finalized                   bool          `json:"finalized"`

	Reward            *items.Item `json:"reward,omitempty"`
	IsPotentialReward bool        `json:"isPotentialReward,omitempty"`
}

// resultFor compares damage to monster HP. Strictly greater wins.
func resultFor(totalDamage, monsterHP int) BattleResult {
	switch {
	case totalDamage > monsterHP:
		return BattleResultWin
	case totalDamage == monsterHP:
		return BattleResultDraw
	default:
		return BattleResultLose
	}
}

// BattleSystem resolves battles for one game.
type BattleSystem struct {
	gameID string
	dice   *DiceRoller
	log    *zap.Logger
}

// NewBattleSystem creates the battle resolver around the game's dice roller.
func NewBattleSystem(gameID string, dice *DiceRoller) *BattleSystem {
	return &BattleSystem{
		gameID: gameID,
		dice:   dice,
		log:    logger.Get().With(zap.String("gameId", gameID)),
	}
}

// Resolve rolls two dice and computes the provisional outcome of attacking
// the monster. On a DRAW or LOSE where the player's consumables could still
// lift total damage above monster HP, the battle pauses for confirmation;
// otherwise it is ready for immediate finalization.
func (b *BattleSystem) Resolve(player *Player, monster *items.Item, position, fromPosition geometry.FieldPlace) *BattleInfo {
	d1, d2 := b.dice.Next(), b.dice.Next()
	weaponDamage := player.Inventory.WeaponDamage()
	totalDamage := d1 + d2 + weaponDamage

	info := &BattleInfo{
		BattleID:     uuid.NewString(),
		PlayerID:     player.ID,
		Position:     position,
		FromPosition: fromPosition,
		MonsterName:  monster.Name,
		MonsterHP:    monster.GuardHP,
		DiceRolls:    []int{d1, d2},
		WeaponDamage: weaponDamage,
		TotalDamage:  totalDamage,
		Result:       resultFor(totalDamage, monster.GuardHP),
	}

	if info.Result != BattleResultWin {
		consumables := player.Inventory.Consumables()
		bonus := 0
		for _, consumable := range consumables {
			bonus += items.DamageBonus(consumable.Type)
		}
		if totalDamage+bonus > monster.GuardHP {
			info.AvailableConsumables = consumables
			info.NeedsConsumableConfirmation = true
		}
	}

	b.log.Info("battle resolved",
		zap.String("battleId", info.BattleID),
		zap.String("playerId", player.ID),
		zap.String("monster", monster.Name),
		zap.Ints("dice", info.DiceRolls),
		zap.Int("totalDamage", totalDamage),
		zap.String("result", string(info.Result)),
		zap.Bool("needsConfirmation", info.NeedsConsumableConfirmation))
	return info
}

// ApplyConsumables burns the selected consumables into the battle and
// recomputes the outcome. Selected ids must come from the battle's
// availableConsumables and still be in the player's inventory. Returns the
// burned items so the caller can destroy them.
func (b *BattleSystem) ApplyConsumables(info *BattleInfo, player *Player, selectedIDs []string) ([]*items.Item, error) {
	if info.Finalized {
		return nil, NewGameError(ErrBattleCannotBeFound, "battle %s is already finalized", info.BattleID)
	}

	available := make(map[string]bool, len(info.AvailableConsumables))
	for _, consumable := range info.AvailableConsumables {
		available[consumable.ID] = true
	}

	var burned []*items.Item
	for _, id := range selectedIDs {
		if !available[id] {
			return nil, NewGameError(ErrItemCannotBeFound, "consumable %s is not available in battle %s", id, info.BattleID)
		}
		item := player.Inventory.Find(id)
		if item == nil {
			return nil, NewGameError(ErrItemCannotBeFound, "consumable %s is not in inventory", id)
		}
		info.TotalDamage += items.DamageBonus(item.Type)
		burned = append(burned, item)
	}

	info.Result = resultFor(info.TotalDamage, info.MonsterHP)
	info.NeedsConsumableConfirmation = false
	info.Finalized = true
	return burned, nil
}
