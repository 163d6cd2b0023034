// Package items defines the item catalog: item types, the monster table with
// canonical guard strength, damage bonuses, and the classic bag distribution.
package items

import (
	"fmt"

	"github.com/google/uuid"
)

// ItemType discriminates item behavior. Items carry their type as a value,
// not a subclass; storage serializes these as small strings.
type ItemType string

const (
	TypeKey       ItemType = "key"
	TypeDagger    ItemType = "dagger"
	TypeSword     ItemType = "sword"
	TypeAxe       ItemType = "axe"
	TypeFireball  ItemType = "fireball"
	TypeTeleport  ItemType = "teleport"
	TypeChest     ItemType = "chest"
	TypeRubyChest ItemType = "ruby_chest"
)

// Category groups item types into the four inventory categories.
type Category string

const (
	CategoryKeys      Category = "keys"
	CategoryWeapons   Category = "weapons"
	CategorySpells    Category = "spells"
	CategoryTreasures Category = "treasures"
)

// CategoryOf returns the inventory category for an item type.
func CategoryOf(t ItemType) Category {
	switch t {
	case TypeKey:
		return CategoryKeys
	case TypeDagger, TypeSword, TypeAxe:
		return CategoryWeapons
	case TypeFireball, TypeTeleport:
		return CategorySpells
	default:
		return CategoryTreasures
	}
}

// FireballDamageBonus is the consumable bonus a fireball adds when selected
// during battle finalization. The original flow docs also float a +9 figure
// for one scripted scenario; the engine damage table is authoritative.
const FireballDamageBonus = 1

// DamageBonus returns the passive battle damage an item type contributes.
// Weapons apply automatically; the fireball applies only when consumed.
func DamageBonus(t ItemType) int {
	switch t {
	case TypeDagger:
		return 1
	case TypeFireball:
		return FireballDamageBonus
	case TypeSword:
		return 2
	case TypeAxe:
		return 3
	default:
		return 0
	}
}

// IsConsumable reports whether the item type is burned for bonus damage when
// selected in a battle finalization.
func IsConsumable(t ItemType) bool {
	return t == TypeFireball
}

// Item is a field or inventory item. A freshly drawn bag item is guarded by
// the monster it is named after until that monster is defeated in battle at
// the item's position.
type Item struct {
	ID            string   `json:"itemId"`
	Name          string   `json:"name"`
	Type          ItemType `json:"type"`
	GuardHP       int      `json:"guardHP"`
	TreasureValue int      `json:"treasureValue"`
	GuardDefeated bool     `json:"guardDefeated"`
}

// Guarded reports whether an undefeated monster still blocks pickup.
func (i *Item) Guarded() bool {
	return i.GuardHP > 0 && !i.GuardDefeated
}

// Locked reports whether the item cannot be freely picked up: either its
// guard still stands, or it is a keyed chest. The ruby chest is never keyed.
func (i *Item) Locked() bool {
	return i.Guarded() || i.Type == TypeChest
}

// EndsGame reports whether collecting this item finishes the game.
func (i *Item) EndsGame() bool {
	return i.Type == TypeRubyChest
}

// DefeatGuard returns a copy of the item with its guard marked defeated.
func (i *Item) DefeatGuard() *Item {
	defeated := *i
	defeated.GuardDefeated = true
	return &defeated
}

// MonsterName identifies an entry of the monster table. Bag items are named
// after the monster guarding them.
type MonsterName string

const (
	Dragon          MonsterName = "dragon"
	Fallen          MonsterName = "fallen"
	SkeletonKing    MonsterName = "skeleton_king"
	SkeletonWarrior MonsterName = "skeleton_warrior"
	SkeletonTurnkey MonsterName = "skeleton_turnkey"
	Mummy           MonsterName = "mummy"
	GiantSpider     MonsterName = "giant_spider"
	GiantRat        MonsterName = "giant_rat"
	TreasureChest   MonsterName = "treasure_chest"
)

// monsterTemplate pairs a monster with its canonical guard strength and the
// item it guards.
type monsterTemplate struct {
	guardHP       int
	reward        ItemType
	treasureValue int
}

var monsterTable = map[MonsterName]monsterTemplate{
	Dragon:          {guardHP: 15, reward: TypeRubyChest, treasureValue: 50},
	Fallen:          {guardHP: 12, reward: TypeAxe},
	SkeletonKing:    {guardHP: 10, reward: TypeChest, treasureValue: 25},
	SkeletonWarrior: {guardHP: 9, reward: TypeSword},
	SkeletonTurnkey: {guardHP: 8, reward: TypeKey},
	Mummy:           {guardHP: 7, reward: TypeFireball},
	GiantSpider:     {guardHP: 6, reward: TypeTeleport},
	GiantRat:        {guardHP: 5, reward: TypeDagger},
	TreasureChest:   {guardHP: 0, reward: TypeChest, treasureValue: 10},
}

// GuardHP returns the canonical guard strength for a monster name, or 0 for
// unknown names (unguarded loot).
func GuardHP(name MonsterName) int {
	return monsterTable[name].guardHP
}

// NewMonsterItem creates the bag item guarded by the named monster.
func NewMonsterItem(name MonsterName) (*Item, error) {
	template, ok := monsterTable[name]
	if !ok {
		return nil, fmt.Errorf("unknown monster: %s", name)
	}
	return &Item{
		ID:            uuid.NewString(),
		Name:          string(name),
		Type:          template.reward,
		GuardHP:       template.guardHP,
		TreasureValue: template.treasureValue,
	}, nil
}

// classicDistribution is the standard bag: 88 items, exactly one dragon.
var classicDistribution = []struct {
	name  MonsterName
	count int
}{
	{Dragon, 1},
	{Fallen, 2},
	{SkeletonKing, 4},
	{SkeletonWarrior, 8},
	{SkeletonTurnkey, 10},
	{Mummy, 12},
	{GiantSpider, 14},
	{GiantRat, 17},
	{TreasureChest, 20},
}

// ClassicBagContents builds the standard item set in distribution order.
// Shuffling is the caller's concern.
func ClassicBagContents() []*Item {
	var contents []*Item
	for _, entry := range classicDistribution {
		for i := 0; i < entry.count; i++ {
			item, _ := NewMonsterItem(entry.name)
			contents = append(contents, item)
		}
	}
	return contents
}
