package engine

import (
	"github.com/delveworks/dungeon-delve-engine/internal/items"
)

// Inventory category capacities. Treasures are unbounded.
const (
	MaxKeys    = 1
	MaxWeapons = 2
	MaxSpells  = 3
)

// Inventory holds a player's items in four capacity-limited categories.
type Inventory struct {
	Keys      []*items.Item `json:"keys"`
	Weapons   []*items.Item `json:"weapons"`
	Spells    []*items.Item `json:"spells"`
	Treasures []*items.Item `json:"treasures"`
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{
		Keys:      make([]*items.Item, 0),
		Weapons:   make([]*items.Item, 0),
		Spells:    make([]*items.Item, 0),
		Treasures: make([]*items.Item, 0),
	}
}

func (inv *Inventory) category(c items.Category) *[]*items.Item {
	switch c {
	case items.CategoryKeys:
		return &inv.Keys
	case items.CategoryWeapons:
		return &inv.Weapons
	case items.CategorySpells:
		return &inv.Spells
	default:
		return &inv.Treasures
	}
}

// CapacityOf returns the capacity of a category, or -1 for unbounded.
func CapacityOf(c items.Category) int {
	switch c {
	case items.CategoryKeys:
		return MaxKeys
	case items.CategoryWeapons:
		return MaxWeapons
	case items.CategorySpells:
		return MaxSpells
	default:
		return -1
	}
}

// All returns every item across all categories.
func (inv *Inventory) All() []*items.Item {
	var all []*items.Item
	all = append(all, inv.Keys...)
	all = append(all, inv.Weapons...)
	all = append(all, inv.Spells...)
	all = append(all, inv.Treasures...)
	return all
}

// Find locates an item by id.
func (inv *Inventory) Find(itemID string) *items.Item {
	for _, item := range inv.All() {
		if item.ID == itemID {
			return item
		}
	}
	return nil
}

// Count returns the total number of held items.
func (inv *Inventory) Count() int {
	return len(inv.Keys) + len(inv.Weapons) + len(inv.Spells) + len(inv.Treasures)
}

// HasRoomFor reports whether an item of the given type fits without eviction.
func (inv *Inventory) HasRoomFor(t items.ItemType) bool {
	category := items.CategoryOf(t)
	capacity := CapacityOf(category)
	return capacity < 0 || len(*inv.category(category)) < capacity
}

// Add inserts an item, failing with InventoryFull when its category is at
// capacity. The error details carry the category snapshot so the client can
// prompt for a replacement.
func (inv *Inventory) Add(item *items.Item) error {
	category := items.CategoryOf(item.Type)
	slot := inv.category(category)
	capacity := CapacityOf(category)

	if capacity >= 0 && len(*slot) >= capacity {
		current := make([]*items.Item, len(*slot))
		copy(current, *slot)
		return NewGameError(ErrInventoryFull, "%s is full (%d/%d)", category, len(*slot), capacity).
			WithDetails(map[string]any{
				"itemCategory":       category,
				"maxItemsInCategory": capacity,
				"currentInventory":   current,
			})
	}

	*slot = append(*slot, item)
	return nil
}

// Remove takes an item out by id and returns it.
func (inv *Inventory) Remove(itemID string) *items.Item {
	for _, category := range []items.Category{items.CategoryKeys, items.CategoryWeapons, items.CategorySpells, items.CategoryTreasures} {
		slot := inv.category(category)
		for i, item := range *slot {
			if item.ID == itemID {
				*slot = append((*slot)[:i], (*slot)[i+1:]...)
				return item
			}
		}
	}
	return nil
}

// Replace swaps the held item with id evictID for the new item, which must
// belong to the same category. Returns the evicted item.
func (inv *Inventory) Replace(newItem *items.Item, evictID string) (*items.Item, error) {
	evicted := inv.Find(evictID)
	if evicted == nil {
		return nil, NewGameError(ErrItemCannotBeFound, "item %s not in inventory", evictID)
	}
	if items.CategoryOf(evicted.Type) != items.CategoryOf(newItem.Type) {
		return nil, NewGameError(ErrActionNotAllowed, "cannot replace %s with %s across categories",
			evicted.Type, newItem.Type)
	}

	inv.Remove(evictID)
	if err := inv.Add(newItem); err != nil {
		// Capacity was freed by the eviction; hitting this means the
		// inventory was corrupted.
		inv.Add(evicted)
		return nil, err
	}
	return evicted, nil
}

// WeaponDamage sums the passive damage of carried weapons.
func (inv *Inventory) WeaponDamage() int {
	total := 0
	for _, weapon := range inv.Weapons {
		total += items.DamageBonus(weapon.Type)
	}
	return total
}

// Consumables returns the items that can be burned for battle damage.
func (inv *Inventory) Consumables() []*items.Item {
	var consumables []*items.Item
	for _, spell := range inv.Spells {
		if items.IsConsumable(spell.Type) {
			consumables = append(consumables, spell)
		}
	}
	return consumables
}

// Player is one participant's combat state and belongings.
type Player struct {
	ID            string     `json:"id"`
	HP            int        `json:"hp"`
	MaxHP         int        `json:"maxHp"`
	Defeated      bool       `json:"defeated"`
	StunnedAtZero bool       `json:"stunnedAtZero"`
	Inventory     *Inventory `json:"inventory"`
}

// NewPlayer creates a player at full health.
func NewPlayer(id string, maxHP int) *Player {
	if maxHP <= 0 {
		maxHP = DefaultMaxHP
	}
	return &Player{
		ID:        id,
		HP:        maxHP,
		MaxHP:     maxHP,
		Inventory: NewInventory(),
	}
}

// TakeDamage reduces HP, flooring at zero and flagging the stun state.
func (p *Player) TakeDamage(damage int) {
	p.HP -= damage
	if p.HP <= 0 {
		p.HP = 0
		p.StunnedAtZero = true
	}
}

// Heal restores HP to the maximum and clears the stun flag.
func (p *Player) Heal() {
	p.HP = p.MaxHP
	p.StunnedAtZero = false
}

// NeedsHealing reports whether the player is below full health.
func (p *Player) NeedsHealing() bool {
	return p.HP < p.MaxHP
}
