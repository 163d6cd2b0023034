package engine

import (
	"math/rand"

	"github.com/delveworks/dungeon-delve-engine/internal/items"
)

// Bag is the ordered, finite item queue of one game. Room tiles draw their
// guarded loot from the front.
type Bag struct {
	items []*items.Item
	drawn int
}

// NewBag builds a shuffled classic bag (88 items, one dragon).
func NewBag(rng *rand.Rand) *Bag {
	contents := items.ClassicBagContents()
	rng.Shuffle(len(contents), func(i, j int) {
		contents[i], contents[j] = contents[j], contents[i]
	})
	return &Bag{items: contents}
}

// NewBagFromSequence builds a deterministic test bag from monster names.
func NewBagFromSequence(sequence []string) (*Bag, error) {
	contents := make([]*items.Item, 0, len(sequence))
	for _, name := range sequence {
		item, err := items.NewMonsterItem(items.MonsterName(name))
		if err != nil {
			return nil, err
		}
		contents = append(contents, item)
	}
	return &Bag{items: contents}, nil
}

// NextItem draws the front item.
func (b *Bag) NextItem() (*items.Item, error) {
	if len(b.items) == 0 {
		return nil, NewGameError(ErrNoItemsLeftInBag, "no items left in bag")
	}
	item := b.items[0]
	b.items = b.items[1:]
	b.drawn++
	return item, nil
}

// Remaining returns the number of undrawn items.
func (b *Bag) Remaining() int {
	return len(b.items)
}

// Drawn returns how many items left the bag so far.
func (b *Bag) Drawn() int {
	return b.drawn
}
