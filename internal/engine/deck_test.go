package engine

import (
	"math/rand"
	"testing"

	"github.com/delveworks/dungeon-delve-engine/internal/items"
)

func TestDeckDrawsInOrderAndExhausts(t *testing.T) {
	deck, err := NewDeckFromSequence([]TileSpec{
		{Name: "fourSideRoom"},
		{Name: "twoSideStraight"},
	})
	if err != nil {
		t.Fatalf("build deck: %v", err)
	}

	first, err := deck.NextTile()
	if err != nil {
		t.Fatalf("first draw: %v", err)
	}
	if !first.Room {
		t.Error("first tile should be the room")
	}
	second, err := deck.NextTile()
	if err != nil {
		t.Fatalf("second draw: %v", err)
	}
	if second.Room {
		t.Error("second tile should be the corridor")
	}

	if !deck.IsEmpty() {
		t.Error("deck should be empty")
	}
	if _, err := deck.NextTile(); ErrorCode(err) != ErrNoTilesLeftInDeck {
		t.Errorf("expected %s, got %v", ErrNoTilesLeftInDeck, err)
	}
	if deck.Total() != 2 {
		t.Errorf("total = %d, want 2", deck.Total())
	}
}

func TestDeckFromSequenceRejectsUnknownShape(t *testing.T) {
	if _, err := NewDeckFromSequence([]TileSpec{{Name: "pentagon"}}); err == nil {
		t.Error("unknown shape must fail deck construction")
	}
}

func TestRandomDeckTileCount(t *testing.T) {
	deck := NewDeck(30, rand.New(rand.NewSource(7)))
	if deck.Remaining() != 30 || deck.Total() != 30 {
		t.Errorf("remaining=%d total=%d, want 30/30", deck.Remaining(), deck.Total())
	}
}

func TestBagSequenceAndExhaustion(t *testing.T) {
	bag, err := NewBagFromSequence([]string{"giant_rat", "dragon"})
	if err != nil {
		t.Fatalf("build bag: %v", err)
	}

	first, err := bag.NextItem()
	if err != nil {
		t.Fatalf("first draw: %v", err)
	}
	if first.Name != string(items.GiantRat) {
		t.Errorf("first item = %s, want giant_rat", first.Name)
	}
	if _, err := bag.NextItem(); err != nil {
		t.Fatalf("second draw: %v", err)
	}

	if _, err := bag.NextItem(); ErrorCode(err) != ErrNoItemsLeftInBag {
		t.Errorf("expected %s, got %v", ErrNoItemsLeftInBag, err)
	}
	if bag.Drawn() != 2 {
		t.Errorf("drawn = %d, want 2", bag.Drawn())
	}
}

func TestBagRejectsUnknownMonster(t *testing.T) {
	if _, err := NewBagFromSequence([]string{"gremlin"}); err == nil {
		t.Error("unknown monster must fail bag construction")
	}
}

func TestClassicBagHasOneDragon(t *testing.T) {
	bag := NewBag(rand.New(rand.NewSource(7)))
	if bag.Remaining() != 88 {
		t.Fatalf("classic bag size = %d, want 88", bag.Remaining())
	}
	dragons := 0
	for bag.Remaining() > 0 {
		item, err := bag.NextItem()
		if err != nil {
			t.Fatalf("draw: %v", err)
		}
		if item.Name == string(items.Dragon) {
			dragons++
		}
	}
	if dragons != 1 {
		t.Errorf("dragons = %d, want exactly 1", dragons)
	}
}
