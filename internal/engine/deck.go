package engine

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/delveworks/dungeon-delve-engine/internal/geometry"
)

// Deck is the ordered, finite tile queue of one game. Draws always come from
// the front; there is no reshuffling.
type Deck struct {
	tiles []*Tile
	total int
}

// NewDeck builds a randomized standard deck.
func NewDeck(size int, rng *rand.Rand) *Deck {
	tiles := make([]*Tile, 0, size)
	for i := 0; i < size; i++ {
		tiles = append(tiles, randomTile(rng))
	}
	return &Deck{tiles: tiles, total: size}
}

// NewDeckFromSequence builds a deterministic test deck.
func NewDeckFromSequence(sequence []TileSpec) (*Deck, error) {
	tiles := make([]*Tile, 0, len(sequence))
	for _, spec := range sequence {
		tile, err := spec.Build(uuid.NewString)
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, tile)
	}
	return &Deck{tiles: tiles, total: len(tiles)}, nil
}

// NextTile draws the front tile.
func (d *Deck) NextTile() (*Tile, error) {
	if len(d.tiles) == 0 {
		return nil, NewGameError(ErrNoTilesLeftInDeck, "no tiles left in deck")
	}
	tile := d.tiles[0]
	d.tiles = d.tiles[1:]
	return tile, nil
}

// Remaining returns the number of undrawn tiles.
func (d *Deck) Remaining() int {
	return len(d.tiles)
}

// Total returns the deck's original size.
func (d *Deck) Total() int {
	return d.total
}

// IsEmpty reports whether the deck is exhausted.
func (d *Deck) IsEmpty() bool {
	return len(d.tiles) == 0
}

// randomTile draws a shape from the classic proportions: corridors dominate,
// about a third of tiles are rooms, and features are rare.
func randomTile(rng *rand.Rand) *Tile {
	var orientation geometry.TileOrientation
	switch roll := rng.Intn(10); {
	case roll < 2:
		orientation = geometry.FourSide
	case roll < 5:
		orientation = geometry.ThreeSide
	case roll < 8:
		orientation = geometry.TwoSideStraight
	default:
		orientation = geometry.TwoSideCorner
	}
	// Random spin so identical shapes arrive in varied orientations.
	orientation = orientation.Rotated(geometry.Side(rng.Intn(4)))

	tile := &Tile{
		ID:          uuid.NewString(),
		Orientation: orientation,
		Room:        rng.Intn(3) == 0,
	}
	switch rng.Intn(20) {
	case 0:
		tile.Features = []TileFeature{FeatureTeleportationGate}
	case 1:
		tile.Features = []TileFeature{FeatureHealingFountain}
	}
	return tile
}
