package engine

import (
	"sort"

	"go.uber.org/zap"

	"github.com/delveworks/dungeon-delve-engine/internal/geometry"
	"github.com/delveworks/dungeon-delve-engine/internal/items"
	"github.com/delveworks/dungeon-delve-engine/internal/logger"
)

// StartingPlace is the origin every game grows from. The starting tile is
// always a healing fountain.
var StartingPlace = geometry.FieldPlace{X: 0, Y: 0}

// Field is the grid aggregate of one game: placed tiles, reachability
// transitions, field items, features, and the at-most-one unplaced tile.
type Field struct {
	gameID string
	log    *zap.Logger

	tiles      map[geometry.FieldPlace]*Tile
	tilePlaces map[string]geometry.FieldPlace
	roomPlaces map[geometry.FieldPlace]bool

	// available maps empty cells adjacent to an open side onto the
	// constraint mask a tile placed there must satisfy.
	available map[geometry.FieldPlace]geometry.TileOrientation

	// transitions is a directed adjacency map. Edges between placed tiles
	// are always symmetric; an edge onto an empty available cell is a
	// one-way placement placeholder.
	transitions map[geometry.FieldPlace]map[geometry.FieldPlace]bool

	items     map[geometry.FieldPlace]*items.Item
	gates     []geometry.FieldPlace
	fountains map[geometry.FieldPlace]bool

	unplaced        *Tile
	placedCount     int
	consumedItemIDs map[string]bool
	lastBattle      *BattleInfo
}

// NewField creates the field with the starting tile installed at the origin.
func NewField(gameID string, start *Tile) *Field {
	f := &Field{
		gameID:          gameID,
		log:             logger.Get().With(zap.String("gameId", gameID)),
		tiles:           make(map[geometry.FieldPlace]*Tile),
		tilePlaces:      make(map[string]geometry.FieldPlace),
		roomPlaces:      make(map[geometry.FieldPlace]bool),
		available:       make(map[geometry.FieldPlace]geometry.TileOrientation),
		transitions:     make(map[geometry.FieldPlace]map[geometry.FieldPlace]bool),
		items:           make(map[geometry.FieldPlace]*items.Item),
		fountains:       make(map[geometry.FieldPlace]bool),
		consumedItemIDs: make(map[string]bool),
	}
	if !start.HasFeature(FeatureHealingFountain) {
		start.Features = append(start.Features, FeatureHealingFountain)
	}
	f.install(StartingPlace, start)
	return f
}

// TileAt returns the tile at a place, or nil.
func (f *Field) TileAt(place geometry.FieldPlace) *Tile {
	return f.tiles[place]
}

// PlaceOf returns the place a tile id occupies.
func (f *Field) PlaceOf(tileID string) (geometry.FieldPlace, bool) {
	place, ok := f.tilePlaces[tileID]
	return place, ok
}

// Tiles returns a copy of the place-to-tile map.
func (f *Field) Tiles() map[geometry.FieldPlace]*Tile {
	copied := make(map[geometry.FieldPlace]*Tile, len(f.tiles))
	for place, tile := range f.tiles {
		copied[place] = tile
	}
	return copied
}

// ItemAt returns the field item at a place, or nil.
func (f *Field) ItemAt(place geometry.FieldPlace) *items.Item {
	return f.items[place]
}

// Items returns a copy of the place-to-item map.
func (f *Field) Items() map[geometry.FieldPlace]*items.Item {
	copied := make(map[geometry.FieldPlace]*items.Item, len(f.items))
	for place, item := range f.items {
		copied[place] = item
	}
	return copied
}

// SetItem puts an item on the field.
func (f *Field) SetItem(place geometry.FieldPlace, item *items.Item) {
	f.items[place] = item
}

// RemoveItem takes the item off a place and returns it.
func (f *Field) RemoveItem(place geometry.FieldPlace) *items.Item {
	item := f.items[place]
	delete(f.items, place)
	return item
}

// ReplaceItem swaps the item at a place for an updated copy.
func (f *Field) ReplaceItem(place geometry.FieldPlace, item *items.Item) {
	f.items[place] = item
}

// IsFountain reports whether the tile at a place heals.
func (f *Field) IsFountain(place geometry.FieldPlace) bool {
	return f.fountains[place]
}

// Gates returns the teleportation gate positions in placement order.
func (f *Field) Gates() []geometry.FieldPlace {
	copied := make([]geometry.FieldPlace, len(f.gates))
	copy(copied, f.gates)
	return copied
}

// Fountains returns the healing fountain positions.
func (f *Field) Fountains() []geometry.FieldPlace {
	places := make([]geometry.FieldPlace, 0, len(f.fountains))
	for place := range f.fountains {
		places = append(places, place)
	}
	sortPlaces(places)
	return places
}

// UnplacedTile returns the picked-but-unplaced tile, or nil.
func (f *Field) UnplacedTile() *Tile {
	return f.unplaced
}

// PlacedCount returns how many tiles sit on the field, start tile included.
func (f *Field) PlacedCount() int {
	return f.placedCount
}

// MarkConsumed records an item id as permanently destroyed. Consumed items
// never return to the field.
func (f *Field) MarkConsumed(itemID string) {
	f.consumedItemIDs[itemID] = true
}

// IsConsumed reports whether an item id has been destroyed.
func (f *Field) IsConsumed(itemID string) bool {
	return f.consumedItemIDs[itemID]
}

// LastBattle returns the most recent battle record, or nil.
func (f *Field) LastBattle() *BattleInfo {
	return f.lastBattle
}

// SetLastBattle records the most recent battle.
func (f *Field) SetLastBattle(info *BattleInfo) {
	f.lastBattle = info
}

// PickTile rotates a freshly drawn tile so requiredOpenSide faces outward and
// parks it as the unplaced tile. Only one tile may be unplaced at a time.
func (f *Field) PickTile(tile *Tile, requiredOpenSide geometry.Side) (*Tile, error) {
	if f.unplaced != nil {
		return nil, NewGameError(ErrCannotPickUntilPlaced, "tile %s is still unplaced", f.unplaced.ID)
	}
	if rotated, ok := tile.Orientation.RotatedToOpen(requiredOpenSide); ok {
		tile.Orientation = rotated
	}
	f.unplaced = tile
	return tile, nil
}

// RotateUnplaced spins the unplaced tile clockwise from topSide until
// requiredOpenSide is open. When no rotation opens it, the tile is left
// rotated to topSide.
func (f *Field) RotateUnplaced(tileID string, topSide, requiredOpenSide geometry.Side) (*Tile, error) {
	if f.unplaced == nil || f.unplaced.ID != tileID {
		return nil, NewGameError(ErrTileCannotBeFound, "tile %s is not awaiting placement", tileID)
	}
	base := f.unplaced.Orientation.Rotated(topSide)
	for turn := 0; turn < 4; turn++ {
		candidate := base.Rotated(geometry.Side(turn))
		if candidate.IsOpen(requiredOpenSide) {
			f.unplaced.Orientation = candidate
			return f.unplaced, nil
		}
	}
	f.unplaced.Orientation = base
	return f.unplaced, nil
}

// PlaceTile validates and commits the unplaced tile at place. The player must
// be able to reach the cell in one step from playerPos and the tile must open
// toward every neighbouring opening.
func (f *Field) PlaceTile(tileID string, place geometry.FieldPlace, playerPos geometry.FieldPlace) (*Tile, error) {
	if f.unplaced == nil || f.unplaced.ID != tileID {
		return nil, NewGameError(ErrTileCannotBeFound, "tile %s is not awaiting placement", tileID)
	}
	mask, ok := f.available[place]
	if !ok {
		return nil, NewGameError(ErrFieldPlaceIsNotAvailable, "field place %s is not available", place)
	}
	if !f.transitions[playerPos][place] {
		return nil, NewGameError(ErrTileCannotBePlacedHere, "place %s is not reachable from %s", place, playerPos)
	}
	if !f.unplaced.Orientation.Matches(mask) {
		return nil, NewGameError(ErrTileCannotBePlacedHere, "tile does not open toward its neighbours at %s", place)
	}

	tile := f.unplaced
	f.unplaced = nil
	f.install(place, tile)
	return tile, nil
}

// install commits a tile at a place and rebuilds the local availability and
// transition structures.
func (f *Field) install(place geometry.FieldPlace, tile *Tile) {
	f.tiles[place] = tile
	f.tilePlaces[tile.ID] = place
	f.placedCount++
	if tile.Room {
		f.roomPlaces[place] = true
	}
	if tile.HasFeature(FeatureHealingFountain) {
		f.fountains[place] = true
	}

	// The cell is occupied now; placement placeholders into it are stale.
	delete(f.available, place)
	for _, sibling := range place.Siblings() {
		if set := f.transitions[sibling]; set != nil {
			delete(set, place)
		}
	}

	for _, side := range geometry.Sides() {
		if !tile.Orientation.IsOpen(side) {
			continue
		}
		sibling := place.Sibling(side)
		if neighbour, occupied := f.tiles[sibling]; occupied {
			if neighbour.Orientation.IsOpen(side.Opposite()) {
				f.link(place, sibling)
				f.link(sibling, place)
			}
			continue
		}
		// Open side onto an empty cell: the cell becomes (or stays)
		// available, with its constraint mask extended toward us.
		mask := f.available[sibling]
		mask.Sides[side.Opposite()] = true
		f.available[sibling] = mask
		f.link(place, sibling)
		// Other placed neighbours facing the cell get their placeholder
		// edge too, in case it was created before they were.
		for _, nside := range geometry.Sides() {
			other := sibling.Sibling(nside)
			if other == place {
				continue
			}
			if occupant, ok := f.tiles[other]; ok && occupant.Orientation.IsOpen(nside.Opposite()) {
				f.link(other, sibling)
			}
		}
	}

	if tile.HasFeature(FeatureTeleportationGate) {
		for _, gate := range f.gates {
			f.link(place, gate)
			f.link(gate, place)
		}
		f.gates = append(f.gates, place)
	}

	f.log.Debug("tile placed",
		zap.String("tileId", tile.ID),
		zap.String("place", place.String()),
		zap.Bool("room", tile.Room))
}

func (f *Field) link(from, to geometry.FieldPlace) {
	set := f.transitions[from]
	if set == nil {
		set = make(map[geometry.FieldPlace]bool)
		f.transitions[from] = set
	}
	set[to] = true
}

// CanTransition reports whether a single step from one place to another
// follows an existing edge.
func (f *Field) CanTransition(from, to geometry.FieldPlace) bool {
	return f.transitions[from][to]
}

// TransitionsFrom returns the one-step targets from a place, placed tiles and
// placement placeholders alike, in deterministic order.
func (f *Field) TransitionsFrom(place geometry.FieldPlace) []geometry.FieldPlace {
	targets := make([]geometry.FieldPlace, 0, len(f.transitions[place]))
	for target := range f.transitions[place] {
		targets = append(targets, target)
	}
	sortPlaces(targets)
	return targets
}

// AvailablePlaces lists the moveTo and placeTile options from a position.
// Stunned players get empty lists; they can only end the turn.
func (f *Field) AvailablePlaces(player *Player, pos geometry.FieldPlace) (moveTo, placeTile []geometry.FieldPlace) {
	moveTo = make([]geometry.FieldPlace, 0)
	placeTile = make([]geometry.FieldPlace, 0)
	if player.Defeated || player.HP <= 0 {
		return moveTo, placeTile
	}
	for _, target := range f.TransitionsFrom(pos) {
		if f.tiles[target] != nil {
			moveTo = append(moveTo, target)
		} else {
			placeTile = append(placeTile, target)
		}
	}
	return moveTo, placeTile
}

// AvailableMask returns the placement constraint for an available cell.
func (f *Field) AvailableMask(place geometry.FieldPlace) (geometry.TileOrientation, bool) {
	mask, ok := f.available[place]
	return mask, ok
}

// AvailableFieldPlaces returns every cell a tile could be placed into.
func (f *Field) AvailableFieldPlaces() []geometry.FieldPlace {
	places := make([]geometry.FieldPlace, 0, len(f.available))
	for place := range f.available {
		places = append(places, place)
	}
	sortPlaces(places)
	return places
}

// Bounds returns the inclusive rectangle covering every placed tile.
func (f *Field) Bounds() (minX, minY, maxX, maxY int) {
	first := true
	for place := range f.tiles {
		if first {
			minX, maxX = place.X, place.X
			minY, maxY = place.Y, place.Y
			first = false
			continue
		}
		if place.X < minX {
			minX = place.X
		}
		if place.X > maxX {
			maxX = place.X
		}
		if place.Y < minY {
			minY = place.Y
		}
		if place.Y > maxY {
			maxY = place.Y
		}
	}
	return minX, minY, maxX, maxY
}

func sortPlaces(places []geometry.FieldPlace) {
	sort.Slice(places, func(i, j int) bool {
		if places[i].Y != places[j].Y {
			return places[i].Y < places[j].Y
		}
		return places[i].X < places[j].X
	})
}
