package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/delveworks/dungeon-delve-engine/internal/geometry"
)

// TileFeature marks a special property of a tile.
type TileFeature string

const (
	FeatureHealingFountain   TileFeature = "HEALING_FOUNTAIN"
	FeatureTeleportationGate TileFeature = "TELEPORTATION_GATE"
)

// Tile is a dungeon cell. Identity and room-ness are immutable; orientation
// may change only between picking and placing.
type Tile struct {
	ID          string                   `json:"tileId"`
	Orientation geometry.TileOrientation `json:"orientation"`
	Room        bool                     `json:"room"`
	Features    []TileFeature            `json:"features,omitempty"`
}

// HasFeature reports whether the tile carries the feature.
func (t *Tile) HasFeature(f TileFeature) bool {
	for _, feature := range t.Features {
		if feature == f {
			return true
		}
	}
	return false
}

// TileSpec describes one tile of a test deck sequence. On the wire it is
// either a shape name ("fourSideRoom", "twoSideStraight", ...) or an object
// with explicit orientation, room flag, and features.
type TileSpec struct {
	Name        string                    `json:"name,omitempty"`
	Orientation *geometry.TileOrientation `json:"orientation,omitempty"`
	Room        bool                      `json:"room,omitempty"`
	Features    []TileFeature             `json:"features,omitempty"`
}

// UnmarshalJSON accepts both the bare-string and the object encoding.
func (s *TileSpec) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		s.Name = name
		return nil
	}

	type plain TileSpec
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*s = TileSpec(obj)
	return nil
}

// shapesByName maps canonical shape names to their base orientation.
var shapesByName = map[string]geometry.TileOrientation{
	"fourSide":        geometry.FourSide,
	"threeSide":       geometry.ThreeSide,
	"twoSideStraight": geometry.TwoSideStraight,
	"twoSideCorner":   geometry.TwoSideCorner,
}

// Build materializes a TileSpec into a tile with a fresh id generated by newID.
func (s TileSpec) Build(newID func() string) (*Tile, error) {
	tile := &Tile{ID: newID(), Room: s.Room, Features: s.Features}

	switch {
	case s.Orientation != nil:
		tile.Orientation = *s.Orientation
	case s.Name != "":
		name := s.Name
		if strings.HasSuffix(name, "Room") {
			name = strings.TrimSuffix(name, "Room")
			tile.Room = true
		}
		orientation, ok := shapesByName[name]
		if !ok {
			return nil, fmt.Errorf("unknown tile shape: %q", s.Name)
		}
		tile.Orientation = orientation
	default:
		return nil, fmt.Errorf("tile spec needs a name or an orientation")
	}

	return tile, nil
}
