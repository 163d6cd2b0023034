package geometry

import (
	"fmt"
	"strings"
)

// TileOrientation is the openness of a tile's four sides, clockwise from the
// top. The wire form is "t,r,b,l" with each slot true|false.
type TileOrientation struct {
	Sides [4]bool
}

// NewTileOrientation builds an orientation from explicit side flags.
func NewTileOrientation(top, right, bottom, left bool) TileOrientation {
	return TileOrientation{Sides: [4]bool{top, right, bottom, left}}
}

// Canonical shapes. Rotations of these four generate the eleven observable
// orientations (fourSide is rotation-invariant, twoSideStraight has two).
var (
	FourSide        = NewTileOrientation(true, true, true, true)
	ThreeSide       = NewTileOrientation(true, true, false, true)
	TwoSideStraight = NewTileOrientation(true, false, true, false)
	TwoSideCorner   = NewTileOrientation(true, true, false, false)
)

// IsOpen reports whether side s is open.
func (o TileOrientation) IsOpen(s Side) bool {
	return o.Sides[s]
}

// OpenSides returns the open sides in clockwise order.
func (o TileOrientation) OpenSides() []Side {
	var open []Side
	for _, s := range Sides() {
		if o.Sides[s] {
			open = append(open, s)
		}
	}
	return open
}

// Rotated returns the orientation after rotating the tile so that the side
// currently at position s ends up on top. This is a left shift of the
// four-tuple by s.
func (o TileOrientation) Rotated(s Side) TileOrientation {
	var out TileOrientation
	for i := 0; i < 4; i++ {
		out.Sides[i] = o.Sides[(i+int(s))%4]
	}
	return out
}

// RotatedToOpen rotates clockwise starting from the current orientation and
// returns the first rotation with required open. If no rotation opens the
// side, the original orientation is returned with ok=false.
func (o TileOrientation) RotatedToOpen(required Side) (TileOrientation, bool) {
	for _, s := range Sides() {
		if rotated := o.Rotated(s); rotated.IsOpen(required) {
			return rotated, true
		}
	}
	return o, false
}

// Matches reports whether every side open in the constraint mask is also open
// in o. Available-place masks record the openings a placed tile must face.
func (o TileOrientation) Matches(mask TileOrientation) bool {
	for i := 0; i < 4; i++ {
		if mask.Sides[i] && !o.Sides[i] {
			return false
		}
	}
	return true
}

// String renders the wire encoding "t,r,b,l".
func (o TileOrientation) String() string {
	parts := make([]string, 4)
	for i, open := range o.Sides {
		parts[i] = fmt.Sprintf("%t", open)
	}
	return strings.Join(parts, ",")
}

// ParseTileOrientation parses the wire encoding "t,r,b,l".
func ParseTileOrientation(s string) (TileOrientation, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return TileOrientation{}, fmt.Errorf("invalid orientation: %q", s)
	}
	var o TileOrientation
	for i, part := range parts {
		switch strings.TrimSpace(part) {
		case "true":
			o.Sides[i] = true
		case "false":
			o.Sides[i] = false
		default:
			return TileOrientation{}, fmt.Errorf("invalid orientation slot %d: %q", i, s)
		}
	}
	return o, nil
}
