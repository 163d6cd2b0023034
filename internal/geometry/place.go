package geometry

import (
	"fmt"
	"strconv"
	"strings"
)

// Side identifies one of the four sides of a tile, clockwise from the top.
type Side int

const (
	Top Side = iota
	Right
	Bottom
	Left
)

var sideNames = [4]string{"top", "right", "bottom", "left"}

func (s Side) String() string {
	if s < Top || s > Left {
		return fmt.Sprintf("side(%d)", int(s))
	}
	return sideNames[s]
}

// Opposite returns the side facing s from the neighboring tile.
func (s Side) Opposite() Side {
	return (s + 2) % 4
}

// Sides lists all four sides in clockwise order.
func Sides() [4]Side {
	return [4]Side{Top, Right, Bottom, Left}
}

// ParseSide parses a side name ("top", "right", "bottom", "left").
func ParseSide(name string) (Side, error) {
	for i, n := range sideNames {
		if n == name {
			return Side(i), nil
		}
	}
	return 0, fmt.Errorf("unknown side: %q", name)
}

// FieldPlace is an integer grid coordinate. The starting tile of every game
// sits at (0,0); y grows downward so Top of (x,y) is (x,y-1).
type FieldPlace struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String returns the canonical "x,y" form used as map keys on the wire.
func (p FieldPlace) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// ParseFieldPlace parses the canonical "x,y" form.
func ParseFieldPlace(s string) (FieldPlace, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return FieldPlace{}, fmt.Errorf("invalid field place: %q", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return FieldPlace{}, fmt.Errorf("invalid field place x: %q", s)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return FieldPlace{}, fmt.Errorf("invalid field place y: %q", s)
	}
	return FieldPlace{X: x, Y: y}, nil
}

// Sibling returns the adjacent place on the given side.
func (p FieldPlace) Sibling(s Side) FieldPlace {
	switch s {
	case Top:
		return FieldPlace{X: p.X, Y: p.Y - 1}
	case Right:
		return FieldPlace{X: p.X + 1, Y: p.Y}
	case Bottom:
		return FieldPlace{X: p.X, Y: p.Y + 1}
	default:
		return FieldPlace{X: p.X - 1, Y: p.Y}
	}
}

// Siblings returns the four cardinal neighbors in side order.
func (p FieldPlace) Siblings() [4]FieldPlace {
	return [4]FieldPlace{p.Sibling(Top), p.Sibling(Right), p.Sibling(Bottom), p.Sibling(Left)}
}

// SideTowards returns the side of p that faces q, if q is a cardinal neighbor.
func (p FieldPlace) SideTowards(q FieldPlace) (Side, bool) {
	for _, s := range Sides() {
		if p.Sibling(s) == q {
			return s, true
		}
	}
	return 0, false
}
