package protocol

import (
	"github.com/delveworks/dungeon-delve-engine/internal/geometry"
)

// Field map glyphs, indexed by the open-side bitmask top|right|bottom|left.
// Corridors render single-line, rooms double-line. Orientations with fewer
// than two open sides never leave the deck builder; they fall back to a dot.
var (
	corridorGlyphs = map[uint8]string{
		0b1010: "┃", // top, bottom
		0b0101: "━", // right, left
		0b0110: "┏", // right, bottom
		0b0011: "┓", // bottom, left
		0b1001: "┛", // top, left
		0b1100: "┗", // top, right
		0b1110: "┣", // top, right, bottom
		0b1011: "┫", // top, bottom, left
		0b0111: "┳", // right, bottom, left
		0b1101: "┻", // top, right, left
		0b1111: "╋",
	}
	roomGlyphs = map[uint8]string{
		0b1010: "║",
		0b0101: "═",
		0b0110: "╔",
		0b0011: "╗",
		0b1001: "╝",
		0b1100: "╚",
		0b1110: "╠",
		0b1011: "╣",
		0b0111: "╦",
		0b1101: "╩",
		0b1111: "╬",
	}
)

func sideMask(o geometry.TileOrientation) uint8 {
	var mask uint8
	for _, side := range geometry.Sides() {
		mask <<= 1
		if o.IsOpen(side) {
			mask |= 1
		}
	}
	return mask
}

// Glyph renders a tile orientation as its field map character.
func Glyph(o geometry.TileOrientation, room bool) string {
	table := corridorGlyphs
	if room {
		table = roomGlyphs
	}
	if glyph, ok := table[sideMask(o)]; ok {
		return glyph
	}
	return "·"
}
