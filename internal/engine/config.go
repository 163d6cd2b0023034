package engine

// MaxActionsPerTurn bounds the per-turn action budget. Only movement and
// teleports consume it; tile exploration is free.
const MaxActionsPerTurn = 4

// DefaultMaxHP is the starting and maximum hit points of a player unless a
// test setup overrides it.
const DefaultMaxHP = 5

// DefaultDeckSize is the tile count of a standard deck.
const DefaultDeckSize = 60

// PlayerConfig carries per-player test overrides.
type PlayerConfig struct {
	MaxHP int `json:"maxHp,omitempty"`
}

// TestConfig pre-seeds a game with deterministic draws and rolls. It is
// captured at game creation and scoped to that game; parallel games stay
// independent.
type TestConfig struct {
	DiceRolls     []int                   `json:"diceRolls,omitempty"`
	TileSequence  []TileSpec              `json:"tileSequence,omitempty"`
	ItemSequence  []string                `json:"itemSequence,omitempty"`
	PlayerConfigs map[string]PlayerConfig `json:"playerConfigs,omitempty"`
}

// Enabled reports whether any deterministic override is present.
func (c *TestConfig) Enabled() bool {
	return c != nil && (len(c.DiceRolls) > 0 || len(c.TileSequence) > 0 ||
		len(c.ItemSequence) > 0 || len(c.PlayerConfigs) > 0)
}
