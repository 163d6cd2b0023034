package engine

import "math/rand"

// DiceRoller produces battle dice. A test game carries a deterministic roll
// queue; once it runs dry the roller falls back to uniform rolls, so seeded
// games still advance past their scripted battles.
type DiceRoller struct {
	queued []int
	rng    *rand.Rand
}

// NewDiceRoller creates a roller with an optional pre-seeded queue.
func NewDiceRoller(queued []int, rng *rand.Rand) *DiceRoller {
	copied := make([]int, len(queued))
	copy(copied, queued)
	return &DiceRoller{queued: copied, rng: rng}
}

// Next pops the next queued roll, or rolls uniformly in [1..6].
func (d *DiceRoller) Next() int {
	if len(d.queued) > 0 {
		roll := d.queued[0]
		d.queued = d.queued[1:]
		return roll
	}
	return d.rng.Intn(6) + 1
}

// QueuedRolls returns how many scripted rolls remain.
func (d *DiceRoller) QueuedRolls() int {
	return len(d.queued)
}
