package engine

import "encoding/binary"

// Key is the deduplication key of a state: the player cell plus a packed,
// row-major sorted encoding of the crate cells. Walls and targets are left out
// because they never change within one puzzle.
type Key struct {
	Player Position
	Crates string
}

// Canonical computes the key of state. Two states with the same player and
// the same crate set always produce equal keys.
func Canonical(state *GameState) Key {
	crates := state.crates.sorted()
	buf := make([]byte, 0, len(crates)*8)
	for _, p := range crates {
		buf = binary.BigEndian.AppendUint32(buf, uint32(p.Row))
		buf = binary.BigEndian.AppendUint32(buf, uint32(p.Col))
	}
	return Key{Player: state.player, Crates: string(buf)}
}
