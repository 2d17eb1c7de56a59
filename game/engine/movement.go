package engine

// Step returns the state after moving the player one cell in direction. The
// input is never mutated; a blocked move yields an unchanged copy.
func Step(state *GameState, direction Direction) *GameState {
	next, _ := Apply(state, direction)
	return next
}

// Apply is Step with the outcome of the move reported alongside the new state.
// The player may leave the grid onto the surrounding ring; crates never leave
// the grid.
func Apply(state *GameState, direction Direction) (*GameState, MoveOutcome) {
	next := state.derive()

	delta, ok := direction.Delta()
	if !ok {
		return next, OutcomeBlockedBoundary
	}

	target := state.player.Add(delta)
	if !state.Walkable(target) {
		return next, OutcomeBlockedBoundary
	}
	if state.walls.has(target) {
		return next, OutcomeBlockedWall
	}

	if state.crates.has(target) {
		push := target.Add(delta)
		if !state.InBounds(push) {
			return next, OutcomeBlockedBoundary
		}
		if state.walls.has(push) {
			return next, OutcomeBlockedWall
		}
		if state.crates.has(push) {
			return next, OutcomeBlockedCrate
		}
		delete(next.crates, target)
		next.crates[push] = struct{}{}
		next.player = target
		return next, OutcomePushed
	}

	next.player = target
	return next, OutcomeMoved
}

// IsVictory reports whether every target is covered and no crate sits
// elsewhere. A level without targets can never be won.
func IsVictory(state *GameState) bool {
	if len(state.targets) == 0 {
		return false
	}
	return sameCells(state.crates, state.targets)
}

// Successor pairs a direction with the state it leads to
type Successor struct {
	Direction Direction
	State     *GameState
}

// Successors returns the non-blocked moves from state in direction-table order
func Successors(state *GameState) []Successor {
	out := make([]Successor, 0, len(directionTable))
	for _, entry := range directionTable {
		next := Step(state, entry.dir)
		if next.player != state.player {
			out = append(out, Successor{Direction: entry.dir, State: next})
		}
	}
	return out
}

// LegalDirections lists the directions in which the player would actually move
func LegalDirections(state *GameState) []Direction {
	successors := Successors(state)
	dirs := make([]Direction, len(successors))
	for i, s := range successors {
		dirs[i] = s.Direction
	}
	return dirs
}
