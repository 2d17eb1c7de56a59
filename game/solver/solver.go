package solver

import (
	"time"

	"github.com/wricardo/snekoban/game/engine"
)

// Options bound a search
type Options struct {
	// MaxExpanded caps the number of states expanded; 0 means unlimited
	MaxExpanded int
}

// Result is the outcome of a search together with its statistics
type Result struct {
	Moves        []engine.Direction
	Solved       bool
	LimitReached bool
	Expanded     int
	Enqueued     int
	MaxFrontier  int
	Duration     time.Duration
}

// node is a frontier entry. The path to a node is the path to its parent
// plus the direction that produced it.
type node struct {
	state  *engine.GameState
	parent *node
	dir    engine.Direction
	depth  int
}

func (n *node) path() []engine.Direction {
	moves := make([]engine.Direction, n.depth)
	for cur := n; cur.parent != nil; cur = cur.parent {
		moves[cur.depth-1] = cur.dir
	}
	return moves
}

// Solve returns a shortest move sequence that wins the level, or false when
// no reachable state is victorious. An already won state yields an empty path.
func Solve(initial *engine.GameState) ([]engine.Direction, bool) {
	result := Search(initial, Options{})
	return result.Moves, result.Solved
}

// Search runs the breadth-first search. Duplicates are allowed in the queue
// and dropped when dequeued, so only expansion is deduplicated.
func Search(initial *engine.GameState, opts Options) Result {
	start := time.Now()
	var result Result

	queue := []*node{{state: initial}}
	result.Enqueued = 1
	result.MaxFrontier = 1
	visited := make(map[engine.Key]struct{})

	for head := 0; head < len(queue); head++ {
		current := queue[head]
		queue[head] = nil

		key := engine.Canonical(current.state)
		if _, seen := visited[key]; seen {
			continue
		}

		if engine.IsVictory(current.state) {
			result.Moves = current.path()
			result.Solved = true
			break
		}

		if opts.MaxExpanded > 0 && result.Expanded >= opts.MaxExpanded {
			result.LimitReached = true
			break
		}

		visited[key] = struct{}{}
		result.Expanded++

		for _, next := range engine.Successors(current.state) {
			queue = append(queue, &node{
				state:  next.State,
				parent: current,
				dir:    next.Direction,
				depth:  current.depth + 1,
			})
			result.Enqueued++
		}

		if frontier := len(queue) - head - 1; frontier > result.MaxFrontier {
			result.MaxFrontier = frontier
		}
	}

	result.Duration = time.Since(start)
	return result
}

// Replay applies moves from initial and returns the final state
func Replay(initial *engine.GameState, moves []engine.Direction) *engine.GameState {
	state := initial
	for _, dir := range moves {
		state = engine.Step(state, dir)
	}
	return state
}
