package engine

import (
	"testing"
)

// scenarioLevel is the two-row sample level used throughout the tests
func scenarioLevel() LevelDescription {
	return LevelDescription{
		{{}, {"wall"}, {"computer"}},
		{{"target", "player"}, {"computer"}, {"target"}},
	}
}

func mustLayout(t *testing.T, rows ...string) *GameState {
	t.Helper()
	desc, err := ParseLayout(rows)
	if err != nil {
		t.Fatalf("ParseLayout failed: %v", err)
	}
	state, err := NewGame(desc)
	if err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}
	return state
}

func TestDirections_TableOrder(t *testing.T) {
	expected := []Direction{Up, Down, Left, Right}
	dirs := Directions()
	if len(dirs) != len(expected) {
		t.Fatalf("Expected %d directions, got %d", len(expected), len(dirs))
	}
	for i, d := range expected {
		if dirs[i] != d {
			t.Errorf("Direction %d: expected %s, got %s", i, d, dirs[i])
		}
	}

	// Callers get a copy
	dirs[0] = Right
	if Directions()[0] != Up {
		t.Error("Directions() exposed the internal table")
	}
}

func TestDirection_Delta(t *testing.T) {
	tests := []struct {
		direction Direction
		delta     Position
	}{
		{Up, Position{-1, 0}},
		{Down, Position{1, 0}},
		{Left, Position{0, -1}},
		{Right, Position{0, 1}},
	}

	for _, test := range tests {
		t.Run(string(test.direction), func(t *testing.T) {
			delta, ok := test.direction.Delta()
			if !ok {
				t.Fatalf("Delta(%s) not found", test.direction)
			}
			if delta != test.delta {
				t.Errorf("Delta(%s): expected %v, got %v", test.direction, test.delta, delta)
			}
		})
	}

	if _, ok := Direction("north").Delta(); ok {
		t.Error("Expected unknown direction to have no delta")
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input    string
		expected Direction
		wantErr  bool
	}{
		{"up", Up, false},
		{"DOWN", Down, false},
		{" Left ", Left, false},
		{"right", Right, false},
		{"north", "", true},
		{"", "", true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			d, err := ParseDirection(test.input)
			if test.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", test.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if d != test.expected {
				t.Errorf("Expected %s, got %s", test.expected, d)
			}
		})
	}
}

func TestStep_WallIsNoOp(t *testing.T) {
	state := mustLayout(t,
		"#####",
		"#@$.#",
		"#####",
	)

	for _, dir := range []Direction{Up, Down, Left} {
		t.Run(string(dir), func(t *testing.T) {
			next, outcome := Apply(state, dir)
			if outcome != OutcomeBlockedWall {
				t.Errorf("Expected %s, got %s", OutcomeBlockedWall, outcome)
			}
			if next.Player() != state.Player() {
				t.Errorf("Player moved from %v to %v", state.Player(), next.Player())
			}
			if Canonical(next) != Canonical(state) {
				t.Error("Blocked move changed the canonical key")
			}
			if next == state {
				t.Error("Blocked move returned the input pointer")
			}
		})
	}
}

func TestStep_BlockedPush(t *testing.T) {
	tests := []struct {
		name    string
		layout  []string
		dir     Direction
		outcome MoveOutcome
	}{
		{
			name:    "crate against wall",
			layout:  []string{"#####", "# @$#", "#####"},
			dir:     Right,
			outcome: OutcomeBlockedWall,
		},
		{
			name:    "crate against crate",
			layout:  []string{"######", "#@$$.#", "######"},
			dir:     Right,
			outcome: OutcomeBlockedCrate,
		},
		{
			name:    "crate at grid edge",
			layout:  []string{"   ", " @$"},
			dir:     Right,
			outcome: OutcomeBlockedBoundary,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			state := mustLayout(t, test.layout...)
			next, outcome := Apply(state, test.dir)
			if outcome != test.outcome {
				t.Errorf("Expected %s, got %s", test.outcome, outcome)
			}
			if !next.Equal(state) {
				t.Errorf("Blocked push changed the board:\n%s\n->\n%s", state, next)
			}
		})
	}
}

func TestStep_SuccessfulPush(t *testing.T) {
	state := mustLayout(t,
		"#######",
		"#@$  $#",
		"#######",
	)

	next, outcome := Apply(state, Right)
	if outcome != OutcomePushed {
		t.Fatalf("Expected push, got %s", outcome)
	}
	if next.Player() != (Position{1, 2}) {
		t.Errorf("Expected player at (1,2), got %v", next.Player())
	}
	if !next.HasCrate(Position{1, 3}) || next.HasCrate(Position{1, 2}) {
		t.Errorf("Crate not relocated: %v", next.Crates())
	}
	if !next.HasCrate(Position{1, 5}) {
		t.Error("Unrelated crate moved")
	}
	if len(next.Crates()) != 2 {
		t.Errorf("Expected 2 crates, got %d", len(next.Crates()))
	}

	// The input is untouched
	if state.Player() != (Position{1, 1}) || !state.HasCrate(Position{1, 2}) {
		t.Error("Step mutated its input")
	}
}

func TestStep_SharesWallsAndTargets(t *testing.T) {
	state := mustLayout(t, "#@ .#")
	next := Step(state, Right)

	// Same underlying maps: walls and targets never change identity
	next.walls[Position{9, 9}] = struct{}{}
	defer delete(next.walls, Position{9, 9})
	if !state.IsWall(Position{9, 9}) {
		t.Error("Expected walls to be shared between derived states")
	}

	next.crates[Position{8, 8}] = struct{}{}
	if state.HasCrate(Position{8, 8}) {
		t.Error("Expected crates to be copied between derived states")
	}
}

func TestStep_PlayerMayWalkAroundGrid(t *testing.T) {
	state := mustLayout(t, "@")

	up := Step(state, Up)
	if up.Player() != (Position{-1, 0}) {
		t.Fatalf("Expected player on the ring at (-1,0), got %v", up.Player())
	}

	blocked, outcome := Apply(up, Up)
	if outcome != OutcomeBlockedBoundary {
		t.Errorf("Expected boundary block beyond the ring, got %s", outcome)
	}
	if blocked.Player() != up.Player() {
		t.Error("Player left the ring")
	}
}

func TestIsVictory(t *testing.T) {
	tests := []struct {
		name     string
		layout   []string
		expected bool
	}{
		{"all covered", []string{"#@*#"}, true},
		{"uncovered target", []string{"#@$.#"}, false},
		{"extra crate", []string{"#@*$#"}, false},
		{"no targets no crates", []string{"#@ #"}, false},
		{"no targets with crates", []string{"#@$#"}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			state := mustLayout(t, test.layout...)
			if got := IsVictory(state); got != test.expected {
				t.Errorf("IsVictory: expected %v, got %v", test.expected, got)
			}
		})
	}
}

func TestLegalDirections(t *testing.T) {
	state, err := NewGame(scenarioLevel())
	if err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}

	// Player at (1,0): up is floor, down and left are the ring, right pushes a crate
	dirs := LegalDirections(state)
	expected := []Direction{Up, Down, Left, Right}
	if len(dirs) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, dirs)
	}
	for i := range expected {
		if dirs[i] != expected[i] {
			t.Errorf("Expected %v, got %v", expected, dirs)
		}
	}

	walled := mustLayout(t,
		"###",
		"#@#",
		"###",
	)
	if dirs := LegalDirections(walled); len(dirs) != 0 {
		t.Errorf("Expected no legal moves, got %v", dirs)
	}
}

func TestSuccessors_MatchStep(t *testing.T) {
	state := mustLayout(t,
		"#####",
		"# $ #",
		"#.@ #",
		"#####",
	)

	for _, s := range Successors(state) {
		if !s.State.Equal(Step(state, s.Direction)) {
			t.Errorf("Successor for %s differs from Step", s.Direction)
		}
	}
}
