package engine

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
)

type cellSet map[Position]struct{}

func (s cellSet) has(p Position) bool {
	_, ok := s[p]
	return ok
}

func (s cellSet) clone() cellSet {
	out := make(cellSet, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}

func (s cellSet) sorted() []Position {
	out := make([]Position, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.SortFunc(out, comparePositions)
	return out
}

func comparePositions(a, b Position) int {
	if c := cmp.Compare(a.Row, b.Row); c != 0 {
		return c
	}
	return cmp.Compare(a.Col, b.Col)
}

// GameState is an immutable board snapshot. Walls and targets are shared by
// every state derived from the same level; crates are copied on each step.
type GameState struct {
	walls   cellSet
	targets cellSet
	crates  cellSet
	player  Position
	height  int
	width   int
}

// Player returns the player's cell
func (gs *GameState) Player() Position { return gs.player }

// Height returns the number of rows
func (gs *GameState) Height() int { return gs.height }

// Width returns the number of columns
func (gs *GameState) Width() int { return gs.width }

// Crates returns the crate cells in row-major order
func (gs *GameState) Crates() []Position { return gs.crates.sorted() }

// Walls returns the wall cells in row-major order
func (gs *GameState) Walls() []Position { return gs.walls.sorted() }

// Targets returns the target cells in row-major order
func (gs *GameState) Targets() []Position { return gs.targets.sorted() }

func (gs *GameState) HasCrate(p Position) bool { return gs.crates.has(p) }
func (gs *GameState) IsWall(p Position) bool   { return gs.walls.has(p) }
func (gs *GameState) IsTarget(p Position) bool { return gs.targets.has(p) }

// InBounds reports whether p lies on the grid
func (gs *GameState) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < gs.height && p.Col >= 0 && p.Col < gs.width
}

// Walkable reports whether the player may stand on p as far as geometry is
// concerned: the grid plus a one-cell ring around it. Any detour further out
// is never shorter than one along the ring, so the ring keeps every route of
// an unbounded plane while the search space stays finite.
func (gs *GameState) Walkable(p Position) bool {
	return p.Row >= -1 && p.Row <= gs.height && p.Col >= -1 && p.Col <= gs.width
}

// CratesOnTargets counts crates currently covering a target
func (gs *GameState) CratesOnTargets() int {
	count := 0
	for p := range gs.crates {
		if gs.targets.has(p) {
			count++
		}
	}
	return count
}

// Equal compares every field of two states
func (gs *GameState) Equal(other *GameState) bool {
	if gs == nil || other == nil {
		return gs == other
	}
	return gs.player == other.player &&
		gs.height == other.height &&
		gs.width == other.width &&
		sameCells(gs.walls, other.walls) &&
		sameCells(gs.targets, other.targets) &&
		sameCells(gs.crates, other.crates)
}

func sameCells(a, b cellSet) bool {
	if len(a) != len(b) {
		return false
	}
	for p := range a {
		if !b.has(p) {
			return false
		}
	}
	return true
}

// derive copies gs with a fresh crate set; walls and targets stay shared.
func (gs *GameState) derive() *GameState {
	return &GameState{
		walls:   gs.walls,
		targets: gs.targets,
		crates:  gs.crates.clone(),
		player:  gs.player,
		height:  gs.height,
		width:   gs.width,
	}
}

type stateJSON struct {
	Level           LevelDescription `json:"level"`
	Layout          []string         `json:"layout,omitempty"`
	Player          *Position        `json:"player,omitempty"`
	Height          int              `json:"height,omitempty"`
	Width           int              `json:"width,omitempty"`
	Crates          int              `json:"crates,omitempty"`
	Targets         int              `json:"targets,omitempty"`
	CratesOnTargets int              `json:"crates_on_targets"`
	Victory         bool             `json:"victory"`
}

// MarshalJSON encodes the board as a level description plus read-only summary fields
func (gs *GameState) MarshalJSON() ([]byte, error) {
	player := gs.player
	return json.Marshal(stateJSON{
		Level:           gs.Dump(),
		Layout:          gs.Layout(),
		Player:          &player,
		Height:          gs.height,
		Width:           gs.width,
		Crates:          len(gs.crates),
		Targets:         len(gs.targets),
		CratesOnTargets: gs.CratesOnTargets(),
		Victory:         IsVictory(gs),
	})
}

// UnmarshalJSON rebuilds the board from its level description; summary fields are ignored
func (gs *GameState) UnmarshalJSON(data []byte) error {
	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Level == nil {
		return fmt.Errorf("%w: missing level description", ErrInvalidLevel)
	}
	loaded, playerFound, err := loadLevel(raw.Level)
	if err != nil {
		return err
	}

	// A player standing on the ring outside the grid has no cell in the
	// level description and is carried by the player field instead.
	switch {
	case !playerFound && raw.Player == nil:
		return fmt.Errorf("%w: no player", ErrInvalidLevel)
	case !playerFound:
		if loaded.InBounds(*raw.Player) || !loaded.Walkable(*raw.Player) {
			return fmt.Errorf("%w: player %s missing from level description", ErrInvalidLevel, *raw.Player)
		}
		loaded.player = *raw.Player
	}
	*gs = *loaded
	return nil
}
