package engine

import (
	"fmt"
	"strings"
)

// NewGame builds the initial state from a level description. Malformed
// descriptions are rejected here so the rest of the engine can assume a
// well-formed board.
func NewGame(desc LevelDescription) (*GameState, error) {
	gs, playerFound, err := loadLevel(desc)
	if err != nil {
		return nil, err
	}
	if !playerFound {
		return nil, fmt.Errorf("%w: no player", ErrInvalidLevel)
	}
	return gs, nil
}

func loadLevel(desc LevelDescription) (*GameState, bool, error) {
	if len(desc) == 0 || len(desc[0]) == 0 {
		return nil, false, fmt.Errorf("%w: level is empty", ErrInvalidLevel)
	}

	height, width := len(desc), len(desc[0])
	if height > MaxGridSize || width > MaxGridSize {
		return nil, false, fmt.Errorf("%w: grid %dx%d exceeds maximum %d", ErrInvalidLevel, height, width, MaxGridSize)
	}

	gs := &GameState{
		walls:   make(cellSet),
		targets: make(cellSet),
		crates:  make(cellSet),
		height:  height,
		width:   width,
	}

	playerFound := false
	for row, cells := range desc {
		if len(cells) != width {
			return nil, false, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvalidLevel, row, len(cells), width)
		}
		for col, labels := range cells {
			pos := Position{Row: row, Col: col}
			crateSeen := false
			for _, label := range labels {
				switch Label(label) {
				case LabelWall:
					gs.walls[pos] = struct{}{}
				case LabelTarget:
					gs.targets[pos] = struct{}{}
				case LabelComputer:
					if crateSeen {
						return nil, false, fmt.Errorf("%w: duplicate crate at %s", ErrInvalidLevel, pos)
					}
					crateSeen = true
					gs.crates[pos] = struct{}{}
				case LabelPlayer:
					if playerFound && gs.player != pos {
						return nil, false, fmt.Errorf("%w: multiple players at %s and %s", ErrInvalidLevel, gs.player, pos)
					}
					playerFound = true
					gs.player = pos
				default:
					return nil, false, fmt.Errorf("%w: unknown label %q at %s", ErrInvalidLevel, label, pos)
				}
			}
		}
	}

	if playerFound && gs.walls.has(gs.player) {
		return nil, false, fmt.Errorf("%w: player inside wall at %s", ErrInvalidLevel, gs.player)
	}

	return gs, playerFound, nil
}

// Dump converts the state back into a level description. The player marker
// is only emitted while the player stands on the grid.
func (gs *GameState) Dump() LevelDescription {
	desc := make(LevelDescription, gs.height)
	for row := 0; row < gs.height; row++ {
		desc[row] = make([][]string, gs.width)
		for col := 0; col < gs.width; col++ {
			pos := Position{Row: row, Col: col}
			cell := []string{}
			if gs.walls.has(pos) {
				cell = append(cell, string(LabelWall))
			}
			if gs.targets.has(pos) {
				cell = append(cell, string(LabelTarget))
			}
			if gs.crates.has(pos) {
				cell = append(cell, string(LabelComputer))
			}
			desc[row][col] = cell
		}
	}
	if gs.InBounds(gs.player) {
		cell := desc[gs.player.Row][gs.player.Col]
		desc[gs.player.Row][gs.player.Col] = append(cell, string(LabelPlayer))
	}
	return desc
}

// Layout characters, in the usual Sokoban text notation
const (
	charWall          = '#'
	charFloor         = ' '
	charTarget        = '.'
	charCrate         = '$'
	charCrateOnTarget = '*'
	charPlayer        = '@'
	charPlayerTarget  = '+'
)

// ParseLayout converts text rows into a level description
func ParseLayout(rows []string) (LevelDescription, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: layout is empty", ErrInvalidLevel)
	}

	width := len(rows[0])
	desc := make(LevelDescription, len(rows))
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: layout row %d has %d characters, expected %d", ErrInvalidLevel, i+1, len(row), width)
		}
		desc[i] = make([][]string, width)
		for j := 0; j < len(row); j++ {
			var cell []string
			switch row[j] {
			case charFloor, '-', '_':
				cell = []string{}
			case charWall:
				cell = []string{string(LabelWall)}
			case charTarget:
				cell = []string{string(LabelTarget)}
			case charCrate:
				cell = []string{string(LabelComputer)}
			case charCrateOnTarget:
				cell = []string{string(LabelTarget), string(LabelComputer)}
			case charPlayer:
				cell = []string{string(LabelPlayer)}
			case charPlayerTarget:
				cell = []string{string(LabelTarget), string(LabelPlayer)}
			default:
				return nil, fmt.Errorf("%w: invalid character '%c' at row %d, col %d", ErrInvalidLevel, row[j], i+1, j+1)
			}
			desc[i][j] = cell
		}
	}
	return desc, nil
}

// Layout renders the state in text notation. A wall that also carries other
// labels is rendered as a wall.
func (gs *GameState) Layout() []string {
	rows := make([]string, gs.height)
	var b strings.Builder
	for row := 0; row < gs.height; row++ {
		b.Reset()
		for col := 0; col < gs.width; col++ {
			b.WriteByte(gs.cellChar(Position{Row: row, Col: col}))
		}
		rows[row] = b.String()
	}
	return rows
}

func (gs *GameState) cellChar(p Position) byte {
	target := gs.targets.has(p)
	switch {
	case gs.walls.has(p):
		return charWall
	case p == gs.player && target:
		return charPlayerTarget
	case p == gs.player:
		return charPlayer
	case gs.crates.has(p) && target:
		return charCrateOnTarget
	case gs.crates.has(p):
		return charCrate
	case target:
		return charTarget
	}
	return charFloor
}

// String returns the text layout joined by newlines
func (gs *GameState) String() string {
	return strings.Join(gs.Layout(), "\n")
}
