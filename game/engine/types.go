package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Label is one entry of a level description cell
type Label string

const (
	LabelWall     Label = "wall"
	LabelTarget   Label = "target"
	LabelComputer Label = "computer"
	LabelPlayer   Label = "player"

	// Validation constants
	MaxGridSize  = 64
	MaxBulkMoves = 200
)

var (
	ErrInvalidLevel     = errors.New("invalid level")
	ErrInvalidDirection = errors.New("invalid direction")
)

// LevelDescription is a rectangular grid of cells, each holding zero or more labels.
type LevelDescription [][][]string

// Position represents row,col coordinates
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add returns p shifted by delta
func (p Position) Add(delta Position) Position {
	return Position{Row: p.Row + delta.Row, Col: p.Col + delta.Col}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Direction is one of the four movement directions
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// directionTable fixes both the deltas and the enumeration order used for
// tie-breaking between equally short solutions.
var directionTable = [4]struct {
	dir   Direction
	delta Position
}{
	{Up, Position{Row: -1, Col: 0}},
	{Down, Position{Row: 1, Col: 0}},
	{Left, Position{Row: 0, Col: -1}},
	{Right, Position{Row: 0, Col: 1}},
}

// Directions returns the four directions in table order
func Directions() []Direction {
	dirs := make([]Direction, len(directionTable))
	for i, entry := range directionTable {
		dirs[i] = entry.dir
	}
	return dirs
}

// Delta returns the coordinate delta for d
func (d Direction) Delta() (Position, bool) {
	for _, entry := range directionTable {
		if entry.dir == d {
			return entry.delta, true
		}
	}
	return Position{}, false
}

// Valid reports whether d is one of the four directions
func (d Direction) Valid() bool {
	_, ok := d.Delta()
	return ok
}

// ParseDirection converts a case-insensitive direction name
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
	return d, nil
}

// MoveOutcome classifies the result of a single step
type MoveOutcome string

const (
	OutcomeMoved           MoveOutcome = "moved"
	OutcomePushed          MoveOutcome = "pushed"
	OutcomeBlockedWall     MoveOutcome = "blocked_wall"
	OutcomeBlockedCrate    MoveOutcome = "blocked_crate"
	OutcomeBlockedBoundary MoveOutcome = "blocked_boundary"
)

// Blocked reports whether the step left the state unchanged
func (o MoveOutcome) Blocked() bool {
	return o != OutcomeMoved && o != OutcomePushed
}

// PlayState is the progress of one play-through of a level
type PlayState struct {
	Board      *GameState `json:"board"`
	Victory    bool       `json:"victory"`
	Message    string     `json:"message"`
	ConfigName string     `json:"config_name"`
	Pushes     int        `json:"pushes"`

	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset. It mirrors MoveHistory entries
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`
}

// MoveHistoryEntry represents a single move in the game history
type MoveHistoryEntry struct {
	Action       string      `json:"action"`
	FromPosition Position    `json:"from_position"`
	ToPosition   Position    `json:"to_position"`
	Outcome      MoveOutcome `json:"outcome"`
	CrateFrom    *Position   `json:"crate_from,omitempty"`
	CrateTo      *Position   `json:"crate_to,omitempty"`
	Timestamp    int64       `json:"timestamp"`
	Success      bool        `json:"success"`
	MoveNumber   int         `json:"move_number"`
}
