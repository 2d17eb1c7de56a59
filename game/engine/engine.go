package engine

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *PlayState
	SetState(state *PlayState) error
	Reset() *PlayState
	IsVictory() bool
	GetPlayerPosition() Position
	Board() *GameState

	// Movement operations
	Move(direction string) bool
	CanMove(direction string) bool
	GetPossibleMoves() []string

	// Configuration
	GetConfig() *LevelConfig
	SetConfig(config *LevelConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface on top of the immutable board.
// It is safe for concurrent use; readers get snapshots of the play state.
type GameEngine struct {
	mu      sync.RWMutex
	config  *LevelConfig
	initial *GameState
	state   *PlayState
}

// NewEngine creates a new game engine for the provided level
func NewEngine(config *LevelConfig) (*GameEngine, error) {
	if err := ValidateLevelConfig(config); err != nil {
		return nil, err
	}
	config.ApplyDefaults()

	initial, err := config.NewGame()
	if err != nil {
		return nil, err
	}

	return &GameEngine{
		config:  config,
		initial: initial,
		state:   newPlayState(config, initial),
	}, nil
}

func newPlayState(config *LevelConfig, board *GameState) *PlayState {
	return &PlayState{
		Board:        board,
		Victory:      IsVictory(board),
		Message:      config.Messages.Welcome,
		ConfigName:   config.Name,
		MoveHistory:  []MoveHistoryEntry{},
		CurrentMoves: []MoveHistoryEntry{},
	}
}

// GetState returns a snapshot of the current play state
func (e *GameEngine) GetState() *PlayState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.snapshot()
}

// snapshot copies the play state. Boards are immutable and shared.
func (s *PlayState) snapshot() *PlayState {
	c := *s
	c.MoveHistory = slices.Clone(s.MoveHistory)
	c.CurrentMoves = slices.Clone(s.CurrentMoves)
	return &c
}

// SetState sets the play state (used for persistence loading)
func (e *GameEngine) SetState(state *PlayState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.Board == nil {
		return fmt.Errorf("state board cannot be nil")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if state.Board.height != e.initial.height || state.Board.width != e.initial.width {
		return fmt.Errorf("state board is %dx%d, level is %dx%d",
			state.Board.height, state.Board.width, e.initial.height, e.initial.width)
	}
	if !sameCells(state.Board.walls, e.initial.walls) || !sameCells(state.Board.targets, e.initial.targets) {
		return fmt.Errorf("state board walls or targets differ from level %s", e.config.Name)
	}
	if len(state.Board.crates) != len(e.initial.crates) {
		return fmt.Errorf("state board has %d crates, level has %d", len(state.Board.crates), len(e.initial.crates))
	}
	state = state.snapshot()
	state.Victory = IsVictory(state.Board)
	e.state = state
	return nil
}

// Board returns the current board
func (e *GameEngine) Board() *GameState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Board
}

// InitialBoard returns the level's starting board
func (e *GameEngine) InitialBoard() *GameState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.initial
}

// Reset restores the starting board
func (e *GameEngine) Reset() *PlayState {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Preserve cumulative history and totals across resets
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	e.state = newPlayState(e.config, e.initial)

	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal

	return e.state.snapshot()
}

// IsVictory returns whether every target is covered
func (e *GameEngine) IsVictory() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Victory
}

// GetPlayerPosition returns the current player position
func (e *GameEngine) GetPlayerPosition() Position {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Board.player
}

// Move attempts to move the player in the specified direction and reports
// whether the player actually moved
func (e *GameEngine) Move(direction string) bool {
	_, ok := e.Step(direction)
	return ok
}

// Step moves the player and returns the recorded history entry
func (e *GameEngine) Step(direction string) (MoveHistoryEntry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.state.Board
	entry := MoveHistoryEntry{
		Action:       strings.ToLower(direction),
		FromPosition: prev.player,
		ToPosition:   prev.player,
	}

	if e.state.Victory {
		e.state.Message = e.config.Messages.AlreadyWon
		entry.Outcome = OutcomeBlockedBoundary
		e.addMoveToHistory(entry)
		return entry, false
	}

	dir, err := ParseDirection(direction)
	if err != nil {
		e.state.Message = err.Error()
		entry.Outcome = OutcomeBlockedBoundary
		e.addMoveToHistory(entry)
		return entry, false
	}

	next, outcome := Apply(prev, dir)
	entry.Action = string(dir)
	entry.Outcome = outcome
	entry.ToPosition = next.player

	switch outcome {
	case OutcomePushed:
		delta, _ := dir.Delta()
		crateFrom := next.player
		crateTo := crateFrom.Add(delta)
		entry.CrateFrom, entry.CrateTo = &crateFrom, &crateTo
		e.state.Pushes++
		e.state.Message = fmt.Sprintf(e.config.Messages.Pushed, dir, next.CratesOnTargets(), len(next.targets))
	case OutcomeMoved:
		e.state.Message = fmt.Sprintf(e.config.Messages.Moved, dir)
	default:
		e.state.Message = fmt.Sprintf(e.config.Messages.Blocked, dir, strings.TrimPrefix(string(outcome), "blocked_"))
	}

	entry.Success = !outcome.Blocked()
	e.state.Board = next
	e.addMoveToHistory(entry)

	if IsVictory(next) {
		e.state.Victory = true
		e.state.Message = fmt.Sprintf(e.config.Messages.Victory, len(next.targets), e.state.CurrentMovesCount)
	}

	return entry, entry.Success
}

// CanMove checks if the player would move in the specified direction
func (e *GameEngine) CanMove(direction string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state.Victory {
		return false
	}
	dir, err := ParseDirection(direction)
	if err != nil {
		return false
	}
	_, outcome := Apply(e.state.Board, dir)
	return !outcome.Blocked()
}

// GetPossibleMoves returns all directions the player can move
func (e *GameEngine) GetPossibleMoves() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state.Victory {
		return nil
	}
	var possible []string
	for _, dir := range LegalDirections(e.state.Board) {
		possible = append(possible, string(dir))
	}
	return possible
}

// GetConfig returns the current level configuration
func (e *GameEngine) GetConfig() *LevelConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config
}

// SetConfig sets a new level configuration and resets the game
func (e *GameEngine) SetConfig(config *LevelConfig) error {
	if err := ValidateLevelConfig(config); err != nil {
		return err
	}
	config.ApplyDefaults()

	initial, err := config.NewGame()
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.config = config
	e.initial = initial
	e.state = newPlayState(config, initial)
	return nil
}

// GetMoveHistory returns a copy of the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.state.MoveHistory)
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	last := e.state.MoveHistory[len(e.state.MoveHistory)-1]
	return &last
}

// BulkMove executes multiple moves in sequence, returning success status for each
func (e *GameEngine) BulkMove(moves []string) []bool {
	results := make([]bool, 0, len(moves))

	for _, direction := range moves {
		// Stop once the level is solved
		if e.IsVictory() {
			break
		}

		success := e.Move(direction)
		results = append(results, success)
	}

	return results
}

// addMoveToHistory adds a move to the game's move history; e.mu must be held
func (e *GameEngine) addMoveToHistory(entry MoveHistoryEntry) {
	entry.Timestamp = time.Now().Unix()
	entry.MoveNumber = e.state.TotalMoves + 1

	// Append to cumulative history (never cleared by reset) and increment total
	e.state.MoveHistory = append(e.state.MoveHistory, entry)
	e.state.TotalMoves++

	// Append to current segment history and increment its counter
	e.state.CurrentMoves = append(e.state.CurrentMoves, entry)
	e.state.CurrentMovesCount++
}
