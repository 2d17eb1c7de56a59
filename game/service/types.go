package service

import (
	"time"

	"github.com/wricardo/snekoban/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	GameState      *engine.PlayState   `json:"game_state"`
	LevelConfig    *engine.LevelConfig `json:"level_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success     bool              `json:"success"`
	GameState   *engine.PlayState `json:"game_state"`
	Message     string            `json:"message"`
	Events      []GameEvent       `json:"events,omitempty"`
	Step        *StepInfo         `json:"step,omitempty"`
	AttemptedTo *AttemptInfo      `json:"attempted_to,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.PlayState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // blocked_wall|blocked_crate|blocked_boundary|invalid_direction|victory
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos engine.Position `json:"start_pos"`
	EndPos   engine.Position `json:"end_pos"`
	Pushes   int             `json:"pushes"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Failure diagnostics
	AttemptedTo *AttemptInfo `json:"attempted_to,omitempty"`

	// Final status aids
	Victory         bool     `json:"victory"`
	CratesOnTargets int      `json:"crates_on_targets"`
	Targets         int      `json:"targets"`
	Message         string   `json:"message,omitempty"`
	PossibleMoves   []string `json:"possible_moves,omitempty"`
	LocalView3x3    []string `json:"local_view_3x3,omitempty"`
}

// StepInfo is a compact record for each executed move
type StepInfo struct {
	Idx       int                `json:"idx"`
	Dir       string             `json:"dir"`
	From      engine.Position    `json:"from"`
	To        engine.Position    `json:"to"`
	Outcome   engine.MoveOutcome `json:"outcome"`
	Success   bool               `json:"success"`
	Pushed    bool               `json:"pushed,omitempty"`
	CrateFrom *engine.Position   `json:"crate_from,omitempty"`
	CrateTo   *engine.Position   `json:"crate_to,omitempty"`
	Victory   bool               `json:"victory,omitempty"`
}

// AttemptInfo details the first blocked cell attempted
type AttemptInfo struct {
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	TileChar string `json:"tile_char"`
	Reason   string `json:"reason"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // "move", "push", "blocked", "victory", "reset"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// SolveResult reports a solver run. Moves is empty when the board is already
// won; Solvable is false both for proven dead ends and for capped searches,
// which LimitReached tells apart.
type SolveResult struct {
	SessionID    string   `json:"session_id,omitempty"`
	ConfigName   string   `json:"config_name"`
	Solvable     bool     `json:"solvable"`
	LimitReached bool     `json:"limit_reached,omitempty"`
	Moves        []string `json:"moves"`
	MoveCount    int      `json:"move_count"`
	Expanded     int      `json:"expanded"`
	Enqueued     int      `json:"enqueued"`
	MaxFrontier  int      `json:"max_frontier"`
	DurationMs   int64    `json:"duration_ms"`
}

// HintResult suggests the next move of a shortest solution
type HintResult struct {
	SessionID    string `json:"session_id"`
	Direction    string `json:"direction,omitempty"`
	Remaining    int    `json:"remaining"`
	Solvable     bool   `json:"solvable"`
	LimitReached bool   `json:"limit_reached,omitempty"`
	Message      string `json:"message"`
}

// ConfigInfo provides information about a level file
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Height      int    `json:"height"`
	Width       int    `json:"width"`
	Crates      int    `json:"crates"`
	Targets     int    `json:"targets"`
}
