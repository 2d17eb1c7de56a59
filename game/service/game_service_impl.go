package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/snekoban/game/engine"
	"github.com/wricardo/snekoban/game/solver"
)

// DefaultSolveLimit caps the states a single solver call may expand
const DefaultSolveLimit = 2_000_000

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions   SessionManager
	configs    ConfigManager
	solveLimit int
	mu         sync.RWMutex
}

// Option customises the service
type Option func(*gameServiceImpl)

// WithSolveLimit overrides DefaultSolveLimit; 0 removes the cap
func WithSolveLimit(limit int) Option {
	return func(s *gameServiceImpl) {
		s.solveLimit = limit
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions:   sessions,
		configs:    configs,
		solveLimit: DefaultSolveLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	activeSessions.Set(float64(sessions.Count()))
	return s
}

// getConfigID returns the level id for a display name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	// Fallback: return as-is or "default"
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}
	return sess, nil
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID, // Return the level id, not the display name
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		LevelConfig:    sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load level
	var config *engine.LevelConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrLevelNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available levels: %v", ErrLevelNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/levels to list available levels", ErrLevelNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load level %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate the ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	activeSessions.Set(float64(s.sessions.Count()))

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	return s.sessionInfo(session, configID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(session, s.getConfigID(session.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return err
	}
	activeSessions.Set(float64(s.sessions.Count()))
	return nil
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Reject unknown directions before touching the session
	if _, err := engine.ParseDirection(direction); err != nil {
		return nil, err
	}

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	// Update last accessed time
	s.sessions.UpdateLastAccessed(sessionID)

	events := []GameEvent{}

	// Handle reset if requested
	if reset {
		sess.Engine.Reset()
		events = append(events, resetEvent())
	}

	prev := sess.Engine.Board()
	entry, success := sess.Engine.Step(direction)
	state := sess.Engine.GetState()
	movesTotal.WithLabelValues(string(entry.Outcome)).Inc()

	result := &MoveResult{
		Success:   success,
		GameState: state,
		Message:   state.Message,
		Events:    append(events, moveEvents(entry, state)...),
	}

	if success {
		step := stepInfo(1, entry)
		step.Victory = state.Victory
		result.Step = &step
	} else {
		result.AttemptedTo = attemptInfo(prev, entry)
	}

	// Auto-save session after move
	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("Warning: Failed to persist session %s after move: %v", sessionID, err)
	}

	return result, nil
}

// BulkMove executes multiple moves in sequence, stopping at the first blocked
// move or at victory
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	// Update last accessed
	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	// Handle reset
	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, resetEvent())
	}

	// Capture start snapshot
	startState := sess.Engine.GetState()
	result.StartPos = startState.Board.Player()
	startPushes := startState.Pushes

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, move := range moves {
		if sess.Engine.IsVictory() {
			result.StoppedReason = "level already solved"
			result.StopReasonCode = "victory"
			result.StoppedOnMove = i + 1
			break
		}

		if _, err := engine.ParseDirection(move); err != nil {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d invalid: %q", i+1, move)
			result.StopReasonCode = "invalid_direction"
			result.StoppedOnMove = i + 1
			break
		}

		prev := sess.Engine.Board()
		entry, success := sess.Engine.Step(move)
		movesTotal.WithLabelValues(string(entry.Outcome)).Inc()
		state := sess.Engine.GetState()

		if !success {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, move)
			result.StopReasonCode = string(entry.Outcome)
			result.StoppedOnMove = i + 1
			result.AttemptedTo = attemptInfo(prev, entry)
			result.Events = append(result.Events, moveEvents(entry, state)...)
			break
		}

		result.MovesExecuted++
		result.Events = append(result.Events, moveEvents(entry, state)...)

		step := stepInfo(i+1, entry)
		step.Victory = state.Victory
		result.Steps = append(result.Steps, step)
	}

	endState := sess.Engine.GetState()
	result.GameState = endState
	result.EndPos = endState.Board.Player()
	result.Pushes = endState.Pushes - startPushes
	result.Victory = endState.Victory
	result.CratesOnTargets = endState.Board.CratesOnTargets()
	result.Targets = len(endState.Board.Targets())
	result.Message = endState.Message
	if result.Victory && result.StopReasonCode == "" {
		result.StopReasonCode = "victory"
	}

	// Decision aids
	result.PossibleMoves = sess.Engine.GetPossibleMoves()
	result.LocalView3x3 = buildLocal3x3(endState.Board)

	// Auto-save session after bulk moves
	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("Warning: Failed to persist session %s after bulk moves: %v", sessionID, err)
	}

	return result, nil
}

// Reset resets a game session to its initial board
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.PlayState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	s.sessions.UpdateLastAccessed(sessionID)
	state := sess.Engine.Reset()

	// Auto-save session after reset
	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("Warning: Failed to persist session %s after reset: %v", sessionID, err)
	}

	return state, nil
}

// GetGameState returns a snapshot of the current play state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.PlayState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	// Get the slice of moves
	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Reverse order (most recent first)
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}

	// Ensure moves is not nil
	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// Solve finds a shortest solution from the session's current board. The
// service lock is released before searching; boards are immutable so the
// snapshot stays valid while other requests move the player.
func (s *gameServiceImpl) Solve(ctx context.Context, sessionID string) (*SolveResult, error) {
	s.mu.Lock()
	sess, err := s.getSession(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	board := sess.Engine.Board()
	configID := s.getConfigID(sess.Config.Name)
	s.sessions.UpdateLastAccessed(sessionID)
	s.mu.Unlock()

	result, err := s.solve(ctx, board)
	if err != nil {
		return nil, err
	}
	result.SessionID = sess.ID
	result.ConfigName = configID
	return result, nil
}

// Hint returns the first move of a shortest solution from the current board
func (s *gameServiceImpl) Hint(ctx context.Context, sessionID string) (*HintResult, error) {
	solved, err := s.Solve(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	hint := &HintResult{
		SessionID:    solved.SessionID,
		Remaining:    solved.MoveCount,
		Solvable:     solved.Solvable,
		LimitReached: solved.LimitReached,
	}
	switch {
	case solved.Solvable && solved.MoveCount == 0:
		hint.Message = "Level already solved"
	case solved.Solvable:
		hint.Direction = solved.Moves[0]
		hint.Message = fmt.Sprintf("Move %s (%d moves left)", hint.Direction, solved.MoveCount)
	case solved.LimitReached:
		hint.Message = "Search limit reached before a solution was found"
	default:
		hint.Message = "No solution from this position, reset to try again"
	}
	return hint, nil
}

// SolveLevel finds a shortest solution from a level's initial board
func (s *gameServiceImpl) SolveLevel(ctx context.Context, configName string) (*SolveResult, error) {
	config, err := s.configs.LoadConfig(configName)
	if err != nil {
		return nil, err
	}
	board, err := config.NewGame()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	result, err := s.solve(ctx, board)
	if err != nil {
		return nil, err
	}
	result.ConfigName = configName
	return result, nil
}

func (s *gameServiceImpl) solve(ctx context.Context, board *engine.GameState) (*SolveResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	search := solver.Search(board, solver.Options{MaxExpanded: s.solveLimit})

	outcome := "unsolvable"
	switch {
	case search.Solved:
		outcome = "solved"
	case search.LimitReached:
		outcome = "limit_reached"
	}
	solverRuns.WithLabelValues(outcome).Inc()
	solverExpanded.Observe(float64(search.Expanded))
	solverDuration.Observe(search.Duration.Seconds())

	moves := make([]string, len(search.Moves))
	for i, d := range search.Moves {
		moves[i] = string(d)
	}

	return &SolveResult{
		Solvable:     search.Solved,
		LimitReached: search.LimitReached,
		Moves:        moves,
		MoveCount:    len(moves),
		Expanded:     search.Expanded,
		Enqueued:     search.Enqueued,
		MaxFrontier:  search.MaxFrontier,
		DurationMs:   search.Duration.Milliseconds(),
	}, nil
}

// ListConfigs returns available levels
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific level
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.LevelConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a level to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.LevelConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func resetEvent() GameEvent {
	return GameEvent{
		Type:      "reset",
		Message:   "Game reset to initial state",
		Timestamp: time.Now(),
	}
}

// moveEvents generates events from a recorded move
func moveEvents(entry engine.MoveHistoryEntry, state *engine.PlayState) []GameEvent {
	now := time.Now()

	switch entry.Outcome {
	case engine.OutcomeMoved:
		return []GameEvent{{
			Type:      "move",
			Message:   fmt.Sprintf("Moved %s to %s", entry.Action, entry.ToPosition),
			Timestamp: now,
			Position:  entry.ToPosition,
		}}
	case engine.OutcomePushed:
		events := []GameEvent{{
			Type: "push",
			Message: fmt.Sprintf("Pushed computer %s from %s to %s (%d/%d on targets)",
				entry.Action, entry.CrateFrom, entry.CrateTo,
				state.Board.CratesOnTargets(), len(state.Board.Targets())),
			Timestamp: now,
			Position:  entry.ToPosition,
		}}
		if state.Victory {
			events = append(events, GameEvent{
				Type:      "victory",
				Message:   state.Message,
				Timestamp: now,
				Position:  entry.ToPosition,
			})
		}
		return events
	}

	return []GameEvent{{
		Type:      "blocked",
		Message:   state.Message,
		Timestamp: now,
		Position:  entry.FromPosition,
	}}
}

func stepInfo(idx int, entry engine.MoveHistoryEntry) StepInfo {
	return StepInfo{
		Idx:       idx,
		Dir:       entry.Action,
		From:      entry.FromPosition,
		To:        entry.ToPosition,
		Outcome:   entry.Outcome,
		Success:   entry.Success,
		Pushed:    entry.Outcome == engine.OutcomePushed,
		CrateFrom: entry.CrateFrom,
		CrateTo:   entry.CrateTo,
	}
}

// attemptInfo describes the cell the player tried to enter
func attemptInfo(board *engine.GameState, entry engine.MoveHistoryEntry) *AttemptInfo {
	dir, err := engine.ParseDirection(entry.Action)
	if err != nil {
		return nil
	}
	delta, _ := dir.Delta()
	target := board.Player().Add(delta)
	return &AttemptInfo{
		Row:      target.Row,
		Col:      target.Col,
		TileChar: tileChar(board, target),
		Reason:   strings.TrimPrefix(string(entry.Outcome), "blocked_"),
	}
}

// tileChar renders one cell in layout notation; off-grid cells are blank
func tileChar(board *engine.GameState, p engine.Position) string {
	if !board.InBounds(p) {
		if p == board.Player() {
			return "@"
		}
		return " "
	}
	row := board.Layout()[p.Row]
	return string(row[p.Col])
}

// buildLocal3x3 renders the 3x3 neighbourhood of the player
func buildLocal3x3(board *engine.GameState) []string {
	player := board.Player()
	layout := board.Layout()
	rows := make([]string, 0, 3)
	for dr := -1; dr <= 1; dr++ {
		var b strings.Builder
		for dc := -1; dc <= 1; dc++ {
			p := engine.Position{Row: player.Row + dr, Col: player.Col + dc}
			switch {
			case p == player:
				if board.IsTarget(p) {
					b.WriteByte('+')
				} else {
					b.WriteByte('@')
				}
			case board.InBounds(p):
				b.WriteByte(layout[p.Row][p.Col])
			default:
				b.WriteByte(' ')
			}
		}
		rows = append(rows, b.String())
	}
	return rows
}
