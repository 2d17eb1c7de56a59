package engine

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
)

func scenarioConfig() *LevelConfig {
	return &LevelConfig{
		Name:        "scenario",
		Description: "Two crates, two targets",
		Level:       scenarioLevel(),
	}
}

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine(scenarioConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	state := engine.GetState()
	if state.ConfigName != "scenario" {
		t.Errorf("Expected config name 'scenario', got %s", state.ConfigName)
	}
	if state.Message != defaultMessages.Welcome {
		t.Errorf("Expected welcome message, got %q", state.Message)
	}
	if state.Victory {
		t.Error("New game should not be won")
	}
	if engine.GetPlayerPosition() != (Position{1, 0}) {
		t.Errorf("Expected player at (1,0), got %v", engine.GetPlayerPosition())
	}
	if len(state.MoveHistory) != 0 || state.TotalMoves != 0 {
		t.Error("New game should have empty history")
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	configs := map[string]*LevelConfig{
		"nil":         nil,
		"no name":     {Layout: []string{"@"}},
		"no board":    {Name: "x"},
		"both boards": {Name: "x", Layout: []string{"@"}, Level: LevelDescription{{{"player"}}}},
		"no player":   {Name: "x", Layout: []string{"#."}},
	}

	for name, config := range configs {
		t.Run(name, func(t *testing.T) {
			if _, err := NewEngine(config); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestEngine_MoveAndPush(t *testing.T) {
	engine, err := NewEngine(MinimalLevelConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	// Player at (2,2), crate at (2,3), target at (2,4)
	entry, ok := engine.Step("UP")
	if !ok || entry.Outcome != OutcomeMoved {
		t.Fatalf("Expected move up, got %v %s", ok, entry.Outcome)
	}
	if entry.Action != "up" {
		t.Errorf("Expected action 'up', got %s", entry.Action)
	}
	if !strings.Contains(engine.GetState().Message, "up") {
		t.Errorf("Expected message to mention direction, got %q", engine.GetState().Message)
	}

	if !engine.Move("down") {
		t.Fatal("Expected move down to succeed")
	}

	entry, ok = engine.Step("right")
	if !ok || entry.Outcome != OutcomePushed {
		t.Fatalf("Expected push, got %v %s", ok, entry.Outcome)
	}
	if entry.CrateFrom == nil || *entry.CrateFrom != (Position{2, 3}) {
		t.Errorf("Expected crate from (2,3), got %v", entry.CrateFrom)
	}
	if entry.CrateTo == nil || *entry.CrateTo != (Position{2, 4}) {
		t.Errorf("Expected crate to (2,4), got %v", entry.CrateTo)
	}

	state := engine.GetState()
	if !state.Victory {
		t.Fatal("Expected victory after pushing the crate onto the target")
	}
	if state.Pushes != 1 {
		t.Errorf("Expected 1 push, got %d", state.Pushes)
	}
	if state.Message != "Victory! All 1 targets covered in 3 moves!" {
		t.Errorf("Unexpected victory message %q", state.Message)
	}
}

func TestEngine_BlockedMovesAreRecorded(t *testing.T) {
	engine, err := NewEngine(&LevelConfig{
		Name:   "box",
		Layout: []string{"####", "#@.#", "####"},
	})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	entry, ok := engine.Step("up")
	if ok {
		t.Error("Expected move into a wall to fail")
	}
	if entry.Outcome != OutcomeBlockedWall {
		t.Errorf("Expected %s, got %s", OutcomeBlockedWall, entry.Outcome)
	}
	if engine.GetState().Message != "Can't move up: wall" {
		t.Errorf("Unexpected message %q", engine.GetState().Message)
	}

	_, ok = engine.Step("sideways")
	if ok {
		t.Error("Expected invalid direction to fail")
	}

	state := engine.GetState()
	if state.TotalMoves != 2 || len(state.MoveHistory) != 2 {
		t.Errorf("Expected 2 recorded attempts, got %d/%d", state.TotalMoves, len(state.MoveHistory))
	}
	last := engine.GetLastMove()
	if last == nil || last.MoveNumber != 2 || last.Success {
		t.Errorf("Unexpected last move %+v", last)
	}
}

func TestEngine_RefusesMovesAfterVictory(t *testing.T) {
	engine, err := NewEngine(MinimalLevelConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	if !engine.Move("right") || !engine.IsVictory() {
		t.Fatal("Expected single push to win")
	}
	if engine.Move("left") {
		t.Error("Expected move after victory to be refused")
	}
	if engine.GetState().Message != defaultMessages.AlreadyWon {
		t.Errorf("Expected already won message, got %q", engine.GetState().Message)
	}
	if engine.CanMove("left") {
		t.Error("CanMove should be false after victory")
	}
	if moves := engine.GetPossibleMoves(); moves != nil {
		t.Errorf("Expected no possible moves after victory, got %v", moves)
	}
}

func TestEngine_Reset(t *testing.T) {
	engine, err := NewEngine(MinimalLevelConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	engine.Move("up")
	engine.Move("left")
	state := engine.Reset()

	if state.Board != engine.InitialBoard() {
		t.Error("Reset should restore the initial board")
	}
	if state.TotalMoves != 2 || len(state.MoveHistory) != 2 {
		t.Errorf("Reset should keep cumulative history, got %d/%d", state.TotalMoves, len(state.MoveHistory))
	}
	if state.CurrentMovesCount != 0 || len(state.CurrentMoves) != 0 {
		t.Error("Reset should clear the current segment")
	}
}

func TestEngine_BulkMoveStopsOnVictory(t *testing.T) {
	engine, err := NewEngine(MinimalLevelConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	results := engine.BulkMove([]string{"up", "down", "right", "left", "left"})
	if len(results) != 3 {
		t.Fatalf("Expected bulk move to stop after 3 moves, got %d", len(results))
	}
	for i, ok := range results {
		if !ok {
			t.Errorf("Move %d failed", i)
		}
	}
}

func TestEngine_CanMoveAndPossibleMoves(t *testing.T) {
	engine, err := NewEngine(&LevelConfig{
		Name:   "corridor",
		Layout: []string{"#####", "#@$.#", "#####"},
	})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	if engine.CanMove("up") {
		t.Error("Expected up to be blocked")
	}
	if !engine.CanMove("right") {
		t.Error("Expected right to push")
	}
	moves := engine.GetPossibleMoves()
	if len(moves) != 1 || moves[0] != "right" {
		t.Errorf("Expected [right], got %v", moves)
	}
}

func TestEngine_SetState(t *testing.T) {
	engine, err := NewEngine(MinimalLevelConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	if err := engine.SetState(nil); err == nil {
		t.Error("Expected error for nil state")
	}
	if err := engine.SetState(&PlayState{}); err == nil {
		t.Error("Expected error for missing board")
	}
	other := mustLayout(t, "@.")
	if err := engine.SetState(&PlayState{Board: other}); err == nil {
		t.Error("Expected error for mismatched board size")
	}

	moved := mustLayout(t,
		"#######",
		"#     #",
		"# @ $.#",
		"#     #",
		"#######",
	)
	if err := engine.SetState(&PlayState{Board: moved}); err == nil {
		t.Error("Expected error for board with different targets")
	}

	won := Step(engine.InitialBoard(), Right)
	if err := engine.SetState(&PlayState{Board: won}); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	if !engine.IsVictory() {
		t.Error("SetState should recompute victory")
	}
}

func TestEngine_SetConfig(t *testing.T) {
	engine, err := NewEngine(MinimalLevelConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	engine.Move("up")

	if err := engine.SetConfig(scenarioConfig()); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	if engine.GetConfig().Name != "scenario" {
		t.Errorf("Expected scenario config, got %s", engine.GetConfig().Name)
	}
	if engine.GetState().TotalMoves != 0 {
		t.Error("SetConfig should start a fresh game")
	}
	if err := engine.SetConfig(&LevelConfig{Name: "bad"}); err == nil {
		t.Error("Expected invalid config to be rejected")
	}
	if engine.GetConfig().Name != "scenario" {
		t.Error("Rejected config should leave the engine unchanged")
	}
}

func TestEngine_GetStateIsSnapshot(t *testing.T) {
	engine, err := NewEngine(MinimalLevelConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	engine.Move("up")

	before := engine.GetState()
	engine.Move("down")

	if before.TotalMoves != 1 || len(before.MoveHistory) != 1 || len(before.CurrentMoves) != 1 {
		t.Errorf("Snapshot changed after a later move: %d/%d/%d",
			before.TotalMoves, len(before.MoveHistory), len(before.CurrentMoves))
	}
	if before.Board.Player() != (Position{1, 2}) {
		t.Errorf("Snapshot board moved to %v", before.Board.Player())
	}

	before.MoveHistory[0].Action = "tampered"
	if engine.GetMoveHistory()[0].Action != "up" {
		t.Error("Editing a snapshot leaked into the engine")
	}

	reset := engine.Reset()
	engine.Move("up")
	if reset.CurrentMovesCount != 0 || reset.TotalMoves != 2 {
		t.Errorf("Reset snapshot changed after a later move: %d/%d", reset.CurrentMovesCount, reset.TotalMoves)
	}
}

func TestEngine_ConcurrentStepAndRead(t *testing.T) {
	engine, err := NewEngine(MinimalLevelConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			dir := "up"
			if i%2 == 1 {
				dir = "down"
			}
			engine.Move(dir)
		}(i)
		go func() {
			defer wg.Done()
			if _, err := json.Marshal(engine.GetState()); err != nil {
				t.Errorf("Marshal failed: %v", err)
			}
			engine.GetPossibleMoves()
		}()
	}
	wg.Wait()

	if got := engine.GetState().TotalMoves; got != 50 {
		t.Errorf("Expected 50 recorded moves, got %d", got)
	}
}
