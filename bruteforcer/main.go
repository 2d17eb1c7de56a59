// Command bruteforcer plays a level on a running server. It creates or resumes
// a session, downloads the board, finds a shortest solution locally and
// replays it through the bulk-move endpoint.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/wricardo/snekoban/game/engine"
	"github.com/wricardo/snekoban/game/service"
	"github.com/wricardo/snekoban/game/solver"
)

type MoveRequest struct {
	Moves []string `json:"moves"`
	Reset bool     `json:"reset,omitempty"`
}

type ResetResponse struct {
	Message string            `json:"message"`
	State   *engine.PlayState `json:"state"`
}

type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// do sends a JSON request and decodes the answer into result
func (c *Client) do(method, path string, body interface{}, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, strings.TrimSpace(string(data)))
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

func (c *Client) CreateSession(configID string) (*engine.PlayState, error) {
	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.do("POST", "/api/sessions", body, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c.sessionID = session.ID
	return session.GameState, nil
}

func (c *Client) GetState() (*engine.PlayState, error) {
	var state engine.PlayState
	if err := c.do("GET", "/api/sessions/"+c.sessionID+"/state", nil, &state); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &state, nil
}

func (c *Client) Reset() (*engine.PlayState, error) {
	var resetResp ResetResponse
	if err := c.do("POST", "/api/sessions/"+c.sessionID+"/reset", nil, &resetResp); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return resetResp.State, nil
}

func (c *Client) BulkMove(moves []string) (*service.BulkMoveResult, error) {
	var result service.BulkMoveResult
	if err := c.do("POST", "/api/sessions/"+c.sessionID+"/bulk-move", MoveRequest{Moves: moves}, &result); err != nil {
		return nil, fmt.Errorf("bulk move: %w", err)
	}
	return &result, nil
}

// Options control a run
type Options struct {
	ConfigID    string
	SessionID   string
	SessionFile string
	Reset       bool
	Limit       int
	ChunkSize   int
	Delay       time.Duration
	Verbose     bool
}

var errNoSolution = errors.New("no solution found")

// openSession resumes the requested or saved session, creating one when
// neither is usable.
func openSession(client *Client, opts Options) (*engine.PlayState, error) {
	savedSessionID := opts.SessionID
	if savedSessionID == "" && opts.SessionFile != "" {
		if data, err := os.ReadFile(opts.SessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	if savedSessionID != "" {
		client.sessionID = savedSessionID
		log.Printf("🔄 Resuming session: %s", client.sessionID)
		state, err := client.GetState()
		if err == nil {
			return state, nil
		}
		log.Printf("⚠️  Failed to resume session (may be expired): %v", err)
		log.Printf("Creating new session...")
	}

	state, err := client.CreateSession(opts.ConfigID)
	if err != nil {
		return nil, err
	}
	log.Printf("✨ Session created: %s", client.sessionID)

	if opts.SessionFile != "" {
		if err := os.WriteFile(opts.SessionFile, []byte(client.sessionID), 0644); err != nil {
			log.Printf("Warning: Failed to save session ID: %v", err)
		}
	}
	return state, nil
}

// run solves the session's current board and replays the solution
func run(client *Client, opts Options) (*engine.PlayState, error) {
	state, err := openSession(client, opts)
	if err != nil {
		return nil, err
	}

	if opts.Reset {
		log.Printf("🔄 Resetting game state...")
		if state, err = client.Reset(); err != nil {
			return nil, err
		}
	}

	if state == nil || state.Board == nil {
		return nil, fmt.Errorf("session %s returned no board", client.sessionID)
	}
	board := state.Board
	log.Printf("Level: %s, Grid: %dx%d, Crates: %d, Targets: %d",
		state.ConfigName, board.Height(), board.Width(), len(board.Crates()), len(board.Targets()))

	if state.Victory {
		log.Printf("Level already solved")
		return state, nil
	}

	search := solver.Search(board, solver.Options{MaxExpanded: opts.Limit})
	log.Printf("Search: solved=%v moves=%d expanded=%d frontier=%d took=%s",
		search.Solved, len(search.Moves), search.Expanded, search.MaxFrontier, search.Duration)
	if !search.Solved {
		if search.LimitReached {
			return state, fmt.Errorf("%w: search stopped after %d states", errNoSolution, search.Expanded)
		}
		return state, errNoSolution
	}

	moves := make([]string, len(search.Moves))
	for i, dir := range search.Moves {
		moves[i] = string(dir)
	}

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 || chunkSize > engine.MaxBulkMoves {
		chunkSize = engine.MaxBulkMoves
	}

	for start := 0; start < len(moves); start += chunkSize {
		end := start + chunkSize
		if end > len(moves) {
			end = len(moves)
		}
		chunk := moves[start:end]

		result, err := client.BulkMove(chunk)
		if err != nil {
			return state, err
		}
		state = result.GameState
		if opts.Verbose {
			log.Printf("Replayed moves %d-%d: executed=%d pushes=%d on target=%d/%d",
				start+1, end, result.MovesExecuted, result.Pushes, result.CratesOnTargets, result.Targets)
		}
		if result.MovesExecuted != len(chunk) && !result.Victory {
			return state, fmt.Errorf("replay diverged at move %d: %s", start+result.StoppedOnMove, result.StoppedReason)
		}
		if result.Victory {
			break
		}

		if opts.Delay > 0 {
			time.Sleep(opts.Delay)
		}
	}

	if state == nil || !state.Victory {
		return state, fmt.Errorf("replayed %d moves without victory", len(moves))
	}
	return state, nil
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	configID := flag.String("config", "", "Level id (classic, corridor, ...)")
	continueSession := flag.String("continue", "", "Resume playing an existing session by ID")
	sessionFile := flag.String("session-file", ".session", "File remembering the last session ID")
	reset := flag.Bool("reset", true, "Reset the level before solving")
	limit := flag.Int("limit", service.DefaultSolveLimit, "Maximum states expanded by the solver (0 = unlimited)")
	chunk := flag.Int("chunk", engine.MaxBulkMoves, "Moves per bulk-move request")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between requests in milliseconds (0 = no delay)")
	flag.Parse()

	log.Printf("Connecting to game server at %s", *serverURL)
	client := NewClient(*serverURL)

	state, err := run(client, Options{
		ConfigID:    *configID,
		SessionID:   *continueSession,
		SessionFile: *sessionFile,
		Reset:       *reset,
		Limit:       *limit,
		ChunkSize:   *chunk,
		Delay:       time.Duration(*delayMs) * time.Millisecond,
		Verbose:     *verbose,
	})
	if err != nil {
		log.Printf("\n❌ %v", err)
		log.Printf("Session: %s", client.sessionID)
		os.Exit(1)
	}

	log.Printf("\n🎉 VICTORY! %d moves, %d pushes", state.CurrentMovesCount, state.Pushes)
	log.Printf("Session: %s", client.sessionID)
}
