package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/snekoban/api"
	"github.com/wricardo/snekoban/transport/mcp"
)

const corridorLevel = `name: Corridor
layout:
  - "#######"
  - "#@ $. #"
  - "#######"
`

// withDirs points the level and session flags at fresh temp directories
func withDirs(t *testing.T) (string, string) {
	t.Helper()
	levels := t.TempDir()
	sessions := filepath.Join(t.TempDir(), "sessions")
	require.NoError(t, os.WriteFile(filepath.Join(levels, "classic.yaml"), []byte(corridorLevel), 0644))

	originalLevels, originalSessions := *levelDir, *sessionsDir
	*levelDir, *sessionsDir = levels, sessions
	t.Cleanup(func() {
		*levelDir, *sessionsDir = originalLevels, originalSessions
	})
	return levels, sessions
}

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Snekoban Server" {
		t.Errorf("Expected app name Snekoban Server, got %s", AppName)
	}
}

func TestFlagDefaults(t *testing.T) {
	if *port <= 0 || *port > 65535 {
		t.Errorf("Invalid default port: %d", *port)
	}
	if *host == "" {
		t.Error("Host should have a default value")
	}
	if *levelDir == "" {
		t.Error("Level directory should have a default value")
	}
	if *sessionsDir == "" {
		t.Error("Sessions directory should have a default value")
	}
	if *solveLimit <= 0 {
		t.Errorf("Expected a positive default solve limit, got %d", *solveLimit)
	}
}

func TestEnvDefault(t *testing.T) {
	t.Setenv("SNEKOBAN_TEST_DIR", "custom")
	if got := envDefault("SNEKOBAN_TEST_DIR", "fallback"); got != "custom" {
		t.Errorf("Expected custom, got %s", got)
	}
	if got := envDefault("SNEKOBAN_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("Expected fallback, got %s", got)
	}
}

func TestInitializeServices(t *testing.T) {
	_, sessions := withDirs(t)

	svcs, err := initializeServices()
	require.NoError(t, err)
	require.NotNil(t, svcs.gameService)

	info, err := svcs.gameService.CreateSession(context.Background(), "classic")
	require.NoError(t, err)
	assert.Equal(t, "Corridor", info.ConfigName)

	_, err = os.Stat(filepath.Join(sessions, info.ID+".json"))
	assert.NoError(t, err, "session should be persisted")
}

func TestInitializeServices_RestoresSessions(t *testing.T) {
	withDirs(t)

	first, err := initializeServices()
	require.NoError(t, err)
	info, err := first.gameService.CreateSession(context.Background(), "classic")
	require.NoError(t, err)
	_, err = first.gameService.Move(context.Background(), info.ID, "right", false)
	require.NoError(t, err)

	second, err := initializeServices()
	require.NoError(t, err)
	state, err := second.gameService.GetGameState(context.Background(), info.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, state.Board.Player().Col)
}

func TestInitializeServices_InvalidLevelDir(t *testing.T) {
	withDirs(t)
	*levelDir = "/non/existent/path"

	_, err := initializeServices()
	if err == nil {
		t.Error("Expected error for non-existent level directory")
	}
}

func TestPruneOrphanedSessions(t *testing.T) {
	_, sessions := withDirs(t)

	svcs, err := initializeServices()
	require.NoError(t, err)

	kept, err := svcs.gameService.CreateSession(context.Background(), "classic")
	require.NoError(t, err)
	removed, err := svcs.gameService.CreateSession(context.Background(), "classic")
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(sessions, removed.ID+".json")))

	assert.Equal(t, 1, pruneOrphanedSessions(svcs.sessions, svcs.persistence))
	assert.Equal(t, 1, svcs.sessions.Count())
	_, err = svcs.sessions.Get(kept.ID)
	assert.NoError(t, err)

	assert.Equal(t, 0, pruneOrphanedSessions(svcs.sessions, svcs.persistence))
}

func TestBackgroundRoutinesStop(t *testing.T) {
	withDirs(t)
	svcs, err := initializeServices()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{}, 2)
	go func() {
		sessionCleanupRoutine(ctx, svcs.sessions, time.Millisecond)
		done <- struct{}{}
	}()
	go func() {
		filesystemSyncRoutine(ctx, svcs.sessions, svcs.persistence, time.Millisecond)
		done <- struct{}{}
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("background routine did not stop")
		}
	}
}

func TestNewRouter(t *testing.T) {
	withDirs(t)
	svcs, err := initializeServices()
	require.NoError(t, err)

	router := newRouter(api.NewServer(svcs.gameService, nil), mcp.NewClient("http://127.0.0.1:1"))
	server := httptest.NewServer(router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/mcp")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	request := []byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	resp, err = http.Post(server.URL+"/mcp", "application/json", bytes.NewReader(request))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "2.0", body["jsonrpc"])
	assert.NotContains(t, body, "error")
}
