package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/snekoban/api"
	"github.com/wricardo/snekoban/game/config"
	"github.com/wricardo/snekoban/game/service"
	"github.com/wricardo/snekoban/game/session"
)

const corridorLevel = `name: Corridor
layout:
  - "#######"
  - "#@ $. #"
  - "#######"
`

const cornerLevel = `{"name": "Corner", "layout": ["#####", "#$ .#", "# @ #", "#####"]}`

// countingServer starts a real API server and counts bulk-move requests
func countingServer(t *testing.T) (*httptest.Server, service.GameService, *int32) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corridor.yaml"), []byte(corridorLevel), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corner.json"), []byte(cornerLevel), 0644))

	configs, err := config.NewManager(dir)
	require.NoError(t, err)
	svc := service.NewGameService(session.NewManager(), configs)
	handler := api.NewServer(svc, nil)

	var bulkCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if filepath.Base(r.URL.Path) == "bulk-move" {
			atomic.AddInt32(&bulkCalls, 1)
		}
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	return server, svc, &bulkCalls
}

func TestRun_SolvesAndReplays(t *testing.T) {
	server, _, bulkCalls := countingServer(t)
	sessionFile := filepath.Join(t.TempDir(), ".session")

	client := NewClient(server.URL)
	state, err := run(client, Options{
		ConfigID:    "corridor",
		SessionFile: sessionFile,
		Reset:       true,
	})
	require.NoError(t, err)
	assert.True(t, state.Victory)
	assert.Equal(t, 2, state.CurrentMovesCount)
	assert.Equal(t, int32(1), atomic.LoadInt32(bulkCalls))

	saved, err := os.ReadFile(sessionFile)
	require.NoError(t, err)
	assert.Equal(t, client.sessionID, string(saved))
}

func TestRun_Chunked(t *testing.T) {
	server, _, bulkCalls := countingServer(t)

	state, err := run(NewClient(server.URL), Options{ConfigID: "corridor", ChunkSize: 1})
	require.NoError(t, err)
	assert.True(t, state.Victory)
	assert.Equal(t, int32(2), atomic.LoadInt32(bulkCalls))
}

func TestRun_ResumesSavedSession(t *testing.T) {
	server, svc, _ := countingServer(t)
	sessionFile := filepath.Join(t.TempDir(), ".session")

	first := NewClient(server.URL)
	_, err := run(first, Options{ConfigID: "corridor", SessionFile: sessionFile})
	require.NoError(t, err)

	// Resumed and reset, the same session is solved again
	second := NewClient(server.URL)
	state, err := run(second, Options{SessionFile: sessionFile, Reset: true})
	require.NoError(t, err)
	assert.True(t, state.Victory)
	assert.Equal(t, first.sessionID, second.sessionID)

	sessions, err := svc.ListSessions(t.Context())
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestRun_AlreadySolvedWithoutReset(t *testing.T) {
	server, _, bulkCalls := countingServer(t)

	client := NewClient(server.URL)
	_, err := run(client, Options{ConfigID: "corridor"})
	require.NoError(t, err)

	state, err := run(client, Options{SessionID: client.sessionID})
	require.NoError(t, err)
	assert.True(t, state.Victory)
	assert.Equal(t, int32(1), atomic.LoadInt32(bulkCalls))
}

func TestRun_ExpiredSessionCreatesNew(t *testing.T) {
	server, _, _ := countingServer(t)

	client := NewClient(server.URL)
	state, err := run(client, Options{ConfigID: "corridor", SessionID: "gone1234"})
	require.NoError(t, err)
	assert.True(t, state.Victory)
	assert.NotEqual(t, "gone1234", client.sessionID)
}

func TestRun_Unsolvable(t *testing.T) {
	server, _, bulkCalls := countingServer(t)

	_, err := run(NewClient(server.URL), Options{ConfigID: "corner"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errNoSolution))
	assert.Equal(t, int32(0), atomic.LoadInt32(bulkCalls))

	_, err = run(NewClient(server.URL), Options{ConfigID: "corridor", Limit: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errNoSolution))
	assert.Contains(t, err.Error(), "search stopped")
}

func TestRun_UnknownLevel(t *testing.T) {
	server, _, _ := countingServer(t)

	_, err := run(NewClient(server.URL), Options{ConfigID: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
