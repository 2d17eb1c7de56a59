package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/snekoban/game/engine"
	"github.com/wricardo/snekoban/game/service"
)

const sessionFileExt = ".json"

// FilePersistence stores each session as <dir>/<id>.json. Levels are
// referenced by id and resolved through the level manager on load.
type FilePersistence struct {
	dir    string
	levels service.ConfigManager
}

// NewFilePersistence creates dir when needed
func NewFilePersistence(dir string, levels service.ConfigManager) (*FilePersistence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &FilePersistence{dir: dir, levels: levels}, nil
}

func (fp *FilePersistence) path(id string) string {
	return filepath.Join(fp.dir, id+sessionFileExt)
}

// levelID maps a level's display name to the id it is loaded by. Unknown
// names are assumed to be ids already.
func (fp *FilePersistence) levelID(name string) (string, error) {
	infos, err := fp.levels.ListConfigs()
	if err != nil {
		return "", fmt.Errorf("failed to list levels: %w", err)
	}
	for _, info := range infos {
		if info.Name == name {
			return info.ConfigID, nil
		}
	}
	return name, nil
}

// Save writes the session, replacing any earlier copy in one rename
func (fp *FilePersistence) Save(sess *service.Session) error {
	if sess == nil {
		return fmt.Errorf("session cannot be nil")
	}

	levelID, err := fp.levelID(sess.Config.Name)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(PersistedSessionData{
		ID:             sess.ID,
		ConfigName:     levelID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session %s: %w", sess.ID, err)
	}

	return writeFileAtomic(fp.path(sess.ID), data)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Load reads a stored session and rebuilds its engine on the current level
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	data, err := os.ReadFile(fp.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var stored PersistedSessionData
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", id, err)
	}
	if stored.GameState == nil {
		return nil, fmt.Errorf("session %s has no game state", id)
	}
	if stored.ID == "" {
		stored.ID = id
	}

	return fp.restore(stored)
}

func (fp *FilePersistence) restore(stored PersistedSessionData) (*service.Session, error) {
	level, err := fp.levels.LoadConfig(stored.ConfigName)
	if err != nil {
		return nil, fmt.Errorf("failed to load level '%s': %w", stored.ConfigName, err)
	}

	eng, err := engine.NewEngine(level)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}
	if err := eng.SetState(stored.GameState); err != nil {
		return nil, fmt.Errorf("failed to restore session %s: %w", stored.ID, err)
	}

	return &service.Session{
		ID:             stored.ID,
		Engine:         eng,
		Config:         level,
		CreatedAt:      stored.CreatedAt,
		LastAccessedAt: stored.LastAccessedAt,
	}, nil
}

// Delete removes a stored session
func (fp *FilePersistence) Delete(id string) error {
	err := os.Remove(fp.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// ListAll returns the ids of every stored session
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if id, ok := strings.CutSuffix(name, sessionFileExt); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Exists reports whether a session is stored under id
func (fp *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(fp.path(id))
	return err == nil
}
