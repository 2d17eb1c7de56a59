package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/snekoban/game/engine"
	"github.com/wricardo/snekoban/game/service"
)

var (
	ErrConfigNotFound = service.ErrLevelNotFound
	ErrInvalidConfig  = service.ErrInvalidLevel
)

// Extensions recognised as level files, in lookup order
var levelExtensions = []string{".json", ".yaml", ".yml"}

// DefaultLevel is preferred as the default when present
const DefaultLevel = "classic"

// Manager handles level loading and caching
type Manager struct {
	configDir     string
	defaultID     string
	defaultConfig *engine.LevelConfig
	configs       map[string]*engine.LevelConfig
	mu            sync.RWMutex
}

// NewManager creates a new level manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure level directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("level directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.LevelConfig),
	}

	// Load default level
	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default level: %w", err)
	}

	return m, nil
}

// Dir returns the level directory
func (m *Manager) Dir() string {
	return m.configDir
}

// levelID strips a known extension from a file or level name
func levelID(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	for _, known := range levelExtensions {
		if ext == known {
			return strings.TrimSuffix(name, filepath.Ext(name))
		}
	}
	return name
}

func isLevelFile(name string) bool {
	return levelID(name) != name
}

// findLevelFile locates the file backing a level id
func (m *Manager) findLevelFile(id string) (string, error) {
	for _, ext := range levelExtensions {
		path := filepath.Join(m.configDir, id+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrConfigNotFound
}

// LoadConfig loads a level by id. A file extension in name is ignored.
func (m *Manager) LoadConfig(name string) (*engine.LevelConfig, error) {
	id := levelID(name)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, ErrConfigNotFound
	}

	m.mu.RLock()
	// Check cache first
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	// Load from file
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.loadLocked(id)
}

// loadLocked reads a level from disk; m.mu must be held for writing
func (m *Manager) loadLocked(id string) (*engine.LevelConfig, error) {
	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	path, err := m.findLevelFile(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}

	config, err := engine.ParseLevelConfig(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, filepath.Base(path), err)
	}

	m.configs[id] = config
	return config, nil
}

// levelFiles lists level file names in the directory, sorted
func (m *Manager) levelFiles() ([]string, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read level directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !isLevelFile(entry.Name()) {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

// ListConfigs returns information about all loadable levels
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	files, err := m.levelFiles()
	if err != nil {
		return nil, err
	}

	configs := []*service.ConfigInfo{}
	seen := make(map[string]bool)

	for _, filename := range files {
		id := levelID(filename)
		if seen[id] {
			continue
		}

		config, err := m.LoadConfig(id)
		if err != nil {
			// Skip invalid levels
			continue
		}
		state, err := config.NewGame()
		if err != nil {
			continue
		}
		seen[id] = true

		configs = append(configs, &service.ConfigInfo{
			Filename:    filename,
			ConfigID:    id, // This is the identifier to use for session creation
			Name:        config.Name,
			Description: config.Description,
			Height:      state.Height(),
			Width:       state.Width(),
			Crates:      len(state.Crates()),
			Targets:     len(state.Targets()),
		})
	}

	return configs, nil
}

// GetDefault returns the default level
func (m *Manager) GetDefault() *engine.LevelConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default level by id
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.setDefault(levelID(name), config)
	return nil
}

// RefreshCache drops every cached level and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.LevelConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// Invalidate drops a single level from the cache
func (m *Manager) Invalidate(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.configs, levelID(name))
}

// loadDefaultConfig picks classic, else the first valid level, else the built-in one
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(DefaultLevel)
	if err != nil {
		// Try the first available level
		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			m.setDefault("", engine.MinimalLevelConfig())
			return nil
		}

		config, err = m.LoadConfig(configs[0].ConfigID)
		if err != nil {
			m.setDefault("", engine.MinimalLevelConfig())
			return nil
		}
		m.setDefault(configs[0].ConfigID, config)
		return nil
	}

	m.setDefault(DefaultLevel, config)
	return nil
}

func (m *Manager) setDefault(id string, config *engine.LevelConfig) {
	m.mu.Lock()
	m.defaultID = id
	m.defaultConfig = config
	m.mu.Unlock()
}

// DefaultID returns the id of the default level, empty for the built-in one
func (m *Manager) DefaultID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultID
}

// SaveConfig writes a level to disk as JSON
func (m *Manager) SaveConfig(name string, config *engine.LevelConfig) error {
	id := levelID(name)
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return fmt.Errorf("%w: invalid level id %q", ErrInvalidConfig, name)
	}

	// Validate level before saving
	if err := engine.ValidateLevelConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	config.ApplyDefaults()

	configPath := filepath.Join(m.configDir, id+".json")

	// Marshal level to JSON with indentation
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal level: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write level file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()

	return nil
}
