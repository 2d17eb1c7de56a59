package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LevelMessages are the player-facing texts of a level
type LevelMessages struct {
	Welcome    string `json:"welcome,omitempty" yaml:"welcome,omitempty"`
	Victory    string `json:"victory,omitempty" yaml:"victory,omitempty"`
	Moved      string `json:"moved,omitempty" yaml:"moved,omitempty"`
	Pushed     string `json:"pushed,omitempty" yaml:"pushed,omitempty"`
	Blocked    string `json:"blocked,omitempty" yaml:"blocked,omitempty"`
	AlreadyWon string `json:"already_won,omitempty" yaml:"already_won,omitempty"`
}

// LevelConfig represents a level file. Exactly one of Layout or Level is set.
type LevelConfig struct {
	Name        string           `json:"name" yaml:"name"`
	Description string           `json:"description" yaml:"description"`
	Layout      []string         `json:"layout,omitempty" yaml:"layout,omitempty"`
	Level       LevelDescription `json:"level,omitempty" yaml:"level,omitempty"`
	Messages    LevelMessages    `json:"messages" yaml:"messages"`
}

var defaultMessages = LevelMessages{
	Welcome:    "Push every computer onto a target!",
	Victory:    "Victory! All %d targets covered in %d moves!",
	Moved:      "Moved %s",
	Pushed:     "Pushed computer %s (%d/%d on targets)",
	Blocked:    "Can't move %s: %s",
	AlreadyWon: "Level already solved, reset to play again",
}

// ApplyDefaults fills empty messages with the built-in texts
func (c *LevelConfig) ApplyDefaults() {
	m := &c.Messages
	if m.Welcome == "" {
		m.Welcome = defaultMessages.Welcome
	}
	if m.Victory == "" {
		m.Victory = defaultMessages.Victory
	}
	if m.Moved == "" {
		m.Moved = defaultMessages.Moved
	}
	if m.Pushed == "" {
		m.Pushed = defaultMessages.Pushed
	}
	if m.Blocked == "" {
		m.Blocked = defaultMessages.Blocked
	}
	if m.AlreadyWon == "" {
		m.AlreadyWon = defaultMessages.AlreadyWon
	}
}

// Grid returns the level as a label grid, parsing Layout when needed
func (c *LevelConfig) Grid() (LevelDescription, error) {
	if c.Level != nil {
		return c.Level, nil
	}
	return ParseLayout(c.Layout)
}

// NewGame builds the initial state of the level
func (c *LevelConfig) NewGame() (*GameState, error) {
	desc, err := c.Grid()
	if err != nil {
		return nil, err
	}
	return NewGame(desc)
}

// ValidateLevelConfig checks that a level config is structurally loadable
func ValidateLevelConfig(config *LevelConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	hasLayout := len(config.Layout) > 0
	hasLevel := len(config.Level) > 0
	if hasLayout == hasLevel {
		return fmt.Errorf("config validation: exactly one of layout or level is required")
	}

	if _, err := config.NewGame(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	for name, msg := range map[string]string{"moved": config.Messages.Moved, "blocked": config.Messages.Blocked} {
		if msg != "" && !strings.Contains(msg, "%s") {
			return fmt.Errorf("config validation: messages.%s must contain %%s for direction", name)
		}
	}
	if config.Messages.Victory != "" && strings.Count(config.Messages.Victory, "%d") != 2 {
		return fmt.Errorf("config validation: messages.victory must contain two %%d for targets and moves")
	}

	return nil
}

// ParseLevelConfig decodes a level file body; ext selects YAML (.yaml/.yml) or JSON
func ParseLevelConfig(data []byte, ext string) (*LevelConfig, error) {
	var config LevelConfig
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}

	if err := ValidateLevelConfig(&config); err != nil {
		return nil, err
	}
	config.ApplyDefaults()
	return &config, nil
}

// LoadLevelConfig loads a level configuration from a JSON or YAML file
func LoadLevelConfig(filename string) (*LevelConfig, error) {
	// Support LEVEL_DIR environment variable for alternative level directory
	path := filename
	if levelDir := os.Getenv("LEVEL_DIR"); levelDir != "" {
		if strings.HasPrefix(filename, "levels/") {
			path = filepath.Join(levelDir, strings.TrimPrefix(filename, "levels/"))
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ParseLevelConfig(data, filepath.Ext(path))
}

// MinimalLevelConfig is the built-in level used when no level files are available
func MinimalLevelConfig() *LevelConfig {
	config := &LevelConfig{
		Name:        "default",
		Description: "Default minimal level",
		Layout: []string{
			"#######",
			"#     #",
			"# @$. #",
			"#     #",
			"#######",
		},
	}
	config.ApplyDefaults()
	return config
}
