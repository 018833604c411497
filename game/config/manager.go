package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/reindeermaze/game/engine"
	"github.com/wricardo/mcp-training/reindeermaze/game/maze"
	"github.com/wricardo/mcp-training/reindeermaze/game/service"
)

var (
	ErrConfigNotFound = errors.New("maze definition not found")
	ErrInvalidConfig  = errors.New("invalid maze definition")
)

const (
	jsonExt = ".json"
	textExt = ".txt"

	// DefaultMazeName is the definition preferred as the default maze
	DefaultMazeName = "small"
)

var _ service.ConfigManager = (*Manager)(nil)

// Manager handles maze definition loading and caching
type Manager struct {
	configDir     string
	defaultName   string
	defaultConfig *engine.MazeConfig
	configs       map[string]*engine.MazeConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir:   configDir,
		defaultName: DefaultMazeName,
		configs:   make(map[string]*engine.MazeConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// LoadConfig loads a maze definition by name. name.json is tried first,
// then a bare grid in name.txt.
func (m *Manager) LoadConfig(name string) (*engine.MazeConfig, error) {
	name = mazeID(name)
	if err := checkMazeID(name); err != nil {
		return nil, err
	}

	m.mu.RLock()
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[name]; exists {
		return config, nil
	}

	config, err := m.readJSON(name)
	if errors.Is(err, ErrConfigNotFound) {
		config, err = m.readText(name)
	}
	if err != nil {
		return nil, err
	}

	m.configs[name] = config
	return config, nil
}

func (m *Manager) readJSON(name string) (*engine.MazeConfig, error) {
	data, err := os.ReadFile(filepath.Join(m.configDir, name+jsonExt))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config engine.MazeConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s%s: %v", ErrInvalidConfig, name, jsonExt, err)
	}
	if err := engine.ValidateMazeConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &config, nil
}

func (m *Manager) readText(name string) (*engine.MazeConfig, error) {
	f, err := os.Open(filepath.Join(m.configDir, name+textExt))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
		}
		return nil, fmt.Errorf("failed to read maze file: %w", err)
	}
	defer f.Close()

	parsed, err := maze.Read(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s%s: %v", ErrInvalidConfig, name, textExt, err)
	}
	return &engine.MazeConfig{Name: name, Layout: parsed.Layout()}, nil
}

// ListConfigs returns information about all loadable maze definitions
func (m *Manager) ListConfigs() ([]*service.MazeInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var infos []*service.MazeInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != jsonExt && ext != textExt) {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ext)
		if seen[name] {
			continue
		}

		config, err := m.LoadConfig(name)
		if err != nil {
			// Skip invalid definitions
			continue
		}
		seen[name] = true

		info := &service.MazeInfo{
			Filename:    entry.Name(),
			MazeID:      name,
			Name:        config.Name,
			Description: config.Description,
			StepCost:    config.Costs().Step,
			TurnCost:    config.Costs().Turn,
		}
		if len(config.Layout) > 0 {
			info.Rows = len(config.Layout)
			info.Cols = len([]rune(config.Layout[0]))
		}
		if facing, err := config.Direction(); err == nil {
			info.Facing = facing.String()
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].MazeID < infos[j].MazeID
	})
	return infos, nil
}

// GetDefault returns the default maze definition
func (m *Manager) GetDefault() *engine.MazeConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default maze definition by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultName = mazeID(name)
	m.defaultConfig = config
	return nil
}

// RefreshCache drops every cached definition and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.MazeConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig loads the default maze definition
func (m *Manager) loadDefaultConfig() error {
	m.mu.RLock()
	name := m.defaultName
	m.mu.RUnlock()

	config, err := m.LoadConfig(name)
	if err != nil {
		// Fall back to the first loadable definition
		infos, listErr := m.ListConfigs()
		if listErr != nil || len(infos) == 0 {
			config = m.createMinimalConfig()
		} else if config, err = m.LoadConfig(infos[0].MazeID); err != nil {
			config = m.createMinimalConfig()
		}
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

// SaveConfig validates a maze definition and writes it as name.json
func (m *Manager) SaveConfig(name string, config *engine.MazeConfig) error {
	if err := engine.ValidateMazeConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	name = mazeID(name)
	if err := checkMazeID(name); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(m.configDir, name+jsonExt)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[name] = config
	m.mu.Unlock()

	return nil
}

// createMinimalConfig creates a minimal valid maze definition
func (m *Manager) createMinimalConfig() *engine.MazeConfig {
	return &engine.MazeConfig{
		Name:        "default",
		Description: "Default minimal maze",
		Layout: []string{
			"#######",
			"#S...E#",
			"#######",
		},
	}
}

// mazeID strips a known file extension from name
func mazeID(name string) string {
	for _, ext := range []string{jsonExt, textExt} {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// checkMazeID rejects ids that would resolve outside the config directory
func checkMazeID(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: bad maze id %q", ErrInvalidConfig, name)
	}
	return nil
}
