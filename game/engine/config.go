package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/reindeermaze/game/maze"
)

// MazeConfig represents a named maze definition loaded from JSON
type MazeConfig struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Layout      []string `json:"layout"`
	StepCost    int      `json:"step_cost,omitempty"`
	TurnCost    int      `json:"turn_cost,omitempty"`
	Facing      string   `json:"facing,omitempty"`
}

// Costs returns the configured move costs, defaulting unset values
func (c *MazeConfig) Costs() Costs {
	costs := DefaultCosts
	if c.StepCost != 0 {
		costs.Step = c.StepCost
	}
	if c.TurnCost != 0 {
		costs.Turn = c.TurnCost
	}
	return costs
}

// Direction returns the configured starting heading, DefaultFacing if unset
func (c *MazeConfig) Direction() (maze.Direction, error) {
	if strings.TrimSpace(c.Facing) == "" {
		return DefaultFacing, nil
	}
	return maze.ParseDirection(c.Facing)
}

// Build parses the layout into a maze
func (c *MazeConfig) Build() (*maze.Maze, error) {
	return maze.Parse(c.Layout)
}

// ValidateMazeConfig validates a maze definition for correctness
func ValidateMazeConfig(config *MazeConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if strings.TrimSpace(config.Name) == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.StepCost < 0 {
		return fmt.Errorf("config validation: step_cost must not be negative, got %d", config.StepCost)
	}
	if config.TurnCost < 0 {
		return fmt.Errorf("config validation: turn_cost must not be negative, got %d", config.TurnCost)
	}
	if _, err := config.Direction(); err != nil {
		return fmt.Errorf("config validation: facing: %w", err)
	}
	if _, err := config.Build(); err != nil {
		return fmt.Errorf("config validation: layout: %w", err)
	}
	return nil
}

// LoadMazeConfig loads a maze definition from a JSON file
func LoadMazeConfig(filename string) (*MazeConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config MazeConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse maze config %s: %w", filepath.Base(filename), err)
	}

	if err := ValidateMazeConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// NewEngineFromConfig builds the maze of config and an engine with its costs
func NewEngineFromConfig(config *MazeConfig) (*Engine, error) {
	if err := ValidateMazeConfig(config); err != nil {
		return nil, err
	}
	m, err := config.Build()
	if err != nil {
		return nil, err
	}
	return NewEngine(m, config.Costs())
}
