package service

import (
	"context"

	"github.com/wricardo/mcp-training/reindeermaze/game/engine"
)

// SolverService defines all maze-related operations
type SolverService interface {
	// Maze definitions
	ListMazes(ctx context.Context) ([]*MazeInfo, error)
	LoadMaze(ctx context.Context, name string) (*engine.MazeConfig, error)
	SaveMaze(ctx context.Context, name string, config *engine.MazeConfig) error

	// Solving
	Solve(ctx context.Context, name string, opts SolveOptions) (*SolveResult, error)
	SolveLayout(ctx context.Context, layout []string, opts SolveOptions) (*SolveResult, error)

	// History
	GetSolution(ctx context.Context, id string) (*SolveResult, error)
	GetHistory(ctx context.Context, opts HistoryOptions) (*HistoryResponse, error)
}

// ConfigManager handles maze definition loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.MazeConfig, error)
	ListConfigs() ([]*MazeInfo, error)
	GetDefault() *engine.MazeConfig
	SaveConfig(name string, config *engine.MazeConfig) error
}
