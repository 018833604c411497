package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/reindeermaze/game/engine"
	"github.com/wricardo/mcp-training/reindeermaze/game/maze"
)

const (
	// InlineMazeName names results of layouts solved without a stored definition
	InlineMazeName = "inline"

	// DefaultHistorySize is the number of solutions kept when none is configured
	DefaultHistorySize = 100

	defaultPageSize = 20
	maxPageSize     = 100
)

var (
	ErrSolutionNotFound = errors.New("solution not found")
	ErrInvalidRequest   = errors.New("invalid request")
)

var log = logrus.New()

// SetLogger replaces the package logger
func SetLogger(l *logrus.Logger) {
	log = l
}

// solverServiceImpl implements the SolverService interface
type solverServiceImpl struct {
	configs ConfigManager

	mu          sync.RWMutex
	historySize int
	history     []*SolveResult // oldest first
	byID        map[string]*SolveResult
}

// NewSolverService creates a new solver service keeping the last historySize
// solutions. A non-positive size selects DefaultHistorySize.
func NewSolverService(configs ConfigManager, historySize int) SolverService {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &solverServiceImpl{
		configs:     configs,
		historySize: historySize,
		byID:        make(map[string]*SolveResult),
	}
}

// ListMazes returns the stored maze definitions
func (s *solverServiceImpl) ListMazes(ctx context.Context) ([]*MazeInfo, error) {
	return s.configs.ListConfigs()
}

// LoadMaze loads one maze definition
func (s *solverServiceImpl) LoadMaze(ctx context.Context, name string) (*engine.MazeConfig, error) {
	return s.configs.LoadConfig(name)
}

// SaveMaze stores a maze definition under name
func (s *solverServiceImpl) SaveMaze(ctx context.Context, name string, config *engine.MazeConfig) error {
	return s.configs.SaveConfig(name, config)
}

// Solve runs the search over a stored maze. An empty name selects the
// default maze.
func (s *solverServiceImpl) Solve(ctx context.Context, name string, opts SolveOptions) (*SolveResult, error) {
	var config *engine.MazeConfig
	if name != "" {
		var err error
		config, err = s.configs.LoadConfig(name)
		if err != nil {
			return nil, s.loadError(name, err)
		}
	} else {
		config = s.configs.GetDefault()
		if config == nil {
			return nil, fmt.Errorf("%w: no maze name given and no default maze", ErrInvalidRequest)
		}
		name = s.getMazeID(config.Name)
	}

	return s.solve(ctx, name, config, opts)
}

// SolveLayout runs the search over an ad-hoc grid
func (s *solverServiceImpl) SolveLayout(ctx context.Context, layout []string, opts SolveOptions) (*SolveResult, error) {
	config := &engine.MazeConfig{Name: InlineMazeName, Layout: layout}
	return s.solve(ctx, InlineMazeName, config, opts)
}

// GetSolution returns a solution still held in history
func (s *solverServiceImpl) GetSolution(ctx context.Context, id string) (*SolveResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSolutionNotFound, id)
	}
	return result, nil
}

// GetHistory returns a page of past solutions
func (s *solverServiceImpl) GetHistory(ctx context.Context, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultPageSize
	}
	if opts.Limit > maxPageSize {
		opts.Limit = maxPageSize
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	solutions := make([]*SolveResult, 0, opts.Limit)
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			solutions = append(solutions, s.history[i])
		}
	} else if start < total {
		solutions = append(solutions, s.history[start:end]...)
	}

	return &HistoryResponse{
		Solutions:      solutions,
		TotalSolutions: total,
		Page:           opts.Page,
		PageSize:       opts.Limit,
		TotalPages:     totalPages,
		HasNext:        opts.Page < totalPages,
		HasPrevious:    opts.Page > 1,
	}, nil
}

func (s *solverServiceImpl) solve(ctx context.Context, name string, config *engine.MazeConfig, opts SolveOptions) (*SolveResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	facing, err := resolveFacing(config, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	costs, err := resolveCosts(config, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	eng, err := engine.NewEngine(m, costs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	started := time.Now()
	sol, err := eng.Solve(facing)
	if err != nil && !errors.Is(err, engine.ErrNoPath) {
		return nil, err
	}

	result := &SolveResult{
		ID:       uuid.NewString(),
		MazeName: name,
		Rows:     m.Rows(),
		Cols:     m.Cols(),
		Start:    m.Start(),
		End:      m.End(),
		Facing:   facing.String(),
		StepCost: costs.Step,
		TurnCost: costs.Turn,
		SolvedAt: started,
	}
	if sol != nil {
		result.Reachable = true
		result.MinCost = sol.Cost
		result.OptimalCells = sol.CellCount()
		result.Cells = sol.Cells
	}
	if opts.Render {
		result.Rendered = m.Render(result.Cells)
	}
	result.Duration = time.Since(started)

	s.record(result)

	log.WithFields(logrus.Fields{
		"maze":      name,
		"id":        result.ID,
		"reachable": result.Reachable,
		"cost":      result.MinCost,
		"cells":     result.OptimalCells,
		"duration":  result.Duration,
	}).Info("maze solved")

	return result, nil
}

// record appends result to history, evicting the oldest entry when full
func (s *solverServiceImpl) record(result *SolveResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, result)
	s.byID[result.ID] = result
	for len(s.history) > s.historySize {
		delete(s.byID, s.history[0].ID)
		s.history[0] = nil
		s.history = s.history[1:]
	}
}

// loadError adds the available maze ids to a failed lookup
func (s *solverServiceImpl) loadError(name string, err error) error {
	available, listErr := s.configs.ListConfigs()
	if listErr != nil || len(available) == 0 {
		return fmt.Errorf("failed to load maze %s: %w", name, err)
	}
	ids := make([]string, 0, len(available))
	for _, info := range available {
		ids = append(ids, info.MazeID)
	}
	return fmt.Errorf("failed to load maze %s (available mazes: %v): %w", name, ids, err)
}

// getMazeID returns the maze_id for a display name, used for consistent API responses
func (s *solverServiceImpl) getMazeID(displayName string) string {
	available, err := s.configs.ListConfigs()
	if err == nil {
		for _, info := range available {
			if info.Name == displayName {
				return info.MazeID
			}
		}
	}
	if displayName == "" {
		return "default"
	}
	return displayName
}

func resolveFacing(config *engine.MazeConfig, opts SolveOptions) (maze.Direction, error) {
	if opts.Facing != "" {
		return maze.ParseDirection(opts.Facing)
	}
	return config.Direction()
}

func resolveCosts(config *engine.MazeConfig, opts SolveOptions) (engine.Costs, error) {
	if opts.StepCost < 0 || opts.TurnCost < 0 {
		return engine.Costs{}, fmt.Errorf("%w: costs must not be negative", engine.ErrInvalidCosts)
	}
	costs := config.Costs()
	if opts.StepCost > 0 {
		costs.Step = opts.StepCost
	}
	if opts.TurnCost > 0 {
		costs.Turn = opts.TurnCost
	}
	return costs, nil
}
