package service

import (
	"time"

	"github.com/wricardo/mcp-training/reindeermaze/game/maze"
)

// SolveOptions overrides the defaults stored with a maze definition. Zero
// values keep the definition's settings.
type SolveOptions struct {
	Facing   string `json:"facing,omitempty"`
	StepCost int    `json:"step_cost,omitempty"`
	TurnCost int    `json:"turn_cost,omitempty"`
	Render   bool   `json:"render,omitempty"`
}

// SolveResult is the outcome of one solve request, as stored in history
type SolveResult struct {
	ID       string        `json:"id"`
	MazeName string        `json:"maze_name"`
	Rows     int           `json:"rows"`
	Cols     int           `json:"cols"`
	Start    maze.Position `json:"start"`
	End      maze.Position `json:"end"`
	Facing   string        `json:"facing"`
	StepCost int           `json:"step_cost"`
	TurnCost int           `json:"turn_cost"`

	Reachable    bool            `json:"reachable"`
	MinCost      int             `json:"min_cost"`
	OptimalCells int             `json:"optimal_cells"`
	Cells        []maze.Position `json:"cells,omitempty"`
	Rendered     string          `json:"rendered,omitempty"`

	SolvedAt time.Time     `json:"solved_at"`
	Duration time.Duration `json:"duration_ns"`
}

// HistoryOptions configures solution history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains a page of past solutions
type HistoryResponse struct {
	Solutions      []*SolveResult `json:"solutions"`
	TotalSolutions int            `json:"total_solutions"`
	Page           int            `json:"page"`
	PageSize       int            `json:"page_size"`
	TotalPages     int            `json:"total_pages"`
	HasNext        bool           `json:"has_next"`
	HasPrevious    bool           `json:"has_previous"`
}

// MazeInfo provides information about a stored maze definition
type MazeInfo struct {
	Filename    string `json:"filename"`
	MazeID      string `json:"maze_id"` // The identifier to pass to solve
	Name        string `json:"name"`    // Display name
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	StepCost    int    `json:"step_cost"`
	TurnCost    int    `json:"turn_cost"`
	Facing      string `json:"facing"`
}
