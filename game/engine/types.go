package engine

import (
	"fmt"

	"github.com/wricardo/mcp-training/reindeermaze/game/maze"
)

const (
	DefaultStepCost = 1
	DefaultTurnCost = 1000

	// DefaultFacing is the heading a search starts with unless told otherwise
	DefaultFacing = maze.East
)

// Costs holds the price of each kind of move
type Costs struct {
	Step int `json:"step_cost"`
	Turn int `json:"turn_cost"`
}

// DefaultCosts are the reference costs: one per step, one thousand per turn
var DefaultCosts = Costs{Step: DefaultStepCost, Turn: DefaultTurnCost}

// Validate rejects non-positive costs, which would break uniform-cost search
func (c Costs) Validate() error {
	if c.Step <= 0 {
		return fmt.Errorf("%w: step cost must be positive, got %d", ErrInvalidCosts, c.Step)
	}
	if c.Turn <= 0 {
		return fmt.Errorf("%w: turn cost must be positive, got %d", ErrInvalidCosts, c.Turn)
	}
	return nil
}

// State is a node of the search graph: a cell plus the heading on it
type State struct {
	Pos    maze.Position  `json:"pos"`
	Facing maze.Direction `json:"facing"`
}

func (s State) String() string {
	return fmt.Sprintf("%s facing %s", s.Pos, s.Facing)
}

// Move enumerates the three transitions out of a state
type Move int

const (
	Forward Move = iota
	TurnRight
	TurnLeft
)

func (m Move) String() string {
	switch m {
	case Forward:
		return "forward"
	case TurnRight:
		return "turn_right"
	case TurnLeft:
		return "turn_left"
	}
	return fmt.Sprintf("move(%d)", int(m))
}

// Solution is the answer to a full search
type Solution struct {
	Start State `json:"start"`
	// Cost is the minimum total cost to reach the end cell
	Cost int `json:"cost"`
	// Cells holds every position on at least one minimum-cost path, sorted
	// row-major
	Cells []maze.Position `json:"cells"`
	// Ends are the end-cell states reached at Cost
	Ends []State `json:"ends"`
}

// CellCount returns the number of distinct optimal-path cells
func (s *Solution) CellCount() int {
	return len(s.Cells)
}
