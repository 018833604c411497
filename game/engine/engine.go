package engine

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"github.com/wricardo/mcp-training/reindeermaze/game/maze"
)

var (
	ErrNoPath       = errors.New("no path from start to end")
	ErrInvalidCosts = errors.New("invalid move costs")
	ErrInvalidStart = errors.New("invalid start state")
)

// Engine runs direction-aware uniform-cost searches over a read-only maze.
// It holds no per-search state, so one Engine may serve concurrent callers.
type Engine struct {
	maze  *maze.Maze
	costs Costs

	// tie orders equal-cost queue entries; nil leaves the order to the heap
	tie tieBreaker
}

// NewEngine creates a search engine over m with the given move costs
func NewEngine(m *maze.Maze, costs Costs) (*Engine, error) {
	if m == nil {
		return nil, fmt.Errorf("maze cannot be nil")
	}
	if err := costs.Validate(); err != nil {
		return nil, err
	}
	return &Engine{maze: m, costs: costs}, nil
}

// NewEngineWithDefaults creates a search engine with DefaultCosts
func NewEngineWithDefaults(m *maze.Maze) (*Engine, error) {
	return NewEngine(m, DefaultCosts)
}

// Maze returns the maze being searched
func (e *Engine) Maze() *maze.Maze {
	return e.maze
}

// Costs returns the move costs in use
func (e *Engine) Costs() Costs {
	return e.costs
}

// StartState returns the maze start cell with the given heading
func (e *Engine) StartState(facing maze.Direction) State {
	return State{Pos: e.maze.Start(), Facing: facing}
}

// MinCost returns the cheapest cost from the start cell facing `facing` to
// the end cell in any heading, or ErrNoPath.
func (e *Engine) MinCost(facing maze.Direction) (int, error) {
	return e.MinCostFrom(e.StartState(facing))
}

// MinCostFrom is MinCost from an arbitrary open state
func (e *Engine) MinCostFrom(start State) (int, error) {
	if err := e.checkStart(start); err != nil {
		return 0, err
	}

	end := e.maze.End()
	settled := mapset.New[State]()
	queue := newFrontier(start, e.tie)

	for queue.len() > 0 {
		cur, _ := queue.pop()
		if settled.Has(cur.state) {
			continue
		}
		if cur.state.Pos == end {
			return cur.cost, nil
		}
		settled.Put(cur.state)

		for _, ed := range e.edges(cur.state) {
			if !settled.Has(ed.to) {
				queue.push(cur.cost+ed.cost, ed.to)
			}
		}
	}

	return 0, ErrNoPath
}

// OptimalCells returns every cell on at least one minimum-cost path from
// the start cell facing `facing`, sorted row-major, or ErrNoPath.
func (e *Engine) OptimalCells(facing maze.Direction) ([]maze.Position, error) {
	sol, err := e.Solve(facing)
	if err != nil {
		return nil, err
	}
	return sol.Cells, nil
}

// Solve computes the minimum cost and the optimal-path cell set together
func (e *Engine) Solve(facing maze.Direction) (*Solution, error) {
	return e.SolveFrom(e.StartState(facing))
}

// SolveFrom is Solve from an arbitrary open state. Unlike MinCostFrom it
// keeps popping past the first end state until the queue holds nothing
// cheaper than the best end cost, so every tying end state and every tying
// predecessor is recorded.
func (e *Engine) SolveFrom(start State) (*Solution, error) {
	if err := e.checkStart(start); err != nil {
		return nil, err
	}

	end := e.maze.End()
	tree := newSearchTree(start)
	settled := mapset.New[State]()
	queue := newFrontier(start, e.tie)

	bestEnd := -1
	var ends []State

	for queue.len() > 0 {
		cur, _ := queue.pop()
		if settled.Has(cur.state) {
			continue
		}
		if best, _ := tree.cost(cur.state); cur.cost > best {
			continue
		}
		if bestEnd >= 0 && cur.cost > bestEnd {
			break
		}
		settled.Put(cur.state)

		if cur.state.Pos == end {
			bestEnd = cur.cost
			ends = append(ends, cur.state)
			continue
		}

		for _, ed := range e.edges(cur.state) {
			if tree.relax(cur.state, ed.to, cur.cost+ed.cost) {
				queue.push(cur.cost+ed.cost, ed.to)
			}
		}
	}

	if bestEnd < 0 {
		return nil, ErrNoPath
	}

	return &Solution{
		Start: start,
		Cost:  bestEnd,
		Cells: tree.cells(ends),
		Ends:  ends,
	}, nil
}

// edge is one transition out of a state
type edge struct {
	move Move
	to   State
	cost int
}

// edges lists the legal transitions out of s: a forward step onto an open
// in-bounds cell and the two quarter turns in place.
func (e *Engine) edges(s State) []edge {
	out := make([]edge, 0, 3)

	next := s.Pos.Step(s.Facing)
	if !e.maze.IsWall(next) {
		out = append(out, edge{Forward, State{Pos: next, Facing: s.Facing}, e.costs.Step})
	}
	out = append(out,
		edge{TurnRight, State{Pos: s.Pos, Facing: s.Facing.Right()}, e.costs.Turn},
		edge{TurnLeft, State{Pos: s.Pos, Facing: s.Facing.Left()}, e.costs.Turn},
	)
	return out
}

func (e *Engine) checkStart(s State) error {
	if !s.Facing.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidStart, s.Facing)
	}
	if e.maze.IsWall(s.Pos) {
		return fmt.Errorf("%w: %s is a wall or out of bounds", ErrInvalidStart, s.Pos)
	}
	return nil
}
