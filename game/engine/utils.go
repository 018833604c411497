package engine

import "github.com/wricardo/mcp-training/reindeermaze/game/maze"

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to maze.Position) int {
	dr := from.Row - to.Row
	if dr < 0 {
		dr = -dr
	}
	dc := from.Col - to.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// LowerBound returns a cost no optimal path can beat: one step per cell of
// Manhattan distance, plus one turn when start and end share neither a row
// nor a column.
func LowerBound(m *maze.Maze, costs Costs) int {
	start, end := m.Start(), m.End()
	bound := ManhattanDistance(start, end) * costs.Step
	if start.Row != end.Row && start.Col != end.Col {
		bound += costs.Turn
	}
	return bound
}

// OpenNeighbors counts the walkable cells orthogonally adjacent to pos
func OpenNeighbors(m *maze.Maze, pos maze.Position) int {
	count := 0
	for _, d := range maze.Directions {
		if !m.IsWall(pos.Step(d)) {
			count++
		}
	}
	return count
}

// CountDeadEnds counts open cells with exactly one walkable neighbour,
// excluding the start and end cells
func CountDeadEnds(m *maze.Maze) int {
	count := 0
	for row := 0; row < m.Rows(); row++ {
		for col := 0; col < m.Cols(); col++ {
			pos := maze.Position{Row: row, Col: col}
			if m.CellAt(pos) != maze.Open {
				continue
			}
			if OpenNeighbors(m, pos) == 1 {
				count++
			}
		}
	}
	return count
}
