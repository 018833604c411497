// Package engine provides the state-space search for the Reindeer Maze solver.
//
// The engine package implements:
//   - Search states made of a cell and a heading
//   - Forward steps and in-place quarter turns with configurable costs
//   - Uniform-cost search for the minimum cost to the end cell
//   - Enumeration of every cell lying on any minimum-cost path
//   - Maze definition loading and validation
//
// Core Types:
//
// Engine answers queries over one read-only maze.Maze. State is the unit of
// search; the grid alone is not enough since the cost of reaching a cell
// depends on the heading the searcher already has. Solution carries the
// minimum cost, the optimal cells and the end states reached at that cost.
// MazeConfig is the JSON maze definition used by the config manager.
//
// Usage:
//
//	m, err := maze.ParseString(text)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	eng, err := engine.NewEngineWithDefaults(m)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cost, err := eng.MinCost(maze.East)
//	if errors.Is(err, engine.ErrNoPath) {
//		// the end cell is walled off
//	}
//
//	sol, err := eng.Solve(maze.East)
//	fmt.Println(sol.Cost, sol.CellCount())
//
// Search Rules:
//
// A forward step costs Costs.Step and is allowed onto any in-bounds cell
// that is not a wall. Turning left or right costs Costs.Turn and never moves
// the searcher. The end cell may be reached in any heading. Costs must be
// positive.
//
// Optimal Paths:
//
// Solve runs a Dijkstra search that keeps, for each state, every predecessor
// reaching it at its best cost. A strictly cheaper discovery discards the
// predecessors recorded so far. A backward walk from the cheapest end states
// over that predecessor graph then collects the cells of all optimal paths.
package engine
