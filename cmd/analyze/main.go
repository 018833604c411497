// Command analyze prints quick, human-readable heuristics about the maze
// definitions in the project's configs directory. It summarizes dimensions,
// move costs, open and wall counts, dead ends, the straight-line lower bound,
// and the solved score with the number of cells on best paths.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wricardo/mcp-training/reindeermaze/game/config"
	"github.com/wricardo/mcp-training/reindeermaze/game/engine"
	"github.com/wricardo/mcp-training/reindeermaze/game/maze"
)

// Analysis holds the figures printed for one maze
type Analysis struct {
	ID        string
	Name      string
	Rows      int
	Cols      int
	Costs     engine.Costs
	Facing    maze.Direction
	Open      int
	Walls     int
	DeadEnds  int
	Bound     int
	Reachable bool
	MinCost   int
	Cells     int
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	if err := run(os.Stdout, dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, dir string) error {
	manager, err := config.NewManager(dir)
	if err != nil {
		return err
	}

	infos, err := manager.ListConfigs()
	if err != nil {
		return err
	}

	for _, info := range infos {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", info.Filename)

		cfg, err := manager.LoadConfig(info.MazeID)
		if err != nil {
			fmt.Fprintf(w, "Error loading maze: %v\n", err)
			continue
		}
		a, err := analyzeConfig(info.MazeID, cfg)
		if err != nil {
			fmt.Fprintf(w, "Error analyzing maze: %v\n", err)
			continue
		}
		printAnalysis(w, a)
	}
	return nil
}

func analyzeConfig(id string, cfg *engine.MazeConfig) (*Analysis, error) {
	eng, err := engine.NewEngineFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	facing, err := cfg.Direction()
	if err != nil {
		return nil, err
	}

	m := eng.Maze()
	a := &Analysis{
		ID:       id,
		Name:     cfg.Name,
		Rows:     m.Rows(),
		Cols:     m.Cols(),
		Costs:    eng.Costs(),
		Facing:   facing,
		Open:     m.CountCellType(maze.Open),
		Walls:    m.CountCellType(maze.Wall),
		DeadEnds: engine.CountDeadEnds(m),
		Bound:    engine.LowerBound(m, eng.Costs()),
	}

	sol, err := eng.Solve(facing)
	switch {
	case err == nil:
		a.Reachable = true
		a.MinCost = sol.Cost
		a.Cells = sol.CellCount()
	case !errors.Is(err, engine.ErrNoPath):
		return nil, err
	}
	return a, nil
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.Rows, a.Cols)
	fmt.Fprintf(w, "Costs: step %d, turn %d, facing %s\n", a.Costs.Step, a.Costs.Turn, a.Facing)
	fmt.Fprintf(w, "Open Cells: %d, Walls: %d\n", a.Open, a.Walls)
	fmt.Fprintf(w, "Dead Ends: %d\n", a.DeadEnds)
	fmt.Fprintf(w, "Lower Bound: %d\n", a.Bound)

	if !a.Reachable {
		fmt.Fprintf(w, "⚠️  WARNING: end is unreachable from start\n")
		return
	}
	fmt.Fprintf(w, "✅ Min Cost: %d (%d over bound)\n", a.MinCost, a.MinCost-a.Bound)
	fmt.Fprintf(w, "Cells on optimal paths: %d\n", a.Cells)
}
